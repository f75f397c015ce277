package cell

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zoobzio/capitan"
)

// FileSaveOptions configures a SaveFile. Files are never cached, batched,
// or version-prefixed; only serialization and obfuscation apply.
type FileSaveOptions[T any] struct {
	// Marshal serializes the value. Required for non-primitive types unless
	// Codec is set; takes precedence over Codec.
	Marshal func(T) (string, error)

	// Codec serializes the value when Marshal is nil.
	Codec Codec

	// Encrypt obfuscates the file content when an encryption key has been
	// initialized.
	Encrypt bool
}

// FileLoadOptions configures a LoadFile.
type FileLoadOptions[T any] struct {
	// Unmarshal parses the file content. Required for non-primitive types
	// unless Codec is set; takes precedence over Codec.
	Unmarshal func(string) (T, error)

	// Codec parses the content when Unmarshal is nil.
	Codec Codec

	// Decrypt reverses the obfuscation when an encryption key has been
	// initialized.
	Decrypt bool

	// Default is assigned to the cell when the file does not exist.
	// Presence is the pointer being non-nil.
	Default *T

	// Validate checks the parsed value with go-playground/validator struct
	// tags before assigning it to the cell.
	Validate bool
}

// SaveFile serializes the cell's current value to a file under the
// coordinator's base directory.
func SaveFile[T any](ctx context.Context, co *Coordinator, c *Cell[T], name string, opts FileSaveOptions[T]) error {
	v, err := c.Value()
	if err != nil {
		return err
	}

	text, err := serializeValue(v, opts.Marshal, opts.Codec)
	if err != nil {
		capitan.Emit(ctx, SaveFailed,
			KeyFile.Field(name),
			KeyError.Field(err.Error()),
		)
		return err
	}
	if opts.Encrypt {
		text = co.currentCipher().encrypt(text)
	}

	path := filepath.Join(co.baseDir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		capitan.Emit(ctx, SaveFailed,
			KeyFile.Field(name),
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("write %s: %w", path, err)
	}

	capitan.Emit(ctx, SaveCompleted, KeyFile.Field(name))
	return nil
}

// LoadFile reads a file under the coordinator's base directory and assigns
// the parsed value to the cell. When the file does not exist, a non-nil
// Default is assigned and the load succeeds; without one, LoadFile returns
// ErrNotFound.
func LoadFile[T any](ctx context.Context, co *Coordinator, c *Cell[T], name string, opts FileLoadOptions[T]) error {
	path := filepath.Join(co.baseDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if opts.Default != nil {
				capitan.Emit(ctx, LoadDefaulted, KeyFile.Field(name))
				return c.Set(*opts.Default)
			}
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		capitan.Emit(ctx, LoadFailed,
			KeyFile.Field(name),
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("read %s: %w", path, err)
	}

	v, err := decodeText(co, string(data), LoadOptions[T]{
		Unmarshal: opts.Unmarshal,
		Codec:     opts.Codec,
		Decrypt:   opts.Decrypt,
		Validate:  opts.Validate,
	})
	if err != nil {
		capitan.Emit(ctx, LoadFailed,
			KeyFile.Field(name),
			KeyError.Field(err.Error()),
		)
		return err
	}

	if err := c.Set(v); err != nil {
		return err
	}
	capitan.Emit(ctx, LoadCompleted, KeyFile.Field(name))
	return nil
}
