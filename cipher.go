package cell

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// cipher obfuscates serialized text by XORing it with a key derived from a
// passphrase, then base64-encoding the result.
//
// This is NOT cryptographic encryption: the key repeats, there is no nonce
// and no authentication tag. It only keeps stored values from being casually
// readable. Callers needing real confidentiality must encrypt before saving.
type cipher struct {
	key []byte
}

// newCipher derives a fixed-length key from the passphrase with SHA-256.
func newCipher(passphrase string) *cipher {
	sum := sha256.Sum256([]byte(passphrase))
	return &cipher{key: sum[:]}
}

// encrypt obfuscates plain text. A nil cipher passes the text through
// unchanged.
func (c *cipher) encrypt(plain string) string {
	if c == nil {
		return plain
	}
	data := []byte(plain)
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

// decrypt reverses encrypt. A nil cipher passes the text through unchanged.
func (c *cipher) decrypt(enc string) (string, error) {
	if c == nil {
		return enc, nil
	}
	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return string(out), nil
}
