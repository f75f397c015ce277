package cell

import (
	"fmt"
	"strconv"
)

// The primitive fast path covers a fixed, closed set of scalar types with a
// canonical textual form. Anything else requires a caller-supplied marshal
// or unmarshal function (or a Codec).

// marshalPrimitive returns the textual form of a supported scalar, or
// ok=false for any other type.
func marshalPrimitive(v any) (text string, ok bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	}
	return "", false
}

// unmarshalPrimitive parses text into a supported scalar type T. Returns
// ok=false when T is not in the primitive set; a parse failure for a
// supported type is an error.
func unmarshalPrimitive[T any](text string) (v T, ok bool, err error) {
	switch p := any(&v).(type) {
	case *string:
		*p = text
		return v, true, nil
	case *bool:
		b, perr := strconv.ParseBool(text)
		if perr != nil {
			return v, true, fmt.Errorf("parse bool %q: %w", text, perr)
		}
		*p = b
		return v, true, nil
	case *int:
		n, perr := strconv.Atoi(text)
		if perr != nil {
			return v, true, fmt.Errorf("parse int %q: %w", text, perr)
		}
		*p = n
		return v, true, nil
	case *int64:
		n, perr := strconv.ParseInt(text, 10, 64)
		if perr != nil {
			return v, true, fmt.Errorf("parse int64 %q: %w", text, perr)
		}
		*p = n
		return v, true, nil
	case *float64:
		f, perr := strconv.ParseFloat(text, 64)
		if perr != nil {
			return v, true, fmt.Errorf("parse float64 %q: %w", text, perr)
		}
		*p = f
		return v, true, nil
	}
	return v, false, nil
}
