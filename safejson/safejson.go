// Package safejson wraps JSON parsing with a size guard so that oversized or
// malformed input is reported as a recoverable, user-facing error instead of
// being fed to the parser unchecked.
package safejson

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

// MaxBytes is the largest input accepted for parsing (10 MiB). The check runs
// before any parsing work happens.
const MaxBytes = 10 << 20

var (
	ErrTooLarge = errors.New("json input exceeds maximum size")
	ErrInvalid  = errors.New("invalid json")
)

// Parse parses bs and returns the root value. Failures wrap ErrTooLarge or
// ErrInvalid; both are meant to be surfaced to the user, not treated as
// fatal.
func Parse(bs []byte) (*fastjson.Value, error) {
	if len(bs) > MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(bs), MaxBytes)
	}
	v, err := fastjson.ParseBytes(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return v, nil
}

// ParseString is a convenience wrapper for callers holding a string.
func ParseString(s string) (*fastjson.Value, error) {
	return Parse([]byte(s))
}
