// Package json contains utilities for handling JSON.
package json

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads exactly one JSON value from r into dst. A body with trailing
// tokens after the value is rejected; partial updates must not be processed.
func Decode(dst any, r io.Reader) error {
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}

	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("unexpected token after JSON value: %w", err)
	}
	return nil
}
