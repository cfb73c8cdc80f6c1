package decode

import (
	"encoding/base64"
	"fmt"
)

// Error reports a payload that is not valid base64.
type Error struct {
	Payload string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode payload: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Base64 decodes a standard base64 payload. All malformed input maps to
// *Error; the function never panics and is safe for concurrent use.
func Base64(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &Error{Payload: encoded, Err: err}
	}
	return data, nil
}
