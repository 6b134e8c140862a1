package replay

import (
	"errors"
	"fmt"
)

var (
	ErrInputFormat = errors.New("invalid replay input")
	ErrMissingKey  = errors.New("missing required key")
)

// InputFormatError reports replay input that is not valid JSON, lacks a
// required key or breaks a record invariant.
type InputFormatError struct {
	Path string // empty when decoding from a reader
	Key  string // offending JSON key, empty for syntax errors
	Err  error
}

func (e *InputFormatError) Error() string {
	msg := ErrInputFormat.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s: key %q", msg, e.Key)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *InputFormatError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrInputFormat
func (e *InputFormatError) Is(target error) bool {
	return target == ErrInputFormat
}

func missingKey(key string) error {
	return &InputFormatError{Key: key, Err: ErrMissingKey}
}
