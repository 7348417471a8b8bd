package toon

import (
	"errors"
	"fmt"
)

// Kinds of structural problems reported by strict decoding. Test for them
// with errors.Is.
var (
	ErrUnexpectedIndent   = errors.New("unexpected indentation")
	ErrCountMismatch      = errors.New("array length mismatch")
	ErrRowWidth           = errors.New("row value count mismatch")
	ErrUnterminatedHeader = errors.New("unterminated array header")
	ErrMixedBlock         = errors.New("block mixes entries and elements")
)

// ParseError describes the first structural problem found in strict mode.
type ParseError struct {
	Line int    // 1-based line number
	Kind error  // one of the Err* kinds above
	Msg  string // detail, may be empty
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("toon: line %d: %v", e.Line, e.Kind)
	}
	return fmt.Sprintf("toon: line %d: %v: %s", e.Line, e.Kind, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}
