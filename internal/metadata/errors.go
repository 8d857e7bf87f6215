package metadata

import (
	"errors"
	"fmt"
)

// ErrorKind classifies metadata parse failures.
type ErrorKind int

const (
	// MissingHeader means the block does not open with a parenthesis.
	MissingHeader ErrorKind = iota + 1
	// UnterminatedBlock means input ended before the outer form closed.
	UnterminatedBlock
)

func (k ErrorKind) String() string {
	switch k {
	case MissingHeader:
		return "missing_header"
	case UnterminatedBlock:
		return "unterminated_block"
	default:
		return "unknown"
	}
}

var (
	// ErrMissingHeader matches every ParseError of kind MissingHeader.
	ErrMissingHeader = errors.New("metadata: missing header")
	// ErrUnterminatedBlock matches every ParseError of kind UnterminatedBlock.
	ErrUnterminatedBlock = errors.New("metadata: unterminated block")
)

// ParseError reports why a metadata block could not be read. Source names
// the originating document, usually its file path.
type ParseError struct {
	Kind   ErrorKind
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	source := e.Source
	if source == "" {
		source = "<unknown>"
	}
	return fmt.Sprintf("metadata %s in %s: %s", e.Kind, source, e.Reason)
}

// Unwrap exposes the sentinel for the error kind so errors.Is works.
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case MissingHeader:
		return ErrMissingHeader
	case UnterminatedBlock:
		return ErrUnterminatedBlock
	default:
		return nil
	}
}

func newParseError(kind ErrorKind, source, reason string) *ParseError {
	return &ParseError{Kind: kind, Source: source, Reason: reason}
}
