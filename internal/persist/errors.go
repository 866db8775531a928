package persist

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion is returned for documents written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// ParseError reports a document that could not be read. The current document
// is never touched when one is returned.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse timeline: %s: %v", e.Reason, e.Err)
	}
	return "parse timeline: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(reason string, err error) *ParseError {
	return &ParseError{Reason: reason, Err: err}
}
