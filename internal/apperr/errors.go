// Package apperr defines the error taxonomy shared across the converter.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a lookup for a document or channel that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingSourceFile marks an expected export file (channels.json,
	// users.json, or a referenced message file) that is absent from the
	// source tree. Fatal: the export is assumed broken past this point.
	ErrMissingSourceFile = errors.New("missing source file")
)

// MalformedRecordError reports a raw export record that is missing a
// required field or carries one of the wrong type. Conversion aborts on the
// first such record.
type MalformedRecordError struct {
	Entity string // "channel", "user", or "message"
	Field  string // the offending field name
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: missing or invalid field %q", e.Entity, e.Field)
}

// IsMalformed reports whether err is (or wraps) a MalformedRecordError.
func IsMalformed(err error) bool {
	var m *MalformedRecordError
	return errors.As(err, &m)
}
