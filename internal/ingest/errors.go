package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/tasklane-api/internal/domain"
)

var (
	// ErrNoFile is returned when the request carries no upload.
	ErrNoFile = fmt.Errorf("%w: no file provided", domain.ErrValidation)

	// ErrNoValidRows is returned when the document has a header but no data rows.
	ErrNoValidRows = fmt.Errorf("%w: no valid rows", domain.ErrValidation)

	// ErrTooManyRows is returned when the document exceeds the row limit.
	ErrTooManyRows = errors.New("too many rows")
)

// RowError is the validation failure of one data row. Rows are numbered
// from 1, not counting the header.
type RowError struct {
	Row    int                 `json:"row"`
	Fields []domain.FieldError `json:"errors"`
}

// Reason joins the row's messages, e.g. "Invalid status".
func (e RowError) Reason() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// BatchError rejects a whole import because at least one row was invalid.
// Rows holds at most the configured number of failures; Total counts all.
type BatchError struct {
	Rows  []RowError
	Total int
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if len(e.Rows) == 0 {
		return fmt.Sprintf("%s: %d invalid rows", domain.ErrValidation, e.Total)
	}
	first := e.Rows[0]
	return fmt.Sprintf("%s: %d invalid rows (first: row %d: %s)",
		domain.ErrValidation, e.Total, first.Row, first.Reason())
}

// Unwrap makes errors.Is(err, domain.ErrValidation) hold.
func (e *BatchError) Unwrap() error {
	return domain.ErrValidation
}

// MalformedError reports a document that could not be parsed. Line is the
// 1-based physical line where parsing stopped, or 0 when unknown.
type MalformedError struct {
	Line   int
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", domain.ErrMalformedInput, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", domain.ErrMalformedInput, e.Reason)
}

// Is makes errors.Is(err, domain.ErrMalformedInput) hold.
func (e *MalformedError) Is(target error) bool {
	return target == domain.ErrMalformedInput
}

// Unwrap exposes the parser error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}
