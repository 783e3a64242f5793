package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/tasklane-api/internal/schema"
)

const utf8BOM = "\uFEFF"

// requiredColumns must appear in every header.
var requiredColumns = []string{schema.FieldTitle, schema.FieldStatus}

// rowReader yields header-keyed records one at a time.
type rowReader struct {
	csv    *csv.Reader
	header []string
	row    int
}

// newRowReader reads and checks the header. An empty document yields a
// reader with no header, whose next call returns io.EOF.
func newRowReader(r io.Reader) (*rowReader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	rr := &rowReader{csv: cr}

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return rr, nil
	}
	if err != nil {
		return nil, parseError(err)
	}

	header := make([]string, len(record))
	seen := make(map[string]bool, len(record))
	for i, name := range record {
		if !utf8.ValidString(name) {
			return nil, &MalformedError{Line: 1, Reason: "header is not valid UTF-8"}
		}
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &MalformedError{Line: 1, Reason: fmt.Sprintf("column %d has an empty name", i+1)}
		}
		if seen[name] {
			return nil, &MalformedError{Line: 1, Reason: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = true
		header[i] = name
	}
	for _, col := range requiredColumns {
		if !seen[col] {
			return nil, &MalformedError{Line: 1, Reason: fmt.Sprintf("missing required column %q", col)}
		}
	}

	rr.header = header
	return rr, nil
}

// next returns the next data record keyed by column name and its 1-based
// data row number. Blank lines are skipped by the CSV reader.
func (rr *rowReader) next() (map[string]string, int, error) {
	if rr.header == nil {
		return nil, 0, io.EOF
	}

	record, err := rr.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, parseError(err)
	}

	rr.row++
	line, _ := rr.csv.FieldPos(0)
	values := make(map[string]string, len(record))
	for i, value := range record {
		if !utf8.ValidString(value) {
			return nil, 0, &MalformedError{Line: line, Reason: "row is not valid UTF-8"}
		}
		values[rr.header[i]] = value
	}
	return values, rr.row, nil
}

func parseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedError{Line: pe.Line, Reason: pe.Err.Error(), Err: err}
	}
	return &MalformedError{Reason: err.Error(), Err: err}
}
