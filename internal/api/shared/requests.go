package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/phrazzld/tasklane-api/internal/domain"
)

// MaxJSONBodyBytes bounds JSON request bodies.
const MaxJSONBodyBytes = 1 << 20

// DecodeJSON decodes the request body into v. Numbers decode as json.Number
// when v is untyped, so ids keep their exact value. A body that is missing,
// oversized or not a single JSON value yields domain.ErrMalformedInput.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is empty", domain.ErrMalformedInput)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: request body too large", domain.ErrMalformedInput)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is empty", domain.ErrMalformedInput)
		default:
			return fmt.Errorf("%w: invalid JSON: %v", domain.ErrMalformedInput, err)
		}
	}

	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", domain.ErrMalformedInput)
	}
	return nil
}

// DecodeObject decodes a JSON object body into a generic map for the
// schema parsers.
func DecodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var raw json.RawMessage
	if err := DecodeJSON(w, r, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", domain.ErrMalformedInput)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", domain.ErrMalformedInput, err)
	}
	return obj, nil
}
