package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/tasklane-api/internal/domain"
)

// Field names as they appear in JSON bodies and CSV headers.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
)

// Messages reported for task violations.
const (
	MsgTitleRequired      = "Title is required"
	MsgTitleTooLong       = "Title too long"
	MsgDescriptionTooLong = "Description too long"
	MsgInvalidStatus      = "Invalid status"
	MsgInvalidID          = "ID must be a positive integer"
	MsgExpectedString     = "Expected string"
)

// fieldRule binds a validator tag to the messages reported for each failing
// tag. fallback is used for tags with no dedicated message.
type fieldRule struct {
	name     string
	tag      string
	messages map[string]string
	fallback string
}

var (
	titleRule = fieldRule{
		name: FieldTitle,
		tag:  fmt.Sprintf("required,max=%d", domain.MaxTitleLength),
		messages: map[string]string{
			"required": MsgTitleRequired,
			"max":      MsgTitleTooLong,
		},
		fallback: MsgTitleRequired,
	}

	descriptionRule = fieldRule{
		name:     FieldDescription,
		tag:      fmt.Sprintf("max=%d", domain.MaxDescriptionLength),
		fallback: MsgDescriptionTooLong,
	}

	statusRule = fieldRule{
		name:     FieldStatus,
		tag:      "required,oneof=" + statusList(),
		fallback: MsgInvalidStatus,
	}

	idRule = fieldRule{
		name:     FieldID,
		tag:      "required,gt=0",
		fallback: MsgInvalidID,
	}
)

func statusList() string {
	statuses := domain.TaskStatuses()
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

// check runs the rule against value and returns the message for the first
// failing tag, or "" when value passes.
func (r fieldRule) check(value any) string {
	err := validate.Var(value, r.tag)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := r.messages[verrs[0].Tag()]; ok {
			return msg
		}
	}
	return r.fallback
}

// ParseTask validates a full task record. Unknown keys are ignored. An empty
// description is treated the same as an absent one.
func ParseTask(row map[string]any) (*domain.TaskInput, error) {
	verr := &domain.ValidationError{}

	title, _ := checkString(verr, row, titleRule, true)
	description, hasDescription := checkString(verr, row, descriptionRule, false)
	status, _ := checkString(verr, row, statusRule, true)

	if verr.HasErrors() {
		return nil, verr
	}

	in := &domain.TaskInput{
		Title:  title,
		Status: domain.TaskStatus(status),
	}
	if hasDescription && description != "" {
		in.Description = &description
	}
	return in, nil
}

// ParseTaskPatch validates a partial update. The id is required; every other
// field is validated only when present. Absent and null fields stay nil so the
// store leaves them untouched.
func ParseTaskPatch(row map[string]any) (*domain.TaskPatch, error) {
	verr := &domain.ValidationError{}

	id, ok := parseID(row[FieldID])
	if !ok {
		verr.Add(FieldID, MsgInvalidID)
	} else if msg := idRule.check(id); msg != "" {
		verr.Add(FieldID, msg)
	}

	patch := &domain.TaskPatch{ID: id}
	if title, present := checkString(verr, row, titleRule, false); present {
		patch.Title = &title
	}
	if description, present := checkString(verr, row, descriptionRule, false); present {
		patch.Description = &description
	}
	if status, present := checkString(verr, row, statusRule, false); present {
		s := domain.TaskStatus(status)
		patch.Status = &s
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return patch, nil
}

// FromRecord adapts a CSV row to the untyped form accepted by ParseTask.
func FromRecord(record map[string]string) map[string]any {
	row := make(map[string]any, len(record))
	for k, v := range record {
		row[k] = v
	}
	return row
}

// checkString reads and validates one string field. Required fields are
// checked even when absent so a missing value reports the same message as an
// empty one. The second result reports whether a valid value was present.
func checkString(
	verr *domain.ValidationError,
	row map[string]any,
	rule fieldRule,
	required bool,
) (string, bool) {
	raw, present := row[rule.name]
	if present && raw == nil {
		present = false
	}

	var value string
	if present {
		s, ok := raw.(string)
		if !ok {
			verr.Add(rule.name, MsgExpectedString)
			return "", false
		}
		value = s
	}

	if !present && !required {
		return "", false
	}
	if msg := rule.check(value); msg != "" {
		verr.Add(rule.name, msg)
		return "", false
	}
	return value, present
}

// parseID accepts the integer shapes an id can arrive in: Go integers from
// path parameters, float64 or json.Number from decoded JSON, and decimal strings.
func parseID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
