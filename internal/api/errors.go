package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/phrazzld/tasklane-api/internal/api/shared"
	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/ingest"
	"github.com/phrazzld/tasklane-api/internal/service"
	"github.com/phrazzld/tasklane-api/internal/service/auth"
	"github.com/phrazzld/tasklane-api/internal/store"
)

// Machine-readable failure kinds carried in every error body.
const (
	KindValidation     = "validation"
	KindMalformedInput = "malformed_input"
	KindNotFound       = "not_found"
	KindConflict       = "conflict"
	KindAuthentication = "authentication"
	KindStorage        = "storage"
)

// Client-facing messages.
const (
	MsgEmailExists        = "User with this email already exists."
	MsgInvalidCredentials = "Invalid email or password."
	MsgUnexpected         = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrMalformedInput),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Constraint violations such as store.ErrInvalidEntity land here: input
	// is validated before it reaches the store.
	default:
		return http.StatusInternalServerError
	}
}

// errorKind names the failure class of err.
func errorKind(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, domain.ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return KindAuthentication
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return KindValidation
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrDuplicate):
		return KindConflict
	default:
		return KindStorage
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpected
	}

	var (
		tooLarge  *http.MaxBytesError
		batch     *ingest.BatchError
		malformed *ingest.MalformedError
	)
	switch {
	case errors.As(err, &tooLarge):
		return "Upload too large"
	case errors.As(err, &batch):
		return "Upload rejected: one or more rows are invalid"
	case errors.Is(err, ingest.ErrNoFile):
		return "No file provided"
	case errors.Is(err, ingest.ErrNoValidRows):
		return "No valid rows"
	case errors.As(err, &malformed):
		if malformed.Line > 0 {
			return "Malformed input at line " + strconv.Itoa(malformed.Line) + ": " + malformed.Reason
		}
		return "Malformed input: " + malformed.Reason
	case errors.Is(err, domain.ErrMalformedInput):
		return "Malformed request body"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return "Validation failed"

	case errors.Is(err, service.ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return MsgEmailExists
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return MsgUnexpected
	}
}

// errorDetails extracts the per-field or per-row detail of a client error.
func errorDetails(err error) any {
	var batch *ingest.BatchError
	if errors.As(err, &batch) {
		rows := make([]RowErrorResponse, len(batch.Rows))
		for i, row := range batch.Rows {
			rows[i] = RowErrorResponse{Row: row.Row, Reason: row.Reason(), Errors: row.Fields}
		}
		return UploadErrorDetails{Rows: rows, TotalInvalid: batch.Total}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.HasErrors() {
		return verr.Fields
	}
	return nil
}

// HandleAPIError writes the error response for err. fallbackMessage replaces
// the generic 500 message when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}

	opts := []shared.ResponseOption{shared.WithKind(errorKind(err))}
	if details := errorDetails(err); details != nil {
		opts = append(opts, shared.WithDetails(details))
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
