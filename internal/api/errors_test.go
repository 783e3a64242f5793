package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/ingest"
	"github.com/phrazzld/tasklane-api/internal/service"
	"github.com/phrazzld/tasklane-api/internal/service/auth"
	"github.com/phrazzld/tasklane-api/internal/store"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{"validation", domain.NewValidationError("title", "Title is required"), http.StatusBadRequest, KindValidation, "Validation failed"},
		{"invalid id", fmt.Errorf("get: %w", domain.ErrInvalidID), http.StatusBadRequest, KindValidation, "Validation failed"},
		{"malformed body", fmt.Errorf("%w: bad json", domain.ErrMalformedInput), http.StatusBadRequest, KindMalformedInput, "Malformed request body"},
		{"malformed csv", &ingest.MalformedError{Line: 4, Reason: "bare quote"}, http.StatusBadRequest, KindMalformedInput, "Malformed input at line 4: bare quote"},
		{"no valid rows", ingest.ErrNoValidRows, http.StatusBadRequest, KindValidation, "No valid rows"},
		{"too large", &ingest.MalformedError{Err: &http.MaxBytesError{Limit: 10}}, http.StatusRequestEntityTooLarge, KindMalformedInput, "Upload too large"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, KindAuthentication, MsgInvalidCredentials},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, KindAuthentication, "Token expired"},
		{"not found", service.NewTaskServiceError("get", store.ErrTaskNotFound), http.StatusNotFound, KindNotFound, "Task not found"},
		{"email exists", service.NewUserServiceError("signup", store.ErrEmailExists), http.StatusConflict, KindConflict, MsgEmailExists},
		{"constraint violation in bulk insert", service.NewTaskServiceError("import",
			store.NewStoreError("task", "create_many", "bulk insert failed",
				fmt.Errorf("%w: foreign key violation", store.ErrInvalidEntity))),
			http.StatusInternalServerError, KindStorage, MsgUnexpected},
		{"unknown", errors.New("connection reset by peer at 10.0.0.3"), http.StatusInternalServerError, KindStorage, MsgUnexpected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.wantKind, errorKind(tc.err))
			assert.Equal(t, tc.wantMsg, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestErrorDetails(t *testing.T) {
	verr := domain.NewValidationError("status", "Invalid status")
	assert.Equal(t, verr.Fields, errorDetails(fmt.Errorf("wrapped: %w", verr)))

	batch := &ingest.BatchError{Total: 3, Rows: []ingest.RowError{{Row: 5, Fields: verr.Fields}}}
	details, ok := errorDetails(batch).(UploadErrorDetails)
	if assert.True(t, ok) {
		assert.Equal(t, 3, details.TotalInvalid)
		assert.Equal(t, 5, details.Rows[0].Row)
		assert.Equal(t, "Invalid status", details.Rows[0].Reason)
	}

	assert.Nil(t, errorDetails(errors.New("boom")))
}
