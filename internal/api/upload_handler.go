package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/phrazzld/tasklane-api/internal/api/shared"
	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/ingest"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
	"github.com/phrazzld/tasklane-api/internal/service"
)

// UploadFieldName is the multipart field carrying the CSV document.
const UploadFieldName = "file"

// UploadHandler streams multipart CSV uploads into the import pipeline.
type UploadHandler struct {
	tasks    service.TaskService
	maxBytes int64
}

// NewUploadHandler creates an UploadHandler accepting bodies up to maxBytes.
func NewUploadHandler(tasks service.TaskService, maxBytes int64) *UploadHandler {
	return &UploadHandler{tasks: tasks, maxBytes: maxBytes}
}

// UploadTasks handles POST /api/tasks/upload. The file part is parsed as it
// arrives; the body is never buffered whole.
func (h *UploadHandler) UploadTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: expected multipart/form-data: %v", domain.ErrMalformedInput, err), "")
		return
	}

	part, err := findFilePart(mr)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	defer part.Close()

	logger.FromContext(r.Context()).Debug("import upload received",
		slog.String("filename", part.FileName()),
		slog.Int64("user_id", userID))

	res, err := h.tasks.Import(r.Context(), userID, part)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, UploadResponse{Persisted: res.Persisted})
}

// findFilePart advances mr to the upload field, skipping other fields.
func findFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, ingest.ErrNoFile
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: invalid multipart body: %v", domain.ErrMalformedInput, err)
		}
		if part.FormName() == UploadFieldName {
			return part, nil
		}
		part.Close()
	}
}
