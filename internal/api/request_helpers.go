package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasklane-api/internal/api/shared"
	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
	"github.com/phrazzld/tasklane-api/internal/schema"
	"github.com/phrazzld/tasklane-api/internal/store"
)

// getPathID extracts a positive integer id from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, schema.MsgInvalidID)
	}
	return id, nil
}

// requireUserID returns the authenticated user id, writing a 401 when the
// auth middleware did not run.
func requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return 0, false
	}
	return userID, true
}

// handleUserIDAndPathID is a composite helper that extracts both the user ID
// from context and an id from the path. It writes an error response if either
// extraction fails.
func handleUserIDAndPathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, int64, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return 0, 0, false
	}

	pathID, err := getPathID(r, paramName)
	if err != nil {
		logger.FromContext(r.Context()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}

	return userID, pathID, true
}

// parseListOptions reads page, limit and status from the query string.
func parseListOptions(r *http.Request) (store.ListOptions, error) {
	q := r.URL.Query()
	verr := &domain.ValidationError{}
	var opts store.ListOptions

	parsePositive := func(key string, max int) int {
		raw := q.Get(key)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || (max > 0 && n > max) {
			if max > 0 {
				verr.Add(key, "must be an integer between 1 and "+strconv.Itoa(max))
			} else {
				verr.Add(key, "must be a positive integer")
			}
			return 0
		}
		return n
	}
	opts.Page = parsePositive("page", 0)
	opts.Limit = parsePositive("limit", store.MaxPageSize)

	if raw := q.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			verr.Add(schema.FieldStatus, schema.MsgInvalidStatus)
		} else {
			opts.Status = &status
		}
	}

	if verr.HasErrors() {
		return store.ListOptions{}, verr
	}
	return opts.Normalize(), nil
}
