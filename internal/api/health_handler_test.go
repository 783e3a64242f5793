package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		want       HealthResponse
	}{
		{"healthy", nil, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"}},
		{"database down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unreachable"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSystemHandler(pingerFunc(func(context.Context) error { return tc.pingErr }), "1.2.3")

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			require.Equal(t, tc.wantStatus, rec.Code)
			var got HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tc.want, got)
		})
	}
}
