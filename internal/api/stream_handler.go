package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasklane-api/internal/events"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
)

// StreamHandler serves the server-sent event feed of task mutations.
type StreamHandler struct {
	bus *events.Bus
}

// NewStreamHandler creates a StreamHandler subscribing to bus.
func NewStreamHandler(bus *events.Bus) *StreamHandler {
	return &StreamHandler{bus: bus}
}

// StreamTasks handles GET /api/tasks/stream. The connection stays open until
// the client disconnects or a write fails.
func (h *StreamHandler) StreamTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := &sseSink{w: w, flush: rc.Flush}
	sub := h.bus.Subscribe(userID)

	log := logger.FromContext(r.Context())
	log.Debug("stream opened", slog.String("subscription_id", sub.ID().String()))

	if err := sub.Serve(r.Context(), sink); err != nil {
		log.Debug("stream closed on write failure", slog.String("error", err.Error()))
		return
	}
	log.Debug("stream closed")
}

// sseSink writes mutation events in text/event-stream framing.
type sseSink struct {
	w     io.Writer
	flush func() error
}

var _ events.Sink = (*sseSink)(nil)

type heartbeatData struct {
	Time time.Time `json:"time"`
}

// Push writes one "event: <kind>" frame whose data line is the task snapshot,
// or {"time": ...} for heartbeats, and flushes it.
func (s *sseSink) Push(e events.MutationEvent) error {
	var payload any = e.Task
	if e.IsHeartbeat() {
		payload = heartbeatData{Time: e.At.UTC()}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Kind, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Kind, data); err != nil {
		return err
	}
	return s.flush()
}

// Close is a no-op; the HTTP server owns the connection.
func (s *sseSink) Close() error {
	return nil
}
