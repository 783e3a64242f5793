package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasklane-api/internal/domain"
	"github.com/phrazzld/tasklane-api/internal/metrics"
)

// DefaultBufferSize is the per-subscription queue length.
const DefaultBufferSize = 64

// Bus fans task mutations out to subscriptions filtered by owner id.
type Bus struct {
	mu         sync.RWMutex
	subs       map[uuid.UUID]*Subscription
	bufferSize int
	heartbeat  time.Duration
	logger     *slog.Logger
}

// Ensure Bus implements Publisher interface
var _ Publisher = (*Bus)(nil)

// Option configures a Bus.
type Option func(*Bus)

// WithBufferSize sets how many events may queue per subscription before drops.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithHeartbeatInterval sets the keep-alive period used by Serve. Zero sends
// only the initial heartbeat.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(b *Bus) {
		if d >= 0 {
			b.heartbeat = d
		}
	}
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger, opts ...Option) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		subs:       make(map[uuid.UUID]*Subscription),
		bufferSize: DefaultBufferSize,
		logger:     logger.With(slog.String("component", "event_bus")),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers a snapshot of task to every subscription for its owner.
// Delivery is a non-blocking enqueue performed under the registry lock, so
// each subscriber sees events in publish order. Publish never fails; events
// for a full subscription are dropped.
func (b *Bus) Publish(ctx context.Context, kind Kind, task *domain.Task) {
	if task == nil {
		return
	}
	event := NewMutationEvent(kind, task)

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, sub := range b.subs {
		if sub.ownerID != event.OwnerID {
			continue
		}
		select {
		case sub.queue <- event:
			delivered++
		default:
			metrics.EventsDropped.Inc()
			b.logger.WarnContext(ctx, "subscriber buffer full, dropping event",
				slog.String("subscription_id", sub.id.String()),
				slog.String("kind", string(kind)),
				slog.Int64("task_id", task.ID))
		}
	}

	metrics.EventsPublished.WithLabelValues(string(kind)).Inc()
	b.logger.DebugContext(ctx, "event published",
		slog.String("kind", string(kind)),
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", event.OwnerID),
		slog.Int("delivered", delivered))
}

// Subscribe registers a subscription receiving events for ownerID. The caller
// must call Unsubscribe (or Serve, which does so) when the connection ends.
func (b *Bus) Subscribe(ownerID int64) *Subscription {
	sub := &Subscription{
		id:      uuid.New(),
		ownerID: ownerID,
		queue:   make(chan MutationEvent, b.bufferSize),
		bus:     b,
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	count := len(b.subs)
	b.mu.Unlock()

	metrics.StreamSubscribers.Inc()
	b.logger.Debug("subscription added",
		slog.String("subscription_id", sub.id.String()),
		slog.Int64("owner_id", ownerID),
		slog.Int("subscriber_count", count))
	return sub
}

// Unsubscribe removes sub and closes its queue. It is safe to call more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.subs[sub.id]
	if ok {
		delete(b.subs, sub.id)
		// Publishers hold the read lock while sending, so closing under the
		// write lock cannot race with a send.
		close(sub.queue)
	}
	count := len(b.subs)
	b.mu.Unlock()

	if !ok {
		return
	}
	metrics.StreamSubscribers.Dec()
	b.logger.Debug("subscription removed",
		slog.String("subscription_id", sub.id.String()),
		slog.Int64("owner_id", sub.ownerID),
		slog.Int("subscriber_count", count))
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// HeartbeatInterval returns the keep-alive period used by Serve.
func (b *Bus) HeartbeatInterval() time.Duration {
	return b.heartbeat
}
