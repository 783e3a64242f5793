package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Subscription is one owner-filtered registration on a Bus.
type Subscription struct {
	id      uuid.UUID
	ownerID int64
	queue   chan MutationEvent
	bus     *Bus
}

// ID returns the subscription's unique id.
func (s *Subscription) ID() uuid.UUID { return s.id }

// OwnerID returns the owner this subscription is filtered to.
func (s *Subscription) OwnerID() int64 { return s.ownerID }

// Events returns the queue of pending events. It is closed on Unsubscribe.
func (s *Subscription) Events() <-chan MutationEvent { return s.queue }

// Unsubscribe removes the subscription from its bus.
func (s *Subscription) Unsubscribe() { s.bus.Unsubscribe(s) }

// Serve pushes a heartbeat, then every queued event, to sink until ctx is
// cancelled, the subscription is removed, or a push fails. A heartbeat is
// also pushed on every tick of the bus heartbeat interval. Serve always
// unsubscribes and closes sink before returning; the error is non-nil only
// when a push failed.
func (s *Subscription) Serve(ctx context.Context, sink Sink) (err error) {
	log := s.bus.logger.With(
		slog.String("subscription_id", s.id.String()),
		slog.Int64("owner_id", s.ownerID))

	defer func() {
		s.Unsubscribe()
		if cerr := sink.Close(); cerr != nil {
			log.Debug("sink close failed", slog.String("error", cerr.Error()))
		}
	}()

	if err := sink.Push(Heartbeat(s.ownerID)); err != nil {
		return fmt.Errorf("push initial heartbeat: %w", err)
	}

	var tick <-chan time.Time
	if interval := s.bus.HeartbeatInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("subscriber disconnected")
			return nil
		case event, ok := <-s.queue:
			if !ok {
				return nil
			}
			if err := sink.Push(event); err != nil {
				return fmt.Errorf("push %s event: %w", event.Kind, err)
			}
		case <-tick:
			if err := sink.Push(Heartbeat(s.ownerID)); err != nil {
				return fmt.Errorf("push heartbeat: %w", err)
			}
		}
	}
}
