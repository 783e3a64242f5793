package events

import (
	"context"
	"time"

	"github.com/phrazzld/tasklane-api/internal/domain"
)

// Kind names the mutation an event describes. Values are used verbatim as
// the SSE event name.
type Kind string

// Event kinds.
const (
	KindTaskCreated Kind = "taskCreated"
	KindTaskUpdated Kind = "taskUpdated"
	KindTaskDeleted Kind = "taskDeleted"
	// KindHeartbeat is synthetic and carries no task.
	KindHeartbeat Kind = "heartbeat"
)

// MutationEvent is a snapshot of a task at publish time.
type MutationEvent struct {
	Kind    Kind
	Task    *domain.Task
	OwnerID int64
	At      time.Time
}

// NewMutationEvent builds an event for task. The task is copied so later
// changes by the publisher are not observed by subscribers.
func NewMutationEvent(kind Kind, task *domain.Task) MutationEvent {
	snapshot := *task
	if task.Description != nil {
		d := *task.Description
		snapshot.Description = &d
	}
	return MutationEvent{
		Kind:    kind,
		Task:    &snapshot,
		OwnerID: task.OwnerID,
		At:      time.Now().UTC(),
	}
}

// Heartbeat builds a keep-alive event for ownerID.
func Heartbeat(ownerID int64) MutationEvent {
	return MutationEvent{Kind: KindHeartbeat, OwnerID: ownerID, At: time.Now().UTC()}
}

// IsHeartbeat reports whether e is a keep-alive rather than a mutation.
func (e MutationEvent) IsHeartbeat() bool {
	return e.Kind == KindHeartbeat
}

// Sink is one live connection events are pushed to. Push is called from a
// single goroutine per subscription; Close is called exactly once when the
// subscription ends.
type Sink interface {
	Push(event MutationEvent) error
	Close() error
}

// Publisher is the publishing side of the bus, consumed by services.
type Publisher interface {
	Publish(ctx context.Context, kind Kind, task *domain.Task)
}
