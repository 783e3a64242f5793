package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklane-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockSink records pushed events and can be told to fail.
type MockSink struct {
	mu      sync.Mutex
	Events  []MutationEvent
	Closed  int
	PushErr error
	pushed  chan MutationEvent
}

func NewMockSink() *MockSink {
	return &MockSink{pushed: make(chan MutationEvent, 16)}
}

func (m *MockSink) Push(e MutationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PushErr != nil {
		return m.PushErr
	}
	m.Events = append(m.Events, e)
	m.pushed <- e
	return nil
}

func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
	return nil
}

func (m *MockSink) next(t *testing.T) MutationEvent {
	t.Helper()
	select {
	case e := <-m.pushed:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return MutationEvent{}
	}
}

func sampleTask(id, owner int64) *domain.Task {
	return &domain.Task{ID: id, OwnerID: owner, Title: "task", Status: domain.TaskStatusTodo}
}

func drain(sub *Subscription) []MutationEvent {
	var out []MutationEvent
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(testLogger())
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), KindTaskCreated, sampleTask(1, 1))
		bus.Publish(context.Background(), KindTaskCreated, nil)
	})
	assert.Zero(t, bus.Len())
}

func TestBus_FiltersByOwner(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(testLogger())

	subX := bus.Subscribe(1)
	subY := bus.Subscribe(2)
	defer subX.Unsubscribe()
	defer subY.Unsubscribe()

	bus.Publish(ctx, KindTaskCreated, sampleTask(10, 1))
	bus.Publish(ctx, KindTaskUpdated, sampleTask(11, 2))

	gotX := drain(subX)
	require.Len(t, gotX, 1)
	assert.Equal(t, KindTaskCreated, gotX[0].Kind)
	assert.Equal(t, int64(10), gotX[0].Task.ID)
	assert.Equal(t, int64(1), gotX[0].OwnerID)

	gotY := drain(subY)
	require.Len(t, gotY, 1)
	assert.Equal(t, int64(11), gotY[0].Task.ID)
}

func TestBus_PreservesPublishOrder(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(testLogger())
	sub := bus.Subscribe(7)
	defer sub.Unsubscribe()

	for i := int64(1); i <= 10; i++ {
		bus.Publish(ctx, KindTaskUpdated, sampleTask(i, 7))
	}

	got := drain(sub)
	require.Len(t, got, 10)
	for i, e := range got {
		assert.Equal(t, int64(i+1), e.Task.ID)
	}
}

func TestBus_SnapshotIsolation(t *testing.T) {
	bus := NewBus(testLogger())
	sub := bus.Subscribe(1)
	defer sub.Unsubscribe()

	task := sampleTask(1, 1)
	bus.Publish(context.Background(), KindTaskCreated, task)
	task.Title = "mutated after publish"

	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, "task", got[0].Task.Title)
}

func TestBus_DropsWhenBufferFull(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(testLogger(), WithBufferSize(2))
	sub := bus.Subscribe(1)
	defer sub.Unsubscribe()

	for i := int64(1); i <= 5; i++ {
		bus.Publish(ctx, KindTaskCreated, sampleTask(i, 1))
	}

	got := drain(sub)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Task.ID)
	assert.Equal(t, int64(2), got[1].Task.ID)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(testLogger())
	sub := bus.Subscribe(1)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Zero(t, bus.Len())

	bus.Publish(ctx, KindTaskCreated, sampleTask(1, 1))
	_, open := <-sub.Events()
	assert.False(t, open, "queue must be closed and empty after unsubscribe")
}

func TestBus_NoGrowthAcrossConnectCycles(t *testing.T) {
	bus := NewBus(testLogger())
	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		sub := bus.Subscribe(1)
		done := make(chan error, 1)
		go func() { done <- sub.Serve(ctx, NewMockSink()) }()
		cancel()
		require.NoError(t, <-done)
	}
	assert.Zero(t, bus.Len())
	assert.Empty(t, bus.subs)
}

func TestBus_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(testLogger(), WithBufferSize(1024))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sub := bus.Subscribe(owner)
				bus.Publish(ctx, KindTaskUpdated, sampleTask(int64(i), owner))
				sub.Unsubscribe()
			}
		}(int64(w % 3))
	}
	wg.Wait()
	assert.Zero(t, bus.Len())
}

func TestBus_HeartbeatInterval(t *testing.T) {
	assert.Zero(t, NewBus(testLogger()).HeartbeatInterval())
	assert.Equal(t, 30*time.Second, NewBus(testLogger(), WithHeartbeatInterval(30*time.Second)).HeartbeatInterval())
	assert.Equal(t, time.Second,
		NewBus(testLogger(), WithHeartbeatInterval(time.Second), WithHeartbeatInterval(-time.Second)).HeartbeatInterval())
}

func TestSubscription_Serve(t *testing.T) {
	t.Run("heartbeat first then events", func(t *testing.T) {
		bus := NewBus(testLogger())
		sub := bus.Subscribe(1)
		sink := NewMockSink()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- sub.Serve(ctx, sink) }()

		first := sink.next(t)
		assert.True(t, first.IsHeartbeat())
		assert.Nil(t, first.Task)

		bus.Publish(context.Background(), KindTaskCreated, sampleTask(5, 1))
		bus.Publish(context.Background(), KindTaskCreated, sampleTask(6, 2))
		bus.Publish(context.Background(), KindTaskDeleted, sampleTask(5, 1))

		e := sink.next(t)
		assert.Equal(t, KindTaskCreated, e.Kind)
		assert.Equal(t, int64(5), e.Task.ID)
		e = sink.next(t)
		assert.Equal(t, KindTaskDeleted, e.Kind)

		cancel()
		require.NoError(t, <-done)
		assert.Equal(t, 1, sink.Closed)
		assert.Zero(t, bus.Len())
	})

	t.Run("periodic heartbeats", func(t *testing.T) {
		bus := NewBus(testLogger(), WithHeartbeatInterval(10*time.Millisecond))
		sub := bus.Subscribe(1)
		sink := NewMockSink()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- sub.Serve(ctx, sink) }()

		for i := 0; i < 3; i++ {
			assert.True(t, sink.next(t).IsHeartbeat())
		}
		cancel()
		require.NoError(t, <-done)
	})

	t.Run("zero interval sends only the initial heartbeat", func(t *testing.T) {
		bus := NewBus(testLogger())
		sub := bus.Subscribe(1)
		sink := NewMockSink()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- sub.Serve(ctx, sink) }()

		assert.True(t, sink.next(t).IsHeartbeat())
		select {
		case e := <-sink.pushed:
			t.Fatalf("unexpected push: %s", e.Kind)
		case <-time.After(50 * time.Millisecond):
		}
		cancel()
		require.NoError(t, <-done)
	})

	t.Run("push failure ends the subscription", func(t *testing.T) {
		bus := NewBus(testLogger())
		sub := bus.Subscribe(1)
		sink := NewMockSink()
		sink.PushErr = errors.New("broken pipe")

		err := sub.Serve(context.Background(), sink)
		require.Error(t, err)
		assert.ErrorIs(t, err, sink.PushErr)
		assert.Equal(t, 1, sink.Closed)
		assert.Zero(t, bus.Len())
	})

	t.Run("external unsubscribe ends serve", func(t *testing.T) {
		bus := NewBus(testLogger())
		sub := bus.Subscribe(1)
		sink := NewMockSink()

		done := make(chan error, 1)
		go func() { done <- sub.Serve(context.Background(), sink) }()
		sink.next(t)

		sub.Unsubscribe()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("serve did not return after unsubscribe")
		}
	})
}
