package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smallbiz-erp/backend/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.Event
	emitErr error
	delay   time.Duration
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Event(nil), m.events...)
}

// waitForEvents polls until the emitter has seen n events or the deadline passes.
func waitForEvents(t *testing.T, m *mockEventEmitter, n int) []*domain.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := m.getEvents(); len(events) >= n {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	events := m.getEvents()
	t.Fatalf("expected %d events, got %d", n, len(events))
	return nil
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic
	EmitAsync(nil, context.Background(), &domain.Event{OrgID: "org-1", EventType: "test"})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}
	EmitAsync(emitter, context.Background(), nil)

	time.Sleep(10 * time.Millisecond)
	if events := emitter.getEvents(); len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{}
	event := &domain.Event{
		OrgID:     "org-1",
		UserID:    "user-1",
		EventType: domain.EventTypeHTTPRequest,
		Source:    "http_middleware",
	}

	EmitAsync(emitter, context.Background(), event)

	events := waitForEvents(t, emitter, 1)
	if events[0].OrgID != "org-1" || events[0].UserID != "user-1" {
		t.Errorf("event = %+v", events[0])
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped")
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	emitter := &mockEventEmitter{delay: 20 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // request finished before the emit ran

	EmitAsync(emitter, ctx, &domain.Event{OrgID: "org-1", EventType: "test"})

	waitForEvents(t, emitter, 1)
}

func TestEmitAsync_ErrorIsSwallowed(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: errors.New("broker down")}
	EmitAsync(emitter, context.Background(), &domain.Event{OrgID: "org-1", EventType: "test"})
	waitForEvents(t, emitter, 1)
}

func TestEmitAsync_ConcurrentAccess(t *testing.T) {
	emitter := &mockEventEmitter{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, context.Background(), &domain.Event{OrgID: "org-1", EventType: "test"})
		}()
	}
	wg.Wait()

	waitForEvents(t, emitter, 10)
}

func TestMulti(t *testing.T) {
	a := &mockEventEmitter{}
	b := &mockEventEmitter{emitErr: errors.New("b failed")}
	m := Multi(a, nil, b)

	err := m.Emit(context.Background(), &domain.Event{EventType: "test"})
	if err == nil || err.Error() != "b failed" {
		t.Errorf("Emit err = %v, want b failed", err)
	}
	if len(a.getEvents()) != 1 || len(b.getEvents()) != 1 {
		t.Error("every emitter should receive the event")
	}
	if err := Multi().Emit(context.Background(), &domain.Event{}); err != nil {
		t.Errorf("empty Multi: %v", err)
	}
}
