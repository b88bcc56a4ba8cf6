package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"smallbiz-erp/backend/internal/telemetry/domain"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaProducer_Disabled(t *testing.T) {
	for _, tc := range []struct {
		brokers []string
		topic   string
	}{{nil, "t"}, {[]string{"localhost:9092"}, ""}} {
		p, err := NewKafkaProducer(tc.brokers, tc.topic)
		if err != nil || p != nil {
			t.Errorf("NewKafkaProducer(%v, %q) = %v, %v; want nil, nil", tc.brokers, tc.topic, p, err)
		}
	}
	var p *KafkaProducer
	if err := p.Emit(context.Background(), &domain.Event{}); err != nil {
		t.Errorf("nil producer Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil producer Close: %v", err)
	}
}

func TestNewKafkaProducer_Configured(t *testing.T) {
	p, err := NewKafkaProducer([]string{"localhost:9092"}, "erp-telemetry")
	if err != nil || p == nil {
		t.Fatalf("NewKafkaProducer: %v, %v", p, err)
	}
	if p.Topic() != "erp-telemetry" {
		t.Errorf("Topic = %q", p.Topic())
	}
	_ = p.Close()
}

func TestKafkaProducer_Emit(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "erp-telemetry"}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	event := &domain.Event{
		OrgID:     "org-1",
		UserID:    "user-1",
		EventType: domain.EventTypeHTTPRequest,
		Source:    "http_middleware",
		Metadata:  json.RawMessage(`{"status":200}`),
		CreatedAt: at,
	}
	if err := p.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "org-1" {
		t.Errorf("key = %q, want org-1", msg.Key)
	}
	var got domain.Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OrgID != "org-1" || got.EventType != domain.EventTypeHTTPRequest || !got.CreatedAt.Equal(at) {
		t.Errorf("decoded event = %+v", got)
	}
}

func TestKafkaProducer_EmitError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := &KafkaProducer{writer: w}
	if err := p.Emit(context.Background(), &domain.Event{EventType: "test"}); err == nil {
		t.Fatal("Emit should surface writer errors")
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close: %v closed=%v", err, w.closed)
	}
}
