package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mcdev12/awantura/internal/events"
)

type stubSink struct {
	received []events.Event
	err      error
	closed   bool
}

func (s *stubSink) Publish(_ context.Context, e events.Event) error {
	s.received = append(s.received, e)
	return s.err
}

func (s *stubSink) Close() error {
	s.closed = true
	return nil
}

func TestMultiFansOutPastFailures(t *testing.T) {
	failing := &stubSink{err: errors.New("sink down")}
	healthy := &stubSink{}
	m := NewMulti(failing, healthy)

	ev := events.New(time.Now(), events.TypeBidPlaced, events.BidPlacedPayload{Amount: 100})
	err := m.Publish(context.Background(), ev)
	if err == nil {
		t.Fatal("expected the failing sink's error to surface")
	}
	if len(healthy.received) != 1 || healthy.received[0].ID != ev.ID {
		t.Fatalf("healthy sink should still receive the event, got %+v", healthy.received)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !failing.closed || !healthy.closed {
		t.Fatal("close must reach every sink")
	}
}
