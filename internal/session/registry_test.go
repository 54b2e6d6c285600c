package session

import (
	"testing"
	"time"
)

func TestRegistryOpenPublishClose(t *testing.T) {
	registry := NewRegistry()

	events, err := registry.Open("client-1", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if registry.Active() != 1 {
		t.Fatalf("expected 1 active session, got %d", registry.Active())
	}

	if !registry.Publish("client-1", StartedEvent("go")) {
		t.Fatalf("publish to live session should succeed")
	}

	select {
	case ev := <-events:
		if ev.Type != EventStarted {
			t.Fatalf("unexpected event type %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}

	registry.Close("client-1")
	if registry.Active() != 0 {
		t.Fatalf("expected 0 active sessions, got %d", registry.Active())
	}
	if registry.Publish("client-1", ErrorEvent("late")) {
		t.Fatalf("publish after close should be a no-op")
	}
}

func TestRegistryRejectsDuplicateOpen(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Open("client-1", nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := registry.Open("client-1", nil); err != ErrSessionActive {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}

	// The id becomes available again only after teardown.
	registry.Close("client-1")
	if _, err := registry.Open("client-1", nil); err != nil {
		t.Fatalf("open after close: %v", err)
	}
}

func TestRegistryCloseCancelsRun(t *testing.T) {
	registry := NewRegistry()

	cancelled := false
	if _, err := registry.Open("client-1", func() { cancelled = true }); err != nil {
		t.Fatalf("open: %v", err)
	}

	registry.Close("client-1")
	if !cancelled {
		t.Fatalf("close should cancel the in-flight run")
	}
}

func TestRegistryPublishUnblocksOnClose(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Open("client-1", nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	// Fill the buffer with nobody reading.
	for i := 0; i < eventBuffer; i++ {
		registry.Publish("client-1", ParsingEvent(i+1, eventBuffer))
	}

	delivered := make(chan bool)
	go func() {
		delivered <- registry.Publish("client-1", CompletedEvent(1, 1))
	}()

	registry.Close("client-1")

	select {
	case ok := <-delivered:
		if ok {
			t.Fatalf("publish racing a close should report no delivery")
		}
	case <-time.After(time.Second):
		t.Fatalf("publish should unblock when the session closes")
	}
}

func TestRegistryPublishUnknownID(t *testing.T) {
	registry := NewRegistry()
	if registry.Publish("ghost", StartedEvent("x")) {
		t.Fatalf("publish to unknown id should be a no-op")
	}
}
