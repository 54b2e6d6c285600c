package network

import (
	"testing"
	"time"
)

func TestRotatorCycles(t *testing.T) {
	rotator, err := NewRotator([]string{"http://p1:8080", "http://p2:8080"}, time.Minute)
	if err != nil {
		t.Fatalf("new rotator: %v", err)
	}

	first, err := rotator.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	second, err := rotator.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first.String() == second.String() {
		t.Fatalf("expected rotation, got %s twice", first)
	}

	third, err := rotator.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if third.String() != first.String() {
		t.Fatalf("expected wrap-around to %s, got %s", first, third)
	}
}

func TestRotatorRestsFlaggedProxies(t *testing.T) {
	for _, status := range []int{403, 429, 999} {
		rotator, err := NewRotator([]string{"http://p1:8080", "http://p2:8080"}, time.Minute)
		if err != nil {
			t.Fatalf("new rotator: %v", err)
		}

		first, _ := rotator.Next()
		rotator.Report(first, status)

		for i := 0; i < 4; i++ {
			proxy, err := rotator.Next()
			if err != nil {
				t.Fatalf("status %d: next: %v", status, err)
			}
			if proxy.String() == first.String() {
				t.Fatalf("status %d: resting proxy %s was returned", status, first)
			}
		}
		if rotator.Healthy() != 1 {
			t.Fatalf("status %d: healthy = %d, want 1", status, rotator.Healthy())
		}
	}
}

func TestRotatorIgnoresBenignStatuses(t *testing.T) {
	rotator, err := NewRotator([]string{"http://p1:8080"}, time.Minute)
	if err != nil {
		t.Fatalf("new rotator: %v", err)
	}

	proxy, _ := rotator.Next()
	rotator.Report(proxy, 500)

	if _, err := rotator.Next(); err != nil {
		t.Fatalf("proxy should not rest on 500: %v", err)
	}
	if rotator.Healthy() != 1 {
		t.Fatalf("healthy = %d, want 1", rotator.Healthy())
	}
}

func TestRotatorRestExpires(t *testing.T) {
	// A negative cooldown puts the rest window in the past immediately.
	rotator, err := NewRotator([]string{"http://p1:8080"}, -time.Minute)
	if err != nil {
		t.Fatalf("new rotator: %v", err)
	}

	proxy, _ := rotator.Next()
	rotator.Report(proxy, 429)

	if _, err := rotator.Next(); err != nil {
		t.Fatalf("expired rest should return the proxy to rotation: %v", err)
	}
}

func TestRotatorAllResting(t *testing.T) {
	rotator, err := NewRotator([]string{"http://p1:8080", "http://p2:8080"}, time.Minute)
	if err != nil {
		t.Fatalf("new rotator: %v", err)
	}

	for i := 0; i < 2; i++ {
		proxy, _ := rotator.Next()
		rotator.Report(proxy, 999)
	}

	if _, err := rotator.Next(); err != ErrNoProxies {
		t.Fatalf("expected ErrNoProxies with every proxy resting, got %v", err)
	}
	if rotator.Healthy() != 0 {
		t.Fatalf("healthy = %d, want 0", rotator.Healthy())
	}
}

func TestRotatorEmpty(t *testing.T) {
	rotator, err := NewRotator(nil, time.Minute)
	if err != nil {
		t.Fatalf("new rotator: %v", err)
	}
	if _, err := rotator.Next(); err != ErrNoProxies {
		t.Fatalf("expected ErrNoProxies, got %v", err)
	}
}
