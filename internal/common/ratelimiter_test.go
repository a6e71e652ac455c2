package common

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(clock *fakeClock, cooldown time.Duration, restrictions ...Restriction) *RateLimiter {
	rl := NewRateLimiter(restrictions, cooldown)
	rl.now = clock.now
	rl.stopwatch.now = clock.now
	return rl
}

func TestRestrictionAnalyse(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rest := Restriction{Requests: 2, Duration: 10 * time.Second}

	if a := rest.Analyse(nil, base); !a.allowed {
		t.Fatalf("empty history should be allowed")
	}

	history := []time.Time{base, base.Add(2 * time.Second)}
	a := rest.Analyse(history, base.Add(4*time.Second))
	if a.allowed {
		t.Fatalf("third request inside the window should not be allowed")
	}
	if a.wait != 6*time.Second {
		t.Fatalf("wait = %s, want 6s", a.wait)
	}

	if a := rest.Analyse(history, base.Add(10*time.Second)); !a.allowed {
		t.Fatalf("request should be allowed once the oldest one leaves the window")
	}
}

func TestRateLimiterReserve(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	rl := newTestLimiter(clock, time.Minute, Restriction{Requests: 2, Duration: 10 * time.Second})

	if wait := rl.reserve(); wait != 0 {
		t.Fatalf("first request should pass, got wait %s", wait)
	}
	if wait := rl.reserve(); wait != 0 {
		t.Fatalf("second request should pass, got wait %s", wait)
	}
	if wait := rl.reserve(); wait != 10*time.Second {
		t.Fatalf("third request wait = %s, want 10s", wait)
	}

	clock.t = clock.t.Add(10 * time.Second)
	if wait := rl.reserve(); wait != 0 {
		t.Fatalf("request after the window should pass, got wait %s", wait)
	}
	if len(rl.history) != 1 {
		t.Fatalf("history should have been trimmed to 1 entry, got %d", len(rl.history))
	}
}

func TestRateLimiterCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	rl := newTestLimiter(clock, 30*time.Second)

	rl.ReceivedRateLimit()
	clock.t = clock.t.Add(5 * time.Second)
	if wait := rl.reserve(); wait != 25*time.Second {
		t.Fatalf("wait during cooldown = %s, want 25s", wait)
	}

	clock.t = clock.t.Add(25 * time.Second)
	if wait := rl.reserve(); wait != 0 {
		t.Fatalf("request after cooldown should pass, got wait %s", wait)
	}
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	rl := newTestLimiter(clock, time.Minute, Restriction{Requests: 1, Duration: time.Hour})

	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStopwatch(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStopwatch(time.Minute)
	s.now = clock.now

	if stopped, _ := s.Stopped(); !stopped {
		t.Fatalf("a stopwatch that never started is stopped")
	}
	s.Start()
	clock.t = clock.t.Add(20 * time.Second)
	stopped, left := s.Stopped()
	if stopped || left != 40*time.Second {
		t.Fatalf("Stopped() = %v, %s; want false, 40s", stopped, left)
	}
	clock.t = clock.t.Add(40 * time.Second)
	if stopped, _ := s.Stopped(); !stopped {
		t.Fatalf("stopwatch should have reached its timeout")
	}
}
