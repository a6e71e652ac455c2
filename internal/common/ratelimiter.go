package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Analysis struct {
	allowed bool          // If the request is allowed
	wait    time.Duration // The minimal time to wait before the request is allowed
}

type RateLimiter struct {
	mu           sync.Mutex
	restrictions []Restriction // Restrictions to consider
	history      []time.Time   // History of requests
	duration     time.Duration // Min duration to wait for all restrictions to be lifted
	stopwatch    Stopwatch     // Cooldown started when the remote end rate limits us
	now          func() time.Time
}

func NewRateLimiter(restrictions []Restriction, cooldown time.Duration) *RateLimiter {
	rl := &RateLimiter{now: time.Now}
	// Restrictions are just a copy of the provided ones
	rl.restrictions = make([]Restriction, len(restrictions))
	copy(rl.restrictions, restrictions)
	// Duration
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	// Initialise a stopwatch
	rl.stopwatch = NewStopwatch(cooldown)
	rl.stopwatch.now = rl.clock

	return rl
}

// Wait blocks until the restrictions allow one more request, and records it.
// It returns early with the context error if the context is done first
func (rl *RateLimiter) Wait(ctx context.Context) error {

	// Give this request a unique identifier for the logs
	var id uuid.UUID
	for {
		wait := rl.reserve()
		if wait <= 0 {
			return nil
		}
		if id == uuid.Nil {
			id = uuid.New()
		}
		log.Warn().Msg(fmt.Sprintf("Request %s delayed %.1f seconds", id, wait.Seconds()))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// The remote end told us to slow down: hold every request
// until the cooldown has passed
func (rl *RateLimiter) ReceivedRateLimit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	log.Warn().Msg(fmt.Sprintf("Rate limit received, cooling down for %s", rl.stopwatch.Timeout))
	rl.stopwatch.Start()
}

// Try to take a slot. Returns zero if the request has been recorded,
// or the time to wait before trying again
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if stopped, left := rl.stopwatch.Stopped(); !stopped {
		return left
	}
	rl.stopwatch.Stop()

	currentTime := rl.clock()
	rl.trim(currentTime)
	analysis := rl.analyse(currentTime)
	if !analysis.allowed {
		return analysis.wait
	}
	rl.history = append(rl.history, currentTime)
	return 0
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction
func (rl *RateLimiter) trim(currentTime time.Time) {
	// Find the index from which we need to keep the history.
	// Start searching at the end of the slice.
	// I assume times are stored in chronological order
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if currentTime.Sub(rl.history[i]) >= rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}

func (rl *RateLimiter) analyse(currentTime time.Time) Analysis {

	// Merge the analyses of every restriction
	var wait time.Duration = 0
	allowed := true
	for _, restriction := range rl.restrictions {
		analysis := restriction.Analyse(rl.history, currentTime)
		allowed = allowed && analysis.allowed
		if analysis.wait > wait {
			wait = analysis.wait
		}
	}
	return Analysis{allowed, wait}
}

func (rl *RateLimiter) clock() time.Time {
	if rl.now != nil {
		return rl.now()
	}
	return time.Now()
}
