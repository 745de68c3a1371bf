package ratelimit

import (
	"sync"
	"time"
)

const DefaultMaxRequestsPerSecond = 20

// Pacer enforces a minimum spacing between consecutive dispatches on a
// single outbound channel. It hands out a wait duration instead of
// sleeping itself, so the caller controls the clock.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewPacer(maxRequestsPerSecond int) *Pacer {
	p := &Pacer{}
	p.SetRate(maxRequestsPerSecond)
	return p
}

// SetRate changes the pacing. It applies to the next reservation, so a
// config reload takes effect for requests still waiting in the queue.
func (p *Pacer) SetRate(maxRequestsPerSecond int) {
	if maxRequestsPerSecond <= 0 {
		maxRequestsPerSecond = DefaultMaxRequestsPerSecond
	}
	p.mu.Lock()
	p.interval = time.Second / time.Duration(maxRequestsPerSecond)
	p.mu.Unlock()
}

// Reserve books the next dispatch slot. The returned duration is how long
// the caller must wait from now before dispatching; zero means dispatch
// immediately. The slot is recorded as the dispatch time, so consecutive
// reservations are always spaced by at least the minimum interval.
func (p *Pacer) Reserve(now time.Time) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last.IsZero() {
		p.last = now
		return 0
	}

	wait := p.interval - now.Sub(p.last)
	if wait <= 0 {
		p.last = now
		return 0
	}
	p.last = now.Add(wait)
	return wait
}

// Interval returns the current minimum spacing between dispatches.
func (p *Pacer) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}
