package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReserveFirstDispatchIsImmediate(t *testing.T) {
	p := NewPacer(20)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Duration(0), p.Reserve(now))
}

func TestReserveSpacesConsecutiveDispatches(t *testing.T) {
	p := NewPacer(20)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	require.Equal(t, time.Duration(0), p.Reserve(now))

	// Immediately after: full interval wait.
	wait := p.Reserve(now)
	require.Equal(t, 50*time.Millisecond, wait)

	// Partway through the interval: only the remainder.
	now = now.Add(wait).Add(20 * time.Millisecond)
	wait = p.Reserve(now)
	require.Equal(t, 30*time.Millisecond, wait)
}

func TestReserveAfterIdleGap(t *testing.T) {
	p := NewPacer(20)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	p.Reserve(now)
	now = now.Add(time.Second)
	require.Equal(t, time.Duration(0), p.Reserve(now))
}

func TestSetRateAppliesToNextReservation(t *testing.T) {
	p := NewPacer(20)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	p.Reserve(now)
	p.SetRate(10)
	require.Equal(t, 100*time.Millisecond, p.Reserve(now))
}

func TestNonPositiveRateFallsBackToDefault(t *testing.T) {
	p := NewPacer(0)
	require.Equal(t, 50*time.Millisecond, p.Interval())
}
