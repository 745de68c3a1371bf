package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/fieldbill/internal/clock"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sweepCounter struct {
	invoicedomain.Service

	mu    sync.Mutex
	count int
}

func (s *sweepCounter) SweepOverdue(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return nil
}

func (s *sweepCounter) sweeps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func TestSchedulerSweepsOnInterval(t *testing.T) {
	svc := &sweepCounter{}
	s, err := New(Params{
		Log:        zap.NewNop(),
		Clock:      clock.New(),
		InvoiceSvc: svc,
		Config:     Config{SweepInterval: 5 * time.Millisecond, SweepTimeout: time.Second},
	})
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return svc.sweeps() >= 3 }, time.Second, time.Millisecond)
	s.Stop()

	after := svc.sweeps()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, svc.sweeps())
}

func TestNewRejectsMissingDeps(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
