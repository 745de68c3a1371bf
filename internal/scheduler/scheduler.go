package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/fieldbill/internal/clock"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

// Config tunes the sweep cadence. Overdue notices dedupe per day, so
// running more often than daily only tightens detection latency.
type Config struct {
	SweepInterval time.Duration
	SweepTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Hour
	}
	if c.SweepTimeout <= 0 {
		c.SweepTimeout = time.Minute
	}
	return c
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	InvoiceSvc invoicedomain.Service
	Config     Config `optional:"true"`
}

// Scheduler periodically sweeps the invoice ledger for overdue
// balances so the activity feed surfaces them without user traffic.
type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	invoiceSvc invoicedomain.Service

	stop chan struct{}
	done chan struct{}
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		invoiceSvc: p.InvoiceSvc,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stop
		cancel()
	}()

	s.sweep(ctx)
	for {
		if err := s.clock.Sleep(ctx, s.cfg.SweepInterval); err != nil {
			return
		}
		select {
		case <-s.stop:
			return
		default:
		}
		s.sweep(ctx)
	}
}

func (s *Scheduler) sweep(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.SweepTimeout)
	defer cancel()

	start := s.clock.Now()
	if err := s.invoiceSvc.SweepOverdue(ctx); err != nil {
		s.log.Warn("overdue sweep failed", zap.Error(err))
		return
	}
	s.log.Debug("overdue sweep finished",
		zap.Duration("elapsed", s.clock.Now().Sub(start)),
	)
}
