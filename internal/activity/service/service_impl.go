package service

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/fieldbill/internal/activity/domain"
	"github.com/smallbiznis/fieldbill/internal/clock"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
	KV    kvstore.Store
	LC    fx.Lifecycle `optional:"true"`
}

// Service keeps the bounded activity feed. It reads the invoice ledger
// blob directly to validate invoice numbers rather than depending on
// the invoice service, which records into this feed.
type Service struct {
	log   *zap.Logger
	clock clock.Clock
	kv    kvstore.Store

	mu     sync.Mutex
	events []domain.Event
}

func New(p Params) domain.Service {
	s := &Service{
		log:   p.Log.Named("activity.service"),
		clock: p.Clock,
		kv:    p.KV,
	}
	if p.LC != nil {
		p.LC.Append(fx.Hook{OnStart: s.load})
	}
	return s
}

func (s *Service) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.kv.Get(ctx, domain.StorageKey, &s.events)
	return err
}

func (s *Service) invoiceNumberKnown(ctx context.Context, number string) (bool, error) {
	var invoices []struct {
		InvoiceNumber string `json:"invoiceNumber"`
	}
	found, err := s.kv.Get(ctx, invoicedomain.StorageKey, &invoices)
	if err != nil || !found {
		return false, err
	}
	for _, inv := range invoices {
		if inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) Record(ctx context.Context, typ, invoiceNumber string, amountCents int64, detail string) error {
	known, err := s.invoiceNumberKnown(ctx, invoiceNumber)
	if err != nil {
		return err
	}
	if !known {
		s.log.Debug("activity dropped for unknown invoice",
			zap.String("type", typ),
			zap.String("invoice_number", invoiceNumber),
		)
		return nil
	}

	event := domain.Event{
		ID:            ulid.Make().String(),
		Type:          typ,
		InvoiceNumber: invoiceNumber,
		AmountCents:   amountCents,
		Detail:        detail,
		Timestamp:     s.clock.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]domain.Event{event}, s.events...)
	if len(s.events) > domain.MaxEvents {
		s.events = s.events[:domain.MaxEvents]
	}
	return s.kv.Put(ctx, domain.StorageKey, s.events)
}

func (s *Service) List(ctx context.Context) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return s.kv.Delete(ctx, domain.StorageKey)
}
