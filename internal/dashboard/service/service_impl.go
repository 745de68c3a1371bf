package service

import (
	"context"

	"github.com/smallbiznis/fieldbill/internal/clock"
	"github.com/smallbiznis/fieldbill/internal/dashboard/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	API      domain.PlatformAPI
	Invoices invoicedomain.Service
	Payments paymentdomain.Service
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	api      domain.PlatformAPI
	invoices invoicedomain.Service
	payments paymentdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("dashboard.service"),
		clock:    p.Clock,
		api:      p.API,
		invoices: p.Invoices,
		payments: p.Payments,
	}
}

func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	payments, err := s.payments.List(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Compute(invoices, payments, s.clock.Now()), nil
}

// Trend proxies the platform's statistics series. An empty freq picks
// the bucket size that matches the window.
func (s *Service) Trend(ctx context.Context, mode, freq string) ([]domain.TrendPoint, error) {
	if mode == "" {
		mode = "d30"
	}
	if freq == "" {
		freq = autoFreq(mode)
	}

	points, err := s.api.FetchStatistics(ctx, mode, freq)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, domain.TrendPoint{
			Label:        p.StatX,
			Transactions: p.InTransactions,
			VolumeCents:  gateway.ToCents(p.InTransactionsVolume),
		})
	}
	return out, nil
}

func autoFreq(mode string) string {
	switch mode {
	case "m12", "ytd", "lasty":
		return "m"
	case "h24":
		return "h"
	default:
		return "d"
	}
}
