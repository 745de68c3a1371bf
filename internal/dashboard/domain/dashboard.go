package domain

import (
	"context"
	"math"
	"time"

	"github.com/smallbiznis/fieldbill/internal/gateway"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
)

// CardBrandMix counts fully paid card invoices by brand.
type CardBrandMix struct {
	Visa       int `json:"visa"`
	Mastercard int `json:"mastercard"`
	Amex       int `json:"amex"`
	Discover   int `json:"discover"`
	Other      int `json:"other"`
}

// Snapshot is recomputed from the ledgers on demand; nothing in it is
// stored. Revenue counts full amounts of fully paid invoices plus the
// paid portion of partially paid ones.
type Snapshot struct {
	RevenueCents int64 `json:"revenueCents"`

	PendingCents int64 `json:"pendingCents"`
	PendingCount int   `json:"pendingCount"`
	OverdueCents int64 `json:"overdueCents"`
	OverdueCount int   `json:"overdueCount"`

	FullyPaidCount     int `json:"fullyPaidCount"`
	PartiallyPaidCount int `json:"partiallyPaidCount"`
	SentCount          int `json:"sentCount"`

	// SuccessRate is fully paid over all sent, as a rounded percentage.
	SuccessRate int `json:"successRate"`

	CardPayments int          `json:"cardPayments"`
	ACHPayments  int          `json:"achPayments"`
	CardBrands   CardBrandMix `json:"cardBrands"`
}

// TrendPoint is one bucket of the platform's transaction series.
type TrendPoint struct {
	Label        string  `json:"label"`
	Transactions float64 `json:"transactions"`
	VolumeCents  int64   `json:"volumeCents"`
}

type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Trend(ctx context.Context, mode, freq string) ([]TrendPoint, error)
}

// PlatformAPI is the slice of the outbound gateway the dashboard uses.
type PlatformAPI interface {
	FetchStatistics(ctx context.Context, mode, freq string) ([]gateway.StatPoint, error)
}

// Compute derives the snapshot from the two ledgers. An invoice is
// fully paid when its status says so or its successful payments cover
// the amount; partially paid when some but not all is covered; sent
// when active and unpaid. Unpaid balances land in the overdue bucket
// once past due, otherwise in pending.
func Compute(invoices []invoicedomain.Invoice, payments []paymentdomain.Payment, now time.Time) Snapshot {
	var snap Snapshot
	today := now.UTC().Truncate(24 * time.Hour)

	for _, inv := range invoices {
		if inv.Status == invoicedomain.StatusCancelled {
			continue
		}

		var totalPaid int64
		var lastSuccess *paymentdomain.Payment
		for i := range payments {
			p := payments[i]
			if p.InvoiceID != inv.InvoiceID || p.Status != paymentdomain.StatusSucceeded {
				continue
			}
			totalPaid += p.AmountCents
			lastSuccess = &payments[i]
		}

		switch {
		case inv.Status == invoicedomain.StatusPaid || totalPaid >= inv.AmountCents:
			snap.RevenueCents += inv.AmountCents
			snap.FullyPaidCount++
			if lastSuccess != nil {
				countMethod(&snap, lastSuccess)
			}
		case totalPaid > 0:
			snap.RevenueCents += totalPaid
			snap.PartiallyPaidCount++
			bucketRemaining(&snap, inv, inv.AmountCents-totalPaid, today)
		case inv.Status == invoicedomain.StatusActive:
			snap.SentCount++
			bucketRemaining(&snap, inv, inv.AmountCents, today)
		}
	}

	totalSent := snap.FullyPaidCount + snap.PartiallyPaidCount + snap.SentCount
	if totalSent > 0 {
		snap.SuccessRate = int(math.Round(float64(snap.FullyPaidCount) / float64(totalSent) * 100))
	}
	return snap
}

func bucketRemaining(snap *Snapshot, inv invoicedomain.Invoice, remaining int64, today time.Time) {
	due := inv.DueDate
	if due.IsZero() {
		due = inv.InvoiceDate
	}
	if due.UTC().Truncate(24 * time.Hour).Before(today) {
		snap.OverdueCents += remaining
		snap.OverdueCount++
		return
	}
	snap.PendingCents += remaining
	snap.PendingCount++
}

func countMethod(snap *Snapshot, p *paymentdomain.Payment) {
	switch p.Method {
	case paymentdomain.MethodACH:
		snap.ACHPayments++
	case paymentdomain.MethodCard:
		snap.CardPayments++
		switch p.CardType {
		case "visa":
			snap.CardBrands.Visa++
		case "mastercard", "mc":
			snap.CardBrands.Mastercard++
		case "amex":
			snap.CardBrands.Amex++
		case "discover":
			snap.CardBrands.Discover++
		default:
			snap.CardBrands.Other++
		}
	}
}
