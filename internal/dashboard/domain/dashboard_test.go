package domain

import (
	"testing"
	"time"

	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func invoiceFixture(id int64, amountCents int64, status int, due time.Time) invoicedomain.Invoice {
	return invoicedomain.Invoice{
		InvoiceID:     id,
		InvoiceNumber: "INV-X",
		AmountCents:   amountCents,
		Status:        status,
		InvoiceDate:   due,
		DueDate:       due,
	}
}

func paid(invoiceID, amountCents int64, method, cardType string) paymentdomain.Payment {
	return paymentdomain.Payment{
		InvoiceID:   invoiceID,
		AmountCents: amountCents,
		Method:      method,
		CardType:    cardType,
		Status:      paymentdomain.StatusSucceeded,
	}
}

func TestComputeFullyPaidByStatus(t *testing.T) {
	snap := Compute(
		[]invoicedomain.Invoice{invoiceFixture(1, 10000, invoicedomain.StatusPaid, now)},
		[]paymentdomain.Payment{paid(1, 10000, paymentdomain.MethodCard, "visa")},
		now,
	)
	assert.Equal(t, int64(10000), snap.RevenueCents)
	assert.Equal(t, 1, snap.FullyPaidCount)
	assert.Equal(t, 1, snap.CardPayments)
	assert.Equal(t, 1, snap.CardBrands.Visa)
	assert.Equal(t, 100, snap.SuccessRate)
}

func TestComputeFullyPaidBySummedPayments(t *testing.T) {
	// Two partials covering the amount count as fully paid even though
	// the stored status lags behind. The method mix uses the last
	// successful payment.
	snap := Compute(
		[]invoicedomain.Invoice{invoiceFixture(1, 10000, invoicedomain.StatusPartiallyPaid, now)},
		[]paymentdomain.Payment{
			paid(1, 4000, paymentdomain.MethodCard, "visa"),
			paid(1, 6000, paymentdomain.MethodCard, "mc"),
		},
		now,
	)
	assert.Equal(t, int64(10000), snap.RevenueCents)
	assert.Equal(t, 1, snap.FullyPaidCount)
	assert.Equal(t, 1, snap.CardBrands.Mastercard)
	assert.Zero(t, snap.CardBrands.Visa)
}

func TestComputePartialSplitsRemaining(t *testing.T) {
	future := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -10)

	snap := Compute(
		[]invoicedomain.Invoice{
			invoiceFixture(1, 10000, invoicedomain.StatusPartiallyPaid, future),
			invoiceFixture(2, 10000, invoicedomain.StatusPartiallyPaid, past),
		},
		[]paymentdomain.Payment{
			paid(1, 4000, paymentdomain.MethodCard, "visa"),
			paid(2, 3000, paymentdomain.MethodACH, ""),
		},
		now,
	)

	assert.Equal(t, int64(7000), snap.RevenueCents)
	assert.Equal(t, 2, snap.PartiallyPaidCount)
	assert.Equal(t, int64(6000), snap.PendingCents)
	assert.Equal(t, 1, snap.PendingCount)
	assert.Equal(t, int64(7000), snap.OverdueCents)
	assert.Equal(t, 1, snap.OverdueCount)
	// Partial payments never feed the method mix.
	assert.Zero(t, snap.CardPayments)
	assert.Zero(t, snap.ACHPayments)
}

func TestComputeSentUnpaid(t *testing.T) {
	future := now.AddDate(0, 0, 5)
	past := now.AddDate(0, 0, -5)

	snap := Compute(
		[]invoicedomain.Invoice{
			invoiceFixture(1, 5000, invoicedomain.StatusActive, future),
			invoiceFixture(2, 8000, invoicedomain.StatusActive, past),
		},
		nil,
		now,
	)

	assert.Zero(t, snap.RevenueCents)
	assert.Equal(t, 2, snap.SentCount)
	assert.Equal(t, int64(5000), snap.PendingCents)
	assert.Equal(t, int64(8000), snap.OverdueCents)
	assert.Zero(t, snap.SuccessRate)
}

func TestComputeIgnoresCancelledAndFailedPayments(t *testing.T) {
	failed := paymentdomain.Payment{
		InvoiceID:   1,
		AmountCents: 5000,
		Method:      paymentdomain.MethodCard,
		Status:      paymentdomain.StatusFailed,
	}
	snap := Compute(
		[]invoicedomain.Invoice{
			invoiceFixture(1, 10000, invoicedomain.StatusActive, now),
			invoiceFixture(2, 9000, invoicedomain.StatusCancelled, now),
		},
		[]paymentdomain.Payment{failed},
		now,
	)
	assert.Zero(t, snap.RevenueCents)
	assert.Equal(t, 1, snap.SentCount)
	assert.Zero(t, snap.PartiallyPaidCount)
}

func TestComputeSuccessRateRounds(t *testing.T) {
	future := now.AddDate(0, 0, 10)
	snap := Compute(
		[]invoicedomain.Invoice{
			invoiceFixture(1, 1000, invoicedomain.StatusPaid, future),
			invoiceFixture(2, 1000, invoicedomain.StatusActive, future),
			invoiceFixture(3, 1000, invoicedomain.StatusActive, future),
		},
		nil,
		now,
	)
	assert.Equal(t, 33, snap.SuccessRate)
}

func TestComputeACHAndBrandMix(t *testing.T) {
	snap := Compute(
		[]invoicedomain.Invoice{
			invoiceFixture(1, 1000, invoicedomain.StatusPaid, now),
			invoiceFixture(2, 1000, invoicedomain.StatusPaid, now),
			invoiceFixture(3, 1000, invoicedomain.StatusPaid, now),
		},
		[]paymentdomain.Payment{
			paid(1, 1000, paymentdomain.MethodACH, ""),
			paid(2, 1000, paymentdomain.MethodCard, "discover"),
			paid(3, 1000, paymentdomain.MethodCard, "maestro"),
		},
		now,
	)
	assert.Equal(t, 1, snap.ACHPayments)
	assert.Equal(t, 2, snap.CardPayments)
	assert.Equal(t, 1, snap.CardBrands.Discover)
	assert.Equal(t, 1, snap.CardBrands.Other)
}
