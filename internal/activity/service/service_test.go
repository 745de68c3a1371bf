package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/fieldbill/internal/activity/domain"
	"github.com/smallbiznis/fieldbill/internal/clock"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFeed(t *testing.T, invoiceNumbers ...string) (domain.Service, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemory()

	invoices := make([]invoicedomain.Invoice, 0, len(invoiceNumbers))
	for _, n := range invoiceNumbers {
		invoices = append(invoices, invoicedomain.Invoice{InvoiceNumber: n})
	}
	require.NoError(t, kv.Put(context.Background(), invoicedomain.StorageKey, invoices))

	svc := New(Params{
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)),
		KV:    kv,
	})
	return svc, kv
}

func TestRecordPrependsNewestFirst(t *testing.T) {
	feed, _ := newFeed(t, "INV-1", "INV-2")
	ctx := context.Background()

	require.NoError(t, feed.Record(ctx, domain.TypeEmailSent, "INV-1", 5000, "Invoice emailed to customer"))
	require.NoError(t, feed.Record(ctx, domain.TypePaymentReceived, "INV-2", 5000, "Payment received"))

	events, err := feed.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.TypePaymentReceived, events[0].Type)
	assert.Equal(t, domain.TypeEmailSent, events[1].Type)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestRecordDropsUnknownInvoiceNumber(t *testing.T) {
	feed, _ := newFeed(t, "INV-1")
	ctx := context.Background()

	require.NoError(t, feed.Record(ctx, domain.TypeOverdue, "INV-MISSING", 0, "Invoice overdue"))

	events, err := feed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFeedIsCapped(t *testing.T) {
	feed, _ := newFeed(t, "INV-1")
	ctx := context.Background()

	for i := 0; i < domain.MaxEvents+20; i++ {
		require.NoError(t, feed.Record(ctx, domain.TypeEmailSent, "INV-1", 0, fmt.Sprintf("send %d", i)))
	}

	events, err := feed.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, domain.MaxEvents)
	// The newest event survives the cap; the oldest are dropped.
	assert.Equal(t, fmt.Sprintf("send %d", domain.MaxEvents+19), events[0].Detail)
}

func TestClearEmptiesFeedAndStorage(t *testing.T) {
	feed, kv := newFeed(t, "INV-1")
	ctx := context.Background()

	require.NoError(t, feed.Record(ctx, domain.TypeEmailSent, "INV-1", 0, "sent"))
	require.NoError(t, feed.Clear(ctx))

	events, err := feed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	var persisted []domain.Event
	found, err := kv.Get(ctx, domain.StorageKey, &persisted)
	require.NoError(t, err)
	assert.False(t, found)
}
