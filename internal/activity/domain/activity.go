package domain

import (
	"context"
	"time"
)

// StorageKey is the persisted blob holding the activity feed.
const StorageKey = "app_activities"

// MaxEvents bounds the feed; recording past the cap drops the oldest.
const MaxEvents = 100

// Activity types recorded by the ledgers.
const (
	TypeEmailSent        = "email_sent"
	TypeSMSSent          = "sms_sent"
	TypePaymentReceived  = "payment_received"
	TypePaymentFailed    = "payment_failed"
	TypeInvoiceCancelled = "invoice_cancelled"
	TypeOverdue          = "overdue"
)

// Event is one feed entry. The feed is newest first.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	InvoiceNumber string    `json:"invoiceNumber"`
	AmountCents   int64     `json:"amountCents"`
	Detail        string    `json:"detail"`
	Timestamp     time.Time `json:"timestamp"`
}

type Service interface {
	// Record prepends an event. Events referencing an invoice number
	// unknown to the invoice ledger are dropped silently.
	Record(ctx context.Context, typ, invoiceNumber string, amountCents int64, detail string) error
	List(ctx context.Context) ([]Event, error)
	Clear(ctx context.Context) error
}
