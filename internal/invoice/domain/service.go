package domain

import (
	"context"
	"errors"
	"time"

	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
)

// StorageKey is the persisted blob holding the invoice ledger.
const StorageKey = "field-services-invoices"

// LinkMapKey is the persisted map of invoice id to hosted payment link
// id. The platform refuses to create a second link for an invoice, so
// the mapping is the only way to recover an existing link id.
const LinkMapKey = "payment-link-map"

// Delivery channels for hosted payment links.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type ItemInput struct {
	ProductName string  `json:"productName"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	CostCents   int64   `json:"costCents"`
}

// CreateInvoiceRequest carries the full customer record because the
// platform payload embeds payor identity alongside the invoice body.
type CreateInvoiceRequest struct {
	Customer      customerdomain.Customer `json:"customer"`
	InvoiceDate   time.Time               `json:"invoiceDate"`
	PaymentTerms  string                  `json:"paymentTerms"`
	DiscountCents int64                   `json:"discountCents"`
	Items         []ItemInput             `json:"items"`
}

type SendInvoiceRequest struct {
	InvoiceID int64  `json:"invoiceId"`
	Channel   string `json:"channel"`
	Email     string `json:"email"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	Get(ctx context.Context, invoiceID int64) (Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Invoice, error)

	// ApplyPayment adds to the running paid amount and rolls the status
	// forward to partially paid or paid.
	ApplyPayment(ctx context.Context, invoiceID, amountCents int64, method, cardType, maskedAccount string) (Invoice, error)
	Cancel(ctx context.Context, invoiceID int64) (Invoice, error)

	// Send creates the hosted payment link if needed and pushes it over
	// the requested channel.
	Send(ctx context.Context, req SendInvoiceRequest) error

	// SweepOverdue records an overdue activity for each past-due unpaid
	// invoice, at most once per invoice per day.
	SweepOverdue(ctx context.Context) error

	RemoveByCustomer(ctx context.Context, customerID int64) error
}

// PlatformAPI is the slice of the outbound gateway this ledger uses.
type PlatformAPI interface {
	CreateInvoice(ctx context.Context, req gateway.InvoiceRequest) (int64, error)
	CreatePaymentLink(ctx context.Context, invoiceID int64, req gateway.PaymentLinkRequest) (string, error)
	SendPaymentLink(ctx context.Context, linkID string, push gateway.PaymentLinkPush) error
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrNoItems         = errors.New("invoice_requires_items")
	ErrInvalidItem     = errors.New("invalid_invoice_item")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidChannel  = errors.New("invalid_channel")
	ErrNotFound        = errors.New("not_found")
	ErrCancelled       = errors.New("invoice_cancelled")
)
