package domain

import (
	"context"
	"errors"
	"time"

	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
)

// StorageKey is the persisted blob holding the payment ledger.
const StorageKey = "field-services-payments"

const (
	StatusFailed    = 0
	StatusSucceeded = 1
)

// Methods accepted by the charge API.
const (
	MethodCard = "card"
	MethodACH  = "ach"
)

// Payment is one charge attempt. Declined attempts are recorded with a
// synthesized id; transport failures are not recorded at all because
// the remote outcome is unknown.
type Payment struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	InvoiceID     int64     `json:"invoiceId"`
	CustomerID    int64     `json:"customerId"`
	AmountCents   int64     `json:"amountCents"`
	Method        string    `json:"method"`
	CardType      string    `json:"cardType,omitempty"`
	BinCardType   string    `json:"binCardType,omitempty"`
	MaskedAccount string    `json:"maskedAccount,omitempty"`
	Status        int       `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProcessPaymentRequest charges a one-time method token captured by the
// embedded client component against an invoice.
type ProcessPaymentRequest struct {
	InvoiceID   int64                   `json:"invoiceId"`
	Customer    customerdomain.Customer `json:"customer"`
	AmountCents int64                   `json:"amountCents"`
	Method      string                  `json:"method"`
	Token       string                  `json:"token"`
	IPAddress   string                  `json:"ipAddress"`
}

// Result reports the definitive outcome of a charge. Approved false
// with a nil error is a decline, not a failure to reach the platform.
type Result struct {
	Approved bool                  `json:"approved"`
	Message  string                `json:"message,omitempty"`
	Payment  Payment               `json:"payment"`
	Invoice  invoicedomain.Invoice `json:"invoice"`
}

type Service interface {
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (Result, error)
	List(ctx context.Context) ([]Payment, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error)
	RemoveByCustomer(ctx context.Context, customerID int64) error
}

// PlatformAPI is the slice of the outbound gateway this ledger uses.
type PlatformAPI interface {
	Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResponse, error)
}

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidMethod = errors.New("invalid_method")
	ErrMissingToken  = errors.New("missing_method_token")
)
