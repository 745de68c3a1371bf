package domain

import "time"

// Invoice lifecycle statuses. The paid statuses are derived from the
// running paid amount, never set directly by callers.
const (
	StatusCancelled     = 0
	StatusActive        = 1
	StatusPartiallyPaid = 2
	StatusPaid          = 3
)

// Payment terms accepted on creation. Anything else falls back to due
// on receipt.
const (
	TermsNet30       = "NET30"
	TermsEndOfMonth  = "EOM"
	TermsUponReceipt = "UR"
)

type Item struct {
	ProductName string  `json:"productName"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	CostCents   int64   `json:"costCents"`
	TotalCents  int64   `json:"totalCents"`
}

// Invoice is the local ledger record. Amounts are integer cents; the
// platform's float dollars exist only at the gateway boundary.
type Invoice struct {
	InvoiceID     int64     `json:"invoiceId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerID    int64     `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	InvoiceDate   time.Time `json:"invoiceDate"`
	DueDate       time.Time `json:"dueDate"`
	AmountCents   int64     `json:"amountCents"`
	PaidCents     int64     `json:"paidCents"`
	Status        int       `json:"status"`
	PaymentTerms  string    `json:"paymentTerms,omitempty"`
	DiscountCents int64     `json:"discountCents"`
	Items         []Item    `json:"items"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	CardType      string    `json:"cardType,omitempty"`
	MaskedAccount string    `json:"maskedAccount,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RemainingCents is the unpaid balance, never negative.
func (inv Invoice) RemainingCents() int64 {
	if inv.PaidCents >= inv.AmountCents {
		return 0
	}
	return inv.AmountCents - inv.PaidCents
}

// Overdue reports whether an unpaid balance is past due as of now.
func (inv Invoice) Overdue(now time.Time) bool {
	if inv.Status == StatusCancelled || inv.RemainingCents() == 0 {
		return false
	}
	due := inv.DueDate
	if due.IsZero() {
		due = inv.InvoiceDate
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return due.UTC().Truncate(24 * time.Hour).Before(today)
}
