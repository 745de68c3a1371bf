package pdf

import (
	"context"
	"fmt"

	"github.com/smallbiznis/fieldbill/internal/config"
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
)

// Renderer produces printable documents for the ledgers.
type Renderer interface {
	RenderInvoice(ctx context.Context, inv invoicedomain.Invoice, cust customerdomain.Customer) ([]byte, error)
	RenderReceipt(ctx context.Context, inv invoicedomain.Invoice, cust customerdomain.Customer, pay paymentdomain.Payment) ([]byte, error)
}

type provider struct {
	businessName string
}

func New(cfg config.Config) Renderer {
	return &provider{businessName: cfg.AppName}
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

const dateLayout = "2006-01-02"
