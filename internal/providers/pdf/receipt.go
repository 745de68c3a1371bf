package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
)

func (p *provider) RenderReceipt(ctx context.Context, inv invoicedomain.Invoice, cust customerdomain.Customer, pay paymentdomain.Payment) ([]byte, error) {
	cfg := mconfig.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, "Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	paidOn := pay.CreatedAt.Format(dateLayout)
	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+inv.InvoiceNumber, props.Text{Top: 0}),
			text.New("Transaction: "+pay.TransactionID, props.Text{Top: 4}),
			text.New("Date paid: "+paidOn, props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(35,
		col.New(6).Add(
			text.New(p.businessName, props.Text{Style: fontstyle.Bold}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(cust.FullName(), props.Text{Top: 5}),
			text.New(cust.Email, props.Text{Top: 9}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, dollars(pay.AmountCents)+" paid on "+paidOn, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	method := pay.Method
	if pay.MaskedAccount != "" {
		method += " " + pay.MaskedAccount
	}
	m.AddRow(10,
		text.NewCol(12, "Payment method: "+method, props.Text{Size: 9}),
	)

	addItemTable(m, inv)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Amount paid", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, dollars(pay.AmountCents), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
