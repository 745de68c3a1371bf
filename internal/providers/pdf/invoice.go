package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
)

func (p *provider) RenderInvoice(ctx context.Context, inv invoicedomain.Invoice, cust customerdomain.Customer) ([]byte, error) {
	cfg := mconfig.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+inv.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+inv.InvoiceDate.Format(dateLayout), props.Text{Top: 4}),
			text.New("Date due: "+inv.DueDate.Format(dateLayout), props.Text{Top: 8}),
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
			text.New(billingAddress(cust), props.Text{Top: 9}),
			text.New(cust.Email, props.Text{Top: 18}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, dollars(inv.RemainingCents())+" due "+inv.DueDate.Format(dateLayout), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	addItemTable(m, inv)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, dollars(inv.AmountCents+inv.DiscountCents), props.Text{Size: 9, Align: align.Right}),
	)
	if inv.DiscountCents > 0 {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "Discount", props.Text{Size: 9}),
			text.NewCol(2, "-"+dollars(inv.DiscountCents), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9}),
		text.NewCol(2, dollars(inv.AmountCents), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Amount due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, dollars(inv.RemainingCents()), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func addItemTable(m core.Maroto, inv invoicedomain.Invoice) {
	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range inv.Items {
		m.AddRow(12,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%g", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, dollars(item.CostCents), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, dollars(item.TotalCents), props.Text{Size: 9, Align: align.Right}),
		)
	}
}

func billingAddress(cust customerdomain.Customer) string {
	if cust.Address == "" {
		return ""
	}
	return fmt.Sprintf("%s, %s %s %s", cust.Address, cust.City, cust.State, cust.Zip)
}
