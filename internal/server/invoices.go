package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
)

const dateLayout = "2006-01-02"

type createInvoiceBody struct {
	CustomerID    int64                     `json:"customerId"`
	InvoiceDate   string                    `json:"invoiceDate"`
	PaymentTerms  string                    `json:"paymentTerms"`
	DiscountCents int64                     `json:"discountCents"`
	Items         []invoicedomain.ItemInput `json:"items"`
}

type sendInvoiceBody struct {
	Channel string `json:"channel"`
	Email   string `json:"email"`
}

func (s *Server) listInvoices(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("customerId"); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customerId"})
			return
		}
		invoices, err := s.invoices.ListByCustomer(ctx, customerID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoices)
		return
	}

	invoices, err := s.invoices.List(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) createInvoice(c *gin.Context) {
	var body createInvoiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	customer, err := s.customers.Get(ctx, body.CustomerID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	invoiceDate := time.Now().UTC()
	if body.InvoiceDate != "" {
		invoiceDate, err = time.Parse(dateLayout, body.InvoiceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoiceDate"})
			return
		}
	}

	invoice, err := s.invoices.Create(ctx, invoicedomain.CreateInvoiceRequest{
		Customer:      customer,
		InvoiceDate:   invoiceDate,
		PaymentTerms:  body.PaymentTerms,
		DiscountCents: body.DiscountCents,
		Items:         body.Items,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) getInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	invoice, err := s.invoices.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) cancelInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	invoice, err := s.invoices.Cancel(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) sendInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body sendInvoiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.invoices.Send(c.Request.Context(), invoicedomain.SendInvoiceRequest{
		InvoiceID: id,
		Channel:   body.Channel,
		Email:     body.Email,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (s *Server) invoicePDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	invoice, err := s.invoices.Get(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	customer, err := s.customers.Get(ctx, invoice.CustomerID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	doc, err := s.renderer.RenderInvoice(ctx, invoice, customer)
	if err != nil {
		s.respondError(c, err)
		return
	}
	writePDF(c, fmt.Sprintf("%s.pdf", invoice.InvoiceNumber), doc)
}

func (s *Server) receiptPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	invoice, err := s.invoices.Get(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	customer, err := s.customers.Get(ctx, invoice.CustomerID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	payment, ok := s.findReceiptPayment(c, id)
	if !ok {
		return
	}

	doc, err := s.renderer.RenderReceipt(ctx, invoice, customer, payment)
	if err != nil {
		s.respondError(c, err)
		return
	}
	writePDF(c, fmt.Sprintf("receipt-%s.pdf", invoice.InvoiceNumber), doc)
}

// findReceiptPayment picks the payment a receipt covers, by transaction
// id when given, otherwise the most recent successful one.
func (s *Server) findReceiptPayment(c *gin.Context, invoiceID int64) (paymentdomain.Payment, bool) {
	payments, err := s.payments.ListByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		s.respondError(c, err)
		return paymentdomain.Payment{}, false
	}

	transactionID := c.Query("transactionId")
	for i := len(payments) - 1; i >= 0; i-- {
		p := payments[i]
		if p.Status != paymentdomain.StatusSucceeded {
			continue
		}
		if transactionID == "" || p.TransactionID == transactionID {
			return p, true
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "no successful payment for invoice"})
	return paymentdomain.Payment{}, false
}

func writePDF(c *gin.Context, filename string, doc []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}
