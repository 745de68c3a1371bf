package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
)

type processPaymentBody struct {
	InvoiceID   int64  `json:"invoiceId"`
	AmountCents int64  `json:"amountCents"`
	Method      string `json:"method"`
	Token       string `json:"token"`
}

func (s *Server) processPayment(c *gin.Context) {
	var body processPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	invoice, err := s.invoices.Get(ctx, body.InvoiceID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	customer, err := s.customers.Get(ctx, invoice.CustomerID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.payments.ProcessPayment(ctx, paymentdomain.ProcessPaymentRequest{
		InvoiceID:   body.InvoiceID,
		Customer:    customer,
		AmountCents: body.AmountCents,
		Method:      body.Method,
		Token:       body.Token,
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listPayments(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("invoiceId"); raw != "" {
		invoiceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoiceId"})
			return
		}
		payments, err := s.payments.ListByInvoice(ctx, invoiceID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payments)
		return
	}

	payments, err := s.payments.List(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
