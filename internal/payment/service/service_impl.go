package service

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/fieldbill/internal/activity/domain"
	"github.com/smallbiznis/fieldbill/internal/clock"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"github.com/smallbiznis/fieldbill/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	KV       kvstore.Store
	API      domain.PlatformAPI
	Creds    credsdomain.Service
	Invoices invoicedomain.Service
	Activity activitydomain.Service
	GenID    *snowflake.Node
	LC       fx.Lifecycle `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	kv       kvstore.Store
	api      domain.PlatformAPI
	creds    credsdomain.Service
	invoices invoicedomain.Service
	activity activitydomain.Service
	genID    *snowflake.Node

	mu    sync.Mutex
	items []domain.Payment
}

func New(p Params) domain.Service {
	s := &Service{
		log:      p.Log.Named("payment.service"),
		clock:    p.Clock,
		kv:       p.KV,
		api:      p.API,
		creds:    p.Creds,
		invoices: p.Invoices,
		activity: p.Activity,
		genID:    p.GenID,
	}
	if p.LC != nil {
		p.LC.Append(fx.Hook{OnStart: s.load})
	}
	return s
}

func (s *Service) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, err := s.kv.Get(ctx, domain.StorageKey, &s.items)
	if err != nil {
		return err
	}
	if found {
		s.log.Info("payment ledger loaded", zap.Int("count", len(s.items)))
	}
	return nil
}

func (s *Service) appendPayment(ctx context.Context, p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, p)
	return s.kv.Put(ctx, domain.StorageKey, s.items)
}

func (s *Service) ProcessPayment(ctx context.Context, req domain.ProcessPaymentRequest) (domain.Result, error) {
	if req.AmountCents <= 0 {
		return domain.Result{}, domain.ErrInvalidAmount
	}
	if req.Method != domain.MethodCard && req.Method != domain.MethodACH {
		return domain.Result{}, domain.ErrInvalidMethod
	}
	if strings.TrimSpace(req.Token) == "" {
		return domain.Result{}, domain.ErrMissingToken
	}

	inv, err := s.invoices.Get(ctx, req.InvoiceID)
	if err != nil {
		return domain.Result{}, err
	}
	if inv.Status == invoicedomain.StatusCancelled {
		return domain.Result{}, invoicedomain.ErrCancelled
	}

	creds, err := s.creds.Get(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	if !creds.IsConfigured() {
		return domain.Result{}, credsdomain.ErrNotConfigured
	}

	resp, err := s.api.Charge(ctx, s.buildCharge(req, inv, creds.EntryPoint))
	if err != nil {
		// Transport failure, the charge may or may not have landed.
		// Nothing is recorded locally.
		return domain.Result{}, err
	}

	if resp.Approved() {
		return s.settleApproved(ctx, req, inv, resp)
	}
	return s.recordDecline(ctx, req, inv, resp.DeclineMessage())
}

func (s *Service) buildCharge(req domain.ProcessPaymentRequest, inv invoicedomain.Invoice, entryPoint string) gateway.ChargeRequest {
	c := req.Customer
	return gateway.ChargeRequest{
		PaymentDetails: gateway.ChargePaymentDetails{
			TotalAmount: gateway.Dollars(req.AmountCents),
			ServiceFee:  0,
		},
		PaymentMethod: gateway.ChargePaymentMethod{
			Method:         req.Method,
			Initiator:      "payor",
			StoredMethodID: req.Token,
		},
		CustomerData: gateway.ChargeCustomerData{
			CustomerID:      c.CustomerID,
			BillingAddress1: c.Address,
			BillingCity:     c.City,
			BillingCountry:  "US",
			BillingEmail:    c.Email,
			BillingPhone:    c.Phone,
			BillingZip:      c.Zip,
			BillingState:    c.State,
			Company:         c.Company,
		},
		EntryPoint: entryPoint,
		IPAddress:  req.IPAddress,
		InvoiceData: gateway.ChargeInvoiceData{
			FirstName:        c.FirstName,
			LastName:         c.LastName,
			InvoiceAmount:    gateway.Dollars(inv.AmountCents),
			InvoiceDate:      inv.InvoiceDate.Format(dateLayout),
			InvoiceDueDate:   inv.DueDate.Format(dateLayout),
			InvoiceNumber:    inv.InvoiceNumber,
			ShippingAddress1: c.Address,
			ShippingCity:     c.City,
			ShippingEmail:    c.Email,
			ShippingCountry:  "US",
			ShippingPhone:    c.Phone,
			ShippingState:    c.State,
			ShippingZip:      c.Zip,
			Company:          c.Company,
		},
	}
}

func (s *Service) settleApproved(ctx context.Context, req domain.ProcessPaymentRequest, inv invoicedomain.Invoice, resp *gateway.ChargeResponse) (domain.Result, error) {
	cardType := strings.ToLower(resp.Data.PaymentData.AccountType)
	binCardType := strings.ToUpper(resp.Data.PaymentData.BinData.BinCardType)
	masked := maskedLast4(resp.Data.PaymentData.MaskedAccount)

	payment := domain.Payment{
		ID:            resp.Data.PaymentTransID,
		TransactionID: resp.Data.PaymentTransID,
		InvoiceID:     inv.InvoiceID,
		CustomerID:    req.Customer.CustomerID,
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		CardType:      cardType,
		BinCardType:   binCardType,
		MaskedAccount: masked,
		Status:        domain.StatusSucceeded,
		CreatedAt:     s.clock.Now().UTC(),
	}
	if err := s.appendPayment(ctx, payment); err != nil {
		return domain.Result{}, err
	}

	updated, err := s.invoices.ApplyPayment(ctx, inv.InvoiceID, req.AmountCents, req.Method, cardType, masked)
	if err != nil {
		return domain.Result{}, err
	}

	detail := "Payment received"
	if updated.Status == invoicedomain.StatusPartiallyPaid {
		detail += " (partial)"
	}
	if err := s.activity.Record(ctx, activitydomain.TypePaymentReceived, inv.InvoiceNumber, req.AmountCents, detail); err != nil {
		s.log.Warn("record payment activity", zap.Error(err))
	}

	s.log.Info("payment approved",
		zap.String("transaction_id", payment.TransactionID),
		zap.Int64("invoice_id", inv.InvoiceID),
		zap.Int64("amount_cents", req.AmountCents),
	)
	return domain.Result{Approved: true, Payment: payment, Invoice: updated}, nil
}

func (s *Service) recordDecline(ctx context.Context, req domain.ProcessPaymentRequest, inv invoicedomain.Invoice, reason string) (domain.Result, error) {
	id := "failed-" + s.genID.Generate().String()
	payment := domain.Payment{
		ID:            id,
		TransactionID: id,
		InvoiceID:     inv.InvoiceID,
		CustomerID:    req.Customer.CustomerID,
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		Status:        domain.StatusFailed,
		Reason:        reason,
		CreatedAt:     s.clock.Now().UTC(),
	}
	if err := s.appendPayment(ctx, payment); err != nil {
		return domain.Result{}, err
	}

	if err := s.activity.Record(ctx, activitydomain.TypePaymentFailed, inv.InvoiceNumber, req.AmountCents, "Failed: "+reason); err != nil {
		s.log.Warn("record decline activity", zap.Error(err))
	}

	s.log.Warn("payment declined",
		zap.Int64("invoice_id", inv.InvoiceID),
		zap.String("reason", reason),
	)
	return domain.Result{Approved: false, Message: reason, Payment: payment, Invoice: inv}, nil
}

func maskedLast4(masked string) string {
	if len(masked) < 4 {
		return masked
	}
	return "X" + masked[len(masked)-4:]
}

func (s *Service) List(ctx context.Context) ([]domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Payment, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID int64) ([]domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Payment
	for _, p := range s.items {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) RemoveByCustomer(ctx context.Context, customerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, p := range s.items {
		if p.CustomerID != customerID {
			kept = append(kept, p)
		}
	}
	s.items = kept
	return s.kv.Put(ctx, domain.StorageKey, s.items)
}
