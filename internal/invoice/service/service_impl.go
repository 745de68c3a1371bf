package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	activitydomain "github.com/smallbiznis/fieldbill/internal/activity/domain"
	"github.com/smallbiznis/fieldbill/internal/clock"
	"github.com/smallbiznis/fieldbill/internal/config"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// numberAttempts caps the collision probe for same-day invoice
	// numbers. The last candidate is accepted even if it collides.
	numberAttempts = 100

	// overdueNoticesKey maps invoice number to the last date an overdue
	// activity was recorded for it.
	overdueNoticesKey = "overdue-notices"

	dateLayout = "2006-01-02"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	KV       kvstore.Store
	API      domain.PlatformAPI
	Creds    credsdomain.Service
	Activity activitydomain.Service
	Cfg      config.Config
	LC       fx.Lifecycle `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	clock       clock.Clock
	kv          kvstore.Store
	api         domain.PlatformAPI
	creds       credsdomain.Service
	activity    activitydomain.Service
	redirectURL string

	// randDigits is swappable so collision handling is testable.
	randDigits func() int

	mu    sync.Mutex
	items []domain.Invoice
}

func New(p Params) domain.Service {
	s := &Service{
		log:         p.Log.Named("invoice.service"),
		clock:       p.Clock,
		kv:          p.KV,
		api:         p.API,
		creds:       p.Creds,
		activity:    p.Activity,
		redirectURL: strings.TrimRight(p.Cfg.PublicBaseURL, "/") + "/payment-success",
		randDigits:  func() int { return 100000 + rand.IntN(900000) },
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
		s.log.Info("invoice ledger loaded", zap.Int("count", len(s.items)))
	}
	return nil
}

func (s *Service) persistLocked(ctx context.Context) error {
	return s.kv.Put(ctx, domain.StorageKey, s.items)
}

func (s *Service) ensureConfigured(ctx context.Context) error {
	ok, err := s.creds.IsConfigured(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return credsdomain.ErrNotConfigured
	}
	return nil
}

// nextInvoiceNumber builds INV-{year}-{MMDD}-{random six digits} and
// probes against same-day numbers already in the ledger. After the
// attempt cap the last candidate is used as is.
func (s *Service) nextInvoiceNumber(date time.Time) string {
	prefix := fmt.Sprintf("INV-%d-%02d%02d-", date.Year(), int(date.Month()), date.Day())

	s.mu.Lock()
	used := make(map[string]struct{})
	for _, inv := range s.items {
		if strings.HasPrefix(inv.InvoiceNumber, prefix) {
			used[inv.InvoiceNumber] = struct{}{}
		}
	}
	s.mu.Unlock()

	var candidate string
	for i := 0; i < numberAttempts; i++ {
		candidate = prefix + strconv.Itoa(s.randDigits())
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
	return candidate
}

// dueDate resolves payment terms against the invoice date. Unknown or
// empty terms mean due on receipt.
func dueDate(invoiceDate time.Time, terms string) time.Time {
	switch terms {
	case domain.TermsNet30:
		return invoiceDate.AddDate(0, 0, 30)
	case domain.TermsEndOfMonth:
		firstOfNext := time.Date(invoiceDate.Year(), invoiceDate.Month(), 1, 0, 0, 0, 0, invoiceDate.Location()).AddDate(0, 1, 0)
		return firstOfNext.AddDate(0, 0, -1)
	default:
		return invoiceDate
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	if req.Customer.CustomerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}
	if len(req.Items) == 0 {
		return domain.Invoice{}, domain.ErrNoItems
	}

	items := make([]domain.Item, 0, len(req.Items))
	var totalCents int64
	for _, in := range req.Items {
		desc := strings.TrimSpace(in.Description)
		if desc == "" || in.Qty <= 0 || in.CostCents < 0 {
			return domain.Invoice{}, domain.ErrInvalidItem
		}
		lineTotal := int64(math.Round(in.Qty * float64(in.CostCents)))
		items = append(items, domain.Item{
			ProductName: strings.TrimSpace(in.ProductName),
			Description: desc,
			Qty:         in.Qty,
			CostCents:   in.CostCents,
			TotalCents:  lineTotal,
		})
		totalCents += lineTotal
	}
	if req.DiscountCents < 0 || req.DiscountCents > totalCents {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	amountCents := totalCents - req.DiscountCents

	if err := s.ensureConfigured(ctx); err != nil {
		return domain.Invoice{}, err
	}

	invoiceDate := req.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = s.clock.Now().UTC()
	}
	number := s.nextInvoiceNumber(invoiceDate)
	due := dueDate(invoiceDate, req.PaymentTerms)

	wireItems := make([]gateway.InvoiceItem, 0, len(items))
	for _, it := range items {
		wireItems = append(wireItems, gateway.InvoiceItem{
			ItemProductName: it.ProductName,
			ItemDescription: it.Description,
			ItemQty:         it.Qty,
			ItemCost:        gateway.Dollars(it.CostCents),
			ItemTotalAmount: gateway.Dollars(it.TotalCents),
			ItemMode:        1,
		})
	}

	invoiceID, err := s.api.CreateInvoice(ctx, gateway.InvoiceRequest{
		CustomerData: gateway.InvoiceCustomerData{
			CustomerID: req.Customer.CustomerID,
			FirstName:  req.Customer.FirstName,
			LastName:   req.Customer.LastName,
			Email:      req.Customer.Email,
			Company:    req.Customer.Company,
		},
		InvoiceData: gateway.InvoiceData{
			InvoiceNumber:  number,
			InvoiceDate:    invoiceDate.Format(dateLayout),
			InvoiceDueDate: due.Format(dateLayout),
			InvoiceAmount:  gateway.Dollars(amountCents),
			Discount:       gateway.Dollars(req.DiscountCents),
			InvoiceType:    0,
			InvoiceStatus:  domain.StatusActive,
			Frequency:      "onetime",
			PaymentTerms:   req.PaymentTerms,
			Items:          wireItems,
		},
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice := domain.Invoice{
		InvoiceID:     invoiceID,
		InvoiceNumber: number,
		CustomerID:    req.Customer.CustomerID,
		CustomerName:  req.Customer.FullName(),
		InvoiceDate:   invoiceDate,
		DueDate:       due,
		AmountCents:   amountCents,
		Status:        domain.StatusActive,
		PaymentTerms:  req.PaymentTerms,
		DiscountCents: req.DiscountCents,
		Items:         items,
		CreatedAt:     s.clock.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, invoice)
	if err := s.persistLocked(ctx); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.Int64("invoice_id", invoice.InvoiceID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int64("amount_cents", invoice.AmountCents),
	)
	return invoice, nil
}

func (s *Service) Get(ctx context.Context, invoiceID int64) (domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(invoiceID)
	if idx < 0 {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return s.items[idx], nil
}

func (s *Service) List(ctx context.Context) ([]domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Invoice, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Invoice
	for _, inv := range s.items {
		if inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *Service) ApplyPayment(ctx context.Context, invoiceID, amountCents int64, method, cardType, maskedAccount string) (domain.Invoice, error) {
	if amountCents <= 0 {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(invoiceID)
	if idx < 0 {
		return domain.Invoice{}, domain.ErrNotFound
	}
	inv := &s.items[idx]
	if inv.Status == domain.StatusCancelled {
		return domain.Invoice{}, domain.ErrCancelled
	}

	inv.PaidCents += amountCents
	if inv.PaidCents >= inv.AmountCents {
		inv.Status = domain.StatusPaid
	} else if inv.PaidCents > 0 {
		inv.Status = domain.StatusPartiallyPaid
	}
	inv.PaymentMethod = method
	inv.CardType = cardType
	inv.MaskedAccount = maskedAccount

	if err := s.persistLocked(ctx); err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}

func (s *Service) Cancel(ctx context.Context, invoiceID int64) (domain.Invoice, error) {
	s.mu.Lock()
	idx := s.indexOfLocked(invoiceID)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Invoice{}, domain.ErrNotFound
	}
	inv := &s.items[idx]
	if inv.Status == domain.StatusCancelled {
		out := *inv
		s.mu.Unlock()
		return out, nil
	}
	inv.Status = domain.StatusCancelled
	err := s.persistLocked(ctx)
	out := *inv
	s.mu.Unlock()
	if err != nil {
		return domain.Invoice{}, err
	}

	if err := s.activity.Record(ctx, activitydomain.TypeInvoiceCancelled, out.InvoiceNumber, out.AmountCents, "Invoice cancelled"); err != nil {
		s.log.Warn("record cancel activity", zap.Error(err))
	}
	return out, nil
}

func (s *Service) Send(ctx context.Context, req domain.SendInvoiceRequest) error {
	if req.Channel != domain.ChannelEmail && req.Channel != domain.ChannelSMS {
		return domain.ErrInvalidChannel
	}
	if req.Channel == domain.ChannelEmail && !strings.Contains(req.Email, "@") {
		return domain.ErrInvalidChannel
	}

	inv, err := s.Get(ctx, req.InvoiceID)
	if err != nil {
		return err
	}
	if inv.Status == domain.StatusCancelled {
		return domain.ErrCancelled
	}
	if err := s.ensureConfigured(ctx); err != nil {
		return err
	}

	linkID, err := s.resolvePaymentLink(ctx, inv.InvoiceID)
	if err != nil {
		return err
	}

	push := gateway.PaymentLinkPush{Channel: req.Channel}
	if req.Channel == domain.ChannelEmail {
		push.AdditionalEmails = []string{req.Email}
		push.AttachFile = true
	}
	if err := s.api.SendPaymentLink(ctx, linkID, push); err != nil {
		return err
	}

	typ, detail := activitydomain.TypeEmailSent, "Payment link emailed to customer"
	if req.Channel == domain.ChannelSMS {
		typ, detail = activitydomain.TypeSMSSent, "Payment link sent via SMS"
	}
	if err := s.activity.Record(ctx, typ, inv.InvoiceNumber, inv.AmountCents, detail); err != nil {
		s.log.Warn("record send activity", zap.Error(err))
	}
	return nil
}

// resolvePaymentLink creates the hosted link, falling back to the stored
// mapping when the platform reports the link already exists.
func (s *Service) resolvePaymentLink(ctx context.Context, invoiceID int64) (string, error) {
	linkID, err := s.api.CreatePaymentLink(ctx, invoiceID, gateway.DefaultPaymentLinkRequest(s.redirectURL))
	key := strconv.FormatInt(invoiceID, 10)
	if err != nil {
		if !gateway.IsResourceExists(err) {
			return "", err
		}
		links := map[string]string{}
		if _, getErr := s.kv.Get(ctx, domain.LinkMapKey, &links); getErr != nil {
			return "", getErr
		}
		linkID = links[key]
		if linkID == "" {
			return "", fmt.Errorf("payment link exists remotely but is unknown locally: %w", err)
		}
		return linkID, nil
	}

	links := map[string]string{}
	if _, err := s.kv.Get(ctx, domain.LinkMapKey, &links); err != nil {
		return "", err
	}
	links[key] = linkID
	if err := s.kv.Put(ctx, domain.LinkMapKey, links); err != nil {
		return "", err
	}
	return linkID, nil
}

func (s *Service) SweepOverdue(ctx context.Context) error {
	now := s.clock.Now()
	today := now.UTC().Format(dateLayout)

	notices := map[string]string{}
	if _, err := s.kv.Get(ctx, overdueNoticesKey, &notices); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := make([]domain.Invoice, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	changed := false
	for _, inv := range snapshot {
		if !inv.Overdue(now) || notices[inv.InvoiceNumber] == today {
			continue
		}
		if err := s.activity.Record(ctx, activitydomain.TypeOverdue, inv.InvoiceNumber, inv.RemainingCents(), "Invoice overdue"); err != nil {
			s.log.Warn("record overdue activity",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			continue
		}
		notices[inv.InvoiceNumber] = today
		changed = true
	}
	if !changed {
		return nil
	}
	return s.kv.Put(ctx, overdueNoticesKey, notices)
}

func (s *Service) RemoveByCustomer(ctx context.Context, customerID int64) error {
	s.mu.Lock()
	kept := s.items[:0]
	var removed []int64
	for _, inv := range s.items {
		if inv.CustomerID == customerID {
			removed = append(removed, inv.InvoiceID)
			continue
		}
		kept = append(kept, inv)
	}
	s.items = kept
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}

	links := map[string]string{}
	found, err := s.kv.Get(ctx, domain.LinkMapKey, &links)
	if err != nil || !found {
		return err
	}
	for _, id := range removed {
		delete(links, strconv.FormatInt(id, 10))
	}
	return s.kv.Put(ctx, domain.LinkMapKey, links)
}

func (s *Service) indexOfLocked(invoiceID int64) int {
	for i := range s.items {
		if s.items[i].InvoiceID == invoiceID {
			return i
		}
	}
	return -1
}
