package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	activitydomain "github.com/smallbiznis/fieldbill/internal/activity/domain"
	"github.com/smallbiznis/fieldbill/internal/clock"
	"github.com/smallbiznis/fieldbill/internal/config"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"github.com/smallbiznis/fieldbill/internal/invoice/domain"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	invoices   []gateway.InvoiceRequest
	nextID     int64
	createErr  error
	linkErr    error
	links      []int64
	linkID     string
	pushes     []gateway.PaymentLinkPush
	pushedLink []string
}

func (f *fakeAPI) CreateInvoice(ctx context.Context, req gateway.InvoiceRequest) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.invoices = append(f.invoices, req)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeAPI) CreatePaymentLink(ctx context.Context, invoiceID int64, req gateway.PaymentLinkRequest) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	f.links = append(f.links, invoiceID)
	if f.linkID == "" {
		f.linkID = "link-1"
	}
	return f.linkID, nil
}

func (f *fakeAPI) SendPaymentLink(ctx context.Context, linkID string, push gateway.PaymentLinkPush) error {
	f.pushedLink = append(f.pushedLink, linkID)
	f.pushes = append(f.pushes, push)
	return nil
}

type fakeCreds struct{ configured bool }

func (f *fakeCreds) Get(ctx context.Context) (credsdomain.Credentials, error) {
	return credsdomain.Credentials{}, nil
}

func (f *fakeCreds) Set(ctx context.Context, patch credsdomain.Patch) (credsdomain.Credentials, error) {
	return credsdomain.Credentials{}, nil
}

func (f *fakeCreds) Clear(ctx context.Context) error { return nil }

func (f *fakeCreds) IsConfigured(ctx context.Context) (bool, error) { return f.configured, nil }

type recordedEvent struct {
	Type          string
	InvoiceNumber string
	AmountCents   int64
	Detail        string
}

type fakeActivity struct {
	events []recordedEvent
}

func (f *fakeActivity) Record(ctx context.Context, typ, invoiceNumber string, amountCents int64, detail string) error {
	f.events = append(f.events, recordedEvent{typ, invoiceNumber, amountCents, detail})
	return nil
}

func (f *fakeActivity) List(ctx context.Context) ([]activitydomain.Event, error) { return nil, nil }

func (f *fakeActivity) Clear(ctx context.Context) error { return nil }

func testCustomer() customerdomain.Customer {
	return customerdomain.Customer{
		CustomerID: 7,
		FirstName:  "Dana",
		LastName:   "Reyes",
		Email:      "dana@example.com",
	}
}

func newService(t *testing.T, api *fakeAPI) (*Service, *fakeActivity, *clock.FakeClock, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemory()
	feed := &fakeActivity{}
	fc := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		Log:      zap.NewNop(),
		Clock:    fc,
		KV:       kv,
		API:      api,
		Creds:    &fakeCreds{configured: true},
		Activity: feed,
		Cfg:      config.Config{PublicBaseURL: "https://pay.example.com"},
	}).(*Service)
	return svc, feed, fc, kv
}

func oneItem() []domain.ItemInput {
	return []domain.ItemInput{{Description: "Service call", Qty: 1, CostCents: 10000}}
}

func TestCreateBuildsRemotePayload(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _, _ := newService(t, api)

	inv, err := svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Customer:     testCustomer(),
		PaymentTerms: domain.TermsNet30,
		Items: []domain.ItemInput{
			{ProductName: "Labor", Description: "Service call", Qty: 2, CostCents: 7500},
			{Description: "Parts", Qty: 1, CostCents: 2599},
		},
	})
	require.NoError(t, err)

	require.Len(t, api.invoices, 1)
	sent := api.invoices[0].InvoiceData
	assert.InDelta(t, 175.99, sent.InvoiceAmount, 1e-9)
	assert.Equal(t, "onetime", sent.Frequency)
	assert.Equal(t, domain.StatusActive, sent.InvoiceStatus)
	assert.Equal(t, "2026-03-15", sent.InvoiceDate)
	assert.Equal(t, "2026-04-14", sent.InvoiceDueDate)
	require.Len(t, sent.Items, 2)
	assert.InDelta(t, 150.0, sent.Items[0].ItemTotalAmount, 1e-9)
	assert.Equal(t, 1, sent.Items[0].ItemMode)

	assert.Equal(t, int64(17599), inv.AmountCents)
	assert.Equal(t, "Dana Reyes", inv.CustomerName)
	assert.Regexp(t, regexp.MustCompile(`^INV-2026-0315-\d{6}$`), inv.InvoiceNumber)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _, _ := newService(t, &fakeAPI{})
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer()})
	assert.ErrorIs(t, err, domain.ErrNoItems)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		Customer: testCustomer(),
		Items:    []domain.ItemInput{{Description: "", Qty: 1, CostCents: 100}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		Customer: testCustomer(),
		Items:    []domain.ItemInput{{Description: "x", Qty: 0, CostCents: 100}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		Customer:      testCustomer(),
		Items:         oneItem(),
		DiscountCents: 20000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{Items: oneItem()})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestDueDateTerms(t *testing.T) {
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), dueDate(date, domain.TermsNet30))
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), dueDate(date, domain.TermsEndOfMonth))
	assert.Equal(t, date, dueDate(date, domain.TermsUponReceipt))
	assert.Equal(t, date, dueDate(date, ""))
}

func TestInvoiceNumberCollisionProbe(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _, _ := newService(t, api)

	draws := []int{111111, 111111, 222222}
	svc.randDigits = func() int {
		d := draws[0]
		if len(draws) > 1 {
			draws = draws[1:]
		}
		return d
	}

	first, err := svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Customer: testCustomer(), Items: oneItem(),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0315-111111", first.InvoiceNumber)

	second, err := svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Customer: testCustomer(), Items: oneItem(),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0315-222222", second.InvoiceNumber)
}

func TestApplyPaymentRollsStatusForward(t *testing.T) {
	svc, _, _, _ := newService(t, &fakeAPI{})
	ctx := context.Background()

	inv, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.NoError(t, err)
	require.Equal(t, int64(10000), inv.AmountCents)

	partial, err := svc.ApplyPayment(ctx, inv.InvoiceID, 4000, "card", "visa", "X1111")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyPaid, partial.Status)
	assert.Equal(t, int64(6000), partial.RemainingCents())
	assert.Equal(t, "visa", partial.CardType)

	paid, err := svc.ApplyPayment(ctx, inv.InvoiceID, 6000, "card", "visa", "X1111")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	assert.Zero(t, paid.RemainingCents())
}

func TestApplyPaymentRejectsInvalidAmount(t *testing.T) {
	svc, _, _, _ := newService(t, &fakeAPI{})
	_, err := svc.ApplyPayment(context.Background(), 1, 0, "card", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestSendCreatesLinkAndPushesEmail(t *testing.T) {
	api := &fakeAPI{linkID: "link-abc"}
	svc, feed, _, kv := newService(t, api)
	ctx := context.Background()

	inv, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.NoError(t, err)

	require.NoError(t, svc.Send(ctx, domain.SendInvoiceRequest{
		InvoiceID: inv.InvoiceID,
		Channel:   domain.ChannelEmail,
		Email:     "dana@example.com",
	}))

	require.Len(t, api.pushes, 1)
	assert.Equal(t, []string{"link-abc"}, api.pushedLink)
	push := api.pushes[0]
	assert.Equal(t, domain.ChannelEmail, push.Channel)
	assert.Equal(t, []string{"dana@example.com"}, push.AdditionalEmails)
	assert.True(t, push.AttachFile)

	links := map[string]string{}
	found, err := kv.Get(ctx, domain.LinkMapKey, &links)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "link-abc", links[strconv.FormatInt(inv.InvoiceID, 10)])

	require.Len(t, feed.events, 1)
	assert.Equal(t, activitydomain.TypeEmailSent, feed.events[0].Type)
	assert.Equal(t, inv.InvoiceNumber, feed.events[0].InvoiceNumber)
}

func TestSendReusesStoredLinkOnResourceExists(t *testing.T) {
	api := &fakeAPI{}
	svc, feed, _, kv := newService(t, api)
	ctx := context.Background()

	inv, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.NoError(t, err)

	key := strconv.FormatInt(inv.InvoiceID, 10)
	require.NoError(t, kv.Put(ctx, domain.LinkMapKey, map[string]string{key: "link-existing"}))
	api.linkErr = &gateway.RemoteError{Code: gateway.CodeResourceExists, Message: "exists"}

	require.NoError(t, svc.Send(ctx, domain.SendInvoiceRequest{
		InvoiceID: inv.InvoiceID,
		Channel:   domain.ChannelSMS,
	}))

	assert.Equal(t, []string{"link-existing"}, api.pushedLink)
	assert.Equal(t, domain.ChannelSMS, api.pushes[0].Channel)
	assert.Empty(t, api.pushes[0].AdditionalEmails)

	require.Len(t, feed.events, 1)
	assert.Equal(t, activitydomain.TypeSMSSent, feed.events[0].Type)
}

func TestSendFailsWhenExistingLinkUnknownLocally(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _, _ := newService(t, api)
	ctx := context.Background()

	inv, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.NoError(t, err)

	api.linkErr = &gateway.RemoteError{Code: gateway.CodeResourceExists}
	err = svc.Send(ctx, domain.SendInvoiceRequest{InvoiceID: inv.InvoiceID, Channel: domain.ChannelSMS})
	require.Error(t, err)
	assert.Empty(t, api.pushes)
}

func TestSendChannelValidation(t *testing.T) {
	svc, _, _, _ := newService(t, &fakeAPI{})
	ctx := context.Background()

	err := svc.Send(ctx, domain.SendInvoiceRequest{InvoiceID: 1, Channel: "fax"})
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)

	err = svc.Send(ctx, domain.SendInvoiceRequest{InvoiceID: 1, Channel: domain.ChannelEmail, Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)
}

func TestCancelRecordsActivityOnce(t *testing.T) {
	svc, feed, _, _ := newService(t, &fakeAPI{})
	ctx := context.Background()

	inv, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, inv.InvoiceID)
	require.NoError(t, err)

	require.Len(t, feed.events, 1)
	assert.Equal(t, activitydomain.TypeInvoiceCancelled, feed.events[0].Type)

	_, err = svc.ApplyPayment(ctx, inv.InvoiceID, 100, "card", "", "")
	assert.ErrorIs(t, err, domain.ErrCancelled)
}

func TestSweepOverdueRecordsOncePerDay(t *testing.T) {
	svc, feed, fc, _ := newService(t, &fakeAPI{})
	ctx := context.Background()

	inv, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.NoError(t, err)

	// Not yet due.
	require.NoError(t, svc.SweepOverdue(ctx))
	assert.Empty(t, feed.events)

	fc.Advance(48 * time.Hour)
	require.NoError(t, svc.SweepOverdue(ctx))
	require.NoError(t, svc.SweepOverdue(ctx))
	require.Len(t, feed.events, 1)
	assert.Equal(t, activitydomain.TypeOverdue, feed.events[0].Type)
	assert.Equal(t, inv.InvoiceNumber, feed.events[0].InvoiceNumber)

	fc.Advance(24 * time.Hour)
	require.NoError(t, svc.SweepOverdue(ctx))
	assert.Len(t, feed.events, 2)
}

func TestRemoveByCustomerPurgesLedgerAndLinks(t *testing.T) {
	api := &fakeAPI{linkID: "link-1"}
	svc, _, _, kv := newService(t, api)
	ctx := context.Background()

	mine, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.NoError(t, err)

	other := testCustomer()
	other.CustomerID = 99
	theirs, err := svc.Create(ctx, domain.CreateInvoiceRequest{Customer: other, Items: oneItem()})
	require.NoError(t, err)

	require.NoError(t, svc.Send(ctx, domain.SendInvoiceRequest{InvoiceID: mine.InvoiceID, Channel: domain.ChannelSMS}))

	require.NoError(t, svc.RemoveByCustomer(ctx, 7))

	_, err = svc.Get(ctx, mine.InvoiceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Get(ctx, theirs.InvoiceID)
	assert.NoError(t, err)

	links := map[string]string{}
	_, err = kv.Get(ctx, domain.LinkMapKey, &links)
	require.NoError(t, err)
	assert.NotContains(t, links, strconv.FormatInt(mine.InvoiceID, 10))
}

func TestCreateRemoteFailureLeavesLedgerUntouched(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("remote down")}
	svc, _, _, _ := newService(t, api)

	_, err := svc.Create(context.Background(), domain.CreateInvoiceRequest{Customer: testCustomer(), Items: oneItem()})
	require.Error(t, err)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
