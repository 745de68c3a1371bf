package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
)

// The platform speaks float dollars on the wire; local ledgers keep
// amounts in cents. Conversion happens only at this boundary.

func Dollars(cents int64) float64 {
	return float64(cents) / 100
}

func ToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// CustomerRequest creates a customer scoped to the configured entry
// point. Field casing follows the platform's payload contract.
type CustomerRequest struct {
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastname"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	CustomerNumber   string   `json:"customerNumber"`
	Company          string   `json:"company,omitempty"`
	Address          string   `json:"address,omitempty"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	Zip              string   `json:"zip,omitempty"`
	Country          string   `json:"country"`
	IdentifierFields []string `json:"identifierFields"`
	CustomerStatus   int      `json:"customerStatus"`
}

// CustomerResponse mirrors the platform's creation result. The platform
// capitalizes contact fields inconsistently with its request contract.
type CustomerResponse struct {
	CustomerID     int64  `json:"customerId"`
	CustomerNumber string `json:"customerNumber"`
	FirstName      string `json:"Firstname"`
	LastName       string `json:"Lastname"`
	Email          string `json:"Email"`
	Company        string `json:"Company"`
	Phone          string `json:"Phone"`
	Address        string `json:"Address"`
	City           string `json:"City"`
	State          string `json:"State"`
	Zip            string `json:"Zip"`
}

type CustomerUpdateRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastname"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Company        string `json:"company,omitempty"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Zip            string `json:"zip,omitempty"`
	Country        string `json:"country"`
	CustomerStatus int    `json:"customerStatus"`
}

type InvoiceItem struct {
	ItemProductName string  `json:"itemProductName"`
	ItemDescription string  `json:"itemDescription"`
	ItemQty         float64 `json:"itemQty"`
	ItemCost        float64 `json:"itemCost"`
	ItemTotalAmount float64 `json:"itemTotalAmount"`
	ItemMode        int     `json:"itemMode"`
}

type InvoiceCustomerData struct {
	CustomerID int64  `json:"customerId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Company    string `json:"company,omitempty"`
}

type InvoiceData struct {
	InvoiceNumber  string        `json:"invoiceNumber"`
	InvoiceDate    string        `json:"invoiceDate"`
	InvoiceDueDate string        `json:"invoiceDueDate,omitempty"`
	InvoiceAmount  float64       `json:"invoiceAmount"`
	Discount       float64       `json:"discount"`
	InvoiceType    int           `json:"invoiceType"`
	InvoiceStatus  int           `json:"invoiceStatus"`
	Frequency      string        `json:"frequency"`
	PaymentTerms   string        `json:"paymentTerms,omitempty"`
	Items          []InvoiceItem `json:"items"`
}

type InvoiceRequest struct {
	CustomerData InvoiceCustomerData `json:"customerData"`
	InvoiceData  InvoiceData         `json:"invoiceData"`
}

// InvoiceQuery pages through the platform's invoice records.
type InvoiceQuery struct {
	FromRecord  int
	LimitRecord int
	SortBy      string
	Parameters  map[string]string
}

// ChargeRequest is the getpaid payload. Charges redeem the one-time
// method token produced by the embedded capture component.
type ChargeRequest struct {
	PaymentDetails ChargePaymentDetails `json:"paymentDetails"`
	PaymentMethod  ChargePaymentMethod  `json:"paymentMethod"`
	CustomerData   ChargeCustomerData   `json:"customerData"`
	EntryPoint     string               `json:"entryPoint"`
	IPAddress      string               `json:"ipaddress"`
	InvoiceData    ChargeInvoiceData    `json:"invoiceData"`
}

type ChargePaymentDetails struct {
	TotalAmount float64 `json:"totalAmount"`
	ServiceFee  float64 `json:"serviceFee"`
}

type ChargePaymentMethod struct {
	Method         string `json:"method"`
	Initiator      string `json:"initiator"`
	StoredMethodID string `json:"storedMethodId"`
}

type ChargeCustomerData struct {
	CustomerID      int64  `json:"customerId"`
	BillingAddress1 string `json:"billingAddress1"`
	BillingCity     string `json:"billingCity"`
	BillingCountry  string `json:"billingCountry"`
	BillingEmail    string `json:"billingEmail"`
	BillingPhone    string `json:"billingPhone"`
	BillingZip      string `json:"billingZip"`
	BillingState    string `json:"billingState"`
	Company         string `json:"company"`
}

type ChargeInvoiceData struct {
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	InvoiceAmount    float64 `json:"invoiceAmount"`
	InvoiceDate      string  `json:"invoiceDate"`
	InvoiceDueDate   string  `json:"invoiceDueDate"`
	InvoiceNumber    string  `json:"invoiceNumber"`
	ShippingAddress1 string  `json:"shippingAddress1"`
	ShippingCity     string  `json:"shippingCity"`
	ShippingEmail    string  `json:"shippingEmail"`
	ShippingCountry  string  `json:"shippingCountry"`
	ShippingPhone    string  `json:"shippingPhone"`
	ShippingState    string  `json:"shippingState"`
	ShippingZip      string  `json:"shippingZip"`
	Company          string  `json:"company"`
}

// ChargeApprovedCode is the only approval code in the charge API's code
// scheme; any other value is a decline or error.
const ChargeApprovedCode = "A0000"

type ChargeResponse struct {
	Code        string     `json:"code"`
	Explanation string     `json:"explanation"`
	Reason      string     `json:"reason"`
	Data        ChargeData `json:"data"`
}

type ChargeData struct {
	PaymentTransID string            `json:"PaymentTransId"`
	PaymentData    ChargePaymentData `json:"PaymentData"`
}

type ChargePaymentData struct {
	AccountType   string  `json:"AccountType"`
	MaskedAccount string  `json:"MaskedAccount"`
	BinData       BinData `json:"binData"`
}

type BinData struct {
	BinCardType string `json:"binCardType"`
}

func (r *ChargeResponse) Approved() bool {
	return r.Code == ChargeApprovedCode
}

// DeclineMessage returns the platform's explanation for a non-approved
// charge, preferring the more specific field.
func (r *ChargeResponse) DeclineMessage() string {
	if r.Explanation != "" {
		return r.Explanation
	}
	if r.Reason != "" {
		return r.Reason
	}
	return "payment processing failed"
}

// PaymentLinkPush delivers an existing payment link over a channel.
type PaymentLinkPush struct {
	Channel          string   `json:"channel"`
	AdditionalEmails []string `json:"additionalEmails,omitempty"`
	AttachFile       bool     `json:"attachFile,omitempty"`
}

// StatPoint is one bucket of the platform's basic statistics series.
type StatPoint struct {
	StatX                string  `json:"statX"`
	InTransactions       float64 `json:"inTransactions"`
	InTransactionsVolume float64 `json:"inTransactionsVolume"`
}

func (g *Gateway) entryPoint(ctx context.Context) (string, error) {
	creds, err := g.creds.Get(ctx)
	if err != nil {
		return "", err
	}
	return creds.EntryPoint, nil
}

// CreateCustomer registers the customer remotely and returns the
// platform-assigned identity.
func (g *Gateway) CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	entryPoint, err := g.entryPoint(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := g.Enqueue(ctx, http.MethodPost, "/api/Customer/single/"+entryPoint, req)
	if err != nil {
		return nil, err
	}
	env, err := DecodeEnvelope(reply)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	var data CustomerResponse
	if err := env.DecodeData(&data); err != nil {
		return nil, fmt.Errorf("decode customer data: %w", err)
	}
	return &data, nil
}

func (g *Gateway) UpdateCustomer(ctx context.Context, customerID int64, req CustomerUpdateRequest) error {
	reply, err := g.Enqueue(ctx, http.MethodPut, "/api/customer/"+strconv.FormatInt(customerID, 10), req)
	if err != nil {
		return err
	}
	env, err := DecodeEnvelope(reply)
	if err != nil {
		return err
	}
	return env.Err()
}

func (g *Gateway) DeleteCustomer(ctx context.Context, customerID int64) error {
	reply, err := g.Enqueue(ctx, http.MethodDelete, "/api/customer/"+strconv.FormatInt(customerID, 10), nil)
	if err != nil {
		return err
	}
	env, err := DecodeEnvelope(reply)
	if err != nil {
		return err
	}
	return env.Err()
}

// CreateInvoice registers the invoice remotely and returns the
// platform-assigned invoice id.
func (g *Gateway) CreateInvoice(ctx context.Context, req InvoiceRequest) (int64, error) {
	entryPoint, err := g.entryPoint(ctx)
	if err != nil {
		return 0, err
	}
	reply, err := g.Enqueue(ctx, http.MethodPost, "/api/Invoice/"+entryPoint, req)
	if err != nil {
		return 0, err
	}
	env, err := DecodeEnvelope(reply)
	if err != nil {
		return 0, err
	}
	if err := env.Err(); err != nil {
		return 0, err
	}
	var invoiceID int64
	if err := env.DecodeData(&invoiceID); err != nil {
		return 0, fmt.Errorf("decode invoice id: %w", err)
	}
	return invoiceID, nil
}

// QueryInvoices pages the platform's invoice records. The records keep
// their wire shape; local state is the display source of truth.
func (g *Gateway) QueryInvoices(ctx context.Context, q InvoiceQuery) (json.RawMessage, error) {
	entryPoint, err := g.entryPoint(ctx)
	if err != nil {
		return nil, err
	}

	if q.LimitRecord <= 0 {
		q.LimitRecord = 100
	}
	if q.SortBy == "" {
		q.SortBy = "desc(invoiceDate)"
	}

	params := url.Values{}
	params.Set("fromRecord", strconv.Itoa(q.FromRecord))
	params.Set("limitRecord", strconv.Itoa(q.LimitRecord))
	params.Set("sortBy", q.SortBy)
	if len(q.Parameters) > 0 {
		raw, err := json.Marshal(q.Parameters)
		if err != nil {
			return nil, err
		}
		params.Set("parameters", string(raw))
	}

	reply, err := g.Enqueue(ctx, http.MethodGet, "/api/Query/invoices/"+entryPoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if reply.Status < 200 || reply.Status > 299 {
		return nil, fmt.Errorf("remote status %d", reply.Status)
	}
	return json.RawMessage(reply.Body), nil
}

// Charge redeems a one-time method token. It bypasses the queue because
// the payor is waiting on the result and the charge API has its own
// code scheme rather than the standard envelope.
func (g *Gateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	reply, err := g.Call(ctx, http.MethodPost, "/api/v2/MoneyIn/getpaid", req)
	if err != nil {
		return nil, err
	}
	var charge ChargeResponse
	if err := json.Unmarshal(reply.Body, &charge); err != nil {
		if reply.Status < 200 || reply.Status > 299 {
			return nil, fmt.Errorf("remote status %d", reply.Status)
		}
		return nil, fmt.Errorf("decode charge response: %w", err)
	}
	return &charge, nil
}

// GetTransaction fetches a transaction record by id.
func (g *Gateway) GetTransaction(ctx context.Context, transactionID string) (json.RawMessage, error) {
	reply, err := g.Enqueue(ctx, http.MethodGet, "/api/Transaction/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return nil, err
	}
	if reply.Status < 200 || reply.Status > 299 {
		return nil, fmt.Errorf("remote status %d", reply.Status)
	}
	return json.RawMessage(reply.Body), nil
}

// CreatePaymentLink builds a hosted payment page for the invoice. The
// platform rejects a second create with CodeResourceExists; callers
// resolve that against their stored link map.
func (g *Gateway) CreatePaymentLink(ctx context.Context, invoiceID int64, req PaymentLinkRequest) (string, error) {
	reply, err := g.Enqueue(ctx, http.MethodPost, "/api/PaymentLink/"+strconv.FormatInt(invoiceID, 10), req)
	if err != nil {
		return "", err
	}
	env, err := DecodeEnvelope(reply)
	if err != nil {
		return "", err
	}
	if err := env.Err(); err != nil {
		return "", err
	}
	var linkID string
	if err := env.DecodeData(&linkID); err != nil {
		return "", fmt.Errorf("decode payment link id: %w", err)
	}
	return linkID, nil
}

// SendPaymentLink pushes an existing link over email or sms.
func (g *Gateway) SendPaymentLink(ctx context.Context, linkID string, push PaymentLinkPush) error {
	reply, err := g.Enqueue(ctx, http.MethodPost, "/api/PaymentLink/push/"+url.PathEscape(linkID), push)
	if err != nil {
		return err
	}
	env, err := DecodeEnvelope(reply)
	if err != nil {
		return err
	}
	return env.Err()
}

// FetchStatistics returns the paypoint-level basic statistics series.
// mode selects the window (d30, m12, ytd, ...), freq the bucket size
// (d, w, m, h).
func (g *Gateway) FetchStatistics(ctx context.Context, mode, freq string) ([]StatPoint, error) {
	creds, err := g.creds.Get(ctx)
	if err != nil {
		return nil, err
	}
	if creds.EntryID == "" {
		return nil, fmt.Errorf("entry id not configured")
	}

	// Level 2 scopes the series to the paypoint.
	path := fmt.Sprintf("/api/Statistic/basic/%s/%s/2/%s", url.PathEscape(mode), url.PathEscape(freq), url.PathEscape(creds.EntryID))
	reply, err := g.Enqueue(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if reply.Status < 200 || reply.Status > 299 {
		return nil, fmt.Errorf("remote status %d", reply.Status)
	}
	var points []StatPoint
	if err := json.Unmarshal(reply.Body, &points); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}
	return points, nil
}
