package gateway

// PaymentLinkRequest configures the hosted payment page built for an
// invoice. The platform treats every section as optional page layout;
// DefaultPaymentLinkRequest reproduces the layout this product ships.
type PaymentLinkRequest struct {
	ContactUs           LinkContactUs       `json:"contactUs"`
	Invoices            LinkInvoices        `json:"invoices"`
	Logo                LinkSection         `json:"logo"`
	MessageBeforePaying LinkLabeledSection  `json:"messageBeforePaying"`
	Notes               LinkNotes           `json:"notes"`
	Page                LinkPage            `json:"page"`
	PaymentButton       LinkLabeledSection  `json:"paymentButton"`
	PaymentMethods      LinkPaymentMethods  `json:"paymentMethods"`
	Review              LinkHeaderSection   `json:"review"`
	Settings            LinkSettings        `json:"settings"`
	ScheduledOptions    LinkScheduledOption `json:"scheduledOptions"`
}

type LinkSection struct {
	Enabled bool `json:"enabled"`
	Order   int  `json:"order"`
}

type LinkLabeledSection struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
	Order   int    `json:"order"`
}

type LinkHeaderSection struct {
	Enabled bool   `json:"enabled"`
	Header  string `json:"header"`
	Order   int    `json:"order"`
}

type LinkContactUs struct {
	EmailLabel   string `json:"emailLabel"`
	Enabled      bool   `json:"enabled"`
	Header       string `json:"header"`
	Order        int    `json:"order"`
	PaymentIcons bool   `json:"paymentIcons"`
	PhoneLabel   string `json:"phoneLabel"`
}

type LinkInvoices struct {
	Enabled            bool               `json:"enabled"`
	InvoiceLink        LinkLabeledSection `json:"invoiceLink"`
	Order              int                `json:"order"`
	ViewInvoiceDetails LinkLabeledSection `json:"viewInvoiceDetails"`
}

type LinkNotes struct {
	Enabled     bool   `json:"enabled"`
	Header      string `json:"header"`
	Order       int    `json:"order"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

type LinkPage struct {
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	Header      string `json:"header"`
	Order       int    `json:"order"`
}

type LinkPaymentMethods struct {
	AllMethodsChecked bool            `json:"allMethodsChecked"`
	Enabled           bool            `json:"enabled"`
	Header            string          `json:"header"`
	Methods           LinkMethods     `json:"methods"`
	Order             int             `json:"order"`
	Settings          LinkWalletSetup `json:"settings"`
}

type LinkMethods struct {
	Amex       bool `json:"amex"`
	ApplePay   bool `json:"applePay"`
	Discover   bool `json:"discover"`
	ECheck     bool `json:"eCheck"`
	GooglePay  bool `json:"googlePay"`
	Mastercard bool `json:"mastercard"`
	Visa       bool `json:"visa"`
}

type LinkWalletSetup struct {
	ApplePay  LinkApplePay  `json:"applePay"`
	GooglePay LinkGooglePay `json:"googlePay"`
}

type LinkApplePay struct {
	ButtonStyle string `json:"buttonStyle"`
	ButtonType  string `json:"buttonType"`
	Language    string `json:"language"`
}

type LinkGooglePay struct {
	ButtonColor string `json:"buttonColor"`
	ButtonType  string `json:"buttonType"`
	MerchantID  string `json:"merchantId"`
}

type LinkSettings struct {
	Color                   string `json:"color"`
	Language                string `json:"language"`
	RedirectAfterApprove    bool   `json:"redirectAfterApprove"`
	RedirectAfterApproveURL string `json:"redirectAfterApproveUrl"`
}

type LinkScheduledOption struct {
	IncludePayLink bool `json:"includePayLink"`
}

// DefaultPaymentLinkRequest returns the hosted page layout used when
// sending invoices. redirectURL is where the payor lands after approval.
func DefaultPaymentLinkRequest(redirectURL string) PaymentLinkRequest {
	return PaymentLinkRequest{
		ContactUs: LinkContactUs{
			EmailLabel:   "Email",
			Enabled:      true,
			Header:       "Contact Us",
			PaymentIcons: true,
			PhoneLabel:   "Phone",
		},
		Invoices: LinkInvoices{
			Enabled:            true,
			InvoiceLink:        LinkLabeledSection{Enabled: true, Label: "View Invoice"},
			ViewInvoiceDetails: LinkLabeledSection{Enabled: true, Label: "Invoice Details"},
		},
		Logo: LinkSection{Enabled: true},
		MessageBeforePaying: LinkLabeledSection{
			Enabled: true,
			Label:   "Please review your payment details",
		},
		Notes: LinkNotes{
			Enabled:     true,
			Header:      "Additional Notes",
			Placeholder: "Enter any additional notes here",
		},
		Page: LinkPage{
			Description: "Complete your payment securely",
			Enabled:     true,
			Header:      "Payment Page",
		},
		PaymentButton: LinkLabeledSection{Enabled: true, Label: "Pay Now"},
		PaymentMethods: LinkPaymentMethods{
			AllMethodsChecked: true,
			Enabled:           true,
			Header:            "Payment Methods",
			Methods: LinkMethods{
				Amex:       true,
				ApplePay:   true,
				Discover:   true,
				ECheck:     true,
				GooglePay:  true,
				Mastercard: true,
				Visa:       true,
			},
			Settings: LinkWalletSetup{
				ApplePay: LinkApplePay{
					ButtonStyle: "black",
					ButtonType:  "pay",
					Language:    "en-US",
				},
				GooglePay: LinkGooglePay{
					ButtonColor: "black",
					ButtonType:  "pay",
				},
			},
		},
		Review: LinkHeaderSection{Enabled: true, Header: "Review Payment"},
		Settings: LinkSettings{
			Color:                   "#667eea",
			Language:                "en",
			RedirectAfterApprove:    true,
			RedirectAfterApproveURL: redirectURL,
		},
		ScheduledOptions: LinkScheduledOption{IncludePayLink: true},
	}
}
