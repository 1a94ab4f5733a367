package domain

// Address is a postal address for billing or shipping.
type Address struct {
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	StateCode   string `json:"state_code,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// BankDetails is the seller's banking block used for payment instructions.
type BankDetails struct {
	BankName    string `json:"bank_name,omitempty"`
	Branch      string `json:"branch,omitempty"`
	AccountName string `json:"account_name,omitempty"`
	AccountNo   string `json:"account_no,omitempty"`
	IFSC        string `json:"ifsc,omitempty"`
	SWIFT       string `json:"swift,omitempty"`
	IBAN        string `json:"iban,omitempty"`
	UPIID       string `json:"upi_id,omitempty"`
}

// TaxPreferences holds seller-side GST settings.
type TaxPreferences struct {
	PlaceOfSupply string `json:"place_of_supply,omitempty"`
	ReverseCharge bool   `json:"reverse_charge"`
	EInvoice      bool   `json:"e_invoice"`
}

// Branding carries presentation hints; the backend passes them through untouched.
type Branding struct {
	LogoURL     string `json:"logo_url,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
	FooterText  string `json:"footer_text,omitempty"`
}

// PartyBase holds the fields shared by seller and buyer profiles.
type PartyBase struct {
	Name          string   `json:"name" binding:"required,min=2,max=120"`
	ContactPerson string   `json:"contact_person,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Website       string   `json:"website,omitempty"`
	GSTIN         string   `json:"gstin,omitempty"`
	PAN           string   `json:"pan,omitempty"`
	Notes         string   `json:"notes,omitempty" binding:"max=1000"`
	BillingAddr   *Address `json:"billing_address,omitempty"`
}

// SellerProfile is the issuing party ("from").
type SellerProfile struct {
	PartyBase
	CIN      string          `json:"cin,omitempty"`
	Bank     *BankDetails    `json:"bank,omitempty"`
	TaxPrefs *TaxPreferences `json:"tax_prefs,omitempty"`
	Branding *Branding       `json:"branding,omitempty"`
}

// BuyerProfile is the receiving party ("to").
type BuyerProfile struct {
	PartyBase
	ShippingAddr  *Address `json:"shipping_address,omitempty"`
	PlaceOfSupply string   `json:"place_of_supply,omitempty"`
}

// HintDocMeta pins document numbers supplied by the caller.
type HintDocMeta struct {
	DocNo string `json:"doc_no,omitempty"`
	PONo  string `json:"po_no,omitempty"`
	RefNo string `json:"ref_no,omitempty"`
}

// HintDates pins document dates (YYYY-MM-DD).
type HintDates struct {
	IssueDate string `json:"issue_date,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
	ValidTill string `json:"valid_till,omitempty"`
}

// HintItem is a caller-supplied line item; nil fields are left to defaults.
type HintItem struct {
	Description string   `json:"description,omitempty"`
	HSNSAC      string   `json:"hsn_sac,omitempty"`
	Qty         *float64 `json:"qty,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Discount    *float64 `json:"discount,omitempty"`
	TaxRate     *float64 `json:"tax_rate,omitempty"`
}

// HintTerms overrides the terms block.
type HintTerms struct {
	Title   string   `json:"title,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

// HintPayment overrides the payment block.
type HintPayment struct {
	Mode         string `json:"mode,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	UPIDeeplink  string `json:"upi_deeplink,omitempty"`
}

// GenerationHints are optional caller preferences merged into model output.
type GenerationHints struct {
	DocMeta *HintDocMeta `json:"doc_meta,omitempty"`
	Dates   *HintDates   `json:"dates,omitempty"`
	Items   []HintItem   `json:"items,omitempty"`
	Terms   *HintTerms   `json:"terms,omitempty"`
	Payment *HintPayment `json:"payment,omitempty"`
}

// GenerationRequest is the payload accepted by the per-document generation endpoints.
type GenerationRequest struct {
	To          BuyerProfile     `json:"to" binding:"required"`
	From        SellerProfile    `json:"from" binding:"required"`
	Currency    string           `json:"currency,omitempty"`
	Locale      string           `json:"locale,omitempty"`
	Requirement string           `json:"requirement" binding:"required,min=3"`
	Hints       *GenerationHints `json:"hints,omitempty"`
	WorkspaceID string           `json:"workspace_id,omitempty"`
}

// Seller returns the issuing party.
func (r *GenerationRequest) Seller() *SellerProfile { return &r.From }

// Buyer returns the receiving party.
func (r *GenerationRequest) Buyer() *BuyerProfile { return &r.To }

// CurrencyOrDefault returns the request currency, INR when unset.
func (r *GenerationRequest) CurrencyOrDefault() string {
	if r.Currency == "" {
		return DefaultCurrency
	}
	return r.Currency
}

// LocaleOrDefault returns the request locale, en-IN when unset.
func (r *GenerationRequest) LocaleOrDefault() string {
	if r.Locale == "" {
		return DefaultLocale
	}
	return r.Locale
}

// DraftRequest is the payload accepted by the bundle drafting endpoint.
type DraftRequest struct {
	Prompt      string            `json:"prompt" binding:"required,min=5"`
	Prefer      []string          `json:"prefer,omitempty"`
	Currency    string            `json:"currency,omitempty"`
	Defaults    map[string]string `json:"defaults,omitempty"`
	BuyerHint   string            `json:"buyer_hint,omitempty"`
	Provider    string            `json:"provider,omitempty"`
	Model       string            `json:"model,omitempty"`
	WorkspaceID string            `json:"workspace_id,omitempty"`
}

// Party is the minimal party block printed on a generated document.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
	PAN     string `json:"pan,omitempty"`
}

// DocMeta carries document reference numbers.
type DocMeta struct {
	DocNo string `json:"doc_no,omitempty"`
	RefNo string `json:"ref_no,omitempty"`
	PONo  string `json:"po_no,omitempty"`
}

// Item is a single line item.
type Item struct {
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
	Unit        string  `json:"unit"`
	Discount    float64 `json:"discount"`
	TaxRate     float64 `json:"tax_rate"`
	HSNSAC      string  `json:"hsn_sac,omitempty"`
}

// Totals are always recomputed from line items; model-supplied values are advisory.
type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discount_total"`
	TaxTotal      float64 `json:"tax_total"`
	Shipping      float64 `json:"shipping"`
	RoundOff      float64 `json:"round_off"`
	GrandTotal    float64 `json:"grand_total"`
	AmountInWords string  `json:"amount_in_words,omitempty"`
}

// Terms is the terms & conditions block; Bullets is never empty after normalization.
type Terms struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Payment is the payment block.
type Payment struct {
	Mode         string `json:"mode,omitempty"`
	UPIDeeplink  string `json:"upi_deeplink,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// GSTBreakup splits tax_total into CGST+SGST (intra-state) or IGST (inter-state).
type GSTBreakup struct {
	Mode          string  `json:"mode,omitempty"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
	IGST          float64 `json:"igst"`
	PlaceOfSupply string  `json:"place_of_supply,omitempty"`
}

// QuotationDates are the dates printed on a quotation.
type QuotationDates struct {
	IssueDate string `json:"issue_date"`
	ValidTill string `json:"valid_till"`
}

// InvoiceDates are the dates printed on a tax invoice.
type InvoiceDates struct {
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`
}

// QuotationOutput is a normalized quotation.
type QuotationOutput struct {
	DocType  string         `json:"doc_type"`
	Currency string         `json:"currency"`
	Locale   string         `json:"locale"`
	Seller   Party          `json:"seller"`
	Buyer    Party          `json:"buyer"`
	DocMeta  *DocMeta       `json:"doc_meta,omitempty"`
	Dates    QuotationDates `json:"dates"`
	Items    []Item         `json:"items"`
	Totals   Totals         `json:"totals"`
	Terms    Terms          `json:"terms"`
	Notes    string         `json:"notes,omitempty"`
	Payment  *Payment       `json:"payment,omitempty"`
}

// TaxInvoiceOutput is a normalized tax invoice; DocMeta.DocNo is always set.
type TaxInvoiceOutput struct {
	DocType  string       `json:"doc_type"`
	Currency string       `json:"currency"`
	Locale   string       `json:"locale"`
	Seller   Party        `json:"seller"`
	Buyer    Party        `json:"buyer"`
	DocMeta  DocMeta      `json:"doc_meta"`
	Dates    InvoiceDates `json:"dates"`
	Items    []Item       `json:"items"`
	Totals   Totals       `json:"totals"`
	Terms    Terms        `json:"terms"`
	Notes    string       `json:"notes,omitempty"`
	Payment  *Payment     `json:"payment,omitempty"`
	GST      *GSTBreakup  `json:"gst,omitempty"`
}

// DraftDates is the loose date block used by bundle drafts.
type DraftDates struct {
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date,omitempty"`
	ValidTill string `json:"valid_till,omitempty"`
}

// DocDraft is one quotation or invoice inside a bundle.
type DocDraft struct {
	DocType  string     `json:"doc_type"`
	Locale   string     `json:"locale"`
	Currency string     `json:"currency"`
	Seller   Party      `json:"seller"`
	Buyer    Party      `json:"buyer"`
	DocMeta  *DocMeta   `json:"doc_meta,omitempty"`
	Dates    DraftDates `json:"dates"`
	Items    []Item     `json:"items"`
	Totals   Totals     `json:"totals"`
	Terms    Terms      `json:"terms"`
	Notes    string     `json:"notes,omitempty"`
	Payment  *Payment   `json:"payment,omitempty"`
}
