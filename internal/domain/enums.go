package domain

// DocType identifies the kind of commercial document being drafted.
type DocType string

const (
	DocTypeQuotation    DocType = "QUOTATION"
	DocTypeTaxInvoice   DocType = "TAX_INVOICE"
	DocTypeProjectBrief DocType = "PROJECT_BRIEF"
)

// DraftDocTypes are the document types allowed inside a bundle's drafts list.
var DraftDocTypes = map[DocType]bool{
	DocTypeQuotation:  true,
	DocTypeTaxInvoice: true,
}

// PaymentMode is the settlement channel printed on a document.
type PaymentMode string

const (
	PaymentModeUPI          PaymentMode = "UPI"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentModeOther        PaymentMode = "OTHER"
)

// ValidPaymentModes lists the accepted payment modes.
var ValidPaymentModes = map[PaymentMode]bool{
	PaymentModeUPI:          true,
	PaymentModeBankTransfer: true,
	PaymentModeOther:        true,
}

// GSTMode distinguishes intra-state from inter-state supply.
type GSTMode string

const (
	GSTModeIntra GSTMode = "INTRA"
	GSTModeInter GSTMode = "INTER"
)

// Shape records which JSON layout a project-brief section arrived in.
type Shape string

const (
	// ShapeLegacy is the flat layout: lists of strings, {when, percent} parts,
	// {name, start, end, fee} milestones.
	ShapeLegacy Shape = "legacy"
	// ShapeStructured is the list-of-objects layout.
	ShapeStructured Shape = "structured"
	// ShapeSections is the object layout with in_scope / out_of_scope lists.
	ShapeSections Shape = "sections"
)

const (
	DefaultCurrency = "INR"
	DefaultLocale   = "en-IN"
	DefaultUnit     = "pcs"
	DateLayout      = "2006-01-02"
)
