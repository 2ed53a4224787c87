package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. Draft invoices are fully editable, sent invoices are
// frozen, paid is reachable only from sent (and can be toggled back).
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
	StatusPaid  = "paid"
)

// Discount units for a line item.
const (
	DiscountPercent  = "%"
	DiscountAbsolute = "€"
)

// LineItem is one billable row of an invoice. Line items only exist as part
// of their invoice; they have no identity or persistence of their own.
type LineItem struct {
	ServiceID    int             `json:"service_id"`
	Label        string          `json:"label"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountUnit string          `json:"discount_unit,omitempty"`
	DiscountText string          `json:"discount_text,omitempty"`
	Total        decimal.Decimal `json:"total"`
}

// Invoice is the billing document aggregate. TotalAmount always equals the
// sum of the item totals, except on the import path where a caller-supplied
// total is trusted verbatim.
type Invoice struct {
	ID            int             `json:"id"`
	Owner         string          `json:"-"`
	ClientID      int             `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []LineItem      `json:"items"`
	PDFFileID     *string         `json:"pdf_file_id,omitempty"`
	SourceFileID  *string         `json:"source_file_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	// Computed fields
	ClientName *string `json:"client_name,omitempty"`
}

// InvoiceInput is used for creating/updating invoices. Item totals and the
// invoice total are always recomputed server-side.
type InvoiceInput struct {
	ClientID    int        `json:"client_id"`
	Items       []LineItem `json:"items"`
	InvoiceDate *time.Time `json:"invoice_date"`
	DueDate     *time.Time `json:"due_date"`
}

func (i *InvoiceInput) Validate() string {
	if i.ClientID <= 0 {
		return "client_id is required"
	}
	return ""
}

// ImportInvoiceInput is used for registering an externally issued invoice,
// typically an uploaded PDF. The number and total come from the paperwork
// itself and are stored as-is; the invoice starts out as sent.
type ImportInvoiceInput struct {
	ClientID      int             `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	Items         []LineItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SourceFileID  string          `json:"source_file_id"`
}

func (i *ImportInvoiceInput) Validate() string {
	if i.ClientID <= 0 {
		return "client_id is required"
	}
	if i.InvoiceNumber == "" {
		return "invoice_number is required"
	}
	if i.InvoiceDate.IsZero() {
		return "invoice_date is required"
	}
	return ""
}
