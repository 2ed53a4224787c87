package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/facturation/models"
)

// BuildParams carries everything needed to assemble an invoice. Zero-valued
// optional fields fall back to defaults: status draft, due date one calendar
// month after the invoice date.
type BuildParams struct {
	Owner       string
	ClientID    int
	Number      string
	InvoiceDate time.Time
	DueDate     time.Time
	Status      string
	Items       []models.LineItem

	// TotalOverride, when set, is trusted verbatim instead of being derived
	// from the items. The import path relies on this: a manually entered
	// total from existing paperwork must survive as-is.
	TotalOverride *decimal.Decimal

	SourceFileID *string
}

// DueDate returns the default payment date: one calendar month after the
// invoice date.
func DueDate(invoiceDate time.Time) time.Time {
	return invoiceDate.AddDate(0, 1, 0)
}

// ValidateItems checks the line items of a committed invoice and reports
// the first offending item. A line carrying a discount must explain it.
func ValidateItems(items []models.LineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", ErrValidation)
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", ErrValidation, i+1)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: item %d: price must be non-negative", ErrValidation, i+1)
		}
		if it.Discount.IsNegative() {
			return fmt.Errorf("%w: item %d: discount must be non-negative", ErrValidation, i+1)
		}
		switch it.DiscountUnit {
		case "", models.DiscountPercent, models.DiscountAbsolute:
		default:
			return fmt.Errorf("%w: item %d: discount unit must be %q or %q",
				ErrValidation, i+1, models.DiscountPercent, models.DiscountAbsolute)
		}
		if it.Discount.IsPositive() && strings.TrimSpace(it.DiscountText) == "" {
			return fmt.Errorf("%w: item %d: a discounted line needs a discount description", ErrValidation, i+1)
		}
	}
	return nil
}

// Build validates the items and assembles a complete invoice. Line totals
// and the invoice total are recomputed from quantity, price and discount —
// unless TotalOverride is set, in which case both the supplied item totals
// and the override are kept untouched.
func Build(p BuildParams) (models.Invoice, error) {
	if err := ValidateItems(p.Items); err != nil {
		return models.Invoice{}, err
	}

	items := make([]models.LineItem, len(p.Items))
	copy(items, p.Items)

	total := decimal.Zero
	for i := range items {
		if items[i].DiscountUnit == "" {
			items[i].DiscountUnit = models.DiscountPercent
		}
		if p.TotalOverride == nil {
			items[i].Total = LineTotal(items[i].Quantity, items[i].Price, items[i].Discount, items[i].DiscountUnit)
		}
		total = total.Add(items[i].Total)
	}
	if p.TotalOverride != nil {
		total = *p.TotalOverride
	}

	invoiceDate := p.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}
	dueDate := p.DueDate
	if dueDate.IsZero() {
		dueDate = DueDate(invoiceDate)
	}
	status := p.Status
	if status == "" {
		status = models.StatusDraft
	}

	return models.Invoice{
		Owner:         p.Owner,
		ClientID:      p.ClientID,
		InvoiceNumber: p.Number,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Status:        status,
		TotalAmount:   total,
		Items:         items,
		SourceFileID:  p.SourceFileID,
	}, nil
}

// ApplyUpdate replaces the items (and optionally the client) of inv,
// re-deriving every line total and the invoice total. Unlike creation there
// is no override: updates always recompute. Fails unless inv is a draft.
func ApplyUpdate(inv *models.Invoice, items []models.LineItem, clientID *int) error {
	if !Mutable(inv.Status) {
		return fmt.Errorf("%w: only draft invoices can be edited", ErrValidation)
	}
	if err := ValidateItems(items); err != nil {
		return err
	}

	updated := make([]models.LineItem, len(items))
	copy(updated, items)

	total := decimal.Zero
	for i := range updated {
		if updated[i].DiscountUnit == "" {
			updated[i].DiscountUnit = models.DiscountPercent
		}
		updated[i].Total = LineTotal(updated[i].Quantity, updated[i].Price, updated[i].Discount, updated[i].DiscountUnit)
		total = total.Add(updated[i].Total)
	}

	inv.Items = updated
	inv.TotalAmount = total
	if clientID != nil {
		inv.ClientID = *clientID
	}
	return nil
}
