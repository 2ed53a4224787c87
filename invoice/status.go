package invoice

import (
	"fmt"

	"github.com/satheeshds/facturation/models"
)

// CanTransition reports whether a status change is allowed. The lifecycle
// is draft → sent → paid, with sent↔paid togglable both ways as a manual
// correction. Nothing ever returns to draft.
func CanTransition(from, to string) bool {
	switch {
	case from == models.StatusDraft && to == models.StatusSent:
		return true
	case from == models.StatusSent && to == models.StatusPaid:
		return true
	case from == models.StatusPaid && to == models.StatusSent:
		return true
	}
	return false
}

// Transition applies a status change to inv or fails with
// ErrInvalidTransition.
func Transition(inv *models.Invoice, to string) error {
	if !CanTransition(inv.Status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, inv.Status, to)
	}
	inv.Status = to
	return nil
}

// Mutable reports whether the invoice's client and items may still change.
// Only drafts are editable; once sent, the document is frozen.
func Mutable(status string) bool {
	return status == models.StatusDraft
}

// Deletable reports whether an invoice may be removed. Only drafts are
// deletable: sent and paid invoices are issued paperwork and stay.
func Deletable(status string) bool {
	return status == models.StatusDraft
}
