package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/facturation/models"
)

func buildItems() []models.LineItem {
	return []models.LineItem{
		{ServiceID: 1, Label: "Développement", Quantity: 2, Price: d("100"),
			Discount: d("10"), DiscountUnit: models.DiscountPercent, DiscountText: "fidélité"},
		{ServiceID: 2, Label: "Conseil", Quantity: 1, Price: d("300")},
	}
}

func TestBuildComputesTotals(t *testing.T) {
	inv, err := Build(BuildParams{
		Owner:       "alice",
		ClientID:    7,
		Number:      "20250501",
		InvoiceDate: may2025,
		Items:       buildItems(),
	})
	require.NoError(t, err)

	assert.True(t, d("180").Equal(inv.Items[0].Total), "got %s", inv.Items[0].Total)
	assert.True(t, d("300").Equal(inv.Items[1].Total), "got %s", inv.Items[1].Total)
	assert.True(t, d("480").Equal(inv.TotalAmount), "got %s", inv.TotalAmount)

	assert.Equal(t, models.StatusDraft, inv.Status)
	assert.Equal(t, may2025.AddDate(0, 1, 0), inv.DueDate)
	assert.Equal(t, models.DiscountPercent, inv.Items[1].DiscountUnit, "empty unit defaults to percent")
}

func TestBuildIgnoresCallerSuppliedLineTotals(t *testing.T) {
	items := buildItems()
	items[0].Total = d("99999")

	inv, err := Build(BuildParams{Owner: "alice", ClientID: 7, InvoiceDate: may2025, Items: items})
	require.NoError(t, err)
	assert.True(t, d("180").Equal(inv.Items[0].Total), "line totals are always re-derived, got %s", inv.Items[0].Total)
}

func TestBuildTotalOverride(t *testing.T) {
	// The import path trusts the paperwork's total verbatim, even when it
	// disagrees with the items.
	override := d("1234.56")
	items := buildItems()
	items[0].Total = d("180")
	items[1].Total = d("300")

	inv, err := Build(BuildParams{
		Owner:         "alice",
		ClientID:      7,
		Number:        "20250402",
		InvoiceDate:   may2025,
		Status:        models.StatusSent,
		Items:         items,
		TotalOverride: &override,
	})
	require.NoError(t, err)
	assert.True(t, override.Equal(inv.TotalAmount), "got %s", inv.TotalAmount)
	assert.True(t, d("180").Equal(inv.Items[0].Total), "override path keeps supplied item totals")
	assert.Equal(t, models.StatusSent, inv.Status)
}

func TestBuildExplicitDueDate(t *testing.T) {
	due := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	inv, err := Build(BuildParams{Owner: "alice", ClientID: 7, InvoiceDate: may2025, DueDate: due, Items: buildItems()})
	require.NoError(t, err)
	assert.Equal(t, due, inv.DueDate)
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name  string
		items []models.LineItem
	}{
		{"empty items", nil},
		{"zero quantity", []models.LineItem{{Label: "x", Quantity: 0, Price: d("10")}}},
		{"negative price", []models.LineItem{{Label: "x", Quantity: 1, Price: d("-1")}}},
		{"negative discount", []models.LineItem{{Label: "x", Quantity: 1, Price: d("10"), Discount: d("-5")}}},
		{"bad discount unit", []models.LineItem{{Label: "x", Quantity: 1, Price: d("10"), Discount: d("5"), DiscountUnit: "$", DiscountText: "promo"}}},
		{"discount without description", []models.LineItem{{Label: "x", Quantity: 1, Price: d("10"), Discount: d("5")}}},
		{"blank discount description", []models.LineItem{{Label: "x", Quantity: 1, Price: d("10"), Discount: d("5"), DiscountText: "   "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, ValidateItems(tt.items), ErrValidation)
		})
	}
}

func TestValidateItemsReportsFirstOffender(t *testing.T) {
	items := []models.LineItem{
		{Label: "ok", Quantity: 1, Price: d("10")},
		{Label: "bad", Quantity: 1, Price: d("10"), Discount: d("5")},
	}
	err := ValidateItems(items)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "item 2")
}

func TestApplyUpdateRecomputes(t *testing.T) {
	inv, err := Build(BuildParams{Owner: "alice", ClientID: 7, InvoiceDate: may2025, Items: buildItems()})
	require.NoError(t, err)

	newClient := 9
	newItems := []models.LineItem{
		{ServiceID: 3, Label: "Formation", Quantity: 3, Price: d("50"), Total: d("1")},
	}
	require.NoError(t, ApplyUpdate(&inv, newItems, &newClient))

	assert.Equal(t, 9, inv.ClientID)
	assert.True(t, d("150").Equal(inv.TotalAmount), "updates always re-derive, got %s", inv.TotalAmount)
	assert.True(t, d("150").Equal(inv.Items[0].Total))
}

func TestApplyUpdateRejectsNonDraft(t *testing.T) {
	inv, err := Build(BuildParams{Owner: "alice", ClientID: 7, InvoiceDate: may2025, Status: models.StatusSent, Items: buildItems()})
	require.NoError(t, err)

	before := inv.TotalAmount
	err = ApplyUpdate(&inv, buildItems(), nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.True(t, before.Equal(inv.TotalAmount))
}

func TestBuildRejectsDiscountWithoutText(t *testing.T) {
	items := buildItems()
	items[0].DiscountText = ""
	_, err := Build(BuildParams{Owner: "alice", ClientID: 7, InvoiceDate: may2025, Items: items})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDueDate(t *testing.T) {
	assert.Equal(t,
		time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC),
		DueDate(may2025))

	// Month-end normalization follows the standard library: Jan 31 + 1 month
	// lands in early March.
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), DueDate(jan31))
}
