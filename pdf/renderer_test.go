package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/models"
)

func testProfile() *models.Profile {
	return &models.Profile{
		Owner:   "alice",
		Name:    "Alice Dupont",
		Email:   "alice@exemple.fr",
		Address: "12 rue de la Paix\n75002 Paris",
		Siret:   "123 456 789 00012",
		IBAN:    "FR76 3000 6000 0112 3456 7890 189",
		BIC:     "AGRIFRPP",
		Bank:    "Crédit Agricole",
	}
}

func testClient() *models.Client {
	legal := "SARL"
	return &models.Client{
		ID:          7,
		Owner:       "alice",
		Name:        "Société Exemple",
		ContactName: "Jean Martin",
		Address:     "8 avenue des Champs-Élysées\n75008 Paris",
		Email:       "contact@exemple.fr",
		LegalForm:   &legal,
		Status:      "active",
	}
}

func testInvoice() models.Invoice {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return models.Invoice{
		ID:            1,
		Owner:         "alice",
		ClientID:      7,
		InvoiceNumber: "20250501",
		InvoiceDate:   time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		Status:        models.StatusDraft,
		TotalAmount:   d("480"),
		Items: []models.LineItem{
			{ServiceID: 1, Label: "Développement web", Quantity: 2, Price: d("100"),
				Discount: d("10"), DiscountUnit: models.DiscountPercent, DiscountText: "fidélité", Total: d("180")},
			{ServiceID: 2, Label: "Conseil technique", Quantity: 1, Price: d("300"), Total: d("300")},
		},
	}
}

func TestRenderInvoiceProducesPDF(t *testing.T) {
	out, err := RenderInvoice(testInvoice(), testClient(), testProfile())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output must start with a PDF header")
}

func TestRenderInvoiceIsDeterministic(t *testing.T) {
	first, err := RenderInvoice(testInvoice(), testClient(), testProfile())
	require.NoError(t, err)
	second, err := RenderInvoice(testInvoice(), testClient(), testProfile())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "same invoice data must yield byte-identical output")
}

func TestRenderInvoiceMissingClient(t *testing.T) {
	// A missing client renders placeholders instead of failing.
	out, err := RenderInvoice(testInvoice(), nil, testProfile())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderInvoiceMissingProfile(t *testing.T) {
	_, err := RenderInvoice(testInvoice(), testClient(), nil)
	require.ErrorIs(t, err, invoice.ErrDocumentGeneration)
}

func TestRenderInvoiceManyItems(t *testing.T) {
	inv := testInvoice()
	base := inv.Items
	for i := 0; i < 20; i++ {
		inv.Items = append(inv.Items, base...)
	}
	out, err := RenderInvoice(inv, testClient(), testProfile())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestItemLabel(t *testing.T) {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	plain := models.LineItem{Label: "Conseil"}
	assert.Equal(t, "Conseil", itemLabel(plain))

	discounted := models.LineItem{Label: "Développement", Discount: d("10"), DiscountText: "fidélité"}
	assert.Equal(t, "Développement (fidélité)", itemLabel(discounted))

	long := models.LineItem{Label: "Accompagnement et développement d'une plateforme"}
	assert.Equal(t, 35, len([]rune(itemLabel(long))))
}

func TestDiscountLabel(t *testing.T) {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	assert.Equal(t, "-", discountLabel(models.LineItem{}))
	assert.Equal(t, "10%", discountLabel(models.LineItem{Discount: d("10"), DiscountUnit: models.DiscountPercent}))
	assert.Equal(t, "5€", discountLabel(models.LineItem{Discount: d("5"), DiscountUnit: models.DiscountAbsolute}))
	assert.Equal(t, "7.5%", discountLabel(models.LineItem{Discount: d("7.5")}))
}
