package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/models"
)

func TestTemplatesFromLastMonth(t *testing.T) {
	router := newTestAPI(t)
	client := createTestClient(t, router, "alice")

	// a sent invoice from last month seeds this month's template
	lastMonth := time.Now().AddDate(0, -1, 0)
	rec := doJSON(t, router, "alice", http.MethodPost, "/invoices/import", models.ImportInvoiceInput{
		ClientID:      client.ID,
		InvoiceNumber: invoice.NumberPrefix(lastMonth) + "01",
		InvoiceDate:   lastMonth,
		Items:         testItems(),
		TotalAmount:   dec("480"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, "alice", http.MethodPost, "/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result map[string]int
	decodeData(t, rec, &result)
	assert.Equal(t, 1, result["created"])

	// regenerating skips clients that already have one
	rec = doJSON(t, router, "alice", http.MethodPost, "/templates", nil)
	decodeData(t, rec, &result)
	assert.Equal(t, 0, result["created"])

	rec = doJSON(t, router, "alice", http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var templates []models.MonthlyTemplate
	decodeData(t, rec, &templates)
	require.Len(t, templates, 1)
	assert.Equal(t, client.ID, templates[0].ClientID)
	require.NotNil(t, templates[0].ClientName)
	assert.Equal(t, "Acme SARL", *templates[0].ClientName)
	assert.Len(t, templates[0].Items, 2)

	rec = doJSON(t, router, "alice", http.MethodPost, "/templates/"+itoa(templates[0].ID)+"/invoice", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv models.Invoice
	decodeData(t, rec, &inv)
	assert.Equal(t, models.StatusDraft, inv.Status)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, invoice.NumberPrefix(time.Now())), "got %s", inv.InvoiceNumber)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(480)), "got %s", inv.TotalAmount)

	// the template remembers the invoice it produced
	rec = doJSON(t, router, "alice", http.MethodGet, "/templates", nil)
	decodeData(t, rec, &templates)
	require.NotNil(t, templates[0].LastInvoiceID)
	assert.Equal(t, inv.ID, *templates[0].LastInvoiceID)
}

func TestStats(t *testing.T) {
	router := newTestAPI(t)
	client := createTestClient(t, router, "alice")
	inv := createDraft(t, router, client.ID)
	doJSON(t, router, "alice", http.MethodPut, "/invoices/"+itoa(inv.ID)+"/status", map[string]string{"status": models.StatusSent})
	createDraft(t, router, client.ID)

	rec := doJSON(t, router, "alice", http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d statsData
	decodeData(t, rec, &d)
	assert.Equal(t, 1, d.TotalClients)
	assert.Equal(t, 2, d.TotalInvoices)
	assert.Equal(t, 1, d.DraftInvoices)
	assert.Equal(t, 1, d.SentInvoices)
	assert.InDelta(t, 480.0, d.RevenueMonth, 0.001)
	assert.InDelta(t, 480.0, d.OutstandingSum, 0.001)

	// stats are per owner
	rec = doJSON(t, router, "bob", http.MethodGet, "/stats", nil)
	decodeData(t, rec, &d)
	assert.Equal(t, 0, d.TotalInvoices)
}
