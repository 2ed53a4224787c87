package handlers

import (
	"net/http"
	"time"
)

type statsData struct {
	TotalClients  int `json:"total_clients"`
	TotalServices int `json:"total_services"`
	TotalInvoices int `json:"total_invoices"`

	DraftInvoices  int `json:"draft_invoices"`
	SentInvoices   int `json:"sent_invoices"`
	PaidInvoices   int `json:"paid_invoices"`
	UnpaidInvoices int `json:"unpaid_invoices"` // sent but not yet paid

	RevenueYear    float64 `json:"revenue_year"`    // sent + paid, current year
	RevenueMonth   float64 `json:"revenue_month"`   // sent + paid, current month
	OutstandingSum float64 `json:"outstanding_sum"` // sent, awaiting payment
}

// GetStats retrieves account activity statistics
// @Summary      Get stats
// @Description  Get invoice counts by status and revenue figures for the current month and year.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  Response{data=statsData}
// @Router       /stats [get]
// @Security     BasicAuth
func GetStats(w http.ResponseWriter, r *http.Request) {
	var d statsData
	o := owner(r)

	DB.QueryRow("SELECT COUNT(*) FROM clients WHERE owner = ?", o).Scan(&d.TotalClients)
	DB.QueryRow("SELECT COUNT(*) FROM services WHERE owner = ?", o).Scan(&d.TotalServices)
	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE owner = ?", o).Scan(&d.TotalInvoices)

	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE owner = ? AND status = 'draft'", o).Scan(&d.DraftInvoices)
	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE owner = ? AND status = 'sent'", o).Scan(&d.SentInvoices)
	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE owner = ? AND status = 'paid'", o).Scan(&d.PaidInvoices)
	d.UnpaidInvoices = d.SentInvoices

	// Invoice numbers start with YYYYMM, which makes period filters cheap.
	now := time.Now()
	year := now.Format("2006")
	month := now.Format("200601")

	DB.QueryRow(`SELECT COALESCE(SUM(CAST(total_amount AS REAL)), 0) FROM invoices
		WHERE owner = ? AND status IN ('sent', 'paid') AND invoice_number LIKE ?`, o, year+"%").Scan(&d.RevenueYear)
	DB.QueryRow(`SELECT COALESCE(SUM(CAST(total_amount AS REAL)), 0) FROM invoices
		WHERE owner = ? AND status IN ('sent', 'paid') AND invoice_number LIKE ?`, o, month+"%").Scan(&d.RevenueMonth)
	DB.QueryRow(`SELECT COALESCE(SUM(CAST(total_amount AS REAL)), 0) FROM invoices
		WHERE owner = ? AND status = 'sent'`, o).Scan(&d.OutstandingSum)

	writeJSON(w, http.StatusOK, d)
}
