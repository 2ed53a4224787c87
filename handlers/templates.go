package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/models"
)

const templateSelectQuery = `SELECT t.id, t.owner, t.client_id, t.year, t.month, t.items, t.last_invoice_id, t.created_at,
	c.name as client_name
	FROM monthly_templates t
	LEFT JOIN clients c ON c.id = t.client_id`

func scanTemplate(scanner interface{ Scan(...any) error }) (models.MonthlyTemplate, error) {
	var t models.MonthlyTemplate
	var items string
	err := scanner.Scan(&t.ID, &t.Owner, &t.ClientID, &t.Year, &t.Month, &items, &t.LastInvoiceID, &t.CreatedAt, &t.ClientName)
	if err != nil {
		return t, err
	}
	err = json.Unmarshal([]byte(items), &t.Items)
	return t, err
}

// ListTemplates lists this month's billing templates
// @Summary      List templates
// @Description  Get the recurring billing templates of the current month.
// @Tags         templates
// @Produce      json
// @Success      200  {object}  Response{data=[]models.MonthlyTemplate}
// @Router       /templates [get]
// @Security     BasicAuth
func ListTemplates(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	rows, err := DB.Query(templateSelectQuery+" WHERE t.owner = ? AND t.year = ? AND t.month = ? ORDER BY client_name",
		owner(r), now.Year(), int(now.Month()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var templates []models.MonthlyTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		templates = append(templates, t)
	}
	if templates == nil {
		templates = []models.MonthlyTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// CreateTemplates builds this month's templates from last month's invoices
// @Summary      Generate templates
// @Description  Create one template per client billed last month (sent or paid invoices), copying the line items. Clients that already have a template this month are skipped.
// @Tags         templates
// @Produce      json
// @Success      200  {object}  Response{data=map[string]int}
// @Router       /templates [post]
// @Security     BasicAuth
func CreateTemplates(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	prev := now.AddDate(0, -1, 0)
	prefix := invoice.NumberPrefix(prev)

	// Latest sent or paid invoice per client of last month.
	rows, err := DB.Query(`SELECT client_id, id, items FROM invoices
		WHERE owner = ? AND invoice_number LIKE ? AND status IN (?, ?)
		ORDER BY client_id, invoice_number`,
		owner(r), prefix+"%", models.StatusSent, models.StatusPaid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	type source struct {
		invoiceID int
		items     string
	}
	latest := map[int]source{}
	for rows.Next() {
		var clientID, invoiceID int
		var items string
		if err := rows.Scan(&clientID, &invoiceID, &items); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		latest[clientID] = source{invoiceID: invoiceID, items: items}
	}

	created := 0
	for clientID, src := range latest {
		res, err := DB.Exec(`INSERT OR IGNORE INTO monthly_templates (owner, client_id, year, month, items, last_invoice_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			owner(r), clientID, now.Year(), int(now.Month()), src.items, src.invoiceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

// CreateInvoiceFromTemplate creates a draft invoice from a template
// @Summary      Invoice from template
// @Description  Create a draft invoice for the template's client with the template's line items, dated today.
// @Tags         templates
// @Produce      json
// @Param        id   path      int  true  "Template ID"
// @Success      201  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /templates/{id}/invoice [post]
// @Security     BasicAuth
func CreateInvoiceFromTemplate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	t, err := scanTemplate(DB.QueryRow(templateSelectQuery+" WHERE t.id = ? AND t.owner = ?", id, owner(r)))
	if err != nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	inv, err := invoice.Build(invoice.BuildParams{
		Owner:    owner(r),
		ClientID: t.ClientID,
		Items:    t.Items,
	})
	if err != nil {
		writeCoreError(w, err)
		return
	}

	newID, err := createWithNumber(inv)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	if _, err := DB.Exec("UPDATE monthly_templates SET last_invoice_id = ? WHERE id = ?", newID, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, _ := getInvoice(newID, owner(r))
	writeJSON(w, http.StatusCreated, created)
}
