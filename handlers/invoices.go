package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/models"
)

const invoiceSelectQuery = `SELECT i.id, i.owner, i.client_id, i.invoice_number, i.invoice_date, i.due_date,
	i.status, i.total_amount, i.items, i.pdf_file_id, i.source_file_id, i.created_at, i.updated_at,
	c.name as client_name
	FROM invoices i
	LEFT JOIN clients c ON c.id = i.client_id`

func scanInvoice(scanner interface{ Scan(...any) error }) (models.Invoice, error) {
	var inv models.Invoice
	var total, items string
	err := scanner.Scan(&inv.ID, &inv.Owner, &inv.ClientID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate,
		&inv.Status, &total, &items, &inv.PDFFileID, &inv.SourceFileID, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.ClientName)
	if err != nil {
		return inv, err
	}
	if inv.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return inv, err
	}
	err = json.Unmarshal([]byte(items), &inv.Items)
	return inv, err
}

// sqlTime formats t the way SQLite's CURRENT_TIMESTAMP does, so stored dates
// scan back uniformly.
func sqlTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func getInvoice(id int, ownerName string) (models.Invoice, error) {
	inv, err := scanInvoice(DB.QueryRow(invoiceSelectQuery+" WHERE i.id = ? AND i.owner = ?", id, ownerName))
	if err != nil {
		return inv, fmt.Errorf("%w: invoice not found", invoice.ErrNotFound)
	}
	return inv, nil
}

// ownerNumbers returns every invoice number the owner has used.
func ownerNumbers(ownerName string) ([]string, error) {
	rows, err := DB.Query("SELECT invoice_number FROM invoices WHERE owner = ?", ownerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func insertInvoice(inv models.Invoice) (int, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return 0, err
	}
	result, err := DB.Exec(`INSERT INTO invoices (owner, client_id, invoice_number, invoice_date, due_date, status, total_amount, items, source_file_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Owner, inv.ClientID, inv.InvoiceNumber, sqlTime(inv.InvoiceDate), sqlTime(inv.DueDate),
		inv.Status, inv.TotalAmount.String(), string(items), inv.SourceFileID)
	if err != nil {
		return 0, err
	}
	id, _ := result.LastInsertId()
	return int(id), nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const numberAttempts = 3

// createWithNumber assigns the next free number for the invoice month and
// inserts. A concurrent create can win the same number first; the unique
// index turns that into a constraint error and we re-derive and retry.
func createWithNumber(inv models.Invoice) (int, error) {
	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		numbers, err := ownerNumbers(inv.Owner)
		if err != nil {
			return 0, err
		}
		inv.InvoiceNumber = invoice.NextNumber(numbers, inv.InvoiceDate)

		id, err := insertInvoice(inv)
		if err == nil {
			return id, nil
		}
		if !isUniqueViolation(err) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("%w: could not allocate an invoice number after %d attempts: %v",
		invoice.ErrDuplicateNumber, numberAttempts, lastErr)
}

func clientExists(id int, ownerName string) bool {
	var n int
	DB.QueryRow("SELECT COUNT(*) FROM clients WHERE id = ? AND owner = ?", id, ownerName).Scan(&n)
	return n > 0
}

// ListInvoices lists invoices
// @Summary      List invoices
// @Description  Get invoices of the authenticated account, newest first.
// @Tags         invoices
// @Produce      json
// @Param        status     query     string  false  "Filter by status (draft/sent/paid)"
// @Param        client_id  query     int     false  "Filter by client"
// @Param        from       query     string  false  "Invoice date lower bound (YYYY-MM-DD)"
// @Param        to         query     string  false  "Invoice date upper bound (YYYY-MM-DD)"
// @Param        search     query     string  false  "Search by number or client name"
// @Success      200  {object}  Response{data=[]models.Invoice}
// @Router       /invoices [get]
// @Security     BasicAuth
func ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := invoiceSelectQuery + " WHERE i.owner = ?"
	args := []any{owner(r)}

	if status := r.URL.Query().Get("status"); status != "" {
		query += " AND i.status = ?"
		args = append(args, status)
	}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		query += " AND i.client_id = ?"
		args = append(args, clientID)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		query += " AND i.invoice_date >= ?"
		args = append(args, from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		query += " AND i.invoice_date <= ?"
		args = append(args, to+" 23:59:59")
	}
	if search := r.URL.Query().Get("search"); search != "" {
		query += " AND (i.invoice_number LIKE ? OR c.name LIKE ?)"
		s := "%" + search + "%"
		args = append(args, s, s)
	}
	query += " ORDER BY i.invoice_date DESC, i.id DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		invoices = append(invoices, inv)
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

// GetInvoice retrieves a single invoice by ID
// @Summary      Get invoice
// @Description  Get a specific invoice with its line items.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [get]
// @Security     BasicAuth
func GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// CreateInvoice creates a new draft invoice
// @Summary      Create invoice
// @Description  Create a draft invoice. The number is assigned automatically and totals are computed server-side.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Invoice contents"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Router       /invoices [post]
// @Security     BasicAuth
func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !clientExists(input.ClientID, owner(r)) {
		writeError(w, http.StatusBadRequest, "client not found")
		return
	}

	params := invoice.BuildParams{
		Owner:    owner(r),
		ClientID: input.ClientID,
		Items:    input.Items,
	}
	if input.InvoiceDate != nil {
		params.InvoiceDate = *input.InvoiceDate
	}
	if input.DueDate != nil {
		params.DueDate = *input.DueDate
	}

	inv, err := invoice.Build(params)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	id, err := createWithNumber(inv)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	created, _ := getInvoice(id, owner(r))
	writeJSON(w, http.StatusCreated, created)
}

// UpdateInvoice updates a draft invoice
// @Summary      Update invoice
// @Description  Replace the line items (and optionally the client) of a draft invoice. Totals are recomputed.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Invoice ID"
// @Param        invoice  body      models.InvoiceInput  true  "Updated invoice contents"
// @Success      200      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /invoices/{id} [put]
// @Security     BasicAuth
func UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	inv, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}

	var clientID *int
	if input.ClientID > 0 && input.ClientID != inv.ClientID {
		if !clientExists(input.ClientID, owner(r)) {
			writeError(w, http.StatusBadRequest, "client not found")
			return
		}
		clientID = &input.ClientID
	}

	if err := invoice.ApplyUpdate(&inv, input.Items, clientID); err != nil {
		writeCoreError(w, err)
		return
	}
	if input.InvoiceDate != nil {
		inv.InvoiceDate = *input.InvoiceDate
		inv.DueDate = invoice.DueDate(inv.InvoiceDate)
	}
	if input.DueDate != nil {
		inv.DueDate = *input.DueDate
	}

	items, _ := json.Marshal(inv.Items)
	_, err = DB.Exec(`UPDATE invoices SET client_id = ?, invoice_date = ?, due_date = ?, total_amount = ?, items = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner = ?`,
		inv.ClientID, sqlTime(inv.InvoiceDate), sqlTime(inv.DueDate), inv.TotalAmount.String(), string(items), id, owner(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated, _ := getInvoice(id, owner(r))
	writeJSON(w, http.StatusOK, updated)
}

// DeleteInvoice deletes a draft invoice
// @Summary      Delete invoice
// @Description  Remove a draft invoice and its stored documents. Sent and paid invoices cannot be deleted.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      400  {object}  Response{error=string}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [delete]
// @Security     BasicAuth
func DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if !invoice.Deletable(inv.Status) {
		writeError(w, http.StatusBadRequest, "only draft invoices can be deleted")
		return
	}

	if _, err := DB.Exec("DELETE FROM invoices WHERE id = ? AND owner = ?", id, owner(r)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if inv.PDFFileID != nil {
		Files.Delete(*inv.PDFFileID)
	}
	if inv.SourceFileID != nil {
		Files.Delete(*inv.SourceFileID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// NextInvoiceNumber previews the next invoice number
// @Summary      Preview next number
// @Description  Compute the number the next invoice of the given month would get. Nothing is reserved.
// @Tags         invoices
// @Produce      json
// @Param        date  query     string  false  "Reference date (YYYY-MM-DD), defaults to today"
// @Success      200  {object}  Response{data=map[string]string}
// @Router       /invoices/number [get]
// @Security     BasicAuth
func NextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	ref := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	numbers, err := ownerNumbers(owner(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"invoice_number": invoice.NextNumber(numbers, ref)})
}

type statusInput struct {
	Status string `json:"status"`
}

// UpdateInvoiceStatus transitions an invoice's lifecycle status
// @Summary      Update status
// @Description  Move an invoice through its lifecycle: draft to sent, sent to paid, paid back to sent.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path      int          true  "Invoice ID"
// @Param        status  body      statusInput  true  "Target status"
// @Success      200     {object}  Response{data=models.Invoice}
// @Failure      404     {object}  Response{error=string}
// @Failure      409     {object}  Response{error=string}
// @Router       /invoices/{id}/status [put]
// @Security     BasicAuth
func UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input statusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	inv, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if err := invoice.Transition(&inv, input.Status); err != nil {
		writeCoreError(w, err)
		return
	}

	if _, err := DB.Exec("UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner = ?",
		inv.Status, id, owner(r)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated, _ := getInvoice(id, owner(r))
	writeJSON(w, http.StatusOK, updated)
}

// DuplicateInvoice copies an invoice into a new draft
// @Summary      Duplicate invoice
// @Description  Create a draft copy of an invoice, dated today with a fresh number.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      201  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id}/duplicate [post]
// @Security     BasicAuth
func DuplicateInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	src, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}

	copyInv, err := invoice.Build(invoice.BuildParams{
		Owner:    owner(r),
		ClientID: src.ClientID,
		Items:    src.Items,
	})
	if err != nil {
		writeCoreError(w, err)
		return
	}

	newID, err := createWithNumber(copyInv)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	created, _ := getInvoice(newID, owner(r))
	writeJSON(w, http.StatusCreated, created)
}

// ImportInvoice registers an externally issued invoice
// @Summary      Import invoice
// @Description  Register an invoice issued outside the application, typically from an uploaded PDF. The supplied number and total are stored verbatim and the invoice starts as sent.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.ImportInvoiceInput  true  "Imported invoice contents"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Router       /invoices/import [post]
// @Security     BasicAuth
func ImportInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.ImportInvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !clientExists(input.ClientID, owner(r)) {
		writeError(w, http.StatusBadRequest, "client not found")
		return
	}

	var count int
	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE owner = ? AND invoice_number = ?",
		owner(r), input.InvoiceNumber).Scan(&count)
	if count > 0 {
		writeCoreError(w, fmt.Errorf("%w: invoice number %s already exists", invoice.ErrDuplicateNumber, input.InvoiceNumber))
		return
	}

	params := invoice.BuildParams{
		Owner:         owner(r),
		ClientID:      input.ClientID,
		Number:        input.InvoiceNumber,
		InvoiceDate:   input.InvoiceDate,
		Status:        models.StatusSent,
		Items:         input.Items,
		TotalOverride: &input.TotalAmount,
	}
	if input.SourceFileID != "" {
		params.SourceFileID = &input.SourceFileID
	}
	// Imported paperwork may describe its lines loosely; a single summary
	// line is enough to satisfy validation.
	if len(params.Items) == 0 {
		params.Items = []models.LineItem{{
			Label:    "Prestation",
			Quantity: 1,
			Price:    input.TotalAmount,
			Total:    input.TotalAmount,
		}}
	}

	inv, err := invoice.Build(params)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	id, err := insertInvoice(inv)
	if err != nil {
		if isUniqueViolation(err) {
			writeCoreError(w, fmt.Errorf("%w: invoice number %s already exists", invoice.ErrDuplicateNumber, input.InvoiceNumber))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, _ := getInvoice(id, owner(r))
	writeJSON(w, http.StatusCreated, created)
}
