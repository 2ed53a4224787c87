package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/models"
)

const serviceSelectQuery = `SELECT id, owner, label, default_price, is_global, created_at, updated_at FROM services`

func scanService(scanner interface{ Scan(...any) error }) (models.Service, error) {
	var s models.Service
	var price string
	err := scanner.Scan(&s.ID, &s.Owner, &s.Label, &price, &s.IsGlobal, &s.CreatedAt, &s.UpdatedAt)
	if err == nil {
		s.DefaultPrice, err = decimal.NewFromString(price)
	}
	return s, err
}

// ListServices lists all services
// @Summary      List services
// @Description  Get the service catalog of the authenticated account.
// @Tags         services
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Service}
// @Router       /services [get]
// @Security     BasicAuth
func ListServices(w http.ResponseWriter, r *http.Request) {
	rows, err := DB.Query(serviceSelectQuery+" WHERE owner = ? ORDER BY label", owner(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		services = append(services, s)
	}
	if services == nil {
		services = []models.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

// CreateService creates a new service
// @Summary      Create service
// @Description  Add a service to the catalog.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        service  body      models.ServiceInput  true  "Service contents"
// @Success      201      {object}  Response{data=models.Service}
// @Failure      400      {object}  Response{error=string}
// @Router       /services [post]
// @Security     BasicAuth
func CreateService(w http.ResponseWriter, r *http.Request) {
	var input models.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := DB.Exec("INSERT INTO services (owner, label, default_price, is_global) VALUES (?, ?, ?, ?)",
		owner(r), input.Label, input.DefaultPrice.String(), input.IsGlobal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id, _ := result.LastInsertId()
	s, _ := scanService(DB.QueryRow(serviceSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusCreated, s)
}

// UpdateService updates an existing service
// @Summary      Update service
// @Description  Update a catalog entry. Changes to a global service propagate into every draft invoice that references it.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Service ID"
// @Param        service  body      models.ServiceInput  true  "Updated service contents"
// @Success      200      {object}  Response{data=models.Service}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /services/{id} [put]
// @Security     BasicAuth
func UpdateService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec("UPDATE services SET label = ?, default_price = ?, is_global = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner = ?",
		input.Label, input.DefaultPrice.String(), input.IsGlobal, id, owner(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}

	if input.IsGlobal {
		if err := propagateService(owner(r), id, input.Label, input.DefaultPrice); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s, _ := scanService(DB.QueryRow(serviceSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusOK, s)
}

// propagateService rewrites the label and price of serviceID in every draft
// invoice of ownerName, recomputing line totals (discounts kept) and the
// invoice total. Sent and paid invoices are immutable and never touched.
func propagateService(ownerName string, serviceID int, label string, price decimal.Decimal) error {
	rows, err := DB.Query("SELECT id, items FROM invoices WHERE owner = ? AND status = ?", ownerName, models.StatusDraft)
	if err != nil {
		return err
	}
	defer rows.Close()

	type patch struct {
		id    int
		items []models.LineItem
	}
	var patches []patch
	for rows.Next() {
		var id int
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return err
		}
		var items []models.LineItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return err
		}
		touched := false
		for i := range items {
			if items[i].ServiceID != serviceID {
				continue
			}
			items[i].Label = label
			items[i].Price = price
			items[i].Total = invoice.LineTotal(items[i].Quantity, price, items[i].Discount, items[i].DiscountUnit)
			touched = true
		}
		if touched {
			patches = append(patches, patch{id: id, items: items})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range patches {
		total := decimal.Zero
		for _, it := range p.items {
			total = total.Add(it.Total)
		}
		raw, err := json.Marshal(p.items)
		if err != nil {
			return err
		}
		if _, err := DB.Exec("UPDATE invoices SET items = ?, total_amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			string(raw), total.String(), p.id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteService deletes a service
// @Summary      Delete service
// @Description  Remove a catalog entry. Existing invoice lines keep their copied label and price.
// @Tags         services
// @Produce      json
// @Param        id   path      int  true  "Service ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /services/{id} [delete]
// @Security     BasicAuth
func DeleteService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM services WHERE id = ? AND owner = ?", id, owner(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
