package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/facturation/models"
)

const clientSelectQuery = `SELECT id, owner, name, contact_name, address, email, legal_form, status, created_at, updated_at FROM clients`

func scanClient(scanner interface{ Scan(...any) error }) (models.Client, error) {
	var c models.Client
	err := scanner.Scan(&c.ID, &c.Owner, &c.Name, &c.ContactName, &c.Address, &c.Email, &c.LegalForm, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListClients lists all clients
// @Summary      List clients
// @Description  Get all clients of the authenticated account.
// @Tags         clients
// @Produce      json
// @Param        status  query     string  false  "Filter by status (active/inactive)"
// @Param        search  query     string  false  "Search by name, contact or email"
// @Success      200  {object}  Response{data=[]models.Client}
// @Router       /clients [get]
// @Security     BasicAuth
func ListClients(w http.ResponseWriter, r *http.Request) {
	query := clientSelectQuery + " WHERE owner = ?"
	args := []any{owner(r)}

	if status := r.URL.Query().Get("status"); status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		query += " AND (name LIKE ? OR contact_name LIKE ? OR email LIKE ?)"
		s := "%" + search + "%"
		args = append(args, s, s, s)
	}
	query += " ORDER BY name"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		clients = append(clients, c)
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetClient retrieves a single client by ID
// @Summary      Get client
// @Description  Get details of a specific client.
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  Response{data=models.Client}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [get]
// @Security     BasicAuth
func GetClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	c, err := scanClient(DB.QueryRow(clientSelectQuery+" WHERE id = ? AND owner = ?", id, owner(r)))
	if err != nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateClient creates a new client
// @Summary      Create client
// @Description  Create a new billed customer.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.ClientInput  true  "Client contents"
// @Success      201     {object}  Response{data=models.Client}
// @Failure      400     {object}  Response{error=string}
// @Router       /clients [post]
// @Security     BasicAuth
func CreateClient(w http.ResponseWriter, r *http.Request) {
	var input models.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := DB.Exec("INSERT INTO clients (owner, name, contact_name, address, email, legal_form, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		owner(r), input.Name, input.ContactName, input.Address, input.Email, input.LegalForm, input.Status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id, _ := result.LastInsertId()
	c, _ := scanClient(DB.QueryRow(clientSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClient updates an existing client
// @Summary      Update client
// @Description  Update details of an existing client.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path      int                 true  "Client ID"
// @Param        client  body      models.ClientInput  true  "Updated client contents"
// @Success      200     {object}  Response{data=models.Client}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /clients/{id} [put]
// @Security     BasicAuth
func UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE clients SET name = ?, contact_name = ?, address = ?, email = ?, legal_form = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner = ?`,
		input.Name, input.ContactName, input.Address, input.Email, input.LegalForm, input.Status, id, owner(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}

	c, _ := scanClient(DB.QueryRow(clientSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusOK, c)
}

// DeleteClient deletes a client
// @Summary      Delete client
// @Description  Remove a client. Clients with invoices cannot be removed.
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      400  {object}  Response{error=string}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [delete]
// @Security     BasicAuth
func DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var count int
	DB.QueryRow("SELECT COUNT(*) FROM invoices WHERE client_id = ? AND owner = ?", id, owner(r)).Scan(&count)
	if count > 0 {
		writeError(w, http.StatusBadRequest, "client has invoices and cannot be deleted")
		return
	}

	res, err := DB.Exec("DELETE FROM clients WHERE id = ? AND owner = ?", id, owner(r))
	if err != nil {
		// FK RESTRICT from invoices of another owner, or templates
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			writeError(w, http.StatusBadRequest, "client is referenced and cannot be deleted")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
