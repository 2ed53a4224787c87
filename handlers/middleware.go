package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/mailer"
	"github.com/satheeshds/facturation/storage"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// DB is the shared database connection used by all handlers.
var DB *sql.DB

// Files is the blob store for generated PDFs and uploaded documents.
var Files *storage.Store

// Mail is the outbound SMTP transport.
var Mail *mailer.Mailer

type ctxKey int

const ownerKey ctxKey = 0

// owner returns the authenticated account name for the request.
func owner(r *http.Request) string {
	if o, ok := r.Context().Value(ownerKey).(string); ok {
		return o
	}
	return "default"
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}

// writeCoreError maps invoice package errors to HTTP statuses.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, invoice.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, invoice.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, invoice.ErrDuplicateNumber), errors.Is(err, invoice.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, invoice.ErrEmailDelivery):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// authUsers builds the credential table from the environment. AUTH_USERS
// holds "user:pass" pairs separated by commas; AUTH_USER/AUTH_PASS configure
// a single account.
func authUsers() map[string]string {
	users := map[string]string{}
	for _, pair := range strings.Split(os.Getenv("AUTH_USERS"), ",") {
		name, pass, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if ok && name != "" {
			users[name] = pass
		}
	}
	if u := os.Getenv("AUTH_USER"); u != "" {
		users[u] = os.Getenv("AUTH_PASS")
	}
	return users
}

// BasicAuth is middleware that enforces HTTP Basic Authentication. The
// authenticated username becomes the owner every query is scoped by.
func BasicAuth(next http.Handler) http.Handler {
	users := authUsers()

	// If no credentials are configured, skip auth
	if len(users) == 0 {
		slog.Warn("AUTH_USERS not set, API is unauthenticated")
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, "default")))
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || users[u] != p || u == "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="facturation"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, u)))
	})
}

// NewRouter assembles the authenticated API surface. main mounts it under
// /api/v1; tests hit it directly.
func NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(BasicAuth)

	r.Get("/profile", GetProfile)
	r.Put("/profile", UpdateProfile)

	r.Get("/clients", ListClients)
	r.Post("/clients", CreateClient)
	r.Get("/clients/{id}", GetClient)
	r.Put("/clients/{id}", UpdateClient)
	r.Delete("/clients/{id}", DeleteClient)

	r.Get("/services", ListServices)
	r.Post("/services", CreateService)
	r.Put("/services/{id}", UpdateService)
	r.Delete("/services/{id}", DeleteService)

	r.Get("/invoices", ListInvoices)
	r.Post("/invoices", CreateInvoice)
	r.Get("/invoices/number", NextInvoiceNumber)
	r.Post("/invoices/import", ImportInvoice)
	r.Get("/invoices/{id}", GetInvoice)
	r.Put("/invoices/{id}", UpdateInvoice)
	r.Delete("/invoices/{id}", DeleteInvoice)
	r.Put("/invoices/{id}/status", UpdateInvoiceStatus)
	r.Post("/invoices/{id}/duplicate", DuplicateInvoice)
	r.Post("/invoices/{id}/pdf", GenerateInvoicePDF)
	r.Get("/invoices/{id}/pdf", GetInvoicePDF)
	r.Post("/invoices/{id}/email", EmailInvoice)

	r.Post("/files", UploadFile)
	r.Get("/files/{id}", GetFile)

	r.Get("/templates", ListTemplates)
	r.Post("/templates", CreateTemplates)
	r.Post("/templates/{id}/invoice", CreateInvoiceFromTemplate)

	r.Get("/stats", GetStats)

	return r
}
