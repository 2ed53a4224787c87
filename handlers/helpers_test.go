package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/facturation/db"
	"github.com/satheeshds/facturation/mailer"
	"github.com/satheeshds/facturation/models"
	"github.com/satheeshds/facturation/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// newTestAPI wires the real router against a throwaway database and blob
// store. SMTP stays unconfigured so email paths fail predictably.
func newTestAPI(t *testing.T) chi.Router {
	t.Helper()
	t.Setenv("AUTH_USERS", "alice:secret,bob:hunter2")

	database, err := db.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(database))

	files, err := storage.New(t.TempDir())
	require.NoError(t, err)

	DB = database
	Files = files
	Mail = &mailer.Mailer{}

	return NewRouter()
}

func doJSON(t *testing.T, router http.Handler, user, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		passwords := map[string]string{"alice": "secret", "bob": "hunter2"}
		req.SetBasicAuth(user, passwords[user])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of the response envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func responseError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error
}

func createTestClient(t *testing.T, router http.Handler, user string) models.Client {
	t.Helper()
	rec := doJSON(t, router, user, http.MethodPost, "/clients", models.ClientInput{
		Name:        "Acme SARL",
		ContactName: "Marie Dupont",
		Address:     "1 rue de la Paix\n75002 Paris",
		Email:       "marie@acme.example",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Client
	decodeData(t, rec, &c)
	return c
}

func setTestProfile(t *testing.T, router http.Handler, user string) {
	t.Helper()
	rec := doJSON(t, router, user, http.MethodPut, "/profile", models.ProfileInput{
		Name:    "Jean Martin",
		Email:   "jean@martin.example",
		Address: "10 avenue des Champs\n69000 Lyon",
		Siret:   "123 456 789 00012",
		IBAN:    "FR76 3000 6000 0112 3456 7890 189",
		BIC:     "AGRIFRPP",
		Bank:    "Crédit Agricole",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
