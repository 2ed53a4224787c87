package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/satheeshds/facturation/models"
)

const profileSelectQuery = `SELECT owner, name, email, address, siret, iban, bic, bank FROM profiles`

func scanProfile(scanner interface{ Scan(...any) error }) (models.Profile, error) {
	var p models.Profile
	err := scanner.Scan(&p.Owner, &p.Name, &p.Email, &p.Address, &p.Siret, &p.IBAN, &p.BIC, &p.Bank)
	return p, err
}

// GetProfile retrieves the issuer profile
// @Summary      Get profile
// @Description  Get the issuer identity printed on generated invoices.
// @Tags         profile
// @Produce      json
// @Success      200  {object}  Response{data=models.Profile}
// @Failure      404  {object}  Response{error=string}
// @Router       /profile [get]
// @Security     BasicAuth
func GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := scanProfile(DB.QueryRow(profileSelectQuery+" WHERE owner = ?", owner(r)))
	if err != nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile creates or updates the issuer profile
// @Summary      Update profile
// @Description  Set the issuer name, SIRET and bank coordinates.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        profile  body      models.ProfileInput  true  "Profile contents"
// @Success      200      {object}  Response{data=models.Profile}
// @Failure      400      {object}  Response{error=string}
// @Router       /profile [put]
// @Security     BasicAuth
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input models.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	_, err := DB.Exec(`INSERT INTO profiles (owner, name, email, address, siret, iban, bic, bank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			name = excluded.name, email = excluded.email, address = excluded.address,
			siret = excluded.siret, iban = excluded.iban, bic = excluded.bic,
			bank = excluded.bank, updated_at = CURRENT_TIMESTAMP`,
		owner(r), input.Name, input.Email, input.Address, input.Siret, input.IBAN, input.BIC, input.Bank)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p, _ := scanProfile(DB.QueryRow(profileSelectQuery+" WHERE owner = ?", owner(r)))
	writeJSON(w, http.StatusOK, p)
}

// loadProfile fetches the issuer profile for rendering and email, or nil if
// none has been configured yet.
func loadProfile(ownerName string) *models.Profile {
	p, err := scanProfile(DB.QueryRow(profileSelectQuery+" WHERE owner = ?", ownerName))
	if err != nil {
		return nil
	}
	return &p
}
