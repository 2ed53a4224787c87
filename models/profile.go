package models

// Profile holds the issuer identity printed on every invoice: legal name,
// SIRET, and the bank coordinates shown in the payment block.
type Profile struct {
	Owner   string `json:"-"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Siret   string `json:"siret"`
	IBAN    string `json:"iban"`
	BIC     string `json:"bic"`
	Bank    string `json:"bank"`
}

// ProfileInput is used for creating/updating the issuer profile.
type ProfileInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Siret   string `json:"siret"`
	IBAN    string `json:"iban"`
	BIC     string `json:"bic"`
	Bank    string `json:"bank"`
}

func (p *ProfileInput) Validate() string {
	if p.Name == "" {
		return "name is required"
	}
	return ""
}
