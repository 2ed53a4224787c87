package models

import "time"

// Client represents a billed customer.
type Client struct {
	ID          int       `json:"id"`
	Owner       string    `json:"-"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name"`
	Address     string    `json:"address"`
	Email       string    `json:"email"`
	LegalForm   *string   `json:"legal_form,omitempty"` // SARL, EURL, Micro-entrepreneur
	Status      string    `json:"status"`               // active, inactive
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientInput is used for creating/updating clients.
type ClientInput struct {
	Name        string  `json:"name"`
	ContactName string  `json:"contact_name"`
	Address     string  `json:"address"`
	Email       string  `json:"email"`
	LegalForm   *string `json:"legal_form"`
	Status      string  `json:"status"`
}

func (c *ClientInput) Validate() string {
	if c.Name == "" {
		return "name is required"
	}
	switch c.Status {
	case "", "active", "inactive":
	default:
		return "status must be one of: active, inactive"
	}
	if c.Status == "" {
		c.Status = "active"
	}
	return ""
}
