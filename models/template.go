package models

import "time"

// MonthlyTemplate pre-fills next month's invoice for a recurring client from
// what was billed last month. One template per (owner, month, client).
type MonthlyTemplate struct {
	ID            int        `json:"id"`
	Owner         string     `json:"-"`
	ClientID      int        `json:"client_id"`
	Year          int        `json:"year"`
	Month         int        `json:"month"`
	Items         []LineItem `json:"items"`
	LastInvoiceID *int       `json:"last_invoice_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	// Computed fields
	ClientName *string `json:"client_name,omitempty"`
}
