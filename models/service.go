package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a catalog entry a freelancer bills for. A global service
// propagates label/price changes into every draft invoice that references it.
type Service struct {
	ID           int             `json:"id"`
	Owner        string          `json:"-"`
	Label        string          `json:"label"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	IsGlobal     bool            `json:"is_global"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ServiceInput is used for creating/updating services.
type ServiceInput struct {
	Label        string          `json:"label"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	IsGlobal     bool            `json:"is_global"`
}

func (s *ServiceInput) Validate() string {
	if s.Label == "" {
		return "label is required"
	}
	if s.DefaultPrice.IsNegative() {
		return "default_price must be non-negative"
	}
	return ""
}
