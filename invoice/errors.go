// Package invoice holds the billing core: line-item pricing, invoice
// numbering, aggregate assembly and the status lifecycle. It is pure — all
// persistence happens in the handlers layer, which maps the sentinel errors
// below to HTTP statuses.
package invoice

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or does not
	// belong to the calling owner.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthenticated is returned when no owner could be resolved for
	// the request.
	ErrUnauthenticated = errors.New("no authenticated owner")

	// ErrValidation is returned when invoice contents are rejected: empty
	// item list, non-positive quantity, a discount without a description,
	// or a mutation of a non-draft invoice.
	ErrValidation = errors.New("invoice validation failed")

	// ErrDuplicateNumber is returned when an invoice number already exists
	// for the owner, either on import or when the store-level uniqueness
	// constraint fires during concurrent creation.
	ErrDuplicateNumber = errors.New("invoice number already exists")

	// ErrInvalidTransition is returned for status changes outside
	// draft→sent and sent↔paid.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEmailDelivery covers all transport failures while sending an
	// invoice by email.
	ErrEmailDelivery = errors.New("email delivery failed")

	// ErrDocumentGeneration is returned when a PDF cannot be rendered,
	// including a missing issuer profile at render time.
	ErrDocumentGeneration = errors.New("document generation failed")
)
