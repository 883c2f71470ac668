// Package transport defines the request DTOs for the lead scoring HTTP API.
package transport

// InlineScoreRequest scores a caller-supplied lead snapshot without reading
// from the database. Callers that own their own lead persistence use this.
type InlineScoreRequest struct {
	Lead    InlineLead         `json:"lead" validate:"required"`
	Weights map[string]float64 `json:"weights" validate:"omitempty,dive,gte=0"`
}

// InlineLead mirrors the scoring snapshot of a lead.
type InlineLead struct {
	ID                 string            `json:"id" validate:"omitempty,uuid"`
	PhoneNumbers       []string          `json:"phoneNumbers" validate:"omitempty,max=10,dive,max=32"`
	Email              string            `json:"email" validate:"omitempty,email"`
	FirstName          string            `json:"firstName" validate:"omitempty,max=100"`
	LastName           string            `json:"lastName" validate:"omitempty,max=100"`
	Address            string            `json:"address" validate:"omitempty,max=500"`
	AddressVerified    bool              `json:"addressVerified"`
	State              string            `json:"state" validate:"omitempty,max=100"`
	County             string            `json:"county" validate:"omitempty,max=100"`
	VerificationStatus string            `json:"verificationStatus" validate:"omitempty,max=50"`
	OwnershipVerified  bool              `json:"ownershipVerified"`
	RawImportFields    map[string]string `json:"rawImportFields" validate:"omitempty,max=100"`
}
