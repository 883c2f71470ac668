// Package leadscore provides the lead qualification bounded context: the
// four-component lead scorer, its persistence port, and route registration.
package leadscore

import (
	"time"

	"github.com/google/uuid"
)

// Component names. These are the keys fed to the score engine and reported
// in the per-component contribution breakdown.
const (
	ComponentContactQuality     = "contactQuality"
	ComponentPropertyQuality    = "propertyQuality"
	ComponentVerificationStatus = "verificationStatus"
	ComponentOwnershipVerified  = "ownershipVerified"
)

// AllComponents returns the four component names in presentation order.
func AllComponents() []string {
	return []string{
		ComponentContactQuality,
		ComponentPropertyQuality,
		ComponentVerificationStatus,
		ComponentOwnershipVerified,
	}
}

// Verification statuses recognized by the verification sub-scorer. Anything
// else scores as unverified.
const (
	StatusVerified          = "verified"
	StatusPartiallyVerified = "partially_verified"
	StatusPending           = "pending"
	StatusFailed            = "failed"
)

// LeadRecord is the plain data snapshot of a lead the scorer operates on.
// It is a transfer object; scoring behavior lives in the service, never on
// the record itself.
type LeadRecord struct {
	ID                 uuid.UUID         `json:"id"`
	PhoneNumbers       []string          `json:"phoneNumbers"`
	Email              string            `json:"email"`
	FirstName          string            `json:"firstName"`
	LastName           string            `json:"lastName"`
	Address            string            `json:"address"`
	AddressVerified    bool              `json:"addressVerified"`
	State              string            `json:"state"`
	County             string            `json:"county"`
	VerificationStatus string            `json:"verificationStatus"`
	OwnershipVerified  bool              `json:"ownershipVerified"`
	RawImportFields    map[string]string `json:"rawImportFields,omitempty"`
}

// LeadScoreResult is the scorer's output for one lead.
type LeadScoreResult struct {
	LeadID        uuid.UUID          `json:"leadId"`
	Score         int                `json:"score"`
	Category      string             `json:"category"`
	Contributions map[string]float64 `json:"contributions"`
	Weights       map[string]float64 `json:"weights"`
	Explanation   string             `json:"explanation"`
	ScoredAt      time.Time          `json:"scoredAt"`
}
