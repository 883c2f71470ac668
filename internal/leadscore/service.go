package leadscore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadscout_backend/internal/cache"
	"leadscout_backend/internal/config"
	"leadscout_backend/internal/scoring"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/phone"
)

// contactRawMax is the maximum raw contact score: 3 phones (30) + email
// (20) + full name (15). The sub-scorer scales raw points to 0-100 so a
// fully reachable lead contributes a full component, not a capped one.
const contactRawMax = 65.0

const maxPhoneBonus = 3

// DefaultWeights returns the default component weights. Contact quality
// dominates: an unreachable lead is worthless regardless of the property.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		ComponentContactQuality:     0.35,
		ComponentPropertyQuality:    0.25,
		ComponentVerificationStatus: 0.25,
		ComponentOwnershipVerified:  0.15,
	}
}

// WeightsFromConfig maps the configured lead weights onto component names.
func WeightsFromConfig(w config.LeadScoreWeights) map[string]float64 {
	return map[string]float64{
		ComponentContactQuality:     w.ContactQuality,
		ComponentPropertyQuality:    w.PropertyQuality,
		ComponentVerificationStatus: w.VerificationStatus,
		ComponentOwnershipVerified:  w.OwnershipVerified,
	}
}

// LeadSource reads lead snapshots from wherever the caller persists them.
type LeadSource interface {
	Read(ctx context.Context, id uuid.UUID) (*LeadRecord, error)
}

// Service computes lead qualification scores.
type Service struct {
	source   LeadSource
	cache    *cache.Cache
	defaults map[string]float64
}

// NewService wires the scorer. source may be nil when only inline scoring
// is used (ScoreLead with a caller-supplied record); defaults may be nil to
// use the built-in weights.
func NewService(source LeadSource, resultCache *cache.Cache, defaults map[string]float64) *Service {
	if defaults == nil {
		defaults = DefaultWeights()
	}
	return &Service{source: source, cache: resultCache, defaults: defaults}
}

// ScoreByID reads the lead from the source and scores it, serving repeat
// requests for the same lead from cache.
func (s *Service) ScoreByID(ctx context.Context, id uuid.UUID, weights map[string]float64) (*LeadScoreResult, error) {
	if s.source == nil {
		return nil, apperr.Unavailable("lead source not configured")
	}
	if err := scoring.ValidateWeights(weights, AllComponents()); err != nil {
		return nil, err
	}

	// Custom weights bypass the cache; only the default weighting is a
	// stable function of the lead alone.
	if len(weights) > 0 {
		lead, err := s.source.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.score(lead, weights), nil
	}

	var result LeadScoreResult
	key := fmt.Sprintf("leadscore:%s", id)
	err := s.cache.Fetch(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		lead, err := s.source.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.score(lead, nil), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ScoreLead scores a caller-supplied lead record without touching the
// source or the cache. Used by the inline endpoint and the backfill job.
func (s *Service) ScoreLead(lead *LeadRecord, weights map[string]float64) (*LeadScoreResult, error) {
	if err := scoring.ValidateWeights(weights, AllComponents()); err != nil {
		return nil, err
	}
	return s.score(lead, weights), nil
}

// Invalidate drops the cached score for a lead, forcing the next read to
// recompute. Called after a lead is updated.
func (s *Service) Invalidate(ctx context.Context, id uuid.UUID) {
	s.cache.Invalidate(ctx, fmt.Sprintf("leadscore:%s", id))
}

func (s *Service) score(lead *LeadRecord, weights map[string]float64) *LeadScoreResult {
	// Custom maps overlay the defaults, so a caller can reweight one
	// component without restating the rest.
	merged := make(map[string]float64, len(s.defaults))
	for name, weight := range s.defaults {
		merged[name] = weight
	}
	for name, weight := range weights {
		merged[name] = weight
	}
	weights = merged

	components := make(map[string]scoring.Component, 4)
	addComponent := func(name string, score float64, measured bool) {
		if !measured {
			return
		}
		components[name] = scoring.Component{Score: score, Weight: weights[name]}
	}

	contactScore, contactMeasured := scoreContactQuality(lead)
	addComponent(ComponentContactQuality, contactScore, contactMeasured)

	propertyScore, propertyMeasured := scorePropertyQuality(lead)
	addComponent(ComponentPropertyQuality, propertyScore, propertyMeasured)

	addComponent(ComponentVerificationStatus, scoreVerificationStatus(lead.VerificationStatus), true)
	addComponent(ComponentOwnershipVerified, scoreOwnership(lead.OwnershipVerified), true)

	aggregate := scoring.Aggregate(components)

	return &LeadScoreResult{
		LeadID:        lead.ID,
		Score:         aggregate,
		Category:      scoring.LeadCategory(aggregate),
		Contributions: scoring.Contributions(components),
		Weights:       weights,
		Explanation:   explanation(aggregate),
		ScoredAt:      time.Now().UTC(),
	}
}

// scoreContactQuality rates how reachable the lead is. Raw points: up to
// three valid phone numbers at 10 each, 20 for an email, 15 for a complete
// name (10 when only one name field is filled). Raw max 65, scaled to 100.
func scoreContactQuality(lead *LeadRecord) (float64, bool) {
	var raw float64

	validPhones := 0
	for _, number := range lead.PhoneNumbers {
		if phone.IsValid(number) {
			validPhones++
		}
	}
	if validPhones > maxPhoneBonus {
		validPhones = maxPhoneBonus
	}
	raw += float64(validPhones) * 10

	if strings.TrimSpace(lead.Email) != "" {
		raw += 20
	}

	first := strings.TrimSpace(lead.FirstName)
	last := strings.TrimSpace(lead.LastName)
	switch {
	case first != "" && last != "":
		raw += 15
	case first != "" || last != "":
		raw += 10
	}

	return raw * 100 / contactRawMax, true
}

// scorePropertyQuality rates how much is known about the property. Address
// presence dominates; the raw-import bonuses reward records that arrived
// with parseable value, size, lot, and build-year columns. Raw max 100.
// Unmeasured when the record carries no property signal at all.
func scorePropertyQuality(lead *LeadRecord) (float64, bool) {
	var raw float64
	measured := false

	if strings.TrimSpace(lead.Address) != "" {
		measured = true
		raw += 30
		if lead.AddressVerified {
			raw += 20
		}
	}
	if strings.TrimSpace(lead.State) != "" {
		measured = true
		raw += 10
	}
	if strings.TrimSpace(lead.County) != "" {
		measured = true
		raw += 10
	}

	bonus := importFieldBonus(lead.RawImportFields)
	if bonus > 0 {
		measured = true
		raw += bonus
	}

	return raw, measured
}

// importFieldColumns maps recognized raw-import column names to the bonus
// they carry when their value parses as a positive number.
var importFieldColumns = []struct {
	names []string
	bonus float64
}{
	{names: []string{"property_value", "value", "estimated_value", "market_value"}, bonus: 10},
	{names: []string{"size", "sqft", "square_feet", "living_area"}, bonus: 7},
	{names: []string{"lot_size", "lot", "acreage"}, bonus: 7},
	{names: []string{"year_built", "yearbuilt", "built"}, bonus: 6},
}

func importFieldBonus(fields map[string]string) float64 {
	if len(fields) == 0 {
		return 0
	}

	normalized := make(map[string]string, len(fields))
	for name, value := range fields {
		normalized[strings.ToLower(strings.TrimSpace(name))] = value
	}

	var bonus float64
	for _, column := range importFieldColumns {
		for _, name := range column.names {
			if parsesPositiveNumber(normalized[name]) {
				bonus += column.bonus
				break
			}
		}
	}
	return bonus
}

func parsesPositiveNumber(value string) bool {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return false
	}

	number, err := strconv.ParseFloat(cleaned, 64)
	return err == nil && number > 0
}

// scoreVerificationStatus maps the categorical status onto the score scale.
// Pending and failed score the same as unknown: an unconfirmed lead carries
// no verification credit.
func scoreVerificationStatus(status string) float64 {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusVerified:
		return 100
	case StatusPartiallyVerified:
		return 50
	default:
		return 0
	}
}

func scoreOwnership(verified bool) float64 {
	if verified {
		return 100
	}
	return 0
}

// explanation returns a human-readable summary selected by score bucket.
func explanation(score int) string {
	switch {
	case score >= 80:
		return "Highly qualified lead with strong contact and property data."
	case score >= 65:
		return "Well qualified lead; most contact and property details are present."
	case score >= 50:
		return "Moderately qualified lead; some contact or property details are missing."
	case score >= 30:
		return "Weakly qualified lead; significant contact or verification gaps."
	default:
		return "Poorly qualified lead; little usable contact or property data."
	}
}
