package leadscore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadscout_backend/internal/cache"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"
)

func testService() *Service {
	resultCache, _ := cache.New("", time.Hour, logger.New("test"))
	return NewService(nil, resultCache, nil)
}

func fullyQualifiedLead() *LeadRecord {
	return &LeadRecord{
		ID:                 uuid.New(),
		PhoneNumbers:       []string{"+12125551234", "+13105557890", "+14155552671"},
		Email:              "owner@example.com",
		FirstName:          "Dana",
		LastName:           "Whitfield",
		Address:            "12 Elm Street",
		AddressVerified:    true,
		State:              "NY",
		County:             "Kings",
		VerificationStatus: StatusVerified,
		OwnershipVerified:  true,
		RawImportFields: map[string]string{
			"property_value": "450000",
			"sqft":           "1850",
			"lot_size":       "0.25",
			"year_built":     "1974",
		},
	}
}

func TestFullyQualifiedLeadIsHot(t *testing.T) {
	svc := testService()

	result, err := svc.ScoreLead(fullyQualifiedLead(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score < 80 {
		t.Fatalf("expected score >= 80 for a fully qualified lead, got %d", result.Score)
	}
	if result.Category != "Hot" {
		t.Fatalf("expected category Hot, got %q", result.Category)
	}
}

func TestUnreachableLeadIsCold(t *testing.T) {
	svc := testService()

	lead := &LeadRecord{
		ID:                 uuid.New(),
		VerificationStatus: StatusPending,
		OwnershipVerified:  false,
	}
	result, err := svc.ScoreLead(lead, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != "Cold" {
		t.Fatalf("expected category Cold, got %q (score %d)", result.Category, result.Score)
	}
}

func TestPhoneBonusCapsAtThree(t *testing.T) {
	svc := testService()

	lead := &LeadRecord{ID: uuid.New(), PhoneNumbers: []string{
		"+12125551234", "+13105557890", "+14155552671", "+16175550001", "+17185550002",
	}}
	capped, err := svc.ScoreLead(lead, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead.PhoneNumbers = lead.PhoneNumbers[:3]
	three, err := svc.ScoreLead(lead, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capped.Score != three.Score {
		t.Fatalf("expected phone bonus capped at 3 numbers, got %d vs %d", capped.Score, three.Score)
	}
}

func TestInvalidPhoneNumbersEarnNoBonus(t *testing.T) {
	svc := testService()

	noPhones := &LeadRecord{ID: uuid.New(), Email: "a@b.com"}
	junkPhones := &LeadRecord{ID: uuid.New(), Email: "a@b.com", PhoneNumbers: []string{"not-a-phone", "12"}}

	base, _ := svc.ScoreLead(noPhones, nil)
	junk, _ := svc.ScoreLead(junkPhones, nil)
	if base.Score != junk.Score {
		t.Fatalf("invalid phones must not score, got %d vs %d", base.Score, junk.Score)
	}
}

func TestSingleNameScoresLessThanFullName(t *testing.T) {
	svc := testService()

	single := &LeadRecord{ID: uuid.New(), FirstName: "Dana"}
	full := &LeadRecord{ID: uuid.New(), FirstName: "Dana", LastName: "Whitfield"}

	singleResult, _ := svc.ScoreLead(single, nil)
	fullResult, _ := svc.ScoreLead(full, nil)
	if singleResult.Score >= fullResult.Score {
		t.Fatalf("expected full name to outscore single name, got %d vs %d", fullResult.Score, singleResult.Score)
	}
}

func TestVerificationStatusMapping(t *testing.T) {
	cases := []struct {
		status string
		want   float64
	}{
		{StatusVerified, 100},
		{StatusPartiallyVerified, 50},
		{StatusPending, 0},
		{StatusFailed, 0},
		{"", 0},
		{"garbage", 0},
		{"VERIFIED", 100},
	}

	for _, tc := range cases {
		if got := scoreVerificationStatus(tc.status); got != tc.want {
			t.Fatalf("status %q: expected %v, got %v", tc.status, tc.want, got)
		}
	}
}

func TestImportFieldBonusRecognizesColumns(t *testing.T) {
	fields := map[string]string{
		"Property_Value": "$450,000",
		"sqft":           "1850",
		"lot_size":       "0.25",
		"year_built":     "1974",
	}
	if got := importFieldBonus(fields); got != 30 {
		t.Fatalf("expected full import bonus 30, got %v", got)
	}

	if got := importFieldBonus(map[string]string{"value": "n/a"}); got != 0 {
		t.Fatalf("unparseable values must not score, got %v", got)
	}
	if got := importFieldBonus(nil); got != 0 {
		t.Fatalf("expected 0 for missing fields, got %v", got)
	}
}

func TestPropertyUnmeasuredOmittedFromAggregate(t *testing.T) {
	svc := testService()

	// No property signal at all: the property component must be excluded
	// from the denominator, not scored as an implicit zero.
	lead := &LeadRecord{
		ID:                 uuid.New(),
		PhoneNumbers:       []string{"+12125551234", "+13105557890", "+14155552671"},
		Email:              "owner@example.com",
		FirstName:          "Dana",
		LastName:           "Whitfield",
		VerificationStatus: StatusVerified,
		OwnershipVerified:  true,
	}
	result, err := svc.ScoreLead(lead, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// contact 100, verification 100, ownership 100 over weights .35+.25+.15.
	if result.Score != 100 {
		t.Fatalf("expected 100 with property omitted, got %d", result.Score)
	}
	if _, ok := result.Contributions[ComponentPropertyQuality]; ok {
		t.Fatalf("unmeasured property must not appear in contributions")
	}
}

func TestNegativeWeightRejected(t *testing.T) {
	svc := testService()

	_, err := svc.ScoreLead(fullyQualifiedLead(), map[string]float64{ComponentContactQuality: -1})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
}

func TestUnknownWeightComponentRejected(t *testing.T) {
	svc := testService()

	_, err := svc.ScoreLead(fullyQualifiedLead(), map[string]float64{"charisma": 0.5})
	if err == nil {
		t.Fatalf("expected validation error for unknown component")
	}
}

func TestCustomWeightsOverlayDefaults(t *testing.T) {
	svc := testService()

	lead := fullyQualifiedLead()
	lead.VerificationStatus = StatusPending

	defaultResult, _ := svc.ScoreLead(lead, nil)
	reweighted, _ := svc.ScoreLead(lead, map[string]float64{ComponentVerificationStatus: 0.6})
	if reweighted.Score >= defaultResult.Score {
		t.Fatalf("upweighting a zero component must lower the score, got %d vs %d", reweighted.Score, defaultResult.Score)
	}
	if reweighted.Weights[ComponentContactQuality] != 0.35 {
		t.Fatalf("unspecified weights must keep their defaults, got %v", reweighted.Weights[ComponentContactQuality])
	}
}

func TestScoreByIDWithoutSourceReturnsUnavailable(t *testing.T) {
	// Deployments without a lead database register the routes anyway;
	// the service must answer cleanly instead of dereferencing nil.
	svc := testService()

	_, err := svc.ScoreByID(context.Background(), uuid.New(), nil)
	if err == nil {
		t.Fatalf("expected error when no lead source is configured")
	}
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable kind, got %v", err)
	}

	// Custom weights take the cache-bypass path; it must be guarded too.
	_, err = svc.ScoreByID(context.Background(), uuid.New(), map[string]float64{ComponentContactQuality: 0.5})
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable kind on weighted path, got %v", err)
	}
}

type fakeSource struct {
	lead  *LeadRecord
	reads int
}

func (f *fakeSource) Read(ctx context.Context, id uuid.UUID) (*LeadRecord, error) {
	f.reads++
	return f.lead, nil
}

func TestScoreByIDReadsFromSource(t *testing.T) {
	lead := fullyQualifiedLead()
	source := &fakeSource{lead: lead}
	resultCache, _ := cache.New("", time.Hour, logger.New("test"))
	svc := NewService(source, resultCache, nil)

	result, err := svc.ScoreByID(context.Background(), lead.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LeadID != lead.ID {
		t.Fatalf("expected result for lead %s, got %s", lead.ID, result.LeadID)
	}
	if source.reads != 1 {
		t.Fatalf("expected one source read, got %d", source.reads)
	}
}

func TestExplanationVariesByBucket(t *testing.T) {
	svc := testService()

	hot, _ := svc.ScoreLead(fullyQualifiedLead(), nil)
	cold, _ := svc.ScoreLead(&LeadRecord{ID: uuid.New()}, nil)
	if hot.Explanation == cold.Explanation {
		t.Fatalf("expected bucketed explanations to differ")
	}
	if hot.Explanation == "" || cold.Explanation == "" {
		t.Fatalf("explanations must not be empty")
	}
}
