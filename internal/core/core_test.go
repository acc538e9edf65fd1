package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/extract"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/fingerprint"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/freeze"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	frozen := freeze.NewRegistry()
	reg := extract.NewRegistry(frozen)
	if err := extract.RegisterBuiltins(reg); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	eng, err := NewEngine(frozen, reg, DefaultEngineOptions())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

const rentalText = "Hauptstr. 5: Kaltmiete beträgt 1.200,50 € und Kaution 2.400"

func rentalInput() Input {
	return Input{
		UserID:       "user-1",
		Locale:       "de-DE",
		Text:         rentalText,
		SourceType:   domain.SourceChat,
		DayBucket:    "2024-03-14",
		ExtractorIDs: []string{"property_terms"},
	}
}

func fptr(f float64) *float64 { return &f }

func TestRunOnce_InputValidation(t *testing.T) {
	eng := newTestEngine(t)

	if _, err := eng.RunOnce(Input{Text: "hallo"}); !errors.Is(err, ErrMissingUserID) {
		t.Errorf("missing user: err = %v", err)
	}
	if _, err := eng.RunOnce(Input{UserID: "u", Text: "   "}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("blank text: err = %v", err)
	}
	if _, err := eng.RunOnce(Input{UserID: "u", Text: "x", SourceType: "carrier_pigeon"}); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("bad source: err = %v", err)
	}
}

func TestRunOnce_ExtractsAndResolvesRentalTerms(t *testing.T) {
	eng := newTestEngine(t)

	rec, err := eng.RunOnce(rentalInput())
	if err != nil {
		t.Fatal(err)
	}

	if rec.RawEvent.ID != domain.NewRawEventID("user-1", "de-DE", rentalText) {
		t.Error("raw event id must be the content hash of (user, locale, text)")
	}
	if rec.RawEvent.Timestamp != 0 {
		t.Errorf("timestamp = %d, must stay zero on the pure path", rec.RawEvent.Timestamp)
	}

	byKey := map[string]*domain.Fact{}
	for _, r := range rec.Resolutions {
		if r.Winner != nil {
			byKey[r.Key] = r.Winner
		}
	}
	if len(byKey) != 3 {
		t.Fatalf("winners = %d (%v), want address, rent_cold, deposit", len(byKey), rec.Warnings)
	}
	if got := byKey["rent_cold"].Value; got != 1200.5 {
		t.Errorf("rent_cold = %#v, want 1200.5 from German separators", got)
	}
	if got := byKey["deposit"].Value; got != 2400.0 {
		t.Errorf("deposit = %#v, want 2400", got)
	}

	wantEntity := fingerprint.EntityID(domain.EntityProperty, fingerprint.Normalize("Hauptstr. 5"))
	for key, f := range byKey {
		if f.EntityID != wantEntity {
			t.Errorf("%s entity = %s, want fingerprint-derived %s", key, f.EntityID, wantEntity)
		}
	}

	for _, c := range rec.Changes {
		if c.Status != domain.DiffNew {
			t.Errorf("change %s = %q, want new on empty prior", c.Fact.Key, c.Status)
		}
	}
}

func TestRunOnce_Deterministic(t *testing.T) {
	eng := newTestEngine(t)
	in := rentalInput()

	first, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("two runs over equal input diverged:\n%s\n%s", a, b)
	}
}

func TestRunOnce_SecondApplicationIsAllIgnored(t *testing.T) {
	eng := newTestEngine(t)
	in := rentalInput()

	first, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}

	var prior []domain.Fact
	for _, r := range first.Resolutions {
		if r.Winner != nil {
			prior = append(prior, *r.Winner)
		}
	}

	in.PriorFacts = prior
	in.PriorStance = &first.Stance
	second, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}

	if second.RawEvent.ID != first.RawEvent.ID {
		t.Error("same statement must yield the same raw event id")
	}
	for _, c := range second.Changes {
		if c.Status != domain.DiffIgnored {
			t.Errorf("change %s = %q, want ignored on replay", c.Fact.Key, c.Status)
		}
	}
}

func TestRunOnce_ExtractorsDisabled(t *testing.T) {
	eng := newTestEngine(t)

	in := rentalInput()
	in.ExtractorIDs = nil
	in.PriorFacts = []domain.Fact{{
		ID:       "prior-1",
		EntityID: "e1",
		Domain:   domain.EntityProperty,
		Key:      "rent_cold",
		Value:    950.0,
	}}

	rec, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Resolutions) != 0 {
		t.Errorf("resolutions = %d, want none with extractors off", len(rec.Resolutions))
	}
	if len(rec.Changes) != 0 {
		t.Errorf("changes = %d, prior state alone must not produce changes", len(rec.Changes))
	}
}

func TestRunOnce_PriorFactJoinsResolution(t *testing.T) {
	eng := newTestEngine(t)
	entityID := fingerprint.EntityID(domain.EntityProperty, fingerprint.Normalize("Hauptstr. 5"))

	in := rentalInput()
	// A weaker prior assertion of a different rent: the fresh statement wins
	// but the disagreement is surfaced as a conflict.
	in.PriorFacts = []domain.Fact{{
		ID:       "prior-rent",
		EntityID: entityID,
		Domain:   domain.EntityProperty,
		Key:      "rent_cold",
		Value:    950.0,
		Source:   "contract",
		Meta: domain.FactMeta{
			SourceType:        domain.SourceContract,
			Confidence:        fptr(0.95),
			SourceReliability: fptr(0.9),
			Temporal:          domain.TemporalCurrent,
		},
	}}

	rec, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}

	var rent *domain.ResolveResult
	for i := range rec.Resolutions {
		if rec.Resolutions[i].Key == "rent_cold" {
			rent = &rec.Resolutions[i]
		}
	}
	if rent == nil {
		t.Fatal("no resolution for rent_cold")
	}
	if rent.Outcome != domain.OutcomeResolvedWithConflict {
		t.Errorf("outcome = %q, want resolved_with_conflict", rent.Outcome)
	}
	if rent.Winner == nil || rent.Winner.Value != 1200.5 {
		t.Errorf("winner = %+v, want the fresh statement", rent.Winner)
	}
	if len(rent.Scores) != 2 {
		t.Errorf("scores = %d, prior fact must appear as co-candidate", len(rent.Scores))
	}

	// The conflict feeds straight into trigger detection.
	if rec.Intervention.Level == domain.LevelObserve {
		t.Error("a surfaced contradiction must at least hint")
	}
	found := false
	for _, tr := range rec.Intervention.Triggers {
		if tr == domain.TriggerContradiction {
			found = true
		}
	}
	if !found {
		t.Errorf("triggers = %v, want contradiction", rec.Intervention.Triggers)
	}
}

func TestRunOnce_StoredWinnerContestsLaterStatement(t *testing.T) {
	eng := newTestEngine(t)

	contract := rentalInput()
	contract.Text = "Hauptstr. 5: Kaltmiete beträgt 1.000 €"
	contract.SourceType = domain.SourceContract
	first, err := eng.RunOnce(contract)
	if err != nil {
		t.Fatal(err)
	}

	// The prior snapshot is the previous turn's winners, ids and all. Latest
	// ids are value independent, so the weaker statement below collides with
	// the stored fact on the same id while asserting a different number.
	var prior []domain.Fact
	for _, r := range first.Resolutions {
		if r.Winner != nil {
			prior = append(prior, *r.Winner)
		}
	}

	email := rentalInput()
	email.Text = "Hauptstr. 5: Kaltmiete beträgt 900 €"
	email.SourceType = domain.SourceEmail
	email.PriorFacts = prior
	second, err := eng.RunOnce(email)
	if err != nil {
		t.Fatal(err)
	}

	var rent *domain.ResolveResult
	for i := range second.Resolutions {
		if second.Resolutions[i].Key == "rent_cold" {
			rent = &second.Resolutions[i]
		}
	}
	if rent == nil {
		t.Fatal("no resolution for rent_cold")
	}
	if len(rent.Scores) != 2 {
		t.Fatalf("scores = %d, the stored fact must contest despite sharing the id", len(rent.Scores))
	}
	if rent.Outcome != domain.OutcomeResolvedWithConflict {
		t.Errorf("outcome = %q, want resolved_with_conflict", rent.Outcome)
	}
	if rent.Winner == nil || rent.Winner.Value != 1000.0 {
		t.Fatalf("winner = %+v, the contract fact must survive the weaker email", rent.Winner)
	}
	if rent.Winner.Meta.SourceType != domain.SourceContract {
		t.Errorf("winner source = %q, want contract", rent.Winner.Meta.SourceType)
	}

	for _, c := range second.Changes {
		switch c.Fact.Key {
		case "rent_cold":
			if c.Status != domain.DiffUpdated || !c.Fact.Conflict {
				t.Errorf("rent change = %q conflict=%v, want updated with the conflict recorded", c.Status, c.Fact.Conflict)
			}
		case "address":
			if c.Status != domain.DiffIgnored {
				t.Errorf("address change = %q, a same-value restatement must not downgrade the stored fact", c.Status)
			}
		}
	}

	found := false
	for _, tr := range second.Intervention.Triggers {
		if tr == domain.TriggerContradiction {
			found = true
		}
	}
	if !found {
		t.Errorf("triggers = %v, want contradiction", second.Intervention.Triggers)
	}
}

func TestRunOnce_CloseTieNeedsUser(t *testing.T) {
	eng := newTestEngine(t)
	entityID := fingerprint.EntityID(domain.EntityProperty, fingerprint.Normalize("Hauptstr. 5"))

	in := rentalInput()
	// Fresh chat statement scores 66.25; this prior scores 64.75. Within the
	// tie delta and disagreeing, so nobody wins.
	in.PriorFacts = []domain.Fact{{
		ID:       "prior-rent",
		EntityID: entityID,
		Domain:   domain.EntityProperty,
		Key:      "rent_cold",
		Value:    950.0,
		Source:   "contract",
		Meta: domain.FactMeta{
			SourceType:        domain.SourceContract,
			Confidence:        fptr(0.99),
			SourceReliability: fptr(1.0),
			Temporal:          domain.TemporalCurrent,
		},
	}}

	rec, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rec.Resolutions {
		if r.Key != "rent_cold" {
			continue
		}
		if r.Outcome != domain.OutcomeNeedsUser {
			t.Errorf("outcome = %q, want needs_user", r.Outcome)
		}
		if r.Winner != nil {
			t.Error("a tie must not crown a winner")
		}
	}
}

func TestRunOnce_StanceFeedback(t *testing.T) {
	eng := newTestEngine(t)

	rec, err := eng.RunOnce(Input{
		UserID:       "user-1",
		Locale:       "de-DE",
		Text:         "Das war mir zu direkt.",
		ExtractorIDs: []string{"property_terms"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.StancePatch == nil {
		t.Fatal("expected a stance patch for explicit feedback")
	}
	if rec.Stance.Directness >= 0.5 {
		t.Errorf("directness = %v, want lowered from 0.5", rec.Stance.Directness)
	}
}

func TestRunOnce_UnknownExtractorWarns(t *testing.T) {
	eng := newTestEngine(t)

	in := rentalInput()
	in.ExtractorIDs = []string{"property_terms", "mind_reader"}

	rec, err := eng.RunOnce(in)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range rec.Warnings {
		if w == `extractor "mind_reader": not registered` {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want unregistered-extractor warning", rec.Warnings)
	}
}
