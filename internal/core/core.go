// Package core runs one complete decision turn: event identity, extraction,
// normalization, conflict resolution, stance adaptation, and the intervention
// verdict, all without touching a clock, the network, or storage. Everything
// the persistence layer may do afterwards is declared in a write plan first.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/extract"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/factid"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/fingerprint"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/freeze"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/intervene"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/resolve"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/stance"
)

var (
	ErrMissingUserID = errors.New("core: user id is required")
	ErrEmptyText     = errors.New("core: event text is empty")
	ErrInvalidSource = errors.New("core: invalid source type")
	ErrNilRegistry   = errors.New("core: freeze registry is required")
	ErrNilExtractors = errors.New("core: extractor registry is required")
)

// Engine bundles the fixed collaborators of one core run. It holds no
// per-user state; everything mutable arrives through Input and leaves
// through the DecisionRecord.
type Engine struct {
	frozen      *freeze.Registry
	extractors  *extract.Registry
	resolveOpts resolve.Options
	stanceOpts  stance.Options
	keyOpts     factid.KeyOptions
}

type EngineOptions struct {
	Resolve    resolve.Options
	Stance     stance.Options
	StrictKeys bool
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Resolve: resolve.DefaultOptions(),
		Stance:  stance.DefaultOptions(),
	}
}

func NewEngine(frozen *freeze.Registry, extractors *extract.Registry, opts EngineOptions) (*Engine, error) {
	if frozen == nil {
		return nil, ErrNilRegistry
	}
	if extractors == nil {
		return nil, ErrNilExtractors
	}
	return &Engine{
		frozen:      frozen,
		extractors:  extractors,
		resolveOpts: opts.Resolve,
		stanceOpts:  opts.Stance,
		keyOpts:     factid.KeyOptions{Strict: opts.StrictKeys},
	}, nil
}

// Input is the complete snapshot one run computes over. PriorFacts and
// PriorStance are caller-supplied state; the engine never reads storage, so
// two calls with equal Input produce byte-equal records.
type Input struct {
	UserID       string
	Locale       string
	Text         string
	SourceType   domain.SourceType
	DayBucket    string
	ExtractorIDs []string
	PriorFacts   []domain.Fact
	PriorStance  *domain.Stance
	RepeatCount  int
}

// RunOnce executes one full decision turn and returns the immutable record.
// Candidates that fail normalization are dropped with a warning, never
// silently repaired into something the user did not say.
func (e *Engine) RunOnce(in Input) (*domain.DecisionRecord, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrMissingUserID
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}
	source := in.SourceType
	if source == "" {
		source = domain.SourceChat
	}
	if !domain.ValidSourceType(string(source)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, in.SourceType)
	}

	event := domain.RawEvent{
		ID:         domain.NewRawEventID(in.UserID, in.Locale, in.Text),
		UserID:     in.UserID,
		Locale:     in.Locale,
		Text:       in.Text,
		SourceType: source,
		DayBucket:  in.DayBucket,
	}

	candidates, warnings := e.extractors.Run(extract.Input{
		RawEventID: event.ID,
		UserID:     in.UserID,
		Locale:     in.Locale,
		SourceType: source,
		Text:       in.Text,
	}, in.ExtractorIDs)

	validated, entities, normWarnings := e.normalize(candidates, in.Locale)
	warnings = append(warnings, normWarnings...)

	resolutions, resWarnings := e.resolveAll(validated, in.PriorFacts)
	warnings = append(warnings, resWarnings...)

	var winners []domain.Fact
	for _, r := range resolutions {
		if r.Winner != nil {
			winners = append(winners, *r.Winner)
		}
	}
	changes := resolve.Diff(winners, in.PriorFacts)

	current := domain.DefaultStance()
	if in.PriorStance != nil {
		current = *in.PriorStance
	}
	patch := stance.DetectPatch(in.Text, e.stanceOpts)
	next := stance.Apply(current, patch)

	triggers := intervene.DetectTriggers(in.Text, resolutions, in.RepeatCount)
	verdict := intervene.Decide(next, triggers)

	ids := in.ExtractorIDs
	if ids == nil {
		ids = []string{}
	}

	return &domain.DecisionRecord{
		RawEvent:     event,
		ExtractorIDs: ids,
		Warnings:     warnings,
		Entities:     entities,
		Resolutions:  resolutions,
		Changes:      changes,
		StancePatch:  patch,
		Stance:       next,
		Intervention: verdict,
	}, nil
}

// normalize canonicalizes each candidate into a full fact: frozen key,
// locale-normalized value, fingerprint-derived entity id, and the content
// hash that names it. The returned map remembers which raw reference each
// entity id came from.
func (e *Engine) normalize(candidates []domain.CandidateFact, locale string) ([]domain.Fact, map[string]domain.EntityRef, []string) {
	var facts []domain.Fact
	var warnings []string
	var entities map[string]domain.EntityRef

	for _, c := range candidates {
		key, err := factid.NormalizeKey(c.Key, c.Meta, e.frozen, e.keyOpts)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("dropped %q: %v", c.Key, err))
			continue
		}
		if !e.frozen.KnownDomain(c.Entity.Domain) {
			warnings = append(warnings, fmt.Sprintf("dropped %q: domain %q not frozen", key, c.Entity.Domain))
			continue
		}
		value, err := factid.NormalizeValue(c.Value, locale)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("dropped %q: %v", key, err))
			continue
		}

		canonical := fingerprint.Normalize(c.Entity.Fingerprint)
		if canonical == "" {
			warnings = append(warnings, fmt.Sprintf("dropped %q: fingerprint normalizes to nothing", key))
			continue
		}
		entityID := fingerprint.EntityID(c.Entity.Domain, canonical)
		if entities == nil {
			entities = make(map[string]domain.EntityRef)
		}
		if _, seen := entities[entityID]; !seen {
			entities[entityID] = c.Entity
		}

		meta := c.Meta
		meta.Temporal = domain.NormalizeTemporal(string(meta.Temporal))

		facts = append(facts, domain.Fact{
			ID:        factid.BuildFactID(entityID, key, value, meta.Latest, c.Validity),
			EntityID:  entityID,
			Domain:    c.Entity.Domain,
			Key:       key,
			Value:     value,
			Validity:  c.Validity,
			Source:    c.Source,
			SourceRef: c.SourceRef,
			Meta:      meta,
		})
	}
	return facts, entities, warnings
}

// resolveAll groups this turn's facts by (entity, key) in first-appearance
// order, joins each group with the matching prior facts as co-candidates,
// and resolves every group independently.
func (e *Engine) resolveAll(validated []domain.Fact, prior []domain.Fact) ([]domain.ResolveResult, []string) {
	type groupKey struct {
		entityID string
		key      string
	}

	var order []groupKey
	groups := make(map[groupKey][]domain.Fact)
	for _, f := range validated {
		gk := groupKey{f.EntityID, f.Key}
		if _, seen := groups[gk]; !seen {
			order = append(order, gk)
		}
		groups[gk] = append(groups[gk], f)
	}

	// Prior facts only matter where this turn asserted something; untouched
	// keys stay untouched.
	for _, p := range prior {
		gk := groupKey{p.EntityID, p.Key}
		if _, active := groups[gk]; !active {
			continue
		}
		if containsReplay(groups[gk], p) {
			continue
		}
		groups[gk] = append(groups[gk], p)
	}

	var results []domain.ResolveResult
	var warnings []string
	for _, gk := range order {
		res, err := resolve.Resolve(groups[gk], e.resolveOpts)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("resolve %s/%s: %v", gk.entityID, gk.key, err))
			continue
		}
		results = append(results, res)
	}
	return results, warnings
}

// containsReplay reports whether the group already carries a restatement of
// the prior: same id and same canonical payload. Latest-marked ids are value
// independent, so an id match alone proves nothing; a prior that shares an
// id while carrying a different payload is a live disagreement and must stay
// in the candidate set for resolution.
func containsReplay(facts []domain.Fact, p domain.Fact) bool {
	for _, f := range facts {
		if f.ID == p.ID && resolve.PayloadEqual(f, p) {
			return true
		}
	}
	return false
}
