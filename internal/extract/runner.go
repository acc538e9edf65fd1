// Package extract runs registered pure fact producers over one input event.
// Extractors never decide anything: they propose candidate facts, and every
// proposal still has to survive normalization, the freeze check, and
// conflict resolution downstream.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/freeze"
)

var (
	ErrUnknownExtractorID = errors.New("extractor id not in freeze registry")
	ErrDuplicateExtractor = errors.New("extractor id already registered")
)

// Input is the snapshot one extractor sees. Extractors are pure functions
// over it; they get no clock, no storage, and no network.
type Input struct {
	RawEventID string
	UserID     string
	Locale     string
	SourceType domain.SourceType
	Text       string
}

// Extractor is a pure fact producer registered under a frozen id.
type Extractor interface {
	ID() string
	Extract(in Input) ([]domain.CandidateFact, []string, error)
}

// Registry holds extractors in registration order. Registration is gated by
// the freeze registry: an id outside the frozen list is refused outright.
type Registry struct {
	frozen *freeze.Registry
	order  []Extractor
	byID   map[string]Extractor
}

func NewRegistry(frozen *freeze.Registry) *Registry {
	return &Registry{
		frozen: frozen,
		byID:   make(map[string]Extractor),
	}
}

func (r *Registry) Register(e Extractor) error {
	id := e.ID()
	if !r.frozen.KnownExtractor(id) {
		return fmt.Errorf("%w: %q", ErrUnknownExtractorID, id)
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateExtractor, id)
	}
	r.byID[id] = e
	r.order = append(r.order, e)
	return nil
}

// Run invokes the requested extractors in registration order and collects
// structurally valid candidates. One extractor failing, by error or panic,
// is reported as a warning and never aborts the batch.
func (r *Registry) Run(in Input, activeIDs []string) ([]domain.CandidateFact, []string) {
	active := make(map[string]bool, len(activeIDs))
	for _, id := range activeIDs {
		if _, known := r.byID[id]; !known {
			active[id] = false
			continue
		}
		active[id] = true
	}

	var facts []domain.CandidateFact
	var warnings []string

	for _, id := range activeIDs {
		if !active[id] {
			warnings = append(warnings, fmt.Sprintf("extractor %q: not registered", id))
		}
	}

	for _, e := range r.order {
		if !active[e.ID()] {
			continue
		}
		produced, warns, err := runOne(e, in)
		for _, w := range warns {
			warnings = append(warnings, fmt.Sprintf("extractor %q: %s", e.ID(), w))
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("extractor %q: %v", e.ID(), err))
			continue
		}
		for _, f := range produced {
			if reason := validateCandidate(f); reason != "" {
				warnings = append(warnings, fmt.Sprintf("extractor %q: dropped fact %q: %s", e.ID(), f.Key, reason))
				continue
			}
			f.Meta.ExtractorID = e.ID()
			facts = append(facts, f)
		}
	}

	return facts, warnings
}

func runOne(e Extractor, in Input) (facts []domain.CandidateFact, warnings []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			facts = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return e.Extract(in)
}

func validateCandidate(f domain.CandidateFact) string {
	if strings.TrimSpace(f.Key) == "" {
		return "missing key"
	}
	if !domain.ValidEntityDomain(string(f.Entity.Domain)) {
		return "unknown entity domain"
	}
	if strings.TrimSpace(f.Entity.Fingerprint) == "" {
		return "empty entity fingerprint"
	}
	if f.Source == "" {
		return "missing source"
	}
	if f.SourceRef == "" {
		return "missing source ref"
	}
	return ""
}
