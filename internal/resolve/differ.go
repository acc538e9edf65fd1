package resolve

import (
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/factid"
)

// Diff classifies each resolved fact against the prior snapshot by
// identifier: unseen ids are new, seen ids with an equal payload are
// ignored, seen ids with a different payload are updated. The three-way
// split is what lets the write plan skip redundant writes while still
// re-upserting a changed "latest" fact that kept its id.
func Diff(resolved []domain.Fact, prior []domain.Fact) []domain.FactChange {
	priorByID := make(map[string]domain.Fact, len(prior))
	for _, p := range prior {
		priorByID[p.ID] = p
	}

	changes := make([]domain.FactChange, 0, len(resolved))
	for _, f := range resolved {
		p, seen := priorByID[f.ID]
		switch {
		case !seen:
			changes = append(changes, domain.FactChange{Fact: f, Status: domain.DiffNew})
		case PayloadEqual(f, p):
			changes = append(changes, domain.FactChange{Fact: f, Status: domain.DiffIgnored})
		default:
			changes = append(changes, domain.FactChange{Fact: f, Status: domain.DiffUpdated})
		}
	}
	return changes
}

// PayloadEqual compares the canonical payload of two facts, ignoring
// created/updated timestamps. Sharing an id is not enough: latest-marked
// ids are value independent, so only a full payload match identifies a
// restatement of the same knowledge.
func PayloadEqual(a, b domain.Fact) bool {
	if a.EntityID != b.EntityID || a.Key != b.Key || a.Domain != b.Domain {
		return false
	}
	if a.Conflict != b.Conflict {
		return false
	}
	if factid.StableSerialize(a.Value) != factid.StableSerialize(b.Value) {
		return false
	}
	if !validityEqual(a.Validity, b.Validity) {
		return false
	}
	return metaEqual(a.Meta, b.Meta)
}

func validityEqual(a, b *domain.Validity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func metaEqual(a, b domain.FactMeta) bool {
	if a.SourceType != b.SourceType || a.Temporal != b.Temporal || a.Finality != b.Finality {
		return false
	}
	if a.System != b.System || a.Latest != b.Latest || a.Override != b.Override || a.UserConfirmed != b.UserConfirmed {
		return false
	}
	if a.ExtractorID != b.ExtractorID {
		return false
	}
	return floatPtrEqual(a.Confidence, b.Confidence) && floatPtrEqual(a.SourceReliability, b.SourceReliability)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
