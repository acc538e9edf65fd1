package domain

import "time"

type SourceType string

const (
	SourceChat     SourceType = "chat"
	SourceEmail    SourceType = "email"
	SourceContract SourceType = "contract"
	SourceDocument SourceType = "document"
	SourceSystem   SourceType = "system"
)

func ValidSourceType(s string) bool {
	switch SourceType(s) {
	case SourceChat, SourceEmail, SourceContract, SourceDocument, SourceSystem:
		return true
	}
	return false
}

// Temporal marks how a fact relates to the present. The resolver scores
// these; everything else just carries them.
type Temporal string

const (
	TemporalCurrent    Temporal = "current"
	TemporalAmended    Temporal = "amended"
	TemporalHistorical Temporal = "historical"
	TemporalUnknown    Temporal = "unknown"
)

// NormalizeTemporal folds the tense-style spellings used by older inputs
// onto the canonical vocabulary.
func NormalizeTemporal(t string) Temporal {
	switch Temporal(t) {
	case TemporalCurrent, TemporalAmended, TemporalHistorical, TemporalUnknown:
		return Temporal(t)
	}
	switch t {
	case "present":
		return TemporalCurrent
	case "past":
		return TemporalHistorical
	case "future":
		return TemporalUnknown
	}
	return TemporalUnknown
}

func (t Temporal) Score() float64 {
	switch t {
	case TemporalCurrent:
		return 1.0
	case TemporalAmended:
		return 0.9
	case TemporalHistorical:
		return 0.4
	default:
		return 0.5
	}
}

type Finality string

const (
	FinalityDraft Finality = "draft"
	FinalityFinal Finality = "final"
)

// FactMeta is the provenance and quality envelope of a fact. Confidence and
// SourceReliability are pointers so that "not supplied" is distinguishable
// from zero; the resolver substitutes neutral midpoints for missing values.
type FactMeta struct {
	SourceType        SourceType `json:"source_type,omitempty"`
	Confidence        *float64   `json:"confidence,omitempty"`
	SourceReliability *float64   `json:"source_reliability,omitempty"`
	Temporal          Temporal   `json:"temporal,omitempty"`
	System            bool       `json:"system,omitempty"`
	Latest            bool       `json:"latest,omitempty"`
	Override          bool       `json:"override,omitempty"`
	UserConfirmed     bool       `json:"user_confirmed,omitempty"`
	Finality          Finality   `json:"finality,omitempty"`
	ExtractorID       string     `json:"extractor_id,omitempty"`
}

// Validity bounds the time window a fact holds for. Dates are ISO strings so
// serialization stays byte-stable.
type Validity struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Fact is the atomic unit of knowledge. ID is a content hash over
// (entity, key, value-or-latest-marker, validity); facts marked latest share
// one id across values so a newer assertion overwrites instead of piling up.
type Fact struct {
	ID        string       `json:"id"`
	EntityID  string       `json:"entity_id"`
	Domain    EntityDomain `json:"domain"`
	Key       string       `json:"key"`
	Value     any          `json:"value"`
	Validity  *Validity    `json:"validity,omitempty"`
	Source    string       `json:"source"`
	SourceRef string       `json:"source_ref"`
	Meta      FactMeta     `json:"meta"`
	Conflict  bool         `json:"conflict"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

// CandidateFact is what extractors emit: a fact proposal whose entity is
// still a raw fingerprint and whose value is not yet canonicalized.
type CandidateFact struct {
	Entity    EntityRef `json:"entity"`
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	Validity  *Validity `json:"validity,omitempty"`
	Source    string    `json:"source"`
	SourceRef string    `json:"source_ref"`
	Meta      FactMeta  `json:"meta"`
}

// FactWithScore pairs a fact with a similarity score from vector search.
type FactWithScore struct {
	Fact
	Score float32 `json:"score"`
}
