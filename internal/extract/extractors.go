package extract

import (
	"regexp"
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

// RegisterBuiltins wires the shipped extractors into a registry. The order
// here is the processing order for every input event.
func RegisterBuiltins(r *Registry) error {
	for _, e := range []Extractor{
		&propertyTermsExtractor{},
		&contactDetailsExtractor{},
		&documentMetaExtractor{},
		&userOverrideExtractor{},
	} {
		if err := r.Register(e); err != nil {
			return err
		}
	}
	return nil
}

var (
	addressPattern = regexp.MustCompile(`(?i)\b([\p{L}][\p{L}.\- ]*?(?:str\.?|straße|strasse|weg|platz|allee|gasse)\s*\d+[a-z]?)\b`)
	termPattern    = regexp.MustCompile(`(?i)\b(kaltmiete|nettokaltmiete|grundmiete|warmmiete|bruttomiete|nebenkosten|betriebskosten|kaution|wohnfläche|wohnflaeche|zimmer)\b\s*(?:beträgt|betraegt|ist|liegt bei|[:=])?\s*([0-9][0-9.,]*)`)
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`(?:\+49|0)[0-9][0-9 /\-]{5,}[0-9]`)
	personPattern  = regexp.MustCompile(`\b(?:Herr|Frau)\s+(\p{Lu}[\p{L}\-]+(?:\s+\p{Lu}[\p{L}\-]+)?)`)
	datePattern    = regexp.MustCompile(`\b([0-3]?[0-9])\.([01]?[0-9])\.((?:19|20)[0-9]{2})\b`)
)

func fptr(f float64) *float64 { return &f }

// metaFor seeds confidence and reliability from the channel a statement
// arrived on. Contracts outrank documents outrank chat outrank mail.
func metaFor(st domain.SourceType) domain.FactMeta {
	m := domain.FactMeta{
		SourceType: st,
		Temporal:   domain.TemporalCurrent,
		Latest:     true,
	}
	switch st {
	case domain.SourceContract:
		m.Confidence = fptr(0.95)
		m.SourceReliability = fptr(0.9)
	case domain.SourceDocument:
		m.Confidence = fptr(0.8)
		m.SourceReliability = fptr(0.8)
	case domain.SourceChat:
		m.Confidence = fptr(0.75)
		m.SourceReliability = fptr(0.7)
	case domain.SourceEmail:
		m.Confidence = fptr(0.6)
		m.SourceReliability = fptr(0.6)
	default:
		m.Confidence = fptr(0.5)
		m.SourceReliability = fptr(0.5)
	}
	return m
}

// propertyTermsExtractor reads rental terms ("Kaltmiete 1.200,50 €") and
// attaches them to the property mentioned in the same text.
type propertyTermsExtractor struct{}

func (e *propertyTermsExtractor) ID() string { return "property_terms" }

func (e *propertyTermsExtractor) Extract(in Input) ([]domain.CandidateFact, []string, error) {
	return extractPropertyTerms(in, metaFor(in.SourceType))
}

func extractPropertyTerms(in Input, meta domain.FactMeta) ([]domain.CandidateFact, []string, error) {
	terms := termPattern.FindAllStringSubmatch(in.Text, -1)
	if len(terms) == 0 {
		return nil, nil, nil
	}

	addr := addressPattern.FindString(in.Text)
	if addr == "" {
		return nil, []string{"rental terms found but no property reference"}, nil
	}

	ref := domain.EntityRef{Domain: domain.EntityProperty, Fingerprint: addr}
	facts := make([]domain.CandidateFact, 0, len(terms)+1)
	facts = append(facts, domain.CandidateFact{
		Entity:    ref,
		Key:       "address",
		Value:     strings.TrimSpace(addr),
		Source:    string(in.SourceType),
		SourceRef: in.RawEventID,
		Meta:      meta,
	})
	for _, m := range terms {
		facts = append(facts, domain.CandidateFact{
			Entity:    ref,
			Key:       m[1],
			Value:     m[2],
			Source:    string(in.SourceType),
			SourceRef: in.RawEventID,
			Meta:      meta,
		})
	}
	return facts, nil, nil
}

// contactDetailsExtractor picks up people with their email addresses and
// phone numbers. When a name is present the details attach to that person;
// otherwise the contact detail fingerprints its own entity.
type contactDetailsExtractor struct{}

func (e *contactDetailsExtractor) ID() string { return "contact_details" }

func (e *contactDetailsExtractor) Extract(in Input) ([]domain.CandidateFact, []string, error) {
	meta := metaFor(in.SourceType)
	var facts []domain.CandidateFact

	var personRef *domain.EntityRef
	if m := personPattern.FindStringSubmatch(in.Text); m != nil {
		ref := domain.EntityRef{Domain: domain.EntityPerson, Fingerprint: m[1]}
		personRef = &ref
		facts = append(facts, domain.CandidateFact{
			Entity:    ref,
			Key:       "name",
			Value:     m[1],
			Source:    string(in.SourceType),
			SourceRef: in.RawEventID,
			Meta:      meta,
		})
	}

	if email := emailPattern.FindString(in.Text); email != "" {
		ref := domain.EntityRef{Domain: domain.EntityPerson, Fingerprint: strings.ToLower(email)}
		if personRef != nil {
			ref = *personRef
		}
		facts = append(facts, domain.CandidateFact{
			Entity:    ref,
			Key:       "email",
			Value:     strings.ToLower(email),
			Source:    string(in.SourceType),
			SourceRef: in.RawEventID,
			Meta:      meta,
		})
	}

	if phone := phonePattern.FindString(in.Text); phone != "" {
		ref := domain.EntityRef{Domain: domain.EntityPerson, Fingerprint: phone}
		if personRef != nil {
			ref = *personRef
		}
		facts = append(facts, domain.CandidateFact{
			Entity:    ref,
			Key:       "phone",
			Value:     strings.TrimSpace(phone),
			Source:    string(in.SourceType),
			SourceRef: in.RawEventID,
			Meta:      meta,
		})
	}

	return facts, nil, nil
}

// Document classes in match priority order: the first keyword hit wins.
var docClasses = []struct {
	docType  string
	keywords []string
}{
	{"mietvertrag", []string{"mietvertrag", "mietvertrages"}},
	{"kuendigung", []string{"kündigung", "kuendigung", "kündige", "kuendige"}},
	{"nebenkostenabrechnung", []string{"nebenkostenabrechnung", "betriebskostenabrechnung"}},
	{"uebergabeprotokoll", []string{"übergabeprotokoll", "uebergabeprotokoll"}},
	{"mahnung", []string{"mahnung", "zahlungserinnerung"}},
}

// documentMetaExtractor classifies document-like inputs and pulls the first
// German-format date. The document entity is fingerprinted by the raw event
// itself: one ingestion, one document.
type documentMetaExtractor struct{}

func (e *documentMetaExtractor) ID() string { return "document_meta" }

func (e *documentMetaExtractor) Extract(in Input) ([]domain.CandidateFact, []string, error) {
	if in.SourceType != domain.SourceDocument && in.SourceType != domain.SourceEmail && in.SourceType != domain.SourceContract {
		return nil, nil, nil
	}

	lower := strings.ToLower(in.Text)
	var docType string
	for _, c := range docClasses {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				docType = c.docType
				break
			}
		}
		if docType != "" {
			break
		}
	}
	if docType == "" {
		return nil, nil, nil
	}

	ref := domain.EntityRef{Domain: domain.EntityDocument, Fingerprint: in.RawEventID}
	meta := metaFor(in.SourceType)
	facts := []domain.CandidateFact{{
		Entity:    ref,
		Key:       "doc_type",
		Value:     docType,
		Source:    string(in.SourceType),
		SourceRef: in.RawEventID,
		Meta:      meta,
	}}

	if m := datePattern.FindStringSubmatch(in.Text); m != nil {
		day, month := m[1], m[2]
		if len(day) == 1 {
			day = "0" + day
		}
		if len(month) == 1 {
			month = "0" + month
		}
		facts = append(facts, domain.CandidateFact{
			Entity:    ref,
			Key:       "doc_date",
			Value:     m[3] + "-" + month + "-" + day,
			Source:    string(in.SourceType),
			SourceRef: in.RawEventID,
			Meta:      meta,
		})
	}

	return facts, nil, nil
}

const overridePrefix = "korrektur:"

// userOverrideExtractor handles explicit corrections ("Korrektur: Hauptstr.
// 5 Kaltmiete 950"). Facts it emits carry the override flag with final
// finality, which the resolver honors unconditionally.
type userOverrideExtractor struct{}

func (e *userOverrideExtractor) ID() string { return "user_override" }

func (e *userOverrideExtractor) Extract(in Input) ([]domain.CandidateFact, []string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(in.Text)), overridePrefix) {
		return nil, nil, nil
	}

	meta := metaFor(domain.SourceChat)
	meta.SourceType = in.SourceType
	meta.Override = true
	meta.Finality = domain.FinalityFinal
	meta.UserConfirmed = true
	meta.Confidence = fptr(0.99)

	facts, warns, err := extractPropertyTerms(in, meta)
	if err != nil {
		return nil, warns, err
	}
	if len(facts) == 0 {
		warns = append(warns, "correction marker without a parsable statement")
	}
	return facts, warns, nil
}
