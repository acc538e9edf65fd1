// Package freeze holds the closed vocabulary of the knowledge base: which
// entity domains, fact keys, and extractor ids exist at all. It is data, not
// configuration. Extending it is a reviewed code change, never a runtime
// decision. Every component that accepts vocabulary consults a Registry
// first and rejects anything outside it.
package freeze

import (
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

var frozenDomains = []domain.EntityDomain{
	domain.EntityProperty,
	domain.EntityTenant,
	domain.EntityPerson,
	domain.EntityDocument,
	domain.EntityGeneric,
}

var frozenKeys = []string{
	"address",
	"area_sqm",
	"contract_date",
	"deposit",
	"doc_date",
	"doc_type",
	"email",
	"iban",
	"landlord",
	"move_in_date",
	"move_out_date",
	"name",
	"note",
	"operating_costs",
	"phone",
	"rent_cold",
	"rent_warm",
	"rooms",
}

// System-tagged keys carry a namespace separator ("sys::import_batch").
// The namespace, not each key, is what the freeze list closes over.
var frozenSystemNamespaces = []string{
	"doc",
	"import",
	"sys",
}

var frozenExtractors = []string{
	"contact_details",
	"document_meta",
	"property_terms",
	"user_override",
}

// Registry is the allowlist as an explicit object. One is created at process
// start and passed by reference; there is no package-level mutable state, so
// tests can hold their own copy.
type Registry struct {
	domains          map[domain.EntityDomain]struct{}
	keys             map[string]struct{}
	systemNamespaces map[string]struct{}
	extractors       map[string]struct{}
}

func NewRegistry() *Registry {
	r := &Registry{
		domains:          make(map[domain.EntityDomain]struct{}, len(frozenDomains)),
		keys:             make(map[string]struct{}, len(frozenKeys)),
		systemNamespaces: make(map[string]struct{}, len(frozenSystemNamespaces)),
		extractors:       make(map[string]struct{}, len(frozenExtractors)),
	}
	for _, d := range frozenDomains {
		r.domains[d] = struct{}{}
	}
	for _, k := range frozenKeys {
		r.keys[k] = struct{}{}
	}
	for _, ns := range frozenSystemNamespaces {
		r.systemNamespaces[ns] = struct{}{}
	}
	for _, id := range frozenExtractors {
		r.extractors[id] = struct{}{}
	}
	return r
}

func (r *Registry) KnownDomain(d domain.EntityDomain) bool {
	_, ok := r.domains[d]
	return ok
}

// KnownKey reports whether a normalized fact key is in the frozen
// vocabulary. Namespaced keys are checked at namespace granularity.
func (r *Registry) KnownKey(key string) bool {
	if ns, _, found := strings.Cut(key, "::"); found {
		_, ok := r.systemNamespaces[ns]
		return ok
	}
	_, ok := r.keys[key]
	return ok
}

func (r *Registry) KnownExtractor(id string) bool {
	_, ok := r.extractors[id]
	return ok
}

// ExtractorIDs returns the frozen extractor ids in sorted order.
func (r *Registry) ExtractorIDs() []string {
	out := make([]string, len(frozenExtractors))
	copy(out, frozenExtractors)
	return out
}
