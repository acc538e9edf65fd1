// Package factid derives deterministic fact identity: key normalization
// against the frozen vocabulary, locale-aware value canonicalization, stable
// serialization, and the content hash that names a fact.
package factid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/freeze"
)

var (
	ErrEmptyKey   = errors.New("fact key is empty")
	ErrUnknownKey = errors.New("fact key not in freeze registry")
	// ErrKeyRewritten is returned in strict mode when normalization changed
	// a non-system key: accepting it would silently reinterpret the input.
	ErrKeyRewritten = errors.New("fact key differs from normalized form")
)

// German synonyms collapse onto one canonical key so the same rent stated
// three ways stays one fact.
var keyAliases = map[string]string{
	"adresse":        "address",
	"anschrift":      "address",
	"auszug":         "move_out_date",
	"auszugsdatum":   "move_out_date",
	"betriebskosten": "operating_costs",
	"bruttomiete":    "rent_warm",
	"e_mail":         "email",
	"einzug":         "move_in_date",
	"einzugsdatum":   "move_in_date",
	"flaeche":        "area_sqm",
	"grundmiete":     "rent_cold",
	"handy":          "phone",
	"kaltmiete":      "rent_cold",
	"kaution":        "deposit",
	"mail":           "email",
	"mietbeginn":     "move_in_date",
	"miete_kalt":     "rent_cold",
	"mietende":       "move_out_date",
	"nebenkosten":    "operating_costs",
	"nettokaltmiete": "rent_cold",
	"qm":             "area_sqm",
	"telefon":        "phone",
	"telefonnummer":  "phone",
	"vermieter":      "landlord",
	"warmmiete":      "rent_warm",
	"wohnflaeche":    "area_sqm",
	"zimmer":         "rooms",
}

var (
	keySeparators = regexp.MustCompile(`[\s\-./]+`)
	keyStrip      = regexp.MustCompile(`[^a-z0-9_:]+`)
	keyCollapse   = regexp.MustCompile(`_+`)
)

// KeyOptions controls key normalization. Strict additionally rejects any
// non-system key that normalization rewrote, instead of quietly accepting
// the reinterpretation.
type KeyOptions struct {
	Strict bool
}

// NormalizeKey canonicalizes a raw fact key and checks it against the
// freeze registry. System-tagged keys (namespace separator or explicit meta
// flag) pass through lowercased only; everything else is slugified and
// alias-mapped. Unknown vocabulary fails hard; there is no best-effort
// acceptance.
func NormalizeKey(rawKey string, meta domain.FactMeta, reg *freeze.Registry, opts KeyOptions) (string, error) {
	trimmed := strings.TrimSpace(rawKey)
	if trimmed == "" {
		return "", ErrEmptyKey
	}

	system := meta.System || strings.Contains(trimmed, "::")
	if system {
		key := strings.ToLower(trimmed)
		if !reg.KnownKey(key) {
			return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		return key, nil
	}

	key := strings.ToLower(trimmed)
	key = strings.ReplaceAll(key, "ä", "ae")
	key = strings.ReplaceAll(key, "ö", "oe")
	key = strings.ReplaceAll(key, "ü", "ue")
	key = strings.ReplaceAll(key, "ß", "ss")
	key = keySeparators.ReplaceAllString(key, "_")
	key = keyStrip.ReplaceAllString(key, "")
	key = keyCollapse.ReplaceAllString(key, "_")
	key = strings.Trim(key, "_")

	if canonical, ok := keyAliases[key]; ok {
		key = canonical
	}

	if key == "" {
		return "", ErrEmptyKey
	}
	if !reg.KnownKey(key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if opts.Strict && key != strings.ToLower(trimmed) {
		return "", fmt.Errorf("%w: %q -> %q", ErrKeyRewritten, rawKey, key)
	}
	return key, nil
}
