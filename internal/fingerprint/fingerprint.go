// Package fingerprint canonicalizes free-text identifiers (addresses, names)
// so spelling variance does not spawn duplicate entities, then hashes the
// canonical form into a content-addressed entity id.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

// Umlaut transliteration, including the UTF-8-read-as-Latin-1 mangled forms
// that show up in copy-pasted mail bodies.
var translit = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ã¤", "ae", "Ã¶", "oe", "Ã¼", "ue", "ÃŸ", "ss",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
	"Ã„", "ae", "Ã–", "oe", "Ãœ", "ue",
	"é", "e", "è", "e", "ê", "e", "à", "a", "ç", "c",
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9 ]+`)
	spaces     = regexp.MustCompile(`\s+`)
	strSuffix  = regexp.MustCompile(`\b([a-z]{2,})str\b`)
	strAlone   = regexp.MustCompile(`\bstr\b`)
	houseSplit = regexp.MustCompile(`([a-z])(\d)`)
)

// Normalize returns the canonical form of a raw identifier: lowercase,
// transliterated, punctuation-free, whitespace-collapsed, with street
// suffix variants unified ("Hauptstr. 5", "hauptstraße 5" and
// "Haupt-Strasse 5" all come out as "hauptstrasse 5"). Empty input yields
// an empty string; callers must treat that as a usage error.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	// Transliterate before lowercasing: the mangled variants are
	// case-sensitive byte sequences.
	s = translit.Replace(s)
	s = strings.ToLower(s)
	// Hyphenated street names join rather than split: "haupt-strasse" ->
	// "hauptstrasse".
	s = strings.ReplaceAll(s, "-", "")
	s = nonAlnum.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strSuffix.ReplaceAllString(s, "${1}strasse")
	s = strAlone.ReplaceAllString(s, "strasse")
	// "hauptstrasse5" -> "hauptstrasse 5" so number spacing is irrelevant.
	s = houseSplit.ReplaceAllString(s, "$1 $2")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// EntityID hashes a canonical fingerprint into the stable entity reference
// for its domain. The domain participates in the hash so a person and a
// document with the same text never collide.
func EntityID(d domain.EntityDomain, canonical string) string {
	h := sha256.New()
	h.Write([]byte(d))
	h.Write([]byte{0x1f})
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}
