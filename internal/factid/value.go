package factid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrImplausibleNumber is returned when a string looks numeric but does not
// reduce to a plausible number under the locale's rules. Guessing here would
// poison fact identity, so the value is rejected instead.
var ErrImplausibleNumber = errors.New("implausible numeric value")

var (
	// Detection is stricter than the final shape check: a leading "+" marks
	// phone numbers, never amounts.
	numericShape = regexp.MustCompile(`^-?[0-9][0-9.,]*$`)
	plainNumber  = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)
	currencyJunk = regexp.MustCompile(`(?i)[€$%]|eur(o)?\b`)
)

// NormalizeValue recursively canonicalizes a raw value under a locale.
// Strings that carry a number in local notation ("1.200,50 €" for de) become
// float64; other strings pass through trimmed. Maps and slices are
// normalized element-wise.
func NormalizeValue(value any, locale string) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return normalizeString(v, locale)
	case bool, float64, float32, int, int32, int64:
		return value, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := NormalizeValue(item, locale)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			n, err := NormalizeValue(item, locale)
			if err != nil {
				return nil, err
			}
			out[strings.TrimSpace(k)] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func normalizeString(s, locale string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", nil
	}

	candidate := currencyJunk.ReplaceAllString(trimmed, "")
	candidate = strings.ReplaceAll(candidate, "\u00a0", " ")
	candidate = strings.TrimSpace(candidate)
	candidate = strings.ReplaceAll(candidate, " ", "")

	if !numericShape.MatchString(candidate) {
		// Not a number, just prose. Pass through trimmed.
		return trimmed, nil
	}
	// A leading zero followed by a digit marks an identifier (phone number,
	// postal code), not an amount.
	if len(candidate) > 1 && candidate[0] == '0' && candidate[1] >= '0' && candidate[1] <= '9' {
		return trimmed, nil
	}

	normalized := applyLocaleSeparators(candidate, locale)
	if !plainNumber.MatchString(normalized) {
		return nil, fmt.Errorf("%w: %q", ErrImplausibleNumber, s)
	}
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrImplausibleNumber, s)
	}
	return f, nil
}

// applyLocaleSeparators rewrites grouping and decimal separators into
// machine form. German locales use "." for thousands and "," for decimals;
// everything else is treated as the inverse.
func applyLocaleSeparators(s, locale string) string {
	german := strings.HasPrefix(strings.ToLower(locale), "de")
	if german {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		return s
	}
	s = strings.ReplaceAll(s, ",", "")
	return s
}
