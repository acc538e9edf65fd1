package factid

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// StableSerialize renders a value into a canonical string: object keys
// sorted, floats rounded to 6 decimal places, strings trimmed, non-finite
// numbers and unsupported values rendered as null. Two semantically equal
// values serialize identically regardless of construction order. The
// rounding and sorting rules are load-bearing for content addressing; do not
// change them.
func StableSerialize(value any) string {
	var b strings.Builder
	writeStable(&b, value)
	return b.String()
}

func writeStable(b *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		b.WriteString(strconv.Quote(strings.TrimSpace(v)))
	case float64:
		writeNumber(b, v)
	case float32:
		writeNumber(b, float64(v))
	case int:
		writeNumber(b, float64(v))
	case int32:
		writeNumber(b, float64(v))
	case int64:
		writeNumber(b, float64(v))
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			writeStable(b, item)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeStable(b, v[k])
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

func writeNumber(b *strings.Builder, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		b.WriteString("null")
		return
	}
	r := math.Round(f*1e6) / 1e6
	b.WriteString(strconv.FormatFloat(r, 'f', -1, 64))
}
