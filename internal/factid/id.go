package factid

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

// latestMarker replaces the value in the identity of facts marked latest,
// so a new assertion for the same (entity, key) overwrites instead of
// accumulating versions.
const latestMarker = "__latest__"

// BuildFactID derives the deterministic identifier of a fact from its
// canonicalized parts. The value must already be locale-normalized; identity
// is computed over its stable serialization.
func BuildFactID(entityID, key string, value any, latest bool, validity *domain.Validity) string {
	valuePart := StableSerialize(value)
	if latest {
		valuePart = StableSerialize(latestMarker)
	}

	var validityPart string
	if validity == nil {
		validityPart = "null"
	} else {
		validityPart = StableSerialize(map[string]any{
			"from": validity.From,
			"to":   validity.To,
		})
	}

	h := sha256.New()
	h.Write([]byte(entityID))
	h.Write([]byte("::"))
	h.Write([]byte(key))
	h.Write([]byte("::"))
	h.Write([]byte(valuePart))
	h.Write([]byte("::"))
	h.Write([]byte(validityPart))
	return hex.EncodeToString(h.Sum(nil))
}
