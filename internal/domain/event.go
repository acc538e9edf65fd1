package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// RawEvent is one immutable ingested input. Its identifier is a content hash
// of (user, locale, text), so replaying the same statement yields the same
// event. Timestamp stays zero on the pure path; only the persistence layer
// stamps wall-clock time.
type RawEvent struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Locale     string     `json:"locale"`
	Text       string     `json:"text"`
	SourceType SourceType `json:"source_type"`
	DayBucket  string     `json:"day_bucket,omitempty"`
	Timestamp  int64      `json:"timestamp"`
}

// NewRawEventID derives the content-addressed identifier for one ingestion.
// The unit separator keeps ("ab","c") and ("a","bc") from colliding.
func NewRawEventID(userID, locale, text string) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{0x1f})
	h.Write([]byte(locale))
	h.Write([]byte{0x1f})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
