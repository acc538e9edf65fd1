package domain

import "time"

type EntityDomain string

const (
	EntityProperty EntityDomain = "property"
	EntityTenant   EntityDomain = "tenant"
	EntityPerson   EntityDomain = "person"
	EntityDocument EntityDomain = "document"
	EntityGeneric  EntityDomain = "generic"
)

func ValidEntityDomain(d string) bool {
	switch EntityDomain(d) {
	case EntityProperty, EntityTenant, EntityPerson, EntityDocument, EntityGeneric:
		return true
	}
	return false
}

// EntityRef is how extractors refer to an entity: a domain plus a raw
// free-text fingerprint. The core turns it into a content-addressed id;
// aliasing of spelling variants onto one stored entity is the external
// resolver's job.
type EntityRef struct {
	Domain      EntityDomain `json:"domain"`
	Fingerprint string       `json:"fingerprint"`
}

// Entity is a stored referent. ID is the hex hash of the canonical
// fingerprint, so two sessions mentioning the same address converge on the
// same row without coordination.
type Entity struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Domain      EntityDomain `json:"domain"`
	Fingerprint string       `json:"fingerprint"`
	DisplayName string       `json:"display_name,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
