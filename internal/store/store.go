// Package store persists the engine's output in Postgres. Every table is
// scoped by account id, and the write paths are idempotent: content-addressed
// rows conflict on their id instead of duplicating.
package store

import "errors"

var ErrNotFound = errors.New("not found")
