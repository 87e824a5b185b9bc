// Package favsync keeps a client-side view of a user's favorite films
// consistent with a backing store. The store is pluggable: MemoryStore is
// the in-process tier, RemoteStore talks to the favorites REST API. Both
// enforce the same contract (per-identity ownership, one record per film,
// idempotent create, atomic toggle).
package favsync

import (
	"context"
	"time"
)

// Identity is threaded explicitly into every call instead of living in
// package-level state. UserID is used by the in-process tier, Token by the
// remote tier.
type Identity struct {
	UserID int64
	Token  string
}

// Film is the caller-supplied snapshot of an upstream film.
type Film struct {
	ID          int64
	Title       string
	Overview    string
	PosterURL   string
	ReleaseDate string // YYYY-MM-DD
	Type        string // "Movie" or "TV"
}

// Record is one persisted favorite as the client sees it. Empty Theories or
// Notes means "absent" (the store keeps NULL).
type Record struct {
	ID          int64
	FilmID      int64
	Title       string
	Overview    string
	PosterURL   string
	ReleaseDate string
	Type        string
	Theories    string
	Notes       string
	AddedAt     time.Time
}

// FieldPatch is a partial update: nil leaves the field unchanged, an empty
// string clears it.
type FieldPatch struct {
	Theories *string
	Notes    *string
}

// Store is the persistence contract behind a Collection.
type Store interface {
	// List returns every record owned by identity, newest first.
	List(ctx context.Context, identity Identity) ([]Record, error)

	// Create stores a favorite, or returns the existing record with
	// created=false when the film is already favorited.
	Create(ctx context.Context, identity Identity, film Film) (record *Record, created bool, err error)

	// Update patches theories/notes on an owned record.
	Update(ctx context.Context, identity Identity, recordID int64, patch FieldPatch) (*Record, error)

	// Delete removes an owned record. Missing records yield ErrNotFound;
	// callers may treat that as already-deleted.
	Delete(ctx context.Context, identity Identity, recordID int64) error

	// Toggle atomically adds the film when absent or removes it when
	// present and reports the resulting state.
	Toggle(ctx context.Context, identity Identity, film Film) (isFavorite bool, record *Record, err error)
}
