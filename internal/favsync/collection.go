package favsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
)

const maxAnnotationLen = 5000

// Collection is the UI-facing view of the current user's favorites. It is
// the single source of truth for "is this film favorited and what are its
// annotations". Every mutation is confirm-then-apply: the store round trip
// must succeed before the local projection changes, so a failed call leaves
// the view exactly as it was.
type Collection struct {
	mu       sync.Mutex
	store    Store
	identity *Identity
	entries  []Record
}

func NewCollection(store Store) *Collection {
	return &Collection{store: store}
}

// LoadForIdentity replaces the projection with the store's records for the
// given identity. A nil identity (logout) clears the projection. On a fetch
// failure the projection is emptied and the error returned, so the UI never
// shows another user's stale data.
func (c *Collection) LoadForIdentity(ctx context.Context, identity *Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity = identity
	c.entries = nil

	if identity == nil {
		return nil
	}

	records, err := c.store.List(ctx, *identity)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	c.entries = records
	return nil
}

// IsFavorite is a pure local lookup, no I/O.
func (c *Collection) IsFavorite(filmID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(filmID) >= 0
}

// Favorites returns a copy of the projection.
func (c *Collection) Favorites() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.entries))
	copy(out, c.entries)
	return out
}

// Add favorites a film. Re-adding an already-favorited film succeeds and
// refreshes the local entry from the store's record.
func (c *Collection) Add(ctx context.Context, film Film) (*Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identity == nil {
		return nil, ErrAuthenticationRequired
	}
	if err := validateFilm(film); err != nil {
		return nil, err
	}

	record, _, err := c.store.Create(ctx, *c.identity, film)
	if err != nil {
		return nil, err
	}

	c.put(*record)
	return record, nil
}

// Remove unfavorites a film. A film that is not in the projection, or that
// the store has already deleted, counts as success.
func (c *Collection) Remove(ctx context.Context, filmID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identity == nil {
		return ErrAuthenticationRequired
	}

	i := c.indexOf(filmID)
	if i < 0 {
		return nil
	}

	err := c.store.Delete(ctx, *c.identity, c.entries[i].ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return nil
}

// Toggle adds or removes in one round trip; the store decides which, based
// on its own state, so two racing toggles cannot disagree with it.
func (c *Collection) Toggle(ctx context.Context, film Film) (bool, *Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identity == nil {
		return false, nil, ErrAuthenticationRequired
	}
	if err := validateFilm(film); err != nil {
		return false, nil, err
	}

	isFavorite, record, err := c.store.Toggle(ctx, *c.identity, film)
	if err != nil {
		return false, nil, err
	}

	if isFavorite && record != nil {
		c.put(*record)
	} else if i := c.indexOf(film.ID); i >= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
	return isFavorite, record, nil
}

// UpdateTheories replaces the theories text on a favorited film. An empty
// string clears the field ("delete" in the UI is exactly this call).
func (c *Collection) UpdateTheories(ctx context.Context, filmID int64, text string) (*Record, error) {
	return c.updateAnnotation(ctx, filmID, "theories", text)
}

// UpdateNotes replaces the notes text on a favorited film.
func (c *Collection) UpdateNotes(ctx context.Context, filmID int64, text string) (*Record, error) {
	return c.updateAnnotation(ctx, filmID, "notes", text)
}

func (c *Collection) updateAnnotation(ctx context.Context, filmID int64, field, text string) (*Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identity == nil {
		return nil, ErrAuthenticationRequired
	}

	i := c.indexOf(filmID)
	if i < 0 {
		return nil, ErrNotFound
	}

	normalized, err := normalizeAnnotation(field, text)
	if err != nil {
		return nil, err
	}

	patch := FieldPatch{}
	if field == "theories" {
		patch.Theories = &normalized
	} else {
		patch.Notes = &normalized
	}

	record, err := c.store.Update(ctx, *c.identity, c.entries[i].ID, patch)
	if err != nil {
		return nil, err
	}

	// Only the targeted field changes locally; the other annotation and the
	// display snapshot stay as they were.
	if field == "theories" {
		c.entries[i].Theories = record.Theories
	} else {
		c.entries[i].Notes = record.Notes
	}
	updated := c.entries[i]
	return &updated, nil
}

// put replaces the entry for the record's film, or appends it.
func (c *Collection) put(record Record) {
	if i := c.indexOf(record.FilmID); i >= 0 {
		c.entries[i] = record
		return
	}
	c.entries = append(c.entries, record)
}

func (c *Collection) indexOf(filmID int64) int {
	for i := range c.entries {
		if c.entries[i].FilmID == filmID {
			return i
		}
	}
	return -1
}

func validateFilm(film Film) error {
	if film.ID <= 0 {
		return &ValidationError{Field: "film_id", Rule: "must be a positive integer"}
	}
	if strings.TrimSpace(film.Title) == "" {
		return &ValidationError{Field: "film_title", Rule: "must not be empty"}
	}
	if _, err := time.Parse("2006-01-02", film.ReleaseDate); err != nil {
		return &ValidationError{Field: "film_release_date", Rule: "must be a valid date (YYYY-MM-DD)"}
	}
	return nil
}

func normalizeAnnotation(field, text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) > maxAnnotationLen {
		return "", &ValidationError{Field: field, Rule: "exceeds max length"}
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return "", &ValidationError{Field: field, Rule: "contains disallowed characters"}
		}
	}
	return text, nil
}
