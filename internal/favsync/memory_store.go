package favsync

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process durability tier: the same contract as the
// remote store, backed by a map. Used by the client-only mode of the site
// and by tests.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64][]Record // keyed by user id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64][]Record)}
}

func (s *MemoryStore) List(_ context.Context, identity Identity) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.records[identity.UserID]
	out := make([]Record, len(owned))
	// Newest first, matching the remote tier's ordering.
	for i := range owned {
		out[len(owned)-1-i] = owned[i]
	}
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, identity Identity, film Film) (*Record, bool, error) {
	if err := validateFilm(film); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.find(identity.UserID, film.ID); existing != nil {
		rec := *existing
		return &rec, false, nil
	}

	rec := s.insert(identity.UserID, film)
	return &rec, true, nil
}

func (s *MemoryStore) Update(_ context.Context, identity Identity, recordID int64, patch FieldPatch) (*Record, error) {
	if patch.Theories != nil {
		if _, err := normalizeAnnotation("theories", *patch.Theories); err != nil {
			return nil, err
		}
	}
	if patch.Notes != nil {
		if _, err := normalizeAnnotation("notes", *patch.Notes); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.owned(identity.UserID, recordID)
	if err != nil {
		return nil, err
	}

	if patch.Theories != nil {
		rec.Theories, _ = normalizeAnnotation("theories", *patch.Theories)
	}
	if patch.Notes != nil {
		rec.Notes, _ = normalizeAnnotation("notes", *patch.Notes)
	}
	out := *rec
	return &out, nil
}

func (s *MemoryStore) Delete(_ context.Context, identity Identity, recordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(identity.UserID, recordID); err != nil {
		return err
	}

	owned := s.records[identity.UserID]
	for i := range owned {
		if owned[i].ID == recordID {
			s.records[identity.UserID] = append(owned[:i], owned[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Toggle(_ context.Context, identity Identity, film Film) (bool, *Record, error) {
	if err := validateFilm(film); err != nil {
		return false, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.records[identity.UserID]
	for i := range owned {
		if owned[i].FilmID == film.ID {
			s.records[identity.UserID] = append(owned[:i], owned[i+1:]...)
			return false, nil, nil
		}
	}

	rec := s.insert(identity.UserID, film)
	return true, &rec, nil
}

// owned finds a record by id across all users and checks ownership, so a
// foreign record yields ErrNotOwner rather than ErrNotFound — the same
// distinction the remote tier makes with 403 vs 404.
func (s *MemoryStore) owned(userID, recordID int64) (*Record, error) {
	for ownerID, owned := range s.records {
		for i := range owned {
			if owned[i].ID == recordID {
				if ownerID != userID {
					return nil, ErrNotOwner
				}
				return &s.records[ownerID][i], nil
			}
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) find(userID, filmID int64) *Record {
	owned := s.records[userID]
	for i := range owned {
		if owned[i].FilmID == filmID {
			return &owned[i]
		}
	}
	return nil
}

func (s *MemoryStore) insert(userID int64, film Film) Record {
	s.nextID++
	rec := Record{
		ID:          s.nextID,
		FilmID:      film.ID,
		Title:       film.Title,
		Overview:    film.Overview,
		PosterURL:   film.PosterURL,
		ReleaseDate: film.ReleaseDate,
		Type:        filmTypeOrDefault(film.Type),
		AddedAt:     time.Now(),
	}
	s.records[userID] = append(s.records[userID], rec)
	return rec
}

func filmTypeOrDefault(t string) string {
	if t == "" {
		return "Movie"
	}
	return t
}
