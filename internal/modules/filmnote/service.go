package filmnote

import (
	"context"
	"errors"
	"strings"

	"filmverse/internal/domain"
	"filmverse/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	repo repository.FilmNoteRepository
}

func NewService(repo repository.FilmNoteRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForFilm(ctx context.Context, userID, filmID int64) ([]domain.FilmNote, error) {
	return s.repo.ListByUserAndFilm(ctx, userID, filmID)
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateNoteRequest) (*domain.FilmNote, error) {
	note := &domain.FilmNote{
		UserID:   userID,
		FilmID:   req.FilmID,
		NoteText: strings.TrimSpace(req.NoteText),
		NoteType: req.NoteType,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) Update(ctx context.Context, userID, noteID int64, req UpdateNoteRequest) (*domain.FilmNote, error) {
	note, err := s.getOwned(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	note.NoteText = strings.TrimSpace(req.NoteText)
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) Delete(ctx context.Context, userID, noteID int64) error {
	note, err := s.getOwned(ctx, userID, noteID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, note.ID)
}

func (s *Service) getOwned(ctx context.Context, userID, noteID int64) (*domain.FilmNote, error) {
	note, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if note.UserID != userID {
		return nil, ErrNotOwner
	}
	return note, nil
}
