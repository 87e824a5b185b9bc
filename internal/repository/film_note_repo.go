package repository

import (
	"context"

	"filmverse/internal/domain"

	"gorm.io/gorm"
)

type FilmNoteRepository interface {
	ListByUserAndFilm(ctx context.Context, userID, filmID int64) ([]domain.FilmNote, error)
	GetByID(ctx context.Context, id int64) (*domain.FilmNote, error)
	Create(ctx context.Context, note *domain.FilmNote) error
	Update(ctx context.Context, note *domain.FilmNote) error
	Delete(ctx context.Context, id int64) error
}

type filmNoteRepository struct {
	db *gorm.DB
}

func NewFilmNoteRepository(db *gorm.DB) FilmNoteRepository {
	return &filmNoteRepository{db: db}
}

func (r *filmNoteRepository) ListByUserAndFilm(ctx context.Context, userID, filmID int64) ([]domain.FilmNote, error) {
	var notes []domain.FilmNote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND film_id = ?", userID, filmID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *filmNoteRepository) GetByID(ctx context.Context, id int64) (*domain.FilmNote, error) {
	var note domain.FilmNote
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *filmNoteRepository) Create(ctx context.Context, note *domain.FilmNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *filmNoteRepository) Update(ctx context.Context, note *domain.FilmNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *filmNoteRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.FilmNote{}, id).Error
}
