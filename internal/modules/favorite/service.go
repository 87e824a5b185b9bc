package favorite

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"filmverse/internal/domain"
	"filmverse/internal/repository"

	"gorm.io/gorm"
)

const maxAnnotationLen = 5000

// Service владеет бизнес-правилами избранного: идемпотентное добавление,
// проверка владельца, атомарный toggle, частичное обновление аннотаций.
type Service struct {
	repo repository.FavoriteRepository
}

func NewService(repo repository.FavoriteRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Add сохраняет фильм в избранное. Повторное добавление того же фильма —
// не ошибка: возвращается существующая запись и created=false.
func (s *Service) Add(ctx context.Context, userID int64, req CreateFavoriteRequest) (*domain.Favorite, bool, error) {
	fav, err := s.buildFavorite(userID, req)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByUserAndFilm(ctx, userID, req.FilmID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := s.repo.Create(ctx, fav); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Параллельный запрос вставил первым — отдаём его запись.
			existing, readErr := s.repo.GetByUserAndFilm(ctx, userID, req.FilmID)
			if readErr != nil {
				return nil, false, readErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return fav, true, nil
}

// Update применяет частичное обновление theories/notes. Поля, не пришедшие
// в запросе, не трогаются; пустая строка нормализуется в NULL.
func (s *Service) Update(ctx context.Context, userID, favoriteID int64, req UpdateFavoriteRequest) (*domain.Favorite, error) {
	fav, err := s.repo.GetByID(ctx, favoriteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if fav.UserID != userID {
		return nil, ErrNotOwner
	}

	fields := map[string]any{}
	if req.Theories != nil {
		v, err := normalizeAnnotation("theories", *req.Theories)
		if err != nil {
			return nil, err
		}
		fields["theories"] = v
	}
	if req.Notes != nil {
		v, err := normalizeAnnotation("notes", *req.Notes)
		if err != nil {
			return nil, err
		}
		fields["notes"] = v
	}
	if len(fields) == 0 {
		return fav, nil
	}

	return s.repo.UpdateFields(ctx, favoriteID, fields)
}

// Remove удаляет запись избранного целиком (вместе с аннотациями).
func (s *Service) Remove(ctx context.Context, userID, favoriteID int64) error {
	fav, err := s.repo.GetByID(ctx, favoriteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if fav.UserID != userID {
		return ErrNotOwner
	}

	removed, err := s.repo.Delete(ctx, favoriteID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// Toggle добавляет фильм, если его нет в избранном, и убирает, если есть.
// Решение принимает хранилище, а не клиент — см. repo.Toggle.
func (s *Service) Toggle(ctx context.Context, userID int64, req CreateFavoriteRequest) (bool, *domain.Favorite, error) {
	fav, err := s.buildFavorite(userID, req)
	if err != nil {
		return false, nil, err
	}
	return s.repo.Toggle(ctx, fav)
}

func (s *Service) IsFavorite(ctx context.Context, userID, filmID int64) (bool, error) {
	return s.repo.Exists(ctx, userID, filmID)
}

func (s *Service) buildFavorite(userID int64, req CreateFavoriteRequest) (*domain.Favorite, error) {
	if req.FilmID <= 0 {
		return nil, &ValidationError{Field: "film_id", Rule: "must be a positive integer"}
	}
	title := strings.TrimSpace(req.FilmTitle)
	if title == "" {
		return nil, &ValidationError{Field: "film_title", Rule: "must not be empty"}
	}
	releaseDate, err := time.Parse("2006-01-02", req.FilmReleaseDate)
	if err != nil {
		return nil, &ValidationError{Field: "film_release_date", Rule: "must be a valid date (YYYY-MM-DD)"}
	}

	filmType := req.FilmType
	if filmType == "" {
		filmType = "Movie"
	}

	return &domain.Favorite{
		UserID:          userID,
		FilmID:          req.FilmID,
		FilmTitle:       title,
		FilmOverview:    req.FilmOverview,
		FilmPosterURL:   req.FilmPosterURL,
		FilmReleaseDate: releaseDate,
		FilmType:        filmType,
	}, nil
}

// normalizeAnnotation trims the text, rejects control characters and
// over-length values, and maps an empty result to NULL.
func normalizeAnnotation(field, text string) (*string, error) {
	text = strings.TrimSpace(text)
	if len(text) > maxAnnotationLen {
		return nil, &ValidationError{Field: field, Rule: "exceeds max length"}
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return nil, &ValidationError{Field: field, Rule: "contains disallowed characters"}
		}
	}
	if text == "" {
		return nil, nil
	}
	return &text, nil
}
