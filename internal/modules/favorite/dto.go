package favorite

import (
	"time"

	"filmverse/internal/domain"
)

// CreateFavoriteRequest — снимок фильма, который клиент сохраняет в избранное.
// Поля с указателями опциональны и остаются NULL, если не переданы.
type CreateFavoriteRequest struct {
	FilmID          int64   `json:"film_id" binding:"required"`
	FilmTitle       string  `json:"film_title" binding:"required,max=255"`
	FilmOverview    *string `json:"film_overview"`
	FilmPosterURL   *string `json:"film_poster_url" binding:"omitempty,url"`
	FilmReleaseDate string  `json:"film_release_date" binding:"required"`
	FilmType        string  `json:"film_type" binding:"omitempty,max=50"`
}

// UpdateFavoriteRequest — частичное обновление аннотаций.
// nil означает "поле не трогать", пустая строка — "очистить".
type UpdateFavoriteRequest struct {
	Theories *string `json:"theories"`
	Notes    *string `json:"notes"`
}

type CheckFavoriteRequest struct {
	FilmID int64 `json:"film_id" binding:"required"`
}

type FavoriteResponse struct {
	ID          int64     `json:"id"`
	FilmID      int64     `json:"film_id"`
	Title       string    `json:"title"`
	Overview    *string   `json:"overview,omitempty"`
	PosterURL   *string   `json:"poster_url,omitempty"`
	ReleaseDate string    `json:"release_date"`
	Type        string    `json:"type"`
	Theories    *string   `json:"theories"`
	Notes       *string   `json:"notes"`
	AddedAt     time.Time `json:"added_at"`
}

type FavoriteListResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
	Total     int                `json:"total"`
}

type ToggleFavoriteResponse struct {
	IsFavorite bool              `json:"is_favorite"`
	Favorite   *FavoriteResponse `json:"favorite,omitempty"`
}

type CheckFavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

// ToFavoriteResponse конвертирует domain.Favorite в API response
func ToFavoriteResponse(f *domain.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:          f.ID,
		FilmID:      f.FilmID,
		Title:       f.FilmTitle,
		Overview:    f.FilmOverview,
		PosterURL:   f.FilmPosterURL,
		ReleaseDate: f.FilmReleaseDate.Format("2006-01-02"),
		Type:        f.FilmType,
		Theories:    f.Theories,
		Notes:       f.Notes,
		AddedAt:     f.CreatedAt,
	}
}

func ToFavoriteListResponse(favorites []domain.Favorite) FavoriteListResponse {
	items := make([]FavoriteResponse, len(favorites))
	for i := range favorites {
		items[i] = ToFavoriteResponse(&favorites[i])
	}
	return FavoriteListResponse{Favorites: items, Total: len(items)}
}
