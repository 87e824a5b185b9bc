package domain

import "time"

// Favorite связывает пользователя с фильмом из апстрим-фида.
// Помимо ссылки на фильм хранится снимок его отображаемых полей на момент
// добавления, чтобы список избранного не зависел от доступности апстрима.
type Favorite struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	UserID          int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_film"`
	FilmID          int64     `json:"film_id" gorm:"not null;uniqueIndex:idx_user_film"`
	FilmTitle       string    `json:"film_title" gorm:"size:255;not null"`
	FilmOverview    *string   `json:"film_overview,omitempty"`
	FilmPosterURL   *string   `json:"film_poster_url,omitempty" gorm:"size:2048"`
	FilmReleaseDate time.Time `json:"film_release_date" gorm:"not null"`
	FilmType        string    `json:"film_type" gorm:"size:50;default:Movie"`
	Theories        *string   `json:"theories"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Virtual field для preload
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName возвращает имя таблицы в БД
func (Favorite) TableName() string {
	return "favorites"
}
