package domain

import "time"

const (
	NoteTypeTheory = "theory"
	NoteTypeNote   = "note"
)

// FilmNote is a standalone annotation on a film, independent of whether the
// film is in the user's favorites. A user can keep several per film.
type FilmNote struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index:idx_note_user_film"`
	FilmID    int64     `json:"film_id" gorm:"not null;index:idx_note_user_film"`
	NoteText  string    `json:"note_text" gorm:"not null"`
	NoteType  string    `json:"note_type" gorm:"size:20;default:theory"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (FilmNote) TableName() string {
	return "film_notes"
}
