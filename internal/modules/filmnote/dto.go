package filmnote

import (
	"time"

	"filmverse/internal/domain"
)

type CreateNoteRequest struct {
	FilmID   int64  `json:"film_id" validate:"required,gt=0"`
	NoteText string `json:"note_text" validate:"required,max=5000"`
	NoteType string `json:"note_type" validate:"required,oneof=theory note"`
}

type UpdateNoteRequest struct {
	NoteText string `json:"note_text" validate:"required,max=5000"`
}

type NoteResponse struct {
	ID        int64     `json:"id"`
	FilmID    int64     `json:"film_id"`
	NoteText  string    `json:"note_text"`
	NoteType  string    `json:"note_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
}

func ToNoteResponse(n *domain.FilmNote) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		FilmID:    n.FilmID,
		NoteText:  n.NoteText,
		NoteType:  n.NoteType,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
