package filmnote

import (
	"errors"
	"net/http"
	"strconv"

	"filmverse/internal/pkg/response"
	"filmverse/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	notes := rg.Group("/film-notes")
	{
		notes.GET("", h.ListNotes)
		notes.POST("", h.CreateNote)
		notes.PUT("/:id", h.UpdateNote)
		notes.DELETE("/:id", h.DeleteNote)
	}
}

// ListNotes returns the user's notes for one film (?film_id=).
func (h *Handler) ListNotes(c *gin.Context) {
	userID := c.GetInt64("user_id")

	filmID, err := strconv.ParseInt(c.Query("film_id"), 10, 64)
	if err != nil || filmID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "film_id query parameter is required")
		return
	}

	notes, err := h.service.ListForFilm(c.Request.Context(), userID, filmID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to get notes")
		return
	}

	items := make([]NoteResponse, len(notes))
	for i := range notes {
		items[i] = ToNoteResponse(&notes[i])
	}
	response.Success(c, http.StatusOK, NoteListResponse{Notes: items})
}

func (h *Handler) CreateNote(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid note data", errs)
		return
	}

	note, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create note")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"note": ToNoteResponse(note)})
}

func (h *Handler) UpdateNote(c *gin.Context) {
	userID := c.GetInt64("user_id")

	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid note id")
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid note data", errs)
		return
	}

	note, err := h.service.Update(c.Request.Context(), userID, noteID, req)
	if err != nil {
		h.writeServiceError(c, err, "UPDATE_FAILED", "Failed to update note")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"note": ToNoteResponse(note)})
}

func (h *Handler) DeleteNote(c *gin.Context) {
	userID := c.GetInt64("user_id")

	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid note id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, noteID); err != nil {
		h.writeServiceError(c, err, "DELETE_FAILED", "Failed to delete note")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Note deleted"})
}

func (h *Handler) writeServiceError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this note")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Note not found")
	default:
		response.Error(c, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}
