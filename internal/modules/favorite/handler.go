package favorite

import (
	"errors"
	"net/http"
	"strconv"

	"filmverse/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler обрабатывает HTTP запросы для избранного
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes регистрирует routes для избранного
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.POST("/toggle", h.ToggleFavorite)
		favorites.POST("/check", h.CheckFavorite)
		favorites.PUT("/:id", h.UpdateFavorite)
		favorites.DELETE("/:id", h.RemoveFavorite)
	}
}

// ListFavorites возвращает избранное текущего пользователя
//
// @Summary Список избранных фильмов
// @Description Все фильмы в избранном текущего пользователя, новые сверху
// @Tags Favorite
// @Security BearerAuth
// @Success 200 {object} FavoriteListResponse
// @Failure 401 {object} map[string]interface{} "Пользователь не авторизован"
// @Router /favorites [get]
func (h *Handler) ListFavorites(c *gin.Context) {
	userID := c.GetInt64("user_id")

	favorites, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to get favorites")
		return
	}

	response.Success(c, http.StatusOK, ToFavoriteListResponse(favorites))
}

// AddFavorite добавляет фильм в избранное
//
// @Summary Добавить фильм в избранное
// @Description Сохраняет снимок фильма. Повторное добавление возвращает существующую запись со статусом 200
// @Tags Favorite
// @Security BearerAuth
// @Param request body CreateFavoriteRequest true "Снимок фильма"
// @Success 201 {object} map[string]interface{} "Фильм добавлен"
// @Success 200 {object} map[string]interface{} "Фильм уже был в избранном"
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Router /favorites [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	fav, created, err := h.service.Add(c.Request.Context(), userID, req)
	if err != nil {
		h.writeServiceError(c, err, "ADD_FAILED", "Failed to add favorite")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	resp := ToFavoriteResponse(fav)
	response.Success(c, status, gin.H{"favorite": resp})
}

// UpdateFavorite обновляет theories/notes записи избранного
//
// @Summary Обновить теории или заметки
// @Description Частичное обновление: поле, отсутствующее в body, не меняется; пустая строка очищает поле
// @Tags Favorite
// @Security BearerAuth
// @Param id path int64 true "ID записи избранного"
// @Param request body UpdateFavoriteRequest true "theories и/или notes, до 5000 символов"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Запись принадлежит другому пользователю"
// @Failure 404 {object} map[string]interface{} "Запись не найдена"
// @Router /favorites/{id} [put]
func (h *Handler) UpdateFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")

	favoriteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid favorite id")
		return
	}

	var req UpdateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	fav, err := h.service.Update(c.Request.Context(), userID, favoriteID, req)
	if err != nil {
		h.writeServiceError(c, err, "UPDATE_FAILED", "Failed to update favorite")
		return
	}

	resp := ToFavoriteResponse(fav)
	response.Success(c, http.StatusOK, gin.H{"favorite": resp})
}

// RemoveFavorite удаляет запись избранного
//
// @Summary Убрать фильм из избранного
// @Tags Favorite
// @Security BearerAuth
// @Param id path int64 true "ID записи избранного"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Запись принадлежит другому пользователю"
// @Failure 404 {object} map[string]interface{} "Запись не найдена"
// @Router /favorites/{id} [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")

	favoriteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid favorite id")
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, favoriteID); err != nil {
		h.writeServiceError(c, err, "REMOVE_FAILED", "Failed to remove favorite")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Favorite removed"})
}

// ToggleFavorite добавляет фильм, если его нет, и убирает, если есть
//
// @Summary Переключить избранное
// @Description Решение add-or-remove принимает сервер по текущему состоянию хранилища
// @Tags Favorite
// @Security BearerAuth
// @Param request body CreateFavoriteRequest true "Снимок фильма"
// @Success 200 {object} ToggleFavoriteResponse
// @Router /favorites/toggle [post]
func (h *Handler) ToggleFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	isFavorite, fav, err := h.service.Toggle(c.Request.Context(), userID, req)
	if err != nil {
		h.writeServiceError(c, err, "TOGGLE_FAILED", "Failed to toggle favorite")
		return
	}

	resp := ToggleFavoriteResponse{IsFavorite: isFavorite}
	if fav != nil {
		view := ToFavoriteResponse(fav)
		resp.Favorite = &view
	}
	response.Success(c, http.StatusOK, resp)
}

// CheckFavorite проверяет, находится ли фильм в избранном
//
// @Summary Проверить избранное
// @Tags Favorite
// @Security BearerAuth
// @Param request body CheckFavoriteRequest true "film_id"
// @Success 200 {object} CheckFavoriteResponse
// @Router /favorites/check [post]
func (h *Handler) CheckFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CheckFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	isFavorite, err := h.service.IsFavorite(c.Request.Context(), userID, req.FilmID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CHECK_FAILED", "Failed to check favorite")
		return
	}

	response.Success(c, http.StatusOK, CheckFavoriteResponse{IsFavorite: isFavorite})
}

func (h *Handler) writeServiceError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid favorite data",
			map[string]string{vErr.Field: vErr.Rule})
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this favorite")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Favorite not found")
	default:
		response.Error(c, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}
