package feed

import (
	"net/http"

	"filmverse/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/films/upcoming", h.GetUpcoming)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/films/cache", h.ClearCache)
}

// GetUpcoming returns the upstream feed payload, cached for up to an hour.
//
// @Summary Upcoming film releases
// @Description Next release and the one after it, from the upstream feed; 503 when the upstream is down and nothing is cached
// @Tags Films
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{} "upstream unavailable"
// @Router /films/upcoming [get]
func (h *Handler) GetUpcoming(c *gin.Context) {
	film, err := h.client.GetUpcoming(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE",
			"Film feed is temporarily unavailable")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"film": film})
}

// ClearCache drops the cached feed payload (maintenance action).
//
// @Summary Invalidate the film feed cache
// @Tags Films
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /films/cache [delete]
func (h *Handler) ClearCache(c *gin.Context) {
	h.client.Invalidate()
	response.Success(c, http.StatusOK, gin.H{"message": "Cache cleared successfully"})
}
