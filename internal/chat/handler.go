package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/shared/server/respond"
)

// Handler exposes the portal assistant.
type Handler struct {
	Service *Service
}

// RegisterRoutes mounts chat routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat/ask", h.ask)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	id := middleware.IdentityFromContext(c)
	answer, err := h.Service.Ask(c.Request.Context(), id.Role, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuestion):
			respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		case errors.Is(err, ErrUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "unavailable", "the assistant is unavailable right now", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
		}
		return
	}
	respond.OK(c, askResponse{Answer: answer})
}
