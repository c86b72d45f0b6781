package audit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/shared/server/respond"
)

const defaultListLimit = 100

// Handler exposes the audit trail to administrators.
type Handler struct {
	Service *Service
}

// RegisterRoutes mounts audit routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/audit", middleware.RequireRoles(auth.RoleAdmin), h.list)
}

type listResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
}

func (h *Handler) list(c *gin.Context) {
	limit := defaultListLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		if n < limit {
			limit = n
		}
	}

	events, err := h.Service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load audit trail", nil)
		return
	}
	if events == nil {
		events = []Event{}
	}
	respond.OK(c, listResponse{Events: events, Count: len(events)})
}
