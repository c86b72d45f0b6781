package applications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/shared/server/respond"
)

const maxUploadBytes = 10 << 20 // per document

// RoleCounter reports account counts per role for the admin dashboard.
type RoleCounter interface {
	RoleCounts(ctx context.Context) (map[string]int, error)
}

// Handler exposes the application registry over HTTP.
type Handler struct {
	Service *Service
	Users   RoleCounter
}

// RegisterRoutes mounts registry routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", middleware.RequireRoles(auth.RoleCitizen), h.submit)
	rg.GET("/applications", h.list)
	rg.GET("/applications/:refID", h.get)
	rg.POST("/applications/:refID/status", middleware.RequireRoles(auth.RoleStaff, auth.RoleAdmin), h.updateStatus)
	rg.GET("/applications/:refID/documents/:category", h.downloadDocument)
	rg.GET("/admin/stats", middleware.RequireRoles(auth.RoleAdmin), h.stats)
}

type applicationResponse struct {
	Application
	DaysPending int `json:"daysPending"`
}

type listResponse struct {
	Applications []applicationResponse `json:"applications"`
	Count        int                   `json:"count"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) toResponse(app Application) applicationResponse {
	return applicationResponse{
		Application: app,
		DaysPending: app.DaysPending(h.Service.Now()),
	}
}

func (h *Handler) submit(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	if err := c.Request.ParseMultipartForm(int64(len(DocumentCategories)) * maxUploadBytes); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart form", nil)
		return
	}

	in := SubmitInput{
		District: strings.TrimSpace(c.PostForm("district")),
		Taluk:    strings.TrimSpace(c.PostForm("taluk")),
		Village:  strings.TrimSpace(c.PostForm("village")),
		SurveyNo: strings.TrimSpace(c.PostForm("surveyNo")),
		SubdivNo: strings.TrimSpace(c.PostForm("subdivNo")),
	}

	if raw := strings.TrimSpace(c.PostForm("boundary")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Boundary); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "boundary must be a JSON array of {lat,lng}", nil)
			return
		}
	}

	in.Documents = make(map[string]DocumentUpload, len(DocumentCategories))
	var openFiles []io.Closer
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()
	for _, category := range DocumentCategories {
		fh, err := c.FormFile(category)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "missing document: "+category, nil)
			return
		}
		if fh.Size > maxUploadBytes {
			respond.Error(c, http.StatusBadRequest, "validation_error", category+" exceeds the size limit", nil)
			return
		}
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unreadable document: "+category, nil)
			return
		}
		openFiles = append(openFiles, f)
		in.Documents[category] = DocumentUpload{FileName: fh.Filename, Reader: f}
	}

	app, err := h.Service.Submit(c.Request.Context(), actorFrom(id), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Set("applicationRefId", app.RefID)
	respond.Created(c, h.toResponse(app))
}

func (h *Handler) list(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	filter := Filter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: strings.TrimSpace(c.Query("status")),
		Date:   strings.TrimSpace(c.Query("date")),
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status filter", nil)
		return
	}
	if filter.Date != "" {
		if _, err := time.Parse("2006-01-02", filter.Date); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD", nil)
			return
		}
	}

	apps, err := h.Service.List(c.Request.Context(), actorFrom(id), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := listResponse{Applications: make([]applicationResponse, 0, len(apps)), Count: len(apps)}
	for _, app := range apps {
		out.Applications = append(out.Applications, h.toResponse(app))
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	refID := c.Param("refID")

	app, err := h.Service.Get(c.Request.Context(), actorFrom(id), refID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Set("applicationRefId", app.RefID)
	respond.OK(c, h.toResponse(app))
}

func (h *Handler) updateStatus(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	refID := c.Param("refID")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Service.UpdateStatus(c.Request.Context(), actorFrom(id), refID, strings.TrimSpace(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Set("applicationRefId", app.RefID)
	c.Set("statusTransition", app.Status)
	respond.OK(c, h.toResponse(app))
}

func (h *Handler) downloadDocument(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	refID := c.Param("refID")
	category := c.Param("category")

	rc, key, err := h.Service.OpenDocument(c.Request.Context(), actorFrom(id), refID, category)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer rc.Close()

	name := key
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// headers are already out; nothing sensible left to send
		_ = c.Error(err)
	}
}

type userStats struct {
	RoleCounts map[string]int `json:"roleCounts"`
	Total      int            `json:"total"`
}

type statsResponse struct {
	SummaryStats
	Users userStats `json:"users"`
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Service.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := statsResponse{SummaryStats: stats, Users: userStats{RoleCounts: map[string]int{}}}
	if h.Users != nil {
		counts, err := h.Users.RoleCounts(c.Request.Context())
		if err != nil {
			h.respondError(c, err)
			return
		}
		out.Users.RoleCounts = counts
		for _, n := range counts {
			out.Users.Total += n
		}
	}
	respond.OK(c, out)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", userMessage(err), nil)
	case errors.Is(err, ErrUnauthorized):
		id := middleware.IdentityFromContext(c)
		status := http.StatusForbidden
		if id.Role == auth.RoleGuest {
			status = http.StatusUnauthorized
		}
		respond.Error(c, status, "forbidden", userMessage(err), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

// userMessage strips the sentinel prefix so clients see the specific reason
// without the internal wrapping.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func actorFrom(id middleware.Identity) Actor {
	return Actor{Email: id.Email, Name: id.Name, Role: id.Role}
}
