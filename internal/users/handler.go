package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/shared/server/respond"
)

// Handler exposes login, session introspection and account administration.
type Handler struct {
	Service *Service
}

// RegisterRoutes mounts account routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
	rg.GET("/auth/me", middleware.RequireRoles(auth.RoleCitizen, auth.RoleStaff, auth.RoleAdmin), h.me)
	rg.GET("/admin/users", middleware.RequireRoles(auth.RoleAdmin), h.list)
	rg.PATCH("/admin/users/:id/role", middleware.RequireRoles(auth.RoleAdmin), h.updateRole)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "login failed", nil)
		return
	}

	token, err := auth.SignJWT(auth.Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID,
		},
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "login failed", nil)
		return
	}

	respond.OK(c, loginResponse{Token: token, User: user})
}

func (h *Handler) me(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	// The token subject is the account id, so the lookup survives email
	// changes on the account.
	user, err := h.Service.GetByID(c.Request.Context(), id.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// token outlived the account
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "account no longer exists", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load account", nil)
		return
	}
	respond.OK(c, user)
}

type usersResponse struct {
	Users []User `json:"users"`
	Count int    `json:"count"`
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Service.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load users", nil)
		return
	}
	if list == nil {
		list = []User{}
	}
	respond.OK(c, usersResponse{Users: list, Count: len(list)})
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) updateRole(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	userID := c.Param("id")

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Service.UpdateRole(c.Request.Context(), id.Email, id.Role, userID, strings.TrimSpace(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			respond.Error(c, http.StatusBadRequest, "validation_error", "role must be citizen, staff or admin", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update role", nil)
		}
		return
	}
	respond.OK(c, user)
}
