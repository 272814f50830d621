package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reporthub-backend/internal/shared/server/respond"
)

// Handler exposes the user registry over HTTP.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes registers the user routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/user", h.create)
	rg.GET("/user", h.list)
	rg.GET("/user/:userId", h.get)
	rg.PUT("/user/:userId", h.update)
	rg.PUT("/user/:userId/role", h.updateRole)
	rg.DELETE("/user/:userId", h.delete)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
	case errors.Is(err, ErrEmailExists):
		respond.Error(c, http.StatusConflict, "conflict", "User with this email already exists", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "failed to create user")
		return
	}
	respond.JSON(c, http.StatusCreated, user)
}

func (h *Handler) list(c *gin.Context) {
	usersList, err := h.Svc.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve users")
		return
	}
	respond.OK(c, gin.H{"users": usersList})
}

func (h *Handler) get(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve user")
		return
	}
	respond.OK(c, user)
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.Update(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}
	respond.OK(c, user)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) updateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.UpdateRole(c.Request.Context(), c.Param("userId"), req.Role)
	if err != nil {
		h.respondError(c, err, "failed to update user role")
		return
	}
	respond.OK(c, user)
}

func (h *Handler) delete(c *gin.Context) {
	hard := false
	if raw := c.Query("hard"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "hard must be a boolean", nil)
			return
		}
		hard = parsed
	}

	if err := h.Svc.Delete(c.Request.Context(), c.Param("userId"), hard); err != nil {
		h.respondError(c, err, "failed to delete user")
		return
	}
	respond.OK(c, gin.H{"message": "User deleted successfully"})
}
