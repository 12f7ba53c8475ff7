package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.GET("/auth/me", h.me)

	rg.POST("/ngo/register", h.registerNGO)
	rg.GET("/ngo/dashboard", middleware.RequireRole(auth.RoleNGO), h.dashboard)
	rg.GET("/ngo/list", middleware.RequireRole(auth.RoleMinistry), h.listNGOs)
	rg.GET("/ngo/stats", middleware.RequireRole(auth.RoleMinistry), h.stats)
	rg.PUT("/ngo/approve/:id", middleware.RequireRole(auth.RoleMinistry), h.approve)
	rg.PUT("/ngo/reject/:id", middleware.RequireRole(auth.RoleMinistry), h.reject)
	rg.GET("/ngo/:id", middleware.RequireRole(auth.RoleMinistry), h.getNGO)
	rg.PUT("/ngo/:id/profile", middleware.RequireRole(auth.RoleNGO), h.updateProfile)
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "role must be ministry or ngo", nil)
		return
	}
	h.doRegister(c, req, role)
}

// registerNGO is the public NGO-facing registration endpoint. It forces the
// ngo role regardless of what the request claims.
func (h *Handler) registerNGO(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}
	h.doRegister(c, req, auth.RoleNGO)
}

func (h *Handler) doRegister(c *gin.Context, req registerRequest, role auth.Role) {
	user, token, err := h.Svc.Register(c.Request.Context(), RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Profile:  req.profile(),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "an account with this email already exists", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, authResponse{Token: token, User: toUserView(user)})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}
	user, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
		case errors.Is(err, ErrPendingApproval):
			respond.Error(c, http.StatusUnauthorized, "pending_approval", "Account pending approval", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, authResponse{Token: token, User: toUserView(user)})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	user, err := h.Svc.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "account not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load account", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toUserView(user))
}

func (h *Handler) dashboard(c *gin.Context) {
	dash, err := h.Svc.Dashboard(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "NGO account not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load dashboard", nil)
		return
	}
	respond.JSON(c, http.StatusOK, dash)
}

func (h *Handler) listNGOs(c *gin.Context) {
	filter := NGOFilter{
		District: strings.TrimSpace(c.Query("district")),
		Page:     intQuery(c, "page", 1),
		Limit:    intQuery(c, "limit", 10),
	}
	if raw := strings.TrimSpace(c.Query("approved")); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "approved must be a boolean", nil)
			return
		}
		filter.Approved = &approved
	}

	ngos, total, err := h.Svc.ListNGOs(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list NGOs", nil)
		return
	}
	respond.JSON(c, http.StatusOK, listNGOsResponse{
		NGOs: toUserViews(ngos),
		Pagination: pageInfo{
			Current: filter.Page,
			Pages:   totalPages(total, filter.Limit),
			Total:   total,
		},
	})
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute NGO stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) approve(c *gin.Context) {
	user, err := h.Svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "NGO account not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to approve NGO", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toUserView(user))
}

func (h *Handler) reject(c *gin.Context) {
	var req rejectRequest
	_ = c.ShouldBindJSON(&req)
	err := h.Svc.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "NGO account not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reject NGO", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "NGO registration rejected"})
}

func (h *Handler) getNGO(c *gin.Context) {
	user, err := h.Svc.GetNGO(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "NGO account not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load NGO", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toUserView(user))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid profile payload", nil)
		return
	}
	user, err := h.Svc.UpdateNGOProfile(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), req.profile())
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "you can only update your own profile", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "NGO account not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update profile", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toUserView(user))
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
