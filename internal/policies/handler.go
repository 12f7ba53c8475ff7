package policies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/shared/server/respond"
	"patta-backend/internal/shared/telemetry"
)

const maxPolicyBytes = 20 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ministry := middleware.RequireRole(auth.RoleMinistry)

	rg.POST("/policy/upload", ministry, h.upload)
	rg.GET("/policy/list", h.list)
	rg.GET("/policy/categories", h.categories)
	rg.GET("/policy/stats", ministry, h.stats)
	rg.GET("/policy/view/:id", h.view)
	rg.GET("/policy/download/:id", h.download)
	rg.GET("/policy/:id", h.get)
	rg.PUT("/policy/:id", ministry, h.update)
	rg.DELETE("/policy/:id", ministry, h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document file is required", nil)
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxPolicyBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file size must be between 1 byte and 20MB", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read document", nil)
		return
	}
	defer file.Close()

	p, err := h.Svc.Upload(c.Request.Context(), middleware.UserIDFromContext(c), UploadInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		FileName:    fileHeader.Filename,
		Body:        file,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload policy", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, toView(p))
}

func (h *Handler) list(c *gin.Context) {
	filter := Filter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     intQuery(c, "page", 1),
		Limit:    intQuery(c, "limit", 10),
	}
	if filter.Category != "" && !ValidCategory(filter.Category) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown category", nil)
		return
	}

	items, total, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list policies", nil)
		return
	}
	respond.JSON(c, http.StatusOK, listResponse{
		Policies: toViews(items),
		Pagination: pageInfo{
			Current: filter.Page,
			Pages:   totalPages(total, filter.Limit),
			Total:   total,
		},
	})
}

func (h *Handler) categories(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"categories": Categories})
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute policy stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "policy not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load policy", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toView(p))
}

func (h *Handler) view(c *gin.Context) {
	h.stream(c, "inline", h.Svc.OpenForView)
}

func (h *Handler) download(c *gin.Context) {
	h.stream(c, "attachment", h.Svc.OpenForDownload)
}

func (h *Handler) stream(c *gin.Context, disposition string, open func(ctx context.Context, id string) (Policy, io.ReadCloser, error)) {
	p, body, err := open(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "policy not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open policy document", nil)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, p.FileName))
	c.Header("Content-Type", p.MimeType)
	if p.FileSize > 0 {
		c.Header("Content-Length", strconv.FormatInt(p.FileSize, 10))
	}
	if _, err := io.Copy(c.Writer, body); err != nil {
		telemetry.Warn("policies.stream_interrupted", map[string]any{
			"policy_id": p.ID,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid update payload", nil)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "policy not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update policy", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toView(p))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "policy not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete policy", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "policy removed"})
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
