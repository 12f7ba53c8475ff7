package pattas

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/shared/server/respond"
)

const (
	maxUploadBytes = 10 << 20
	maxBatchFiles  = 10
)

var allowedUploadTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ministry := middleware.RequireRole(auth.RoleMinistry)

	rg.POST("/patta/upload", ministry, h.upload)
	rg.POST("/patta/upload-multiple", ministry, h.uploadMultiple)
	rg.POST("/patta/manual-add", ministry, h.manualAdd)
	rg.GET("/patta", h.list)
	rg.GET("/patta/stats", h.stats)
	rg.GET("/patta/map-data", h.mapData)
	rg.GET("/patta/:id", h.get)
	rg.PUT("/patta/:id", ministry, h.update)
	rg.PUT("/patta/:id/verify", ministry, h.verify)
	rg.DELETE("/patta/:id", ministry, h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document file is required", nil)
		return
	}
	if msg := validateUpload(fileHeader); msg != "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
		return
	}

	patta, err := h.processFile(c, fileHeader)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, toView(patta))
}

// uploadMultiple processes each file independently. A failing file produces
// an error entry in the aggregate instead of aborting the batch.
func (h *Handler) uploadMultiple(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}
	files := form.File["documents"]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one document is required", nil)
		return
	}
	if len(files) > maxBatchFiles {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many files in one batch", nil)
		return
	}

	results := make([]batchResult, 0, len(files))
	succeeded := 0
	for _, fileHeader := range files {
		if msg := validateUpload(fileHeader); msg != "" {
			results = append(results, batchResult{FileName: fileHeader.Filename, Status: "error", Error: msg})
			continue
		}
		patta, err := h.processFile(c, fileHeader)
		if err != nil {
			results = append(results, batchResult{FileName: fileHeader.Filename, Status: "error", Error: "failed to process document"})
			continue
		}
		view := toView(patta)
		results = append(results, batchResult{FileName: fileHeader.Filename, Status: "success", Patta: &view})
		succeeded++
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"results":   results,
		"processed": succeeded,
		"failed":    len(files) - succeeded,
	})
}

func (h *Handler) processFile(c *gin.Context, fileHeader *multipart.FileHeader) (Patta, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return Patta{}, err
	}
	defer file.Close()
	return h.Svc.Upload(c.Request.Context(), middleware.UserIDFromContext(c), fileHeader.Filename, file)
}

func (h *Handler) manualAdd(c *gin.Context) {
	var req manualAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "claimantName is required", nil)
		return
	}
	approvalDate, ok := parseDate(req.ApprovalDate)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "approvalDate must be YYYY-MM-DD", nil)
		return
	}

	patta, err := h.Svc.ManualAdd(c.Request.Context(), middleware.UserIDFromContext(c), ManualInput{
		ClaimantName: req.ClaimantName,
		District:     req.District,
		Village:      req.Village,
		State:        req.State,
		LandArea:     req.LandArea,
		ApprovalDate: approvalDate,
		Coordinates:  parseCoordinates(req.Coordinates),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create record", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, toView(patta))
}

func (h *Handler) list(c *gin.Context) {
	filter := Filter{
		District: strings.TrimSpace(c.Query("district")),
		State:    strings.TrimSpace(c.Query("state")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     intQuery(c, "page", 1),
		Limit:    intQuery(c, "limit", 10),
	}
	if raw := strings.TrimSpace(c.Query("verified")); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "verified must be a boolean", nil)
			return
		}
		filter.Verified = &verified
	}

	pattas, total, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list pattas", nil)
		return
	}
	respond.JSON(c, http.StatusOK, listResponse{
		Pattas: toViews(pattas),
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
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute patta stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) mapData(c *gin.Context) {
	points, err := h.Svc.MapData(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load map data", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"pattas": points})
}

func (h *Handler) get(c *gin.Context) {
	patta, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "patta not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load patta", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toView(patta))
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid update payload", nil)
		return
	}
	approvalDate, ok := parseDate(req.ApprovalDate)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "approvalDate must be YYYY-MM-DD", nil)
		return
	}

	patta, err := h.Svc.Update(c.Request.Context(), c.Param("id"), UpdateInput{
		ClaimantName: req.ClaimantName,
		District:     req.District,
		Village:      req.Village,
		State:        req.State,
		LandArea:     req.LandArea,
		ApprovalDate: approvalDate,
		Coordinates:  parseCoordinates(req.Coordinates),
		IsVerified:   req.IsVerified,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "patta not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update patta", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toView(patta))
}

func (h *Handler) verify(c *gin.Context) {
	patta, err := h.Svc.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "patta not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to verify patta", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toView(patta))
}

func (h *Handler) remove(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "patta not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete patta", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "patta deleted"})
}

func validateUpload(fileHeader *multipart.FileHeader) string {
	if fileHeader.Size <= 0 || fileHeader.Size > maxUploadBytes {
		return "file size must be between 1 byte and 10MB"
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" {
		if idx := strings.Index(contentType, ";"); idx >= 0 {
			contentType = contentType[:idx]
		}
		if _, ok := allowedUploadTypes[strings.TrimSpace(contentType)]; !ok {
			return "unsupported document type"
		}
	}
	return ""
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
