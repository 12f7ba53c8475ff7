package assignments

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

const maxReportAttachments = 5

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ministry := middleware.RequireRole(auth.RoleMinistry)
	ngo := middleware.RequireRole(auth.RoleNGO)

	rg.POST("/assignment/create", ministry, h.create)
	rg.GET("/assignment/all", ministry, h.all)
	rg.GET("/assignment/stats", ministry, h.stats)
	rg.GET("/assignment/my-assignments", ngo, h.myAssignments)
	rg.GET("/assignment/:id", h.get)
	rg.PUT("/assignment/:id/status", h.updateStatus)
	rg.PUT("/assignment/:id/report", ngo, h.submitReport)
	rg.PUT("/assignment/:id/feedback", ministry, h.giveFeedback)
	rg.DELETE("/assignment/:id", ministry, h.remove)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "assignedTo, title, area, instructions and deadline are required", nil)
		return
	}

	a, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), CreateInput{
		AssignedTo:   req.AssignedTo,
		Title:        req.Title,
		Description:  req.Description,
		Area:         req.Area.area(),
		Instructions: req.Instructions,
		Objectives:   req.Objectives,
		Deliverables: req.Deliverables,
		Deadline:     req.Deadline,
		Priority:     Priority(req.Priority),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNGONotApproved):
			respond.Error(c, http.StatusBadRequest, "ngo_not_approved", "the target NGO is not approved", nil)
		case errors.Is(err, ErrNGONotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "NGO account not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create assignment", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, toView(a))
}

func (h *Handler) all(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}
	h.list(c, filter)
}

func (h *Handler) myAssignments(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}
	filter.AssignedTo = middleware.UserIDFromContext(c)

	items, total, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assignments", nil)
		return
	}
	stats, err := h.Svc.StatsForAssignee(c.Request.Context(), filter.AssignedTo)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute assignment stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, myAssignmentsResponse{
		Assignments: toViews(items),
		Stats:       stats,
		Pagination: pageInfo{
			Current: filter.Page,
			Pages:   totalPages(total, filter.Limit),
			Total:   total,
		},
	})
}

func (h *Handler) list(c *gin.Context, filter Filter) {
	items, total, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assignments", nil)
		return
	}
	respond.JSON(c, http.StatusOK, listResponse{
		Assignments: toViews(items),
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
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute assignment stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "assignment not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load assignment", nil)
		return
	}

	// NGOs can only see their own assignments.
	if role, ok := middleware.RoleFromContext(c); ok && role == auth.RoleNGO && a.AssignedTo != middleware.UserIDFromContext(c) {
		respond.Error(c, http.StatusForbidden, "forbidden", "not your assignment", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toView(a))
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status is required", nil)
		return
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status", nil)
		return
	}
	role, _ := middleware.RoleFromContext(c)

	a, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), role, StatusInput{
		Status:          status,
		Progress:        req.Progress,
		CompletionNotes: req.CompletionNotes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "assignment not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "you cannot update this assignment", nil)
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update status", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toView(a))
}

// submitReport accepts a multipart form: text fields plus up to five
// attachment files under the "attachments" key. List fields are repeated
// form values.
func (h *Handler) submitReport(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}

	input := ReportInput{
		Summary:         c.PostForm("summary"),
		Findings:        cleanList(form.Value["findings"]),
		Recommendations: cleanList(form.Value["recommendations"]),
		Challenges:      cleanList(form.Value["challenges"]),
		VillagesVisited: cleanList(form.Value["villagesVisited"]),
	}

	files := form.File["attachments"]
	if len(files) > maxReportAttachments {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at most 5 attachments are allowed", nil)
		return
	}
	attachments := make([]AttachmentInput, 0, len(files))
	var openErr error
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			openErr = err
			break
		}
		defer file.Close()
		attachments = append(attachments, AttachmentInput{FileName: fileHeader.Filename, Body: file})
	}
	if openErr != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read attachment", nil)
		return
	}

	a, err := h.Svc.SubmitReport(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), input, attachments)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "assignment not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "only the assigned NGO can submit a report", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit report", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toView(a))
}

func (h *Handler) giveFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "rating is required", nil)
		return
	}
	a, err := h.Svc.GiveFeedback(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), req.Rating, req.Comments)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "assignment not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save feedback", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toView(a))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "assignment not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete assignment", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "assignment deleted"})
}

func filterFromQuery(c *gin.Context) (Filter, bool) {
	filter := Filter{
		AssignedTo: strings.TrimSpace(c.Query("ngoId")),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 10),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		if _, ok := ParseStatus(raw); !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status", nil)
			return Filter{}, false
		}
		filter.Status = raw
	}
	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		if _, ok := ParsePriority(raw); !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown priority", nil)
			return Filter{}, false
		}
		filter.Priority = raw
	}
	return filter, true
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
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
