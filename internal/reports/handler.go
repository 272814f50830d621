package reports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reporthub-backend/internal/filecheck"
	"reporthub-backend/internal/shared/server/respond"
	"reporthub-backend/internal/shared/storage/blob"
)

// Handler exposes the report aggregate over HTTP.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes registers the report, entry, comment and attachment routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/report", h.createReport)
	rg.GET("/report", h.listReports)
	rg.GET("/report/:reportId", h.getReport)
	rg.PUT("/report/:reportId", h.updateReport)
	rg.DELETE("/report/:reportId", h.deleteReport)

	rg.POST("/report/:reportId/entry", h.createEntry)
	rg.GET("/report/:reportId/entry", h.listEntries)
	rg.GET("/report/:reportId/entry/:entryId", h.getEntry)
	rg.PUT("/report/:reportId/entry/:entryId", h.updateEntry)
	rg.DELETE("/report/:reportId/entry/:entryId", h.deleteEntry)

	rg.POST("/report/:reportId/comment", h.createComment)
	rg.GET("/report/:reportId/comment", h.listComments)
	rg.GET("/report/:reportId/comment/:commentId", h.getComment)
	rg.PUT("/report/:reportId/comment/:commentId", h.updateComment)
	rg.DELETE("/report/:reportId/comment/:commentId", h.deleteComment)

	rg.POST("/report/:reportId/attachment", h.uploadAttachment)
	rg.GET("/report/:reportId/attachment", h.listAttachments)
	rg.GET("/report/:reportId/attachment/:attachmentId", h.getAttachment)
	rg.DELETE("/report/:reportId/attachment/:attachmentId", h.deleteAttachment)
	rg.GET("/report/:reportId/attachment/:attachmentId/token", h.issueToken)
	rg.GET("/report/:reportId/attachment/:attachmentId/download", h.downloadAttachment)
}

// respondError maps the aggregate's failure kinds to transport statuses,
// keeping each kind distinguishable.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var vErr *filecheck.ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Report not found", nil)
	case errors.Is(err, ErrCommentNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Comment not found", nil)
	case errors.Is(err, ErrEntryNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Report entry not found", nil)
	case errors.Is(err, ErrAttachmentNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Attachment not found", nil)
	case errors.Is(err, blob.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Attachment file not found", nil)
	case errors.As(err, &vErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", vErr.Reason, nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func (h *Handler) createReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	report, err := h.Svc.CreateReport(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "failed to create report")
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{"reportId": report.ReportID})
}

func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.Svc.ListReports(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to retrieve reports")
		return
	}
	respond.OK(c, reports)
}

func (h *Handler) getReport(c *gin.Context) {
	report, err := h.Svc.GetReport(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve report")
		return
	}
	respond.OK(c, report)
}

func (h *Handler) updateReport(c *gin.Context) {
	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	report, err := h.Svc.UpdateReport(c.Request.Context(), c.Param("reportId"), req)
	if err != nil {
		h.respondError(c, err, "failed to update report")
		return
	}
	respond.OK(c, report)
}

func (h *Handler) deleteReport(c *gin.Context) {
	reportID := c.Param("reportId")
	if err := h.Svc.DeleteReport(c.Request.Context(), reportID); err != nil {
		h.respondError(c, err, "failed to delete report")
		return
	}
	respond.OK(c, gin.H{"reportId": reportID, "status": "success"})
}

func (h *Handler) createEntry(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	entry, err := h.Svc.AddEntry(c.Request.Context(), c.Param("reportId"), req)
	if err != nil {
		h.respondError(c, err, "failed to create report entry")
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"reportEntryId": entry.ReportEntryID,
		"reportId":      entry.ReportID,
	})
}

func (h *Handler) listEntries(c *gin.Context) {
	report, err := h.Svc.GetReport(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve report entries")
		return
	}
	respond.OK(c, report.ReportEntries)
}

func (h *Handler) getEntry(c *gin.Context) {
	entry, err := h.Svc.GetEntry(c.Request.Context(), c.Param("reportId"), c.Param("entryId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve report entry")
		return
	}
	respond.OK(c, entry)
}

func (h *Handler) updateEntry(c *gin.Context) {
	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	entry, err := h.Svc.UpdateEntry(c.Request.Context(), c.Param("reportId"), c.Param("entryId"), req)
	if err != nil {
		h.respondError(c, err, "failed to update report entry")
		return
	}
	respond.OK(c, entry)
}

func (h *Handler) deleteEntry(c *gin.Context) {
	if err := h.Svc.DeleteEntry(c.Request.Context(), c.Param("reportId"), c.Param("entryId")); err != nil {
		h.respondError(c, err, "failed to delete report entry")
		return
	}
	respond.OK(c, gin.H{"message": "Report entry deleted successfully"})
}

func (h *Handler) createComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	comment, err := h.Svc.AddComment(c.Request.Context(), c.Param("reportId"), req)
	if err != nil {
		h.respondError(c, err, "failed to create comment")
		return
	}
	respond.JSON(c, http.StatusCreated, comment)
}

func (h *Handler) listComments(c *gin.Context) {
	report, err := h.Svc.GetReport(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve comments")
		return
	}
	respond.OK(c, gin.H{"comments": report.Comments})
}

func (h *Handler) getComment(c *gin.Context) {
	comment, err := h.Svc.GetComment(c.Request.Context(), c.Param("reportId"), c.Param("commentId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve comment")
		return
	}
	respond.OK(c, comment)
}

func (h *Handler) updateComment(c *gin.Context) {
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	comment, err := h.Svc.UpdateComment(c.Request.Context(), c.Param("reportId"), c.Param("commentId"), req)
	if err != nil {
		h.respondError(c, err, "failed to update comment")
		return
	}
	respond.OK(c, comment)
}

func (h *Handler) deleteComment(c *gin.Context) {
	if err := h.Svc.DeleteComment(c.Request.Context(), c.Param("reportId"), c.Param("commentId")); err != nil {
		h.respondError(c, err, "failed to delete comment")
		return
	}
	respond.OK(c, gin.H{"message": "Comment deleted successfully"})
}
