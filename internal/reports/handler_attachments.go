package reports

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"reporthub-backend/internal/downloadtoken"
	"reporthub-backend/internal/shared/server/respond"
)

func (h *Handler) uploadAttachment(c *gin.Context) {
	reportID := c.Param("reportId")

	// Leave headroom above the policy ceiling so an oversize upload reaches
	// the validator and the rejection names the configured limit.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+(10<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	attachment, err := h.Svc.UploadAttachment(c.Request.Context(), reportID, fileHeader.Filename, mimeType, fileHeader.Size, file)
	if err != nil {
		h.respondError(c, err, "failed to upload attachment")
		return
	}

	respond.JSON(c, http.StatusCreated, attachment)
}

func (h *Handler) listAttachments(c *gin.Context) {
	report, err := h.Svc.GetReport(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve attachments")
		return
	}
	respond.OK(c, gin.H{"attachments": report.Attachments})
}

func (h *Handler) getAttachment(c *gin.Context) {
	attachment, err := h.Svc.GetAttachment(c.Request.Context(), c.Param("reportId"), c.Param("attachmentId"))
	if err != nil {
		h.respondError(c, err, "failed to retrieve attachment")
		return
	}
	respond.OK(c, attachment)
}

func (h *Handler) issueToken(c *gin.Context) {
	reportID := c.Param("reportId")
	attachmentID := c.Param("attachmentId")

	expiresMinutes := int(downloadtoken.DefaultTTL / time.Minute)
	if raw := c.Query("expires"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "expires must be an integer number of minutes", nil)
			return
		}
		expiresMinutes = parsed
	}

	token, err := h.Svc.IssueDownloadToken(c.Request.Context(), reportID, attachmentID, time.Duration(expiresMinutes)*time.Minute)
	if err != nil {
		h.respondError(c, err, "failed to generate download token")
		return
	}

	respond.OK(c, gin.H{
		"token":       token,
		"expiresIn":   expiresMinutes,
		"downloadUrl": fmt.Sprintf("/api/v1/report/%s/attachment/%s/download?token=%s", reportID, attachmentID, token),
	})
}

func (h *Handler) downloadAttachment(c *gin.Context) {
	reportID := c.Param("reportId")
	attachmentID := c.Param("attachmentId")

	token := c.Query("token")
	if token == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Token is required", nil)
		return
	}

	payload, err := h.Svc.Tokens.Validate(token)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
		return
	}

	// The token is bound to one attachment of one report; substituting path
	// segments does not transfer it.
	if !payload.Matches(reportID, attachmentID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "Token does not match request", nil)
		return
	}

	attachment, rc, err := h.Svc.OpenAttachment(c.Request.Context(), reportID, attachmentID)
	if err != nil {
		h.respondError(c, err, "failed to download attachment")
		return
	}
	defer rc.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", attachment.AttachmentName),
	}
	c.DataFromReader(http.StatusOK, attachment.AttachmentSize, attachment.AttachmentType, rc, extraHeaders)
}

func (h *Handler) deleteAttachment(c *gin.Context) {
	if err := h.Svc.DeleteAttachment(c.Request.Context(), c.Param("reportId"), c.Param("attachmentId")); err != nil {
		h.respondError(c, err, "failed to delete attachment")
		return
	}
	respond.OK(c, gin.H{"message": "Attachment deleted successfully"})
}
