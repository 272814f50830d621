package reports

import (
	"context"
	"io"
	"time"

	"reporthub-backend/internal/downloadtoken"
	"reporthub-backend/internal/filecheck"
	"reporthub-backend/internal/shared/storage/blob"
	"reporthub-backend/internal/shared/telemetry"
	"reporthub-backend/internal/shared/util"
)

// Service contains business logic for the report aggregate and composes the
// blob store, file validator and token service for the attachment path.
type Service struct {
	Repo      Repo
	Blobs     blob.Store
	Validator *filecheck.Validator
	Tokens    *downloadtoken.Service
}

// CreateReport assigns an id and creation timestamp and persists the report
// with empty child sequences.
func (s *Service) CreateReport(ctx context.Context, req CreateReportRequest) (Report, error) {
	report := Report{
		ReportID:    util.NewID(),
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		Owner:       req.Owner,
		CreatedAt:   time.Now().UTC(),
	}
	return s.Repo.Create(ctx, report)
}

// GetReport returns a single report.
func (s *Service) GetReport(ctx context.Context, reportID string) (Report, error) {
	return s.Repo.GetByID(ctx, reportID)
}

// ListReports returns all reports.
func (s *Service) ListReports(ctx context.Context) ([]Report, error) {
	return s.Repo.List(ctx)
}

// UpdateReport applies a partial update.
func (s *Service) UpdateReport(ctx context.Context, reportID string, req UpdateReportRequest) (Report, error) {
	return s.Repo.Update(ctx, reportID, req)
}

// DeleteReport removes the report and its embedded children. Attachment
// blobs already in storage are left behind.
func (s *Service) DeleteReport(ctx context.Context, reportID string) error {
	return s.Repo.Delete(ctx, reportID)
}

// AddComment assigns an id and appends the comment under the report.
func (s *Service) AddComment(ctx context.Context, reportID string, req CreateCommentRequest) (Comment, error) {
	commentedBy := req.CommentedBy
	if commentedBy == "" {
		commentedBy = "anonymous"
	}
	comment := Comment{
		CommentID:   util.NewID(),
		ReportID:    reportID,
		CommentedBy: commentedBy,
		Text:        req.Text,
		CreatedAt:   time.Now().UTC(),
	}
	return s.Repo.AddComment(ctx, reportID, comment)
}

// GetComment returns one comment of the report.
func (s *Service) GetComment(ctx context.Context, reportID, commentID string) (Comment, error) {
	report, err := s.Repo.GetByID(ctx, reportID)
	if err != nil {
		return Comment{}, err
	}
	for i := range report.Comments {
		if report.Comments[i].CommentID == commentID {
			return report.Comments[i], nil
		}
	}
	return Comment{}, ErrCommentNotFound
}

// UpdateComment applies a partial update to a comment.
func (s *Service) UpdateComment(ctx context.Context, reportID, commentID string, req UpdateCommentRequest) (Comment, error) {
	return s.Repo.UpdateComment(ctx, reportID, commentID, req)
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(ctx context.Context, reportID, commentID string) error {
	return s.Repo.DeleteComment(ctx, reportID, commentID)
}

// AddEntry assigns an id and appends the entry under the report.
func (s *Service) AddEntry(ctx context.Context, reportID string, req CreateEntryRequest) (ReportEntry, error) {
	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = "system"
	}
	entry := ReportEntry{
		ReportEntryID: util.NewID(),
		ReportID:      reportID,
		Text:          req.Text,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC(),
	}
	return s.Repo.AddEntry(ctx, reportID, entry)
}

// GetEntry returns one entry of the report.
func (s *Service) GetEntry(ctx context.Context, reportID, entryID string) (ReportEntry, error) {
	report, err := s.Repo.GetByID(ctx, reportID)
	if err != nil {
		return ReportEntry{}, err
	}
	for i := range report.ReportEntries {
		if report.ReportEntries[i].ReportEntryID == entryID {
			return report.ReportEntries[i], nil
		}
	}
	return ReportEntry{}, ErrEntryNotFound
}

// UpdateEntry applies a partial update to an entry.
func (s *Service) UpdateEntry(ctx context.Context, reportID, entryID string, req UpdateEntryRequest) (ReportEntry, error) {
	return s.Repo.UpdateEntry(ctx, reportID, entryID, req)
}

// DeleteEntry removes an entry.
func (s *Service) DeleteEntry(ctx context.Context, reportID, entryID string) error {
	return s.Repo.DeleteEntry(ctx, reportID, entryID)
}

// UploadAttachment validates the upload, confirms the report exists, saves
// the blob and records the attachment, in that order.
func (s *Service) UploadAttachment(ctx context.Context, reportID, fileName, mimeType string, sizeBytes int64, r io.Reader) (Attachment, error) {
	if err := s.Validator.Validate(fileName, mimeType, sizeBytes); err != nil {
		return Attachment{}, err
	}

	if _, err := s.Repo.GetByID(ctx, reportID); err != nil {
		return Attachment{}, err
	}

	key, written, err := s.Blobs.Save(ctx, reportID, fileName, mimeType, r)
	if err != nil {
		return Attachment{}, err
	}

	attachment := Attachment{
		AttachmentID:   util.NewID(),
		ReportID:       reportID,
		AttachmentURL:  key,
		AttachmentType: mimeType,
		AttachmentName: fileName,
		AttachmentSize: written,
		CreatedAt:      time.Now().UTC(),
	}
	return s.Repo.AddAttachment(ctx, reportID, attachment)
}

// GetAttachment returns one attachment record of the report.
func (s *Service) GetAttachment(ctx context.Context, reportID, attachmentID string) (Attachment, error) {
	report, err := s.Repo.GetByID(ctx, reportID)
	if err != nil {
		return Attachment{}, err
	}
	for i := range report.Attachments {
		if report.Attachments[i].AttachmentID == attachmentID {
			return report.Attachments[i], nil
		}
	}
	return Attachment{}, ErrAttachmentNotFound
}

// IssueDownloadToken confirms the attachment exists under the report, then
// mints a signed expiring token bound to the pair.
func (s *Service) IssueDownloadToken(ctx context.Context, reportID, attachmentID string, ttl time.Duration) (string, error) {
	if _, err := s.GetAttachment(ctx, reportID, attachmentID); err != nil {
		return "", err
	}
	return s.Tokens.Issue(attachmentID, reportID, ttl)
}

// OpenAttachment resolves the attachment record and opens its blob for
// streaming.
func (s *Service) OpenAttachment(ctx context.Context, reportID, attachmentID string) (Attachment, io.ReadCloser, error) {
	attachment, err := s.GetAttachment(ctx, reportID, attachmentID)
	if err != nil {
		return Attachment{}, nil, err
	}

	rc, err := s.Blobs.Open(ctx, attachment.AttachmentURL)
	if err != nil {
		return Attachment{}, nil, err
	}
	return attachment, rc, nil
}

// DeleteAttachment removes the attachment record. The blob delete is
// best-effort: a storage failure is logged and the metadata delete proceeds,
// trading possible orphaned blobs for metadata consistency.
func (s *Service) DeleteAttachment(ctx context.Context, reportID, attachmentID string) error {
	attachment, err := s.GetAttachment(ctx, reportID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.Blobs.Delete(ctx, attachment.AttachmentURL); err != nil {
		telemetry.Error("attachment.blob.delete_failed", map[string]any{
			"report_id":     reportID,
			"attachment_id": attachmentID,
			"key":           attachment.AttachmentURL,
			"err":           err.Error(),
		})
	}

	return s.Repo.DeleteAttachment(ctx, reportID, attachmentID)
}
