package reports

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"reporthub-backend/internal/shared/storage/jsondoc"
)

const documentName = "reports.json"

// JSONRepo persists all reports in a single flat JSON document. Mutations go
// through the collection's read-modify-write cycle, which holds the document
// lock for their full duration.
type JSONRepo struct {
	col *jsondoc.Collection[Report]
}

// NewJSONRepo constructs a JSONRepo storing its document under dataDir.
func NewJSONRepo(fs afero.Fs, dataDir string) *JSONRepo {
	return &JSONRepo{
		col: jsondoc.NewCollection[Report](fs, dataDir, documentName),
	}
}

// Create persists a new report with empty child sequences.
func (r *JSONRepo) Create(ctx context.Context, report Report) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report = normalize(report)
	err := r.col.Update(func(records []Report) ([]Report, error) {
		return append(records, report), nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// GetByID returns the report, with omitted child sequences normalized to
// empty.
func (r *JSONRepo) GetByID(ctx context.Context, reportID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	records, err := r.col.Read()
	if err != nil {
		return Report{}, err
	}
	for i := range records {
		if records[i].ReportID == reportID {
			return normalize(records[i]), nil
		}
	}
	return Report{}, ErrNotFound
}

// List returns all reports, normalized per record.
func (r *JSONRepo) List(ctx context.Context) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := r.col.Read()
	if err != nil {
		return nil, err
	}
	out := make([]Report, 0, len(records))
	for i := range records {
		out = append(out, normalize(records[i]))
	}
	return out, nil
}

// Update merges the supplied fields over the existing report. ReportID and
// CreatedAt are not expressible in the request and always survive.
func (r *JSONRepo) Update(ctx context.Context, reportID string, req UpdateReportRequest) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	var updated Report
	err := r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}

		report := normalize(records[i])
		if req.Title != nil {
			report.Title = *req.Title
		}
		if req.Description != nil {
			report.Description = *req.Description
		}
		if req.CreatedBy != nil {
			report.CreatedBy = *req.CreatedBy
		}
		if req.Owner != nil {
			report.Owner = *req.Owner
		}
		if req.Comments != nil {
			report.Comments = *req.Comments
		}
		if req.ReportEntries != nil {
			report.ReportEntries = *req.ReportEntries
		}
		if req.Attachments != nil {
			report.Attachments = *req.Attachments
		}
		report.UpdatedAt = timePtr(time.Now().UTC())

		records[i] = normalize(report)
		updated = records[i]
		return records, nil
	})
	if err != nil {
		return Report{}, err
	}
	return updated, nil
}

// Delete removes the report and its embedded children from the document.
// Blobs already written for its attachments are not touched.
func (r *JSONRepo) Delete(ctx context.Context, reportID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(records[:i], records[i+1:]...), nil
	})
}

// AddComment appends a comment to the report and stamps the parent.
func (r *JSONRepo) AddComment(ctx context.Context, reportID string, comment Comment) (Comment, error) {
	if err := ctx.Err(); err != nil {
		return Comment{}, err
	}

	var stored Comment
	err := r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		comment.ReportID = reportID
		records[i].Comments = append(records[i].Comments, comment)
		records[i].UpdatedAt = timePtr(time.Now().UTC())
		stored = comment
		return records, nil
	})
	if err != nil {
		return Comment{}, err
	}
	return stored, nil
}

// UpdateComment replaces the mutable fields of a comment. The comment id and
// its back-reference survive regardless of input.
func (r *JSONRepo) UpdateComment(ctx context.Context, reportID, commentID string, req UpdateCommentRequest) (Comment, error) {
	if err := ctx.Err(); err != nil {
		return Comment{}, err
	}

	var updated Comment
	err := r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		j := indexOfComment(records[i].Comments, commentID)
		if j < 0 {
			return nil, ErrCommentNotFound
		}

		comment := records[i].Comments[j]
		if req.CommentedBy != nil {
			comment.CommentedBy = *req.CommentedBy
		}
		if req.Text != nil {
			comment.Text = *req.Text
		}
		now := time.Now().UTC()
		comment.UpdatedAt = timePtr(now)

		records[i].Comments[j] = comment
		records[i].UpdatedAt = timePtr(now)
		updated = comment
		return records, nil
	})
	if err != nil {
		return Comment{}, err
	}
	return updated, nil
}

// DeleteComment removes a comment from the report.
func (r *JSONRepo) DeleteComment(ctx context.Context, reportID, commentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		j := indexOfComment(records[i].Comments, commentID)
		if j < 0 {
			return nil, ErrCommentNotFound
		}
		records[i].Comments = append(records[i].Comments[:j], records[i].Comments[j+1:]...)
		records[i].UpdatedAt = timePtr(time.Now().UTC())
		return records, nil
	})
}

// AddEntry appends a report entry and stamps the parent.
func (r *JSONRepo) AddEntry(ctx context.Context, reportID string, entry ReportEntry) (ReportEntry, error) {
	if err := ctx.Err(); err != nil {
		return ReportEntry{}, err
	}

	var stored ReportEntry
	err := r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		entry.ReportID = reportID
		records[i].ReportEntries = append(records[i].ReportEntries, entry)
		records[i].UpdatedAt = timePtr(time.Now().UTC())
		stored = entry
		return records, nil
	})
	if err != nil {
		return ReportEntry{}, err
	}
	return stored, nil
}

// UpdateEntry replaces the mutable fields of an entry.
func (r *JSONRepo) UpdateEntry(ctx context.Context, reportID, entryID string, req UpdateEntryRequest) (ReportEntry, error) {
	if err := ctx.Err(); err != nil {
		return ReportEntry{}, err
	}

	var updated ReportEntry
	err := r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		j := indexOfEntry(records[i].ReportEntries, entryID)
		if j < 0 {
			return nil, ErrEntryNotFound
		}

		entry := records[i].ReportEntries[j]
		if req.Text != nil {
			entry.Text = *req.Text
		}
		if req.CreatedBy != nil {
			entry.CreatedBy = *req.CreatedBy
		}
		now := time.Now().UTC()
		entry.UpdatedAt = timePtr(now)

		records[i].ReportEntries[j] = entry
		records[i].UpdatedAt = timePtr(now)
		updated = entry
		return records, nil
	})
	if err != nil {
		return ReportEntry{}, err
	}
	return updated, nil
}

// DeleteEntry removes an entry from the report.
func (r *JSONRepo) DeleteEntry(ctx context.Context, reportID, entryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		j := indexOfEntry(records[i].ReportEntries, entryID)
		if j < 0 {
			return nil, ErrEntryNotFound
		}
		records[i].ReportEntries = append(records[i].ReportEntries[:j], records[i].ReportEntries[j+1:]...)
		records[i].UpdatedAt = timePtr(time.Now().UTC())
		return records, nil
	})
}

// AddAttachment appends an attachment record and stamps the parent.
func (r *JSONRepo) AddAttachment(ctx context.Context, reportID string, attachment Attachment) (Attachment, error) {
	if err := ctx.Err(); err != nil {
		return Attachment{}, err
	}

	var stored Attachment
	err := r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		attachment.ReportID = reportID
		records[i].Attachments = append(records[i].Attachments, attachment)
		records[i].UpdatedAt = timePtr(time.Now().UTC())
		stored = attachment
		return records, nil
	})
	if err != nil {
		return Attachment{}, err
	}
	return stored, nil
}

// DeleteAttachment removes an attachment record from the report. The blob it
// points at is the caller's concern.
func (r *JSONRepo) DeleteAttachment(ctx context.Context, reportID, attachmentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.col.Update(func(records []Report) ([]Report, error) {
		i := indexOf(records, reportID)
		if i < 0 {
			return nil, ErrNotFound
		}
		j := indexOfAttachment(records[i].Attachments, attachmentID)
		if j < 0 {
			return nil, ErrAttachmentNotFound
		}
		records[i].Attachments = append(records[i].Attachments[:j], records[i].Attachments[j+1:]...)
		records[i].UpdatedAt = timePtr(time.Now().UTC())
		return records, nil
	})
}

func normalize(report Report) Report {
	if report.Comments == nil {
		report.Comments = []Comment{}
	}
	if report.ReportEntries == nil {
		report.ReportEntries = []ReportEntry{}
	}
	if report.Attachments == nil {
		report.Attachments = []Attachment{}
	}
	return report
}

func indexOf(records []Report, reportID string) int {
	for i := range records {
		if records[i].ReportID == reportID {
			return i
		}
	}
	return -1
}

func indexOfComment(comments []Comment, commentID string) int {
	for i := range comments {
		if comments[i].CommentID == commentID {
			return i
		}
	}
	return -1
}

func indexOfEntry(entries []ReportEntry, entryID string) int {
	for i := range entries {
		if entries[i].ReportEntryID == entryID {
			return i
		}
	}
	return -1
}

func indexOfAttachment(attachments []Attachment, attachmentID string) int {
	for i := range attachments {
		if attachments[i].AttachmentID == attachmentID {
			return i
		}
	}
	return -1
}

func timePtr(t time.Time) *time.Time {
	return &t
}

var _ Repo = (*JSONRepo)(nil)
