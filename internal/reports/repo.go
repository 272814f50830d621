package reports

import "context"

// Repo is the single authority for report existence and for every embedded
// child's persistence. Children can only be created, mutated or deleted
// under a report that currently exists.
type Repo interface {
	Create(ctx context.Context, report Report) (Report, error)
	GetByID(ctx context.Context, reportID string) (Report, error)
	List(ctx context.Context) ([]Report, error)
	Update(ctx context.Context, reportID string, req UpdateReportRequest) (Report, error)
	Delete(ctx context.Context, reportID string) error

	AddComment(ctx context.Context, reportID string, comment Comment) (Comment, error)
	UpdateComment(ctx context.Context, reportID, commentID string, req UpdateCommentRequest) (Comment, error)
	DeleteComment(ctx context.Context, reportID, commentID string) error

	AddEntry(ctx context.Context, reportID string, entry ReportEntry) (ReportEntry, error)
	UpdateEntry(ctx context.Context, reportID, entryID string, req UpdateEntryRequest) (ReportEntry, error)
	DeleteEntry(ctx context.Context, reportID, entryID string) error

	AddAttachment(ctx context.Context, reportID string, attachment Attachment) (Attachment, error)
	DeleteAttachment(ctx context.Context, reportID, attachmentID string) error
}
