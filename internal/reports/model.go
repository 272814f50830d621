package reports

import "time"

// Report is the aggregate root. Comments, entries and attachments exist only
// embedded inside their report and share its document lifecycle.
type Report struct {
	ReportID      string        `json:"reportId"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	CreatedBy     string        `json:"createdBy"`
	Owner         string        `json:"owner"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     *time.Time    `json:"updatedAt,omitempty"`
	Comments      []Comment     `json:"comments"`
	ReportEntries []ReportEntry `json:"reportEntries"`
	Attachments   []Attachment  `json:"attachments"`
}

// Comment is an embedded child of a report.
type Comment struct {
	CommentID   string     `json:"commentId"`
	ReportID    string     `json:"reportId"`
	CommentedBy string     `json:"commentedBy"`
	Text        string     `json:"text"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ReportEntry is an embedded child of a report.
type ReportEntry struct {
	ReportEntryID string     `json:"reportEntryId"`
	ReportID      string     `json:"reportId"`
	Text          string     `json:"text"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// Attachment is the metadata record of an uploaded file. AttachmentURL is
// the storage-layer locator, not a public URL.
type Attachment struct {
	AttachmentID   string    `json:"attachmentId"`
	ReportID       string    `json:"reportId"`
	AttachmentURL  string    `json:"attachmentUrl"`
	AttachmentType string    `json:"attachmentType"`
	AttachmentName string    `json:"attachmentName"`
	AttachmentSize int64     `json:"attachmentSize"`
	CreatedAt      time.Time `json:"createdAt"`
}
