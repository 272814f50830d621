package reports

// CreateReportRequest carries the caller-settable fields of a new report.
// Ids and timestamps are always assigned by the store.
type CreateReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	Owner       string `json:"owner"`
}

// UpdateReportRequest enumerates the mutable report fields. Absent fields
// are retained; reportId and createdAt cannot be expressed here at all.
type UpdateReportRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CreatedBy   *string `json:"createdBy"`
	Owner       *string `json:"owner"`

	// Child sequences are replaced only when explicitly supplied.
	Comments      *[]Comment     `json:"comments"`
	ReportEntries *[]ReportEntry `json:"reportEntries"`
	Attachments   *[]Attachment  `json:"attachments"`
}

// CreateCommentRequest carries the caller-settable fields of a new comment.
type CreateCommentRequest struct {
	CommentedBy string `json:"commentedBy"`
	Text        string `json:"text"`
}

// UpdateCommentRequest enumerates the mutable comment fields.
type UpdateCommentRequest struct {
	CommentedBy *string `json:"commentedBy"`
	Text        *string `json:"text"`
}

// CreateEntryRequest carries the caller-settable fields of a new entry.
type CreateEntryRequest struct {
	Text      string `json:"text"`
	CreatedBy string `json:"createdBy"`
}

// UpdateEntryRequest enumerates the mutable entry fields.
type UpdateEntryRequest struct {
	Text      *string `json:"text"`
	CreatedBy *string `json:"createdBy"`
}
