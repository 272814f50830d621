package reports

import "errors"

// NotFound errors are distinct per level so callers can tell a missing
// report from a missing child.
var (
	ErrNotFound           = errors.New("report not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrEntryNotFound      = errors.New("report entry not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidInput       = errors.New("invalid input")
)
