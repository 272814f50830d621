package filecheck

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Config controls the upload policy: a size ceiling plus MIME-type and
// extension allow-lists.
type Config struct {
	MaxSizeBytes      int64
	AllowedMIMETypes  []string
	AllowedExtensions []string
}

// DefaultConfig covers common office, image, pdf and text types with a
// 10 MiB ceiling.
func DefaultConfig() Config {
	return Config{
		MaxSizeBytes: 10 << 20,
		AllowedMIMETypes: []string{
			"image/jpeg",
			"image/png",
			"image/gif",
			"application/pdf",
			"text/plain",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		},
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".txt", ".doc", ".docx", ".xls", ".xlsx"},
	}
}

// ValidationError describes the specific policy violation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validator gates uploads on declared metadata. No content sniffing is
// performed; the MIME type is trusted as declared by the transport.
type Validator struct {
	cfg       Config
	mimeTypes map[string]struct{}
	exts      map[string]struct{}
}

// New builds a validator from the given config. Zero or missing fields fall
// back to the defaults.
func New(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = def.MaxSizeBytes
	}
	if len(cfg.AllowedMIMETypes) == 0 {
		cfg.AllowedMIMETypes = def.AllowedMIMETypes
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = def.AllowedExtensions
	}

	v := &Validator{
		cfg:       cfg,
		mimeTypes: make(map[string]struct{}, len(cfg.AllowedMIMETypes)),
		exts:      make(map[string]struct{}, len(cfg.AllowedExtensions)),
	}
	for _, m := range cfg.AllowedMIMETypes {
		v.mimeTypes[m] = struct{}{}
	}
	for _, e := range cfg.AllowedExtensions {
		v.exts[strings.ToLower(e)] = struct{}{}
	}
	return v
}

// Validate runs the size, MIME-type and extension checks in that order and
// stops at the first failure.
func (v *Validator) Validate(fileName, mimeType string, sizeBytes int64) error {
	if sizeBytes > v.cfg.MaxSizeBytes {
		maxMB := strconv.FormatFloat(float64(v.cfg.MaxSizeBytes)/float64(1<<20), 'f', -1, 64)
		return &ValidationError{
			Reason: fmt.Sprintf("File size exceeds maximum allowed size of %sMB", maxMB),
		}
	}

	if _, ok := v.mimeTypes[mimeType]; !ok {
		return &ValidationError{
			Reason: fmt.Sprintf("File type %s is not allowed. Allowed types: %s",
				mimeType, strings.Join(v.cfg.AllowedMIMETypes, ", ")),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := v.exts[ext]; !ok {
		return &ValidationError{
			Reason: fmt.Sprintf("File extension %s is not allowed. Allowed extensions: %s",
				ext, strings.Join(v.cfg.AllowedExtensions, ", ")),
		}
	}

	return nil
}
