package attachment

import (
	"fmt"

	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/domain"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// Policy constrains which files may be staged for upload. There is one
// configured base policy; contexts that need looser limits (the ticket
// creation form) derive from it via an override instead of carrying
// their own hard-coded constants.
type Policy struct {
	MaxBytes     int64
	AllowedTypes map[string]struct{}
}

var composerTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
	"text/plain",
}

var formExtraTypes = []string{
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ComposerPolicy returns the policy for the detail-view message composer.
func ComposerPolicy(cfg config.AttachmentConfig) Policy {
	maxBytes := cfg.ComposerMaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return newPolicy(maxBytes, composerTypes)
}

// FormPolicy returns the creation-form policy: the composer type set
// plus document formats, with a higher size ceiling.
func FormPolicy(cfg config.AttachmentConfig) Policy {
	maxBytes := cfg.FormMaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	types := append(append([]string{}, composerTypes...), formExtraTypes...)
	return newPolicy(maxBytes, types)
}

func newPolicy(maxBytes int64, types []string) Policy {
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return Policy{MaxBytes: maxBytes, AllowedTypes: allowed}
}

// Validate checks one file's declared metadata against the policy.
func (p Policy) Validate(meta domain.AttachmentMeta) error {
	if _, ok := p.AllowedTypes[meta.MimeType]; !ok {
		return util.NewValidationError(
			fmt.Sprintf("unsupported attachment type %q", meta.MimeType),
			map[string]any{"file": meta.Name, "mime_type": meta.MimeType},
		)
	}
	if meta.SizeBytes > p.MaxBytes {
		return util.NewValidationError(
			fmt.Sprintf("attachment %q exceeds %d byte limit", meta.Name, p.MaxBytes),
			map[string]any{"file": meta.Name, "size_bytes": meta.SizeBytes},
		)
	}
	return nil
}

// Stage filters candidate files through the policy. Files that fail
// validation are dropped from the staged sequence and reported
// separately so the caller can log them.
func (p Policy) Stage(candidates []domain.AttachmentMeta) (staged []domain.AttachmentMeta, rejected []domain.AttachmentMeta) {
	for _, meta := range candidates {
		if err := p.Validate(meta); err != nil {
			rejected = append(rejected, meta)
			continue
		}
		staged = append(staged, meta)
	}
	return staged, rejected
}
