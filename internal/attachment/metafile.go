package attachment

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spec-kit/ticket-console/internal/domain"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// MetaFromFile inspects a local file and builds its attachment
// metadata. The MIME type comes from the extension; unknown extensions
// map to application/octet-stream, which every policy rejects.
func MetaFromFile(path string) (domain.AttachmentMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.AttachmentMeta{}, util.NewValidationError(
			fmt.Sprintf("cannot read attachment %q", path),
			map[string]any{"path": path},
		)
	}
	if info.IsDir() {
		return domain.AttachmentMeta{}, util.NewValidationError(
			fmt.Sprintf("attachment %q is a directory", path),
			map[string]any{"path": path},
		)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	// TypeByExtension may append parameters ("text/plain; charset=utf-8");
	// policies match on the bare type.
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	return domain.AttachmentMeta{
		Name:      filepath.Base(path),
		MimeType:  mimeType,
		SizeBytes: info.Size(),
	}, nil
}
