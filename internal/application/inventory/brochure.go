package inventory

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AllowedBrochureTypes is the whitelist of brochure content types.
// SVG is excluded since it can carry script.
var AllowedBrochureTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// BrochureStorage stores project brochures in object storage
type BrochureStorage interface {
	// Upload stores body under storageKey and returns the URL buyers can open
	Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) (string, error)

	// Delete removes a stored object; missing objects are not an error
	Delete(ctx context.Context, storageKey string) error
}

// BrochureUpload is a brochure file received from an operator
type BrochureUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// brochureKey generates a unique storage key for a project brochure:
// {projectID}/{uuid}{ext}
func brochureKey(projectID uuid.UUID, fileName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) > 6 {
		ext = AllowedBrochureTypes[contentType]
	}
	return fmt.Sprintf("%s/%s%s", projectID, uuid.New(), ext)
}
