package media

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// normalizeMimeType parses the declared content type, falling back to
// sniffing the first bytes of the payload when none was declared.
func normalizeMimeType(declared string, head []byte) (string, error) {
	clean := strings.TrimSpace(declared)
	if clean == "" || clean == "application/octet-stream" {
		if len(head) == 0 {
			return "", fmt.Errorf("mime type required")
		}
		clean = http.DetectContentType(head)
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}

func isAllowedMime(mimeType string) bool {
	for _, candidate := range allowedImageTypes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}
