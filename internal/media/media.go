package media

import (
	"context"
	"io"
	"strings"
)

// Upload is the result of storing one attachment: a public URL plus the
// message kind derived from the content type.
type Upload struct {
	URL  string
	Kind string
}

// Uploader stores attachment bytes and returns where they live.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*Upload, error)
}

// KindFromContentType maps a MIME type onto a message kind. Anything
// unrecognised is a generic file.
func KindFromContentType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	default:
		return "file"
	}
}
