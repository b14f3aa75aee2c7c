package entity

import "strings"

type MediaKind string

const (
	MediaKindVideo MediaKind = "VIDEO"
	MediaKindImage MediaKind = "IMAGE"
)

// KindForMIME maps a declared MIME type onto a media kind. Only the video/ and image/
// categories are accepted.
func KindForMIME(mimeType string) (MediaKind, bool) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "video/"):
		return MediaKindVideo, true
	case strings.HasPrefix(mt, "image/"):
		return MediaKindImage, true
	default:
		return "", false
	}
}

// SourceHandle is an opaque, releasable reference to decodable media.
type SourceHandle interface {
	Release() error
}

// MediaSubmission is one user-provided or demo asset. The handle is owned by the submission
// and released when the submission is cleared or replaced. Handle may be nil when there is
// no real media underneath (demo assets without bundled bytes).
type MediaSubmission struct {
	Kind        MediaKind
	DisplayName string
	MIMEType    string
	DemoAsset   string
	Handle      SourceHandle
}

func (s *MediaSubmission) IsDemo() bool {
	return s.DemoAsset != ""
}
