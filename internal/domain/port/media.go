package port

import (
	"context"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

// VideoHandle is a seekable, decodable video. Seek blocks until the seek settles or ctx
// is done; Capture renders the frame at the current position.
type VideoHandle interface {
	entity.SourceHandle
	Duration(ctx context.Context) (float64, error)
	Seek(ctx context.Context, seconds float64) error
	Capture(ctx context.Context, width, height, quality int) ([]byte, error)
}

// StillHandle is a decodable still image.
type StillHandle interface {
	entity.SourceHandle
	Bounds() (width, height int)
	Capture(ctx context.Context, width, height, quality int) ([]byte, error)
}

type MediaOpener interface {
	OpenVideo(ctx context.Context, path string) (VideoHandle, error)
	OpenImage(ctx context.Context, path string) (StillHandle, error)
}
