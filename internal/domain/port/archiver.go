package port

import (
	"context"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

type FrameArchiver interface {
	CreateArchive(ctx context.Context, frames []entity.SampleFrame, outputPath string) error
}
