package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

type RunRepository interface {
	Create(ctx context.Context, run *entity.AnalysisRun) error
	Update(ctx context.Context, run *entity.AnalysisRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisRun, error)
}
