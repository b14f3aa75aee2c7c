package port

import (
	"context"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

// StatusPublisher announces run progress and terminal outcomes.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg entity.AnalysisStatusMessage) error
}

// DLQPublisher parks a request that can never succeed. The raw body is kept as
// received so undecodable requests can still be inspected.
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, rawRequest []byte, reason string) error
}
