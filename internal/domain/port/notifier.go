package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, runID string, mediaName string, errorMsg string) error
}
