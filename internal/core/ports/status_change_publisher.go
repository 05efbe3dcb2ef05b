package ports

import (
	"context"

	"orderlifecycle/internal/core/domain/model/audit"
)

// StatusChangePublisher announces committed status changes to other services.
// It is called after commit, so a failure cannot undo the change.
type StatusChangePublisher interface {
	Publish(ctx context.Context, record *audit.StatusChangeRecord) error
}
