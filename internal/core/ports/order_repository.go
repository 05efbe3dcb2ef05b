// Package ports defines the contracts between the order lifecycle core and
// its infrastructure. Adapters in internal/adapters implement them.
package ports

import (
	"context"
	"time"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"
)

// OrderRepository reads orders and writes their status. Orders are created
// and deleted elsewhere.
type OrderRepository interface {
	// Get returns the order or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// CompareAndSetStatus writes status and changedAt only if the stored
	// version still equals expectedVersion, and returns the new version.
	// A mismatch or a missing row yields errs.VersionConflictError; the
	// write is never retried.
	//
	// Example:
	//   newVersion, err := repo.CompareAndSetStatus(ctx, o.ID(), o.Version(), order.Confirmed, at)
	//   if errors.Is(err, errs.ErrVersionConflict) {
	//       // someone else changed the order, re-read and resubmit
	//   }
	CompareAndSetStatus(
		ctx context.Context,
		id kernel.UUID,
		expectedVersion int64,
		status order.Status,
		changedAt time.Time,
	) (int64, error)
}
