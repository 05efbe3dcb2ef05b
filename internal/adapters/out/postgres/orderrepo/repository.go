package orderrepo

import (
	"context"
	"errors"
	"time"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// CompareAndSetStatus writes status only if the stored version still equals
// expectedVersion, and bumps the version in the same statement. It returns the
// new version, or a *errs.VersionConflictError when another writer got there
// first or the order no longer exists.
func (r *GormOrderRepository) CompareAndSetStatus(
	ctx context.Context,
	id kernel.UUID,
	expectedVersion int64,
	status order.Status,
	changedAt time.Time,
) (int64, error) {
	if err := id.Validate(); err != nil {
		return 0, err
	}
	if err := status.Validate(); err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", id.Bytes(), expectedVersion).
		Updates(map[string]any{
			"status":            int(status),
			"version":           gorm.Expr("version + 1"),
			"status_changed_at": changedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		return 0, errs.NewVersionConflictError("order", id.String(), expectedVersion)
	}

	return expectedVersion + 1, nil
}
