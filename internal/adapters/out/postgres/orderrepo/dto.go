// Package orderrepo persists the part of an order that the status lifecycle
// owns. Status and payment status are stored as their integer codes.
package orderrepo

import (
	"time"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is a row of the orders table. The composite index serves the
// completable orders query.
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Status          int             `gorm:"type:smallint;not null;index:idx_orders_status_payment,priority:1"`
	PaymentStatus   int             `gorm:"type:smallint;not null;index:idx_orders_status_payment,priority:2"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Version         int64           `gorm:"not null;default:1"`
	StatusChangedAt time.Time       `gorm:"type:timestamptz;not null"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		order.Status(dto.Status),
		order.PaymentStatus(dto.PaymentStatus),
		dto.Amount,
		dto.Version,
		dto.StatusChangedAt,
	)
}
