package queries

import (
	"context"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCompletableOrdersQueryHandler reads completion candidates straight from
// the orders table.
type GetCompletableOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetCompletableOrdersQueryHandler(db *gorm.DB) GetCompletableOrdersQueryHandler {
	return GetCompletableOrdersQueryHandler{db: db}
}

func (h GetCompletableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetCompletableOrdersQuery,
) ([]GetCompletableOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetCompletableOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id
		FROM orders
		WHERE status = ? AND payment_status = ?
		ORDER BY status_changed_at, id
		LIMIT ?
	`, int(order.Delivered), int(order.Paid), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		orders = append(orders, GetCompletableOrdersQueryResponse{ID: orderID})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
