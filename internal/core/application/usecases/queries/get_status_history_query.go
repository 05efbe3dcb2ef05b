// Package queries contains read-only operations of the order lifecycle.
// Queries never open a unit of work and never change state.
package queries

import (
	"errors"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/pkg/guard"
)

var ErrGetStatusHistoryQueryIsNotConstructed = errors.New(
	"GetStatusHistoryQuery must be created via NewGetStatusHistoryQuery constructor",
)

// GetStatusHistoryQuery requests the audit trail of one order.
//
// Example:
//
//	query, err := NewGetStatusHistoryQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	records, err := handler.Handle(ctx, query)
type GetStatusHistoryQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetStatusHistoryQuery(orderID kernel.UUID) (GetStatusHistoryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetStatusHistoryQuery{}, err
	}
	return GetStatusHistoryQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetStatusHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusHistoryQueryIsNotConstructed)
}

func (q GetStatusHistoryQuery) OrderID() kernel.UUID {
	return q.orderID
}
