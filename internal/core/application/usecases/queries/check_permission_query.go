package queries

import (
	"errors"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/guard"
)

var ErrCheckPermissionQueryIsNotConstructed = errors.New(
	"CheckPermissionQuery must be created via NewCheckPermissionQuery constructor",
)

// CheckPermissionQuery asks whether an operator may move an order to a target
// status. It is a UI affordance probe: the answer can be stale by the time the
// change is requested.
type CheckPermissionQuery struct {
	orderID  kernel.UUID
	operator operator.Operator
	target   order.Status

	guard guard.ConstructorGuard
}

func NewCheckPermissionQuery(orderID kernel.UUID, op operator.Operator, target order.Status) (CheckPermissionQuery, error) {
	if err := orderID.Validate(); err != nil {
		return CheckPermissionQuery{}, err
	}
	if err := op.Validate(); err != nil {
		return CheckPermissionQuery{}, err
	}
	if err := target.Validate(); err != nil {
		return CheckPermissionQuery{}, err
	}

	return CheckPermissionQuery{
		orderID:  orderID,
		operator: op,
		target:   target,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q CheckPermissionQuery) Validate() error {
	return q.guard.Validate(ErrCheckPermissionQueryIsNotConstructed)
}

func (q CheckPermissionQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q CheckPermissionQuery) Operator() operator.Operator {
	return q.operator
}

func (q CheckPermissionQuery) Target() order.Status {
	return q.target
}

// CheckPermissionQueryResponse carries the gate decision for the current
// status of the order. Allowed says nothing about whether the transition is
// valid; that is decided when the change is requested.
type CheckPermissionQueryResponse struct {
	Allowed       bool
	Reason        string
	CurrentStatus order.Status
	Role          operator.Role
	RequiredRole  operator.Role
}
