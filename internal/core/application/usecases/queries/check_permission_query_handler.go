package queries

import (
	"context"
	"errors"

	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/domain/services"
	"orderlifecycle/internal/core/ports"
	"orderlifecycle/internal/pkg/errs"
)

// PermissionGate is the subset of services.PermissionGate used by the handler.
type PermissionGate interface {
	Authorize(ctx context.Context, op operator.Operator, current, target order.Status, o *order.Order) (services.Decision, error)
}

// CheckPermissionQueryHandler runs the permission gate against the current
// state of an order without changing anything.
//
// The answer covers the operator's role only. It does not consult the
// transition table, so Allowed can be true for a change the validator would
// reject, such as Completed -> Pending. Callers that offer actions should
// only offer targets the table allows from CurrentStatus.
type CheckPermissionQueryHandler struct {
	orders ports.OrderRepository
	gate   PermissionGate
}

func NewCheckPermissionQueryHandler(orders ports.OrderRepository, gate PermissionGate) CheckPermissionQueryHandler {
	return CheckPermissionQueryHandler{orders: orders, gate: gate}
}

// Handle returns NOT_FOUND for an unknown order and INFRASTRUCTURE for a
// failed lookup, both as *order.StatusError.
func (h CheckPermissionQueryHandler) Handle(
	ctx context.Context,
	query CheckPermissionQuery,
) (CheckPermissionQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return CheckPermissionQueryResponse{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return CheckPermissionQueryResponse{}, order.NewNotFoundError(query.OrderID(), err)
	}
	if err != nil {
		return CheckPermissionQueryResponse{}, order.NewInfrastructureError(query.OrderID(), err)
	}

	decision, err := h.gate.Authorize(ctx, query.Operator(), o.Status(), query.Target(), o)
	if err != nil {
		return CheckPermissionQueryResponse{}, order.NewInfrastructureError(query.OrderID(), err)
	}

	return CheckPermissionQueryResponse{
		Allowed:       decision.Allowed,
		Reason:        decision.Reason,
		CurrentStatus: o.Status(),
		Role:          decision.Role,
		RequiredRole:  decision.RequiredRole,
	}, nil
}
