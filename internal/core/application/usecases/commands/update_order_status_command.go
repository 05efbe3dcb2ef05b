package commands

import (
	"errors"
	"unicode/utf8"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"
	"orderlifecycle/internal/pkg/guard"
)

var ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
	"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
)

// UpdateOrderStatusCommand requests moving one order to a target status.
//
// The target status is not checked here: an unrecognized value is a business
// rejection (UNKNOWN_STATUS) reported by the handler, not a malformed command.
//
// Example:
//
//	cmd, err := NewUpdateOrderStatusCommand(orderID, order.Confirmed, op, "customer confirmed by phone")
//	if err != nil {
//	    return err
//	}
//	updated, err := handler.Handle(ctx, cmd)
type UpdateOrderStatusCommand struct {
	orderID  kernel.UUID
	target   order.Status
	operator operator.Operator
	notes    string

	guard guard.ConstructorGuard
}

func NewUpdateOrderStatusCommand(
	orderID kernel.UUID,
	target order.Status,
	op operator.Operator,
	notes string,
) (UpdateOrderStatusCommand, error) {
	if err := orderID.Validate(); err != nil {
		return UpdateOrderStatusCommand{}, err
	}
	if err := op.Validate(); err != nil {
		return UpdateOrderStatusCommand{}, err
	}
	if n := utf8.RuneCountInString(notes); n > audit.MaxNotesLength {
		return UpdateOrderStatusCommand{}, errs.NewValueIsOutOfRangeError("notes length", n, 0, audit.MaxNotesLength)
	}

	return UpdateOrderStatusCommand{
		orderID:  orderID,
		target:   target,
		operator: op,
		notes:    notes,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

func (c UpdateOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UpdateOrderStatusCommand) Target() order.Status {
	return c.target
}

func (c UpdateOrderStatusCommand) Operator() operator.Operator {
	return c.operator
}

func (c UpdateOrderStatusCommand) Notes() string {
	return c.notes
}
