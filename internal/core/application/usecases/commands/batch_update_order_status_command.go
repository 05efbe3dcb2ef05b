package commands

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"
	"orderlifecycle/internal/pkg/guard"
)

var ErrBatchUpdateOrderStatusCommandIsNotConstructed = errors.New(
	"BatchUpdateOrderStatusCommand must be created via NewBatchUpdateOrderStatusCommand constructor",
)

// BatchUpdateOrderStatusCommand moves many orders to the same target status.
// The upper bound on the number of ids is a policy value checked by the
// handler; duplicates are allowed and processed independently.
type BatchUpdateOrderStatusCommand struct {
	orderIDs []kernel.UUID
	target   order.Status
	operator operator.Operator
	notes    string

	guard guard.ConstructorGuard
}

func NewBatchUpdateOrderStatusCommand(
	orderIDs []kernel.UUID,
	target order.Status,
	op operator.Operator,
	notes string,
) (BatchUpdateOrderStatusCommand, error) {
	if len(orderIDs) == 0 {
		return BatchUpdateOrderStatusCommand{}, errs.NewValueIsRequiredError("orderIds")
	}
	for i, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return BatchUpdateOrderStatusCommand{}, fmt.Errorf("orderIds[%d]: %w", i, err)
		}
	}
	if err := op.Validate(); err != nil {
		return BatchUpdateOrderStatusCommand{}, err
	}
	if n := utf8.RuneCountInString(notes); n > audit.MaxNotesLength {
		return BatchUpdateOrderStatusCommand{}, errs.NewValueIsOutOfRangeError("notes length", n, 0, audit.MaxNotesLength)
	}

	return BatchUpdateOrderStatusCommand{
		orderIDs: slices.Clone(orderIDs),
		target:   target,
		operator: op,
		notes:    notes,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c BatchUpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrBatchUpdateOrderStatusCommandIsNotConstructed)
}

// OrderIDs returns a copy of the requested ids in input order.
func (c BatchUpdateOrderStatusCommand) OrderIDs() []kernel.UUID {
	return slices.Clone(c.orderIDs)
}

func (c BatchUpdateOrderStatusCommand) Target() order.Status {
	return c.target
}

func (c BatchUpdateOrderStatusCommand) Operator() operator.Operator {
	return c.operator
}

func (c BatchUpdateOrderStatusCommand) Notes() string {
	return c.notes
}
