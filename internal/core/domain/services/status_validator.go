package services

import (
	"fmt"
	"time"

	"orderlifecycle/internal/core/domain/model/order"
)

// StatusValidator decides whether a status change is possible. It answers
// "is this transition allowed by the lifecycle", never "is this operator
// allowed to perform it"; see PermissionGate for the latter.
//
// Checks run in a fixed order and stop at the first failing step:
//
//  1. unknown target or current status  -> UNKNOWN_STATUS
//  2. current status is terminal        -> TERMINAL_STATE
//  3. no edge from current to target    -> INVALID_TRANSITION
//  4. edge precondition does not hold   -> PRECONDITION_FAILED
//
// Step 2 precedes step 3, so a request out of Completed or Cancelled always
// yields TERMINAL_STATE. Same-state requests are not special: without a
// self-edge they fail step 3.
type StatusValidator struct {
	table *TransitionTable
	now   func() time.Time
}

// NewStatusValidator uses time.Now when now is nil.
func NewStatusValidator(table *TransitionTable, now func() time.Time) *StatusValidator {
	if now == nil {
		now = time.Now
	}
	return &StatusValidator{table: table, now: now}
}

func (v *StatusValidator) Validate(current, target order.Status, o *order.Order) order.ValidationResult {
	var unknown []order.ValidationError
	if !target.IsValid() {
		unknown = append(unknown, order.ValidationError{
			Field:   "targetStatus",
			Code:    order.CodeUnknownStatus,
			Message: fmt.Sprintf("%d is not a recognized status", target),
		})
	}
	if !current.IsValid() {
		unknown = append(unknown, order.ValidationError{
			Field:   "status",
			Code:    order.CodeUnknownStatus,
			Message: fmt.Sprintf("%d is not a recognized status", current),
		})
	}
	if len(unknown) > 0 {
		return order.InvalidResult(unknown...)
	}

	if v.table.IsTerminal(current) {
		return order.InvalidResult(order.ValidationError{
			Field:   "status",
			Code:    order.CodeTerminalState,
			Message: fmt.Sprintf("order is %s and admits no further transitions", current),
		})
	}

	edge, ok := v.table.Edge(current, target)
	if !ok {
		return order.InvalidResult(order.ValidationError{
			Field:   "targetStatus",
			Code:    order.CodeInvalidTransition,
			Message: fmt.Sprintf("transition %s -> %s is not allowed", current, target),
		})
	}

	if edge.Precondition == nil {
		return order.ValidResult()
	}

	if o == nil {
		return preconditionFailed("order is required to evaluate the precondition")
	}

	holds, err := edge.Precondition.Evaluate(o, v.now(), v.table.CancelGracePeriod())
	if err != nil {
		return preconditionFailed(err.Error())
	}
	if !holds {
		return preconditionFailed(edge.Precondition.Reason())
	}

	return order.ValidResult()
}

func preconditionFailed(message string) order.ValidationResult {
	return order.InvalidResult(order.ValidationError{
		Field:   "targetStatus",
		Code:    order.CodePreconditionFailed,
		Message: message,
	})
}
