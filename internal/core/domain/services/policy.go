package services

import (
	"errors"
	"fmt"
	"time"

	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// EdgePolicy configures one allowed transition.
type EdgePolicy struct {
	From order.Status
	To   order.Status

	// Precondition is a CEL expression over order, now and cancel_grace.
	// Empty means the edge is unconditional.
	Precondition string
	// Reason is reported when Precondition evaluates to false.
	Reason string

	// RequiredRole defaults to operator.Staff when zero.
	RequiredRole operator.Role
}

// Policy is the product configuration of the order lifecycle. It is loaded
// once at start-up and never changes while the process runs.
type Policy struct {
	Edges []EdgePolicy

	// CancelGracePeriod is exposed to preconditions as cancel_grace.
	CancelGracePeriod time.Duration

	// Cancelling an order whose amount is above CancellationAmountThreshold
	// requires ElevatedRole in addition to the edge role.
	CancellationAmountThreshold decimal.Decimal
	ElevatedRole                operator.Role

	MaxBatchSize     int
	BatchConcurrency int
	// ItemTimeout bounds a single batch item. Zero disables the bound.
	ItemTimeout time.Duration
}

const (
	DefaultCancelGracePeriod = 24 * time.Hour
	DefaultMaxBatchSize      = 100
	DefaultBatchConcurrency  = 1
	DefaultItemTimeout       = 5 * time.Second
)

// DefaultPolicy returns the baseline lifecycle:
//
//	Pending   -> Confirmed, Cancelled
//	Confirmed -> Delivered, Cancelled
//	Delivered -> Completed (payment settled)
//	Delivered -> Cancelled (within the grace period, manager)
func DefaultPolicy() Policy {
	return Policy{
		Edges: []EdgePolicy{
			{From: order.Pending, To: order.Confirmed},
			{From: order.Pending, To: order.Cancelled},
			{From: order.Confirmed, To: order.Delivered},
			{From: order.Confirmed, To: order.Cancelled},
			{
				From:         order.Delivered,
				To:           order.Completed,
				Precondition: `order.payment_status == "Paid"`,
				Reason:       "payment not settled",
			},
			{
				From:         order.Delivered,
				To:           order.Cancelled,
				Precondition: `now - order.status_changed_at <= cancel_grace`,
				Reason:       "cancellation grace period elapsed",
				RequiredRole: operator.Manager,
			},
		},
		CancelGracePeriod:           DefaultCancelGracePeriod,
		CancellationAmountThreshold: decimal.NewFromInt(1000),
		ElevatedRole:                operator.Manager,
		MaxBatchSize:                DefaultMaxBatchSize,
		BatchConcurrency:            DefaultBatchConcurrency,
		ItemTimeout:                 DefaultItemTimeout,
	}
}

// Validate checks the scalar settings. Edges are checked when the
// TransitionTable is built.
func (p Policy) Validate() error {
	var errList []error

	if p.CancelGracePeriod < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"cancel grace period is invalid", fmt.Errorf("%s is negative", p.CancelGracePeriod),
		))
	}
	if p.CancellationAmountThreshold.IsNegative() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"cancellation amount threshold is invalid", fmt.Errorf("%s is negative", p.CancellationAmountThreshold),
		))
	}
	if err := p.ElevatedRole.Validate(); err != nil {
		errList = append(errList, fmt.Errorf("elevated role: %w", err))
	}
	if p.MaxBatchSize < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("max batch size", p.MaxBatchSize, 1, "unbounded"))
	}
	if p.BatchConcurrency < 1 || (p.MaxBatchSize >= 1 && p.BatchConcurrency > p.MaxBatchSize) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("batch concurrency", p.BatchConcurrency, 1, p.MaxBatchSize))
	}
	if p.ItemTimeout < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"item timeout is invalid", fmt.Errorf("%s is negative", p.ItemTimeout),
		))
	}

	return errors.Join(errList...)
}

func (e EdgePolicy) requiredRole() operator.Role {
	if e.RequiredRole == operator.RoleUnknown {
		return operator.Staff
	}
	return e.RequiredRole
}
