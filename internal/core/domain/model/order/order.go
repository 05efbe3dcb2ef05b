package order

import (
	"errors"
	"fmt"
	"time"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrOrderIsNotConstructed is returned when an Order was not built by RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via RestoreOrder constructor")

// timestampPrecision matches the resolution of timestamp columns in postgres.
const timestampPrecision = time.Microsecond

// Order is the state of an order that the status lifecycle reads and writes.
//
// Order follows these invariants:
//   - id is a valid UUID
//   - status and paymentStatus are valid enumeration values
//   - amount is not negative
//   - version starts at 1 and grows by exactly one per applied status change
//   - statusChangedAt only moves forward
type Order struct {
	id              kernel.UUID
	status          Status
	paymentStatus   PaymentStatus
	amount          decimal.Decimal
	version         int64
	statusChangedAt time.Time

	isConstructed bool
}

// RestoreOrder rehydrates an order from storage. Every field is validated and
// all violations are reported together.
//
// Example:
//
//	o, err := order.RestoreOrder(id, order.Pending, order.Unpaid,
//	    decimal.RequireFromString("120.50"), 1, time.Now())
func RestoreOrder(
	id kernel.UUID,
	status Status,
	paymentStatus PaymentStatus,
	amount decimal.Decimal,
	version int64,
	statusChangedAt time.Time,
) (*Order, error) {
	o := &Order{isConstructed: true}

	if err := errors.Join(
		o.setID(id),
		o.setStatus(status),
		o.setPaymentStatus(paymentStatus),
		o.setAmount(amount),
		o.setVersion(version),
		o.setStatusChangedAt(statusChangedAt),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

func (o *Order) Amount() decimal.Decimal {
	return o.amount
}

// Version is the optimistic concurrency token of the stored row.
func (o *Order) Version() int64 {
	return o.version
}

// StatusChangedAt is when the current status was applied.
func (o *Order) StatusChangedAt() time.Time {
	return o.statusChangedAt
}

// NextChangeTime returns the timestamp to stamp on the next status change:
// now at storage precision, pushed forward when needed so that it is strictly
// after the current status change. Audit records of one order therefore never
// share or reverse timestamps, even under clock skew between writers.
func (o *Order) NextChangeTime(now time.Time) time.Time {
	next := now.UTC().Truncate(timestampPrecision)
	if !next.After(o.statusChangedAt) {
		next = o.statusChangedAt.Add(timestampPrecision)
	}
	return next
}

// ApplyStatusChange records a status write that has already been persisted
// with compare-and-set. newVersion must be the version returned by storage.
func (o *Order) ApplyStatusChange(to Status, newVersion int64, changedAt time.Time) error {
	if err := to.Validate(); err != nil {
		return err
	}

	if newVersion != o.version+1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"version is invalid",
			fmt.Errorf("expected version %d, got %d", o.version+1, newVersion),
		)
	}

	if !changedAt.After(o.statusChangedAt) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status change time is invalid",
			fmt.Errorf("%s is not after %s", changedAt.Format(time.RFC3339Nano), o.statusChangedAt.Format(time.RFC3339Nano)),
		)
	}

	o.status = to
	o.version = newVersion
	o.statusChangedAt = changedAt
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setPaymentStatus(paymentStatus PaymentStatus) error {
	if err := paymentStatus.Validate(); err != nil {
		return err
	}
	o.paymentStatus = paymentStatus
	return nil
}

func (o *Order) setAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("amount is invalid", fmt.Errorf("%s is negative", amount))
	}
	o.amount = amount
	return nil
}

func (o *Order) setVersion(version int64) error {
	if version < 1 {
		return errs.NewValueIsInvalidErrorWithCause("version is invalid", fmt.Errorf("%d is less than 1", version))
	}
	o.version = version
	return nil
}

func (o *Order) setStatusChangedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("status changed at")
	}
	o.statusChangedAt = at.UTC().Truncate(timestampPrecision)
	return nil
}
