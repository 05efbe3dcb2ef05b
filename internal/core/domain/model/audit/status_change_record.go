package audit

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"
)

var ErrStatusChangeRecordIsNotConstructed = errors.New(
	"StatusChangeRecord must be created via NewStatusChangeRecord or RestoreStatusChangeRecord constructor",
)

// MaxNotesLength bounds the free text an operator can attach to a change.
const MaxNotesLength = 1000

// Outcome is the result of the attempt a record describes.
type Outcome string

const OutcomeSuccess Outcome = "success"

// StatusChangeRecord is one entry of an order's audit trail.
//
// Within one order, Version grows by one per record and Timestamp is strictly
// increasing; both orderings agree.
type StatusChangeRecord struct {
	id         kernel.UUID
	orderID    kernel.UUID
	fromStatus order.Status
	toStatus   order.Status
	operatorID string
	notes      string
	timestamp  time.Time
	outcome    Outcome
	version    int64

	isConstructed bool
}

// NewStatusChangeRecord describes a change that has just been applied to o:
// o must already carry the new status, version and change time.
func NewStatusChangeRecord(
	o *order.Order,
	from order.Status,
	op operator.Operator,
	notes string,
) (*StatusChangeRecord, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	return RestoreStatusChangeRecord(
		kernel.NewUUID(),
		o.ID(),
		from,
		o.Status(),
		op.ID(),
		notes,
		o.StatusChangedAt(),
		OutcomeSuccess,
		o.Version(),
	)
}

// RestoreStatusChangeRecord rehydrates a stored record.
func RestoreStatusChangeRecord(
	id kernel.UUID,
	orderID kernel.UUID,
	from order.Status,
	to order.Status,
	operatorID string,
	notes string,
	timestamp time.Time,
	outcome Outcome,
	version int64,
) (*StatusChangeRecord, error) {
	var errList []error

	if err := id.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := from.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := to.Validate(); err != nil {
		errList = append(errList, err)
	}
	if operatorID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("operator id"))
	}
	if n := utf8.RuneCountInString(notes); n > MaxNotesLength {
		errList = append(errList, errs.NewValueIsOutOfRangeError("notes length", n, 0, MaxNotesLength))
	}
	if timestamp.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("timestamp"))
	}
	if outcome == "" {
		errList = append(errList, errs.NewValueIsRequiredError("outcome"))
	}
	if version < 1 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"version is invalid", fmt.Errorf("%d is less than 1", version),
		))
	}

	if len(errList) > 0 {
		return nil, errors.Join(errList...)
	}

	return &StatusChangeRecord{
		id:            id,
		orderID:       orderID,
		fromStatus:    from,
		toStatus:      to,
		operatorID:    operatorID,
		notes:         notes,
		timestamp:     timestamp.UTC(),
		outcome:       outcome,
		version:       version,
		isConstructed: true,
	}, nil
}

func (r *StatusChangeRecord) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrStatusChangeRecordIsNotConstructed
	}
	return nil
}

func (r *StatusChangeRecord) ID() kernel.UUID { return r.id }
func (r *StatusChangeRecord) OrderID() kernel.UUID { return r.orderID }
func (r *StatusChangeRecord) FromStatus() order.Status { return r.fromStatus }
func (r *StatusChangeRecord) ToStatus() order.Status { return r.toStatus }
func (r *StatusChangeRecord) OperatorID() string { return r.operatorID }
func (r *StatusChangeRecord) Notes() string { return r.notes }
func (r *StatusChangeRecord) Timestamp() time.Time { return r.timestamp }
func (r *StatusChangeRecord) Outcome() Outcome { return r.outcome }

// Version is the order version produced by the change.
func (r *StatusChangeRecord) Version() int64 { return r.version }
