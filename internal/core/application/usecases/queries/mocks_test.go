package queries_test

import (
	"context"
	"iter"
	"time"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/domain/services"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CompareAndSetStatus(
	ctx context.Context,
	id kernel.UUID,
	expectedVersion int64,
	status order.Status,
	changedAt time.Time,
) (int64, error) {
	args := m.Called(ctx, id, expectedVersion, status, changedAt)
	return args.Get(0).(int64), args.Error(1)
}

type MockPermissionGate struct {
	mock.Mock
}

func (m *MockPermissionGate) Authorize(
	ctx context.Context,
	op operator.Operator,
	current, target order.Status,
	o *order.Order,
) (services.Decision, error) {
	args := m.Called(ctx, op, current, target, o)
	return args.Get(0).(services.Decision), args.Error(1)
}

// stubAuditTrail serves the records of the requested order, then err if set.
type stubAuditTrail struct {
	records []*audit.StatusChangeRecord
	err     error
}

func (s *stubAuditTrail) Append(context.Context, *audit.StatusChangeRecord) error {
	return nil
}

func (s *stubAuditTrail) History(_ context.Context, orderID kernel.UUID) iter.Seq2[*audit.StatusChangeRecord, error] {
	return func(yield func(*audit.StatusChangeRecord, error) bool) {
		for _, r := range s.records {
			if !r.OrderID().IsEqual(orderID) {
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}
