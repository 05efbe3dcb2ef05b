package commands_test

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"orderlifecycle/internal/core/application/usecases/commands"
	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/domain/services"
	"orderlifecycle/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
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

type MockAuditTrail struct{ mock.Mock }

func (m *MockAuditTrail) Append(ctx context.Context, record *audit.StatusChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditTrail) History(ctx context.Context, orderID kernel.UUID) iter.Seq2[*audit.StatusChangeRecord, error] {
	args := m.Called(ctx, orderID)
	return args.Get(0).(iter.Seq2[*audit.StatusChangeRecord, error])
}

type MockStatusUoW struct{ mock.Mock }

func (m *MockStatusUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatusUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatusUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatusUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockStatusUoW) AuditTrail() ports.AuditTrail {
	args := m.Called()
	return args.Get(0).(ports.AuditTrail)
}

type MockStatusUoWFactory struct{ mock.Mock }

func (m *MockStatusUoWFactory) Create() commands.StatusUoW {
	args := m.Called()
	return args.Get(0).(commands.StatusUoW)
}

type MockPermissionService struct{ mock.Mock }

func (m *MockPermissionService) RoleOf(ctx context.Context, op operator.Operator) (operator.Role, error) {
	args := m.Called(ctx, op)
	return args.Get(0).(operator.Role), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, record *audit.StatusChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// recordingMetrics is safe for use from batch workers.
type recordingMetrics struct {
	mu          sync.Mutex
	transitions []string
	batchItems  []string
	batches     []int
}

func (m *recordingMetrics) TransitionObserved(from, to order.Status, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from.String()+"->"+to.String()+":"+outcome)
}

func (m *recordingMetrics) BatchItemObserved(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchItems = append(m.batchItems, outcome)
}

func (m *recordingMetrics) BatchObserved(size int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, size)
}

func newOperator(t *testing.T, id string) operator.Operator {
	t.Helper()
	op, err := operator.NewOperator(id)
	require.NoError(t, err)
	return op
}

func newOrder(t *testing.T, status order.Status, amount string) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(
		kernel.NewUUID(), status, order.Paid, decimal.RequireFromString(amount), 3, testNow.Add(-time.Hour),
	)
	require.NoError(t, err)
	return o
}

// newDomain builds the real validator and gate over the default policy.
func newDomain(t *testing.T, roles ports.PermissionService) (*services.StatusValidator, *services.PermissionGate) {
	t.Helper()
	policy := services.DefaultPolicy()
	table, err := services.NewTransitionTable(policy)
	require.NoError(t, err)
	gate, err := services.NewPermissionGate(policy, roles)
	require.NoError(t, err)
	return services.NewStatusValidator(table, fixedClock), gate
}
