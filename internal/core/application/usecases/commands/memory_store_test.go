package commands_test

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"orderlifecycle/internal/core/application/usecases/commands"
	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/ports"
	"orderlifecycle/internal/pkg/errs"
)

// memoryStore is an in-process stand-in for postgres. CompareAndSetStatus is
// atomic under mu, like a single-row UPDATE ... WHERE version = ?. Audit
// records become visible on commit.
type memoryStore struct {
	mu      sync.Mutex
	orders  map[kernel.UUID]*order.Order
	records map[kernel.UUID][]*audit.StatusChangeRecord
	roles   map[string]operator.Role

	// readBarrier, when set, holds every Get after its read until all expected
	// readers have read.
	readBarrier *sync.WaitGroup
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:  make(map[kernel.UUID]*order.Order),
		records: make(map[kernel.UUID][]*audit.StatusChangeRecord),
		roles:   make(map[string]operator.Role),
	}
}

func (s *memoryStore) put(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID()] = o
}

func (s *memoryStore) snapshot(id kernel.UUID) (order.Status, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	return o.Status(), o.Version()
}

func (s *memoryStore) history(id kernel.UUID) []*audit.StatusChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*audit.StatusChangeRecord(nil), s.records[id]...)
}

func (s *memoryStore) Create() commands.StatusUoW {
	return &memoryUoW{store: s}
}

func (s *memoryStore) RoleOf(_ context.Context, op operator.Operator) (operator.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[op.ID()]
	if !ok {
		return operator.RoleUnknown, errs.NewObjectNotFoundError("operator", op.ID())
	}
	return role, nil
}

type memoryUoW struct {
	store   *memoryStore
	active  bool
	pending []*audit.StatusChangeRecord
}

func (u *memoryUoW) Begin(context.Context) error {
	u.active = true
	return nil
}

func (u *memoryUoW) Commit(context.Context) error {
	if !u.active {
		return errors.New("no active transaction")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, r := range u.pending {
		u.store.records[r.OrderID()] = append(u.store.records[r.OrderID()], r)
	}
	u.active = false
	return nil
}

func (u *memoryUoW) Rollback(context.Context) error {
	if !u.active {
		return errors.New("no active transaction")
	}
	u.pending = nil
	u.active = false
	return nil
}

func (u *memoryUoW) OrderRepository() ports.OrderRepository {
	return memoryOrders{store: u.store}
}

func (u *memoryUoW) AuditTrail() ports.AuditTrail {
	return memoryTrail{uow: u}
}

type memoryOrders struct {
	store *memoryStore
}

func (r memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	loaded, err := r.load(id)

	// Release readers only after each has its copy, so all of them hold
	// the same version before any writes.
	if wg := r.store.readBarrier; wg != nil {
		wg.Done()
		wg.Wait()
	}

	return loaded, err
}

func (r memoryOrders) load(id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(o.ID(), o.Status(), o.PaymentStatus(), o.Amount(), o.Version(), o.StatusChangedAt())
}

func (r memoryOrders) CompareAndSetStatus(
	_ context.Context,
	id kernel.UUID,
	expectedVersion int64,
	status order.Status,
	changedAt time.Time,
) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok || o.Version() != expectedVersion {
		return 0, errs.NewVersionConflictError("order", id, expectedVersion)
	}
	next, err := order.RestoreOrder(o.ID(), status, o.PaymentStatus(), o.Amount(), expectedVersion+1, changedAt)
	if err != nil {
		return 0, err
	}
	r.store.orders[id] = next
	return next.Version(), nil
}

type memoryTrail struct {
	uow *memoryUoW
}

func (t memoryTrail) Append(_ context.Context, record *audit.StatusChangeRecord) error {
	t.uow.pending = append(t.uow.pending, record)
	return nil
}

func (t memoryTrail) History(_ context.Context, orderID kernel.UUID) iter.Seq2[*audit.StatusChangeRecord, error] {
	return func(yield func(*audit.StatusChangeRecord, error) bool) {
		for _, r := range t.uow.store.history(orderID) {
			if !yield(r, nil) {
				return
			}
		}
	}
}
