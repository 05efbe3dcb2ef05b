package ports

import (
	"context"
)

// UnitOfWorkFactory creates a UnitOfWork per command so concurrent commands
// never share a transaction.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories returned after
// Begin are bound to the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit returns an error if there is no active transaction.
	Commit(ctx context.Context) error

	// Rollback returns an error if there is no active transaction, which
	// makes a deferred Rollback after Commit harmless.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	AuditTrail() AuditTrail
}
