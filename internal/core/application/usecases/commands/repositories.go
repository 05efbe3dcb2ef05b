// Package commands contains the operations that change order status.
// Every command follows the same pattern: constructor validation, a unit of
// work per order, and typed *order.StatusError results.
package commands

import (
	"context"

	"orderlifecycle/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// AuditTrailFactory provides access to the audit trail within a transaction.
	AuditTrailFactory interface {
		AuditTrail() ports.AuditTrail
	}

	// StatusUoW writes an order status and its audit record atomically.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   newVersion, err := uow.OrderRepository().CompareAndSetStatus(ctx, id, version, status, at)
	//   err = uow.AuditTrail().Append(ctx, record)
	//
	//   err = uow.Commit(ctx)
	StatusUoW interface {
		TxManager
		OrderRepoFactory
		AuditTrailFactory
	}

	// StatusUoWFactory creates a new unit of work per status change.
	StatusUoWFactory interface {
		Create() StatusUoW
	}
)
