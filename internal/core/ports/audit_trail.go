package ports

import (
	"context"
	"iter"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
)

// AuditTrail is the append-only log of applied status changes.
type AuditTrail interface {
	// Append stores a record. Within a unit of work it shares the status
	// write transaction.
	Append(ctx context.Context, record *audit.StatusChangeRecord) error

	// History yields the records of one order oldest first. The sequence is
	// lazy and restartable: every range reads storage again. An unknown
	// order yields nothing. A read error is yielded once and ends the
	// sequence.
	History(ctx context.Context, orderID kernel.UUID) iter.Seq2[*audit.StatusChangeRecord, error]
}
