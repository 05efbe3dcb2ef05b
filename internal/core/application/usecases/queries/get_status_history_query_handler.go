package queries

import (
	"context"
	"fmt"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/ports"
)

// GetStatusHistoryQueryHandler materializes the audit trail of one order,
// oldest record first. An order without history, including an unknown
// order, yields an empty slice.
type GetStatusHistoryQueryHandler struct {
	trail ports.AuditTrail
}

func NewGetStatusHistoryQueryHandler(trail ports.AuditTrail) GetStatusHistoryQueryHandler {
	return GetStatusHistoryQueryHandler{trail: trail}
}

func (h GetStatusHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetStatusHistoryQuery,
) ([]*audit.StatusChangeRecord, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	records := make([]*audit.StatusChangeRecord, 0)
	for record, err := range h.trail.History(ctx, query.OrderID()) {
		if err != nil {
			return nil, fmt.Errorf("read status history of order %s: %w", query.OrderID(), err)
		}
		records = append(records, record)
	}
	return records, nil
}
