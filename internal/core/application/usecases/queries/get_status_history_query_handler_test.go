package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderlifecycle/internal/core/application/usecases/queries"
	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusHistoryQueryHandler_Handle(t *testing.T) {
	orderID := kernel.NewUUID()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	first := newRecord(t, orderID, order.Pending, order.Confirmed, 2, base)
	second := newRecord(t, orderID, order.Confirmed, order.Delivered, 3, base.Add(time.Hour))
	foreign := newRecord(t, kernel.NewUUID(), order.Pending, order.Cancelled, 2, base)

	t.Run("returns records of the order in stored order", func(t *testing.T) {
		handler := queries.NewGetStatusHistoryQueryHandler(&stubAuditTrail{
			records: []*audit.StatusChangeRecord{first, foreign, second},
		})

		records, err := handler.Handle(context.Background(), historyQuery(t, orderID))

		require.NoError(t, err)
		assert.Equal(t, []*audit.StatusChangeRecord{first, second}, records)
	})

	t.Run("unknown order yields empty slice", func(t *testing.T) {
		handler := queries.NewGetStatusHistoryQueryHandler(&stubAuditTrail{
			records: []*audit.StatusChangeRecord{foreign},
		})

		records, err := handler.Handle(context.Background(), historyQuery(t, kernel.NewUUID()))

		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("read failure is returned", func(t *testing.T) {
		readErr := errors.New("connection reset")
		handler := queries.NewGetStatusHistoryQueryHandler(&stubAuditTrail{
			records: []*audit.StatusChangeRecord{first},
			err:     readErr,
		})

		records, err := handler.Handle(context.Background(), historyQuery(t, orderID))

		require.ErrorIs(t, err, readErr)
		assert.Nil(t, records)
	})

	t.Run("query not built by constructor", func(t *testing.T) {
		handler := queries.NewGetStatusHistoryQueryHandler(&stubAuditTrail{})

		_, err := handler.Handle(context.Background(), queries.GetStatusHistoryQuery{})

		assert.ErrorIs(t, err, queries.ErrGetStatusHistoryQueryIsNotConstructed)
	})
}

func historyQuery(t *testing.T, orderID kernel.UUID) queries.GetStatusHistoryQuery {
	t.Helper()
	q, err := queries.NewGetStatusHistoryQuery(orderID)
	require.NoError(t, err)
	return q
}

func newRecord(t *testing.T, orderID kernel.UUID, from, to order.Status, version int64, at time.Time) *audit.StatusChangeRecord {
	t.Helper()
	r, err := audit.RestoreStatusChangeRecord(kernel.NewUUID(), orderID, from, to, "op-7", "", at, audit.OutcomeSuccess, version)
	require.NoError(t, err)
	return r
}
