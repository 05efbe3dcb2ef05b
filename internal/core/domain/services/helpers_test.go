package services_test

import (
	"testing"
	"time"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type orderOpts struct {
	payment   order.PaymentStatus
	amount    string
	changedAt time.Time
}

func newOrder(t *testing.T, status order.Status, opts ...func(*orderOpts)) *order.Order {
	t.Helper()
	o := orderOpts{payment: order.Paid, amount: "100", changedAt: testNow.Add(-time.Hour)}
	for _, opt := range opts {
		opt(&o)
	}
	restored, err := order.RestoreOrder(kernel.NewUUID(), status, o.payment, decimal.RequireFromString(o.amount), 1, o.changedAt)
	require.NoError(t, err)
	return restored
}

func withPayment(p order.PaymentStatus) func(*orderOpts) {
	return func(o *orderOpts) { o.payment = p }
}

func withAmount(a string) func(*orderOpts) {
	return func(o *orderOpts) { o.amount = a }
}

func withChangedAt(at time.Time) func(*orderOpts) {
	return func(o *orderOpts) { o.changedAt = at }
}
