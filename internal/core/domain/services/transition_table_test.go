package services_test

import (
	"testing"

	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransitionTable_DefaultPolicy(t *testing.T) {
	table, err := services.NewTransitionTable(services.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, []order.Status{order.Confirmed, order.Cancelled}, table.AllowedTargets(order.Pending))
	assert.Equal(t, []order.Status{order.Delivered, order.Cancelled}, table.AllowedTargets(order.Confirmed))
	assert.Equal(t, []order.Status{order.Completed, order.Cancelled}, table.AllowedTargets(order.Delivered))
	assert.Empty(t, table.AllowedTargets(order.Completed))
	assert.Empty(t, table.AllowedTargets(order.Cancelled))
	assert.Len(t, table.Edges(), 6)

	assert.True(t, table.IsTerminal(order.Completed))
	assert.True(t, table.IsTerminal(order.Cancelled))
	assert.False(t, table.IsTerminal(order.Pending))
	assert.False(t, table.IsTerminal(order.Unknown))

	edge, ok := table.Edge(order.Delivered, order.Cancelled)
	require.True(t, ok)
	assert.Equal(t, operator.Manager, edge.RequiredRole)
	require.NotNil(t, edge.Precondition)

	edge, ok = table.Edge(order.Pending, order.Confirmed)
	require.True(t, ok)
	assert.Equal(t, operator.Staff, edge.RequiredRole)
	assert.Nil(t, edge.Precondition)

	_, ok = table.Edge(order.Pending, order.Pending)
	assert.False(t, ok)
}

func TestTransitionTable_AllowedTargetsIsACopy(t *testing.T) {
	table, err := services.NewTransitionTable(services.DefaultPolicy())
	require.NoError(t, err)

	targets := table.AllowedTargets(order.Pending)
	targets[0] = order.Completed

	assert.Equal(t, []order.Status{order.Confirmed, order.Cancelled}, table.AllowedTargets(order.Pending))
}

func TestNewTransitionTable_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		edges    []services.EdgePolicy
		contains string
	}{
		{
			name:     "edge out of terminal state",
			edges:    []services.EdgePolicy{{From: order.Completed, To: order.Pending}},
			contains: "Completed is terminal",
		},
		{
			name:     "edge out of cancelled",
			edges:    []services.EdgePolicy{{From: order.Cancelled, To: order.Cancelled}},
			contains: "Cancelled is terminal",
		},
		{
			name:     "unknown status",
			edges:    []services.EdgePolicy{{From: order.Pending, To: order.Status(42)}},
			contains: "42 is not a valid status",
		},
		{
			name: "duplicate edge",
			edges: []services.EdgePolicy{
				{From: order.Pending, To: order.Confirmed},
				{From: order.Pending, To: order.Confirmed},
			},
			contains: "duplicate edge",
		},
		{
			name:     "precondition does not compile",
			edges:    []services.EdgePolicy{{From: order.Pending, To: order.Confirmed, Precondition: "order.amount >"}},
			contains: "precondition is invalid",
		},
		{
			name:     "precondition is not boolean",
			edges:    []services.EdgePolicy{{From: order.Pending, To: order.Confirmed, Precondition: `"yes"`}},
			contains: "not bool",
		},
		{
			name:     "unknown role",
			edges:    []services.EdgePolicy{{From: order.Pending, To: order.Confirmed, RequiredRole: operator.Role(9)}},
			contains: "not a valid role",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy := services.DefaultPolicy()
			policy.Edges = tc.edges

			table, err := services.NewTransitionTable(policy)

			require.ErrorIs(t, err, services.ErrTransitionTableIsInvalid)
			assert.Nil(t, table)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestNewTransitionTable_SelfEdge(t *testing.T) {
	policy := services.DefaultPolicy()
	policy.Edges = append(policy.Edges, services.EdgePolicy{From: order.Confirmed, To: order.Confirmed})

	table, err := services.NewTransitionTable(policy)
	require.NoError(t, err)

	_, ok := table.Edge(order.Confirmed, order.Confirmed)
	assert.True(t, ok)
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, services.DefaultPolicy().Validate())

	policy := services.DefaultPolicy()
	policy.MaxBatchSize = 0
	policy.BatchConcurrency = 0
	policy.ElevatedRole = operator.RoleUnknown
	policy.CancelGracePeriod = -1
	policy.ItemTimeout = -1

	err := policy.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max batch size")
	assert.Contains(t, err.Error(), "batch concurrency")
	assert.Contains(t, err.Error(), "elevated role")
	assert.Contains(t, err.Error(), "cancel grace period")
	assert.Contains(t, err.Error(), "item timeout")
}
