package queries

import (
	"errors"

	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/pkg/errs"
	"orderlifecycle/internal/pkg/guard"
)

var ErrGetCompletableOrdersQueryIsNotConstructed = errors.New(
	"GetCompletableOrdersQuery must be created via NewGetCompletableOrdersQuery constructor",
)

// GetCompletableOrdersQuery finds delivered orders whose payment is settled,
// the candidates for automatic completion. Longest-delivered orders come first.
//
// Example:
//
//	query, _ := NewGetCompletableOrdersQuery(100)
//	orders, err := handler.Handle(ctx, query)
type GetCompletableOrdersQuery struct {
	limit int

	guard guard.ConstructorGuard
}

func NewGetCompletableOrdersQuery(limit int) (GetCompletableOrdersQuery, error) {
	if limit < 1 {
		return GetCompletableOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return GetCompletableOrdersQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCompletableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetCompletableOrdersQueryIsNotConstructed)
}

func (q GetCompletableOrdersQuery) Limit() int {
	return q.limit
}

type GetCompletableOrdersQueryResponse struct {
	ID kernel.UUID
}
