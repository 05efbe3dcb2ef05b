package ports

import (
	"context"

	"orderlifecycle/internal/core/domain/model/operator"
)

// PermissionService resolves the current role of an operator. An unknown
// operator yields errs.ObjectNotFoundError; any other error is treated as an
// infrastructure failure.
type PermissionService interface {
	RoleOf(ctx context.Context, op operator.Operator) (operator.Role, error)
}
