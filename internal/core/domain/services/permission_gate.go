package services

import (
	"context"
	"errors"
	"fmt"

	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/ports"
	"orderlifecycle/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Decision is the outcome of an authorization check. A denied Decision is
// not an error: it is returned with a nil error and a human readable Reason.
type Decision struct {
	Allowed      bool
	Reason       string
	Role         operator.Role
	RequiredRole operator.Role
}

type edgeKey struct {
	from order.Status
	to   order.Status
}

// PermissionGate decides who may perform a transition. It keeps its own
// copy of the per-edge role rules and never consults the TransitionTable,
// so "not allowed" and "not possible" stay separate answers.
//
// The required role is the edge role (staff when the pair is not
// configured), raised to the elevated role when the target is Cancelled and
// the order amount is above the cancellation threshold.
type PermissionGate struct {
	roles        ports.PermissionService
	edgeRoles    map[edgeKey]operator.Role
	threshold    decimal.Decimal
	elevatedRole operator.Role
}

func NewPermissionGate(policy Policy, roles ports.PermissionService) (*PermissionGate, error) {
	if roles == nil {
		return nil, errs.NewValueIsRequiredError("roles")
	}
	if err := policy.ElevatedRole.Validate(); err != nil {
		return nil, fmt.Errorf("elevated role: %w", err)
	}

	edgeRoles := make(map[edgeKey]operator.Role, len(policy.Edges))
	for _, e := range policy.Edges {
		edgeRoles[edgeKey{e.From, e.To}] = e.requiredRole()
	}

	return &PermissionGate{
		roles:        roles,
		edgeRoles:    edgeRoles,
		threshold:    policy.CancellationAmountThreshold,
		elevatedRole: policy.ElevatedRole,
	}, nil
}

// RequiredRole returns the minimum role for moving o from current to target.
func (g *PermissionGate) RequiredRole(current, target order.Status, o *order.Order) operator.Role {
	required, ok := g.edgeRoles[edgeKey{current, target}]
	if !ok {
		required = operator.Staff
	}
	if g.requiresElevation(target, o) && g.elevatedRole > required {
		required = g.elevatedRole
	}
	return required
}

// Authorize looks up the operator's role and checks it against RequiredRole.
// Only a failed role lookup is returned as an error.
func (g *PermissionGate) Authorize(
	ctx context.Context,
	op operator.Operator,
	current, target order.Status,
	o *order.Order,
) (Decision, error) {
	if err := op.Validate(); err != nil {
		return Decision{}, err
	}

	required := g.RequiredRole(current, target, o)

	role, err := g.roles.RoleOf(ctx, op)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return Decision{
			Allowed:      false,
			Reason:       fmt.Sprintf("operator %s is not known", op),
			RequiredRole: required,
		}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("resolve role of operator %s: %w", op, err)
	}

	decision := Decision{Role: role, RequiredRole: required}
	if role.Satisfies(required) {
		decision.Allowed = true
		return decision, nil
	}

	if g.requiresElevation(target, o) && !role.Satisfies(g.elevatedRole) {
		decision.Reason = fmt.Sprintf(
			"cancelling an order of amount %s above %s requires role %s, operator has %s",
			o.Amount(), g.threshold, g.elevatedRole, role,
		)
		return decision, nil
	}

	decision.Reason = fmt.Sprintf("%s -> %s requires role %s, operator has %s", current, target, required, role)
	return decision, nil
}

func (g *PermissionGate) requiresElevation(target order.Status, o *order.Order) bool {
	return target == order.Cancelled && o != nil && o.Amount().GreaterThan(g.threshold)
}
