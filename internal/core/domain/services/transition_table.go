package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
)

var ErrTransitionTableIsInvalid = errors.New("transition table is invalid")

// TransitionEdge is an allowed (From, To) pair. A nil Precondition always holds.
type TransitionEdge struct {
	From         order.Status
	To           order.Status
	Precondition *Precondition
	RequiredRole operator.Role
}

// TransitionTable is the directed graph of allowed status changes. It is
// immutable after construction and safe for concurrent use.
type TransitionTable struct {
	edges       map[order.Status]map[order.Status]TransitionEdge
	cancelGrace time.Duration
}

// NewTransitionTable builds the table from policy edges. Every problem found
// is reported, not only the first one.
func NewTransitionTable(policy Policy) (*TransitionTable, error) {
	t := &TransitionTable{
		edges:       make(map[order.Status]map[order.Status]TransitionEdge),
		cancelGrace: policy.CancelGracePeriod,
	}

	var errList []error
	for i, e := range policy.Edges {
		edge, err := buildEdge(e)
		if err != nil {
			errList = append(errList, fmt.Errorf("edge %d (%s -> %s): %w", i, e.From, e.To, err))
			continue
		}

		targets, ok := t.edges[edge.From]
		if !ok {
			targets = make(map[order.Status]TransitionEdge)
			t.edges[edge.From] = targets
		}
		if _, dup := targets[edge.To]; dup {
			errList = append(errList, fmt.Errorf("edge %d (%s -> %s): duplicate edge", i, e.From, e.To))
			continue
		}
		targets[edge.To] = edge
	}

	if len(errList) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrTransitionTableIsInvalid, errors.Join(errList...))
	}
	return t, nil
}

func buildEdge(e EdgePolicy) (TransitionEdge, error) {
	if err := errors.Join(e.From.Validate(), e.To.Validate()); err != nil {
		return TransitionEdge{}, err
	}
	if e.From == order.Completed || e.From == order.Cancelled {
		return TransitionEdge{}, fmt.Errorf("%s is terminal and cannot have outgoing edges", e.From)
	}

	role := e.requiredRole()
	if err := role.Validate(); err != nil {
		return TransitionEdge{}, err
	}

	edge := TransitionEdge{From: e.From, To: e.To, RequiredRole: role}
	if e.Precondition != "" {
		p, err := CompilePrecondition(e.Precondition, e.Reason)
		if err != nil {
			return TransitionEdge{}, err
		}
		edge.Precondition = p
	}
	return edge, nil
}

// AllowedTargets returns the targets reachable from from in lifecycle order.
// The slice is freshly allocated on every call.
func (t *TransitionTable) AllowedTargets(from order.Status) []order.Status {
	targets := make([]order.Status, 0, len(t.edges[from]))
	for to := range t.edges[from] {
		targets = append(targets, to)
	}
	slices.Sort(targets)
	return targets
}

func (t *TransitionTable) Edge(from, to order.Status) (TransitionEdge, bool) {
	edge, ok := t.edges[from][to]
	return edge, ok
}

// IsTerminal reports whether status is valid and has no outgoing edges.
// Completed and Cancelled are always terminal.
func (t *TransitionTable) IsTerminal(status order.Status) bool {
	return status.IsValid() && len(t.edges[status]) == 0
}

// Edges lists every edge ordered by (From, To).
func (t *TransitionTable) Edges() []TransitionEdge {
	var edges []TransitionEdge
	for _, from := range order.Statuses() {
		for _, to := range t.AllowedTargets(from) {
			edges = append(edges, t.edges[from][to])
		}
	}
	return edges
}

// CancelGracePeriod is the value bound to cancel_grace in preconditions.
func (t *TransitionTable) CancelGracePeriod() time.Duration {
	return t.cancelGrace
}
