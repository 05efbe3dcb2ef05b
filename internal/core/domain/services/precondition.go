package services

import (
	"errors"
	"fmt"
	"time"

	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"

	"github.com/google/cel-go/cel"
)

// ErrPreconditionIsInvalid is returned for expressions that do not compile to
// a boolean.
var ErrPreconditionIsInvalid = errors.New("precondition is invalid")

// Precondition is a compiled CEL guard of a transition edge. It is a pure
// function of the order, the evaluation time and the policy grace period.
//
// Variables available to expressions:
//
//	order.status             string   ("Pending", ...)
//	order.payment_status     string   ("Unpaid", "Partial", "Paid", "Refunded")
//	order.amount             double
//	order.version            int
//	order.status_changed_at  timestamp
//	now                      timestamp
//	cancel_grace             duration
type Precondition struct {
	expression string
	reason     string
	program    cel.Program
}

var preconditionEnv = mustPreconditionEnv()

func mustPreconditionEnv() *cel.Env {
	env, err := cel.NewEnv(
		cel.Variable("order", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("now", cel.TimestampType),
		cel.Variable("cancel_grace", cel.DurationType),
	)
	if err != nil {
		panic(fmt.Sprintf("precondition environment: %v", err))
	}
	return env
}

// CompilePrecondition parses and type-checks expression. reason is what the
// validator reports when the expression yields false.
func CompilePrecondition(expression, reason string) (*Precondition, error) {
	ast, issues := preconditionEnv.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrPreconditionIsInvalid, expression, issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: %q yields %s, not bool", ErrPreconditionIsInvalid, expression, out)
	}

	program, err := preconditionEnv.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrPreconditionIsInvalid, expression, err)
	}

	if reason == "" {
		reason = "precondition not met: " + expression
	}

	return &Precondition{
		expression: expression,
		reason:     reason,
		program:    program,
	}, nil
}

func (p *Precondition) Expression() string {
	return p.expression
}

func (p *Precondition) Reason() string {
	return p.reason
}

// Evaluate reports whether o satisfies the precondition at now.
func (p *Precondition) Evaluate(o *order.Order, now time.Time, cancelGrace time.Duration) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	out, _, err := p.program.Eval(map[string]any{
		"order": map[string]any{
			"status":            o.Status().String(),
			"payment_status":    o.PaymentStatus().String(),
			"amount":            o.Amount().InexactFloat64(),
			"version":           o.Version(),
			"status_changed_at": o.StatusChangedAt(),
		},
		"now":          now.UTC(),
		"cancel_grace": cancelGrace,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.expression, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, errs.NewValueIsInvalidErrorWithCause(
			"precondition result",
			fmt.Errorf("%q yielded %v, not bool", p.expression, out.Value()),
		)
	}
	return result, nil
}
