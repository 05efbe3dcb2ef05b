package operator

import (
	"errors"
	"strings"

	"orderlifecycle/internal/pkg/errs"
)

var ErrOperatorIsNotConstructed = errors.New("Operator must be created via NewOperator constructor")

const maxIDLength = 128

// Operator is an authenticated back-office identity. It carries no role:
// roles may change between requests and are looked up on every decision.
type Operator struct {
	id string

	isConstructed bool
}

func NewOperator(id string) (Operator, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Operator{}, errs.NewValueIsRequiredError("operator id")
	}
	if len(id) > maxIDLength {
		return Operator{}, errs.NewValueIsOutOfRangeError("operator id length", len(id), 1, maxIDLength)
	}
	return Operator{id: id, isConstructed: true}, nil
}

func (o Operator) ID() string {
	return o.id
}

func (o Operator) Validate() error {
	if !o.isConstructed {
		return ErrOperatorIsNotConstructed
	}
	return nil
}

func (o Operator) String() string {
	return o.id
}
