package order

import (
	"fmt"
	"strings"

	"orderlifecycle/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	Pending ──> Confirmed ──> Delivered ──> Completed
//	   │            │             │
//	   └────────────┴─────────────┴──────> Cancelled
//
// The edges above are the default policy; the authoritative edge set is the
// transition table built from configuration. Completed and Cancelled are
// always terminal.
type Status int

const (
	// Unknown is the zero value and never a valid order status.
	Unknown Status = iota
	Pending
	Confirmed
	Delivered
	Completed
	Cancelled
)

var statusNames = map[Status]string{
	Pending:   "Pending",
	Confirmed: "Confirmed",
	Delivered: "Delivered",
	Completed: "Completed",
	Cancelled: "Cancelled",
}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Confirmed, Delivered, Completed, Cancelled}
}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%q is not a valid status", s),
	)
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%d is not a valid status", s),
		)
	}
	return nil
}

func (s Status) IsValid() bool {
	return s.Validate() == nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
