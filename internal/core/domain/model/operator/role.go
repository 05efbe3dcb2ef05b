package operator

import (
	"fmt"
	"strings"

	"orderlifecycle/internal/pkg/errs"
)

// Role is ranked: every role may do what the roles below it may do.
type Role int

const (
	RoleUnknown Role = iota
	Staff
	Manager
	Admin
)

var roleNames = map[Role]string{
	Staff:   "staff",
	Manager: "manager",
	Admin:   "admin",
}

func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause(
		"role is invalid",
		fmt.Errorf("%q is not a valid role", s),
	)
}

func (r Role) Validate() error {
	if _, ok := roleNames[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role is invalid", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// Satisfies reports whether r ranks at or above required.
func (r Role) Satisfies(required Role) bool {
	return r.Validate() == nil && r >= required
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) MarshalText() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
