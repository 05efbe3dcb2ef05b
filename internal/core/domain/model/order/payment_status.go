package order

import (
	"fmt"
	"strings"

	"orderlifecycle/internal/pkg/errs"
)

// PaymentStatus is the settlement state of an order. It is owned by the
// payment side of the back-office; the lifecycle only reads it.
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	Unpaid
	Partial
	Paid
	Refunded
)

var paymentStatusNames = map[PaymentStatus]string{
	Unpaid:   "Unpaid",
	Partial:  "Partial",
	Paid:     "Paid",
	Refunded: "Refunded",
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for status, name := range paymentStatusNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause(
		"payment status is invalid",
		fmt.Errorf("%q is not a valid payment status", s),
	)
}

func (p PaymentStatus) Validate() error {
	if _, ok := paymentStatusNames[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment status is invalid",
			fmt.Errorf("%d is not a valid payment status", p),
		)
	}
	return nil
}

func (p PaymentStatus) String() string {
	if name, ok := paymentStatusNames[p]; ok {
		return name
	}
	return "Unknown"
}

func (p PaymentStatus) MarshalText() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return []byte(p.String()), nil
}

func (p *PaymentStatus) UnmarshalText(text []byte) error {
	parsed, err := ParsePaymentStatus(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
