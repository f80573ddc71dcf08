package domain

import (
	"errors"
	"fmt"
	"math"
)

// Money is an amount in minor currency units (cents).
type Money int64

var ErrMoneyOverflow = errors.New("money overflow")

// Times multiplies by a non-negative quantity.
func (m Money) Times(qty int) (Money, error) {
	if qty < 0 || m < 0 {
		return 0, fmt.Errorf("%w: negative operand", ErrInvalidArgument)
	}
	if qty != 0 && int64(m) > math.MaxInt64/int64(qty) {
		return 0, ErrMoneyOverflow
	}
	return m * Money(qty), nil
}

// Plus adds two non-negative amounts.
func (m Money) Plus(o Money) (Money, error) {
	if o > 0 && m > Money(math.MaxInt64)-o {
		return 0, ErrMoneyOverflow
	}
	return m + o, nil
}

// String renders the amount with two decimals, e.g. 1999 -> "19.99".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
