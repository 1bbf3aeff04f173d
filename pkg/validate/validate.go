// Package validate holds the pure amount-validation rules shared by every
// transaction form. It performs no I/O and touches no UI state.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reason identifies which check failed. The checks run in a fixed order and
// the first failure wins, so reasons are mutually exclusive.
type Reason int

const (
	ReasonInvalidAmount Reason = iota
	ReasonUnsupportedCurrency
	ReasonBelowMinimum
	ReasonAboveMaximum
	ReasonInsufficientBalance
)

// Error carries the failure reason and the user-facing message.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string { return e.Message }

// Limits exposes the per-currency transaction bounds.
type Limits interface {
	MinOf(code string) (float64, bool)
	MaxOf(code string) (float64, bool)
}

// Context identifies which balance constraint applies. Deposits have none;
// withdrawals and swap sources are capped by the current balance.
type Context struct {
	Balance        float64
	LimitToBalance bool
}

// Amount parses text and validates it against the currency's bounds and,
// when the context asks for it, the available balance. On success the parsed
// amount is returned; on failure the error is always a *Error.
func Amount(text, currency string, limits Limits, ctx Context) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, &Error{Reason: ReasonInvalidAmount, Message: "Invalid amount"}
	}

	min, okMin := limits.MinOf(currency)
	max, okMax := limits.MaxOf(currency)
	if !okMin || !okMax {
		return 0, &Error{Reason: ReasonUnsupportedCurrency, Message: "Unsupported currency"}
	}

	if amount < min {
		return 0, &Error{
			Reason:  ReasonBelowMinimum,
			Message: fmt.Sprintf("Minimum: %s %s", formatBound(min), currency),
		}
	}

	if amount > max {
		return 0, &Error{
			Reason:  ReasonAboveMaximum,
			Message: fmt.Sprintf("Maximum per transaction: %s %s", formatBound(max), currency),
		}
	}

	if ctx.LimitToBalance && amount > ctx.Balance {
		return 0, &Error{Reason: ReasonInsufficientBalance, Message: "Insufficient balance"}
	}

	return amount, nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
