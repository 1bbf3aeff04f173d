package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeLimits map[string][2]float64

func (f fakeLimits) MinOf(code string) (float64, bool) {
	l, ok := f[code]
	return l[0], ok
}

func (f fakeLimits) MaxOf(code string) (float64, bool) {
	l, ok := f[code]
	return l[1], ok
}

var limits = fakeLimits{
	"BTC":  {0.00006, 2.5},
	"USDT": {5.0, 250000},
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	vErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *validate.Error, got %T (%v)", err, err)
	}
	return vErr.Reason
}

func TestAmount_Valid(t *testing.T) {
	amount, err := Amount("0.1", "BTC", limits, Context{Balance: 1.0, LimitToBalance: true})
	assert.NoError(t, err)
	assert.Equal(t, 0.1, amount)

	// Deposits carry no balance ceiling.
	amount, err = Amount("2.5", "BTC", limits, Context{})
	assert.NoError(t, err)
	assert.Equal(t, 2.5, amount)
}

func TestAmount_Invalid(t *testing.T) {
	for _, text := range []string{"", ".", "abc", "0", "-1", "NaN", "Inf"} {
		_, err := Amount(text, "BTC", limits, Context{})
		assert.Error(t, err, "input %q", text)
		assert.Equal(t, ReasonInvalidAmount, reasonOf(t, err), "input %q", text)
	}
}

func TestAmount_UnsupportedCurrency(t *testing.T) {
	_, err := Amount("1", "DOGE", limits, Context{})
	assert.Equal(t, ReasonUnsupportedCurrency, reasonOf(t, err))
}

func TestAmount_Bounds(t *testing.T) {
	_, err := Amount("0.00001", "BTC", limits, Context{})
	assert.Equal(t, ReasonBelowMinimum, reasonOf(t, err))
	assert.EqualError(t, err, "Minimum: 0.00006 BTC")

	_, err = Amount("3", "BTC", limits, Context{})
	assert.Equal(t, ReasonAboveMaximum, reasonOf(t, err))
	assert.EqualError(t, err, "Maximum per transaction: 2.5 BTC")
}

func TestAmount_CheckOrder(t *testing.T) {
	// Above-maximum wins over insufficient-balance: bound checks run first.
	_, err := Amount("3", "BTC", limits, Context{Balance: 0.5, LimitToBalance: true})
	assert.Equal(t, ReasonAboveMaximum, reasonOf(t, err))

	// Within bounds but over balance.
	_, err = Amount("1", "BTC", limits, Context{Balance: 0.5, LimitToBalance: true})
	assert.Equal(t, ReasonInsufficientBalance, reasonOf(t, err))
	assert.EqualError(t, err, "Insufficient balance")

	// Same amount without the ceiling passes.
	_, err = Amount("1", "BTC", limits, Context{})
	assert.NoError(t, err)
}
