package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blinkwallet/pkg/config"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/registry"
	"blinkwallet/pkg/store"
)

type fakeSyncer struct {
	syncs     int
	transfers []string
}

func (s *fakeSyncer) SyncBalances() { s.syncs++ }
func (s *fakeSyncer) Transfer(toTag, symbol string, amount float64) {
	s.transfers = append(s.transfers, toTag)
}

func newFixture(t *testing.T, balances map[string]float64) (*store.Store, *registry.Registry, *overlay.Controller) {
	t.Helper()
	st := store.New()
	st.SetRates(map[string]float64{"BTC": 50000, "USDT": 1, "ETH": 2500}, nil)
	if balances != nil {
		st.SetBalances(balances)
	}
	reg := registry.New(config.DefaultCurrencies(), st)
	return st, reg, overlay.NewController()
}

func TestSwapScenario(t *testing.T) {
	st, reg, nav := newFixture(t, map[string]float64{"BTC": 1.0})
	sync := &fakeSyncer{}
	f := New(KindSwap, reg, st, nav, sync)

	f.Open()
	assert.Equal(t, []string{"BTC"}, f.Choices())
	assert.Equal(t, "BTC", f.Currency())
	assert.Equal(t, "USDT", f.ToCurrency())
	assert.Equal(t, overlay.PanelSwap, nav.Panel())
	assert.True(t, nav.PreviewVisible())

	text, caret := f.SetAmount("0.1", 3)
	assert.Equal(t, "0.1", text)
	assert.Equal(t, 3, caret)
	assert.Equal(t, "5000.00", f.ToAmountText())
	assert.True(t, f.CanConfirm())
	assert.Empty(t, f.ErrMsg())

	receipt, err := f.Confirm()
	assert.NoError(t, err)
	assert.Equal(t, "Swap 0.1 BTC to 5000.00 USDT", receipt.Summary)
	assert.Equal(t, 0.9, st.Balance("BTC"))
	assert.Equal(t, 5000.0, st.Balance("USDT"))
	assert.Equal(t, overlay.PanelSuccess, nav.Panel())
	assert.False(t, nav.BackVisible())
	assert.Equal(t, 1, sync.syncs)
}

func TestSwapEditDestination(t *testing.T) {
	st, reg, nav := newFixture(t, map[string]float64{"BTC": 1.0})
	f := New(KindSwap, reg, st, nav, nil)
	f.Open()

	text, _ := f.SetToAmount("5000", 4)
	assert.Equal(t, "5000", text)
	assert.Equal(t, FieldTo, f.ActiveField())
	assert.Equal(t, "0.100000", f.AmountText())
	assert.True(t, f.CanConfirm())
}

func TestSwapSameCurrencySelectionIgnored(t *testing.T) {
	st, reg, nav := newFixture(t, map[string]float64{"BTC": 1.0})
	f := New(KindSwap, reg, st, nav, nil)
	f.Open()

	f.SelectToCurrency("BTC")
	assert.Equal(t, "USDT", f.ToCurrency())
	assert.NotContains(t, f.ToChoices(), "BTC")
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	st, reg, nav := newFixture(t, map[string]float64{"BTC": 0.05})
	f := New(KindWithdraw, reg, st, nav, nil)
	f.Open()

	f.SetAmount("0.1", 3)
	assert.Equal(t, "Insufficient balance", f.ErrMsg())
	assert.False(t, f.CanConfirm())

	_, err := f.Confirm()
	assert.Error(t, err)
	assert.Equal(t, 0.05, st.Balance("BTC"))
	assert.Equal(t, overlay.PanelWithdraw, nav.Panel())
}

func TestWithdrawNoAssetsDisabled(t *testing.T) {
	st, reg, nav := newFixture(t, nil)
	f := New(KindWithdraw, reg, st, nav, nil)
	f.Open()

	assert.True(t, f.Disabled())
	assert.Empty(t, f.Choices())
	assert.Equal(t, "Insufficient balance", f.ErrMsg())
	assert.False(t, f.CanConfirm())

	_, err := f.Confirm()
	assert.Error(t, err)
}

func TestDepositMutatesAndRecords(t *testing.T) {
	st, reg, nav := newFixture(t, nil)
	sync := &fakeSyncer{}
	f := New(KindDeposit, reg, st, nav, sync)
	f.Open()

	assert.False(t, f.Disabled())
	assert.Equal(t, "USDT", f.Currency())
	assert.False(t, nav.PreviewVisible())

	f.SetAmount("100", 3)
	assert.True(t, f.CanConfirm())

	receipt, err := f.Confirm()
	assert.NoError(t, err)
	assert.Equal(t, "Deposit 100 USDT", receipt.Summary)
	assert.Equal(t, 100.0, st.Balance("USDT"))

	history := st.History()
	assert.Equal(t, 1, len(history))
	assert.Equal(t, "Deposit 100 USDT", history[0].Text)
	assert.Equal(t, 1, sync.syncs)
}

func TestDepositBelowMinimum(t *testing.T) {
	st, reg, nav := newFixture(t, nil)
	f := New(KindDeposit, reg, st, nav, nil)
	f.Open()

	f.SetAmount("1", 1)
	assert.Equal(t, "Minimum: 5 USDT", f.ErrMsg())
	assert.False(t, f.CanConfirm())
}

func TestCaretPreservedThroughSanitize(t *testing.T) {
	st, reg, nav := newFixture(t, nil)
	f := New(KindDeposit, reg, st, nav, nil)
	f.Open()

	text, caret := f.SetAmount("1.23456", 7)
	assert.Equal(t, "1.23", text)
	assert.Equal(t, 4, caret)
}

func TestSelectCurrencyResetsDraft(t *testing.T) {
	st, reg, nav := newFixture(t, map[string]float64{"BTC": 1.0, "ETH": 2.0})
	f := New(KindWithdraw, reg, st, nav, nil)
	f.Open()

	f.SetAmount("0.5", 3)
	assert.True(t, f.CanConfirm())

	f.SelectCurrency("ETH")
	assert.Equal(t, "ETH", f.Currency())
	assert.Empty(t, f.AmountText())
	assert.Empty(t, f.ErrMsg())
	assert.False(t, f.CanConfirm())
}

func TestUseMaxCapsAtTransactionMaximum(t *testing.T) {
	st, reg, nav := newFixture(t, map[string]float64{"BTC": 5.0})
	f := New(KindWithdraw, reg, st, nav, nil)
	f.Open()

	f.UseMax()
	assert.Equal(t, "2.500000", f.AmountText())
	assert.True(t, f.CanConfirm())
}

func TestTransferRequiresTag(t *testing.T) {
	st, reg, nav := newFixture(t, map[string]float64{"USDT": 50})
	sync := &fakeSyncer{}
	f := New(KindTransfer, reg, st, nav, sync)
	f.Open()

	f.SetAmount("10", 2)
	assert.False(t, f.CanConfirm())

	f.SetTag("@bob")
	assert.True(t, f.CanConfirm())

	receipt, err := f.Confirm()
	assert.NoError(t, err)
	assert.Equal(t, "Transfer 10 USDT to @bob", receipt.Summary)
	assert.Equal(t, 40.0, st.Balance("USDT"))
	assert.Equal(t, []string{"bob"}, sync.transfers)
	assert.Equal(t, 1, sync.syncs)
}
