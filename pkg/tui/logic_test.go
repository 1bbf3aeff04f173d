package tui

import (
	"testing"

	"blinkwallet/pkg/config"
	"blinkwallet/pkg/flow"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/registry"
	"blinkwallet/pkg/store"
	"blinkwallet/pkg/watcher"

	"github.com/stretchr/testify/assert"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	st := store.New()
	st.SetRates(map[string]float64{"BTC": 50000, "USDT": 1}, nil)
	st.SetBalances(map[string]float64{"BTC": 0.5, "USDT": 100})
	reg := registry.New(config.DefaultCurrencies(), st)
	w := watcher.NewWatcher(st, nil, 0)
	nav := overlay.NewController()
	settings := config.Settings{FiatDecimals: 2, RefreshSeconds: 30}
	return initialModel(w, config.DefaultCurrencies(), settings, reg, st, nav, nil)
}

func TestTotalPortfolioValue(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 25100.0, m.totalPortfolioValue())
}

func TestAssetRowsOrderedByPriority(t *testing.T) {
	m := newTestModel(t)
	rows := m.assetRows()
	assert.Equal(t, []string{"USDT", "BTC"}, rows)
}

func TestCycleCurrency(t *testing.T) {
	m := newTestModel(t)
	f := m.flows[flow.KindWithdraw]
	f.Open()
	m.active = f

	assert.Equal(t, "USDT", f.Currency())
	m.cycleCurrency(1)
	assert.Equal(t, "BTC", f.Currency())
	m.cycleCurrency(1)
	assert.Equal(t, "USDT", f.Currency())
	m.cycleCurrency(-1)
	assert.Equal(t, "BTC", f.Currency())
}
