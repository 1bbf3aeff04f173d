package tui

import (
	"blinkwallet/pkg/models"
	"blinkwallet/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func (m model) totalPortfolioValue() float64 {
	total := 0.0
	balances := m.st.Balances()
	rates := m.st.Rates()
	for code, bal := range balances {
		if rate, ok := rates[code]; ok {
			total += bal * rate
		}
	}
	return total
}

// assetRows returns the priority-ordered list of currencies to render on
// the assets tab: every rated currency, including zero balances.
func (m model) assetRows() []string {
	return m.reg.Rated()
}

func (m *model) clampAssetIdx() {
	rows := m.assetRows()
	if m.assetIdx >= len(rows) {
		m.assetIdx = len(rows) - 1
	}
	if m.assetIdx < 0 {
		m.assetIdx = 0
	}
}

// cycleCurrency moves the active flow's source currency selection by dir
// within its choice list.
func (m *model) cycleCurrency(dir int) {
	if m.active == nil || m.active.Disabled() {
		return
	}
	choices := m.active.Choices()
	if len(choices) < 2 {
		return
	}
	idx := 0
	for i, c := range choices {
		if c == m.active.Currency() {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(choices)) % len(choices)
	m.active.SelectCurrency(choices[idx])
	m.amountInput.SetValue("")
	m.toAmountInput.SetValue("")
}

func (m *model) cycleToCurrency(dir int) {
	if m.active == nil || m.active.Disabled() {
		return
	}
	choices := m.active.ToChoices()
	if len(choices) < 2 {
		return
	}
	idx := 0
	for i, c := range choices {
		if c == m.active.ToCurrency() {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(choices)) % len(choices)
	m.active.SelectToCurrency(choices[idx])
	m.amountInput.SetValue("")
	m.toAmountInput.SetValue("")
}

func (m model) loginCmd(username, password string, register bool) tea.Cmd {
	return func() tea.Msg {
		creds := models.Credentials{Username: username, Password: password}
		var user models.SessionUser
		var err error
		if register {
			user, err = m.client.Register(creds)
		} else {
			user, err = m.client.Login(creds)
		}
		return authResultMsg{user: user, err: err}
	}
}

func listenForWatcher(sub watcher.Subscriber) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}
