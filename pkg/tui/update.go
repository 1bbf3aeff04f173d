package tui

import (
	"fmt"
	"strings"
	"time"

	"blinkwallet/pkg/flow"
	"blinkwallet/pkg/models"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/watcher"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const portfolioHistoryCap = 288

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case watcher.Event:
		cmds = append(cmds, listenForWatcher(m.sub))

		switch msg.Type {
		case watcher.EventRatesUpdated:
			if data, ok := msg.Data.(models.RatesData); ok && data.Err == nil {
				m.loading = false
				m.lastUpdate = time.Now()
				m.portfolioHistory = append(m.portfolioHistory, m.totalPortfolioValue())
				if len(m.portfolioHistory) > portfolioHistoryCap {
					m.portfolioHistory = m.portfolioHistory[len(m.portfolioHistory)-portfolioHistoryCap:]
				}
			}
		case watcher.EventBalancesLoaded:
			if data, ok := msg.Data.(models.BalancesData); ok {
				if data.Err != nil {
					m.statusMessage = "Could not load balances, using local state"
					cmds = append(cmds, clearStatusAfter(2*time.Second))
				} else {
					m.loading = false
					m.lastUpdate = time.Now()
				}
			}
		case watcher.EventSyncResult:
			if res, ok := msg.Data.(models.SyncResult); ok && res.Err != nil {
				if res.Op == "transfer" {
					m.statusMessage = "Transfer could not be confirmed by the backend"
				} else {
					m.statusMessage = "Balance sync failed, will retry on next change"
				}
				cmds = append(cmds, clearStatusAfter(3*time.Second))
			}
		}

	case authResultMsg:
		m.authBusy = false
		if msg.err != nil {
			m.authErr = "Sign in failed, check credentials"
			break
		}
		m.st.SetUser(msg.user.ID, msg.user.Tag)
		m.authErr = ""
		m.userInput.SetValue("")
		m.passInput.SetValue("")
		m.nav.Close()
		m.watcher.LoadBalances()
		m.statusMessage = fmt.Sprintf("Signed in as @%s", msg.user.Tag)
		cmds = append(cmds, clearStatusAfter(2*time.Second))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case clearStatusMsg:
		m.statusMessage = ""
	}

	if m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.nav.State() {
	case overlay.AuthRequired:
		return m.handleAuthKey(msg)
	case overlay.PanelOpen:
		if m.nav.Panel() == overlay.PanelSuccess {
			return m.handleSuccessKey(msg)
		}
		return m.handleFlowKey(msg)
	}
	return m.handleTabKey(msg)
}

func (m model) handleTabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "1", "a":
		m.nav.SwitchTab(overlay.TabAssets)
	case "2", "h":
		m.nav.SwitchTab(overlay.TabHistory)
	case "3", "g":
		m.nav.SwitchTab(overlay.TabSettings)
	case "left":
		m.switchTabBy(-1)
	case "right":
		m.switchTabBy(1)

	case "up", "k":
		if m.nav.ActiveTab() == overlay.TabAssets && m.assetIdx > 0 {
			m.assetIdx--
		}
	case "down", "j":
		if m.nav.ActiveTab() == overlay.TabAssets {
			m.assetIdx++
			m.clampAssetIdx()
		}

	case "d":
		return m.openFlow(flow.KindDeposit)
	case "w":
		return m.openFlow(flow.KindWithdraw)
	case "s":
		return m.openFlow(flow.KindSwap)
	case "t":
		return m.openFlow(flow.KindTransfer)

	case "L":
		m.nav.RequireAuth()
		m.authField = 0
		m.authErr = ""
		m.userInput.Focus()
		m.passInput.Blur()
		return m, nil

	case "p":
		if m.nav.ActiveTab() == overlay.TabAssets {
			m.showGraph = !m.showGraph
		}

	case "c":
		if tag := m.st.Username(); tag != "" {
			if err := clipboard.WriteAll("@" + tag); err != nil {
				m.statusMessage = "Failed to copy to clipboard"
			} else {
				m.statusMessage = "Tag copied to clipboard!"
			}
			cmds = append(cmds, clearStatusAfter(2*time.Second))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) switchTabBy(dir int) {
	order := []overlay.Tab{overlay.TabAssets, overlay.TabHistory, overlay.TabSettings}
	idx := 0
	for i, t := range order {
		if t == m.nav.ActiveTab() {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(order)) % len(order)
	m.nav.SwitchTab(order[idx])
}

func (m model) openFlow(kind flow.Kind) (tea.Model, tea.Cmd) {
	f := m.flows[kind]
	f.Open()
	m.active = f
	m.successSummary = ""

	m.amountInput.SetValue("")
	m.toAmountInput.SetValue("")
	m.tagInput.SetValue("")
	m.amountInput.Focus()
	m.toAmountInput.Blur()
	m.tagInput.Blur()
	return m, textinput.Blink
}

func (m model) handleSuccessKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "q":
		m.nav.Close()
		m.active = nil
		m.successSummary = ""
	}
	return m, nil
}

func (m model) handleFlowKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.active
	if f == nil {
		m.nav.Close()
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.nav.Close()
		m.active = nil
		return m, nil

	case "enter":
		receipt, err := f.Confirm()
		if err != nil {
			return m, nil
		}
		m.successSummary = receipt.Summary
		return m, nil

	case "tab":
		switch f.Kind() {
		case flow.KindSwap:
			if m.amountInput.Focused() {
				m.amountInput.Blur()
				m.toAmountInput.Focus()
				m.toAmountInput.SetValue(f.ToAmountText())
				m.toAmountInput.CursorEnd()
			} else {
				m.toAmountInput.Blur()
				m.amountInput.Focus()
				m.amountInput.SetValue(f.AmountText())
				m.amountInput.CursorEnd()
			}
		case flow.KindTransfer:
			if m.amountInput.Focused() {
				m.amountInput.Blur()
				m.tagInput.Focus()
			} else {
				m.tagInput.Blur()
				m.amountInput.Focus()
			}
		}
		return m, nil

	case "up":
		if m.toAmountInput.Focused() {
			m.cycleToCurrency(-1)
		} else {
			m.cycleCurrency(-1)
		}
		return m, nil
	case "down":
		if m.toAmountInput.Focused() {
			m.cycleToCurrency(1)
		} else {
			m.cycleCurrency(1)
		}
		return m, nil

	case "ctrl+x":
		f.UseMax()
		m.amountInput.SetValue(f.AmountText())
		m.amountInput.CursorEnd()
		m.toAmountInput.SetValue(f.ToAmountText())
		return m, nil
	}

	// Route the keystroke into the focused input, then let the flow
	// sanitize the result and push the cleaned text and caret back.
	var cmd tea.Cmd
	switch {
	case m.tagInput.Focused():
		m.tagInput, cmd = m.tagInput.Update(msg)
		f.SetTag(m.tagInput.Value())

	case m.toAmountInput.Focused():
		m.toAmountInput, cmd = m.toAmountInput.Update(msg)
		text, caret := f.SetToAmount(m.toAmountInput.Value(), m.toAmountInput.Position())
		m.toAmountInput.SetValue(text)
		m.toAmountInput.SetCursor(caret)
		m.amountInput.SetValue(f.AmountText())

	default:
		m.amountInput, cmd = m.amountInput.Update(msg)
		text, caret := f.SetAmount(m.amountInput.Value(), m.amountInput.Position())
		m.amountInput.SetValue(text)
		m.amountInput.SetCursor(caret)
		m.toAmountInput.SetValue(f.ToAmountText())
	}
	return m, cmd
}

func (m model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nav.Close()
		m.userInput.Blur()
		m.passInput.Blur()
		return m, nil

	case "tab", "shift+tab":
		if m.authField == 0 {
			m.authField = 1
			m.userInput.Blur()
			m.passInput.Focus()
		} else {
			m.authField = 0
			m.passInput.Blur()
			m.userInput.Focus()
		}
		return m, nil

	case "ctrl+r":
		m.authRegister = !m.authRegister
		return m, nil

	case "enter":
		if m.authBusy {
			return m, nil
		}
		username := strings.TrimSpace(m.userInput.Value())
		password := m.passInput.Value()
		if username == "" || password == "" {
			m.authErr = "Username and password required"
			return m, nil
		}
		m.authBusy = true
		m.authErr = ""
		return m, m.loginCmd(username, password, m.authRegister)
	}

	var cmd tea.Cmd
	if m.authField == 0 {
		m.userInput, cmd = m.userInput.Update(msg)
	} else {
		m.passInput, cmd = m.passInput.Update(msg)
	}
	return m, cmd
}
