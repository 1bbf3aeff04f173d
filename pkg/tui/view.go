package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"blinkwallet/pkg/flow"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/utils"
)

func (m model) View() string {
	switch m.nav.State() {
	case overlay.AuthRequired:
		return m.viewAuth()
	case overlay.PanelOpen:
		if m.nav.Panel() == overlay.PanelSuccess {
			return m.viewSuccess()
		}
		return m.viewFlow()
	}

	switch m.nav.ActiveTab() {
	case overlay.TabHistory:
		return m.viewHistory()
	case overlay.TabSettings:
		return m.viewSettings()
	}
	return m.viewAssets()
}

func (m model) viewTabs() string {
	render := func(tab overlay.Tab, label string) string {
		if m.nav.ActiveTab() == tab {
			return activeTabStyle.Render(label)
		}
		return tabStyle.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		render(overlay.TabAssets, "1 Assets"),
		render(overlay.TabHistory, "2 History"),
		render(overlay.TabSettings, "3 Settings"),
	)
}

func (m model) viewHeader() string {
	title := "BlinkWallet"
	if tag := m.st.Username(); tag != "" {
		title = fmt.Sprintf("BlinkWallet - @%s", tag)
	}
	header := titleStyle.Render(title)

	spinnerView := ""
	if m.loading {
		spinnerView = m.spinner.View() + " "
	}
	status := fmt.Sprintf("%sLast updated: %s", spinnerView, m.lastUpdate.Format("15:04:05"))
	if m.lastUpdate.IsZero() {
		status = spinnerView + "Fetching rates..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewTabs(), subtleStyle.Render(status))
}

func (m model) viewAssets() string {
	rows := m.assetRows()
	balances := m.st.Balances()
	rates := m.st.Rates()
	roi := m.st.ROI()

	total := fmt.Sprintf("Total: $%s", utils.FormatFloat(m.totalPortfolioValue(), m.settings.FiatDecimals))

	var lines []string
	for i, code := range rows {
		dec := 2
		if d, ok := m.reg.DecimalsOf(code); ok {
			dec = d
		}
		bal := balances[code]
		balStr := utils.FormatAmount(bal, dec)

		valStr := ""
		if rate, ok := rates[code]; ok {
			valStr = fmt.Sprintf("($%s)", utils.FormatFloat(bal*rate, m.settings.FiatDecimals))
		}

		roiStr := ""
		if pct, ok := roi[code]; ok {
			style := infoStyle
			sign := "+"
			if pct < 0 {
				style = errStyle
				sign = ""
			}
			roiStr = style.Render(fmt.Sprintf(" %s%.2f%%", sign, pct))
		}

		cursor := "  "
		line := fmt.Sprintf("%s%s %-6s %14s %s%s", cursor, m.reg.IconOf(code), code, balStr, valStr, roiStr)
		if i == m.assetIdx {
			line = selectedRowStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, subtleStyle.Render("No currencies configured."))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, total, "", strings.Join(lines, "\n"))

	if m.showGraph && len(m.portfolioHistory) > 1 {
		width := m.width - 12
		if width < 10 {
			width = 10
		}
		graph := asciigraph.Plot(m.portfolioHistory,
			asciigraph.Height(8),
			asciigraph.Width(width),
			asciigraph.Caption("Portfolio Value (USD)"),
		)
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", graph)
	}

	footer := subtleStyle.Render("d: deposit • w: withdraw • s: swap • t: transfer • L: sign in • p: graph • q: quit")
	if m.statusMessage != "" {
		footer = infoStyle.Render(m.statusMessage)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), "", boxStyle.Render(body), footer)
}

func (m model) viewHistory() string {
	entries := m.st.History()
	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s  %s", subtleStyle.Render(e.Time.Format("Jan 02 15:04")), e.Text))
	}
	if len(lines) == 0 {
		lines = append(lines, subtleStyle.Render("No transactions yet."))
	}
	footer := subtleStyle.Render("1/2/3: tabs • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), "", boxStyle.Render(strings.Join(lines, "\n")), footer)
}

func (m model) viewSettings() string {
	ratesURL := m.settings.RatesURL
	if ratesURL == "" {
		ratesURL = m.settings.APIBase + "/rates"
	}
	user := "not signed in"
	if id, tag, ok := m.st.User(); ok {
		user = fmt.Sprintf("@%s (id %d)", tag, id)
	}
	lines := []string{
		fmt.Sprintf("%-16s %s", "Backend", m.settings.APIBase),
		fmt.Sprintf("%-16s %s", "Rates feed", ratesURL),
		fmt.Sprintf("%-16s %ds", "Refresh", m.settings.RefreshSeconds),
		fmt.Sprintf("%-16s %s", "Account", user),
		fmt.Sprintf("%-16s %d configured", "Currencies", len(m.currencies)),
		fmt.Sprintf("%-16s %s", "Version", Version),
	}
	footer := subtleStyle.Render("L: sign in • c: copy tag • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), "", boxStyle.Render(strings.Join(lines, "\n")), footer)
}

func flowTitle(k flow.Kind) string {
	switch k {
	case flow.KindDeposit:
		return "Deposit"
	case flow.KindWithdraw:
		return "Withdraw"
	case flow.KindSwap:
		return "Swap"
	default:
		return "Transfer"
	}
}

func (m model) viewFlow() string {
	f := m.active
	if f == nil {
		return ""
	}

	header := titleStyle.Render(flowTitle(f.Kind()))

	if f.Disabled() {
		body := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"No assets available.",
			errStyle.Render(f.ErrMsg()),
			"",
			subtleStyle.Render("esc: back"),
		)
		return m.placeBox(body)
	}

	var rows []string
	rows = append(rows, header, "")

	rows = append(rows, m.currencyLine("Currency", f.Currency(), !m.toAmountInput.Focused()))
	if min, ok := m.reg.MinOf(f.Currency()); ok {
		if max, ok2 := m.reg.MaxOf(f.Currency()); ok2 {
			rows = append(rows, subtleStyle.Render(fmt.Sprintf("min %s, max %s",
				utils.FormatAmountTrim(min, 8), utils.FormatAmountTrim(max, 8))))
		}
	}
	rows = append(rows, m.amountInput.View())

	if f.Kind() == flow.KindSwap {
		rows = append(rows, "")
		rows = append(rows, m.currencyLine("Receive", f.ToCurrency(), m.toAmountInput.Focused()))
		rows = append(rows, m.toAmountInput.View())
	}

	if f.Kind() == flow.KindTransfer {
		rows = append(rows, "")
		rows = append(rows, "Recipient")
		rows = append(rows, m.tagInput.View())
	}

	rows = append(rows, "")
	if f.ErrMsg() != "" {
		rows = append(rows, errStyle.Render(f.ErrMsg()))
	} else if f.CanConfirm() {
		rows = append(rows, infoStyle.Render("Ready to confirm"))
	} else {
		rows = append(rows, subtleStyle.Render("Enter an amount"))
	}

	keys := "enter: confirm • up/down: currency • ctrl+x: max • esc: back"
	if f.Kind() == flow.KindSwap || f.Kind() == flow.KindTransfer {
		keys = "tab: switch field • " + keys
	}
	rows = append(rows, "", subtleStyle.Render(keys))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if m.nav.PreviewVisible() {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", m.viewBalancesPreview())
	}
	return m.placeBox(content)
}

func (m model) currencyLine(label, code string, active bool) string {
	marker := fmt.Sprintf("%s %s", m.reg.IconOf(code), code)
	if active {
		marker = selectedRowStyle.Render("< " + marker + " >")
	}
	return fmt.Sprintf("%-10s %s", label, marker)
}

// viewBalancesPreview lists the spendable balances under a panel, the way
// the withdraw and swap forms show what the user has to work with.
func (m model) viewBalancesPreview() string {
	codes := m.reg.AvailableBalances()
	if len(codes) == 0 {
		return subtleStyle.Render("No balances.")
	}
	var lines []string
	lines = append(lines, subtleStyle.Render("Your balances"))
	for _, code := range codes {
		dec := 2
		if d, ok := m.reg.DecimalsOf(code); ok {
			dec = d
		}
		lines = append(lines, fmt.Sprintf("  %-6s %s", code, utils.FormatAmount(m.st.Balance(code), dec)))
	}
	return strings.Join(lines, "\n")
}

func (m model) viewSuccess() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		infoStyle.Render("Success"),
		"",
		m.successSummary,
		"",
		subtleStyle.Render("enter: done"),
	)
	return m.placeBox(body)
}

func (m model) viewAuth() string {
	title := "Sign In"
	hint := "ctrl+r: create account instead"
	if m.authRegister {
		title = "Create Account"
		hint = "ctrl+r: sign in instead"
	}

	var status string
	switch {
	case m.authBusy:
		status = subtleStyle.Render("Contacting backend...")
	case m.authErr != "":
		status = errStyle.Render(m.authErr)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		m.userInput.View(),
		m.passInput.View(),
		"",
		status,
		"",
		subtleStyle.Render("tab: next field • enter: submit • "+hint+" • esc: cancel"),
	)
	return m.placeBox(body)
}

func (m model) placeBox(content string) string {
	if m.width == 0 || m.height == 0 {
		return boxStyle.Render(content)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}
