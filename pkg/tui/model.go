package tui

import (
	"time"

	"blinkwallet/pkg/api"
	"blinkwallet/pkg/config"
	"blinkwallet/pkg/flow"
	"blinkwallet/pkg/models"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/registry"
	"blinkwallet/pkg/store"
	"blinkwallet/pkg/watcher"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}
type authResultMsg struct {
	user models.SessionUser
	err  error
}

// --- Model ---

type model struct {
	currencies []config.CurrencyConfig
	settings   config.Settings
	reg        *registry.Registry
	st         *store.Store
	nav        *overlay.Controller
	flows      map[flow.Kind]*flow.Flow
	active     *flow.Flow
	client     *api.Client
	watcher    *watcher.Watcher
	sub        watcher.Subscriber

	amountInput   textinput.Model
	toAmountInput textinput.Model
	tagInput      textinput.Model
	userInput     textinput.Model
	passInput     textinput.Model
	authField     int
	authRegister  bool
	authBusy      bool
	authErr       string

	width            int
	height           int
	loading          bool
	lastUpdate       time.Time
	spinner          spinner.Model
	statusMessage    string
	successSummary   string
	assetIdx         int
	showGraph        bool
	portfolioHistory []float64
}

func initialModel(w *watcher.Watcher, currencies []config.CurrencyConfig, settings config.Settings, reg *registry.Registry, st *store.Store, nav *overlay.Controller, client *api.Client) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	amountTi := textinput.New()
	amountTi.Placeholder = "0.00"
	amountTi.Width = 24
	amountTi.Prompt = "> "

	toAmountTi := textinput.New()
	toAmountTi.Placeholder = "0.00"
	toAmountTi.Width = 24
	toAmountTi.Prompt = "> "

	tagTi := textinput.New()
	tagTi.Placeholder = "@recipient"
	tagTi.Width = 24
	tagTi.Prompt = "> "

	userTi := textinput.New()
	userTi.Placeholder = "username"
	userTi.Width = 30
	userTi.Prompt = "> "

	passTi := textinput.New()
	passTi.Placeholder = "password"
	passTi.Width = 30
	passTi.Prompt = "> "
	passTi.EchoMode = textinput.EchoPassword

	flows := map[flow.Kind]*flow.Flow{
		flow.KindDeposit:  flow.New(flow.KindDeposit, reg, st, nav, w),
		flow.KindWithdraw: flow.New(flow.KindWithdraw, reg, st, nav, w),
		flow.KindSwap:     flow.New(flow.KindSwap, reg, st, nav, w),
		flow.KindTransfer: flow.New(flow.KindTransfer, reg, st, nav, w),
	}

	return model{
		currencies:    currencies,
		settings:      settings,
		reg:           reg,
		st:            st,
		nav:           nav,
		flows:         flows,
		client:        client,
		watcher:       w,
		sub:           w.Subscribe(),
		amountInput:   amountTi,
		toAmountInput: toAmountTi,
		tagInput:      tagTi,
		userInput:     userTi,
		passInput:     passTi,
		loading:       true,
		spinner:       s,
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd

	// Subscribe to watcher events
	cmds = append(cmds, listenForWatcher(m.sub))
	cmds = append(cmds, m.spinner.Tick)
	cmds = append(cmds, textinput.Blink)
	return tea.Batch(cmds...)
}
