package tui

import (
	"fmt"
	"os"

	"blinkwallet/pkg/api"
	"blinkwallet/pkg/config"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/registry"
	"blinkwallet/pkg/store"
	"blinkwallet/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func Start(w *watcher.Watcher, currencies []config.CurrencyConfig, settings config.Settings, reg *registry.Registry, st *store.Store, nav *overlay.Controller, client *api.Client, version string) {
	Version = version
	p := tea.NewProgram(
		initialModel(w, currencies, settings, reg, st, nav, client),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
