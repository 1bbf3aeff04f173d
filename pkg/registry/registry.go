// Package registry is the read-only view over currency metadata, live rates
// and balances that the transaction flows query. It never mutates anything.
package registry

import (
	"sort"

	"blinkwallet/pkg/config"
)

// StateReader is the slice of the store the registry needs.
type StateReader interface {
	Balances() map[string]float64
	Rates() map[string]float64
}

type Registry struct {
	specs map[string]config.CurrencyConfig
	state StateReader
}

func New(currencies []config.CurrencyConfig, state StateReader) *Registry {
	specs := make(map[string]config.CurrencyConfig, len(currencies))
	for _, c := range currencies {
		specs[c.Symbol] = c
	}
	return &Registry{specs: specs, state: state}
}

func (r *Registry) DecimalsOf(code string) (int, bool) {
	c, ok := r.specs[code]
	return c.Decimals, ok
}

func (r *Registry) MinOf(code string) (float64, bool) {
	c, ok := r.specs[code]
	if !ok {
		return 0, false
	}
	return c.MinAmount, true
}

func (r *Registry) MaxOf(code string) (float64, bool) {
	c, ok := r.specs[code]
	if !ok {
		return 0, false
	}
	return c.MaxAmount, true
}

func (r *Registry) IconOf(code string) string {
	return r.specs[code].Icon
}

// RateOf returns the live USD rate. Absence means the currency cannot be
// priced or swapped, even when a balance exists for it.
func (r *Registry) RateOf(code string) (float64, bool) {
	rate, ok := r.state.Rates()[code]
	return rate, ok
}

// Rates returns the live rate table.
func (r *Registry) Rates() map[string]float64 {
	return r.state.Rates()
}

// SortByPriority orders codes with known display priority first (ascending),
// then the rest alphabetically.
func (r *Registry) SortByPriority(codes []string) []string {
	out := make([]string, len(codes))
	copy(out, codes)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iOK := r.priorityOf(out[i])
		pj, jOK := r.priorityOf(out[j])
		if !iOK && !jOK {
			return out[i] < out[j]
		}
		if !iOK {
			return false
		}
		if !jOK {
			return true
		}
		if pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}

func (r *Registry) priorityOf(code string) (int, bool) {
	c, ok := r.specs[code]
	if !ok || c.Priority == config.NoPriority {
		return 0, false
	}
	return c.Priority, true
}

// Rated returns every currency in the rate table, priority-sorted.
func (r *Registry) Rated() []string {
	rates := r.state.Rates()
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	return r.SortByPriority(codes)
}

// AvailableBalances returns the currencies with a positive balance,
// priority-sorted. This drives the withdraw and swap-from choices.
func (r *Registry) AvailableBalances() []string {
	balances := r.state.Balances()
	var codes []string
	for code, amount := range balances {
		if amount > 0 {
			codes = append(codes, code)
		}
	}
	return r.SortByPriority(codes)
}
