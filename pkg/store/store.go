// Package store owns the process-wide wallet state: balances, rates, ROI,
// history and the session user. Every mutation funnels through a method
// here, so persistence and sync have a single seam.
package store

import (
	"sync"
	"time"

	"blinkwallet/pkg/logger"
	"blinkwallet/pkg/models"
)

// Store is the local mirror of backend truth. The backend stays
// authoritative; this only previews state the backend is expected to
// confirm.
type Store struct {
	mu       sync.RWMutex
	balances map[string]float64
	rates    map[string]float64
	roi      map[string]float64
	history  []models.HistoryEntry
	username string
	userID   int64
	loggedIn bool

	snap *Snapshot // nil when running without persistence
}

func New() *Store {
	return &Store{
		balances: make(map[string]float64),
		rates:    make(map[string]float64),
		roi:      make(map[string]float64),
	}
}

// AttachSnapshot wires persistence and loads the saved state. A missing or
// corrupted snapshot is treated as empty state, never a fatal error.
func (s *Store) AttachSnapshot(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap

	balances, history, username, err := snap.Load()
	if err != nil {
		logger.Warn("snapshot load failed, starting empty: %v", err)
		return
	}
	if balances != nil {
		s.balances = balances
	}
	s.history = history
	if username != "" {
		s.username = username
	}
}

func (s *Store) persistLocked() {
	if s.snap == nil {
		return
	}
	if err := s.snap.SaveState(s.balances, s.username); err != nil {
		logger.Error("snapshot save failed: %v", err)
	}
}

// Balances returns a copy of the current balances.
func (s *Store) Balances() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]float64, len(s.balances))
	for k, v := range s.balances {
		cp[k] = v
	}
	return cp
}

func (s *Store) Balance(code string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[code]
}

// Rates returns a copy of the current rate table.
func (s *Store) Rates() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]float64, len(s.rates))
	for k, v := range s.rates {
		cp[k] = v
	}
	return cp
}

func (s *Store) RateOf(code string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[code]
	return r, ok
}

func (s *Store) ROI() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]float64, len(s.roi))
	for k, v := range s.roi {
		cp[k] = v
	}
	return cp
}

// SetRates replaces the rate table wholesale (never partially) and
// zero-initializes a balance entry for every rated code that lacks one.
func (s *Store) SetRates(current, roi map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rates := make(map[string]float64, len(current))
	for k, v := range current {
		rates[k] = v
	}
	s.rates = rates

	if roi != nil {
		cp := make(map[string]float64, len(roi))
		for k, v := range roi {
			cp[k] = v
		}
		s.roi = cp
	}

	for code := range s.rates {
		if _, ok := s.balances[code]; !ok {
			s.balances[code] = 0
		}
	}
}

// SetBalances replaces local balances with a backend snapshot.
func (s *Store) SetBalances(balances map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]float64, len(balances))
	for k, v := range balances {
		cp[k] = v
	}
	s.balances = cp
	for code := range s.rates {
		if _, ok := s.balances[code]; !ok {
			s.balances[code] = 0
		}
	}
	s.persistLocked()
}

// ApplyDeposit credits a confirmed deposit. Validation happens upstream.
func (s *Store) ApplyDeposit(code string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[code] += amount
	s.persistLocked()
}

// ApplyWithdraw debits a confirmed withdrawal. The validator's balance
// pre-check keeps this from going negative; there is no clamping here.
func (s *Store) ApplyWithdraw(code string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[code] -= amount
	s.persistLocked()
}

// ApplySwap debits the source leg and credits the destination leg in one
// critical section.
func (s *Store) ApplySwap(from string, amount float64, to string, received float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[from] -= amount
	s.balances[to] += received
	s.persistLocked()
}

// AddHistory prepends a history entry (newest first) and persists it.
func (s *Store) AddHistory(text string) models.HistoryEntry {
	entry := models.HistoryEntry{Time: time.Now(), Text: text}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]models.HistoryEntry{entry}, s.history...)
	if s.snap != nil {
		if err := s.snap.AppendHistory(entry); err != nil {
			logger.Error("history save failed: %v", err)
		}
	}
	return entry
}

// History returns a copy, newest first.
func (s *Store) History() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]models.HistoryEntry, len(s.history))
	copy(cp, s.history)
	return cp
}

// SetUser records the authenticated session user.
func (s *Store) SetUser(id int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = id
	s.username = username
	s.loggedIn = true
	s.persistLocked()
}

func (s *Store) User() (int64, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.username, s.loggedIn
}

func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}
