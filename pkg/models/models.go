package models

import "time"

// HistoryEntry is one line of local transaction history, newest first.
type HistoryEntry struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// RatesData contains a freshly fetched rate table.
// Rates are USD per unit; ROI is the percent change since the daily open.
type RatesData struct {
	Current map[string]float64
	ROI     map[string]float64
	Err     error
}

// BalancesData contains a freshly fetched backend balance snapshot.
type BalancesData struct {
	UserID   int64
	Balances map[string]float64
	Err      error
}

// SyncResult is the observable outcome of a fire-and-forget backend call.
type SyncResult struct {
	Op  string // "balances" or "transfer"
	Err error
}

// TransferRequest is the payload for POST /transfer.
type TransferRequest struct {
	FromUserID int64   `json:"from_user_id"`
	ToTag      string  `json:"to_tag"`
	Symbol     string  `json:"symbol"`
	Amount     float64 `json:"amount"`
}

// SessionUser is the backend's view of the authenticated user.
type SessionUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// Credentials is the payload for the auth endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CurrencyResult holds test results for one configured currency.
type CurrencyResult struct {
	Symbol   string  `json:"symbol"`
	Decimals int     `json:"decimals"`
	Min      float64 `json:"min_amount"`
	Max      float64 `json:"max_amount"`
	Status   string  `json:"status"` // "ok" or "error"
	Rate     float64 `json:"rate,omitempty"`
	Priced   bool    `json:"priced"`
	Error    string  `json:"error,omitempty"`
}

// TestReport holds the results of the configuration test.
type TestReport struct {
	ConfigPath      string           `json:"config_path"`
	ValidStructure  bool             `json:"valid_structure"`
	StructureErrors []string         `json:"structure_errors,omitempty"`
	CurrencyCount   int              `json:"currency_count"`
	Currencies      []CurrencyResult `json:"currencies,omitempty"`
	RatesURL        string           `json:"rates_url,omitempty"`
	RatesReachable  bool             `json:"rates_reachable"`
	RatesError      string           `json:"rates_error,omitempty"`
}
