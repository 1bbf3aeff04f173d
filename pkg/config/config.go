package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const ConfigFileName = ".blinkwallet.json"

// NoPriority marks a currency that is absent from the display priority list.
// Such currencies sort after all prioritized ones, alphabetically.
const NoPriority = -1

// CurrencyConfig holds the static per-currency metadata.
type CurrencyConfig struct {
	Symbol    string  `json:"symbol"`
	Decimals  int     `json:"decimals"`
	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount"`
	Priority  int     `json:"priority"`
	Icon      string  `json:"icon,omitempty"`
}

// Settings holds application-wide settings.
type Settings struct {
	APIBase        string `json:"api_base"`
	RatesURL       string `json:"rates_url"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	RefreshSeconds int    `json:"refresh_seconds"`
	FiatDecimals   int    `json:"fiat_decimals"`
	SnapshotPath   string `json:"snapshot_path"`
}

// DefaultCurrencies returns the built-in currency table.
func DefaultCurrencies() []CurrencyConfig {
	return []CurrencyConfig{
		{Symbol: "USDT", Decimals: 2, MinAmount: 5.0, MaxAmount: 250_000, Priority: 0, Icon: "₮"},
		{Symbol: "BTC", Decimals: 6, MinAmount: 0.00006, MaxAmount: 2.5, Priority: 1, Icon: "₿"},
		{Symbol: "ETH", Decimals: 6, MinAmount: 0.002, MaxAmount: 75, Priority: 2, Icon: "Ξ"},
		{Symbol: "SOL", Decimals: 4, MinAmount: 0.04, MaxAmount: 2_000, Priority: 3, Icon: "◎"},
		{Symbol: "TON", Decimals: 3, MinAmount: 3.5, MaxAmount: 150_000, Priority: 4, Icon: "⬡"},
		{Symbol: "TRX", Decimals: 2, MinAmount: 17, MaxAmount: 2_500_000, Priority: 5, Icon: "T"},
		{Symbol: "BLINK", Decimals: 4, MinAmount: 0.05, MaxAmount: 2_500, Priority: 6, Icon: "✦"},
	}
}

func defaultSettings() Settings {
	return Settings{
		APIBase:        "http://127.0.0.1:8080",
		RatesURL:       "",
		UserID:         1,
		RefreshSeconds: 30,
		FiatDecimals:   2,
	}
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// DefaultSnapshotPath resolves the local snapshot location next to the config.
func DefaultSnapshotPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), ".blinkwallet.db")
}

func LoadConfigFromFile(path string) ([]CurrencyConfig, Settings, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultCurrencies(), defaultSettings(), nil
	}
	if err != nil {
		return nil, Settings{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func LoadConfig(r io.Reader) ([]CurrencyConfig, Settings, error) {
	var cfg struct {
		Currencies     json.RawMessage `json:"currencies"`
		APIBase        string          `json:"api_base"`
		RatesURL       string          `json:"rates_url"`
		UserID         *int64          `json:"user_id"`
		Username       string          `json:"username"`
		RefreshSeconds *int            `json:"refresh_seconds"`
		FiatDecimals   *int            `json:"fiat_decimals"`
		SnapshotPath   string          `json:"snapshot_path"`
	}
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, Settings{}, err
	}

	currencies := DefaultCurrencies()
	if len(cfg.Currencies) > 0 {
		var list []CurrencyConfig
		if err := json.Unmarshal(cfg.Currencies, &list); err == nil && len(list) > 0 {
			currencies = list
		} else {
			// Legacy shape: {"BTC": {"decimals": 6, ...}, ...}. Priority
			// follows the default table where known, then symbol order.
			var byCode map[string]CurrencyConfig
			if err2 := json.Unmarshal(cfg.Currencies, &byCode); err2 == nil && len(byCode) > 0 {
				currencies = fromLegacyMap(byCode)
			}
		}
	}

	settings := defaultSettings()
	if cfg.APIBase != "" {
		settings.APIBase = cfg.APIBase
	}
	if cfg.RatesURL != "" {
		settings.RatesURL = cfg.RatesURL
	}
	if cfg.UserID != nil {
		settings.UserID = *cfg.UserID
	}
	if cfg.Username != "" {
		settings.Username = cfg.Username
	}
	if cfg.RefreshSeconds != nil {
		settings.RefreshSeconds = *cfg.RefreshSeconds
	}
	if cfg.FiatDecimals != nil {
		settings.FiatDecimals = *cfg.FiatDecimals
	}
	if cfg.SnapshotPath != "" {
		settings.SnapshotPath = cfg.SnapshotPath
	}

	return currencies, settings, nil
}

func fromLegacyMap(byCode map[string]CurrencyConfig) []CurrencyConfig {
	known := make(map[string]int)
	for _, c := range DefaultCurrencies() {
		known[c.Symbol] = c.Priority
	}

	symbols := make([]string, 0, len(byCode))
	for sym := range byCode {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var out []CurrencyConfig
	for _, sym := range symbols {
		c := byCode[sym]
		c.Symbol = sym
		if p, ok := known[sym]; ok {
			c.Priority = p
		} else {
			c.Priority = NoPriority
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Priority, out[j].Priority
		if pi == NoPriority {
			return false
		}
		if pj == NoPriority {
			return true
		}
		return pi < pj
	})
	return out
}

// ApplyEnv overrides settings from the environment (loaded via .env in main).
func (s *Settings) ApplyEnv() {
	if v := os.Getenv("BLINKWALLET_API"); v != "" {
		s.APIBase = v
	}
	if v := os.Getenv("BLINKWALLET_RATES_URL"); v != "" {
		s.RatesURL = v
	}
	if v := os.Getenv("BLINKWALLET_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.UserID = id
		}
	}
}

// Validate checks the currency table for structural problems.
func Validate(currencies []CurrencyConfig) []string {
	var errs []string
	if len(currencies) == 0 {
		errs = append(errs, "No currencies found in configuration.")
		return errs
	}
	seen := make(map[string]bool)
	for i, c := range currencies {
		sym := strings.TrimSpace(c.Symbol)
		if sym == "" {
			errs = append(errs, fmt.Sprintf("Currency at index %d has no symbol.", i))
			continue
		}
		if seen[sym] {
			errs = append(errs, fmt.Sprintf("Currency %s appears more than once.", sym))
		}
		seen[sym] = true
		if c.Decimals < 0 {
			errs = append(errs, fmt.Sprintf("Currency %s has negative decimals.", sym))
		}
		if c.MinAmount <= 0 {
			errs = append(errs, fmt.Sprintf("Currency %s has non-positive min_amount.", sym))
		}
		if c.MaxAmount <= c.MinAmount {
			errs = append(errs, fmt.Sprintf("Currency %s has max_amount <= min_amount.", sym))
		}
	}
	return errs
}

func SaveConfig(currencies []CurrencyConfig, settings Settings, path string) error {
	if errs := Validate(currencies); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", errs[0])
	}

	cfg := struct {
		Currencies     []CurrencyConfig `json:"currencies"`
		APIBase        string           `json:"api_base"`
		RatesURL       string           `json:"rates_url,omitempty"`
		UserID         int64            `json:"user_id"`
		Username       string           `json:"username,omitempty"`
		RefreshSeconds int              `json:"refresh_seconds"`
		FiatDecimals   int              `json:"fiat_decimals"`
		SnapshotPath   string           `json:"snapshot_path,omitempty"`
	}{
		Currencies:     currencies,
		APIBase:        settings.APIBase,
		RatesURL:       settings.RatesURL,
		UserID:         settings.UserID,
		Username:       settings.Username,
		RefreshSeconds: settings.RefreshSeconds,
		FiatDecimals:   settings.FiatDecimals,
		SnapshotPath:   settings.SnapshotPath,
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
