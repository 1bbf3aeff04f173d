package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig_Malformed(t *testing.T) {
	reader := strings.NewReader(`{ "currencies": [`)
	_, _, err := LoadConfig(reader)
	if err == nil {
		t.Error("Expected error loading malformed config, got nil")
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	currencies, settings, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}
	if len(currencies) != len(DefaultCurrencies()) {
		t.Errorf("Expected default currency table, got %d entries", len(currencies))
	}
	if settings.RefreshSeconds != 30 {
		t.Errorf("Expected default refresh 30, got %d", settings.RefreshSeconds)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_save_config_*.json")
	if err != nil {
		t.Fatal(err)
	}
	tmpPath := tmpfile.Name()
	_ = tmpfile.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	currencies := DefaultCurrencies()
	settings := defaultSettings()
	settings.Username = "alice"
	settings.UserID = 7

	err = SaveConfig(currencies, settings, tmpPath)
	if err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loadedCurrencies, loadedSettings, err := LoadConfigFromFile(tmpPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(loadedCurrencies) != len(currencies) {
		t.Errorf("Currency count mismatch")
	}
	if loadedCurrencies[0].Symbol != "USDT" || loadedCurrencies[0].MinAmount != 5.0 {
		t.Errorf("Currency content mismatch")
	}
	if loadedSettings.Username != "alice" || loadedSettings.UserID != 7 {
		t.Errorf("Settings mismatch")
	}
}

func TestSaveConfig_RejectsInvalid(t *testing.T) {
	tmpPath := filepath.Join(t.TempDir(), "config.json")
	bad := []CurrencyConfig{{Symbol: "BTC", Decimals: 6, MinAmount: 5, MaxAmount: 1}}
	if err := SaveConfig(bad, defaultSettings(), tmpPath); err == nil {
		t.Error("Expected validation error, got nil")
	}
}

func TestLoadConfig_TableDriven(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		jsonContent string
		expectError bool
		validate    func(*testing.T, []CurrencyConfig, Settings)
	}{
		{
			name: "Valid Modern Config",
			jsonContent: `{
				"currencies": [{"symbol": "BTC", "decimals": 6, "min_amount": 0.0001, "max_amount": 2, "priority": 0}],
				"api_base": "http://wallet.local",
				"user_id": 9,
				"refresh_seconds": 10
			}`,
			expectError: false,
			validate: func(t *testing.T, currencies []CurrencyConfig, s Settings) {
				if len(currencies) != 1 || currencies[0].Symbol != "BTC" {
					t.Errorf("Currency mismatch")
				}
				if s.APIBase != "http://wallet.local" {
					t.Errorf("APIBase mismatch")
				}
				if s.UserID != 9 || s.RefreshSeconds != 10 {
					t.Errorf("Settings mismatch")
				}
			},
		},
		{
			name: "Legacy Currencies (Map By Symbol)",
			jsonContent: `{
				"currencies": {
					"BTC": {"decimals": 6, "min_amount": 0.0001, "max_amount": 2},
					"USDT": {"decimals": 2, "min_amount": 5, "max_amount": 250000}
				}
			}`,
			expectError: false,
			validate: func(t *testing.T, currencies []CurrencyConfig, s Settings) {
				if len(currencies) != 2 {
					t.Fatalf("Expected 2 currencies, got %d", len(currencies))
				}
				if currencies[0].Symbol != "USDT" {
					t.Errorf("Expected USDT first by default priority, got %s", currencies[0].Symbol)
				}
				if currencies[1].Symbol != "BTC" || currencies[1].Decimals != 6 {
					t.Errorf("Currency content mismatch")
				}
			},
		},
		{
			name:        "Malformed JSON",
			jsonContent: `{ "currencies": [ unclosed_array`,
			expectError: true,
			validate:    nil,
		},
		{
			name: "Partial Config (Defaults)",
			jsonContent: `{
				"username": "bob"
			}`,
			expectError: false,
			validate: func(t *testing.T, currencies []CurrencyConfig, s Settings) {
				if len(currencies) != len(DefaultCurrencies()) {
					t.Errorf("Expected default currencies, got %d", len(currencies))
				}
				if s.FiatDecimals != 2 {
					t.Errorf("Expected default fiat decimals 2, got %d", s.FiatDecimals)
				}
				if s.Username != "bob" {
					t.Errorf("Username mismatch")
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reader := strings.NewReader(tt.jsonContent)
			currencies, settings, err := LoadConfig(reader)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if tt.validate != nil {
					tt.validate(t, currencies, settings)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if errs := Validate(DefaultCurrencies()); len(errs) != 0 {
		t.Errorf("Expected default table to validate, got %v", errs)
	}
	if errs := Validate(nil); len(errs) == 0 {
		t.Error("Expected error for empty table")
	}
	dup := []CurrencyConfig{
		{Symbol: "BTC", Decimals: 6, MinAmount: 0.0001, MaxAmount: 2},
		{Symbol: "BTC", Decimals: 6, MinAmount: 0.0001, MaxAmount: 2},
	}
	if errs := Validate(dup); len(errs) == 0 {
		t.Error("Expected error for duplicate symbol")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BLINKWALLET_API", "http://env.local")
	t.Setenv("BLINKWALLET_USER_ID", "42")

	s := defaultSettings()
	s.ApplyEnv()

	if s.APIBase != "http://env.local" {
		t.Errorf("Expected env APIBase override, got %s", s.APIBase)
	}
	if s.UserID != 42 {
		t.Errorf("Expected env user id 42, got %d", s.UserID)
	}
}

func TestSaveConfig_PermissionError(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.Chmod(tmpDir, 0500); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chmod(tmpDir, 0700) }()

	configPath := filepath.Join(tmpDir, "config.json")
	err := SaveConfig(DefaultCurrencies(), defaultSettings(), configPath)
	if err == nil {
		t.Error("Expected permission error, got nil")
	}
}
