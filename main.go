package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"blinkwallet/pkg/api"
	"blinkwallet/pkg/config"
	"blinkwallet/pkg/logger"
	"blinkwallet/pkg/models"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/registry"
	"blinkwallet/pkg/server"
	"blinkwallet/pkg/store"
	"blinkwallet/pkg/tui"
	"blinkwallet/pkg/watcher"

	"github.com/joho/godotenv"
)

// Version should be set during build
var Version = "dev"

func main() {
	testFlag := flag.Bool("t", false, "Test configuration and exit")
	testLongFlag := flag.Bool("test", false, "Test configuration and exit")
	jsonFlag := flag.Bool("json", false, "Output test results as JSON")
	configFlag := flag.String("config", "", "Path to configuration file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 8090, "Port for API server")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("blinkwallet version %s\n", Version)
		os.Exit(0)
	}

	_ = godotenv.Load()

	cfgInput := *configFlag
	if cfgInput == "" && len(flag.Args()) > 0 {
		cfgInput = flag.Args()[0]
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		os.Exit(1)
	}

	currencies, settings, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		os.Exit(1)
	}
	settings.ApplyEnv()

	client := api.NewClient(settings.APIBase, settings.RatesURL)

	if *testFlag || *testLongFlag {
		_, code := runConfigTest(client, currencies, settings, path, *jsonFlag)
		os.Exit(code)
	}

	if *serverFlag {
		logger.Init()
	} else {
		// In TUI mode stdout belongs to the UI; log to a file instead.
		if err := logger.InitFileOnly(); err != nil {
			fmt.Printf("Error initializing logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Close()

	st := store.New()
	snapshotPath := settings.SnapshotPath
	if snapshotPath == "" {
		snapshotPath = config.DefaultSnapshotPath(path)
	}
	snap, err := store.OpenSnapshot(snapshotPath)
	if err != nil {
		logger.Warn("snapshot unavailable, state will not persist: %v", err)
	} else {
		defer func() { _ = snap.Close() }()
		st.AttachSnapshot(snap)
	}

	if settings.Username != "" {
		st.SetUser(settings.UserID, settings.Username)
	}

	reg := registry.New(currencies, st)
	ds := &watcher.RealDataSource{Client: client}
	w := watcher.NewWatcher(st, ds, time.Duration(settings.RefreshSeconds)*time.Second)
	w.Start(context.Background())

	srv := server.NewServer(w, st)
	go func() {
		if err := srv.Start(*portFlag); err != nil {
			logger.Error("server stopped: %v", err)
		}
	}()

	if *serverFlag {
		fmt.Printf("Running in server mode on port %d...\n", *portFlag)
		select {} // Keep alive
	}

	nav := overlay.NewController()
	tui.Start(w, currencies, settings, reg, st, nav, client, Version)
}

func runConfigTest(client *api.Client, currencies []config.CurrencyConfig, settings config.Settings, path string, asJSON bool) (models.TestReport, int) {
	var report models.TestReport
	report.ConfigPath = path
	report.ValidStructure = true

	if !asJSON {
		fmt.Printf("Testing configuration at: %s\n", path)
	}

	report.StructureErrors = config.Validate(currencies)
	if len(report.StructureErrors) > 0 {
		report.ValidStructure = false
		if asJSON {
			printReport(report)
		} else {
			for _, msg := range report.StructureErrors {
				fmt.Printf("Error: %s\n", msg)
			}
		}
		return report, 1
	}

	report.CurrencyCount = len(currencies)
	if !asJSON {
		fmt.Printf("Found %d currencies.\n", len(currencies))
	}

	ratesURL := settings.RatesURL
	if ratesURL == "" {
		ratesURL = settings.APIBase + "/rates"
	}
	report.RatesURL = ratesURL
	if !asJSON {
		fmt.Printf("Testing rates feed: %s ... ", ratesURL)
	}

	data, err := client.FetchRates()
	if err != nil {
		report.RatesError = err.Error()
		if !asJSON {
			fmt.Printf("Failed: %v\n", err)
		}
	} else {
		report.RatesReachable = true
		if !asJSON {
			fmt.Printf("OK (%d rates)\n", len(data.Current))
		}
	}

	for _, c := range currencies {
		result := models.CurrencyResult{
			Symbol:   c.Symbol,
			Decimals: c.Decimals,
			Min:      c.MinAmount,
			Max:      c.MaxAmount,
			Status:   "ok",
		}
		if report.RatesReachable {
			if rate, ok := data.Current[c.Symbol]; ok && rate > 0 {
				result.Priced = true
				result.Rate = rate
			} else {
				result.Status = "error"
				result.Error = "No rate available; currency cannot be priced or swapped."
			}
		}
		if !asJSON {
			if result.Status == "ok" && result.Priced {
				fmt.Printf("  %-6s OK (rate: %g)\n", c.Symbol, result.Rate)
			} else if result.Status == "ok" {
				fmt.Printf("  %-6s OK\n", c.Symbol)
			} else {
				fmt.Printf("  %-6s %s\n", c.Symbol, result.Error)
			}
		}
		report.Currencies = append(report.Currencies, result)
	}

	if asJSON {
		printReport(report)
	}
	if !report.RatesReachable && report.RatesError != "" {
		return report, 1
	}
	return report, 0
}

func printReport(report models.TestReport) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
