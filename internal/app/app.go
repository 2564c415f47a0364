// Package app wires configuration, clients, and services into one unit
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thrivehq/thrive/internal/clients/gemini"
	"github.com/thrivehq/thrive/internal/clients/yahoo"
	"github.com/thrivehq/thrive/internal/common"
	"github.com/thrivehq/thrive/internal/interfaces"
	"github.com/thrivehq/thrive/internal/services/insight"
	"github.com/thrivehq/thrive/internal/services/risk"
	"github.com/thrivehq/thrive/internal/services/simulation"
)

// App holds all initialized clients and services.
// It is the shared core used by cmd/thrive-server and the handler tests.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Market      interfaces.MarketDataClient
	Risk        interfaces.RiskService
	Simulation  interfaces.SimulationService
	Insight     interfaces.InsightService
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Check provided path, THRIVE_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("THRIVE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "thrive.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/thrive.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	marketClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	var geminiClient *gemini.Client
	if config.Clients.Gemini.APIKey != "" {
		geminiClient, err = gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			geminiClient = nil
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - AI insights will be unavailable")
	}

	riskService := risk.NewService(marketClient, logger,
		risk.WithMaxSymbols(config.Risk.MaxVolatilitySymbols),
		risk.WithHistoryPeriod(config.Risk.HistoryPeriod),
		risk.WithFetchTimeout(config.Risk.GetFetchTimeout()),
	)
	simulationService := simulation.NewService(logger)

	// A nil *gemini.Client must stay a nil interface so the insight
	// service can detect the unconfigured case.
	var insightClient interfaces.InsightClient
	if geminiClient != nil {
		insightClient = geminiClient
	}
	insightService := insight.NewService(insightClient, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Market:      marketClient,
		Risk:        riskService,
		Simulation:  simulationService,
		Insight:     insightService,
		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}
