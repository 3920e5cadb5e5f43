package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/kalshi-trader/internal/api"
	"github.com/rickgao/kalshi-trader/internal/auth"
	"github.com/rickgao/kalshi-trader/internal/config"
	"github.com/rickgao/kalshi-trader/internal/database"
	"github.com/rickgao/kalshi-trader/internal/execution"
	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/platform"
	"github.com/rickgao/kalshi-trader/internal/recorder"
	"github.com/rickgao/kalshi-trader/internal/risk"
	"github.com/rickgao/kalshi-trader/internal/strategy"
	"github.com/rickgao/kalshi-trader/internal/stream"
	"github.com/rickgao/kalshi-trader/internal/version"
	"github.com/rickgao/kalshi-trader/internal/weather"
)

func main() {
	configPath := flag.String("config", "configs/trader.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting trader",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Instance.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.RestURL,
		"trading_enabled", cfg.Execution.TradingEnabled,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Load credentials and create API client
	creds, err := auth.LoadCredentials(cfg.API.APIKey, cfg.API.PrivateKeyPath)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	apiClient := api.NewClient(
		cfg.API.RestURL,
		creds,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Check exchange status
	logger.Info("checking exchange status")
	status, err := apiClient.GetExchangeStatus(ctx)
	if err != nil {
		logger.Error("failed to get exchange status", "error", err)
		os.Exit(1)
	}
	logger.Info("exchange status",
		"exchange_active", status.ExchangeActive,
		"trading_active", status.TradingActive,
	)

	// Weather signal
	weatherClient := weather.NewNWSClient(cfg.Weather.Station, loc,
		weather.WithBaseURL(cfg.Weather.BaseURL),
		weather.WithLogger(logger),
	)

	// Optional recording: database pool, batch writers, snapshot collector,
	// ticker stream.
	var (
		rec        *recorder.Recorder
		tickerWS   *stream.TickerStream
		collectors []platform.Collector
		obsSink    weather.ObservationSink
	)
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("database connected")

		rec = recorder.New(recorder.Config{
			BatchSize:     cfg.Recorder.BatchSize,
			FlushInterval: cfg.Recorder.FlushInterval,
			BufferSize:    cfg.Recorder.BufferSize,
		}, pool, logger)
		rec.Start(ctx)
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			rec.Stop(stopCtx)
		}()
		obsSink = rec

		if base := snapshotBase(cfg); base != "" {
			snapCollector, err := recorder.NewCollector(recorder.CollectorConfig{
				BaseTicker:  base,
				MinuteMarks: cfg.Recorder.SnapshotMinuteMarks,
				Concurrency: cfg.Recorder.Concurrency,
			}, apiClient, apiClient, rec, loc, logger)
			if err != nil {
				logger.Error("failed to create snapshot collector", "error", err)
				os.Exit(1)
			}
			collectors = append(collectors, snapCollector)
		}

		if cfg.Stream.Enabled {
			tickerWS = startStream(ctx, cfg, creds, apiClient, rec, loc, logger)
			if tickerWS != nil {
				defer func() {
					stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer stopCancel()
					tickerWS.Stop(stopCtx)
				}()
			}
		}
	}

	weatherCollector, err := weather.NewCollector(weatherClient, cfg.Weather.MinuteMarks, obsSink, logger)
	if err != nil {
		logger.Error("failed to create weather collector", "error", err)
		os.Exit(1)
	}
	collectors = append(collectors, weatherCollector)

	// Risk: one budget per enabled strategy.
	budgets := make(map[string]model.Cents)
	for _, s := range cfg.Strategies {
		if s.Enabled {
			budgets[s.Name] = model.Cents(s.VaRBudgetCents)
		}
	}
	riskMgr, err := risk.NewManager(apiClient, budgets, logger,
		risk.WithRefreshInterval(cfg.Risk.RefreshInterval),
	)
	if err != nil {
		logger.Error("failed to create risk manager", "error", err)
		os.Exit(1)
	}

	// Strategies
	strategyCfgs, err := buildStrategyConfigs(cfg.Strategies)
	if err != nil {
		logger.Error("failed to build strategy configs", "error", err)
		os.Exit(1)
	}
	strategies, err := strategy.NewManager(strategyCfgs, apiClient, weatherClient, loc, logger)
	if err != nil {
		logger.Error("failed to create strategies", "error", err)
		os.Exit(1)
	}

	// Execution
	execMgr := execution.NewManager(apiClient, riskMgr, cfg.Execution.TradingEnabled, logger)
	if !execMgr.Enabled() {
		logger.Warn("live trading disabled, orders will be logged only")
	}

	p := platform.New(riskMgr, strategies, execMgr, collectors, logger)

	logger.Info("trader running", "instance_id", cfg.Instance.ID)
	if err := p.Run(ctx); err != context.Canceled {
		logger.Error("trading loop failed", "error", err)
		os.Exit(1)
	}

	logger.Info("trader stopped")
}

// snapshotBase picks the event series to snapshot: the first enabled
// strategy's base ticker.
func snapshotBase(cfg *config.TraderConfig) string {
	for _, s := range cfg.Strategies {
		if s.Enabled && s.BaseTicker != "" {
			return s.BaseTicker
		}
	}
	return ""
}

// startStream subscribes the ticker stream to today's markets. Stream
// failures are not fatal; recording degrades to snapshots only.
func startStream(ctx context.Context, cfg *config.TraderConfig, creds *auth.Credentials, apiClient *api.Client, rec *recorder.Recorder, loc *time.Location, logger *slog.Logger) *stream.TickerStream {
	base := snapshotBase(cfg)
	if base == "" {
		return nil
	}

	markets, err := apiClient.ActiveMarkets(ctx, base, time.Now().In(loc))
	if err != nil {
		logger.Warn("failed to list markets for stream", "error", err)
		return nil
	}
	tickers := make([]string, len(markets))
	for i, m := range markets {
		tickers[i] = m.Ticker
	}

	streamCfg := stream.DefaultConfig()
	streamCfg.URL = cfg.API.WSURL
	streamCfg.ReconnectBaseDelay = cfg.Stream.ReconnectBaseDelay
	streamCfg.ReconnectMaxDelay = cfg.Stream.ReconnectMaxDelay
	streamCfg.PingInterval = cfg.Stream.PingInterval
	streamCfg.ReadTimeout = cfg.Stream.ReadTimeout

	ws := stream.New(streamCfg, creds, tickers, rec, logger)
	if err := ws.Start(ctx); err != nil {
		logger.Warn("failed to start ticker stream", "error", err)
		return nil
	}
	return ws
}

// buildStrategyConfigs maps config entries onto strategy configs.
func buildStrategyConfigs(cfgs []config.StrategyConfig) ([]strategy.Config, error) {
	out := make([]strategy.Config, 0, len(cfgs))
	for _, s := range cfgs {
		window, err := s.Window()
		if err != nil {
			return nil, err
		}
		out = append(out, strategy.Config{
			Name:                 s.Name,
			Type:                 strategy.ParseType(s.Type),
			TickInterval:         s.TickInterval,
			Enabled:              s.Enabled,
			BaseTicker:           s.BaseTicker,
			MaxNotionalCents:     model.Cents(s.MaxNotionalCents),
			UncertaintyCents:     s.UncertaintyCents,
			PeakUncertaintyCents: s.PeakUncertaintyCents,
			Window:               window,
		})
	}
	return out, nil
}
