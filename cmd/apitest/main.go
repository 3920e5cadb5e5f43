// apitest exercises the signed REST surface against a live account without
// placing orders. Usage: go run ./cmd/apitest --config configs/trader.local.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rickgao/kalshi-trader/internal/api"
	"github.com/rickgao/kalshi-trader/internal/auth"
	"github.com/rickgao/kalshi-trader/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/trader.local.yaml", "path to config file")
	base := flag.String("base", "KXHIGHNY", "event series to inspect")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	creds, err := auth.LoadCredentials(cfg.API.APIKey, cfg.API.PrivateKeyPath)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.API.RestURL, creds,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	status, err := client.GetExchangeStatus(ctx)
	if err != nil {
		logger.Error("exchange status failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("exchange active: %v, trading active: %v\n",
		status.ExchangeActive, status.TradingActive)

	loc, err := time.LoadLocation(cfg.Instance.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	markets, err := client.ActiveMarkets(ctx, *base, time.Now().In(loc))
	if err != nil {
		logger.Error("list markets failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("active markets for %s: %d\n", *base, len(markets))
	for _, m := range markets {
		fmt.Printf("  %s  [%.1fF, %.1fF]\n",
			m.Ticker, m.FloorStrike.Fahrenheit(), m.CapStrike.Fahrenheit())
	}

	if len(markets) > 0 {
		book, err := client.OrderBook(ctx, markets[0].Ticker)
		if err != nil {
			logger.Error("order book failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("book %s: %d yes levels, %d no levels\n",
			book.Ticker, len(book.Yes), len(book.No))
	}

	balance, err := client.GetBalance(ctx)
	if err != nil {
		logger.Error("balance failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("balance: %s\n", balance)

	positions, err := client.GetPositions(ctx)
	if err != nil {
		logger.Error("positions failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("open positions: %d\n", len(positions))
	for _, p := range positions {
		fmt.Printf("  %s qty=%d exposure=%s\n", p.Ticker, p.Quantity, p.Exposure)
	}
}
