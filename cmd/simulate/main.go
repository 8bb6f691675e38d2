package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/PxPatel/lob-simulator/config"
	"github.com/PxPatel/lob-simulator/internal/flow"
	"github.com/PxPatel/lob-simulator/internal/logger"
	"github.com/PxPatel/lob-simulator/internal/simulation"
	"github.com/PxPatel/lob-simulator/internal/storage"
	"github.com/PxPatel/lob-simulator/internal/strategy"
)

func main() {
	os.Exit(run())
}

// run wires and executes one simulation and returns the process exit code.
// main is the only place that calls os.Exit.
func run() (code int) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logLevel, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		return 1
	}
	logger.SetMinLevel(logLevel)

	runID := uuid.NewString()
	logger.Info("Starting order book simulation", map[string]interface{}{
		"run_id":  runID,
		"horizon": cfg.Simulation.Horizon,
		"seed":    cfg.Flow.Seed,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tradeStore := buildTradeStore(cfg)
	defer func() {
		if err := tradeStore.Close(); err != nil {
			logger.Error("Failed to close trade store", map[string]interface{}{
				"error": err.Error(),
			})
			code = 1
		}
	}()

	simCfg := simulation.Config{
		RunID: runID,
		Start: time.Now().UTC(),
		Flow: flow.Config{
			Seed:           cfg.Flow.Seed,
			StartPrice:     cfg.Flow.StartPrice,
			Tick:           cfg.Flow.Tick,
			LimitRate:      cfg.Flow.LimitRate,
			MarketRate:     cfg.Flow.MarketRate,
			BuyProbability: cfg.Flow.BuyProbability,
			MeanQuantity:   cfg.Flow.MeanQuantity,
			MaxOffsetTicks: cfg.Flow.MaxOffsetTicks,
			Horizon:        cfg.Simulation.Horizon,
		},
		RequoteEvery: cfg.Simulation.RequoteEvery,
		DepthLevels:  cfg.Simulation.DepthLevels,
	}
	if cfg.Strategy.Enabled {
		simCfg.Strategy = &strategy.Config{
			HalfSpread:   cfg.Strategy.HalfSpread,
			Quantity:     cfg.Strategy.Quantity,
			MaxInventory: cfg.Strategy.MaxInventory,
			Tick:         cfg.Flow.Tick,
		}
	}

	runner, err := simulation.NewRunner(simCfg, tradeStore)
	if err != nil {
		logger.Error("Failed to build simulation", map[string]interface{}{
			"error": err.Error(),
		})
		return 1
	}

	started := time.Now()
	summary, err := runner.Run(ctx)
	if err != nil {
		logger.Error("Simulation failed", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return 1
	}

	logSummary(summary, time.Since(started))
	return 0
}

// buildTradeStore layers a bounded in-memory store with the optional audit file
func buildTradeStore(cfg *config.Config) storage.TradeStore {
	stores := []storage.TradeStore{storage.NewInMemoryTradeStore(cfg.Export.RecentTrades)}

	if cfg.Export.TradeLogPath != "" {
		fileStore, err := storage.NewFileTradeStore(cfg.Export.TradeLogPath)
		if err != nil {
			logger.Warn("Trade file log disabled", map[string]interface{}{
				"path":  cfg.Export.TradeLogPath,
				"error": err.Error(),
			})
		} else {
			stores = append(stores, fileStore)
			logger.Info("Trade file log enabled", map[string]interface{}{
				"path": cfg.Export.TradeLogPath,
			})
		}
	}

	if len(stores) == 1 {
		return stores[0]
	}
	return storage.NewCompositeTradeStore(stores...)
}

func logSummary(summary simulation.Summary, wall time.Duration) {
	fields := map[string]interface{}{
		"run_id":      summary.RunID,
		"events":      summary.Events,
		"rejected":    summary.Rejected,
		"discarded":   summary.Discarded,
		"trades":      summary.Trades,
		"volume":      summary.Volume,
		"notional":    summary.Notional,
		"open_orders": summary.OpenOrders,
		"interrupted": summary.Interrupted,
		"wall_time":   wall,
	}
	if summary.HasBid {
		fields["best_bid"] = summary.BestBid
	}
	if summary.HasAsk {
		fields["best_ask"] = summary.BestAsk
	}
	logger.Info("Simulation finished", fields)

	for i, level := range summary.Depth.Bids {
		logger.Info("Bid level", map[string]interface{}{
			"rank": i + 1, "price": level.Price, "quantity": level.Quantity, "orders": level.OrderCount,
		})
	}
	for i, level := range summary.Depth.Asks {
		logger.Info("Ask level", map[string]interface{}{
			"rank": i + 1, "price": level.Price, "quantity": level.Quantity, "orders": level.OrderCount,
		})
	}

	if summary.MakerFills > 0 || summary.MakerPosition != 0 {
		logger.Info("Market maker result", map[string]interface{}{
			"fills":     summary.MakerFills,
			"inventory": summary.MakerPosition,
			"pnl":       summary.MakerPnL.StringFixed(4),
		})
	}
}
