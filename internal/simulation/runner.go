// Package simulation drives the matching engine with generated order flow
// and an optional market maker, exporting every trade as it happens.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/lob-simulator/internal/flow"
	"github.com/PxPatel/lob-simulator/internal/logger"
	"github.com/PxPatel/lob-simulator/internal/matching"
	"github.com/PxPatel/lob-simulator/internal/storage"
	"github.com/PxPatel/lob-simulator/internal/strategy"
	"github.com/PxPatel/lob-simulator/internal/types"
)

type Config struct {
	RunID        string
	Start        time.Time
	Flow         flow.Config
	Strategy     *strategy.Config // nil runs without a market maker
	RequoteEvery int
	DepthLevels  int
}

// Summary describes the state of the book when a run ends
type Summary struct {
	RunID         string
	Events        int
	Rejected      int
	Discarded     float64 // unfilled market quantity dropped for lack of liquidity
	Trades        int
	Volume        float64
	Notional      float64 // sum of price × quantity over all trades
	OpenOrders    int
	BestBid       float64
	HasBid        bool
	BestAsk       float64
	HasAsk        bool
	Depth         types.Depth
	MakerFills    int
	MakerPosition float64
	MakerPnL      decimal.Decimal
	Interrupted   bool
}

// Runner owns the engine and is its only caller, which keeps every engine
// operation on one goroutine.
type Runner struct {
	cfg       Config
	engine    *matching.Engine
	generator *flow.Generator
	maker     *strategy.MarketMaker
	store     storage.TradeStore
	cursor    int
}

func NewRunner(cfg Config, store storage.TradeStore) (*Runner, error) {
	if cfg.RequoteEvery < 1 {
		cfg.RequoteEvery = 1
	}
	if cfg.DepthLevels < 1 {
		cfg.DepthLevels = 5
	}

	engine := matching.NewEngine()
	generator, err := flow.NewGenerator(cfg.Flow, cfg.Start, engine.MidPrice)
	if err != nil {
		return nil, fmt.Errorf("build flow generator: %w", err)
	}

	r := &Runner{
		cfg:       cfg,
		engine:    engine,
		generator: generator,
		store:     store,
	}
	if cfg.Strategy != nil {
		r.maker, err = strategy.NewMarketMaker(*cfg.Strategy)
		if err != nil {
			return nil, fmt.Errorf("build market maker: %w", err)
		}
	}
	return r, nil
}

func (r *Runner) Engine() *matching.Engine {
	return r.engine
}

// Run consumes events until the flow horizon or ctx is cancelled
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: r.cfg.RunID}

	for {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		ev, ok := r.generator.Next()
		if !ok {
			break
		}
		summary.Events++

		order, err := r.engine.Submit(ev.Intent())
		switch {
		case err != nil:
			summary.Rejected++
			logger.Debug("Order rejected", map[string]interface{}{
				"side":  ev.Side,
				"type":  ev.Type,
				"error": err.Error(),
			})
		case order.Type == types.MarketOrder && !order.IsFilled():
			summary.Discarded += order.Quantity
			logger.Debug("Market order ran out of liquidity", map[string]interface{}{
				"order_id":  order.ID,
				"filled":    order.Filled(),
				"discarded": order.Quantity,
			})
		}

		if r.maker != nil && summary.Events%r.cfg.RequoteEvery == 0 {
			if err := r.maker.Requote(r.engine, ev.Time); err != nil {
				logger.Warn("Requote failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		if err := r.export(); err != nil {
			return summary, err
		}
	}

	if r.maker != nil {
		r.maker.Close(r.engine)
	}
	if err := r.export(); err != nil {
		return summary, err
	}

	r.fillSummary(&summary)
	return summary, nil
}

// export forwards trades executed since the previous call
func (r *Runner) export() error {
	trades, cursor := r.engine.TradesSince(r.cursor)
	if len(trades) == 0 {
		return nil
	}
	if err := r.store.SaveBatch(trades); err != nil {
		return fmt.Errorf("export trades: %w", err)
	}
	r.cursor = cursor
	return nil
}

func (r *Runner) fillSummary(summary *Summary) {
	trades := r.engine.Trades()
	for _, trade := range trades {
		summary.Volume += trade.Quantity
		summary.Notional += trade.Notional()
	}
	summary.Trades = len(trades)
	summary.OpenOrders = r.engine.OpenOrders()
	summary.BestBid, summary.HasBid = r.engine.BestBid()
	summary.BestAsk, summary.HasAsk = r.engine.BestAsk()
	summary.Depth = r.engine.Depth(r.cfg.DepthLevels)

	if r.maker == nil {
		return
	}
	mark := r.cfg.Flow.StartPrice
	if mid, ok := r.engine.MidPrice(); ok {
		mark = mid
	} else if len(trades) > 0 {
		mark = trades[len(trades)-1].Price
	}
	summary.MakerFills = r.maker.Fills()
	summary.MakerPosition = r.maker.Inventory()
	summary.MakerPnL = r.maker.PnL(mark)
}
