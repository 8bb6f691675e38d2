// Package flow synthesizes random order arrivals for driving the engine.
//
// Arrivals follow a Poisson process: inter-arrival gaps are exponential with
// rate LimitRate+MarketRate, and each arrival is a limit order with
// probability LimitRate/(LimitRate+MarketRate), otherwise a market order.
package flow

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/PxPatel/lob-simulator/internal/types"
)

var ErrInvalidConfig = errors.New("invalid flow config")

type Config struct {
	Seed           int64
	StartPrice     float64 // reference price until the book has a mid
	Tick           float64
	LimitRate      float64 // per simulated second
	MarketRate     float64 // per simulated second
	BuyProbability float64
	MeanQuantity   float64
	MaxOffsetTicks int // limit prices land 1..MaxOffsetTicks ticks away from the reference
	Horizon        time.Duration
}

func (c Config) Validate() error {
	switch {
	case !(c.StartPrice > 0):
		return fmt.Errorf("%w: start price %v", ErrInvalidConfig, c.StartPrice)
	case !(c.Tick > 0):
		return fmt.Errorf("%w: tick %v", ErrInvalidConfig, c.Tick)
	case c.LimitRate < 0 || c.MarketRate < 0 || !(c.LimitRate+c.MarketRate > 0):
		return fmt.Errorf("%w: rates limit=%v market=%v", ErrInvalidConfig, c.LimitRate, c.MarketRate)
	case c.BuyProbability < 0 || c.BuyProbability > 1:
		return fmt.Errorf("%w: buy probability %v", ErrInvalidConfig, c.BuyProbability)
	case c.MeanQuantity < 1:
		return fmt.Errorf("%w: mean quantity %v", ErrInvalidConfig, c.MeanQuantity)
	case c.MaxOffsetTicks < 1:
		return fmt.Errorf("%w: max offset ticks %d", ErrInvalidConfig, c.MaxOffsetTicks)
	case c.Horizon <= 0:
		return fmt.Errorf("%w: horizon %v", ErrInvalidConfig, c.Horizon)
	}
	return nil
}

// Event is one arrival. Price is zero for market orders.
type Event struct {
	Time     time.Time
	Type     types.OrderType
	Side     types.Side
	Quantity float64
	Price    float64
}

// Intent converts the event into the engine's order intent
func (ev Event) Intent() types.Intent {
	if ev.Type == types.MarketOrder {
		return types.Market{Side: ev.Side, Quantity: ev.Quantity, Timestamp: ev.Time}
	}
	return types.Limit{Side: ev.Side, Quantity: ev.Quantity, Price: ev.Price, Timestamp: ev.Time}
}

// ReferenceFunc reports the price limit orders are placed around
type ReferenceFunc func() (float64, bool)

// Generator produces events in non-decreasing time order.
// It is not safe for concurrent use and its reference function is called
// from Next, so it must run on the same goroutine as the engine it reads.
type Generator struct {
	cfg       Config
	rng       *rand.Rand
	start     time.Time
	elapsed   float64 // simulated seconds since start
	lastRef   float64
	reference ReferenceFunc
	done      bool
}

func NewGenerator(cfg Config, start time.Time, reference ReferenceFunc) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		start:     start,
		lastRef:   cfg.StartPrice,
		reference: reference,
	}, nil
}

// Next returns the following arrival, or false once the horizon is passed
func (g *Generator) Next() (Event, bool) {
	if g.done {
		return Event{}, false
	}

	totalRate := g.cfg.LimitRate + g.cfg.MarketRate
	g.elapsed += g.rng.ExpFloat64() / totalRate
	offset := time.Duration(g.elapsed * float64(time.Second))
	if offset > g.cfg.Horizon {
		g.done = true
		return Event{}, false
	}

	ev := Event{
		Time:     g.start.Add(offset),
		Type:     types.LimitOrder,
		Side:     types.Sell,
		Quantity: g.quantity(),
	}
	if g.rng.Float64() < g.cfg.BuyProbability {
		ev.Side = types.Buy
	}
	if g.rng.Float64() >= g.cfg.LimitRate/totalRate {
		ev.Type = types.MarketOrder
		return ev, true
	}
	ev.Price = g.limitPrice(ev.Side)
	return ev, true
}

// quantity is 1 plus the floor of an exponential draw, so sizes are whole
// units averaging roughly MeanQuantity
func (g *Generator) quantity() float64 {
	return 1 + math.Floor(g.rng.ExpFloat64()*(g.cfg.MeanQuantity-1))
}

// limitPrice places the order on its passive side of the reference
func (g *Generator) limitPrice(side types.Side) float64 {
	if g.reference != nil {
		if ref, ok := g.reference(); ok && ref > 0 {
			g.lastRef = ref
		}
	}

	ticks := float64(1 + g.rng.Intn(g.cfg.MaxOffsetTicks))
	price := g.lastRef + ticks*g.cfg.Tick
	if side == types.Buy {
		price = g.lastRef - ticks*g.cfg.Tick
	}

	price = math.Round(price/g.cfg.Tick) * g.cfg.Tick
	if price < g.cfg.Tick {
		price = g.cfg.Tick
	}
	return price
}

// Elapsed is the simulated time consumed so far
func (g *Generator) Elapsed() time.Duration {
	return time.Duration(g.elapsed * float64(time.Second))
}
