package matching

import (
	"fmt"
	"math"
	"time"

	"github.com/PxPatel/lob-simulator/internal/logger"
	"github.com/PxPatel/lob-simulator/internal/types"
)

// Engine matches orders for a single instrument.
//
// Every method runs to completion before returning and the engine keeps no
// goroutines of its own. It is not safe for concurrent use: the level store,
// price trackers and order index are updated together, so embedding code must
// funnel all calls through a single owner.
type Engine struct {
	orderBook *OrderBook
	trades    []types.Trade
	lastID    uint64
	clock     func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock Submit uses for intents without a timestamp
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithTradeCapacity preallocates room for n trades in the log
func WithTradeCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.trades = make([]types.Trade, 0, n)
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		orderBook: NewOrderBook(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetOrderBook exposes the underlying book for inspection. Its exported
// methods only read; every change goes through the engine.
func (e *Engine) GetOrderBook() *OrderBook {
	return e.orderBook
}

func (e *Engine) nextOrderID() uint64 {
	e.lastID++
	return e.lastID
}

func validateSide(side types.Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSide, int8(side))
	}
	return nil
}

// QuantityEpsilon is the smallest quantity the engine accepts. Remainders
// left below it by a fill count as zero.
const QuantityEpsilon = 1e-9

func validateQuantity(qty float64) error {
	if !(qty >= QuantityEpsilon) || math.IsInf(qty, 0) {
		return fmt.Errorf("%w: %v must be at least %v", ErrInvalidQuantity, qty, QuantityEpsilon)
	}
	return nil
}

// snapQuantity drops floating point residue left after subtracting a fill
func snapQuantity(qty float64) float64 {
	if qty < QuantityEpsilon {
		return 0
	}
	return qty
}

func validatePrice(price float64) error {
	if !(price > 0) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: %v must be positive", ErrInvalidPrice, price)
	}
	return nil
}

// AddLimitOrder rests a new order at the tail of its price level and returns
// a copy of it. No matching is attempted, even if the price crosses the
// opposite side.
func (e *Engine) AddLimitOrder(side types.Side, qty, price float64, ts time.Time) (types.Order, error) {
	if err := validateSide(side); err != nil {
		return types.Order{}, err
	}
	if err := validateQuantity(qty); err != nil {
		return types.Order{}, err
	}
	if err := validatePrice(price); err != nil {
		return types.Order{}, err
	}

	order := types.NewLimitOrder(e.nextOrderID(), side, price, qty, ts)
	if !e.orderBook.addOrder(order) {
		return types.Order{}, fmt.Errorf("%w: %d", ErrDuplicateOrderID, order.ID)
	}
	return *order, nil
}

// MarketOrder sweeps the opposite side until qty is filled or liquidity runs
// out. Whatever is left unfilled is discarded; the returned order's Quantity
// holds that balance.
func (e *Engine) MarketOrder(side types.Side, qty float64, ts time.Time) (types.Order, error) {
	if err := validateSide(side); err != nil {
		return types.Order{}, err
	}
	if err := validateQuantity(qty); err != nil {
		return types.Order{}, err
	}

	taker := types.NewMarketOrder(e.nextOrderID(), side, qty, ts)
	e.sweep(taker)
	return *taker, nil
}

func (e *Engine) sweep(taker *types.Order) {
	opposite := e.orderBook.sideOf(taker.Side.Opposite())

	for !taker.IsFilled() {
		level, ok := opposite.bestLevel()
		// Stop once the opposite side has no liquidity
		if !ok {
			break
		}
		maker := level.head()

		// Determine fill size
		fillSize := math.Min(taker.Quantity, maker.Quantity)

		e.recordTrade(taker, maker, fillSize)

		// Update sizes
		taker.Quantity = snapQuantity(taker.Quantity - fillSize)
		maker.Quantity = snapQuantity(maker.Quantity - fillSize)

		// Remove if fully filled
		if maker.IsFilled() {
			e.orderBook.consumeHead(opposite, level)
		}
	}
}

func (e *Engine) recordTrade(taker, maker *types.Order, size float64) {
	e.trades = append(e.trades, types.Trade{
		TradeID:      uint64(len(e.trades) + 1),
		Timestamp:    taker.Timestamp,
		TakerOrderID: taker.ID,
		MakerOrderID: maker.ID,
		Price:        maker.Price, // Always execute at resting order price
		Quantity:     size,
		TakerSide:    taker.Side,
	})
}

// Submit dispatches an intent to AddLimitOrder or MarketOrder.
// A zero timestamp is replaced by the engine clock.
func (e *Engine) Submit(intent types.Intent) (types.Order, error) {
	switch in := intent.(type) {
	case types.Limit:
		return e.AddLimitOrder(in.Side, in.Quantity, in.Price, e.stamp(in.Timestamp))
	case types.Market:
		return e.MarketOrder(in.Side, in.Quantity, e.stamp(in.Timestamp))
	default:
		return types.Order{}, fmt.Errorf("unsupported intent %T", intent)
	}
}

func (e *Engine) stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return e.clock()
	}
	return ts
}

// CancelOrder removes a resting order. It returns false when the id is not
// live: never issued, already filled, or already cancelled.
func (e *Engine) CancelOrder(orderId uint64) bool {
	_, err := e.orderBook.removeOrder(orderId)
	switch err {
	case nil:
		return true
	case errOrderNotInLevel:
		logger.Warn("Order index out of sync with price levels", map[string]interface{}{
			"order_id": orderId,
		})
	}
	return false
}

func (e *Engine) BestBid() (float64, bool) {
	return e.orderBook.GetBestBid()
}

func (e *Engine) BestAsk() (float64, bool) {
	return e.orderBook.GetBestAsk()
}

// MidPrice is the average of the best bid and best ask
func (e *Engine) MidPrice() (float64, bool) {
	bid, ok := e.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := e.BestAsk()
	if !ok {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Spread is best ask minus best bid; negative when the book is crossed
func (e *Engine) Spread() (float64, bool) {
	bid, ok := e.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := e.BestAsk()
	if !ok {
		return 0, false
	}
	return ask - bid, true
}

// Depth returns at most n levels per side with their total resting quantity
func (e *Engine) Depth(n int) types.Depth {
	return types.Depth{
		Bids: e.orderBook.Levels(types.Buy, n),
		Asks: e.orderBook.Levels(types.Sell, n),
	}
}

// Order returns a copy of a live resting order
func (e *Engine) Order(orderId uint64) (types.Order, bool) {
	return e.orderBook.SearchById(orderId)
}

func (e *Engine) OpenOrders() int {
	return e.orderBook.OrderCount()
}

// Trades returns a copy of the full trade log in execution order
func (e *Engine) Trades() []types.Trade {
	trades := make([]types.Trade, len(e.trades))
	copy(trades, e.trades)
	return trades
}

// TradesSince returns trades appended after cursor along with the cursor to
// pass next time. Start with cursor 0.
func (e *Engine) TradesSince(cursor int) ([]types.Trade, int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(e.trades) {
		return nil, len(e.trades)
	}
	trades := make([]types.Trade, len(e.trades)-cursor)
	copy(trades, e.trades[cursor:])
	return trades, len(e.trades)
}

func (e *Engine) TradeCount() int {
	return len(e.trades)
}
