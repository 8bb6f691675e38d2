// Package strategy implements a simple inventory-aware quoting strategy that
// trades against the matching engine through its public operations only.
package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/lob-simulator/internal/logger"
	"github.com/PxPatel/lob-simulator/internal/types"
)

var ErrInvalidConfig = errors.New("invalid strategy config")

// Book is the slice of the engine the strategy reads and writes.
// *matching.Engine satisfies it.
type Book interface {
	MidPrice() (float64, bool)
	AddLimitOrder(side types.Side, qty, price float64, ts time.Time) (types.Order, error)
	CancelOrder(orderId uint64) bool
	TradesSince(cursor int) ([]types.Trade, int)
}

type Config struct {
	HalfSpread   float64 // distance of each quote from the mid before skew
	Quantity     float64 // size of each quote
	MaxInventory float64 // stop quoting the side that would grow |inventory| past this
	Tick         float64
}

func (c Config) Validate() error {
	switch {
	case !(c.HalfSpread > 0):
		return fmt.Errorf("%w: half spread %v", ErrInvalidConfig, c.HalfSpread)
	case !(c.Quantity > 0):
		return fmt.Errorf("%w: quantity %v", ErrInvalidConfig, c.Quantity)
	case c.MaxInventory < c.Quantity:
		return fmt.Errorf("%w: max inventory %v below quantity %v", ErrInvalidConfig, c.MaxInventory, c.Quantity)
	case !(c.Tick > 0):
		return fmt.Errorf("%w: tick %v", ErrInvalidConfig, c.Tick)
	}
	return nil
}

type quote struct {
	side      types.Side
	remaining decimal.Decimal
}

// MarketMaker keeps at most one bid and one ask resting around the mid.
// Cash and inventory are tracked in decimal so long runs do not drift.
type MarketMaker struct {
	cfg       Config
	active    map[uint64]*quote
	cash      decimal.Decimal
	inventory decimal.Decimal
	cursor    int
	fills     int
	volume    decimal.Decimal
}

func NewMarketMaker(cfg Config) (*MarketMaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MarketMaker{
		cfg:    cfg,
		active: make(map[uint64]*quote),
	}, nil
}

// Sync pulls trades executed since the last call and applies those that
// involve one of the strategy's active orders
func (m *MarketMaker) Sync(book Book) {
	trades, cursor := book.TradesSince(m.cursor)
	m.cursor = cursor
	m.Observe(trades)
}

// Observe attributes trades whose maker or taker is an active quote
func (m *MarketMaker) Observe(trades []types.Trade) {
	for _, trade := range trades {
		if q, ok := m.active[trade.MakerOrderID]; ok {
			m.applyFill(trade.MakerOrderID, q, trade)
		}
		if q, ok := m.active[trade.TakerOrderID]; ok {
			m.applyFill(trade.TakerOrderID, q, trade)
		}
	}
}

func (m *MarketMaker) applyFill(orderId uint64, q *quote, trade types.Trade) {
	qty := decimal.NewFromFloat(trade.Quantity)
	notional := decimal.NewFromFloat(trade.Price).Mul(qty)

	if q.side == types.Buy {
		m.inventory = m.inventory.Add(qty)
		m.cash = m.cash.Sub(notional)
	} else {
		m.inventory = m.inventory.Sub(qty)
		m.cash = m.cash.Add(notional)
	}
	m.fills++
	m.volume = m.volume.Add(qty)

	q.remaining = q.remaining.Sub(qty)
	if !q.remaining.IsPositive() {
		delete(m.active, orderId)
	}
}

// Requote cancels the current quotes and places fresh ones around the mid.
// With no mid price the strategy stays out of the book.
func (m *MarketMaker) Requote(book Book, ts time.Time) error {
	// Fills must be booked before cancelling, or they would be lost
	m.Sync(book)
	m.cancelAll(book)

	mid, ok := book.MidPrice()
	if !ok {
		return nil
	}

	inventory := m.Inventory()
	skew := inventory / m.cfg.MaxInventory * m.cfg.HalfSpread
	bidPrice := m.floorTick(mid - m.cfg.HalfSpread - skew)
	askPrice := m.ceilTick(mid + m.cfg.HalfSpread - skew)
	if askPrice <= bidPrice {
		askPrice = bidPrice + m.cfg.Tick
	}

	var errs []error
	if inventory+m.cfg.Quantity <= m.cfg.MaxInventory && bidPrice > 0 {
		if err := m.place(book, types.Buy, bidPrice, ts); err != nil {
			errs = append(errs, err)
		}
	}
	if inventory-m.cfg.Quantity >= -m.cfg.MaxInventory {
		if err := m.place(book, types.Sell, askPrice, ts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MarketMaker) place(book Book, side types.Side, price float64, ts time.Time) error {
	order, err := book.AddLimitOrder(side, m.cfg.Quantity, price, ts)
	if err != nil {
		return fmt.Errorf("quote %s at %v: %w", side, price, err)
	}
	m.active[order.ID] = &quote{side: side, remaining: decimal.NewFromFloat(order.Quantity)}
	logger.Debug("Quote placed", map[string]interface{}{
		"order_id": order.ID,
		"side":     side,
		"price":    price,
		"quantity": order.Quantity,
	})
	return nil
}

func (m *MarketMaker) cancelAll(book Book) {
	for orderId := range m.active {
		// A false return means the quote already left the book
		book.CancelOrder(orderId)
		delete(m.active, orderId)
	}
}

// Close withdraws every active quote
func (m *MarketMaker) Close(book Book) {
	m.Sync(book)
	m.cancelAll(book)
}

func (m *MarketMaker) floorTick(price float64) float64 {
	return math.Floor(price/m.cfg.Tick+1e-9) * m.cfg.Tick
}

func (m *MarketMaker) ceilTick(price float64) float64 {
	return math.Ceil(price/m.cfg.Tick-1e-9) * m.cfg.Tick
}

func (m *MarketMaker) Inventory() float64 {
	return m.inventory.InexactFloat64()
}

func (m *MarketMaker) Cash() decimal.Decimal {
	return m.cash
}

// PnL marks the inventory at mark and adds it to cash
func (m *MarketMaker) PnL(mark float64) decimal.Decimal {
	return m.cash.Add(m.inventory.Mul(decimal.NewFromFloat(mark)))
}

func (m *MarketMaker) Fills() int {
	return m.fills
}

func (m *MarketMaker) Volume() decimal.Decimal {
	return m.volume
}

// ActiveOrders lists the ids of quotes believed to be resting, ascending
func (m *MarketMaker) ActiveOrders() []uint64 {
	ids := make([]uint64, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
