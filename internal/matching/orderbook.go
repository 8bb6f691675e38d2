package matching

import (
	"github.com/PxPatel/lob-simulator/internal/types"
)

/*
Layout of one side of the book:
  levels  price -> FIFO of *Order, only non-empty levels are kept
  best    btree of prices ordered best first, may still hold prices of
          levels that have since emptied; they are dropped when they reach
          the head during a best price query
Plus one index shared by both sides: order id -> (side, price), so a cancel
goes straight to its level instead of scanning every level.

All three must change together. Nothing here is safe for concurrent use.
*/

type bookSide struct {
	side   types.Side
	levels *levelStore
	best   *priceTracker
}

func newBookSide(side types.Side) *bookSide {
	levels := newLevelStore()
	return &bookSide{
		side:   side,
		levels: levels,
		best:   newPriceTracker(side, levels.live),
	}
}

// bestLevel returns the live level at the best price, if any
func (bs *bookSide) bestLevel() (*priceLevel, bool) {
	price, ok := bs.best.best()
	if !ok {
		return nil, false
	}
	return bs.levels.get(price)
}

type OrderBook struct {
	bids  *bookSide
	asks  *bookSide
	index *orderIndex
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:  newBookSide(types.Buy),
		asks:  newBookSide(types.Sell),
		index: newOrderIndex(),
	}
}

func (orderBook *OrderBook) sideOf(side types.Side) *bookSide {
	if side == types.Buy {
		return orderBook.bids
	}
	return orderBook.asks
}

// addOrder rests a limit order at the tail of its price level.
// It never matches, even when the price crosses the opposite side.
func (orderBook *OrderBook) addOrder(newOrder *types.Order) bool {
	if newOrder == nil || !newOrder.Side.Valid() || newOrder.Type != types.LimitOrder {
		return false
	}
	if _, exists := orderBook.index.locate(newOrder.ID); exists {
		return false
	}

	bs := orderBook.sideOf(newOrder.Side)
	level, created := bs.levels.levelFor(newOrder.Price)
	level.append(newOrder)
	if created {
		bs.best.push(newOrder.Price)
	}
	orderBook.index.register(newOrder.ID, newOrder.Side, newOrder.Price)
	return true
}

// removeOrder takes a resting order out of the book by id.
// When the index entry exists but the order is not in its level, the entry
// is dropped anyway and errOrderNotInLevel is returned.
func (orderBook *OrderBook) removeOrder(orderId uint64) (*types.Order, error) {
	loc, ok := orderBook.index.locate(orderId)
	if !ok {
		return nil, errOrderNotIndexed
	}
	orderBook.index.unregister(orderId)

	bs := orderBook.sideOf(loc.side)
	level, ok := bs.levels.get(loc.price)
	if !ok {
		return nil, errOrderNotInLevel
	}
	removed, ok := level.remove(orderId)
	if !ok {
		return nil, errOrderNotInLevel
	}

	// Clean up empty price level
	bs.levels.removeIfEmpty(loc.price)
	return removed, nil
}

// consumeHead removes the fully filled order at the front of a level
func (orderBook *OrderBook) consumeHead(bs *bookSide, level *priceLevel) {
	filled := level.popHead()
	if filled != nil {
		orderBook.index.unregister(filled.ID)
	}
	bs.levels.removeIfEmpty(level.price)
}

// SearchById returns a copy of the live resting order with the given id
func (orderBook *OrderBook) SearchById(orderId uint64) (types.Order, bool) {
	loc, ok := orderBook.index.locate(orderId)
	if !ok {
		return types.Order{}, false
	}
	level, ok := orderBook.sideOf(loc.side).levels.get(loc.price)
	if !ok {
		return types.Order{}, false
	}
	for _, order := range level.orders {
		if order.ID == orderId {
			return *order, true
		}
	}
	return types.Order{}, false
}

func (orderBook *OrderBook) GetBestBid() (float64, bool) {
	return orderBook.bids.best.best()
}

func (orderBook *OrderBook) GetBestAsk() (float64, bool) {
	return orderBook.asks.best.best()
}

// GetOrdersAt returns a copy of the queue at price, in time priority
func (orderBook *OrderBook) GetOrdersAt(side types.Side, price float64) []types.Order {
	if !side.Valid() {
		return nil
	}
	level, ok := orderBook.sideOf(side).levels.get(price)
	if !ok {
		return nil
	}
	orders := make([]types.Order, len(level.orders))
	for i, order := range level.orders {
		orders[i] = *order
	}
	return orders
}

// Levels returns the top n aggregated levels of one side in priority order
func (orderBook *OrderBook) Levels(side types.Side, n int) []types.Level {
	if n <= 0 || !side.Valid() {
		return []types.Level{}
	}
	bs := orderBook.sideOf(side)
	levels := make([]types.Level, 0, min(n, bs.levels.len()))
	bs.best.walk(func(price float64) bool {
		if len(levels) >= n {
			return false
		}
		level, _ := bs.levels.get(price)
		levels = append(levels, types.Level{
			Price:      price,
			Quantity:   level.totalQuantity(),
			OrderCount: len(level.orders),
		})
		return true
	})
	return levels
}

// OrderCount returns how many orders are resting on both sides
func (orderBook *OrderBook) OrderCount() int {
	return orderBook.index.len()
}

// LevelCount returns the number of live levels on one side
func (orderBook *OrderBook) LevelCount(side types.Side) int {
	if !side.Valid() {
		return 0
	}
	return orderBook.sideOf(side).levels.len()
}
