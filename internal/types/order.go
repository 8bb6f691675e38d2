package types

import "time"

// OrderType distinguishes resting limit orders from immediate market orders
type OrderType int8

const (
	LimitOrder OrderType = iota + 1
	MarketOrder
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "LIMIT"
	case MarketOrder:
		return "MARKET"
	}
	return "UNKNOWN"
}

// Order is a single order as seen by the book.
// Quantity is the remaining (unfilled) amount and only ever decreases.
// Price is meaningful for limit orders only.
type Order struct {
	ID               uint64    `json:"order_id"`
	Side             Side      `json:"side"`
	Type             OrderType `json:"type"`
	Price            float64   `json:"price,omitempty"`
	Quantity         float64   `json:"quantity"`
	OriginalQuantity float64   `json:"original_quantity"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewLimitOrder creates a resting order
func NewLimitOrder(id uint64, side Side, price, quantity float64, ts time.Time) *Order {
	return &Order{
		ID:               id,
		Side:             side,
		Type:             LimitOrder,
		Price:            price,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		Timestamp:        ts,
	}
}

// NewMarketOrder creates a priceless taker order
func NewMarketOrder(id uint64, side Side, quantity float64, ts time.Time) *Order {
	return &Order{
		ID:               id,
		Side:             side,
		Type:             MarketOrder,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		Timestamp:        ts,
	}
}

// Filled returns how much of the order has executed so far
func (o *Order) Filled() float64 {
	return o.OriginalQuantity - o.Quantity
}

// IsFilled reports whether nothing remains to execute
func (o *Order) IsFilled() bool {
	return o.Quantity <= 0
}
