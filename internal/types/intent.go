package types

import "time"

// Intent is a request to place an order. It is either a Limit or a Market.
type Intent interface {
	OrderType() OrderType
	isIntent()
}

// Limit asks the book to rest Quantity at Price
type Limit struct {
	Side      Side
	Quantity  float64
	Price     float64
	Timestamp time.Time
}

// Market asks the book to sweep the opposite side for Quantity
type Market struct {
	Side      Side
	Quantity  float64
	Timestamp time.Time
}

func (Limit) OrderType() OrderType  { return LimitOrder }
func (Market) OrderType() OrderType { return MarketOrder }

func (Limit) isIntent()  {}
func (Market) isIntent() {}
