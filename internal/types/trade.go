package types

import "time"

// Trade represents one execution between a taker and a resting maker.
// Price is always the maker's price.
type Trade struct {
	TradeID      uint64    `json:"trade_id"`
	Timestamp    time.Time `json:"timestamp"`
	TakerOrderID uint64    `json:"taker_order_id"`
	MakerOrderID uint64    `json:"maker_order_id"`
	Price        float64   `json:"price"`
	Quantity     float64   `json:"quantity"`
	TakerSide    Side      `json:"taker_side"`
}

// MakerSide is the side of the resting order consumed by the trade
func (t Trade) MakerSide() Side {
	return t.TakerSide.Opposite()
}

// Notional returns price times quantity
func (t Trade) Notional() float64 {
	return t.Price * t.Quantity
}
