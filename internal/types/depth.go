package types

// Level is an aggregated view of one price level
type Level struct {
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
	OrderCount int     `json:"order_count"`
}

// Depth is a point-in-time snapshot of the top of both sides.
// Bids are ordered highest price first, asks lowest price first.
type Depth struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}
