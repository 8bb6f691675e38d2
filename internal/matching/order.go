package matching

import "github.com/PxPatel/lob-simulator/internal/types"

// Re-export types so callers of the engine rarely need the types package
type (
	Side      = types.Side
	OrderType = types.OrderType
	Order     = types.Order
	Trade     = types.Trade
	Intent    = types.Intent
	Limit     = types.Limit
	Market    = types.Market
	Level     = types.Level
	Depth     = types.Depth
)

const (
	Buy  = types.Buy
	Sell = types.Sell

	LimitOrder  = types.LimitOrder
	MarketOrder = types.MarketOrder
)
