package storage

import "github.com/PxPatel/lob-simulator/internal/types"

// TradeStore receives executed trades copied out of the engine's log.
// The engine never writes to a store itself; the simulation driver drains
// new trades with Engine.TradesSince and forwards them here.
type TradeStore interface {
	// Save appends a single trade
	Save(trade types.Trade) error

	// SaveBatch appends trades in the order given
	SaveBatch(trades []types.Trade) error

	// GetRecent returns up to limit of the latest trades, oldest first.
	// limit <= 0 means everything the store still holds.
	GetRecent(limit int) ([]types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}
