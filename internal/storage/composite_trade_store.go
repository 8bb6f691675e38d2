package storage

import (
	"errors"

	"github.com/PxPatel/lob-simulator/internal/types"
)

// CompositeTradeStore combines multiple TradeStore implementations.
// Writes go to ALL stores, reads come from the FIRST store that has data.
// Example: CompositeTradeStore(memoryStore, fileStore) keeps recent trades
// readable from memory and the full audit trail on disk.
type CompositeTradeStore struct {
	stores []TradeStore
}

// NewCompositeTradeStore creates a composite store from multiple stores
func NewCompositeTradeStore(stores ...TradeStore) *CompositeTradeStore {
	return &CompositeTradeStore{
		stores: stores,
	}
}

func (c *CompositeTradeStore) Save(trade types.Trade) error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Save(trade); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeTradeStore) SaveBatch(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	var errs []error
	for _, store := range c.stores {
		if err := store.SaveBatch(trades); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	// Read from first store that returns data
	for _, store := range c.stores {
		trades, err := store.GetRecent(limit)
		if err != nil {
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	return []types.Trade{}, nil
}

func (c *CompositeTradeStore) Close() error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
