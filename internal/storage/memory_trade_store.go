package storage

import (
	"sync"

	"github.com/PxPatel/lob-simulator/internal/types"
)

// InMemoryTradeStore keeps only the N most recent trades
type InMemoryTradeStore struct {
	trades  []types.Trade
	maxSize int
	mutex   sync.RWMutex
}

// NewInMemoryTradeStore creates a new in-memory trade store with a size limit
func NewInMemoryTradeStore(maxSize int) *InMemoryTradeStore {
	if maxSize < 1 {
		maxSize = 1
	}
	return &InMemoryTradeStore{
		trades:  make([]types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *InMemoryTradeStore) Save(trade types.Trade) error {
	return s.SaveBatch([]types.Trade{trade})
}

func (s *InMemoryTradeStore) SaveBatch(trades []types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trades...)

	// Trim to max size, reusing the front of the backing array
	if over := len(s.trades) - s.maxSize; over > 0 {
		n := copy(s.trades, s.trades[over:])
		s.trades = s.trades[:n]
	}

	return nil
}

func (s *InMemoryTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// Clamp limit to actual size
	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	result := make([]types.Trade, limit)
	copy(result, s.trades[len(s.trades)-limit:])
	return result, nil
}

func (s *InMemoryTradeStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.trades)
}

func (s *InMemoryTradeStore) Close() error {
	return nil
}
