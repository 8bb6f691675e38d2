package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/lob-simulator/internal/types"
)

func makeTrades(n int) []types.Trade {
	trades := make([]types.Trade, n)
	for i := range trades {
		trades[i] = types.Trade{
			TradeID:      uint64(i + 1),
			Timestamp:    time.Unix(int64(i), 0).UTC(),
			TakerOrderID: uint64(100 + i),
			MakerOrderID: uint64(i + 1),
			Price:        100 + float64(i),
			Quantity:     1,
			TakerSide:    types.Buy,
		}
	}
	return trades
}

func TestInMemoryTradeStoreTrims(t *testing.T) {
	store := NewInMemoryTradeStore(3)
	trades := makeTrades(5)

	require.NoError(t, store.SaveBatch(trades[:2]))
	require.NoError(t, store.Save(trades[2]))
	require.NoError(t, store.SaveBatch(trades[3:]))
	assert.Equal(t, 3, store.Len())

	recent, err := store.GetRecent(0)
	require.NoError(t, err)
	assert.Equal(t, trades[2:], recent, "oldest trades evicted first")

	recent, err = store.GetRecent(2)
	require.NoError(t, err)
	assert.Equal(t, trades[3:], recent)

	recent, err = store.GetRecent(50)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestInMemoryTradeStoreEmpty(t *testing.T) {
	store := NewInMemoryTradeStore(0)
	recent, err := store.GetRecent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	require.NoError(t, store.SaveBatch(makeTrades(2)))
	assert.Equal(t, 1, store.Len(), "size clamped to at least one")
	assert.NoError(t, store.Close())
}

func readTradeLog(t *testing.T, path string) []types.Trade {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var trades []types.Trade
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var trade types.Trade
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &trade))
		trades = append(trades, trade)
	}
	require.NoError(t, scanner.Err())
	return trades
}

func TestFileTradeStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.log")
	trades := makeTrades(3)

	store, err := NewFileTradeStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(trades[0]))
	require.NoError(t, store.SaveBatch(trades[1:]))

	// Flushed per call, readable before Close
	assert.Equal(t, trades, readTradeLog(t, path))

	recent, err := store.GetRecent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.Error(t, store.Save(trades[0]))

	// Reopening appends
	store, err = NewFileTradeStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(trades[0]))
	require.NoError(t, store.Close())
	assert.Len(t, readTradeLog(t, path), 4)
}

func TestFileTradeStoreBadPath(t *testing.T) {
	_, err := NewFileTradeStore(filepath.Join(t.TempDir(), "missing", "trades.log"))
	assert.Error(t, err)
}

type failingStore struct {
	InMemoryTradeStore
	err error
}

func (f *failingStore) SaveBatch([]types.Trade) error { return f.err }
func (f *failingStore) Save(types.Trade) error        { return f.err }

func TestCompositeTradeStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.log")
	file, err := NewFileTradeStore(path)
	require.NoError(t, err)
	memory := NewInMemoryTradeStore(10)

	// File store first: reads fall through to memory
	composite := NewCompositeTradeStore(file, memory)
	trades := makeTrades(4)
	require.NoError(t, composite.SaveBatch(trades))
	require.NoError(t, composite.SaveBatch(nil))

	recent, err := composite.GetRecent(2)
	require.NoError(t, err)
	assert.Equal(t, trades[2:], recent)

	require.NoError(t, composite.Close())
	assert.Equal(t, trades, readTradeLog(t, path))
}

func TestCompositeTradeStoreJoinsErrors(t *testing.T) {
	boom := errors.New("disk full")
	memory := NewInMemoryTradeStore(10)
	composite := NewCompositeTradeStore(&failingStore{err: boom}, memory)

	err := composite.Save(makeTrades(1)[0])
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, memory.Len(), "healthy stores still receive the write")

	recent, err := NewCompositeTradeStore().GetRecent(5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
