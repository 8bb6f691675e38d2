package matching

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/lob-simulator/internal/logger"
	"github.com/PxPatel/lob-simulator/internal/types"
)

func TestPriceTrackerOrdering(t *testing.T) {
	liveSet := map[float64]bool{}
	live := func(p float64) bool { return liveSet[p] }

	bids := newPriceTracker(types.Buy, live)
	asks := newPriceTracker(types.Sell, live)
	for _, p := range []float64{100, 102, 101} {
		liveSet[p] = true
		bids.push(p)
		asks.push(p)
	}

	best, ok := bids.best()
	require.True(t, ok)
	assert.Equal(t, 102.0, best)

	best, ok = asks.best()
	require.True(t, ok)
	assert.Equal(t, 100.0, best)
}

func TestPriceTrackerLazyCleanup(t *testing.T) {
	liveSet := map[float64]bool{99: true, 100: true, 101: true}
	tracker := newPriceTracker(types.Sell, func(p float64) bool { return liveSet[p] })
	for p := range liveSet {
		tracker.push(p)
	}

	// Vacate the two best prices; nothing is removed until queried
	liveSet[99] = false
	liveSet[100] = false
	assert.Equal(t, 3, tracker.size())

	var walked []float64
	tracker.walk(func(p float64) bool {
		walked = append(walked, p)
		return true
	})
	assert.Equal(t, []float64{101}, walked)
	assert.Equal(t, 3, tracker.size(), "walk must not drop stale entries")

	best, ok := tracker.best()
	require.True(t, ok)
	assert.Equal(t, 101.0, best)
	assert.Equal(t, 1, tracker.size(), "stale heads dropped by best()")

	liveSet[101] = false
	_, ok = tracker.best()
	assert.False(t, ok)
	assert.Equal(t, 0, tracker.size())
}

func TestPriceTrackerRepushDoesNotDuplicate(t *testing.T) {
	tracker := newPriceTracker(types.Buy, func(float64) bool { return true })
	tracker.push(100)
	tracker.push(100)
	assert.Equal(t, 1, tracker.size())
}

// The vacated price stays in the tracker while the book reports the next one
func TestCancelLeavesStaleTrackerEntry(t *testing.T) {
	engine := NewEngine()
	now := time.Unix(0, 0)

	best, err := engine.AddLimitOrder(types.Sell, 1, 101, now)
	require.NoError(t, err)
	_, err = engine.AddLimitOrder(types.Sell, 1, 102, now)
	require.NoError(t, err)

	require.True(t, engine.CancelOrder(best.ID))
	assert.Equal(t, 2, engine.orderBook.asks.best.size())
	_, exists := engine.orderBook.asks.levels.get(101)
	assert.False(t, exists, "empty level deleted from the store")

	ask, ok := engine.BestAsk()
	require.True(t, ok)
	assert.Equal(t, 102.0, ask)
	assert.Equal(t, 1, engine.orderBook.asks.best.size())
}

func TestCancelWithCorruptIndex(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(nil)

	engine := NewEngine()
	_, err := engine.AddLimitOrder(types.Buy, 1, 100, time.Unix(0, 0))
	require.NoError(t, err)

	// Index entry pointing at a level that does not hold the order
	engine.orderBook.index.register(999, types.Buy, 100)
	assert.False(t, engine.CancelOrder(999))
	_, ok := engine.orderBook.index.locate(999)
	assert.False(t, ok, "stale index entry dropped")
	assert.Contains(t, buf.String(), "Order index out of sync")
	assert.Contains(t, buf.String(), "order_id=999")

	// Index entry pointing at a price with no level at all
	engine.orderBook.index.register(1000, types.Sell, 105)
	assert.False(t, engine.CancelOrder(1000))

	// The genuine order is unaffected
	assert.Equal(t, 1, engine.OpenOrders())
	bid, ok := engine.BestBid()
	require.True(t, ok)
	assert.Equal(t, 100.0, bid)
}

func TestPriceLevelQueue(t *testing.T) {
	level := &priceLevel{price: 100}
	for id := uint64(1); id <= 4; id++ {
		level.append(types.NewLimitOrder(id, types.Buy, 100, float64(id), time.Time{}))
	}
	assert.Equal(t, 10.0, level.totalQuantity())

	removed, ok := level.remove(3)
	require.True(t, ok)
	assert.Equal(t, uint64(3), removed.ID)
	_, ok = level.remove(3)
	assert.False(t, ok)

	assert.Equal(t, uint64(1), level.popHead().ID)
	assert.Equal(t, uint64(2), level.head().ID)
	assert.Equal(t, uint64(2), level.popHead().ID)
	assert.Equal(t, uint64(4), level.popHead().ID)
	assert.True(t, level.empty())
	assert.Nil(t, level.popHead())
	assert.Nil(t, level.head())
}

func TestLevelStore(t *testing.T) {
	store := newLevelStore()

	level, created := store.levelFor(100)
	assert.True(t, created)
	again, created := store.levelFor(100)
	assert.False(t, created)
	assert.Same(t, level, again)

	assert.False(t, store.live(100), "empty level is not live")
	assert.True(t, store.removeIfEmpty(100))
	assert.Equal(t, 0, store.len())

	level, _ = store.levelFor(100)
	level.append(types.NewLimitOrder(1, types.Sell, 100, 1, time.Time{}))
	assert.True(t, store.live(100))
	assert.False(t, store.removeIfEmpty(100))
}
