package matching

import (
	"github.com/google/btree"

	"github.com/PxPatel/lob-simulator/internal/types"
)

const trackerDegree = 32

// priceTracker keeps candidate prices for one side ordered best first.
// Entries are never removed when a level empties; best() drops stale
// heads lazily by asking the level store whether the price is still live.
type priceTracker struct {
	prices *btree.BTreeG[float64]
	live   func(price float64) bool
}

func newPriceTracker(side types.Side, live func(float64) bool) *priceTracker {
	less := func(a, b float64) bool { return a < b }
	if side == types.Buy {
		// highest bid first
		less = func(a, b float64) bool { return a > b }
	}
	return &priceTracker{
		prices: btree.NewG[float64](trackerDegree, less),
		live:   live,
	}
}

// push records a price whose level was just created.
// A price left over from an earlier, vacated level is simply reused.
func (t *priceTracker) push(price float64) {
	t.prices.ReplaceOrInsert(price)
}

func (t *priceTracker) best() (float64, bool) {
	for {
		price, ok := t.prices.Min()
		if !ok {
			return 0, false
		}
		if t.live(price) {
			return price, true
		}
		t.prices.DeleteMin()
	}
}

// walk visits live prices best first until fn returns false.
// Stale entries are skipped, not removed, so walk never mutates the tracker.
func (t *priceTracker) walk(fn func(price float64) bool) {
	t.prices.Ascend(func(price float64) bool {
		if !t.live(price) {
			return true
		}
		return fn(price)
	})
}

// size counts entries including stale ones
func (t *priceTracker) size() int {
	return t.prices.Len()
}
