package matching

import "github.com/PxPatel/lob-simulator/internal/types"

type location struct {
	side  types.Side
	price float64
}

// orderIndex locates live resting orders without scanning the book.
// An id missing from the index is not live.
type orderIndex struct {
	entries map[uint64]location
}

func newOrderIndex() *orderIndex {
	return &orderIndex{entries: make(map[uint64]location)}
}

func (idx *orderIndex) register(orderId uint64, side types.Side, price float64) {
	idx.entries[orderId] = location{side: side, price: price}
}

func (idx *orderIndex) unregister(orderId uint64) {
	delete(idx.entries, orderId)
}

func (idx *orderIndex) locate(orderId uint64) (location, bool) {
	loc, ok := idx.entries[orderId]
	return loc, ok
}

func (idx *orderIndex) len() int {
	return len(idx.entries)
}
