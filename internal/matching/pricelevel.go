package matching

import "github.com/PxPatel/lob-simulator/internal/types"

// priceLevel holds every resting order at one price in arrival order.
// Orders are appended at the tail and consumed from the head.
type priceLevel struct {
	price  float64
	orders []*types.Order
}

func (level *priceLevel) append(order *types.Order) {
	level.orders = append(level.orders, order)
}

func (level *priceLevel) head() *types.Order {
	if len(level.orders) == 0 {
		return nil
	}
	return level.orders[0]
}

func (level *priceLevel) popHead() *types.Order {
	if len(level.orders) == 0 {
		return nil
	}
	order := level.orders[0]
	level.orders[0] = nil
	level.orders = level.orders[1:]
	return order
}

// remove drops the order with the given id, keeping the others in sequence
func (level *priceLevel) remove(orderId uint64) (*types.Order, bool) {
	for i, order := range level.orders {
		if order.ID == orderId {
			copy(level.orders[i:], level.orders[i+1:])
			level.orders[len(level.orders)-1] = nil
			level.orders = level.orders[:len(level.orders)-1]
			return order, true
		}
	}
	return nil, false
}

func (level *priceLevel) empty() bool {
	return len(level.orders) == 0
}

func (level *priceLevel) totalQuantity() float64 {
	total := 0.0
	for _, order := range level.orders {
		total += order.Quantity
	}
	return total
}

// levelStore maps price to level for one side of the book.
// It imposes no ordering across prices; that is the tracker's job.
type levelStore struct {
	levels map[float64]*priceLevel
}

func newLevelStore() *levelStore {
	return &levelStore{levels: make(map[float64]*priceLevel)}
}

// levelFor returns the level at price, creating it if needed.
// created reports whether the level did not exist before the call.
func (s *levelStore) levelFor(price float64) (level *priceLevel, created bool) {
	if level, ok := s.levels[price]; ok {
		return level, false
	}
	level = &priceLevel{price: price}
	s.levels[price] = level
	return level, true
}

func (s *levelStore) get(price float64) (*priceLevel, bool) {
	level, ok := s.levels[price]
	return level, ok
}

// live reports whether a non-empty level exists at price
func (s *levelStore) live(price float64) bool {
	level, ok := s.levels[price]
	return ok && !level.empty()
}

func (s *levelStore) removeIfEmpty(price float64) bool {
	level, ok := s.levels[price]
	if !ok || !level.empty() {
		return false
	}
	delete(s.levels, price)
	return true
}

func (s *levelStore) len() int {
	return len(s.levels)
}
