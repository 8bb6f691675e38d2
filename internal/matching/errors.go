package matching

import "errors"

// Validation errors returned before the book is touched.
var (
	ErrInvalidSide     = errors.New("invalid side")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")

	// ErrDuplicateOrderID means the id sequence handed out an id the book
	// already holds. The order is not booked.
	ErrDuplicateOrderID = errors.New("duplicate order id")
)

// internal outcomes of removing an order by id
var (
	errOrderNotIndexed = errors.New("order not in index")
	errOrderNotInLevel = errors.New("indexed order missing from its price level")
)
