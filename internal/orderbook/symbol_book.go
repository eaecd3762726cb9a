// Package orderbook wraps a bid Side Book and an ask Side Book together with
// an order-id -> Order index for one symbol.
package orderbook

import (
	"venue/internal/book"
	"venue/internal/common"
)

// SymbolBook owns one symbol's bid book, ask book, and resting-order index.
// It is not itself safe for concurrent use: callers reach it through the
// engine facade's single lock, so no internal mutex is needed.
type SymbolBook struct {
	Symbol string
	Bids   *book.Book
	Asks   *book.Book

	orders map[string]*common.Order
}

// New creates an empty SymbolBook with the given per-side capacity.
func New(symbol string, capacity int) *SymbolBook {
	return &SymbolBook{
		Symbol: symbol,
		Bids:   book.NewBidBook(capacity),
		Asks:   book.NewAskBook(capacity),
		orders: make(map[string]*common.Order),
	}
}

// sideBook returns the Side Book an order belongs on.
func (s *SymbolBook) sideBook(side common.Side) *book.Book {
	if side == common.Buy {
		return s.Bids
	}
	return s.Asks
}

// AddOrder inserts order into the appropriate side book and indexes it. The
// side book's capacity policy may reject or evict an order; the index is
// kept in sync with whichever order actually ends up resting: the index's
// key set must always equal the union of order ids present in the two side
// books.
func (s *SymbolBook) AddOrder(order *common.Order) bool {
	evicted, admitted := s.sideBook(order.Side).Push(order)
	if evicted != nil {
		s.evictFromIndex(evicted.OrderID)
	}
	if !admitted {
		return false
	}
	s.orders[order.OrderID] = order
	return true
}

// RemoveOrder looks up orderID, removes it from its side book, evicts it
// from the index, and returns it. Returns nil if unknown.
func (s *SymbolBook) RemoveOrder(orderID string) *common.Order {
	order, ok := s.orders[orderID]
	if !ok {
		return nil
	}
	s.sideBook(order.Side).Remove(orderID, order.PriceValue())
	delete(s.orders, orderID)
	return order
}

// GetOrder is a pure lookup; it does not mutate the book.
func (s *SymbolBook) GetOrder(orderID string) *common.Order {
	return s.orders[orderID]
}

// evictFromIndex removes an order evicted by the side book's capacity
// policy (not via RemoveOrder) from the resting-order index. AddOrder calls
// this after Push reports that a level eviction cancelled a different order
// than the one just pushed.
func (s *SymbolBook) evictFromIndex(orderID string) {
	delete(s.orders, orderID)
}
