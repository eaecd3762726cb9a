// Package book implements the Side Book: a bounded, price-sorted,
// FIFO-within-price container of resting orders for one side of one
// symbol's market, backed by a balanced tree of per-price queues.
package book

import (
	"venue/internal/common"

	"github.com/tidwall/btree"
)

// PriceLevel is a FIFO queue of resting orders all sharing one price.
type PriceLevel struct {
	Price  float64
	Orders []*common.Order
}

// DefaultCapacity is the default number of resting orders a side may hold
// for one symbol.
const DefaultCapacity = 200

// Book is one side (bid or ask) of one symbol's order book.
type Book struct {
	side     common.Side
	capacity int
	size     int
	levels   *btree.BTreeG[*PriceLevel]
}

// NewBidBook returns an empty bid-side book: best = highest price, ties
// broken by earliest arrival.
func NewBidBook(capacity int) *Book {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Book{
		side:     common.Buy,
		capacity: capacity,
		levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price > b.Price
		}),
	}
}

// NewAskBook returns an empty ask-side book: best = lowest price, ties
// broken by earliest arrival.
func NewAskBook(capacity int) *Book {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Book{
		side:     common.Sell,
		capacity: capacity,
		levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price < b.Price
		}),
	}
}

// Side reports which side this book holds.
func (b *Book) Side() common.Side { return b.side }

// Size is the number of resting orders currently held.
func (b *Book) Size() int { return b.size }

// Peek returns the best order without removing it, or nil if empty.
func (b *Book) Peek() *common.Order {
	level, ok := b.levels.Min()
	if !ok || len(level.Orders) == 0 {
		return nil
	}
	return level.Orders[0]
}

// Pop removes and returns the best order, or nil if empty.
func (b *Book) Pop() *common.Order {
	level, ok := b.levels.Min()
	if !ok || len(level.Orders) == 0 {
		return nil
	}
	order := level.Orders[0]
	level.Orders = level.Orders[1:]
	if len(level.Orders) == 0 {
		b.levels.Delete(level)
	}
	b.size--
	return order
}

// PeekN returns up to k of the best resting orders, best first.
func (b *Book) PeekN(k int) []*common.Order {
	if k <= 0 {
		return nil
	}
	out := make([]*common.Order, 0, k)
	b.levels.Scan(func(level *PriceLevel) bool {
		for _, o := range level.Orders {
			out = append(out, o)
			if len(out) == k {
				return false
			}
		}
		return true
	})
	return out
}

// PeekLevels returns up to k price levels, best first, with each level's
// quantity the sum of its resting orders' remaining quantity (used for
// depth snapshots).
func (b *Book) PeekLevels(k int) []common.Level {
	if k <= 0 {
		return nil
	}
	out := make([]common.Level, 0, k)
	b.levels.Scan(func(level *PriceLevel) bool {
		var qty float64
		for _, o := range level.Orders {
			qty += o.Remaining()
		}
		out = append(out, common.Level{Price: level.Price, Quantity: qty})
		return len(out) < k
	})
	return out
}

// worst returns the level furthest from the best price (the tree's Max,
// given the comparators above always put the best level at Min).
func (b *Book) worst() (*PriceLevel, bool) {
	return b.levels.Max()
}

// Push inserts order in sorted position, preserving time priority at equal
// price (new arrivals land after existing equals because they are appended
// to the level's tail). If the book is full, the incoming order is compared
// against the worst resting order: if no better, it is rejected (status set
// to Cancelled, not inserted, returns false, evicted is nil); otherwise the
// worst resting order is evicted (status set to Cancelled, returned as
// evicted) to make room.
func (b *Book) Push(order *common.Order) (evicted *common.Order, admitted bool) {
	if b.size >= b.capacity {
		worst, ok := b.worst()
		if !ok {
			return nil, false
		}
		worstOrder := worst.Orders[len(worst.Orders)-1]
		if !b.better(order.PriceValue(), worstOrder.PriceValue()) {
			order.Status = common.Cancelled
			return nil, false
		}
		worstOrder.Status = common.Cancelled
		worst.Orders = worst.Orders[:len(worst.Orders)-1]
		if len(worst.Orders) == 0 {
			b.levels.Delete(worst)
		}
		b.size--
		evicted = worstOrder
	}

	if level, ok := b.levels.Get(&PriceLevel{Price: order.PriceValue()}); ok {
		level.Orders = append(level.Orders, order)
	} else {
		b.levels.Set(&PriceLevel{Price: order.PriceValue(), Orders: []*common.Order{order}})
	}
	b.size++
	return evicted, true
}

// better reports whether price a is strictly preferable to price b on this
// side (higher for bids, lower for asks).
func (b *Book) better(a, price float64) bool {
	if b.side == common.Buy {
		return a > price
	}
	return a < price
}

// Remove evicts the resting order with orderID at the given price, if
// present. Returns true if an order was removed.
func (b *Book) Remove(orderID string, price float64) bool {
	level, ok := b.levels.Get(&PriceLevel{Price: price})
	if !ok {
		return false
	}
	for i, o := range level.Orders {
		if o.OrderID == orderID {
			level.Orders = append(level.Orders[:i], level.Orders[i+1:]...)
			if len(level.Orders) == 0 {
				b.levels.Delete(level)
			}
			b.size--
			return true
		}
	}
	return false
}
