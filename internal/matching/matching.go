// Package matching implements the taker/maker matching loop against a
// Symbol Order Book.
package matching

import (
	"sort"
	"time"

	"venue/internal/common"
	"venue/internal/orderbook"
)

// epsilon absorbs float64 rounding noise when deciding whether a remaining
// quantity should be treated as zero.
const epsilon = 1e-9

func isZero(qty float64) bool {
	return qty < epsilon
}

// Process crosses order against the opposite side of book, emitting trades
// via onTrade as each match executes, then resolves the taker's terminal
// state and, if it has an unfilled Limit remainder, parks it on its own
// side. It returns the trades produced, in execution order (best price
// first).
func Process(book *orderbook.SymbolBook, order *common.Order, onTrade func(common.Trade)) []common.Trade {
	var trades []common.Trade

	opposite := book.Asks
	if order.Side == common.Sell {
		opposite = book.Bids
	}

	for order.Remaining() > epsilon {
		maker := opposite.Peek()
		if maker == nil {
			break
		}
		if order.Type == common.Limit && crossed(order, maker) {
			break
		}

		qty := order.Remaining()
		if maker.Remaining() < qty {
			qty = maker.Remaining()
		}

		var trade common.Trade
		if order.Side == common.Buy {
			trade = common.NewTrade(order.Symbol, maker.PriceValue(), qty, order.OrderID, maker.OrderID)
		} else {
			trade = common.NewTrade(order.Symbol, maker.PriceValue(), qty, maker.OrderID, order.OrderID)
		}
		trades = append(trades, trade)
		if onTrade != nil {
			onTrade(trade)
		}

		order.Fill(qty)
		maker.Fill(qty)

		if isZero(maker.Remaining()) {
			maker.Status = common.Filled
			book.RemoveOrder(maker.OrderID)
		} else {
			maker.Status = common.PartiallyFilled
		}
	}

	resolveTaker(book, order)
	return trades
}

// crossed reports whether the opposite side's best price no longer crosses
// a Limit taker's price, i.e. matching must stop.
func crossed(taker, maker *common.Order) bool {
	if taker.Side == common.Buy {
		return maker.PriceValue() > taker.PriceValue()
	}
	return maker.PriceValue() < taker.PriceValue()
}

// resolveTaker sets the taker's terminal status once no further match is
// possible, and parks an unfilled Limit remainder on its own side book.
func resolveTaker(book *orderbook.SymbolBook, order *common.Order) {
	switch order.Type {
	case common.Limit:
		if isZero(order.Remaining()) {
			order.Status = common.Filled
			return
		}
		if isZero(order.FilledQuantity) {
			order.Status = common.New
		} else {
			order.Status = common.PartiallyFilled
		}
		book.AddOrder(order)
	case common.Market:
		// Market orders never rest. A zero-fill market order (empty
		// opposite side) resolves to Cancelled rather than being left in
		// its admission state.
		switch {
		case isZero(order.FilledQuantity):
			order.Status = common.Cancelled
		case isZero(order.Remaining()):
			order.Status = common.Filled
		default:
			order.Status = common.PartiallyFilled
		}
	}
}

// Cancel removes orderID from symbol's book if resting and marks it
// Cancelled; if unknown, it returns a synthetic Cancelled stub so batch
// responses stay total.
func Cancel(book *orderbook.SymbolBook, orderID, symbol string) common.Order {
	order := book.RemoveOrder(orderID)
	if order == nil {
		return common.CancelledStub(orderID, symbol)
	}
	order.Status = common.Cancelled
	order.UpdateTimestamp = time.Now()
	return *order
}

// ProcessBatch partitions orders into buys and sells, sorts each side by
// price (buys descending, sells ascending) to front-run self-competition,
// then submits each side in that order. Once an order on a side fails to
// fill completely, subsequent Limit orders on that side skip matching and
// rest directly; Market orders always go through Process, so they never rest.
func ProcessBatch(book *orderbook.SymbolBook, orders []*common.Order, onTrade func(common.Trade)) []common.Trade {
	var buys, sells []*common.Order
	for _, o := range orders {
		if o.Side == common.Buy {
			buys = append(buys, o)
		} else {
			sells = append(sells, o)
		}
	}
	sort.SliceStable(buys, func(i, j int) bool { return buys[i].PriceValue() > buys[j].PriceValue() })
	sort.SliceStable(sells, func(i, j int) bool { return sells[i].PriceValue() < sells[j].PriceValue() })

	var trades []common.Trade
	trades = append(trades, processSorted(book, buys, onTrade)...)
	trades = append(trades, processSorted(book, sells, onTrade)...)
	return trades
}

func processSorted(book *orderbook.SymbolBook, orders []*common.Order, onTrade func(common.Trade)) []common.Trade {
	var trades []common.Trade
	skip := false
	for _, order := range orders {
		if skip && order.Type == common.Limit {
			if isZero(order.FilledQuantity) {
				order.Status = common.New
			} else {
				order.Status = common.PartiallyFilled
			}
			book.AddOrder(order)
			continue
		}
		trades = append(trades, Process(book, order, onTrade)...)
		if order.Status != common.Filled {
			skip = true
		}
	}
	return trades
}
