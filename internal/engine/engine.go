// Package engine is the matching venue's facade: it maps symbol to Symbol
// Order Book (created lazily), drives the trade tape and candlestick
// aggregator on every match, and exposes the venue's public operations under
// a single coarse lock.
//
// Spot and futures are each one instance of Engine; two independent books
// sharing this one design. Each is constructed and owned explicitly by
// internal/venue rather than reached through a package-level global.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"venue/internal/candles"
	"venue/internal/common"
	"venue/internal/matching"
	"venue/internal/orderbook"
	"venue/internal/tape"
)

// Admission errors: the engine never enters an inconsistent state on a
// malformed or unrecognised request.
var (
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrUnknownInterval = errors.New("unknown interval")
	ErrMissingPrice    = errors.New("limit order requires a price")
	ErrUnexpectedPrice = errors.New("market order must not specify a price")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptyBatch      = errors.New("batch must contain at least one order")
)

// Options configures the resource limits an Engine enforces.
type Options struct {
	SideCapacity int // per side, per symbol; default book.DefaultCapacity
	TapeCapacity int // per symbol; default tape.DefaultCapacity
	MaxBars      int // per (symbol, interval); default candles.DefaultMaxBars
}

// Engine is one matching venue (either spot or futures). It is safe for
// concurrent use: every public method holds engine.mu for its entire
// duration, making matching atomic per request. No public method calls
// another public method, so a single non-reentrant mutex suffices.
type Engine struct {
	mu   sync.Mutex
	opts Options

	books   map[string]*orderbook.SymbolBook
	tape    *tape.Tape
	candles *candles.Aggregator

	knownSymbols map[string]bool
}

// New constructs an Engine that only admits orders for the given symbols.
func New(symbols []string, opts Options) *Engine {
	known := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		known[s] = true
	}
	return &Engine{
		opts:         opts,
		books:        make(map[string]*orderbook.SymbolBook),
		tape:         tape.New(opts.TapeCapacity),
		candles:      candles.New(opts.MaxBars),
		knownSymbols: known,
	}
}

// OrderRequest is the admission-time shape of a create-order call.
type OrderRequest struct {
	Symbol        string
	Side          common.Side
	Type          common.OrderType
	Quantity      float64
	Price         *float64
	ClientOrderID string
	IsFutures     bool
}

func (e *Engine) validate(req OrderRequest) error {
	if !e.knownSymbols[req.Symbol] {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, req.Symbol)
	}
	if req.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if req.Type == common.Limit && req.Price == nil {
		return ErrMissingPrice
	}
	if req.Type == common.Market && req.Price != nil {
		return ErrUnexpectedPrice
	}
	return nil
}

// getOrCreateBook returns symbol's book, creating it on first reference.
// Callers must already hold e.mu.
func (e *Engine) getOrCreateBook(symbol string) *orderbook.SymbolBook {
	b, ok := e.books[symbol]
	if !ok {
		b = orderbook.New(symbol, e.opts.SideCapacity)
		e.books[symbol] = b
	}
	return b
}

// onTrade is the callback threaded through the matching loop: every
// executed trade is appended to the tape and folded into the candlestick
// aggregator before the matching loop moves on.
func (e *Engine) onTrade(trade common.Trade) {
	e.tape.Record(trade.Symbol, trade)
	e.candles.Update(trade.Symbol, trade.Price, trade.Quantity, trade.Timestamp)
}

// CreateOrder admits one order, matches it, and returns the trades produced
// together with the final order (resting, filled, or cancelled).
func (e *Engine) CreateOrder(req OrderRequest) ([]common.Trade, *common.Order, error) {
	if err := e.validate(req); err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	order := common.NewOrder(req.Symbol, req.Side, req.Type, req.Quantity, req.Price, req.ClientOrderID, req.IsFutures)
	book := e.getOrCreateBook(req.Symbol)
	trades := matching.Process(book, &order, e.onTrade)
	return trades, &order, nil
}

// CreateOrders admits a batch of orders, applying the sort + skip-match
// heuristic. All orders in one call must share a symbol; requests are
// otherwise independent.
func (e *Engine) CreateOrders(reqs []OrderRequest) ([]common.Trade, []*common.Order, error) {
	if len(reqs) == 0 {
		return nil, nil, ErrEmptyBatch
	}
	for _, req := range reqs {
		if err := e.validate(req); err != nil {
			return nil, nil, err
		}
		if req.Symbol != reqs[0].Symbol {
			return nil, nil, fmt.Errorf("%w: batch must address a single symbol", ErrUnknownSymbol)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	orders := make([]*common.Order, len(reqs))
	ptrs := make([]*common.Order, len(reqs))
	for i, req := range reqs {
		o := common.NewOrder(req.Symbol, req.Side, req.Type, req.Quantity, req.Price, req.ClientOrderID, req.IsFutures)
		orders[i] = &o
		ptrs[i] = &o
	}

	book := e.getOrCreateBook(reqs[0].Symbol)
	trades := matching.ProcessBatch(book, ptrs, e.onTrade)
	return trades, orders, nil
}

// CancelOrder cancels orderID on symbol, returning the real cancelled order
// or a synthetic stub if unknown.
func (e *Engine) CancelOrder(symbol, orderID string) (*common.Order, error) {
	if !e.knownSymbols[symbol] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	book := e.getOrCreateBook(symbol)
	order := matching.Cancel(book, orderID, symbol)
	return &order, nil
}

// CancelOrders cancels a batch of order IDs on symbol.
func (e *Engine) CancelOrders(symbol string, orderIDs []string) ([]*common.Order, error) {
	if !e.knownSymbols[symbol] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	book := e.getOrCreateBook(symbol)
	out := make([]*common.Order, len(orderIDs))
	for i, id := range orderIDs {
		order := matching.Cancel(book, id, symbol)
		out[i] = &order
	}
	return out, nil
}

// GetOpenOrders returns up to 10 asks and 10 bids for symbol, best first
// within each side.
func (e *Engine) GetOpenOrders(symbol string) ([]*common.Order, error) {
	if !e.knownSymbols[symbol] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	book := e.getOrCreateBook(symbol)
	out := append([]*common.Order{}, book.Asks.PeekN(10)...)
	out = append(out, book.Bids.PeekN(10)...)
	return out, nil
}

// OrderBookSnapshot is the response shape of get_order_book_data.
type OrderBookSnapshot struct {
	Symbol    string
	Bids      []common.Level
	Asks      []common.Level
	Timestamp time.Time
}

// GetOrderBookData returns the top-depth (price, qty) levels per side, each
// level's quantity the sum of remaining quantity of every order resting at
// that price.
func (e *Engine) GetOrderBookData(symbol string, depth int) (OrderBookSnapshot, error) {
	if !e.knownSymbols[symbol] {
		return OrderBookSnapshot{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	book := e.getOrCreateBook(symbol)
	return OrderBookSnapshot{
		Symbol:    symbol,
		Bids:      book.Bids.PeekLevels(depth),
		Asks:      book.Asks.PeekLevels(depth),
		Timestamp: time.Now(),
	}, nil
}

// GetTrades returns up to limit of the most recent trades for symbol.
func (e *Engine) GetTrades(symbol string, limit int) ([]common.Trade, error) {
	if !e.knownSymbols[symbol] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tape.Recent(symbol, limit), nil
}

// GetKlines returns up to limit bars for (symbol, interval), oldest first.
func (e *Engine) GetKlines(symbol string, interval common.Interval, limit int) ([]common.Bar, error) {
	if !e.knownSymbols[symbol] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if interval != common.Interval1m && interval != common.Interval1h && interval != common.Interval1d {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInterval, interval)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.candles.Klines(symbol, interval, limit), nil
}

// MockTrade feeds the aggregator with a synthetic trade without touching the
// book or producing a real Trade.
func (e *Engine) MockTrade(symbol string, price, qty float64) error {
	if !e.knownSymbols[symbol] {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candles.Update(symbol, price, qty, time.Now())
	return nil
}
