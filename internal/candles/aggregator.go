// Package candles maintains the 1m/1h/1d rolling OHLCV bars updated on every
// executed match.
package candles

import (
	"time"

	"venue/internal/common"
)

// DefaultMaxBars is the retained bar count per (symbol, interval) once
// retention truncates.
const DefaultMaxBars = 200

var intervalMs = map[common.Interval]int64{
	common.Interval1m: 60 * 1000,
	common.Interval1h: 60 * 60 * 1000,
	common.Interval1d: 24 * 60 * 60 * 1000,
}

// retentionMultiplier is how far a sequence is let to grow past maxBars
// before it is truncated back down to maxBars.
var retentionMultiplier = map[common.Interval]float64{
	common.Interval1m: 2.0,
	common.Interval1h: 1.5,
	common.Interval1d: 1.2,
}

var intervals = []common.Interval{common.Interval1m, common.Interval1h, common.Interval1d}

type symbolState struct {
	bars        map[common.Interval][]common.Bar
	prevBucket  map[common.Interval]int64
	initialized bool
}

func newSymbolState() *symbolState {
	return &symbolState{
		bars:       make(map[common.Interval][]common.Bar),
		prevBucket: make(map[common.Interval]int64),
	}
}

// Aggregator maintains per-symbol candlestick sequences for every Interval.
type Aggregator struct {
	maxBars int
	symbols map[string]*symbolState
}

// New creates an Aggregator truncating each (symbol, interval) sequence to
// maxBars once it exceeds its retention multiplier.
func New(maxBars int) *Aggregator {
	if maxBars <= 0 {
		maxBars = DefaultMaxBars
	}
	return &Aggregator{
		maxBars: maxBars,
		symbols: make(map[string]*symbolState),
	}
}

func (a *Aggregator) state(symbol string) *symbolState {
	st, ok := a.symbols[symbol]
	if !ok {
		st = newSymbolState()
		a.symbols[symbol] = st
	}
	return st
}

// Update feeds one executed trade (price, qty) into every interval bucket
// for symbol. On a symbol's very first trade, all three interval sequences
// are opened together rather than letting the 1h/1d branches depend on the
// 1m branch having appended first.
func (a *Aggregator) Update(symbol string, price, qty float64, now time.Time) {
	st := a.state(symbol)
	nowMs := now.UnixMilli()

	bucketM := now.Unix() / 60
	bucketH := bucketM / 60
	bucketD := bucketH / 24
	buckets := map[common.Interval]int64{
		common.Interval1m: bucketM,
		common.Interval1h: bucketH,
		common.Interval1d: bucketD,
	}

	for _, interval := range intervals {
		bucket := buckets[interval]
		if !st.initialized || st.prevBucket[interval] != bucket {
			bar := common.Bar{
				OpenTimeMs:  nowMs,
				Open:        price,
				High:        price,
				Low:         price,
				Close:       price,
				Volume:      qty,
				CloseTimeMs: nowMs + intervalMs[interval],
				QuoteVolume: qty * price,
			}
			st.bars[interval] = append(st.bars[interval], bar)
			a.truncate(st, interval)
		} else {
			bars := st.bars[interval]
			last := &bars[len(bars)-1]
			if price > last.High {
				last.High = price
			}
			if price < last.Low {
				last.Low = price
			}
			last.Close = price
			last.Volume += qty
			last.QuoteVolume += qty * price
		}
		st.prevBucket[interval] = bucket
	}
	st.initialized = true
}

// truncate discards the oldest bars once the sequence exceeds its retention
// multiplier, bringing it back down to exactly maxBars.
func (a *Aggregator) truncate(st *symbolState, interval common.Interval) {
	bars := st.bars[interval]
	limit := int(float64(a.maxBars) * retentionMultiplier[interval])
	if len(bars) > limit {
		st.bars[interval] = append([]common.Bar(nil), bars[len(bars)-a.maxBars:]...)
	}
}

// Klines returns the last limit bars for (symbol, interval), oldest first.
// limit <= 0 returns the full retained sequence.
func (a *Aggregator) Klines(symbol string, interval common.Interval, limit int) []common.Bar {
	st, ok := a.symbols[symbol]
	if !ok {
		return nil
	}
	bars := st.bars[interval]
	if limit <= 0 || limit >= len(bars) {
		out := make([]common.Bar, len(bars))
		copy(out, bars)
		return out
	}
	out := make([]common.Bar, limit)
	copy(out, bars[len(bars)-limit:])
	return out
}
