package candles

import (
	"testing"
	"time"

	"venue/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestUpdate_FirstTradeOpensAllThreeIntervals(t *testing.T) {
	agg := New(10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	agg.Update("AAPL", 100.0, 5, now)

	for _, interval := range []common.Interval{common.Interval1m, common.Interval1h, common.Interval1d} {
		bars := agg.Klines("AAPL", interval, 0)
		assert.Len(t, bars, 1, "interval %s", interval)
		assert.Equal(t, 100.0, bars[0].Open)
		assert.Equal(t, 100.0, bars[0].Close)
		assert.Equal(t, 5.0, bars[0].Volume)
	}
}

func TestUpdate_SameBucketUpdatesOHLCInPlace(t *testing.T) {
	agg := New(10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	agg.Update("AAPL", 100.0, 5, now)
	agg.Update("AAPL", 105.0, 2, now.Add(10*time.Second))
	agg.Update("AAPL", 95.0, 3, now.Add(20*time.Second))

	bars := agg.Klines("AAPL", common.Interval1m, 0)
	assert.Len(t, bars, 1)
	bar := bars[0]
	assert.Equal(t, 100.0, bar.Open)
	assert.Equal(t, 105.0, bar.High)
	assert.Equal(t, 95.0, bar.Low)
	assert.Equal(t, 95.0, bar.Close)
	assert.Equal(t, 10.0, bar.Volume)
}

func TestUpdate_BucketRolloverOpensNewBar(t *testing.T) {
	agg := New(10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	agg.Update("AAPL", 100.0, 5, now)
	agg.Update("AAPL", 110.0, 1, now.Add(90*time.Second))

	bars := agg.Klines("AAPL", common.Interval1m, 0)
	assert.Len(t, bars, 2)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 110.0, bars[1].Open)
}

func TestTruncate_RetentionNeverExceedsMultiplierOfMaxBars(t *testing.T) {
	agg := New(3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		agg.Update("AAPL", float64(100+i), 1, base.Add(time.Duration(i)*time.Minute))
	}

	bars := agg.Klines("AAPL", common.Interval1m, 0)
	assert.LessOrEqual(t, len(bars), int(float64(3)*retentionMultiplier[common.Interval1m]))
	assert.Equal(t, 109.0, bars[len(bars)-1].Close)
}

func TestKlines_UnknownSymbolReturnsNil(t *testing.T) {
	agg := New(10)
	assert.Nil(t, agg.Klines("GHOST", common.Interval1m, 0))
}

func TestKlines_LimitReturnsMostRecent(t *testing.T) {
	agg := New(10)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		agg.Update("AAPL", float64(100+i), 1, base.Add(time.Duration(i)*time.Minute))
	}

	bars := agg.Klines("AAPL", common.Interval1m, 2)
	assert.Len(t, bars, 2)
	assert.Equal(t, 103.0, bars[0].Open)
	assert.Equal(t, 104.0, bars[1].Open)
}
