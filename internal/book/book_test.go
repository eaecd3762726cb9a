package book

import (
	"testing"

	"venue/internal/common"

	"github.com/stretchr/testify/assert"
)

func limitOrder(side common.Side, price, qty float64) *common.Order {
	p := price
	o := common.NewOrder("AAPL", side, common.Limit, qty, &p, "", false)
	return &o
}

func TestPush_OrdersFIFOWithinPriceLevel(t *testing.T) {
	b := NewBidBook(0)

	first := limitOrder(common.Buy, 99.0, 10)
	second := limitOrder(common.Buy, 99.0, 20)

	_, admitted := b.Push(first)
	assert.True(t, admitted)
	_, admitted = b.Push(second)
	assert.True(t, admitted)

	assert.Same(t, first, b.Peek())
	assert.Equal(t, 2, b.Size())
}

func TestPush_BidBookBestIsHighestPrice(t *testing.T) {
	b := NewBidBook(0)

	b.Push(limitOrder(common.Buy, 99.0, 10))
	best := limitOrder(common.Buy, 101.0, 5)
	b.Push(best)
	b.Push(limitOrder(common.Buy, 100.0, 5))

	assert.Same(t, best, b.Peek())
}

func TestPush_AskBookBestIsLowestPrice(t *testing.T) {
	b := NewAskBook(0)

	b.Push(limitOrder(common.Sell, 101.0, 10))
	best := limitOrder(common.Sell, 99.0, 5)
	b.Push(best)
	b.Push(limitOrder(common.Sell, 100.0, 5))

	assert.Same(t, best, b.Peek())
}

func TestPush_AtCapacityRejectsWorseOrder(t *testing.T) {
	b := NewBidBook(1)
	resting := limitOrder(common.Buy, 100.0, 10)
	b.Push(resting)

	worse := limitOrder(common.Buy, 99.0, 10)
	evicted, admitted := b.Push(worse)

	assert.False(t, admitted)
	assert.Nil(t, evicted)
	assert.Equal(t, common.Cancelled, worse.Status)
	assert.Equal(t, 1, b.Size())
	assert.Same(t, resting, b.Peek())
}

func TestPush_AtCapacityEvictsWorseRestingOrder(t *testing.T) {
	b := NewBidBook(1)
	resting := limitOrder(common.Buy, 99.0, 10)
	b.Push(resting)

	better := limitOrder(common.Buy, 100.0, 10)
	evicted, admitted := b.Push(better)

	assert.True(t, admitted)
	assert.Same(t, resting, evicted)
	assert.Equal(t, common.Cancelled, resting.Status)
	assert.Equal(t, 1, b.Size())
	assert.Same(t, better, b.Peek())
}

func TestPop_RemovesBestAndAdvancesLevel(t *testing.T) {
	b := NewBidBook(0)
	first := limitOrder(common.Buy, 100.0, 10)
	second := limitOrder(common.Buy, 99.0, 10)
	b.Push(first)
	b.Push(second)

	assert.Same(t, first, b.Pop())
	assert.Same(t, second, b.Peek())
	assert.Equal(t, 1, b.Size())
}

func TestRemove_UnknownOrderReturnsFalse(t *testing.T) {
	b := NewBidBook(0)
	b.Push(limitOrder(common.Buy, 100.0, 10))

	assert.False(t, b.Remove("does-not-exist", 100.0))
	assert.Equal(t, 1, b.Size())
}

func TestPeekLevels_AggregatesRemainingQuantityPerPrice(t *testing.T) {
	b := NewBidBook(0)
	a := limitOrder(common.Buy, 100.0, 10)
	c := limitOrder(common.Buy, 100.0, 5)
	b.Push(a)
	b.Push(c)
	b.Push(limitOrder(common.Buy, 99.0, 7))

	levels := b.PeekLevels(10)
	assert.Equal(t, []common.Level{
		{Price: 100.0, Quantity: 15},
		{Price: 99.0, Quantity: 7},
	}, levels)
}

func TestPeekLevels_RespectsLimit(t *testing.T) {
	b := NewAskBook(0)
	b.Push(limitOrder(common.Sell, 100.0, 1))
	b.Push(limitOrder(common.Sell, 101.0, 1))
	b.Push(limitOrder(common.Sell, 102.0, 1))

	levels := b.PeekLevels(2)
	assert.Len(t, levels, 2)
	assert.Equal(t, 100.0, levels[0].Price)
	assert.Equal(t, 101.0, levels[1].Price)
}
