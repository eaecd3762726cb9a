package matching

import (
	"testing"

	"venue/internal/common"
	"venue/internal/orderbook"

	"github.com/stretchr/testify/assert"
)

func limit(side common.Side, price, qty float64) *common.Order {
	p := price
	o := common.NewOrder("AAPL", side, common.Limit, qty, &p, "", false)
	return &o
}

func market(side common.Side, qty float64) *common.Order {
	o := common.NewOrder("AAPL", side, common.Market, qty, nil, "", false)
	return &o
}

func TestProcess_RestsOnEmptyBook(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	order := limit(common.Buy, 100.0, 10)

	trades := Process(book, order, nil)

	assert.Empty(t, trades)
	assert.Equal(t, common.New, order.Status)
	assert.Same(t, order, book.Bids.Peek())
}

func TestProcess_CrossingLimitFullyFillsAtMakerPrice(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	maker := limit(common.Sell, 100.0, 10)
	book.AddOrder(maker)

	taker := limit(common.Buy, 101.0, 10)
	var recorded []common.Trade
	trades := Process(book, taker, func(tr common.Trade) { recorded = append(recorded, tr) })

	assert.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, 10.0, trades[0].Quantity)
	assert.Equal(t, recorded, trades)
	assert.Equal(t, common.Filled, taker.Status)
	assert.Equal(t, common.Filled, maker.Status)
	assert.Nil(t, book.Asks.Peek())
}

func TestProcess_PartialFillRestsRemainder(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	maker := limit(common.Sell, 100.0, 4)
	book.AddOrder(maker)

	taker := limit(common.Buy, 100.0, 10)
	trades := Process(book, taker, nil)

	assert.Len(t, trades, 1)
	assert.Equal(t, 4.0, trades[0].Quantity)
	assert.Equal(t, common.PartiallyFilled, taker.Status)
	assert.Equal(t, 6.0, taker.Remaining())
	assert.Same(t, taker, book.Bids.Peek())
}

func TestProcess_MarketBuySweepsTwoLevels(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	book.AddOrder(limit(common.Sell, 100.0, 5))
	book.AddOrder(limit(common.Sell, 101.0, 5))

	taker := market(common.Buy, 8)
	trades := Process(book, taker, nil)

	assert.Len(t, trades, 2)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, 5.0, trades[0].Quantity)
	assert.Equal(t, 101.0, trades[1].Price)
	assert.Equal(t, 3.0, trades[1].Quantity)
	assert.Equal(t, common.Filled, taker.Status)
}

func TestProcess_MarketOrderZeroFillCancels(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	taker := market(common.Buy, 10)

	trades := Process(book, taker, nil)

	assert.Empty(t, trades)
	assert.Equal(t, common.Cancelled, taker.Status)
}

func TestProcess_PriceTimePriority(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	earlier := limit(common.Sell, 100.0, 5)
	later := limit(common.Sell, 100.0, 5)
	book.AddOrder(earlier)
	book.AddOrder(later)

	taker := limit(common.Buy, 100.0, 5)
	trades := Process(book, taker, nil)

	assert.Len(t, trades, 1)
	assert.Equal(t, earlier.OrderID, trades[0].SellOrderID)
	assert.Same(t, later, book.Asks.Peek())
}

func TestCancel_RestingOrderIsRemovedAndMarked(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	order := limit(common.Buy, 100.0, 10)
	book.AddOrder(order)

	cancelled := Cancel(book, order.OrderID, "AAPL")

	assert.Equal(t, common.Cancelled, cancelled.Status)
	assert.Nil(t, book.GetOrder(order.OrderID))
}

func TestCancel_UnknownOrderReturnsStub(t *testing.T) {
	book := orderbook.New("AAPL", 0)

	cancelled := Cancel(book, "ghost", "AAPL")

	assert.Equal(t, "ghost", cancelled.OrderID)
	assert.Equal(t, common.Cancelled, cancelled.Status)
}

func TestProcessBatch_SortsEachSideBeforeMatching(t *testing.T) {
	book := orderbook.New("AAPL", 0)
	book.AddOrder(limit(common.Sell, 100.0, 5))

	aggressive := limit(common.Buy, 101.0, 5)
	passive := limit(common.Buy, 99.0, 5)

	trades := ProcessBatch(book, []*common.Order{passive, aggressive}, nil)

	assert.Len(t, trades, 1)
	assert.Equal(t, common.Filled, aggressive.Status)
	assert.Equal(t, common.New, passive.Status)
	assert.Same(t, passive, book.Bids.Peek())
}
