package orderbook

import (
	"testing"

	"venue/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(side common.Side, price, qty float64) *common.Order {
	p := price
	o := common.NewOrder("AAPL", side, common.Limit, qty, &p, "", false)
	return &o
}

func TestAddOrder_IndexesAdmittedOrder(t *testing.T) {
	s := New("AAPL", 0)
	o := order(common.Buy, 100, 1)

	assert.True(t, s.AddOrder(o))
	assert.Same(t, o, s.GetOrder(o.OrderID))
}

func TestAddOrder_EvictionRemovesEvictedFromIndex(t *testing.T) {
	s := New("AAPL", 1)
	worst := order(common.Buy, 99, 1)
	require.True(t, s.AddOrder(worst))

	better := order(common.Buy, 100, 1)
	require.True(t, s.AddOrder(better))

	assert.Nil(t, s.GetOrder(worst.OrderID))
	assert.Same(t, better, s.GetOrder(better.OrderID))
}

func TestRemoveOrder_DeletesFromBothBookAndIndex(t *testing.T) {
	s := New("AAPL", 0)
	o := order(common.Sell, 100, 1)
	s.AddOrder(o)

	removed := s.RemoveOrder(o.OrderID)
	assert.Same(t, o, removed)
	assert.Nil(t, s.GetOrder(o.OrderID))
	assert.Nil(t, s.Asks.Peek())
}

func TestRemoveOrder_UnknownReturnsNil(t *testing.T) {
	s := New("AAPL", 0)
	assert.Nil(t, s.RemoveOrder("ghost"))
}
