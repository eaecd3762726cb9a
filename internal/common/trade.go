package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade records a single match: a taker crossing against a resting maker.
// Price always equals the maker's resting price (price improvement), never
// the taker's own limit.
type Trade struct {
	TradeID     string
	Symbol      string
	Price       float64
	Quantity    float64
	BuyOrderID  string
	SellOrderID string
	Timestamp   time.Time
}

// NewTrade mints a trade at the maker's price.
func NewTrade(symbol string, price, quantity float64, buyOrderID, sellOrderID string) Trade {
	return Trade{
		TradeID:     uuid.NewString(),
		Symbol:      symbol,
		Price:       price,
		Quantity:    quantity,
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		Timestamp:   time.Now(),
	}
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`TradeID:     %s
Symbol:      %s
Price:       %f
Quantity:    %f
BuyOrderID:  %s
SellOrderID: %s
Timestamp:   %v`,
		t.TradeID,
		t.Symbol,
		t.Price,
		t.Quantity,
		t.BuyOrderID,
		t.SellOrderID,
		t.Timestamp.Format(time.RFC3339),
	)
}
