package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is the venue's order value object. Price is nil for Market orders and
// required for Limit orders; Quantity/FilledQuantity are fractional because
// the venue trades in base-asset units, not lots.
type Order struct {
	OrderID         string
	ClientOrderID   string
	Symbol          string
	Side            Side
	Type            OrderType
	Price           *float64
	Quantity        float64
	FilledQuantity  float64
	Status          Status
	Timestamp       time.Time
	UpdateTimestamp time.Time
	IsFutures       bool
}

// NewOrder mints a fresh Pending order. price is nil for Market orders.
func NewOrder(symbol string, side Side, orderType OrderType, quantity float64, price *float64, clientOrderID string, isFutures bool) Order {
	now := time.Now()
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}
	return Order{
		OrderID:         uuid.NewString(),
		ClientOrderID:   clientOrderID,
		Symbol:          symbol,
		Side:            side,
		Type:            orderType,
		Price:           price,
		Quantity:        quantity,
		FilledQuantity:  0,
		Status:          Pending,
		Timestamp:       now,
		UpdateTimestamp: now,
		IsFutures:       isFutures,
	}
}

// Remaining is the quantity still eligible to match or rest.
func (o *Order) Remaining() float64 {
	return o.Quantity - o.FilledQuantity
}

// Resting reports whether the order currently belongs on a side book.
func (o *Order) Resting() bool {
	return o.Status == New || o.Status == PartiallyFilled
}

// Fill advances FilledQuantity and bumps the touched-update timestamp. It
// does not decide the resulting Status; callers (the matching loop) do that
// since the right terminal status differs between limit and market orders.
func (o *Order) Fill(qty float64) {
	o.FilledQuantity += qty
	o.UpdateTimestamp = time.Now()
}

// PriceValue returns the order's limit price, or 0 for a Market order.
func (o *Order) PriceValue() float64 {
	if o.Price == nil {
		return 0
	}
	return *o.Price
}

// CancelledStub builds the synthetic CANCELLED order returned by cancel
// operations on an order id unknown to the book.
func CancelledStub(orderID, symbol string) Order {
	return Order{
		OrderID:         orderID,
		ClientOrderID:   orderID,
		Symbol:          symbol,
		Side:            Buy,
		Type:            Limit,
		Status:          Cancelled,
		Timestamp:       time.Now(),
		UpdateTimestamp: time.Now(),
	}
}

func (o Order) String() string {
	price := "none"
	if o.Price != nil {
		price = fmt.Sprintf("%f", *o.Price)
	}
	return fmt.Sprintf(
		`OrderID:         %s
ClientOrderID:   %s
Symbol:          %s
Side:            %v
Type:            %v
Price:           %s
Quantity:        %f (filled %f)
Status:          %v
Timestamp:       %v
UpdateTimestamp: %v
IsFutures:       %v`,
		o.OrderID,
		o.ClientOrderID,
		o.Symbol,
		o.Side,
		o.Type,
		price,
		o.Quantity,
		o.FilledQuantity,
		o.Status,
		o.Timestamp.Format(time.RFC3339),
		o.UpdateTimestamp.Format(time.RFC3339),
		o.IsFutures,
	)
}
