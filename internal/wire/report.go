package wire

import (
	"encoding/binary"
	"math"

	"venue/internal/common"
)

// Report is the response a client receives for a NewOrder or CancelOrder
// request: either an execution/status update or an error.
type Report struct {
	Type          ReportType
	Side          common.Side
	Status        common.Status
	OrderID       string
	Symbol        string
	Price         float64
	Quantity      float64
	FilledQty     float64
	ClientOrderID string
	Err           string
}

// fixedReportLen covers Type, Side, Status (1 byte each), Price, Quantity,
// FilledQty (8 bytes each), and the four length-prefixed field lengths
// (OrderID, Symbol, ClientOrderID, Err; 2 bytes each).
const fixedReportLen = 1 + 1 + 1 + 8 + 8 + 8 + 2 + 2 + 2 + 2

// Encode serialises r to the wire.
func (r Report) Encode() []byte {
	orderID := []byte(r.OrderID)
	symbol := []byte(r.Symbol)
	clientID := []byte(r.ClientOrderID)
	errStr := []byte(r.Err)

	buf := make([]byte, fixedReportLen+len(orderID)+len(symbol)+len(clientID)+len(errStr))
	off := 0
	buf[off] = byte(r.Type)
	off++
	buf[off] = byte(r.Side)
	off++
	buf[off] = byte(r.Status)
	off++
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(r.Price))
	off += 8
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(r.Quantity))
	off += 8
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(r.FilledQty))
	off += 8

	binary.BigEndian.PutUint16(buf[off:], uint16(len(orderID)))
	off += 2
	binary.BigEndian.PutUint16(buf[off:], uint16(len(symbol)))
	off += 2
	binary.BigEndian.PutUint16(buf[off:], uint16(len(clientID)))
	off += 2
	binary.BigEndian.PutUint16(buf[off:], uint16(len(errStr)))
	off += 2

	off += copy(buf[off:], orderID)
	off += copy(buf[off:], symbol)
	off += copy(buf[off:], clientID)
	copy(buf[off:], errStr)

	return buf
}

// DecodeReport parses a Report previously written by Encode.
func DecodeReport(raw []byte) (Report, error) {
	if len(raw) < fixedReportLen {
		return Report{}, ErrMessageTooShort
	}
	var r Report
	off := 0
	r.Type = ReportType(raw[off])
	off++
	r.Side = common.Side(raw[off])
	off++
	r.Status = common.Status(raw[off])
	off++
	r.Price = math.Float64frombits(binary.BigEndian.Uint64(raw[off:]))
	off += 8
	r.Quantity = math.Float64frombits(binary.BigEndian.Uint64(raw[off:]))
	off += 8
	r.FilledQty = math.Float64frombits(binary.BigEndian.Uint64(raw[off:]))
	off += 8

	orderIDLen := int(binary.BigEndian.Uint16(raw[off:]))
	off += 2
	symbolLen := int(binary.BigEndian.Uint16(raw[off:]))
	off += 2
	clientIDLen := int(binary.BigEndian.Uint16(raw[off:]))
	off += 2
	errLen := int(binary.BigEndian.Uint16(raw[off:]))
	off += 2

	if len(raw) < off+orderIDLen+symbolLen+clientIDLen+errLen {
		return Report{}, ErrMessageTooShort
	}
	r.OrderID = string(raw[off : off+orderIDLen])
	off += orderIDLen
	r.Symbol = string(raw[off : off+symbolLen])
	off += symbolLen
	r.ClientOrderID = string(raw[off : off+clientIDLen])
	off += clientIDLen
	r.Err = string(raw[off : off+errLen])

	return r, nil
}

// FromOrder builds an execution report describing order's current state.
func FromOrder(order *common.Order) Report {
	return Report{
		Type:          ExecutionReport,
		Side:          order.Side,
		Status:        order.Status,
		OrderID:       order.OrderID,
		Symbol:        order.Symbol,
		Price:         order.PriceValue(),
		Quantity:      order.Quantity,
		FilledQty:     order.FilledQuantity,
		ClientOrderID: order.ClientOrderID,
	}
}

// FromError builds an error report.
func FromError(err error) Report {
	return Report{Type: ErrorReport, Err: err.Error()}
}
