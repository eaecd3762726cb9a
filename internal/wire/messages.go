// Package wire is the venue's external transport: a small binary protocol
// over TCP carrying order placement, cancellation, and reporting.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"venue/internal/common"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
)

// MessageType identifies the body that follows the 2-byte header.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	LogBook
)

// ReportType identifies which kind of response a Report carries.
type ReportType uint8

const (
	ExecutionReport ReportType = iota
	ErrorReport
)

// BaseHeaderLen is the fixed 2-byte message type header every request
// starts with.
const BaseHeaderLen = 2

// NewOrderMessage requests order admission. Symbol, ClientOrderID, and Owner
// are variable-length, each prefixed by a 1-byte length.
type NewOrderMessage struct {
	Symbol        string
	Side          common.Side
	Type          common.OrderType
	HasPrice      bool
	Price         float64
	Quantity      float64
	IsFutures     bool
	ClientOrderID string
	Owner         string
}

// Encode serialises m, including the BaseHeaderLen type prefix.
func (m NewOrderMessage) Encode() []byte {
	symbol := []byte(m.Symbol)
	clientID := []byte(m.ClientOrderID)
	owner := []byte(m.Owner)

	size := BaseHeaderLen + 1 + len(symbol) + 1 + 1 + 1 + 8 + 8 + 1 + 1 + len(clientID) + 1 + len(owner)
	buf := make([]byte, size)
	off := 0

	binary.BigEndian.PutUint16(buf[off:], uint16(NewOrder))
	off += 2

	buf[off] = byte(len(symbol))
	off++
	off += copy(buf[off:], symbol)

	buf[off] = byte(m.Side)
	off++
	buf[off] = byte(m.Type)
	off++
	if m.HasPrice {
		buf[off] = 1
	}
	off++
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(m.Price))
	off += 8
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(m.Quantity))
	off += 8
	if m.IsFutures {
		buf[off] = 1
	}
	off++

	buf[off] = byte(len(clientID))
	off++
	off += copy(buf[off:], clientID)

	buf[off] = byte(len(owner))
	off++
	copy(buf[off:], owner)

	return buf
}

// parseNewOrder decodes the body following the 2-byte header already
// stripped by the caller.
func parseNewOrder(body []byte) (NewOrderMessage, error) {
	if len(body) < 1 {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	symLen := int(body[0])
	off := 1
	if len(body) < off+symLen+1+1+1+8+8+1+1 {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m := NewOrderMessage{Symbol: string(body[off : off+symLen])}
	off += symLen

	m.Side = common.Side(body[off])
	off++
	m.Type = common.OrderType(body[off])
	off++
	m.HasPrice = body[off] != 0
	off++
	m.Price = math.Float64frombits(binary.BigEndian.Uint64(body[off:]))
	off += 8
	m.Quantity = math.Float64frombits(binary.BigEndian.Uint64(body[off:]))
	off += 8
	m.IsFutures = body[off] != 0
	off++

	if len(body) < off+1 {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	clientIDLen := int(body[off])
	off++
	if len(body) < off+clientIDLen+1 {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m.ClientOrderID = string(body[off : off+clientIDLen])
	off += clientIDLen

	ownerLen := int(body[off])
	off++
	if len(body) < off+ownerLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m.Owner = string(body[off : off+ownerLen])

	return m, nil
}

// CancelOrderMessage requests that OrderID be cancelled on Symbol.
type CancelOrderMessage struct {
	Symbol    string
	OrderID   string
	IsFutures bool
}

// Encode serialises m, including the BaseHeaderLen type prefix.
func (m CancelOrderMessage) Encode() []byte {
	symbol := []byte(m.Symbol)
	orderID := []byte(m.OrderID)

	size := BaseHeaderLen + 1 + len(symbol) + 1 + 1 + len(orderID)
	buf := make([]byte, size)
	off := 0
	binary.BigEndian.PutUint16(buf[off:], uint16(CancelOrder))
	off += 2
	buf[off] = byte(len(symbol))
	off++
	off += copy(buf[off:], symbol)
	if m.IsFutures {
		buf[off] = 1
	}
	off++
	buf[off] = byte(len(orderID))
	off++
	copy(buf[off:], orderID)
	return buf
}

func parseCancelOrder(body []byte) (CancelOrderMessage, error) {
	if len(body) < 1 {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	symLen := int(body[0])
	off := 1
	if len(body) < off+symLen+1+1 {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	m := CancelOrderMessage{Symbol: string(body[off : off+symLen])}
	off += symLen
	m.IsFutures = body[off] != 0
	off++
	idLen := int(body[off])
	off++
	if len(body) < off+idLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	m.OrderID = string(body[off : off+idLen])
	return m, nil
}

// LogBookMessage is a body-less request. The server answers it by writing a
// single "log book requested" line to its log; it does not log book contents
// and sends no report back.
type LogBookMessage struct{}

func (LogBookMessage) Encode() []byte {
	buf := make([]byte, BaseHeaderLen)
	binary.BigEndian.PutUint16(buf, uint16(LogBook))
	return buf
}

// ParseMessage dispatches on the 2-byte type header and returns the decoded
// body as one of NewOrderMessage, CancelOrderMessage, or LogBookMessage.
func ParseMessage(raw []byte) (any, error) {
	if len(raw) < BaseHeaderLen {
		return nil, ErrMessageTooShort
	}
	msgType := MessageType(binary.BigEndian.Uint16(raw[0:2]))
	body := raw[2:]
	switch msgType {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case LogBook:
		return LogBookMessage{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMessageType, msgType)
	}
}
