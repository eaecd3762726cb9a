package wire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"venue/internal/engine"
	"venue/internal/venue"
	"venue/internal/workerpool"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	maxMessageSize     = 4 * 1024
	defaultWorkerCount = 10
	defaultReadTimeout = 5 * time.Second
)

var ErrImproperConversion = errors.New("improper task conversion")

// clientSession tracks one connected TCP client.
type clientSession struct {
	conn net.Conn
}

// Server accepts TCP connections, decodes wire messages, and drives a
// venue.Venue's engines. It is a thin transport that only ever calls the
// engine facade.
type Server struct {
	address string
	port    int
	venue   *venue.Venue

	pool   *workerpool.Pool
	cancel context.CancelFunc

	sessionsMu sync.Mutex
	sessions   map[string]clientSession
}

// New constructs a Server bound to address:port, driving v.
func New(address string, port int, v *venue.Venue) *Server {
	return &Server{
		address:  address,
		port:     port,
		venue:    v,
		pool:     workerpool.New(defaultWorkerCount),
		sessions: make(map[string]clientSession),
	}
}

// Run listens and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	t, ctx := tomb.WithContext(ctx)
	s.pool.Run(t, s.handleConnection)

	log.Info().Str("address", listener.Addr().String()).Msg("venue wire server running")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("accept failed")
				continue
			}
			s.addSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// Shutdown stops the server.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) addSession(conn net.Conn) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[conn.RemoteAddr().String()] = clientSession{conn: conn}
}

func (s *Server) dropSession(address string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, address)
}

// handleConnection reads one message from conn, actions it, writes a
// Report (none for a LogBook request), and requeues the connection for its
// next message. Any panic
// raised by an internal invariant assertion deeper in the engine is
// recovered here and reported as a server error rather than taking the
// process down.
func (s *Server) handleConnection(t *tomb.Tomb, task any) (err error) {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	address := conn.RemoteAddr().String()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("address", address).Msg("recovered from internal invariant violation")
			s.writeReport(conn, FromError(fmt.Errorf("internal error")))
			conn.Close()
			s.dropSession(address)
		}
	}()

	conn.SetDeadline(time.Now().Add(defaultReadTimeout))

	select {
	case <-t.Dying():
		return nil
	default:
	}

	buf := make([]byte, maxMessageSize)
	n, err := conn.Read(buf)
	if err != nil {
		log.Debug().Err(err).Str("address", address).Msg("connection closed")
		conn.Close()
		s.dropSession(address)
		return nil
	}

	msg, err := ParseMessage(buf[:n])
	if err != nil {
		log.Error().Err(err).Str("address", address).Msg("failed to parse message")
		s.writeReport(conn, FromError(err))
		s.pool.AddTask(conn)
		return nil
	}

	s.handleMessage(conn, msg)
	s.pool.AddTask(conn)
	return nil
}

func (s *Server) handleMessage(conn net.Conn, msg any) {
	switch m := msg.(type) {
	case NewOrderMessage:
		s.handleNewOrder(conn, m)
	case CancelOrderMessage:
		s.handleCancelOrder(conn, m)
	case LogBookMessage:
		log.Info().Msg("log book requested")
	default:
		log.Error().Msg("unhandled message type")
	}
}

func (s *Server) handleNewOrder(conn net.Conn, m NewOrderMessage) {
	var price *float64
	if m.HasPrice {
		p := m.Price
		price = &p
	}
	eng := s.venue.Engine(m.IsFutures)
	trades, order, err := eng.CreateOrder(engine.OrderRequest{
		Symbol:        m.Symbol,
		Side:          m.Side,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Price:         price,
		ClientOrderID: m.ClientOrderID,
		IsFutures:     m.IsFutures,
	})
	if err != nil {
		s.writeReport(conn, FromError(err))
		return
	}
	s.writeReport(conn, FromOrder(order))
	for _, trade := range trades {
		log.Info().
			Str("symbol", trade.Symbol).
			Float64("price", trade.Price).
			Float64("quantity", trade.Quantity).
			Msg("trade executed")
	}
}

func (s *Server) handleCancelOrder(conn net.Conn, m CancelOrderMessage) {
	eng := s.venue.Engine(m.IsFutures)
	order, err := eng.CancelOrder(m.Symbol, m.OrderID)
	if err != nil {
		s.writeReport(conn, FromError(err))
		return
	}
	s.writeReport(conn, FromOrder(order))
}

func (s *Server) writeReport(conn net.Conn, r Report) {
	if _, err := conn.Write(r.Encode()); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("failed to write report")
	}
}
