package exchange

import (
	"fmt"
	"time"

	"github.com/stockcraft/marketsim/internal/transport"
	"github.com/stockcraft/marketsim/internal/wire"
)

// Server exposes a Dispatcher over two transport.Endpoints, matching
// spec.md §6's "two endpoints per dispatcher instance: one
// request/reply for orders, one for status."
type Server struct {
	dispatcher *Dispatcher
	serializer transport.Serializer

	orderEndpoint  *transport.Endpoint
	statusEndpoint *transport.Endpoint
}

// NewServer wraps dispatcher for network access, encoding replies
// with serializer.
func NewServer(dispatcher *Dispatcher, serializer transport.Serializer) *Server {
	return &Server{dispatcher: dispatcher, serializer: serializer}
}

// ListenAndServe binds the order and status endpoints and starts
// serving. timeout bounds each endpoint's per-request receive.
func (s *Server) ListenAndServe(orderAddr, statusAddr string, timeout time.Duration) error {
	orderEP, err := transport.Listen(orderAddr, timeout, s.handleOrder)
	if err != nil {
		return fmt.Errorf("exchange: order endpoint: %w", err)
	}
	statusEP, err := transport.Listen(statusAddr, timeout, s.handleStatus)
	if err != nil {
		orderEP.Close()
		return fmt.Errorf("exchange: status endpoint: %w", err)
	}
	s.orderEndpoint = orderEP
	s.statusEndpoint = statusEP
	return nil
}

// OrderAddr returns the bound order endpoint address.
func (s *Server) OrderAddr() string { return s.orderEndpoint.Addr().String() }

// StatusAddr returns the bound status endpoint address.
func (s *Server) StatusAddr() string { return s.statusEndpoint.Addr().String() }

// Close shuts down both endpoints, then the dispatcher's loop
// goroutine. Endpoints are closed first so no new request can be
// accepted while the dispatcher drains and stops.
func (s *Server) Close() error {
	var firstErr error
	if s.orderEndpoint != nil {
		if err := s.orderEndpoint.Close(); err != nil {
			firstErr = err
		}
	}
	if s.statusEndpoint != nil {
		if err := s.statusEndpoint.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.dispatcher.Close()
	return firstErr
}

func (s *Server) handleOrder(req []byte) []byte {
	var order wire.Order
	if err := s.serializer.Unmarshal(req, &order); err != nil {
		return s.mustMarshal(wire.OrderAck{Status: wire.AckRejected, Message: err.Error()})
	}

	ack := s.dispatcher.Submit(ToWireOrder(order))
	return s.mustMarshal(FromAck(ack))
}

func (s *Server) handleStatus(req []byte) []byte {
	var statusReq wire.StatusRequest
	if err := s.serializer.Unmarshal(req, &statusReq); err != nil {
		return s.mustMarshal(wire.StatusResponse{})
	}

	snap := s.dispatcher.Status(statusReq.Symbol)
	return s.mustMarshal(FromStatusSnapshot(snap, snap.MidPriceTimestamp))
}

func (s *Server) mustMarshal(v any) []byte {
	data, err := s.serializer.Marshal(v)
	if err != nil {
		// Only reachable if v itself is not serializable, which none
		// of the reply types here ever are.
		return nil
	}
	return data
}
