package transport

import (
	"context"
	"fmt"

	"github.com/stockcraft/marketsim/internal/wire"
)

// OrderSubmitter adapts a Client into flowdriver.Submitter, sending
// each order over the order endpoint spec.md §6 describes ("two
// endpoints per dispatcher instance: one request/reply for orders,
// one for status") and decoding the OrderAck reply.
type OrderSubmitter struct {
	client     *Client
	serializer Serializer
}

// NewOrderSubmitter wraps client, using serializer to encode requests
// and decode replies.
func NewOrderSubmitter(client *Client, serializer Serializer) *OrderSubmitter {
	return &OrderSubmitter{client: client, serializer: serializer}
}

// Submit marshals order, sends it to the order endpoint, and decodes
// the reply into a wire.OrderAck. ctx is honored only insofar as the
// Client's own configured deadline already bounds the round trip;
// cancellation mid-flight does not interrupt an in-progress socket
// read, matching the teacher's synchronous transport clients.
func (s *OrderSubmitter) Submit(ctx context.Context, order wire.Order) (wire.OrderAck, error) {
	req, err := s.serializer.Marshal(order)
	if err != nil {
		return wire.OrderAck{}, fmt.Errorf("transport: marshal order: %w", err)
	}

	resp, err := s.client.Request(req)
	if err != nil {
		return wire.OrderAck{}, fmt.Errorf("transport: submit order: %w", err)
	}

	var ack wire.OrderAck
	if err := s.serializer.Unmarshal(resp, &ack); err != nil {
		return wire.OrderAck{}, fmt.Errorf("transport: decode ack: %w", err)
	}
	return ack, nil
}

// StatusClient adapts a Client into a poller for spec.md §6's
// StatusRequest/StatusResponse exchange, used by the monitor.
type StatusClient struct {
	client     *Client
	serializer Serializer
}

// NewStatusClient wraps client for status polling.
func NewStatusClient(client *Client, serializer Serializer) *StatusClient {
	return &StatusClient{client: client, serializer: serializer}
}

// Query sends a StatusRequest for symbol and decodes the reply.
func (s *StatusClient) Query(symbol string) (wire.StatusResponse, error) {
	req, err := s.serializer.Marshal(wire.StatusRequest{RequestType: "STATUS", Symbol: symbol})
	if err != nil {
		return wire.StatusResponse{}, fmt.Errorf("transport: marshal status request: %w", err)
	}

	resp, err := s.client.Request(req)
	if err != nil {
		return wire.StatusResponse{}, fmt.Errorf("transport: query status: %w", err)
	}

	var status wire.StatusResponse
	if err := s.serializer.Unmarshal(resp, &status); err != nil {
		return wire.StatusResponse{}, fmt.Errorf("transport: decode status response: %w", err)
	}
	return status, nil
}
