package exchange

import (
	"context"

	"github.com/stockcraft/marketsim/internal/wire"
)

// LocalSubmitter adapts a Dispatcher into flowdriver.Submitter for a
// traffic generator running in the same process as the exchange
// (e.g. a single combined binary or a test harness), bypassing the
// transport package entirely.
type LocalSubmitter struct {
	dispatcher *Dispatcher
}

// NewLocalSubmitter wraps dispatcher for direct, in-process submission.
func NewLocalSubmitter(dispatcher *Dispatcher) *LocalSubmitter {
	return &LocalSubmitter{dispatcher: dispatcher}
}

// Submit converts order to the dispatcher's internal form, submits it
// synchronously, and converts the resulting ack back to wire form. ctx
// is accepted to satisfy flowdriver.Submitter but unused: the
// dispatcher's single-threaded Submit call never blocks on I/O.
func (s *LocalSubmitter) Submit(_ context.Context, order wire.Order) (wire.OrderAck, error) {
	ack := s.dispatcher.Submit(ToWireOrder(order))
	return FromAck(ack), nil
}
