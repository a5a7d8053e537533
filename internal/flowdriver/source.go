package flowdriver

import (
	"fmt"

	"github.com/stockcraft/marketsim/internal/hawkes"
	"github.com/stockcraft/marketsim/internal/priceproc"
	"github.com/stockcraft/marketsim/internal/wire"
)

// Source produces the orders a single simulated step contributes to
// the flow. Hawkes steps emit a momentum-biased cloud; GBM and Linear
// steps emit one BUY limit and one SELL limit at the new price,
// grounded on original_source's OrderFlowGenerator.generate_orders.
type Source interface {
	Step() ([]wire.Order, error)
}

// HawkesSource adapts a *hawkes.Model into a Source.
type HawkesSource struct {
	model    *hawkes.Model
	symbol   string
	clientID string
	orderSeq uint64
}

// NewHawkesSource wraps model to emit wire orders for symbol.
func NewHawkesSource(model *hawkes.Model, symbol, clientID string) *HawkesSource {
	return &HawkesSource{model: model, symbol: symbol, clientID: clientID}
}

func (s *HawkesSource) nextOrderID() string {
	s.orderSeq++
	return fmt.Sprintf("TG-%d", s.orderSeq)
}

func (s *HawkesSource) Step() ([]wire.Order, error) {
	_, err := s.model.NextPrice()
	if err != nil {
		return nil, err
	}

	cloud := s.model.CurrentOrders()
	if len(cloud) == 0 {
		return nil, nil
	}

	orders := make([]wire.Order, len(cloud))
	for i, o := range cloud {
		side := wire.SideSell
		if o.IsBuy {
			side = wire.SideBuy
		}
		orders[i] = wire.Order{
			OrderID:   s.nextOrderID(),
			Symbol:    s.symbol,
			ClientID:  s.clientID,
			Side:      side,
			Type:      wire.OrderTypeLimit,
			Price:     o.Price,
			Quantity:  o.Volume,
			Timestamp: int64(o.Time * 1000),
		}
	}
	return orders, nil
}

// SimpleSource adapts a priceproc.Model (GBM or Linear) into a Source
// that emits one BUY and one SELL limit order at the model's new
// price each step, both of fixed quantity.
type SimpleSource struct {
	model    priceproc.Model
	symbol   string
	clientID string
	quantity float64
	stepMs   int64
	elapsed  int64
	orderSeq uint64
}

// NewSimpleSource wraps model to emit a buy/sell pair per step for
// symbol, at the given fixed quantity. stepMs is the simulated
// milliseconds advanced per Step call, used to timestamp orders.
func NewSimpleSource(model priceproc.Model, symbol, clientID string, quantity float64, stepMs int64) *SimpleSource {
	return &SimpleSource{model: model, symbol: symbol, clientID: clientID, quantity: quantity, stepMs: stepMs}
}

func (s *SimpleSource) nextOrderID() string {
	s.orderSeq++
	return fmt.Sprintf("TG-%d", s.orderSeq)
}

func (s *SimpleSource) Step() ([]wire.Order, error) {
	price := s.model.NextPrice()
	s.elapsed += s.stepMs

	buy := wire.Order{
		OrderID:   s.nextOrderID(),
		Symbol:    s.symbol,
		ClientID:  s.clientID,
		Side:      wire.SideBuy,
		Type:      wire.OrderTypeLimit,
		Price:     price,
		Quantity:  s.quantity,
		Timestamp: s.elapsed,
	}
	sell := buy
	sell.OrderID = s.nextOrderID()
	sell.Side = wire.SideSell

	return []wire.Order{buy, sell}, nil
}

var (
	_ Source = (*HawkesSource)(nil)
	_ Source = (*SimpleSource)(nil)
)
