package exchange

import "github.com/stockcraft/marketsim/internal/wire"

// ToWireOrder converts a wire.Order into the engine's internal Order.
func ToWireOrder(w wire.Order) Order {
	return Order{
		OrderID:   w.OrderID,
		Symbol:    w.Symbol,
		ClientID:  w.ClientID,
		Side:      sideFromWire(w.Side),
		Type:      typeFromWire(w.Type),
		Price:     w.Price,
		Quantity:  w.Quantity,
		Timestamp: w.Timestamp,
	}
}

// FromOrder converts an internal Order into its wire form.
func FromOrder(o Order) wire.Order {
	return wire.Order{
		OrderID:   o.OrderID,
		Symbol:    o.Symbol,
		ClientID:  o.ClientID,
		Side:      sideToWire(o.Side),
		Type:      typeToWire(o.Type),
		Price:     o.Price,
		Quantity:  o.Quantity,
		Timestamp: o.Timestamp,
	}
}

// FromAck converts a dispatcher OrderAck into its wire form.
func FromAck(a OrderAck) wire.OrderAck {
	status := wire.AckRejected
	if a.Status == OrderAckAccepted {
		status = wire.AckAccepted
	}
	return wire.OrderAck{
		OrderID:   a.OrderID,
		Status:    status,
		Message:   a.Message,
		Timestamp: a.Timestamp,
	}
}

// FromTrade converts an internal Trade into its wire form.
func FromTrade(t Trade) wire.Trade {
	return wire.Trade{
		TradeID:       t.TradeID,
		Symbol:        t.Symbol,
		Price:         t.Price,
		Quantity:      t.Quantity,
		Timestamp:     t.Timestamp,
		AggressorSide: sideToWire(t.AggressorSide),
		BuyerOrderID:  t.BuyerOrderID,
		SellerOrderID: t.SellerOrderID,
	}
}

// FromStatusSnapshot converts a dispatcher StatusSnapshot into the
// wire StatusResponse spec.md §6 describes.
func FromStatusSnapshot(s StatusSnapshot, timestamp int64) wire.StatusResponse {
	resp := wire.StatusResponse{
		TotalOrdersReceived: s.TotalOrdersReceived,
		TotalTrades:         s.TotalTrades,
		TotalVolume:         s.TotalVolume,
		LastTradePrice:      s.LastTradePrice,
		LastTradeTimestamp:  s.LastTradeTimestamp,
		MidPrice:            s.MidPrice,
		MidPriceTimestamp:   s.MidPriceTimestamp,
		CurrentOrderbook: wire.OrderBookSnapshot{
			Symbol:    s.Symbol,
			Timestamp: timestamp,
			Bids:      toWireLevels(s.Bids),
			Asks:      toWireLevels(s.Asks),
		},
		TradePriceHistory: toWireTicks(s.TradePriceHistory),
		MidPriceHistory:   toWireTicks(s.MidPriceHistory),
	}
	if s.LastReceivedOrder != nil {
		o := FromOrder(*s.LastReceivedOrder)
		resp.LastReceivedOrder = &o
	}
	return resp
}

func toWireLevels(levels []PriceLevelSnapshot) []wire.PriceLevel {
	out := make([]wire.PriceLevel, len(levels))
	for i, l := range levels {
		out[i] = wire.PriceLevel{Price: l.Price, Quantity: l.TotalQty, OrderCount: l.OrderCount}
	}
	return out
}

func toWireTicks(ticks []PriceTickSnapshot) []wire.PriceTick {
	out := make([]wire.PriceTick, len(ticks))
	for i, t := range ticks {
		out[i] = wire.PriceTick{Price: t.Price, TimestampMs: t.Timestamp}
	}
	return out
}

func sideFromWire(s wire.Side) Side {
	if s == wire.SideSell {
		return SideSell
	}
	return SideBuy
}

func sideToWire(s Side) wire.Side {
	if s == SideSell {
		return wire.SideSell
	}
	return wire.SideBuy
}

func typeFromWire(t wire.OrderType) OrderType {
	if t == wire.OrderTypeMarket {
		return OrderTypeMarket
	}
	return OrderTypeLimit
}

func typeToWire(t OrderType) wire.OrderType {
	if t == OrderTypeMarket {
		return wire.OrderTypeMarket
	}
	return wire.OrderTypeLimit
}
