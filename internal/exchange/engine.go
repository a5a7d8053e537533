package exchange

import (
	"fmt"

	"github.com/stockcraft/marketsim/internal/pricehistory"
)

const priceHistoryCapacityDefault = 10000

// Engine is the price-time-priority matching engine for one symbol. It
// exclusively owns its Book, its trade counter, and its price
// histories (spec.md §3's ownership rule).
type Engine struct {
	symbol string
	book   *Book

	tradeCounter int64
	tradeCount   int64
	totalVolume  float64

	tradeHistory *pricehistory.Ring
	midHistory   *pricehistory.Ring
}

// NewEngine creates a matching engine for symbol with the given
// price-history ring capacity.
func NewEngine(symbol string, priceHistoryCapacity int) *Engine {
	if priceHistoryCapacity <= 0 {
		priceHistoryCapacity = priceHistoryCapacityDefault
	}
	return &Engine{
		symbol:       symbol,
		book:         NewBook(),
		tradeHistory: pricehistory.NewRing(priceHistoryCapacity),
		midHistory:   pricehistory.NewRing(priceHistoryCapacity),
	}
}

// Symbol returns the engine's symbol.
func (e *Engine) Symbol() string { return e.symbol }

// Book exposes the underlying order book for read-only queries.
func (e *Engine) Book() *Book { return e.book }

// TradeCount returns the number of trades emitted so far.
func (e *Engine) TradeCount() int64 { return e.tradeCount }

// TotalVolume returns the cumulative executed quantity.
func (e *Engine) TotalVolume() float64 { return e.totalVolume }

// TradeHistory returns the engine's trade price ring.
func (e *Engine) TradeHistory() *pricehistory.Ring { return e.tradeHistory }

// MidHistory returns the engine's mid-price ring.
func (e *Engine) MidHistory() *pricehistory.Ring { return e.midHistory }

func (e *Engine) nextTradeID() string {
	e.tradeCounter++
	return fmt.Sprintf("TRD_%010d", e.tradeCounter)
}

// Match processes an incoming order against the book per spec.md §4.7.
func (e *Engine) Match(order Order) MatchResult {
	if order.Symbol != e.symbol {
		return MatchResult{Success: false, Error: "Symbol mismatch"}
	}
	if err := validateOrder(order); err != nil {
		return MatchResult{Success: false, Error: err.Error()}
	}

	counterSide := e.book.sideFor(order.Side.Opposite())
	remaining := order.Quantity

	var trades []Trade
	var filledValue float64

	for remaining > 0 {
		best := counterSide.best()
		if best == nil {
			break
		}
		if order.Type == OrderTypeLimit {
			if order.Side == SideBuy && best.price > order.Price {
				break
			}
			if order.Side == SideSell && best.price < order.Price {
				break
			}
		}

		for remaining > 0 && best.head != nil {
			head := best.head
			fill := remaining
			if head.remaining() < fill {
				fill = head.remaining()
			}

			trade := e.buildTrade(order, head, fill, best.price)
			trades = append(trades, trade)
			filledValue += fill * best.price

			remaining -= fill
			head.quantity -= fill
			best.totalQty -= fill

			e.tradeHistory.Add(best.price, order.Timestamp)

			if head.remaining() <= 0 {
				best.popHead()
				delete(e.book.index, head.id)
			}
		}

		if best.count == 0 {
			counterSide.removeLevel(best)
		}
	}

	executed := order.Quantity - remaining

	if remaining > 0 {
		if order.Type == OrderTypeLimit {
			resting := order
			resting.Quantity = remaining
			e.book.AddResting(resting)
		}
		// MARKET remainder is discarded: market orders never rest
		// (spec.md design note #3).
	}

	e.tradeCount += int64(len(trades))
	e.totalVolume += executed

	e.updateMidPrice(order.Timestamp)

	var vwap float64
	if executed > 0 {
		vwap = filledValue / executed
	}

	return MatchResult{
		Success:            true,
		Trades:             trades,
		ExecutedQuantity:   executed,
		VWAPExecutionPrice: vwap,
	}
}

func (e *Engine) buildTrade(taker Order, maker *restingOrder, qty, price float64) Trade {
	buyerID, sellerID := taker.OrderID, maker.id
	if taker.Side == SideSell {
		buyerID, sellerID = maker.id, taker.OrderID
	}
	return Trade{
		TradeID:       e.nextTradeID(),
		Symbol:        e.symbol,
		Price:         price,
		Quantity:      qty,
		Timestamp:     taker.Timestamp,
		AggressorSide: taker.Side,
		BuyerOrderID:  buyerID,
		SellerOrderID: sellerID,
	}
}

func (e *Engine) updateMidPrice(ts int64) {
	bid := e.book.BestBid()
	ask := e.book.BestAsk()

	var mid float64
	switch {
	case bid != nil && ask != nil:
		mid = (bid.Price + ask.Price) / 2
	case bid != nil:
		mid = bid.Price
	case ask != nil:
		mid = ask.Price
	default:
		return
	}
	e.midHistory.Add(mid, ts)
}

// Cancel removes a resting order by id.
func (e *Engine) Cancel(orderID string) bool {
	return e.book.RemoveOrder(orderID)
}
