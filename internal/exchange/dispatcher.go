package exchange

import (
	"sync"

	"github.com/stockcraft/marketsim/internal/pricehistory"
)

// Dispatcher routes incoming orders to per-symbol engines, lazily
// creating an engine on the first order for a symbol it has not seen;
// a status query for an unseen symbol creates nothing. It is the single mutator of the symbol map: every
// public method hands a command to one goroutine running loop over a
// buffered channel, so engines/orderCount/lastReceivedOrder are only
// ever touched from that one goroutine and need no further locking.
// This mirrors realmfikri-Limitless/engine.OrderBook's reqCh/bookRequest
// worker loop, generalized from one book's requests to the dispatcher's
// three (submit, cancel, status).
type Dispatcher struct {
	priceHistoryCapacity int

	engines           map[string]*Engine
	orderCount        map[string]int64
	lastReceivedOrder map[string]Order
	hasLastReceived   map[string]bool

	commands  chan dispatcherCommand
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type commandKind int

const (
	commandSubmit commandKind = iota
	commandCancel
	commandStatus
)

// dispatcherCommand is one request to the loop goroutine. Exactly one
// of ackReply/boolReply/statusReply is set, matching kind.
type dispatcherCommand struct {
	kind commandKind

	order   Order
	symbol  string
	orderID string

	ackReply    chan OrderAck
	boolReply   chan bool
	statusReply chan StatusSnapshot
}

// commandQueueDepth bounds how many in-flight requests the two
// endpoints (order and status) can have queued against the loop
// goroutine before a caller blocks on send.
const commandQueueDepth = 64

// NewDispatcher creates a Dispatcher whose lazily-created engines use
// priceHistoryCapacity for their tick rings, and starts its loop
// goroutine.
func NewDispatcher(priceHistoryCapacity int) *Dispatcher {
	d := &Dispatcher{
		priceHistoryCapacity: priceHistoryCapacity,
		engines:              map[string]*Engine{},
		orderCount:           map[string]int64{},
		lastReceivedOrder:    map[string]Order{},
		hasLastReceived:      map[string]bool{},
		commands:             make(chan dispatcherCommand, commandQueueDepth),
		closed:               make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case cmd := <-d.commands:
			d.handle(cmd)
		case <-d.closed:
			d.drainCommands()
			return
		}
	}
}

// drainCommands processes every command already sitting in the queue
// before the loop goroutine exits, so a command that was accepted by
// enqueue just before Close was called still gets its reply written
// rather than leaving its caller blocked on an empty channel.
func (d *Dispatcher) drainCommands() {
	for {
		select {
		case cmd := <-d.commands:
			d.handle(cmd)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(cmd dispatcherCommand) {
	switch cmd.kind {
	case commandSubmit:
		cmd.ackReply <- d.submitOnLoop(cmd.order)
	case commandCancel:
		cmd.boolReply <- d.cancelOnLoop(cmd.symbol, cmd.orderID)
	case commandStatus:
		cmd.statusReply <- d.statusOnLoop(cmd.symbol)
	}
}

// enqueue hands cmd to the loop goroutine, unless Close has already
// been called and the loop has stopped accepting new work, in which
// case it reports failure instead of blocking forever.
func (d *Dispatcher) enqueue(cmd dispatcherCommand) bool {
	select {
	case d.commands <- cmd:
		return true
	case <-d.closed:
		select {
		case d.commands <- cmd:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop goroutine once every already-enqueued command
// has been processed, and waits for it to exit.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.closed) })
	d.wg.Wait()
}

func (d *Dispatcher) engineFor(symbol string) *Engine {
	e, ok := d.engines[symbol]
	if !ok {
		e = NewEngine(symbol, d.priceHistoryCapacity)
		d.engines[symbol] = e
	}
	return e
}

// OrderAckStatus mirrors spec.md §6's OrderAck.status enum. Submit only
// ever produces ACCEPTED or REJECTED; the remaining values are reserved
// for richer downstream consumers (e.g. a future partial-fill notifier)
// and are not emitted by this dispatcher.
type OrderAckStatus string

const (
	OrderAckAccepted OrderAckStatus = "ACCEPTED"
	OrderAckRejected OrderAckStatus = "REJECTED"
)

// OrderAck is returned for every submitted order.
type OrderAck struct {
	OrderID   string
	Status    OrderAckStatus
	Message   string
	Timestamp int64
}

// Submit routes order to its symbol's engine (creating it if this is
// the symbol's first order), updates bookkeeping, and returns an ack.
// The work happens on the dispatcher's loop goroutine; Submit only
// enqueues the request and waits for its reply.
func (d *Dispatcher) Submit(order Order) OrderAck {
	reply := make(chan OrderAck, 1)
	cmd := dispatcherCommand{kind: commandSubmit, order: order, ackReply: reply}
	if !d.enqueue(cmd) {
		return OrderAck{
			OrderID:   order.OrderID,
			Status:    OrderAckRejected,
			Message:   "dispatcher is shutting down",
			Timestamp: order.Timestamp,
		}
	}
	return <-reply
}

func (d *Dispatcher) submitOnLoop(order Order) OrderAck {
	e := d.engineFor(order.Symbol)

	d.orderCount[order.Symbol]++
	d.lastReceivedOrder[order.Symbol] = order
	d.hasLastReceived[order.Symbol] = true

	result := e.Match(order)

	ack := OrderAck{OrderID: order.OrderID, Timestamp: order.Timestamp}
	if result.Success {
		ack.Status = OrderAckAccepted
		ack.Message = "OK"
	} else {
		ack.Status = OrderAckRejected
		ack.Message = result.Error
	}
	return ack
}

// Cancel routes a cancel to the given symbol's engine. Returns false
// if the symbol has never been seen or the id was not resting.
func (d *Dispatcher) Cancel(symbol, orderID string) bool {
	reply := make(chan bool, 1)
	cmd := dispatcherCommand{kind: commandCancel, symbol: symbol, orderID: orderID, boolReply: reply}
	if !d.enqueue(cmd) {
		return false
	}
	return <-reply
}

func (d *Dispatcher) cancelOnLoop(symbol, orderID string) bool {
	e, ok := d.engines[symbol]
	if !ok {
		return false
	}
	return e.Cancel(orderID)
}

// PriceTickSnapshot is a wire-friendly (price, timestamp_ms) pair.
type PriceTickSnapshot struct {
	Price     float64
	Timestamp int64
}

// StatusSnapshot is the dispatcher's answer to a status query, matching
// spec.md §6's StatusResponse.
type StatusSnapshot struct {
	Symbol              string
	TotalOrdersReceived int64
	TotalTrades         int64
	TotalVolume         float64
	LastTradePrice      float64
	LastTradeTimestamp  int64
	MidPrice            float64
	MidPriceTimestamp   int64
	LastReceivedOrder   *Order
	Bids                []PriceLevelSnapshot
	Asks                []PriceLevelSnapshot
	TradePriceHistory   []PriceTickSnapshot
	MidPriceHistory     []PriceTickSnapshot
}

const statusSnapshotDepth = 5

// Status returns a StatusSnapshot for symbol. Unknown symbols yield a
// zeroed snapshot carrying only the requested symbol name, so pollers
// need not special-case a not-yet-traded symbol as an error.
func (d *Dispatcher) Status(symbol string) StatusSnapshot {
	reply := make(chan StatusSnapshot, 1)
	cmd := dispatcherCommand{kind: commandStatus, symbol: symbol, statusReply: reply}
	if !d.enqueue(cmd) {
		return StatusSnapshot{Symbol: symbol}
	}
	return <-reply
}

func (d *Dispatcher) statusOnLoop(symbol string) StatusSnapshot {
	e, ok := d.engines[symbol]
	if !ok {
		return StatusSnapshot{Symbol: symbol}
	}

	snap := StatusSnapshot{
		Symbol:              symbol,
		TotalOrdersReceived: d.orderCount[symbol],
		TotalTrades:         e.TradeCount(),
		TotalVolume:         e.TotalVolume(),
	}

	if last, ok := e.TradeHistory().Last(); ok {
		snap.LastTradePrice = last.Price
		snap.LastTradeTimestamp = last.Timestamp
	}
	if last, ok := e.MidHistory().Last(); ok {
		snap.MidPrice = last.Price
		snap.MidPriceTimestamp = last.Timestamp
	}
	if d.hasLastReceived[symbol] {
		order := d.lastReceivedOrder[symbol]
		snap.LastReceivedOrder = &order
	}

	snap.Bids, snap.Asks = e.Book().Snapshot(statusSnapshotDepth)
	snap.TradePriceHistory = toTickSnapshots(e.TradeHistory().All())
	snap.MidPriceHistory = toTickSnapshots(e.MidHistory().All())

	return snap
}

func toTickSnapshots(ticks []pricehistory.Tick) []PriceTickSnapshot {
	out := make([]PriceTickSnapshot, len(ticks))
	for i, t := range ticks {
		out[i] = PriceTickSnapshot{Price: t.Price, Timestamp: t.Timestamp}
	}
	return out
}
