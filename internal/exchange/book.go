package exchange

import "container/heap"

// restingOrder is the book's own record of a resting order. Order
// identity lives here; the index below points at it but never owns it
// — see spec.md's note on resolving the order/level/index cycle by
// giving the level's FIFO sole ownership.
type restingOrder struct {
	id       string
	clientID string
	side     Side
	price    float64
	quantity float64 // remaining
	ts       int64

	level      *priceLevel
	prev, next *restingOrder
}

func (o *restingOrder) remaining() float64 { return o.quantity }

// priceLevel is one price's FIFO queue of resting orders.
type priceLevel struct {
	price      float64
	head, tail *restingOrder
	count      int
	totalQty   float64
}

func (l *priceLevel) append(o *restingOrder) {
	o.level = l
	o.prev = l.tail
	o.next = nil
	if l.tail != nil {
		l.tail.next = o
	} else {
		l.head = o
	}
	l.tail = o
	l.count++
}

func (l *priceLevel) popHead() *restingOrder {
	o := l.head
	if o == nil {
		return nil
	}
	n := o.next
	l.head = n
	if n != nil {
		n.prev = nil
	} else {
		l.tail = nil
	}
	o.prev, o.next, o.level = nil, nil, nil
	l.count--
	return o
}

func (l *priceLevel) unlink(o *restingOrder) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.prev, o.next, o.level = nil, nil, nil
	l.count--
}

// levelHeap is a binary heap over price levels: max-heap for bids,
// min-heap for asks, so the best price is always data[0].
type levelHeap struct {
	data  []*priceLevel
	index map[*priceLevel]int
	isBid bool
}

func newLevelHeap(isBid bool) *levelHeap {
	h := &levelHeap{index: map[*priceLevel]int{}, isBid: isBid}
	heap.Init(h)
	return h
}

func (h *levelHeap) Len() int { return len(h.data) }
func (h *levelHeap) Less(i, j int) bool {
	if h.isBid {
		return h.data[i].price > h.data[j].price
	}
	return h.data[i].price < h.data[j].price
}
func (h *levelHeap) Swap(i, j int) {
	h.data[i], h.data[j] = h.data[j], h.data[i]
	h.index[h.data[i]] = i
	h.index[h.data[j]] = j
}
func (h *levelHeap) Push(x any) {
	l := x.(*priceLevel)
	h.data = append(h.data, l)
	h.index[l] = len(h.data) - 1
}
func (h *levelHeap) Pop() any {
	n := len(h.data)
	l := h.data[n-1]
	h.data = h.data[:n-1]
	delete(h.index, l)
	return l
}
func (h *levelHeap) best() *priceLevel {
	if len(h.data) == 0 {
		return nil
	}
	return h.data[0]
}
func (h *levelHeap) remove(l *priceLevel) {
	if i, ok := h.index[l]; ok {
		heap.Remove(h, i)
	}
}

// bookSide owns one side's price->level map plus the heap used to find
// the best price.
type bookSide struct {
	isBid  bool
	levels map[float64]*priceLevel
	h      *levelHeap
}

func newBookSide(isBid bool) *bookSide {
	return &bookSide{isBid: isBid, levels: map[float64]*priceLevel{}, h: newLevelHeap(isBid)}
}

func (bs *bookSide) best() *priceLevel { return bs.h.best() }

func (bs *bookSide) getOrCreate(price float64) *priceLevel {
	if l, ok := bs.levels[price]; ok {
		return l
	}
	l := &priceLevel{price: price}
	bs.levels[price] = l
	heap.Push(bs.h, l)
	return l
}

func (bs *bookSide) removeLevel(l *priceLevel) {
	delete(bs.levels, l.price)
	bs.h.remove(l)
}

// sortedLevels returns up to depth levels, best-first. It does not
// mutate the heap (Go's container/heap has no peek-N, so this copies
// and re-heapifies a scratch slice).
func (bs *bookSide) sortedLevels(depth int) []*priceLevel {
	scratch := make([]*priceLevel, len(bs.h.data))
	copy(scratch, bs.h.data)
	sh := &levelHeap{data: scratch, index: map[*priceLevel]int{}, isBid: bs.isBid}
	for i, l := range sh.data {
		sh.index[l] = i
	}
	heap.Init(sh)
	out := make([]*priceLevel, 0, depth)
	for sh.Len() > 0 && len(out) < depth {
		out = append(out, heap.Pop(sh).(*priceLevel))
	}
	return out
}

// Book is the two-sided order book for one symbol: a price-indexed map
// of FIFO levels per side plus an id index for O(1) cancel.
type Book struct {
	bids, asks *bookSide
	index      map[string]*restingOrder
}

// NewBook creates an empty order book.
func NewBook() *Book {
	return &Book{
		bids:  newBookSide(true),
		asks:  newBookSide(false),
		index: map[string]*restingOrder{},
	}
}

func (b *Book) sideFor(s Side) *bookSide {
	if s == SideBuy {
		return b.bids
	}
	return b.asks
}

// AddResting rests o on its side's book. o must be LIMIT with price > 0
// (validated by the caller — the engine — before reaching here).
func (b *Book) AddResting(o Order) {
	node := &restingOrder{
		id:       o.OrderID,
		clientID: o.ClientID,
		side:     o.Side,
		price:    o.Price,
		quantity: o.Quantity,
		ts:       o.Timestamp,
	}
	side := b.sideFor(o.Side)
	l := side.getOrCreate(o.Price)
	l.append(node)
	l.totalQty += node.quantity
	b.index[node.id] = node
}

// RemoveOrder cancels a resting order by id in O(1). Returns false if
// the id was not present.
func (b *Book) RemoveOrder(orderID string) bool {
	node, ok := b.index[orderID]
	if !ok {
		return false
	}
	l := node.level
	side := b.sideFor(node.side)
	l.totalQty -= node.quantity
	l.unlink(node)
	if l.count == 0 {
		side.removeLevel(l)
	}
	delete(b.index, orderID)
	return true
}

// BestBid returns the best (highest) bid level, or nil if the bid side
// is empty.
func (b *Book) BestBid() *PriceLevelSnapshot { return snapshotOf(b.bids.best()) }

// BestAsk returns the best (lowest) ask level, or nil if the ask side
// is empty.
func (b *Book) BestAsk() *PriceLevelSnapshot { return snapshotOf(b.asks.best()) }

func snapshotOf(l *priceLevel) *PriceLevelSnapshot {
	if l == nil {
		return nil
	}
	return &PriceLevelSnapshot{Price: l.price, TotalQty: l.totalQty, OrderCount: l.count}
}

// Snapshot returns the top depth levels per side, bids descending and
// asks ascending.
func (b *Book) Snapshot(depth int) (bids, asks []PriceLevelSnapshot) {
	for _, l := range b.bids.sortedLevels(depth) {
		bids = append(bids, PriceLevelSnapshot{Price: l.price, TotalQty: l.totalQty, OrderCount: l.count})
	}
	for _, l := range b.asks.sortedLevels(depth) {
		asks = append(asks, PriceLevelSnapshot{Price: l.price, TotalQty: l.totalQty, OrderCount: l.count})
	}
	return bids, asks
}
