package exchange

import "testing"

func restSell(t *testing.T, e *Engine, id string, price, qty float64) {
	t.Helper()
	res := e.Match(Order{OrderID: id, Symbol: e.Symbol(), Side: SideSell, Type: OrderTypeLimit, Price: price, Quantity: qty, Timestamp: 1})
	if !res.Success {
		t.Fatalf("failed to rest sell %s: %v", id, res.Error)
	}
}

func restBuy(t *testing.T, e *Engine, id string, price, qty float64) {
	t.Helper()
	res := e.Match(Order{OrderID: id, Symbol: e.Symbol(), Side: SideBuy, Type: OrderTypeLimit, Price: price, Quantity: qty, Timestamp: 1})
	if !res.Success {
		t.Fatalf("failed to rest buy %s: %v", id, res.Error)
	}
}

// Scenario 1: crossing LIMIT fills top level only.
func TestScenarioCrossingLimitFillsTopLevel(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restSell(t, e, "S1", 105.00, 100)
	restSell(t, e, "S2", 105.50, 150)

	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeLimit, Price: 105.50, Quantity: 75, Timestamp: 2})

	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	if res.Trades[0].Price != 105.00 || res.Trades[0].Quantity != 75 {
		t.Errorf("unexpected trade: %+v", res.Trades[0])
	}
	if res.ExecutedQuantity != 75 {
		t.Errorf("expected executed 75, got %v", res.ExecutedQuantity)
	}
	if res.VWAPExecutionPrice != 105.00 {
		t.Errorf("expected vwap 105.00, got %v", res.VWAPExecutionPrice)
	}

	bids, asks := e.Book().Snapshot(10)
	if len(bids) != 0 {
		t.Errorf("expected no resting bids, got %+v", bids)
	}
	if len(asks) != 2 || asks[0].Price != 105.00 || asks[0].TotalQty != 25 || asks[1].Price != 105.50 || asks[1].TotalQty != 150 {
		t.Errorf("unexpected asks: %+v", asks)
	}
}

// Scenario 2: partial fill across two levels, remainder rests.
func TestScenarioPartialFillAcrossTwoLevels(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restSell(t, e, "S1", 105.00, 100)
	restSell(t, e, "S2", 105.50, 150)

	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeLimit, Price: 105.00, Quantity: 200, Timestamp: 2})

	if len(res.Trades) != 1 || res.Trades[0].Quantity != 100 || res.Trades[0].Price != 105.00 {
		t.Fatalf("unexpected trades: %+v", res.Trades)
	}
	if res.ExecutedQuantity != 100 {
		t.Errorf("expected executed 100, got %v", res.ExecutedQuantity)
	}
	if res.VWAPExecutionPrice != 105.00 {
		t.Errorf("expected vwap 105.00, got %v", res.VWAPExecutionPrice)
	}

	bids, asks := e.Book().Snapshot(10)
	if len(bids) != 1 || bids[0].Price != 105.00 || bids[0].TotalQty != 100 {
		t.Errorf("expected resting bid 100@105.00, got %+v", bids)
	}
	if len(asks) != 1 || asks[0].Price != 105.50 || asks[0].TotalQty != 150 {
		t.Errorf("expected only 105.50 ask left, got %+v", asks)
	}
}

// Scenario 3: MARKET buy exhausts both levels, no resting remainder.
func TestScenarioMarketBuyExhaustsBothLevels(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restSell(t, e, "S1", 105.00, 100)
	restSell(t, e, "S2", 105.50, 150)

	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeMarket, Quantity: 300, Timestamp: 2})

	if len(res.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(res.Trades))
	}
	if res.Trades[0].Price != 105.00 || res.Trades[0].Quantity != 100 {
		t.Errorf("unexpected first trade: %+v", res.Trades[0])
	}
	if res.Trades[1].Price != 105.50 || res.Trades[1].Quantity != 150 {
		t.Errorf("unexpected second trade: %+v", res.Trades[1])
	}
	if res.ExecutedQuantity != 250 {
		t.Errorf("expected executed 250, got %v", res.ExecutedQuantity)
	}
	wantVWAP := (100*105.00 + 150*105.50) / 250
	if res.VWAPExecutionPrice != wantVWAP {
		t.Errorf("expected vwap %v, got %v", wantVWAP, res.VWAPExecutionPrice)
	}

	_, asks := e.Book().Snapshot(10)
	if len(asks) != 0 {
		t.Errorf("expected empty sell side, got %+v", asks)
	}
	bids, _ := e.Book().Snapshot(10)
	if len(bids) != 0 {
		t.Errorf("market order must never rest, got bids %+v", bids)
	}
}

// Scenario 4: cancel by id.
func TestScenarioCancelByID(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restBuy(t, e, "X", 104.00, 50)

	if !e.Cancel("X") {
		t.Fatal("expected first cancel to succeed")
	}
	bids, _ := e.Book().Snapshot(10)
	if len(bids) != 0 {
		t.Errorf("expected empty bid side after cancel, got %+v", bids)
	}
	if e.Cancel("X") {
		t.Fatal("expected second cancel to fail")
	}
}

func TestMarketOrderAgainstEmptyBookYieldsSuccessNoTrades(t *testing.T) {
	e := NewEngine("AAPL", 100)
	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeMarket, Quantity: 10, Timestamp: 1})
	if !res.Success {
		t.Fatal("expected success")
	}
	if len(res.Trades) != 0 || res.ExecutedQuantity != 0 {
		t.Fatalf("expected no trades/executed, got %+v", res)
	}
}

func TestSymbolMismatchRejected(t *testing.T) {
	e := NewEngine("AAPL", 100)
	res := e.Match(Order{OrderID: "B1", Symbol: "MSFT", Side: SideBuy, Type: OrderTypeLimit, Price: 10, Quantity: 1, Timestamp: 1})
	if res.Success {
		t.Fatal("expected failure for symbol mismatch")
	}
	if res.Error != "Symbol mismatch" {
		t.Errorf("expected exact error text, got %q", res.Error)
	}
}

func TestZeroQuantityRejected(t *testing.T) {
	e := NewEngine("AAPL", 100)
	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeLimit, Price: 10, Quantity: 0, Timestamp: 1})
	if res.Success {
		t.Fatal("expected rejection for zero quantity")
	}
}

func TestLimitZeroPriceRejected(t *testing.T) {
	e := NewEngine("AAPL", 100)
	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeLimit, Price: 0, Quantity: 1, Timestamp: 1})
	if res.Success {
		t.Fatal("expected rejection for zero price on LIMIT")
	}
}

func TestEqualPriceLimitOrdersCrossAndMatchFIFO(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restSell(t, e, "S1", 100.00, 10)
	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeLimit, Price: 100.00, Quantity: 10, Timestamp: 2})
	if len(res.Trades) != 1 {
		t.Fatalf("expected equal-price LIMIT to cross, got %+v", res.Trades)
	}
}

func TestFIFOPriorityAtSameLevel(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restSell(t, e, "S1", 100.00, 5)
	restSell(t, e, "S2", 100.00, 5)

	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeLimit, Price: 100.00, Quantity: 5, Timestamp: 2})
	if len(res.Trades) != 1 || res.Trades[0].SellerOrderID != "S1" {
		t.Fatalf("expected FIFO match against S1 first, got %+v", res.Trades)
	}
}

func TestTradeIDFormat(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restSell(t, e, "S1", 100.00, 5)
	res := e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeLimit, Price: 100.00, Quantity: 5, Timestamp: 2})
	if res.Trades[0].TradeID != "TRD_0000000001" {
		t.Errorf("expected TRD_0000000001, got %s", res.Trades[0].TradeID)
	}
}

func TestConservationOfVolumeAndTradeCount(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restSell(t, e, "S1", 100.00, 10)
	restSell(t, e, "S2", 101.00, 10)
	e.Match(Order{OrderID: "B1", Symbol: "AAPL", Side: SideBuy, Type: OrderTypeMarket, Quantity: 15, Timestamp: 2})

	if e.TotalVolume() != 15 {
		t.Errorf("expected total volume 15, got %v", e.TotalVolume())
	}
	if e.TradeCount() != 2 {
		t.Errorf("expected 2 trades recorded, got %d", e.TradeCount())
	}
}

func TestMidPriceHistoryFallsBackToSingleSideThenMidpoint(t *testing.T) {
	e := NewEngine("AAPL", 100)
	restBuy(t, e, "B1", 99.00, 10)
	if e.MidHistory().Len() != 1 {
		t.Fatalf("expected one mid pushed from the bid side alone, got %d entries", e.MidHistory().Len())
	}
	if first, _ := e.MidHistory().Last(); first.Price != 99.00 {
		t.Errorf("expected single-side mid 99.00, got %v", first.Price)
	}
	restSell(t, e, "S1", 101.00, 10)
	last, ok := e.MidHistory().Last()
	if !ok {
		t.Fatal("expected a mid price entry once both sides exist")
	}
	if last.Price != 100.00 {
		t.Errorf("expected mid 100.00, got %v", last.Price)
	}
}
