package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stockcraft/marketsim/internal/wire"
)

func readFile(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return lines
}

func TestNewRecorderWritesHeadersOnce(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, "AAPL")
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	r.Close()

	r2, err := NewRecorder(dir, "AAPL")
	if err != nil {
		t.Fatalf("reopen recorder: %v", err)
	}
	defer r2.Close()

	if err := r2.RecordTrade(wire.PriceTick{Price: 100, TimestampMs: 1000}); err != nil {
		t.Fatalf("record trade: %v", err)
	}

	lines := readFile(t, filepath.Join(dir, "AAPL_trade_prices.csv"))
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines: %v", len(lines), lines)
	}
	if lines[0] != "timestamp,timestamp_ms,price" {
		t.Errorf("unexpected header: %q", lines[0])
	}
}

func TestRecordTradeSkipsNonNewerTicks(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, "MSFT")
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	defer r.Close()

	r.RecordTrade(wire.PriceTick{Price: 100, TimestampMs: 1000})
	r.RecordTrade(wire.PriceTick{Price: 101, TimestampMs: 1000})
	r.RecordTrade(wire.PriceTick{Price: 99, TimestampMs: 500})
	r.RecordTrade(wire.PriceTick{Price: 102, TimestampMs: 2000})

	lines := readFile(t, filepath.Join(dir, "MSFT_trade_prices.csv"))
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %v", len(lines), lines)
	}
}

func TestRecordMidIncludesSpread(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, "AAPL")
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	defer r.Close()

	if err := r.RecordMid(wire.PriceTick{Price: 100.5, TimestampMs: 1000}, 100, 101); err != nil {
		t.Fatalf("record mid: %v", err)
	}

	lines := readFile(t, filepath.Join(dir, "AAPL_mid_prices.csv"))
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d: %v", len(lines), lines)
	}
	if !strings.HasSuffix(lines[1], "100,101,1") {
		t.Errorf("expected spread of 1 in row, got %q", lines[1])
	}
}

func TestRecordOrderBookFormatsTuples(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, "AAPL")
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	defer r.Close()

	bids := []wire.PriceLevel{{Price: 100, Quantity: 10, OrderCount: 2}}
	asks := []wire.PriceLevel{{Price: 101, Quantity: 5, OrderCount: 1}}
	if err := r.RecordOrderBook(500, 500, bids, asks); err != nil {
		t.Fatalf("record orderbook: %v", err)
	}

	lines := readFile(t, filepath.Join(dir, "AAPL_orderbook.csv"))
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[1], "100:10:2") || !strings.Contains(lines[1], "101:5:1") {
		t.Errorf("expected level tuples in row, got %q", lines[1])
	}
}

func TestRecordOHLCVAlwaysAppends(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir, "AAPL")
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	defer r.Close()

	bar := wire.OHLCV{Symbol: "AAPL", Timestamp: 60000, IntervalSeconds: 60, Open: 100, High: 102, Low: 99, Close: 101, Volume: 500}
	r.RecordOHLCV(bar)
	r.RecordOHLCV(bar)

	lines := readFile(t, filepath.Join(dir, "AAPL_ohlcv.csv"))
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %v", len(lines), lines)
	}
}
