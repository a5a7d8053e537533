// Package history writes the four append-only CSV series spec.md §6
// defines for a symbol under history recording: trade prices, mid
// prices, order book snapshots, and OHLCV bars. No example repo in the
// pack writes CSV directly; encoding/csv is the idiomatic stdlib answer
// and no third-party CSV library appears anywhere in the corpus to
// prefer over it.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stockcraft/marketsim/internal/wire"
)

// Recorder owns one Symbol's four CSV writers, opened for append. The
// trade-price and mid-price writers each track the last timestamp_ms
// they wrote so repeated snapshots of unchanged state are skipped, per
// spec.md §6's "only ticks with timestamp_ms > last_written are
// appended." Order book and OHLCV rows are appended on every call.
type Recorder struct {
	symbol string
	dir    string

	tradeFile *os.File
	tradeW    *csv.Writer
	lastTrade int64

	midFile *os.File
	midW    *csv.Writer
	lastMid int64

	bookFile *os.File
	bookW    *csv.Writer

	ohlcvFile *os.File
	ohlcvW    *csv.Writer
}

// NewRecorder opens (creating if necessary) the four CSV files for
// symbol under dir, writing headers only for files that are new.
func NewRecorder(dir, symbol string) (*Recorder, error) {
	r := &Recorder{symbol: symbol, dir: dir, lastTrade: -1, lastMid: -1}

	var err error
	if r.tradeFile, r.tradeW, err = openSeries(dir, symbol, "trade_prices",
		[]string{"timestamp", "timestamp_ms", "price"}); err != nil {
		return nil, err
	}
	if r.midFile, r.midW, err = openSeries(dir, symbol, "mid_prices",
		[]string{"timestamp", "timestamp_ms", "mid_price", "best_bid", "best_ask", "spread"}); err != nil {
		r.Close()
		return nil, err
	}
	if r.bookFile, r.bookW, err = openSeries(dir, symbol, "orderbook",
		[]string{"timestamp", "elapsed_ms", "bids", "asks"}); err != nil {
		r.Close()
		return nil, err
	}
	if r.ohlcvFile, r.ohlcvW, err = openSeries(dir, symbol, "ohlcv",
		[]string{"timestamp", "timestamp_ms", "interval_seconds", "open", "high", "low", "close", "volume"}); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func openSeries(dir, symbol, name string, header []string) (*os.File, *csv.Writer, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", symbol, name))
	isNew := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		isNew = false
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("history: write header %s: %w", path, err)
		}
		w.Flush()
	}
	return f, w, nil
}

func formatTimestamp(tsMs int64) string {
	return time.UnixMilli(tsMs).UTC().Format(time.RFC3339Nano)
}

// RecordTrade appends a trade price tick, skipping it if tsMs is not
// newer than the last one recorded.
func (r *Recorder) RecordTrade(tick wire.PriceTick) error {
	if tick.TimestampMs <= r.lastTrade {
		return nil
	}
	row := []string{
		formatTimestamp(tick.TimestampMs),
		strconv.FormatInt(tick.TimestampMs, 10),
		strconv.FormatFloat(tick.Price, 'f', -1, 64),
	}
	if err := r.tradeW.Write(row); err != nil {
		return fmt.Errorf("history: write trade row: %w", err)
	}
	r.tradeW.Flush()
	r.lastTrade = tick.TimestampMs
	return nil
}

// RecordMid appends a mid-price tick along with the top of book that
// produced it, skipping it if tsMs is not newer than the last one
// recorded.
func (r *Recorder) RecordMid(tick wire.PriceTick, bestBid, bestAsk float64) error {
	if tick.TimestampMs <= r.lastMid {
		return nil
	}
	row := []string{
		formatTimestamp(tick.TimestampMs),
		strconv.FormatInt(tick.TimestampMs, 10),
		strconv.FormatFloat(tick.Price, 'f', -1, 64),
		strconv.FormatFloat(bestBid, 'f', -1, 64),
		strconv.FormatFloat(bestAsk, 'f', -1, 64),
		strconv.FormatFloat(bestAsk-bestBid, 'f', -1, 64),
	}
	if err := r.midW.Write(row); err != nil {
		return fmt.Errorf("history: write mid row: %w", err)
	}
	r.midW.Flush()
	r.lastMid = tick.TimestampMs
	return nil
}

// RecordOrderBook appends a top-5 order book snapshot. tsMs is the
// mid-price timestamp for the timestamp column; elapsedMs is
// milliseconds since the recording session started, for the
// elapsed_ms column — the two are distinct series, passed separately.
func (r *Recorder) RecordOrderBook(tsMs, elapsedMs int64, bids, asks []wire.PriceLevel) error {
	row := []string{
		formatTimestamp(tsMs),
		strconv.FormatInt(elapsedMs, 10),
		formatLevels(bids),
		formatLevels(asks),
	}
	if err := r.bookW.Write(row); err != nil {
		return fmt.Errorf("history: write orderbook row: %w", err)
	}
	r.bookW.Flush()
	return nil
}

func formatLevels(levels []wire.PriceLevel) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%s:%s:%d",
			strconv.FormatFloat(l.Price, 'f', -1, 64),
			strconv.FormatFloat(l.Quantity, 'f', -1, 64),
			l.OrderCount)
	}
	return strings.Join(parts, ";")
}

// RecordOHLCV appends a completed bar. Bars are already deduplicated
// by the OHLCV aggregator that produces them, so every call here is
// written unconditionally.
func (r *Recorder) RecordOHLCV(bar wire.OHLCV) error {
	row := []string{
		formatTimestamp(bar.Timestamp),
		strconv.FormatInt(bar.Timestamp, 10),
		strconv.FormatInt(int64(bar.IntervalSeconds), 10),
		strconv.FormatFloat(bar.Open, 'f', -1, 64),
		strconv.FormatFloat(bar.High, 'f', -1, 64),
		strconv.FormatFloat(bar.Low, 'f', -1, 64),
		strconv.FormatFloat(bar.Close, 'f', -1, 64),
		strconv.FormatFloat(bar.Volume, 'f', -1, 64),
	}
	if err := r.ohlcvW.Write(row); err != nil {
		return fmt.Errorf("history: write ohlcv row: %w", err)
	}
	r.ohlcvW.Flush()
	return nil
}

// Close flushes and closes all four underlying files.
func (r *Recorder) Close() error {
	var firstErr error
	for _, f := range []*os.File{r.tradeFile, r.midFile, r.bookFile, r.ohlcvFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
