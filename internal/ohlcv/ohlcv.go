// Package ohlcv bucket-aggregates a tick stream into OHLCV bars, per
// spec.md §4.5. Grounded on original_source's OHLCVBuilder: same
// bucket-start arithmetic and closed-bar FIFO, translated into an
// idiomatic Go accumulator rather than a get/pop pair.
package ohlcv

import "fmt"

// Bar is one completed or in-progress candlestick.
type Bar struct {
	Symbol          string
	BucketStartMs   int64
	IntervalSeconds int32
	Open            float64
	High            float64
	Low             float64
	Close           float64
	Volume          float64
	TickCount       int32
}

// Builder accumulates ticks for one symbol into fixed-width bars.
type Builder struct {
	symbol     string
	intervalMs int64
	intervalS  int32

	current     Bar
	initialized bool

	completed []Bar
}

// NewBuilder creates a Builder bucketing symbol's ticks into bars of
// intervalSeconds width. Panics if intervalSeconds <= 0, mirroring the
// teacher's constructor-time validation.
func NewBuilder(symbol string, intervalSeconds int32) *Builder {
	if intervalSeconds <= 0 {
		panic(fmt.Sprintf("ohlcv: interval must be positive, got %d", intervalSeconds))
	}
	return &Builder{
		symbol:     symbol,
		intervalMs: int64(intervalSeconds) * 1000,
		intervalS:  intervalSeconds,
	}
}

func (b *Builder) bucketStart(tsMs int64) int64 {
	return (tsMs / b.intervalMs) * b.intervalMs
}

// ProcessTick folds one (price, timestamp_ms, volume) tick into the
// current bar, closing and pushing it if the tick's bucket differs.
func (b *Builder) ProcessTick(price float64, tsMs int64, volume float64) {
	bucket := b.bucketStart(tsMs)

	if !b.initialized || bucket != b.current.BucketStartMs {
		if b.initialized {
			b.completed = append(b.completed, b.current)
		}
		b.current = Bar{
			Symbol:          b.symbol,
			BucketStartMs:   bucket,
			IntervalSeconds: b.intervalS,
			Open:            price,
			High:            price,
			Low:             price,
			Close:           price,
			Volume:          volume,
			TickCount:       1,
		}
		b.initialized = true
		return
	}

	if price > b.current.High {
		b.current.High = price
	}
	if price < b.current.Low {
		b.current.Low = price
	}
	b.current.Close = price
	b.current.Volume += volume
	b.current.TickCount++
}

// HasCompletedBar reports whether any closed bar is waiting to be
// drained.
func (b *Builder) HasCompletedBar() bool { return len(b.completed) > 0 }

// DrainCompletedBars returns and clears all completed bars, oldest
// first.
func (b *Builder) DrainCompletedBars() []Bar {
	out := b.completed
	b.completed = nil
	return out
}

// CurrentBar returns a copy of the in-progress bar and whether one has
// been started yet.
func (b *Builder) CurrentBar() (Bar, bool) {
	return b.current, b.initialized
}

// Reset clears both the in-progress bar and any undrained completed
// bars.
func (b *Builder) Reset() {
	b.current = Bar{}
	b.initialized = false
	b.completed = nil
}
