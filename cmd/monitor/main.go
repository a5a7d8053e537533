// Command monitor polls the exchange's status endpoint for a set of
// symbols at a configured cadence, aggregates OHLCV bars locally, logs
// a one-line summary per poll, and (if history_dir is configured)
// appends rows to the four CSV series spec.md §6 defines. It accepts
// an optional positional symbol argument, per spec.md §6's CLI
// surface. No terminal dashboard is rendered: spec.md §1 places
// "terminal dashboards" outside this system's core scope.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockcraft/marketsim/internal/config"
	"github.com/stockcraft/marketsim/internal/history"
	"github.com/stockcraft/marketsim/internal/obslog"
	"github.com/stockcraft/marketsim/internal/ohlcv"
	"github.com/stockcraft/marketsim/internal/transport"
	"github.com/stockcraft/marketsim/internal/wire"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		println("monitor: " + err.Error())
		os.Exit(1)
	}
	log := obslog.New(cfg.LogLevel, "monitor")

	symbols := cfg.Monitor.Symbols
	if arg := flag.Arg(0); arg != "" {
		symbols = []string{arg}
	}

	var serializer transport.Serializer
	if cfg.Exchange.SerializerBackend == "gob" {
		serializer = transport.NewGobSerializer()
	} else {
		serializer = transport.NewJSONSerializer()
	}

	client, err := transport.Dial(cfg.Exchange.StatusAddr, cfg.RequestTimeout())
	if err != nil {
		obslog.Fatal(log, "failed to connect to the exchange status endpoint", err)
	}
	defer client.Close()

	statusClient := transport.NewStatusClient(client, serializer)

	watchers := make(map[string]*symbolWatcher, len(symbols))
	for _, symbol := range symbols {
		w := &symbolWatcher{
			symbol:  symbol,
			builder: ohlcv.NewBuilder(symbol, cfg.Monitor.OHLCVIntervalSec),
		}
		if cfg.Monitor.HistoryDir != "" {
			rec, err := history.NewRecorder(cfg.Monitor.HistoryDir, symbol)
			if err != nil {
				obslog.Fatal(log, "failed to open history recorder for "+symbol, err)
			}
			w.recorder = rec
			defer rec.Close()
		}
		watchers[symbol] = w
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	startedAt := time.Now()

	log.Infow("monitor polling", "symbols", symbols, "interval", cfg.PollInterval())

	for {
		select {
		case <-sigCh:
			log.Info("monitor shutting down")
			return
		case <-ticker.C:
			for _, w := range watchers {
				status, err := statusClient.Query(w.symbol)
				if err != nil {
					// Transient I/O per spec.md §7: retry silently at the
					// next poll cadence.
					log.Warnw("status query failed", "symbol", w.symbol, "error", err)
					continue
				}
				w.observe(status, log, time.Since(startedAt).Milliseconds())
			}
		}
	}
}

// symbolWatcher owns one symbol's local OHLCV aggregation and, if
// enabled, its history recorder.
type symbolWatcher struct {
	symbol   string
	builder  *ohlcv.Builder
	recorder *history.Recorder

	// lastProcessedTradeTs is the LastTradeTimestamp already folded
	// into the OHLCV builder, so a poll that lands before the next
	// trade (returning the same status) does not fold it in again.
	lastProcessedTradeTs int64
}

func (w *symbolWatcher) observe(status wire.StatusResponse, log *zap.SugaredLogger, elapsedMs int64) {
	if status.LastTradeTimestamp > w.lastProcessedTradeTs {
		w.builder.ProcessTick(status.LastTradePrice, status.LastTradeTimestamp, 1)
		w.lastProcessedTradeTs = status.LastTradeTimestamp
		for _, bar := range w.builder.DrainCompletedBars() {
			if w.recorder == nil {
				continue
			}
			w.recorder.RecordOHLCV(wire.OHLCV{
				Symbol:          w.symbol,
				Timestamp:       bar.BucketStartMs,
				IntervalSeconds: bar.IntervalSeconds,
				Open:            bar.Open,
				High:            bar.High,
				Low:             bar.Low,
				Close:           bar.Close,
				Volume:          bar.Volume,
			})
		}
	}

	if w.recorder != nil {
		if status.LastTradeTimestamp > 0 {
			w.recorder.RecordTrade(wire.PriceTick{Price: status.LastTradePrice, TimestampMs: status.LastTradeTimestamp})
		}
		if status.MidPriceTimestamp > 0 {
			var bestBid, bestAsk float64
			if len(status.CurrentOrderbook.Bids) > 0 {
				bestBid = status.CurrentOrderbook.Bids[0].Price
			}
			if len(status.CurrentOrderbook.Asks) > 0 {
				bestAsk = status.CurrentOrderbook.Asks[0].Price
			}
			w.recorder.RecordMid(wire.PriceTick{Price: status.MidPrice, TimestampMs: status.MidPriceTimestamp}, bestBid, bestAsk)
		}
		w.recorder.RecordOrderBook(status.MidPriceTimestamp, elapsedMs, status.CurrentOrderbook.Bids, status.CurrentOrderbook.Asks)
	}

	log.Infow("market summary",
		"symbol", w.symbol,
		"mid_price", status.MidPrice,
		"last_trade_price", status.LastTradePrice,
		"total_trades", status.TotalTrades,
		"total_volume", status.TotalVolume,
	)
}
