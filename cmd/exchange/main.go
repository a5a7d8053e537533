// Command exchange runs the dispatcher process: it binds the order and
// status endpoints spec.md §6 describes and serves requests until
// interrupted. No positional arguments, per spec.md §6's CLI surface.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/stockcraft/marketsim/internal/config"
	"github.com/stockcraft/marketsim/internal/exchange"
	"github.com/stockcraft/marketsim/internal/obslog"
	"github.com/stockcraft/marketsim/internal/transport"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet — startup failure is reported directly.
		println("exchange: " + err.Error())
		os.Exit(1)
	}

	log := obslog.New(cfg.LogLevel, "exchange")

	var serializer transport.Serializer
	if cfg.Exchange.SerializerBackend == "gob" {
		serializer = transport.NewGobSerializer()
	} else {
		serializer = transport.NewJSONSerializer()
	}

	dispatcher := exchange.NewDispatcher(cfg.Exchange.PriceHistorySize)
	server := exchange.NewServer(dispatcher, serializer)

	if err := server.ListenAndServe(cfg.Exchange.OrderAddr, cfg.Exchange.StatusAddr, cfg.RequestTimeout()); err != nil {
		obslog.Fatal(log, "failed to start exchange endpoints", err)
	}
	defer server.Close()

	log.Infow("exchange listening",
		"order_addr", server.OrderAddr(),
		"status_addr", server.StatusAddr(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("exchange shutting down")
}
