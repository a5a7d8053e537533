// Command traffic_generator drives one price/order-flow model forward
// and submits the resulting orders to a running exchange process. It
// accepts an optional positional argument: either a symbol (using the
// configured model) or a model name (linear, gbm, hawkes), per
// spec.md §6's CLI surface.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/stockcraft/marketsim/internal/config"
	"github.com/stockcraft/marketsim/internal/flowdriver"
	"github.com/stockcraft/marketsim/internal/hawkes"
	"github.com/stockcraft/marketsim/internal/obslog"
	"github.com/stockcraft/marketsim/internal/priceproc"
	"github.com/stockcraft/marketsim/internal/randgen"
	"github.com/stockcraft/marketsim/internal/transport"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		println("traffic_generator: " + err.Error())
		os.Exit(1)
	}
	log := obslog.New(cfg.LogLevel, "traffic_generator")

	symbol := cfg.TrafficGenerator.Symbol
	modelName := cfg.TrafficGenerator.Model.Model
	if arg := flag.Arg(0); arg != "" {
		switch arg {
		case "linear", "gbm", "hawkes":
			modelName = arg
		default:
			symbol = arg
		}
	}
	if symbol == "" {
		symbol = "AAPL"
	}

	clientID := cfg.TrafficGenerator.ClientID
	if clientID == "" {
		clientID = "tg-" + uuid.NewString()
	}

	seed := cfg.TrafficGenerator.Model.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := randgen.New(seed)

	source, err := buildSource(cfg, modelName, symbol, clientID, rng)
	if err != nil {
		obslog.Fatal(log, "failed to build order flow source", err)
	}

	var serializer transport.Serializer
	if cfg.Exchange.SerializerBackend == "gob" {
		serializer = transport.NewGobSerializer()
	} else {
		serializer = transport.NewJSONSerializer()
	}

	client, err := transport.Dial(cfg.Exchange.OrderAddr, cfg.RequestTimeout())
	if err != nil {
		obslog.Fatal(log, "failed to connect to the exchange order endpoint", err)
	}
	defer client.Close()

	submitter := transport.NewOrderSubmitter(client, serializer)

	driver := flowdriver.New(flowdriver.Config{
		Steps:          cfg.TrafficGenerator.Model.Steps,
		StepInterval:   cfg.StepInterval(),
		QueueCapacity:  cfg.TrafficGenerator.QueueCapacity,
		RequestTimeout: cfg.RequestTimeout(),
	}, source, submitter)

	log.Infow("traffic generator starting",
		"symbol", symbol,
		"model", modelName,
		"steps", cfg.TrafficGenerator.Model.Steps,
	)

	results := driver.Run(context.Background())

	accepted, rejected, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Ack.Status == "ACCEPTED":
			accepted++
		default:
			rejected++
		}
	}
	log.Infow("traffic generator finished",
		"submitted", len(results), "accepted", accepted, "rejected", rejected, "failed", failed,
	)
}

func buildSource(cfg *config.Config, modelName, symbol, clientID string, rng *randgen.Generator) (flowdriver.Source, error) {
	mc := cfg.TrafficGenerator.Model

	if modelName == "hawkes" {
		model := hawkes.NewModel(hawkes.Config{
			InitialPrice:                mc.InitialPrice,
			DT:                          mc.DT,
			OrdersPerEvent:              mc.OrdersPerEvent,
			VolumeMu:                    mc.VolumeMu,
			VolumeSigma:                 mc.VolumeSigma,
			RegimeSwitchIntervalSeconds: mc.RegimeSwitchIntervalSeconds,
		}, rng)
		return flowdriver.NewHawkesSource(model, symbol, clientID), nil
	}

	var priceModel priceproc.Model
	if modelName == "linear" {
		priceModel = priceproc.NewLinear(mc.InitialPrice, mc.Drift)
	} else {
		priceModel = priceproc.NewGBM(mc.InitialPrice, mc.Drift, mc.Volatility, mc.DT, rng)
	}

	stepMs := int64(mc.DT * 1000)
	if stepMs <= 0 {
		stepMs = 1
	}
	return flowdriver.NewSimpleSource(priceModel, symbol, clientID, mc.OrderQuantity, stepMs), nil
}
