// Package hawkes implements the self-exciting order-flow generator of
// spec.md §4.3, grounded on
// original_source/.../price_models/hawkes_microstructure_model.{h,cpp}:
// a GBM mid-price process feeding a self-exciting point process whose
// events spawn a cloud of momentum-biased limit orders. Regime
// switching (spec.md's addition over the original single-regime model)
// is layered on top, swapping the Hawkes and GBM parameter vectors on
// a fixed simulated-time cadence.
package hawkes

import (
	"math"

	"github.com/stockcraft/marketsim/internal/priceproc"
	"github.com/stockcraft/marketsim/internal/randgen"
)

// Regime names the five market regimes spec.md §4.3 defines.
type Regime string

const (
	RegimeBullNormal      Regime = "BULL_NORMAL"
	RegimeBearNormal      Regime = "BEAR_NORMAL"
	RegimeSidewaysNormal  Regime = "SIDEWAYS_NORMAL"
	RegimeBullExtreme     Regime = "BULL_EXTREME"
	RegimeBearExtreme     Regime = "BEAR_EXTREME"
)

// Params is one regime's parameter vector: the Hawkes triple, the
// momentum sensitivity, the price-offset power-law triple, and the
// GBM drift/volatility it drives.
type Params struct {
	Mu         float64 // Hawkes baseline rate
	Alpha      float64 // Hawkes excitation
	Beta       float64 // Hawkes decay
	K          float64 // momentum sensitivity
	L          float64 // price-offset power-law floor
	AlphaP     float64 // price-offset power-law exponent
	DeltaPMax  float64 // price-offset power-law ceiling
	Drift      float64 // GBM annualized drift
	Volatility float64 // GBM annualized volatility
}

// RegimeTableEntry pairs a regime with its parameter vector and its
// share of the regime-switch draw.
type RegimeTableEntry struct {
	Regime Regime
	Params Params
	Weight float64
}

// DefaultRegimeTable is spec.md §4.3's parameter table with its
// default mix (25/25/25/12.5/12.5).
var DefaultRegimeTable = []RegimeTableEntry{
	{RegimeBullNormal, Params{Mu: 10, Alpha: 2.0, Beta: 5, K: 3, L: 0.10, AlphaP: 3.0, DeltaPMax: 5.0, Drift: 0.08, Volatility: 0.03}, 0.25},
	{RegimeBearNormal, Params{Mu: 10, Alpha: 2.0, Beta: 5, K: -3, L: 0.10, AlphaP: 3.0, DeltaPMax: 5.0, Drift: -0.08, Volatility: 0.03}, 0.25},
	{RegimeSidewaysNormal, Params{Mu: 8, Alpha: 1.5, Beta: 4, K: 0.5, L: 0.08, AlphaP: 2.5, DeltaPMax: 3.0, Drift: 0, Volatility: 0.02}, 0.25},
	{RegimeBullExtreme, Params{Mu: 25, Alpha: 4.0, Beta: 8, K: 8, L: 0.20, AlphaP: 4.0, DeltaPMax: 10.0, Drift: 0.20, Volatility: 0.15}, 0.125},
	{RegimeBearExtreme, Params{Mu: 25, Alpha: 4.0, Beta: 8, K: -8, L: 0.20, AlphaP: 4.0, DeltaPMax: 10.0, Drift: -0.20, Volatility: 0.15}, 0.125},
}

// GeneratedOrder is one order produced by an event cloud.
type GeneratedOrder struct {
	OrderID uint64
	Time    float64 // simulated seconds
	IsBuy   bool
	Price   float64
	Volume  float64
}

// Config bundles the model's constructor parameters.
type Config struct {
	InitialPrice   float64
	DT             float64 // simulated seconds per step
	OrdersPerEvent int
	VolumeMu       float64
	VolumeSigma    float64
	// RegimeSwitchIntervalSeconds is the simulated-time cadence at
	// which a new regime is drawn. Zero disables regime switching
	// (the model runs with its initial regime forever).
	RegimeSwitchIntervalSeconds float64
	RegimeTable                 []RegimeTableEntry
}

// Model drives a GBM mid-price process and a self-exciting Hawkes
// order-arrival process together, with optional regime switching.
type Model struct {
	gbm *priceproc.GBM
	rng *randgen.Generator

	previousPrice float64
	currentTime   float64
	dt            float64

	params     Params
	eventTimes []float64

	volumeMu, volumeSigma float64
	ordersPerEvent        int

	nextOrderID   uint64
	currentOrders []GeneratedOrder

	regimeTable                 []RegimeTableEntry
	currentRegime               Regime
	regimeSwitchIntervalSeconds float64
	lastRegimeSwitchTime        float64
}

// NewModel constructs a Hawkes microstructure model seeded from rng,
// starting in the first entry of cfg.RegimeTable (or
// DefaultRegimeTable if unset).
func NewModel(cfg Config, rng *randgen.Generator) *Model {
	table := cfg.RegimeTable
	if len(table) == 0 {
		table = DefaultRegimeTable
	}
	initial := table[0]

	m := &Model{
		gbm:                         priceproc.NewGBM(cfg.InitialPrice, initial.Params.Drift, initial.Params.Volatility, cfg.DT, rng),
		rng:                         rng,
		previousPrice:               cfg.InitialPrice,
		dt:                          cfg.DT,
		params:                      initial.Params,
		volumeMu:                    cfg.VolumeMu,
		volumeSigma:                 cfg.VolumeSigma,
		ordersPerEvent:              cfg.OrdersPerEvent,
		nextOrderID:                 1,
		regimeTable:                 table,
		currentRegime:               initial.Regime,
		regimeSwitchIntervalSeconds: cfg.RegimeSwitchIntervalSeconds,
	}
	return m
}

// CurrentRegime returns the regime currently in effect.
func (m *Model) CurrentRegime() Regime { return m.currentRegime }

// CurrentIntensity returns λ(t) evaluated at the model's current
// simulated time.
func (m *Model) CurrentIntensity() float64 {
	return m.computeIntensity(m.currentTime)
}

// CurrentOrders returns the order cloud generated by the most recent
// NextPrice call, or nil if no event occurred that step.
func (m *Model) CurrentOrders() []GeneratedOrder { return m.currentOrders }

// NextPrice checks regime switching, advances the GBM by one step,
// evaluates the Hawkes intensity, and — on a sampled event — appends
// to the event history and emits an order cloud. After advancing the
// simulated clock it prunes events older than the new time's window.
func (m *Model) NextPrice() (float64, error) {
	m.currentOrders = nil

	m.maybeSwitchRegime()

	newPrice := m.gbm.NextPrice()

	lambda := m.computeIntensity(m.currentTime)
	eventProb := lambda * m.dt
	if eventProb > 1 {
		eventProb = 1
	}

	occurred := m.rng.SampleBernoulli(eventProb)
	if occurred {
		m.eventTimes = append(m.eventTimes, m.currentTime)
		if err := m.generateOrderCloud(newPrice, m.currentTime); err != nil {
			return 0, err
		}
	}

	m.previousPrice = newPrice
	m.currentTime += m.dt
	m.pruneOldEvents(m.currentTime)

	return newPrice, nil
}

func (m *Model) computeIntensity(t float64) float64 {
	intensity := m.params.Mu
	for _, tj := range m.eventTimes {
		intensity += m.params.Alpha * math.Exp(-m.params.Beta*(t-tj))
	}
	return intensity
}

// pruneOldEvents drops events whose contribution has decayed below
// 1e-3, i.e. anything older than t - 6.9/β (ln(1000) ≈ 6.9).
func (m *Model) pruneOldEvents(t float64) {
	if m.params.Beta <= 0 {
		return
	}
	cutoff := t - 6.9/m.params.Beta
	i := 0
	for i < len(m.eventTimes) && m.eventTimes[i] < cutoff {
		i++
	}
	m.eventTimes = m.eventTimes[i:]
}

func (m *Model) generateOrderCloud(midPrice, eventTime float64) error {
	priceChange := midPrice - m.previousPrice

	for i := 0; i < m.ordersPerEvent; i++ {
		buyProb := randgen.Logistic(m.params.K * priceChange)
		isBuy := m.rng.SampleBernoulli(buyProb)

		offset, err := m.rng.SampleTruncatedPareto(m.params.L, m.params.AlphaP, m.params.DeltaPMax)
		if err != nil {
			return err
		}

		var price float64
		if isBuy {
			price = midPrice - offset
		} else {
			price = midPrice + offset
		}

		volume, err := m.rng.SampleLognormal(m.volumeMu, m.volumeSigma)
		if err != nil {
			return err
		}

		m.currentOrders = append(m.currentOrders, GeneratedOrder{
			OrderID: m.nextOrderID,
			Time:    eventTime,
			IsBuy:   isBuy,
			Price:   price,
			Volume:  volume,
		})
		m.nextOrderID++
	}
	return nil
}

func (m *Model) maybeSwitchRegime() {
	if m.regimeSwitchIntervalSeconds <= 0 {
		return
	}
	if m.currentTime-m.lastRegimeSwitchTime < m.regimeSwitchIntervalSeconds {
		return
	}
	m.lastRegimeSwitchTime = m.currentTime

	u := m.rng.Uniform01()
	var cumulative float64
	chosen := m.regimeTable[len(m.regimeTable)-1]
	for _, entry := range m.regimeTable {
		cumulative += entry.Weight
		if u < cumulative {
			chosen = entry
			break
		}
	}

	if chosen.Regime == m.currentRegime {
		return
	}
	m.currentRegime = chosen.Regime
	m.params = chosen.Params
	m.gbm.SetDrift(chosen.Params.Drift)
	m.gbm.SetVolatility(chosen.Params.Volatility)
}

// Reset restores the GBM to its initial price and clears all Hawkes
// event history and order state, but keeps the current regime.
func (m *Model) Reset() {
	m.gbm.Reset()
	m.previousPrice = m.gbm.CurrentPrice()
	m.currentTime = 0
	m.lastRegimeSwitchTime = 0
	m.eventTimes = nil
	m.currentOrders = nil
	m.nextOrderID = 1
}

// CurrentPrice returns the GBM's current mid-price.
func (m *Model) CurrentPrice() float64 { return m.gbm.CurrentPrice() }
