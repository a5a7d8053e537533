// Package priceproc implements the price-process models that drive
// synthetic order flow: a discrete geometric Brownian motion (GBM) and
// a trivial linear ramp, both exposed through the narrow capability
// interface spec.md §9 calls for in place of the original's class
// hierarchy.
package priceproc

import (
	"math"

	"github.com/stockcraft/marketsim/internal/randgen"
)

// Model is the capability surface every price process implements.
type Model interface {
	NextPrice() float64
	CurrentPrice() float64
	Reset()
	Name() string
	Description() string
}

// GBM is a discrete geometric Brownian motion: S <- S * exp((mu -
// sigma^2/2)*dt + sigma*sqrt(dt)*Z). mu and sigma are annualized
// decimals; dt is a fraction of a year.
type GBM struct {
	initial   float64
	current   float64
	mu        float64
	sigma     float64
	dt        float64
	rng       *randgen.Generator
	driftTerm float64
	volTerm   float64
}

// NewGBM constructs a GBM process seeded from rng (caller-owned so the
// same stream can be shared with a Hawkes generator for reproducibility).
func NewGBM(initialPrice, mu, sigma, dt float64, rng *randgen.Generator) *GBM {
	g := &GBM{
		initial: initialPrice,
		current: initialPrice,
		rng:     rng,
	}
	g.SetParams(mu, sigma, dt)
	return g
}

// SetParams reconfigures drift/volatility/dt between steps, as regime
// switching requires. It does not reset the current price.
func (g *GBM) SetParams(mu, sigma, dt float64) {
	g.mu = mu
	g.sigma = sigma
	g.dt = dt
	g.driftTerm = (mu - 0.5*sigma*sigma) * dt
	g.volTerm = sigma * math.Sqrt(dt)
}

// SetDrift reconfigures the annualized drift only.
func (g *GBM) SetDrift(mu float64) { g.SetParams(mu, g.sigma, g.dt) }

// SetVolatility reconfigures the annualized volatility only.
func (g *GBM) SetVolatility(sigma float64) { g.SetParams(g.mu, sigma, g.dt) }

// NextPrice advances one step and returns the new price.
func (g *GBM) NextPrice() float64 {
	z := g.rng.StandardNormal()
	g.current *= math.Exp(g.driftTerm + g.volTerm*z)
	return g.current
}

// CurrentPrice returns the last computed price without advancing.
func (g *GBM) CurrentPrice() float64 { return g.current }

// Reset restores the initial price.
func (g *GBM) Reset() { g.current = g.initial }

func (g *GBM) Name() string { return "gbm" }
func (g *GBM) Description() string {
	return "Geometric Brownian Motion: continuous-time lognormal diffusion"
}

// Linear is a deterministic price ramp: price = base + rate*step.
type Linear struct {
	base    float64
	rate    float64
	current float64
	step    int64
}

// NewLinear constructs a Linear price model.
func NewLinear(basePrice, ratePerStep float64) *Linear {
	return &Linear{base: basePrice, rate: ratePerStep, current: basePrice}
}

func (l *Linear) NextPrice() float64 {
	l.step++
	l.current = l.base + l.rate*float64(l.step)
	return l.current
}

func (l *Linear) CurrentPrice() float64 { return l.current }

func (l *Linear) Reset() {
	l.current = l.base
	l.step = 0
}

func (l *Linear) Name() string        { return "linear" }
func (l *Linear) Description() string { return "Linear price ramp: base + rate * step" }

var (
	_ Model = (*GBM)(nil)
	_ Model = (*Linear)(nil)
)
