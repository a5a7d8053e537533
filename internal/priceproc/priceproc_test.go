package priceproc

import (
	"math"
	"testing"

	"github.com/stockcraft/marketsim/internal/randgen"
)

func TestGBMResetRestoresInitial(t *testing.T) {
	rng := randgen.New(1)
	g := NewGBM(100, 0.08, 0.03, 1.0/252, rng)
	for i := 0; i < 10; i++ {
		g.NextPrice()
	}
	g.Reset()
	if g.CurrentPrice() != 100 {
		t.Fatalf("expected reset to 100, got %v", g.CurrentPrice())
	}
}

func TestGBMDeterministicGivenSeed(t *testing.T) {
	a := NewGBM(100, 0.08, 0.03, 1.0/252, randgen.New(7))
	b := NewGBM(100, 0.08, 0.03, 1.0/252, randgen.New(7))
	for i := 0; i < 50; i++ {
		pa := a.NextPrice()
		pb := b.NextPrice()
		if pa != pb {
			t.Fatalf("step %d diverged: %v != %v", i, pa, pb)
		}
	}
}

func TestGBMPositivePrice(t *testing.T) {
	g := NewGBM(50, -0.5, 0.8, 1.0/252, randgen.New(3))
	for i := 0; i < 1000; i++ {
		p := g.NextPrice()
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("step %d: price must stay positive and finite, got %v", i, p)
		}
	}
}

func TestLinearRamp(t *testing.T) {
	l := NewLinear(100, 10)
	if got := l.NextPrice(); got != 110 {
		t.Errorf("step 1: expected 110, got %v", got)
	}
	if got := l.NextPrice(); got != 120 {
		t.Errorf("step 2: expected 120, got %v", got)
	}
	l.Reset()
	if l.CurrentPrice() != 100 {
		t.Errorf("expected reset to 100, got %v", l.CurrentPrice())
	}
}

func TestSetDriftVolatilityAffectNextStep(t *testing.T) {
	rng := randgen.New(9)
	g := NewGBM(100, 0, 0, 1.0/252, rng)
	// With zero drift and volatility the price never moves.
	if got := g.NextPrice(); got != 100 {
		t.Fatalf("expected flat price with zero params, got %v", got)
	}
	g.SetDrift(10)
	g.SetVolatility(0)
	got := g.NextPrice()
	if got <= 100 {
		t.Fatalf("expected price to rise with positive drift and zero vol, got %v", got)
	}
}
