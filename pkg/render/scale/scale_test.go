package scale

import (
	"math"
	"math/rand"
	"testing"
)

func TestLinear(t *testing.T) {
	s := Linear([2]float64{0, 100}, [2]float64{0, 1000})
	tests := []struct{ in, want float64 }{
		{0, 0},
		{50, 500},
		{100, 1000},
		{150, 1500}, // extrapolates
	}
	for _, tt := range tests {
		if got := s(tt.in); got != tt.want {
			t.Errorf("s(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLinearInvertedRange(t *testing.T) {
	// Value axes map larger values upward.
	s := Linear([2]float64{-4, 4}, [2]float64{100, 0})
	if got := s(4); got != 0 {
		t.Errorf("s(4) = %v, want 0", got)
	}
	if got := s(0); got != 50 {
		t.Errorf("s(0) = %v, want 50", got)
	}
}

func TestLinearDegenerateDomain(t *testing.T) {
	s := Linear([2]float64{5, 5}, [2]float64{10, 20})
	for _, pos := range []float64{-1, 5, 1e9} {
		got := s(pos)
		if got != 10 {
			t.Errorf("degenerate s(%v) = %v, want 10", pos, got)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("degenerate scale produced %v", got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		d0 := rng.Float64() * 1e8
		d1 := d0 + 1 + rng.Float64()*1e8
		r0 := rng.Float64() * 100
		r1 := r0 + 1 + rng.Float64()*4000
		domain, out := [2]float64{d0, d1}, [2]float64{r0, r1}

		fwd := Linear(domain, out)
		inv := Inverse(domain, out)

		pos := d0 + rng.Float64()*(d1-d0)
		back := inv(fwd(pos))
		if tol := 1e-9 * math.Max(1, math.Abs(d1)); math.Abs(back-pos) > tol {
			t.Fatalf("round trip %v -> %v (domain %v range %v)", pos, back, domain, out)
		}
	}
}

func TestNewPair(t *testing.T) {
	p := NewPair([2]float64{1, 1_000_000}, [2]float64{40, 1000})
	if got := p.Forward(1); got != 40 {
		t.Errorf("Forward(1) = %v", got)
	}
	if got := p.Inverse(1000); math.Abs(got-1_000_000) > 1e-6 {
		t.Errorf("Inverse(1000) = %v", got)
	}
}
