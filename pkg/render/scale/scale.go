// Package scale maps genomic positions and data values to pixels.
//
// A scale is a plain function value rebuilt on every render from the current
// domain and range. Nothing caches a scale across viewport changes.
package scale

// Func maps a domain value to a range value.
type Func func(pos float64) float64

// Linear returns the scale mapping domain [d0, d1] onto range [r0, r1]:
//
//	r0 + (pos-d0) * (r1-r0) / (d1-d0)
//
// A degenerate domain (d0 == d1) does not divide by zero; every position maps
// to r0. Callers guard degenerate viewports themselves.
func Linear(domain, rng [2]float64) Func {
	d0, d1 := domain[0], domain[1]
	r0, r1 := rng[0], rng[1]
	if d1 == d0 {
		return func(float64) float64 { return r0 }
	}
	k := (r1 - r0) / (d1 - d0)
	return func(pos float64) float64 {
		return r0 + (pos-d0)*k
	}
}

// Inverse returns the scale mapping range [r0, r1] back onto domain [d0, d1].
// It is Linear with domain and range swapped and is used to translate pointer
// pixels into genomic positions.
func Inverse(domain, rng [2]float64) Func {
	return Linear(rng, domain)
}

// Pair bundles a forward scale with its inverse.
type Pair struct {
	Forward Func
	Inverse Func
}

// NewPair builds both directions for domain and rng.
func NewPair(domain, rng [2]float64) Pair {
	return Pair{Forward: Linear(domain, rng), Inverse: Inverse(domain, rng)}
}
