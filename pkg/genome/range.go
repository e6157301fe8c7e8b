package genome

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Range is a half-open base-pair interval [Start, End).
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewRange returns the range spanning a and b in ascending order.
func NewRange(a, b float64) Range {
	if b < a {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Len returns the number of base pairs covered.
func (r Range) Len() float64 { return r.End - r.Start }

// Valid reports whether End >= Start.
func (r Range) Valid() bool { return r.End >= r.Start }

// Empty reports whether the range has zero length.
func (r Range) Empty() bool { return r.End == r.Start }

// Center returns the midpoint of the range.
func (r Range) Center() float64 { return (r.Start + r.End) / 2 }

// Overlaps reports whether r and o share at least one position.
// Zero-length ranges overlap a range that contains their position.
func (r Range) Overlaps(o Range) bool {
	if r.Empty() {
		return o.Start <= r.Start && r.Start < o.End
	}
	if o.Empty() {
		return r.Start <= o.Start && o.Start < r.End
	}
	return r.Start < o.End && o.Start < r.End
}

// Contains reports whether pos lies in [Start, End).
func (r Range) Contains(pos float64) bool { return pos >= r.Start && pos < r.End }

// Clamp restricts the range to [lo, hi] while keeping its length where possible.
func (r Range) Clamp(lo, hi float64) Range {
	n := r.Len()
	if hi-lo <= n {
		return Range{Start: lo, End: hi}
	}
	if r.Start < lo {
		return Range{Start: lo, End: lo + n}
	}
	if r.End > hi {
		return Range{Start: hi - n, End: hi}
	}
	return r
}

// Floor returns the range with both bounds rounded down to whole base pairs.
func (r Range) Floor() Range {
	return Range{Start: math.Floor(r.Start), End: math.Floor(r.End)}
}

// String formats the range with thousands separators, e.g. "1,000-2,500".
func (r Range) String() string {
	return fmt.Sprintf("%s-%s", humanize.Comma(int64(r.Start)), humanize.Comma(int64(r.End)))
}

// Region is a range on a named chromosome.
type Region struct {
	Chrom string `json:"chrom"`
	Range
}

// String formats the region as "chrom:start-end".
func (r Region) String() string {
	return r.Chrom + ":" + r.Range.String()
}
