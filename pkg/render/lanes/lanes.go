// Package lanes assigns overlapping genomic intervals to vertical rows.
//
// Pack walks intervals in start order and puts each one on the lowest lane
// not held by an interval that is still open at its start. The result is
// recomputed on every render; it has no identity across frames.
package lanes

import (
	"github.com/charmbracelet/log"
)

// Interval is the minimal input to the packer.
type Interval struct {
	ID         string
	Start, End float64
}

// Assignment records where one interval was placed.
type Assignment struct {
	// NOverlapping is the number of intervals still open when this one was placed.
	NOverlapping int
	// Lane is the zero-based row index.
	Lane int
}

// Result is the outcome of a packing pass.
type Result struct {
	Lanes       map[string]Assignment
	NumberLanes int
}

// Lane returns the lane for id, or 0 when id was not packed.
func (r Result) Lane(id string) int {
	return r.Lanes[id].Lane
}

type active struct {
	end  float64
	lane int
}

// Pack assigns lanes to intervals, which must be sorted ascending by Start.
// Unsorted input produces an incorrect packing, not an error.
//
// A repeated id is logged and the later interval overwrites the earlier
// record. Both intervals still occupy a lane while they are open.
func Pack(intervals []Interval, logger *log.Logger) Result {
	if logger == nil {
		logger = log.Default()
	}
	res := Result{Lanes: make(map[string]Assignment, len(intervals))}

	var open []active
	inUse := make(map[int]struct{})
	for _, iv := range intervals {
		kept := open[:0]
		for _, a := range open {
			if a.end > iv.Start {
				kept = append(kept, a)
			}
		}
		open = kept

		clear(inUse)
		for _, a := range open {
			inUse[a.lane] = struct{}{}
		}
		lane := 0
		for {
			if _, taken := inUse[lane]; !taken {
				break
			}
			lane++
		}

		if _, dup := res.Lanes[iv.ID]; dup {
			logger.Error("duplicate interval id in lane packing", "id", iv.ID)
		}
		res.Lanes[iv.ID] = Assignment{NOverlapping: len(open), Lane: lane}
		open = append(open, active{end: iv.End, lane: lane})

		if lane+1 > res.NumberLanes {
			res.NumberLanes = lane + 1
		}
	}
	return res
}
