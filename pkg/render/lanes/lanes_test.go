package lanes

import (
	"bytes"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{})
}

func TestPackExample(t *testing.T) {
	res := Pack([]Interval{
		{ID: "a", Start: 0, End: 10},
		{ID: "b", Start: 2, End: 5},
		{ID: "c", Start: 6, End: 9},
	}, quietLogger())

	want := map[string]Assignment{
		"a": {NOverlapping: 0, Lane: 0},
		"b": {NOverlapping: 1, Lane: 1},
		"c": {NOverlapping: 1, Lane: 1},
	}
	for id, w := range want {
		if got := res.Lanes[id]; got != w {
			t.Errorf("lane[%s] = %+v, want %+v", id, got, w)
		}
	}
	if res.NumberLanes != 2 {
		t.Errorf("NumberLanes = %d, want 2", res.NumberLanes)
	}
}

func TestPackEmpty(t *testing.T) {
	res := Pack(nil, quietLogger())
	if res.NumberLanes != 0 || len(res.Lanes) != 0 {
		t.Errorf("empty input: %+v", res)
	}
}

func TestPackTouchingIntervalsShareLane(t *testing.T) {
	res := Pack([]Interval{
		{ID: "a", Start: 0, End: 10},
		{ID: "b", Start: 10, End: 20},
	}, quietLogger())
	if res.Lane("b") != 0 {
		t.Errorf("half-open intervals touching at 10 should share lane 0, got %d", res.Lane("b"))
	}
	if res.NumberLanes != 1 {
		t.Errorf("NumberLanes = %d, want 1", res.NumberLanes)
	}
}

func TestPackLowestFreeLane(t *testing.T) {
	// Lanes 0,1,2 are taken; lane 0 frees first, so the fourth interval
	// must land on 0 rather than 3.
	res := Pack([]Interval{
		{ID: "a", Start: 0, End: 5},
		{ID: "b", Start: 1, End: 20},
		{ID: "c", Start: 2, End: 20},
		{ID: "d", Start: 6, End: 8},
	}, quietLogger())
	if got := res.Lane("d"); got != 0 {
		t.Errorf("lane[d] = %d, want 0", got)
	}
	if res.NumberLanes != 3 {
		t.Errorf("NumberLanes = %d, want 3", res.NumberLanes)
	}
}

func TestPackDuplicateIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	res := Pack([]Interval{
		{ID: "dup", Start: 0, End: 10},
		{ID: "dup", Start: 5, End: 15},
	}, logger)

	if got := res.Lanes["dup"]; got.Lane != 1 {
		t.Errorf("last write should win, got %+v", got)
	}
	if len(res.Lanes) != 1 {
		t.Errorf("expected one record, got %d", len(res.Lanes))
	}
	if !strings.Contains(buf.String(), "duplicate") {
		t.Errorf("duplicate id should be logged, log = %q", buf.String())
	}
}

func TestPackProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(60)
		ivs := make([]Interval, n)
		for i := range ivs {
			start := float64(rng.Intn(1000))
			ivs[i] = Interval{
				ID:    strconv.Itoa(i),
				Start: start,
				End:   start + float64(rng.Intn(200)),
			}
		}
		sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })

		res := Pack(ivs, quietLogger())

		maxLane := -1
		for i, a := range ivs {
			la := res.Lane(a.ID)
			maxLane = max(maxLane, la)
			for _, b := range ivs[i+1:] {
				if res.Lane(b.ID) != la {
					continue
				}
				if a.Start < b.End && b.Start < a.End {
					t.Fatalf("round %d: %+v and %+v overlap on lane %d", round, a, b, la)
				}
			}
		}
		if res.NumberLanes != maxLane+1 {
			t.Fatalf("round %d: NumberLanes = %d, max lane %d", round, res.NumberLanes, maxLane)
		}

		// Minimality: every lane below the chosen one was held by an open interval.
		for i, a := range ivs {
			la := res.Lane(a.ID)
			for lane := 0; lane < la; lane++ {
				held := false
				for _, b := range ivs[:i] {
					if res.Lane(b.ID) == lane && b.End > a.Start {
						held = true
						break
					}
				}
				if !held {
					t.Fatalf("round %d: %s placed on lane %d but lane %d was free", round, a.ID, la, lane)
				}
			}
		}
	}
}
