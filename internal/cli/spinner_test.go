package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/trackview/pkg/observability"
)

func TestRenderSpinnerMessage(t *testing.T) {
	s := newRenderSpinner(context.Background(), &bytes.Buffer{}, "1:0-1,000", 3)
	if got := s.message(); got != "Rendering 1:0-1,000 (0/3 tracks)" {
		t.Errorf("message() = %q", got)
	}

	ctx := context.Background()
	s.OnRenderComplete(ctx, "coverage", "dot", time.Millisecond, nil)
	s.OnRenderComplete(ctx, "genes", "band", time.Millisecond, os.ErrNotExist)
	if got := s.message(); !strings.HasSuffix(got, "(2/3 tracks)") {
		t.Errorf("message() = %q, want 2/3", got)
	}

	// Redraws after a toggle must not push the count past the total.
	for range 5 {
		s.OnRenderComplete(ctx, "genes", "band", time.Millisecond, nil)
	}
	if got := s.message(); !strings.HasSuffix(got, "(3/3 tracks)") {
		t.Errorf("message() = %q, want 3/3", got)
	}
}

func TestRenderSpinnerDrawsAndClears(t *testing.T) {
	var out bytes.Buffer
	s := newRenderSpinner(context.Background(), &out, "2:10-20", 1)
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Rendering 2:10-20") {
		t.Errorf("output %q does not mention the region", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("output %q does not end by clearing the line", got)
	}
}

func TestRenderSpinnerStop(t *testing.T) {
	t.Run("without start", func(t *testing.T) {
		var out bytes.Buffer
		s := newRenderSpinner(context.Background(), &out, "1:0-1", 1)
		s.Stop()
		if out.Len() != 0 {
			t.Errorf("unstarted spinner wrote %q", out.String())
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		s := newRenderSpinner(context.Background(), &bytes.Buffer{}, "1:0-1", 1)
		s.Start()
		s.Stop()
		s.Stop()
		if s.Cancelled() {
			t.Error("Cancelled() = true after a plain Stop")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		s := newRenderSpinner(ctx, &bytes.Buffer{}, "1:0-1", 1)
		s.Start()
		cancel()
		s.Stop()
		if !s.Cancelled() {
			t.Error("Cancelled() = false after the render context ended")
		}
	})
}

func TestRenderSpinnerCountsRenderedTracks(t *testing.T) {
	a := openTestApp(t, viewFlags{})
	tracks := a.browser.Tracks()

	s := newRenderSpinner(context.Background(), &bytes.Buffer{}, "1:0-1,000", len(tracks))
	observability.SetTrackHooks(s)
	t.Cleanup(observability.Reset)

	if err := a.browser.RenderAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := int(s.finished.Load()); got != len(tracks) {
		t.Errorf("finished = %d, want %d", got, len(tracks))
	}
	if failed := failedTracks(tracks); len(failed) != 0 {
		t.Errorf("failedTracks() = %v, want none", failed)
	}
}

func TestFailedTracks(t *testing.T) {
	dir := dataDir(t)
	if err := os.Remove(filepath.Join(dir, "transcripts", "1.json")); err != nil {
		t.Fatal(err)
	}
	c := testCLI(t, dir)
	a, err := c.open(context.Background(), viewFlags{sample: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })

	if err := a.browser.RenderAll(context.Background()); err == nil {
		t.Fatal("RenderAll succeeded without transcript data")
	}
	failed := failedTracks(a.browser.Tracks())
	if !slices.Equal(failed, []string{"genes"}) {
		t.Errorf("failedTracks() = %v, want [genes]", failed)
	}
}
