package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/trackview/pkg/observability"
	"github.com/matzehuels/trackview/pkg/track"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderSpinner animates while the tracks of one region render. It counts
// finished tracks through the track hooks, so it must be registered with
// observability.SetTrackHooks for the duration of the render.
type renderSpinner struct {
	observability.NoopTrackHooks

	out      io.Writer
	region   string
	total    int
	finished atomic.Int32

	ctx     context.Context
	stop    chan struct{}
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once

	mu    sync.Mutex
	width int
}

func newRenderSpinner(ctx context.Context, out io.Writer, region string, total int) *renderSpinner {
	return &renderSpinner{
		out:     out,
		region:  region,
		total:   total,
		ctx:     ctx,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// OnRenderComplete counts one finished track, failed or not.
func (s *renderSpinner) OnRenderComplete(context.Context, string, string, time.Duration, error) {
	s.finished.Add(1)
}

func (s *renderSpinner) message() string {
	n := min(int(s.finished.Load()), s.total)
	return fmt.Sprintf("Rendering %s (%d/%d tracks)", s.region, n, s.total)
}

// Start begins the animation.
func (s *renderSpinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *renderSpinner) draw(frame string) {
	msg := s.message()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
	s.width = max(s.width, len(msg)+2)
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *renderSpinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		if s.started.Load() {
			<-s.stopped
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// Cancelled reports whether the render context ended before Stop.
func (s *renderSpinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// Finish stops the spinner and prints a one-line summary of the render,
// naming every track that failed.
func (s *renderSpinner) Finish(tracks []track.Renderer) {
	s.Stop()
	failed := failedTracks(tracks)
	if len(failed) == 0 {
		printSuccess("Rendered %d tracks for %s", len(tracks), s.region)
		return
	}
	printWarning("%d of %d tracks failed for %s: %s", len(failed), len(tracks), s.region, strings.Join(failed, ", "))
}

// failedTracks returns the ids of the tracks showing their error placeholder.
func failedTracks(tracks []track.Renderer) []string {
	var ids []string
	for _, t := range tracks {
		if t.Status() == track.StatusFailed {
			ids = append(ids, t.ID())
		}
	}
	return ids
}
