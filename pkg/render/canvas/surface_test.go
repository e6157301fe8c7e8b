package canvas_test

import (
	"testing"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/canvas/svg"
)

func TestSurfaceNotInitialized(t *testing.T) {
	s := canvas.NewSurface(svg.New(), 40)
	if _, err := s.Dimensions(); !errors.Is(err, errors.ErrCodeNotInitialized) {
		t.Errorf("Dimensions: want NOT_INITIALIZED, got %v", err)
	}
	if _, err := s.SyncDimensions(); !errors.Is(err, errors.ErrCodeNotInitialized) {
		t.Errorf("SyncDimensions: want NOT_INITIALIZED, got %v", err)
	}
	if _, err := s.Context(); !errors.Is(err, errors.ErrCodeNotInitialized) {
		t.Errorf("Context: want NOT_INITIALIZED, got %v", err)
	}
}

func TestSurfaceNilHost(t *testing.T) {
	s := canvas.NewSurface(svg.New(), 40)
	if err := s.Initialize(nil); !errors.Is(err, errors.ErrCodeNotAttached) {
		t.Fatalf("want NOT_ATTACHED, got %v", err)
	}
	if s.Initialized() {
		t.Error("surface should not be initialized")
	}
}

func TestSurfaceBackingSize(t *testing.T) {
	tests := []struct {
		name         string
		width, ratio float64
		height       float64
		wantW, wantH int
	}{
		{"unit ratio", 300, 1, 40, 300, 40},
		{"retina", 300, 2, 40, 600, 80},
		{"fractional width", 300.2, 1.5, 40, 452, 60},
		{"zero ratio means one", 100, 0, 10, 100, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := canvas.NewSurface(svg.New(), tt.height)
			if err := s.Initialize(canvas.NewContainer(tt.width, tt.ratio)); err != nil {
				t.Fatal(err)
			}
			w, h := s.BackingSize()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("backing = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			ctx, _ := s.Context()
			cw, ch := ctx.Size()
			if cw != w || ch != h {
				t.Errorf("context size = %dx%d, want %dx%d", cw, ch, w, h)
			}
		})
	}
}

func TestSyncDimensionsIdempotent(t *testing.T) {
	host := canvas.NewContainer(200, 2)
	s := canvas.NewSurface(svg.New(), 50)
	if err := s.Initialize(host); err != nil {
		t.Fatal(err)
	}
	if s.Allocations() != 1 {
		t.Fatalf("allocations = %d, want 1", s.Allocations())
	}
	ctx, _ := s.Context()
	ctx.FillRect(0, 0, 10, 10)

	changed, err := s.SyncDimensions()
	if err != nil || changed {
		t.Fatalf("unchanged sync: changed=%v err=%v", changed, err)
	}
	ctx2, _ := s.Context()
	if ctx2.(*svg.Context).Len() != 1 {
		t.Error("unchanged sync must keep content")
	}

	host.SetWidth(250)
	if changed, _ := s.SyncDimensions(); !changed {
		t.Error("width change should reallocate")
	}
	s.SetHeight(80)
	if changed, _ := s.SyncDimensions(); !changed {
		t.Error("height change should reallocate")
	}
	host.SetPixelRatio(1)
	if changed, _ := s.SyncDimensions(); !changed {
		t.Error("ratio change should reallocate")
	}
	if s.Allocations() != 4 {
		t.Errorf("allocations = %d, want 4", s.Allocations())
	}
	if changed, _ := s.SyncDimensions(); changed {
		t.Error("repeat sync should be a no-op")
	}
}

func TestSurfaceClear(t *testing.T) {
	s := canvas.NewSurface(svg.New(), 20)
	if err := s.Clear(); !errors.Is(err, errors.ErrCodeNotInitialized) {
		t.Errorf("want NOT_INITIALIZED, got %v", err)
	}
	if err := s.Initialize(canvas.NewContainer(100, 2)); err != nil {
		t.Fatal(err)
	}
	ctx, _ := s.Context()
	ctx.FillRect(5, 5, 10, 10)
	ctx.FillRect(90, 10, 10, 10)
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if n := ctx.(*svg.Context).Len(); n != 0 {
		t.Errorf("%d elements left after Clear", n)
	}
}
