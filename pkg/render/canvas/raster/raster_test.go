package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/matzehuels/trackview/pkg/render/canvas"
)

func alphaAt(c *Context, x, y int) uint32 {
	_, _, _, a := c.Image().At(x, y).RGBA()
	return a
}

func TestFillRectRespectsTransform(t *testing.T) {
	c := NewContext(200, 100)
	c.SetTransform(2, 0, 0, 2, 0, 0)
	c.SetFillColor("#ff0000")
	c.FillRect(10, 10, 10, 10) // device pixels 20..40

	if alphaAt(c, 30, 30) == 0 {
		t.Error("expected pixel inside scaled rect to be painted")
	}
	if alphaAt(c, 15, 15) != 0 {
		t.Error("pixel outside scaled rect should stay transparent")
	}
	r, _, _, _ := c.Image().At(30, 30).RGBA()
	if r>>8 != 255 {
		t.Errorf("red channel = %d, want 255", r>>8)
	}
}

func TestClearRect(t *testing.T) {
	c := NewContext(50, 50)
	c.SetFillColor("black")
	c.FillRect(0, 0, 50, 50)
	c.ClearRect(0, 0, 25, 50)

	if alphaAt(c, 10, 10) != 0 {
		t.Error("cleared pixel should be transparent")
	}
	if alphaAt(c, 40, 10) == 0 {
		t.Error("pixel outside cleared area should remain")
	}
}

func TestClipAndRestore(t *testing.T) {
	c := NewContext(100, 100)
	clip := canvas.NewPath()
	clip.Rect(0, 0, 50, 100)

	c.Save()
	c.ClipPath(clip)
	c.SetFillColor("blue")
	c.FillRect(0, 0, 100, 100)
	c.Restore()

	if alphaAt(c, 25, 50) == 0 {
		t.Error("inside clip should be painted")
	}
	if alphaAt(c, 75, 50) != 0 {
		t.Error("outside clip should stay transparent")
	}

	c.FillRect(60, 0, 10, 10)
	if alphaAt(c, 65, 5) == 0 {
		t.Error("clip should be gone after Restore")
	}
}

func TestTextAndPNG(t *testing.T) {
	c := NewContext(120, 40)
	c.SetFontSize(12)
	if w := c.MeasureText("chr1"); w <= 0 {
		t.Errorf("MeasureText = %v, want > 0", w)
	}
	c.SetFillColor("black")
	c.FillText("chr1", 60, 20, canvas.AlignCenter)

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 40 {
		t.Errorf("bounds = %v", b)
	}
}
