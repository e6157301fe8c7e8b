package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/trackview/pkg/render/canvas"
)

func TestDocumentSize(t *testing.T) {
	c := NewContext(200, 100)
	doc := string(c.Bytes())
	if !strings.Contains(doc, `viewBox="0 0 200 100"`) {
		t.Errorf("missing viewBox: %s", doc)
	}
	if !strings.HasSuffix(doc, "</svg>\n") {
		t.Error("document should be closed")
	}
}

func TestTransformAndClip(t *testing.T) {
	c := NewContext(200, 100)
	c.SetTransform(2, 0, 0, 2, 0, 0)

	p := canvas.NewPath()
	p.Rect(0, 0, 50, 50)
	c.Save()
	c.ClipPath(p)
	c.SetFillColor("#abcdef")
	c.FillRect(0, 0, 100, 10)
	c.Restore()
	c.FillRect(0, 20, 10, 10)

	doc := string(c.Bytes())
	if !strings.Contains(doc, `<clipPath id="clip1"`) {
		t.Errorf("clip definition missing:\n%s", doc)
	}
	if !strings.Contains(doc, `clip-path="url(#clip1)"`) {
		t.Errorf("clipped element missing reference:\n%s", doc)
	}
	if !strings.Contains(doc, `transform="matrix(2 0 0 2 0 0)"`) {
		t.Errorf("transform missing:\n%s", doc)
	}
	if strings.Count(doc, "url(#clip1)") != 1 {
		t.Errorf("clip should not apply after Restore:\n%s", doc)
	}
}

func TestClearRect(t *testing.T) {
	c := NewContext(100, 100)
	c.FillRect(0, 0, 10, 10)
	c.FillRect(60, 60, 10, 10)
	c.ClearRect(0, 0, 50, 50)
	if c.Len() != 1 {
		t.Errorf("partial clear should drop one element, have %d", c.Len())
	}
	c.ClearRect(0, 0, 100, 100)
	if c.Len() != 0 {
		t.Errorf("full clear should drop everything, have %d", c.Len())
	}
}

func TestTextEscaped(t *testing.T) {
	c := NewContext(100, 20)
	c.FillText("A<B & C>", 50, 10, canvas.AlignCenter)
	doc := string(c.Bytes())
	if !strings.Contains(doc, "A&lt;B &amp; C&gt;") {
		t.Errorf("text not escaped: %s", doc)
	}
	if !strings.Contains(doc, `text-anchor="middle"`) {
		t.Errorf("anchor missing: %s", doc)
	}
}
