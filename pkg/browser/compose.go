package browser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fogleman/gg"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/render/canvas/raster"
	"github.com/matzehuels/trackview/pkg/render/canvas/svg"
)

// panelSize returns the backing size of the stacked tracks.
func (b *Browser) panelSize() (width, height int) {
	for _, t := range b.tracks {
		w, h := t.Surface().BackingSize()
		width = max(width, w)
		height += h
	}
	return width, height
}

// ComposePNG stacks all track surfaces into one PNG. It requires the
// raster backend and must not run concurrently with renders.
func (b *Browser) ComposePNG(w io.Writer) error {
	width, height := b.panelSize()
	if width == 0 || height == 0 {
		return errors.New(errors.ErrCodeNotInitialized, "nothing rendered yet")
	}
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	y := 0
	for _, t := range b.tracks {
		ctx, err := t.Surface().Context()
		if err != nil {
			return err
		}
		rc, ok := ctx.(*raster.Context)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "track %s does not use the raster backend", t.ID())
		}
		dc.DrawImage(rc.Image(), 0, y)
		_, h := t.Surface().BackingSize()
		y += h
	}
	return dc.EncodePNG(w)
}

// ComposeSVG stacks all track surfaces into one SVG document. It requires
// the svg backend. Clip ids are prefixed per track so they stay unique.
func (b *Browser) ComposeSVG(w io.Writer) error {
	width, height := b.panelSize()
	if width == 0 || height == 0 {
		return errors.New(errors.ErrCodeNotInitialized, "nothing rendered yet")
	}

	var defs, body bytes.Buffer
	y := 0
	for i, t := range b.tracks {
		ctx, err := t.Surface().Context()
		if err != nil {
			return err
		}
		sc, ok := ctx.(*svg.Context)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "track %s does not use the svg backend", t.ID())
		}
		prefix := fmt.Sprintf("t%d-", i)
		defs.Write(prefixClipIDs(sc.Defs(), prefix))
		body.Write(prefixClipIDs(sc.Fragment(0, float64(y)), prefix))
		_, h := t.Surface().BackingSize()
		y += h
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
	if defs.Len() > 0 {
		buf.WriteString("  <defs>\n")
		buf.Write(defs.Bytes())
		buf.WriteString("  </defs>\n")
	}
	buf.Write(body.Bytes())
	buf.WriteString("</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteTrack writes a single track surface in its backend's native format
// and returns the content type.
func (b *Browser) WriteTrack(w io.Writer, id string) (string, error) {
	t, err := b.Track(id)
	if err != nil {
		return "", err
	}
	ctx, err := t.Surface().Context()
	if err != nil {
		return "", err
	}
	switch c := ctx.(type) {
	case *raster.Context:
		return "image/png", c.EncodePNG(w)
	case *svg.Context:
		_, err := w.Write(c.Bytes())
		return "image/svg+xml", err
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "track %s: unsupported backend", id)
	}
}

func prefixClipIDs(markup []byte, prefix string) []byte {
	markup = bytes.ReplaceAll(markup, []byte(`id="clip`), []byte(`id="`+prefix+`clip`))
	return bytes.ReplaceAll(markup, []byte(`url(#clip`), []byte(`url(#`+prefix+`clip`))
}
