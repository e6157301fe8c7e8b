package render

import (
	"context"
	"testing"

	"github.com/matzehuels/trackview/pkg/errors"
)

func TestConvertWithoutTool(t *testing.T) {
	old := converter
	converter = "rsvg-convert-not-installed"
	t.Cleanup(func() { converter = old })

	if Available() {
		t.Fatal("fake converter should not be found")
	}
	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestToPNG(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)
	png, err := ToPNG(context.Background(), svg, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("output is not a PNG")
	}
}
