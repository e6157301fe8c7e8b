package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/observability"
	"github.com/matzehuels/trackview/pkg/render"
	"github.com/matzehuels/trackview/pkg/render/hittest"
)

// Output formats.
const (
	formatPNG = "png"
	formatSVG = "svg"
	formatPDF = "pdf"
)

// renderOpts holds options for the render command.
type renderOpts struct {
	view   viewFlags
	format string
	output string
	hitmap string
}

// hitmapEntry is one track of the --hitmap JSON document.
type hitmapEntry struct {
	ID     string             `json:"id"`
	Top    float64            `json:"top"`
	Height float64            `json:"height"`
	Status string             `json:"status"`
	Boxes  []hittest.HoverBox `json:"boxes"`
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render all tracks for a region to an image",
		Long: `Render draws every configured track for one sample and region and stacks
them into a single PNG, SVG or PDF. PDF output requires rsvg-convert.`,
		Example: `  trackview render --data ./data --sample s1 --chrom 1 -o panel.png
  trackview render -c tracks.toml --chrom 2 --start 1e6 --end 2e6 -o region.svg --hitmap hits.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, opts)
		},
	}

	opts.view.register(cmd)
	c.completeViewFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <sample>_<chrom>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, svg, pdf (default: from --output, else png)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().StringVar(&opts.hitmap, "hitmap", "", "also write the hover boxes of every track as JSON")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	ctx := cmd.Context()
	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if format == formatPDF && !render.Available() {
		return errors.New(errors.ErrCodeInvalidConfig, "pdf output requires rsvg-convert")
	}
	opts.view.backend = "raster"
	if format != formatPNG {
		opts.view.backend = "svg"
	}

	a, err := c.open(ctx, opts.view)
	if err != nil {
		return err
	}
	defer a.Close()

	region := a.sess.State()
	prog := newProgress(c.Logger)
	spinner := newRenderSpinner(ctx, os.Stderr, fmt.Sprintf("%s:%s", region.Chrom, region.Range), len(a.browser.Tracks()))
	observability.SetTrackHooks(spinner)
	defer observability.Reset()
	spinner.Start()
	renderErr := a.browser.RenderAll(ctx)
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if renderErr != nil {
		// Failed tracks still draw their placeholder; keep going.
		c.Logger.Debug("render failures", "err", renderErr)
	}
	prog.done(fmt.Sprintf("Rendered %d tracks", len(a.browser.Tracks())))
	spinner.Finish(a.browser.Tracks())
	printTrackStatus(a.browser.Tracks())

	var buf bytes.Buffer
	switch format {
	case formatPNG:
		err = a.browser.ComposePNG(&buf)
	default:
		err = a.browser.ComposeSVG(&buf)
	}
	if err != nil {
		return err
	}
	data := buf.Bytes()
	if format == formatPDF {
		if data, err = render.ToPDF(ctx, data); err != nil {
			return err
		}
	}

	out := opts.output
	if out == "" {
		out = fmt.Sprintf("%s_%s.%s", region.Sample, region.Chrom, format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", out)
	}
	printSuccess("Saved %s panel", strings.ToUpper(format))
	printFile(out)

	if opts.hitmap != "" {
		if err := writeHitmap(a, opts.hitmap); err != nil {
			return err
		}
		printFile(opts.hitmap)
	}
	return nil
}

// resolveFormat picks the output format from --format or the output extension.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" {
			format = formatPNG
		}
	}
	switch format {
	case formatPNG, formatSVG, formatPDF:
		return format, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (use png, svg or pdf)", format)
	}
}

func writeHitmap(a *app, path string) error {
	var (
		entries []hitmapEntry
		top     float64
	)
	for _, t := range a.browser.Tracks() {
		h := t.Surface().Height()
		entries = append(entries, hitmapEntry{
			ID:     t.ID(),
			Top:    top,
			Height: h,
			Status: t.Status().String(),
			Boxes:  t.HoverBoxes(),
		})
		top += h
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode hitmap")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
