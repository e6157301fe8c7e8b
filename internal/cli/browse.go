package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/track"
)

// panStep is the fraction of the view moved by one pan key press.
const panStep = 0.25

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore a sample interactively in the terminal",
		Long: `Browse opens a terminal view of the configured tracks. Pan and zoom the
region, expand tracks, switch chromosomes and save snapshots as PNG.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			view.backend = "raster"
			a, err := c.open(cmd.Context(), view)
			if err != nil {
				return err
			}
			defer a.Close()

			chroms, err := a.src.Chromosomes(cmd.Context())
			if err != nil {
				return err
			}
			m := newBrowseModel(cmd.Context(), a, chroms)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if bm, ok := final.(browseModel); ok && bm.saved != "" {
				printSuccess("Last snapshot")
				printFile(bm.saved)
			}
			return nil
		},
	}
	view.register(cmd)
	c.completeViewFlags(cmd)
	return cmd
}

// =============================================================================
// Model
// =============================================================================

// renderedMsg reports a finished RenderAll.
type renderedMsg struct {
	err  error
	took time.Duration
}

// browseModel is the bubbletea model of the browse command.
type browseModel struct {
	ctx    context.Context
	app    *app
	chroms []genome.ChromSize

	cursor    int
	rendering bool
	lastTook  time.Duration
	status    string
	saved     string
	width     int
}

func newBrowseModel(ctx context.Context, a *app, chroms []genome.ChromSize) browseModel {
	return browseModel{ctx: ctx, app: a, chroms: chroms, rendering: true}
}

func (m browseModel) Init() tea.Cmd {
	return m.renderCmd()
}

func (m browseModel) renderCmd() tea.Cmd {
	b := m.app.browser
	ctx := m.ctx
	return func() tea.Msg {
		start := time.Now()
		err := b.RenderAll(ctx)
		return renderedMsg{err: err, took: time.Since(start)}
	}
}

// apply runs a view change and schedules a re-render when it succeeds.
func (m browseModel) apply(fn func() error) (tea.Model, tea.Cmd) {
	if err := fn(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.rendering = true
	m.status = ""
	return m, m.renderCmd()
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	sess := m.app.sess
	tracks := m.app.browser.Tracks()

	switch msg := msg.(type) {
	case renderedMsg:
		m.rendering = false
		m.lastTook = msg.took
		if msg.err != nil {
			m.status = "some tracks failed: " + msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			return m.apply(func() error { return sess.Pan(-panStep) })
		case "right", "l":
			return m.apply(func() error { return sess.Pan(panStep) })
		case "+", "=":
			return m.apply(sess.ZoomIn)
		case "-", "_":
			return m.apply(sess.ZoomOut)
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(tracks)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(tracks) > 0 {
				if err := tracks[m.cursor].Toggle(); err != nil {
					m.status = err.Error()
				}
			}
		case "m":
			sess.SetMarkerMode(!sess.MarkerMode())
		case "n":
			return m.apply(func() error { return m.stepChromosome(1) })
		case "p":
			return m.apply(func() error { return m.stepChromosome(-1) })
		case "r":
			return m.apply(func() error { return nil })
		case "s":
			m.saveSnapshot()
		}
	}
	return m, nil
}

// stepChromosome moves to the next or previous chromosome in genome order.
func (m browseModel) stepChromosome(delta int) error {
	_, i, found := lo.FindIndexOf(m.chroms, func(c genome.ChromSize) bool {
		return c.Chrom == m.app.sess.Chromosome()
	})
	if !found || len(m.chroms) == 0 {
		return errors.New(errors.ErrCodeNotFound, "chromosome %s not in genome", m.app.sess.Chromosome())
	}
	next := m.chroms[(i+delta+len(m.chroms))%len(m.chroms)]
	return m.app.sess.SetChromosome(next.Chrom, next.Size)
}

func (m *browseModel) saveSnapshot() {
	st := m.app.sess.State()
	name := fmt.Sprintf("%s_%s_%.0f-%.0f.png", st.Sample, st.Chrom, st.Range.Start, st.Range.End)
	f, err := os.Create(name)
	if err != nil {
		m.status = err.Error()
		return
	}
	defer f.Close()
	if err := m.app.browser.ComposePNG(f); err != nil {
		m.status = err.Error()
		return
	}
	m.saved = name
	m.status = "saved " + name
}

// =============================================================================
// View
// =============================================================================

func (m browseModel) View() string {
	var b strings.Builder
	st := m.app.sess.State()

	b.WriteString(StyleTitle.Render("trackview"))
	b.WriteString("  ")
	b.WriteString(StyleValue.Render(st.Sample))
	b.WriteString("\n")
	b.WriteString(regionLine(st.Chrom, st.Range, st.ChromSize))
	b.WriteString("\n\n")

	b.WriteString(m.trackTable())
	b.WriteString("\n")

	tracks := m.app.browser.Tracks()
	if len(tracks) > 0 {
		b.WriteString(featureList(tracks[m.cursor], 5))
	}
	b.WriteString("\n")

	var info []string
	if m.rendering {
		info = append(info, StyleWarning.Render("rendering..."))
	} else if m.lastTook > 0 {
		info = append(info, "rendered in "+m.lastTook.Round(time.Millisecond).String())
	}
	if st.MarkerMode {
		info = append(info, "marker mode")
	}
	if n := len(st.Highlights); n > 0 {
		info = append(info, fmt.Sprintf("%d highlights", n))
	}
	if m.status != "" {
		info = append(info, m.status)
	}
	b.WriteString(listDimStyle.Render(strings.Join(info, " · ")))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ pan  +/- zoom  ↑/↓ track  ⏎ expand  n/p chrom  m marker  s save  q quit"))
	return b.String()
}

// regionLine formats the viewed region with its share of the chromosome.
func regionLine(chrom string, r genome.Range, size float64) string {
	span := humanize.SIWithDigits(r.Len(), 2, "b")
	line := fmt.Sprintf("chr%s:%s-%s", chrom, humanize.Comma(int64(r.Start)), humanize.Comma(int64(r.End)))
	parts := []string{StyleHighlight.Render(line), StyleNumber.Render(span)}
	if size > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%.1f%% of %s", 100*r.Len()/size, humanize.SIWithDigits(size, 1, "b"))))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func (m browseModel) trackTable() string {
	tracks := m.app.browser.Tracks()
	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		expanded := ""
		if t.Expanded() {
			expanded = iconSuccess
		}
		rows = append(rows, []string{
			cursor, t.Label(), string(t.Kind()), t.Status().String(),
			humanize.Comma(int64(len(t.HoverBoxes()))), expanded,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Track", "Kind", "Status", "Features", "Expanded").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := listNormalStyle
			if row < len(tracks) {
				switch tracks[row].Status() {
				case track.StatusFailed:
					base = styleFailed
				case track.StatusLoading:
					base = listDimStyle
				}
			}
			if row == m.cursor {
				return base.Bold(true)
			}
			return base
		}).
		Render()
}

// featureList shows the first n hit targets of t.
func featureList(t track.Renderer, n int) string {
	boxes := t.HoverBoxes()
	if len(boxes) == 0 {
		return listDimStyle.Render("  no features in view") + "\n"
	}
	var b strings.Builder
	for _, hb := range lo.Slice(boxes, 0, n) {
		label := hb.Label
		if label == "" && hb.Element != nil {
			label = hb.Element.FeatureID()
		}
		b.WriteString("  " + listSelectedStyle.Render(iconInfo) + " " + listNormalStyle.Render(label) + "\n")
	}
	if len(boxes) > n {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  … %d more", len(boxes)-n)) + "\n")
	}
	return b.String()
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)
