package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/btracey/rootfind/root"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorMuted     = lipgloss.Color("#6B7280")
)

// Rows shown at each end of a long iteration table
const tableEdgeRows = 10

// report renders solve results for one output. Styles come from a renderer
// bound to that output so color is dropped when it is not a terminal.
type report struct {
	out io.Writer

	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	muted  lipgloss.Style
	value  lipgloss.Style
	box    lipgloss.Style
}

func newReport(out io.Writer) *report {
	r := lipgloss.NewRenderer(out)
	return &report{
		out: out,
		title: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		header: r.NewStyle().
			Bold(true).
			Foreground(colorMuted).
			PaddingRight(2),
		cell: r.NewStyle().
			PaddingRight(2),
		muted: r.NewStyle().
			Foreground(colorMuted).
			Italic(true),
		value: r.NewStyle().
			Bold(true).
			Foreground(colorSecondary),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
	}
}

// Visualize prints the evaluated points of a successful solve, or the
// bracket after every step for bisection
func (p *report) Visualize(method string, r *root.Result) {
	var headings []string
	var rows [][]string
	if r.Brackets != nil {
		headings = []string{"step", "lower", "upper", "width"}
		for i, b := range r.Brackets {
			rows = append(rows, []string{strconv.Itoa(i), formatFloat(b.Lower.X), formatFloat(b.Upper.X), formatFloat(b.Upper.X - b.Lower.X)})
		}
	} else {
		headings = []string{"eval", "x", "f(x)"}
		for i, pt := range r.Record {
			rows = append(rows, []string{strconv.Itoa(i + 1), formatFloat(pt.X), formatFloat(pt.F)})
		}
	}
	fmt.Fprintln(p.out, p.title.Render(method))
	fmt.Fprintln(p.out, p.table(headings, rows))
}

// Summary prints the root and the solve statistics
func (p *report) Summary(r *root.Result) {
	lines := []string{
		"root  " + p.value.Render(strconv.FormatFloat(r.Root, 'f', -1, 64)),
		p.muted.Render(fmt.Sprintf("x = %s, f(x) = %s", formatFloat(r.Loc), formatFloat(r.Residual))),
		p.muted.Render(fmt.Sprintf("%v after %d iterations and %d evaluations in %v",
			r.Status, r.Iterations, r.FunctionEvaluations, r.Runtime)),
	}
	fmt.Fprintln(p.out, p.box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (p *report) table(headings []string, rows [][]string) string {
	if len(rows) > 2*tableEdgeRows {
		skipped := len(rows) - 2*tableEdgeRows
		gap := make([]string, len(headings))
		gap[0] = fmt.Sprintf("(%d more)", skipped)
		rows = append(append(rows[:tableEdgeRows:tableEdgeRows], gap), rows[len(rows)-tableEdgeRows:]...)
	}

	widths := make([]int, len(headings))
	for i, h := range headings {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, p.row(p.header, headings, widths))
	for _, row := range rows {
		lines = append(lines, p.row(p.cell, row, widths))
	}
	return strings.Join(lines, "\n")
}

func (p *report) row(style lipgloss.Style, cells []string, widths []int) string {
	rendered := make([]string, len(cells))
	for i, c := range cells {
		// Width includes the padding
		rendered[i] = style.Width(widths[i] + 2).Render(c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 10, 64)
}
