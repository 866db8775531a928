package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/fentz26/laneplan/internal/layout"
)

const (
	gutterCells = 16
	// headerRows is the title line plus the two axis lines above the first lane.
	headerRows = 3
)

// barPart is the part of a bar under the pointer.
type barPart int

const (
	partNone barPart = iota
	partBody
	// partHandle is the first cell: the lane-switch handle.
	partHandle
	// partResizeEnd is the last cell of a bar at least three cells wide.
	partResizeEnd
)

// gridLine is one screen row of the chart: a task line, or the single line of an empty lane.
type gridLine struct {
	laneID   string
	laneName string
	first    bool
	bar      *layout.Bar
}

// grid maps a layout onto terminal cells.
type grid struct {
	layout    layout.Layout
	lines     []gridLine
	pxPerCell int
	scroll    int
	width     int
}

func newGrid(l layout.Layout, pxPerCell, scroll, width int) grid {
	g := grid{layout: l, pxPerCell: pxPerCell, scroll: scroll, width: width}
	for ri := range l.Rows {
		row := &l.Rows[ri]
		if len(row.Bars) == 0 {
			g.lines = append(g.lines, gridLine{laneID: row.Lane.ID, laneName: row.Lane.Name, first: true})
			continue
		}
		for bi := range row.Bars {
			g.lines = append(g.lines, gridLine{
				laneID:   row.Lane.ID,
				laneName: row.Lane.Name,
				first:    bi == 0,
				bar:      &row.Bars[bi],
			})
		}
	}
	return g
}

// cellSpan returns the bar's [start, end) in chart cells.
func (g grid) cellSpan(b layout.Bar) (int, int) {
	start := b.Geometry.LeftPx / g.pxPerCell
	end := (b.Geometry.RightPx() + g.pxPerCell - 1) / g.pxPerCell
	if end <= start {
		end = start + 1
	}
	return start, end
}

// chartCell converts a screen column to a chart cell, or -1 inside the gutter.
func (g grid) chartCell(x int) int {
	if x < gutterCells {
		return -1
	}
	return x - gutterCells + g.scroll
}

// pointerPx is the timeline pixel under screen column x.
func (g grid) pointerPx(x int) float64 {
	return float64((x - gutterCells + g.scroll) * g.pxPerCell)
}

// lineAt returns the chart line at screen row y.
func (g grid) lineAt(y int) (gridLine, bool) {
	i := y - headerRows
	if i < 0 || i >= len(g.lines) {
		return gridLine{}, false
	}
	return g.lines[i], true
}

// hit returns what is under the pointer.
func (g grid) hit(x, y int) (gridLine, barPart) {
	line, ok := g.lineAt(y)
	if !ok {
		return gridLine{}, partNone
	}
	cell := g.chartCell(x)
	if line.bar == nil || cell < 0 {
		return line, partNone
	}
	start, end := g.cellSpan(*line.bar)
	switch {
	case cell < start || cell >= end:
		return line, partNone
	case cell == start:
		return line, partHandle
	case cell == end-1 && end-start >= 3:
		return line, partResizeEnd
	default:
		return line, partBody
	}
}

type renderState struct {
	focusID  string
	dragID   string
	dropLane string
}

func (g grid) chartWidth() int {
	w := g.width - gutterCells
	if w < 1 {
		w = 1
	}
	return w
}

// renderAxis draws the two axis lines.
func (g grid) renderAxis() []string {
	w := g.chartWidth()
	top := []rune(strings.Repeat(" ", w))
	bottom := []rune(strings.Repeat(" ", w))
	for _, c := range g.layout.Columns {
		startCell := c.LeftPx/g.pxPerCell - g.scroll
		widthCells := c.WidthPx / g.pxPerCell
		placeLabel(top, startCell, widthCells, c.Label)
		placeLabel(bottom, startCell, widthCells, c.SubLabel)
	}
	pad := strings.Repeat(" ", gutterCells)
	lower := axisStyle.Render(string(bottom))
	if g.layout.Today.Visible {
		if x := g.layout.Today.OffsetPx/g.pxPerCell - g.scroll; x >= 0 && x < w {
			lower = axisStyle.Render(string(bottom[:x])) + todayStyle.Render("▼") + axisStyle.Render(string(bottom[x+1:]))
		}
	}
	return []string{pad + axisStyle.Render(string(top)), pad + lower}
}

func placeLabel(dst []rune, start, width int, label string) {
	if label == "" || width <= 1 {
		return
	}
	label = runewidth.Truncate(label, width-1, "")
	for i, r := range []rune(label) {
		if x := start + i; x >= 0 && x < len(dst) {
			dst[x] = r
		}
	}
}

// renderLines draws every chart line.
func (g grid) renderLines(st renderState) []string {
	out := make([]string, 0, len(g.lines))
	for _, line := range g.lines {
		out = append(out, g.renderGutter(line, st)+g.renderChart(line, st))
	}
	return out
}

func (g grid) renderGutter(line gridLine, st renderState) string {
	if !line.first {
		return strings.Repeat(" ", gutterCells)
	}
	name := runewidth.FillRight(runewidth.Truncate(line.laneName, gutterCells-2, "…"), gutterCells-1)
	style := laneLabelStyle
	if st.dropLane != "" && st.dropLane == line.laneID {
		style = laneDropStyle
	}
	return style.Render(name) + " "
}

func (g grid) renderChart(line gridLine, st renderState) string {
	w := g.chartWidth()
	todayX := -1
	if g.layout.Today.Visible {
		todayX = g.layout.Today.OffsetPx/g.pxPerCell - g.scroll
	}

	if line.bar == nil {
		return g.background(0, w, todayX)
	}

	start, end := g.cellSpan(*line.bar)
	start, end = start-g.scroll, end-g.scroll
	visStart, visEnd := clamp(start, 0, w), clamp(end, 0, w)

	var b strings.Builder
	b.WriteString(g.background(0, visStart, todayX))
	if visEnd > visStart {
		b.WriteString(barStyleFor(line.bar, st).Render(barText(line.bar, visEnd-visStart, start < 0)))
	}
	b.WriteString(g.background(visEnd, w, todayX))
	return b.String()
}

func (g grid) background(from, to, todayX int) string {
	if to <= from {
		return ""
	}
	if todayX < from || todayX >= to {
		return strings.Repeat(" ", to-from)
	}
	return strings.Repeat(" ", todayX-from) + todayStyle.Render("┊") + strings.Repeat(" ", to-todayX-1)
}

func barStyleFor(b *layout.Bar, st renderState) lipgloss.Style {
	switch {
	case b.Task.ID == st.dragID:
		return barDragStyle
	case b.Task.ID == st.focusID:
		return barFocusStyle
	case b.Conflict:
		return barConflictStyle
	default:
		return barStyle
	}
}

// barText is the bar's content: the lane handle, the label, and the resize grip.
func barText(b *layout.Bar, cells int, clipped bool) string {
	if cells <= 0 {
		return ""
	}
	var label string
	if !clipped {
		label = "⋮"
	}
	name := b.Task.Name
	if b.Conflict {
		name = "! " + name
	}
	label += name
	if cells >= 3 {
		body := runewidth.FillRight(runewidth.Truncate(label, cells-1, "…"), cells-1)
		return body + "▐"
	}
	return runewidth.FillRight(runewidth.Truncate(label, cells, ""), cells)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
