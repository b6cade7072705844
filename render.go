package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	statusToolStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)
	statusErrStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("124")).
			Foreground(lipgloss.Color("231")).
			Padding(0, 1)
)

func nodeGlyph(t NodeType) rune {
	switch t {
	case NodeCharging:
		return 'C'
	case NodePickup:
		return 'P'
	case NodeDropoff:
		return 'D'
	case NodeTarget:
		return 'T'
	case NodeOther:
		return 'o'
	}
	return '@'
}

// renderCanvas draws the graph into a rune grid at the current view
// transform. Terminal cells double as screen pixels; the View maps canvas
// space onto them.
func (m *model) renderCanvas(width, height int) []string {
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = make([]rune, width)
		for x := range cells[y] {
			cells[y][x] = ' '
		}
	}

	m.drawGrid(cells)
	m.drawPaths(cells)
	m.drawGesturePreviews(cells)
	m.drawNodes(cells)
	m.drawRubberBand(cells)

	// Cursor last so it is always visible.
	if m.mode == ModeNormal && inGrid(cells, m.cursorX, m.cursorY) {
		cells[m.cursorY][m.cursorX] = '█'
	}

	lines := make([]string, height)
	for y, row := range cells {
		lines[y] = string(row)
	}
	return lines
}

func inGrid(cells [][]rune, x, y int) bool {
	return y >= 0 && y < len(cells) && x >= 0 && x < len(cells[y])
}

func putRune(cells [][]rune, x, y int, r rune) {
	if inGrid(cells, x, y) {
		cells[y][x] = r
	}
}

func (m *model) drawGrid(cells [][]rune) {
	size := m.viewport.GridSizePx() * m.viewport.View.scale()
	if size < 2 {
		return // too dense to be useful
	}
	phase := CanvasToScreen(m.viewport.gridPhase(), m.viewport.View)
	startX := math.Mod(phase.X, size)
	startY := math.Mod(phase.Y, size)
	for y := startY; y < float64(len(cells)); y += size {
		for x := startX; x < float64(len(cells[0])); x += size {
			putRune(cells, int(math.Round(x)), int(math.Round(y)), '·')
		}
	}
}

func (m *model) drawPaths(cells [][]rune) {
	for _, p := range m.graph.Paths() {
		from, okFrom := m.graph.GetNode(p.From)
		to, okTo := m.graph.GetNode(p.To)
		if !okFrom || !okTo {
			continue
		}
		a := CanvasToScreen(Point{X: from.X, Y: from.Y}, m.viewport.View)
		b := CanvasToScreen(Point{X: to.X, Y: to.Y}, m.viewport.View)
		glyph := lineGlyph(a, b)
		if m.editor.PathSelected(p.ID) {
			glyph = '='
		}
		drawSegment(cells, a, b, glyph)
		drawArrowhead(cells, a, b)
		if p.Bidirectional {
			drawArrowhead(cells, b, a)
		}
	}
}

func (m *model) drawGesturePreviews(cells [][]rune) {
	pointer := CanvasToScreen(m.editor.Pointer(), m.viewport.View)
	if anchor := m.editor.PathAnchor(); anchor != "" {
		if n, ok := m.graph.GetNode(anchor); ok {
			a := CanvasToScreen(Point{X: n.X, Y: n.Y}, m.viewport.View)
			drawSegment(cells, a, pointer, '+')
		}
	}
	if start, ok := m.editor.MeasureStart(); ok {
		a := CanvasToScreen(start, m.viewport.View)
		drawSegment(cells, a, pointer, '~')
		putRune(cells, int(math.Round(a.X)), int(math.Round(a.Y)), 'x')
	}
}

func (m *model) drawNodes(cells [][]rune) {
	for _, n := range m.graph.Nodes() {
		p := CanvasToScreen(Point{X: n.X, Y: n.Y}, m.viewport.View)
		x, y := int(math.Round(p.X)), int(math.Round(p.Y))
		putRune(cells, x, y, nodeGlyph(n.Type))
		if m.editor.NodeSelected(n.ID) {
			putRune(cells, x-1, y, '[')
			putRune(cells, x+1, y, ']')
		}
		if n.Name != "" && m.viewport.View.scale() >= 0.5 {
			drawLabel(cells, x+2, y+1, n.Name)
		}
	}
}

func (m *model) drawRubberBand(cells [][]rune) {
	start, end, ok := m.editor.Band()
	if !ok {
		return
	}
	a := CanvasToScreen(start, m.viewport.View)
	b := CanvasToScreen(end, m.viewport.View)
	x1, x2 := int(math.Round(math.Min(a.X, b.X))), int(math.Round(math.Max(a.X, b.X)))
	y1, y2 := int(math.Round(math.Min(a.Y, b.Y))), int(math.Round(math.Max(a.Y, b.Y)))
	for x := x1; x <= x2; x++ {
		putRune(cells, x, y1, '-')
		putRune(cells, x, y2, '-')
	}
	for y := y1; y <= y2; y++ {
		putRune(cells, x1, y, '|')
		putRune(cells, x2, y, '|')
	}
}

func drawLabel(cells [][]rune, x, y int, label string) {
	if len(label) > 16 {
		label = label[:15] + "…"
	}
	for i, r := range label {
		putRune(cells, x+i, y, r)
	}
}

func lineGlyph(a, b Point) rune {
	dx := math.Abs(b.X - a.X)
	dy := math.Abs(b.Y - a.Y)
	switch {
	case dy < dx/2:
		return '─'
	case dx < dy/2:
		return '│'
	case (b.X-a.X)*(b.Y-a.Y) > 0:
		return '\\'
	}
	return '/'
}

// drawSegment steps along the segment one cell at a time.
func drawSegment(cells [][]rune, a, b Point, glyph rune) {
	steps := int(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)))
	if steps == 0 {
		putRune(cells, int(math.Round(a.X)), int(math.Round(a.Y)), glyph)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(a.X + (b.X-a.X)*t))
		y := int(math.Round(a.Y + (b.Y-a.Y)*t))
		putRune(cells, x, y, glyph)
	}
}

// drawArrowhead marks the direction of travel one cell short of the target.
func drawArrowhead(cells [][]rune, a, b Point) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Hypot(dx, dy)
	if length < 3 {
		return
	}
	x := int(math.Round(b.X - 2*dx/length))
	y := int(math.Round(b.Y - 2*dy/length))
	var glyph rune
	switch {
	case math.Abs(dx) >= math.Abs(dy) && dx > 0:
		glyph = '>'
	case math.Abs(dx) >= math.Abs(dy):
		glyph = '<'
	case dy > 0:
		glyph = 'v'
	default:
		glyph = '^'
	}
	putRune(cells, x, y, glyph)
}

func (m *model) statusBar(width int) string {
	tool := statusToolStyle.Render(m.editor.Tool().String())

	snap := "snap off"
	if m.viewport.SnapEnabled {
		snap = fmt.Sprintf("snap %.2gm", m.viewport.GridSizeMeters)
	}
	parts := []string{
		fmt.Sprintf("%d nodes / %d paths", m.graph.NodeCount(), m.graph.PathCount()),
		fmt.Sprintf("zoom %.2fx", m.viewport.View.scale()),
		snap,
	}
	if sel := len(m.editor.SelectedNodes()); sel > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", sel))
	}
	if m.mapInfo != nil {
		parts = append(parts, fmt.Sprintf("map %dx%d @ %.3gm/px", m.mapInfo.WidthPx, m.mapInfo.HeightPx, m.mapInfo.Meta.Resolution))
	}
	world := m.viewport.Map.CanvasToWorld(ScreenToCanvas(Point{X: float64(m.cursorX), Y: float64(m.cursorY)}, m.viewport.View))
	parts = append(parts, fmt.Sprintf("(%.1f, %.1f)", world.X, world.Y))

	info := statusBarStyle.Render(strings.Join(parts, " │ "))

	msg := m.statusMsg
	msgStyle := statusBarStyle
	if m.errMsg != "" {
		msg = m.errMsg
		msgStyle = statusErrStyle
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tool, info, msgStyle.Render(msg))
	if lipgloss.Width(bar) > width {
		bar = lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}
	return bar
}
