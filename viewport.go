package main

import "math"

// Viewport owns the pan/zoom state, the camera commands and the grid
// geometry. It reads map bounds through the MapTransform but never mutates
// the graph.
type Viewport struct {
	View           View
	Width          float64 // screen size the viewport renders into
	Height         float64
	GridSizeMeters float64
	SnapEnabled    bool
	Map            *MapTransform // nil until a map is loaded
}

func NewViewport() *Viewport {
	return &Viewport{
		View:           View{Scale: 1},
		GridSizeMeters: 1,
	}
}

func (vp *Viewport) Resize(width, height float64) {
	vp.Width = width
	vp.Height = height
}

// SetGridSizeMeters clamps to the supported (0, 10] range.
func (vp *Viewport) SetGridSizeMeters(m float64) {
	if m < minGridMeters {
		m = minGridMeters
	}
	if m > maxGridMeters {
		m = maxGridMeters
	}
	vp.GridSizeMeters = m
}

// ZoomAt scales by factor while keeping the canvas point under screenPoint
// fixed on screen.
func (vp *Viewport) ZoomAt(screenPoint Point, factor float64) {
	newScale := clampScale(vp.View.scale() * factor)
	anchor := ScreenToCanvas(screenPoint, vp.View)
	vp.View.Scale = newScale
	vp.View.OffsetX = screenPoint.X - anchor.X*newScale
	vp.View.OffsetY = screenPoint.Y - anchor.Y*newScale
}

// ZoomCentered zooms toward the middle of the viewport.
func (vp *Viewport) ZoomCentered(factor float64) {
	vp.ZoomAt(Point{X: vp.Width / 2, Y: vp.Height / 2}, factor)
}

func (vp *Viewport) Reset() {
	vp.View = View{Scale: 1}
}

func clampScale(s float64) float64 {
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}

// FitAll frames every node (and the map extent, when one is loaded) with
// fixed padding. Fitting never zooms in past 2x; a single node should not
// fill the screen.
func (vp *Viewport) FitAll(nodes []Node, mapWidthPx, mapHeightPx float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}
	if mapWidthPx > 0 && mapHeightPx > 0 {
		minX = math.Min(minX, 0)
		minY = math.Min(minY, 0)
		maxX = math.Max(maxX, mapWidthPx)
		maxY = math.Max(maxY, mapHeightPx)
	}
	if math.IsInf(minX, 1) {
		return // nothing to frame
	}

	scale := fitMaxScale
	if w := maxX - minX; w > 0 {
		scale = math.Min(scale, (vp.Width-2*fitPadding)/w)
	}
	if h := maxY - minY; h > 0 {
		scale = math.Min(scale, (vp.Height-2*fitPadding)/h)
	}
	vp.View.Scale = clampScale(scale)
	vp.centerOn(Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2})
}

// FocusOn centers the viewport on the centroid of the given nodes at the
// current scale. No-op for an empty set.
func (vp *Viewport) FocusOn(nodes []Node) {
	if len(nodes) == 0 {
		return
	}
	var cx, cy float64
	for _, n := range nodes {
		cx += n.X
		cy += n.Y
	}
	vp.centerOn(Point{X: cx / float64(len(nodes)), Y: cy / float64(len(nodes))})
}

func (vp *Viewport) centerOn(canvasPoint Point) {
	s := vp.View.scale()
	vp.View.OffsetX = vp.Width/2 - canvasPoint.X*s
	vp.View.OffsetY = vp.Height/2 - canvasPoint.Y*s
}

// GridSizePx converts the meter-specified grid spacing to canvas pixels.
// Without a map resolution the grid is decorative and uses a fixed spacing.
func (vp *Viewport) GridSizePx() float64 {
	if vp.Map.usable() {
		return vp.GridSizeMeters / vp.Map.Resolution
	}
	return defaultGridPx
}

// gridPhase is the canvas point where world (0,0) projects, reduced modulo
// the grid size. Offsetting the lattice by it makes grid lines land on round
// world-meter coordinates instead of canvas-pixel multiples.
func (vp *Viewport) gridPhase() Point {
	if !vp.Map.usable() {
		return Point{}
	}
	size := vp.GridSizePx()
	origin := vp.Map.WorldToCanvas(Point{})
	return Point{X: floorMod(origin.X, size), Y: floorMod(origin.Y, size)}
}

func floorMod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

// Quantize snaps a canvas point to the nearest grid intersection regardless
// of the snap toggle (the align-to-grid command always snaps).
func (vp *Viewport) Quantize(p Point) Point {
	size := vp.GridSizePx()
	if size <= 0 {
		return p
	}
	phase := vp.gridPhase()
	return Point{
		X: math.Round((p.X-phase.X)/size)*size + phase.X,
		Y: math.Round((p.Y-phase.Y)/size)*size + phase.Y,
	}
}

// Snap is Quantize gated on the user's snap-to-grid toggle.
func (vp *Viewport) Snap(p Point) Point {
	if !vp.SnapEnabled {
		return p
	}
	return vp.Quantize(p)
}
