package main

import "math"

// Point is a position in some pixel or meter coordinate system.
type Point struct {
	X float64
	Y float64
}

// View is the pan/zoom transform between canvas space and screen space:
// screen = canvas*Scale + Offset.
type View struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

func (v View) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ScreenToCanvas maps a screen/client point into canvas-pixel space.
func ScreenToCanvas(p Point, v View) Point {
	s := v.scale()
	return Point{X: (p.X - v.OffsetX) / s, Y: (p.Y - v.OffsetY) / s}
}

// CanvasToScreen is the inverse of ScreenToCanvas.
func CanvasToScreen(p Point, v View) Point {
	s := v.scale()
	return Point{X: p.X*s + v.OffsetX, Y: p.Y*s + v.OffsetY}
}

// MapTransform relates canvas-pixel space to world meters for a loaded
// occupancy map. World Y is flipped relative to canvas Y: image row 0 is the
// top of the map while world Y grows upward.
type MapTransform struct {
	Resolution    float64 // meters per pixel, > 0
	OriginX       float64 // world X of the map's lower-left pixel
	OriginY       float64
	ImageHeightPx float64
}

// usable reports whether the transform can convert at all. A nil or
// zero-resolution transform degrades to the identity so the editor still
// shows coordinates before a map is loaded.
func (t *MapTransform) usable() bool {
	return t != nil && t.Resolution > 0
}

// CanvasToWorld converts a canvas-pixel point to world meters.
func (t *MapTransform) CanvasToWorld(p Point) Point {
	if !t.usable() {
		return p
	}
	return Point{
		X: p.X*t.Resolution + t.OriginX,
		Y: (t.ImageHeightPx-p.Y)*t.Resolution + t.OriginY,
	}
}

// WorldToCanvas is the algebraic inverse of CanvasToWorld.
func (t *MapTransform) WorldToCanvas(p Point) Point {
	if !t.usable() {
		return p
	}
	return Point{
		X: (p.X - t.OriginX) / t.Resolution,
		Y: t.ImageHeightPx - (p.Y-t.OriginY)/t.Resolution,
	}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// pointToSegmentDistance returns the distance from p to the segment a-b,
// clamping the projection parameter to [0,1] so endpoints are handled.
func pointToSegmentDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return distance(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}
