package main

const (
	// Hit testing, canvas-pixel space.
	nodeHitRadius   = 15.0
	pathHitDistance = 20.0

	// Validation: two nodes closer than this are reported as overlapping.
	overlapDistance = 10.0

	maxHistory = 50

	// Viewport.
	fitPadding  = 50.0
	fitMaxScale = 2.0
	minScale    = 0.1
	maxScale    = 10.0

	// Grid spacing fallback when no map resolution is known.
	defaultGridPx  = 50.0
	maxGridMeters  = 10.0
	minGridMeters  = 0.05
	gridMetersStep = 0.25

	// Offset applied when duplicating a single node in place.
	duplicateOffset = 40.0

	// Element defaults.
	defaultMaxRobots  = 1
	defaultSpeedLimit = 1.0
	defaultPathWidth  = 1.0
)
