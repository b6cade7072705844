package main

import (
	"fmt"
	"sort"
)

type dragState struct {
	nodeID string
	moved  bool
}

type bandState struct {
	start Point
	end   Point
}

// Editor is the selection and tool controller. It interprets pointer input
// against the active tool, owns the ephemeral state no snapshot ever sees
// (selection sets, path anchor, drag, rubber band, measure anchor) and
// forwards mutations to the graph.
type Editor struct {
	graph *Graph
	view  *Viewport

	tool Tool

	selectedNodes map[string]bool
	selectedPaths map[string]bool

	pathAnchor   string // node ID of the first draw-path click, "" if none
	measureStart *Point
	drag         *dragState
	band         *bandState
	pointer      Point // last pointer position, drives gesture previews

	clipboard []Node
}

func NewEditor(g *Graph, vp *Viewport) *Editor {
	return &Editor{
		graph:         g,
		view:          vp,
		tool:          ToolSelect,
		selectedNodes: make(map[string]bool),
		selectedPaths: make(map[string]bool),
	}
}

func (e *Editor) Tool() Tool {
	return e.tool
}

// SetTool switches tools and abandons any gesture in progress. A half-drawn
// path or rubber band is never committed by a tool change.
func (e *Editor) SetTool(t Tool) {
	e.tool = t
	e.cancelGestures()
}

// Escape clears in-progress gestures without touching the selection.
func (e *Editor) Escape() {
	e.cancelGestures()
}

func (e *Editor) cancelGestures() {
	e.pathAnchor = ""
	e.measureStart = nil
	e.drag = nil
	e.band = nil
}

// PathAnchor exposes the draw-path source node for rendering the preview
// segment. Empty when no path is being drawn.
func (e *Editor) PathAnchor() string {
	return e.pathAnchor
}

func (e *Editor) MeasureStart() (Point, bool) {
	if e.measureStart == nil {
		return Point{}, false
	}
	return *e.measureStart, true
}

func (e *Editor) Band() (Point, Point, bool) {
	if e.band == nil {
		return Point{}, Point{}, false
	}
	return e.band.start, e.band.end, true
}

func (e *Editor) Pointer() Point {
	return e.pointer
}

func (e *Editor) Dragging() bool {
	return e.drag != nil
}

// SelectedNodes returns the selected node IDs in stable order.
func (e *Editor) SelectedNodes() []string {
	ids := make([]string, 0, len(e.selectedNodes))
	for id := range e.selectedNodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Editor) SelectedPaths() []string {
	ids := make([]string, 0, len(e.selectedPaths))
	for id := range e.selectedPaths {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Editor) NodeSelected(id string) bool { return e.selectedNodes[id] }
func (e *Editor) PathSelected(id string) bool { return e.selectedPaths[id] }

// NodeAt hit-tests nodes at a canvas point. Later nodes draw on top, so the
// scan runs newest-first.
func (e *Editor) NodeAt(p Point) (Node, bool) {
	nodes := e.graph.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if distance(p, Point{X: nodes[i].X, Y: nodes[i].Y}) < nodeHitRadius {
			return nodes[i], true
		}
	}
	return Node{}, false
}

// PathAt hit-tests paths by perpendicular distance to the segment between
// the endpoint nodes.
func (e *Editor) PathAt(p Point) (Path, bool) {
	paths := e.graph.Paths()
	for i := len(paths) - 1; i >= 0; i-- {
		from, okFrom := e.graph.GetNode(paths[i].From)
		to, okTo := e.graph.GetNode(paths[i].To)
		if !okFrom || !okTo {
			continue
		}
		d := pointToSegmentDistance(p, Point{X: from.X, Y: from.Y}, Point{X: to.X, Y: to.Y})
		if d <= pathHitDistance {
			return paths[i], true
		}
	}
	return Path{}, false
}

// PointerDown dispatches a press at canvas point p against the active tool.
func (e *Editor) PointerDown(p Point, shift bool) Result {
	e.pointer = p
	switch e.tool {
	case ToolAddNode:
		return e.addNodeAt(p)
	case ToolDrawPath:
		return e.drawPathAt(p)
	case ToolSelect:
		return e.selectAt(p, shift)
	case ToolDelete:
		return e.deleteAt(p)
	case ToolMeasure:
		return e.measureAt(p)
	}
	return noopResult("")
}

// PointerMove updates whichever gesture is live: node drags follow the
// (optionally snapped) pointer, rubber bands grow, previews track.
func (e *Editor) PointerMove(p Point) {
	e.pointer = p
	if e.drag != nil {
		snapped := e.view.Snap(p)
		if e.graph.MoveNode(e.drag.nodeID, snapped.X, snapped.Y) {
			e.drag.moved = true
		}
		return
	}
	if e.band != nil {
		e.band.end = p
	}
}

// PointerUp commits the live gesture: a moved drag checkpoints once, a
// rubber band unions the contained nodes into the selection.
func (e *Editor) PointerUp(p Point) Result {
	e.pointer = p
	if e.drag != nil {
		moved := e.drag.moved
		e.drag = nil
		if moved {
			e.graph.Checkpoint()
			return okResult("node moved")
		}
		return noopResult("")
	}
	if e.band != nil {
		added := e.finishBand()
		e.band = nil
		if added == 0 {
			return noopResult("no nodes in selection box")
		}
		return okResult(fmt.Sprintf("%d nodes selected", len(e.selectedNodes)))
	}
	return noopResult("")
}

func (e *Editor) finishBand() int {
	minX, maxX := e.band.start.X, e.band.end.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := e.band.start.Y, e.band.end.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	added := 0
	for _, n := range e.graph.Nodes() {
		if n.X >= minX && n.X <= maxX && n.Y >= minY && n.Y <= maxY {
			if !e.selectedNodes[n.ID] {
				added++
			}
			e.selectedNodes[n.ID] = true
		}
	}
	return added
}

func (e *Editor) addNodeAt(p Point) Result {
	p = e.view.Snap(p)
	n := e.graph.AddNode(Node{
		Name: fmt.Sprintf("Node %d", e.graph.NodeCount()+1),
		X:    p.X,
		Y:    p.Y,
	})
	e.selectOnly(n.ID)
	return Result{Status: StatusOK, Message: fmt.Sprintf("added %s", n.Name), NodeID: n.ID}
}

func (e *Editor) drawPathAt(p Point) Result {
	hit, ok := e.NodeAt(p)
	if !ok {
		return noopResult("click on a node to draw a path")
	}
	if e.pathAnchor == "" {
		e.pathAnchor = hit.ID
		return Result{Status: StatusOK, Message: fmt.Sprintf("path from %s: click the target node", nodeLabel(hit)), NodeID: hit.ID}
	}
	if hit.ID == e.pathAnchor {
		// Keep the anchor: the gesture stays armed for a valid second click.
		return rejectedResult("cannot connect a node to itself")
	}
	path, err := e.graph.AddPath(Path{From: e.pathAnchor, To: hit.ID})
	e.pathAnchor = ""
	if err != nil {
		return rejectedResult(err.Error())
	}
	return Result{Status: StatusOK, Message: fmt.Sprintf("added path %s", path.Name), PathID: path.ID}
}

func (e *Editor) selectAt(p Point, shift bool) Result {
	if node, ok := e.NodeAt(p); ok {
		if shift {
			if e.selectedNodes[node.ID] {
				delete(e.selectedNodes, node.ID)
			} else {
				e.selectedNodes[node.ID] = true
			}
			return okResult(fmt.Sprintf("%d nodes selected", len(e.selectedNodes)))
		}
		e.selectOnly(node.ID)
		e.drag = &dragState{nodeID: node.ID}
		return Result{Status: StatusOK, Message: fmt.Sprintf("selected %s", nodeLabel(node)), NodeID: node.ID}
	}
	if !shift {
		if path, ok := e.PathAt(p); ok {
			e.clearSelectionSets()
			e.selectedPaths[path.ID] = true
			return Result{Status: StatusOK, Message: fmt.Sprintf("selected path %s", path.Name), PathID: path.ID}
		}
		e.clearSelectionSets()
		return noopResult("selection cleared")
	}
	// Shift-drag on empty space starts a rubber band; nodes are added on
	// release, union with whatever is already selected.
	e.band = &bandState{start: p, end: p}
	return noopResult("")
}

func (e *Editor) deleteAt(p Point) Result {
	if node, ok := e.NodeAt(p); ok {
		e.graph.DeleteNode(node.ID)
		e.pruneSelection()
		return okResult(fmt.Sprintf("deleted %s", nodeLabel(node)))
	}
	if path, ok := e.PathAt(p); ok {
		e.graph.DeletePath(path.ID)
		e.pruneSelection()
		return okResult(fmt.Sprintf("deleted path %s", path.Name))
	}
	return noopResult("nothing to delete here")
}

func (e *Editor) measureAt(p Point) Result {
	if e.measureStart == nil {
		e.measureStart = &Point{X: p.X, Y: p.Y}
		return okResult("measuring: click the end point")
	}
	px := distance(*e.measureStart, p)
	e.measureStart = nil
	if e.view.Map.usable() {
		return okResult(fmt.Sprintf("distance: %.1f px (%.2f m)", px, px*e.view.Map.Resolution))
	}
	return okResult(fmt.Sprintf("distance: %.1f px", px))
}

func (e *Editor) selectOnly(nodeID string) {
	e.clearSelectionSets()
	e.selectedNodes[nodeID] = true
}

func (e *Editor) clearSelectionSets() {
	e.selectedNodes = make(map[string]bool)
	e.selectedPaths = make(map[string]bool)
}

// pruneSelection drops IDs that no longer resolve; deletions and undo can
// both leave stale entries behind.
func (e *Editor) pruneSelection() {
	for id := range e.selectedNodes {
		if _, ok := e.graph.GetNode(id); !ok {
			delete(e.selectedNodes, id)
		}
	}
	for id := range e.selectedPaths {
		if _, ok := e.graph.GetPath(id); !ok {
			delete(e.selectedPaths, id)
		}
	}
}

// SelectAll selects every node and path.
func (e *Editor) SelectAll() Result {
	e.clearSelectionSets()
	for _, n := range e.graph.Nodes() {
		e.selectedNodes[n.ID] = true
	}
	for _, p := range e.graph.Paths() {
		e.selectedPaths[p.ID] = true
	}
	return okResult(fmt.Sprintf("selected %d nodes, %d paths", len(e.selectedNodes), len(e.selectedPaths)))
}

func (e *Editor) ClearSelection() Result {
	e.clearSelectionSets()
	return okResult("selection cleared")
}

// DeleteSelection removes selected nodes (paths cascade) or, with no node
// selected, the selected paths.
func (e *Editor) DeleteSelection() Result {
	if len(e.selectedNodes) > 0 {
		count := e.graph.DeleteNodes(e.SelectedNodes())
		e.clearSelectionSets()
		return okResult(fmt.Sprintf("deleted %d nodes", count))
	}
	if len(e.selectedPaths) > 0 {
		count := e.graph.DeletePaths(e.SelectedPaths())
		e.clearSelectionSets()
		return okResult(fmt.Sprintf("deleted %d paths", count))
	}
	return noopResult("nothing selected")
}

// Copy snapshots the selected nodes into the in-memory clipboard. Paths are
// deliberately excluded; pasted nodes get fresh IDs no path could reference.
func (e *Editor) Copy() Result {
	if len(e.selectedNodes) == 0 {
		return noopResult("nothing selected to copy")
	}
	e.clipboard = nil
	for _, n := range e.graph.Nodes() {
		if e.selectedNodes[n.ID] {
			e.clipboard = append(e.clipboard, n)
		}
	}
	return okResult(fmt.Sprintf("copied %d nodes", len(e.clipboard)))
}

// Paste instantiates the clipboard at a target point with fresh IDs,
// preserving the copied nodes' relative layout, and selects the new set.
func (e *Editor) Paste(at Point) Result {
	if len(e.clipboard) == 0 {
		return noopResult("nothing to paste")
	}
	origin := Point{X: e.clipboard[0].X, Y: e.clipboard[0].Y}
	fresh := make([]Node, len(e.clipboard))
	for i, n := range e.clipboard {
		n.ID = ""
		n.X = at.X + (n.X - origin.X)
		n.Y = at.Y + (n.Y - origin.Y)
		fresh[i] = n
	}
	added := e.graph.AddNodes(fresh)
	e.clearSelectionSets()
	for _, n := range added {
		e.selectedNodes[n.ID] = true
	}
	return okResult(fmt.Sprintf("pasted %d nodes", len(added)))
}

// Duplicate copies the single selected node right next to itself.
func (e *Editor) Duplicate() Result {
	ids := e.SelectedNodes()
	if len(ids) != 1 {
		return noopResult("select a single node to duplicate")
	}
	src, ok := e.graph.GetNode(ids[0])
	if !ok {
		return noopResult("select a single node to duplicate")
	}
	src.ID = ""
	src.X += duplicateOffset
	src.Y += duplicateOffset
	n := e.graph.AddNode(src)
	e.selectOnly(n.ID)
	return Result{Status: StatusOK, Message: fmt.Sprintf("duplicated as %s", n.ID), NodeID: n.ID}
}

// AlignHorizontal sets every selected node's Y to the selection's mean Y.
func (e *Editor) AlignHorizontal() Result {
	return e.align(false)
}

// AlignVertical sets every selected node's X to the selection's mean X.
func (e *Editor) AlignVertical() Result {
	return e.align(true)
}

func (e *Editor) align(vertical bool) Result {
	ids := e.SelectedNodes()
	if len(ids) < 2 {
		return noopResult("select at least 2 nodes to align")
	}
	var sum float64
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, ok := e.graph.GetNode(id)
		if !ok {
			continue
		}
		nodes = append(nodes, n)
		if vertical {
			sum += n.X
		} else {
			sum += n.Y
		}
	}
	if len(nodes) < 2 {
		return noopResult("select at least 2 nodes to align")
	}
	mean := sum / float64(len(nodes))
	for _, n := range nodes {
		if vertical {
			e.graph.MoveNode(n.ID, mean, n.Y)
		} else {
			e.graph.MoveNode(n.ID, n.X, mean)
		}
	}
	e.graph.Checkpoint()
	if vertical {
		return okResult(fmt.Sprintf("aligned %d nodes vertically", len(nodes)))
	}
	return okResult(fmt.Sprintf("aligned %d nodes horizontally", len(nodes)))
}

// AlignToGrid quantizes each selected node independently. This command
// always snaps, ignoring the global snap toggle.
func (e *Editor) AlignToGrid() Result {
	ids := e.SelectedNodes()
	if len(ids) == 0 {
		return noopResult("nothing selected")
	}
	moved := 0
	for _, id := range ids {
		n, ok := e.graph.GetNode(id)
		if !ok {
			continue
		}
		p := e.view.Quantize(Point{X: n.X, Y: n.Y})
		e.graph.MoveNode(id, p.X, p.Y)
		moved++
	}
	if moved == 0 {
		return noopResult("nothing selected")
	}
	e.graph.Checkpoint()
	return okResult(fmt.Sprintf("snapped %d nodes to grid", moved))
}

// BulkEdit applies a sparse patch to every selected node.
func (e *Editor) BulkEdit(patch NodePatch) Result {
	ids := e.SelectedNodes()
	if len(ids) == 0 {
		return noopResult("nothing selected")
	}
	count := e.graph.UpdateNodes(ids, patch)
	return okResult(fmt.Sprintf("updated %d nodes", count))
}

// ClearGraph empties the graph. Selection and gestures go with it; the ID
// counters survive.
func (e *Editor) ClearGraph() Result {
	if e.graph.NodeCount() == 0 && e.graph.PathCount() == 0 {
		return noopResult("graph is already empty")
	}
	e.graph.Clear()
	e.clearSelectionSets()
	e.cancelGestures()
	return okResult("graph cleared")
}

// Undo restores the previous snapshot. Selection is not part of snapshots,
// so it resets rather than pointing at elements that may not exist anymore.
func (e *Editor) Undo() Result {
	if !e.graph.Undo() {
		return noopResult("nothing to undo")
	}
	e.clearSelectionSets()
	e.cancelGestures()
	return okResult("undo")
}

func (e *Editor) Redo() Result {
	if !e.graph.Redo() {
		return noopResult("nothing to redo")
	}
	e.clearSelectionSets()
	e.cancelGestures()
	return okResult("redo")
}
