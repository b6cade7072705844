package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NodeType classifies a waypoint for the fleet manager.
type NodeType string

const (
	NodeNormal   NodeType = "normal"
	NodeCharging NodeType = "charging"
	NodePickup   NodeType = "pickup"
	NodeDropoff  NodeType = "dropoff"
	NodeTarget   NodeType = "target"
	NodeOther    NodeType = "other"
)

func validNodeType(t NodeType) bool {
	switch t {
	case NodeNormal, NodeCharging, NodePickup, NodeDropoff, NodeTarget, NodeOther:
		return true
	}
	return false
}

// Node is a waypoint. X/Y are canvas pixels and are the authoritative
// position; world meters are derived on demand through a MapTransform.
type Node struct {
	ID            string
	Name          string
	X             float64
	Y             float64
	Type          NodeType
	NoWaiting     bool
	IsParkingSpot bool
	MaxRobots     int
	Notes         string
}

// Path is a directed, optionally bidirectional connection between two nodes.
type Path struct {
	ID            string
	Name          string
	From          string
	To            string
	SpeedLimit    float64 // m/s, >= 0
	Bidirectional bool
	Width         float64 // meters, > 0
	Notes         string
}

// NodePatch is a sparse update; nil fields are left untouched. Position and
// ID changes go through their own operations.
type NodePatch struct {
	Name          *string
	Type          *NodeType
	NoWaiting     *bool
	IsParkingSpot *bool
	MaxRobots     *int
	Notes         *string
}

// PathPatch is the sparse update for paths. From/To are fixed at creation.
type PathPatch struct {
	Name          *string
	SpeedLimit    *float64
	Bidirectional *bool
	Width         *float64
	Notes         *string
}

// ValidationReport is the advisory lint result. Empty means "no issues
// found", not "provably valid".
type ValidationReport struct {
	Errors   []string
	Warnings []string
}

func (r ValidationReport) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Graph owns the authoritative node and path collections, ID generation and
// referential integrity. Every completed mutation checkpoints into the
// attached history so an explicit "remember to checkpoint" call can never be
// forgotten at a call site.
type Graph struct {
	nodes       []Node
	paths       []Path
	nodeCounter int
	pathCounter int
	history     *History
}

func NewGraph() *Graph {
	g := &Graph{history: NewHistory(maxHistory)}
	// Baseline snapshot of the empty graph, so undoing the first edit lands
	// on "empty" instead of being a no-op.
	g.Checkpoint()
	return g
}

func (g *Graph) History() *History {
	return g.history
}

// Checkpoint records the current state. Mutating methods call this
// themselves; it is public for multi-step gestures (drag commit).
func (g *Graph) Checkpoint() {
	g.history.Checkpoint(g.snapshot())
}

func (g *Graph) snapshot() Snapshot {
	return Snapshot{
		Nodes:       g.nodes,
		Paths:       g.paths,
		NodeCounter: g.nodeCounter,
		PathCounter: g.pathCounter,
	}
}

func (g *Graph) restore(s Snapshot) {
	g.nodes = s.Nodes
	g.paths = s.Paths
	g.nodeCounter = s.NodeCounter
	g.pathCounter = s.PathCounter
}

// Undo rolls back to the previous snapshot. Returns false at the beginning
// of history.
func (g *Graph) Undo() bool {
	s, ok := g.history.Undo()
	if !ok {
		return false
	}
	g.restore(s)
	return true
}

func (g *Graph) Redo() bool {
	s, ok := g.history.Redo()
	if !ok {
		return false
	}
	g.restore(s)
	return true
}

// AddNode fills defaults, assigns an ID if absent, stores the node and
// returns it.
func (g *Graph) AddNode(n Node) Node {
	n = g.addNode(n)
	g.Checkpoint()
	return n
}

// AddNodes stores several nodes under a single checkpoint, so a paste undoes
// as one step.
func (g *Graph) AddNodes(ns []Node) []Node {
	if len(ns) == 0 {
		return nil
	}
	added := make([]Node, len(ns))
	for i, n := range ns {
		added[i] = g.addNode(n)
	}
	g.Checkpoint()
	return added
}

func (g *Graph) addNode(n Node) Node {
	if n.ID == "" {
		n.ID = fmt.Sprintf("node_%d", g.nodeCounter)
		g.nodeCounter++
	} else {
		g.bumpNodeCounter(n.ID)
	}
	if !validNodeType(n.Type) {
		n.Type = NodeNormal
	}
	if n.MaxRobots < 1 {
		n.MaxRobots = defaultMaxRobots
	}
	g.nodes = append(g.nodes, n)
	return n
}

// bumpNodeCounter keeps the counter ahead of any explicitly supplied ID so
// it never reissues one.
func (g *Graph) bumpNodeCounter(id string) {
	if n, ok := numericSuffix(id, "node_"); ok && n >= g.nodeCounter {
		g.nodeCounter = n + 1
	}
}

func (g *Graph) bumpPathCounter(id string) {
	if n, ok := numericSuffix(id, "path_"); ok && n >= g.pathCounter {
		g.pathCounter = n + 1
	}
}

func numericSuffix(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// UpdateNode merges patch into the node. Returns false for an unknown ID;
// callers routinely probe with stale IDs after an undo.
func (g *Graph) UpdateNode(id string, patch NodePatch) bool {
	i := g.nodeIndex(id)
	if i < 0 {
		return false
	}
	g.applyNodePatch(&g.nodes[i], patch)
	g.Checkpoint()
	return true
}

// UpdateNodes applies one sparse patch to every listed node under a single
// checkpoint (the bulk-edit command). Returns how many nodes matched.
func (g *Graph) UpdateNodes(ids []string, patch NodePatch) int {
	count := 0
	for _, id := range ids {
		if i := g.nodeIndex(id); i >= 0 {
			g.applyNodePatch(&g.nodes[i], patch)
			count++
		}
	}
	if count > 0 {
		g.Checkpoint()
	}
	return count
}

func (g *Graph) applyNodePatch(n *Node, patch NodePatch) {
	if patch.Name != nil {
		n.Name = *patch.Name
	}
	if patch.Type != nil && validNodeType(*patch.Type) {
		n.Type = *patch.Type
	}
	if patch.NoWaiting != nil {
		n.NoWaiting = *patch.NoWaiting
	}
	if patch.IsParkingSpot != nil {
		n.IsParkingSpot = *patch.IsParkingSpot
	}
	if patch.MaxRobots != nil && *patch.MaxRobots >= 1 {
		n.MaxRobots = *patch.MaxRobots
	}
	if patch.Notes != nil {
		n.Notes = *patch.Notes
	}
}

// MoveNode sets a node's position without checkpointing; live drags call it
// on every pointer move and commit once with Checkpoint on release.
func (g *Graph) MoveNode(id string, x, y float64) bool {
	i := g.nodeIndex(id)
	if i < 0 {
		return false
	}
	g.nodes[i].X = x
	g.nodes[i].Y = y
	return true
}

// DeleteNode removes the node and cascades to every path referencing it.
func (g *Graph) DeleteNode(id string) bool {
	if !g.deleteNode(id) {
		return false
	}
	g.Checkpoint()
	return true
}

// DeleteNodes removes several nodes (with cascade) under one checkpoint.
func (g *Graph) DeleteNodes(ids []string) int {
	count := 0
	for _, id := range ids {
		if g.deleteNode(id) {
			count++
		}
	}
	if count > 0 {
		g.Checkpoint()
	}
	return count
}

func (g *Graph) deleteNode(id string) bool {
	i := g.nodeIndex(id)
	if i < 0 {
		return false
	}
	g.nodes = append(g.nodes[:i:i], g.nodes[i+1:]...)
	kept := g.paths[:0:0]
	for _, p := range g.paths {
		if p.From != id && p.To != id {
			kept = append(kept, p)
		}
	}
	g.paths = kept
	return true
}

// AddPath validates and stores a path. Self-loops and dangling endpoints are
// rejected here even though the interactive flow pre-validates; imports and
// programmatic callers must not be able to sneak an invalid edge in.
func (g *Graph) AddPath(p Path) (Path, error) {
	if p.From == p.To {
		return Path{}, fmt.Errorf("path cannot connect node %q to itself", p.From)
	}
	from := g.nodeIndex(p.From)
	if from < 0 {
		return Path{}, fmt.Errorf("path references unknown node %q", p.From)
	}
	to := g.nodeIndex(p.To)
	if to < 0 {
		return Path{}, fmt.Errorf("path references unknown node %q", p.To)
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("path_%d", g.pathCounter)
		g.pathCounter++
	} else {
		g.bumpPathCounter(p.ID)
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("%s -> %s", g.nodes[from].Name, g.nodes[to].Name)
	}
	if p.SpeedLimit < 0 {
		p.SpeedLimit = 0
	} else if p.SpeedLimit == 0 {
		p.SpeedLimit = defaultSpeedLimit
	}
	if p.Width <= 0 {
		p.Width = defaultPathWidth
	}
	g.paths = append(g.paths, p)
	g.Checkpoint()
	return p, nil
}

func (g *Graph) UpdatePath(id string, patch PathPatch) bool {
	i := g.pathIndex(id)
	if i < 0 {
		return false
	}
	p := &g.paths[i]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SpeedLimit != nil && *patch.SpeedLimit >= 0 {
		p.SpeedLimit = *patch.SpeedLimit
	}
	if patch.Bidirectional != nil {
		p.Bidirectional = *patch.Bidirectional
	}
	if patch.Width != nil && *patch.Width > 0 {
		p.Width = *patch.Width
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	g.Checkpoint()
	return true
}

func (g *Graph) DeletePath(id string) bool {
	i := g.pathIndex(id)
	if i < 0 {
		return false
	}
	g.paths = append(g.paths[:i:i], g.paths[i+1:]...)
	g.Checkpoint()
	return true
}

// DeletePaths removes several paths under one checkpoint.
func (g *Graph) DeletePaths(ids []string) int {
	count := 0
	for _, id := range ids {
		if i := g.pathIndex(id); i >= 0 {
			g.paths = append(g.paths[:i:i], g.paths[i+1:]...)
			count++
		}
	}
	if count > 0 {
		g.Checkpoint()
	}
	return count
}

func (g *Graph) nodeIndex(id string) int {
	for i := range g.nodes {
		if g.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Graph) pathIndex(id string) int {
	for i := range g.paths {
		if g.paths[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Graph) GetNode(id string) (Node, bool) {
	if i := g.nodeIndex(id); i >= 0 {
		return g.nodes[i], true
	}
	return Node{}, false
}

func (g *Graph) GetPath(id string) (Path, bool) {
	if i := g.pathIndex(id); i >= 0 {
		return g.paths[i], true
	}
	return Path{}, false
}

// Nodes returns a copy; callers may not reach into the live array.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

func (g *Graph) Paths() []Path {
	out := make([]Path, len(g.paths))
	copy(out, g.paths)
	return out
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) PathCount() int { return len(g.paths) }

// Clear empties both collections. The ID counters survive: counter
// monotonicity is a session-wide invariant, not a per-document one.
func (g *Graph) Clear() {
	g.nodes = nil
	g.paths = nil
	g.Checkpoint()
}

// Validate runs the four advisory checks without mutating state.
func (g *Graph) Validate() ValidationReport {
	var report ValidationReport

	// Dangling references cannot happen through the public API, but a report
	// that checked nothing would mask a future bug, so keep it as the one
	// error-severity check.
	known := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		known[n.ID] = true
	}
	connected := make(map[string]bool, len(g.nodes))
	for _, p := range g.paths {
		if !known[p.From] {
			report.Errors = append(report.Errors, fmt.Sprintf("path %q references missing node %q", p.Name, p.From))
		}
		if !known[p.To] {
			report.Errors = append(report.Errors, fmt.Sprintf("path %q references missing node %q", p.Name, p.To))
		}
		connected[p.From] = true
		connected[p.To] = true
	}

	for _, n := range g.nodes {
		if !connected[n.ID] {
			report.Warnings = append(report.Warnings, fmt.Sprintf("disconnected node: %s", nodeLabel(n)))
		}
	}

	// Overlap may be intentional (stacked stations), so it stays a warning.
	for i := 0; i < len(g.nodes); i++ {
		for j := i + 1; j < len(g.nodes); j++ {
			a, b := g.nodes[i], g.nodes[j]
			if distance(Point{a.X, a.Y}, Point{b.X, b.Y}) < overlapDistance {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("overlapping nodes: %s and %s", nodeLabel(a), nodeLabel(b)))
			}
		}
	}

	// Duplicate detection is directional and order-dependent: only the
	// second and later occurrences of a key are flagged, which counts
	// redundant edges rather than duplicated pairs.
	seen := make(map[string]bool, len(g.paths))
	for _, p := range g.paths {
		forward := p.From + "-" + p.To
		reverse := p.To + "-" + p.From
		if seen[forward] || (p.Bidirectional && seen[reverse]) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("duplicate path: %s", p.Name))
		}
		seen[forward] = true
		if p.Bidirectional {
			seen[reverse] = true
		}
	}

	report.Warnings = append(report.Warnings, duplicateNameWarnings("node", nodeNames(g.nodes))...)
	report.Warnings = append(report.Warnings, duplicateNameWarnings("path", pathNames(g.paths))...)

	return report
}

func nodeLabel(n Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

func nodeNames(nodes []Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

func pathNames(paths []Path) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, p.Name)
	}
	return names
}

func duplicateNameWarnings(kind string, names []string) []string {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		if name != "" {
			counts[name]++
		}
	}
	var dups []string
	for name, c := range counts {
		if c > 1 {
			dups = append(dups, fmt.Sprintf("duplicate %s name: %q used %d times", kind, name, c))
		}
	}
	sort.Strings(dups)
	return dups
}
