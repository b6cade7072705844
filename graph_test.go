package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAddNode(t *testing.T) {
	t.Run("fills defaults and assigns sequential ids", func(t *testing.T) {
		g := NewGraph()

		a := g.AddNode(Node{X: 10, Y: 20})
		b := g.AddNode(Node{X: 30, Y: 40, Type: NodeCharging, MaxRobots: 3})

		assert.Equal(t, "node_0", a.ID)
		assert.Equal(t, "node_1", b.ID)
		assert.Equal(t, NodeNormal, a.Type)
		assert.Equal(t, 1, a.MaxRobots)
		assert.Equal(t, NodeCharging, b.Type)
		assert.Equal(t, 3, b.MaxRobots)
	})

	t.Run("explicit id bumps the counter past it", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(Node{ID: "node_41"})

		n := g.AddNode(Node{})
		assert.Equal(t, "node_42", n.ID)
	})

	t.Run("invalid type falls back to normal", func(t *testing.T) {
		g := NewGraph()
		n := g.AddNode(Node{Type: NodeType("rocket")})
		assert.Equal(t, NodeNormal, n.Type)
	})
}

func TestGraphAddPath(t *testing.T) {
	t.Run("rejects self loop", func(t *testing.T) {
		g := NewGraph()
		a := g.AddNode(Node{Name: "A"})

		_, err := g.AddPath(Path{From: a.ID, To: a.ID})
		require.Error(t, err)
		assert.Zero(t, g.PathCount())
	})

	t.Run("rejects dangling endpoints", func(t *testing.T) {
		g := NewGraph()
		a := g.AddNode(Node{Name: "A"})

		_, err := g.AddPath(Path{From: a.ID, To: "node_99"})
		require.Error(t, err)
		_, err = g.AddPath(Path{From: "node_99", To: a.ID})
		require.Error(t, err)
		assert.Zero(t, g.PathCount())
	})

	t.Run("defaults name speed and width", func(t *testing.T) {
		g := NewGraph()
		a := g.AddNode(Node{Name: "Dock"})
		b := g.AddNode(Node{Name: "Charger"})

		p, err := g.AddPath(Path{From: a.ID, To: b.ID})
		require.NoError(t, err)
		assert.Equal(t, "path_0", p.ID)
		assert.Equal(t, "Dock -> Charger", p.Name)
		assert.Equal(t, 1.0, p.SpeedLimit)
		assert.Equal(t, 1.0, p.Width)
		assert.False(t, p.Bidirectional)
	})
}

func TestGraphReferentialIntegrity(t *testing.T) {
	t.Run("deleting a node cascades to exactly its paths", func(t *testing.T) {
		g := NewGraph()
		a := g.AddNode(Node{Name: "A"})
		b := g.AddNode(Node{Name: "B"})
		c := g.AddNode(Node{Name: "C"})
		mustAddPath(t, g, a.ID, b.ID)
		mustAddPath(t, g, b.ID, c.ID)
		kept := mustAddPath(t, g, a.ID, c.ID)

		require.True(t, g.DeleteNode(b.ID))

		assert.Equal(t, 2, g.NodeCount())
		require.Equal(t, 1, g.PathCount())
		assert.Equal(t, kept.ID, g.Paths()[0].ID)

		// Every surviving path resolves.
		for _, p := range g.Paths() {
			_, okFrom := g.GetNode(p.From)
			_, okTo := g.GetNode(p.To)
			assert.True(t, okFrom)
			assert.True(t, okTo)
		}
	})

	t.Run("unknown ids return false not panic", func(t *testing.T) {
		g := NewGraph()
		assert.False(t, g.DeleteNode("node_5"))
		assert.False(t, g.UpdateNode("node_5", NodePatch{}))
		assert.False(t, g.DeletePath("path_5"))
		assert.False(t, g.UpdatePath("path_5", PathPatch{}))
		assert.False(t, g.MoveNode("node_5", 1, 2))
	})
}

func TestGraphUpdate(t *testing.T) {
	t.Run("patch merges only set fields", func(t *testing.T) {
		g := NewGraph()
		n := g.AddNode(Node{Name: "A", Notes: "keep me"})

		newType := NodeDropoff
		require.True(t, g.UpdateNode(n.ID, NodePatch{Type: &newType}))

		got, ok := g.GetNode(n.ID)
		require.True(t, ok)
		assert.Equal(t, NodeDropoff, got.Type)
		assert.Equal(t, "A", got.Name)
		assert.Equal(t, "keep me", got.Notes)
	})

	t.Run("bulk update touches only listed nodes", func(t *testing.T) {
		g := NewGraph()
		var ids []string
		for i := 0; i < 5; i++ {
			ids = append(ids, g.AddNode(Node{Name: "sel"}).ID)
		}
		other := g.AddNode(Node{Name: "other"})

		maxRobots := 3
		assert.Equal(t, 5, g.UpdateNodes(ids, NodePatch{MaxRobots: &maxRobots}))

		for _, id := range ids {
			n, _ := g.GetNode(id)
			assert.Equal(t, 3, n.MaxRobots)
			assert.Equal(t, "sel", n.Name)
		}
		got, _ := g.GetNode(other.ID)
		assert.Equal(t, 1, got.MaxRobots)
	})
}

func TestGraphClear(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{})
	g.AddNode(Node{})
	g.Clear()

	assert.Zero(t, g.NodeCount())
	// The counter survives a clear; IDs are never reused in a session.
	n := g.AddNode(Node{})
	assert.Equal(t, "node_2", n.ID)
}

func TestGraphAccessorsDoNotAlias(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{Name: "A"})

	nodes := g.Nodes()
	nodes[0].Name = "mutated"

	got, _ := g.GetNode(nodes[0].ID)
	assert.Equal(t, "A", got.Name)
}

func TestGraphValidate(t *testing.T) {
	t.Run("disconnected node", func(t *testing.T) {
		g := NewGraph()
		a := g.AddNode(Node{Name: "A", X: 0, Y: 0})
		b := g.AddNode(Node{Name: "B", X: 100, Y: 0})
		g.AddNode(Node{Name: "C", X: 200, Y: 0})
		mustAddPath(t, g, a.ID, b.ID)

		report := g.Validate()
		assert.Empty(t, report.Errors)
		require.Len(t, report.Warnings, 1)
		assert.Equal(t, "disconnected node: C", report.Warnings[0])
	})

	t.Run("overlapping nodes are a warning", func(t *testing.T) {
		g := NewGraph()
		a := g.AddNode(Node{Name: "A", X: 0, Y: 0})
		b := g.AddNode(Node{Name: "B", X: 5, Y: 5}) // dist ~7.07 < 10
		mustAddPath(t, g, a.ID, b.ID)

		report := g.Validate()
		assert.Empty(t, report.Errors)
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "overlapping nodes")
		assert.Contains(t, report.Warnings[0], "A")
		assert.Contains(t, report.Warnings[0], "B")
	})

	t.Run("opposite directions are not duplicates", func(t *testing.T) {
		g := newConnectedPair(t)
		mustAddPath(t, g, "node_0", "node_1")
		mustAddPath(t, g, "node_1", "node_0")

		report := g.Validate()
		for _, w := range report.Warnings {
			assert.NotContains(t, w, "duplicate path")
		}
	})

	t.Run("repeated direction is a duplicate", func(t *testing.T) {
		g := newConnectedPair(t)
		mustAddPath(t, g, "node_0", "node_1")
		second, err := g.AddPath(Path{From: "node_0", To: "node_1", Name: "redundant"})
		require.NoError(t, err)

		report := g.Validate()
		require.Len(t, duplicateWarnings(report), 1)
		assert.Contains(t, duplicateWarnings(report)[0], second.Name)
	})

	t.Run("bidirectional registers both keys", func(t *testing.T) {
		g := newConnectedPair(t)
		_, err := g.AddPath(Path{From: "node_0", To: "node_1", Bidirectional: true})
		require.NoError(t, err)
		reverse, err := g.AddPath(Path{From: "node_1", To: "node_0", Name: "reverse"})
		require.NoError(t, err)

		report := g.Validate()
		require.Len(t, duplicateWarnings(report), 1)
		assert.Contains(t, duplicateWarnings(report)[0], reverse.Name)
	})

	t.Run("duplicate names in both namespaces", func(t *testing.T) {
		g := NewGraph()
		a := g.AddNode(Node{Name: "Station", X: 0})
		b := g.AddNode(Node{Name: "Station", X: 100})
		c := g.AddNode(Node{Name: "Other", X: 200})
		_, err := g.AddPath(Path{From: a.ID, To: b.ID, Name: "link"})
		require.NoError(t, err)
		_, err = g.AddPath(Path{From: b.ID, To: c.ID, Name: "link"})
		require.NoError(t, err)

		report := g.Validate()
		assert.Contains(t, report.Warnings, `duplicate node name: "Station" used 2 times`)
		assert.Contains(t, report.Warnings, `duplicate path name: "link" used 2 times`)
	})
}

func mustAddPath(t *testing.T, g *Graph, from, to string) Path {
	t.Helper()
	p, err := g.AddPath(Path{From: from, To: to})
	require.NoError(t, err)
	return p
}

// newConnectedPair builds two far-apart nodes so overlap and disconnection
// warnings stay out of duplicate-path tests.
func newConnectedPair(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	g.AddNode(Node{Name: "A", X: 0, Y: 0})
	g.AddNode(Node{Name: "B", X: 500, Y: 0})
	return g
}

func duplicateWarnings(report ValidationReport) []string {
	var out []string
	for _, w := range report.Warnings {
		if strings.HasPrefix(w, "duplicate path: ") {
			out = append(out, w)
		}
	}
	return out
}
