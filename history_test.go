package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryBaseline(t *testing.T) {
	t.Run("undoing the first edit returns to empty", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(Node{Name: "A"})

		require.True(t, g.Undo())
		assert.Zero(t, g.NodeCount())
	})

	t.Run("undo at the beginning is a no-op", func(t *testing.T) {
		g := NewGraph()
		assert.False(t, g.Undo())
	})

	t.Run("redo at the end is a no-op", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(Node{})
		assert.False(t, g.Redo())
	})
}

func TestHistoryRoundTrip(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{Name: "A", X: 10})
	b := g.AddNode(Node{Name: "B", X: 200})
	mustAddPath(t, g, a.ID, b.ID)
	name := "renamed"
	g.UpdateNode(a.ID, NodePatch{Name: &name})

	wantNodes := g.Nodes()
	wantPaths := g.Paths()

	const steps = 4
	for i := 0; i < steps; i++ {
		require.True(t, g.Undo(), "undo %d", i)
	}
	assert.Zero(t, g.NodeCount())
	for i := 0; i < steps; i++ {
		require.True(t, g.Redo(), "redo %d", i)
	}

	assert.Equal(t, wantNodes, g.Nodes())
	assert.Equal(t, wantPaths, g.Paths())
}

func TestHistoryNewEditDiscardsRedo(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{Name: "A"})
	g.AddNode(Node{Name: "B"})

	require.True(t, g.Undo())
	g.AddNode(Node{Name: "C"})

	assert.False(t, g.Redo())
	names := []string{g.Nodes()[0].Name, g.Nodes()[1].Name}
	assert.Equal(t, []string{"A", "C"}, names)
}

func TestHistoryEvictsOldestAtLimit(t *testing.T) {
	g := NewGraph()
	for i := 0; i < maxHistory+20; i++ {
		g.AddNode(Node{Name: fmt.Sprintf("n%d", i)})
	}

	assert.Equal(t, maxHistory, g.History().Len())

	// Walk all the way back: the oldest reachable state is not empty because
	// early snapshots were evicted, and the newest state is intact.
	undos := 0
	for g.Undo() {
		undos++
	}
	assert.Equal(t, maxHistory-1, undos)
	assert.Equal(t, maxHistory+20-undos, g.NodeCount())

	for g.Redo() {
	}
	assert.Equal(t, maxHistory+20, g.NodeCount())
}

func TestHistorySnapshotIsolation(t *testing.T) {
	t.Run("later edits do not corrupt stored snapshots", func(t *testing.T) {
		g := NewGraph()
		n := g.AddNode(Node{Name: "original"})
		name := "changed"
		g.UpdateNode(n.ID, NodePatch{Name: &name})

		require.True(t, g.Undo())
		got, ok := g.GetNode(n.ID)
		require.True(t, ok)
		assert.Equal(t, "original", got.Name)
	})

	t.Run("mutating a restored state does not corrupt history", func(t *testing.T) {
		g := NewGraph()
		n := g.AddNode(Node{Name: "first", X: 1})
		g.AddNode(Node{Name: "second"})

		require.True(t, g.Undo())
		g.MoveNode(n.ID, 999, 999) // uncommitted mutation of the restored state

		require.True(t, g.Redo())
		got, _ := g.GetNode(n.ID)
		assert.Equal(t, 1.0, got.X)
	})
}
