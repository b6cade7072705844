package main

// Snapshot is a deep copy of the undoable graph state. View and selection
// state are deliberately excluded; both reset on undo/redo.
type Snapshot struct {
	Nodes       []Node
	Paths       []Path
	NodeCounter int
	PathCounter int
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Nodes:       make([]Node, len(s.Nodes)),
		Paths:       make([]Path, len(s.Paths)),
		NodeCounter: s.NodeCounter,
		PathCounter: s.PathCounter,
	}
	copy(out.Nodes, s.Nodes)
	copy(out.Paths, s.Paths)
	return out
}

// History is a bounded linear undo stack with a cursor. snapshots[index]
// always mirrors the live graph state; checkpointing after an undo discards
// the redoable tail.
type History struct {
	snapshots []Snapshot
	index     int
	limit     int
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{index: -1, limit: limit}
}

// Checkpoint records state as the new current snapshot. When the stack is
// full the oldest entry is evicted and the cursor stays pinned at the end.
func (h *History) Checkpoint(state Snapshot) {
	h.snapshots = h.snapshots[:h.index+1]
	h.snapshots = append(h.snapshots, state.clone())
	if len(h.snapshots) > h.limit {
		h.snapshots = h.snapshots[1:]
	}
	h.index = len(h.snapshots) - 1
}

func (h *History) CanUndo() bool {
	return h.index > 0
}

func (h *History) CanRedo() bool {
	return h.index >= 0 && h.index < len(h.snapshots)-1
}

// Undo steps the cursor back and returns a copy of that snapshot for the
// store to restore. The copy matters: handing out the stored slice would let
// later edits corrupt the history through aliasing.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.index--
	return h.snapshots[h.index].clone(), true
}

func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.index++
	return h.snapshots[h.index].clone(), true
}

// Len reports how many snapshots are held, for tests and the status bar.
func (h *History) Len() int {
	return len(h.snapshots)
}
