package main

import (
	"fmt"
	"time"
)

// Document is the standardized exchange form consumed and produced at the
// import/export boundary. Parser plugins and the map loader live on the far
// side of this shape.
type Document struct {
	Metadata DocumentMetadata `json:"metadata"`
	Nodes    []DocumentNode   `json:"nodes"`
	Paths    []DocumentPath   `json:"paths"`
}

type DocumentMetadata struct {
	Version string       `json:"version"`
	Created string       `json:"created"`
	MapYaml *MapMetadata `json:"mapYaml"`
}

// WorldCoords is the derived meter-space position exported alongside each
// node. On import it is advisory: canvas x/y win whenever both are present.
type WorldCoords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DocumentNode mirrors Node on the wire. X/Y are pointers so a missing
// canvas position is distinguishable from an explicit 0.
type DocumentNode struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	X             *float64     `json:"x,omitempty"`
	Y             *float64     `json:"y,omitempty"`
	WorldCoords   *WorldCoords `json:"worldCoords,omitempty"`
	Type          string       `json:"type,omitempty"`
	NoWaiting     bool         `json:"noWaiting"`
	IsParkingSpot bool         `json:"isParkingSpot"`
	MaxRobots     int          `json:"maxRobots,omitempty"`
	Notes         string       `json:"notes,omitempty"`
}

type DocumentPath struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	SpeedLimit    *float64 `json:"speedLimit,omitempty"`
	Bidirectional bool     `json:"bidirectional"`
	Width         *float64 `json:"width,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

const documentVersion = "1.0"

// ExportDocument produces the exchange document. worldFn is injected so the
// store never learns about map metadata; pass nil to export canvas
// coordinates as world coordinates (the degraded no-map mode).
func (g *Graph) ExportDocument(worldFn func(Point) Point) Document {
	doc := Document{
		Metadata: DocumentMetadata{
			Version: documentVersion,
			Created: time.Now().UTC().Format(time.RFC3339),
		},
		Nodes: make([]DocumentNode, 0, len(g.nodes)),
		Paths: make([]DocumentPath, 0, len(g.paths)),
	}
	for _, n := range g.nodes {
		x, y := n.X, n.Y
		world := Point{X: x, Y: y}
		if worldFn != nil {
			world = worldFn(world)
		}
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:            n.ID,
			Name:          n.Name,
			X:             &x,
			Y:             &y,
			WorldCoords:   &WorldCoords{X: world.X, Y: world.Y},
			Type:          string(n.Type),
			NoWaiting:     n.NoWaiting,
			IsParkingSpot: n.IsParkingSpot,
			MaxRobots:     n.MaxRobots,
			Notes:         n.Notes,
		})
	}
	for _, p := range g.paths {
		speed := p.SpeedLimit
		width := p.Width
		doc.Paths = append(doc.Paths, DocumentPath{
			ID:            p.ID,
			Name:          p.Name,
			From:          p.From,
			To:            p.To,
			SpeedLimit:    &speed,
			Bidirectional: p.Bidirectional,
			Width:         &width,
			Notes:         p.Notes,
		})
	}
	return doc
}

// ImportDocument replaces the graph wholesale from doc. The replace is
// atomic: any invalid node or path rejects the whole document and leaves the
// live graph untouched. canvasFn converts worldCoords to canvas pixels for
// nodes that carry no canvas position; nil means use them verbatim.
func (g *Graph) ImportDocument(doc Document, canvasFn func(Point) Point) error {
	nodes := make([]Node, 0, len(doc.Nodes))
	ids := make(map[string]bool, len(doc.Nodes))
	for i, dn := range doc.Nodes {
		if dn.ID == "" {
			return fmt.Errorf("node %d: missing id", i)
		}
		if ids[dn.ID] {
			return fmt.Errorf("node %d: duplicate id %q", i, dn.ID)
		}
		ids[dn.ID] = true

		var pos Point
		switch {
		case dn.X != nil && dn.Y != nil:
			pos = Point{X: *dn.X, Y: *dn.Y}
		case dn.WorldCoords != nil:
			pos = Point{X: dn.WorldCoords.X, Y: dn.WorldCoords.Y}
			if canvasFn != nil {
				pos = canvasFn(pos)
			}
		default:
			return fmt.Errorf("node %q: no position", dn.ID)
		}

		t := NodeType(dn.Type)
		if dn.Type == "" {
			t = NodeNormal
		} else if !validNodeType(t) {
			return fmt.Errorf("node %q: unknown type %q", dn.ID, dn.Type)
		}
		maxRobots := dn.MaxRobots
		if maxRobots < 1 {
			maxRobots = defaultMaxRobots
		}
		nodes = append(nodes, Node{
			ID:            dn.ID,
			Name:          dn.Name,
			X:             pos.X,
			Y:             pos.Y,
			Type:          t,
			NoWaiting:     dn.NoWaiting,
			IsParkingSpot: dn.IsParkingSpot,
			MaxRobots:     maxRobots,
			Notes:         dn.Notes,
		})
	}

	paths := make([]Path, 0, len(doc.Paths))
	pathIDs := make(map[string]bool, len(doc.Paths))
	nameOf := func(id string) string {
		for _, n := range nodes {
			if n.ID == id {
				return nodeLabel(n)
			}
		}
		return id
	}
	for i, dp := range doc.Paths {
		if dp.ID == "" {
			return fmt.Errorf("path %d: missing id", i)
		}
		if pathIDs[dp.ID] {
			return fmt.Errorf("path %d: duplicate id %q", i, dp.ID)
		}
		pathIDs[dp.ID] = true
		if dp.From == "" || dp.To == "" {
			return fmt.Errorf("path %q: missing endpoint", dp.ID)
		}
		if dp.From == dp.To {
			return fmt.Errorf("path %q: connects node %q to itself", dp.ID, dp.From)
		}
		// Dangling references are an import error, not something to filter
		// away quietly at render time.
		if !ids[dp.From] {
			return fmt.Errorf("path %q: references missing node %q", dp.ID, dp.From)
		}
		if !ids[dp.To] {
			return fmt.Errorf("path %q: references missing node %q", dp.ID, dp.To)
		}
		name := dp.Name
		if name == "" {
			name = fmt.Sprintf("%s -> %s", nameOf(dp.From), nameOf(dp.To))
		}
		speed := defaultSpeedLimit
		if dp.SpeedLimit != nil && *dp.SpeedLimit >= 0 {
			speed = *dp.SpeedLimit
		}
		width := defaultPathWidth
		if dp.Width != nil && *dp.Width > 0 {
			width = *dp.Width
		}
		paths = append(paths, Path{
			ID:            dp.ID,
			Name:          name,
			From:          dp.From,
			To:            dp.To,
			SpeedLimit:    speed,
			Bidirectional: dp.Bidirectional,
			Width:         width,
			Notes:         dp.Notes,
		})
	}

	// Validation passed; commit.
	g.nodes = nodes
	g.paths = paths
	for _, n := range nodes {
		g.bumpNodeCounter(n.ID)
	}
	for _, p := range paths {
		g.bumpPathCounter(p.ID)
	}
	g.Checkpoint()
	return nil
}
