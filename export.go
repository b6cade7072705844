package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

func saveDocument(doc Document, filename string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0644)
}

func loadDocument(filename string) (Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// copyNodesToClipboard puts the nodes on the system clipboard as the
// exchange document's node shape, so a selection can travel between editor
// instances.
func copyNodesToClipboard(nodes []Node, worldFn func(Point) Point) error {
	out := make([]DocumentNode, 0, len(nodes))
	for _, n := range nodes {
		x, y := n.X, n.Y
		world := Point{X: x, Y: y}
		if worldFn != nil {
			world = worldFn(world)
		}
		out = append(out, DocumentNode{
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
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return clipboard.WriteAll(string(data))
}

// readNodesFromClipboard parses the system clipboard back into nodes. IDs
// are stripped; the graph assigns fresh ones on paste.
func readNodesFromClipboard() ([]Node, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, err
	}
	var docNodes []DocumentNode
	if err := json.Unmarshal([]byte(text), &docNodes); err != nil {
		return nil, fmt.Errorf("clipboard does not hold nodes: %w", err)
	}
	nodes := make([]Node, 0, len(docNodes))
	for _, dn := range docNodes {
		if dn.X == nil || dn.Y == nil {
			continue
		}
		t := NodeType(dn.Type)
		if !validNodeType(t) {
			t = NodeNormal
		}
		nodes = append(nodes, Node{
			Name:          dn.Name,
			X:             *dn.X,
			Y:             *dn.Y,
			Type:          t,
			NoWaiting:     dn.NoWaiting,
			IsParkingSpot: dn.IsParkingSpot,
			MaxRobots:     dn.MaxRobots,
			Notes:         dn.Notes,
		})
	}
	return nodes, nil
}

var nodeTypeColors = map[NodeType]color.RGBA{
	NodeNormal:   {R: 0x33, G: 0x66, B: 0xcc, A: 0xff},
	NodeCharging: {R: 0x2e, G: 0x9e, B: 0x44, A: 0xff},
	NodePickup:   {R: 0xe6, G: 0x8a, B: 0x00, A: 0xff},
	NodeDropoff:  {R: 0xb0, G: 0x30, B: 0x60, A: 0xff},
	NodeTarget:   {R: 0xcc, G: 0x33, B: 0x33, A: 0xff},
	NodeOther:    {R: 0x66, G: 0x66, B: 0x66, A: 0xff},
}

// exportPNG renders the graph to a PNG snapshot: paths first so nodes draw
// on top, arrowheads showing direction, labels under each node.
func exportPNG(g *Graph, filename string) error {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return fmt.Errorf("nothing to export")
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}
	padding := 60.0
	minX -= padding
	minY -= padding
	maxX += padding
	maxY += padding

	dc := gg.NewContext(int(maxX-minX), int(maxY-minY))
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	for _, p := range g.Paths() {
		from, okFrom := g.GetNode(p.From)
		to, okTo := g.GetNode(p.To)
		if !okFrom || !okTo {
			continue
		}
		x1, y1 := from.X-minX, from.Y-minY
		x2, y2 := to.X-minX, to.Y-minY
		dc.SetColor(color.Black)
		dc.SetLineWidth(1.5)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		drawArrowheadPNG(dc, x1, y1, x2, y2)
		if p.Bidirectional {
			drawArrowheadPNG(dc, x2, y2, x1, y1)
		}
	}

	for _, n := range nodes {
		x, y := n.X-minX, n.Y-minY
		c, ok := nodeTypeColors[n.Type]
		if !ok {
			c = nodeTypeColors[NodeNormal]
		}
		dc.SetColor(c)
		dc.DrawCircle(x, y, 8)
		dc.Fill()
		dc.SetColor(color.Black)
		dc.DrawCircle(x, y, 8)
		dc.Stroke()
		if n.Name != "" {
			dc.DrawStringAnchored(n.Name, x, y+20, 0.5, 0.5)
		}
	}

	return dc.SavePNG(filename)
}

// drawArrowheadPNG draws a filled arrowhead at the target end of a segment.
func drawArrowheadPNG(dc *gg.Context, fromX, fromY, toX, toY float64) {
	dx := toX - fromX
	dy := toY - fromY
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	// Pull the tip back to the node's rim so the head stays visible.
	tipX := toX - 8*dx
	tipY := toY - 8*dy

	arrowSize := 8.0
	arrowAngle := 0.5
	baseX1 := tipX - arrowSize*dx + arrowSize*dy*arrowAngle
	baseY1 := tipY - arrowSize*dy - arrowSize*dx*arrowAngle
	baseX2 := tipX - arrowSize*dx - arrowSize*dy*arrowAngle
	baseY2 := tipY - arrowSize*dy + arrowSize*dx*arrowAngle

	dc.MoveTo(tipX, tipY)
	dc.LineTo(baseX1, baseY1)
	dc.LineTo(baseX2, baseY2)
	dc.ClosePath()
	dc.Fill()
}
