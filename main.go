package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	m := initialModel()
	if len(os.Args) > 1 {
		if err := m.openFile(os.Args[1]); err != nil {
			log.Fatal(err)
		}
	}
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

type model struct {
	width  int
	height int

	graph    *Graph
	viewport *Viewport
	editor   *Editor
	config   *Config
	mapInfo  *MapInfo

	cursorX  int
	cursorY  int
	zPanMode bool

	mode           Mode
	promptKind     PromptKind
	promptLabel    string
	promptText     string
	promptTargetID string

	filename  string
	statusMsg string
	errMsg    string
}

func initialModel() *model {
	config := loadConfig()
	graph := NewGraph()
	viewport := NewViewport()
	viewport.GridSizeMeters = config.GridSizeMeters
	viewport.SnapEnabled = config.SnapToGrid
	editor := NewEditor(graph, viewport)
	editor.SetTool(config.startTool())
	return &model{
		graph:    graph,
		viewport: viewport,
		editor:   editor,
		config:   config,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Resize(float64(msg.Width), float64(msg.Height-1))
		m.ensureCursorInBounds()
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		switch m.mode {
		case ModePrompt:
			m.handlePromptKey(msg)
		case ModeHelp:
			m.mode = ModeNormal
		default:
			return m.handleNormalKey(msg)
		}
	}
	return m, nil
}

func (m *model) cursorCanvas() Point {
	return ScreenToCanvas(Point{X: float64(m.cursorX), Y: float64(m.cursorY)}, m.viewport.View)
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	m.cursorX, m.cursorY = msg.X, msg.Y
	canvas := ScreenToCanvas(Point{X: float64(msg.X), Y: float64(msg.Y)}, m.viewport.View)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.viewport.ZoomAt(Point{X: float64(msg.X), Y: float64(msg.Y)}, 1.1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.viewport.ZoomAt(Point{X: float64(msg.X), Y: float64(msg.Y)}, 1/1.1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.applyResult(m.editor.PointerDown(canvas, msg.Shift))
	case msg.Action == tea.MouseActionMotion:
		m.editor.PointerMove(canvas)
	case msg.Action == tea.MouseActionRelease:
		m.applyResult(m.editor.PointerUp(canvas))
	}
}

func (m *model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.mode = ModeHelp
	case "esc":
		m.editor.Escape()
		m.statusMsg = ""
		m.errMsg = ""
	case "z":
		m.zPanMode = !m.zPanMode
	case "1":
		m.editor.SetTool(ToolSelect)
	case "2":
		m.editor.SetTool(ToolAddNode)
	case "3":
		m.editor.SetTool(ToolDrawPath)
	case "4":
		m.editor.SetTool(ToolDelete)
	case "5":
		m.editor.SetTool(ToolMeasure)
	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		m.handleNavigation(key, m.getMoveSpeed(key))
	case "enter", " ":
		p := m.cursorCanvas()
		m.applyResult(m.editor.PointerDown(p, false))
		m.applyResult(m.editor.PointerUp(p))
	case "v":
		// Keyboard stand-in for shift-click: toggle selection at cursor.
		p := m.cursorCanvas()
		m.applyResult(m.editor.PointerDown(p, true))
		m.applyResult(m.editor.PointerUp(p))
	case "u":
		m.applyResult(m.editor.Undo())
	case "ctrl+r":
		m.applyResult(m.editor.Redo())
	case "y":
		m.applyResult(m.editor.Copy())
	case "Y":
		m.copyToSystemClipboard()
	case "p":
		m.applyResult(m.editor.Paste(m.cursorCanvas()))
	case "P":
		m.pasteFromSystemClipboard()
	case "D":
		m.applyResult(m.editor.Duplicate())
	case "ctrl+a":
		m.applyResult(m.editor.SelectAll())
	case "c":
		m.applyResult(m.editor.ClearSelection())
	case "x", "delete", "backspace":
		m.applyResult(m.editor.DeleteSelection())
	case "+", "=":
		m.viewport.ZoomCentered(1.25)
	case "-":
		m.viewport.ZoomCentered(1 / 1.25)
	case "0":
		m.viewport.Reset()
	case "f":
		m.fitAll()
	case "F":
		m.focusSelection()
	case "g":
		m.viewport.SnapEnabled = !m.viewport.SnapEnabled
	case "G":
		m.openPrompt(PromptGridSize, "grid size (meters)", fmt.Sprintf("%g", m.viewport.GridSizeMeters), "")
	case "[":
		m.viewport.SetGridSizeMeters(m.viewport.GridSizeMeters - gridMetersStep)
	case "]":
		m.viewport.SetGridSizeMeters(m.viewport.GridSizeMeters + gridMetersStep)
	case "a":
		m.applyResult(m.editor.AlignHorizontal())
	case "A":
		m.applyResult(m.editor.AlignVertical())
	case ".":
		m.applyResult(m.editor.AlignToGrid())
	case "e":
		m.editSelected()
	case "b":
		m.openPrompt(PromptBulkEdit, "bulk edit (key=value, comma separated)", "", "")
	case "V":
		m.showValidation()
	case "ctrl+s":
		if m.filename != "" {
			m.saveFile(m.filename)
		} else {
			m.openPrompt(PromptSaveFile, "save as", "graph.json", "")
		}
	case "ctrl+n":
		m.applyResult(m.editor.ClearGraph())
		m.filename = ""
	case "ctrl+o":
		m.openPrompt(PromptOpenFile, "open file", "", "")
	case "M":
		m.openPrompt(PromptOpenMap, "open map yaml", "", "")
	case "ctrl+p":
		m.openPrompt(PromptExportPNG, "export PNG as", "graph.png", "")
	}
	return m, nil
}

func (m *model) applyResult(res Result) {
	m.errMsg = ""
	if res.Message != "" {
		if res.Status == StatusRejected {
			m.errMsg = res.Message
			m.statusMsg = ""
		} else {
			m.statusMsg = res.Message
		}
	}
	// New elements hand off to the properties prompt.
	if res.Status == StatusOK && res.NodeID != "" && m.editor.Tool() == ToolAddNode {
		if n, ok := m.graph.GetNode(res.NodeID); ok {
			m.openPrompt(PromptNodeProps, "node properties", nodePropsText(n), n.ID)
		}
	}
	if res.Status == StatusOK && res.PathID != "" && m.editor.Tool() == ToolDrawPath {
		if p, ok := m.graph.GetPath(res.PathID); ok {
			m.openPrompt(PromptPathProps, "path properties", pathPropsText(p), p.ID)
		}
	}
}

func (m *model) fitAll() {
	var mapW, mapH float64
	if m.mapInfo != nil {
		mapW = float64(m.mapInfo.WidthPx)
		mapH = float64(m.mapInfo.HeightPx)
	}
	m.viewport.FitAll(m.graph.Nodes(), mapW, mapH)
}

func (m *model) focusSelection() {
	ids := m.editor.SelectedNodes()
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.graph.GetNode(id); ok {
			nodes = append(nodes, n)
		}
	}
	m.viewport.FocusOn(nodes)
}

func (m *model) editSelected() {
	if nodes := m.editor.SelectedNodes(); len(nodes) == 1 {
		if n, ok := m.graph.GetNode(nodes[0]); ok {
			m.openPrompt(PromptNodeProps, "node properties", nodePropsText(n), n.ID)
			return
		}
	}
	if paths := m.editor.SelectedPaths(); len(paths) == 1 {
		if p, ok := m.graph.GetPath(paths[0]); ok {
			m.openPrompt(PromptPathProps, "path properties", pathPropsText(p), p.ID)
			return
		}
	}
	m.statusMsg = "select a single node or path to edit"
}

func (m *model) showValidation() {
	report := m.graph.Validate()
	if report.Clean() {
		m.statusMsg = "validation: no issues"
		m.errMsg = ""
		return
	}
	issues := append(append([]string{}, report.Errors...), report.Warnings...)
	summary := fmt.Sprintf("validation: %d errors, %d warnings — %s",
		len(report.Errors), len(report.Warnings), strings.Join(issues, "; "))
	if len(report.Errors) > 0 {
		m.errMsg = summary
	} else {
		m.statusMsg = summary
	}
}

func (m *model) copyToSystemClipboard() {
	ids := m.editor.SelectedNodes()
	if len(ids) == 0 {
		m.statusMsg = "nothing selected to copy"
		return
	}
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.graph.GetNode(id); ok {
			nodes = append(nodes, n)
		}
	}
	if err := copyNodesToClipboard(nodes, m.viewport.Map.CanvasToWorld); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("copied %d nodes to system clipboard", len(nodes))
}

func (m *model) pasteFromSystemClipboard() {
	nodes, err := readNodesFromClipboard()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if len(nodes) == 0 {
		m.statusMsg = "nothing to paste"
		return
	}
	at := m.cursorCanvas()
	origin := Point{X: nodes[0].X, Y: nodes[0].Y}
	for i := range nodes {
		nodes[i].X = at.X + (nodes[i].X - origin.X)
		nodes[i].Y = at.Y + (nodes[i].Y - origin.Y)
	}
	added := m.graph.AddNodes(nodes)
	m.statusMsg = fmt.Sprintf("pasted %d nodes from system clipboard", len(added))
}

func (m *model) openPrompt(kind PromptKind, label, initial, targetID string) {
	m.mode = ModePrompt
	m.promptKind = kind
	m.promptLabel = label
	m.promptText = initial
	m.promptTargetID = targetID
}

func (m *model) handlePromptKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.promptText = ""
	case "enter":
		m.mode = ModeNormal
		m.submitPrompt(strings.TrimSpace(m.promptText))
		m.promptText = ""
	case "backspace":
		if len(m.promptText) > 0 {
			runes := []rune(m.promptText)
			m.promptText = string(runes[:len(runes)-1])
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.promptText += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.promptText += " "
		}
	}
}

func (m *model) submitPrompt(text string) {
	if text == "" {
		return
	}
	m.errMsg = ""
	switch m.promptKind {
	case PromptSaveFile:
		m.saveFile(m.config.GetSavePath(text))
	case PromptOpenFile:
		if err := m.openFile(m.config.GetSavePath(text)); err != nil {
			m.errMsg = err.Error()
		}
	case PromptOpenMap:
		m.openMap(text)
	case PromptExportPNG:
		if err := exportPNG(m.graph, m.config.GetSavePath(text)); err != nil {
			m.errMsg = err.Error()
		} else {
			m.statusMsg = "exported " + text
		}
	case PromptGridSize:
		if size, err := strconv.ParseFloat(text, 64); err == nil {
			m.viewport.SetGridSizeMeters(size)
		} else {
			m.errMsg = "grid size must be a number"
		}
	case PromptNodeProps:
		patch, err := parseNodePatch(text)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		if m.graph.UpdateNode(m.promptTargetID, patch) {
			m.statusMsg = "node updated"
		}
	case PromptPathProps:
		patch, err := parsePathPatch(text)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		if m.graph.UpdatePath(m.promptTargetID, patch) {
			m.statusMsg = "path updated"
		}
	case PromptBulkEdit:
		patch, err := parseNodePatch(text)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.applyResult(m.editor.BulkEdit(patch))
	}
}

func (m *model) saveFile(filename string) {
	doc := m.graph.ExportDocument(m.viewport.Map.CanvasToWorld)
	if m.mapInfo != nil {
		meta := m.mapInfo.Meta
		doc.Metadata.MapYaml = &meta
	}
	if err := saveDocument(doc, filename); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.filename = filename
	m.statusMsg = "saved " + filename
}

func (m *model) openFile(filename string) error {
	doc, err := loadDocument(filename)
	if err != nil {
		return err
	}
	if err := m.graph.ImportDocument(doc, m.viewport.Map.WorldToCanvas); err != nil {
		return fmt.Errorf("import %s: %w", filename, err)
	}
	m.editor.ClearSelection()
	m.editor.Escape()
	m.filename = filename
	m.statusMsg = fmt.Sprintf("loaded %s: %d nodes, %d paths", filename, m.graph.NodeCount(), m.graph.PathCount())
	m.fitAll()
	return nil
}

func (m *model) openMap(path string) {
	info, err := LoadMap(path)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.mapInfo = info
	m.viewport.Map = info.Transform()
	m.statusMsg = fmt.Sprintf("map loaded: %dx%d px, %.3g m/px", info.WidthPx, info.HeightPx, info.Meta.Resolution)
	m.fitAll()
}

func (m *model) View() string {
	if m.mode == ModeHelp {
		return m.helpView()
	}
	height := m.height - 1
	if height < 1 {
		height = 1
	}
	width := m.width
	if width < 1 {
		width = 1
	}
	lines := m.renderCanvas(width, height)
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.mode == ModePrompt {
		b.WriteString(fmt.Sprintf("%s: %s█", m.promptLabel, m.promptText))
	} else {
		b.WriteString(m.statusBar(width))
	}
	return b.String()
}

func (m *model) helpView() string {
	help := `fleetgraph — waypoint graph editor

Tools        1 select  2 add node  3 draw path  4 delete  5 measure
Pointer      arrows/hjkl move cursor (shift = faster)  enter/space click
             v toggle-select at cursor  z toggle pan mode  mouse fully supported
Selection    ctrl+a select all  c clear  x delete selection
Clipboard    y copy  p paste  D duplicate  Y/P system clipboard
Editing      e edit properties  b bulk edit  u undo  ctrl+r redo
View         +/- zoom  0 reset  f fit all  F focus selection
Grid         g toggle snap  [ ] grid size  G set grid size  . align to grid
Align        a horizontal  A vertical
Files        ctrl+s save  ctrl+o open  ctrl+n new  M load map yaml  ctrl+p export PNG
Other        V validate  ? help  esc cancel  q quit

press any key to return`
	return help
}

func nodePropsText(n Node) string {
	return fmt.Sprintf("name=%s, type=%s, maxRobots=%d, noWaiting=%t, parking=%t, notes=%s",
		n.Name, n.Type, n.MaxRobots, n.NoWaiting, n.IsParkingSpot, n.Notes)
}

func pathPropsText(p Path) string {
	return fmt.Sprintf("name=%s, speed=%g, width=%g, bidirectional=%t, notes=%s",
		p.Name, p.SpeedLimit, p.Width, p.Bidirectional, p.Notes)
}

// parseNodePatch turns "key=value, key=value" into a sparse patch; only the
// keys present end up set, which is what bulk edit needs.
func parseNodePatch(text string) (NodePatch, error) {
	var patch NodePatch
	for _, field := range splitFields(text) {
		key, value, err := splitKeyValue(field)
		if err != nil {
			return NodePatch{}, err
		}
		switch strings.ToLower(key) {
		case "name":
			patch.Name = &value
		case "type":
			t := NodeType(strings.ToLower(value))
			if !validNodeType(t) {
				return NodePatch{}, fmt.Errorf("unknown node type %q", value)
			}
			patch.Type = &t
		case "maxrobots", "max_robots":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return NodePatch{}, fmt.Errorf("maxRobots must be an integer >= 1")
			}
			patch.MaxRobots = &n
		case "nowaiting", "no_waiting":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return NodePatch{}, fmt.Errorf("noWaiting must be true or false")
			}
			patch.NoWaiting = &b
		case "parking", "isparkingspot":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return NodePatch{}, fmt.Errorf("parking must be true or false")
			}
			patch.IsParkingSpot = &b
		case "notes":
			patch.Notes = &value
		default:
			return NodePatch{}, fmt.Errorf("unknown field %q", key)
		}
	}
	return patch, nil
}

func parsePathPatch(text string) (PathPatch, error) {
	var patch PathPatch
	for _, field := range splitFields(text) {
		key, value, err := splitKeyValue(field)
		if err != nil {
			return PathPatch{}, err
		}
		switch strings.ToLower(key) {
		case "name":
			patch.Name = &value
		case "speed", "speedlimit":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f < 0 {
				return PathPatch{}, fmt.Errorf("speed must be a number >= 0")
			}
			patch.SpeedLimit = &f
		case "width":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 {
				return PathPatch{}, fmt.Errorf("width must be a number > 0")
			}
			patch.Width = &f
		case "bidirectional", "bidi":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return PathPatch{}, fmt.Errorf("bidirectional must be true or false")
			}
			patch.Bidirectional = &b
		case "notes":
			patch.Notes = &value
		default:
			return PathPatch{}, fmt.Errorf("unknown field %q", key)
		}
	}
	return patch, nil
}

func splitFields(text string) []string {
	var fields []string
	for _, f := range strings.Split(text, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func splitKeyValue(field string) (string, string, error) {
	parts := strings.SplitN(field, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected key=value, got %q", field)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
