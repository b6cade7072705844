package main

// Tool is the active editing tool. Tools are mutually exclusive; switching
// tools abandons any gesture in progress.
type Tool int

const (
	ToolSelect Tool = iota
	ToolAddNode
	ToolDrawPath
	ToolDelete
	ToolMeasure
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolAddNode:
		return "add node"
	case ToolDrawPath:
		return "draw path"
	case ToolDelete:
		return "delete"
	case ToolMeasure:
		return "measure"
	}
	return "unknown"
}

// Mode is the top-level UI mode of the bubbletea model.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModeHelp
)

// PromptKind says what the text prompt line is collecting.
type PromptKind int

const (
	PromptSaveFile PromptKind = iota
	PromptOpenFile
	PromptOpenMap
	PromptExportPNG
	PromptNodeProps
	PromptPathProps
	PromptBulkEdit
	PromptGridSize
)

// Status classifies the outcome of a controller command. Recoverable no-ops
// ("nothing to paste", "click on a node") are statuses, never errors.
type Status int

const (
	StatusOK Status = iota
	StatusNoop
	StatusRejected
)

// Result is what every controller command returns; the UI layer turns it
// into status-bar text.
type Result struct {
	Status  Status
	Message string
	NodeID  string
	PathID  string
}

func okResult(msg string) Result       { return Result{Status: StatusOK, Message: msg} }
func noopResult(msg string) Result     { return Result{Status: StatusNoop, Message: msg} }
func rejectedResult(msg string) Result { return Result{Status: StatusRejected, Message: msg} }
