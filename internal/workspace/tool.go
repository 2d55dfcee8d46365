package workspace

import (
	"fmt"
	"strings"
)

// Tool identifies the active editing tool. Exactly one tool is active at a
// time.
type Tool int

const (
	ToolNone Tool = iota
	ToolCrop
	ToolRotate
	ToolClarify
	ToolScan
	ToolReset
	ToolRecognize
	ToolExport
)

var toolNames = [...]string{
	ToolNone:      "none",
	ToolCrop:      "crop",
	ToolRotate:    "rotate",
	ToolClarify:   "clarify",
	ToolScan:      "scan",
	ToolReset:     "reset",
	ToolRecognize: "recognize",
	ToolExport:    "export",
}

// toolAliases maps toolbar names to tools.
var toolAliases = map[string]Tool{
	"ocr":  ToolRecognize,
	"save": ToolExport,
	"":     ToolNone,
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool resolves a tool name. Names are case-insensitive and the
// toolbar spellings "ocr" and "save" are accepted.
func ParseTool(name string) (Tool, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range toolNames {
		if s == n {
			return Tool(i), nil
		}
	}
	if t, ok := toolAliases[n]; ok {
		return t, nil
	}
	return ToolNone, fmt.Errorf("unknown tool: %s", name)
}

// IsAction reports whether selecting the tool immediately runs an action,
// as opposed to arming a pointer mode (Crop) or clearing the selection.
func (t Tool) IsAction() bool {
	return t != ToolNone && t != ToolCrop
}

// MarshalText implements encoding.TextMarshaler.
func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tool) UnmarshalText(text []byte) error {
	parsed, err := ParseTool(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
