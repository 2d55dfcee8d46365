package editor

import (
	"image"

	"github.com/ironsheep/scanpad/internal/recognition"
	"github.com/ironsheep/scanpad/internal/workspace"
)

// Rect is a rectangle in image coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func rectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// State is a snapshot of the whole session for display.
type State struct {
	Tool           workspace.Tool       `json:"tool"`
	HasImage       bool                 `json:"has_image"`
	Width          int                  `json:"width,omitempty"`
	Height         int                  `json:"height,omitempty"`
	OriginalWidth  int                  `json:"original_width,omitempty"`
	OriginalHeight int                  `json:"original_height,omitempty"`
	Dragging       bool                 `json:"dragging"`
	Selection      *Rect                `json:"selection,omitempty"`
	Capture        string               `json:"capture"`
	Busy           bool                 `json:"busy"`
	Recognition    recognition.Snapshot `json:"recognition"`
	LastDocument   string               `json:"last_document,omitempty"`
	LastText       string               `json:"last_text,omitempty"`
}

// State returns the session state.
func (e *Editor) State() State {
	e.mu.Lock()
	s := State{
		Tool:     e.tool,
		HasImage: e.ws.HasImage(),
		Dragging: e.crop.Dragging(),
		Busy:     e.ws.Busy(),
		Capture:  "inactive",
	}
	if cur := e.ws.Current(); cur != nil {
		s.Width, s.Height = cur.Width(), cur.Height()
	}
	if orig := e.ws.Original(); orig != nil {
		s.OriginalWidth, s.OriginalHeight = orig.Width(), orig.Height()
	}
	if r, ok := e.crop.Preview(); ok {
		rect := rectOf(r)
		s.Selection = &rect
	}
	if e.scan != nil {
		s.Capture = e.scan.State().String()
	}
	e.mu.Unlock()

	s.Recognition = e.job.Snapshot()
	if a := e.LastDocument(); a != nil {
		s.LastDocument = a.ID
	}
	if a := e.LastText(); a != nil {
		s.LastText = a.ID
	}
	return s
}
