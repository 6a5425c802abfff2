package viewer

import (
	"github.com/chazu/mindscape/pkg/layout"
)

// EventKind identifies a user input accepted by the viewer.
type EventKind int

const (
	EventNodeActivated EventKind = iota // ID
	EventLayoutSelected                 // Mode
	EventDepthSelected                  // Depth
	EventReset
	EventFit
	EventFocusMode // On
	EventRestart
)

var eventNames = map[EventKind]string{
	EventNodeActivated:  "node-activated",
	EventLayoutSelected: "layout-selected",
	EventDepthSelected:  "depth-selected",
	EventReset:          "reset",
	EventFit:            "fit",
	EventFocusMode:      "focus-mode",
	EventRestart:        "restart",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one user input. Only the field matching Kind is read.
type Event struct {
	Kind  EventKind
	ID    string
	Mode  layout.Mode
	Depth int
	On    bool
}

// Dispatch applies ev and reports whether its kind was recognised.
func (s *State) Dispatch(ev Event) bool {
	switch ev.Kind {
	case EventNodeActivated:
		s.ToggleNode(ev.ID)
	case EventLayoutSelected:
		s.SetLayoutMode(ev.Mode)
	case EventDepthSelected:
		s.SetVisibleDepth(ev.Depth)
	case EventReset:
		s.ResetView()
	case EventFit:
		s.FitToScreen()
	case EventFocusMode:
		s.SetFocusMode(ev.On)
	case EventRestart:
		s.Restart()
	default:
		return false
	}
	return true
}
