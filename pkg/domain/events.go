package domain

import "time"

// EventType defines the category of an editor event.
type EventType string

const (
	EventPreview EventType = "preview"
	EventCommit  EventType = "commit"
	EventReplace EventType = "replace"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// GestureEvent describes a resolved gesture, either previewed or committed.
type GestureEvent struct {
	EventBase
	// Effect is the resolved tool name, e.g. "paint", "clear", "set_drone".
	Effect string    `json:"effect"`
	Paint  CellState `json:"paint,omitempty"`
	Min    Coord     `json:"min"`
	Max    Coord     `json:"max"`
	// LastPaintTool is the tool remembered after the event.
	LastPaintTool CellState `json:"last_paint_tool"`
}

// ReplaceEvent records a wholesale replacement of the authoritative snapshot.
type ReplaceEvent struct {
	EventBase
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// EditorHooks defines callbacks for editor observability.
// Hooks run synchronously on the editor's goroutine and must not call back into it.
type EditorHooks struct {
	OnPreview func(*GestureEvent)
	OnCommit  func(*GestureEvent)
	OnReplace func(*ReplaceEvent)
}
