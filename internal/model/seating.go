package model

// MarkerKind names one of the three fixed room markers every layout has.
type MarkerKind string

// The three marker kinds. Exactly one marker of each kind always exists.
const (
	MarkerTeacher MarkerKind = "teacher"
	MarkerScreen  MarkerKind = "screen"
	MarkerDoor    MarkerKind = "door"
)

// MarkerKinds lists all kinds in a stable order.
var MarkerKinds = []MarkerKind{MarkerTeacher, MarkerScreen, MarkerDoor}

// Orientation controls a marker's bounding box (width/height swap only).
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Toggle flips horizontal <-> vertical.
func (o Orientation) Toggle() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

// Seat positions one student's card on the canvas. Coordinates are
// non-negative pixel offsets snapped to the grid unit; Z is a positive
// stacking index used only when cards overlap during a drag.
type Seat struct {
	StudentID string `json:"student_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Z         int    `json:"z_index"`
}

// RoomMarker is the snapped position of one marker kind.
type RoomMarker struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layout is the canonical in-memory seating state for one class: seat
// positions, the three room markers with their orientations, canvas
// dimensions, and the dirty flag tracking unsaved local changes.
type Layout struct {
	Seats        []Seat
	Markers      map[MarkerKind]RoomMarker
	Orientations map[MarkerKind]Orientation
	Width        int
	Height       int
	Dirty        bool
}

// CloneMaps returns a copy of the layout with fresh marker maps so that
// mutating helpers never alias a previous value's state. Seats are copied
// too; Layout values behave as immutable snapshots.
func (l Layout) CloneMaps() Layout {
	seats := make([]Seat, len(l.Seats))
	copy(seats, l.Seats)
	markers := make(map[MarkerKind]RoomMarker, len(l.Markers))
	for k, v := range l.Markers {
		markers[k] = v
	}
	orientations := make(map[MarkerKind]Orientation, len(l.Orientations))
	for k, v := range l.Orientations {
		orientations[k] = v
	}
	l.Seats = seats
	l.Markers = markers
	l.Orientations = orientations
	return l
}

// LayoutItem is the wire form of a seat as stored and exchanged with the
// dashboard. Floats are accepted so that malformed payloads can be coerced
// through numeric sanitization instead of failing the whole layout.
type LayoutItem struct {
	StudentID FlexID  `json:"student_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ZIndex    float64 `json:"z_index"`
}

// MarkerPos is the wire form of a marker position.
type MarkerPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RoomMeta carries everything about the room besides the seats.
type RoomMeta struct {
	Width                  float64              `json:"width,omitempty"`
	Height                 float64              `json:"height,omitempty"`
	ScreenEdge             string               `json:"screen_edge,omitempty"`
	DoorEdge               string               `json:"door_edge,omitempty"`
	RoomMarkers            map[string]MarkerPos `json:"room_markers,omitempty"`
	RoomMarkerOrientations map[string]string    `json:"room_marker_orientations,omitempty"`
}

// SavedLayout is a persisted seating plan as returned by
// GET /v1/classes/:id/seating-layout.
type SavedLayout struct {
	Items     []LayoutItem `json:"items"`
	RoomMeta  RoomMeta     `json:"room_meta"`
	Version   int          `json:"version,omitempty"`
	UpdatedAt string       `json:"updated_at,omitempty"`
}
