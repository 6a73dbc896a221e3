// Package layout implements the in-memory seating model: initialization
// from a saved plan or the auto-layout fallback, structural equality, and
// the pure mutation helpers the drag controller writes through. Every
// helper returns a new Layout value and never touches shared state, which
// keeps the interaction layer trivial to test.
package layout

import (
	"github.com/classdeck/seating-planner/internal/geometry"
	"github.com/classdeck/seating-planner/internal/model"
)

// DefaultMarkers returns the fixed fallback marker positions for a canvas
// width: teacher desk on the left wall, screen near the middle of the top
// edge, door at the top right.
func DefaultMarkers(canvasWidth int) map[model.MarkerKind]model.RoomMarker {
	w := canvasWidth
	if w < geometry.MinCanvasWidth {
		w = geometry.MinCanvasWidth
	}
	screenX := int(float64(w) * 0.45)
	if screenX < 24 {
		screenX = 24
	}
	doorX := w - 210
	if doorX < 24 {
		doorX = 24
	}
	return map[model.MarkerKind]model.RoomMarker{
		model.MarkerTeacher: {X: 24, Y: 380},
		model.MarkerScreen:  {X: screenX, Y: 8},
		model.MarkerDoor:    {X: doorX, Y: 8},
	}
}

// DefaultOrientations returns every marker horizontal.
func DefaultOrientations() map[model.MarkerKind]model.Orientation {
	return map[model.MarkerKind]model.Orientation{
		model.MarkerTeacher: model.Horizontal,
		model.MarkerScreen:  model.Horizontal,
		model.MarkerDoor:    model.Horizontal,
	}
}

// Initialize builds the canonical layout for a roster. When the caller is
// permitted to use saved plans and the remote payload carries items, those
// positions are adopted: coordinates pass through numeric sanitization
// (non-finite becomes 0), x values are rescaled from the saved canvas
// width, and markers/orientations fall back to the defaults field by
// field. Otherwise the auto layout is synthesized. Either way the seat set
// is a function of the roster: stale seats are dropped and seats for new
// students are filled in from the auto arrangement. The result is clean
// (Dirty=false).
func Initialize(roster []model.Student, remote *model.SavedLayout, permitted bool, canvasWidth, canvasHeight int) model.Layout {
	if canvasWidth < geometry.MinCanvasWidth {
		canvasWidth = geometry.MinCanvasWidth
	}
	if canvasHeight <= 0 {
		canvasHeight = geometry.CanvasHeight
	}

	l := model.Layout{
		Width:        canvasWidth,
		Height:       canvasHeight,
		Markers:      DefaultMarkers(canvasWidth),
		Orientations: DefaultOrientations(),
		Seats:        Generate(roster),
	}

	if !permitted || remote == nil || len(remote.Items) == 0 {
		return l
	}

	savedWidth := geometry.SafeNumber(remote.RoomMeta.Width)
	if savedWidth <= 0 {
		savedWidth = geometry.BaseCanvasWidth
	}
	scaleX := func(x float64) float64 {
		return float64(geometry.SafeNumber(x)) * float64(canvasWidth) / float64(savedWidth)
	}
	maxSeatX := float64(canvasWidth - geometry.SeatWidth)

	saved := make(map[string]model.LayoutItem, len(remote.Items))
	for _, item := range remote.Items {
		saved[item.StudentID.String()] = item
	}
	for i := range l.Seats {
		item, ok := saved[l.Seats[i].StudentID]
		if !ok {
			continue // new student keeps the synthesized slot
		}
		l.Seats[i].X = geometry.ClampSnap(scaleX(item.X), maxSeatX)
		l.Seats[i].Y = geometry.SafeNumber(item.Y)
		if z := geometry.SafeNumber(item.ZIndex); z > 0 {
			l.Seats[i].Z = z
		}
	}

	if markers := remote.RoomMeta.RoomMarkers; markers != nil {
		orientations := l.Orientations
		for _, kind := range model.MarkerKinds {
			if o, ok := remote.RoomMeta.RoomMarkerOrientations[string(kind)]; ok {
				if model.Orientation(o) == model.Vertical {
					orientations[kind] = model.Vertical
				}
			}
		}
		for _, kind := range model.MarkerKinds {
			pos, ok := markers[string(kind)]
			if !ok {
				continue // missing marker keeps its default
			}
			maxX := float64(canvasWidth - geometry.MarkerSize(orientations[kind]).Width)
			l.Markers[kind] = model.RoomMarker{
				X: int(geometry.Clamp(scaleX(pos.X), maxX)),
				Y: geometry.SafeNumber(pos.Y),
			}
		}
	}
	return l
}

// Equals reports structural equality of two seat lists: same length and
// identical student_id, x, y and z_index at every index. Used to skip
// redundant state replacement when a refetch returns unchanged data.
func Equals(a, b []model.Seat) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MoveSeat returns a layout with the student's seat at (x, y), marked
// dirty. Unknown student ids are a silent no-op.
func MoveSeat(l model.Layout, studentID string, x, y int) model.Layout {
	for i := range l.Seats {
		if l.Seats[i].StudentID != studentID {
			continue
		}
		next := l.CloneMaps()
		next.Seats[i].X = x
		next.Seats[i].Y = y
		next.Dirty = true
		return next
	}
	return l
}

// MoveMarker returns a layout with one marker kind at (x, y), marked dirty.
func MoveMarker(l model.Layout, kind model.MarkerKind, x, y int) model.Layout {
	if _, ok := l.Markers[kind]; !ok {
		return l
	}
	next := l.CloneMaps()
	next.Markers[kind] = model.RoomMarker{X: x, Y: y}
	next.Dirty = true
	return next
}

// ToggleOrientation flips one marker between horizontal and vertical,
// marking the layout dirty.
func ToggleOrientation(l model.Layout, kind model.MarkerKind) model.Layout {
	o, ok := l.Orientations[kind]
	if !ok {
		return l
	}
	next := l.CloneMaps()
	next.Orientations[kind] = o.Toggle()
	next.Dirty = true
	return next
}

// Reset discards all positions and re-derives the auto layout with default
// markers. The result is dirty: a reset is itself an unsaved change
// relative to whatever plan was last saved.
func Reset(l model.Layout, roster []model.Student) model.Layout {
	next := model.Layout{
		Width:        l.Width,
		Height:       l.Height,
		Seats:        Generate(roster),
		Markers:      DefaultMarkers(l.Width),
		Orientations: DefaultOrientations(),
		Dirty:        true,
	}
	return next
}

// ToSaved converts a layout into the wire/persisted form, carrying the
// canvas dimensions and the fixed screen/door edges alongside markers.
func ToSaved(l model.Layout) model.SavedLayout {
	items := make([]model.LayoutItem, 0, len(l.Seats))
	for i, s := range l.Seats {
		z := s.Z
		if z <= 0 {
			z = i + 1
		}
		items = append(items, model.LayoutItem{
			StudentID: model.FlexID(s.StudentID),
			X:         float64(s.X),
			Y:         float64(s.Y),
			ZIndex:    float64(z),
		})
	}
	markers := make(map[string]model.MarkerPos, len(l.Markers))
	for k, v := range l.Markers {
		markers[string(k)] = model.MarkerPos{X: float64(v.X), Y: float64(v.Y)}
	}
	orientations := make(map[string]string, len(l.Orientations))
	for k, v := range l.Orientations {
		orientations[string(k)] = string(v)
	}
	return model.SavedLayout{
		Items: items,
		RoomMeta: model.RoomMeta{
			Width:                  float64(l.Width),
			Height:                 float64(l.Height),
			ScreenEdge:             "top",
			DoorEdge:               "right",
			RoomMarkers:            markers,
			RoomMarkerOrientations: orientations,
		},
	}
}
