// Package gesture turns a stream of pointer events into snapped,
// bounds-clamped position updates for exactly one dragged entity at a
// time. It is deliberately independent of any UI toolkit: callers feed it
// pointer positions already translated into canvas coordinates and apply
// the layout updates it produces.
package gesture

import (
	"time"

	"github.com/classdeck/seating-planner/internal/geometry"
	"github.com/classdeck/seating-planner/internal/layout"
	"github.com/classdeck/seating-planner/internal/model"
)

// clickCooldown keeps the "currently dragging" indicator up briefly after
// pointer-up so a trailing click event is not misread as a selection.
const clickCooldown = 50 * time.Millisecond

type seatDrag struct {
	studentID string
	grab      geometry.Point
}

type markerDrag struct {
	kind model.MarkerKind
	grab geometry.Point
}

// Controller is the drag state machine. The seat and marker slots are
// mutually exclusive single-value fields, so at most one entity can ever
// be the active target. The zero value is not usable; call New.
type Controller struct {
	seat   *seatDrag
	marker *markerDrag

	moved         bool // set by the first move of the gesture
	cooldownUntil time.Time

	now func() time.Time
}

// New returns an idle controller.
func New() *Controller {
	return &Controller{now: time.Now}
}

// NewWithClock returns a controller with an injected clock. Tests use this
// to step through the click cooldown.
func NewWithClock(now func() time.Time) *Controller {
	return &Controller{now: now}
}

// Outcome describes how a gesture ended.
type Outcome struct {
	// Click is true when the pointer went down and up without a single
	// move in between; the caller should open the per-student action
	// instead of treating it as a (degenerate) drag.
	Click bool
	// SeatID / MarkerKind identify what the gesture was aimed at.
	SeatID     string
	MarkerKind model.MarkerKind
}

// StartSeat begins dragging a seat. The grab offset is captured as
// pointer − seat top-left at press time. A pointer-down while another drag
// is active is ignored and reported as false.
func (c *Controller) StartSeat(studentID string, pointer, seatTopLeft geometry.Point) bool {
	if c.seat != nil || c.marker != nil {
		return false
	}
	c.seat = &seatDrag{
		studentID: studentID,
		grab:      geometry.Point{X: pointer.X - seatTopLeft.X, Y: pointer.Y - seatTopLeft.Y},
	}
	c.moved = false
	return true
}

// StartMarker begins dragging a room marker, with the same exclusivity
// rules as StartSeat.
func (c *Controller) StartMarker(kind model.MarkerKind, pointer, markerTopLeft geometry.Point) bool {
	if c.seat != nil || c.marker != nil {
		return false
	}
	c.marker = &markerDrag{
		kind: kind,
		grab: geometry.Point{X: pointer.X - markerTopLeft.X, Y: pointer.Y - markerTopLeft.Y},
	}
	c.moved = false
	return true
}

// Move recomputes the active target's position from a pointer position in
// canvas coordinates and writes it through the layout model: raw position
// minus grab offset, clamped to the canvas minus the entity box, snapped
// to the grid on both axes. Idle controllers return the layout unchanged.
func (c *Controller) Move(l model.Layout, pointer geometry.Point) (model.Layout, bool) {
	switch {
	case c.seat != nil:
		c.moved = true
		box := geometry.SeatSize()
		x := geometry.ClampSnap(pointer.X-c.seat.grab.X, float64(l.Width-box.Width))
		y := geometry.ClampSnap(pointer.Y-c.seat.grab.Y, float64(l.Height-box.Height))
		return layout.MoveSeat(l, c.seat.studentID, x, y), true
	case c.marker != nil:
		c.moved = true
		box := geometry.MarkerSize(l.Orientations[c.marker.kind])
		x := geometry.ClampSnap(pointer.X-c.marker.grab.X, float64(l.Width-box.Width))
		y := geometry.ClampSnap(pointer.Y-c.marker.grab.Y, float64(l.Height-box.Height))
		return layout.MoveMarker(l, c.marker.kind, x, y), true
	default:
		return l, false
	}
}

// End resolves the gesture on pointer-up. Pointer-up is global: it ends
// the drag wherever the pointer is. The cooldown starts here.
func (c *Controller) End() Outcome {
	out := Outcome{Click: !c.moved}
	if c.seat != nil {
		out.SeatID = c.seat.studentID
	}
	if c.marker != nil {
		out.MarkerKind = c.marker.kind
	}
	if c.seat == nil && c.marker == nil {
		// pointer-up with no active drag: nothing to report
		return Outcome{}
	}
	c.seat = nil
	c.marker = nil
	c.moved = false
	c.cooldownUntil = c.now().Add(clickCooldown)
	return out
}

// Active reports whether a drag target is currently held.
func (c *Controller) Active() bool {
	return c.seat != nil || c.marker != nil
}

// Dragging reports whether the UI should still treat the canvas as
// mid-drag: either a target is held, or the post-release cooldown has not
// elapsed yet.
func (c *Controller) Dragging() bool {
	return c.Active() || c.now().Before(c.cooldownUntil)
}
