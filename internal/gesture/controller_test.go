package gesture

import (
	"testing"
	"time"

	"github.com/classdeck/seating-planner/internal/geometry"
	"github.com/classdeck/seating-planner/internal/layout"
	"github.com/classdeck/seating-planner/internal/model"
)

func testLayout() model.Layout {
	roster := []model.Student{{ID: "a"}, {ID: "b"}}
	return layout.Initialize(roster, nil, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)
}

func TestSingleActiveDrag(t *testing.T) {
	c := New()
	if !c.StartSeat("a", geometry.Point{X: 100, Y: 160}, geometry.Point{X: 90, Y: 150}) {
		t.Fatal("first pointer-down rejected")
	}
	if c.StartSeat("b", geometry.Point{}, geometry.Point{}) {
		t.Error("second seat drag accepted while one is active")
	}
	if c.StartMarker(model.MarkerDoor, geometry.Point{}, geometry.Point{}) {
		t.Error("marker drag accepted while a seat drag is active")
	}
	c.End()
	if !c.StartMarker(model.MarkerDoor, geometry.Point{X: 10, Y: 10}, geometry.Point{X: 8, Y: 8}) {
		t.Error("pointer-down rejected after previous drag resolved")
	}
	if c.StartSeat("a", geometry.Point{}, geometry.Point{}) {
		t.Error("seat drag accepted while a marker drag is active")
	}
}

func TestMoveSnapsAndClamps(t *testing.T) {
	l := testLayout()
	c := New()
	// grab the card 10px right and down of its corner
	c.StartSeat("a", geometry.Point{X: 100, Y: 160}, geometry.Point{X: 90, Y: 150})

	moved, ok := c.Move(l, geometry.Point{X: 333, Y: 444})
	if !ok {
		t.Fatal("move ignored while dragging")
	}
	var seat model.Seat
	for _, s := range moved.Seats {
		if s.StudentID == "a" {
			seat = s
		}
	}
	// raw = pointer - grab = (323, 434); snapped to the grid
	if seat.X != geometry.Snap(323) || seat.Y != geometry.Snap(434) {
		t.Errorf("seat at (%d,%d), want (%d,%d)", seat.X, seat.Y, geometry.Snap(323), geometry.Snap(434))
	}
	if !moved.Dirty {
		t.Error("drag update did not mark layout dirty")
	}

	// way outside the canvas: position must stay inside bounds
	far, _ := c.Move(moved, geometry.Point{X: 99999, Y: -99999})
	for _, s := range far.Seats {
		if s.StudentID != "a" {
			continue
		}
		maxX := far.Width - geometry.SeatWidth
		maxY := far.Height - geometry.SeatHeight
		if s.X < 0 || s.X > maxX || s.Y < 0 || s.Y > maxY {
			t.Errorf("seat escaped canvas: (%d,%d)", s.X, s.Y)
		}
	}
}

func TestMarkerBoxFollowsOrientation(t *testing.T) {
	l := testLayout()
	l = layout.ToggleOrientation(l, model.MarkerScreen)
	l.Dirty = false

	c := New()
	c.StartMarker(model.MarkerScreen, geometry.Point{}, geometry.Point{})
	moved, _ := c.Move(l, geometry.Point{X: 99999, Y: 99999})

	m := moved.Markers[model.MarkerScreen]
	wantX := geometry.ClampSnap(99999, float64(moved.Width-geometry.MarkerWidthVertical))
	wantY := geometry.ClampSnap(99999, float64(moved.Height-geometry.MarkerHeightVertical))
	if m.X != wantX || m.Y != wantY {
		t.Errorf("vertical marker at %+v, want (%d,%d)", m, wantX, wantY)
	}
	// the horizontal box would have clamped x earlier
	horizX := geometry.ClampSnap(99999, float64(moved.Width-geometry.MarkerWidthHorizontal))
	if m.X == horizX {
		t.Error("marker clamped with the horizontal box despite vertical orientation")
	}
}

func TestMoveWhileIdleIsNoop(t *testing.T) {
	l := testLayout()
	c := New()
	same, ok := c.Move(l, geometry.Point{X: 500, Y: 500})
	if ok {
		t.Error("idle controller accepted a move")
	}
	if same.Dirty {
		t.Error("idle move dirtied the layout")
	}
}

func TestClickVersusDrag(t *testing.T) {
	l := testLayout()
	c := New()

	// down followed immediately by up: a click
	c.StartSeat("a", geometry.Point{X: 100, Y: 160}, geometry.Point{X: 90, Y: 150})
	out := c.End()
	if !out.Click || out.SeatID != "a" {
		t.Errorf("down+up outcome = %+v, want click on seat a", out)
	}

	// down, move, up: a drag
	c.StartSeat("a", geometry.Point{X: 100, Y: 160}, geometry.Point{X: 90, Y: 150})
	l, _ = c.Move(l, geometry.Point{X: 200, Y: 200})
	out = c.End()
	if out.Click {
		t.Error("gesture with a move reported as click")
	}

	// up with nothing active reports nothing
	if out := c.End(); out.Click || out.SeatID != "" {
		t.Errorf("idle End() = %+v, want zero outcome", out)
	}
}

func TestCooldownAfterRelease(t *testing.T) {
	current := time.Unix(1000, 0)
	c := NewWithClock(func() time.Time { return current })

	c.StartSeat("a", geometry.Point{}, geometry.Point{})
	c.Move(testLayout(), geometry.Point{X: 50, Y: 50})
	c.End()

	if !c.Dragging() {
		t.Error("dragging indicator dropped immediately on release")
	}
	current = current.Add(60 * time.Millisecond)
	if c.Dragging() {
		t.Error("dragging indicator still up after the cooldown")
	}
}
