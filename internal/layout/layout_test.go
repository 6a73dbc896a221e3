package layout

import (
	"math"
	"testing"

	"github.com/classdeck/seating-planner/internal/geometry"
	"github.com/classdeck/seating-planner/internal/model"
)

func TestEquals(t *testing.T) {
	base := Generate(roster(4))
	if !Equals(base, base) {
		t.Error("Equals is not reflexive")
	}

	moved := make([]model.Seat, len(base))
	copy(moved, base)
	moved[2].X += geometry.Grid
	if Equals(base, moved) {
		t.Error("Equals ignored an x difference")
	}

	shorter := base[:3]
	if Equals(base, shorter) {
		t.Error("Equals ignored a length difference")
	}

	rezzed := make([]model.Seat, len(base))
	copy(rezzed, base)
	rezzed[0].Z = 99
	if Equals(base, rezzed) {
		t.Error("Equals ignored a z_index difference")
	}
}

func TestInitializeWithoutRemoteUsesAutoLayout(t *testing.T) {
	r := roster(5)
	l := Initialize(r, nil, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)
	if !Equals(l.Seats, Generate(r)) {
		t.Error("expected auto layout when no remote layout exists")
	}
	if l.Dirty {
		t.Error("freshly initialized layout must be clean")
	}
	if len(l.Markers) != 3 || len(l.Orientations) != 3 {
		t.Errorf("expected three markers with orientations, got %d/%d", len(l.Markers), len(l.Orientations))
	}
}

func TestInitializeNotPermittedIgnoresRemote(t *testing.T) {
	r := roster(2)
	remote := &model.SavedLayout{Items: []model.LayoutItem{
		{StudentID: "a", X: 512, Y: 512, ZIndex: 1},
	}}
	l := Initialize(r, remote, false, geometry.BaseCanvasWidth, geometry.CanvasHeight)
	if !Equals(l.Seats, Generate(r)) {
		t.Error("remote layout adopted despite missing permission")
	}
}

func TestInitializeAdoptsAndSanitizesRemote(t *testing.T) {
	r := roster(2)
	remote := &model.SavedLayout{
		Items: []model.LayoutItem{
			{StudentID: "a", X: 512, Y: math.NaN(), ZIndex: 7},
			{StudentID: "ghost", X: 0, Y: 0, ZIndex: 1}, // not in roster; dropped
		},
		RoomMeta: model.RoomMeta{
			Width: geometry.BaseCanvasWidth,
			RoomMarkers: map[string]model.MarkerPos{
				"teacher": {X: 160, Y: 200},
			},
			RoomMarkerOrientations: map[string]string{"screen": "vertical"},
		},
	}
	l := Initialize(r, remote, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)

	var seatA *model.Seat
	for i := range l.Seats {
		if l.Seats[i].StudentID == "a" {
			seatA = &l.Seats[i]
		}
		if l.Seats[i].StudentID == "ghost" {
			t.Error("seat for removed student survived initialization")
		}
	}
	if seatA == nil {
		t.Fatal("seat for roster member missing")
	}
	if seatA.X != 512 || seatA.Y != 0 || seatA.Z != 7 {
		t.Errorf("adopted seat = {%d,%d,%d}, want {512,0,7}", seatA.X, seatA.Y, seatA.Z)
	}

	if m := l.Markers[model.MarkerTeacher]; m.X != 160 || m.Y != 200 {
		t.Errorf("teacher marker = %+v, want {160,200}", m)
	}
	// screen and door positions were omitted in the payload: defaults apply
	defaults := DefaultMarkers(geometry.BaseCanvasWidth)
	if l.Markers[model.MarkerDoor] != defaults[model.MarkerDoor] {
		t.Errorf("door marker = %+v, want default %+v", l.Markers[model.MarkerDoor], defaults[model.MarkerDoor])
	}
	if l.Orientations[model.MarkerScreen] != model.Vertical {
		t.Error("saved screen orientation not adopted")
	}
	if l.Orientations[model.MarkerTeacher] != model.Horizontal {
		t.Error("missing orientation did not fall back to horizontal")
	}
}

func TestInitializeRescalesSavedWidth(t *testing.T) {
	r := roster(1)
	remote := &model.SavedLayout{
		Items:    []model.LayoutItem{{StudentID: "a", X: 620, Y: 150, ZIndex: 1}},
		RoomMeta: model.RoomMeta{Width: 620}, // saved on a half-width canvas
	}
	l := Initialize(r, remote, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)
	// 620 on a 620-wide canvas scales to 1240, which must be clamped back
	// inside the canvas and land on the grid.
	maxX := l.Width - geometry.SeatWidth
	if got := l.Seats[0].X; got != geometry.ClampSnap(1240, float64(maxX)) {
		t.Errorf("rescaled x = %d, want %d", got, geometry.ClampSnap(1240, float64(maxX)))
	}
	if l.Seats[0].X > maxX || l.Seats[0].X%geometry.Grid != 0 {
		t.Errorf("rescaled x = %d escapes canvas or grid (max %d)", l.Seats[0].X, maxX)
	}
}

func TestMoveSeat(t *testing.T) {
	r := roster(3)
	l := Initialize(r, nil, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)

	moved := MoveSeat(l, "b", 320, 480)
	if !moved.Dirty {
		t.Error("MoveSeat did not mark layout dirty")
	}
	if l.Dirty {
		t.Error("MoveSeat mutated its input")
	}
	found := false
	for _, s := range moved.Seats {
		if s.StudentID == "b" {
			found = true
			if s.X != 320 || s.Y != 480 {
				t.Errorf("moved seat at (%d,%d), want (320,480)", s.X, s.Y)
			}
		}
	}
	if !found {
		t.Fatal("seat b missing after move")
	}

	same := MoveSeat(l, "nobody", 0, 0)
	if same.Dirty || !Equals(same.Seats, l.Seats) {
		t.Error("moving an unknown student must be a silent no-op")
	}
}

func TestMoveMarkerAndToggle(t *testing.T) {
	l := Initialize(roster(1), nil, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)

	moved := MoveMarker(l, model.MarkerDoor, 96, 32)
	if moved.Markers[model.MarkerDoor] != (model.RoomMarker{X: 96, Y: 32}) {
		t.Errorf("door marker = %+v", moved.Markers[model.MarkerDoor])
	}
	if !moved.Dirty {
		t.Error("MoveMarker did not mark dirty")
	}
	if l.Markers[model.MarkerDoor] == (model.RoomMarker{X: 96, Y: 32}) {
		t.Error("MoveMarker mutated its input")
	}

	flipped := ToggleOrientation(l, model.MarkerScreen)
	if flipped.Orientations[model.MarkerScreen] != model.Vertical {
		t.Error("toggle did not flip to vertical")
	}
	back := ToggleOrientation(flipped, model.MarkerScreen)
	if back.Orientations[model.MarkerScreen] != model.Horizontal {
		t.Error("toggle did not flip back to horizontal")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	r := roster(6)
	l := Initialize(r, nil, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)
	l = MoveSeat(l, "a", 640, 640)
	l = MoveMarker(l, model.MarkerTeacher, 400, 16)
	l = ToggleOrientation(l, model.MarkerDoor)

	got := Reset(l, r)
	if !Equals(got.Seats, Generate(r)) {
		t.Error("reset seats differ from the auto layout")
	}
	defaults := DefaultMarkers(l.Width)
	for _, kind := range model.MarkerKinds {
		if got.Markers[kind] != defaults[kind] {
			t.Errorf("marker %s = %+v, want default %+v", kind, got.Markers[kind], defaults[kind])
		}
		if got.Orientations[kind] != model.Horizontal {
			t.Errorf("marker %s orientation = %s, want horizontal", kind, got.Orientations[kind])
		}
	}
	if !got.Dirty {
		t.Error("reset must leave the layout dirty")
	}
}

func TestToSavedRoundTripShape(t *testing.T) {
	l := Initialize(roster(2), nil, true, geometry.BaseCanvasWidth, geometry.CanvasHeight)
	saved := ToSaved(l)
	if len(saved.Items) != 2 {
		t.Fatalf("saved %d items, want 2", len(saved.Items))
	}
	if saved.RoomMeta.ScreenEdge != "top" || saved.RoomMeta.DoorEdge != "right" {
		t.Errorf("room edges = %q/%q", saved.RoomMeta.ScreenEdge, saved.RoomMeta.DoorEdge)
	}
	if len(saved.RoomMeta.RoomMarkers) != 3 {
		t.Errorf("saved %d markers, want 3", len(saved.RoomMeta.RoomMarkers))
	}
}
