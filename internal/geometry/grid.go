// Package geometry holds the coordinate math shared by the seating layout
// engine and the drag controller: grid snapping, bounds clamping and the
// fixed entity box sizes. Everything here is pure.
package geometry

import (
	"math"

	"github.com/classdeck/seating-planner/internal/model"
)

// Grid is the fixed snapping unit in pixels. Every draggable position is
// rounded to a multiple of it.
const Grid = 16

// Seat card and marker box sizes in pixels. Seats are fixed; markers swap
// width and height when rotated to vertical.
const (
	SeatWidth  = 180
	SeatHeight = 100

	MarkerWidthHorizontal  = 170
	MarkerHeightHorizontal = 40
	MarkerWidthVertical    = 56
	MarkerHeightVertical   = 170
)

// Default canvas dimensions. The canvas never renders narrower than
// MinCanvasWidth.
const (
	BaseCanvasWidth = 1240
	CanvasHeight    = 820
	MinCanvasWidth  = 900
)

// Point is a pixel position.
type Point struct {
	X float64
	Y float64
}

// Size is a bounding box.
type Size struct {
	Width  int
	Height int
}

// Snap rounds a coordinate to the nearest grid multiple. Snapping an
// already-snapped value is a no-op.
func Snap(v float64) int {
	return int(math.Round(v/Grid)) * Grid
}

// Clamp bounds v to [0, max]. A negative max collapses to 0.
func Clamp(v float64, max float64) float64 {
	if max < 0 {
		max = 0
	}
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// ClampSnap applies clamp-then-snap, the order every drag update uses.
func ClampSnap(v float64, max float64) int {
	return Snap(Clamp(v, max))
}

// SafeNumber coerces a possibly non-finite float to an int coordinate;
// NaN and infinities become 0.
func SafeNumber(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// MarkerSize returns the bounding box of a marker for an orientation.
func MarkerSize(o model.Orientation) Size {
	if o == model.Vertical {
		return Size{Width: MarkerWidthVertical, Height: MarkerHeightVertical}
	}
	return Size{Width: MarkerWidthHorizontal, Height: MarkerHeightHorizontal}
}

// SeatSize returns the fixed seat card bounding box.
func SeatSize() Size {
	return Size{Width: SeatWidth, Height: SeatHeight}
}
