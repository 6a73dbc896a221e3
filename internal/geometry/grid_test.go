package geometry

import (
	"math"
	"testing"

	"github.com/classdeck/seating-planner/internal/model"
)

func TestSnapIdempotent(t *testing.T) {
	for v := -200.0; v <= 2000; v += 7.3 {
		once := Snap(v)
		twice := Snap(float64(once))
		if once != twice {
			t.Fatalf("Snap not idempotent at %v: first %d, second %d", v, once, twice)
		}
		if once%Grid != 0 {
			t.Fatalf("Snap(%v) = %d, not a grid multiple", v, once)
		}
	}
}

func TestSnapRounds(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{7, 0},
		{8, 16},
		{15.9, 16},
		{16, 16},
		{23, 16},
		{24, 32},
		{90, 96},
	}
	for _, tt := range tests {
		if got := Snap(tt.in); got != tt.want {
			t.Errorf("Snap(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampBounded(t *testing.T) {
	max := float64(BaseCanvasWidth - SeatWidth)
	for v := -500.0; v < 2500; v += 31.7 {
		got := Clamp(v, max)
		if got < 0 || got > max {
			t.Fatalf("Clamp(%v, %v) = %v out of bounds", v, max, got)
		}
	}
	if got := Clamp(10, -5); got != 0 {
		t.Errorf("Clamp with negative max = %v, want 0", got)
	}
}

func TestClampSnapStaysInsideCanvas(t *testing.T) {
	maxX := float64(BaseCanvasWidth - SeatWidth)
	maxY := float64(CanvasHeight - SeatHeight)
	for v := -1000.0; v < 3000; v += 53.1 {
		x := ClampSnap(v, maxX)
		y := ClampSnap(v, maxY)
		if x < 0 || float64(x) > maxX {
			t.Fatalf("x=%d escapes [0,%v]", x, maxX)
		}
		if y < 0 || float64(y) > maxY {
			t.Fatalf("y=%d escapes [0,%v]", y, maxY)
		}
	}
}

func TestSafeNumber(t *testing.T) {
	if got := SafeNumber(math.NaN()); got != 0 {
		t.Errorf("SafeNumber(NaN) = %d, want 0", got)
	}
	if got := SafeNumber(math.Inf(1)); got != 0 {
		t.Errorf("SafeNumber(+Inf) = %d, want 0", got)
	}
	if got := SafeNumber(math.Inf(-1)); got != 0 {
		t.Errorf("SafeNumber(-Inf) = %d, want 0", got)
	}
	if got := SafeNumber(144.4); got != 144 {
		t.Errorf("SafeNumber(144.4) = %d, want 144", got)
	}
}

func TestMarkerSizeSwaps(t *testing.T) {
	h := MarkerSize(model.Horizontal)
	v := MarkerSize(model.Vertical)
	if h.Width != MarkerWidthHorizontal || h.Height != MarkerHeightHorizontal {
		t.Errorf("horizontal marker size = %+v", h)
	}
	if v.Width != MarkerWidthVertical || v.Height != MarkerHeightVertical {
		t.Errorf("vertical marker size = %+v", v)
	}
}
