package layout

import (
	"testing"

	"github.com/classdeck/seating-planner/internal/model"
)

func roster(n int) []model.Student {
	students := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, model.Student{
			ID:          model.FlexID(string(rune('a' + i))),
			StudentName: "Student " + string(rune('A'+i)),
		})
	}
	return students
}

func TestGenerateDeterministic(t *testing.T) {
	r := roster(11)
	first := Generate(r)
	second := Generate(r)
	if !Equals(first, second) {
		t.Fatal("Generate is not deterministic for the same roster ordering")
	}
}

func TestGenerateExactCoordinates(t *testing.T) {
	seats := Generate(roster(5))
	if len(seats) != 5 {
		t.Fatalf("got %d seats, want 5", len(seats))
	}
	tests := []struct {
		idx  int
		x, y int
		z    int
	}{
		{0, 90, 150, 1},
		{1, 300, 150, 2},
		{2, 800, 150, 3},
		{3, 1010, 150, 4},
		{4, 90, 295, 5}, // row 1, column 0
	}
	for _, tt := range tests {
		s := seats[tt.idx]
		if s.X != tt.x || s.Y != tt.y || s.Z != tt.z {
			t.Errorf("seat %d = {%d,%d,%d}, want {%d,%d,%d}",
				tt.idx, s.X, s.Y, s.Z, tt.x, tt.y, tt.z)
		}
	}
}

func TestGenerateNoInitialOverlap(t *testing.T) {
	seats := Generate(roster(16))
	seen := make(map[[2]int]string, len(seats))
	for _, s := range seats {
		key := [2]int{s.X, s.Y}
		if other, ok := seen[key]; ok {
			t.Fatalf("seats %s and %s share position (%d,%d)", other, s.StudentID, s.X, s.Y)
		}
		seen[key] = s.StudentID
	}
}
