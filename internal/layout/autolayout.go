package layout

import (
	"github.com/classdeck/seating-planner/internal/model"
)

// Auto layout constants: four column lanes, first row at y=150, rows 145px
// apart. The lanes never overlap a freshly generated neighbour, and the
// output is deterministic for a given roster ordering.
var autoColumns = [4]int{90, 300, 800, 1010}

const (
	autoTop     = 150
	autoRowGap  = 145
	seatsPerRow = 4
)

// Generate produces the deterministic fallback arrangement for a roster:
// rows of four, left to right, top to bottom. Roster index i lands at
// row i/4, column i%4, with z_index i+1.
func Generate(roster []model.Student) []model.Seat {
	seats := make([]model.Seat, 0, len(roster))
	for i, s := range roster {
		row := i / seatsPerRow
		col := i % seatsPerRow
		seats = append(seats, model.Seat{
			StudentID: s.ID.String(),
			X:         autoColumns[col],
			Y:         autoTop + row*autoRowGap,
			Z:         i + 1,
		})
	}
	return seats
}
