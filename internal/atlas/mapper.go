package atlas

// Corner is a pixel position in the merged buffer, row first.
type Corner struct {
	Row int
	Col int
}

// Coord is a normalized texture coordinate. X addresses columns and Y rows.
type Coord struct {
	X float64
	Y float64
}

// Mapper remaps coordinates from a source image's unit square onto the
// rectangle [Pos1, Pos2) that image occupies in the merged buffer.
type Mapper struct {
	Pos1 Corner // top-left
	Pos2 Corner // bottom-right, exclusive
}

// NewMapper returns the mapper anchored at pos1 and pos2.
func NewMapper(pos1, pos2 Corner) Mapper {
	return Mapper{Pos1: pos1, Pos2: pos2}
}

// Map translates c and normalizes the result against width x height.
// Callers pass the merged image's dimensions; y scales the row delta and
// x the column delta.
func (m Mapper) Map(c Coord, width, height int) Coord {
	deltaRow := float64(m.Pos2.Row - m.Pos1.Row)
	deltaCol := float64(m.Pos2.Col - m.Pos1.Col)

	newRow := float64(m.Pos1.Row) + c.Y*deltaRow
	newCol := float64(m.Pos1.Col) + c.X*deltaCol

	return Coord{
		X: newCol / float64(width),
		Y: newRow / float64(height),
	}
}
