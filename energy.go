package seamcarver

import "fmt"

// Axis is the orientation of the seams being removed.
type Axis int

const (
	// Vertical seams run top to bottom, one column index per row. Removing one shrinks the width.
	Vertical Axis = iota
	// Horizontal seams run left to right, one row index per column. Removing one shrinks the height.
	Horizontal
)

func (a Axis) String() string {
	switch a {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// removeEnergy marks pixels which must be carved out before any opaque content.
const removeEnergy int32 = -1

// EnergyMap holds one signed energy value per pixel, stored row by row.
type EnergyMap struct {
	width  int
	height int
	values []int32
}

// NewEnergyMap builds an energy map from rows of values. All rows must have the same length.
func NewEnergyMap(rows [][]int32) *EnergyMap {
	e := &EnergyMap{height: len(rows)}
	if e.height > 0 {
		e.width = len(rows[0])
	}
	e.values = make([]int32, 0, e.width*e.height)
	for _, row := range rows {
		if len(row) != e.width {
			panic(fmt.Sprintf("seamcarver: ragged energy rows (%d != %d)", len(row), e.width))
		}
		e.values = append(e.values, row...)
	}
	return e
}

// Width returns the number of columns.
func (e *EnergyMap) Width() int { return e.width }

// Height returns the number of rows.
func (e *EnergyMap) Height() int { return e.height }

// Get returns the energy of the pixel at (x, y).
func (e *EnergyMap) Get(x, y int) int32 {
	return e.values[x+y*e.width]
}

func (e *EnergyMap) set(x, y int, v int32) {
	e.values[x+y*e.width] = v
}

// Max returns the highest energy of the map, or 0 when no value is positive.
func (e *EnergyMap) Max() int32 {
	var max int32
	for _, v := range e.values {
		if v > max {
			max = v
		}
	}
	return max
}

// reset resizes the map in place, reusing the backing array when it is large enough.
func (e *EnergyMap) reset(width, height int) {
	e.width, e.height = width, height
	if n := width * height; cap(e.values) >= n {
		e.values = e.values[:n]
	} else {
		e.values = make([]int32, n)
	}
}

// ComputeEnergy returns the energy map of view for seams running along axis.
func ComputeEnergy(view PixelView, axis Axis) *EnergyMap {
	e := &EnergyMap{}
	computeEnergy(e, view, axis)
	return e
}

// computeEnergy fills e with the energy of every pixel of view.
// Vertical seams only look at the left and right neighbours, horizontal seams at the
// upper and lower ones. A missing neighbour contributes nothing.
func computeEnergy(e *EnergyMap, view PixelView, axis Axis) {
	width, height := view.Width(), view.Height()
	e.reset(width, height)

	dx, dy := 1, 0
	if axis == Horizontal {
		dx, dy = 0, 1
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := view.Get(x, y)
			if px.Transparent() {
				e.set(x, y, removeEnergy)
				continue
			}
			var energy int32
			if x-dx >= 0 && y-dy >= 0 {
				energy += colorDistance(view.Get(x-dx, y-dy), px)
			}
			if x+dx < width && y+dy < height {
				energy += colorDistance(view.Get(x+dx, y+dy), px)
			}
			e.set(x, y, energy)
		}
	}
}

// colorDistance is the squared euclidean distance of the RGB channels. Alpha is ignored.
func colorDistance(n, p Pixel) int32 {
	dr := int32(n.R) - int32(p.R)
	dg := int32(n.G) - int32(p.G)
	db := int32(n.B) - int32(p.B)
	return dr*dr + dg*dg + db*db
}
