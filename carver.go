package seamcarver

import (
	"image"
)

// Seam is a connected path crossing the image from one edge to the opposite one.
// A vertical seam holds one column index per row, a horizontal seam one row index per column.
type Seam []int

// Points converts the seam indices into image coordinates.
func (s Seam) Points(axis Axis) []image.Point {
	pts := make([]image.Point, len(s))
	for i, v := range s {
		if axis == Vertical {
			pts[i] = image.Pt(v, i)
		} else {
			pts[i] = image.Pt(i, v)
		}
	}
	return pts
}

// Energy sums the energy of every pixel the seam passes through.
func (s Seam) Energy(e *EnergyMap, axis Axis) int64 {
	var sum int64
	for _, p := range s.Points(axis) {
		sum += int64(e.Get(p.X, p.Y))
	}
	return sum
}

// Carver keeps the energy map and the cumulative energy table
// between consecutive seam removals, so they are allocated only once.
type Carver struct {
	energy *EnergyMap
	table  []int64
}

// NewCarver returns a Carver with empty buffers.
func NewCarver() *Carver {
	return &Carver{energy: &EnergyMap{}}
}

// ComputeSeam computes the energy map of view and finds its lowest energy seam.
// The returned map is owned by the Carver and is overwritten by the next call.
func (c *Carver) ComputeSeam(view PixelView, axis Axis) (*EnergyMap, Seam) {
	computeEnergy(c.energy, view, axis)

	var seam Seam
	seam, c.table = findMinSeam(c.energy, axis, c.table)
	return c.energy, seam
}

// FindMinSeam returns the seam with the lowest cumulative energy.
func FindMinSeam(e *EnergyMap, axis Axis) Seam {
	seam, _ := findMinSeam(e, axis, nil)
	return seam
}

// findMinSeam computes the cumulative minimum energy M for every pixel and walks it back:
//   - the first line along the seam direction is copied from the energy map;
//   - each following entry sums its own energy with the smallest of its (up to) three
//     neighbours on the previous line;
//   - the seam ends on the smallest entry of the last line and is traced back from there.
//
// The straight neighbour wins ties, a lateral one replaces it only when strictly smaller,
// the lower index being checked first. The table buffer is reused when large enough.
func findMinSeam(e *EnergyMap, axis Axis, table []int64) (Seam, []int64) {
	// outer runs along the seam, inner across it.
	outer, inner := e.height, e.width
	ostep, istep := e.width, 1
	if axis == Horizontal {
		outer, inner = e.width, e.height
		ostep, istep = 1, e.width
	}
	if outer == 0 || inner == 0 {
		return nil, table
	}

	if n := outer * inner; cap(table) >= n {
		table = table[:n]
	} else {
		table = make([]int64, n)
	}

	for i := 0; i < inner; i++ {
		table[i] = int64(e.values[i*istep])
	}
	for o := 1; o < outer; o++ {
		prev := table[(o-1)*inner : o*inner]
		curr := table[o*inner : (o+1)*inner]
		for i := range curr {
			min := prev[i]
			// Do not compute edge cases: no neighbour on the far left.
			if i > 0 && prev[i-1] < min {
				min = prev[i-1]
			}
			// Do not compute edge cases: no neighbour on the far right.
			if i < inner-1 && prev[i+1] < min {
				min = prev[i+1]
			}
			curr[i] = int64(e.values[o*ostep+i*istep]) + min
		}
	}

	// Find the lowest cost seam starting from the last line.
	last := table[(outer-1)*inner:]
	end := 0
	for i := 1; i < inner; i++ {
		if last[i] < last[end] {
			end = i
		}
	}

	seam := make(Seam, outer)
	seam[outer-1] = end

	// Walk back the table, always stepping to the cheapest of the three connected entries.
	for o := outer - 2; o >= 0; o-- {
		line := table[o*inner : (o+1)*inner]
		prev := seam[o+1]
		idx := prev
		if prev > 0 && line[prev-1] < line[idx] {
			idx = prev - 1
		}
		if prev < inner-1 && line[prev+1] < line[idx] {
			idx = prev + 1
		}
		seam[o] = idx
	}
	return seam, table
}

// RemoveSeam carves the seam out of img, shrinking the width (Vertical)
// or the height (Horizontal) by exactly one pixel. The seam is not validated.
func RemoveSeam(img *Image, seam Seam, axis Axis) {
	width, height := img.width, img.height

	switch axis {
	case Vertical:
		for y := 0; y < height; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+width*4]
			x := seam[y]
			copy(row[x*4:], row[(x+1)*4:])
		}
		img.width--
	case Horizontal:
		for x := 0; x < width; x++ {
			for y := seam[x]; y < height-1; y++ {
				dst := y*img.Stride + x*4
				src := dst + img.Stride
				copy(img.Pix[dst:dst+4], img.Pix[src:src+4])
			}
		}
		img.height--
	}
}
