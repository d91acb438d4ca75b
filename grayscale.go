package seamcarver

import (
	"image"
	"image/color"
)

// EnergyImage renders the energy map as a grayscale image, where each pixel luminance is
// proportional to its energy relative to the highest energy of the map.
// Negative energies render black, and so does every pixel of a map with no positive value.
// The seam, if any, is overlaid in white.
func EnergyImage(e *EnergyMap, seam Seam, axis Axis) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, e.width, e.height))
	max := e.Max()

	if max > 0 {
		for y := 0; y < e.height; y++ {
			for x := 0; x < e.width; x++ {
				v := e.Get(x, y)
				if v <= 0 {
					continue
				}
				lum := float32(v) / float32(max) * 255
				dst.Pix[y*dst.Stride+x] = uint8(lum)
			}
		}
	}

	for _, p := range seam.Points(axis) {
		dst.SetGray(p.X, p.Y, color.Gray{Y: 0xff})
	}
	return dst
}
