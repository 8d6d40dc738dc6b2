package lut

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/draw"
)

// Gamma used when mapping linear radiance to 8-bit sRGB-ish output.
const displayGamma = 2.2

// Image renders the table into a false-color RGBA image: radiance is
// compressed with an exponential exposure operator and gamma-encoded.
// Multiple-scattering tables hold small radiance values, so exposures
// well above one are usually needed to make the gradient visible.
func (t *Table) Image(exposure float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			v := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: tonemap(v[0], exposure),
				G: tonemap(v[1], exposure),
				B: tonemap(v[2], exposure),
				A: 0xff,
			})
		}
	}
	return img
}

// EncodePNG writes a false-color PNG of the table. A scale above one
// enlarges the image by integer nearest-neighbor sampling so small tables
// stay inspectable; texels must stay crisp, so no filtering is applied.
func (t *Table) EncodePNG(w io.Writer, exposure float32, scale int) error {
	img := t.Image(exposure)
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, t.Width*scale, t.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	return png.Encode(w, img)
}

// ExportPNG renders the table into a PNG file.
func (t *Table) ExportPNG(pngFile string, exposure float32, scale int) error {
	logger.Noticef("exporting table to %s", pngFile)

	f, err := os.Create(pngFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return t.EncodePNG(f, exposure, scale)
}

func tonemap(v, exposure float32) uint8 {
	mapped := 1 - math.Exp(float64(-exposure*v))
	if mapped < 0 {
		mapped = 0
	}
	return uint8(255*math.Pow(mapped, 1/displayGamma) + 0.5)
}
