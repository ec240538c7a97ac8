package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/channel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// layout is the band arrangement an image converts to.
type layout struct {
	channels   []channel.Channel
	resolution int
}

var (
	grayChannels  = []channel.Channel{channel.Red}
	colorChannels = []channel.Channel{channel.Red, channel.Green, channel.Blue}
	alphaChannels = []channel.Channel{channel.Red, channel.Green, channel.Blue, channel.Alpha}
)

func layoutOf(img image.Image) layout {
	switch img.(type) {
	case *image.Gray:
		return layout{grayChannels, 8}
	case *image.Gray16:
		return layout{grayChannels, 16}
	case *image.RGBA, *image.NRGBA:
		return layout{alphaChannels, 8}
	case *image.RGBA64, *image.NRGBA64:
		return layout{alphaChannels, 16}
	}
	return layout{colorChannels, 8}
}

// FromImage copies the channels of img into a new Integer raster with one
// band per channel: grayscale images give one band, color images three
// (red, green, blue) and images with an alpha channel a fourth. 16-bit
// images give 16-bit bands, everything else 8-bit bands. Color values are
// alpha-premultiplied.
//
// Row 0 is the top of the image and column 0 its left edge.
func FromImage(img image.Image, opts ...raster.Option) (*raster.Memory, error) {
	l := layoutOf(img)
	bounds := img.Bounds()
	rows, columns := bounds.Dy(), bounds.Dx()

	r, err := raster.New(rows, columns, len(l.channels), raster.Integer, l.resolution, opts...)
	if err != nil {
		return nil, err
	}

	if l.resolution == 16 {
		return r, fill16(r, img, len(l.channels))
	}

	src := imaging.Clone(img)
	for band, ch := range l.channels {
		plane := channel.Extract(src, ch)
		for row := 0; row < rows; row++ {
			line := plane.Pix[row*plane.Stride : row*plane.Stride+columns]
			for col, v := range line {
				if v == 0 {
					continue
				}
				if err := r.SetValue(row, col, band, uint64(v)); err != nil {
					return nil, err
				}
			}
		}
	}
	return r, nil
}

// fill16 reads 16-bit channels straight from the color model; the 8-bit
// channel extraction would drop the low byte.
func fill16(r *raster.Memory, img image.Image, bands int) error {
	bounds := img.Bounds()
	for row := 0; row < bounds.Dy(); row++ {
		for col := 0; col < bounds.Dx(); col++ {
			cr, cg, cb, ca := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			values := []uint64{uint64(cr), uint64(cg), uint64(cb), uint64(ca)}[:bands]
			if err := r.SetValues(row, col, values); err != nil {
				return err
			}
		}
	}
	return nil
}

// BandImage renders one band of r as a grayscale image. Integer bands of up
// to 8 bits give an *image.Gray, wider bands an *image.Gray16; values are
// scaled to the full output range by their band's radiometric resolution.
// Floating bands are stretched linearly from their minimum to their maximum.
func BandImage(r raster.Raster, band int) (image.Image, error) {
	if band < 0 || band >= r.NumberOfBands() {
		return nil, fmt.Errorf("band %d of %d: %w", band, r.NumberOfBands(), raster.ErrOutOfRange)
	}
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()
	rect := image.Rect(0, 0, columns, rows)

	if r.Format() == raster.Floating {
		return floatBandImage(r, band, rect)
	}

	res := r.RadiometricResolutions()[band]
	if res <= 8 {
		img := image.NewGray(rect)
		for row := 0; row < rows; row++ {
			for col := 0; col < columns; col++ {
				v, err := r.Value(row, col, band)
				if err != nil {
					return nil, err
				}
				img.SetGray(col, row, color.Gray{Y: scaleTo(v, res, 8)})
			}
		}
		return img, nil
	}

	img := image.NewGray16(rect)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			v, err := r.Value(row, col, band)
			if err != nil {
				return nil, err
			}
			img.SetGray16(col, row, color.Gray16{Y: uint16(scale(v, res, 16))})
		}
	}
	return img, nil
}

func floatBandImage(r raster.Raster, band int, rect image.Rectangle) (image.Image, error) {
	rows, columns := rect.Dy(), rect.Dx()
	values := make([]float64, 0, rows*columns)
	lo, hi := math.Inf(1), math.Inf(-1)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			v, err := r.FloatValue(row, col, band)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	img := image.NewGray16(rect)
	span := hi - lo
	if span <= 0 || math.IsInf(span, 0) {
		return img, nil
	}
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		img.SetGray16(i%columns, i/columns, color.Gray16{Y: uint16(math.Round((v - lo) / span * math.MaxUint16))})
	}
	return img, nil
}

// scale maps v from a res-bit domain onto a bits-bit domain, clamping values
// above the source domain. Widening keeps the source maximum at the target
// maximum.
func scale(v uint64, res, bits int) uint64 {
	if res < 64 && v >= 1<<uint(res) {
		v = 1<<uint(res) - 1
	}
	if res < bits {
		return v * (1<<uint(bits) - 1) / (1<<uint(res) - 1)
	}
	return v >> uint(res-bits)
}

func scaleTo(v uint64, res, bits int) uint8 {
	return uint8(scale(v, res, bits))
}
