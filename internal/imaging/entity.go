package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// ImageEntity serves a decoded image as a read-only raster.Entity, so an
// image can be wrapped in a raster.Proxy without copying its pixels. Bands
// follow the same layout as FromImage.
type ImageEntity struct {
	img         image.Image
	bounds      image.Rectangle
	bands       int
	resolutions []int
}

var _ raster.SequentialEntity = (*ImageEntity)(nil)

// NewImageEntity wraps img.
func NewImageEntity(img image.Image) *ImageEntity {
	l := layoutOf(img)
	resolutions := make([]int, len(l.channels))
	for i := range resolutions {
		resolutions[i] = l.resolution
	}
	return &ImageEntity{
		img:         img,
		bounds:      img.Bounds(),
		bands:       len(l.channels),
		resolutions: resolutions,
	}
}

func (e *ImageEntity) Format() raster.Format         { return raster.Integer }
func (e *ImageEntity) NumberOfRows() int             { return e.bounds.Dy() }
func (e *ImageEntity) NumberOfColumns() int          { return e.bounds.Dx() }
func (e *ImageEntity) NumberOfBands() int            { return e.bands }
func (e *ImageEntity) RadiometricResolutions() []int { return append([]int(nil), e.resolutions...) }
func (e *ImageEntity) IsReadable() bool              { return true }
func (e *ImageEntity) IsWritable() bool              { return false }

// SupportedOrders reports pixel-interleaved access: one color lookup yields
// every band of a cell.
func (e *ImageEntity) SupportedOrders() []raster.Order {
	return []raster.Order{raster.RowColumnBand}
}

func (e *ImageEntity) ReadValues(row, column int) ([]uint64, error) {
	cr, cg, cb, ca := e.img.At(e.bounds.Min.X+column, e.bounds.Min.Y+row).RGBA()
	values := []uint64{uint64(cr), uint64(cg), uint64(cb), uint64(ca)}[:e.bands]
	if e.resolutions[0] == 8 {
		for i := range values {
			values[i] >>= 8
		}
	}
	return values, nil
}

func (e *ImageEntity) ReadValue(row, column, band int) (uint64, error) {
	values, err := e.ReadValues(row, column)
	if err != nil {
		return 0, err
	}
	return values[band], nil
}

func (e *ImageEntity) ReadFloatValue(row, column, band int) (float64, error) {
	v, err := e.ReadValue(row, column, band)
	return float64(v), err
}

func (e *ImageEntity) ReadFloatValues(row, column int) ([]float64, error) {
	values, err := e.ReadValues(row, column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out, nil
}

func (e *ImageEntity) WriteValue(row, column, band int, v uint64) error {
	return fmt.Errorf("image entity: %w", raster.ErrNotWritable)
}

func (e *ImageEntity) WriteFloatValue(row, column, band int, v float64) error {
	return fmt.Errorf("image entity: %w", raster.ErrNotWritable)
}

func (e *ImageEntity) WriteValues(row, column int, values []uint64) error {
	return fmt.Errorf("image entity: %w", raster.ErrNotWritable)
}

func (e *ImageEntity) WriteFloatValues(row, column int, values []float64) error {
	return fmt.Errorf("image entity: %w", raster.ErrNotWritable)
}
