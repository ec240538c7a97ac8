package imaging

import (
	"fmt"
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains the color of one cell in several representations.
//
// Values holds the raw band values the color was built from; Hex, RGB and HSL
// describe the 8-bit display color.
type ColorResult struct {
	Values []uint64 `json:"values"`
	Hex    string   `json:"hex"` // Hex format "#RRGGBB"
	RGB    RGBColor `json:"rgb"`
	HSL    HSLColor `json:"hsl"`
}

// SampleColor reads three bands of a cell as red, green and blue.
//
// Integer band values are scaled to 8 bits by each band's radiometric
// resolution, so a 12-bit value of 4095 displays as 255. Floating band values
// are taken as intensities in [0, 1] and clamped.
func SampleColor(r raster.Raster, row, column int, bands [3]int) (*ColorResult, error) {
	raw := make([]uint64, 3)
	for i, band := range bands {
		v, err := r.Value(row, column, band)
		if err != nil {
			return nil, fmt.Errorf("failed to sample (%d,%d) band %d: %w", row, column, band, err)
		}
		raw[i] = v
	}
	rgb, err := sample8(r, row, column, bands[:])
	if err != nil {
		return nil, err
	}
	return describe(raw, rgb), nil
}

// sample8 returns the 8-bit display intensities of bands at a cell.
func sample8(r raster.Raster, row, column int, bands []int) ([3]uint8, error) {
	var out [3]uint8
	resolutions := r.RadiometricResolutions()
	for i, band := range bands {
		if r.Format() == raster.Floating {
			f, err := r.FloatValue(row, column, band)
			if err != nil {
				return out, err
			}
			out[i] = uint8(math.Round(clamp01(f) * 255))
			continue
		}
		v, err := r.Value(row, column, band)
		if err != nil {
			return out, err
		}
		out[i] = scaleTo(v, resolutions[band], 8)
	}
	return out, nil
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func describe(raw []uint64, rgb [3]uint8) *ColorResult {
	c := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return &ColorResult{
		Values: raw,
		Hex:    strings.ToUpper(c.Hex()),
		RGB:    RGBColor{R: rgb[0], G: rgb[1], B: rgb[2]},
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}

// ColorFrequency represents a color and its occurrence frequency in a window.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of cells with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColorsResult contains the most frequent colors, most common first.
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors returns the count most common display colors of three bands
// of r, optionally restricted to a window.
//
// Colors are quantized by dropping the low four bits of each 8-bit component
// so near-identical colors are counted together: #F0F0F0 and #FAFAFA both
// count as #F0F0F0. Ties are ordered by hex value.
func DominantColors(r raster.Raster, bands [3]int, count int, w *Window) (*DominantColorsResult, error) {
	if w != nil {
		view, err := raster.NewMasked(r, w.Row, w.Column, w.Rows, w.Columns)
		if err != nil {
			return nil, err
		}
		r = view
	}

	colorCounts := make(map[[3]uint8]int)
	total := 0
	for row := 0; row < r.NumberOfRows(); row++ {
		for col := 0; col < r.NumberOfColumns(); col++ {
			rgb, err := sample8(r, row, col, bands[:])
			if err != nil {
				return nil, err
			}
			for i := range rgb {
				rgb[i] = rgb[i] / 16 * 16
			}
			colorCounts[rgb]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(colorCounts))
	for rgb, n := range colorCounts {
		d := describe(nil, rgb)
		colors = append(colors, ColorFrequency{
			Hex:        d.Hex,
			Percentage: float64(n) / float64(total) * 100,
			RGB:        d.RGB,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}, nil
}
