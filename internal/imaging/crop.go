package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// RenderResult contains a rendered raster window
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Window is a rectangular block of cells.
type Window struct {
	Row     int `json:"row"`
	Column  int `json:"column"`
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// RenderRegion renders a window of r as a PNG. One band gives a grayscale
// image, three bands an RGB composite in the order given. A scale other than
// 1 resizes the result with a Lanczos filter.
func RenderRegion(r raster.Raster, bands []int, w Window, scale float64) (*RenderResult, error) {
	if w.Rows <= 0 || w.Columns <= 0 {
		return nil, fmt.Errorf("invalid render window: rows and columns must be positive")
	}
	view, err := raster.NewMasked(r, w.Row, w.Column, w.Rows, w.Columns)
	if err != nil {
		return nil, fmt.Errorf("render window %+v: %w", w, err)
	}

	var img image.Image
	switch len(bands) {
	case 1:
		img, err = BandImage(view, bands[0])
	case 3:
		img, err = compositeImage(view, bands)
	default:
		return nil, fmt.Errorf("render needs 1 or 3 bands, got %d", len(bands))
	}
	if err != nil {
		return nil, err
	}

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(img.Bounds().Dx()) * scale)
		newHeight := int(float64(img.Bounds().Dy()) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode rendered window: %w", err)
	}

	return &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// compositeImage maps three bands onto red, green and blue.
func compositeImage(r raster.Raster, bands []int) (image.Image, error) {
	rows, columns := r.NumberOfRows(), r.NumberOfColumns()
	img := image.NewNRGBA(image.Rect(0, 0, columns, rows))
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			rgb, err := sample8(r, row, col, bands)
			if err != nil {
				return nil, err
			}
			img.SetNRGBA(col, row, color.NRGBA{rgb[0], rgb[1], rgb[2], 255})
		}
	}
	return img, nil
}

// RegionWindow returns the window of a rows×columns grid named by region.
func RegionWindow(rows, columns int, region string) (Window, error) {
	midR := rows / 2
	midC := columns / 2

	var r1, c1, r2, c2 int

	switch region {
	case "all":
		r1, c1, r2, c2 = 0, 0, rows, columns
	case "top-left":
		r1, c1, r2, c2 = 0, 0, midR, midC
	case "top-right":
		r1, c1, r2, c2 = 0, midC, midR, columns
	case "bottom-left":
		r1, c1, r2, c2 = midR, 0, rows, midC
	case "bottom-right":
		r1, c1, r2, c2 = midR, midC, rows, columns
	case "top-half":
		r1, c1, r2, c2 = 0, 0, midR, columns
	case "bottom-half":
		r1, c1, r2, c2 = midR, 0, rows, columns
	case "left-half":
		r1, c1, r2, c2 = 0, 0, rows, midC
	case "right-half":
		r1, c1, r2, c2 = 0, midC, rows, columns
	case "center":
		// Center 50% of the grid
		qR := rows / 4
		qC := columns / 4
		r1, c1, r2, c2 = qR, qC, rows-qR, columns-qC
	default:
		return Window{}, fmt.Errorf("unknown region: %s", region)
	}

	return Window{Row: r1, Column: c1, Rows: r2 - r1, Columns: c2 - c1}, nil
}
