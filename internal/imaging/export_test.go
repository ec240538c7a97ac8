package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

func newBandRaster(t *testing.T) *raster.Memory {
	t.Helper()
	r, err := raster.New(3, 4, 2, raster.Integer, 8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			_ = r.SetValues(row, col, []uint64{uint64(row*40 + col), 200})
		}
	}
	return r
}

func TestExportBand_PNG(t *testing.T) {
	r := newBandRaster(t)

	result, err := ExportBand(r, 0, "")
	if err != nil {
		t.Fatalf("ExportBand failed: %v", err)
	}
	if result.Format != "png" || result.MimeType != "image/png" {
		t.Errorf("got format %s mime %s", result.Format, result.MimeType)
	}
	if result.Width != 4 || result.Height != 3 {
		t.Errorf("dimensions: got %dx%d, want 4x3", result.Width, result.Height)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if g := img.(*image.Gray).GrayAt(3, 2).Y; g != 83 {
		t.Errorf("pixel (3,2): got %d, want 83", g)
	}
}

func TestEncodeBand_TIFF(t *testing.T) {
	r := newBandRaster(t)

	var buf bytes.Buffer
	if err := EncodeBand(&buf, r, 1, "tiff"); err != nil {
		t.Fatalf("EncodeBand failed: %v", err)
	}
	img, err := tiff.Decode(&buf)
	if err != nil {
		t.Fatalf("failed to decode TIFF: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("dimensions: got %v", img.Bounds())
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("got %T, want *image.Gray", img)
	}
	if gray.GrayAt(1, 1).Y != 200 {
		t.Errorf("pixel (1,1): got %d, want 200", gray.GrayAt(1, 1).Y)
	}
}

func TestExportBand_OneBitMask(t *testing.T) {
	r, err := raster.New(2, 2, 1, raster.Integer, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_ = r.SetValue(0, 1, 0, 1)

	result, err := ExportBand(r, 0, "png")
	if err != nil {
		t.Fatalf("ExportBand failed: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	gray := img.(*image.Gray)
	if gray.GrayAt(1, 0).Y != 255 || gray.GrayAt(0, 0).Y != 0 {
		t.Errorf("mask pixels: got %d and %d, want 255 and 0", gray.GrayAt(1, 0).Y, gray.GrayAt(0, 0).Y)
	}
}

func TestExportBand_Errors(t *testing.T) {
	r := newBandRaster(t)

	if _, err := ExportBand(r, 0, "bmp"); err == nil {
		t.Error("ExportBand should fail for unsupported format")
	}
	if _, err := ExportBand(r, 5, "png"); err == nil {
		t.Error("ExportBand should fail for missing band")
	}
}
