package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// ExportResult contains an encoded band image.
type ExportResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeBand writes one band of r to w as a grayscale image. format is "png"
// (the default when empty) or "tiff"; TIFF output is Deflate-compressed.
func EncodeBand(w io.Writer, r raster.Raster, band int, format string) error {
	img, err := BandImage(r, band)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "", "png":
		return png.Encode(w, img)
	case "tiff", "tif":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported export format: %s", format)
}

// ExportBand encodes one band of r and returns it base64-encoded.
func ExportBand(r raster.Raster, band int, format string) (*ExportResult, error) {
	var buf bytes.Buffer
	if err := EncodeBand(&buf, r, band, format); err != nil {
		return nil, fmt.Errorf("failed to encode band %d: %w", band, err)
	}

	name, mime := "png", "image/png"
	if f := strings.ToLower(format); f == "tiff" || f == "tif" {
		name, mime = "tiff", "image/tiff"
	}
	return &ExportResult{
		Width:       r.NumberOfColumns(),
		Height:      r.NumberOfRows(),
		Format:      name,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    mime,
	}, nil
}
