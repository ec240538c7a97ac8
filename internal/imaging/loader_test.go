package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// writeTestImage encodes img as PNG to a temp file and returns its path.
// The caller is responsible for removing the file.
func writeTestImage(t *testing.T, img image.Image) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}
	return tmpFile.Name()
}

// createTestImageWithPattern creates a test image file with a specific pattern:
// red top-left, green top-right, blue bottom-left, white bottom-right.
func createTestImageWithPattern(t *testing.T, width, height int) string {
	t.Helper()
	return writeTestImage(t, createPatternImage(width, height))
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.Len() != 0 {
		t.Errorf("new cache holds %d images", cache.Len())
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageWithPattern(t, 40, 20)
	defer os.Remove(imgPath)

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img1.Bounds().Dx() != 40 || img1.Bounds().Dy() != 20 {
		t.Errorf("unexpected dimensions: got %dx%d, want 40x20", img1.Bounds().Dx(), img1.Bounds().Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	p1 := createTestImageWithPattern(t, 4, 4)
	defer os.Remove(p1)
	p2 := createTestImageWithPattern(t, 4, 4)
	defer os.Remove(p2)

	_, _ = cache.Load(p1)
	_, _ = cache.Load(p2)
	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}

	cache.Evict(p1)
	cache.Evict("/not/cached.png")
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentLoad(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageWithPattern(t, 16, 16)
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageWithPattern(t, 30, 10)
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Rows != 10 || info.Columns != 30 {
		t.Errorf("size: got %dx%d, want 10x30", info.Rows, info.Columns)
	}
	if info.Bands != 4 || info.Resolution != 8 {
		t.Errorf("layout: got %d bands at %d bits, want 4 at 8", info.Bands, info.Resolution)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes: got %d", info.FileSizeBytes)
	}
}

func TestLoadRaster(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageWithPattern(t, 8, 6)
	defer os.Remove(imgPath)

	gt := raster.NewGeoTransform(0, 60, 10)
	r, err := LoadRaster(cache, imgPath, raster.WithMapper(gt))
	if err != nil {
		t.Fatalf("LoadRaster failed: %v", err)
	}
	if r.NumberOfRows() != 6 || r.NumberOfColumns() != 8 || r.NumberOfBands() != 4 {
		t.Fatalf("shape: got %dx%dx%d", r.NumberOfRows(), r.NumberOfColumns(), r.NumberOfBands())
	}
	if r.Mapper() == nil {
		t.Error("mapper option not applied")
	}

	tests := []struct {
		name     string
		row, col int
		want     []uint64
	}{
		{"red top-left", 0, 0, []uint64{255, 0, 0, 255}},
		{"green top-right", 0, 7, []uint64{0, 255, 0, 255}},
		{"blue bottom-left", 5, 0, []uint64{0, 0, 255, 255}},
		{"white bottom-right", 5, 7, []uint64{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Values(tt.row, tt.col)
			if err != nil {
				t.Fatalf("Values failed: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("band %d: got %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadRaster_OptionErrorsWrapped(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageWithPattern(t, 4, 4)
	defer os.Remove(imgPath)

	_, err := LoadRaster(cache, imgPath, raster.WithResolutions(8))
	if !errors.Is(err, raster.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}
