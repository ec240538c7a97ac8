package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
)

// ImageCache provides thread-safe caching of decoded images to avoid redundant
// disk reads when the same file is loaded into several rasters.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an
// image is loaded, subsequent Load() calls for the same path return the cached
// copy without disk I/O. Rasters built from a cached image never share its
// pixels; every LoadRaster call copies the channels into fresh planes.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	r, err := imaging.LoadRaster(cache, "/path/to/scene.tif")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/scene.tif") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// Supported formats are PNG, JPEG, GIF and TIFF. The image is cached using the
// exact path string provided, so different spellings of the same file produce
// separate cache entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Evicting a path
// that is not cached does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo describes how an image file maps onto a raster.
type ImageInfo struct {
	// Rows is the image height in pixels.
	Rows int `json:"rows"`

	// Columns is the image width in pixels.
	Columns int `json:"columns"`

	// Bands is the number of bands LoadRaster produces: 1 for grayscale,
	// 3 for color, 4 for color with alpha.
	Bands int `json:"bands"`

	// Resolution is the radiometric resolution of every band, 8 or 16.
	Resolution int `json:"resolution"`

	// Format is the file format detected from the extension: "png", "jpeg",
	// "gif", "tiff" or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and reports the raster layout
// LoadRaster would give it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	layout := layoutOf(img)
	bounds := img.Bounds()
	return &ImageInfo{
		Rows:          bounds.Dy(),
		Columns:       bounds.Dx(),
		Bands:         len(layout.channels),
		Resolution:    layout.resolution,
		Format:        formatFromExt(path),
		FileSizeBytes: stat.Size(),
	}, nil
}

// LoadRaster decodes the image at path (through the cache) and copies its
// channels into a new Integer raster. Options are passed to raster.New, so a
// mapper or spectral ranges can be attached at load time.
func LoadRaster(cache *ImageCache, path string, opts ...raster.Option) (*raster.Memory, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	r, err := FromImage(img, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", filepath.Base(path), err)
	}
	return r, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".tif", ".tiff":
		return "tiff"
	}
	return "unknown"
}
