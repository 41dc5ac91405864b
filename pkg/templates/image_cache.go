package templates

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// cachedImage holds one template's decoded image and its load state.
type cachedImage struct {
	template Template
	img      *image.RGBA
	mu       sync.RWMutex
}

// ImageCache loads template images once and keeps them in memory.
type ImageCache struct {
	entries map[string]*cachedImage
	mu      sync.RWMutex
	stats   CacheStats
}

// CacheStats tracks cache performance.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Loads       int64
	Unloads     int64
	PreloadFail int64
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		entries: make(map[string]*cachedImage),
	}
}

// Register adds a template to the cache, optionally loading it immediately.
func (ic *ImageCache) Register(template Template, preload bool) error {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	entry := &cachedImage{template: template}

	if preload {
		if err := entry.load(); err != nil {
			ic.stats.PreloadFail++
			return fmt.Errorf("failed to preload template %s: %w", template.Name, err)
		}
		ic.stats.Loads++
	}

	ic.entries[template.Name] = entry
	return nil
}

// Get returns the decoded image for a template, loading it if necessary.
func (ic *ImageCache) Get(name string) (*image.RGBA, error) {
	ic.mu.RLock()
	entry, ok := ic.entries[name]
	ic.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("template '%s' not found in cache", name)
	}

	loaded := entry.isLoaded()
	img, err := entry.getOrLoad()
	if err != nil {
		return nil, err
	}

	ic.mu.Lock()
	if loaded {
		ic.stats.Hits++
	} else {
		ic.stats.Misses++
		ic.stats.Loads++
	}
	ic.mu.Unlock()

	return img, nil
}

// UnloadAll drops every cached image, keeping registrations.
func (ic *ImageCache) UnloadAll() {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	for _, entry := range ic.entries {
		if entry.unload() {
			ic.stats.Unloads++
		}
	}
}

// Stats returns cache statistics.
func (ic *ImageCache) Stats() CacheStats {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.stats
}

func (ci *cachedImage) isLoaded() bool {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.img != nil
}

func (ci *cachedImage) getOrLoad() (*image.RGBA, error) {
	ci.mu.RLock()
	if ci.img != nil {
		defer ci.mu.RUnlock()
		return ci.img, nil
	}
	ci.mu.RUnlock()

	ci.mu.Lock()
	defer ci.mu.Unlock()

	// Re-check after acquiring the write lock
	if ci.img != nil {
		return ci.img, nil
	}

	if err := ci.loadLocked(); err != nil {
		return nil, err
	}
	return ci.img, nil
}

func (ci *cachedImage) load() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if ci.img != nil {
		return nil
	}
	return ci.loadLocked()
}

// loadLocked decodes, normalizes, and rescales the image. Caller holds the lock.
func (ci *cachedImage) loadLocked() error {
	file, err := os.Open(ci.template.Path)
	if err != nil {
		return fmt.Errorf("failed to open template image: %w", err)
	}
	defer file.Close()

	decoded, err := png.Decode(file)
	if err != nil {
		return fmt.Errorf("failed to decode template image: %w", err)
	}

	rgba := toRGBA(decoded)
	if ci.template.Scale > 0 && ci.template.Scale != 1.0 {
		rgba = Rescale(rgba, ci.template.Scale)
	}
	ci.img = rgba
	return nil
}

func (ci *cachedImage) unload() bool {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if ci.img == nil {
		return false
	}
	ci.img = nil
	return true
}

// toRGBA normalizes any decoded image into a zero-based RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(out, out.Bounds(), img, bounds.Min, xdraw.Src)
	return out
}

// Rescale resizes an image by a uniform factor, both axes alike, so the
// template keeps its aspect ratio. Dimensions are rounded and floored at one
// pixel.
func Rescale(img *image.RGBA, factor float64) *image.RGBA {
	bounds := img.Bounds()
	w := int(math.Round(float64(bounds.Dx()) * factor))
	h := int(math.Round(float64(bounds.Dy()) * factor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, bounds, xdraw.Src, nil)
	return out
}
