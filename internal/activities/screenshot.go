package activities

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// Screenshot captures the full screen and writes it to path as PNG.
func (a *Activities) Screenshot(path string) error {
	return a.saveCapture(nil, path)
}

// Snippet captures only the given screen region and writes it to path as PNG.
func (a *Activities) Snippet(region cv.Region, path string) error {
	if region.Empty() {
		return fmt.Errorf("snippet region is empty")
	}
	return a.saveCapture(&region, path)
}

func (a *Activities) saveCapture(region *cv.Region, path string) error {
	bitmap, err := a.capturer.Capture(region)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, bitmap.Img); err != nil {
		return fmt.Errorf("failed to encode screenshot: %w", err)
	}

	a.log.Info("screenshot saved", map[string]interface{}{
		"path":   path,
		"width":  bitmap.Width(),
		"height": bitmap.Height(),
	})
	return nil
}
