// Package templates manages reference images used for on-screen targeting,
// loaded from YAML manifests with an in-memory image cache.
package templates

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// Template describes one reference image and how to match it.
type Template struct {
	Name      string
	Path      string
	Threshold float64
	Region    *cv.Region // restrict the search to this capture region
	Scale     float64    // rescale factor applied to the image; 0 or 1 means none
}

// Definition is a template entry in a manifest YAML file.
type Definition struct {
	Name      string     `yaml:"name"`
	Path      string     `yaml:"path"`
	Threshold float64    `yaml:"threshold"`
	Region    *RegionDef `yaml:"region,omitempty"`
	Scale     float64    `yaml:"scale,omitempty"`
	Preload   bool       `yaml:"preload,omitempty"`
}

// RegionDef is a region in the YAML file.
type RegionDef struct {
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
	X2 int `yaml:"x2"`
	Y2 int `yaml:"y2"`
}

// Manifest is the structure of a template YAML file.
type Manifest struct {
	Templates []Definition `yaml:"templates"`
}

// Registry manages a collection of templates loaded from YAML manifests.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
	basePath  string // root directory for template image files
	cache     *ImageCache
}

// NewRegistry creates a registry rooted at basePath.
func NewRegistry(basePath string) *Registry {
	return &Registry{
		templates: make(map[string]Template),
		basePath:  basePath,
		cache:     NewImageCache(),
	}
}

// LoadFromFile loads templates from a YAML manifest.
func (r *Registry) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to unmarshal template YAML: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, def := range manifest.Templates {
		if def.Name == "" {
			return fmt.Errorf("template %d: name cannot be empty", i+1)
		}
		if def.Path == "" {
			return fmt.Errorf("template %d (%s): path cannot be empty", i+1, def.Name)
		}

		template := Template{
			Name:      def.Name,
			Path:      filepath.Join(r.basePath, def.Path),
			Threshold: def.Threshold,
			Scale:     def.Scale,
		}

		if def.Region != nil {
			region := cv.NewRegion(def.Region.X1, def.Region.Y1, def.Region.X2, def.Region.Y2)
			template.Region = &region
		}

		if template.Threshold == 0 {
			template.Threshold = 0.8
		}

		r.templates[def.Name] = template

		if err := r.cache.Register(template, def.Preload); err != nil {
			// The image can still be loaded on demand later.
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	return nil
}

// LoadFromDirectory loads every YAML manifest in a directory.
func (r *Registry) LoadFromDirectory(dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read template directory %s: %w", dirPath, err)
	}

	var loadErrors []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		fullPath := filepath.Join(dirPath, entry.Name())
		if err := r.LoadFromFile(fullPath); err != nil {
			loadErrors = append(loadErrors, fmt.Errorf("file %s: %w", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("failed to load %d template files (first error): %w", len(loadErrors), loadErrors[0])
	}
	return nil
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, ok := r.templates[name]
	return template, ok
}

// MustGet retrieves a template by name and panics if not found.
// Use only during initialization when the template is guaranteed to exist.
func (r *Registry) MustGet(name string) Template {
	template, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("template '%s' not found in registry", name))
	}
	return template
}

// Register adds a template programmatically.
func (r *Registry) Register(template Template) error {
	if template.Name == "" {
		return fmt.Errorf("template name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates[template.Name] = template
	return r.cache.Register(template, false)
}

// Has checks if a template exists in the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.templates[name]
	return ok
}

// List returns all template names in the registry.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered templates.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// Image returns the decoded (and, when Scale is set, rescaled) image for a
// registered template, loading and caching it on first use.
func (r *Registry) Image(name string) (Template, *image.RGBA, error) {
	template, ok := r.Get(name)
	if !ok {
		return Template{}, nil, fmt.Errorf("template '%s' not found in registry", name)
	}
	img, err := r.cache.Get(name)
	if err != nil {
		return Template{}, nil, err
	}
	return template, img, nil
}

// UnloadAll drops every cached image.
func (r *Registry) UnloadAll() {
	r.cache.UnloadAll()
}

// CacheStats returns image cache statistics.
func (r *Registry) CacheStats() CacheStats {
	return r.cache.Stats()
}
