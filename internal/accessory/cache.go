package accessory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
	"gopkg.in/yaml.v3"
)

// Cache persists the set of registered accessories between runs so units
// that disappear from the network can be removed on the next start.
type Cache struct {
	path string
}

type cacheFile struct {
	Accessories []saveconnect.Device `yaml:"accessories"`
}

// NewCache returns a cache stored at path. An empty path disables
// persistence.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the cache file location
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Load returns the cached devices. A missing file yields none.
func (c *Cache) Load() ([]saveconnect.Device, error) {
	if c == nil || c.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading accessory cache: %w", err)
	}

	var f cacheFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing accessory cache %s: %w", c.path, err)
	}
	out := f.Accessories[:0]
	for _, d := range f.Accessories {
		if d.ID == "" || d.Host == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Save replaces the cache contents with devs
func (c *Cache) Save(devs []saveconnect.Device) error {
	if c == nil || c.path == "" {
		return nil
	}
	sorted := append([]saveconnect.Device(nil), devs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DisplayName < sorted[j].DisplayName })

	data, err := yaml.Marshal(cacheFile{Accessories: sorted})
	if err != nil {
		return fmt.Errorf("error encoding accessory cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("error creating cache directory: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("error writing accessory cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("error writing accessory cache: %w", err)
	}
	return nil
}
