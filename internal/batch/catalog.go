package batch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Catalog holds the closed textual enumerations for moisture bands and packing
// types. The prediction service one-hot encodes these strings, so they must
// match its training data exactly.
type Catalog struct {
	Moisture []string `yaml:"moisture"`
	Packing  []string `yaml:"packing"`
}

// DefaultCatalog is used when no catalog file is configured.
func DefaultCatalog() Catalog {
	return Catalog{
		Moisture: []string{"< 12%", "12% - 14%", "> 14%"},
		Packing:  []string{"Open to air", "Jute bag", "Polythene bag", "Airtight container"},
	}
}

// LoadCatalog reads a YAML catalog. A list left empty in the file keeps the default.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	def := DefaultCatalog()
	c.Moisture = cleanList(c.Moisture)
	c.Packing = cleanList(c.Packing)
	if len(c.Moisture) == 0 {
		c.Moisture = def.Moisture
	}
	if len(c.Packing) == 0 {
		c.Packing = def.Packing
	}
	return c, c.Validate()
}

// Validate rejects duplicate entries, which would make option lists ambiguous.
func (c Catalog) Validate() error {
	var errs []error
	if d := firstDuplicate(c.Moisture); d != "" {
		errs = append(errs, fmt.Errorf("duplicate moisture band %q", d))
	}
	if d := firstDuplicate(c.Packing); d != "" {
		errs = append(errs, fmt.Errorf("duplicate packing type %q", d))
	}
	return errors.Join(errs...)
}

func (c Catalog) HasMoisture(s string) bool { return contains(c.Moisture, s) }

func (c Catalog) HasPacking(s string) bool { return contains(c.Packing, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstDuplicate(list []string) string {
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}
