package provider

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"draftly/internal/port"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// CatalogEntry describes one provider in the model catalog.
type CatalogEntry struct {
	Capabilities port.Capabilities      `yaml:"capabilities"`
	Models       []port.ModelDescriptor `yaml:"models"`
}

// Catalog maps provider names to their capabilities and advertised models.
type Catalog struct {
	Providers map[string]CatalogEntry `yaml:"providers"`
}

// LoadCatalog reads a YAML catalog from path, or the embedded default when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading provider catalog: %w", err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing provider catalog: %w", err)
	}
	if c.Providers == nil {
		c.Providers = map[string]CatalogEntry{}
	}
	return &c, nil
}

// Capabilities returns the flags for a provider. Unknown providers are
// assumed to support plain JSON output only.
func (c *Catalog) Capabilities(name string) port.Capabilities {
	if c != nil {
		if e, ok := c.Providers[name]; ok {
			return e.Capabilities
		}
	}
	return port.Capabilities{SupportsPlainJSON: true}
}

// Models returns a copy of the advertised models for a provider.
func (c *Catalog) Models(name string) []port.ModelDescriptor {
	if c == nil {
		return nil
	}
	e, ok := c.Providers[name]
	if !ok {
		return nil
	}
	return append([]port.ModelDescriptor(nil), e.Models...)
}

// Describe returns the catalog descriptor for a model id, synthesizing one
// when the id is not listed.
func (c *Catalog) Describe(provider, id string) port.ModelDescriptor {
	for _, m := range c.Models(provider) {
		if m.ID == id {
			return m
		}
	}
	return port.ModelDescriptor{
		ID:                 id,
		Family:             FamilyOf(id),
		SupportsJSONSchema: c.Capabilities(provider).SupportsJSONSchema,
	}
}
