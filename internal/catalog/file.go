package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML layout of a catalog.
type File struct {
	Sun    SunDescriptor    `yaml:"sun"`
	Bodies []BodyDescriptor `yaml:"bodies"`
}

// Parse decodes a YAML catalog and validates it.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if f.Sun.Name == "" {
		f.Sun.Name = DefaultSun.Name
	}
	return New(f.Sun, f.Bodies...)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Save writes the catalog in the format read by LoadFile.
func (c *Catalog) Save(path string) error {
	data, err := yaml.Marshal(File{Sun: c.sun, Bodies: c.bodies})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
