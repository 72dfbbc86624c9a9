package catalog

import (
	"math"
	"strings"
)

// Decorations are optional visual attachments drawn around a body.
type Decorations struct {
	HasClouds bool `yaml:"clouds" json:"clouds"`
	HasRings  bool `yaml:"rings" json:"rings"`
}

// BodyDescriptor is the static description of one orbiting body. Sizes and
// distances are ratios to a reference body (Earth) before display scaling.
// DisplayColor and TextureRef are passed through to renderers untouched.
type BodyDescriptor struct {
	Name             string      `yaml:"name" json:"name"`
	RelativeRadius   float64     `yaml:"radius" json:"radius"`
	RelativeDistance float64     `yaml:"distance" json:"distance"`
	Decorations      Decorations `yaml:"decorations" json:"decorations"`
	DisplayColor     string      `yaml:"color" json:"color,omitempty"`
	TextureRef       string      `yaml:"texture" json:"texture,omitempty"`
}

// SunDescriptor describes the central body. It has no orbit.
type SunDescriptor struct {
	Name           string  `yaml:"name" json:"name"`
	RelativeRadius float64 `yaml:"radius" json:"radius"`
	DisplayColor   string  `yaml:"color" json:"color,omitempty"`
	TextureRef     string  `yaml:"texture" json:"texture,omitempty"`
}

type Catalog struct {
	sun    SunDescriptor
	bodies []BodyDescriptor
	index  map[string]int
}

// New validates the descriptors and builds an immutable catalog. The
// returned error is an *InvalidCatalogError.
func New(sun SunDescriptor, bodies ...BodyDescriptor) (*Catalog, error) {
	if err := validateSun(sun); err != nil {
		return nil, err
	}

	c := &Catalog{
		sun:    sun,
		bodies: make([]BodyDescriptor, 0, len(bodies)),
		index:  make(map[string]int, len(bodies)),
	}

	for _, b := range bodies {
		if err := validateBody(b); err != nil {
			return nil, err
		}
		key := strings.ToLower(b.Name)
		if _, dup := c.index[key]; dup {
			return nil, invalid(b.Name, "name", "is duplicated")
		}
		c.index[key] = len(c.bodies)
		c.bodies = append(c.bodies, b)
	}

	return c, nil
}

func validateSun(s SunDescriptor) error {
	if !positive(s.RelativeRadius) {
		return invalid(s.Name, "sun radius", "must be a positive finite number")
	}
	return nil
}

func validateBody(b BodyDescriptor) error {
	if strings.TrimSpace(b.Name) == "" {
		return invalid("", "name", "must not be empty")
	}
	if !positive(b.RelativeDistance) {
		return invalid(b.Name, "distance", "must be a positive finite number")
	}
	if !positive(b.RelativeRadius) {
		return invalid(b.Name, "radius", "must be a positive finite number")
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (c *Catalog) Sun() SunDescriptor { return c.sun }

// Bodies returns a copy of the orbiting bodies in catalog order.
func (c *Catalog) Bodies() []BodyDescriptor {
	out := make([]BodyDescriptor, len(c.bodies))
	copy(out, c.bodies)
	return out
}

func (c *Catalog) Len() int { return len(c.bodies) }

// Body returns the i-th body in catalog order.
func (c *Catalog) Body(i int) BodyDescriptor { return c.bodies[i] }

// Lookup finds a body by name, ignoring case.
func (c *Catalog) Lookup(name string) (BodyDescriptor, bool) {
	i, ok := c.index[strings.ToLower(name)]
	if !ok {
		return BodyDescriptor{}, false
	}
	return c.bodies[i], true
}

// Names lists body names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.bodies))
	for i, b := range c.bodies {
		names[i] = b.Name
	}
	return names
}
