package catalog

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := New(DefaultSun, DefaultBodies...)
	if err != nil {
		t.Fatalf("default catalog rejected: %v", err)
	}

	if c.Len() != 8 {
		t.Errorf("expected 8 bodies, got %d", c.Len())
	}

	names := c.Names()
	if names[0] != "Mercury" || names[7] != "Neptune" {
		t.Errorf("unexpected order: %v", names)
	}

	earth, ok := c.Lookup("earth")
	if !ok {
		t.Fatal("earth not found")
	}
	if !earth.Decorations.HasClouds {
		t.Error("earth should carry a cloud layer")
	}

	saturn, _ := c.Lookup("Saturn")
	if !saturn.Decorations.HasRings {
		t.Error("saturn should carry rings")
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	ok := BodyDescriptor{Name: "A", RelativeRadius: 1, RelativeDistance: 1}

	tests := []struct {
		name   string
		sun    SunDescriptor
		bodies []BodyDescriptor
	}{
		{"zero distance", DefaultSun, []BodyDescriptor{{Name: "A", RelativeRadius: 1, RelativeDistance: 0}}},
		{"negative distance", DefaultSun, []BodyDescriptor{{Name: "A", RelativeRadius: 1, RelativeDistance: -2}}},
		{"zero radius", DefaultSun, []BodyDescriptor{{Name: "A", RelativeRadius: 0, RelativeDistance: 1}}},
		{"nan distance", DefaultSun, []BodyDescriptor{{Name: "A", RelativeRadius: 1, RelativeDistance: math.NaN()}}},
		{"inf radius", DefaultSun, []BodyDescriptor{{Name: "A", RelativeRadius: math.Inf(1), RelativeDistance: 1}}},
		{"empty name", DefaultSun, []BodyDescriptor{{Name: " ", RelativeRadius: 1, RelativeDistance: 1}}},
		{"duplicate name", DefaultSun, []BodyDescriptor{ok, ok}},
		{"duplicate name case", DefaultSun, []BodyDescriptor{ok, {Name: "a", RelativeRadius: 2, RelativeDistance: 3}}},
		{"sun without radius", SunDescriptor{Name: "Sun"}, []BodyDescriptor{ok}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.sun, tt.bodies...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if c != nil {
				t.Error("expected nil catalog on error")
			}
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("error %v does not match ErrInvalidCatalog", err)
			}
			var ice *InvalidCatalogError
			if !errors.As(err, &ice) {
				t.Errorf("error %T is not *InvalidCatalogError", err)
			}
		})
	}
}

func TestInvalidCatalogErrorMessage(t *testing.T) {
	err := &InvalidCatalogError{Body: "Pluto", Field: "distance", Reason: "must be a positive finite number"}
	expected := `catalog: body "Pluto": distance must be a positive finite number`
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestBodiesReturnsCopy(t *testing.T) {
	c := Default()

	bodies := c.Bodies()
	bodies[0].RelativeDistance = 0
	bodies[0].Name = "Vulcan"

	if c.Body(0).RelativeDistance != 0.39 {
		t.Error("catalog mutated through Bodies()")
	}
	if _, ok := c.Lookup("Vulcan"); ok {
		t.Error("lookup sees mutated name")
	}
}

func TestEmptyCatalog(t *testing.T) {
	c, err := New(DefaultSun)
	if err != nil {
		t.Fatalf("sun-only catalog rejected: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected 0 bodies, got %d", c.Len())
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
sun:
  radius: 10
bodies:
  - name: Inner
    radius: 0.5
    distance: 1
  - name: Outer
    radius: 2
    distance: 4
    decorations:
      rings: true
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if c.Sun().Name != "Sun" {
		t.Errorf("expected default sun name, got %q", c.Sun().Name)
	}
	outer, ok := c.Lookup("outer")
	if !ok || !outer.Decorations.HasRings {
		t.Errorf("outer body not decoded: %+v", outer)
	}

	_, err = Parse([]byte("sun: {radius: 1}\nbodies:\n  - {name: X, radius: 1, distance: 0}\n"))
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	if err := Default().Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.Len() != 8 {
		t.Errorf("expected 8 bodies, got %d", c.Len())
	}
	if c.Body(5).TextureRef != DefaultBodies[5].TextureRef {
		t.Error("texture reference not preserved")
	}
}
