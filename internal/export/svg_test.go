package export

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
	"github.com/san-kum/orrery/internal/viz"
)

func testSnapshot(t *testing.T) scene.Snapshot {
	t.Helper()
	s, err := scene.BuildSnapshot(catalog.Default(), playback.Clock{Elapsed: 4}, scene.Options{
		DistanceScale:        10,
		RadiusScale:          0.2,
		AngularRateBase:      0.1,
		SpinRate:             1,
		BackgroundPointCount: 20,
		BackgroundExtent:     150,
		Seed:                 9,
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			t.Fatalf("malformed svg: %v", err)
		}
	}
}

func TestSnapshotToSVG(t *testing.T) {
	s := testSnapshot(t)
	out := SnapshotToSVG(s, 600)
	wellFormed(t, out)

	if !strings.Contains(out, `width="600"`) {
		t.Error("size not applied")
	}
	for _, b := range s.Bodies {
		if !strings.Contains(out, `id="`+b.Body.Name+`"`) {
			t.Errorf("missing group for %s", b.Body.Name)
		}
	}
	if strings.Count(out, "<polygon") != len(s.Bodies) {
		t.Errorf("expected %d orbit polygons", len(s.Bodies))
	}
	if strings.Count(out, "<ellipse") != 1 {
		t.Error("expected exactly one ring (Saturn)")
	}
	if !strings.Contains(out, `fill-opacity="0.35"`) {
		t.Error("cloud shell missing")
	}
	if !strings.Contains(out, "t=4.00") {
		t.Error("elapsed label missing")
	}
}

func TestSnapshotToSVGEscapesNames(t *testing.T) {
	cat, err := catalog.New(catalog.DefaultSun, catalog.BodyDescriptor{
		Name: `A&B "<x>"`, RelativeRadius: 1, RelativeDistance: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := scene.BuildSnapshot(cat, playback.Clock{}, scene.Options{DistanceScale: 10, RadiusScale: 0.2, AngularRateBase: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	wellFormed(t, SnapshotToSVG(s, 200))
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should give empty output")
	}
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.SetColor(3, 7, colorful.Color{R: 1})
	out := CanvasToSVG(c, 2)
	wellFormed(t, out)
	if strings.Count(out, "<circle") != 2 {
		t.Errorf("expected 2 dots, got %d", strings.Count(out, "<circle"))
	}
	if !strings.Contains(out, `fill="#ff0000"`) {
		t.Error("dot colour lost")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	if TrajectoryToSVG([]Point{{1, 1}}, 100, 100, "#fff") != "" {
		t.Error("single point should give empty output")
	}
	out := TrajectoryToSVG([]Point{{0, 0}, {1, 1}, {2, 0}}, 100, 80, "#00ff00")
	wellFormed(t, out)
	if strings.Count(out, " L") != 2 {
		t.Error("expected two line segments")
	}
}
