package storage

import (
	"fmt"

	"github.com/san-kum/orrery/internal/scene"
)

// Sample is one body's recorded pose at one frame.
type Sample struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Track is a time series of body positions taken from successive snapshots.
// It is derived output for plotting and analysis; nothing reads it back into
// a session.
type Track struct {
	Bodies  []string   `json:"bodies"`
	Times   []float64  `json:"times"`
	Samples [][]Sample `json:"samples"`
}

func NewTrack(bodies []string) *Track {
	b := make([]string, len(bodies))
	copy(b, bodies)
	return &Track{Bodies: b}
}

// Render appends s, so a Track can be handed to a session as its renderer.
func (t *Track) Render(s scene.Snapshot) error {
	return t.Append(s)
}

func (t *Track) Append(s scene.Snapshot) error {
	if len(s.Bodies) != len(t.Bodies) {
		return fmt.Errorf("storage: snapshot has %d bodies, track has %d", len(s.Bodies), len(t.Bodies))
	}
	row := make([]Sample, len(s.Bodies))
	for i, b := range s.Bodies {
		if b.Body.Name != t.Bodies[i] {
			return fmt.Errorf("storage: body %d is %q, track expects %q", i, b.Body.Name, t.Bodies[i])
		}
		row[i] = Sample{X: b.Position.X(), Y: b.Position.Y(), Rotation: b.Position.Rotation}
	}
	t.Times = append(t.Times, s.Elapsed)
	t.Samples = append(t.Samples, row)
	return nil
}

func (t *Track) Len() int { return len(t.Times) }

// Index returns the column of the named body, or -1.
func (t *Track) Index(body string) int {
	for i, b := range t.Bodies {
		if b == body {
			return i
		}
	}
	return -1
}

// Series extracts one body's x and y coordinates.
func (t *Track) Series(body string) (xs, ys []float64, err error) {
	i := t.Index(body)
	if i < 0 {
		return nil, nil, fmt.Errorf("storage: no body %q in track", body)
	}
	xs = make([]float64, len(t.Samples))
	ys = make([]float64, len(t.Samples))
	for k, row := range t.Samples {
		xs[k], ys[k] = row[i].X, row[i].Y
	}
	return xs, ys, nil
}
