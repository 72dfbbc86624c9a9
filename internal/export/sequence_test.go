package export

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/scene"
)

func sequenceOptions() scene.Options {
	return scene.Options{
		DistanceScale:        10,
		RadiusScale:          0.2,
		AngularRateBase:      0.1,
		SpinRate:             1,
		BackgroundPointCount: 10,
		BackgroundExtent:     150,
		Seed:                 3,
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		seen := make([]int32, n)
		ParallelFor(n, 4, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}

func TestWriteSequence(t *testing.T) {
	q := Sequence{Start: 0, Step: 2.5, Frames: 20, Size: 200, Dir: t.TempDir()}
	paths, err := WriteSequence(context.Background(), catalog.Default(), sequenceOptions(), q)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 20 {
		t.Fatalf("expected 20 paths, got %d", len(paths))
	}

	last, err := os.ReadFile(paths[19])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(last), "t=47.50") {
		t.Error("last frame should be labelled t=47.50")
	}
	wellFormed(t, string(last))

	first, _ := os.ReadFile(paths[0])
	if string(first) == string(last) {
		t.Error("frames at different times should differ")
	}
}

func TestWriteSequenceInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		q    Sequence
	}{
		{"no frames", Sequence{Step: 1, Size: 10, Dir: dir}},
		{"zero step", Sequence{Frames: 2, Size: 10, Dir: dir}},
		{"negative start", Sequence{Start: -1, Step: 1, Frames: 2, Size: 10, Dir: dir}},
		{"zero size", Sequence{Step: 1, Frames: 2, Dir: dir}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := WriteSequence(context.Background(), catalog.Default(), sequenceOptions(), tt.q); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteSequenceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := Sequence{Step: 1, Frames: 4, Size: 50, Dir: t.TempDir()}
	if _, err := WriteSequence(ctx, catalog.Default(), sequenceOptions(), q); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
