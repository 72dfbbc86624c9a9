package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
)

// ParallelFor splits [0, n) into contiguous chunks of at least minChunk and
// runs fn on each chunk in its own goroutine.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Sequence describes a run of evenly spaced frames.
type Sequence struct {
	Start  float64
	Step   float64
	Frames int
	Size   int
	Dir    string
}

// FramePath is the file frame i is written to.
func (q Sequence) FramePath(i int) string {
	return filepath.Join(q.Dir, fmt.Sprintf("frame_%05d.svg", i))
}

// WriteSequence renders q.Frames snapshots at Start, Start+Step, ... to SVG
// files in q.Dir. Frames are independent, so they are built in parallel. The
// clock is reported as running for every frame.
func WriteSequence(ctx context.Context, cat *catalog.Catalog, opts scene.Options, q Sequence) ([]string, error) {
	switch {
	case q.Frames <= 0:
		return nil, fmt.Errorf("export: frame count must be positive, got %d", q.Frames)
	case q.Step <= 0:
		return nil, fmt.Errorf("export: frame step must be positive, got %g", q.Step)
	case q.Start < 0:
		return nil, fmt.Errorf("export: start must not be negative, got %g", q.Start)
	case q.Size <= 0:
		return nil, fmt.Errorf("export: size must be positive, got %d", q.Size)
	}
	// one builder keeps the starfield identical across frames
	b, err := scene.NewBuilder(cat, opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(q.Dir, 0755); err != nil {
		return nil, err
	}

	paths := make([]string, q.Frames)
	errs := make([]error, q.Frames)
	ParallelFor(q.Frames, 8, func(start, end int) {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			clock := playback.Clock{Elapsed: q.Start + float64(i)*q.Step, Running: true}
			svg := SnapshotToSVG(b.Build(clock), q.Size)
			paths[i] = q.FramePath(i)
			errs[i] = os.WriteFile(paths[i], []byte(svg), 0644)
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}
