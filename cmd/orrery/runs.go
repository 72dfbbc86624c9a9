package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orrery/internal/analysis"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/engine"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/scene"
	"github.com/san-kum/orrery/internal/storage"
)

// multiRenderer hands each frame to every renderer in order.
type multiRenderer []engine.Renderer

func (m multiRenderer) Render(s scene.Snapshot) error {
	for _, r := range m {
		if err := r.Render(s); err != nil {
			return err
		}
	}
	return nil
}

func recordRun(cmd *cobra.Command, args []string) error {
	if dt <= 0 || recordTime <= 0 {
		return fmt.Errorf("--dt and --time must be positive")
	}
	cfg, s, err := newSession(cmd, false)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	track := storage.NewTrack(s.Catalog().Names())
	renderers := multiRenderer{track}
	if dbPath != "" {
		db, err := storage.OpenFrameDB(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		renderers = append(renderers, db)
	}

	steps := int(math.Round(recordTime / dt))
	fmt.Printf("recording %d frames at %.2fx...\n", steps+1, s.Speed())
	start := time.Now()

	s.Start()
	if err := renderers.Render(s.Frame()); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if err := renderers.Render(s.Advance(dt)); err != nil {
			return err
		}
	}

	label := presetName
	if label == "" {
		label = "classic"
	}
	runID, err := st.Save(storage.RunMetadata{
		Preset:          label,
		Catalog:         cfg.Catalog,
		Seed:            cfg.Seed,
		SpeedFactor:     s.Speed(),
		DistanceScale:   cfg.Scale.Distance,
		RadiusScale:     cfg.Scale.Radius,
		AngularRateBase: cfg.AngularRateBase,
		Dt:              dt,
		Duration:        recordTime,
	}, track)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", track.Len())
	fmt.Printf("simulated: %.2fs\n", s.Controller().Elapsed())
	if dbPath != "" {
		fmt.Printf("frame db: %s\n", dbPath)
	}
	return nil
}

// runStore opens the data directory named by flags, environment or config.
func runStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := runStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tSPEED\tFRAMES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.2fx\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.SpeedFactor,
			run.Frames,
		)
	}
	return w.Flush()
}

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, *storage.Track, error) {
	st, err := runStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	track, err := st.LoadTrack(runID)
	if err != nil {
		return nil, nil, err
	}
	if track.Len() == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, track, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, track, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	body := args[1]
	xs, ys, err := track.Series(body)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("body: %s\n", body)
	fmt.Printf("samples: %d\n\n", len(xs))

	graph := asciigraph.PlotMany([][]float64{xs, ys},
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.SeriesLegends("x", "y"),
		asciigraph.Caption(fmt.Sprintf("%s position", body)),
	)
	fmt.Println(graph)

	if plotSVG != "" {
		pts := make([]export.Point, len(xs))
		for i := range xs {
			pts[i] = export.Point{X: xs[i], Y: ys[i]}
		}
		doc := export.TrajectoryToSVG(pts, 600, 600, "#4488ff")
		if doc == "" {
			return fmt.Errorf("run %s has too few samples of %s for a path", meta.ID, body)
		}
		if err := os.WriteFile(plotSVG, []byte(doc), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotSVG)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, track, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if track.Len() < 2 {
		return analysis.ErrTooShort
	}

	cat := catalog.Default()
	if meta.Catalog != "" {
		if cat, err = catalog.LoadFile(meta.Catalog); err != nil {
			return fmt.Errorf("load catalog of run: %w", err)
		}
	}

	bodies := track.Bodies
	if len(args) == 2 {
		bodies = []string{args[1]}
	}
	step := track.Times[1] - track.Times[0]

	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("samples: %d every %.4fs\n\n", track.Len(), step)

	if len(bodies) == 1 {
		xs, _, err := track.Series(bodies[0])
		if err != nil {
			return err
		}
		ps := analysis.PowerSpectrum(xs)
		if len(ps) > 4 {
			fmt.Println(asciigraph.Plot(ps[:len(ps)/4],
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("power spectrum (%s.x)", bodies[0])),
			))
			fmt.Println()
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tEXPECTED\tMEASURED\tERROR\tRATE\tEXPECTED RATE")
	for _, name := range bodies {
		b, ok := cat.Lookup(name)
		if !ok {
			return fmt.Errorf("body %q is not in the catalog", name)
		}
		xs, ys, err := track.Series(name)
		if err != nil {
			return err
		}
		want := orbit.Period(b.RelativeDistance, meta.AngularRateBase)
		wantRate := orbit.AngularRate(b.RelativeDistance, meta.AngularRateBase)

		rate, err := analysis.AngularRate(track.Times, xs, ys)
		if err != nil {
			return err
		}

		measured := "-"
		relErr := "-"
		period, err := analysis.DominantPeriod(xs, step)
		switch {
		case err == nil:
			measured = fmt.Sprintf("%.2fs", period)
			relErr = fmt.Sprintf("%.2f%%", 100*math.Abs(period-want)/want)
		case errors.Is(err, analysis.ErrTooShort):
			measured = "too short"
		default:
			return err
		}
		fmt.Fprintf(w, "%s\t%.2fs\t%s\t%s\t%.5f\t%.5f\n", name, want, measured, relErr, rate, wantRate)
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, track, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return storage.WriteTrackCSV(os.Stdout, track)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := runStore(cmd)
	if err != nil {
		return err
	}
	return st.ExportJSON(os.Stdout, args[0])
}

func inspectFrames(cmd *cobra.Command, args []string) error {
	db, err := storage.OpenFrameDBReadOnly(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Count()
	if err != nil {
		return err
	}
	fmt.Printf("frames: %d\n", n)
	if frameNum < 0 {
		if n == 0 {
			return nil
		}
		frameNum = n - 1
	}

	f, err := db.QueryFrame(frameNum)
	if err != nil {
		return err
	}
	fmt.Printf("frame %d  t=%.3f  running=%t\n\n", f.Number, f.Elapsed, f.Running)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBODY\tX\tY\tZ\tROTATION\tRADIUS")
	for _, row := range f.Bodies {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n", row.ID, row.Name, row.X, row.Y, row.Z, row.Rotation, row.Radius)
	}
	return w.Flush()
}
