package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/orrery/internal/automation"
	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/engine"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/metrics"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
	"github.com/san-kum/orrery/internal/server"
	"github.com/san-kum/orrery/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, s, err := newSession(cmd, !plain)
	if err != nil {
		return err
	}
	if !plain {
		return viz.Run(s, vizOptions(cfg))
	}

	w, h := width, height
	if w <= 0 {
		w = 60
	}
	if h <= 0 {
		h = 20
	}
	frame := s.Frame()
	printer := viz.NewPrinter(os.Stdout, w, h, frame.Extent(), true)

	ctx, cancel := signalContext()
	defer cancel()
	if liveTime > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, time.Duration(liveTime*float64(time.Second)))
		defer stop()
	}
	s.Start()
	if err := s.Run(ctx, engine.Interval(cfg.FPS), printer); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// frameAt builds the scene at an absolute elapsed time without ticking.
func frameAt(cmd *cobra.Command) (scene.Snapshot, error) {
	cfg, cat, err := setup(cmd, false)
	if err != nil {
		return scene.Snapshot{}, err
	}
	if at < 0 {
		return scene.Snapshot{}, fmt.Errorf("--at must not be negative, got %g", at)
	}
	return scene.BuildSnapshot(cat, playback.Clock{Elapsed: at}, engine.OptionsFromConfig(cfg))
}

func printSnapshot(cmd *cobra.Command, args []string) error {
	snap, err := frameAt(cmd)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func writeSVG(cmd *cobra.Command, args []string) error {
	if svgFrames > 1 {
		return writeSVGSequence(cmd)
	}
	snap, err := frameAt(cmd)
	if err != nil {
		return err
	}
	if svgSize <= 0 {
		return fmt.Errorf("--size must be positive, got %d", svgSize)
	}
	doc := export.SnapshotToSVG(snap, svgSize)
	if braille {
		doc = brailleSVG(snap)
	}
	if err := os.WriteFile(outFile, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (t=%.2f, %d bodies)\n", outFile, snap.Elapsed, len(snap.Bodies))
	return nil
}

// brailleSVG draws snap the way the terminal view does and scales the dot
// grid so the wider side spans --size pixels.
func brailleSVG(snap scene.Snapshot) string {
	w, h := width, height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 30
	}
	sc := viz.NewScope(w, h)
	sc.Camera.Fit(snap.Extent())
	sc.Draw(snap)
	dots := max(sc.Canvas.DotWidth(), sc.Canvas.DotHeight())
	return export.CanvasToSVG(sc.Canvas, float64(svgSize)/float64(dots))
}

func writeSVGSequence(cmd *cobra.Command) error {
	cfg, cat, err := setup(cmd, false)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	paths, err := export.WriteSequence(ctx, cat, engine.OptionsFromConfig(cfg), export.Sequence{
		Start:  at,
		Step:   svgStep,
		Frames: svgFrames,
		Size:   svgSize,
		Dir:    svgDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d frames to %s in %v\n", len(paths), svgDir, time.Since(start))
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, s, err := newSession(cmd, false)
	if err != nil {
		return err
	}
	srv := server.New(s, metrics.NewCollector(nil), cfg.Server)

	ctx, cancel := signalContext()
	defer cancel()
	return srv.ListenAndServe(ctx, engine.Interval(cfg.FPS))
}

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cccc"))
	tableName   = lipgloss.NewStyle().Bold(true)
	tableMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

func showCatalog(cmd *cobra.Command, args []string) error {
	cfg, cat, err := setup(cmd, false)
	if err != nil {
		return err
	}
	calc := orbit.Calculator{
		DistanceScale:   cfg.Scale.Distance,
		AngularRateBase: cfg.AngularRateBase,
		SpinRate:        cfg.SpinRate,
	}

	sun := cat.Sun()
	fmt.Printf("%s %s  radius %.2f\n\n", viz.Swatch(viz.ParseColor(sun.DisplayColor, viz.CurrentTheme.SunColor())), tableName.Render(sun.Name), sun.RelativeRadius)

	fmt.Println(tableHeader.Render(fmt.Sprintf("   %-10s %8s %9s %10s  %s", "BODY", "RADIUS", "DISTANCE", "PERIOD", "DECORATIONS")))
	for _, b := range cat.Bodies() {
		fmt.Printf("%s  %s %8.2f %9.2f %9.1fs  %s\n",
			viz.Swatch(viz.ParseColor(b.DisplayColor, viz.CurrentTheme.BodyColor())),
			tableName.Render(fmt.Sprintf("%-10s", b.Name)),
			b.RelativeRadius,
			b.RelativeDistance,
			calc.Period(b.RelativeDistance),
			tableMuted.Render(decorations(b.Decorations)),
		)
	}
	return nil
}

func decorations(d catalog.Decorations) string {
	var parts []string
	if d.HasClouds {
		parts = append(parts, "clouds")
	}
	if d.HasRings {
		parts = append(parts, "rings")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Preset != "" && !cmd.Flags().Changed("preset") {
		presetName = sc.Preset
	}
	_, s, err := newSession(cmd, false)
	if err != nil {
		return err
	}

	var r engine.Renderer
	if plain {
		r = viz.NewPrinter(os.Stdout, 60, 20, s.Frame().Extent(), false)
	}

	ctx, cancel := signalContext()
	defer cancel()
	results, runErr := automation.RunScenario(ctx, sc, s, r)

	name := sc.Name
	if name == "" {
		name = args[0]
	}
	fmt.Printf("scenario: %s\n", name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tELAPSED\tRUNNING\tSPEED")
	for _, res := range results {
		fmt.Fprintf(w, "%d\t%.3f\t%t\t%.2f\n", res.Step, res.Clock.Elapsed, res.Clock.Running, res.Speed)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
