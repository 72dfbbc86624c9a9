package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/engine"
	"github.com/san-kum/orrery/internal/viz"
)

var (
	dataDir     string
	configFile  string
	presetName  string
	catalogFile string
	envFile     string
	seed        int64
	speed       float64
	logLevel    string
	logFormat   string
	logFile     string
	// live view
	frameRate int
	width     int
	height    int
	themeName string
	gifPath   string
	plain     bool
	liveTime  float64
	// snapshots
	at        float64
	outFile   string
	svgSize   int
	svgFrames int
	svgStep   float64
	svgDir    string
	braille   bool
	plotSVG   string
	// recording
	recordTime float64
	dt         float64
	dbPath     string
	frameNum   int
	listen     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags of different commands may share a
// variable only when their defaults agree, since registration writes the
// default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orrery",
		Short:         "animated solar system model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := setup(cmd, true)
			if err != nil {
				return err
			}
			return viz.RunInteractive(cat, vizOptions(cfg))
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&presetName, "preset", "", "use preset configuration")
	pf.StringVar(&catalogFile, "catalog", "", "catalog file path (yaml)")
	pf.StringVar(&envFile, "env", ".env", "dotenv file")
	pf.Int64Var(&seed, "seed", 0, "starfield seed")
	pf.Float64Var(&speed, "speed", config.DefaultSpeedFactor, "speed factor")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "text", "text or json")
	pf.StringVar(&logFile, "log-file", "", "log file for terminal views")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the animation in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	liveCmd.Flags().IntVar(&width, "width", 0, "canvas width in cells")
	liveCmd.Flags().IntVar(&height, "height", 0, "canvas height in cells")
	liveCmd.Flags().StringVar(&themeName, "theme", "", "color theme")
	liveCmd.Flags().StringVar(&gifPath, "gif", "orrery.gif", "gif capture path")
	liveCmd.Flags().BoolVar(&plain, "plain", false, "print frames without the TUI")
	liveCmd.Flags().Float64Var(&liveTime, "time", 0, "stop after this many wall seconds (plain mode)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "print the scene at a given time as JSON",
		Args:  cobra.NoArgs,
		RunE:  printSnapshot,
	}
	snapshotCmd.Flags().Float64Var(&at, "at", 0, "elapsed simulated seconds")

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "render the scene at a given time to SVG",
		Args:  cobra.NoArgs,
		RunE:  writeSVG,
	}
	svgCmd.Flags().Float64Var(&at, "at", 0, "elapsed simulated seconds")
	svgCmd.Flags().StringVarP(&outFile, "output", "o", "orrery.svg", "output file")
	svgCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")
	svgCmd.Flags().IntVar(&svgFrames, "frames", 1, "write a numbered sequence of this many frames")
	svgCmd.Flags().Float64Var(&svgStep, "step", 1, "simulated seconds between sequence frames")
	svgCmd.Flags().StringVar(&svgDir, "dir", "frames", "sequence output directory")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal braille view instead")
	svgCmd.Flags().IntVar(&width, "width", 0, "braille canvas width in cells (default 80)")
	svgCmd.Flags().IntVar(&height, "height", 0, "braille canvas height in cells (default 30)")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record body positions to the data directory",
		Args:  cobra.NoArgs,
		RunE:  recordRun,
	}
	recordCmd.Flags().Float64Var(&recordTime, "time", 120, "recording length in seconds of tick time")
	recordCmd.Flags().Float64Var(&dt, "dt", 0.05, "tick length in seconds")
	recordCmd.Flags().StringVar(&dbPath, "db", "", "also write frames to this sqlite file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [body]",
		Short: "plot a body's coordinates",
		Args:  cobra.ExactArgs(2),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "also write the body's path to this SVG file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id] [body]",
		Short: "measure orbital periods",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's positions to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	framesCmd := &cobra.Command{
		Use:   "frames [db]",
		Short: "inspect a sqlite frame recording",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectFrames,
	}
	framesCmd.Flags().IntVar(&frameNum, "frame", -1, "print one frame")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve snapshots over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&listen, "listen", config.DefaultListen, "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "tick rate")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "show the body catalog",
		Args:  cobra.NoArgs,
		RunE:  showCatalog,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %-8s %s\n", p, config.PresetInfo[p])
			}
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted playback scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&plain, "plain", false, "print every frame")

	configCmd := &cobra.Command{
		Use:   "config [file]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(liveCmd, snapshotCmd, svgCmd, recordCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, framesCmd, serveCmd, catalogCmd, presetsCmd, scenarioCmd, configCmd)
	return rootCmd
}

// resolveConfig layers preset, config file, environment and flags, in that
// order. Flags only win when set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if presetName != "" {
		cfg = config.GetPreset(presetName)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("speed") {
		cfg.SpeedFactor = speed
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("catalog") {
		cfg.Catalog = catalogFile
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.Server.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.Catalog)
}

// setup resolves configuration, installs the logger and loads the catalog.
// Terminal views log to --log-file or nowhere, so output does not tear the
// screen.
func setup(cmd *cobra.Command, terminal bool) (*config.Config, *catalog.Catalog, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out = f
	} else if terminal {
		out = io.Discard
	}
	initLogger(out, cfg.Logging)

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("configuration resolved", "preset", presetName, "catalog", cfg.Catalog, "bodies", cat.Len(), "speed", cfg.SpeedFactor)
	return cfg, cat, nil
}

func newSession(cmd *cobra.Command, terminal bool) (*config.Config, *engine.Session, error) {
	cfg, cat, err := setup(cmd, terminal)
	if err != nil {
		return nil, nil, err
	}
	s, err := engine.NewSession(cfg, cat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

func initLogger(out io.Writer, cfg config.LoggingConfig) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func vizOptions(cfg *config.Config) viz.Options {
	return viz.Options{
		FPS:     cfg.FPS,
		Width:   width,
		Height:  height,
		Theme:   themeName,
		GIFPath: gifPath,
	}
}

// signalContext is cancelled on interrupt or terminate.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
