package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tearline/internal/config"
	"github.com/san-kum/tearline/internal/cutter"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/storage"
	"github.com/san-kum/tearline/internal/viz"
	"github.com/san-kum/tearline/internal/world"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	scenario   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tearline",
		Short: "interactive stem tearing sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p := tea.NewProgram(viz.NewModel(cfg), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tearline", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "follower preset (leaf, bud, heavy)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scripted scenario and record it",
		RunE:  runScenario,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", 5.0, "duration")
	runCmd.Flags().StringVar(&scenario, "scenario", "pluck", "scenario: pluck, cut, or both")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stretch and dwell traces of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	eventsCmd := &cobra.Command{
		Use:   "events [run_id]",
		Short: "print the event log of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  printEvents,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			data, err := st.ExportJSON(args[0])
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list follower presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fc := config.Presets[name]
				fmt.Printf("%-8s break=%.2fm dwell=%.2fs arm=%.2fm\n",
					name, fc.BreakDistance, fc.BreakDwell, fc.ArmThreshold)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, eventsCmd, exportCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		fc := config.GetPreset(preset)
		if fc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Follower = *fc
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	return cfg, nil
}

// buildWorld spawns the configured stem with followers spaced along it.
func buildWorld(cfg *config.Config) (*world.World, *storage.Recorder, error) {
	opts := world.DefaultOptions()
	opts.Tuning = cfg.Tuning()
	w, err := world.New(opts)
	if err != nil {
		return nil, nil, err
	}

	root := geom.Vec3{X: cfg.Stem.RootX, Y: cfg.Stem.RootY}
	dir := geom.Vec3{Y: -1}
	line := w.SpawnStem(root, dir, cfg.Stem.Particles, cfg.Stem.Spacing)

	params := cfg.Follower.Params()
	every := cfg.Follower.Every
	if every < 1 {
		every = 1
	}
	for actor := every; actor < cfg.Stem.Particles; actor += every {
		at := root.Add(dir.Scale(float64(actor) * cfg.Stem.Spacing))
		if _, err := w.SpawnFollower(line, actor, at, params); err != nil {
			return nil, nil, err
		}
	}

	rec := storage.NewRecorder(w.Time)
	w.Events().SubscribeFracture(rec)
	w.Events().SubscribeImpact(rec)
	w.Events().SubscribeCut(rec)
	return w, rec, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w, rec, err := buildWorld(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s scenario...\n", scenario)
	start := time.Now()

	steps := int(cfg.Duration / cfg.Dt)
	script := makeScript(scenario, cfg, steps)
	for i := 0; i < steps; i++ {
		w.Step(cfg.Dt, script(i, w))
		peak, dwell := 0.0, 0.0
		for _, f := range w.Followers() {
			if s := f.Stretch(); s > peak {
				peak = s
			}
			if d := f.Dwell(); d > dwell {
				dwell = d
			}
		}
		rec.Sample(peak, dwell)
	}

	meta := storage.RunMetadata{
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Particles: cfg.Stem.Particles,
		Followers: len(w.Followers()),
	}
	runID, err := st.SaveRun(meta, rec)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("fractures: %d  cuts: %d  impacts: %d\n",
		rec.Count("fracture"), rec.Count("cut"), rec.Count("impact"))
	return nil
}

// makeScript builds a per-tick pointer gesture for a scenario. Gestures
// span the run: grab early, pull steadily, slice around the middle.
func makeScript(name string, cfg *config.Config, steps int) func(int, *world.World) world.Pointer {
	root := geom.Vec3{X: cfg.Stem.RootX, Y: cfg.Stem.RootY}
	mid := root.Add(geom.Vec3{Y: -1}.Scale(float64(cfg.Stem.Particles/2) * cfg.Stem.Spacing))
	proj := cutter.Ortho{Scale: geom.Vec2{X: 1000, Y: 1000}, Offset: geom.Vec2{Y: 300}}

	pluck := func(i int, w *world.World) world.Pointer {
		// settle, grab a mid-stem leaf, pull sideways until it tears
		grabAt := steps / 10
		switch {
		case i < grabAt:
			return world.Pointer{World: mid}
		case i == grabAt:
			at := nearestFollowerPos(w, mid)
			return world.Pointer{Down: true, Held: true, World: at, Screen: proj.Project(at)}
		default:
			pull := cfg.Follower.BreakDistance * 2 * float64(i-grabAt) / float64(steps/2)
			at := mid.Add(geom.Vec3{X: pull})
			return world.Pointer{Held: true, World: at, Screen: proj.Project(at)}
		}
	}

	cut := func(i int, w *world.World) world.Pointer {
		// horizontal swipe through the stem, far from any leaf
		startAt := steps / 4
		span := steps / 4
		from := mid.Add(geom.Vec3{X: -0.3, Y: cfg.Stem.Spacing / 2})
		switch {
		case i < startAt:
			return world.Pointer{World: from}
		case i == startAt:
			return world.Pointer{Down: true, Held: true, World: from, Screen: proj.Project(from)}
		case i < startAt+span:
			t := float64(i-startAt) / float64(span)
			at := from.Add(geom.Vec3{X: 0.6 * t})
			return world.Pointer{Held: true, World: at, Screen: proj.Project(at)}
		case i == startAt+span:
			return world.Pointer{Up: true}
		default:
			return world.Pointer{}
		}
	}

	switch name {
	case "cut":
		return cut
	case "both":
		half := steps / 2
		return func(i int, w *world.World) world.Pointer {
			if i < half {
				return cut(i, w)
			}
			return pluck(i-half, w)
		}
	default:
		return pluck
	}
}

func nearestFollowerPos(w *world.World, near geom.Vec3) geom.Vec3 {
	best, bestDist := near, -1.0
	for _, f := range w.Followers() {
		d := geom.Dist(f.Position(), near)
		if bestDist < 0 || d < bestDist {
			best, bestDist = f.Position(), d
		}
	}
	return best
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tFRACTURES\tCUTS\tIMPACTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Fractures,
			run.Cuts,
			run.Impacts,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(series))

	stretch := make([]float64, len(series))
	dwell := make([]float64, len(series))
	for i, row := range series {
		stretch[i] = row.Stretch
		dwell[i] = row.Dwell
	}

	fmt.Println(asciigraph.Plot(stretch,
		asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("stretch (m)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(dwell,
		asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("dwell (s)")))
	return nil
}

func printEvents(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rows, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no events")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tKIND\tX\tY\tDETAIL")
	for _, row := range rows {
		fmt.Fprintf(w, "%.3f\t%s\t%.3f\t%.3f\t%d\n", row.T, row.Kind, row.X, row.Y, row.Detail)
	}
	return w.Flush()
}
