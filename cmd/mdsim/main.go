package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/automation"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/optim"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/trajectory"
	"github.com/san-kum/mdsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	particles  int
	steps      int
	dt         float64
	boxHalf    float64
	epsilon    float64
	sigma      float64
	cutoff     float64
	mass       float64
	seed       int64
	initMode   string
	margin     float64
	maxSpeed   float64
	spacing    float64
	workers    int
	validate   bool
	streaming  bool
	// Analysis parameters
	kind string
	bins int
	// Export parameters
	outPath  string
	particle int
	frameIdx int
	// Render size
	gifWidth  int
	gifHeight int
	// Bench and sweep parameters
	benchSteps int
	sweepSteps int
	replicas   int
	// Tune parameters
	targetTemp  float64
	speedGrid   string
	spacingGrid string
	tuneSteps   int
)

// main is the entry point for the mdsim CLI; it registers commands and flags, launches the interactive TUI when no subcommand is provided, and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "mdsim",
		Short: "molecular dynamics simulation lab",
		Run: func(cmd *cobra.Command, args []string) {
			// Default to interactive TUI mode when no command given
			viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&boxHalf, "box-half", config.DefaultBoxHalf, "box half width")
	runCmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "well depth")
	runCmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "particle diameter")
	runCmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "interaction cutoff")
	runCmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "particle mass")
	runCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	runCmd.Flags().StringVar(&initMode, "init", "random", "initial arrangement (random|lattice|pair)")
	runCmd.Flags().Float64Var(&margin, "margin", config.DefaultMargin, "wall margin (random init)")
	runCmd.Flags().Float64Var(&maxSpeed, "max-speed", config.DefaultMaxSpeed, "initial speed limit (random init)")
	runCmd.Flags().Float64Var(&spacing, "spacing", config.DefaultSpacing, "grid spacing (lattice/pair init)")
	runCmd.Flags().IntVar(&workers, "workers", 1, "force loop workers")
	runCmd.Flags().BoolVar(&validate, "validate", false, "halt on non-finite state")
	runCmd.Flags().BoolVar(&streaming, "stream", false, "stream frames to disk instead of buffering")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "trajectory analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&kind, "kind", "msd", "analysis kind (msd|vacf|spectrum|rdf|energy)")
	analyzeCmd.Flags().IntVar(&bins, "bins", 50, "histogram bins (rdf)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the force loop",
		RunE:  benchForces,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 200, "steps per cell")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	liveCmd.Flags().Float64Var(&boxHalf, "box-half", config.DefaultBoxHalf, "box half width")
	liveCmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "well depth")
	liveCmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "particle diameter")
	liveCmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "interaction cutoff")
	liveCmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "particle mass")
	liveCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	liveCmd.Flags().StringVar(&initMode, "init", "random", "initial arrangement (random|lattice|pair)")
	liveCmd.Flags().Float64Var(&margin, "margin", config.DefaultMargin, "wall margin (random init)")
	liveCmd.Flags().Float64Var(&maxSpeed, "max-speed", config.DefaultMaxSpeed, "initial speed limit (random init)")
	liveCmd.Flags().Float64Var(&spacing, "spacing", config.DefaultSpacing, "grid spacing (lattice/pair init)")
	liveCmd.Flags().IntVar(&workers, "workers", 1, "force loop workers")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a stored trajectory to GIF",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outPath, "out", "", "output path (default <run_id>.gif)")
	renderCmd.Flags().IntVar(&gifWidth, "width", 60, "canvas width in cells")
	renderCmd.Flags().IntVar(&gifHeight, "height", 24, "canvas height in cells")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output path (default stdout)")

	exportNPYCmd := &cobra.Command{
		Use:   "export-npy [run_id]",
		Short: "export trajectory to a NumPy array",
		Args:  cobra.ExactArgs(1),
		RunE:  exportNPY,
	}
	exportNPYCmd.Flags().StringVar(&outPath, "out", "", "output path (default <run_id>.npy)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a particle path or frame to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outPath, "out", "", "output path (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&particle, "particle", 0, "particle index for path mode")
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "render a single frame instead of a path")

	interactiveCmd := &cobra.Command{
		Use:   "interactive",
		Short: "preset browser TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s %4d particles, %s init, %d steps\n",
					name, p.Particles, p.Init, p.Steps)
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset] [dt1] [dt2] ...",
		Short: "compare energy drift across timesteps",
		Args:  cobra.MinimumNArgs(1),
		RunE:  sweepTimesteps,
	}
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 500, "steps per timestep")
	sweepCmd.Flags().IntVar(&replicas, "replicas", 1, "independent replicas per timestep")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfigFile,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search initial conditions for a target temperature",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneInitialConditions,
	}
	tuneCmd.Flags().Float64Var(&targetTemp, "target-temp", 1.0, "target mean temperature")
	tuneCmd.Flags().StringVar(&speedGrid, "max-speeds", "0.5,1,1.5,2,3", "candidate max speeds")
	tuneCmd.Flags().StringVar(&spacingGrid, "spacings", "", "candidate spacings")
	tuneCmd.Flags().IntVar(&tuneSteps, "steps", 300, "steps per evaluation")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, benchCmd, liveCmd, replayCmd, renderCmd, exportCSVCmd, exportJSONCmd, exportNPYCmd, exportSVGCmd, interactiveCmd, presetsCmd, sweepCmd, initCmd, batchCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig assembles the run configuration with the usual
// precedence: preset, then config file, then explicitly set flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := "demo"
	if len(args) > 0 {
		name = args[0]
	}

	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("box-half") {
		cfg.BoxHalf = boxHalf
	}
	if flags.Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if flags.Changed("sigma") {
		cfg.Sigma = sigma
	}
	if flags.Changed("cutoff") {
		cfg.Cutoff = cutoff
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("init") {
		cfg.Init = initMode
	}
	if flags.Changed("margin") {
		cfg.Margin = margin
	}
	if flags.Changed("max-speed") {
		cfg.MaxSpeed = maxSpeed
	}
	if flags.Changed("spacing") {
		cfg.Spacing = spacing
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}

	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sys := cfg.NewSystem()
	vv := cfg.NewIntegrator()

	vv.AddMetric(metrics.NewEnergyDrift())
	vv.AddMetric(metrics.NewMeanTemperature())
	vv.AddMetric(metrics.NewMaxSpeed())
	vv.AddMetric(metrics.NewMeanSpeed())
	vv.AddMetric(metrics.NewConfinement(cfg.Box()))

	fmt.Printf("running %s (%d particles, %d steps)...\n", name, cfg.Particles, cfg.Steps)
	start := time.Now()

	var runID string
	var result *md.Result

	if streaming {
		rw, err := st.Begin()
		if err != nil {
			return err
		}
		stream := trajectory.NewStream(rw, 64)
		vv.AddRecorder(stream)

		result, err = vv.Run(context.Background(), sys, cfg.Steps)
		closeErr := stream.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
		if err := rw.Finish(cfg, result); err != nil {
			return err
		}
		runID = rw.RunID()
	} else {
		rec := trajectory.NewMemory(cfg.Steps)
		vv.AddRecorder(rec)

		result, err = vv.Run(context.Background(), sys, cfg.Steps)
		if err != nil {
			return err
		}
		runID, err = st.Save(cfg, result, rec.Frames())
		if err != nil {
			return err
		}
	}

	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("wall hits: %d\n", result.WallHits)
	fmt.Printf("energy drift: %.2e\n", result.EnergyDrift)
	for _, stepErr := range result.Errors {
		fmt.Printf("halted: %v\n", stepErr)
	}
	fmt.Println("\nmetrics:")
	for metric, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", metric, val)
	}

	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tN\tSTEPS\tDT\tINIT\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%s\t%.2e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Dt,
			run.Init,
			run.EnergyDrift,
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

	times, kinetic, potential, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	total := make([]float64, len(kinetic))
	for i := range total {
		total[i] = kinetic[i] + potential[i]
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n", meta.Particles)
	fmt.Printf("samples: %d, span: %.3f\n\n", len(times), times[len(times)-1]-times[0])

	series := []struct {
		caption string
		data    []float64
	}{
		{"total energy", total},
		{"kinetic energy", kinetic},
		{"potential energy", potential},
	}

	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("kind: %s\n\n", kind)

	if kind == "energy" {
		return analyzeEnergy(st, runID)
	}

	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("not enough frames to analyze")
	}

	switch kind {
	case "msd":
		return analyzeMSD(meta, frames)
	case "vacf":
		return analyzeVACF(meta, frames)
	case "spectrum":
		return analyzeSpectrum(meta, frames)
	case "rdf":
		return analyzeRDF(meta, frames)
	default:
		return fmt.Errorf("unknown analysis kind: %s", kind)
	}
}

func analyzeMSD(meta *storage.RunMetadata, frames [][]md.Vec3) error {
	msd := analysis.MeanSquaredDisplacement(frames, meta.Dt)
	if msd == nil {
		return fmt.Errorf("not enough frames")
	}

	graph := asciigraph.Plot(msd.Values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean squared displacement"),
	)
	fmt.Println(graph)
	fmt.Println()

	fmt.Printf("diffusion coefficient: %.6f\n", msd.DiffusionCoefficient())
	return nil
}

func analyzeVACF(meta *storage.RunMetadata, frames [][]md.Vec3) error {
	c := analysis.VelocityAutocorrelation(frames, meta.Dt)
	if c == nil {
		return fmt.Errorf("not enough frames")
	}

	graph := asciigraph.Plot(c.Values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("velocity autocorrelation"),
	)
	fmt.Println(graph)
	fmt.Println()

	for i, v := range c.Values {
		if v < 0 {
			fmt.Printf("first negative lag: %.4f\n", c.Lags[i])
			break
		}
	}
	return nil
}

func analyzeSpectrum(meta *storage.RunMetadata, frames [][]md.Vec3) error {
	c := analysis.VelocityAutocorrelation(frames, meta.Dt)
	if c == nil {
		return fmt.Errorf("not enough frames")
	}

	ps := c.Spectrum()
	plotData := ps
	if len(ps) >= 16 {
		plotData = ps[:len(ps)/4]
	}

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("vibrational spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(plotData); i++ {
		if plotData[i] > maxPower {
			maxPower = plotData[i]
			maxIdx = i
		}
	}

	freq := float64(maxIdx) / (float64(len(c.Values)) * meta.Dt)
	fmt.Printf("dominant frequency: %.3f\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f\n", 1.0/freq)
	}
	return nil
}

func analyzeRDF(meta *storage.RunMetadata, frames [][]md.Vec3) error {
	r := analysis.RadialDistribution(frames, md.Cube(meta.BoxHalf), bins)
	if r == nil {
		return fmt.Errorf("not enough frames")
	}

	graph := asciigraph.Plot(r.Values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("radial distribution g(r)"),
	)
	fmt.Println(graph)
	fmt.Println()

	maxVal := 0.0
	maxIdx := -1
	for i, v := range r.Values {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	if maxIdx >= 0 {
		fmt.Printf("first peak: r = %.3f, g = %.3f\n", r.Bins[maxIdx], maxVal)
	}
	return nil
}

func analyzeEnergy(st *storage.Store, runID string) error {
	times, kinetic, potential, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data")
	}

	total := make([]float64, len(kinetic))
	for i := range total {
		total[i] = kinetic[i] + potential[i]
	}

	graph := asciigraph.Plot(total,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	)
	fmt.Println(graph)
	fmt.Println()

	s := analysis.Summarize(total)
	fmt.Printf("mean: %.6f\n", s.Mean)
	fmt.Printf("std:  %.6f\n", s.Std)
	fmt.Printf("min:  %.6f\n", s.Min)
	fmt.Printf("max:  %.6f\n", s.Max)
	return nil
}

func benchForces(cmd *cobra.Command, args []string) error {
	sizes := []int{27, 64, 125, 216}
	counts := []int{1, 2, 4, 8}

	fmt.Println("benchmarking the force loop")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		for _, nw := range counts {
			cfg := config.DefaultConfig()
			cfg.Particles = n
			cfg.Steps = benchSteps
			cfg.Init = "lattice"
			cfg.Spacing = 1.2
			cfg.BoxHalf = 12
			cfg.MaxSpeed = 0.5
			cfg.Workers = nw

			if err := cfg.Validate(); err != nil {
				return err
			}

			sys := cfg.NewSystem()
			vv := cfg.NewIntegrator()

			start := time.Now()
			result, err := vv.Run(context.Background(), sys, benchSteps)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
				n, nw, result.StepsTaken, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return viz.RunLive(cfg.NewSystem(), cfg.NewIntegrator(), name)
}

func replayRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	return viz.RunReplay(frames, times, md.Cube(meta.BoxHalf), meta.ID)
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = runID + ".gif"
	}

	if err := viz.RenderGIF(frames, md.Cube(meta.BoxHalf), out, gifWidth, gifHeight); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", out, len(frames))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range frames[0] {
		header = append(header,
			fmt.Sprintf("p%dx", i), fmt.Sprintf("p%dy", i), fmt.Sprintf("p%dz", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, frame := range frames {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, p := range frame {
			row = append(row,
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64),
				strconv.FormatFloat(p.Z, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := export.ExportJSON(outPath, meta, frames, times); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	return export.ExportJSONStdout(meta, frames, times)
}

func exportNPY(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = runID + ".npy"
	}

	if err := export.ExportNPY(out, frames); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", out, len(frames))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = runID + ".svg"
	}

	if frameIdx >= 0 {
		if frameIdx >= len(frames) {
			return fmt.Errorf("frame %d out of range (have %d)", frameIdx, len(frames))
		}
		svg := export.FrameToSVG(frames[frameIdx], md.Cube(meta.BoxHalf), 800)
		if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	}

	if err := export.ExportSVG(out, frames, particle); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func sweepTimesteps(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	dts := make([]float64, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("bad timestep %q: %w", arg, err)
		}
		dts = append(dts, v)
	}
	if len(dts) == 0 {
		dts = []float64{0.001, 0.002, 0.005, 0.01}
	}

	fmt.Printf("timestep sweep for %s (%d steps", name, sweepSteps)
	if replicas > 1 {
		fmt.Printf(", %d replicas", replicas)
	}
	fmt.Println(")")
	fmt.Printf("%-10s  %-12s  %-10s  %s\n", "dt", "drift", "wall_hits", "status")
	fmt.Println(strings.Repeat("-", 44))

	if replicas > 1 {
		for _, d := range dts {
			vv := md.NewVelocityVerlet(d, cfg.Field(), cfg.Box())
			vv.Workers = cfg.Workers
			vv.ValidateState = cfg.ValidateState

			ens := md.NewEnsemble(vv, func(seed int64) *md.System {
				c := *cfg
				c.Seed = seed
				return c.NewSystem()
			}, replicas, cfg.Seed)

			results, err := ens.Run(context.Background(), sweepSteps)
			if err != nil {
				fmt.Printf("%-10.4g  error: %v\n", d, err)
				continue
			}

			drift, hits := 0.0, 0
			for _, r := range results {
				drift += r.EnergyDrift
				hits += r.WallHits
			}
			drift /= float64(len(results))
			fmt.Printf("%-10.4g  %-12.2e  %-10d  ok\n", d, drift, hits)
		}
		return nil
	}

	points := analysis.TimestepSweep(context.Background(), dts, sweepSteps,
		func(d float64) (*md.System, *md.VelocityVerlet) {
			c := *cfg
			c.Dt = d
			return c.NewSystem(), c.NewIntegrator()
		})

	for _, p := range points {
		status := "ok"
		if p.Err != nil {
			status = p.Err.Error()
		}
		fmt.Printf("%-10.4g  %-12.2e  %-10d  %s\n", p.Dt, p.Drift, p.WallHits, status)
	}
	return nil
}

func initConfigFile(cmd *cobra.Command, args []string) error {
	path := "mdsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if scenario.Name != "" {
		fmt.Printf("scenario: %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	outcomes, err := automation.RunScenario(context.Background(), scenario, st)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tRUN\tSTEPS\tWALL_HITS\tDRIFT\tTIME")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2e\t%v\n",
			o.Label, o.RunID, o.Steps, o.WallHits, o.Drift, o.Elapsed)
	}
	return w.Flush()
}

func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func tuneInitialConditions(cmd *cobra.Command, args []string) error {
	name := "demo"
	if len(args) > 0 {
		name = args[0]
	}

	base := config.GetPreset(name)
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	var names []string
	var ranges [][]float64

	speeds, err := parseFloats(speedGrid)
	if err != nil {
		return err
	}
	if len(speeds) > 0 {
		names = append(names, "max_speed")
		ranges = append(ranges, speeds)
	}

	spacings, err := parseFloats(spacingGrid)
	if err != nil {
		return err
	}
	if len(spacings) > 0 {
		names = append(names, "spacing")
		ranges = append(ranges, spacings)
	}

	if len(names) == 0 {
		return fmt.Errorf("nothing to tune: provide --max-speeds or --spacings")
	}

	fmt.Printf("tuning %s toward T=%.3f (%d steps per evaluation)\n", name, targetTemp, tuneSteps)

	evals := 0
	search := optim.NewGridSearch(names, ranges)
	params, score := search.Search(context.Background(),
		func(ctx context.Context, p map[string]float64) (float64, error) {
			cfg := *base
			if v, ok := p["max_speed"]; ok {
				cfg.MaxSpeed = v
			}
			if v, ok := p["spacing"]; ok {
				cfg.Spacing = v
			}
			if err := cfg.Validate(); err != nil {
				return 0, err
			}

			vv := cfg.NewIntegrator()
			temp := metrics.NewMeanTemperature()
			vv.AddMetric(temp)

			result, err := vv.Run(ctx, cfg.NewSystem(), tuneSteps)
			if err != nil {
				return 0, err
			}
			evals++

			return math.Abs(result.Metrics[temp.Name()] - targetTemp), nil
		})

	if params == nil {
		return fmt.Errorf("no viable parameter combination")
	}

	fmt.Printf("evaluated %d combinations\n", evals)
	fmt.Println("best parameters:")
	for _, pname := range names {
		fmt.Printf("  %s: %g\n", pname, params[pname])
	}
	fmt.Printf("temperature error: %.4f\n", score)
	return nil
}
