package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/hoopsim/internal/analysis"
	"github.com/san-kum/hoopsim/internal/config"
	"github.com/san-kum/hoopsim/internal/experiment"
	"github.com/san-kum/hoopsim/internal/export"
	"github.com/san-kum/hoopsim/internal/integrators"
	"github.com/san-kum/hoopsim/internal/storage"
	"github.com/san-kum/hoopsim/internal/viz"
)

var (
	dataDir string
	envFile string
	verbose bool

	// simulation flags shared by run, compare and live
	configFile   string
	preset       string
	environment  string
	gravity      float64
	radius       float64
	dt           float64
	duration     float64
	stepsPerTick int
	editPolicy   string

	hz        float64
	parallel  bool
	frameRate int
	theme     string

	plotField string
	unwrapped bool
	outFile   string

	log = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hoopsim",
		Short:         "bead-on-a-hoop physics lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(log)

			if err := config.LoadEnv(envFile); err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				dataDir = config.DataDir(dataDir)
			}
			log.Debug("environment loaded", "env", envFile, "data", dataDir)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hoopsim", "data directory (or "+config.EnvDataDir+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with HOOPSIM_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the hoop headless and store the records",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().Float64Var(&hz, "hz", 0, "ticks per second, 0 for as fast as possible")
	runCmd.Flags().BoolVar(&parallel, "parallel", false, "step bodies concurrently")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded quantity per body",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "total", "theta, omega, speed, kinetic, potential, total or centripetal")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "θ-ω phase portrait per body",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().BoolVar(&unwrapped, "unwrapped", false, "plot θ without folding into (-π, π]")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run records to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and records to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id]",
		Short: "export run records to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXLSX,
	}
	exportXLSXCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.xlsx)")

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "write a one-page PDF run sheet",
		Args:  cobra.ExactArgs(1),
		RunE:  writeReport,
	}
	reportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.pdf)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and gravity environments",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)
	configCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default hoopsim.yaml)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same initial conditions",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive hoop in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 50, "frames per second")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeLab.Name, "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, exportCSVCmd, exportJSONCmd, exportXLSXCmd, reportCmd, presetsCmd, configCmd, compareCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset: "+strings.Join(config.ListPresets(), ", "))
	cmd.Flags().StringVar(&environment, "environment", "", "gravity environment, see presets")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravitational acceleration (m/s^2)")
	cmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "hoop radius (m)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	cmd.Flags().IntVar(&stepsPerTick, "steps", config.DefaultStepsPerFrame, "physics steps per tick")
	cmd.Flags().StringVar(&editPolicy, "edit-policy", config.DefaultEditPolicy, "free or halted")
}

// resolveConfig layers preset, config file, environment variables and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if environment != "" {
		env, ok := config.GetEnvironment(environment)
		if !ok {
			return nil, fmt.Errorf("unknown environment: %s", environment)
		}
		cfg.Gravity = env.Gravity
	}

	flags := cmd.Flags()
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("steps") {
		cfg.StepsPerFrame = stepsPerTick
	}
	if flags.Changed("edit-policy") {
		cfg.EditPolicy = editPolicy
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug("config resolved", "preset", cfg.Preset, "gravity", cfg.Gravity, "radius", cfg.Radius, "dt", cfg.Dt, "balls", len(cfg.Balls))
	return cfg, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out, err := exp.Run(ctx, experiment.RunOptions{Hz: hz, Parallel: parallel})
	if err != nil {
		return err
	}

	runID, err := st.Save(out.Meta, out.Records)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", out.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("records: %d\n", len(out.Records))
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  BODY\tENERGY\tDRIFT\tPEAK SPEED\tREVOLUTIONS")
	for _, b := range out.Meta.Bodies {
		m := out.Meta.Metrics
		fmt.Fprintf(w, "  %s\t%.6f\t%.2e\t%.4f\t%.0f\n", b.Name,
			m[b.Name+".energy"], m[b.Name+".energy_drift"], m[b.Name+".peak_speed"], m[b.Name+".revolutions"])
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tGRAVITY\tBODIES")

	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.2f\t%d\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Gravity,
			len(run.Bodies),
		)
	}

	return w.Flush()
}

func recordField(name string) (func(storage.Record) float64, error) {
	switch name {
	case "theta":
		return func(r storage.Record) float64 { return r.Theta }, nil
	case "omega":
		return func(r storage.Record) float64 { return r.Omega }, nil
	case "speed":
		return func(r storage.Record) float64 { return r.Speed }, nil
	case "kinetic":
		return func(r storage.Record) float64 { return r.Kinetic }, nil
	case "potential":
		return func(r storage.Record) float64 { return r.Potential }, nil
	case "total":
		return func(r storage.Record) float64 { return r.Total }, nil
	case "centripetal":
		return func(r storage.Record) float64 { return r.Centripetal }, nil
	}
	return nil, fmt.Errorf("unknown field: %s", name)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	field, err := recordField(plotField)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(records))

	order, groups := storage.ByBody(records)
	for _, body := range order {
		rs := groups[body]
		data := make([]float64, len(rs))
		for i, r := range rs {
			data[i] = field(r)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: %s vs time", body, plotField)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("phase space plot: %s\n\n", meta.ID)
	order, _ := storage.ByBody(records)
	for _, body := range order {
		p := analysis.PortraitOf(records, body, !unwrapped)
		minX, maxX, minY, maxY := p.Bounds()
		fmt.Printf("%s  θ %.2f..%.2f rad, ω %.2f..%.2f rad/s\n", body, minX, maxX, minY, maxY)
		fmt.Print(p.ASCII(70, 20))
		fmt.Println()
	}
	fmt.Println("Legend: . = early, o = middle, • = late")
	return nil
}

// output returns the destination for an export; "" means stdout.
func output(path string) (*os.File, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func loadRun(runID string) (*storage.RunMetadata, []storage.Record, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, records, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to export")
	}
	w, closeFn, err := output(outFile)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, records); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output(outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, records); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outFile
	if path == "" {
		path = args[0] + ".xlsx"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, meta, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func writeReport(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outFile
	if path == "" {
		path = args[0] + ".pdf"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteReport(f, meta, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBALLS\tGRAVITY\tEDIT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		balls := make([]string, len(p.Balls))
		for i, b := range p.Balls {
			balls[i] = fmt.Sprintf("%s(m=%.2f θ=%.2f ω=%.1f)", b.Name, b.Mass, b.Theta, b.Omega)
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", name, strings.Join(balls, " "), p.Gravity, p.EditPolicy)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ENVIRONMENT\tGRAVITY\tDESCRIPTION")
	for _, e := range config.Environments {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", e.Name, e.Gravity, e.Description)
	}
	return w.Flush()
}

// writeConfig saves the layered configuration so it can be edited and fed
// back with --config.
func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	path := outFile
	if path == "" {
		path = "hoopsim.yaml"
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("config written to %s\n", path)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	results, err := experiment.Compare(cmd.Context(), cfg, names)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.4f, duration=%.1fs, g=%.2f)\n\n", cfg.Dt, cfg.Duration, cfg.Gravity)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tBODY\tSTEPS\tFINAL θ\tFINAL ω\tENERGY DRIFT\tPEAK SPEED\tΔ REF")
	for _, r := range results {
		drift := fmt.Sprintf("%.2e", r.EnergyDrift)
		if r.Failed {
			drift = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6f\t%.6f\t%s\t%.4f\t%.2e\n",
			r.Integrator, r.Body, r.Steps, r.FinalTheta, r.FinalOmega, drift, r.PeakSpeed, r.Deviation)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.Scene(), viz.Options{
		Dt:            cfg.Dt,
		FPS:           frameRate,
		StepsPerFrame: stepsFromFlag(cmd, cfg),
		TickRate:      cfg.FrameRate,
		Theme:         theme,
		Export:        saveRecording(exp),
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

// stepsFromFlag leaves pacing to the live view unless --steps or the
// config asked for something else.
func stepsFromFlag(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("steps") || cfg.StepsPerFrame > config.DefaultStepsPerFrame {
		return cfg.StepsPerFrame
	}
	return 0
}

// saveRecording stores a live recording as a run.
func saveRecording(exp *experiment.Experiment) func([]storage.Record) (string, error) {
	return func(records []storage.Record) (string, error) {
		st, err := openStore()
		if err != nil {
			return "", err
		}
		meta := exp.Metadata()
		meta.Duration = records[len(records)-1].Time
		runID, err := st.Save(meta, records)
		if err != nil {
			return "", err
		}
		path := st.RecordsPath(runID)
		if rel, err := filepath.Rel(".", path); err == nil {
			path = rel
		}
		log.Debug("recording exported", "run", runID, "records", len(records))
		return path, nil
	}
}
