package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/servokit/servokit/command"
	"github.com/servokit/servokit/internal/config"
	"github.com/servokit/servokit/internal/tui"
	"github.com/servokit/servokit/loop"
	"github.com/servokit/servokit/metrics"
	"github.com/servokit/servokit/pid"
	"github.com/servokit/servokit/plant"
	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/record"
	"github.com/servokit/servokit/units"
)

var (
	configFile string
	preset     string
	debug      bool

	period      float64
	duration    float64
	kp          float64
	ki          float64
	kd          float64
	tolerance   float64
	maxVel      float64
	maxAccel    float64
	outputLimit float64
	goalPos     float64
	goalVel     float64
	mass        float64
	damping     float64
	forceLimit  float64
	initPos     float64

	csvPath  string
	jsonPath string
	noPlot   bool
	realtime bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "servokit",
		Short: "profiled position control lab",
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [mechanism]",
		Short: "run a profiled move against a simulated mechanism",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMove,
	}
	addTuningFlags(runCmd)
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write samples to a csv file")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the run to a json file")
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the ascii plots")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "tick on the wall clock instead of stepping offline")

	liveCmd := &cobra.Command{
		Use:   "live [mechanism]",
		Short: "run a profiled move with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addTuningFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [mechanism]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "servokit.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTuningFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset configuration")
	cmd.Flags().Float64Var(&period, "period", config.DefaultPeriod, "loop period in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "run duration in seconds")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "goal tolerance in meters")
	cmd.Flags().Float64Var(&maxVel, "max-vel", config.DefaultMaxVel, "profile velocity limit in m/s")
	cmd.Flags().Float64Var(&maxAccel, "max-accel", config.DefaultMaxAccel, "profile acceleration limit in m/s²")
	cmd.Flags().Float64Var(&outputLimit, "output-limit", 0, "clamp controller output to ±limit")
	cmd.Flags().Float64Var(&goalPos, "goal", config.DefaultGoal, "goal position in meters")
	cmd.Flags().Float64Var(&goalVel, "goal-vel", 0, "goal velocity in m/s")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "plant mass in kg")
	cmd.Flags().Float64Var(&damping, "damping", config.DefaultDamping, "plant damping in n·s/m")
	cmd.Flags().Float64Var(&forceLimit, "force-limit", 0, "plant force limit in newtons")
	cmd.Flags().Float64Var(&initPos, "init-pos", 0, "initial position in meters")
}

// buildConfig resolves the run settings: defaults, then preset, then config
// file, then any flags the user set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	mechanism := cfg.Mechanism
	if len(args) > 0 {
		mechanism = args[0]
	}

	if preset != "" {
		p := config.GetPreset(mechanism, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(mechanism))
		}
		c := *p
		cfg = &c
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if loaded.Mechanism != "" {
			mechanism = loaded.Mechanism
		}
	}
	if len(args) > 0 {
		mechanism = args[0]
	}
	cfg.Mechanism = mechanism

	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("period") {
		cfg.Period = period
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("kp") {
		cfg.Controller.Kp = kp
	}
	if cmd.Flags().Changed("ki") {
		cfg.Controller.Ki = ki
	}
	if cmd.Flags().Changed("kd") {
		cfg.Controller.Kd = kd
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Controller.Tolerance = tolerance
	}
	if cmd.Flags().Changed("max-vel") {
		cfg.Controller.MaxVelocity = maxVel
	}
	if cmd.Flags().Changed("max-accel") {
		cfg.Controller.MaxAcceleration = maxAccel
	}
	if cmd.Flags().Changed("output-limit") {
		cfg.Controller.OutputLimit = outputLimit
	}
	if cmd.Flags().Changed("goal") {
		cfg.Goal.Position = goalPos
	}
	if cmd.Flags().Changed("goal-vel") {
		cfg.Goal.Velocity = goalVel
	}
	if cmd.Flags().Changed("mass") {
		cfg.Plant.Mass = mass
	}
	if cmd.Flags().Changed("damping") {
		cfg.Plant.Damping = damping
	}
	if cmd.Flags().Changed("force-limit") {
		cfg.Plant.ForceLimit = forceLimit
	}
	if cmd.Flags().Changed("init-pos") {
		cfg.Plant.InitialPosition = initPos
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func runMove(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger()

	plnt, err := plant.NewSecondOrder(cfg.Plant.Mass, cfg.Plant.Damping)
	if err != nil {
		return err
	}
	plnt.SetForceLimit(cfg.Plant.ForceLimit)
	plnt.Reset(units.Meters(cfg.Plant.InitialPosition), units.MetersPerSecond(cfg.Plant.InitialVelocity))

	tick := cfg.TickPeriod()
	ctrl := pid.NewProfiled(cfg.Controller.Kp, cfg.Controller.Ki, cfg.Controller.Kd, cfg.Constraints(), tick)
	ctrl.SetTolerance(units.Meters(cfg.Controller.Tolerance))
	if cfg.Controller.OutputLimit > 0 {
		ctrl.PID().SetOutputRange(-cfg.Controller.OutputLimit, cfg.Controller.OutputLimit)
	}
	if cfg.Controller.IntegralLimit > 0 {
		ctrl.PID().SetIntegralLimit(cfg.Controller.IntegralLimit)
	}

	goal := cfg.GoalState()
	rec := record.New()
	var t float64
	sink := func(output float64, setpoint profile.State) {
		rec.Add(record.Sample{
			Time:        t,
			Measurement: plnt.Position(),
			Setpoint:    setpoint,
			Goal:        goal,
			Output:      output,
		})
		plnt.Step(output, tick)
		t += cfg.Period
	}

	move := command.NewFixedGoal(ctrl, plnt.Position, goal, sink, command.Requirement(cfg.Mechanism))
	move.SetName(cfg.Mechanism)
	wrapped := command.Until(move, ctrl.AtGoal)

	tr := profile.NewTrapezoid(cfg.Constraints())
	start := profile.State{
		Position: units.Meters(cfg.Plant.InitialPosition),
		Velocity: units.MetersPerSecond(cfg.Plant.InitialVelocity),
	}
	fmt.Printf("running %s to %s...\n", cfg.Mechanism, goal.Position)
	fmt.Printf("profile time: %.2fs\n", tr.TotalTime(start, goal).Seconds())

	began := time.Now()
	finished := false
	if realtime {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, cfg.RunDuration())
		defer cancel()

		err := loop.New(tick, loop.WithLogger(log)).Run(ctx, wrapped)
		finished = err == nil
		if err != nil && ctx.Err() == nil {
			return err
		}
	} else {
		maxTicks := int(cfg.Duration / cfg.Period)
		wrapped.Initialize()
		for i := 0; i < maxTicks; i++ {
			wrapped.Execute()
			if wrapped.IsFinished() {
				wrapped.End(false)
				finished = true
				break
			}
		}
		if !finished {
			wrapped.End(true)
		}
	}
	elapsed := time.Since(began)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("samples: %d\n", rec.Len())
	fmt.Printf("final position: %s (error %s)\n", plnt.Position(), goal.Position-plnt.Position())
	if finished {
		fmt.Println("settled at goal")
	} else {
		fmt.Printf("did not settle within %.1fs\n", cfg.Duration)
	}

	effort := &metrics.ControlEffort{}
	overshoot := &metrics.Overshoot{}
	settling := metrics.NewSettlingTime(units.Meters(cfg.Controller.Tolerance))
	metrics.Apply(rec.Samples(), effort, overshoot, settling)

	fmt.Println("\nmetrics:")
	for _, m := range []metrics.Metric{effort, overshoot, settling} {
		fmt.Printf("  %s: %.4f\n", m.Name(), m.Value())
	}

	if !noPlot {
		plotRun(rec.Samples())
	}

	if csvPath != "" {
		if err := exportCSV(csvPath, rec.Samples()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}
	if jsonPath != "" {
		run := record.Run{Name: cfg.Mechanism, Period: cfg.Period, Samples: rec.Samples()}
		if err := exportJSON(jsonPath, run); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonPath)
	}
	return nil
}

func plotRun(samples []record.Sample) {
	if len(samples) < 2 {
		return
	}
	setpoints := make([]float64, len(samples))
	positions := make([]float64, len(samples))
	outputs := make([]float64, len(samples))
	for i, s := range samples {
		setpoints[i] = s.Setpoint.Position.Meters()
		positions[i] = s.Measurement.Meters()
		outputs[i] = s.Output
	}

	fmt.Println()
	fmt.Println(asciigraph.PlotMany(
		[][]float64{setpoints, positions},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("setpoint vs measurement (m)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(outputs,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("output (n)"),
	))
}

func exportCSV(path string, samples []record.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return record.WriteCSV(f, samples)
}

func exportJSON(path string, run record.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return record.WriteJSON(f, run)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := tui.New(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, mech := range config.ListMechanisms() {
			fmt.Printf("%s:\n", mech)
			for _, p := range config.ListPresets(mech) {
				fmt.Printf("  %s\n", p)
			}
		}
		return nil
	}

	mech := args[0]
	presets := config.ListPresets(mech)
	if len(presets) == 0 {
		fmt.Printf("no presets for mechanism: %s\n", mech)
		return nil
	}
	fmt.Printf("presets for %s:\n", mech)
	for _, p := range presets {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
