// cmd/arena/run.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/host"
	"github.com/opd-ai/go-arena/pkg/input"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/steering"
	"github.com/opd-ai/go-arena/pkg/validation"
)

type runOptions struct {
	ticks          int
	script         string
	loop           bool
	parallel       bool
	skipDegenerate bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless session and print the final poses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Simulation.Parallel = opts.parallel
			}
			if cmd.Flags().Changed("skip-degenerate") {
				cfg.Simulation.SkipDegenerate = opts.skipDegenerate
			}
			if root.logLevel != "" {
				cfg.Logging.Level = root.logLevel
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSession(ctx, cmd, cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", 600, "number of fixed ticks to run")
	cmd.Flags().StringVarP(&opts.script, "script", "s", "", `player input script, e.g. "thrust:60,thrust+left:30"`)
	cmd.Flags().BoolVar(&opts.loop, "loop", false, "repeat the input script")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "steer non-player bodies concurrently")
	cmd.Flags().BoolVar(&opts.skipDegenerate, "skip-degenerate", false, "keep a body's pose when its target direction is undefined")
	return cmd
}

func runSession(ctx context.Context, cmd *cobra.Command, cfg *config.ArenaConfig, opts *runOptions) error {
	if err := validation.ValidateTickCount(opts.ticks); err != nil {
		return err
	}

	script, err := input.Parse(opts.script)
	if err != nil {
		return err
	}
	script.Loop = opts.loop

	logger := logging.NewLoggerWithLevel(logging.ParseLevel(cfg.Logging.Level))
	defer func() { _ = logger.Sync() }()
	ctx = logging.WithCorrelationID(ctx, logging.GenerateCorrelationID())

	world, err := host.NewWorldFromConfig(cfg)
	if err != nil {
		return err
	}

	bus := event.NewEventBus()
	clamps := 0
	bus.Subscribe(event.PlayerClamped, func(event.Event) { clamps++ })

	sim, err := engine.NewSimulation(engine.ConfigFromArena(cfg),
		engine.WithLogger(logger),
		engine.WithEventBus(bus),
	)
	if err != nil {
		return err
	}

	runner := host.NewRunner(sim, world, script, host.SettingsFromArena(cfg), logger)

	logger.Info(ctx, "session started",
		"ticks", opts.ticks,
		"bodies", world.Len(),
		"time_step", cfg.TimeStep,
		"parallel", cfg.Simulation.Parallel,
	)
	completed, err := runner.Run(ctx, uint64(opts.ticks))
	if err != nil {
		return fmt.Errorf("after %d ticks: %w", completed, err)
	}

	poses := world.Poses()
	checksum := engine.Checksum(poses)
	logger.Info(ctx, "session finished",
		"ticks", sim.CurrentTick(),
		"failed_ticks", runner.Failures(),
		"player_clamps", clamps,
		"checksum", fmt.Sprintf("%016x", checksum),
	)

	printPoses(cmd, world, poses)
	fmt.Fprintf(cmd.OutOrStdout(), "ticks %d\n", sim.CurrentTick())
	fmt.Fprintf(cmd.OutOrStdout(), "checksum %016x\n", checksum)
	return nil
}

func printPoses(cmd *cobra.Command, world *host.World, poses steering.Poses) {
	type row struct {
		name string
		pose steering.Pose
	}
	rows := make([]row, 0, len(poses))
	for id, pose := range poses {
		body, _ := world.Body(id)
		rows = append(rows, row{name: body.Name, pose: pose})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	for _, r := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", r.name, r.pose)
	}
}
