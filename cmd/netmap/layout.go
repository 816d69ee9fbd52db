package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
	"github.com/dd0wney/cluso-netmap/pkg/metrics"
	"github.com/dd0wney/cluso-netmap/pkg/visualization"
)

// layoutCmd computes a stabilized layout and writes it in the saved
// positions format, giving reset a layout to return to.
func layoutCmd() *cobra.Command {
	var (
		out        string
		iterations int
		seed       uint64
		fresh      bool
		width      float64
		height     float64
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute and export node positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := cmd.Context()
			loader, err := newLoader(ctx, cfg, logger)
			if err != nil {
				return err
			}

			reg := metrics.DefaultRegistry()
			start := time.Now()
			bundle, err := loader.Load(ctx)
			if err != nil {
				reg.RecordLoad(cfg.Data.Source, time.Since(start), err, 0, 0)
				return err
			}

			enc, err := graph.NewEncoder(cfg.Encoding)
			if err != nil {
				return err
			}
			model, err := graph.Build(bundle, enc)
			if err != nil {
				return err
			}
			reg.RecordLoad(cfg.Data.Source, time.Since(start), nil, model.NodeCount(), model.EdgeCount())

			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			placement, err := visualization.NewPlacement(cfg.Physics, rng)
			if err != nil {
				return err
			}

			savedPos := model.SavedPositions()
			if fresh {
				savedPos = nil
			}

			sim := visualization.NewSimulation(model.AllNodes(), visualization.LinksOf(model),
				visualization.ParamsFromConfig(cfg.Physics), logger)
			sim.Initialize(savedPos, placement)
			if iterations <= 0 {
				iterations = cfg.Physics.StabilizationIterations
			}
			steps := sim.Stabilize(iterations)
			reg.RecordStabilization(steps)

			positions := sim.Positions()
			if width > 0 && height > 0 {
				positions = visualization.Normalize(positions, width, height, cfg.Viewport.FitMargin)
			}

			w := os.Stdout
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			exported := make(map[int]geom.Point, len(positions))
			for id, p := range positions {
				exported[int(id)] = p
			}
			if err := dataset.WritePositions(w, exported); err != nil {
				return fmt.Errorf("write positions: %w", err)
			}

			logger.Info("layout exported",
				logging.Count(len(positions)),
				logging.Int("steps", steps),
				logging.Bool("stable", sim.Stable()),
				logging.String("out", out))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "output file (default stdout)")
	f.IntVar(&iterations, "iterations", 0, "stabilization steps (default from config)")
	f.Uint64Var(&seed, "seed", 0, "random seed for the initial placement")
	f.BoolVar(&fresh, "fresh", false, "ignore the saved positions file")
	f.Float64Var(&width, "width", 0, "rescale into a box of this width")
	f.Float64Var(&height, "height", 0, "rescale into a box of this height")
	return cmd
}
