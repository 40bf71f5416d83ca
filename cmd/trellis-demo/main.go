// Command trellis-demo drives a spring-damper point mass simulation through
// the Trellis container, either interactively with an ebiten window or
// headless for a fixed number of steps.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trellis-ecs/trellis/config"
	"github.com/trellis-ecs/trellis/ecs"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		headless   bool
		steps      int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "trellis-demo",
		Short:         "Spring-damper point mass demo on the Trellis container",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if steps > 0 {
				cfg.Demo.Steps = steps
			}

			log := zap.NewNop()
			if verbose {
				dev, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				log = dev
			}
			defer log.Sync() //nolint:errcheck

			sim := newSimulation(cfg, log)
			if headless {
				return sim.runHeadless(cmd.OutOrStdout())
			}
			return sim.runWindowed()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().BoolVar(&headless, "headless", false, "run fixed steps without a window")
	cmd.Flags().IntVar(&steps, "steps", 0, "override the number of headless steps")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic logging")
	return cmd
}

// simulation owns the allocator and the demo systems.
type simulation struct {
	cfg   config.Config
	alloc *ecs.Allocator

	seed      *seedSystem
	spring    *springSystem
	integrate *integrateSystem
}

func newSimulation(cfg config.Config, log *zap.Logger) *simulation {
	alloc := ecs.NewWithCapacity(cfg.MaxEntities, ecs.WithLogger(log))

	seed := &seedSystem{
		pointMasses: cfg.Demo.PointMasses,
		stiffness:   cfg.Demo.SpringStiffness,
		damping:     cfg.Demo.SpringDamping,
	}
	spring := &springSystem{}
	integrate := &integrateSystem{spring: spring, timestep: cfg.Demo.Timestep}

	alloc.RegisterSystem(seed)
	alloc.RegisterSystem(spring)
	alloc.RegisterSystem(integrate)
	alloc.InitializeSystems()

	return &simulation{
		cfg:       cfg,
		alloc:     alloc,
		seed:      seed,
		spring:    spring,
		integrate: integrate,
	}
}

// step advances the simulation by one fixed timestep.
func (s *simulation) step() {
	s.spring.Update(s.alloc)
	s.integrate.Update(s.alloc)
}

// runHeadless advances a fixed number of steps and prints a digest.
func (s *simulation) runHeadless(out io.Writer) error {
	for i := 0; i < s.cfg.Demo.Steps; i++ {
		s.step()
	}

	stats := s.alloc.Stats()
	fmt.Fprintf(out, "steps: %d\n", s.cfg.Demo.Steps)
	fmt.Fprintf(out, "entities: %d / %d\n", stats.Entities, stats.MaxEntities)
	fmt.Fprintf(out, "signatures: %d queries: %d systems: %d\n",
		stats.Signatures, stats.Queries, stats.Systems)

	positions := ecs.Components[Position](s.alloc)
	var meanX, meanY float64
	for _, id := range s.seed.masses {
		if pos := positions.ByID(id); pos != nil {
			meanX += pos.X
			meanY += pos.Y
		}
	}
	if n := float64(len(s.seed.masses)); n > 0 {
		fmt.Fprintf(out, "mean position: (%.3f, %.3f)\n", meanX/n, meanY/n)
	}
	return nil
}
