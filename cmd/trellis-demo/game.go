package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/trellis-ecs/trellis/ecs"
)

const (
	screenWidth  = 960
	screenHeight = 540

	// stepsPerFrame keeps the fixed physics timestep decoupled from the
	// display rate.
	stepsPerFrame = 16

	worldScale = 2.5
)

// game adapts the simulation to ebiten's run loop.
type game struct {
	sim *simulation
}

// runWindowed opens an ebiten window rendering the point masses.
func (s *simulation) runWindowed() error {
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("trellis-demo")
	return ebiten.RunGame(&game{sim: s})
}

func (g *game) Update() error {
	for i := 0; i < stepsPerFrame; i++ {
		g.sim.step()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	positions := ecs.Components[Position](g.sim.alloc)

	for _, id := range g.sim.seed.masses {
		pos := positions.ByID(id)
		if pos == nil {
			continue
		}
		x := float32(pos.X*worldScale) + 40
		y := float32(pos.Y*worldScale) + screenHeight/2
		vector.DrawFilledCircle(screen, x, y, 3, color.RGBA{R: 0xe8, G: 0xa8, B: 0x3c, A: 0xff}, true)
	}

	stats := g.sim.alloc.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"entities %d/%d  tps %0.1f", stats.Entities, stats.MaxEntities, ebiten.ActualTPS()))
}

func (g *game) Layout(int, int) (int, int) {
	return screenWidth, screenHeight
}
