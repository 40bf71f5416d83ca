package main

import (
	"math"

	"github.com/trellis-ecs/trellis/ecs"
)

// ==============================================
// Demo Components
// ==============================================

// Position is a 2D position in world units.
type Position struct{ X, Y float64 }

// Velocity is a 2D velocity in world units per second.
type Velocity struct{ X, Y float64 }

// Acceleration accumulates per-step force over mass.
type Acceleration struct{ X, Y float64 }

// SpringDamper parameterizes the spring force carried by an edge entity.
// Both constants should be negative: K pulls the endpoints together, C
// opposes their relative velocity.
type SpringDamper struct {
	K       float64
	C       float64
	RestLen float64
}

// appliedForce is a force record bound for one point mass. Records live in
// the frame's entity component buffer and are drained by the integrator.
type appliedForce struct {
	Target ecs.EntityID
	FX, FY float64
}

// ==============================================
// Seed System
// ==============================================

// seedSystem creates the point masses and the spring edges connecting
// neighbors into a chain.
type seedSystem struct {
	pointMasses int
	stiffness   float64
	damping     float64

	masses []ecs.EntityID
}

func (s *seedSystem) RegisterComponents(a *ecs.Allocator) {
	ecs.Register[Position](a)
	ecs.Register[Velocity](a)
	ecs.Register[Acceleration](a)
	ecs.Register[SpringDamper](a)
}

func (s *seedSystem) RegisterQueries(*ecs.Allocator) {}

func (s *seedSystem) Initialize(a *ecs.Allocator) {
	s.masses = s.masses[:0]
	for i := 0; i < s.pointMasses; i++ {
		id := a.AddEntity()
		if id == ecs.InvalidEntity {
			break
		}
		direction := 1.0
		if i%2 == 0 {
			direction = -1.0
		}
		ecs.Add(a, id, Position{X: 3.0 * float64(i), Y: 0})
		ecs.Add(a, id, Velocity{X: 0, Y: direction * 10.0})
		ecs.Add(a, id, Acceleration{})
		s.masses = append(s.masses, id)
	}

	for i := 0; i+1 < len(s.masses); i++ {
		edge := a.AddEdge(s.masses[i], s.masses[i+1])
		if edge == ecs.InvalidEntity {
			break
		}
		ecs.Add(a, edge, SpringDamper{K: s.stiffness, C: s.damping, RestLen: 3.0})
	}
}

// ==============================================
// Spring System
// ==============================================

// springSystem walks the spring edges and, for every edge whose two endpoints
// are both live (flag TRANSITIVE), emits one force record per endpoint into
// the frame buffer. Edges with an invalidated endpoint emit nothing.
type springSystem struct {
	springQuery ecs.QueryID
	bufEntity   ecs.EntityID
}

func (s *springSystem) RegisterComponents(a *ecs.Allocator) {
	ecs.Register[SpringDamper](a)
}

func (s *springSystem) RegisterQueries(a *ecs.Allocator) {
	s.springQuery = ecs.AddQuery2[ecs.Edge, SpringDamper](a)
}

func (s *springSystem) Initialize(a *ecs.Allocator) {
	// Two records per spring per step is the worst case.
	capacity := 2*a.QueryEntities(s.springQuery).Len() + 16
	s.bufEntity = a.AddEntityComponentBuffer(capacity, ecs.Spec[appliedForce]())
}

// Update computes spring-damper forces and queues them as buffer records.
func (s *springSystem) Update(a *ecs.Allocator) {
	buf := a.EntityComponentBufferFor(s.bufEntity)
	if buf == nil {
		return
	}

	springs := ecs.Components[SpringDamper](a)
	positions := ecs.Components[Position](a)
	velocities := ecs.Components[Velocity](a)

	a.QueryEntities(s.springQuery).Each(func(edgeEntity ecs.EntityID) bool {
		edge := a.GetEdge(edgeEntity)
		spring := springs.ByID(edgeEntity)
		if spring == nil || edge.Flag != ecs.EdgeTransitive {
			return true
		}
		posA := positions.ByID(edge.NodeA)
		posB := positions.ByID(edge.NodeB)
		velA := velocities.ByID(edge.NodeA)
		velB := velocities.ByID(edge.NodeB)
		if posA == nil || posB == nil || velA == nil || velB == nil {
			return true
		}

		dx := posA.X - posB.X
		dy := posA.Y - posB.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			return true
		}
		nx := dx / dist
		ny := dy / dist

		stretch := dist - spring.RestLen
		relVel := (velA.X-velB.X)*nx + (velA.Y-velB.Y)*ny
		magnitude := spring.K*stretch + spring.C*relVel

		s.emit(buf, edge.NodeA, magnitude*nx, magnitude*ny)
		s.emit(buf, edge.NodeB, -magnitude*nx, -magnitude*ny)
		return true
	})
}

func (s *springSystem) emit(buf *ecs.EntityComponentBuffer, target ecs.EntityID, fx, fy float64) {
	record := buf.AddEntity()
	if record == ecs.InvalidEntity {
		return
	}
	ecs.Update(buf, record, appliedForce{Target: target, FX: fx, FY: fy})
}

// ==============================================
// Integration System
// ==============================================

// integrateSystem drains the force buffer into accelerations, then runs one
// semi-implicit Euler step over every point mass.
type integrateSystem struct {
	bodyQuery ecs.QueryID
	spring    *springSystem
	timestep  float64
}

func (s *integrateSystem) RegisterComponents(a *ecs.Allocator) {
	ecs.Register[Position](a)
	ecs.Register[Velocity](a)
	ecs.Register[Acceleration](a)
}

func (s *integrateSystem) RegisterQueries(a *ecs.Allocator) {
	s.bodyQuery = ecs.AddQuery3[Position, Velocity, Acceleration](a)
}

func (s *integrateSystem) Initialize(*ecs.Allocator) {}

// Update applies buffered forces and advances the simulation one timestep.
func (s *integrateSystem) Update(a *ecs.Allocator) {
	accelerations := ecs.Components[Acceleration](a)

	if buf := a.EntityComponentBufferFor(s.spring.bufEntity); buf != nil {
		forces := ecs.Components[appliedForce](buf)
		for _, record := range forces.UIDs() {
			force := forces.ByID(record)
			if force == nil {
				continue
			}
			if acc := accelerations.ByID(force.Target); acc != nil {
				acc.X += force.FX
				acc.Y += force.FY
			}
		}
		buf.Clear()
	}

	positions := ecs.Components[Position](a)
	velocities := ecs.Components[Velocity](a)

	a.QueryEntities(s.bodyQuery).Each(func(id ecs.EntityID) bool {
		pos := positions.ByID(id)
		vel := velocities.ByID(id)
		acc := accelerations.ByID(id)
		if pos == nil || vel == nil || acc == nil {
			return true
		}
		vel.X += acc.X * s.timestep
		vel.Y += acc.Y * s.timestep
		pos.X += vel.X * s.timestep
		pos.Y += vel.Y * s.timestep
		acc.X = 0
		acc.Y = 0
		return true
	})
}
