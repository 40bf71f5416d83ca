package ecs

import (
	"reflect"
)

// ==============================================
// System Contract
// ==============================================

// System is an externally owned object that operates on the container. The
// container drives three lifecycle phases, in order, through
// Allocator.InitializeSystems; running a system's per-frame update is the
// caller's business, the container does not schedule.
type System interface {
	// RegisterComponents declares the component types the system will read
	// or write.
	RegisterComponents(a *Allocator)

	// RegisterQueries declares the archetype queries the system iterates.
	// The system keeps the returned query IDs; they are stable for the life
	// of the allocator.
	RegisterQueries(a *Allocator)

	// Initialize performs non-const setup: seeding entities, writing initial
	// component values, resolving owned buffer entities.
	Initialize(a *Allocator)
}

// ==============================================
// System Registry
// ==============================================

// SystemRegistry holds at most one system instance per concrete Go type.
// Systems run through the lifecycle phases in registration order.
type SystemRegistry struct {
	byType map[reflect.Type]System
	order  []System
}

// NewSystemRegistry creates an empty registry.
func NewSystemRegistry() *SystemRegistry {
	return &SystemRegistry{
		byType: make(map[reflect.Type]System),
	}
}

// Register adds sys and returns it. A nil system, or a second system of the
// same concrete type, is rejected with nil.
func (r *SystemRegistry) Register(sys System) System {
	if sys == nil {
		return nil
	}
	t := reflect.TypeOf(sys)
	if _, exists := r.byType[t]; exists {
		return nil
	}
	r.byType[t] = sys
	r.order = append(r.order, sys)
	return sys
}

// Len returns the number of registered systems.
func (r *SystemRegistry) Len() int {
	return len(r.order)
}

// RegisterComponents runs phase one on every system.
func (r *SystemRegistry) RegisterComponents(a *Allocator) {
	for _, sys := range r.order {
		sys.RegisterComponents(a)
	}
}

// RegisterQueries runs phase two on every system.
func (r *SystemRegistry) RegisterQueries(a *Allocator) {
	for _, sys := range r.order {
		sys.RegisterQueries(a)
	}
}

// Initialize runs phase three on every system.
func (r *SystemRegistry) Initialize(a *Allocator) {
	for _, sys := range r.order {
		sys.Initialize(a)
	}
}
