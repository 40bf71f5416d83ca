package ecs

import (
	"go.uber.org/zap"
)

// ==============================================
// Allocator Facade
// ==============================================

// Allocator is the public face of the container. It owns the entity pool,
// the component columns, the query index, and the system registry, and it
// keeps them consistent: every mutating operation writes the column first,
// then the entity archetype, then the query index, so a reader of the query
// index never sees an entity whose archetype claims a component that is not
// stored yet.
//
// The allocator does not enforce relationships between component values; it
// stores data and makes it cheap to add, look up, and remove.
type Allocator struct {
	maxEntities int
	entities    *EntityRegistry
	components  *ComponentRegistry
	systems     *SystemRegistry
	queries     *QueryIndex
	edgeQuery   QueryID
	log         *zap.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger installs a structured logger for diagnostic output. The
// default is a no-op logger; nothing in the public contract depends on log
// output.
func WithLogger(log *zap.Logger) Option {
	return func(a *Allocator) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an allocator with the default entity pool size.
func New(opts ...Option) *Allocator {
	return NewWithCapacity(DefaultMaxEntities, opts...)
}

// NewWithCapacity creates an allocator holding up to maxEntities entities.
// Requests above MetaMaxEntities are capped. The built-in edge component and
// the entity component buffer component are registered immediately, along
// with the edge query used for endpoint bookkeeping.
func NewWithCapacity(maxEntities int, opts ...Option) *Allocator {
	a := &Allocator{
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.entities = NewEntityRegistry(maxEntities)
	a.maxEntities = a.entities.MaxEntities()
	a.components = NewComponentRegistry(a.maxEntities)
	a.systems = NewSystemRegistry()
	a.queries = NewQueryIndex()

	Register[Edge](a)
	Register[EntityComponentBuffer](a)
	a.edgeQuery = AddQuery1[Edge](a)

	a.log.Debug("allocator created",
		zap.Int("max_entities", a.maxEntities))
	return a
}

// MaxEntities returns the entity pool size.
func (a *Allocator) MaxEntities() int {
	return a.maxEntities
}

// ==============================================
// Entities
// ==============================================

// AddEntity activates a new entity with an empty archetype and returns its
// ID, or InvalidEntity when the pool is exhausted.
func (a *Allocator) AddEntity() EntityID {
	id := a.entities.Add()
	if id == InvalidEntity {
		a.log.Warn("entity pool exhausted",
			zap.Int("max_entities", a.maxEntities))
	}
	return id
}

// Entities returns the active entity IDs in allocation order. The slice is
// shared; callers must not mutate it.
func (a *Allocator) Entities() []EntityID {
	return a.entities.Entities()
}

// ActiveEntity reports whether id is currently allocated.
func (a *Allocator) ActiveEntity(id EntityID) bool {
	return a.entities.Active(id)
}

// ArchetypeOfEntity returns the archetype of id. Inactive ids report the
// empty archetype.
func (a *Allocator) ArchetypeOfEntity(id EntityID) Archetype {
	return a.entities.ArchetypeOf(id)
}

// RemoveEntity deactivates id, removes every component it carries, rewrites
// every edge referencing it as an endpoint, and drops it from every query
// set. Inactive ids are a no-op.
func (a *Allocator) RemoveEntity(id EntityID) {
	if !a.entities.Active(id) {
		return
	}
	a.entities.Remove(id)
	a.components.RemoveAll(id)
	a.removeNodeFromEdges(id)
	a.queries.RemoveEntity(id)
}

// Clear removes every entity and component value. Registered component
// types, queries, and systems survive.
func (a *Allocator) Clear() {
	a.entities.Clear()
	a.components.Clear()
	a.queries.Clear()
}

// ==============================================
// Edges
// ==============================================

// AddEdge allocates an edge entity connecting nodeA and nodeB and returns
// it. The edge component is attached with the TRANSITIVE flag.
func (a *Allocator) AddEdge(nodeA, nodeB EntityID) EntityID {
	id := a.AddEntity()
	if id == InvalidEntity {
		return InvalidEntity
	}
	Add(a, id, Edge{EdgeID: id, NodeA: nodeA, NodeB: nodeB, Flag: EdgeTransitive})
	return id
}

// AddTerminalEdge allocates an edge entity with only the B endpoint set.
// The A endpoint is invalid and the flag is NODE_A_TERMINAL.
func (a *Allocator) AddTerminalEdge(nodeB EntityID) EntityID {
	id := a.AddEntity()
	if id == InvalidEntity {
		return InvalidEntity
	}
	Add(a, id, Edge{EdgeID: id, NodeA: InvalidEntity, NodeB: nodeB, Flag: EdgeNodeATerminal})
	return id
}

// GetEdge returns the edge stored on an edge entity. Entities without an
// edge component report an edge whose EdgeID is InvalidEntity.
func (a *Allocator) GetEdge(id EntityID) Edge {
	stored := Get[Edge](a, id)
	if stored == nil {
		return Edge{EdgeID: InvalidEntity, NodeA: InvalidEntity, NodeB: InvalidEntity, Flag: EdgeNull}
	}
	return *stored
}

// UpdateEdge rewrites both endpoints of an edge entity and resets the flag
// to TRANSITIVE. The edge ID is never changed. Entities without an edge
// component are a no-op; the returned edge reports what is stored.
func (a *Allocator) UpdateEdge(id, nodeA, nodeB EntityID) Edge {
	edge := a.GetEdge(id)
	if edge.EdgeID == InvalidEntity {
		return edge
	}
	edge.NodeA = nodeA
	edge.NodeB = nodeB
	edge.Flag = EdgeTransitive
	Update(a, id, edge)
	return edge
}

// UpdateTerminalEdge rewrites an edge entity to have only the B endpoint,
// with flag NODE_A_TERMINAL.
func (a *Allocator) UpdateTerminalEdge(id, nodeB EntityID) Edge {
	edge := a.GetEdge(id)
	if edge.EdgeID == InvalidEntity {
		return edge
	}
	edge.NodeA = InvalidEntity
	edge.NodeB = nodeB
	edge.Flag = EdgeNodeATerminal
	Update(a, id, edge)
	return edge
}

// removeNodeFromEdges invalidates every edge endpoint equal to node and
// adjusts the edge flags. Edge entities are left in place; only their
// endpoint fields change.
func (a *Allocator) removeNodeFromEdges(node EntityID) {
	edges := Components[Edge](a)
	a.queries.Entities(a.edgeQuery).Each(func(edgeEntity EntityID) bool {
		edge := edges.ByID(edgeEntity)
		if edge == nil {
			return true
		}
		touched := false
		if edge.NodeA == node {
			edge.NodeA = InvalidEntity
			touched = true
		}
		if edge.NodeB == node {
			edge.NodeB = InvalidEntity
			touched = true
		}
		if touched {
			edge.refreshFlag()
		}
		return true
	})
}

// ==============================================
// Queries
// ==============================================

// AddArchetypeQuery registers arch with the query index and returns a
// stable query ID. Registering the same archetype twice returns the same
// ID. The empty archetype is rejected with ErrorQuery.
func (a *Allocator) AddArchetypeQuery(arch Archetype) QueryID {
	if arch.Empty() {
		a.log.Warn("rejecting empty archetype query")
		return ErrorQuery
	}
	id := a.queries.AddQuery(arch)

	// A freshly registered query must reflect the entities that already
	// match it.
	if id != ErrorQuery {
		for _, e := range a.entities.Entities() {
			current := a.entities.ArchetypeOf(e)
			if arch.SubsetOf(current) {
				a.queries.MoveEntity(e, current, current)
			}
		}
	}
	return id
}

// QueryEntities returns the live entity set of a registered query. Unknown
// query IDs return an empty view.
func (a *Allocator) QueryEntities(id QueryID) QueryView {
	return a.queries.Entities(id)
}

// EntitiesMatching returns the live entity set of a registered archetype.
// Archetypes never registered return an empty view.
func (a *Allocator) EntitiesMatching(arch Archetype) QueryView {
	return a.queries.EntitiesByArchetype(arch)
}

// NumQueries returns the number of registered archetype queries.
func (a *Allocator) NumQueries() int {
	return a.queries.NumQueries()
}

// ==============================================
// Systems
// ==============================================

// RegisterSystem adds a system instance and returns it. At most one system
// per concrete type is held; duplicates are rejected with nil.
func (a *Allocator) RegisterSystem(sys System) System {
	registered := a.systems.Register(sys)
	if registered == nil {
		a.log.Warn("system registration rejected")
	}
	return registered
}

// NumSystems returns the number of registered systems.
func (a *Allocator) NumSystems() int {
	return a.systems.Len()
}

// InitializeSystems drives the three lifecycle phases over every registered
// system, in order: component registration, query registration, then
// initialization.
func (a *Allocator) InitializeSystems() {
	a.systems.RegisterComponents(a)
	a.systems.RegisterQueries(a)
	a.systems.Initialize(a)
}

// ==============================================
// Entity Component Buffers
// ==============================================

// AddEntityComponentBuffer allocates an entity carrying a fresh
// EntityComponentBuffer of the given capacity, registers the listed
// component specs inside the buffer, and returns the entity. InvalidEntity
// is returned when the pool or the buffer column is full.
func (a *Allocator) AddEntityComponentBuffer(capacity int, specs ...ComponentSpec) EntityID {
	id := a.AddEntity()
	if id == InvalidEntity {
		return InvalidEntity
	}
	buffer := NewEntityComponentBuffer(capacity)
	for _, spec := range specs {
		if spec.register == nil {
			continue
		}
		spec.register(buffer.components)
	}
	if !Add(a, id, *buffer) {
		a.log.Warn("buffer column full", zap.Int64("entity", int64(id)))
		a.entities.Remove(id)
		return InvalidEntity
	}
	return id
}

// EntityComponentBufferFor returns a pointer to the buffer stored on id, or
// nil when id carries none. The pointer stays valid until the buffer column
// is next mutated.
func (a *Allocator) EntityComponentBufferFor(id EntityID) *EntityComponentBuffer {
	return Get[EntityComponentBuffer](a, id)
}

// ==============================================
// Container Plumbing
// ==============================================

func (a *Allocator) entityRegistry() *EntityRegistry { return a.entities }

func (a *Allocator) componentRegistry() *ComponentRegistry { return a.components }

func (a *Allocator) registrationLocked() bool { return false }

func (a *Allocator) onArchetypeChange(e EntityID, oldArch, newArch Archetype) {
	a.queries.MoveEntity(e, oldArch, newArch)
}
