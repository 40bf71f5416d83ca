package ecs

// ==============================================
// Query Index
// ==============================================

// QueryIndex maintains, for every registered archetype, the set of entities
// whose archetype is a superset. Query IDs are positions in the registration
// list, so registering the same archetype twice returns the same ID.
type QueryIndex struct {
	archetypes []Archetype
	entities   map[Archetype]map[EntityID]struct{}
}

// NewQueryIndex creates an empty index.
func NewQueryIndex() *QueryIndex {
	return &QueryIndex{
		entities: make(map[Archetype]map[EntityID]struct{}),
	}
}

// AddQuery registers arch and returns its query ID. An archetype that was
// already registered returns the existing ID. The empty archetype is
// rejected with ErrorQuery.
func (q *QueryIndex) AddQuery(arch Archetype) QueryID {
	if arch.Empty() {
		return ErrorQuery
	}
	if _, ok := q.entities[arch]; ok {
		for i, existing := range q.archetypes {
			if existing == arch {
				return QueryID(i)
			}
		}
		return ErrorQuery
	}
	q.entities[arch] = make(map[EntityID]struct{})
	q.archetypes = append(q.archetypes, arch)
	return QueryID(len(q.archetypes) - 1)
}

// MoveEntity records the archetype transition of e from oldArch to newArch.
// The erase pass over all registered archetypes runs before the insert pass,
// so membership in archetypes that stay subsets is simply re-inserted. The
// net effect is that e belongs to exactly the sets whose archetype is a
// subset of newArch.
func (q *QueryIndex) MoveEntity(e EntityID, oldArch, newArch Archetype) {
	for arch, set := range q.entities {
		if arch.SubsetOf(oldArch) {
			delete(set, e)
		}
	}
	for arch, set := range q.entities {
		if arch.SubsetOf(newArch) {
			set[e] = struct{}{}
		}
	}
}

// RemoveEntity removes e from every registered set.
func (q *QueryIndex) RemoveEntity(e EntityID) {
	for _, set := range q.entities {
		delete(set, e)
	}
}

// SupportsArchetype reports whether some registered archetype is a subset of
// arch.
func (q *QueryIndex) SupportsArchetype(arch Archetype) bool {
	for registered := range q.entities {
		if registered.SubsetOf(arch) {
			return true
		}
	}
	return false
}

// Entities returns the view for a query ID. Unknown IDs return an empty
// view, never an error.
func (q *QueryIndex) Entities(id QueryID) QueryView {
	if uint64(id) >= uint64(len(q.archetypes)) {
		return QueryView{}
	}
	return QueryView{set: q.entities[q.archetypes[id]]}
}

// EntitiesByArchetype returns the view for a registered archetype. Unknown
// archetypes return an empty view.
func (q *QueryIndex) EntitiesByArchetype(arch Archetype) QueryView {
	return QueryView{set: q.entities[arch]}
}

// NumQueries returns the number of registered archetypes.
func (q *QueryIndex) NumQueries() int {
	return len(q.archetypes)
}

// Clear empties every set. Registered archetypes are preserved.
func (q *QueryIndex) Clear() {
	for arch := range q.entities {
		q.entities[arch] = make(map[EntityID]struct{})
	}
}

// ==============================================
// Query View
// ==============================================

// QueryView is a read-only window onto the entity set of one registered
// query. The zero value is an empty view. Views read through to the live
// set, so entries appear and disappear as the container mutates.
type QueryView struct {
	set map[EntityID]struct{}
}

// Len returns the number of entities in the set.
func (v QueryView) Len() int {
	return len(v.set)
}

// Contains reports whether id is in the set.
func (v QueryView) Contains(id EntityID) bool {
	_, ok := v.set[id]
	return ok
}

// Each calls fn for every entity in the set, stopping early when fn returns
// false. The iteration order is unspecified. fn must not mutate the
// container in ways that add or remove set members.
func (v QueryView) Each(fn func(EntityID) bool) {
	for id := range v.set {
		if !fn(id) {
			return
		}
	}
}

// IDs returns the member entities as a fresh slice in unspecified order.
func (v QueryView) IDs() []EntityID {
	out := make([]EntityID, 0, len(v.set))
	for id := range v.set {
		out = append(out, id)
	}
	return out
}
