package ecs

// ==============================================
// Container Interface
// ==============================================

// Container is the shared contract between the Allocator facade and the
// EntityComponentBuffer: a bounded entity pool plus typed component columns.
// The typed package-level operations below work on either. Only this package
// implements Container.
type Container interface {
	entityRegistry() *EntityRegistry
	componentRegistry() *ComponentRegistry

	// onArchetypeChange runs after a column write and archetype update, in
	// that order, so observers never see an archetype claiming a component
	// that is not yet stored. The Allocator forwards to its query index; the
	// EntityComponentBuffer has no queries and does nothing.
	onArchetypeChange(e EntityID, oldArch, newArch Archetype)

	registrationLocked() bool
}

// ==============================================
// Typed Component Operations
// ==============================================

// Register registers component type T in c and returns its signature.
// Registration is idempotent. It fails with ErrorSignature when the
// signature space is saturated or when registration is locked.
func Register[T any](c Container) Signature {
	if c.registrationLocked() {
		return ErrorSignature
	}
	return RegisterColumn[T](c.componentRegistry())
}

// SignatureOf returns the signature registered for T in c, or
// ErrorSignature.
func SignatureOf[T any](c Container) Signature {
	return c.componentRegistry().Signature(TypeOf[T]())
}

// Add attaches a value of T to an active entity that does not already carry
// one. It returns false, leaving the container unchanged, when the entity is
// inactive, T is unregistered, the entity already has a T, or the column is
// full.
func Add[T any](c Container, id EntityID, value T) bool {
	entities := c.entityRegistry()
	if !entities.Active(id) {
		return false
	}
	components := c.componentRegistry()
	sig := components.Signature(TypeOf[T]())
	if sig == ErrorSignature {
		return false
	}
	oldArch := entities.ArchetypeOf(id)
	if oldArch.SupportsSignature(sig) {
		return false
	}
	col := columnOf[T](components)
	if col == nil {
		return false
	}
	if col.Add(id, value) == InvalidEntity {
		return false
	}
	newArch := oldArch
	newArch.Merge(sig)
	entities.SetArchetype(id, newArch)
	c.onArchetypeChange(id, oldArch, newArch)
	return true
}

// Update is the upsert form of Add: when the entity already carries a T the
// stored value is overwritten in place and the archetype is unchanged;
// otherwise Update behaves exactly like Add.
func Update[T any](c Container, id EntityID, value T) bool {
	entities := c.entityRegistry()
	if !entities.Active(id) {
		return false
	}
	components := c.componentRegistry()
	sig := components.Signature(TypeOf[T]())
	if sig == ErrorSignature {
		return false
	}
	if entities.ArchetypeOf(id).SupportsSignature(sig) {
		col := columnOf[T](components)
		if col == nil {
			return false
		}
		stored := col.Get(id)
		if stored == nil {
			return false
		}
		*stored = value
		return true
	}
	return Add(c, id, value)
}

// Get returns a pointer to the T stored on an active entity, or nil. The
// pointer stays valid until T's column is next mutated.
func Get[T any](c Container, id EntityID) *T {
	entities := c.entityRegistry()
	if !entities.Active(id) {
		return nil
	}
	components := c.componentRegistry()
	sig := components.Signature(TypeOf[T]())
	if sig == ErrorSignature {
		return nil
	}
	if !entities.ArchetypeOf(id).SupportsSignature(sig) {
		return nil
	}
	col := columnOf[T](components)
	if col == nil {
		return nil
	}
	return col.Get(id)
}

// Remove detaches T from an active entity. Inactive entities, unregistered
// types, and entities without a T are no-ops.
func Remove[T any](c Container, id EntityID) {
	entities := c.entityRegistry()
	if !entities.Active(id) {
		return
	}
	components := c.componentRegistry()
	sig := components.Signature(TypeOf[T]())
	if sig == ErrorSignature {
		return
	}
	oldArch := entities.ArchetypeOf(id)
	if !oldArch.SupportsSignature(sig) {
		return
	}
	col := columnOf[T](components)
	if col == nil {
		return
	}
	col.Remove(id)
	newArch := oldArch
	newArch.Remove(sig)
	entities.SetArchetype(id, newArch)
	c.onArchetypeChange(id, oldArch, newArch)
}

// Components returns a view over every stored T in c, indexed by entity ID.
// Unregistered types yield an empty view.
func Components[T any](c Container) ColumnView[T] {
	return ViewOf[T](c.componentRegistry())
}

// Count returns the number of entities carrying a T.
func Count[T any](c Container) int {
	return Components[T](c).Len()
}

// ==============================================
// Archetype Arity Helpers
// ==============================================

// ArchetypeOf1 returns the archetype covering component type A. Unregistered
// types contribute nothing, so the result may be empty.
func ArchetypeOf1[A any](c Container) Archetype {
	return NewArchetype(SignatureOf[A](c))
}

// ArchetypeOf2 returns the archetype covering A and B.
func ArchetypeOf2[A, B any](c Container) Archetype {
	return NewArchetype(SignatureOf[A](c), SignatureOf[B](c))
}

// ArchetypeOf3 returns the archetype covering A, B, and C.
func ArchetypeOf3[A, B, C any](c Container) Archetype {
	return NewArchetype(SignatureOf[A](c), SignatureOf[B](c), SignatureOf[C](c))
}

// ArchetypeOf4 returns the archetype covering A, B, C, and D.
func ArchetypeOf4[A, B, C, D any](c Container) Archetype {
	return NewArchetype(
		SignatureOf[A](c), SignatureOf[B](c),
		SignatureOf[C](c), SignatureOf[D](c),
	)
}

// AddQuery1 registers an archetype query over A with the allocator.
func AddQuery1[A any](a *Allocator) QueryID {
	return a.AddArchetypeQuery(ArchetypeOf1[A](a))
}

// AddQuery2 registers an archetype query over A and B.
func AddQuery2[A, B any](a *Allocator) QueryID {
	return a.AddArchetypeQuery(ArchetypeOf2[A, B](a))
}

// AddQuery3 registers an archetype query over A, B, and C.
func AddQuery3[A, B, C any](a *Allocator) QueryID {
	return a.AddArchetypeQuery(ArchetypeOf3[A, B, C](a))
}

// AddQuery4 registers an archetype query over A, B, C, and D.
func AddQuery4[A, B, C, D any](a *Allocator) QueryID {
	return a.AddArchetypeQuery(ArchetypeOf4[A, B, C, D](a))
}
