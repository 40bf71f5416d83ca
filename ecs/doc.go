// Package ecs provides the core Entity Component System container for Trellis.
//
// The container is a single-owner, single-threaded data store: entities are
// opaque stable identifiers, components are plain data records held in dense
// typed columns, and queries maintain the set of entities whose archetype is
// a superset of a registered component signature combination. Systems are
// externally owned objects driven through a three-phase lifecycle by the
// Allocator facade.
//
// Component values are stored in pinned backing arrays, so a pointer obtained
// from Get remains valid across operations on other columns. It is
// invalidated only by a mutation of the same column: an add or remove of that
// column, a clear, or a registry assignment.
//
// Components should be plain data. Values are copied bitwise by the column
// assignment operations, so pointer-bearing components end up sharing their
// referents between copies. The EntityComponentBuffer is the one built-in
// component designed with that sharing in mind.
package ecs
