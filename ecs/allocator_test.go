package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInt struct{ V int32 }
type testFloat struct{ V float32 }
type testPair struct {
	N int32
	F float32
}
type testTag struct{ On bool }

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	return NewWithCapacity(128)
}

func TestAllocator_ComponentRoundTrip(t *testing.T) {
	a := newTestAllocator(t)
	Register[testInt](a)

	e := a.AddEntity()
	require.NotEqual(t, InvalidEntity, e)

	t.Run("add then get returns the stored value", func(t *testing.T) {
		require.True(t, Add(a, e, testInt{V: 41}))
		got := Get[testInt](a, e)
		require.NotNil(t, got)
		assert.Equal(t, int32(41), got.V)
	})

	t.Run("add succeeds exactly once", func(t *testing.T) {
		assert.False(t, Add(a, e, testInt{V: 99}))
		assert.Equal(t, int32(41), Get[testInt](a, e).V)
	})

	t.Run("update overwrites without changing the archetype", func(t *testing.T) {
		before := a.ArchetypeOfEntity(e)
		require.True(t, Update(a, e, testInt{V: 7}))
		assert.Equal(t, int32(7), Get[testInt](a, e).V)
		assert.Equal(t, before, a.ArchetypeOfEntity(e))
	})

	t.Run("remove strips value and archetype bit", func(t *testing.T) {
		sig := SignatureOf[testInt](a)
		Remove[testInt](a, e)
		assert.Nil(t, Get[testInt](a, e))
		assert.False(t, a.ArchetypeOfEntity(e).SupportsSignature(sig))
	})
}

func TestAllocator_FailureContracts(t *testing.T) {
	a := newTestAllocator(t)
	Register[testInt](a)

	t.Run("operations on inactive entities fail softly", func(t *testing.T) {
		assert.False(t, Add(a, 57, testInt{V: 1}))
		assert.False(t, Update(a, 57, testInt{V: 1}))
		assert.Nil(t, Get[testInt](a, 57))
		Remove[testInt](a, 57) // must not panic
		assert.False(t, Add(a, InvalidEntity, testInt{V: 1}))
	})

	t.Run("unregistered component types are unsupported", func(t *testing.T) {
		e := a.AddEntity()
		assert.False(t, Add(a, e, testTag{On: true}))
		assert.False(t, Update(a, e, testTag{On: true}))
		assert.Nil(t, Get[testTag](a, e))
		Remove[testTag](a, e) // no-op
		assert.True(t, a.ArchetypeOfEntity(e).Empty())
	})

	t.Run("removed entity loses its components and archetype", func(t *testing.T) {
		e := a.AddEntity()
		require.True(t, Add(a, e, testInt{V: 5}))
		a.RemoveEntity(e)

		assert.False(t, a.ActiveEntity(e))
		assert.Nil(t, Get[testInt](a, e))
		assert.True(t, a.ArchetypeOfEntity(e).Empty())
	})
}

// Scenario: four component types, four nested queries, one entity walking
// its archetype up and down while every query count is observed.
func TestAllocator_QueryCountsAcrossTransitions(t *testing.T) {
	a := newTestAllocator(t)
	Register[testInt](a)
	Register[testFloat](a)
	Register[testPair](a)
	Register[testTag](a)

	q1 := AddQuery1[testInt](a)
	q2 := AddQuery2[testInt, testFloat](a)
	q3 := AddQuery3[testInt, testFloat, testPair](a)
	q4 := AddQuery4[testInt, testFloat, testPair, testTag](a)
	require.NotEqual(t, ErrorQuery, q4)

	counts := func() [4]int {
		return [4]int{
			a.QueryEntities(q1).Len(),
			a.QueryEntities(q2).Len(),
			a.QueryEntities(q3).Len(),
			a.QueryEntities(q4).Len(),
		}
	}

	e := a.AddEntity()

	Add(a, e, testInt{V: 1})
	assert.Equal(t, [4]int{1, 0, 0, 0}, counts())

	Add(a, e, testFloat{V: 2})
	assert.Equal(t, [4]int{1, 1, 0, 0}, counts())

	Add(a, e, testPair{N: 1, F: 2.0})
	assert.Equal(t, [4]int{1, 1, 1, 0}, counts())

	Add(a, e, testTag{On: true})
	assert.Equal(t, [4]int{1, 1, 1, 1}, counts())

	Remove[testFloat](a, e)
	assert.Equal(t, [4]int{1, 0, 0, 0}, counts())

	Add(a, e, testFloat{V: 2})
	assert.Equal(t, [4]int{1, 1, 1, 1}, counts())

	Remove[testTag](a, e)
	assert.Equal(t, [4]int{1, 1, 1, 0}, counts())
}

func TestAllocator_QueryRegistration(t *testing.T) {
	a := newTestAllocator(t)
	Register[testInt](a)

	t.Run("same archetype twice yields identical ids", func(t *testing.T) {
		first := AddQuery1[testInt](a)
		second := AddQuery1[testInt](a)
		assert.Equal(t, first, second)
	})

	t.Run("query over unregistered types is rejected", func(t *testing.T) {
		assert.Equal(t, ErrorQuery, AddQuery1[testTag](a))
		assert.Equal(t, 0, a.QueryEntities(ErrorQuery).Len())
	})

	t.Run("late-registered query picks up existing entities", func(t *testing.T) {
		Register[testFloat](a)
		e := a.AddEntity()
		Add(a, e, testFloat{V: 3})

		q := AddQuery1[testFloat](a)
		assert.True(t, a.QueryEntities(q).Contains(e))
	})

	t.Run("membership is readable by archetype too", func(t *testing.T) {
		arch := ArchetypeOf1[testFloat](a)
		assert.Equal(t, 1, a.EntitiesMatching(arch).Len())
	})
}

func TestAllocator_EdgeBookkeeping(t *testing.T) {
	a := newTestAllocator(t)

	n1 := a.AddEntity()
	n2 := a.AddEntity()
	e := a.AddEdge(n1, n2)
	require.NotEqual(t, InvalidEntity, e)

	t.Run("fresh edge is transitive with both endpoints", func(t *testing.T) {
		edge := a.GetEdge(e)
		assert.Equal(t, Edge{EdgeID: e, NodeA: n1, NodeB: n2, Flag: EdgeTransitive}, edge)
	})

	t.Run("removing node A terminates the A endpoint", func(t *testing.T) {
		a.RemoveEntity(n1)
		edge := a.GetEdge(e)
		assert.Equal(t, Edge{EdgeID: e, NodeA: InvalidEntity, NodeB: n2, Flag: EdgeNodeATerminal}, edge)
	})

	t.Run("removing node B nulls the edge", func(t *testing.T) {
		a.RemoveEntity(n2)
		edge := a.GetEdge(e)
		assert.Equal(t, Edge{EdgeID: e, NodeA: InvalidEntity, NodeB: InvalidEntity, Flag: EdgeNull}, edge)
	})

	t.Run("edge entity itself survives endpoint removal", func(t *testing.T) {
		assert.True(t, a.ActiveEntity(e))
	})
}

func TestAllocator_EdgeVariants(t *testing.T) {
	a := newTestAllocator(t)
	n1 := a.AddEntity()
	n2 := a.AddEntity()
	n3 := a.AddEntity()

	t.Run("terminal edge starts half-connected", func(t *testing.T) {
		e := a.AddTerminalEdge(n2)
		edge := a.GetEdge(e)
		assert.Equal(t, InvalidEntity, edge.NodeA)
		assert.Equal(t, n2, edge.NodeB)
		assert.Equal(t, EdgeNodeATerminal, edge.Flag)
	})

	t.Run("removing only node B of a full edge leaves B terminal", func(t *testing.T) {
		e := a.AddEdge(n1, n3)
		a.RemoveEntity(n3)
		edge := a.GetEdge(e)
		assert.Equal(t, Edge{EdgeID: e, NodeA: n1, NodeB: InvalidEntity, Flag: EdgeNodeBTerminal}, edge)
	})

	t.Run("update rewrites endpoints without changing the edge id", func(t *testing.T) {
		e := a.AddEdge(n1, n2)
		updated := a.UpdateEdge(e, n2, n1)
		assert.Equal(t, Edge{EdgeID: e, NodeA: n2, NodeB: n1, Flag: EdgeTransitive}, updated)
		assert.Equal(t, updated, a.GetEdge(e))

		terminal := a.UpdateTerminalEdge(e, n2)
		assert.Equal(t, Edge{EdgeID: e, NodeA: InvalidEntity, NodeB: n2, Flag: EdgeNodeATerminal}, terminal)
	})

	t.Run("updating a non-edge entity is a no-op", func(t *testing.T) {
		plain := a.AddEntity()
		edge := a.UpdateEdge(plain, n1, n2)
		assert.Equal(t, InvalidEntity, edge.EdgeID)
		assert.Equal(t, InvalidEntity, a.GetEdge(plain).EdgeID)
	})

	t.Run("one node removal rewrites every edge referencing it", func(t *testing.T) {
		hub := a.AddEntity()
		spokeEdges := []EntityID{
			a.AddEdge(hub, n1),
			a.AddEdge(n2, hub),
			a.AddEdge(hub, hub),
		}
		a.RemoveEntity(hub)

		assert.Equal(t, EdgeNodeATerminal, a.GetEdge(spokeEdges[0]).Flag)
		assert.Equal(t, EdgeNodeBTerminal, a.GetEdge(spokeEdges[1]).Flag)
		assert.Equal(t, EdgeNull, a.GetEdge(spokeEdges[2]).Flag)
	})
}

func TestAllocator_EntityPoolExhaustion(t *testing.T) {
	a := NewWithCapacity(4)

	ids := make([]EntityID, 0, 4)
	for i := 0; i < 4; i++ {
		id := a.AddEntity()
		require.NotEqual(t, InvalidEntity, id)
		ids = append(ids, id)
	}
	assert.Equal(t, InvalidEntity, a.AddEntity())

	a.RemoveEntity(ids[0])
	assert.NotEqual(t, InvalidEntity, a.AddEntity())
}

func TestAllocator_BufferFacade(t *testing.T) {
	a := newTestAllocator(t)

	ecbEntity := a.AddEntityComponentBuffer(32, Spec[testInt](), Spec[testFloat]())
	require.NotEqual(t, InvalidEntity, ecbEntity)

	t.Run("stored buffer supports the requested types", func(t *testing.T) {
		buf := a.EntityComponentBufferFor(ecbEntity)
		require.NotNil(t, buf)
		assert.True(t, buf.Supports(TypeOf[testInt](), TypeOf[testFloat]()))
		assert.Equal(t, 32, buf.Capacity())
	})

	t.Run("mutations through the stored buffer persist", func(t *testing.T) {
		buf := a.EntityComponentBufferFor(ecbEntity)
		inner := buf.AddEntity()
		require.True(t, Update(buf, inner, testInt{V: 123}))

		again := a.EntityComponentBufferFor(ecbEntity)
		require.NotNil(t, again)
		assert.Equal(t, 1, again.NumEntities())
		require.NotNil(t, Get[testInt](again, inner))
		assert.Equal(t, int32(123), Get[testInt](again, inner).V)
	})

	t.Run("buffer entities are matchable by archetype queries", func(t *testing.T) {
		q := AddQuery1[EntityComponentBuffer](a)
		require.NotEqual(t, ErrorQuery, q)
		assert.True(t, a.QueryEntities(q).Contains(ecbEntity))
	})

	t.Run("entities without a buffer resolve to nil", func(t *testing.T) {
		plain := a.AddEntity()
		assert.Nil(t, a.EntityComponentBufferFor(plain))
	})
}

func TestAllocator_ClearAndStats(t *testing.T) {
	a := newTestAllocator(t)
	Register[testInt](a)
	q := AddQuery1[testInt](a)

	e := a.AddEntity()
	Add(a, e, testInt{V: 1})

	t.Run("stats reflect occupancy", func(t *testing.T) {
		s := a.Stats()
		assert.Equal(t, 1, s.Entities)
		assert.Equal(t, 128, s.MaxEntities)
		// Edge, EntityComponentBuffer, testInt.
		assert.Equal(t, 3, s.Signatures)
		assert.GreaterOrEqual(t, s.Queries, 2)
	})

	t.Run("clear keeps registrations and queries but drops data", func(t *testing.T) {
		a.Clear()
		assert.Equal(t, 0, len(a.Entities()))
		assert.Equal(t, 0, a.QueryEntities(q).Len())
		assert.NotEqual(t, ErrorSignature, SignatureOf[testInt](a))

		e2 := a.AddEntity()
		assert.True(t, Add(a, e2, testInt{V: 2}))
		assert.True(t, a.QueryEntities(q).Contains(e2))
	})
}

func TestAllocator_HandleStabilityAcrossColumns(t *testing.T) {
	a := newTestAllocator(t)
	Register[testInt](a)
	Register[testFloat](a)

	e1 := a.AddEntity()
	e2 := a.AddEntity()
	Add(a, e1, testInt{V: 10})

	handle := Get[testInt](a, e1)
	require.NotNil(t, handle)

	// Mutating other columns and other entities leaves the handle valid.
	Add(a, e2, testInt{V: 20})
	Add(a, e1, testFloat{V: 1.5})
	Add(a, e2, testFloat{V: 2.5})
	Remove[testFloat](a, e2)

	assert.Equal(t, int32(10), handle.V)
	assert.Equal(t, handle, Get[testInt](a, e1))
}
