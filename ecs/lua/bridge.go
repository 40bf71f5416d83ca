// Package lua exposes a Trellis allocator to Lua scripts.
//
// The bridge registers a `trellis` table in the Lua state with functions for
// entity and edge manipulation, which is enough for scripted scenario setup
// and for poking at a running container from a console. Component access
// stays on the Go side; Lua sees entities, edges, and query results.
package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/trellis-ecs/trellis/ecs"
)

// Options configures a Bridge.
type Options struct {
	// OpenAllLibs opens the full Lua standard library, including os and io.
	// Off by default: scripts get package, base, table, string, and math only.
	OpenAllLibs bool
}

// Bridge couples one allocator to one Lua state.
type Bridge struct {
	alloc *ecs.Allocator
	state *lua.LState
}

// NewBridge creates a bridge over alloc and installs the trellis API into a
// fresh Lua state.
func NewBridge(alloc *ecs.Allocator, opts Options) *Bridge {
	b := &Bridge{alloc: alloc}

	if opts.OpenAllLibs {
		b.state = lua.NewState()
	} else {
		b.state = lua.NewState(lua.Options{SkipOpenLibs: true})
		for _, pair := range []struct {
			name string
			fn   lua.LGFunction
		}{
			{lua.LoadLibName, lua.OpenPackage},
			{lua.BaseLibName, lua.OpenBase},
			{lua.TabLibName, lua.OpenTable},
			{lua.StringLibName, lua.OpenString},
			{lua.MathLibName, lua.OpenMath},
		} {
			b.state.Push(b.state.NewFunction(pair.fn))
			b.state.Push(lua.LString(pair.name))
			b.state.Call(1, 0)
		}
	}

	b.install()
	return b
}

// Close releases the Lua state.
func (b *Bridge) Close() {
	b.state.Close()
}

// Run executes a script in the bridge's state. Script failures come back as
// an ECSError with the script error code.
func (b *Bridge) Run(script string) error {
	if err := b.state.DoString(script); err != nil {
		return ecs.WrapError(err, ecs.ErrCodeScript, "script execution failed")
	}
	return nil
}

// RunFile executes a script file in the bridge's state.
func (b *Bridge) RunFile(path string) error {
	if err := b.state.DoFile(path); err != nil {
		return ecs.WrapError(err, ecs.ErrCodeScript, fmt.Sprintf("script %s failed", path))
	}
	return nil
}

// install builds the trellis table.
func (b *Bridge) install() {
	tbl := b.state.NewTable()
	b.state.SetField(tbl, "invalid_entity", lua.LNumber(ecs.InvalidEntity))
	b.state.SetField(tbl, "add_entity", b.state.NewFunction(b.luaAddEntity))
	b.state.SetField(tbl, "remove_entity", b.state.NewFunction(b.luaRemoveEntity))
	b.state.SetField(tbl, "entity_active", b.state.NewFunction(b.luaEntityActive))
	b.state.SetField(tbl, "entity_count", b.state.NewFunction(b.luaEntityCount))
	b.state.SetField(tbl, "add_edge", b.state.NewFunction(b.luaAddEdge))
	b.state.SetField(tbl, "add_terminal_edge", b.state.NewFunction(b.luaAddTerminalEdge))
	b.state.SetField(tbl, "get_edge", b.state.NewFunction(b.luaGetEdge))
	b.state.SetField(tbl, "update_edge", b.state.NewFunction(b.luaUpdateEdge))
	b.state.SetField(tbl, "query_entities", b.state.NewFunction(b.luaQueryEntities))
	b.state.SetGlobal("trellis", tbl)
}

func (b *Bridge) luaAddEntity(L *lua.LState) int {
	L.Push(lua.LNumber(b.alloc.AddEntity()))
	return 1
}

func (b *Bridge) luaRemoveEntity(L *lua.LState) int {
	id := ecs.EntityID(L.CheckNumber(1))
	b.alloc.RemoveEntity(id)
	return 0
}

func (b *Bridge) luaEntityActive(L *lua.LState) int {
	id := ecs.EntityID(L.CheckNumber(1))
	L.Push(lua.LBool(b.alloc.ActiveEntity(id)))
	return 1
}

func (b *Bridge) luaEntityCount(L *lua.LState) int {
	L.Push(lua.LNumber(len(b.alloc.Entities())))
	return 1
}

func (b *Bridge) luaAddEdge(L *lua.LState) int {
	nodeA := ecs.EntityID(L.CheckNumber(1))
	nodeB := ecs.EntityID(L.CheckNumber(2))
	L.Push(lua.LNumber(b.alloc.AddEdge(nodeA, nodeB)))
	return 1
}

func (b *Bridge) luaAddTerminalEdge(L *lua.LState) int {
	nodeB := ecs.EntityID(L.CheckNumber(1))
	L.Push(lua.LNumber(b.alloc.AddTerminalEdge(nodeB)))
	return 1
}

// edgeToTable converts an edge to a Lua table with id, node_a, node_b, and
// flag fields.
func (b *Bridge) edgeToTable(L *lua.LState, edge ecs.Edge) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LNumber(edge.EdgeID))
	L.SetField(tbl, "node_a", lua.LNumber(edge.NodeA))
	L.SetField(tbl, "node_b", lua.LNumber(edge.NodeB))
	L.SetField(tbl, "flag", lua.LString(edge.Flag.String()))
	return tbl
}

func (b *Bridge) luaGetEdge(L *lua.LState) int {
	id := ecs.EntityID(L.CheckNumber(1))
	edge := b.alloc.GetEdge(id)
	if edge.EdgeID == ecs.InvalidEntity {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(b.edgeToTable(L, edge))
	return 1
}

func (b *Bridge) luaUpdateEdge(L *lua.LState) int {
	id := ecs.EntityID(L.CheckNumber(1))
	nodeA := ecs.EntityID(L.CheckNumber(2))
	nodeB := ecs.EntityID(L.CheckNumber(3))
	edge := b.alloc.UpdateEdge(id, nodeA, nodeB)
	if edge.EdgeID == ecs.InvalidEntity {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(b.edgeToTable(L, edge))
	return 1
}

func (b *Bridge) luaQueryEntities(L *lua.LState) int {
	query := ecs.QueryID(L.CheckNumber(1))
	view := b.alloc.QueryEntities(query)

	tbl := L.NewTable()
	i := 1
	view.Each(func(id ecs.EntityID) bool {
		L.RawSetInt(tbl, i, lua.LNumber(id))
		i++
		return true
	})
	L.Push(tbl)
	return 1
}
