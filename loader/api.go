package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the content constructors as Lua globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "...", hp = 10, intro = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Room "name" { ... } is curried: Room("name") returns a function that takes a table.
	L.SetGlobal("Room", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.rooms = append(coll.rooms, rawRoom{name: name, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	// Item "name" { ... } is curried too.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.items = append(coll.items, rawItem{name: name, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))
}
