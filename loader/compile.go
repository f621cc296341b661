package loader

import (
	"sort"

	"github.com/nathoo/miniquest/types"
	lua "github.com/yuin/gopher-lua"
)

// rawRoom holds a room table before compilation.
type rawRoom struct {
	name  string
	table *lua.LTable
}

// rawItem holds an item table before compilation.
type rawItem struct {
	name  string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field, in order.
// Non-string elements are skipped.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	out := []string{}
	if arr == nil {
		return out
	}
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into content. Rooms keep the
// order their constructors ran in.
func compile(coll *collector) *content {
	c := &content{items: map[string]types.ItemDef{}}
	if coll.game != nil {
		c.game = compileGame(coll.game)
	}
	for _, raw := range coll.rooms {
		c.rooms = append(c.rooms, compileRoom(raw))
	}
	for _, raw := range coll.items {
		if _, seen := c.items[raw.name]; seen {
			c.duplicateItems = append(c.duplicateItems, raw.name)
		}
		c.items[raw.name] = compileItem(raw)
	}
	return c
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Start:   getString(tbl, "start"),
		StartHP: getInt(tbl, "hp"),
		Intro:   getString(tbl, "intro"),
	}
}

func compileRoom(raw rawRoom) types.RoomDef {
	tbl := raw.table
	return types.RoomDef{
		Name:        raw.name,
		Description: getString(tbl, "description"),
		Items:       getStrings(tbl, "items"),
		Connections: getStrings(tbl, "connections"),
		Hints:       getString(tbl, "hints"),
	}
}

func compileItem(raw rawItem) types.ItemDef {
	tbl := raw.table
	return types.ItemDef{
		Name:        raw.name,
		Type:        types.ItemType(getString(tbl, "type")),
		Description: getString(tbl, "description"),
		HealAmount:  getInt(tbl, "heal_amount"),
		Damage:      getInt(tbl, "damage"),
		Defense:     getInt(tbl, "defense"),
	}
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
