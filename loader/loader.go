// Package loader reads static game content into the immutable definitions
// the engine runs on. Content is either JSON (rooms.json, items.json and an
// optional game.json) or Lua files using the Game/Room/Item constructors.
// The Lua VM is discarded after loading.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/nathoo/miniquest/engine/catalog"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
	lua "github.com/yuin/gopher-lua"
)

// Defaults applied to any game metadata the content leaves out.
var DefaultGame = types.GameDef{
	Title:   "Mini Adventure",
	Start:   "Forest Entrance",
	StartHP: 10,
	Intro:   "Welcome to the Mini Adventure Game!\nType 'help' at any time to see available commands.",
}

// content is everything read from a content directory, before it becomes
// Defs. Rooms stay in file order.
type content struct {
	game  types.GameDef
	rooms []types.RoomDef
	items map[string]types.ItemDef

	// Item names defined more than once; the last definition won.
	duplicateItems []string
}

// defs builds the engine definitions.
func (c *content) defs() *state.Defs {
	d := &state.Defs{
		Game:    c.game,
		Catalog: catalog.New(c.items),
	}
	d.SetRooms(c.rooms)
	return d
}

// Load reads content from a directory on disk.
func Load(dir string, log *slog.Logger) (*state.Defs, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reading game directory %s: not a directory", dir)
	}
	defs, err := LoadFS(os.DirFS(dir), log)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	return defs, nil
}

// LoadFS reads content from the root of fsys, validates references, and
// returns the definitions. JSON content wins when rooms.json is present.
// Validation warnings are logged; errors are returned as a *ValidationError.
func LoadFS(fsys fs.FS, log *slog.Logger) (*state.Defs, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var (
		c   *content
		err error
	)
	_, statErr := fs.Stat(fsys, roomsFile)
	switch {
	case statErr == nil:
		c, err = loadJSON(fsys)
	case errors.Is(statErr, fs.ErrNotExist):
		c, err = loadLua(fsys)
	default:
		err = statErr
	}
	if err != nil {
		return nil, err
	}

	applyDefaults(&c.game)

	warnings, err := validate(c)
	for _, w := range warnings {
		log.Warn("content", "warning", w)
	}
	if err != nil {
		return nil, err
	}

	defs := c.defs()
	log.Info("content loaded", "title", c.game.Title, "rooms", len(c.rooms), "items", defs.Catalog.Names())
	return defs, nil
}

func applyDefaults(g *types.GameDef) {
	if g.Title == "" {
		g.Title = DefaultGame.Title
	}
	if g.Start == "" {
		g.Start = DefaultGame.Start
	}
	if g.StartHP == 0 {
		g.StartHP = DefaultGame.StartHP
	}
	if g.Intro == "" {
		g.Intro = DefaultGame.Intro
	}
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	game  *lua.LTable
	rooms []rawRoom
	items []rawItem
}

// loadLua executes every .lua file at the root of fsys in a sandboxed VM.
func loadLua(fsys fs.FS) (*content, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading game directory: %w", err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no %s or .lua files found", roomsFile)
	}

	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, path.Clean(f))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		if err := L.DoString(string(src)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	return compile(coll), nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not reseed or consult randomness; the shuffle happens in Go.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}
