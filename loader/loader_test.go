package loader

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nathoo/miniquest/types"
)

const roomsJSON = `{
  "Forest Entrance": {
    "description": "Tall trees.",
    "items": ["map", "potion"],
    "connections": ["Cave"],
    "hints": "Look around."
  },
  "Cave": {
    "description": "Dark and damp.",
    "items": ["torch"],
    "connections": ["Forest Entrance"]
  },
  "Hidden Chamber": {
    "description": "A chest.",
    "items": [],
    "connections": ["Cave"]
  }
}`

const itemsJSON = `{
  "map":    {"type": "other", "description": "A map."},
  "potion": {"type": "healing", "description": "A potion.", "heal_amount": 3},
  "torch":  {"type": "light", "description": "A torch."}
}`

const gameLua = `
Game {
  title = "Lua Quest",
  start = "Forest Entrance",
  hp = 10,
}
`

const worldLua = `
Room "Forest Entrance" {
  description = "Tall trees.",
  items = { "map", "potion" },
  connections = { "Cave" },
  hints = "Look around.",
}

Room "Cave" {
  description = "Dark and damp.",
  items = { "torch" },
  connections = { "Forest Entrance" },
}

Room "Hidden Chamber" {
  description = "A chest.",
  connections = { "Cave" },
}

Item "map"    { type = "other", description = "A map." }
Item "potion" { type = "healing", description = "A potion.", heal_amount = 3 }
Item "torch"  { type = "light", description = "A torch." }
`

func jsonFS() fstest.MapFS {
	return fstest.MapFS{
		"rooms.json": {Data: []byte(roomsJSON)},
		"items.json": {Data: []byte(itemsJSON)},
	}
}

func TestLoadFS_JSON(t *testing.T) {
	defs, err := LoadFS(jsonFS(), nil)
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}

	want := []string{"Forest Entrance", "Cave", "Hidden Chamber"}
	if !slices.Equal(defs.RoomOrder, want) {
		t.Errorf("room order = %v, want %v", defs.RoomOrder, want)
	}
	forest := defs.Rooms["Forest Entrance"]
	if forest.Name != "Forest Entrance" || forest.Hints != "Look around." {
		t.Errorf("forest = %+v", forest)
	}
	if !slices.Equal(forest.Items, []string{"map", "potion"}) {
		t.Errorf("forest items = %v", forest.Items)
	}

	potion, ok := defs.Catalog.Lookup("potion")
	if !ok || potion.Type != types.ItemHealing || potion.HealAmount != 3 || potion.Name != "potion" {
		t.Errorf("potion = %+v", potion)
	}

	// No game.json: defaults apply.
	if defs.Game != DefaultGame {
		t.Errorf("game = %+v, want defaults", defs.Game)
	}
}

func TestLoadFS_JSONRoomOrderFollowsFile(t *testing.T) {
	fsys := jsonFS()
	fsys["rooms.json"] = &fstest.MapFile{Data: []byte(`{
	  "Zeta": {"description": "z", "connections": ["Alpha"]},
	  "Alpha": {"description": "a", "connections": ["Zeta"]},
	  "Mid": {"description": "m", "connections": ["Alpha"]}
	}`)}
	fsys["game.json"] = &fstest.MapFile{Data: []byte(`{"start": "Zeta"}`)}

	defs, err := LoadFS(fsys, nil)
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}
	if !slices.Equal(defs.RoomOrder, []string{"Zeta", "Alpha", "Mid"}) {
		t.Errorf("room order = %v", defs.RoomOrder)
	}
}

func TestLoadFS_GameJSON(t *testing.T) {
	fsys := jsonFS()
	fsys["game.json"] = &fstest.MapFile{Data: []byte(`{"title": "Custom", "start": "Cave", "hp": 4}`)}

	defs, err := LoadFS(fsys, nil)
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}
	if defs.Game.Title != "Custom" || defs.Game.Start != "Cave" || defs.Game.StartHP != 4 {
		t.Errorf("game = %+v", defs.Game)
	}
	if defs.Game.Intro != DefaultGame.Intro {
		t.Errorf("intro should default, got %q", defs.Game.Intro)
	}
}

func TestLoadFS_LuaMatchesJSON(t *testing.T) {
	luaDefs, err := LoadFS(fstest.MapFS{
		"game.lua":  {Data: []byte(gameLua)},
		"world.lua": {Data: []byte(worldLua)},
	}, nil)
	if err != nil {
		t.Fatalf("LoadFS (lua) failed: %v", err)
	}
	jsonDefs, err := LoadFS(jsonFS(), nil)
	if err != nil {
		t.Fatalf("LoadFS (json) failed: %v", err)
	}

	if luaDefs.Game.Title != "Lua Quest" {
		t.Errorf("title = %q", luaDefs.Game.Title)
	}
	if !slices.Equal(luaDefs.RoomOrder, jsonDefs.RoomOrder) {
		t.Errorf("room order = %v, want %v", luaDefs.RoomOrder, jsonDefs.RoomOrder)
	}
	for _, name := range jsonDefs.RoomOrder {
		l, j := luaDefs.Rooms[name], jsonDefs.Rooms[name]
		if l.Description != j.Description || l.Hints != j.Hints ||
			!slices.Equal(l.Items, j.Items) || !slices.Equal(l.Connections, j.Connections) {
			t.Errorf("room %s: lua %+v, json %+v", name, l, j)
		}
	}
	for _, name := range jsonDefs.Catalog.Names() {
		l, _ := luaDefs.Catalog.Lookup(name)
		j, _ := jsonDefs.Catalog.Lookup(name)
		if l != j {
			t.Errorf("item %s: lua %+v, json %+v", name, l, j)
		}
	}
}

func TestLoadFS_LuaDuplicateItem(t *testing.T) {
	world := worldLua + `
Item "torch" { type = "weapon", description = "A torch, again.", damage = 1 }
`
	_, err := LoadFS(fstest.MapFS{"world.lua": {Data: []byte(world)}}, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if !slices.Contains(ve.Errors, `duplicate item "torch"`) {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestLoadFS_LuaWithoutGameUsesDefaults(t *testing.T) {
	defs, err := LoadFS(fstest.MapFS{"world.lua": {Data: []byte(worldLua)}}, nil)
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}
	if defs.Game.Start != "Forest Entrance" || defs.Game.StartHP != 10 {
		t.Errorf("game = %+v", defs.Game)
	}
}

func TestLoadFS_BadLuaSyntax(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"world.lua": {Data: []byte(`Room "x" {`)}}, nil)
	if err == nil || !strings.Contains(err.Error(), "executing world.lua") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadFS_SandboxEnforced(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"world.lua": {Data: []byte(`os.execute("echo pwned")`)}}, nil)
	if err == nil {
		t.Fatal("expected sandbox to block os.execute")
	}
}

func TestLoadFS_NoContent(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"README": {Data: []byte("hi")}}, nil)
	if err == nil || !strings.Contains(err.Error(), "no rooms.json") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadFS_BadJSON(t *testing.T) {
	fsys := jsonFS()
	fsys["rooms.json"] = &fstest.MapFile{Data: []byte(`["not", "an", "object"]`)}
	if _, err := LoadFS(fsys, nil); err == nil {
		t.Fatal("expected error for array rooms.json")
	}

	fsys = jsonFS()
	delete(fsys, "items.json")
	if _, err := LoadFS(fsys, nil); err == nil || !strings.Contains(err.Error(), "items.json") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadFS_InvalidRefs(t *testing.T) {
	fsys := jsonFS()
	fsys["rooms.json"] = &fstest.MapFile{Data: []byte(`{
	  "Forest Entrance": {"description": "t", "items": ["sword"], "connections": ["Swamp"]}
	}`)}

	_, err := LoadFS(fsys, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("errors = %v", ve.Errors)
	}
	if !strings.Contains(err.Error(), "undefined room") || !strings.Contains(err.Error(), "undefined item") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_Dir(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{"rooms.json": roomsJSON, "items.json": itemsJSON} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	defs, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs.Rooms) != 3 || defs.Catalog.Len() != 3 {
		t.Errorf("rooms = %d, items = %d", len(defs.Rooms), defs.Catalog.Len())
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
