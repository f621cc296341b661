package save

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nathoo/miniquest/engine/catalog"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

func testDefs() *state.Defs {
	d := &state.Defs{
		Game:    types.GameDef{Start: "Forest Entrance", StartHP: 10},
		Catalog: catalog.New(nil),
	}
	d.SetRooms([]types.RoomDef{
		{Name: "Forest Entrance", Items: []string{"map"}, Connections: []string{"Cave"}},
		{Name: "Cave", Items: []string{"torch", "key"}, Connections: []string{"Forest Entrance"}},
		{Name: "Hidden Chamber", Connections: []string{"Cave"}},
	})
	return d
}

func TestRoundTrip(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	// Modify state.
	s.Player.Location = "Cave"
	s.Player.HP = 7
	s.Player.Inventory = []string{"potion", "map", "potion"}
	state.RemoveRoomItem(s, "Forest Entrance", "map")
	state.AddConnection(s, "Cave", "Hidden Chamber")
	state.Room(s, "Forest Entrance").Visited = true
	state.Room(s, "Cave").Visited = true

	store := NewFileStore(filepath.Join(t.TempDir(), "savegame.json"))
	if err := store.Write(Snapshot(s)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	sd, err := store.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	s2 := state.NewState(defs)
	if err := ApplySave(s2, sd); err != nil {
		t.Fatalf("ApplySave failed: %v", err)
	}

	if !reflect.DeepEqual(s2.Player, s.Player) {
		t.Errorf("player = %+v, want %+v", s2.Player, s.Player)
	}
	for name, rs := range s.Rooms {
		got := s2.Rooms[name]
		if !reflect.DeepEqual(got.Items, rs.Items) ||
			!reflect.DeepEqual(got.Connections, rs.Connections) ||
			got.Visited != rs.Visited {
			t.Errorf("room %s = %+v, want %+v", name, got, rs)
		}
	}
}

func TestMarshal_Format(t *testing.T) {
	s := state.NewState(testDefs())
	data, err := Marshal(Snapshot(s))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	player := raw["player"]
	if player["location"] != "Forest Entrance" || player["hp"] != float64(10) {
		t.Errorf("player = %v", player)
	}
	if _, ok := player["inventory"].([]any); !ok {
		t.Errorf("inventory should be a JSON array, got %T", player["inventory"])
	}
	cave, ok := raw["rooms"]["Cave"].(map[string]any)
	if !ok {
		t.Fatalf("rooms.Cave missing: %v", raw["rooms"])
	}
	for _, key := range []string{"items", "connections", "visited"} {
		if _, ok := cave[key]; !ok {
			t.Errorf("rooms.Cave missing %q", key)
		}
	}
}

func TestSnapshot_IsIndependent(t *testing.T) {
	s := state.NewState(testDefs())
	s.Player.Inventory = []string{"key"}
	sd := Snapshot(s)

	s.Player.Inventory[0] = "torch"
	state.Room(s, "Cave").Items[0] = "changed"

	if sd.Player.Inventory[0] != "key" || sd.Rooms["Cave"].Items[0] != "torch" {
		t.Error("snapshot aliases live state")
	}
}

func TestRead_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	_, err := store.Read()
	if !errors.Is(err, ErrNoSave) {
		t.Errorf("expected ErrNoSave, got %v", err)
	}
}

func TestRead_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savegame.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Read()
	if err == nil || errors.Is(err, ErrNoSave) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestWrite_CreatesDirectoryAndLeavesNoTemp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves", "slot")
	path := filepath.Join(dir, "savegame.json")
	if err := NewFileStore(path).Write(Snapshot(state.NewState(testDefs()))); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("save file missing: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestUnmarshal_MissingOptionalFields(t *testing.T) {
	sd, err := Unmarshal([]byte(`{"player":{"location":"Cave","hp":3}}`))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if sd.Player.Inventory == nil {
		t.Error("expected non-nil inventory")
	}
	if sd.Rooms == nil {
		t.Error("expected non-nil rooms")
	}
}

func TestApplySave_IgnoresUnknownRooms(t *testing.T) {
	s := state.NewState(testDefs())
	sd := &SaveData{
		Player: types.Player{Location: "Cave", HP: 4, Inventory: []string{}},
		Rooms: map[string]types.RoomState{
			"Cave":          {Items: []string{}, Connections: []string{"Forest Entrance"}, Visited: true},
			"Sunken Temple": {Items: []string{"idol"}},
		},
	}
	if err := ApplySave(s, sd); err != nil {
		t.Fatalf("ApplySave failed: %v", err)
	}
	if _, ok := s.Rooms["Sunken Temple"]; ok {
		t.Error("unknown room was created")
	}
	if !s.Rooms["Cave"].Visited || len(s.Rooms["Cave"].Items) != 0 {
		t.Errorf("cave = %+v", s.Rooms["Cave"])
	}
	// Rooms absent from the record keep their state.
	if !reflect.DeepEqual(s.Rooms["Forest Entrance"].Items, []string{"map"}) {
		t.Errorf("forest = %+v", s.Rooms["Forest Entrance"])
	}
}

func TestApplySave_RejectsUnknownLocation(t *testing.T) {
	s := state.NewState(testDefs())
	sd := &SaveData{Player: types.Player{Location: "Moon", HP: 1}}

	if err := ApplySave(s, sd); err == nil {
		t.Fatal("expected error")
	}
	if s.Player.Location != "Forest Entrance" || s.Player.HP != 10 {
		t.Errorf("state changed: %+v", s.Player)
	}
}
