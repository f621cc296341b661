package content

import (
	"testing"

	"github.com/nathoo/miniquest/loader"
)

func TestDefaultContentLoads(t *testing.T) {
	defs, err := loader.LoadFS(FS(), nil)
	if err != nil {
		t.Fatalf("embedded content failed to load: %v", err)
	}

	for _, room := range []string{"Forest Entrance", "Cave", "Hidden Chamber"} {
		if _, ok := defs.Rooms[room]; !ok {
			t.Errorf("missing room %q", room)
		}
	}
	for _, item := range []string{"torch", "key", "map"} {
		if _, ok := defs.Catalog.Lookup(item); !ok {
			t.Errorf("missing item %q", item)
		}
	}
	if defs.Game.Start != "Forest Entrance" || defs.Game.StartHP != 10 {
		t.Errorf("game = %+v", defs.Game)
	}
	if defs.RoomOrder[0] != "Forest Entrance" {
		t.Errorf("first room = %q", defs.RoomOrder[0])
	}
}
