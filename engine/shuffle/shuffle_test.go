package shuffle

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/nathoo/miniquest/engine/catalog"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

func testRooms() []types.RoomDef {
	return []types.RoomDef{
		{Name: "Forest Entrance", Items: []string{"map", "potion"}, Connections: []string{"Cave"}},
		{Name: "Cave", Items: []string{"torch"}, Connections: []string{"Forest Entrance"}},
		{Name: "River", Items: nil, Connections: []string{"Cave"}},
		{Name: "Hidden Chamber", Items: []string{"key", "potion", "sword"}},
	}
}

// reverse is a deterministic Source that reverses the pool.
type reverse struct{}

func (reverse) Shuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

func allItems(rooms []types.RoomDef) []string {
	var out []string
	for _, r := range rooms {
		out = append(out, r.Items...)
	}
	sort.Strings(out)
	return out
}

func TestDistribute_ConservesMultisetAndCounts(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		in := testRooms()
		out := Distribute(in, rand.New(rand.NewSource(seed)))

		if len(out) != len(in) {
			t.Fatalf("seed %d: got %d rooms", seed, len(out))
		}
		for i := range in {
			if out[i].Name != in[i].Name {
				t.Errorf("seed %d: room %d = %q, want %q", seed, i, out[i].Name, in[i].Name)
			}
			if len(out[i].Items) != len(in[i].Items) {
				t.Errorf("seed %d: %s has %d items, want %d", seed, in[i].Name, len(out[i].Items), len(in[i].Items))
			}
		}
		if !reflect.DeepEqual(allItems(out), allItems(in)) {
			t.Errorf("seed %d: items %v, want %v", seed, allItems(out), allItems(in))
		}
	}
}

func TestDistribute_ContiguousSlicesInRoomOrder(t *testing.T) {
	out := Distribute(testRooms(), reverse{})

	// Pool: map potion torch key potion sword → reversed.
	want := [][]string{
		{"sword", "potion"},
		{"key"},
		{},
		{"torch", "potion", "map"},
	}
	for i, r := range out {
		if !reflect.DeepEqual(r.Items, want[i]) {
			t.Errorf("%s items = %v, want %v", r.Name, r.Items, want[i])
		}
	}
}

func TestDistribute_DoesNotModifyInput(t *testing.T) {
	in := testRooms()
	Distribute(in, reverse{})
	if !reflect.DeepEqual(in, testRooms()) {
		t.Error("input rooms were modified")
	}
}

func TestApply_RewritesDefsInOrder(t *testing.T) {
	defs := &state.Defs{Catalog: catalog.New(nil)}
	defs.SetRooms(testRooms())

	Apply(defs, reverse{})

	if !reflect.DeepEqual(defs.RoomOrder, []string{"Forest Entrance", "Cave", "River", "Hidden Chamber"}) {
		t.Errorf("order = %v", defs.RoomOrder)
	}
	if got := defs.Rooms["Cave"].Items; !reflect.DeepEqual(got, []string{"key"}) {
		t.Errorf("cave items = %v", got)
	}
	if got := defs.Rooms["Cave"].Connections; !reflect.DeepEqual(got, []string{"Forest Entrance"}) {
		t.Errorf("connections changed: %v", got)
	}
}
