// Package shuffle redistributes the static room items across rooms while
// keeping every room's item count.
package shuffle

import (
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

// Source produces a uniform random permutation. *rand.Rand and the engine
// RNG both satisfy it.
type Source interface {
	Shuffle(n int, swap func(i, j int))
}

// Distribute pools the items of all rooms, permutes the pool and hands each
// room, in order, as many items as it started with. The input is not
// modified.
func Distribute(rooms []types.RoomDef, src Source) []types.RoomDef {
	counts := make([]int, len(rooms))
	var pool []string
	for i, r := range rooms {
		counts[i] = len(r.Items)
		pool = append(pool, r.Items...)
	}

	src.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	out := make([]types.RoomDef, len(rooms))
	idx := 0
	for i, r := range rooms {
		assigned := make([]string, counts[i])
		copy(assigned, pool[idx:idx+counts[i]])
		idx += counts[i]

		r.Items = assigned
		r.Connections = append([]string(nil), r.Connections...)
		out[i] = r
	}
	return out
}

// Apply shuffles defs' room items in place. It must run before any state
// is built from defs.
func Apply(defs *state.Defs, src Source) {
	defs.SetRooms(Distribute(defs.OrderedRooms(), src))
}
