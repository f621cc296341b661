// Package state manages the static game definitions and the mutable game
// state: the room graph and the player.
package state

import (
	"github.com/nathoo/miniquest/engine/catalog"
	"github.com/nathoo/miniquest/types"
)

// Defs holds the immutable game definitions loaded from content.
type Defs struct {
	Game      types.GameDef
	Rooms     map[string]types.RoomDef
	RoomOrder []string // content order; the shuffler and the map walk rely on it
	Catalog   *catalog.Catalog
}

// OrderedRooms returns the room definitions in content order.
func (d *Defs) OrderedRooms() []types.RoomDef {
	rooms := make([]types.RoomDef, 0, len(d.RoomOrder))
	for _, name := range d.RoomOrder {
		if r, ok := d.Rooms[name]; ok {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

// SetRooms replaces the room definitions, keeping the given order.
func (d *Defs) SetRooms(rooms []types.RoomDef) {
	d.Rooms = make(map[string]types.RoomDef, len(rooms))
	d.RoomOrder = make([]string, 0, len(rooms))
	for _, r := range rooms {
		d.Rooms[r.Name] = r
		d.RoomOrder = append(d.RoomOrder, r.Name)
	}
}

// NewState creates a fresh game state from definitions. Each room's dynamic
// fields start as copies of its definition.
func NewState(defs *Defs) *types.State {
	rooms := make(map[string]*types.RoomState, len(defs.Rooms))
	for name, def := range defs.Rooms {
		rooms[name] = &types.RoomState{
			Items:       cloneStrings(def.Items),
			Connections: cloneStrings(def.Connections),
		}
	}
	return &types.State{
		Player: types.Player{
			Location:  defs.Game.Start,
			Inventory: []string{},
			HP:        defs.Game.StartHP,
		},
		Rooms: rooms,
	}
}

// Room returns the dynamic state of a room, or nil if it does not exist.
func Room(s *types.State, name string) *types.RoomState {
	return s.Rooms[name]
}

// CurrentRoom returns the dynamic state of the player's room.
func CurrentRoom(s *types.State) *types.RoomState {
	return s.Rooms[s.Player.Location]
}

// HasItem returns true if the player has the given item in inventory.
func HasItem(s *types.State, item string) bool {
	return contains(s.Player.Inventory, item)
}

// RoomHasItem returns true if the named room currently holds item.
func RoomHasItem(s *types.State, room, item string) bool {
	rs := s.Rooms[room]
	return rs != nil && contains(rs.Items, item)
}

// RemoveRoomItem removes the first instance of item from the room's items.
// Returns false if the item was not there.
func RemoveRoomItem(s *types.State, room, item string) bool {
	rs := s.Rooms[room]
	if rs == nil {
		return false
	}
	var ok bool
	rs.Items, ok = RemoveFirst(rs.Items, item)
	return ok
}

// AddConnection links room to target. Adding an existing link is a no-op.
// Returns true if the connection was added.
func AddConnection(s *types.State, room, target string) bool {
	rs := s.Rooms[room]
	if rs == nil || HasConnection(s, room, target) {
		return false
	}
	rs.Connections = append(rs.Connections, target)
	return true
}

// HasConnection reports whether room links to target.
func HasConnection(s *types.State, room, target string) bool {
	rs := s.Rooms[room]
	return rs != nil && contains(rs.Connections, target)
}

// RemoveFirst returns list without its first occurrence of v.
func RemoveFirst(list []string, v string) ([]string, bool) {
	for i, x := range list {
		if x == v {
			out := make([]string, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
