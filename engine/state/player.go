package state

import (
	"fmt"

	"github.com/nathoo/miniquest/engine/catalog"
	"github.com/nathoo/miniquest/types"
)

// flavor is the follow-up line printed when a non-consumable item is used.
var flavor = map[types.ItemType]string{
	types.ItemLight:    "The light pushes back the darkness around you.",
	types.ItemWeapon:   "You feel ready to face any threats.",
	types.ItemArmor:    "You feel protected and confident.",
	types.ItemMystical: "You feel a strange energy course through you.",
	types.ItemUnlock:   "Perhaps you can use this to open a door or chest.",
}

// PickUp appends item to the inventory. The caller checks the item is
// actually available.
func PickUp(s *types.State, item string) {
	s.Player.Inventory = append(s.Player.Inventory, item)
}

// UseItem uses an item from the inventory and returns the lines describing
// what happened. ok is false when nothing happened (not held, or unknown).
// Healing items are consumed; every other type only describes itself.
func UseItem(s *types.State, cat *catalog.Catalog, item string) (lines []string, ok bool) {
	if !HasItem(s, item) {
		return []string{"You don't have that item in your inventory."}, false
	}
	def, found := cat.Lookup(item)
	if !found {
		return []string{"You can't use that item right now."}, false
	}

	desc := def.Description
	if desc == "" {
		desc = "You use the item."
	}
	lines = append(lines, desc)

	if def.Type == types.ItemHealing {
		s.Player.HP += def.HealAmount
		s.Player.Inventory, _ = RemoveFirst(s.Player.Inventory, item)
		return append(lines, fmt.Sprintf("Your HP is now %d.", s.Player.HP)), true
	}

	if f, known := flavor[def.Type]; known {
		return append(lines, f), true
	}
	return append(lines, "You're not sure what effect this has..."), true
}

// AttackPower is 1 plus the damage of every weapon carried.
func AttackPower(s *types.State, cat *catalog.Catalog) int {
	power := 1
	for _, name := range s.Player.Inventory {
		if def, ok := cat.Lookup(name); ok && def.Type == types.ItemWeapon {
			power += def.Damage
		}
	}
	return power
}

// DefenseBonus is the summed defense of every armor piece carried.
func DefenseBonus(s *types.State, cat *catalog.Catalog) int {
	bonus := 0
	for _, name := range s.Player.Inventory {
		if def, ok := cat.Lookup(name); ok && def.Type == types.ItemArmor {
			bonus += def.Defense
		}
	}
	return bonus
}
