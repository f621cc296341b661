package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/miniquest/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known item types.
var validItemTypes = map[types.ItemType]bool{
	types.ItemHealing:  true,
	types.ItemLight:    true,
	types.ItemWeapon:   true,
	types.ItemArmor:    true,
	types.ItemMystical: true,
	types.ItemUnlock:   true,
	types.ItemOther:    true,
}

// validate checks content for referential integrity and consistency. It
// returns warnings separately; the error is non-nil only when there are
// errors.
func validate(c *content) ([]string, error) {
	ve := &ValidationError{}

	if len(c.rooms) == 0 {
		ve.Errors = append(ve.Errors, "no rooms defined")
	}

	rooms := map[string]bool{}
	for _, r := range c.rooms {
		if r.Name == "" {
			ve.Errors = append(ve.Errors, "room with empty name")
			continue
		}
		if rooms[r.Name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate room %q", r.Name))
		}
		rooms[r.Name] = true
	}

	// Start room exists.
	if !rooms[c.game.Start] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start room %q not found in defined rooms", c.game.Start))
	}
	if c.game.StartHP <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"starting hp must be positive, got %d", c.game.StartHP))
	}

	reachable := map[string]bool{c.game.Start: true}
	for _, r := range c.rooms {
		for _, target := range r.Connections {
			if !rooms[target] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"room %q connects to undefined room %q", r.Name, target))
			}
			if target == r.Name {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"room %q connects to itself", r.Name))
			}
			reachable[target] = true
		}
		for _, item := range r.Items {
			if _, ok := c.items[item]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"room %q holds undefined item %q", r.Name, item))
			}
		}
	}

	// Warnings: rooms nothing leads to may still be opened at run time.
	for _, r := range c.rooms {
		if !reachable[r.Name] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"room %q has no connections leading to it", r.Name))
		}
	}

	for _, name := range c.duplicateItems {
		ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate item %q", name))
	}

	for _, name := range sortedKeys(c.items) {
		it := c.items[name]
		if it.Type == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q has no type", name))
		} else if !validItemTypes[it.Type] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"item %q has unrecognized type %q", name, it.Type))
		}
		if it.Type == types.ItemHealing && it.HealAmount <= 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"healing item %q heals nothing", name))
		}
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func sortedKeys(m map[string]types.ItemDef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
