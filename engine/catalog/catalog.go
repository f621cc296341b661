// Package catalog holds the immutable item metadata table.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/miniquest/types"
)

// ErrNotFound is returned by Get for names absent from the catalog.
var ErrNotFound = errors.New("item not found")

// Catalog is a read-only lookup of item definitions keyed by name.
type Catalog struct {
	items map[string]types.ItemDef
}

// New builds a catalog from the given definitions. The input map is copied;
// each entry's Name is set from its key.
func New(defs map[string]types.ItemDef) *Catalog {
	items := make(map[string]types.ItemDef, len(defs))
	for name, def := range defs {
		def.Name = name
		items[name] = def
	}
	return &Catalog{items: items}
}

// Lookup returns the definition for name and whether it exists.
func (c *Catalog) Lookup(name string) (types.ItemDef, bool) {
	if c == nil {
		return types.ItemDef{}, false
	}
	def, ok := c.items[name]
	return def, ok
}

// Get is Lookup with an error for callers that want one.
func (c *Catalog) Get(name string) (types.ItemDef, error) {
	def, ok := c.Lookup(name)
	if !ok {
		return types.ItemDef{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return def, nil
}

// Names returns all item names, sorted.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.items))
	for name := range c.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}
