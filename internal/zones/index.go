package zones

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/pixil98/go-locator/internal/storage"
)

type namedZone struct {
	name string
	zone *Zone
}

// Index answers which zones contain a point. A world is indexed when it is
// listed explicitly or when any zone belongs to it; lookups in any other
// world report that no containment data exists.
type Index struct {
	worlds map[string][]namedZone
}

// NewIndex builds an index from every zone in the store.
func NewIndex(store storage.Storer[*Zone], indexedWorlds []string) *Index {
	idx := &Index{worlds: make(map[string][]namedZone)}

	for _, w := range indexedWorlds {
		idx.worlds[w] = nil
	}

	for id, z := range store.GetAll() {
		idx.worlds[z.World] = append(idx.worlds[z.World], namedZone{name: id.String(), zone: z})
	}

	for w := range idx.worlds {
		slices.SortFunc(idx.worlds[w], func(a, b namedZone) int {
			return strings.Compare(a.name, b.name)
		})
	}

	slog.Info("zone index built", "worlds", idx.Worlds())
	return idx
}

// ZonesContaining returns the names of every zone holding p. The boolean is
// false when the world is empty or has no index, which is different from an
// indexed world where no zone applies.
func (i *Index) ZonesContaining(world string, p Point) ([]string, bool) {
	if world == "" {
		return nil, false
	}

	zs, ok := i.worlds[world]
	if !ok {
		return nil, false
	}

	names := []string{}
	for _, nz := range zs {
		if nz.zone.Contains(p) {
			names = append(names, nz.name)
		}
	}
	return names, true
}

// Worlds returns the indexed world names, sorted.
func (i *Index) Worlds() []string {
	worlds := make([]string, 0, len(i.worlds))
	for w := range i.worlds {
		worlds = append(worlds, w)
	}
	slices.Sort(worlds)
	return worlds
}
