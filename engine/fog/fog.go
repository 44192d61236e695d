// Package fog implements the fog of war: which map grids the local player
// has never seen, sees right now, and has seen before.
package fog

import (
	"github.com/akrol/steelfront/engine/world"
)

// SpriteKind distinguishes the two fog overlays.
type SpriteKind int

const (
	// Dark covers grids never revealed.
	Dark SpriteKind = iota
	// Semi covers grids explored earlier but not visible right now.
	Semi
)

// SpriteSink is the render collaborator drawing fog tiles. The core tells it
// which grids gain or lose which overlay; it never reads simulation state.
type SpriteSink interface {
	AddFogSprite(grid world.GridPosition, kind SpriteKind)
	RemoveFogSprite(grid world.GridPosition)
}

// NullSink drops all fog sprite traffic, for headless runs and tests.
type NullSink struct{}

func (NullSink) AddFogSprite(world.GridPosition, SpriteKind) {}
func (NullSink) RemoveFogSprite(world.GridPosition)          {}

// FogOfWar tracks three grid sets. unexplored starts as the whole map.
// visible collects the grids reported by observing entities this tick and is
// cleared at the end of every update. explored accumulates everything ever
// seen.
type FogOfWar struct {
	gameMap *world.Map
	sink    SpriteSink

	unexplored map[world.GridPosition]struct{}
	visible    map[world.GridPosition]struct{}
	explored   map[world.GridPosition]struct{}

	// grids currently covered by a sprite, and by which kind
	drawn map[world.GridPosition]SpriteKind
}

// New creates fog covering the whole map with dark sprites.
func New(m *world.Map, sink SpriteSink) *FogOfWar {
	if sink == nil {
		sink = NullSink{}
	}
	f := &FogOfWar{
		gameMap:    m,
		sink:       sink,
		unexplored: make(map[world.GridPosition]struct{}, m.Len()),
		visible:    make(map[world.GridPosition]struct{}),
		explored:   make(map[world.GridPosition]struct{}),
		drawn:      make(map[world.GridPosition]SpriteKind, m.Len()),
	}
	for _, grid := range m.AllGrids() {
		f.unexplored[grid] = struct{}{}
		f.drawn[grid] = Dark
		sink.AddFogSprite(grid, Dark)
	}
	return f
}

// RevealNodes is called by every observing entity with the set of grids it
// sees this tick.
func (f *FogOfWar) RevealNodes(revealed []world.GridPosition) {
	for _, grid := range revealed {
		f.visible[grid] = struct{}{}
	}
}

// Update applies this tick's reveals: visible grids lose their fog sprite,
// explored-but-no-longer-seen grids gain a semi-transparent one, and the
// explored/unexplored sets are advanced. visible is cleared for the next
// tick.
func (f *FogOfWar) Update() {
	for grid := range f.visible {
		if _, covered := f.drawn[grid]; covered {
			f.sink.RemoveFogSprite(grid)
			delete(f.drawn, grid)
		}
	}
	for grid := range f.explored {
		if _, seen := f.visible[grid]; seen {
			continue
		}
		if _, covered := f.drawn[grid]; covered {
			continue
		}
		f.drawn[grid] = Semi
		f.sink.AddFogSprite(grid, Semi)
	}
	for grid := range f.visible {
		f.explored[grid] = struct{}{}
		delete(f.unexplored, grid)
	}
	clear(f.visible)
}

// UnexploredCount returns how many grids were never revealed.
func (f *FogOfWar) UnexploredCount() int { return len(f.unexplored) }

// Explored reports whether the grid was ever seen.
func (f *FogOfWar) Explored(grid world.GridPosition) bool {
	_, ok := f.explored[grid]
	return ok
}

// VisibleNow reports whether the grid was reported as seen this tick and the
// tick has not been flushed yet.
func (f *FogOfWar) VisibleNow(grid world.GridPosition) bool {
	_, ok := f.visible[grid]
	return ok
}

// VisibleCount returns how many grids were reported seen this tick so far.
func (f *FogOfWar) VisibleCount() int { return len(f.visible) }

// ExploredGrids returns the explored set for saving and the minimap.
func (f *FogOfWar) ExploredGrids() []world.GridPosition {
	grids := make([]world.GridPosition, 0, len(f.explored))
	for g := range f.explored {
		grids = append(grids, g)
	}
	return grids
}

// RestoreExplored reapplies an explored set loaded from a save.
func (f *FogOfWar) RestoreExplored(grids []world.GridPosition) {
	for _, grid := range grids {
		f.explored[grid] = struct{}{}
		delete(f.unexplored, grid)
		if kind, covered := f.drawn[grid]; covered && kind == Dark {
			f.sink.RemoveFogSprite(grid)
			f.drawn[grid] = Semi
			f.sink.AddFogSprite(grid, Semi)
		}
	}
}
