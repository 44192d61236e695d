package fog

import (
	"testing"

	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// recordingSink tracks which grids carry which fog sprite.
type recordingSink struct {
	tiles map[world.GridPosition]SpriteKind
}

func newRecordingSink() *recordingSink {
	return &recordingSink{tiles: make(map[world.GridPosition]SpriteKind)}
}

func (r *recordingSink) AddFogSprite(grid world.GridPosition, kind SpriteKind) {
	r.tiles[grid] = kind
}

func (r *recordingSink) RemoveFogSprite(grid world.GridPosition) {
	delete(r.tiles, grid)
}

func newTestFog(t *testing.T) (*FogOfWar, *recordingSink, *world.Map) {
	t.Helper()
	m := world.NewMap(world.MapSettings{Rows: 20, Columns: 20})
	sink := newRecordingSink()
	return New(m, sink), sink, m
}

// observedArea mirrors how entities compute their visibility disc.
func observedArea(m *world.Map, center world.GridPosition, radius int) []world.GridPosition {
	var grids []world.GridPosition
	for _, offset := range gamemath.CircularAreaMatrix(radius) {
		grid := world.GridPosition{X: center.X + offset.DX, Y: center.Y + offset.DY}
		if m.Contains(grid) {
			grids = append(grids, grid)
		}
	}
	return grids
}

func TestFogStartsFullyUnexplored(t *testing.T) {
	f, sink, m := newTestFog(t)
	if f.UnexploredCount() != m.Len() {
		t.Fatalf("unexplored = %d, want %d", f.UnexploredCount(), m.Len())
	}
	if len(sink.tiles) != m.Len() {
		t.Fatalf("%d dark sprites drawn, want %d", len(sink.tiles), m.Len())
	}
	for _, kind := range sink.tiles {
		if kind != Dark {
			t.Fatal("fresh map must be covered by dark sprites only")
		}
	}
}

func TestRevealLiftsFogAndAdvancesSets(t *testing.T) {
	f, sink, m := newTestFog(t)
	area := observedArea(m, world.GridPosition{X: 5, Y: 5}, 3)

	f.RevealNodes(area)
	if f.VisibleCount() != len(area) {
		t.Fatalf("visible = %d, want %d", f.VisibleCount(), len(area))
	}

	f.Update()
	// explored superset of the reveal, nothing revealed left unexplored
	for _, grid := range area {
		if !f.Explored(grid) {
			t.Fatalf("grid %v revealed but not explored", grid)
		}
		if _, covered := sink.tiles[grid]; covered {
			t.Fatalf("grid %v still carries a fog sprite while visible", grid)
		}
	}
	if f.UnexploredCount() != m.Len()-len(area) {
		t.Errorf("unexplored = %d, want %d", f.UnexploredCount(), m.Len()-len(area))
	}
	if f.VisibleCount() != 0 {
		t.Error("visible set must clear after the update")
	}
}

func TestExploredButUnseenGetsSemiTransparentFog(t *testing.T) {
	f, sink, m := newTestFog(t)
	area := observedArea(m, world.GridPosition{X: 5, Y: 5}, 2)

	f.RevealNodes(area)
	f.Update()
	// next tick nothing is revealed: the area falls back to semi fog
	f.Update()
	for _, grid := range area {
		kind, covered := sink.tiles[grid]
		if !covered || kind != Semi {
			t.Fatalf("grid %v should carry semi-transparent fog, got %v/%v", grid, kind, covered)
		}
		if !f.Explored(grid) {
			t.Fatalf("grid %v lost its explored status", grid)
		}
	}

	// revealing again lifts the semi fog
	f.RevealNodes(area[:1])
	f.Update()
	if _, covered := sink.tiles[area[0]]; covered {
		t.Error("re-revealed grid still carries fog")
	}
}

func TestRestoreExplored(t *testing.T) {
	f, sink, m := newTestFog(t)
	area := observedArea(m, world.GridPosition{X: 10, Y: 10}, 2)
	f.RestoreExplored(area)
	if f.UnexploredCount() != m.Len()-len(area) {
		t.Errorf("unexplored = %d after restore, want %d", f.UnexploredCount(), m.Len()-len(area))
	}
	for _, grid := range area {
		if kind := sink.tiles[grid]; kind != Semi {
			t.Errorf("restored grid %v should carry semi fog", grid)
		}
	}
}
