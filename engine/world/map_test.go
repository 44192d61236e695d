package world

import (
	"math"
	"testing"
)

func newTestMap(t *testing.T) *Map {
	t.Helper()
	return NewMap(MapSettings{Rows: 20, Columns: 20})
}

func TestGridPositionRoundTrip(t *testing.T) {
	cases := []struct {
		x, y float64
		grid GridPosition
	}{
		{0, 0, GridPosition{0, 0}},
		{59.9, 49.9, GridPosition{0, 0}},
		{60, 50, GridPosition{1, 1}},
		{90, 25, GridPosition{1, 0}},
		{305, 275, GridPosition{5, 5}},
	}
	for _, c := range cases {
		if got := PositionToGrid(c.x, c.y); got != c.grid {
			t.Errorf("PositionToGrid(%v, %v) = %v, want %v", c.x, c.y, got, c.grid)
		}
		center := GridToPosition(c.grid)
		wantX := float64(c.grid.X)*TileWidth + TileWidth/2
		wantY := float64(c.grid.Y)*TileHeight + TileHeight/2
		if center.X != wantX || center.Y != wantY {
			t.Errorf("GridToPosition(%v) = %v, want (%v, %v)", c.grid, center, wantX, wantY)
		}
		// normalizing any point of a tile yields the tile center
		if NormalizePosition(c.x, c.y) != GridToPosition(c.grid) {
			t.Errorf("NormalizePosition(%v, %v) is not the center of %v", c.x, c.y, c.grid)
		}
	}
}

func TestMapGeneration(t *testing.T) {
	m := newTestMap(t)
	if m.Len() != 400 {
		t.Fatalf("map has %d nodes, want 400", m.Len())
	}
	if m.Width != 20*TileWidth || m.Height != 20*TileHeight {
		t.Errorf("map dimensions %v x %v unexpected", m.Width, m.Height)
	}
	for _, node := range m.AllNodes() {
		if node.Sector == nil {
			t.Fatalf("node %v has no sector", node.Grid)
		}
		wantSector := GridPosition{X: node.Grid.X / SectorSize, Y: node.Grid.Y / SectorSize}
		if node.Sector.Grid != wantSector {
			t.Errorf("node %v in sector %v, want %v", node.Grid, node.Sector.Grid, wantSector)
		}
	}
}

func TestNeighbourCosts(t *testing.T) {
	m := newTestMap(t)
	node := m.Node(GridPosition{5, 5})
	if len(node.Costs) != 8 {
		t.Fatalf("interior node has %d neighbour costs, want 8", len(node.Costs))
	}
	straight := node.Costs[GridPosition{6, 5}]
	diagonal := node.Costs[GridPosition{6, 6}]
	// both nodes carry the default ground cost of 2
	if straight != 4 {
		t.Errorf("straight neighbour cost = %v, want 4", straight)
	}
	if math.Abs(diagonal-Diagonal*4) > 1e-9 {
		t.Errorf("diagonal neighbour cost = %v, want %v", diagonal, Diagonal*4)
	}

	corner := m.Node(GridPosition{0, 0})
	if len(corner.Costs) != 3 {
		t.Errorf("corner node has %d neighbour costs, want 3", len(corner.Costs))
	}
}

func TestAdjacencyClampedToBounds(t *testing.T) {
	m := newTestMap(t)
	corner := m.Node(GridPosition{0, 0}).Position
	if got := len(m.AdjacentNodes(corner.X, corner.Y)); got != 3 {
		t.Errorf("corner adjacency = %d, want 3", got)
	}
	center := m.Node(GridPosition{10, 10}).Position
	if got := len(m.AdjacentNodes(center.X, center.Y)); got != 8 {
		t.Errorf("interior adjacency = %d, want 8", got)
	}
}

type stubOccupant struct{ id int }

func (s *stubOccupant) ID() int              { return s.id }
func (s *stubOccupant) HasDestination() bool { return false }

type stubBlocker struct{ id int }

func (s *stubBlocker) ID() int { return s.id }

func TestWalkableAndPathable(t *testing.T) {
	m := newTestMap(t)
	node := m.Node(GridPosition{3, 3})
	if !node.Walkable() || !node.Pathable() {
		t.Fatal("fresh node should be walkable and pathable")
	}

	unit := &stubOccupant{id: 1}
	node.SetUnit(unit)
	if node.Walkable() {
		t.Error("node with a unit must not be walkable")
	}
	if !node.Pathable() {
		t.Error("a transient unit must not block pathability")
	}
	node.SetUnit(nil)

	building := &stubBlocker{id: 2}
	node.SetBuilding(building)
	if node.Pathable() || node.Walkable() {
		t.Error("node with a building must be neither pathable nor walkable")
	}
	node.SetBuilding(nil)

	node.SetObstacle(7)
	if node.Pathable() {
		t.Error("node with a terrain obstacle must not be pathable")
	}
	node.SetObstacle(0)
	if !node.Walkable() {
		t.Error("clearing the obstacle must restore walkability")
	}
}

func TestOffMapLookups(t *testing.T) {
	m := newTestMap(t)
	if m.OnMapArea(-1, 10) || m.OnMapArea(10, m.Height) {
		t.Error("points outside the map reported on-map")
	}
	node := m.GridToNode(GridPosition{99, 99})
	if node.Pathable() {
		t.Error("off-map node must not be pathable")
	}
	if m.Node(GridPosition{99, 99}) != nil {
		t.Error("Node should return nil for off-map grids")
	}
}

func TestSectorEntities(t *testing.T) {
	m := newTestMap(t)
	sector := m.Sector(GridPosition{0, 0})
	entityA := &stubSectorEntity{id: 1, player: 2}
	entityB := &stubSectorEntity{id: 2, player: 2}
	sector.AddEntity(entityA)
	sector.AddEntity(entityB)
	if got := len(sector.Entities(2)); got != 2 {
		t.Fatalf("sector holds %d entities for player 2, want 2", got)
	}
	sector.DiscardEntity(entityA)
	if got := len(sector.Entities(2)); got != 1 {
		t.Errorf("sector holds %d entities after discard, want 1", got)
	}
	// discarding twice is harmless
	sector.DiscardEntity(entityA)

	adjacent := m.Sector(GridPosition{0, 0}).AdjacentSectors()
	if len(adjacent) != 3 {
		t.Errorf("corner sector has %d adjacent sectors, want 3", len(adjacent))
	}
}

type stubSectorEntity struct{ id, player int }

func (s *stubSectorEntity) ID() int       { return s.id }
func (s *stubSectorEntity) PlayerID() int { return s.player }
