package pathfind

import (
	"testing"

	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

type stubUnit struct{ id int }

func (s *stubUnit) ID() int              { return s.id }
func (s *stubUnit) HasDestination() bool { return false }

func newTestMap(t *testing.T) *world.Map {
	t.Helper()
	return world.NewMap(world.MapSettings{Rows: 20, Columns: 20})
}

func grids(m *world.Map, path []gamemath.Vec2) []world.GridPosition {
	out := make([]world.GridPosition, 0, len(path))
	for _, p := range path {
		out = append(out, world.PositionToGrid(p.X, p.Y))
	}
	return out
}

func TestAStarStraightLine(t *testing.T) {
	m := newTestMap(t)
	path := AStar(m, world.GridPosition{X: 0, Y: 0}, world.GridPosition{X: 5, Y: 0}, false)
	want := []gamemath.Vec2{
		{X: 90, Y: 25}, {X: 150, Y: 25}, {X: 210, Y: 25}, {X: 270, Y: 25}, {X: 330, Y: 25},
	}
	if len(path) != len(want) {
		t.Fatalf("path has %d positions, want %d: %v", len(path), len(want), path)
	}
	for i, p := range path {
		if p != want[i] {
			t.Errorf("path[%d] = %v, want %v", i, p, want[i])
		}
	}
}

func TestAStarAroundObstacle(t *testing.T) {
	m := newTestMap(t)
	blocked := m.Node(world.GridPosition{X: 2, Y: 0})
	blocked.SetObstacle(1)

	start := world.GridPosition{X: 0, Y: 0}
	end := world.GridPosition{X: 4, Y: 0}
	path := AStar(m, start, end, false)
	if len(path) == 0 {
		t.Fatal("no path found around a single obstacle")
	}
	steps := grids(m, path)
	if steps[len(steps)-1] != end {
		t.Fatalf("path ends at %v, want %v", steps[len(steps)-1], end)
	}
	previous := start
	for i, step := range steps {
		if step == blocked.Grid {
			t.Fatal("path crosses the obstacle")
		}
		node := m.Node(step)
		if node == nil || !node.Walkable() {
			t.Fatalf("path step %d (%v) is not walkable", i, step)
		}
		dx, dy := step.X-previous.X, step.Y-previous.Y
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
			t.Fatalf("path step %d (%v) is not adjacent to %v", i, step, previous)
		}
		previous = step
	}
	// the detour must leave row 0 to pass the blocked column
	detoured := false
	for _, step := range steps {
		if step.Y != 0 {
			detoured = true
		}
	}
	if !detoured {
		t.Error("path never left row 0 despite the obstacle")
	}
}

func TestAStarSecondPassThroughUnits(t *testing.T) {
	m := newTestMap(t)
	// wall of units across column 2: walkable pass fails, pathable succeeds
	for y := 0; y < 20; y++ {
		m.Node(world.GridPosition{X: 2, Y: y}).SetUnit(&stubUnit{id: y + 1})
	}
	path := AStar(m, world.GridPosition{X: 0, Y: 5}, world.GridPosition{X: 5, Y: 5}, false)
	if len(path) == 0 {
		t.Fatal("pathable fallback should cross a transient unit wall")
	}
	if got := world.PositionToGrid(path[len(path)-1].X, path[len(path)-1].Y); got != (world.GridPosition{X: 5, Y: 5}) {
		t.Errorf("fallback path ends at %v", got)
	}
}

func TestAStarNoPath(t *testing.T) {
	m := newTestMap(t)
	// obstacles fully enclose the destination
	end := world.GridPosition{X: 10, Y: 10}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			m.Node(world.GridPosition{X: 10 + dx, Y: 10 + dy}).SetObstacle(1)
		}
	}
	if path := AStar(m, world.GridPosition{X: 0, Y: 0}, end, false); len(path) != 0 {
		t.Errorf("expected no path into a sealed area, got %v", path)
	}
}

func TestAStarOffMapEndpoints(t *testing.T) {
	m := newTestMap(t)
	if path := AStar(m, world.GridPosition{X: 0, Y: 0}, world.GridPosition{X: 99, Y: 99}, false); len(path) != 0 {
		t.Error("off-map destination must produce no path")
	}
	if path := AStar(m, world.GridPosition{X: -3, Y: 0}, world.GridPosition{X: 5, Y: 5}, false); len(path) != 0 {
		t.Error("off-map start must produce no path")
	}
}
