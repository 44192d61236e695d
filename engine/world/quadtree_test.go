package world

import (
	"testing"

	"github.com/akrol/steelfront/engine/gamemath"
)

type stubQuadEntity struct {
	id      int
	faction int
	pos     gamemath.Vec2
}

func (s *stubQuadEntity) ID() int                 { return s.id }
func (s *stubQuadEntity) FactionID() int          { return s.faction }
func (s *stubQuadEntity) Position() gamemath.Vec2 { return s.pos }

func newTestQuadTree() *QuadTree {
	return NewQuadTree(600, 500, 1200, 1000, DefaultQuadTreeEntities)
}

func TestQuadTreeInsertSubdividesFullLeaves(t *testing.T) {
	tree := newTestQuadTree()
	var entities []*stubQuadEntity
	for i := 0; i < 25; i++ {
		e := &stubQuadEntity{
			id:      i + 1,
			faction: 2,
			pos:     gamemath.Vec2{X: float64(40 + i*45), Y: float64(30 + i*37)},
		}
		entities = append(entities, e)
		if leaf := tree.Insert(e); leaf == nil {
			t.Fatalf("entity %d not inserted", e.id)
		}
	}
	if got := tree.TotalEntities(); got != len(entities) {
		t.Fatalf("tree holds %d entities, want %d", got, len(entities))
	}
	if tree.TotalDepth() == 0 {
		t.Error("25 inserts should have subdivided the tree")
	}
}

func TestQuadTreeInsertOutsideBounds(t *testing.T) {
	tree := newTestQuadTree()
	outside := &stubQuadEntity{id: 1, faction: 2, pos: gamemath.Vec2{X: 5000, Y: 5000}}
	if tree.Insert(outside) != nil {
		t.Error("insert outside the tree bounds must fail")
	}
}

func TestQuadTreeRemoveAndCollapse(t *testing.T) {
	tree := newTestQuadTree()
	var entities []*stubQuadEntity
	for i := 0; i < 12; i++ {
		e := &stubQuadEntity{id: i + 1, faction: 4, pos: gamemath.Vec2{X: float64(100 + i*60), Y: 400}}
		entities = append(entities, e)
		tree.Insert(e)
	}
	for _, e := range entities {
		tree.Remove(e)
	}
	if got := tree.TotalEntities(); got != 0 {
		t.Fatalf("tree holds %d entities after removing all, want 0", got)
	}
	if tree.TotalDepth() != 0 {
		t.Error("emptied tree should collapse back to a single leaf")
	}
}

func TestQuadTreeQueryFiltersFaction(t *testing.T) {
	tree := newTestQuadTree()
	friend := &stubQuadEntity{id: 1, faction: 2, pos: gamemath.Vec2{X: 100, Y: 100}}
	enemyNear := &stubQuadEntity{id: 2, faction: 4, pos: gamemath.Vec2{X: 130, Y: 100}}
	enemyFar := &stubQuadEntity{id: 3, faction: 4, pos: gamemath.Vec2{X: 1100, Y: 900}}
	for _, e := range []*stubQuadEntity{friend, enemyNear, enemyFar} {
		tree.Insert(e)
	}
	hostile := map[int]struct{}{4: {}}

	found := tree.Query(hostile, gamemath.NewRect(100, 100, 200, 200), nil)
	if len(found) != 1 || found[0].ID() != enemyNear.ID() {
		t.Fatalf("rect query returned %v, want only entity 2", found)
	}

	visible := tree.FindVisibleEntitiesInCircle(100, 100, 50, hostile)
	if len(visible) != 1 || visible[0].ID() != enemyNear.ID() {
		t.Fatalf("circle query returned %v, want only entity 2", visible)
	}

	// the circle is exact: an entity inside the bounding rect but outside
	// the radius is rejected
	if got := tree.FindVisibleEntitiesInCircle(100, 100, 25, hostile); len(got) != 0 {
		t.Errorf("circle query radius 25 returned %d entities, want 0", len(got))
	}
}

func TestQuadTreeEntityCountStaysConsistent(t *testing.T) {
	tree := newTestQuadTree()
	live := make(map[int]*stubQuadEntity)
	id := 0
	for round := 0; round < 4; round++ {
		for i := 0; i < 10; i++ {
			id++
			e := &stubQuadEntity{id: id, faction: 2, pos: gamemath.Vec2{X: float64(20 + id*23%1150), Y: float64(20 + id*31%950)}}
			live[id] = e
			tree.Insert(e)
		}
		removed := 0
		for key, e := range live {
			if removed >= 5 {
				break
			}
			tree.Remove(e)
			delete(live, key)
			removed++
		}
		if got := tree.TotalEntities(); got != len(live) {
			t.Fatalf("round %d: tree holds %d entities, want %d", round, got, len(live))
		}
	}
}
