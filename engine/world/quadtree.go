package world

import (
	"github.com/akrol/steelfront/engine/gamemath"
)

// DefaultQuadTreeEntities is how many entities a quadtree leaf holds before
// it subdivides.
const DefaultQuadTreeEntities = 5

// QuadEntity is anything indexable by the map quadtree.
type QuadEntity interface {
	ID() int
	FactionID() int
	Position() gamemath.Vec2
}

// QuadTree is a dynamic spatial index over all player entities, used for
// range queries like enemy scans and drag-selection. Each node holds at most
// maxEntities entities keyed by faction id; an insert into a full leaf
// subdivides it into four equal quadrants.
type QuadTree struct {
	gamemath.Rect

	maxEntities   int
	depth         int
	entitiesCount int
	entities      map[int]map[int]QuadEntity
	children      []*QuadTree
}

// NewQuadTree creates a quadtree root covering the given centered rectangle.
func NewQuadTree(cx, cy, width, height float64, maxEntities int) *QuadTree {
	if maxEntities <= 0 {
		maxEntities = DefaultQuadTreeEntities
	}
	return &QuadTree{
		Rect:        gamemath.NewRect(cx, cy, width, height),
		maxEntities: maxEntities,
		entities:    make(map[int]map[int]QuadEntity),
	}
}

// NewMapQuadTree creates a quadtree covering the whole map.
func NewMapQuadTree(m *Map) *QuadTree {
	return NewQuadTree(m.Width/2, m.Height/2, m.Width, m.Height, DefaultQuadTreeEntities)
}

// InBounds reports whether an entity's position lies inside this node's
// rectangle.
func (q *QuadTree) InBounds(entity QuadEntity) bool {
	return q.Contains(entity.Position())
}

// Insert descends to the first node with free capacity that contains the
// entity and stores it there, subdividing full leaves on the way. It returns
// the node the entity ended in, or nil if the entity lies outside this tree.
func (q *QuadTree) Insert(entity QuadEntity) *QuadTree {
	if !q.InBounds(entity) {
		return nil
	}
	if q.entitiesCount < q.maxEntities {
		q.addToEntities(entity)
		return q
	}
	if q.children == nil {
		q.divide()
	}
	for _, child := range q.children {
		if leaf := child.Insert(entity); leaf != nil {
			return leaf
		}
	}
	return nil
}

func (q *QuadTree) addToEntities(entity QuadEntity) {
	factionID := entity.FactionID()
	byFaction, ok := q.entities[factionID]
	if !ok {
		byFaction = make(map[int]QuadEntity)
		q.entities[factionID] = byFaction
	}
	byFaction[entity.ID()] = entity
	q.entitiesCount++
}

// Remove detaches the entity from the subtree holding it and collapses empty
// branches back into leaves.
func (q *QuadTree) Remove(entity QuadEntity) {
	if byFaction, ok := q.entities[entity.FactionID()]; ok {
		if _, held := byFaction[entity.ID()]; held {
			delete(byFaction, entity.ID())
			q.entitiesCount--
			q.Collapse()
			return
		}
	}
	for _, child := range q.children {
		child.Remove(entity)
	}
	if q.children != nil {
		q.Collapse()
	}
}

func (q *QuadTree) divide() {
	cx, cy := q.CX, q.CY
	halfWidth, halfHeight := q.Width/2, q.Height/2
	quartWidth, quartHeight := halfWidth/2, halfHeight/2
	depth := q.depth + 1
	q.children = []*QuadTree{
		newChild(cx-quartWidth, cy+quartHeight, halfWidth, halfHeight, q.maxEntities, depth),
		newChild(cx+quartWidth, cy+quartHeight, halfWidth, halfHeight, q.maxEntities, depth),
		newChild(cx+quartWidth, cy-quartHeight, halfWidth, halfHeight, q.maxEntities, depth),
		newChild(cx-quartWidth, cy-quartHeight, halfWidth, halfHeight, q.maxEntities, depth),
	}
}

func newChild(cx, cy, w, h float64, maxEntities, depth int) *QuadTree {
	child := NewQuadTree(cx, cy, w, h, maxEntities)
	child.depth = depth
	return child
}

// Collapse merges this node back into a leaf if every descendant is empty.
// It reports whether the whole subtree is empty.
func (q *QuadTree) Collapse() bool {
	allEmpty := true
	for _, child := range q.children {
		if !child.Collapse() {
			allEmpty = false
		}
	}
	if allEmpty {
		q.children = nil
	}
	return q.children == nil && q.entitiesCount == 0
}

// Query collects into found all entities inside bounds whose faction id is in
// factionIDs. Subtrees not intersecting bounds are skipped.
func (q *QuadTree) Query(factionIDs map[int]struct{}, bounds gamemath.Rect, found []QuadEntity) []QuadEntity {
	if !q.Intersects(bounds) {
		return found
	}
	for factionID, entities := range q.entities {
		if _, wanted := factionIDs[factionID]; !wanted {
			continue
		}
		for _, e := range entities {
			if bounds.Contains(e.Position()) {
				found = append(found, e)
			}
		}
	}
	for _, child := range q.children {
		found = child.Query(factionIDs, bounds, found)
	}
	return found
}

// FindVisibleEntitiesInCircle returns all entities of the given factions
// whose position lies strictly inside the circle. A rectangle query
// prefilters candidates, then exact distances are checked.
func (q *QuadTree) FindVisibleEntitiesInCircle(cx, cy, radius float64, factionIDs map[int]struct{}) []QuadEntity {
	diameter := radius + radius
	candidates := q.Query(factionIDs, gamemath.NewRect(cx, cy, diameter, diameter), nil)
	center := gamemath.Vec2{X: cx, Y: cy}
	visible := candidates[:0]
	for _, e := range candidates {
		if e.Position().Distance(center) < radius {
			visible = append(visible, e)
		}
	}
	return visible
}

// TotalEntities counts entities held in this subtree.
func (q *QuadTree) TotalEntities() int {
	total := q.entitiesCount
	for _, child := range q.children {
		total += child.TotalEntities()
	}
	return total
}

// TotalDepth returns the deepest subdivision level of the tree.
func (q *QuadTree) TotalDepth() int {
	depth := q.depth
	for _, child := range q.children {
		if d := child.TotalDepth(); d > depth {
			depth = d
		}
	}
	return depth
}

// Clear removes every entity from the tree.
func (q *QuadTree) Clear() {
	for _, child := range q.children {
		child.Clear()
	}
	q.entities = make(map[int]map[int]QuadEntity)
	q.entitiesCount = 0
	q.children = nil
}
