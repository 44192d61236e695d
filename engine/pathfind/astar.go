package pathfind

import (
	"container/heap"

	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// AStar finds the shortest path between two grids. The returned path starts
// just after start and ends at end; an empty result means no path exists.
//
// The open set is keyed by f = g + h*1.001; the epsilon breaks ties between
// equally-promising frontier nodes. The step cost added to g is the same
// cheap Manhattan heuristic, not the precalculated terrain-aware neighbour
// cost: this prefers short paths and ignores tile movement costs, a trade-off
// kept until a better expansion strategy lands.
//
// With pathable false only currently walkable nodes are expanded. If that
// pass fails the search reruns over all pathable nodes, which reaches areas
// temporarily enclosed by other units. There is no third pass.
func AStar(m *world.Map, start, end world.GridPosition, pathable bool) []gamemath.Vec2 {
	nodes := m.Nodes()
	if _, ok := nodes[start]; !ok {
		return nil
	}
	if _, ok := nodes[end]; !ok {
		return nil
	}

	unexplored := &priorityQueue{}
	heap.Init(unexplored)
	heap.Push(unexplored, &queueItem{grid: start, priority: heuristic(start, end) * 1.001})
	inQueue := map[world.GridPosition]struct{}{start: {}}
	explored := make(map[world.GridPosition]struct{})

	previous := make(map[world.GridPosition]world.GridPosition)
	costSoFar := map[world.GridPosition]float64{start: 0}

	for unexplored.Len() > 0 {
		current := heap.Pop(unexplored).(*queueItem).grid
		delete(inQueue, current)
		if current == end {
			return reconstructPath(nodes, previous, current)
		}
		explored[current] = struct{}{}

		node := nodes[current]
		var adjacent []*world.MapNode
		if pathable {
			adjacent = m.PathableAdjacent(node.Position.X, node.Position.Y)
		} else {
			adjacent = m.WalkableAdjacent(node.Position.X, node.Position.Y)
		}
		for _, next := range adjacent {
			grid := next.Grid
			if _, done := explored[grid]; done {
				continue
			}
			if _, queued := inQueue[grid]; queued {
				continue
			}
			total := costSoFar[current] + heuristic(grid, current)
			if old, known := costSoFar[grid]; known && total >= old {
				continue
			}
			previous[grid] = current
			costSoFar[grid] = total
			heap.Push(unexplored, &queueItem{grid: grid, priority: total + heuristic(grid, end)*1.001})
			inQueue[grid] = struct{}{}
		}
	}
	// no walkable path; retry over all pathable nodes before giving up
	if !pathable {
		return AStar(m, start, end, true)
	}
	return nil
}

func heuristic(a, b world.GridPosition) float64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}

func reconstructPath(nodes map[world.GridPosition]*world.MapNode,
	previous map[world.GridPosition]world.GridPosition,
	current world.GridPosition) []gamemath.Vec2 {

	grids := []world.GridPosition{current}
	for {
		prev, ok := previous[current]
		if !ok {
			break
		}
		grids = append(grids, prev)
		current = prev
	}
	// grids run from the destination back to the start; emit them reversed,
	// skipping the start node itself
	path := make([]gamemath.Vec2, 0, len(grids)-1)
	for i := len(grids) - 2; i >= 0; i-- {
		path = append(path, nodes[grids[i]].Position)
	}
	return path
}

type queueItem struct {
	grid     world.GridPosition
	priority float64
}

type priorityQueue []*queueItem

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x interface{}) { *q = append(*q, x.(*queueItem)) }
func (q *priorityQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
