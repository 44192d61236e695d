package pathfind

import (
	"log/slog"
	"sort"

	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// OptimalPathLength is the step interval at which long group paths are sliced
// into intermediate waypoint rings.
const OptimalPathLength = 50

// Navigator is a unit steered by the pathfinder. Requests and group
// navigation address units only through this interface.
type Navigator interface {
	ID() int
	CurrentGrid() world.GridPosition
	FollowNewPath(path []gamemath.Vec2)
	ReachedDestination(grid world.GridPosition) bool
	Nearby(grid world.GridPosition) bool
	HasDestination() bool
	IsHeadingTo(grid world.GridPosition) bool
	OrderMove(grid world.GridPosition)
	StopCompletely()
	AttachNavigatingGroup(group *NavigatingGroup)
	AttachWaypointsQueue(queue *WaypointsQueue)
}

// PathRequest is a queued unit path query.
type PathRequest struct {
	Unit  Navigator
	Start world.GridPosition
	End   world.GridPosition
}

// Pathfinder resolves path requests one per tick to smooth the CPU load, and
// drives waypoint queues and navigating unit groups.
type Pathfinder struct {
	gameMap *world.Map

	requests []PathRequest

	createdWaypointsQueue *WaypointsQueue
	waypointsQueues       []*WaypointsQueue
	navigatingGroups      []*NavigatingGroup

	// counters kept for diagnostics
	RequestsCount int
	PathsFound    int
}

// NewPathfinder creates a pathfinder over the given map.
func NewPathfinder(m *world.Map) *Pathfinder {
	return &Pathfinder{gameMap: m}
}

// Map returns the map this pathfinder searches.
func (p *Pathfinder) Map() *world.Map { return p.gameMap }

// QueueLength returns the number of outstanding path requests.
func (p *Pathfinder) QueueLength() int { return len(p.requests) }

// HasRequestFor reports whether the unit has an outstanding path request.
func (p *Pathfinder) HasRequestFor(unit Navigator) bool {
	for _, request := range p.requests {
		if request.Unit == unit {
			return true
		}
	}
	return false
}

// RequestPath enqueues a path request resolved on a later tick.
func (p *Pathfinder) RequestPath(unit Navigator, start, end world.GridPosition) {
	p.requests = append(p.requests, PathRequest{Unit: unit, Start: start, End: end})
	p.RequestsCount++
}

// CancelUnitPathRequests drops every outstanding request of the unit.
func (p *Pathfinder) CancelUnitPathRequests(unit Navigator) {
	kept := p.requests[:0]
	for _, request := range p.requests {
		if request.Unit != unit {
			kept = append(kept, request)
		}
	}
	p.requests = kept
}

// Update advances waypoint queues and navigating groups, then takes the
// oldest path request and tries to resolve it. An unresolvable request goes
// to the back of the queue.
func (p *Pathfinder) Update() {
	p.updateWaypointsQueues()
	p.updateNavigatingGroups()
	if len(p.requests) == 0 {
		return
	}
	request := p.requests[0]
	p.requests = p.requests[1:]
	if request.Start == request.End {
		return
	}
	if p.gameMap.GridToNode(request.End).Walkable() {
		if path := AStar(p.gameMap, request.Start, request.End, false); len(path) > 0 {
			p.PathsFound++
			request.Unit.FollowNewPath(path)
			return
		}
	}
	p.requests = append(p.requests, request)
}

func (p *Pathfinder) updateWaypointsQueues() {
	kept := p.waypointsQueues[:0]
	for _, queue := range p.waypointsQueues {
		if !queue.active {
			kept = append(kept, queue)
			continue
		}
		if queue.Empty() {
			continue
		}
		queue.update()
		kept = append(kept, queue)
	}
	p.waypointsQueues = kept
}

func (p *Pathfinder) updateNavigatingGroups() {
	kept := p.navigatingGroups[:0]
	for _, group := range p.navigatingGroups {
		if group.Empty() {
			continue
		}
		group.update()
		kept = append(kept, group)
	}
	p.navigatingGroups = kept
}

// NavigateUnitsToDestination sends many units toward one destination through
// a shared navigating group.
func (p *Pathfinder) NavigateUnitsToDestination(units []Navigator, x, y float64) {
	if len(units) == 0 {
		return
	}
	group := newNavigatingGroup(p, units, x, y)
	p.navigatingGroups = append(p.navigatingGroups, group)
}

// EnqueueWaypoint appends a player-chosen waypoint to the queue currently
// being authored, creating the queue on first use.
func (p *Pathfinder) EnqueueWaypoint(units []Navigator, x, y float64) {
	if p.createdWaypointsQueue == nil {
		p.createdWaypointsQueue = newWaypointsQueue(p, units)
	}
	p.createdWaypointsQueue.AddWaypoint(x, y)
}

// FinishWaypointsQueue activates the queue being authored.
func (p *Pathfinder) FinishWaypointsQueue() {
	if queue := p.createdWaypointsQueue; queue != nil {
		p.waypointsQueues = append(p.waypointsQueues, queue)
		queue.start()
	}
	p.createdWaypointsQueue = nil
}

// RemoveUnitFromWaypointsQueue detaches the unit from whichever queue holds it.
func (p *Pathfinder) RemoveUnitFromWaypointsQueue(unit Navigator) {
	for _, queue := range p.waypointsQueues {
		queue.removeUnit(unit)
	}
}

// GroupOfWaypoints finds the requested number of unique walkable grids around
// a position, closest first. The searched area grows until enough walkable
// nodes are collected.
func (p *Pathfinder) GroupOfWaypoints(x, y float64, required int) []world.GridPosition {
	center := world.PositionToGrid(x, y)
	if required == 1 {
		return []world.GridPosition{center}
	}
	var waypoints []world.GridPosition
	for radius := 1; len(waypoints) < required; radius++ {
		waypoints = waypoints[:0]
		for _, offset := range gamemath.CircularAreaMatrix(radius) {
			grid := world.GridPosition{X: center.X + offset.DX, Y: center.Y + offset.DY}
			if node := p.gameMap.Node(grid); node != nil && node.Walkable() {
				waypoints = append(waypoints, grid)
			}
		}
		if radius > p.gameMap.Columns+p.gameMap.Rows {
			slog.Warn("not enough walkable nodes for group waypoints",
				"required", required, "found", len(waypoints))
			break
		}
	}
	sort.Slice(waypoints, func(i, j int) bool {
		return gridDistance(waypoints[i], center) < gridDistance(waypoints[j], center)
	})
	if len(waypoints) > required {
		waypoints = waypoints[:required]
	}
	return waypoints
}

// ClosestWalkablePosition finds the nearest currently walkable node position,
// expanding outward ring by ring from the given point.
func (p *Pathfinder) ClosestWalkablePosition(x, y float64) gamemath.Vec2 {
	start := p.gameMap.PositionToNode(x, y)
	if start.Walkable() {
		return start.Position
	}
	visited := map[world.GridPosition]struct{}{start.Grid: {}}
	frontier := []*world.MapNode{start}
	for len(frontier) > 0 {
		var next []*world.MapNode
		for _, node := range frontier {
			for _, adjacent := range p.gameMap.AdjacentNodes(node.Position.X, node.Position.Y) {
				if _, seen := visited[adjacent.Grid]; seen {
					continue
				}
				if adjacent.Walkable() {
					return adjacent.Position
				}
				visited[adjacent.Grid] = struct{}{}
				next = append(next, adjacent)
			}
		}
		frontier = next
	}
	return start.Position
}

func gridDistance(a, b world.GridPosition) float64 {
	return world.GridToPosition(a).Distance(world.GridToPosition(b))
}
