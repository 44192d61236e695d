package pathfind

import (
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// WaypointsQueue is a player-authored ordered list of positions the selected
// units visit in sequence. Waypoints are added incrementally while the queue
// is being authored; pointing back at the first waypoint closes the queue
// into a patrol loop. Each unit gets its own slot from a ring of walkable
// grids around every waypoint.
type WaypointsQueue struct {
	pathfinder *Pathfinder

	units     []Navigator
	waypoints []gamemath.Vec2

	unitsWaypoints map[Navigator][]world.GridPosition
	// full per-unit routes kept to refill patrol loops
	unitsRoutes map[Navigator][]world.GridPosition

	active bool
	looped bool
}

func newWaypointsQueue(p *Pathfinder, units []Navigator) *WaypointsQueue {
	queue := &WaypointsQueue{
		pathfinder:     p,
		units:          units,
		unitsWaypoints: make(map[Navigator][]world.GridPosition, len(units)),
		unitsRoutes:    make(map[Navigator][]world.GridPosition, len(units)),
	}
	for _, unit := range units {
		queue.unitsWaypoints[unit] = nil
	}
	return queue
}

// AddWaypoint appends a waypoint. A waypoint equal to the first one closes
// the queue into a patrol loop and activates it.
func (q *WaypointsQueue) AddWaypoint(x, y float64) {
	position := world.NormalizePosition(x, y)
	if len(q.waypoints) > 1 && position == q.waypoints[0] {
		q.looped = true
		q.pathfinder.FinishWaypointsQueue()
		return
	}
	q.waypoints = append(q.waypoints, position)
	ring := q.pathfinder.GroupOfWaypoints(position.X, position.Y, len(q.units))
	for i, unit := range q.units {
		if i >= len(ring) {
			break
		}
		q.unitsWaypoints[unit] = append(q.unitsWaypoints[unit], ring[i])
	}
}

// Waypoints returns the authored waypoint positions, for on-screen display.
func (q *WaypointsQueue) Waypoints() []gamemath.Vec2 { return q.waypoints }

// Active reports whether the queue has started executing.
func (q *WaypointsQueue) Active() bool { return q.active }

// Empty reports whether no unit has waypoints left to visit.
func (q *WaypointsQueue) Empty() bool { return len(q.unitsWaypoints) == 0 }

func (q *WaypointsQueue) start() {
	q.active = true
	for unit, waypoints := range q.unitsWaypoints {
		// reverse so the next target is the last element, consumed with pop
		for i, j := 0, len(waypoints)-1; i < j; i, j = i+1, j-1 {
			waypoints[i], waypoints[j] = waypoints[j], waypoints[i]
		}
		q.unitsWaypoints[unit] = waypoints
		q.unitsRoutes[unit] = append([]world.GridPosition(nil), waypoints...)
		unit.AttachWaypointsQueue(q)
	}
}

func (q *WaypointsQueue) update() {
	var finished []Navigator
	for _, unit := range q.units {
		waypoints, tracked := q.unitsWaypoints[unit]
		if !tracked {
			continue
		}
		if len(waypoints) == 0 {
			if q.looped {
				q.unitsWaypoints[unit] = append([]world.GridPosition(nil), q.unitsRoutes[unit]...)
			} else {
				finished = append(finished, unit)
			}
			continue
		}
		destination := waypoints[len(waypoints)-1]
		if unit.ReachedDestination(destination) {
			q.unitsWaypoints[unit] = waypoints[:len(waypoints)-1]
		} else if !unit.HasDestination() && !unit.IsHeadingTo(destination) {
			unit.OrderMove(destination)
		}
	}
	for _, unit := range finished {
		q.removeUnit(unit)
	}
}

func (q *WaypointsQueue) removeUnit(unit Navigator) {
	if _, tracked := q.unitsWaypoints[unit]; !tracked {
		return
	}
	delete(q.unitsWaypoints, unit)
	delete(q.unitsRoutes, unit)
	for i, u := range q.units {
		if u == unit {
			q.units = append(q.units[:i], q.units[i+1:]...)
			break
		}
	}
	unit.AttachWaypointsQueue(nil)
}
