package pathfind

import (
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// NavigatingGroup coordinates many units moving to the same destination.
// Instead of running A* separately for every unit, it computes one full path
// from the first unit, then every OptimalPathLength steps along it assigns
// each unit its own waypoint from a ring of unique walkable grids. Per-unit
// waypoint lists are stored reversed so the next target is the last element
// and is consumed with a cheap pop.
type NavigatingGroup struct {
	pathfinder  *Pathfinder
	destination world.GridPosition

	units      []Navigator
	unitsPaths map[Navigator][]world.GridPosition
}

func newNavigatingGroup(p *Pathfinder, units []Navigator, x, y float64) *NavigatingGroup {
	group := &NavigatingGroup{
		pathfinder:  p,
		destination: world.PositionToGrid(x, y),
		units:       units,
		unitsPaths:  make(map[Navigator][]world.GridPosition, len(units)),
	}
	for _, unit := range units {
		unit.StopCompletely()
		unit.AttachNavigatingGroup(group)
		group.unitsPaths[unit] = nil
	}
	group.createUnitsGroupPaths()
	group.reverseUnitsPaths()
	return group
}

// Discard removes a unit from the group without stopping it.
func (g *NavigatingGroup) Discard(unit Navigator) {
	delete(g.unitsPaths, unit)
	for i, u := range g.units {
		if u == unit {
			g.units = append(g.units[:i], g.units[i+1:]...)
			break
		}
	}
}

// Empty reports whether every unit has consumed its waypoints.
func (g *NavigatingGroup) Empty() bool { return len(g.unitsPaths) == 0 }

func (g *NavigatingGroup) createUnitsGroupPaths() {
	start := g.units[0].CurrentGrid()
	path := AStar(g.pathfinder.Map(), start, g.destination, true)
	if len(path) == 0 {
		return
	}
	last := path[len(path)-1]
	destinations := g.pathfinder.GroupOfWaypoints(last.X, last.Y, len(g.units))
	if len(path) > OptimalPathLength {
		g.slicePaths(path, destinations)
	} else {
		g.assignStep(destinations)
	}
}

func (g *NavigatingGroup) slicePaths(path []gamemath.Vec2, destinations []world.GridPosition) {
	for i := 0; i < len(path)/OptimalPathLength; i++ {
		step := path[i*OptimalPathLength]
		ring := g.pathfinder.GroupOfWaypoints(step.X, step.Y, len(g.units))
		g.assignStep(ring)
	}
	g.assignStep(destinations)
}

func (g *NavigatingGroup) assignStep(destinations []world.GridPosition) {
	for i, unit := range g.units {
		if i >= len(destinations) {
			break
		}
		g.unitsPaths[unit] = append(g.unitsPaths[unit], destinations[i])
	}
}

func (g *NavigatingGroup) reverseUnitsPaths() {
	for unit, steps := range g.unitsPaths {
		for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
			steps[i], steps[j] = steps[j], steps[i]
		}
		g.unitsPaths[unit] = steps
	}
}

func (g *NavigatingGroup) update() {
	var finished []Navigator
	for _, unit := range g.units {
		steps, tracked := g.unitsPaths[unit]
		if !tracked {
			continue
		}
		if len(steps) == 0 {
			finished = append(finished, unit)
			continue
		}
		destination := steps[len(steps)-1]
		if unit.ReachedDestination(destination) || unit.Nearby(destination) {
			g.unitsPaths[unit] = steps[:len(steps)-1]
		} else if !unit.HasDestination() && !unit.IsHeadingTo(destination) {
			unit.OrderMove(destination)
		}
	}
	for _, unit := range finished {
		g.Discard(unit)
		unit.AttachNavigatingGroup(nil)
	}
}
