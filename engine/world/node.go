package world

import (
	"github.com/akrol/steelfront/engine/gamemath"
)

// TerrainCost grades how expensive a tile is to traverse.
type TerrainCost int

const (
	Asphalt TerrainCost = 1
	Ground  TerrainCost = 2
	Grass   TerrainCost = 3
	Sand    TerrainCost = 4
	Mud     TerrainCost = 5
)

// String returns the display name of the terrain kind
func (t TerrainCost) String() string {
	switch t {
	case Asphalt:
		return "asphalt"
	case Ground:
		return "ground"
	case Grass:
		return "grass"
	case Sand:
		return "sand"
	case Mud:
		return "mud"
	default:
		return "unknown"
	}
}

// NodeOccupant is a unit currently standing on, or reserving, a map node.
type NodeOccupant interface {
	ID() int
	HasDestination() bool
}

// NodeBlocker is a building occupying one or more map nodes.
type NodeBlocker interface {
	ID() int
}

// MapNode is a single point on the map which can be a pathfinding destination.
// Blocking and unblocking of a node happens only through the update routines
// of the entity standing on it, never through the Map itself.
type MapNode struct {
	Grid     GridPosition
	Position gamemath.Vec2
	Sector   *Sector

	// Costs holds the precalculated movement cost to each of the up to 8
	// neighbours, keyed by the neighbour's grid.
	Costs map[GridPosition]float64

	TerrainCost TerrainCost

	allowedForPathfinding bool
	obstacleID            int

	unit     NodeOccupant
	building NodeBlocker
}

func newMapNode(x, y int, sector *Sector) *MapNode {
	return &MapNode{
		Grid:                  GridPosition{X: x, Y: y},
		Position:              GridToPosition(GridPosition{X: x, Y: y}),
		Sector:                sector,
		Costs:                 make(map[GridPosition]float64),
		TerrainCost:           Ground,
		allowedForPathfinding: true,
	}
}

// Unit returns the unit blocking this node, if any.
func (n *MapNode) Unit() NodeOccupant { return n.unit }

// SetUnit blocks or unblocks the node with a unit. Called by units when they
// swap their current and reserved nodes.
func (n *MapNode) SetUnit(unit NodeOccupant) { n.unit = unit }

// Building returns the building occupying this node, if any.
func (n *MapNode) Building() NodeBlocker { return n.building }

// SetBuilding blocks or unblocks the node with a building.
func (n *MapNode) SetBuilding(building NodeBlocker) { n.building = building }

// ObstacleID returns the id of the terrain object rooted here, 0 if none.
func (n *MapNode) ObstacleID() int { return n.obstacleID }

// SetObstacle marks the node as occupied by a terrain obstacle and toggles
// its pathability accordingly.
func (n *MapNode) SetObstacle(id int) {
	n.obstacleID = id
	n.allowedForPathfinding = id == 0
}

// SetPathable overrides whether the node may be used for pathfinding at all.
func (n *MapNode) SetPathable(value bool) { n.allowedForPathfinding = value }

// Pathable reports if this node is available for pathfinding at all: nothing
// permanent (terrain obstacle or building) stands on it.
func (n *MapNode) Pathable() bool {
	return n.allowedForPathfinding && n.building == nil
}

// Walkable reports if the node is not blocked at this very moment, by
// buildings, obstacles or another unit.
func (n *MapNode) Walkable() bool {
	return n.Pathable() && n.unit == nil
}

// DiagonalTo reports whether other lies diagonally from this node.
func (n *MapNode) DiagonalTo(other GridPosition) bool {
	return n.Grid.X != other.X && n.Grid.Y != other.Y
}
