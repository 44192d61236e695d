package world

import (
	"log/slog"
	"math"

	"github.com/akrol/steelfront/engine/gamemath"
)

// Tile dimensions in world units.
const (
	TileWidth  = 60.0
	TileHeight = 50.0
)

// SectorSize is the edge length, in nodes, of a map sector.
const SectorSize = 10

// Diagonal approximates the square root of 2 used in neighbour cost tables.
const Diagonal = 1.4142

// GridPosition addresses a single map node by column and row.
type GridPosition struct {
	X, Y int
}

// adjacentOffsets enumerates the 8 neighbours of a grid cell.
var adjacentOffsets = [8]GridPosition{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {0, -1}, {1, -1}, {1, 0}, {1, 1},
}

// PositionToGrid returns the map-grid-normalised position of a world point.
func PositionToGrid(x, y float64) GridPosition {
	return GridPosition{X: int(math.Floor(x / TileWidth)), Y: int(math.Floor(y / TileHeight))}
}

// GridToPosition returns the world position of the center of a grid cell.
func GridToPosition(grid GridPosition) gamemath.Vec2 {
	return gamemath.Vec2{
		X: float64(grid.X)*TileWidth + TileWidth/2,
		Y: float64(grid.Y)*TileHeight + TileHeight/2,
	}
}

// NormalizePosition snaps a world point to the center of its tile.
func NormalizePosition(x, y float64) gamemath.Vec2 {
	return GridToPosition(PositionToGrid(x, y))
}

// AdjacentGrids returns the up to 8 grid positions around a world point,
// without bounds clamping.
func AdjacentGrids(x, y float64) []GridPosition {
	grid := PositionToGrid(x, y)
	adjacent := make([]GridPosition, 0, 8)
	for _, offset := range adjacentOffsets {
		adjacent = append(adjacent, GridPosition{X: grid.X + offset.X, Y: grid.Y + offset.Y})
	}
	return adjacent
}

// MapSettings configure map generation.
type MapSettings struct {
	Rows    int                         `yaml:"rows"`
	Columns int                         `yaml:"columns"`
	Terrain map[GridPosition]TerrainCost `yaml:"-"`
}

// Map owns every node and sector of the game world. It is divided into
// sectors of 10x10 nodes each to split space into smaller chunks, so an
// entity can scan its own sector and the adjacent ones instead of the whole
// map.
type Map struct {
	Rows    int
	Columns int
	Width   float64
	Height  float64

	nodes   map[GridPosition]*MapNode
	sectors map[GridPosition]*Sector
}

// NewMap generates nodes and sectors and precalculates the movement cost from
// every node to each of its neighbours:
// (sqrt2 if diagonal, else 1) * (terrain cost + neighbour terrain cost).
func NewMap(settings MapSettings) *Map {
	m := &Map{
		Rows:    settings.Rows,
		Columns: settings.Columns,
		Width:   float64(settings.Columns) * TileWidth,
		Height:  float64(settings.Rows) * TileHeight,
		nodes:   make(map[GridPosition]*MapNode, settings.Rows*settings.Columns),
		sectors: make(map[GridPosition]*Sector),
	}
	m.generateSectors()
	m.generateNodes(settings.Terrain)
	m.calculateDistancesBetweenNodes()
	slog.Debug("map generated", "columns", m.Columns, "rows", m.Rows, "nodes", len(m.nodes))
	return m
}

func (m *Map) generateSectors() {
	for x := 0; x <= m.Columns/SectorSize; x++ {
		for y := 0; y <= m.Rows/SectorSize; y++ {
			grid := GridPosition{X: x, Y: y}
			m.sectors[grid] = newSector(grid, m)
		}
	}
}

func (m *Map) generateNodes(terrain map[GridPosition]TerrainCost) {
	for x := 0; x < m.Columns; x++ {
		for y := 0; y < m.Rows; y++ {
			sector := m.sectors[GridPosition{X: x / SectorSize, Y: y / SectorSize}]
			node := newMapNode(x, y, sector)
			if cost, ok := terrain[node.Grid]; ok {
				node.TerrainCost = cost
			}
			m.nodes[node.Grid] = node
		}
	}
}

func (m *Map) calculateDistancesBetweenNodes() {
	for _, node := range m.nodes {
		for _, grid := range m.InBounds(AdjacentGrids(node.Position.X, node.Position.Y)) {
			adjacent := m.nodes[grid]
			distance := 1.0
			if node.DiagonalTo(grid) {
				distance = Diagonal
			}
			distance *= float64(node.TerrainCost + adjacent.TerrainCost)
			node.Costs[grid] = distance
		}
	}
}

// Len returns the number of nodes on the map.
func (m *Map) Len() int { return len(m.nodes) }

// InBounds filters the given grids down to those lying on the map.
func (m *Map) InBounds(grids []GridPosition) []GridPosition {
	inBounds := grids[:0]
	for _, g := range grids {
		if g.X >= 0 && g.X < m.Columns && g.Y >= 0 && g.Y < m.Rows {
			inBounds = append(inBounds, g)
		}
	}
	return inBounds
}

// Contains reports whether a single grid lies on the map.
func (m *Map) Contains(grid GridPosition) bool {
	return grid.X >= 0 && grid.X < m.Columns && grid.Y >= 0 && grid.Y < m.Rows
}

// OnMapArea reports whether a world point lies on the map.
func (m *Map) OnMapArea(x, y float64) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// AdjacentNodes returns the nodes around a world point, clamped to bounds.
func (m *Map) AdjacentNodes(x, y float64) []*MapNode {
	grids := m.InBounds(AdjacentGrids(x, y))
	nodes := make([]*MapNode, 0, len(grids))
	for _, g := range grids {
		nodes = append(nodes, m.nodes[g])
	}
	return nodes
}

// WalkableAdjacent returns the currently walkable nodes around a world point.
func (m *Map) WalkableAdjacent(x, y float64) []*MapNode {
	var nodes []*MapNode
	for _, n := range m.AdjacentNodes(x, y) {
		if n.Walkable() {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// PathableAdjacent returns the pathable nodes around a world point, including
// those blocked only by transient units.
func (m *Map) PathableAdjacent(x, y float64) []*MapNode {
	var nodes []*MapNode
	for _, n := range m.AdjacentNodes(x, y) {
		if n.Pathable() {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// PositionToNode returns the node containing a world point.
func (m *Map) PositionToNode(x, y float64) *MapNode {
	return m.GridToNode(PositionToGrid(x, y))
}

// GridToNode returns the node at a grid position. For off-map grids it
// returns a detached node excluded from pathfinding, so lookups never fault.
func (m *Map) GridToNode(grid GridPosition) *MapNode {
	if node, ok := m.nodes[grid]; ok {
		return node
	}
	node := newMapNode(-1, -1, nil)
	node.allowedForPathfinding = false
	return node
}

// Node returns the node at a grid position or nil when off-map.
func (m *Map) Node(grid GridPosition) *MapNode {
	return m.nodes[grid]
}

// Nodes exposes the full node table for pathfinding.
func (m *Map) Nodes() map[GridPosition]*MapNode { return m.nodes }

// AllNodes returns every node on the map.
func (m *Map) AllNodes() []*MapNode {
	nodes := make([]*MapNode, 0, len(m.nodes))
	for _, n := range m.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// AllGrids returns the grid of every node on the map.
func (m *Map) AllGrids() []GridPosition {
	grids := make([]GridPosition, 0, len(m.nodes))
	for g := range m.nodes {
		grids = append(grids, g)
	}
	return grids
}

// Sector returns the sector at a sector-grid position.
func (m *Map) Sector(grid GridPosition) *Sector { return m.sectors[grid] }

// Sectors exposes the sector table.
func (m *Map) Sectors() map[GridPosition]*Sector { return m.sectors }
