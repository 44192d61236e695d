package game

import (
	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/world"
)

// PlaceableGameObject is a building attached to the cursor while the player
// chooses where to put it. The input collaborator moves it around and
// finally emplaces it with a click.
type PlaceableGameObject struct {
	Name string
}

// AttachPlaceableGameObject hangs a building on the cursor.
func (g *Game) AttachPlaceableGameObject(name string) {
	g.placeable = &PlaceableGameObject{Name: name}
}

// Placeable returns the building being positioned, if any.
func (g *Game) Placeable() *PlaceableGameObject { return g.placeable }

// CancelPlaceable drops the cursor attachment without building.
func (g *Game) CancelPlaceable() { g.placeable = nil }

// EmplacePlaceable builds the attached building at a world position when the
// footprint is free and the owner can pay. It reports whether the building
// was placed.
func (g *Game) EmplacePlaceable(player *entity.Player, x, y float64) bool {
	if g.placeable == nil || player == nil {
		return false
	}
	if !g.placementFootprintFree(x, y) {
		return false
	}
	if !player.EnoughResourcesFor(g.placeable.Name) {
		return false
	}
	for resource, cost := range player.FetchCostsFor(g.placeable.Name) {
		player.ConsumeResource(resource, cost)
	}
	g.Spawn(g.placeable.Name, player, x, y)
	g.placeable = nil
	return true
}

func (g *Game) placementFootprintFree(x, y float64) bool {
	center := world.PositionToGrid(x, y)
	for dx := -1; dx <= 0; dx++ {
		for dy := -1; dy <= 0; dy++ {
			node := g.gameMap.Node(world.GridPosition{X: center.X + dx, Y: center.Y + dy})
			if node == nil || !node.Walkable() {
				return false
			}
		}
	}
	return true
}

// PlantRandomTrees scatters tree props across roughly the given fraction of
// walkable nodes, the way freshly generated maps are dressed.
func (g *Game) PlantRandomTrees(probability float64) []*entity.TerrainObject {
	var trees []*entity.TerrainObject
	for _, node := range g.gameMap.AllNodes() {
		if !node.Walkable() {
			continue
		}
		if g.ctx.Rand.Float64() >= probability {
			continue
		}
		trees = append(trees, entity.NewTerrainObject(g.ctx, "tree_leaf", 4, node.Position))
	}
	return trees
}
