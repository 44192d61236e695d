package entity

import (
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// TerrainObject is a static map prop, like a tree or a wreck, making its
// node impassable until destroyed or cleared by construction.
type TerrainObject struct {
	id   int
	name string
	node *world.MapNode

	// Robustness grades how heavy a unit must be to crush the object by
	// driving over it.
	Robustness int

	alive bool
}

// NewTerrainObject roots a prop on the node containing the position.
func NewTerrainObject(ctx *Context, name string, robustness int, position gamemath.Vec2) *TerrainObject {
	o := &TerrainObject{
		id:         ctx.NextObjectID(),
		name:       name,
		node:       ctx.Map.PositionToNode(position.X, position.Y),
		Robustness: robustness,
		alive:      true,
	}
	o.node.SetObstacle(o.id)
	return o
}

// ID returns the stable object id.
func (o *TerrainObject) ID() int { return o.id }

// Name returns the prop's object name.
func (o *TerrainObject) Name() string { return o.name }

// Node returns the node the prop blocks.
func (o *TerrainObject) Node() *world.MapNode { return o.node }

// Alive reports whether the prop still stands.
func (o *TerrainObject) Alive() bool { return o.alive }

// Destructible reports whether a unit of the given weight crushes the prop.
func (o *TerrainObject) Destructible(weight int) bool {
	return weight > o.Robustness
}

// Kill removes the prop and restores the node's pathability. Idempotent.
func (o *TerrainObject) Kill() {
	if !o.alive {
		return
	}
	o.alive = false
	if o.node.ObstacleID() == o.id {
		o.node.SetObstacle(0)
	}
}
