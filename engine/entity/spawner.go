package entity

import (
	"log/slog"

	"github.com/akrol/steelfront/engine/gamemath"
)

// Spawner turns catalog names into live entities. It is the single place
// new units and buildings come from, so id assignment and world rooting
// happen exactly once.
type Spawner struct {
	ctx *Context

	// observers run after each spawn; the game root uses them to track
	// entity lists
	observers []func(Entity)
}

// NewSpawner creates the spawner and wires the context's spawn hook used by
// producer buildings.
func NewSpawner(ctx *Context) *Spawner {
	s := &Spawner{ctx: ctx}
	ctx.SpawnUnit = func(name string, player *Player, position gamemath.Vec2) *Unit {
		if unit, ok := s.Spawn(name, player, position).(*Unit); ok {
			return unit
		}
		return nil
	}
	return s
}

// Observe registers a callback invoked with every spawned entity.
func (s *Spawner) Observe(fn func(Entity)) {
	s.observers = append(s.observers, fn)
}

// Spawn creates the named entity for the player. An unknown name is
// reported and ignored rather than crashing the tick.
func (s *Spawner) Spawn(name string, player *Player, position gamemath.Vec2) Entity {
	cfg, ok := s.ctx.Configs.Get(name)
	if !ok {
		slog.Warn("cannot spawn object missing from configs", "name", name)
		return nil
	}
	var spawned Entity
	if cfg.Str("class") == "Building" {
		spawned = NewBuilding(s.ctx, name, player, position, BuildingOptions{})
	} else {
		spawned = NewUnit(s.ctx, name, player, position)
	}
	for _, fn := range s.observers {
		fn(spawned)
	}
	return spawned
}

// SpawnBuilding creates a building with explicit options, e.g. a pre-filled
// garrison for scenario setups.
func (s *Spawner) SpawnBuilding(name string, player *Player, position gamemath.Vec2, opts BuildingOptions) *Building {
	cfg, ok := s.ctx.Configs.Get(name)
	if !ok || cfg.Str("class") != "Building" {
		slog.Warn("cannot spawn building missing from configs", "name", name)
		return nil
	}
	building := NewBuilding(s.ctx, name, player, position, opts)
	for _, fn := range s.observers {
		fn(building)
	}
	return building
}
