// Package entity implements the player-controlled side of the simulation:
// units, buildings, weapons, players and factions.
package entity

import (
	"math/rand"

	"github.com/akrol/steelfront/engine/audio"
	"github.com/akrol/steelfront/engine/config"
	"github.com/akrol/steelfront/engine/fog"
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/pathfind"
	"github.com/akrol/steelfront/engine/sched"
	"github.com/akrol/steelfront/engine/world"
)

// Settings are the simulation-relevant game options.
type Settings struct {
	FPS                      int     `yaml:"fps"`
	StartingResources        float64 `yaml:"starting_resources"`
	DamageRandomness         float64 `yaml:"damage_randomness"`
	ImmortalPlayerUnits      bool    `yaml:"immortal_player_units"`
	UnlimitedPlayerResources bool    `yaml:"unlimited_player_resources"`
	UnlimitedCPUResources    bool    `yaml:"unlimited_cpu_resources"`
	FogOfWar                 bool    `yaml:"fog_of_war"`
	Difficulty               int     `yaml:"difficulty"`
	MapColumns               int     `yaml:"map_columns"`
	MapRows                  int     `yaml:"map_rows"`
}

// DefaultSettings returns the options a fresh skirmish starts with.
func DefaultSettings() *Settings {
	return &Settings{
		FPS:               60,
		StartingResources: 1.0,
		DamageRandomness:  1.0,
		FogOfWar:          true,
		Difficulty:        3,
		MapColumns:        100,
		MapRows:           100,
	}
}

// RenderLayers is the render collaborator reordering entity sprites when a
// unit's row coordinate changes.
type RenderLayers interface {
	SwapRenderingLayers(entity Entity, oldRow, newRow int)
}

// NullLayers ignores layer swaps, for headless runs and tests.
type NullLayers struct{}

func (NullLayers) SwapRenderingLayers(Entity, int, int) {}

// Context bundles the subsystem handles every entity needs. It replaces
// reaching for globals: the game root builds one Context and threads it
// through construction.
type Context struct {
	Map        *world.Map
	Quadtree   *world.QuadTree
	Pathfinder *pathfind.Pathfinder
	Fog        *fog.FogOfWar
	Scheduler  *sched.Scheduler
	Audio      audio.Player
	Configs    *config.Catalog
	Settings   *Settings
	Layers     RenderLayers
	Rand       *rand.Rand

	// Clock returns the current game time in seconds. Collision-wait
	// deadlines use it instead of the OS clock so runs reproduce.
	Clock func() float64

	// SpawnUnit is wired by the game root; buildings use it to emit
	// finished units.
	SpawnUnit func(name string, player *Player, position gamemath.Vec2) *Unit

	// LocalPlayer is the human at this machine; only their entities
	// reveal the fog of war.
	LocalPlayer *Player

	// NotifyKilled is the death signal: the game root uses it to drop dead
	// entities from its tables and the current selection.
	NotifyKilled func(Entity)

	totalObjectsCount int
	forcedNextID      int
}

// NextObjectID hands out stable monotonically increasing entity ids. A
// forced id set by the save loader takes precedence once.
func (c *Context) NextObjectID() int {
	if c.forcedNextID != 0 {
		id := c.forcedNextID
		c.forcedNextID = 0
		if id > c.totalObjectsCount {
			c.totalObjectsCount = id
		}
		return id
	}
	c.totalObjectsCount++
	return c.totalObjectsCount
}

// ForceNextID makes the next spawned entity take a saved id.
func (c *Context) ForceNextID(id int) { c.forcedNextID = id }

// ObjectsCount returns the number of ids handed out so far.
func (c *Context) ObjectsCount() int { return c.totalObjectsCount }

// RestoreObjectsCount resets the id counter when loading a save.
func (c *Context) RestoreObjectsCount(count int) { c.totalObjectsCount = count }

// GameClock returns the current game time, 0 when no clock is wired.
func (c *Context) GameClock() float64 {
	if c.Clock == nil {
		return 0
	}
	return c.Clock()
}

// IsLocalHuman reports whether the player is the local human player.
func (c *Context) IsLocalHuman(p *Player) bool {
	return p != nil && p == c.LocalPlayer
}
