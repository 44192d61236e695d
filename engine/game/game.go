// Package game wires the simulation subsystems together and drives the
// per-tick update pipeline.
package game

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/akrol/steelfront/engine/audio"
	"github.com/akrol/steelfront/engine/config"
	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/fog"
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/pathfind"
	"github.com/akrol/steelfront/engine/scenario"
	"github.com/akrol/steelfront/engine/sched"
	"github.com/akrol/steelfront/engine/world"
)

// Game is the context root owning every subsystem and all entities.
type Game struct {
	settings *entity.Settings
	ctx      *entity.Context

	timer      *Timer
	scheduler  *sched.Scheduler
	gameMap    *world.Map
	quadtree   *world.QuadTree
	pathfinder *pathfind.Pathfinder
	fogOfWar   *fog.FogOfWar
	spawner    *entity.Spawner

	configs *config.Catalog
	sounds  audio.Player
	collab  Collaborators

	factions map[int]*entity.Faction
	players  map[int]*entity.Player
	local    *entity.Player

	units     map[int]*entity.Unit
	buildings map[int]*entity.Building

	currentScenario *scenario.Scenario
	campaigns       map[string]*scenario.Campaign

	unitsManager *UnitsManager

	// entities drawn for the local player: own faction plus its known
	// enemies, refreshed every tick
	localDrawn map[entity.Entity]struct{}

	viewport [4]float64

	placeable *PlaceableGameObject

	paused bool
	loader *Loader
}

// Options configure a new game.
type Options struct {
	Settings      *entity.Settings
	Configs       *config.Catalog
	Sounds        audio.Player
	Collaborators Collaborators
	FogSink       fog.SpriteSink
	MapTerrain    map[world.GridPosition]world.TerrainCost
	RandomSeed    int64
}

// New builds a game with all subsystems wired. The map, fog and spatial
// index are created immediately; entities arrive through the spawner.
func New(opts Options) *Game {
	settings := opts.Settings
	if settings == nil {
		settings = entity.DefaultSettings()
	}
	configs := opts.Configs
	if configs == nil {
		configs = config.NewCatalog()
	}
	sounds := opts.Sounds
	if sounds == nil {
		sounds = &audio.Null{}
	}
	opts.Collaborators.fillDefaults()

	g := &Game{
		settings:   settings,
		configs:    configs,
		sounds:     sounds,
		collab:     opts.Collaborators,
		factions:   make(map[int]*entity.Faction),
		players:    make(map[int]*entity.Player),
		units:      make(map[int]*entity.Unit),
		buildings:  make(map[int]*entity.Building),
		localDrawn: make(map[entity.Entity]struct{}),
	}

	updateRate := 1.0 / float64(settings.FPS)
	g.timer = NewTimer(updateRate)
	g.scheduler = sched.NewScheduler(updateRate)
	g.gameMap = world.NewMap(world.MapSettings{
		Rows:    settings.MapRows,
		Columns: settings.MapColumns,
		Terrain: opts.MapTerrain,
	})
	g.quadtree = world.NewMapQuadTree(g.gameMap)
	g.pathfinder = pathfind.NewPathfinder(g.gameMap)
	g.fogOfWar = fog.New(g.gameMap, opts.FogSink)

	g.ctx = &entity.Context{
		Map:        g.gameMap,
		Quadtree:   g.quadtree,
		Pathfinder: g.pathfinder,
		Fog:        g.fogOfWar,
		Scheduler:  g.scheduler,
		Audio:      sounds,
		Configs:    configs,
		Settings:   settings,
		Layers:     opts.Collaborators.Layers,
		Rand:       rand.New(rand.NewSource(opts.RandomSeed)),
		Clock:      g.timer.Seconds,
	}
	g.ctx.NotifyKilled = g.onEntityKilled

	g.spawner = entity.NewSpawner(g.ctx)
	g.spawner.Observe(g.onEntitySpawned)

	g.unitsManager = newUnitsManager(g)

	slog.Info("game initialized", "columns", settings.MapColumns, "rows", settings.MapRows)
	return g
}

// Context exposes the subsystem handles, mainly to hosts and tests.
func (g *Game) Context() *entity.Context { return g.ctx }

// Settings returns the active game options.
func (g *Game) Settings() *entity.Settings { return g.settings }

// Timer returns the game clock.
func (g *Game) Timer() *Timer { return g.timer }

// Scheduler returns the event scheduler.
func (g *Game) Scheduler() *sched.Scheduler { return g.scheduler }

// Map returns the tile map.
func (g *Game) Map() *world.Map { return g.gameMap }

// Quadtree returns the entity spatial index.
func (g *Game) Quadtree() *world.QuadTree { return g.quadtree }

// Pathfinder returns the pathfinding subsystem.
func (g *Game) Pathfinder() *pathfind.Pathfinder { return g.pathfinder }

// FogOfWar returns the fog subsystem.
func (g *Game) FogOfWar() *fog.FogOfWar { return g.fogOfWar }

// Spawner returns the entity factory.
func (g *Game) Spawner() *entity.Spawner { return g.spawner }

// UnitsManager returns the selection and grouping manager.
func (g *Game) UnitsManager() *UnitsManager { return g.unitsManager }

// Configs returns the object catalog.
func (g *Game) Configs() *config.Catalog { return g.configs }

// Units returns every live unit by id.
func (g *Game) Units() map[int]*entity.Unit { return g.units }

// Buildings returns every live building by id.
func (g *Game) Buildings() map[int]*entity.Building { return g.buildings }

// Factions returns every faction by id.
func (g *Game) Factions() map[int]*entity.Faction { return g.factions }

// CurrentScenario returns the running scenario, if any.
func (g *Game) CurrentScenario() *scenario.Scenario { return g.currentScenario }

// Campaigns returns the loaded campaign table.
func (g *Game) Campaigns() map[string]*scenario.Campaign { return g.campaigns }

// SetCampaigns installs the loaded campaign table.
func (g *Game) SetCampaigns(campaigns map[string]*scenario.Campaign) { g.campaigns = campaigns }

// Viewport returns the camera rectangle shared with collaborators.
func (g *Game) Viewport() [4]float64 { return g.viewport }

// SetViewport stores the camera rectangle for saves.
func (g *Game) SetViewport(v [4]float64) { g.viewport = v }

// LocalDrawnEntities returns the set of entities visible to the local
// player's renderer.
func (g *Game) LocalDrawnEntities() map[entity.Entity]struct{} { return g.localDrawn }

// Paused reports whether the simulation is halted.
func (g *Game) Paused() bool { return g.paused }

// TogglePause flips the pause state; toggling twice restores it exactly.
func (g *Game) TogglePause() {
	g.paused = !g.paused
}

// NewFaction creates and registers a faction.
func (g *Game) NewFaction(name string) *entity.Faction {
	return entity.NewFaction(0, name, g.factions)
}

// NewPlayer creates and registers a player in the faction.
func (g *Game) NewPlayer(name string, faction *entity.Faction) *entity.Player {
	return entity.NewPlayer(g.ctx, 0, name, playerColor(len(g.players)), faction, g.players)
}

// SetLocalPlayer marks the human at this machine.
func (g *Game) SetLocalPlayer(p *entity.Player) {
	g.local = p
	g.ctx.LocalPlayer = p
}

// NewScenario creates the scripted mission and wires its sinks.
func (g *Game) NewScenario(name, mapName string) *scenario.Scenario {
	s := scenario.New(name, mapName, g, g.scheduler)
	s.AttachSinks(g.collab.Dialogs, g)
	g.currentScenario = s
	return s
}

// Spawn creates the named entity for the player at a world position.
func (g *Game) Spawn(name string, player *entity.Player, x, y float64) entity.Entity {
	return g.spawner.Spawn(name, player, gamemath.Vec2{X: x, Y: y})
}

func (g *Game) onEntitySpawned(e entity.Entity) {
	switch concrete := e.(type) {
	case *entity.Unit:
		g.units[concrete.ID()] = concrete
	case *entity.Building:
		g.buildings[concrete.ID()] = concrete
	}
}

func (g *Game) onEntityKilled(e entity.Entity) {
	switch concrete := e.(type) {
	case *entity.Unit:
		delete(g.units, concrete.ID())
	case *entity.Building:
		delete(g.buildings, concrete.ID())
	}
	g.unitsManager.onEntityKilled(e)
	delete(g.localDrawn, e)
}

// Update advances the simulation one tick. The subsystem order is fixed:
// timer, scheduler, fog, pathfinder, minimap, entity updates, the
// local-drawn set, and finally factions with their players.
func (g *Game) Update(delta float64) {
	if g.loader != nil {
		g.loader.Update()
		if g.loader.Done() {
			g.loader = nil
		}
		return
	}
	if g.paused {
		return
	}

	g.timer.Update()
	g.scheduler.Update()
	g.fogOfWar.Update()
	g.pathfinder.Update()
	g.collab.MiniMap.Update(g.fogOfWar.ExploredGrids())

	for _, unit := range g.sortedUnits() {
		unit.Update(delta)
	}
	for _, building := range g.sortedBuildings() {
		building.Update(delta)
	}

	g.updateLocalDrawnEntities()
	for _, faction := range g.factions {
		faction.Update(delta)
	}
	g.updateResourceLabels()
}

// sortedUnits returns units in id order so tick processing is deterministic.
func (g *Game) sortedUnits() []*entity.Unit {
	units := make([]*entity.Unit, 0, len(g.units))
	for _, u := range g.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID() < units[j].ID() })
	return units
}

func (g *Game) sortedBuildings() []*entity.Building {
	buildings := make([]*entity.Building, 0, len(g.buildings))
	for _, b := range g.buildings {
		buildings = append(buildings, b)
	}
	sort.Slice(buildings, func(i, j int) bool { return buildings[i].ID() < buildings[j].ID() })
	return buildings
}

// updateLocalDrawnEntities rebuilds the set of entities the local renderer
// shows: the local faction's own units and buildings plus its known enemies.
func (g *Game) updateLocalDrawnEntities() {
	clear(g.localDrawn)
	if g.local == nil {
		return
	}
	faction := g.local.Faction()
	for _, u := range faction.Units() {
		g.localDrawn[u] = struct{}{}
	}
	for _, b := range faction.Buildings() {
		g.localDrawn[b] = struct{}{}
	}
	for enemy := range faction.KnownEnemies() {
		g.localDrawn[enemy] = struct{}{}
	}
}

func (g *Game) updateResourceLabels() {
	if g.local == nil {
		return
	}
	bundle := g.collab.Bundles.GetBundle(UIResourcesSection)
	for _, name := range entity.ResourceNames {
		bundle.SetLabel(name, fmt.Sprintf("%d", int(g.local.ResourceAmount(name))))
	}
}

// --- scenario.GameState ---

// Player resolves a player by id.
func (g *Game) Player(id int) *entity.Player { return g.players[id] }

// Players returns every registered player.
func (g *Game) Players() map[int]*entity.Player { return g.players }

// LocalPlayer returns the human at this machine.
func (g *Game) LocalPlayer() *entity.Player { return g.local }

// Minutes returns elapsed game time in minutes.
func (g *Game) Minutes() float64 { return g.timer.Minutes() }

// UnexploredCount returns how many grids the fog still hides completely.
func (g *Game) UnexploredCount() int { return g.fogOfWar.UnexploredCount() }

// --- scenario.EndSink ---

// OnScenarioEnded pauses the game and presents the outcome. Completing a
// campaign mission unlocks the next one.
func (g *Game) OnScenarioEnded(winnerID int, humanWon bool) {
	message := "You have been defeated!"
	if humanWon {
		message = "Victory!"
		if s := g.currentScenario; s != nil && s.CampaignName != "" {
			if campaign, ok := g.campaigns[s.CampaignName]; ok {
				campaign.Update(s)
			}
		}
	}
	if !g.paused {
		g.TogglePause()
	}
	g.collab.Dialogs.ShowDialog(message)
}

func playerColor(index int) color.RGBA {
	colors := []color.RGBA{
		{R: 50, G: 150, B: 50, A: 255},
		{R: 200, G: 50, B: 50, A: 255},
		{R: 60, G: 90, B: 200, A: 255},
		{R: 200, G: 180, B: 40, A: 255},
	}
	return colors[index%len(colors)]
}
