package entity

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/akrol/steelfront/engine/audio"
	"github.com/akrol/steelfront/engine/config"
	"github.com/akrol/steelfront/engine/fog"
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/pathfind"
	"github.com/akrol/steelfront/engine/sched"
	"github.com/akrol/steelfront/engine/world"
)

// testWorld wires a minimal context around a 20x20 map for entity tests.
type testWorld struct {
	ctx     *Context
	sounds  *audio.Null
	clock   *float64
	faction *Faction
	enemyF  *Faction
	player  *Player
	enemy   *Player

	factions map[int]*Faction
	players  map[int]*Player
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	m := world.NewMap(world.MapSettings{Rows: 20, Columns: 20})
	sounds := &audio.Null{}
	clock := new(float64)
	settings := DefaultSettings()
	settings.MapColumns, settings.MapRows = 20, 20
	settings.DamageRandomness = 0

	ctx := &Context{
		Map:        m,
		Quadtree:   world.NewMapQuadTree(m),
		Pathfinder: pathfind.NewPathfinder(m),
		Fog:        fog.New(m, nil),
		Scheduler:  sched.NewScheduler(1.0 / float64(settings.FPS)),
		Audio:      sounds,
		Configs:    testCatalog(),
		Settings:   settings,
		Layers:     NullLayers{},
		Rand:       rand.New(rand.NewSource(7)),
		Clock:      func() float64 { return *clock },
	}
	NewSpawner(ctx)

	tw := &testWorld{
		ctx:      ctx,
		sounds:   sounds,
		clock:    clock,
		factions: make(map[int]*Faction),
		players:  make(map[int]*Player),
	}
	tw.faction = NewFaction(0, "testers", tw.factions)
	tw.enemyF = NewFaction(0, "hostiles", tw.factions)
	tw.faction.StartWarWith(tw.enemyF)
	tw.player = NewPlayer(ctx, 0, "tester", playerGreen, tw.faction, tw.players)
	tw.enemy = NewPlayer(ctx, 0, "hostile", playerGreen, tw.enemyF, tw.players)
	ctx.LocalPlayer = tw.player
	return tw
}

// tick advances the scheduler and game clock by one frame.
func (tw *testWorld) tick() {
	tw.ctx.Scheduler.Update()
	*tw.clock += 1.0 / float64(tw.ctx.Settings.FPS)
}

// at returns the center position of a grid cell.
func at(x, y int) gamemath.Vec2 {
	return world.GridToPosition(world.GridPosition{X: x, Y: y})
}

func testCatalog() *config.Catalog {
	catalog := config.NewCatalog()
	catalog.Put("units", "tank_medium", config.ObjectConfig{
		"object_name":       "tank_medium",
		"class":             "VehicleWithTurret",
		"max_health":        100,
		"armour":            2.0,
		"max_speed":         3.0,
		"rotation_speed":    360,
		"visibility_radius": 3,
		"attack_radius":     4,
		"weapons_names":     []config.Value{"cannon_75mm"},
		"production_time":   5,
		"steel":             100,
		"electronics":       50,
		"ammunition":        25,
		"conscripts":        1,
		"fuel":              100,
		"fuel_consumption":  0.01,
	})
	catalog.Put("units", "transport", config.ObjectConfig{
		"object_name":       "transport",
		"class":             "Vehicle",
		"max_health":        80,
		"max_speed":         3.0,
		"rotation_speed":    360,
		"visibility_radius": 3,
		"attack_radius":     0,
		"production_time":   3,
		"steel":             50,
		"electronics":       10,
		"ammunition":        0,
		"conscripts":        1,
		"fuel":              150,
		"fuel_consumption":  0.01,
	})
	catalog.Put("units", "soldier", config.ObjectConfig{
		"object_name":       "soldier",
		"class":             "Soldier",
		"max_health":        50,
		"max_speed":         2.0,
		"rotation_speed":    360,
		"visibility_radius": 3,
		"attack_radius":     2,
		"weapons_names":     []config.Value{"rifle"},
		"production_time":   2,
		"steel":             0,
		"electronics":       0,
		"ammunition":        10,
		"conscripts":        1,
	})
	catalog.Put("buildings", "factory", config.ObjectConfig{
		"object_name":        "factory",
		"class":              "Building",
		"max_health":         500,
		"visibility_radius":  4,
		"attack_radius":      0,
		"energy_consumption": 10.0,
		"produced_units":     []config.Value{"tank_medium", "soldier"},
		"garrison_size":      2,
	})
	catalog.Put("buildings", "power_plant", config.ObjectConfig{
		"object_name":       "power_plant",
		"class":             "Building",
		"max_health":        300,
		"visibility_radius": 3,
		"attack_radius":     0,
		"energy_production": 5.0,
	})
	catalog.Put("buildings", "oil_derrick", config.ObjectConfig{
		"object_name":       "oil_derrick",
		"class":             "Building",
		"max_health":        200,
		"visibility_radius": 2,
		"attack_radius":     0,
		"produced_resource": "fuel",
	})
	catalog.Put("buildings", "laboratory", config.ObjectConfig{
		"object_name":       "laboratory",
		"class":             "Building",
		"max_health":        250,
		"visibility_radius": 2,
		"attack_radius":     0,
		"research_facility": true,
	})
	catalog.Put("weapons", "cannon_75mm", config.ObjectConfig{
		"object_name":  "cannon_75mm",
		"damage":       25.0,
		"penetration":  5.0,
		"accuracy":     70.0,
		"range":        240.0,
		"rate_of_fire": 3.0,
		"ammunition":   40,
	})
	catalog.Put("weapons", "rifle", config.ObjectConfig{
		"object_name":  "rifle",
		"damage":       8.0,
		"penetration":  1.0,
		"accuracy":     60.0,
		"range":        180.0,
		"rate_of_fire": 1.0,
		"ammunition":   120,
	})
	return catalog
}

var playerGreen = color.RGBA{R: 50, G: 150, B: 50, A: 255}

func grantResources(p *Player, amount float64) {
	for _, name := range ResourceNames {
		p.Resource(name).Stock = amount
	}
}
