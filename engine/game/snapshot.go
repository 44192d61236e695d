package game

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/save"
	"github.com/akrol/steelfront/engine/world"
)

// Snapshot serializes the whole game into a save state. Entities are
// referenced by their stable ids.
func (g *Game) Snapshot() *save.GameState {
	state := &save.GameState{
		Timer: save.TimerState{
			Frames:        g.timer.Frames(),
			TotalGameTime: g.timer.Seconds(),
		},
		Settings: g.settings,
		Viewport: g.viewport,
		Map: save.MapState{
			Rows:    g.gameMap.Rows,
			Columns: g.gameMap.Columns,
		},
		PermanentGroups:  make(map[int][]int),
		TotalObjectCount: g.ctx.ObjectsCount(),
	}
	for _, node := range g.gameMap.AllNodes() {
		if node.TerrainCost != world.Ground {
			state.Map.Terrain = append(state.Map.Terrain, save.TerrainPatch{
				Grid: save.FromGrid(node.Grid),
				Cost: int(node.TerrainCost),
			})
		}
	}
	for _, faction := range g.factions {
		state.Factions = append(state.Factions, snapshotFaction(faction))
	}
	sort.Slice(state.Factions, func(i, j int) bool { return state.Factions[i].ID < state.Factions[j].ID })
	for _, player := range g.players {
		state.Players = append(state.Players, snapshotPlayer(player))
	}
	sort.Slice(state.Players, func(i, j int) bool { return state.Players[i].ID < state.Players[j].ID })
	if g.local != nil {
		state.LocalPlayerID = g.local.ID
	}
	for _, unit := range g.sortedUnits() {
		state.Units = append(state.Units, snapshotUnit(unit))
	}
	for _, building := range g.sortedBuildings() {
		state.Buildings = append(state.Buildings, snapshotBuilding(building))
	}
	if s := g.currentScenario; s != nil {
		state.Scenario = save.ScenarioState{
			Name:                  s.Name,
			CampaignName:          s.CampaignName,
			MapName:               s.MapName,
			Index:                 s.Index,
			Ended:                 s.Ended,
			WinnerID:              s.WinnerID,
			VictoryPoints:         make(map[int]int),
			RequiredVictoryPoints: make(map[int]int),
		}
		for id := range s.Players() {
			state.Scenario.Players = append(state.Scenario.Players, id)
			state.Scenario.VictoryPoints[id] = s.VictoryPointsOf(id)
			if required := s.RequiredVictoryPointsOf(id); required > 0 {
				state.Scenario.RequiredVictoryPoints[id] = required
			}
		}
		sort.Ints(state.Scenario.Players)
	}
	for index, group := range g.unitsManager.PermanentGroups() {
		for id := range group {
			state.PermanentGroups[index] = append(state.PermanentGroups[index], id)
		}
		sort.Ints(state.PermanentGroups[index])
	}
	for _, grid := range g.fogOfWar.ExploredGrids() {
		state.FogExplored = append(state.FogExplored, save.FromGrid(grid))
	}
	sort.Slice(state.FogExplored, func(i, j int) bool {
		a, b := state.FogExplored[i], state.FogExplored[j]
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return state
}

func snapshotFaction(f *entity.Faction) save.FactionState {
	state := save.FactionState{ID: f.ID, Name: f.Name}
	for id := range f.FriendlyFactions {
		state.Friends = append(state.Friends, id)
	}
	for id := range f.EnemyFactions {
		state.Enemies = append(state.Enemies, id)
	}
	sort.Ints(state.Friends)
	sort.Ints(state.Enemies)
	return state
}

func snapshotPlayer(p *entity.Player) save.PlayerState {
	state := save.PlayerState{
		ID:              p.ID,
		Name:            p.Name,
		FactionID:       p.Faction().ID,
		CPU:             p.CPU,
		Color:           [4]uint8{p.Color.R, p.Color.G, p.Color.B, p.Color.A},
		Resources:       make(map[string]*entity.Resource),
		CurrentResearch: make(map[int]float64),
	}
	for _, name := range entity.ResourceNames {
		resource := *p.Resource(name)
		state.Resources[name] = &resource
	}
	for id, progress := range p.CurrentResearch() {
		state.CurrentResearch[id] = progress
	}
	state.KnownTechnologies = p.KnownTechnologyIDs()
	sort.Ints(state.KnownTechnologies)
	return state
}

func snapshotUnit(u *entity.Unit) save.UnitState {
	state := save.UnitState{
		ID:                  u.ID(),
		Name:                u.Name(),
		PlayerID:            u.PlayerID(),
		X:                   u.Position().X,
		Y:                   u.Position().Y,
		Health:              u.Health(),
		Experience:          u.Experience(),
		FacingDirection:     u.FacingDirection(),
		PermanentUnitsGroup: u.PermanentUnitsGroup(),
		Outside:             u.Outside(),
	}
	for _, waypoint := range u.Path() {
		state.Path = append(state.Path, save.FromGrid(world.PositionToGrid(waypoint.X, waypoint.Y)))
	}
	return state
}

func snapshotBuilding(b *entity.Building) save.BuildingState {
	state := save.BuildingState{
		ID:       b.ID(),
		Name:     b.Name(),
		PlayerID: b.PlayerID(),
		X:        b.Position().X,
		Y:        b.Position().Y,
		Health:   b.Health(),
	}
	if p := b.Producer; p != nil {
		state.ProductionQueue = append([]string(nil), p.Queue...)
		state.CurrentlyProduced = p.CurrentlyProduced
		state.ProductionProgress = p.ProductionProgress
		state.ProductionTime = p.ProductionTime
	}
	if e := b.Extractor; e != nil {
		state.ExtractorReserves = e.Reserves
		state.ExtractorStockpile = e.Stockpile
	}
	if r := b.Research; r != nil {
		state.ResearchFunding = r.Funding
		if r.ResearchedTechnology != nil {
			state.ResearchTechnology = r.ResearchedTechnology.ID
		}
	}
	if garrison := b.Garrison; garrison != nil {
		for _, soldier := range garrison.Soldiers() {
			state.GarrisonedSoldiers = append(state.GarrisonedSoldiers, soldier.ID())
		}
	}
	return state
}

// RestoreSteps builds the phased load plan reconstructing a saved game into
// a fresh Game. The phase order follows the save layout exactly; each step
// yields so the loading screen can advance between them.
func (g *Game) RestoreSteps(state *save.GameState) []LoadStep {
	return []LoadStep{
		{Name: "timer", Weight: 0.05, Build: func() error {
			g.timer.Restore(state.Timer.Frames, state.Timer.TotalGameTime)
			return nil
		}},
		{Name: "map", Weight: 0.2, Build: func() error {
			for _, patch := range state.Map.Terrain {
				if node := g.gameMap.Node(patch.Grid.Grid()); node != nil {
					node.TerrainCost = world.TerrainCost(patch.Cost)
				}
			}
			return nil
		}},
		{Name: "factions", Weight: 0.1, Build: func() error { return g.restoreFactions(state) }},
		{Name: "players", Weight: 0.1, Build: func() error { return g.restorePlayers(state) }},
		{Name: "units", Weight: 0.25, Build: func() error { return g.restoreUnits(state) }},
		{Name: "buildings", Weight: 0.15, Build: func() error { return g.restoreBuildings(state) }},
		{Name: "scenario", Weight: 0.05, Build: func() error { return g.restoreScenario(state) }},
		{Name: "groups", Weight: 0.05, Build: func() error { return g.restoreGroups(state) }},
		{Name: "fog of war", Weight: 0.05, Build: func() error {
			grids := make([]world.GridPosition, 0, len(state.FogExplored))
			for _, grid := range state.FogExplored {
				grids = append(grids, grid.Grid())
			}
			g.fogOfWar.RestoreExplored(grids)
			g.ctx.RestoreObjectsCount(state.TotalObjectCount)
			g.viewport = state.Viewport
			return nil
		}},
	}
}

func (g *Game) restoreFactions(state *save.GameState) error {
	for _, fs := range state.Factions {
		faction := entity.NewFaction(fs.ID, fs.Name, g.factions)
		for _, id := range fs.Friends {
			faction.FriendlyFactions[id] = struct{}{}
		}
		for _, id := range fs.Enemies {
			faction.EnemyFactions[id] = struct{}{}
		}
	}
	return nil
}

func (g *Game) restorePlayers(state *save.GameState) error {
	for _, ps := range state.Players {
		faction, ok := g.factions[ps.FactionID]
		if !ok {
			return fmt.Errorf("player %d references unknown faction %d", ps.ID, ps.FactionID)
		}
		clr := color.RGBA{R: ps.Color[0], G: ps.Color[1], B: ps.Color[2], A: ps.Color[3]}
		player := entity.NewPlayer(g.ctx, ps.ID, ps.Name, clr, faction, g.players)
		if ps.CPU {
			player.MakeCPU()
		}
		for name, resource := range ps.Resources {
			*player.Resource(name) = *resource
		}
		for id, progress := range ps.CurrentResearch {
			player.CurrentResearch()[id] = progress
		}
		for _, id := range ps.KnownTechnologies {
			player.RestoreKnownTechnology(id)
		}
		if ps.ID == state.LocalPlayerID {
			g.SetLocalPlayer(player)
		}
	}
	return nil
}

func (g *Game) restoreUnits(state *save.GameState) error {
	for _, us := range state.Units {
		player, ok := g.players[us.PlayerID]
		if !ok {
			return fmt.Errorf("unit %d references unknown player %d", us.ID, us.PlayerID)
		}
		g.ctx.ForceNextID(us.ID)
		spawned := g.spawner.Spawn(us.Name, player, gamemath.Vec2{X: us.X, Y: us.Y})
		unit, isUnit := spawned.(*entity.Unit)
		if !isUnit {
			return fmt.Errorf("saved unit %d (%s) is not a unit in configs", us.ID, us.Name)
		}
		unit.Restore(us.Health, us.Experience, us.FacingDirection, us.PermanentUnitsGroup)
		var path []gamemath.Vec2
		for _, grid := range us.Path {
			path = append(path, world.GridToPosition(grid.Grid()))
		}
		if len(path) > 0 {
			unit.FollowNewPath(path)
		}
	}
	return nil
}

func (g *Game) restoreBuildings(state *save.GameState) error {
	for _, bs := range state.Buildings {
		player, ok := g.players[bs.PlayerID]
		if !ok {
			return fmt.Errorf("building %d references unknown player %d", bs.ID, bs.PlayerID)
		}
		g.ctx.ForceNextID(bs.ID)
		building := g.spawner.SpawnBuilding(bs.Name, player, gamemath.Vec2{X: bs.X, Y: bs.Y}, entity.BuildingOptions{})
		if building == nil {
			return fmt.Errorf("saved building %d (%s) missing from configs", bs.ID, bs.Name)
		}
		building.Restore(bs.Health)
		if p := building.Producer; p != nil {
			p.Queue = append([]string(nil), bs.ProductionQueue...)
			p.CurrentlyProduced = bs.CurrentlyProduced
			p.ProductionProgress = bs.ProductionProgress
			p.ProductionTime = bs.ProductionTime
		}
		if e := building.Extractor; e != nil {
			e.Reserves = bs.ExtractorReserves
			e.Stockpile = bs.ExtractorStockpile
		}
		if r := building.Research; r != nil {
			r.Funding = bs.ResearchFunding
		}
	}
	return nil
}

func (g *Game) restoreScenario(state *save.GameState) error {
	if state.Scenario.Name == "" {
		return nil
	}
	s := g.NewScenario(state.Scenario.Name, state.Scenario.MapName)
	s.CampaignName = state.Scenario.CampaignName
	s.Index = state.Scenario.Index
	s.AddPlayers(state.Scenario.Players...)
	for id, required := range state.Scenario.RequiredVictoryPoints {
		s.SetRequiredVictoryPoints(id, required)
	}
	for id, points := range state.Scenario.VictoryPoints {
		if points > 0 {
			s.AddVictoryPoints(id, points)
		}
	}
	s.Ended = state.Scenario.Ended
	s.WinnerID = state.Scenario.WinnerID
	return nil
}

func (g *Game) restoreGroups(state *save.GameState) error {
	for index, ids := range state.PermanentGroups {
		var units []*entity.Unit
		for _, id := range ids {
			if unit, ok := g.units[id]; ok {
				units = append(units, unit)
			}
		}
		if len(units) > 0 {
			g.unitsManager.RestorePermanentGroup(index, units)
		}
	}
	return nil
}
