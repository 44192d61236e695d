package entity

import (
	"log/slog"
	"math"

	"github.com/akrol/steelfront/engine/audio"
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// Building is a PlayerEntity rooted on a rectangle of map nodes. What a
// building can do hangs off optional sub-records: a producer makes units, an
// extractor yields a resource, a research state advances technologies, a
// garrison shelters soldiers.
type Building struct {
	PlayerEntity

	occupiedNodes []*world.MapNode

	EnergyConsumption float64
	EnergyProduction  float64

	// PowerRatio is the owner's produced-to-required energy ratio; the player
	// recomputes it whenever a building spawns or dies. Production speed does
	// not depend on it.
	PowerRatio float64

	Producer  *ProducerState
	Extractor *ExtractorState
	Research  *ResearchState
	Garrison  *GarrisonState
}

// BuildingOptions select the optional capabilities of a spawned building.
type BuildingOptions struct {
	// GarrisonedSoldiers spawns this many soldiers already inside.
	GarrisonedSoldiers int
}

// NewBuilding creates a building of the given catalog name centered at a
// tile-normalised position, blocks the nodes under its footprint and roots
// it in the world.
func NewBuilding(ctx *Context, name string, player *Player, position gamemath.Vec2, opts BuildingOptions) *Building {
	b := &Building{
		PlayerEntity: newPlayerEntity(ctx, ctx.NextObjectID(), name, player, world.NormalizePosition(position.X, position.Y)),
		PowerRatio:   1,
	}
	cfg, ok := ctx.Configs.Get(name)
	if ok {
		b.applyConfig(cfg)
		b.EnergyConsumption = cfg.Float("energy_consumption")
		b.EnergyProduction = cfg.Float("energy_production")
		if produced := cfg.Strings("produced_units"); len(produced) > 0 {
			b.Producer = newProducerState(b, produced)
		} else if resource := cfg.Str("produced_resource"); resource != "" {
			b.Extractor = newExtractorState(b, resource)
		} else if cfg.Bool("research_facility") {
			b.Research = &ResearchState{owner: player}
		}
		if size := cfg.Int("garrison_size"); size > 0 {
			b.Garrison = &GarrisonState{Size: size}
		}
	}

	b.occupiedNodes = b.blockMapNodes()
	if len(b.occupiedNodes) > 0 {
		b.occupiedNodes[0].Sector.AddEntity(b)
	}
	b.InsertToMapQuadtree(b)
	player.AddEntity(b)
	player.RecalculateEnergyBalance()

	if opts.GarrisonedSoldiers > 0 && b.Garrison != nil {
		b.spawnSoldiersForGarrison(opts.GarrisonedSoldiers)
	}
	return b
}

// blockMapNodes claims the 2x2 node footprint around the building center.
func (b *Building) blockMapNodes() []*world.MapNode {
	center := world.PositionToGrid(b.position.X, b.position.Y)
	var nodes []*world.MapNode
	for x := center.X - 1; x <= center.X; x++ {
		for y := center.Y - 1; y <= center.Y; y++ {
			node := b.ctx.Map.Node(world.GridPosition{X: x, Y: y})
			if node == nil {
				continue
			}
			// construction clears whatever prop grew here
			node.SetObstacle(0)
			node.SetBuilding(b)
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (b *Building) spawnSoldiersForGarrison(count int) {
	if b.ctx.SpawnUnit == nil {
		return
	}
	for i := 0; i < count && i < b.Garrison.Size; i++ {
		spot := b.ctx.Pathfinder.ClosestWalkablePosition(b.position.X, b.position.Y)
		soldier := b.ctx.SpawnUnit("soldier", b.player, spot)
		if soldier != nil {
			soldier.EnterBuilding(b)
		}
	}
}

// IsUnit reports false for buildings.
func (b *Building) IsUnit() bool { return false }

// IsBuilding reports true.
func (b *Building) IsBuilding() bool { return true }

// IsInfantry reports false for buildings.
func (b *Building) IsInfantry() bool { return false }

// IsMoving reports false, this being a building.
func (b *Building) IsMoving() bool { return false }

// IsPowerPlant reports whether the building feeds the energy balance.
func (b *Building) IsPowerPlant() bool { return b.EnergyProduction > 0 }

// OccupiedNodes returns the nodes under the building's footprint.
func (b *Building) OccupiedNodes() []*world.MapNode { return b.occupiedNodes }

// Update advances the building one tick: reveal, enemy scan, then whichever
// subsystem the building carries.
func (b *Building) Update(delta float64) {
	if !b.alive {
		return
	}
	if b.ShouldRevealMap() {
		b.ctx.Fog.RevealNodes(b.observedGrids)
	}
	b.updateObservedArea()
	b.UpdateKnownEnemiesSet()
	if b.Producer != nil {
		b.Producer.update()
	}
	if b.Extractor != nil {
		b.Extractor.update()
	}
	if b.Research != nil {
		b.Research.update()
	}
}

// updateObservedArea computes the observed grids once: buildings do not move.
func (b *Building) updateObservedArea() {
	if len(b.observedGrids) == 0 {
		b.observedGrids = b.CalculateObservedArea()
	}
}

// OnBeingDamaged applies a hit; a destroyed building collapses immediately.
func (b *Building) OnBeingDamaged(damage, penetration float64) {
	if b.applyDamage(damage, penetration) {
		b.Kill()
	}
}

// Kill removes the building: occupied nodes are unblocked so the ground
// becomes pathable again. Calling it twice is a no-op.
func (b *Building) Kill() {
	if !b.alive {
		return
	}
	for _, node := range b.occupiedNodes {
		if node.Building() == world.NodeBlocker(b) {
			node.SetBuilding(nil)
		}
	}
	if len(b.occupiedNodes) > 0 {
		b.occupiedNodes[0].Sector.DiscardEntity(b)
	}
	if b.Extractor != nil {
		b.Extractor.detach()
	}
	b.killPlayerEntity(b)
}

// Restore reapplies saved per-building state after a load spawn.
func (b *Building) Restore(health float64) {
	b.health = health
}

// StartProduction queues a unit if the building produces it and the player
// can pay. Resources are deducted up front.
func (b *Building) StartProduction(unit string) {
	if b.Producer == nil {
		slog.Debug("building cannot produce units", "building", b.name)
		return
	}
	b.Producer.StartProduction(unit)
}

// CancelProduction removes a unit from the production queue, refunding
// resources in proportion to the progress already made.
func (b *Building) CancelProduction(unit string) {
	if b.Producer != nil {
		b.Producer.CancelProduction(unit)
	}
}

// ProducerState is the unit-production subsystem of a factory building.
// The queue holds every ordered unit including the one in production, which
// sits at the tail; new orders are prepended.
type ProducerState struct {
	building *Building

	ProducedUnits []string

	Queue              []string
	CurrentlyProduced  string
	ProductionProgress float64
	ProductionTime     float64 // in frames

	SpawnPoint      gamemath.Vec2
	DeploymentPoint *gamemath.Vec2

	// DefaultProducer marks the building picked when the player orders a
	// unit without choosing a factory.
	DefaultProducer bool
}

func newProducerState(b *Building, produced []string) *ProducerState {
	p := &ProducerState{
		building:      b,
		ProducedUnits: produced,
		SpawnPoint:    gamemath.Vec2{X: b.position.X, Y: b.position.Y - 3*world.TileHeight},
	}
	p.DefaultProducer = b.player.countProducersOf(produced) < 1
	return p
}

func (p *Player) countProducersOf(produced []string) int {
	count := 0
	for _, b := range p.buildings {
		if b.Producer != nil && len(b.Producer.ProducedUnits) > 0 &&
			b.Producer.ProducedUnits[0] == produced[0] {
			count++
		}
	}
	return count
}

// Produces reports whether the named unit is on this factory's list.
func (ps *ProducerState) Produces(unit string) bool {
	for _, name := range ps.ProducedUnits {
		if name == unit {
			return true
		}
	}
	return false
}

// QueueCount returns how many of the named unit are ordered.
func (ps *ProducerState) QueueCount(unit string) int {
	count := 0
	for _, name := range ps.Queue {
		if name == unit {
			count++
		}
	}
	return count
}

// StartProduction pays for a unit and enqueues it; an idle factory starts on
// it immediately.
func (ps *ProducerState) StartProduction(unit string) {
	if !ps.Produces(unit) {
		slog.Debug("unit not produced by this building",
			"building", ps.building.name, "unit", unit)
		return
	}
	player := ps.building.player
	if !player.EnoughResourcesFor(unit) {
		return
	}
	ps.consumeResourcesFromThePool(unit)
	if ps.CurrentlyProduced == "" {
		ps.startProduction(unit, true)
	}
	ps.Queue = append([]string{unit}, ps.Queue...)
}

func (ps *ProducerState) consumeResourcesFromThePool(unit string) {
	costs := ps.building.player.FetchCostsFor(unit)
	for _, resource := range ProductionCostResources {
		ps.building.player.ConsumeResource(resource, costs[resource])
	}
}

func (ps *ProducerState) startProduction(unit string, confirmation bool) {
	ps.ProductionProgress = 0
	cfg, _ := ps.building.ctx.Configs.Get(unit)
	ps.ProductionTime = cfg.Float("production_time") * float64(ps.building.ctx.Settings.FPS)
	ps.CurrentlyProduced = unit
	if confirmation && ps.building.player.IsLocalHuman() {
		ps.building.ctx.Audio.PlaySound(audio.SoundProductionStarted)
	}
}

// CancelProduction removes one order of the unit. Orders still waiting in
// the queue refund fully; the one in progress refunds its cost times
// progress / production time. Cancelling a unit that is not queued is a no-op.
func (ps *ProducerState) CancelProduction(unit string) {
	if ps.QueueCount(unit) == 0 {
		return
	}
	ps.removeOldestFromQueue(unit)
	ps.returnResourcesToThePool(unit)
	if unit == ps.CurrentlyProduced && ps.QueueCount(unit) == 0 {
		ps.CurrentlyProduced = ""
		ps.ProductionProgress = 0
	}
}

func (ps *ProducerState) removeOldestFromQueue(unit string) {
	for i := len(ps.Queue) - 1; i >= 0; i-- {
		if ps.Queue[i] == unit {
			ps.Queue = append(ps.Queue[:i], ps.Queue[i+1:]...)
			return
		}
	}
}

func (ps *ProducerState) returnResourcesToThePool(unit string) {
	// orders still waiting refund fully; the one already in progress refunds
	// the progress fraction
	returned := 1.0
	if ps.QueueCount(unit) == 0 && unit == ps.CurrentlyProduced && ps.ProductionTime > 0 {
		returned = ps.ProductionProgress / ps.ProductionTime
	}
	costs := ps.building.player.FetchCostsFor(unit)
	for _, resource := range ProductionCostResources {
		ps.building.player.AddResource(resource, costs[resource]*returned)
	}
}

// update advances production by one frame scaled by the factory's health; a
// finished unit spawns at the spawn point.
func (ps *ProducerState) update() {
	if ps.CurrentlyProduced != "" {
		ps.ProductionProgress += ps.building.HealthRatio()
		if ps.ProductionProgress >= ps.ProductionTime {
			finished := ps.Queue[len(ps.Queue)-1]
			ps.Queue = ps.Queue[:len(ps.Queue)-1]
			ps.finishProduction(finished)
		}
	} else if len(ps.Queue) > 0 {
		ps.startProduction(ps.Queue[len(ps.Queue)-1], false)
	}
}

func (ps *ProducerState) finishProduction(finished string) {
	ps.ProductionProgress = 0
	ps.CurrentlyProduced = ""
	ps.spawnFinishedUnit(finished)
	if ps.building.player.IsLocalHuman() {
		ps.building.ctx.Audio.PlaySound(audio.SoundProductionFinished)
	}
}

// spawnFinishedUnit emits the unit at the spawn point. A unit already
// standing there is ordered to vacate first; a configured deployment point
// sends the newcomer on its way.
func (ps *ProducerState) spawnFinishedUnit(finished string) {
	ctx := ps.building.ctx
	if ctx.SpawnUnit == nil {
		slog.Error("producer has no spawn hook wired", "building", ps.building.name)
		return
	}
	if occupant := ctx.Map.PositionToNode(ps.SpawnPoint.X, ps.SpawnPoint.Y).Unit(); occupant != nil {
		if unit, ok := occupant.(*Unit); ok {
			free := ctx.Pathfinder.ClosestWalkablePosition(ps.SpawnPoint.X, ps.SpawnPoint.Y)
			unit.OrderMove(world.PositionToGrid(free.X, free.Y))
		}
	}
	newUnit := ctx.SpawnUnit(finished, ps.building.player, ps.SpawnPoint)
	if newUnit != nil && ps.DeploymentPoint != nil {
		newUnit.OrderMove(world.PositionToGrid(ps.DeploymentPoint.X, ps.DeploymentPoint.Y))
	}
}

// ExtractorState drains a resource deposit each tick. With a recipient
// player attached the yield raises the player's per-second income instead of
// piling up locally.
type ExtractorState struct {
	building *Building

	Resource      string
	YieldPerFrame float64
	Reserves      float64
	Stockpile     float64
	recipient     *Player
}

func newExtractorState(b *Building, resource string) *ExtractorState {
	e := &ExtractorState{
		building:      b,
		Resource:      resource,
		YieldPerFrame: 0.033,
		recipient:     b.player,
	}
	e.recipient.ChangeResourceYield(resource, e.YieldPerFrame)
	return e
}

func (es *ExtractorState) update() {
	es.Reserves -= es.YieldPerFrame
	if es.recipient == nil {
		es.Stockpile += es.YieldPerFrame
	}
}

func (es *ExtractorState) detach() {
	if es.recipient != nil {
		es.recipient.ChangeResourceYield(es.Resource, -es.YieldPerFrame)
		es.recipient = nil
	}
}

// ResearchState advances one technology at a time, funded from the owner's
// budget. Progress accumulates on the player, so switching facilities keeps
// partial research.
type ResearchState struct {
	owner *Player

	Funding              float64
	ResearchedTechnology *Technology
}

// StartResearch begins researching a technology when its prerequisites are
// known.
func (rs *ResearchState) StartResearch(tech *Technology) {
	if rs.owner.KnowsAllRequired(tech.Required) {
		rs.ResearchedTechnology = tech
	}
}

func (rs *ResearchState) update() {
	tech := rs.ResearchedTechnology
	if tech == nil {
		return
	}
	progress := 0.0
	if rs.Funding > 0 && tech.Difficulty > 0 {
		progress = rs.Funding / tech.Difficulty
	}
	total := rs.owner.currentResearch[tech.ID] + progress
	rs.owner.currentResearch[tech.ID] = total
	if total > 100 {
		rs.ResearchedTechnology = nil
		rs.owner.UpdateKnownTechnologies(tech)
	}
}

// GarrisonState shelters soldiers inside a building.
type GarrisonState struct {
	Size     int
	soldiers []*Unit
}

// Soldiers returns the garrisoned soldiers.
func (gs *GarrisonState) Soldiers() []*Unit { return gs.soldiers }

// FreeSlots returns the remaining garrison capacity.
func (gs *GarrisonState) FreeSlots() int { return gs.Size - len(gs.soldiers) }

// Enter admits a soldier when space remains.
func (gs *GarrisonState) Enter(soldier *Unit) bool {
	if gs.FreeSlots() <= 0 {
		return false
	}
	gs.soldiers = append(gs.soldiers, soldier)
	return true
}

// Leave releases a garrisoned soldier.
func (gs *GarrisonState) Leave(soldier *Unit) bool {
	for i, s := range gs.soldiers {
		if s == soldier {
			gs.soldiers = append(gs.soldiers[:i], gs.soldiers[i+1:]...)
			return true
		}
	}
	return false
}

// ProductionProgressRatio returns how far the current order is, 0..1.
func (ps *ProducerState) ProductionProgressRatio() float64 {
	if ps.ProductionTime <= 0 {
		return 0
	}
	return math.Min(ps.ProductionProgress/ps.ProductionTime, 1)
}
