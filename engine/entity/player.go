package entity

import (
	"image/color"
	"log/slog"
	"strconv"

	"github.com/akrol/steelfront/engine/audio"
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/sched"
)

// Player owns entities and an economy. A player belongs to exactly one
// faction; hostility is tracked at the faction level.
type Player struct {
	ID      int
	Name    string
	Color   color.RGBA
	CPU     bool
	faction *Faction

	ctx *Context

	resources map[string]*Resource

	units     map[int]*Unit
	buildings map[int]*Building

	knownTechnologies map[int]struct{}
	currentResearch   map[int]float64

	knownEnemies map[Entity]struct{}

	UnitsPossibleToBuild     []string
	BuildingsPossibleToBuild []string

	planner *ConstructionPlanner
}

// NewPlayer creates a player attached to the faction and schedules its
// per-second resource stock update. Pass id 0 to allocate the next free id.
func NewPlayer(ctx *Context, id int, name string, clr color.RGBA, faction *Faction, registry map[int]*Player) *Player {
	if id == 0 {
		maxID := 0
		for existing := range registry {
			if existing > maxID {
				maxID = existing
			}
		}
		id = nextPlayerOrFactionID(len(registry), maxID)
	}
	if name == "" {
		name = "Player " + strconv.Itoa(id)
	}
	p := &Player{
		ID:                id,
		Name:              name,
		Color:             clr,
		faction:           faction,
		ctx:               ctx,
		resources:         make(map[string]*Resource, len(ResourceNames)),
		units:             make(map[int]*Unit),
		buildings:         make(map[int]*Building),
		knownTechnologies: make(map[int]struct{}),
		currentResearch:   make(map[int]float64),
		knownEnemies:      make(map[Entity]struct{}),
	}
	for name, start := range defaultResources {
		p.resources[name] = &Resource{
			Stock:                start * ctx.Settings.StartingResources,
			ProductionEfficiency: 1.0,
		}
	}
	faction.AddPlayer(p)
	if registry != nil {
		registry[id] = p
	}
	ctx.Scheduler.Schedule(
		sched.NewRepeatingEvent(p, 1, -1, p.UpdateResourcesStock).
			WithRecord(p.ID, sched.MethodUpdateResourcesStock))
	return p
}

// MakeCPU turns the player into a computer opponent with a construction
// planner updated on a difficulty-scaled cadence.
func (p *Player) MakeCPU() {
	p.CPU = true
	p.planner = NewConstructionPlanner(p)
	delay := float64(6 - p.ctx.Settings.Difficulty)
	if delay < 1 {
		delay = 1
	}
	p.ctx.Scheduler.Schedule(
		sched.NewRepeatingEvent(p, delay, -1, p.planner.UpdateLogic).
			WithRecord(p.ID, sched.MethodUpdateCPULogic))
}

// Faction returns the faction the player belongs to.
func (p *Player) Faction() *Faction { return p.faction }

// Units returns the player's units.
func (p *Player) Units() map[int]*Unit { return p.units }

// Buildings returns the player's buildings.
func (p *Player) Buildings() map[int]*Building { return p.buildings }

// KnownEnemies returns the enemies the player's entities saw this tick.
func (p *Player) KnownEnemies() map[Entity]struct{} { return p.knownEnemies }

// IsLocalHuman reports whether this is the human at this machine.
func (p *Player) IsLocalHuman() bool { return p.ctx.IsLocalHuman(p) }

// IsEnemy reports whether the other player's faction is hostile.
func (p *Player) IsEnemy(other *Player) bool {
	return p.faction.IsEnemy(other.faction)
}

// StartWarWith declares war on the other player's faction; only the faction
// leader can do that.
func (p *Player) StartWarWith(other *Player) {
	if p.faction.Leader() == p {
		p.faction.StartWarWith(other.faction)
	}
}

// Defeated reports whether the player has nothing left on the map.
func (p *Player) Defeated() bool {
	return len(p.units) == 0 && len(p.buildings) == 0
}

// Update clears the per-tick known enemies.
func (p *Player) Update() {
	clear(p.knownEnemies)
}

// UpdateKnownEnemies merges an entity's scan into the player's and faction's
// known-enemies sets.
func (p *Player) UpdateKnownEnemies(enemies map[Entity]struct{}) {
	for enemy := range enemies {
		p.knownEnemies[enemy] = struct{}{}
		p.faction.knownEnemies[enemy] = struct{}{}
	}
}

// AddEntity registers a spawned unit or building with the player and its
// faction.
func (p *Player) AddEntity(e Entity) {
	switch concrete := e.(type) {
	case *Unit:
		p.units[concrete.ID()] = concrete
		p.faction.units[concrete.ID()] = concrete
	case *Building:
		p.buildings[concrete.ID()] = concrete
		p.faction.buildings[concrete.ID()] = concrete
	}
}

// RemoveEntity detaches a dead unit or building. Removing a building also
// rebalances energy and construction options.
func (p *Player) RemoveEntity(e Entity) {
	switch concrete := e.(type) {
	case *Unit:
		delete(p.units, concrete.ID())
		delete(p.faction.units, concrete.ID())
	case *Building:
		delete(p.buildings, concrete.ID())
		delete(p.faction.buildings, concrete.ID())
		p.RecalculateEnergyBalance()
	}
}

// Kill eliminates the player: every entity dies and the faction forgets the
// player.
func (p *Player) Kill() {
	for _, unit := range p.units {
		unit.Kill()
	}
	for _, building := range p.buildings {
		building.Kill()
	}
	p.faction.RemovePlayer(p)
}

// Resource returns the named resource record, creating a zeroed one for
// unknown kinds so lookups never fault.
func (p *Player) Resource(name string) *Resource {
	r, ok := p.resources[name]
	if !ok {
		r = &Resource{ProductionEfficiency: 1.0}
		p.resources[name] = r
	}
	return r
}

// ResourceAmount returns the current stock of a resource kind.
func (p *Player) ResourceAmount(name string) float64 {
	return p.Resource(name).Stock
}

// HasResource reports whether at least amount of the resource is stocked.
func (p *Player) HasResource(name string, amount float64) bool {
	return p.ResourceAmount(name) >= amount || p.UnlimitedResources()
}

// UnlimitedResources reports whether spending checks are disabled for this
// player by the game options.
func (p *Player) UnlimitedResources() bool {
	if p.IsLocalHuman() {
		return p.ctx.Settings.UnlimitedPlayerResources
	}
	return p.ctx.Settings.UnlimitedCPUResources
}

// EnoughResourcesFor checks an expense by object name against the catalog.
// On a deficit the local human hears the matching warning sound; no state is
// changed.
func (p *Player) EnoughResourcesFor(expense string) bool {
	if p.UnlimitedResources() {
		return true
	}
	return p.enoughResourcesFor(p.FetchCostsFor(expense))
}

// EnoughResourcesForCosts checks an explicit cost table.
func (p *Player) EnoughResourcesForCosts(costs map[string]float64) bool {
	return p.UnlimitedResources() || p.enoughResourcesFor(costs)
}

func (p *Player) enoughResourcesFor(costs map[string]float64) bool {
	for resource, cost := range costs {
		if cost <= 0 {
			continue
		}
		if !p.HasResource(resource, cost) {
			if p.IsLocalHuman() {
				p.ctx.Audio.PlaySound(audio.NotEnoughResourceSound(resource))
			}
			slog.Debug("not enough resources", "player", p.ID, "resource", resource, "required", cost)
			return false
		}
	}
	return true
}

// FetchCostsFor reads the per-resource cost of an object from the catalog.
func (p *Player) FetchCostsFor(expense string) map[string]float64 {
	costs := make(map[string]float64, len(ResourceNames))
	cfg, ok := p.ctx.Configs.Get(expense)
	if !ok {
		slog.Warn("unknown expense in configs", "name", expense)
		return costs
	}
	for _, resource := range ResourceNames {
		costs[resource] = cfg.Float(resource)
	}
	return costs
}

// ConsumeResource deducts an amount, never below zero.
func (p *Player) ConsumeResource(name string, amount float64) {
	r := p.Resource(name)
	r.Stock -= abs(amount)
	if r.Stock < 0 {
		r.Stock = 0
	}
}

// AddResource returns an amount to the stockpile.
func (p *Player) AddResource(name string, amount float64) {
	p.Resource(name).Stock += abs(amount)
}

// ChangeResourceYield adjusts a resource's yield per second, e.g. when an
// extractor building spawns or dies.
func (p *Player) ChangeResourceYield(name string, change float64) {
	p.Resource(name).YieldPerSecond += change
}

// UpdateResourcesStock advances every non-energy stockpile by its yield.
// Scheduled once per second for the player's lifetime.
func (p *Player) UpdateResourcesStock() {
	for _, name := range ResourceNames {
		if name == Energy {
			continue
		}
		r := p.Resource(name)
		r.Stock += r.YieldPerSecond * r.ProductionEfficiency
	}
}

// RecalculateEnergyBalance recomputes the power ratio from the energy the
// player's buildings produce and require, and pushes it to every building.
// Called whenever a building is added or removed.
func (p *Player) RecalculateEnergyBalance() {
	powerRatio := 1.0
	if !p.UnlimitedResources() {
		var required, produced float64
		for _, b := range p.buildings {
			required += b.EnergyConsumption
			if b.IsPowerPlant() {
				produced += b.EnergyProduction
			}
		}
		if required > 0 {
			powerRatio = gamemath.Clamp(produced/required, 1, 0)
		}
		surplus := produced - required
		if surplus < 0 {
			surplus = 0
		}
		p.Resource(Energy).Stock = surplus
	}
	for _, b := range p.buildings {
		b.PowerRatio = powerRatio
	}
}

// KnowsAllRequired reports whether every prerequisite technology is known.
func (p *Player) KnowsAllRequired(required []int) bool {
	for _, techID := range required {
		if _, known := p.knownTechnologies[techID]; !known {
			return false
		}
	}
	return true
}

// KnowsTechnology reports whether a technology has been researched.
func (p *Player) KnowsTechnology(techID int) bool {
	_, known := p.knownTechnologies[techID]
	return known
}

// CurrentResearch returns the accumulated progress per technology id.
func (p *Player) CurrentResearch() map[int]float64 { return p.currentResearch }

// KnownTechnologyIDs returns every researched technology id.
func (p *Player) KnownTechnologyIDs() []int {
	ids := make([]int, 0, len(p.knownTechnologies))
	for id := range p.knownTechnologies {
		ids = append(ids, id)
	}
	return ids
}

// RestoreKnownTechnology marks a technology as researched without rerunning
// its effect, used by the save loader.
func (p *Player) RestoreKnownTechnology(techID int) {
	p.knownTechnologies[techID] = struct{}{}
}

// UpdateKnownTechnologies marks a technology as researched and applies its
// one-shot effect to the player.
func (p *Player) UpdateKnownTechnologies(tech *Technology) {
	p.knownTechnologies[tech.ID] = struct{}{}
	if tech.Effect != nil {
		tech.Effect(p)
	}
	if p.IsLocalHuman() {
		p.ctx.Audio.PlaySound(audio.SoundResearchFinished)
	}
}

// DefaultProducerOfUnit picks the building flagged as default producer for
// the unit among those able to produce it.
func (p *Player) DefaultProducerOfUnit(unitName string) *Building {
	for _, b := range p.buildings {
		if b.Producer == nil {
			continue
		}
		if !b.Producer.Produces(unitName) {
			continue
		}
		if b.Producer.DefaultProducer {
			return b
		}
	}
	return nil
}

// NotifyEnemiesDetected plays the one-shot detection warning for the local
// human player.
func (p *Player) NotifyEnemiesDetected() {
	p.ctx.Audio.PlaySound(audio.SoundEnemyDetected)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
