package entity

import (
	"log/slog"
	"math"

	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/world"
)

// Entity is any unit or building controlled by a player. Units and buildings
// appear in known-enemies sets, quadtree queries and weapon targets only
// through this interface.
type Entity interface {
	ID() int
	Name() string
	Player() *Player
	Faction() *Faction
	FactionID() int
	PlayerID() int
	Position() gamemath.Vec2
	IsUnit() bool
	IsBuilding() bool
	IsInfantry() bool
	IsMoving() bool
	HasWeapons() bool
	Health() float64
	MaxHealth() float64
	Armour() float64
	Cover() float64
	Experience() float64
	Alive() bool
	OccupiedNodes() []*world.MapNode
	OnBeingDamaged(damage, penetration float64)
	Kill()
}

// PlayerEntity carries everything common to units and buildings: identity,
// health, weapons, spatial-index membership, the observed area and the
// per-tick enemy scan. Unit and Building embed it.
type PlayerEntity struct {
	ctx *Context

	id      int
	name    string
	player  *Player
	faction *Faction

	position gamemath.Vec2

	health    float64
	maxHealth float64
	armour    float64
	cover     float64

	experience float64

	weapons []*Weapon

	// visibility and attack ranges in world units
	visibilityRadius float64
	attackRadius     float64

	// cached offsets of the visibility disc, translated by the current grid
	visibilityMatrix []gamemath.GridOffset

	observedGrids []world.GridPosition

	quadtree *world.QuadTree

	knownEnemies          map[Entity]struct{}
	enemyAssignedByPlayer Entity
	targetedEnemy         Entity

	alive bool
}

func newPlayerEntity(ctx *Context, id int, name string, player *Player, position gamemath.Vec2) PlayerEntity {
	return PlayerEntity{
		ctx:          ctx,
		id:           id,
		name:         name,
		player:       player,
		faction:      player.Faction(),
		position:     position,
		alive:        true,
		knownEnemies: make(map[Entity]struct{}),
	}
}

// applyConfig fills the stats every entity reads from the catalog.
func (e *PlayerEntity) applyConfig(cfg configReader) {
	e.maxHealth = cfg.Float("max_health")
	e.health = e.maxHealth
	e.armour = cfg.Float("armour")
	e.visibilityRadius = cfg.Float("visibility_radius") * world.TileWidth
	e.attackRadius = cfg.Float("attack_radius") * world.TileWidth
	radius := int(e.visibilityRadius / world.TileWidth)
	if radius > 0 {
		e.visibilityMatrix = gamemath.CircularAreaMatrix(radius)
	}
	for _, weaponName := range cfg.Strings("weapons_names") {
		e.weapons = append(e.weapons, NewWeapon(e.ctx, weaponName, nil))
	}
}

type configReader interface {
	Float(key string) float64
	Str(key string) string
	Strings(key string) []string
	Int(key string) int
	Bool(key string) bool
}

// ID returns the stable entity id.
func (e *PlayerEntity) ID() int { return e.id }

// Name returns the catalog object name.
func (e *PlayerEntity) Name() string { return e.name }

// Player returns the owning player.
func (e *PlayerEntity) Player() *Player { return e.player }

// Faction returns the owning player's faction.
func (e *PlayerEntity) Faction() *Faction { return e.faction }

// FactionID keys the entity in the map quadtree.
func (e *PlayerEntity) FactionID() int { return e.faction.ID }

// PlayerID keys the entity in map sectors.
func (e *PlayerEntity) PlayerID() int { return e.player.ID }

// Position returns the world position.
func (e *PlayerEntity) Position() gamemath.Vec2 { return e.position }

// Health returns the current health.
func (e *PlayerEntity) Health() float64 { return e.health }

// MaxHealth returns the maximum health.
func (e *PlayerEntity) MaxHealth() float64 { return e.maxHealth }

// Armour returns the armour rating checked against weapon penetration.
func (e *PlayerEntity) Armour() float64 { return e.armour }

// Cover returns the cover bonus subtracted from attackers' hit chance.
func (e *PlayerEntity) Cover() float64 { return e.cover }

// Experience returns the accumulated combat experience.
func (e *PlayerEntity) Experience() float64 { return e.experience }

// Alive reports whether the entity still lives.
func (e *PlayerEntity) Alive() bool { return e.alive }

// HealthRatio returns health as a 0..1 fraction.
func (e *PlayerEntity) HealthRatio() float64 {
	if e.maxHealth <= 0 {
		return 1
	}
	return e.health / e.maxHealth
}

// HasWeapons reports whether the entity carries any weapon.
func (e *PlayerEntity) HasWeapons() bool { return len(e.weapons) > 0 }

// Weapons returns the carried weapons.
func (e *PlayerEntity) Weapons() []*Weapon { return e.weapons }

// Ammunition sums the ammunition of every weapon.
func (e *PlayerEntity) Ammunition() int {
	total := 0
	for _, w := range e.weapons {
		total += w.Ammunition
	}
	return total
}

// VisibilityRadius returns the visibility range in world units.
func (e *PlayerEntity) VisibilityRadius() float64 { return e.visibilityRadius }

// AttackRadius returns the attack range in world units.
func (e *PlayerEntity) AttackRadius() float64 { return e.attackRadius }

// KnownEnemies returns the hostile entities seen this tick.
func (e *PlayerEntity) KnownEnemies() map[Entity]struct{} { return e.knownEnemies }

// TargetedEnemy returns the enemy currently fought, if any.
func (e *PlayerEntity) TargetedEnemy() Entity { return e.targetedEnemy }

// AssignEnemy pins an enemy chosen by the player, or clears it with nil.
func (e *PlayerEntity) AssignEnemy(enemy Entity) {
	e.enemyAssignedByPlayer = enemy
	e.targetedEnemy = enemy
}

// IsEnemy reports whether the other entity belongs to a hostile faction.
func (e *PlayerEntity) IsEnemy(other Entity) bool {
	return e.faction.IsEnemy(other.Faction())
}

// IsControlledByLocalHuman reports whether the local human owns this entity.
func (e *PlayerEntity) IsControlledByLocalHuman() bool {
	return e.player.IsLocalHuman()
}

// ShouldRevealMap reports whether this entity lifts the fog of war: only the
// local human player's entities reveal.
func (e *PlayerEntity) ShouldRevealMap() bool {
	return e.IsControlledByLocalHuman()
}

// Quadtree returns the quadtree node currently indexing the entity.
func (e *PlayerEntity) Quadtree() *world.QuadTree { return e.quadtree }

// InsertToMapQuadtree indexes the entity. The entity passes its concrete
// self, so the tree stores the full Entity.
func (e *PlayerEntity) InsertToMapQuadtree(self Entity) {
	e.quadtree = e.ctx.Quadtree.Insert(self)
	if e.quadtree == nil {
		slog.Error("entity outside map quadtree bounds",
			"entity", e.name, "id", e.id, "position", e.position)
		panic("entity inserted outside the map quadtree")
	}
}

// RemoveFromMapQuadtree drops the entity from the spatial index.
func (e *PlayerEntity) RemoveFromMapQuadtree(self Entity) {
	if e.quadtree != nil {
		e.quadtree.Remove(self)
		e.quadtree = nil
	}
}

// UpdateInMapQuadtree re-indexes the entity after it left its leaf's bounds.
func (e *PlayerEntity) UpdateInMapQuadtree(self Entity) {
	e.RemoveFromMapQuadtree(self)
	e.InsertToMapQuadtree(self)
}

// CalculateObservedArea translates the cached visibility disc by the current
// grid, clamped to the map.
func (e *PlayerEntity) CalculateObservedArea() []world.GridPosition {
	grid := world.PositionToGrid(e.position.X, e.position.Y)
	area := make([]world.GridPosition, 0, len(e.visibilityMatrix))
	for _, offset := range e.visibilityMatrix {
		g := world.GridPosition{X: grid.X + offset.DX, Y: grid.Y + offset.DY}
		if e.ctx.Map.Contains(g) {
			area = append(area, g)
		}
	}
	return area
}

// ObservedGrids returns the grids inside the entity's visibility disc.
func (e *PlayerEntity) ObservedGrids() []world.GridPosition { return e.observedGrids }

// UpdateKnownEnemiesSet scans the quadtree for hostile entities inside the
// visibility circle, becoming the entity's known-enemies set for this tick.
// Finds are merged into the player's and faction's sets; first contact warns
// the local human player.
func (e *PlayerEntity) UpdateKnownEnemiesSet() {
	enemies := e.scanForVisibleEnemies()
	if len(enemies) > 0 {
		hadNone := len(e.player.knownEnemies) == 0
		e.player.UpdateKnownEnemies(enemies)
		if hadNone && e.IsControlledByLocalHuman() {
			e.player.NotifyEnemiesDetected()
		}
	}
	e.knownEnemies = enemies
}

func (e *PlayerEntity) scanForVisibleEnemies() map[Entity]struct{} {
	found := e.ctx.Quadtree.FindVisibleEntitiesInCircle(
		e.position.X, e.position.Y, e.visibilityRadius, e.faction.EnemyFactions)
	enemies := make(map[Entity]struct{}, len(found))
	for _, candidate := range found {
		if enemy, ok := candidate.(Entity); ok && enemy.Alive() {
			enemies[enemy] = struct{}{}
		}
	}
	return enemies
}

// SelectEnemyFromKnownEnemies picks the next target: armed enemies first,
// the weakest among them to bring it down fast.
func (e *PlayerEntity) SelectEnemyFromKnownEnemies() Entity {
	if len(e.knownEnemies) == 0 {
		return nil
	}
	var best Entity
	bestArmed := false
	for enemy := range e.knownEnemies {
		armed := enemy.HasWeapons()
		switch {
		case best == nil:
			best, bestArmed = enemy, armed
		case armed && !bestArmed:
			best, bestArmed = enemy, armed
		case armed == bestArmed && enemy.Health() < best.Health():
			best = enemy
		case armed == bestArmed && enemy.Health() == best.Health() && enemy.ID() < best.ID():
			best = enemy
		}
	}
	return best
}

// InAttackRange reports whether the other entity can be hit from here. For
// buildings every occupied node counts.
func (e *PlayerEntity) InAttackRange(other Entity) bool {
	if other.IsUnit() {
		return other.Position().Distance(e.position) < e.attackRadius
	}
	for _, node := range other.OccupiedNodes() {
		if node.Position.Distance(e.position) < e.attackRadius {
			return true
		}
	}
	return false
}

// Attack fires every reloaded weapon at the enemy.
func (e *PlayerEntity) Attack(self, enemy Entity) {
	if e.Ammunition() == 0 {
		return
	}
	now := e.ctx.GameClock()
	for _, weapon := range e.weapons {
		if weapon.Reloaded(now) {
			weapon.Shoot(self, enemy, now)
		}
	}
	e.checkIfEnemyDestroyed(enemy)
}

func (e *PlayerEntity) checkIfEnemyDestroyed(enemy Entity) {
	if enemy.Alive() {
		return
	}
	if e.enemyAssignedByPlayer == enemy {
		e.enemyAssignedByPlayer = nil
	}
	delete(e.knownEnemies, enemy)
	e.targetedEnemy = nil
}

// applyDamage subtracts a randomized damage roll and reports whether the
// entity died of it. Immortal local-human units shrug everything off.
func (e *PlayerEntity) applyDamage(damage, penetration float64) bool {
	if e.ctx.Settings.ImmortalPlayerUnits && e.IsControlledByLocalHuman() {
		return false
	}
	effectiveness := 1 - math.Max(e.armour-penetration, 0)
	roll := gauss(e.ctx, damage, e.ctx.Settings.DamageRandomness)
	e.health = gamemath.Clamp(e.health-roll*effectiveness, e.maxHealth, 0)
	return e.health <= 0
}

// killPlayerEntity is the shared half of dying: idempotent, detaches the
// entity from its player and the spatial index.
func (e *PlayerEntity) killPlayerEntity(self Entity) bool {
	if !e.alive {
		return false
	}
	e.alive = false
	clear(e.knownEnemies)
	e.RemoveFromMapQuadtree(self)
	e.player.RemoveEntity(self)
	if e.ctx.NotifyKilled != nil {
		e.ctx.NotifyKilled(self)
	}
	return true
}

func gauss(ctx *Context, mean, stddev float64) float64 {
	if ctx.Rand == nil {
		return mean
	}
	return ctx.Rand.NormFloat64()*stddev + mean
}

func randIntn(ctx *Context, n int) int {
	if ctx.Rand == nil || n <= 0 {
		return 0
	}
	return ctx.Rand.Intn(n)
}
