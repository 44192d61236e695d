package entity

import (
	"github.com/akrol/steelfront/engine/audio"
	"github.com/akrol/steelfront/engine/gamemath"
	"github.com/akrol/steelfront/engine/pathfind"
	"github.com/akrol/steelfront/engine/world"
)

// UnitKind tags what sort of unit this is. Capability differences (fuel,
// turret, garrisoning) hang off the kind instead of a type hierarchy.
type UnitKind int

const (
	KindVehicle UnitKind = iota
	KindVehicleWithTurret
	KindSoldier
	KindBoat
	KindAir
)

// closeEnoughDistance scales with max speed: a waypoint closer than
// 0.1 * max speed is considered reached.
const closeEnoughDistance = 0.1

// soldierHealthRestoration is how much health a soldier regains per tick.
const soldierHealthRestoration = 0.003

// Unit is a PlayerEntity that moves on the map. It follows paths delivered
// by the pathfinder, blocks the node it stands on, reserves the next node of
// its path, and negotiates collisions by waiting, rerouting or asking the
// blocker to step aside.
type Unit struct {
	PlayerEntity

	Kind   UnitKind
	Weight int

	// facing is one of 16 discrete orientations; virtualAngle is the exact
	// bearing in degrees the facing is derived from
	facingDirection int
	virtualAngle    int
	rotationSpeed   float64

	maxSpeed     float64
	currentSpeed float64
	velocity     gamemath.Vec2

	currentNode  *world.MapNode
	reservedNode *world.MapNode

	path             []gamemath.Vec2
	awaitedPath      []gamemath.Vec2
	pathWaitDeadline float64

	forcedDestination bool

	permanentUnitsGroup int
	navigatingGroup     *pathfind.NavigatingGroup
	waypointsQueue      *pathfind.WaypointsQueue

	// outside is false while garrisoned inside a building
	outside bool

	// vehicles only
	maxFuel         float64
	fuel            float64
	fuelConsumption float64

	// turreted vehicles only
	turretFacingDirection int
	turretAimTarget       Entity
}

// NewUnit builds a unit of the given catalog name at a tile-normalised
// position and roots it in the world: node blocked, quadtree indexed,
// sector registered.
func NewUnit(ctx *Context, name string, player *Player, position gamemath.Vec2) *Unit {
	u := &Unit{
		PlayerEntity: newPlayerEntity(ctx, ctx.NextObjectID(), name, player, world.NormalizePosition(position.X, position.Y)),
		outside:      true,
	}
	cfg, ok := ctx.Configs.Get(name)
	if ok {
		u.applyConfig(cfg)
		u.Kind = unitKindFromConfig(cfg.Str("class"))
		u.Weight = cfg.Int("weight")
		u.maxSpeed = cfg.Float("max_speed")
		u.rotationSpeed = cfg.Float("rotation_speed")
		if u.IsVehicle() {
			u.maxFuel = cfg.Float("fuel")
			u.fuel = u.maxFuel
			u.fuelConsumption = cfg.Float("fuel_consumption")
		}
	}
	if u.rotationSpeed <= 0 {
		u.rotationSpeed = 10
	}
	u.facingDirection = randIntn(ctx, gamemath.Rotations)
	u.virtualAngle = int(gamemath.RotationStep*float64(u.facingDirection)) % 360
	if u.Kind == KindVehicleWithTurret {
		u.turretFacingDirection = randIntn(ctx, gamemath.Rotations)
	}

	u.currentNode = ctx.Map.PositionToNode(u.position.X, u.position.Y)
	u.blockMapNode(u.currentNode)
	u.currentNode.Sector.AddEntity(u)
	u.InsertToMapQuadtree(u)
	player.AddEntity(u)
	ctx.Layers.SwapRenderingLayers(u, 0, u.currentNode.Grid.Y)
	return u
}

func unitKindFromConfig(class string) UnitKind {
	switch class {
	case "VehicleWithTurret":
		return KindVehicleWithTurret
	case "Soldier":
		return KindSoldier
	case "Boat":
		return KindBoat
	case "AirUnit":
		return KindAir
	default:
		return KindVehicle
	}
}

// IsUnit reports true: this entity moves.
func (u *Unit) IsUnit() bool { return true }

// IsBuilding reports false for units.
func (u *Unit) IsBuilding() bool { return false }

// IsInfantry reports whether this unit is a soldier.
func (u *Unit) IsInfantry() bool { return u.Kind == KindSoldier }

// IsVehicle reports whether this unit burns fuel.
func (u *Unit) IsVehicle() bool {
	return u.Kind == KindVehicle || u.Kind == KindVehicleWithTurret ||
		u.Kind == KindBoat || u.Kind == KindAir
}

// IsMoving reports whether the unit has velocity this tick.
func (u *Unit) IsMoving() bool { return u.velocity.X != 0 || u.velocity.Y != 0 }

// OccupiedNodes returns nil: a unit occupies only its current node, tracked
// through CurrentNode.
func (u *Unit) OccupiedNodes() []*world.MapNode { return nil }

// CurrentNode returns the node the unit stands on.
func (u *Unit) CurrentNode() *world.MapNode { return u.currentNode }

// ReservedNode returns the node reserved as the next path step, if any.
func (u *Unit) ReservedNode() *world.MapNode { return u.reservedNode }

// FacingDirection returns the discrete hull orientation in [0, 16).
func (u *Unit) FacingDirection() int { return u.facingDirection }

// TurretFacingDirection returns the discrete turret orientation for turreted
// vehicles; other kinds report the hull facing.
func (u *Unit) TurretFacingDirection() int {
	if u.Kind == KindVehicleWithTurret {
		return u.turretFacingDirection
	}
	return u.facingDirection
}

// VirtualAngle returns the exact bearing in degrees the unit is rotated to.
func (u *Unit) VirtualAngle() int { return u.virtualAngle }

// MaxSpeed returns the unit's top speed.
func (u *Unit) MaxSpeed() float64 { return u.maxSpeed }

// Path returns the remaining waypoints of the current path.
func (u *Unit) Path() []gamemath.Vec2 { return u.path }

// AwaitedPath returns the path stashed during a collision wait, if any.
func (u *Unit) AwaitedPath() []gamemath.Vec2 { return u.awaitedPath }

// PathWaitDeadline returns the game time the collision wait expires at.
func (u *Unit) PathWaitDeadline() float64 { return u.pathWaitDeadline }

// Velocity returns the current per-tick movement vector.
func (u *Unit) Velocity() gamemath.Vec2 { return u.velocity }

// Fuel returns the remaining fuel of a vehicle.
func (u *Unit) Fuel() float64 { return u.fuel }

// Outside reports whether the unit is on the map rather than garrisoned.
func (u *Unit) Outside() bool { return u.outside }

// PermanentUnitsGroup returns the ctrl-group number this unit belongs to.
func (u *Unit) PermanentUnitsGroup() int { return u.permanentUnitsGroup }

// SetPermanentUnitsGroup assigns the ctrl-group number.
func (u *Unit) SetPermanentUnitsGroup(index int) { u.permanentUnitsGroup = index }

// NavigatingGroup returns the group steering the unit, if any.
func (u *Unit) NavigatingGroup() *pathfind.NavigatingGroup { return u.navigatingGroup }

// Update advances the unit one tick: reveal, enemy scan, combat, movement,
// node bookkeeping and path following, in that order.
func (u *Unit) Update(delta float64) {
	if !u.alive || !u.outside {
		return
	}
	if u.ShouldRevealMap() {
		u.ctx.Fog.RevealNodes(u.observedGrids)
	}
	u.UpdateKnownEnemiesSet()
	if len(u.knownEnemies) > 0 || u.enemyAssignedByPlayer != nil {
		u.updateBattleBehaviour()
	}

	u.position = u.position.Add(u.velocity)
	if u.IsVehicle() && u.IsMoving() {
		u.fuel -= u.fuelConsumption
	}
	if u.Kind == KindSoldier {
		u.restoreHealth()
	}

	newNode := u.updateCurrentNode()
	u.updateObservedArea(newNode)
	u.updateBlockedMapNodes(newNode)
	u.updatePathfinding()
}

func (u *Unit) restoreHealth() {
	wounds := u.maxHealth - u.health
	gained := soldierHealthRestoration
	if wounds < gained {
		gained = wounds
	}
	u.health += gained
}

// updateCurrentNode resolves the node under the unit's position and keeps
// the spatial index and render layers in step with it.
func (u *Unit) updateCurrentNode() *world.MapNode {
	newNode := u.ctx.Map.PositionToNode(u.position.X, u.position.Y)
	if newNode != u.currentNode {
		if u.quadtree != nil && !u.quadtree.InBounds(u) {
			u.UpdateInMapQuadtree(u)
		}
		if oldRow, newRow := u.currentNode.Grid.Y, newNode.Grid.Y; oldRow != newRow {
			u.ctx.Layers.SwapRenderingLayers(u, oldRow, newRow)
		}
		if u.currentNode.Sector != newNode.Sector {
			u.currentNode.Sector.DiscardEntity(u)
			newNode.Sector.AddEntity(u)
		}
	}
	return newNode
}

func (u *Unit) updateObservedArea(newNode *world.MapNode) {
	if len(u.observedGrids) > 0 && newNode == u.currentNode {
		return
	}
	u.observedGrids = u.CalculateObservedArea()
}

// updateBlockedMapNodes keeps node ownership consistent with movement: the
// current node swaps to the new one, and with more than one path step left
// the next node is reserved ahead of entry.
func (u *Unit) updateBlockedMapNodes(newNode *world.MapNode) {
	if len(u.path) > 0 {
		u.scanNextNodesForCollisions()
	}
	u.swapBlockedNodes(u.currentNode, newNode)
	u.currentNode = newNode
	var newReserved *world.MapNode
	if len(u.path) > 1 {
		newReserved = u.ctx.Map.PositionToNode(u.path[0].X, u.path[0].Y)
	}
	if u.reservedNode != nil && u.reservedNode != newReserved && u.reservedNode != u.currentNode {
		u.unblockMapNode(u.reservedNode)
	}
	if newReserved != nil {
		u.blockMapNode(newReserved)
	}
	u.reservedNode = newReserved
}

func (u *Unit) swapBlockedNodes(unblocked, blocked *world.MapNode) {
	if unblocked != nil {
		u.unblockMapNode(unblocked)
	}
	u.blockMapNode(blocked)
}

func (u *Unit) unblockMapNode(node *world.MapNode) {
	if node.Unit() == world.NodeOccupant(u) {
		node.SetUnit(nil)
	}
}

func (u *Unit) blockMapNode(node *world.MapNode) {
	node.SetUnit(u)
}

// scanNextNodesForCollisions inspects the next path node: another unit there
// triggers avoidance, a static obstacle triggers a reroute.
func (u *Unit) scanNextNodesForCollisions() {
	nextNode := u.ctx.Map.PositionToNode(u.path[0].X, u.path[0].Y)
	if blocker := nextNode.Unit(); blocker != nil && blocker != world.NodeOccupant(u) {
		if blockerUnit, ok := blocker.(*Unit); ok {
			u.findBestWayToAvoidCollision(blockerUnit)
		}
	} else if nextNode.ObstacleID() != 0 {
		u.findAlternativePath()
	}
}

// findBestWayToAvoidCollision applies the avoidance policy in order: wait
// when the blocker is moving or hostile, otherwise detour through a shared
// adjacent node, otherwise ask the blocker to step aside.
func (u *Unit) findBestWayToAvoidCollision(blocker *Unit) {
	if blocker.HasDestination() || u.IsEnemy(blocker) {
		u.waitForFreePath()
	} else if u.findAlternativePath() {
		return
	} else {
		u.askForPass(blocker)
	}
}

// waitForFreePath shelves the current path for a second instead of running
// A* again: useful when the next node is only temporarily taken.
func (u *Unit) waitForFreePath() {
	u.pathWaitDeadline = u.ctx.GameClock() + 1
	u.awaitedPath = append([]gamemath.Vec2(nil), u.path...)
	u.path = nil
	u.stop()
}

// findAlternativePath tries to reroute the next step through a walkable node
// adjacent to both the current node and the node after next.
func (u *Unit) findAlternativePath() bool {
	if len(u.path) <= 1 {
		return false
	}
	afterNext := u.ctx.Map.PositionToNode(u.path[1].X, u.path[1].Y)
	for _, node := range u.ctx.Map.WalkableAdjacent(u.currentNode.Position.X, u.currentNode.Position.Y) {
		for _, shared := range u.ctx.Map.WalkableAdjacent(afterNext.Position.X, afterNext.Position.Y) {
			if node == shared {
				u.path[0] = node.Position
				return true
			}
		}
	}
	return false
}

// askForPass asks an idle friendly blocker to vacate; if it cannot, the unit
// requests a fresh path to its destination.
func (u *Unit) askForPass(blocker *Unit) {
	if blocker.findFreeTileToUnblockWay() {
		u.waitForFreePath()
	} else {
		destination := u.path[len(u.path)-1]
		u.MoveTo(world.PositionToGrid(destination.X, destination.Y), u.forcedDestination)
	}
}

// findFreeTileToUnblockWay sends the unit to a random walkable adjacent
// tile, clearing the way for someone else.
func (u *Unit) findFreeTileToUnblockWay() bool {
	adjacent := u.ctx.Map.WalkableAdjacent(u.position.X, u.position.Y)
	if len(adjacent) == 0 {
		return false
	}
	node := adjacent[randIntn(u.ctx, len(adjacent))]
	u.OrderMove(node.Grid)
	return true
}

func (u *Unit) updatePathfinding() {
	if u.awaitedPath != nil {
		u.countdownWaiting()
	} else if len(u.path) > 0 {
		u.followPath()
	} else {
		u.stop()
	}
}

// countdownWaiting ends the wait once the deadline passes and either the
// next node is walkable or fewer than 20 steps remain: restartPath then
// resumes an awaited path of more than 20 steps and re-plans a shorter one.
// Otherwise the wait is extended by another second.
func (u *Unit) countdownWaiting() {
	if u.ctx.GameClock() < u.pathWaitDeadline {
		return
	}
	node := u.ctx.Map.PositionToNode(u.awaitedPath[0].X, u.awaitedPath[0].Y)
	if node.Walkable() || len(u.awaitedPath) < 20 {
		u.restartPath()
	} else {
		u.pathWaitDeadline += 1
	}
}

func (u *Unit) restartPath() {
	if len(u.awaitedPath) > 20 {
		u.path = u.awaitedPath
	} else {
		last := u.awaitedPath[len(u.awaitedPath)-1]
		u.MoveTo(world.PositionToGrid(last.X, last.Y), u.forcedDestination)
	}
	u.awaitedPath = nil
}

// followPath consumes the current waypoint when close enough, otherwise
// first rotates toward it, then drives at full speed scaled by health.
func (u *Unit) followPath() {
	destination := u.path[0]
	if u.position.Distance(destination) < closeEnoughDistance*u.maxSpeed {
		u.path = u.path[1:]
		return
	}
	angleToTarget := int(gamemath.CalculateAngle(u.position.X, u.position.Y, destination.X, destination.Y))
	if u.virtualAngle != angleToTarget {
		u.stop()
		u.rotateTowardsTarget(angleToTarget)
		return
	}
	u.velocity = gamemath.VectorFromAngle(float64(angleToTarget), u.maxSpeed*u.HealthRatio())
	u.currentSpeed = u.maxSpeed * u.HealthRatio()
}

// rotateTowardsTarget turns the hull toward the target bearing, clamped by
// the rotation speed, always along the shorter arc.
func (u *Unit) rotateTowardsTarget(angleToTarget int) {
	u.virtualAngle = u.calculateVirtualAngle(angleToTarget)
	u.setRotatedFacing()
}

func (u *Unit) calculateVirtualAngle(angleToTarget int) int {
	angularDifference := u.virtualAngle - angleToTarget
	if angularDifference < 0 {
		angularDifference = -angularDifference
	}
	rotation := angularDifference
	if int(u.rotationSpeed) < rotation {
		rotation = int(u.rotationSpeed)
	}
	var direction int
	if angularDifference < 180 {
		if u.virtualAngle < angleToTarget {
			direction = 1
		} else {
			direction = -1
		}
	} else {
		if u.virtualAngle < angleToTarget {
			direction = -1
		} else {
			direction = 1
		}
	}
	angle := (u.virtualAngle + rotation*direction) % 360
	if angle < 0 {
		angle += 360
	}
	return angle
}

// setRotatedFacing derives the discrete facings from the virtual angle. For
// turreted vehicles with an aim target the turret tracks the target
// independently of the hull.
func (u *Unit) setRotatedFacing() {
	u.facingDirection = gamemath.FacingFromAngle(float64(u.virtualAngle))
	if u.Kind != KindVehicleWithTurret {
		return
	}
	if enemy := u.turretAimTarget; enemy != nil {
		turretAngle := gamemath.CalculateAngle(u.position.X, u.position.Y, enemy.Position().X, enemy.Position().Y)
		u.turretFacingDirection = gamemath.FacingFromAngle(turretAngle)
	} else {
		u.turretFacingDirection = u.facingDirection
	}
}

func (u *Unit) stop() {
	u.velocity = gamemath.Vec2{}
	u.currentSpeed = 0
}

// MoveTo requests a path to the destination, dropping earlier requests.
func (u *Unit) MoveTo(destination world.GridPosition, forced bool) {
	u.ctx.Pathfinder.CancelUnitPathRequests(u)
	u.forcedDestination = forced
	start := world.PositionToGrid(u.position.X, u.position.Y)
	u.ctx.Pathfinder.RequestPath(u, start, destination)
}

// --- pathfind.Navigator ---

// CurrentGrid returns the grid of the node the unit stands on.
func (u *Unit) CurrentGrid() world.GridPosition { return u.currentNode.Grid }

// FollowNewPath replaces the current path with one delivered by the
// pathfinder.
func (u *Unit) FollowNewPath(path []gamemath.Vec2) {
	u.awaitedPath = nil
	u.path = append(u.path[:0:0], path...)
}

// ReachedDestination reports whether the unit stands on the given grid.
func (u *Unit) ReachedDestination(grid world.GridPosition) bool {
	return u.currentNode.Grid == grid
}

// Nearby reports whether the given grid is the current one or adjacent.
func (u *Unit) Nearby(grid world.GridPosition) bool {
	dx := u.currentNode.Grid.X - grid.X
	dy := u.currentNode.Grid.Y - grid.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1
}

// HasDestination reports whether the unit is going somewhere: a live path,
// a shelved one, or an outstanding path request.
func (u *Unit) HasDestination() bool {
	return len(u.path) > 0 || u.awaitedPath != nil || u.ctx.Pathfinder.HasRequestFor(u)
}

// IsHeadingTo reports whether the current path ends at the given grid.
func (u *Unit) IsHeadingTo(grid world.GridPosition) bool {
	if len(u.path) == 0 {
		return false
	}
	return u.path[len(u.path)-1] == world.GridToPosition(grid)
}

// OrderMove is a plain, unforced move request.
func (u *Unit) OrderMove(grid world.GridPosition) { u.MoveTo(grid, false) }

// StopCompletely abandons every movement concern: group, waypoint queue,
// requests, paths and the forced-destination flag.
func (u *Unit) StopCompletely() {
	u.AttachNavigatingGroup(nil)
	u.forcedDestination = false
	u.ctx.Pathfinder.RemoveUnitFromWaypointsQueue(u)
	u.ctx.Pathfinder.CancelUnitPathRequests(u)
	u.awaitedPath = nil
	u.path = nil
	u.stop()
}

// AttachNavigatingGroup moves the unit between navigating groups.
func (u *Unit) AttachNavigatingGroup(group *pathfind.NavigatingGroup) {
	if u.navigatingGroup != nil && u.navigatingGroup != group {
		u.navigatingGroup.Discard(u)
	}
	u.navigatingGroup = group
}

// AttachWaypointsQueue records which waypoint queue owns the unit.
func (u *Unit) AttachWaypointsQueue(queue *pathfind.WaypointsQueue) {
	u.waypointsQueue = queue
}

// --- combat ---

// updateBattleBehaviour drives the per-tick fight-or-chase decision.
func (u *Unit) updateBattleBehaviour() {
	if u.Kind == KindVehicleWithTurret {
		u.turretAimTarget = nil
	}
	if !u.HasWeapons() || u.Ammunition() == 0 {
		return
	}
	if enemy := u.enemyAssignedByPlayer; enemy != nil {
		u.handleEnemy(enemy)
	}
	enemy := u.targetedEnemy
	if enemy == nil {
		enemy = u.SelectEnemyFromKnownEnemies()
	}
	if enemy != nil {
		u.targetedEnemy = enemy
		u.handleEnemy(enemy)
	}
}

func (u *Unit) handleEnemy(enemy Entity) {
	assigned := enemy == u.enemyAssignedByPlayer
	if u.InAttackRange(enemy) {
		if assigned || (u.enemyAssignedByPlayer == nil && !u.forcedDestination) {
			u.StopCompletely()
		}
		u.fightEnemy(enemy)
	} else if (assigned || u.enemyAssignedByPlayer == nil) && !u.forcedDestination {
		u.moveTowardEnemy(enemy)
	}
}

func (u *Unit) moveTowardEnemy(enemy Entity) {
	if enemy == u.enemyAssignedByPlayer || u.HasDestination() {
		return
	}
	u.ctx.Pathfinder.NavigateUnitsToDestination(
		[]pathfind.Navigator{u}, enemy.Position().X, enemy.Position().Y)
}

func (u *Unit) fightEnemy(enemy Entity) {
	if u.Kind == KindVehicleWithTurret {
		u.turretAimTarget = enemy
		u.setRotatedFacing()
	}
	if enemy.Alive() && u.IsEnemy(enemy) {
		u.Attack(u, enemy)
	} else if u.enemyAssignedByPlayer == enemy {
		u.enemyAssignedByPlayer = nil
		u.targetedEnemy = nil
	} else {
		u.targetedEnemy = nil
	}
}

// OnBeingDamaged applies a hit; a killed unit dies immediately.
func (u *Unit) OnBeingDamaged(damage, penetration float64) {
	if u.applyDamage(damage, penetration) {
		u.Kill()
	}
}

// Kill removes the unit from the world. Calling it twice is a no-op.
func (u *Unit) Kill() {
	if !u.alive {
		return
	}
	u.AssignEnemy(nil)
	u.StopCompletely()
	u.permanentUnitsGroup = 0
	u.clearAllBlockedNodes()
	u.currentNode.Sector.DiscardEntity(u)
	if u.outside && u.player.IsLocalHuman() {
		u.ctx.Audio.PlaySound(audio.SoundUnitLost)
	}
	u.killPlayerEntity(u)
}

func (u *Unit) clearAllBlockedNodes() {
	if u.currentNode != nil {
		u.unblockMapNode(u.currentNode)
	}
	if u.reservedNode != nil {
		u.unblockMapNode(u.reservedNode)
		u.reservedNode = nil
	}
}

// Restore reapplies saved per-unit state after a load spawn.
func (u *Unit) Restore(health, experience float64, facingDirection, permanentGroup int) {
	u.health = health
	u.experience = experience
	u.facingDirection = facingDirection % gamemath.Rotations
	u.virtualAngle = int(gamemath.RotationStep*float64(u.facingDirection)) % 360
	u.permanentUnitsGroup = permanentGroup
}

// EnterBuilding garrisons a soldier: it leaves the map and stops being
// updated, rendered or indexed until it leaves the building again.
func (u *Unit) EnterBuilding(building *Building) {
	if u.Kind != KindSoldier || building.Garrison == nil {
		return
	}
	if !building.Garrison.Enter(u) {
		return
	}
	u.outside = false
	u.StopCompletely()
	u.AssignEnemy(nil)
	u.clearAllBlockedNodes()
	u.currentNode.Sector.DiscardEntity(u)
	u.RemoveFromMapQuadtree(u)
}

// LeaveBuilding puts the soldier back on the map at the closest walkable
// spot next to the building.
func (u *Unit) LeaveBuilding(building *Building) {
	if building.Garrison == nil || !building.Garrison.Leave(u) {
		return
	}
	spot := u.ctx.Pathfinder.ClosestWalkablePosition(building.Position().X, building.Position().Y)
	u.position = spot
	u.currentNode = u.ctx.Map.PositionToNode(spot.X, spot.Y)
	u.blockMapNode(u.currentNode)
	u.currentNode.Sector.AddEntity(u)
	u.InsertToMapQuadtree(u)
	u.outside = true
}
