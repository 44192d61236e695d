package game

import (
	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/pathfind"
)

// UnitsManager holds the player's current selection and the permanent
// ctrl-groups, and translates input-collaborator calls into pathfinder and
// entity orders.
type UnitsManager struct {
	game *Game

	selectedUnits    map[int]*entity.Unit
	selectedBuilding *entity.Building

	permanentGroups map[int]map[int]*entity.Unit
}

func newUnitsManager(g *Game) *UnitsManager {
	return &UnitsManager{
		game:            g,
		selectedUnits:   make(map[int]*entity.Unit),
		permanentGroups: make(map[int]map[int]*entity.Unit),
	}
}

// SelectedUnits returns the units currently selected.
func (um *UnitsManager) SelectedUnits() []*entity.Unit {
	units := make([]*entity.Unit, 0, len(um.selectedUnits))
	for _, u := range um.selectedUnits {
		units = append(units, u)
	}
	return units
}

// SelectedBuilding returns the selected building, if any.
func (um *UnitsManager) SelectedBuilding() *entity.Building { return um.selectedBuilding }

// SelectUnits replaces the selection.
func (um *UnitsManager) SelectUnits(units ...*entity.Unit) {
	clear(um.selectedUnits)
	um.selectedBuilding = nil
	for _, u := range units {
		if u.Alive() {
			um.selectedUnits[u.ID()] = u
		}
	}
}

// SelectBuilding selects a single building.
func (um *UnitsManager) SelectBuilding(b *entity.Building) {
	clear(um.selectedUnits)
	um.selectedBuilding = b
}

// Unselect drops an entity from the selection, e.g. when it dies.
func (um *UnitsManager) Unselect(e entity.Entity) {
	if um.selectedBuilding != nil && um.selectedBuilding.ID() == e.ID() {
		um.selectedBuilding = nil
	}
	delete(um.selectedUnits, e.ID())
}

// MoveTo sends the selected units toward a world position as one group.
func (um *UnitsManager) MoveTo(x, y float64) {
	units := um.selectedNavigators()
	if len(units) > 0 {
		um.game.Pathfinder().NavigateUnitsToDestination(units, x, y)
	}
}

// EnqueueWaypoint appends a waypoint for the selected units.
func (um *UnitsManager) EnqueueWaypoint(x, y float64) {
	units := um.selectedNavigators()
	if len(units) > 0 {
		um.game.Pathfinder().EnqueueWaypoint(units, x, y)
	}
}

// FinishWaypoints starts executing the authored waypoint queue.
func (um *UnitsManager) FinishWaypoints() {
	um.game.Pathfinder().FinishWaypointsQueue()
}

// AttackTarget assigns an enemy to every selected unit.
func (um *UnitsManager) AttackTarget(enemy entity.Entity) {
	for _, u := range um.selectedUnits {
		if u.IsEnemy(enemy) {
			u.AssignEnemy(enemy)
		}
	}
}

// StopAll halts the selected units.
func (um *UnitsManager) StopAll() {
	for _, u := range um.selectedUnits {
		u.StopCompletely()
	}
}

func (um *UnitsManager) selectedNavigators() []pathfind.Navigator {
	units := make([]pathfind.Navigator, 0, len(um.selectedUnits))
	for _, u := range um.selectedUnits {
		units = append(units, u)
	}
	return units
}

// CreatePermanentGroup binds the selection to a ctrl-group number.
func (um *UnitsManager) CreatePermanentGroup(index int) {
	group := make(map[int]*entity.Unit, len(um.selectedUnits))
	for id, u := range um.selectedUnits {
		if old := u.PermanentUnitsGroup(); old != 0 && old != index {
			if oldGroup, ok := um.permanentGroups[old]; ok {
				delete(oldGroup, id)
			}
		}
		u.SetPermanentUnitsGroup(index)
		group[id] = u
	}
	um.permanentGroups[index] = group
}

// SelectPermanentGroup replaces the selection with a ctrl-group.
func (um *UnitsManager) SelectPermanentGroup(index int) {
	group, ok := um.permanentGroups[index]
	if !ok {
		return
	}
	clear(um.selectedUnits)
	um.selectedBuilding = nil
	for id, u := range group {
		if u.Alive() {
			um.selectedUnits[id] = u
		} else {
			delete(group, id)
		}
	}
}

// PermanentGroups returns the group table for serialization.
func (um *UnitsManager) PermanentGroups() map[int]map[int]*entity.Unit {
	return um.permanentGroups
}

// RestorePermanentGroup reattaches a loaded group.
func (um *UnitsManager) RestorePermanentGroup(index int, units []*entity.Unit) {
	group := make(map[int]*entity.Unit, len(units))
	for _, u := range units {
		u.SetPermanentUnitsGroup(index)
		group[u.ID()] = u
	}
	um.permanentGroups[index] = group
}

func (um *UnitsManager) onEntityKilled(e entity.Entity) {
	um.Unselect(e)
	if unit, ok := e.(*entity.Unit); ok {
		if group, exists := um.permanentGroups[unit.PermanentUnitsGroup()]; exists {
			delete(group, unit.ID())
		}
	}
}
