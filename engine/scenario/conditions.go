// Package scenario implements scripted mission logic: triggers whose
// conditions, once satisfied, fire their bound events exactly once.
package scenario

import (
	"strings"

	"github.com/akrol/steelfront/engine/entity"
)

// GameState is what conditions read to evaluate themselves. The game root
// implements it; conditions never mutate anything through it.
type GameState interface {
	Player(id int) *entity.Player
	Players() map[int]*entity.Player
	LocalPlayer() *entity.Player
	Minutes() float64
	UnexploredCount() int
}

// Condition is a predicate checked against the game state to find out if a
// player achieved an objective.
type Condition interface {
	Fulfilled(game GameState, s *Scenario) bool
	PlayerID() int
}

type playerBound struct {
	Player int `yaml:"player"`
}

// PlayerID returns the player the condition is checked for.
func (p playerBound) PlayerID() int { return p.Player }

// TimePassed is met once the given number of minutes of game time elapsed.
type TimePassed struct {
	playerBound `yaml:",inline"`
	Minutes     float64 `yaml:"minutes"`
}

func (c TimePassed) Fulfilled(game GameState, _ *Scenario) bool {
	return game.Minutes() >= c.Minutes
}

// MapRevealed is met when no unexplored grid remains.
type MapRevealed struct {
	playerBound `yaml:",inline"`
}

func (c MapRevealed) Fulfilled(game GameState, _ *Scenario) bool {
	return game.UnexploredCount() == 0
}

// NoUnitsLeft is met when the player, or with a faction id set the whole
// faction, has neither units nor buildings left.
type NoUnitsLeft struct {
	playerBound `yaml:",inline"`
	FactionID   int `yaml:"faction,omitempty"`
}

func (c NoUnitsLeft) Fulfilled(game GameState, _ *Scenario) bool {
	if c.FactionID != 0 {
		for _, p := range game.Players() {
			if p.Faction().ID == c.FactionID && !p.Defeated() {
				return false
			}
		}
		return true
	}
	player := game.Player(c.Player)
	return player == nil || player.Defeated()
}

// HasUnitsOfType is met when the player owns more than Amount units whose
// name contains UnitType.
type HasUnitsOfType struct {
	playerBound `yaml:",inline"`
	UnitType    string `yaml:"unit_type"`
	Amount      int    `yaml:"amount"`
}

func (c HasUnitsOfType) Fulfilled(game GameState, _ *Scenario) bool {
	player := game.Player(c.Player)
	if player == nil {
		return false
	}
	count := 0
	for _, unit := range player.Units() {
		if strings.Contains(unit.Name(), c.UnitType) {
			count++
		}
	}
	return count > c.Amount
}

// HasBuildingsOfType is met when the player owns more than Amount buildings
// whose name contains BuildingType.
type HasBuildingsOfType struct {
	playerBound  `yaml:",inline"`
	BuildingType string `yaml:"building_type"`
	Amount       int    `yaml:"amount"`
}

func (c HasBuildingsOfType) Fulfilled(game GameState, _ *Scenario) bool {
	player := game.Player(c.Player)
	if player == nil {
		return false
	}
	count := 0
	for _, building := range player.Buildings() {
		if strings.Contains(building.Name(), c.BuildingType) {
			count++
		}
	}
	return count > c.Amount
}

// ControlsBuilding is met while the player owns the building with the id.
type ControlsBuilding struct {
	playerBound `yaml:",inline"`
	BuildingID  int `yaml:"building_id"`
}

func (c ControlsBuilding) Fulfilled(game GameState, _ *Scenario) bool {
	player := game.Player(c.Player)
	if player == nil {
		return false
	}
	_, owned := player.Buildings()[c.BuildingID]
	return owned
}

// HasTechnology is met once the player researched the technology.
type HasTechnology struct {
	playerBound  `yaml:",inline"`
	TechnologyID int `yaml:"technology_id"`
}

func (c HasTechnology) Fulfilled(game GameState, _ *Scenario) bool {
	player := game.Player(c.Player)
	return player != nil && player.KnowsTechnology(c.TechnologyID)
}

// HasResource is met while the player stocks at least Amount of Resource.
type HasResource struct {
	playerBound `yaml:",inline"`
	Resource    string  `yaml:"resource"`
	Amount      float64 `yaml:"amount"`
}

func (c HasResource) Fulfilled(game GameState, _ *Scenario) bool {
	player := game.Player(c.Player)
	return player != nil && player.HasResource(c.Resource, c.Amount)
}

// VictoryPoints is met once the player's victory points reach Required.
type VictoryPoints struct {
	playerBound `yaml:",inline"`
	Required    int `yaml:"required"`
}

func (c VictoryPoints) Fulfilled(_ GameState, s *Scenario) bool {
	return s.VictoryPointsOf(c.Player) >= c.Required
}
