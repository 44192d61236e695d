package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TriggerDef is the yaml shape of one scripted trigger in a mission file.
type TriggerDef struct {
	Condition ConditionDef `yaml:"condition"`
	Events    []EventDef   `yaml:"events"`
}

// ConditionDef selects a condition variant by type tag.
type ConditionDef struct {
	Type         string  `yaml:"type"`
	Player       int     `yaml:"player,omitempty"`
	Faction      int     `yaml:"faction,omitempty"`
	Minutes      float64 `yaml:"minutes,omitempty"`
	UnitType     string  `yaml:"unit_type,omitempty"`
	BuildingType string  `yaml:"building_type,omitempty"`
	BuildingID   int     `yaml:"building_id,omitempty"`
	TechnologyID int     `yaml:"technology_id,omitempty"`
	Resource     string  `yaml:"resource,omitempty"`
	Amount       float64 `yaml:"amount,omitempty"`
	Required     int     `yaml:"required,omitempty"`
}

// EventDef selects an event variant by type tag.
type EventDef struct {
	Type   string `yaml:"type"`
	Player int    `yaml:"player,omitempty"`
	Amount int    `yaml:"amount,omitempty"`
	Text   string `yaml:"text,omitempty"`
}

// MissionDef is the yaml shape of one mission file.
type MissionDef struct {
	Name                  string       `yaml:"name"`
	Map                   string       `yaml:"map"`
	Description           string       `yaml:"description,omitempty"`
	Players               []int        `yaml:"players"`
	RequiredVictoryPoints map[int]int  `yaml:"required_victory_points,omitempty"`
	Triggers              []TriggerDef `yaml:"triggers"`
}

// LoadMissionDef reads and validates a mission file.
func LoadMissionDef(path string) (*MissionDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission file: %w", err)
	}
	var def MissionDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse mission file: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("mission name is required")
	}
	if def.Map == "" {
		return nil, fmt.Errorf("mission map is required")
	}
	return &def, nil
}

// CreateCondition builds the condition variant a def describes. Unknown
// types fall back to NoUnitsLeft for the def's player, which is met once
// that player is defeated or does not exist.
func CreateCondition(def ConditionDef) Condition {
	bound := playerBound{Player: def.Player}
	switch def.Type {
	case "time_passed":
		return TimePassed{playerBound: bound, Minutes: def.Minutes}
	case "map_revealed":
		return MapRevealed{playerBound: bound}
	case "no_units_left":
		return NoUnitsLeft{playerBound: bound, FactionID: def.Faction}
	case "has_units_of_type":
		return HasUnitsOfType{playerBound: bound, UnitType: def.UnitType, Amount: int(def.Amount)}
	case "has_buildings_of_type":
		return HasBuildingsOfType{playerBound: bound, BuildingType: def.BuildingType, Amount: int(def.Amount)}
	case "controls_building":
		return ControlsBuilding{playerBound: bound, BuildingID: def.BuildingID}
	case "has_technology":
		return HasTechnology{playerBound: bound, TechnologyID: def.TechnologyID}
	case "has_resource":
		return HasResource{playerBound: bound, Resource: def.Resource, Amount: def.Amount}
	case "victory_points":
		return VictoryPoints{playerBound: bound, Required: def.Required}
	}
	return NoUnitsLeft{playerBound: bound}
}

// CreateEvent builds the event variant a def describes.
func CreateEvent(def EventDef) TriggeredEvent {
	switch def.Type {
	case "add_victory_points":
		amount := def.Amount
		if amount == 0 {
			amount = 1
		}
		return AddVictoryPoints{Player: def.Player, Amount: amount}
	case "victory":
		return Victory{Player: def.Player}
	case "defeat":
		return Defeat{Player: def.Player}
	case "show_dialog":
		return ShowDialog{Player: def.Player, Text: def.Text}
	}
	return ShowDialog{Player: def.Player, Text: def.Text}
}

// BuildTriggers instantiates every trigger of a mission def.
func BuildTriggers(def *MissionDef) []*EventTrigger {
	triggers := make([]*EventTrigger, 0, len(def.Triggers))
	for _, t := range def.Triggers {
		events := make([]TriggeredEvent, 0, len(t.Events))
		for _, e := range t.Events {
			events = append(events, CreateEvent(e))
		}
		triggers = append(triggers, NewTrigger(CreateCondition(t.Condition), events...))
	}
	return triggers
}
