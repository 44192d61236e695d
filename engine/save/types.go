// Package save serializes game snapshots into slotted yaml files and reads
// them back whole; the game package restores a loaded snapshot phase by
// phase.
package save

import (
	"time"

	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/world"
)

// SaveVersion guards against loading saves from newer builds.
const SaveVersion = 1

// SaveFile is the complete on-disk snapshot.
type SaveFile struct {
	Version   int          `yaml:"version"`
	Metadata  SaveMetadata `yaml:"metadata"`
	GameState GameState    `yaml:"game_state"`
}

// SaveMetadata describes a save without loading it.
type SaveMetadata struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Timestamp time.Time `yaml:"timestamp"`
	MissionID string    `yaml:"mission_id"`
	PlayTime  float64   `yaml:"play_time"`
}

// GameState carries every serialized subsystem. Load order is exactly the
// field order here; each phase restores one piece so the UI can show
// progress between them.
type GameState struct {
	Timer            TimerState       `yaml:"timer"`
	Settings         *entity.Settings `yaml:"settings"`
	Viewport         [4]float64       `yaml:"viewport"`
	Map              MapState         `yaml:"map"`
	Factions         []FactionState   `yaml:"factions"`
	Players          []PlayerState    `yaml:"players"`
	LocalPlayerID    int              `yaml:"local_player_id"`
	Units            []UnitState      `yaml:"units"`
	Buildings        []BuildingState  `yaml:"buildings"`
	Scenario         ScenarioState    `yaml:"scenario"`
	PermanentGroups  map[int][]int    `yaml:"permanent_groups"`
	FogExplored      []GridState      `yaml:"fog_explored"`
	MiniMapRevision  int              `yaml:"minimap_revision"`
	TotalObjectCount int              `yaml:"total_object_count"`
}

// TimerState snapshots the game clock.
type TimerState struct {
	Frames        int     `yaml:"frames"`
	TotalGameTime float64 `yaml:"total_game_time"`
}

// GridState is a yaml-friendly grid position.
type GridState struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Grid converts back to a world grid position.
func (g GridState) Grid() world.GridPosition { return world.GridPosition{X: g.X, Y: g.Y} }

// FromGrid converts a world grid position for serialization.
func FromGrid(g world.GridPosition) GridState { return GridState{X: g.X, Y: g.Y} }

// MapState snapshots map generation inputs; nodes are rebuilt, not stored.
type MapState struct {
	Rows    int            `yaml:"rows"`
	Columns int            `yaml:"columns"`
	Terrain []TerrainPatch `yaml:"terrain,omitempty"`
}

// TerrainPatch records one node's non-default terrain cost.
type TerrainPatch struct {
	Grid GridState `yaml:"grid"`
	Cost int       `yaml:"cost"`
}

// FactionState snapshots a faction and its diplomatic relations.
type FactionState struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Friends []int  `yaml:"friends"`
	Enemies []int  `yaml:"enemies"`
}

// PlayerState snapshots a player's economy and research.
type PlayerState struct {
	ID                int                         `yaml:"id"`
	Name              string                      `yaml:"name"`
	FactionID         int                         `yaml:"faction_id"`
	CPU               bool                        `yaml:"cpu"`
	Color             [4]uint8                    `yaml:"color"`
	Resources         map[string]*entity.Resource `yaml:"resources"`
	KnownTechnologies []int                       `yaml:"known_technologies"`
	CurrentResearch   map[int]float64             `yaml:"current_research"`
}

// UnitState snapshots a unit; entities are referenced by id.
type UnitState struct {
	ID                  int         `yaml:"id"`
	Name                string      `yaml:"name"`
	PlayerID            int         `yaml:"player_id"`
	X                   float64     `yaml:"x"`
	Y                   float64     `yaml:"y"`
	Health              float64     `yaml:"health"`
	Experience          float64     `yaml:"experience"`
	FacingDirection     int         `yaml:"facing_direction"`
	Path                []GridState `yaml:"path,omitempty"`
	PermanentUnitsGroup int         `yaml:"permanent_units_group,omitempty"`
	Outside             bool        `yaml:"outside"`
}

// BuildingState snapshots a building and its optional subsystems.
type BuildingState struct {
	ID       int     `yaml:"id"`
	Name     string  `yaml:"name"`
	PlayerID int     `yaml:"player_id"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Health   float64 `yaml:"health"`

	ProductionQueue    []string `yaml:"production_queue,omitempty"`
	CurrentlyProduced  string   `yaml:"currently_produced,omitempty"`
	ProductionProgress float64  `yaml:"production_progress,omitempty"`
	ProductionTime     float64  `yaml:"production_time,omitempty"`

	ExtractorReserves  float64 `yaml:"extractor_reserves,omitempty"`
	ExtractorStockpile float64 `yaml:"extractor_stockpile,omitempty"`

	ResearchFunding    float64 `yaml:"research_funding,omitempty"`
	ResearchTechnology int     `yaml:"research_technology,omitempty"`

	GarrisonedSoldiers []int `yaml:"garrisoned_soldiers,omitempty"`
}

// ScenarioState snapshots the scripted mission progress.
type ScenarioState struct {
	Name                  string      `yaml:"name"`
	CampaignName          string      `yaml:"campaign_name,omitempty"`
	MapName               string      `yaml:"map_name"`
	Index                 int         `yaml:"index"`
	Players               []int       `yaml:"players"`
	VictoryPoints         map[int]int `yaml:"victory_points"`
	RequiredVictoryPoints map[int]int `yaml:"required_victory_points"`
	Ended                 bool        `yaml:"ended"`
	WinnerID              int         `yaml:"winner_id"`
}
