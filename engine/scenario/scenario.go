package scenario

import (
	"log/slog"

	"github.com/akrol/steelfront/engine/sched"
)

// EventTrigger binds a condition to the events it fires. Triggers are
// one-shot: once the condition holds and the events run, the trigger
// deactivates and never fires again.
type EventTrigger struct {
	Condition Condition
	Events    []TriggeredEvent
	Active    bool
}

// NewTrigger creates an active trigger firing the given events.
func NewTrigger(condition Condition, events ...TriggeredEvent) *EventTrigger {
	return &EventTrigger{Condition: condition, Events: events, Active: true}
}

func (t *EventTrigger) evaluate(game GameState, s *Scenario) {
	if !t.Active || !t.Condition.Fulfilled(game, s) {
		return
	}
	t.Active = false
	for _, event := range t.Events {
		event.Execute(game, s)
	}
	slog.Debug("event trigger fired", "player", t.Condition.PlayerID())
}

// DialogSink is the UI collaborator showing scripted dialogs.
type DialogSink interface {
	ShowDialog(text string)
}

// EndSink is told when the scenario concludes; the game root pauses and
// presents the outcome.
type EndSink interface {
	OnScenarioEnded(winnerID int, humanWon bool)
}

// Scenario tracks the scripted side of one mission: participating players,
// victory points and the event triggers evaluated once per second.
type Scenario struct {
	Name         string
	CampaignName string
	MapName      string
	Index        int
	Description  string

	players map[int]struct{}

	victoryPoints         map[int]int
	requiredVictoryPoints map[int]int

	triggers []*EventTrigger

	Ended    bool
	WinnerID int

	game    GameState
	dialogs DialogSink
	endSink EndSink

	evaluation *sched.Event
}

// New creates a scenario and schedules its trigger evaluation once per
// second for as long as the game runs.
func New(name, mapName string, game GameState, scheduler *sched.Scheduler) *Scenario {
	s := &Scenario{
		Name:                  name,
		MapName:               mapName,
		players:               make(map[int]struct{}),
		victoryPoints:         make(map[int]int),
		requiredVictoryPoints: make(map[int]int),
		game:                  game,
	}
	s.evaluation = sched.NewRepeatingEvent(s, 1, -1, s.EvaluateEventsTriggers).
		WithRecord(0, sched.MethodEvaluateTriggers)
	scheduler.Schedule(s.evaluation)
	return s
}

// AttachSinks wires the dialog and end-of-scenario collaborators.
func (s *Scenario) AttachSinks(dialogs DialogSink, endSink EndSink) {
	s.dialogs = dialogs
	s.endSink = endSink
}

// AddPlayers registers the participating players.
func (s *Scenario) AddPlayers(playerIDs ...int) *Scenario {
	for _, id := range playerIDs {
		s.players[id] = struct{}{}
	}
	return s
}

// Players returns the ids of players still in the scenario.
func (s *Scenario) Players() map[int]struct{} { return s.players }

// AddEventTriggers registers triggers to evaluate.
func (s *Scenario) AddEventTriggers(triggers ...*EventTrigger) *Scenario {
	s.triggers = append(s.triggers, triggers...)
	return s
}

// Triggers returns the registered triggers.
func (s *Scenario) Triggers() []*EventTrigger { return s.triggers }

// SetRequiredVictoryPoints sets the threshold ending the scenario in the
// player's favour.
func (s *Scenario) SetRequiredVictoryPoints(playerID, required int) {
	s.requiredVictoryPoints[playerID] = required
}

// VictoryPointsOf returns the player's accumulated victory points.
func (s *Scenario) VictoryPointsOf(playerID int) int { return s.victoryPoints[playerID] }

// RequiredVictoryPointsOf returns the player's victory threshold, 0 if none.
func (s *Scenario) RequiredVictoryPointsOf(playerID int) int {
	return s.requiredVictoryPoints[playerID]
}

// EvaluateEventsTriggers checks every active trigger. Fired triggers
// deactivate, so each fires at most once.
func (s *Scenario) EvaluateEventsTriggers() {
	if s.Ended {
		return
	}
	for _, trigger := range s.triggers {
		trigger.evaluate(s.game, s)
	}
}

// AddVictoryPoints grants points and ends the scenario when the player's
// configured threshold is reached.
func (s *Scenario) AddVictoryPoints(playerID, points int) {
	s.victoryPoints[playerID] += points
	required := s.requiredVictoryPoints[playerID]
	if required > 0 && s.victoryPoints[playerID] >= required {
		s.EndScenario(playerID)
	}
}

// EliminatePlayer kills the player and drops their triggers. A single
// survivor wins on the spot.
func (s *Scenario) EliminatePlayer(game GameState, playerID int) {
	if player := game.Player(playerID); player != nil {
		player.Kill()
	}
	delete(s.players, playerID)
	kept := s.triggers[:0]
	for _, trigger := range s.triggers {
		if trigger.Condition.PlayerID() != playerID {
			kept = append(kept, trigger)
		}
	}
	s.triggers = kept
	if len(s.players) == 1 {
		for survivor := range s.players {
			s.EndScenario(survivor)
		}
	}
}

// EndScenario concludes the mission with the given winner. Repeated calls
// are no-ops, so triggers firing after the end change nothing.
func (s *Scenario) EndScenario(winnerID int) {
	if s.Ended {
		return
	}
	s.Ended = true
	s.WinnerID = winnerID
	slog.Info("scenario ended", "scenario", s.Name, "winner", winnerID)
	if s.endSink != nil {
		local := s.game.LocalPlayer()
		s.endSink.OnScenarioEnded(winnerID, local != nil && local.ID == winnerID)
	}
}

// Unschedule stops the periodic trigger evaluation, used when tearing the
// game down.
func (s *Scenario) Unschedule(scheduler *sched.Scheduler) {
	scheduler.Unschedule(s.evaluation)
}
