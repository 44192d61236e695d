package scenario

import (
	"testing"

	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/sched"
)

// fakeGame provides just enough state for condition evaluation.
type fakeGame struct {
	players    map[int]*entity.Player
	minutes    float64
	unexplored int
}

func (f *fakeGame) Player(id int) *entity.Player      { return f.players[id] }
func (f *fakeGame) Players() map[int]*entity.Player   { return f.players }
func (f *fakeGame) LocalPlayer() *entity.Player       { return nil }
func (f *fakeGame) Minutes() float64                  { return f.minutes }
func (f *fakeGame) UnexploredCount() int              { return f.unexplored }

type recordingEnd struct {
	ended    bool
	winnerID int
}

func (r *recordingEnd) OnScenarioEnded(winnerID int, humanWon bool) {
	r.ended = true
	r.winnerID = winnerID
}

func newTestScenario(game *fakeGame) (*Scenario, *sched.Scheduler, *recordingEnd) {
	scheduler := sched.NewScheduler(1) // one frame per second keeps the math plain
	s := New("test", "plains", game, scheduler)
	end := &recordingEnd{}
	s.AttachSinks(nil, end)
	return s, scheduler, end
}

func TestTimePassedTriggerFiresOnce(t *testing.T) {
	game := &fakeGame{players: map[int]*entity.Player{}, unexplored: 100}
	s, scheduler, end := newTestScenario(game)
	s.AddPlayers(2, 4)
	trigger := NewTrigger(
		TimePassed{playerBound: playerBound{Player: 2}, Minutes: 1},
		Victory{Player: 2},
	)
	s.AddEventTriggers(trigger)

	// one simulated second per tick: the trigger evaluates every second and
	// must not fire before a full minute passed
	for tick := 0; tick < 59; tick++ {
		game.minutes = float64(tick) / 60
		scheduler.Update()
	}
	if s.Ended {
		t.Fatal("scenario ended before the required time")
	}

	game.minutes = 1
	scheduler.Update()
	if !s.Ended {
		t.Fatal("scenario did not end once the time condition held")
	}
	if s.WinnerID != 2 || end.winnerID != 2 {
		t.Errorf("winner = %d/%d, want 2", s.WinnerID, end.winnerID)
	}
	if trigger.Active {
		t.Error("fired trigger still active")
	}

	// later evaluations must not re-execute the one-shot trigger
	s.Ended = false
	scheduler.Update()
	if s.Ended {
		t.Error("one-shot trigger fired twice")
	}
}

func TestVictoryPointsEndTheScenario(t *testing.T) {
	game := &fakeGame{players: map[int]*entity.Player{}}
	s, _, end := newTestScenario(game)
	s.AddPlayers(2)
	s.SetRequiredVictoryPoints(2, 10)

	s.AddVictoryPoints(2, 4)
	if s.Ended {
		t.Fatal("scenario ended below the victory point threshold")
	}
	if s.VictoryPointsOf(2) != 4 {
		t.Fatalf("victory points = %d, want 4", s.VictoryPointsOf(2))
	}
	s.AddVictoryPoints(2, 6)
	if !s.Ended || end.winnerID != 2 {
		t.Fatal("reaching the threshold must end the scenario in the player's favour")
	}
}

func TestVictoryPointsWithoutThresholdNeverEnd(t *testing.T) {
	game := &fakeGame{players: map[int]*entity.Player{}}
	s, _, _ := newTestScenario(game)
	s.AddPlayers(2)
	s.AddVictoryPoints(2, 1000)
	if s.Ended {
		t.Error("scenario ended without a configured threshold")
	}
}

func TestMapRevealedCondition(t *testing.T) {
	game := &fakeGame{players: map[int]*entity.Player{}, unexplored: 3}
	s, _, _ := newTestScenario(game)
	condition := MapRevealed{}
	if condition.Fulfilled(game, s) {
		t.Error("condition met while grids remain unexplored")
	}
	game.unexplored = 0
	if !condition.Fulfilled(game, s) {
		t.Error("condition not met on a fully revealed map")
	}
}

func TestDefeatEliminatesAndLastSurvivorWins(t *testing.T) {
	game := &fakeGame{players: map[int]*entity.Player{}}
	s, _, end := newTestScenario(game)
	s.AddPlayers(2, 4, 8)

	s.EliminatePlayer(game, 4)
	if s.Ended {
		t.Fatal("scenario ended with two players remaining")
	}
	s.EliminatePlayer(game, 8)
	if !s.Ended {
		t.Fatal("last survivor should have won")
	}
	if end.winnerID != 2 {
		t.Errorf("winner = %d, want 2", end.winnerID)
	}
}

func TestEliminateDropsPlayersTriggers(t *testing.T) {
	game := &fakeGame{players: map[int]*entity.Player{}}
	s, _, _ := newTestScenario(game)
	s.AddPlayers(2, 4, 8)
	s.AddEventTriggers(
		NewTrigger(TimePassed{playerBound: playerBound{Player: 4}, Minutes: 1}),
		NewTrigger(TimePassed{playerBound: playerBound{Player: 2}, Minutes: 1}),
	)
	s.EliminatePlayer(game, 4)
	if got := len(s.Triggers()); got != 1 {
		t.Errorf("%d triggers remain after elimination, want 1", got)
	}
}

func TestBuildTriggersFromDefs(t *testing.T) {
	def := &MissionDef{
		Name: "delay",
		Map:  "plains",
		Triggers: []TriggerDef{
			{
				Condition: ConditionDef{Type: "time_passed", Player: 2, Minutes: 5},
				Events: []EventDef{
					{Type: "add_victory_points", Player: 2, Amount: 3},
					{Type: "show_dialog", Text: "reinforcements"},
				},
			},
			{
				Condition: ConditionDef{Type: "has_resource", Player: 2, Resource: "steel", Amount: 500},
				Events:    []EventDef{{Type: "victory", Player: 2}},
			},
		},
	}
	triggers := BuildTriggers(def)
	if len(triggers) != 2 {
		t.Fatalf("built %d triggers, want 2", len(triggers))
	}
	if _, ok := triggers[0].Condition.(TimePassed); !ok {
		t.Errorf("first condition is %T, want TimePassed", triggers[0].Condition)
	}
	if len(triggers[0].Events) != 2 {
		t.Errorf("first trigger has %d events, want 2", len(triggers[0].Events))
	}
	if _, ok := triggers[1].Condition.(HasResource); !ok {
		t.Errorf("second condition is %T, want HasResource", triggers[1].Condition)
	}
	if _, ok := triggers[1].Events[0].(Victory); !ok {
		t.Errorf("second trigger event is %T, want Victory", triggers[1].Events[0])
	}
}

func TestCampaignProgression(t *testing.T) {
	campaign := NewCampaign("liberation", []string{"first", "second", "third"})
	if !campaign.IsPlayable("first") || campaign.IsPlayable("second") {
		t.Fatal("only the first mission should start unlocked")
	}
	finished := &Scenario{Name: "first", Index: 0}
	campaign.Update(finished)
	if !campaign.IsPlayable("second") {
		t.Error("finishing a mission should unlock the next")
	}
	if campaign.IsPlayable("third") {
		t.Error("missions unlock one at a time")
	}
	if got := len(campaign.PlayableMissions()); got != 2 {
		t.Errorf("%d playable missions, want 2", got)
	}
}
