package scenario

// TriggeredEvent runs when the trigger it is bound to fires.
type TriggeredEvent interface {
	Execute(game GameState, s *Scenario)
}

// AddVictoryPoints grants the player victory points, which may end the
// scenario through the victory-point threshold.
type AddVictoryPoints struct {
	Player int `yaml:"player"`
	Amount int `yaml:"amount"`
}

func (e AddVictoryPoints) Execute(game GameState, s *Scenario) {
	s.AddVictoryPoints(e.Player, e.Amount)
}

// Victory ends the scenario with the player as the winner.
type Victory struct {
	Player int `yaml:"player"`
}

func (e Victory) Execute(game GameState, s *Scenario) {
	s.EndScenario(e.Player)
}

// Defeat eliminates the player. When only one player remains, the scenario
// ends with that survivor as the winner.
type Defeat struct {
	Player int `yaml:"player"`
}

func (e Defeat) Execute(game GameState, s *Scenario) {
	s.EliminatePlayer(game, e.Player)
}

// ShowDialog displays a scripted message through the dialog collaborator.
type ShowDialog struct {
	Player int    `yaml:"player"`
	Text   string `yaml:"text"`
}

func (e ShowDialog) Execute(game GameState, s *Scenario) {
	if s.dialogs != nil {
		s.dialogs.ShowDialog(e.Text)
	}
}
