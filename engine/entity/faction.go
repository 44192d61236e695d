package entity

import "strconv"

// Faction bundles several players into one team of allies and tracks who is
// fighting whom. Hostility is always symmetric: starting a war or a
// cease-fire updates both sides in one call.
type Faction struct {
	ID   int
	Name string

	FriendlyFactions map[int]struct{}
	EnemyFactions    map[int]struct{}

	players map[int]*Player
	leader  *Player

	units     map[int]*Unit
	buildings map[int]*Building

	knownEnemies map[Entity]struct{}
}

// NewFaction creates a faction with the given id, or the next free one when
// id is 0.
func NewFaction(id int, name string, registry map[int]*Faction) *Faction {
	if id == 0 {
		id = nextPlayerOrFactionID(len(registry), maxFactionID(registry))
	}
	if name == "" {
		name = "Faction " + strconv.Itoa(id)
	}
	f := &Faction{
		ID:               id,
		Name:             name,
		FriendlyFactions: make(map[int]struct{}),
		EnemyFactions:    make(map[int]struct{}),
		players:          make(map[int]*Player),
		units:            make(map[int]*Unit),
		buildings:        make(map[int]*Building),
		knownEnemies:     make(map[Entity]struct{}),
	}
	if registry != nil {
		registry[id] = f
	}
	return f
}

// Leader returns the faction leader.
func (f *Faction) Leader() *Player { return f.leader }

// Players returns the faction's players.
func (f *Faction) Players() map[int]*Player { return f.players }

// Units returns every unit of the faction.
func (f *Faction) Units() map[int]*Unit { return f.units }

// Buildings returns every building of the faction.
func (f *Faction) Buildings() map[int]*Building { return f.buildings }

// KnownEnemies returns the enemies any member saw this tick.
func (f *Faction) KnownEnemies() map[Entity]struct{} { return f.knownEnemies }

// AddPlayer attaches a player; the first player becomes the leader.
func (f *Faction) AddPlayer(p *Player) {
	f.players[p.ID] = p
	if f.leader == nil {
		f.leader = p
	}
}

// RemovePlayer detaches a player, promoting the highest-id survivor to
// leader when the leader leaves.
func (f *Faction) RemovePlayer(p *Player) {
	delete(f.players, p.ID)
	if f.leader == p {
		f.leader = nil
		for _, survivor := range f.players {
			if f.leader == nil || survivor.ID > f.leader.ID {
				f.leader = survivor
			}
		}
	}
}

// IsEnemy reports whether the other faction is at war with this one.
func (f *Faction) IsEnemy(other *Faction) bool {
	if other == nil {
		return false
	}
	_, hostile := f.EnemyFactions[other.ID]
	return hostile
}

// StartWarWith makes both factions enemies.
func (f *Faction) StartWarWith(other *Faction) {
	f.startWar(other)
	other.startWar(f)
}

func (f *Faction) startWar(other *Faction) {
	delete(f.FriendlyFactions, other.ID)
	f.EnemyFactions[other.ID] = struct{}{}
}

// CeaseFire ends the war between both factions.
func (f *Faction) CeaseFire(other *Faction) {
	delete(f.EnemyFactions, other.ID)
	delete(other.EnemyFactions, f.ID)
}

// StartAlliance ends hostilities and befriends both factions.
func (f *Faction) StartAlliance(other *Faction) {
	f.CeaseFire(other)
	f.FriendlyFactions[other.ID] = struct{}{}
	other.FriendlyFactions[f.ID] = struct{}{}
}

// Update clears the per-tick known-enemies set and updates every player.
func (f *Faction) Update(delta float64) {
	clear(f.knownEnemies)
	for _, p := range f.players {
		p.Update()
	}
}

func maxFactionID(registry map[int]*Faction) int {
	maxID := 0
	for id := range registry {
		if id > maxID {
			maxID = id
		}
	}
	return maxID
}

// nextPlayerOrFactionID doubles the highest id in use, starting from 2, so
// the ids of one registry are distinct powers of two. Players and factions
// are numbered in separate registries, so a player and a faction can share
// an id.
func nextPlayerOrFactionID(count, maxID int) int {
	if count == 0 {
		return 2
	}
	return maxID << 1
}
