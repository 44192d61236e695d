package world

// SectorEntity is a unit or building rooted in a sector, grouped by the id of
// its owning player.
type SectorEntity interface {
	ID() int
	PlayerID() int
}

// Sector is a 10x10 square of map nodes. Sectors track which entities of
// which player are currently rooted in them, so proximity queries can scan a
// handful of sectors instead of the whole map.
type Sector struct {
	Grid GridPosition

	gameMap            *Map
	unitsAndBuildings  map[int]map[int]SectorEntity
}

func newSector(grid GridPosition, m *Map) *Sector {
	return &Sector{
		Grid:              grid,
		gameMap:           m,
		unitsAndBuildings: make(map[int]map[int]SectorEntity),
	}
}

// Entities returns the entities of the given player rooted in this sector.
func (s *Sector) Entities(playerID int) []SectorEntity {
	entities := make([]SectorEntity, 0, len(s.unitsAndBuildings[playerID]))
	for _, e := range s.unitsAndBuildings[playerID] {
		entities = append(entities, e)
	}
	return entities
}

// AddEntity roots an entity in this sector.
func (s *Sector) AddEntity(entity SectorEntity) {
	byPlayer, ok := s.unitsAndBuildings[entity.PlayerID()]
	if !ok {
		byPlayer = make(map[int]SectorEntity)
		s.unitsAndBuildings[entity.PlayerID()] = byPlayer
	}
	byPlayer[entity.ID()] = entity
}

// DiscardEntity removes an entity from this sector, if present.
func (s *Sector) DiscardEntity(entity SectorEntity) {
	if byPlayer, ok := s.unitsAndBuildings[entity.PlayerID()]; ok {
		delete(byPlayer, entity.ID())
	}
}

// AdjacentSectors returns the sectors surrounding this one, clamped to the
// sector grid bounds.
func (s *Sector) AdjacentSectors() []*Sector {
	maxX := s.gameMap.Columns / SectorSize
	maxY := s.gameMap.Rows / SectorSize
	var adjacent []*Sector
	for _, offset := range adjacentOffsets {
		grid := GridPosition{X: s.Grid.X + offset.X, Y: s.Grid.Y + offset.Y}
		if grid.X < 0 || grid.X > maxX || grid.Y < 0 || grid.Y > maxY {
			continue
		}
		if sector, ok := s.gameMap.sectors[grid]; ok {
			adjacent = append(adjacent, sector)
		}
	}
	return adjacent
}
