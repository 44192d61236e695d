package save

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	// MaxSaveSlots bounds the save browser.
	MaxSaveSlots = 10
	// SaveDirName is created under the user's home directory.
	SaveDirName = ".steelfront/saves"
)

// Manager reads and writes slotted save files.
type Manager struct {
	savePath string
}

// NewManager creates the save directory if needed.
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	savePath := filepath.Join(homeDir, SaveDirName)
	if err := os.MkdirAll(savePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &Manager{savePath: savePath}, nil
}

// NewManagerAt uses an explicit directory, for tests and portable installs.
func NewManagerAt(path string) (*Manager, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &Manager{savePath: path}, nil
}

// SavePath returns the directory saves live in.
func (m *Manager) SavePath() string { return m.savePath }

func (m *Manager) slotToFilename(slot int) string {
	return filepath.Join(m.savePath, fmt.Sprintf("save_%02d.yaml", slot))
}

// SaveGame writes a snapshot into a slot.
func (m *Manager) SaveGame(state *GameState, slot int, name, missionID string) error {
	if slot < 0 || slot >= MaxSaveSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, MaxSaveSlots-1)
	}
	saveFile := &SaveFile{
		Version: SaveVersion,
		Metadata: SaveMetadata{
			ID:        uuid.New().String(),
			Name:      name,
			Timestamp: time.Now(),
			MissionID: missionID,
			PlayTime:  state.Timer.TotalGameTime,
		},
		GameState: *state,
	}
	data, err := yaml.Marshal(saveFile)
	if err != nil {
		return fmt.Errorf("failed to serialize save file: %w", err)
	}
	if err := os.WriteFile(m.slotToFilename(slot), data, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}

// LoadGame reads the snapshot in a slot.
func (m *Manager) LoadGame(slot int) (*SaveFile, error) {
	if slot < 0 || slot >= MaxSaveSlots {
		return nil, fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, MaxSaveSlots-1)
	}
	data, err := os.ReadFile(m.slotToFilename(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("save slot %d is empty", slot)
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	var saveFile SaveFile
	if err := yaml.Unmarshal(data, &saveFile); err != nil {
		return nil, fmt.Errorf("failed to parse save file: %w", err)
	}
	if saveFile.Version > SaveVersion {
		return nil, fmt.Errorf("save file version %d is newer than supported version %d",
			saveFile.Version, SaveVersion)
	}
	return &saveFile, nil
}

// DeleteSave removes a slot's save file.
func (m *Manager) DeleteSave(slot int) error {
	if slot < 0 || slot >= MaxSaveSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, MaxSaveSlots-1)
	}
	err := os.Remove(m.slotToFilename(slot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// SaveSlotInfo describes one slot of the save browser.
type SaveSlotInfo struct {
	Slot     int
	Empty    bool
	Metadata *SaveMetadata
}

// ListSaves describes every slot.
func (m *Manager) ListSaves() []SaveSlotInfo {
	slots := make([]SaveSlotInfo, MaxSaveSlots)
	for i := 0; i < MaxSaveSlots; i++ {
		slots[i] = SaveSlotInfo{Slot: i, Empty: true}
		data, err := os.ReadFile(m.slotToFilename(i))
		if err != nil {
			continue
		}
		var saveFile SaveFile
		if err := yaml.Unmarshal(data, &saveFile); err != nil {
			continue
		}
		slots[i].Empty = false
		slots[i].Metadata = &saveFile.Metadata
	}
	return slots
}

// LatestSave returns the most recent non-empty slot, or nil.
func (m *Manager) LatestSave() *SaveSlotInfo {
	var latest *SaveSlotInfo
	var latestTime time.Time
	slots := m.ListSaves()
	for i := range slots {
		if slots[i].Empty {
			continue
		}
		if slots[i].Metadata.Timestamp.After(latestTime) {
			latestTime = slots[i].Metadata.Timestamp
			latest = &slots[i]
		}
	}
	return latest
}

// SavesSortedByTime returns non-empty slots, newest first.
func (m *Manager) SavesSortedByTime() []SaveSlotInfo {
	var nonEmpty []SaveSlotInfo
	for _, slot := range m.ListSaves() {
		if !slot.Empty {
			nonEmpty = append(nonEmpty, slot)
		}
	}
	sort.Slice(nonEmpty, func(i, j int) bool {
		return nonEmpty[i].Metadata.Timestamp.After(nonEmpty[j].Metadata.Timestamp)
	})
	return nonEmpty
}

// FindEmptySlot returns the first empty slot, or -1 when all are taken.
func (m *Manager) FindEmptySlot() int {
	for i := 0; i < MaxSaveSlots; i++ {
		if _, err := os.Stat(m.slotToFilename(i)); os.IsNotExist(err) {
			return i
		}
	}
	return -1
}

// QuickSave writes into the first empty slot, recycling the oldest save when
// none is free.
func (m *Manager) QuickSave(state *GameState, missionID string) (int, error) {
	slot := m.FindEmptySlot()
	if slot == -1 {
		slots := m.SavesSortedByTime()
		if len(slots) > 0 {
			slot = slots[len(slots)-1].Slot
		} else {
			slot = 0
		}
	}
	name := fmt.Sprintf("Quick Save - %s", time.Now().Format("Jan 2 15:04"))
	return slot, m.SaveGame(state, slot, name, missionID)
}

// QuickLoad loads the most recent save.
func (m *Manager) QuickLoad() (*SaveFile, error) {
	latest := m.LatestSave()
	if latest == nil {
		return nil, fmt.Errorf("no save files found")
	}
	return m.LoadGame(latest.Slot)
}
