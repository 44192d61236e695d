package save

import (
	"testing"
)

func testState() *GameState {
	return &GameState{
		Timer:         TimerState{Frames: 7200, TotalGameTime: 120},
		LocalPlayerID: 2,
		Map:           MapState{Rows: 20, Columns: 20},
		Units: []UnitState{
			{ID: 3, Name: "tank_medium", PlayerID: 2, X: 330, Y: 275, Health: 80, Outside: true},
		},
		Players: []PlayerState{
			{ID: 2, Name: "human", FactionID: 2},
		},
	}
}

func TestSaveAndLoadSlot(t *testing.T) {
	m, err := NewManagerAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SaveGame(testState(), 0, "checkpoint", "mission_1"); err != nil {
		t.Fatal(err)
	}

	loaded, err := m.LoadGame(0)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Version != SaveVersion {
		t.Errorf("version = %d, want %d", loaded.Version, SaveVersion)
	}
	if loaded.Metadata.Name != "checkpoint" || loaded.Metadata.MissionID != "mission_1" {
		t.Errorf("metadata = %+v", loaded.Metadata)
	}
	if loaded.Metadata.ID == "" {
		t.Error("save has no identity")
	}
	if loaded.GameState.Timer.Frames != 7200 {
		t.Errorf("timer frames = %d, want 7200", loaded.GameState.Timer.Frames)
	}
	if len(loaded.GameState.Units) != 1 || loaded.GameState.Units[0].ID != 3 {
		t.Errorf("units = %+v", loaded.GameState.Units)
	}
}

func TestLoadEmptySlot(t *testing.T) {
	m, err := NewManagerAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.LoadGame(3); err == nil {
		t.Error("loading an empty slot should fail")
	}
}

func TestInvalidSlots(t *testing.T) {
	m, err := NewManagerAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SaveGame(testState(), -1, "x", ""); err == nil {
		t.Error("negative slot accepted")
	}
	if err := m.SaveGame(testState(), MaxSaveSlots, "x", ""); err == nil {
		t.Error("slot beyond the maximum accepted")
	}
}

func TestListAndQuickSave(t *testing.T) {
	m, err := NewManagerAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := m.FindEmptySlot(); got != 0 {
		t.Fatalf("first empty slot = %d, want 0", got)
	}
	slot, err := m.QuickSave(testState(), "mission_1")
	if err != nil {
		t.Fatal(err)
	}
	if slot != 0 {
		t.Errorf("quick save used slot %d, want 0", slot)
	}

	slots := m.ListSaves()
	if slots[0].Empty {
		t.Error("slot 0 reported empty after saving")
	}
	occupied := 0
	for _, info := range slots {
		if !info.Empty {
			occupied++
		}
	}
	if occupied != 1 {
		t.Errorf("%d occupied slots, want 1", occupied)
	}

	latest := m.LatestSave()
	if latest == nil || latest.Slot != 0 {
		t.Fatal("latest save not found")
	}
	if _, err := m.QuickLoad(); err != nil {
		t.Errorf("quick load failed: %v", err)
	}

	if err := m.DeleteSave(0); err != nil {
		t.Fatal(err)
	}
	if m.LatestSave() != nil {
		t.Error("deleted save still listed")
	}
}
