package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CampaignFile is the on-disk shape of a campaign: a key-value store mapping
// the campaign name to its ordered missions list.
type CampaignFile struct {
	Name     string   `yaml:"name"`
	Missions []string `yaml:"missions"`
}

// Campaign is a series of consecutive missions. Completing a mission unlocks
// the next one; the first is always playable.
type Campaign struct {
	Name     string
	missions []string
	unlocked []bool
}

// NewCampaign creates a campaign with only the first mission unlocked.
func NewCampaign(name string, missions []string) *Campaign {
	unlocked := make([]bool, len(missions))
	if len(unlocked) > 0 {
		unlocked[0] = true
	}
	return &Campaign{Name: name, missions: missions, unlocked: unlocked}
}

// Missions returns the campaign's mission names in order.
func (c *Campaign) Missions() []string { return c.missions }

// PlayableMissions returns the unlocked mission names.
func (c *Campaign) PlayableMissions() []string {
	var playable []string
	for i, name := range c.missions {
		if c.unlocked[i] {
			playable = append(playable, name)
		}
	}
	return playable
}

// IsPlayable reports whether the named mission is unlocked.
func (c *Campaign) IsPlayable(mission string) bool {
	for i, name := range c.missions {
		if name == mission {
			return c.unlocked[i]
		}
	}
	return false
}

// Progress returns the campaign completion percentage.
func (c *Campaign) Progress() int {
	if len(c.missions) == 0 {
		return 0
	}
	unlockedCount := 0
	for _, u := range c.unlocked {
		if u {
			unlockedCount++
		}
	}
	return 100 * (unlockedCount - 1) / len(c.missions)
}

// Update unlocks the mission after the finished scenario.
func (c *Campaign) Update(finished *Scenario) {
	next := finished.Index + 1
	if next >= 0 && next < len(c.unlocked) {
		c.unlocked[next] = true
	}
}

// LoadCampaigns reads every .cmpgn.yaml file from the scenarios directory.
func LoadCampaigns(path string) (map[string]*Campaign, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaigns directory: %w", err)
	}
	campaigns := make(map[string]*Campaign)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cmpgn.yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read campaign file %s: %w", entry.Name(), err)
		}
		var file CampaignFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse campaign file %s: %w", entry.Name(), err)
		}
		if file.Name == "" {
			file.Name = strings.TrimSuffix(entry.Name(), ".cmpgn.yaml")
		}
		campaigns[file.Name] = NewCampaign(file.Name, file.Missions)
	}
	return campaigns, nil
}
