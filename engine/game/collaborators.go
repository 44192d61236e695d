package game

import (
	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/world"
)

// UI bundle names the core updates labels through.
const (
	UIBuildingsPanel   = "buildings_panel"
	UIUnitsPanel       = "units_panel"
	UIResourcesSection = "resources_section"
)

// Bundle is one labelled section of the host UI.
type Bundle interface {
	SetLabel(name, text string)
}

// BundleProvider hands out UI bundles by name. The core only writes labels;
// it never reads UI state back.
type BundleProvider interface {
	GetBundle(name string) Bundle
}

// MiniMap is the minimap collaborator; it reads revealed grids and entity
// positions on its own, the core only pings it once per tick.
type MiniMap interface {
	Update(visible []world.GridPosition)
}

// nullBundle ignores label writes.
type nullBundle struct{}

func (nullBundle) SetLabel(string, string) {}

type nullBundleProvider struct{}

func (nullBundleProvider) GetBundle(string) Bundle { return nullBundle{} }

type nullMiniMap struct{}

func (nullMiniMap) Update([]world.GridPosition) {}

// DialogSink shows blocking messages to the player.
type DialogSink interface {
	ShowDialog(text string)
}

type nullDialogSink struct{}

func (nullDialogSink) ShowDialog(string) {}

// Collaborators groups the replaceable external surfaces of the core. Zero
// values fall back to null implementations, so headless runs need none.
type Collaborators struct {
	Bundles BundleProvider
	MiniMap MiniMap
	Dialogs DialogSink
	Layers  entity.RenderLayers
}

func (c *Collaborators) fillDefaults() {
	if c.Bundles == nil {
		c.Bundles = nullBundleProvider{}
	}
	if c.MiniMap == nil {
		c.MiniMap = nullMiniMap{}
	}
	if c.Dialogs == nil {
		c.Dialogs = nullDialogSink{}
	}
	if c.Layers == nil {
		c.Layers = entity.NullLayers{}
	}
}
