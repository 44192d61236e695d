// Command game hosts the simulation in an ebiten window: it renders the
// world as simple shapes, translates mouse and keyboard input into core
// calls, and drives the fixed-rate tick.
package main

import (
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/akrol/steelfront/engine/config"
	"github.com/akrol/steelfront/engine/entity"
	"github.com/akrol/steelfront/engine/fog"
	"github.com/akrol/steelfront/engine/game"
	"github.com/akrol/steelfront/engine/scenario"
	"github.com/akrol/steelfront/engine/world"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	tickRate     = 1.0 / 60.0
	cameraSpeed  = 12.0
)

// fogOverlay implements fog.SpriteSink by tracking which grids carry which
// overlay; Draw reads it back as translucent rectangles.
type fogOverlay struct {
	tiles map[world.GridPosition]fog.SpriteKind
}

func newFogOverlay() *fogOverlay {
	return &fogOverlay{tiles: make(map[world.GridPosition]fog.SpriteKind)}
}

func (f *fogOverlay) AddFogSprite(grid world.GridPosition, kind fog.SpriteKind) {
	f.tiles[grid] = kind
}

func (f *fogOverlay) RemoveFogSprite(grid world.GridPosition) {
	delete(f.tiles, grid)
}

// loggingSounds stands in for a real audio backend.
type loggingSounds struct{}

func (loggingSounds) PlaySound(name string) { slog.Debug("sound", "name", name) }

// host adapts the core Game to ebiten's loop.
type host struct {
	core *game.Game
	fog  *fogOverlay

	cameraX, cameraY float64

	dragging               bool
	dragStartX, dragStartY float64

	message string
}

// ShowDialog implements game.DialogSink.
func (h *host) ShowDialog(text string) { h.message = text }

func (h *host) Update() error {
	h.handleCamera()
	h.handleMouse()
	h.handleKeyboard()
	h.core.Update(tickRate)
	h.core.SetViewport([4]float64{h.cameraX, h.cameraX + screenWidth, h.cameraY, h.cameraY + screenHeight})
	return nil
}

func (h *host) handleCamera() {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		h.cameraX -= cameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		h.cameraX += cameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		h.cameraY -= cameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		h.cameraY += cameraSpeed
	}
}

func (h *host) handleMouse() {
	mx, my := ebiten.CursorPosition()
	wx, wy := float64(mx)+h.cameraX, float64(my)+h.cameraY

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.dragging = true
		h.dragStartX, h.dragStartY = wx, wy
	}
	if h.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		h.dragging = false
		h.selectUnitsIn(h.dragStartX, h.dragStartY, wx, wy)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if ebiten.IsKeyPressed(ebiten.KeyControl) {
			h.core.UnitsManager().EnqueueWaypoint(wx, wy)
		} else {
			h.core.UnitsManager().MoveTo(wx, wy)
		}
	}
}

func (h *host) selectUnitsIn(x1, y1, x2, y2 float64) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	var selected []*entity.Unit
	local := h.core.LocalPlayer()
	for _, unit := range h.core.Units() {
		pos := unit.Position()
		if unit.Player() == local && pos.X >= x1 && pos.X <= x2 && pos.Y >= y1 && pos.Y <= y2 {
			selected = append(selected, unit)
		}
	}
	h.core.UnitsManager().SelectUnits(selected...)
}

func (h *host) handleKeyboard() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		h.core.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.core.UnitsManager().SelectUnits()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		h.core.UnitsManager().FinishWaypoints()
	}
	for digit := 0; digit < 10; digit++ {
		key := ebiten.Key(int(ebiten.KeyDigit0) + digit)
		if inpututil.IsKeyJustPressed(key) {
			if ebiten.IsKeyPressed(ebiten.KeyControl) {
				h.core.UnitsManager().CreatePermanentGroup(digit)
			} else {
				h.core.UnitsManager().SelectPermanentGroup(digit)
			}
		}
	}
}

func (h *host) Draw(screen *ebiten.Image) {
	h.drawTerrain(screen)
	h.drawEntities(screen)
	h.drawFog(screen)
	h.drawHUD(screen)
}

func (h *host) drawTerrain(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 70, G: 80, B: 52, A: 255})
}

func (h *host) drawEntities(screen *ebiten.Image) {
	drawn := h.core.LocalDrawnEntities()
	for _, building := range h.core.Buildings() {
		if _, visible := drawn[building]; !visible {
			continue
		}
		pos := building.Position()
		clr := building.Player().Color
		vector.DrawFilledRect(screen,
			float32(pos.X-world.TileWidth-h.cameraX), float32(pos.Y-world.TileHeight-h.cameraY),
			float32(world.TileWidth*2), float32(world.TileHeight*2), clr, false)
	}
	selected := make(map[int]struct{})
	for _, u := range h.core.UnitsManager().SelectedUnits() {
		selected[u.ID()] = struct{}{}
	}
	for _, unit := range h.core.Units() {
		if _, visible := drawn[unit]; !visible {
			continue
		}
		pos := unit.Position()
		clr := unit.Player().Color
		vector.DrawFilledCircle(screen,
			float32(pos.X-h.cameraX), float32(pos.Y-h.cameraY), 12, clr, false)
		if _, isSelected := selected[unit.ID()]; isSelected {
			vector.StrokeCircle(screen,
				float32(pos.X-h.cameraX), float32(pos.Y-h.cameraY), 16, 2,
				color.RGBA{R: 255, G: 255, B: 255, A: 255}, false)
		}
	}
}

func (h *host) drawFog(screen *ebiten.Image) {
	dark := color.RGBA{A: 255}
	semi := color.RGBA{A: 128}
	for grid, kind := range h.fog.tiles {
		clr := dark
		if kind == fog.Semi {
			clr = semi
		}
		vector.DrawFilledRect(screen,
			float32(float64(grid.X)*world.TileWidth-h.cameraX),
			float32(float64(grid.Y)*world.TileHeight-h.cameraY),
			float32(world.TileWidth), float32(world.TileHeight), clr, false)
	}
}

func (h *host) drawHUD(screen *ebiten.Image) {
	local := h.core.LocalPlayer()
	if local == nil {
		return
	}
	hud := fmt.Sprintf("steel %d  electronics %d  ammunition %d  conscripts %d  |  %.0fs",
		int(local.ResourceAmount(entity.Steel)),
		int(local.ResourceAmount(entity.Electronics)),
		int(local.ResourceAmount(entity.Ammunition)),
		int(local.ResourceAmount(entity.Conscripts)),
		h.core.Timer().Seconds())
	if h.core.Paused() {
		hud += "  PAUSED"
	}
	if h.message != "" {
		hud += "  |  " + h.message
	}
	ebitenutil.DebugPrint(screen, hud)
}

func (h *host) Layout(int, int) (int, int) { return screenWidth, screenHeight }

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	catalog, err := config.ReadCSVFiles("assets/configs")
	if err != nil {
		slog.Warn("no config directory, using built-in demo catalog", "error", err)
		catalog = demoCatalog()
	}
	if len(catalog.Names()) == 0 {
		catalog = demoCatalog()
	}

	settings := entity.DefaultSettings()
	settings.MapColumns, settings.MapRows = 50, 40

	overlay := newFogOverlay()
	h := &host{fog: overlay}

	core := game.New(game.Options{
		Settings: settings,
		Configs:  catalog,
		Sounds:   loggingSounds{},
		Collaborators: game.Collaborators{
			Dialogs: h,
		},
		FogSink:    overlay,
		RandomSeed: 1,
	})
	h.core = core

	setupSkirmish(core)

	if campaigns, err := scenario.LoadCampaigns("assets/scenarios"); err == nil {
		core.SetCampaigns(campaigns)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Steelfront")
	if err := ebiten.RunGame(h); err != nil {
		log.Fatal(err)
	}
}

// setupSkirmish creates two hostile players with a starting base each and a
// destroy-the-enemy scenario.
func setupSkirmish(core *game.Game) {
	humans := core.NewFaction("Allies")
	machines := core.NewFaction("Enemy")
	humans.StartWarWith(machines)

	human := core.NewPlayer("Player", humans)
	core.SetLocalPlayer(human)
	cpu := core.NewPlayer("CPU", machines)
	cpu.MakeCPU()

	core.Spawn("factory", human, 10*world.TileWidth, 8*world.TileHeight)
	core.Spawn("tank_medium", human, 13*world.TileWidth, 8*world.TileHeight)
	core.Spawn("tank_medium", human, 13*world.TileWidth, 10*world.TileHeight)

	core.Spawn("factory", cpu, 40*world.TileWidth, 30*world.TileHeight)
	core.Spawn("tank_medium", cpu, 37*world.TileWidth, 30*world.TileHeight)

	s := core.NewScenario("skirmish", "random")
	s.AddPlayers(human.ID, cpu.ID)
	s.AddEventTriggers(
		scenario.NewTrigger(
			scenario.NoUnitsLeft{FactionID: machines.ID},
			scenario.Victory{Player: human.ID}),
		scenario.NewTrigger(
			scenario.NoUnitsLeft{FactionID: humans.ID},
			scenario.Victory{Player: cpu.ID}),
	)
}

// demoCatalog builds the minimal object set the skirmish needs when no CSV
// assets ship with the binary.
func demoCatalog() *config.Catalog {
	catalog := config.NewCatalog()
	catalog.Put("units", "tank_medium", config.ObjectConfig{
		"object_name":       "tank_medium",
		"class":             "VehicleWithTurret",
		"max_health":        100,
		"armour":            2.0,
		"max_speed":         3.0,
		"rotation_speed":    20,
		"visibility_radius": 5,
		"attack_radius":     4,
		"weapons_names":     []config.Value{"cannon_75mm"},
		"production_time":   5,
		"steel":             100,
		"electronics":       50,
		"ammunition":        25,
		"conscripts":        1,
		"fuel":              100,
		"fuel_consumption":  0.01,
	})
	catalog.Put("units", "soldier", config.ObjectConfig{
		"object_name":       "soldier",
		"class":             "Soldier",
		"max_health":        50,
		"max_speed":         2.0,
		"rotation_speed":    45,
		"visibility_radius": 4,
		"attack_radius":     3,
		"weapons_names":     []config.Value{"rifle"},
		"production_time":   2,
		"steel":             0,
		"electronics":       0,
		"ammunition":        10,
		"conscripts":        1,
	})
	catalog.Put("buildings", "factory", config.ObjectConfig{
		"object_name":        "factory",
		"class":              "Building",
		"max_health":         500,
		"visibility_radius":  6,
		"attack_radius":      0,
		"energy_consumption": 10,
		"produced_units":     []config.Value{"tank_medium", "soldier"},
		"garrison_size":      4,
	})
	catalog.Put("weapons", "cannon_75mm", config.ObjectConfig{
		"object_name":  "cannon_75mm",
		"damage":       25.0,
		"penetration":  5.0,
		"accuracy":     70.0,
		"range":        240.0,
		"rate_of_fire": 3.0,
		"ammunition":   40,
	})
	catalog.Put("weapons", "rifle", config.ObjectConfig{
		"object_name":  "rifle",
		"damage":       8.0,
		"penetration":  1.0,
		"accuracy":     60.0,
		"range":        180.0,
		"rate_of_fire": 1.0,
		"ammunition":   120,
	})
	return catalog
}
