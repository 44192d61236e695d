package entity

import (
	"testing"
)

func buildFactory(t *testing.T, tw *testWorld) *Building {
	t.Helper()
	factory := NewBuilding(tw.ctx, "factory", tw.player, at(10, 10), BuildingOptions{})
	if factory.Producer == nil {
		t.Fatal("factory has no producer state")
	}
	return factory
}

func TestProductionCycle(t *testing.T) {
	tw := newTestWorld(t)
	grantResources(tw.player, 1000)
	factory := buildFactory(t, tw)

	factory.StartProduction("tank_medium")

	// resources deducted up front
	wantStocks := map[string]float64{Steel: 900, Electronics: 950, Ammunition: 975, Conscripts: 999}
	for resource, want := range wantStocks {
		if got := tw.player.ResourceAmount(resource); got != want {
			t.Errorf("%s stock = %v after ordering, want %v", resource, got, want)
		}
	}
	producer := factory.Producer
	if producer.CurrentlyProduced != "tank_medium" {
		t.Fatalf("currently produced = %q, want tank_medium", producer.CurrentlyProduced)
	}
	// 5 seconds at 60 fps
	if producer.ProductionTime != 300 {
		t.Fatalf("production time = %v frames, want 300", producer.ProductionTime)
	}

	unitsBefore := len(tw.player.Units())
	for frame := 0; frame < 300; frame++ {
		if len(tw.player.Units()) != unitsBefore {
			t.Fatalf("unit spawned early on frame %d", frame)
		}
		factory.Update(1.0 / 60.0)
	}
	if got := len(tw.player.Units()); got != unitsBefore+1 {
		t.Fatalf("player has %d units after the cycle, want %d", got, unitsBefore+1)
	}
	if producer.CurrentlyProduced != "" {
		t.Errorf("production should be idle after finishing, producing %q", producer.CurrentlyProduced)
	}
	// the finished unit stands at the spawn point
	spawnGrid := tw.ctx.Map.PositionToNode(producer.SpawnPoint.X, producer.SpawnPoint.Y).Grid
	found := false
	for _, unit := range tw.player.Units() {
		if unit.CurrentGrid() == spawnGrid {
			found = true
		}
	}
	if !found {
		t.Error("no unit standing at the spawn point")
	}
}

func TestProductionQueuesFollowUpOrders(t *testing.T) {
	tw := newTestWorld(t)
	grantResources(tw.player, 10000)
	factory := buildFactory(t, tw)

	factory.StartProduction("tank_medium")
	factory.StartProduction("soldier")
	factory.StartProduction("soldier")

	producer := factory.Producer
	if producer.CurrentlyProduced != "tank_medium" {
		t.Fatalf("first order should produce first, producing %q", producer.CurrentlyProduced)
	}
	if got := producer.QueueCount("soldier"); got != 2 {
		t.Fatalf("soldier queue count = %d, want 2", got)
	}

	// run long enough for the tank (300 frames) and both soldiers (120 each)
	for frame := 0; frame < 560; frame++ {
		factory.Update(1.0 / 60.0)
	}
	if got := len(tw.player.Units()); got != 3 {
		t.Errorf("player has %d units, want 3", got)
	}
}

func TestProductionRejectedWithoutResources(t *testing.T) {
	tw := newTestWorld(t)
	grantResources(tw.player, 0)
	factory := buildFactory(t, tw)

	factory.StartProduction("tank_medium")
	if factory.Producer.CurrentlyProduced != "" {
		t.Error("production started despite empty stocks")
	}
	if len(factory.Producer.Queue) != 0 {
		t.Error("order enqueued despite empty stocks")
	}
	// the local human hears the deficit warning; stocks stay untouched
	if len(tw.sounds.Played) == 0 {
		t.Error("no deficit sound played")
	}
	if got := tw.player.ResourceAmount(Steel); got != 0 {
		t.Errorf("steel stock changed to %v", got)
	}
}

func TestCancelProductionRefunds(t *testing.T) {
	tw := newTestWorld(t)
	grantResources(tw.player, 1000)
	factory := buildFactory(t, tw)
	producer := factory.Producer

	factory.StartProduction("tank_medium")
	factory.StartProduction("tank_medium")

	// cancelling the queued (not yet started) order refunds fully
	factory.CancelProduction("tank_medium")
	if got := tw.player.ResourceAmount(Steel); got != 900 {
		t.Errorf("steel after first cancel = %v, want 900", got)
	}
	if producer.CurrentlyProduced != "tank_medium" {
		t.Fatal("current production should survive cancelling the queued copy")
	}

	// cancelling the in-progress order leaves the factory idle
	factory.CancelProduction("tank_medium")
	if producer.CurrentlyProduced != "" {
		t.Error("factory still producing after cancelling everything")
	}
	if producer.ProductionProgress != 0 {
		t.Error("progress not reset after cancel")
	}

	// cancelling a unit that is not queued is a no-op
	steel := tw.player.ResourceAmount(Steel)
	factory.CancelProduction("tank_medium")
	if tw.player.ResourceAmount(Steel) != steel {
		t.Error("no-op cancel changed stocks")
	}
}

func TestExtractorRaisesYield(t *testing.T) {
	tw := newTestWorld(t)
	before := tw.player.Resource(Fuel).YieldPerSecond
	derrick := NewBuilding(tw.ctx, "oil_derrick", tw.player, at(4, 4), BuildingOptions{})
	if derrick.Extractor == nil {
		t.Fatal("derrick has no extractor state")
	}
	if got := tw.player.Resource(Fuel).YieldPerSecond; got <= before {
		t.Errorf("fuel yield per second = %v, want raised above %v", got, before)
	}
	derrick.Kill()
	if got := tw.player.Resource(Fuel).YieldPerSecond; got != before {
		t.Errorf("fuel yield per second = %v after extractor died, want %v", got, before)
	}
}

func TestResearchAccumulatesAndFinishes(t *testing.T) {
	tw := newTestWorld(t)
	lab := NewBuilding(tw.ctx, "laboratory", tw.player, at(6, 6), BuildingOptions{})
	if lab.Research == nil {
		t.Fatal("laboratory has no research state")
	}
	applied := false
	tech := &Technology{
		ID:         3,
		Name:       "composite_armour",
		Difficulty: 100,
		Effect:     func(*Player) { applied = true },
	}
	lab.Research.Funding = 50 // progress 0.5 per tick
	lab.Research.StartResearch(tech)
	if lab.Research.ResearchedTechnology != tech {
		t.Fatal("research did not start")
	}

	for i := 0; i < 202 && !tw.player.KnowsTechnology(tech.ID); i++ {
		lab.Update(1.0 / 60.0)
	}
	if !tw.player.KnowsTechnology(tech.ID) {
		t.Fatal("technology not researched after sufficient funding")
	}
	if !applied {
		t.Error("technology effect did not run")
	}
	if lab.Research.ResearchedTechnology != nil {
		t.Error("research slot not cleared after finishing")
	}
}

func TestResearchRequiresPrerequisites(t *testing.T) {
	tw := newTestWorld(t)
	lab := NewBuilding(tw.ctx, "laboratory", tw.player, at(6, 6), BuildingOptions{})
	locked := &Technology{ID: 9, Name: "locked", Required: []int{3}, Difficulty: 10}
	lab.Research.StartResearch(locked)
	if lab.Research.ResearchedTechnology != nil {
		t.Error("research started without prerequisites")
	}
	tw.player.RestoreKnownTechnology(3)
	lab.Research.StartResearch(locked)
	if lab.Research.ResearchedTechnology != locked {
		t.Error("research refused despite known prerequisites")
	}
}

func TestGarrison(t *testing.T) {
	tw := newTestWorld(t)
	factory := buildFactory(t, tw)
	soldierA := NewUnit(tw.ctx, "soldier", tw.player, at(8, 10))
	soldierB := NewUnit(tw.ctx, "soldier", tw.player, at(8, 11))
	soldierC := NewUnit(tw.ctx, "soldier", tw.player, at(8, 12))

	soldierA.EnterBuilding(factory)
	soldierB.EnterBuilding(factory)
	soldierC.EnterBuilding(factory) // garrison size is 2

	if got := len(factory.Garrison.Soldiers()); got != 2 {
		t.Fatalf("garrison holds %d soldiers, want 2", got)
	}
	if soldierA.Outside() {
		t.Error("garrisoned soldier still outside")
	}
	if soldierC.Outside() == false {
		t.Error("rejected soldier should stay outside")
	}

	soldierA.LeaveBuilding(factory)
	if !soldierA.Outside() {
		t.Error("soldier did not leave the building")
	}
	if got := len(factory.Garrison.Soldiers()); got != 1 {
		t.Errorf("garrison holds %d soldiers after leave, want 1", got)
	}
	if soldierA.CurrentNode().Unit() == nil {
		t.Error("returned soldier does not block its node")
	}
}
