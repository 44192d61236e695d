package entity

import (
	"container/heap"
	"log/slog"
)

// ConstructionPlanner is the CPU player's build brain: a priority queue of
// planned spends. The top entry is built whenever the resources allow and
// stays queued afterwards. It is deliberately
// simple; anything smarter belongs to a dedicated AI layer.
type ConstructionPlanner struct {
	player     *Player
	priorities plannerQueue
}

// NewConstructionPlanner creates an empty planner for the player.
func NewConstructionPlanner(p *Player) *ConstructionPlanner {
	return &ConstructionPlanner{player: p}
}

// Len returns the number of planned entries.
func (c *ConstructionPlanner) Len() int { return c.priorities.Len() }

// Plan enqueues an entity name to build. High priority entries jump the
// queue, medium priority ones land in the middle.
func (c *ConstructionPlanner) Plan(name string, medium, high bool) {
	priority := 0
	switch {
	case medium:
		priority = c.priorities.Len() / 2
	case high:
		priority = c.priorities.Len() + 1
	}
	heap.Push(&c.priorities, &plannedConstruction{name: name, priority: priority})
}

// UpdateLogic runs one planning step: build the top planned entry when it is
// affordable and push it back, or make new plans when the queue is empty.
// Scheduled on a difficulty-scaled cadence.
func (c *ConstructionPlanner) UpdateLogic() {
	if c.priorities.Len() > 0 {
		c.buildUnitOrBuilding()
	} else {
		c.makeBuildingPlans()
	}
}

func (c *ConstructionPlanner) buildUnitOrBuilding() {
	top := heap.Pop(&c.priorities).(*plannedConstruction)
	if c.player.EnoughResourcesFor(top.name) {
		if producer := c.player.DefaultProducerOfUnit(top.name); producer != nil {
			producer.StartProduction(top.name)
		} else {
			slog.Debug("cpu player has no producer for planned entity",
				"player", c.player.ID, "entity", top.name)
		}
	}
	heap.Push(&c.priorities, top)
}

func (c *ConstructionPlanner) makeBuildingPlans() {
	// keep pressure on the human player with a steady stream of medium tanks
	local := c.player.ctx.LocalPlayer
	if local != nil && len(c.player.faction.units) < len(local.faction.units) {
		c.Plan("tank_medium", false, true)
	} else {
		c.Plan("tank_medium", false, false)
	}
}

type plannedConstruction struct {
	name     string
	priority int
	index    int
}

type plannerQueue []*plannedConstruction

func (q plannerQueue) Len() int { return len(q) }
func (q plannerQueue) Less(i, j int) bool {
	return q[i].priority > q[j].priority
}
func (q plannerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *plannerQueue) Push(x interface{}) {
	item := x.(*plannedConstruction)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *plannerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
