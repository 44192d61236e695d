package entity

// Resource kind names shared with the CSV catalogs.
const (
	Fuel        = "fuel"
	Energy      = "energy"
	Ammunition  = "ammunition"
	Steel       = "steel"
	Electronics = "electronics"
	Food        = "food"
	Conscripts  = "conscripts"
)

// ResourceNames lists every resource kind a player tracks.
var ResourceNames = []string{Fuel, Energy, Ammunition, Steel, Electronics, Food, Conscripts}

// ProductionCostResources are the kinds consumed by unit production.
var ProductionCostResources = []string{Steel, Electronics, Ammunition, Conscripts}

// defaultResources are the pre-multiplier starting stocks.
var defaultResources = map[string]float64{
	Fuel:        50,
	Energy:      0,
	Ammunition:  100,
	Steel:       100,
	Electronics: 100,
	Food:        75,
	Conscripts:  15,
}

// Resource is one player-owned resource kind: its stock and flow rates.
type Resource struct {
	Stock                float64 `yaml:"stock"`
	YieldPerSecond       float64 `yaml:"yield_per_second"`
	ConsumptionPerSecond float64 `yaml:"consumption_per_second"`
	ProductionEfficiency float64 `yaml:"production_efficiency"`
}
