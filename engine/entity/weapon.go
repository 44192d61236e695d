package entity

import (
	"log/slog"
)

// Weapon is carried by a fighting entity. Its stats come from the weapons
// catalog; a missing entry leaves the defaults and logs a warning each time
// such a weapon is built.
type Weapon struct {
	Name string

	Damage      float64
	Penetration float64
	Accuracy    float64
	Range       float64
	RateOfFire  float64 // seconds between shots
	Ammunition  int

	EffectiveAgainstInfantry bool

	// NextFiringTime is the absolute game time the weapon reloads at.
	NextFiringTime float64

	ctx *Context
}

// NewWeapon creates a weapon from the catalog entry of the given name.
func NewWeapon(ctx *Context, name string, _ Entity) *Weapon {
	w := &Weapon{
		Name:        name,
		Damage:      10.0,
		Penetration: 2.0,
		Accuracy:    75.0,
		Range:       200.0,
		RateOfFire:  4.0,
		Ammunition:  100,
		ctx:         ctx,
	}
	cfg, ok := ctx.Configs.Get(name)
	if !ok {
		slog.Warn("weapon missing from configs, using defaults", "weapon", name)
		return w
	}
	if v := cfg.Float("damage"); v > 0 {
		w.Damage = v
	}
	if v := cfg.Float("penetration"); v > 0 {
		w.Penetration = v
	}
	if v := cfg.Float("accuracy"); v > 0 {
		w.Accuracy = v
	}
	if v := cfg.Float("range"); v > 0 {
		w.Range = v
	}
	if v := cfg.Float("rate_of_fire"); v > 0 {
		w.RateOfFire = v
	}
	if v := cfg.Int("ammunition"); v > 0 {
		w.Ammunition = v
	}
	w.EffectiveAgainstInfantry = cfg.Bool("effective_against_infantry")
	return w
}

// Reloaded reports whether the weapon can fire at the given game time.
func (w *Weapon) Reloaded(now float64) bool {
	return now >= w.NextFiringTime
}

// Shoot fires at the target: starts the reload countdown and, when the round
// can penetrate the target's armour and the stochastic hit check passes,
// damages it.
func (w *Weapon) Shoot(owner, target Entity, now float64) {
	w.NextFiringTime = now + w.RateOfFire
	if w.Ammunition > 0 {
		w.Ammunition--
	}
	if w.CanPenetrate(target) && w.hitTarget(owner, target) {
		target.OnBeingDamaged(w.Damage, 0)
	}
}

// CanPenetrate reports whether the weapon can hurt the target at all.
func (w *Weapon) CanPenetrate(target Entity) bool {
	return w.Penetration >= target.Armour()
}

// hitTarget rolls the stochastic hit check. The chance sums the weapon
// accuracy, the shooter's experience bonus, a size bonus against buildings
// and penalties for cover, a moving shooter, a moving target and firing
// heavy weapons at infantry. The roll is a gaussian around the chance with a
// fifth of it as deviation.
func (w *Weapon) hitTarget(owner, target Entity) bool {
	hitChance := w.Accuracy + owner.Experience()*0.05
	if target.IsBuilding() {
		hitChance += 25
	}
	hitChance -= target.Cover()
	if owner.IsMoving() {
		hitChance -= 25
	}
	if target.IsMoving() {
		hitChance -= 15
	}
	if target.IsInfantry() && !owner.IsInfantry() {
		hitChance -= 25
	}
	return gauss(w.ctx, hitChance, hitChance*0.20) < hitChance
}
