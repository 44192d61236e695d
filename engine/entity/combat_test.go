package entity

import (
	"testing"

	"github.com/akrol/steelfront/engine/audio"
)

func TestEnemyScanFillsKnownEnemies(t *testing.T) {
	tw := newTestWorld(t)
	tank := spawnTank(t, tw, tw.player, 5, 5)
	near := spawnTank(t, tw, tw.enemy, 7, 5)  // 2 tiles, inside visibility 3
	far := spawnTank(t, tw, tw.enemy, 15, 15) // far outside

	tank.UpdateKnownEnemiesSet()
	if _, seen := tank.KnownEnemies()[Entity(near)]; !seen {
		t.Error("nearby enemy not detected")
	}
	if _, seen := tank.KnownEnemies()[Entity(far)]; seen {
		t.Error("distant enemy detected")
	}
	// the scan propagates to the player and faction sets
	if _, seen := tw.player.KnownEnemies()[Entity(near)]; !seen {
		t.Error("player known-enemies not updated")
	}
	if _, seen := tw.faction.KnownEnemies()[Entity(near)]; !seen {
		t.Error("faction known-enemies not updated")
	}
	// first contact warns the local human
	found := false
	for _, name := range tw.sounds.Played {
		if name == audio.SoundEnemyDetected {
			found = true
		}
	}
	if !found {
		t.Error("no enemy-detected sound played")
	}
}

func TestFriendlyUnitsAreNotEnemies(t *testing.T) {
	tw := newTestWorld(t)
	tank := spawnTank(t, tw, tw.player, 5, 5)
	friend := spawnTank(t, tw, tw.player, 6, 5)
	tank.UpdateKnownEnemiesSet()
	if _, seen := tank.KnownEnemies()[Entity(friend)]; seen {
		t.Error("friendly unit appears in known enemies")
	}
}

func TestSelectEnemyPrefersArmedThenWeakest(t *testing.T) {
	tw := newTestWorld(t)
	tank := spawnTank(t, tw, tw.player, 5, 5)
	armed := spawnTank(t, tw, tw.enemy, 6, 5)
	armedWeak := spawnTank(t, tw, tw.enemy, 6, 6)
	armedWeak.health = 10
	unarmed := NewUnit(tw.ctx, "transport", tw.enemy, at(5, 6))

	tank.UpdateKnownEnemiesSet()
	if len(tank.KnownEnemies()) != 3 {
		t.Fatalf("scan found %d enemies, want 3", len(tank.KnownEnemies()))
	}
	picked := tank.SelectEnemyFromKnownEnemies()
	if picked != Entity(armedWeak) {
		t.Errorf("picked %v, want the weakest armed enemy", picked)
	}
	_ = armed
	_ = unarmed
}

func TestWeaponCannotPenetrateHeavyArmour(t *testing.T) {
	tw := newTestWorld(t)
	shooter := spawnTank(t, tw, tw.player, 5, 5)
	target := spawnTank(t, tw, tw.enemy, 6, 5)
	target.armour = 99 // the cannon bounces

	healthBefore := target.Health()
	for i := 0; i < 20; i++ {
		*tw.clock += 10
		shooter.Attack(shooter, target)
	}
	if target.Health() != healthBefore {
		t.Errorf("impenetrable target lost health: %v -> %v", healthBefore, target.Health())
	}
}

func TestWeaponReloadGate(t *testing.T) {
	tw := newTestWorld(t)
	shooter := spawnTank(t, tw, tw.player, 5, 5)
	weapon := shooter.Weapons()[0]
	ammoBefore := weapon.Ammunition

	target := spawnTank(t, tw, tw.enemy, 6, 5)
	shooter.Attack(shooter, target)
	if weapon.Ammunition != ammoBefore-1 {
		t.Fatalf("one shot should cost one round, ammo %d -> %d", ammoBefore, weapon.Ammunition)
	}
	// immediate second attack is gated by the reload timer
	shooter.Attack(shooter, target)
	if weapon.Ammunition != ammoBefore-1 {
		t.Error("weapon fired before reloading")
	}
	*tw.clock += weapon.RateOfFire
	shooter.Attack(shooter, target)
	if weapon.Ammunition != ammoBefore-2 {
		t.Error("weapon did not fire after reloading")
	}
}

func TestDamageScalesWithArmourAndPenetration(t *testing.T) {
	tw := newTestWorld(t)
	target := spawnTank(t, tw, tw.enemy, 6, 5)

	// armour 0.5, penetration 0: effectiveness 1 - max(0.5-0, 0) = 0.5
	target.armour = 0.5
	target.OnBeingDamaged(10, 0)
	// deviation is zero in tests, so the roll is exactly the damage
	want := 100 - 10*(1-0.5)
	if target.Health() != want {
		t.Errorf("health = %v, want %v", target.Health(), want)
	}

	// full penetration ignores armour
	target.OnBeingDamaged(10, 0.5)
	want -= 10
	if target.Health() != want {
		t.Errorf("health = %v after penetrating hit, want %v", target.Health(), want)
	}
}

func TestLethalDamageKills(t *testing.T) {
	tw := newTestWorld(t)
	target := spawnTank(t, tw, tw.enemy, 6, 5)
	target.armour = 0
	target.OnBeingDamaged(1000, 0)
	if target.Alive() {
		t.Fatal("overkilled unit survives")
	}
	if target.Health() != 0 {
		t.Errorf("dead unit health = %v, want 0", target.Health())
	}
}

func TestImmortalLocalUnitsIgnoreDamage(t *testing.T) {
	tw := newTestWorld(t)
	tw.ctx.Settings.ImmortalPlayerUnits = true
	own := spawnTank(t, tw, tw.player, 5, 5)
	own.OnBeingDamaged(1000, 0)
	if !own.Alive() || own.Health() != own.MaxHealth() {
		t.Error("immortal local unit took damage")
	}
	// the option shields only the local human's units
	hostile := spawnTank(t, tw, tw.enemy, 6, 5)
	hostile.armour = 0
	hostile.OnBeingDamaged(1000, 0)
	if hostile.Alive() {
		t.Error("immortality leaked to enemy units")
	}
}

func TestFactionHostilityIsSymmetric(t *testing.T) {
	tw := newTestWorld(t)
	if !tw.faction.IsEnemy(tw.enemyF) || !tw.enemyF.IsEnemy(tw.faction) {
		t.Fatal("war declaration is not symmetric")
	}
	tw.faction.CeaseFire(tw.enemyF)
	if tw.faction.IsEnemy(tw.enemyF) || tw.enemyF.IsEnemy(tw.faction) {
		t.Fatal("cease fire is not symmetric")
	}
	tw.faction.StartAlliance(tw.enemyF)
	if _, friendly := tw.faction.FriendlyFactions[tw.enemyF.ID]; !friendly {
		t.Error("alliance not recorded")
	}
	if _, friendly := tw.enemyF.FriendlyFactions[tw.faction.ID]; !friendly {
		t.Error("alliance not symmetric")
	}
}
