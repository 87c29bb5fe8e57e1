package game

import "testing"

func TestResolver_GrudgeBeatsRank(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	shotgun, _ := w.PlaceUnit(SideRed, "shotgun", Vec2{X: 3000, Y: 2000}, 0)
	sniper, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 3200, Y: 2000}, 0) // rank 2, farther
	drone, _ := w.PlaceUnit(SideBlue, "drone", Vec2{X: 3100, Y: 2000}, 0)   // rank 1, nearer

	shotgun.takeDamage(20, sniper.ID, w.Time)

	got := w.resolveAutoTarget(shotgun)
	if got == nil || got.body().ID != sniper.ID {
		t.Fatalf("expected grudge target %d, got %v", sniper.ID, got)
	}

	// Once the grudge expires the type rank decides again.
	w.Time += grudgeWindow + 0.5
	shotgun.AutoTarget = NoActor
	got = w.resolveAutoTarget(shotgun)
	if got == nil || got.body().ID != drone.ID {
		t.Fatalf("expected rank-1 drone %d after grudge expiry, got %v", drone.ID, got)
	}
}

func TestResolver_TieBrokenByDistance(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	shotgun, _ := w.PlaceUnit(SideRed, "shotgun", Vec2{X: 3000, Y: 2000}, 0)
	w.PlaceUnit(SideBlue, "sniper", Vec2{X: 3200, Y: 2000}, 0)
	near, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 3000, Y: 2150}, 0)

	got := w.resolveAutoTarget(shotgun)
	if got == nil || got.body().ID != near.ID {
		t.Fatalf("expected nearest vehicle %d, got %v", near.ID, got)
	}
}

func TestResolver_ManualTargetWins(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	shotgun, _ := w.PlaceUnit(SideRed, "shotgun", Vec2{X: 3000, Y: 2000}, 0)
	w.PlaceUnit(SideBlue, "drone", Vec2{X: 3050, Y: 2000}, 0)
	far, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 3800, Y: 2000}, 0)

	shotgun.setOrder(EngageOrder(far.ID))
	got := w.resolveAutoTarget(shotgun)
	if got == nil || got.body().ID != far.ID {
		t.Fatalf("manual target must win, got %v", got)
	}
	if shotgun.AutoTarget != NoActor {
		t.Fatal("resolver must not scan while a manual target is live")
	}
}

func TestResolver_AutoScanOff(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	sniper, _ := w.PlaceUnit(SideRed, "sniper", Vec2{X: 3000, Y: 2000}, 0)
	w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 3100, Y: 2000}, 0)

	if got := w.resolveAutoTarget(sniper); got != nil {
		t.Fatalf("sniper does not scan by default, got %v", got)
	}
	w.SetAutoScan(SideRed, sniper.ID, true)
	if got := w.resolveAutoTarget(sniper); got == nil {
		t.Fatal("sniper with autoscan on should find the shotgun")
	}
}

func TestResolver_KeepsLiveTarget(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	shotgun, _ := w.PlaceUnit(SideRed, "shotgun", Vec2{X: 3000, Y: 2000}, 0)
	vehicle, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 3100, Y: 2000}, 0)

	if got := w.resolveAutoTarget(shotgun); got == nil || got.body().ID != vehicle.ID {
		t.Fatalf("expected vehicle, got %v", got)
	}
	// A higher-priority drone arriving does not interrupt a valid engagement.
	w.PlaceUnit(SideBlue, "drone", Vec2{X: 3050, Y: 2000}, 0)
	if got := w.resolveAutoTarget(shotgun); got == nil || got.body().ID != vehicle.ID {
		t.Fatalf("current engagement should be kept, got %v", got)
	}
	vehicle.Alive = false
	if got := w.resolveAutoTarget(shotgun); got == nil || got.Category() != CategoryDrone {
		t.Fatalf("expected rescan onto drone, got %v", got)
	}
}

func TestResolver_OutOfRangeIgnored(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	shotgun, _ := w.PlaceUnit(SideRed, "shotgun", Vec2{X: 3000, Y: 2000}, 0)
	w.PlaceUnit(SideBlue, "sniper", Vec2{X: 3000 + Shotgun.AttackRange + 1, Y: 2000}, 0)
	if got := w.resolveAutoTarget(shotgun); got != nil {
		t.Fatalf("target beyond range must be ignored, got %v", got)
	}
}

func TestResolver_KeepsTargetThatLeavesRange(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	shotgun, _ := w.PlaceUnit(SideRed, "shotgun", Vec2{X: 3000, Y: 2000}, 0)
	a, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 3100, Y: 2000}, 0)
	b, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 3000, Y: 2200}, 0)

	if got := w.resolveAutoTarget(shotgun); got == nil || got.body().ID != a.ID {
		t.Fatalf("expected nearest sniper %d, got %v", a.ID, got)
	}

	a.Pos = Vec2{X: 3400, Y: 2000}
	if got := w.resolveAutoTarget(shotgun); got == nil || got.body().ID != a.ID {
		t.Fatalf("live target out of range must be kept (a=%d b=%d), got %v", a.ID, b.ID, got)
	}
	if shotgun.AutoTarget != a.ID {
		t.Fatalf("autoTarget changed to %d", shotgun.AutoTarget)
	}

	// No shot is taken at a target beyond range.
	shotgun.TurretAngle = 0
	lastShot := shotgun.LastShot
	w.aimAndFire(shotgun, a, 1.0/60)
	if shotgun.LastShot != lastShot || len(w.bullets) != 0 {
		t.Fatalf("fired at out-of-range target: bullets=%d", len(w.bullets))
	}

	a.Alive = false
	if got := w.resolveAutoTarget(shotgun); got == nil || got.body().ID != b.ID {
		t.Fatalf("expected rescan onto %d after the target died, got %v", b.ID, got)
	}
}
