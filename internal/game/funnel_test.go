package game

import (
	"errors"
	"strings"
	"testing"
)

// assertSingleOrder checks the structural exclusion between move point,
// engage target and leader, plus the state they imply.
func assertSingleOrder(t *testing.T, u *Unit) {
	t.Helper()
	set := 0
	if _, ok := u.Order.TargetPos(); ok {
		set++
	}
	if u.Order.CmdTarget() != NoActor {
		set++
	}
	if u.Order.FollowTarget() != NoActor {
		set++
	}
	if set > 1 {
		t.Fatalf("unit %d carries %d orders at once: %+v", u.ID, set, u.Order)
	}
	if u.State != StateDeploying && u.State != u.Order.state() {
		t.Fatalf("unit %d state %s does not match order %s", u.ID, u.State, u.Order.Kind)
	}
}

func TestFunnel_MutualExclusion(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	u, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1000, Y: 2000}, 0)
	friend, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 1100, Y: 2000}, 0)
	enemy, _ := w.PlaceUnit(SideRed, "sniper", Vec2{X: 1500, Y: 2000}, 0)

	refs := []TargetRef{
		PointRef(2000, 1000),
		ActorRef(enemy.ID),
		ActorRef(friend.ID),
		PointRef(6000, 2000), // red fortress
		PointRef(0, 2000),    // own fortress, rejected
		ActorRef(9999),       // unknown, rejected
		PointRef(1200, 1500),
	}
	for _, ref := range refs {
		w.Order(SideBlue, u.ID, ref)
		assertSingleOrder(t, u)
	}
	if p, ok := u.Order.TargetPos(); !ok || p.X != 1200 {
		t.Fatalf("last accepted order should be the move, got %+v", u.Order)
	}
}

func TestFunnel_OrderLeavesFollowingImmediately(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	leader, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 1000, Y: 2000}, 0)
	u, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 900, Y: 2000}, 0)

	if _, err := w.OrderUnit(SideBlue, u.ID, ActorRef(leader.ID)); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if u.State != StateFollowing {
		t.Fatalf("state = %s, want following", u.State)
	}

	if _, err := w.OrderUnit(SideBlue, u.ID, PointRef(1500, 1500)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if u.State == StateFollowing || u.Order.FollowTarget() != NoActor {
		t.Fatalf("unit still following after new order: state=%s order=%+v", u.State, u.Order)
	}
	if u.State != StateMovingToPos {
		t.Fatalf("state = %s, want moving_to_pos", u.State)
	}
}

func TestFunnel_DeployInsufficientAP(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.InitialAP = 49
	w := NewWorld(cfg)
	before := len(w.Units())

	res := w.Deploy(SideBlue, "sniper", PointRef(1000, 2000))
	if !strings.Contains(res, "insufficient AP") {
		t.Fatalf("unexpected result %q", res)
	}
	if got := w.Fortress(SideBlue).AP; got != 49 {
		t.Fatalf("AP debited on failure: %.1f", got)
	}
	if len(w.Units()) != before {
		t.Fatal("unit spawned despite insufficient AP")
	}
}

func TestFunnel_DeployValidatesBeforeDebit(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.InitialAP = 100
	w := NewWorld(cfg)

	// Snipers cannot hit drones.
	enemy, _ := w.PlaceUnit(SideRed, "drone", Vec2{X: 3000, Y: 2000}, 0)
	_, _, err := w.DeployUnit(SideBlue, "sniper", ActorRef(enemy.ID))
	if !errors.Is(err, ErrCannotAttack) {
		t.Fatalf("err = %v, want ErrCannotAttack", err)
	}
	if w.Fortress(SideBlue).AP != 100 {
		t.Fatal("AP debited for a rejected deploy")
	}

	_, _, err = w.DeployUnit(SideBlue, "sniper", PointRef(0, 2000))
	if !errors.Is(err, ErrOwnFortress) {
		t.Fatalf("err = %v, want ErrOwnFortress", err)
	}
}

func TestFunnel_DeploySuccess(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.InitialAP = 100
	w := NewWorld(cfg)

	u, desc, err := w.DeployUnit(SideBlue, "shotgun", PointRef(6000, 2000))
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if w.Fortress(SideBlue).AP != 60 {
		t.Fatalf("AP = %.1f, want 60", w.Fortress(SideBlue).AP)
	}
	if u.State != StateDeploying {
		t.Fatalf("fresh unit state = %s, want deploying", u.State)
	}
	if u.Order.CmdTarget() != w.Fortress(SideRed).ID {
		t.Fatalf("deploy onto enemy fortress should engage it, got %+v", u.Order)
	}
	if desc != "attacking enemy fortress" {
		t.Fatalf("desc = %q", desc)
	}
}

func TestFunnel_DeployLockedAndUnknown(t *testing.T) {
	ts := NewTestSim(WithInitialAP(300), WithUnlocked(SideBlue, "sniper"))
	w := ts.World

	if _, _, err := w.DeployUnit(SideRed, "drone", PointRef(5500, 500)); err != nil {
		t.Fatalf("red roster is unrestricted: %v", err)
	}
	if _, _, err := w.DeployUnit(SideBlue, "drone", PointRef(500, 500)); !errors.Is(err, ErrTypeLocked) {
		t.Fatalf("err = %v, want ErrTypeLocked", err)
	}
	if _, _, err := w.DeployUnit(SideBlue, "tank", PointRef(500, 500)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	w.Fortress(SideBlue).Alive = false
	if _, _, err := w.DeployUnit(SideBlue, "sniper", PointRef(500, 500)); !errors.Is(err, ErrFortressDown) {
		t.Fatalf("err = %v, want ErrFortressDown", err)
	}
}

func TestFunnel_FollowValidation(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	a, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 1000, Y: 2000}, 0)
	b, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1100, Y: 2000}, 0)
	c, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1200, Y: 2000}, 0)

	if _, err := w.OrderUnit(SideBlue, a.ID, ActorRef(a.ID)); !errors.Is(err, ErrFollowCycle) {
		t.Fatalf("self-follow err = %v", err)
	}
	if _, err := w.OrderUnit(SideBlue, b.ID, ActorRef(a.ID)); err != nil {
		t.Fatalf("b follows a: %v", err)
	}
	if _, err := w.OrderUnit(SideBlue, c.ID, ActorRef(b.ID)); err != nil {
		t.Fatalf("c follows b: %v", err)
	}
	// a -> c would close a -> c -> b -> a.
	if _, err := w.OrderUnit(SideBlue, a.ID, ActorRef(c.ID)); !errors.Is(err, ErrFollowCycle) {
		t.Fatalf("cycle err = %v", err)
	}
	if a.State != StateIdle {
		t.Fatalf("rejected order must leave a untouched, state=%s", a.State)
	}
	fid := w.Fortress(SideBlue).ID
	if _, err := w.OrderUnit(SideBlue, a.ID, ActorRef(fid)); !errors.Is(err, ErrOwnFortress) {
		t.Fatalf("follow fortress err = %v", err)
	}
}

func TestFunnel_StaleReferences(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	u, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 1000, Y: 2000}, 0)
	enemy, _ := w.PlaceUnit(SideRed, "sniper", Vec2{X: 1400, Y: 2000}, 0)
	enemy.Alive = false

	if _, err := w.OrderUnit(SideBlue, u.ID, ActorRef(enemy.ID)); !errors.Is(err, ErrTargetGone) {
		t.Fatalf("err = %v, want ErrTargetGone", err)
	}
	if _, err := w.OrderUnit(SideRed, u.ID, PointRef(1, 1)); !errors.Is(err, ErrUnitNotFound) {
		t.Fatalf("ordering an enemy unit: err = %v", err)
	}
	if _, err := w.OrderUnit(SideBlue, u.ID, TargetRef{}); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("empty ref: err = %v", err)
	}
	if res := w.Order(SideBlue, 4242, PointRef(1, 1)); !strings.HasPrefix(res, "order rejected") {
		t.Fatalf("result = %q", res)
	}
}

func TestFunnel_DroneCannotTargetDrone(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	d, _ := w.PlaceUnit(SideBlue, "drone", Vec2{X: 1000, Y: 2000}, 0)
	e, _ := w.PlaceUnit(SideRed, "drone", Vec2{X: 1200, Y: 2000}, 0)
	if _, err := w.OrderUnit(SideBlue, d.ID, ActorRef(e.ID)); !errors.Is(err, ErrCannotAttack) {
		t.Fatalf("err = %v, want ErrCannotAttack", err)
	}
}

func TestFunnel_SetAutoScan(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	u, _ := w.PlaceUnit(SideBlue, "sniper", Vec2{X: 1000, Y: 2000}, 0)
	if res := w.SetAutoScan(SideBlue, u.ID, true); !strings.Contains(res, "autoscan on") || !u.AutoScan {
		t.Fatalf("result %q autoscan=%v", res, u.AutoScan)
	}
	if res := w.SetAutoScan(SideRed, u.ID, false); !strings.Contains(res, "rejected") {
		t.Fatalf("enemy toggle should be rejected: %q", res)
	}
}
