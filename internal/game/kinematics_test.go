package game

import (
	"math"
	"testing"
)

func TestAngularStep_ConvergesWithoutOvershoot(t *testing.T) {
	for _, c := range []struct {
		name          string
		accel, maxVel float64
		target        float64
		secs          float64
	}{
		{"shotgun hull", Shotgun.AngAccel, Shotgun.AngMax, math.Pi / 2, 10},
		{"sniper hull", Sniper.AngAccel, Sniper.AngMax, math.Pi / 2, 20},
		{"wraps west", Shotgun.AngAccel, Shotgun.AngMax, -3 * math.Pi / 4, 10},
	} {
		t.Run(c.name, func(t *testing.T) {
			angle, vel := 0.0, 0.0
			for i := 0; i < int(c.secs/simDT); i++ {
				angularStep(&angle, &vel, c.target, c.accel, c.maxVel, simDT)
				if math.Abs(vel) > c.maxVel+1e-9 {
					t.Fatalf("tick %d: |vel| %.3f exceeds cap %.3f", i, vel, c.maxVel)
				}
			}
			if math.Abs(angleDiff(c.target, angle)) > angleSnapDist || vel != 0 {
				t.Fatalf("did not settle: angle=%.4f vel=%.4f target=%.4f", angle, vel, c.target)
			}
		})
	}
}

func TestAngularStep_TakesShortWay(t *testing.T) {
	angle, vel := 3.0, 0.0
	angularStep(&angle, &vel, -3.0, 2, 6, simDT)
	if vel <= 0 {
		t.Fatalf("turning 3.0 -> -3.0 should go through pi (positive), vel=%.3f", vel)
	}
}

func TestGroundMove_ArrivesAndIdles(t *testing.T) {
	cases := []struct {
		name    string
		unit    string
		goal    Vec2
		seconds float64
	}{
		{"shotgun straight", "shotgun", Vec2{X: 1500, Y: 2000}, 15},
		{"shotgun diagonal", "shotgun", Vec2{X: 1300, Y: 2300}, 15},
		{"sniper straight", "sniper", Vec2{X: 1300, Y: 2000}, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ts := NewTestSim(WithBlueUnit(c.unit, 1000, 2000))
			u := ts.Unit(SideBlue, 0)
			if _, err := ts.World.OrderUnit(SideBlue, u.ID, PointRef(c.goal.X, c.goal.Y)); err != nil {
				t.Fatalf("order: %v", err)
			}
			ts.RunSeconds(c.seconds)
			if u.State != StateIdle {
				t.Fatalf("state = %s after %.0fs, pos=(%.1f,%.1f)", u.State, c.seconds, u.Pos.X, u.Pos.Y)
			}
			if d := u.Pos.Dist(c.goal); d >= arriveDist {
				t.Fatalf("stopped %.1fpx from goal", d)
			}
			if u.Speed() >= arriveSpeed {
				t.Fatalf("still moving at %.1f", u.Speed())
			}
		})
	}
}

func TestGroundMove_SpeedCap(t *testing.T) {
	ts := NewTestSim(WithBlueUnit("shotgun", 1000, 2000))
	u := ts.Unit(SideBlue, 0)
	ts.World.Order(SideBlue, u.ID, PointRef(3000, 2000))
	for i := 0; i < 600; i++ {
		ts.RunTicks(1)
		if u.Vel > Shotgun.MaxSpeed+1e-9 {
			t.Fatalf("tick %d: vel %.2f exceeds max %.0f", i, u.Vel, Shotgun.MaxSpeed)
		}
	}
}

func TestGroundMove_SlowsWhileTurning(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	u, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1000, Y: 2000}, 0)
	// Goal directly behind: cos(pi/2)^2 = 0, so no forward drive at all.
	u.driveGround(simDT, Vec2{X: 500, Y: 2000}, 0, true)
	if u.Vel > 1e-9 {
		t.Fatalf("vel = %.3g, want ~0 while facing away", u.Vel)
	}
}

func TestAirMove_SmoothStop(t *testing.T) {
	ts := NewTestSim(WithBlueUnit("drone", 1000, 2000))
	u := ts.Unit(SideBlue, 0)
	goal := Vec2{X: 2000, Y: 2500}
	ts.World.Order(SideBlue, u.ID, PointRef(goal.X, goal.Y))

	tick := ts.RunUntil(func(ts *TestSim) bool { return u.State == StateIdle }, 60*10)
	if tick < 0 {
		t.Fatalf("drone never arrived, pos=(%.1f,%.1f) v=(%.1f,%.1f)", u.Pos.X, u.Pos.Y, u.VX, u.VY)
	}
	if d := u.Pos.Dist(goal); d >= arriveDist {
		t.Fatalf("arrived %.1fpx from goal", d)
	}
	if secs := float64(tick) * simDT; secs < 3 || secs > 7 {
		t.Fatalf("arrival at %.2fs, expected roughly 5s", secs)
	}
}

func TestAirMove_DriftsAroundCorners(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	u, _ := w.PlaceUnit(SideBlue, "drone", Vec2{X: 1000, Y: 2000}, 0)
	u.VX = Drone.MaxSpeed
	// Hard turn north: velocity relaxes rather than snapping.
	u.driveAir(simDT, Vec2{X: 1000, Y: 1000}, 0, false)
	if u.VX <= 0 || u.VY >= 0 {
		t.Fatalf("expected blended velocity, got (%.1f,%.1f)", u.VX, u.VY)
	}
	if math.Abs(u.VY) >= Drone.MaxSpeed {
		t.Fatal("velocity must not snap onto the new heading in one tick")
	}
}

func TestSeparation_SameDomainOnly(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	a, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 2000, Y: 2000}, 0)
	w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 2020, Y: 2000}, 0)
	d, _ := w.PlaceUnit(SideBlue, "drone", Vec2{X: 2000, Y: 2000}, 0)

	w.separate(a, simDT)
	if a.Pos.X >= 2000 {
		t.Fatalf("overlapping shotgun should be pushed west, x=%.3f", a.Pos.X)
	}
	before := d.Pos
	w.separate(d, simDT)
	if d.Pos != before {
		t.Fatal("a drone must not be pushed by ground units")
	}
}

func TestConfine_KeepsGroundOutOfFortress(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	f := w.Fortress(SideBlue)
	u, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: f.Pos.X + 50, Y: f.Pos.Y}, 0)
	w.confine(u)
	if d := u.Pos.Dist(f.Pos); d < f.Size+u.Radius()-1e-9 {
		t.Fatalf("ground unit left inside fortress, dist=%.1f", d)
	}

	d, _ := w.PlaceUnit(SideBlue, "drone", Vec2{X: f.Pos.X + 50, Y: f.Pos.Y}, 0)
	w.confine(d)
	if d.Pos.X != f.Pos.X+50 {
		t.Fatal("drones fly over fortresses")
	}

	edge, _ := w.PlaceUnit(SideRed, "sniper", Vec2{X: 3000, Y: -100}, 0)
	w.confine(edge)
	if edge.Pos.Y != Sniper.Radius {
		t.Fatalf("y = %.1f, want clamp at radius", edge.Pos.Y)
	}
}

func TestDeploy_LeavesFortressThenTakesOrder(t *testing.T) {
	ts := NewTestSim(WithInitialAP(100))
	res := ts.World.Deploy(SideBlue, "shotgun", PointRef(1200, 2000))
	u := ts.Unit(SideBlue, 0)
	if u == nil {
		t.Fatalf("deploy failed: %s", res)
	}
	f := ts.World.Fortress(SideBlue)
	tick := ts.RunUntil(func(ts *TestSim) bool { return u.State != StateDeploying }, 60*10)
	if tick < 0 {
		t.Fatalf("still deploying at (%.1f,%.1f)", u.Pos.X, u.Pos.Y)
	}
	if u.State != StateMovingToPos {
		t.Fatalf("post-deploy state = %s, want moving_to_pos", u.State)
	}
	if d := u.Pos.Dist(f.Pos); d < f.Size+u.Radius() {
		t.Fatalf("finished deploying inside fortress, dist=%.1f", d)
	}
}

func TestDeploy_RedExitsWest(t *testing.T) {
	ts := NewTestSim(WithInitialAP(100))
	ts.World.Deploy(SideRed, "drone", PointRef(4000, 2000))
	u := ts.Unit(SideRed, 0)
	ts.RunUntil(func(ts *TestSim) bool { return u.State != StateDeploying }, 60*5)
	if u.Pos.X >= ts.World.Fortress(SideRed).Pos.X {
		t.Fatalf("red unit should exit toward the west, x=%.1f", u.Pos.X)
	}
}
