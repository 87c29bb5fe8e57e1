package game

import "math"

const (
	separationStrength = 50.0
	angleSnapDist      = 0.001
	angleSnapVel       = 0.01
	airSnapDelta       = 0.5
	airArriveSlack     = 5.0
	airBrakeFactor     = 0.95
	airStopSpeed       = 0.05
)

// angularStep drives angle toward target with an accel-limited controller
// that brakes once the remaining error fits inside the stopping distance.
func angularStep(angle, vel *float64, target, accel, maxVel, dt float64) {
	diff := angleDiff(target, *angle)
	dist := math.Abs(diff)
	if dist <= angleSnapDist && math.Abs(*vel) <= angleSnapVel {
		*angle = normalizeAngle(target)
		*vel = 0
		return
	}
	stopping := (*vel * *vel) / (2 * accel)
	if dist <= stopping {
		*vel -= sign(*vel) * accel * dt
	} else {
		*vel += sign(diff) * accel * dt
	}
	*vel = clamp(*vel, -maxVel, maxVel)
	*angle = normalizeAngle(*angle + *vel*dt)
}

func (u *Unit) rotate(dt, target float64) {
	angularStep(&u.Angle, &u.AngVel, target, u.Type.AngAccel, u.Type.AngMax, dt)
}

func (u *Unit) rotateTurret(dt, target float64) {
	angularStep(&u.TurretAngle, &u.TurretAngVel, target, u.Type.TurretAcc, u.Type.TurretMax, dt)
}

// driveGround moves along the hull heading. Speed is scaled by how well the
// hull points at goal, and brakes early when smoothStop is set.
func (u *Unit) driveGround(dt float64, goal Vec2, stopRadius float64, smoothStop bool) {
	dist := u.Pos.Dist(goal)
	effective := math.Max(0, dist-stopRadius)
	heading := HeadingTo(u.Pos.X, u.Pos.Y, goal.X, goal.Y)
	factor := math.Max(0, math.Cos(math.Abs(angleDiff(heading, u.Angle))/2))
	target := u.Type.MaxSpeed * factor * factor

	if smoothStop {
		stopDist := (u.Vel * u.Vel) / (2 * u.Type.Accel)
		if effective <= stopDist {
			target = 0
		}
	}
	if u.Vel < target {
		u.Vel = math.Min(target, u.Vel+u.Type.Accel*dt)
	} else {
		u.Vel = math.Max(target, u.Vel-u.Type.Accel*dt)
	}
	u.Pos.X += math.Cos(u.Angle) * u.Vel * dt
	u.Pos.Y += math.Sin(u.Angle) * u.Vel * dt
}

// driveAir steers the velocity vector toward goal with exponential
// relaxation, giving drift instead of the ground model's hull steering.
func (u *Unit) driveAir(dt float64, goal Vec2, stopRadius float64, smoothStop bool) {
	dx, dy := goal.X-u.Pos.X, goal.Y-u.Pos.Y
	dist := math.Hypot(dx, dy)
	if dist < airArriveSlack+stopRadius {
		u.VX *= airBrakeFactor
		u.VY *= airBrakeFactor
		if math.Abs(u.VX) <= airStopSpeed && math.Abs(u.VY) <= airStopSpeed {
			u.VX, u.VY = 0, 0
			return
		}
		u.Pos.X += u.VX * dt
		u.Pos.Y += u.VY * dt
		return
	}

	speed := u.Type.MaxSpeed
	if smoothStop {
		v2 := u.VX*u.VX + u.VY*u.VY
		if dist <= v2/(2*u.Type.Accel) {
			speed = 0
		}
	}
	heading := math.Atan2(dy, dx)
	wantX, wantY := math.Cos(heading)*speed, math.Sin(heading)*speed
	ddx, ddy := wantX-u.VX, wantY-u.VY
	if math.Hypot(ddx, ddy) < airSnapDelta {
		u.VX, u.VY = wantX, wantY
	} else {
		k := math.Min(1, u.Type.TurnSense*dt)
		u.VX += ddx * k
		u.VY += ddy * k
	}
	u.Pos.X += u.VX * dt
	u.Pos.Y += u.VY * dt
	u.rotate(dt, heading)
}

// separate pushes u away from overlapping units of the same domain.
func (w *World) separate(u *Unit, dt float64) {
	var px, py float64
	for _, o := range w.units {
		if o == u || !o.Alive || o.Type.Domain != u.Type.Domain {
			continue
		}
		dx, dy := u.Pos.X-o.Pos.X, u.Pos.Y-o.Pos.Y
		d := math.Hypot(dx, dy)
		minDist := u.Radius() + o.Radius()
		if d >= minDist {
			continue
		}
		var a float64
		if d == 0 {
			a = w.rng.Float64() * 2 * math.Pi
		} else {
			a = math.Atan2(dy, dx)
		}
		force := (minDist - d) / minDist * separationStrength
		px += math.Cos(a) * force
		py += math.Sin(a) * force
	}
	u.Pos.X += px * dt
	u.Pos.Y += py * dt
}

// confine clamps u to the world and keeps ground units out of fortress
// bodies once they have finished deploying.
func (w *World) confine(u *Unit) {
	r := u.Radius()
	u.Pos.X = clamp(u.Pos.X, r, w.Cfg.Width-r)
	u.Pos.Y = clamp(u.Pos.Y, r, w.Cfg.Height-r)
	if u.Type.Domain != DomainGround || u.State == StateDeploying {
		return
	}
	for _, f := range w.fortresses {
		if f == nil {
			continue
		}
		minDist := r + f.Size
		if u.Pos.Dist(f.Pos) >= minDist {
			continue
		}
		a := HeadingTo(f.Pos.X, f.Pos.Y, u.Pos.X, u.Pos.Y)
		u.Pos = Vec2{X: f.Pos.X + math.Cos(a)*minDist, Y: f.Pos.Y + math.Sin(a)*minDist}
	}
}
