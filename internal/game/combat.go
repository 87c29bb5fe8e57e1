package game

import (
	"fmt"
	"math"
)

// --- Combat constants ---

const (
	aimTolerance   = 0.1  // rad of turret error allowed when firing
	lateralMissTol = 15.0 // px: range*sin(err) must stay under this
	bulletHitR     = 25.0 // px hit radius against units
	bulletTrailLen = 5    // positions kept for drawing trails
)

// Bullet is a projectile in flight.
type Bullet struct {
	Origin    Vec2
	Pos       Vec2
	Angle     float64
	VX, VY    float64
	Damage    float64
	Owner     ActorID
	OwnerSide Side
	OwnerType *UnitType
	MaxRange  float64
	Alive     bool

	trail [bulletTrailLen]Vec2
	head  int
	count int
}

// Trail returns recent positions oldest first.
func (b *Bullet) Trail() []Vec2 {
	out := make([]Vec2, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.trail[(b.head-b.count+i+bulletTrailLen)%bulletTrailLen]
	}
	return out
}

func (b *Bullet) pushTrail(p Vec2) {
	b.trail[b.head] = p
	b.head = (b.head + 1) % bulletTrailLen
	if b.count < bulletTrailLen {
		b.count++
	}
}

// aimAndFire traverses the turret toward t and fires once the aim and
// reload gates pass.
func (w *World) aimAndFire(u *Unit, t Target, dt float64) {
	if !u.Type.HasTurret() {
		return
	}
	tp := t.body().Pos
	want := HeadingTo(u.Pos.X, u.Pos.Y, tp.X, tp.Y)
	u.rotateTurret(dt, want)

	dist := u.Pos.Dist(tp)
	if dist > u.Type.AttackRange {
		return
	}
	miss := math.Abs(angleDiff(want, u.TurretAngle))
	if miss >= aimTolerance || dist*math.Sin(miss) >= lateralMissTol {
		return
	}
	if w.Time-u.LastShot < u.Type.ReloadTime {
		return
	}
	w.fire(u)
}

// fire spawns the unit's projectile pattern from the muzzle.
func (w *World) fire(u *Unit) {
	u.LastShot = w.Time
	muzzle := Vec2{
		X: u.Pos.X + math.Cos(u.TurretAngle)*u.Type.MuzzleDist,
		Y: u.Pos.Y + math.Sin(u.TurretAngle)*u.Type.MuzzleDist,
	}
	for i := 0; i < u.Type.Pellets; i++ {
		angle := u.TurretAngle
		speed := u.Type.BulletSpeed
		if u.Type.Pellets > 1 {
			angle += (w.rng.Float64() - 0.5) * 2 * u.Type.SpreadRad
			speed += w.rng.Float64() * u.Type.SpeedJitter
		}
		w.bullets = append(w.bullets, &Bullet{
			Origin:    muzzle,
			Pos:       muzzle,
			Angle:     angle,
			VX:        math.Cos(angle) * speed,
			VY:        math.Sin(angle) * speed,
			Damage:    u.Type.Damage,
			Owner:     u.ID,
			OwnerSide: u.Owner,
			OwnerType: u.Type,
			MaxRange:  u.Type.AttackRange,
			Alive:     true,
		})
	}
	w.emit(Effect{Kind: EffectMuzzle, Pos: muzzle, Side: u.Side, Actor: u.ID})
	w.Log.AddVerbose(w.Tick, actorLabel(u.Side, u.ID), u.Side.String(), "combat", "fire",
		fmt.Sprintf("%d x %s", u.Type.Pellets, u.Type.Key), u.TurretAngle)
}

// stepBullet expires, moves and hit-tests one bullet.
func (w *World) stepBullet(b *Bullet, dt float64) {
	if !b.Alive {
		return
	}
	if b.Pos.Dist(b.Origin) > b.MaxRange ||
		b.Pos.X < 0 || b.Pos.X > w.Cfg.Width || b.Pos.Y < 0 || b.Pos.Y > w.Cfg.Height {
		b.Alive = false
		return
	}
	b.pushTrail(b.Pos)
	b.Pos.X += b.VX * dt
	b.Pos.Y += b.VY * dt

	for _, u := range w.units {
		if !u.Alive || u.Side == b.OwnerSide || !CanAttack(b.OwnerType, u) {
			continue
		}
		if b.Pos.Dist(u.Pos) < bulletHitR {
			b.Alive = false
			w.applyDamage(u, b.Damage, b.Owner, b.OwnerSide)
			w.emit(Effect{Kind: EffectHit, Pos: b.Pos, Side: b.OwnerSide, Actor: u.ID})
			return
		}
	}
	f := w.Fortress(b.OwnerSide.Opponent())
	if f != nil && f.Alive && CanAttack(b.OwnerType, f) && b.Pos.Dist(f.Pos) < f.Size {
		b.Alive = false
		w.applyDamage(f, b.Damage, b.Owner, b.OwnerSide)
		w.emit(Effect{Kind: EffectHit, Pos: b.Pos, Side: b.OwnerSide, Actor: f.ID})
	}
}

// ram closes on t and detonates on contact: damage once, then self-destruct.
func (w *World) ram(u *Unit, t Target, dt float64) {
	tp := t.body().Pos
	if u.Pos.Dist(tp) > u.Radius()+t.Radius() {
		u.driveAir(dt, tp, 0, false)
		if u.Pos.Dist(tp) > u.Radius()+t.Radius() {
			return
		}
	}
	if !CanAttack(u.Type, t) {
		return
	}
	w.applyDamage(t, u.Type.Damage, u.ID, u.Owner)
	u.HP = 0
	u.Alive = false
	w.emit(Effect{Kind: EffectExplosion, Pos: u.Pos, Side: u.Side, Actor: u.ID})
	w.Log.Add(w.Tick, actorLabel(u.Side, u.ID), u.Side.String(), "combat", "detonate",
		actorLabel(t.body().Side, t.body().ID), u.Type.Damage)
}

// applyDamage hits victim and settles deaths: kill credit for units,
// game over for fortresses.
func (w *World) applyDamage(victim Target, amount float64, attacker ActorID, attackerSide Side) {
	b := victim.body()
	if !b.takeDamage(amount, attacker, w.Time) {
		return
	}
	w.emit(Effect{Kind: EffectDeath, Pos: b.Pos, Side: b.Side, Actor: b.ID})
	w.Log.Add(w.Tick, actorLabel(b.Side, b.ID), b.Side.String(), "combat", "kill",
		"by "+actorLabel(attackerSide, attacker), amount)

	switch v := victim.(type) {
	case *Unit:
		w.Stats.Kills[attackerSide]++
		if attackerSide != v.Side && v.Type.Cost > 0 {
			if f := w.Fortress(attackerSide); f != nil {
				gained := f.credit(v.Type.Cost)
				w.Stats.Recycled[attackerSide] += gained
				w.emit(Effect{Kind: EffectKill, Pos: v.Pos, Side: attackerSide, Actor: attacker})
				w.Log.Add(w.Tick, actorLabel(attackerSide, attacker), attackerSide.String(), "ap", "credit",
					fmt.Sprintf("+%.0f for %s", gained, v.Type.Key), f.AP)
			}
		}
	case *Fortress:
		w.finish(v.Side.Opponent())
	}
}
