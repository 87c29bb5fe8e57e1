package game

import "math"

// UnitState is the per-unit state machine position.
type UnitState int

const (
	StateDeploying UnitState = iota
	StateMovingToPos
	StateApproaching
	StateFollowing
	StateIdle
)

func (s UnitState) String() string {
	switch s {
	case StateDeploying:
		return "deploying"
	case StateMovingToPos:
		return "moving_to_pos"
	case StateApproaching:
		return "approaching_cmd_target"
	case StateFollowing:
		return "following"
	case StateIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// OrderKind tags the active Order variant.
type OrderKind int

const (
	OrderIdle OrderKind = iota
	OrderMoveTo
	OrderEngage
	OrderFollow
)

func (k OrderKind) String() string {
	switch k {
	case OrderMoveTo:
		return "move"
	case OrderEngage:
		return "engage"
	case OrderFollow:
		return "follow"
	default:
		return "idle"
	}
}

// Order is the single authoritative instruction a unit carries. Only the
// field matching Kind is meaningful, so a unit can never hold a move point
// and an engage target at the same time.
type Order struct {
	Kind   OrderKind
	Pos    Vec2    // OrderMoveTo
	Target ActorID // OrderEngage, OrderFollow
}

func MoveOrder(p Vec2) Order        { return Order{Kind: OrderMoveTo, Pos: p} }
func EngageOrder(id ActorID) Order  { return Order{Kind: OrderEngage, Target: id} }
func FollowOrder(id ActorID) Order  { return Order{Kind: OrderFollow, Target: id} }

// TargetPos returns the move point, if the order is a move.
func (o Order) TargetPos() (Vec2, bool) {
	return o.Pos, o.Kind == OrderMoveTo
}

// CmdTarget returns the engage target or NoActor.
func (o Order) CmdTarget() ActorID {
	if o.Kind == OrderEngage {
		return o.Target
	}
	return NoActor
}

// FollowTarget returns the leader or NoActor.
func (o Order) FollowTarget() ActorID {
	if o.Kind == OrderFollow {
		return o.Target
	}
	return NoActor
}

func (o Order) state() UnitState {
	switch o.Kind {
	case OrderMoveTo:
		return StateMovingToPos
	case OrderEngage:
		return StateApproaching
	case OrderFollow:
		return StateFollowing
	default:
		return StateIdle
	}
}

const (
	arriveDist        = 15.0
	arriveSpeed       = 5.0
	followGap         = 40.0
	deployClearance   = 20.0
	grudgeWindow      = 2.0 // seconds
	approachStopRatio = 0.8
)

// Unit is a mobile combat actor.
type Unit struct {
	Body
	Type  *UnitType
	Owner Side // fortress credited for this unit's kills

	State      UnitState
	Order      Order
	AutoTarget ActorID // scan-derived, never authoritative
	AutoScan   bool

	// Ground kinematics.
	Vel          float64
	Angle        float64
	AngVel       float64
	TurretAngle  float64
	TurretAngVel float64
	// Air kinematics.
	VX, VY float64

	LastShot float64 // game seconds

	deployFrom Vec2
	deployR    float64
}

func (u *Unit) Category() Category { return u.Type.Category }
func (u *Unit) Radius() float64    { return u.Type.Radius }

// Speed is the scalar speed for either domain.
func (u *Unit) Speed() float64 {
	if u.Type.Domain == DomainAir {
		return math.Hypot(u.VX, u.VY)
	}
	return math.Abs(u.Vel)
}

// setOrder clears the previous order and installs o. A deploying unit keeps
// deploying and picks the order up once clear of its fortress.
func (u *Unit) setOrder(o Order) {
	u.Order = Order{}
	u.AutoTarget = NoActor
	u.Order = o
	if u.State != StateDeploying {
		u.State = o.state()
	}
}

func (u *Unit) clearOrder() {
	u.Order = Order{}
	if u.State != StateDeploying {
		u.State = StateIdle
	}
}

// PriorityTarget returns the live manual target, else the live auto target.
func (w *World) PriorityTarget(u *Unit) Target {
	if id := u.Order.CmdTarget(); id != NoActor {
		if t := w.Lookup(id); t != nil {
			return t
		}
	}
	if t := w.Lookup(u.AutoTarget); t != nil {
		return t
	}
	return nil
}

// stepUnit advances one unit through its state machine.
func (w *World) stepUnit(u *Unit, dt float64) {
	if !u.Alive {
		return
	}
	w.separate(u, dt)
	w.confine(u)

	oldPos, oldAngle, oldTurret := u.Pos, u.Angle, u.TurretAngle
	prev := u.State

	switch u.State {
	case StateDeploying:
		w.stepDeploying(u, dt)
	case StateMovingToPos:
		w.stepMoving(u, dt)
	case StateApproaching:
		w.stepApproaching(u, dt)
	case StateFollowing:
		w.stepFollowing(u, dt)
	default:
		w.stepIdle(u, dt)
	}

	if u.Alive {
		u.decay(dt, oldPos, oldAngle, oldTurret)
	}
	if u.State != prev {
		w.Log.Add(w.Tick, actorLabel(u.Side, u.ID), u.Side.String(), "state", "change",
			prev.String()+" -> "+u.State.String(), 0)
	}
}

func (w *World) stepDeploying(u *Unit, dt float64) {
	exit := Vec2{
		X: u.deployFrom.X + math.Cos(u.Angle)*u.deployR,
		Y: u.deployFrom.Y + math.Sin(u.Angle)*u.deployR,
	}
	if u.Type.Domain == DomainAir {
		u.driveAir(dt, exit, 0, false)
	} else {
		u.driveGround(dt, exit, 0, false)
	}
	if u.Pos.Dist(u.deployFrom) >= u.deployR {
		u.State = u.Order.state()
	}
}

func (w *World) stepMoving(u *Unit, dt float64) {
	goal, ok := u.Order.TargetPos()
	if !ok {
		u.clearOrder()
		return
	}
	if u.Type.Domain == DomainAir {
		u.driveAir(dt, goal, 0, true)
	} else {
		u.rotate(dt, HeadingTo(u.Pos.X, u.Pos.Y, goal.X, goal.Y))
		u.driveGround(dt, goal, 0, true)
		if t := w.resolveAutoTarget(u); t != nil {
			w.aimAndFire(u, t, dt)
		}
	}
	if u.Pos.Dist(goal) < arriveDist && u.Speed() < arriveSpeed {
		u.clearOrder()
	}
}

func (w *World) stepApproaching(u *Unit, dt float64) {
	t := w.Lookup(u.Order.CmdTarget())
	if t == nil {
		u.clearOrder()
		return
	}
	tp := t.body().Pos
	if u.Type.Contact() {
		w.ram(u, t, dt)
		return
	}
	if u.Pos.Dist(tp) > u.Type.AttackRange {
		u.rotate(dt, HeadingTo(u.Pos.X, u.Pos.Y, tp.X, tp.Y))
		u.driveGround(dt, tp, u.Type.AttackRange*approachStopRatio, true)
	}
	w.aimAndFire(u, t, dt)
}

func (w *World) stepFollowing(u *Unit, dt float64) {
	leader, ok := w.Lookup(u.Order.FollowTarget()).(*Unit)
	if !ok || leader == nil {
		u.clearOrder()
		return
	}

	// Engage first: own scan, then whatever the leader is shooting at.
	target := w.resolveAutoTarget(u)
	if target == nil {
		if lt := w.PriorityTarget(leader); lt != nil && CanAttack(u.Type, lt) &&
			u.Pos.Dist(lt.body().Pos) <= u.Type.AttackRange {
			target = lt
		}
	}
	if target != nil && u.Type.Contact() {
		w.ram(u, target, dt)
		return
	}

	gap := leader.Radius() + u.Radius() + followGap
	lp := leader.Pos
	if u.Type.Domain == DomainAir {
		u.driveAir(dt, lp, gap, true)
	} else if u.Pos.Dist(lp) > gap {
		u.rotate(dt, HeadingTo(u.Pos.X, u.Pos.Y, lp.X, lp.Y))
		u.driveGround(dt, lp, gap, true)
	} else {
		u.rotate(dt, leader.Angle)
	}
	if target != nil {
		w.aimAndFire(u, target, dt)
	}
}

func (w *World) stepIdle(u *Unit, dt float64) {
	t := w.resolveAutoTarget(u)
	if t == nil {
		return
	}
	if u.Type.Contact() {
		w.ram(u, t, dt)
		return
	}
	w.aimAndFire(u, t, dt)
}

// decay bleeds off any speed the state logic did not use this tick.
func (u *Unit) decay(dt float64, oldPos Vec2, oldAngle, oldTurret float64) {
	if u.Type.Domain == DomainAir {
		if u.Pos == oldPos && (u.VX != 0 || u.VY != 0) {
			u.driveAir(dt, u.Pos, 0, true)
		}
	} else if u.Pos == oldPos && u.Vel != 0 {
		u.driveGround(dt, u.Pos, 0, true)
	}
	if u.Angle == oldAngle && u.AngVel != 0 {
		u.rotate(dt, u.Angle)
	}
	if u.Type.HasTurret() && u.TurretAngle == oldTurret && u.TurretAngVel != 0 {
		u.rotateTurret(dt, u.TurretAngle)
	}
}
