package game

import (
	"errors"
	"fmt"
	"math"
)

// Validation and stale-reference failures. Callers match with errors.Is;
// the entry points render them into result text.
var (
	ErrNoTarget       = errors.New("no target specified")
	ErrOwnFortress    = errors.New("cannot target own fortress")
	ErrCannotAttack   = errors.New("unit type cannot attack target")
	ErrTargetGone     = errors.New("target does not exist or is dead")
	ErrUnknownType    = errors.New("unknown unit type")
	ErrTypeLocked     = errors.New("unit type is locked")
	ErrInsufficientAP = errors.New("insufficient AP")
	ErrUnitNotFound   = errors.New("no live friendly unit with that id")
	ErrFollowCycle    = errors.New("follow would create a cycle")
	ErrFortressDown   = errors.New("fortress destroyed")
)

// RefKind says how a TargetRef is addressed.
type RefKind int

const (
	RefNone RefKind = iota
	RefPoint
	RefActor
)

// TargetRef is either a world coordinate or an actor id.
type TargetRef struct {
	Kind RefKind
	Pos  Vec2
	ID   ActorID
}

func PointRef(x, y float64) TargetRef { return TargetRef{Kind: RefPoint, Pos: Vec2{X: x, Y: y}} }
func ActorRef(id ActorID) TargetRef   { return TargetRef{Kind: RefActor, ID: id} }

func (r TargetRef) String() string {
	switch r.Kind {
	case RefPoint:
		return fmt.Sprintf("(%d, %d)", int(math.Floor(r.Pos.X)), int(math.Floor(r.Pos.Y)))
	case RefActor:
		return fmt.Sprintf("#%d", r.ID)
	default:
		return "none"
	}
}

// TaskKind is the classified intent of a target reference.
type TaskKind int

const (
	TaskMove TaskKind = iota
	TaskAttack
	TaskFollow
)

// Task is a validated intent ready to install on a unit.
type Task struct {
	Kind   TaskKind
	Pos    Vec2
	Target ActorID
}

// InferTask classifies and validates ref for a unit of type t on side.
// follower is the unit being ordered, or nil for a fresh deploy.
func (w *World) InferTask(side Side, follower *Unit, t *UnitType, ref TargetRef) (Task, error) {
	switch ref.Kind {
	case RefPoint:
		for _, f := range w.fortresses {
			if f == nil || !f.Contains(ref.Pos) {
				continue
			}
			if f.Side == side {
				return Task{}, ErrOwnFortress
			}
			if !CanAttack(t, f) {
				return Task{}, fmt.Errorf("%s vs %s: %w", t.Key, f.Category(), ErrCannotAttack)
			}
			return Task{Kind: TaskAttack, Target: f.ID}, nil
		}
		return Task{Kind: TaskMove, Pos: ref.Pos}, nil

	case RefActor:
		target := w.Lookup(ref.ID)
		if target == nil {
			return Task{}, fmt.Errorf("target %d: %w", ref.ID, ErrTargetGone)
		}
		if target.body().Side == side {
			leader, ok := target.(*Unit)
			if !ok {
				return Task{}, fmt.Errorf("follow fortress %d: %w", ref.ID, ErrOwnFortress)
			}
			if follower != nil && w.followsBack(leader, follower.ID) {
				return Task{}, fmt.Errorf("unit %d follow %d: %w", follower.ID, leader.ID, ErrFollowCycle)
			}
			return Task{Kind: TaskFollow, Target: leader.ID}, nil
		}
		if !CanAttack(t, target) {
			return Task{}, fmt.Errorf("%s vs %s: %w", t.Key, target.Category(), ErrCannotAttack)
		}
		return Task{Kind: TaskAttack, Target: target.body().ID}, nil
	}
	return Task{}, ErrNoTarget
}

// followsBack walks the leader chain from leader and reports whether it
// reaches id, including leader == id.
func (w *World) followsBack(leader *Unit, id ActorID) bool {
	seen := map[ActorID]bool{}
	for cur := leader; cur != nil; {
		if cur.ID == id {
			return true
		}
		if seen[cur.ID] {
			return false
		}
		seen[cur.ID] = true
		next, _ := w.Lookup(cur.Order.FollowTarget()).(*Unit)
		cur = next
	}
	return false
}

// ApplyTask installs task on u, replacing whatever u was doing, and
// describes the resulting intent.
func (w *World) ApplyTask(u *Unit, task Task) string {
	var desc string
	switch task.Kind {
	case TaskMove:
		u.setOrder(MoveOrder(task.Pos))
		desc = fmt.Sprintf("moving to (%d, %d)", int(math.Floor(task.Pos.X)), int(math.Floor(task.Pos.Y)))
	case TaskAttack:
		u.setOrder(EngageOrder(task.Target))
		if _, ok := w.Lookup(task.Target).(*Fortress); ok {
			desc = "attacking enemy fortress"
		} else {
			desc = fmt.Sprintf("attacking enemy unit %d", task.Target)
		}
	case TaskFollow:
		u.setOrder(FollowOrder(task.Target))
		desc = fmt.Sprintf("following friendly unit %d", task.Target)
	default:
		u.clearOrder()
		desc = "standing by"
	}
	w.Log.Add(w.Tick, actorLabel(u.Side, u.ID), u.Side.String(), "order", u.Order.Kind.String(), desc, 0)
	return desc
}

// DeployUnit validates, debits AP, spawns a unit of typeKey at side's
// fortress and routes ref through the same inference path as orders.
func (w *World) DeployUnit(side Side, typeKey string, ref TargetRef) (*Unit, string, error) {
	f := w.Fortress(side)
	if f == nil || !f.Alive {
		return nil, "", ErrFortressDown
	}
	t, ok := LookupUnitType(typeKey)
	if !ok {
		return nil, "", fmt.Errorf("%q: %w", typeKey, ErrUnknownType)
	}
	if !f.Unlocked(typeKey) {
		return nil, "", fmt.Errorf("%s: %w", typeKey, ErrTypeLocked)
	}
	if f.AP < t.Cost {
		return nil, "", fmt.Errorf("need %.0f, have %.0f: %w", t.Cost, math.Floor(f.AP), ErrInsufficientAP)
	}
	task, err := w.InferTask(side, nil, t, ref)
	if err != nil {
		return nil, "", err
	}
	f.AP -= t.Cost
	u := w.spawnDeploying(f, t)
	desc := w.ApplyTask(u, task)
	return u, desc, nil
}

// Deploy is the deploy entry point shared by the player and the bridge.
func (w *World) Deploy(side Side, typeKey string, ref TargetRef) string {
	u, desc, err := w.DeployUnit(side, typeKey, ref)
	if err != nil {
		return "deploy rejected: " + err.Error()
	}
	return fmt.Sprintf("deployed %s (ID: %d), intent: %s", u.Type.Name, u.ID, desc)
}

// OrderUnit redirects a live friendly unit.
func (w *World) OrderUnit(side Side, id ActorID, ref TargetRef) (string, error) {
	u := w.Unit(id)
	if u == nil || u.Side != side {
		return "", fmt.Errorf("unit %d: %w", id, ErrUnitNotFound)
	}
	task, err := w.InferTask(side, u, u.Type, ref)
	if err != nil {
		return "", err
	}
	return w.ApplyTask(u, task), nil
}

// Order is the order entry point shared by the player and the bridge.
func (w *World) Order(side Side, id ActorID, ref TargetRef) string {
	desc, err := w.OrderUnit(side, id, ref)
	if err != nil {
		return "order rejected: " + err.Error()
	}
	return fmt.Sprintf("unit %d acknowledged, intent: %s", id, desc)
}

// SetAutoScan toggles scanning on a live friendly unit.
func (w *World) SetAutoScan(side Side, id ActorID, on bool) string {
	u := w.Unit(id)
	if u == nil || u.Side != side {
		return fmt.Sprintf("autoscan rejected: unit %d: %s", id, ErrUnitNotFound)
	}
	u.AutoScan = on
	if !on {
		u.AutoTarget = NoActor
	}
	state := "off"
	if on {
		state = "on"
	}
	return fmt.Sprintf("unit %d autoscan %s", id, state)
}
