package game

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// WorldConfig holds the arena and fortress parameters.
type WorldConfig struct {
	Width          float64
	Height         float64
	FortressHP     float64
	FortressRadius float64
	APMax          float64
	APRegen        float64 // per second
	InitialAP      float64
	Seed           int64
}

// DefaultWorldConfig returns the standard 6000x4000 battlefield.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Width:          6000,
		Height:         4000,
		FortressHP:     10000,
		FortressRadius: 80,
		APMax:          300,
		APRegen:        5,
		Seed:           1,
	}
}

// EffectKind classifies a cosmetic event.
type EffectKind int

const (
	EffectMuzzle EffectKind = iota
	EffectHit
	EffectDeath
	EffectKill
	EffectExplosion
)

// Effect is a cosmetic event for the view layer.
type Effect struct {
	Kind  EffectKind
	Pos   Vec2
	Side  Side
	Actor ActorID
}

// EffectSink receives hits, deaths, kills and explosions.
type EffectSink interface {
	Effect(e Effect)
}

// Renderer is called once per live actor per frame.
type Renderer interface {
	DrawFortress(f *Fortress)
	DrawUnit(u *Unit)
	DrawBullet(b *Bullet)
}

// Notifier shows short user-facing notices.
type Notifier interface {
	Notify(side Side, msg string)
}

// BattleStats are running per-side totals.
type BattleStats struct {
	Deployed map[Side]int
	Kills    map[Side]int
	Recycled map[Side]float64 // AP credited from kills
}

type scheduledOrder struct {
	at   float64
	side Side
	unit ActorID
	ref  TargetRef
}

// World is the simulation arena. Actors are addressed by stable id; dead
// units stay in place as tombstones until the compaction pass at the end
// of Step.
type World struct {
	Cfg  WorldConfig
	Time float64 // game seconds
	Tick int

	Log      *SimLog
	Effects  EffectSink
	Notifier Notifier
	Stats    BattleStats

	Over    bool
	Outcome BattleOutcome

	fortresses [2]*Fortress
	units      []*Unit
	bullets    []*Bullet
	registry   map[ActorID]Target
	nextID     ActorID
	rng        *rand.Rand
	schedule   []scheduledOrder
	orphaned   map[Side][]DamageRecord // tallies of compacted units
	tracked    map[Side]bool           // sides whose tallies are drained
}

// NewWorld builds a world with both fortresses placed at mid-height on the
// left and right edges.
func NewWorld(cfg WorldConfig) *World {
	w := &World{
		Cfg:      cfg,
		Log:      NewSimLog(false),
		registry: make(map[ActorID]Target),
		rng:      rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- deterministic sim
		orphaned: make(map[Side][]DamageRecord),
		tracked:  make(map[Side]bool),
		Stats: BattleStats{
			Deployed: map[Side]int{},
			Kills:    map[Side]int{},
			Recycled: map[Side]float64{},
		},
	}
	w.fortresses[SideBlue] = w.newFortress(SideBlue, Vec2{X: 0, Y: cfg.Height / 2})
	w.fortresses[SideRed] = w.newFortress(SideRed, Vec2{X: cfg.Width, Y: cfg.Height / 2})
	return w
}

func (w *World) allocID() ActorID {
	w.nextID++
	return w.nextID
}

func (w *World) newFortress(side Side, pos Vec2) *Fortress {
	f := &Fortress{
		Body: Body{
			ID:    w.allocID(),
			Side:  side,
			Pos:   pos,
			HP:    w.Cfg.FortressHP,
			MaxHP: w.Cfg.FortressHP,
			Alive: true,
		},
		Size:    w.Cfg.FortressRadius,
		AP:      w.Cfg.InitialAP,
		APMax:   w.Cfg.APMax,
		APRegen: w.Cfg.APRegen,
	}
	f.SetUnlocked(UnitTypeKeys())
	w.registry[f.ID] = f
	return f
}

func (w *World) newUnit(side Side, t *UnitType, pos Vec2, heading float64) *Unit {
	u := &Unit{
		Body: Body{
			ID:    w.allocID(),
			Side:  side,
			Pos:   pos,
			HP:    t.MaxHP,
			MaxHP: t.MaxHP,
			Alive: true,
		},
		Type:        t,
		Owner:       side,
		AutoScan:    t.AutoScan,
		Angle:       heading,
		TurretAngle: heading,
		LastShot:    math.Inf(-1),
	}
	w.units = append(w.units, u)
	w.registry[u.ID] = u
	w.Stats.Deployed[side]++
	w.Log.Add(w.Tick, actorLabel(side, u.ID), side.String(), "spawn", t.Key,
		fmt.Sprintf("(%.0f,%.0f)", pos.X, pos.Y), 0)
	return u
}

// spawnDeploying creates a unit at the fortress centre, facing the enemy.
func (w *World) spawnDeploying(f *Fortress, t *UnitType) *Unit {
	heading := 0.0
	if f.Side == SideRed {
		heading = math.Pi
	}
	u := w.newUnit(f.Side, t, f.Pos, heading)
	u.State = StateDeploying
	u.deployFrom = f.Pos
	u.deployR = f.Size + t.Radius + deployClearance
	return u
}

// PlaceUnit creates a unit already in the field, idle.
func (w *World) PlaceUnit(side Side, typeKey string, pos Vec2, heading float64) (*Unit, error) {
	t, ok := LookupUnitType(typeKey)
	if !ok {
		return nil, fmt.Errorf("place %q: %w", typeKey, ErrUnknownType)
	}
	u := w.newUnit(side, t, pos, heading)
	u.State = StateIdle
	return u, nil
}

// Fortress returns the side's fortress, dead or alive.
func (w *World) Fortress(side Side) *Fortress {
	if side != SideBlue && side != SideRed {
		return nil
	}
	return w.fortresses[side]
}

// Lookup resolves a live actor by id. Dead or unknown ids return nil.
func (w *World) Lookup(id ActorID) Target {
	if id == NoActor {
		return nil
	}
	t, ok := w.registry[id]
	if !ok || !t.body().Alive {
		return nil
	}
	return t
}

// Unit resolves a live unit by id.
func (w *World) Unit(id ActorID) *Unit {
	u, _ := w.Lookup(id).(*Unit)
	return u
}

// Units returns live units in spawn order.
func (w *World) Units() []*Unit {
	out := make([]*Unit, 0, len(w.units))
	for _, u := range w.units {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}

// UnitsOf returns live units of one side.
func (w *World) UnitsOf(side Side) []*Unit {
	var out []*Unit
	for _, u := range w.units {
		if u.Alive && u.Side == side {
			out = append(out, u)
		}
	}
	return out
}

// Bullets returns bullets in flight.
func (w *World) Bullets() []*Bullet {
	return w.bullets
}

// UnitAt returns the nearest live unit within radius of p.
func (w *World) UnitAt(p Vec2, radius float64) *Unit {
	var best *Unit
	bestD := radius
	for _, u := range w.units {
		if !u.Alive {
			continue
		}
		if d := u.Pos.Dist(p); d < bestD {
			best, bestD = u, d
		}
	}
	return best
}

// ScheduleOrder queues a funnel order to run at game time at.
func (w *World) ScheduleOrder(at float64, side Side, unit ActorID, ref TargetRef) {
	w.schedule = append(w.schedule, scheduledOrder{at: at, side: side, unit: unit, ref: ref})
	sort.SliceStable(w.schedule, func(i, j int) bool { return w.schedule[i].at < w.schedule[j].at })
}

// scheduleEpsilon absorbs float drift from summing fixed ticks.
const scheduleEpsilon = 1e-9

func (w *World) runSchedule() {
	n := 0
	for n < len(w.schedule) && w.schedule[n].at <= w.Time+scheduleEpsilon {
		s := w.schedule[n]
		res := w.Order(s.side, s.unit, s.ref)
		w.Log.Add(w.Tick, actorLabel(s.side, s.unit), s.side.String(), "order", "scheduled", res, s.at)
		n++
	}
	w.schedule = w.schedule[n:]
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if w.Over {
		return
	}
	w.Time += dt
	w.Tick++

	for _, f := range w.fortresses {
		if f.Alive {
			f.regen(dt)
		}
	}
	w.runSchedule()

	// Ground first, then projectiles, then air, so drones act on
	// post-volley positions.
	for i := 0; i < len(w.units); i++ {
		if u := w.units[i]; u.Type.Domain == DomainGround {
			w.stepUnit(u, dt)
		}
	}
	for _, b := range w.bullets {
		w.stepBullet(b, dt)
	}
	for i := 0; i < len(w.units); i++ {
		if u := w.units[i]; u.Type.Domain == DomainAir {
			w.stepUnit(u, dt)
		}
	}
	w.compact()
}

// TrackDamage keeps damage tallies for side until DrainDamage collects
// them. Untracked sides discard the tallies of dead units and their
// fortress every tick.
func (w *World) TrackDamage(side Side) {
	w.tracked[side] = true
}

// compact drops dead units and spent bullets. Damage tallies of dropped
// units on tracked sides are kept so the next report still sees them.
func (w *World) compact() {
	live := w.units[:0]
	for _, u := range w.units {
		if u.Alive {
			live = append(live, u)
			continue
		}
		if recs := u.drainDamage(); len(recs) > 0 && w.tracked[u.Side] {
			w.orphaned[u.Side] = append(w.orphaned[u.Side], recs...)
		}
		delete(w.registry, u.ID)
	}
	for _, f := range w.fortresses {
		if f != nil && !w.tracked[f.Side] {
			f.drainDamage()
		}
	}
	for i := len(live); i < len(w.units); i++ {
		w.units[i] = nil
	}
	w.units = live

	bl := w.bullets[:0]
	for _, b := range w.bullets {
		if b.Alive {
			bl = append(bl, b)
		}
	}
	for i := len(bl); i < len(w.bullets); i++ {
		w.bullets[i] = nil
	}
	w.bullets = bl
}

// DrainDamage returns and clears every damage tally recorded against
// side's actors since the previous drain.
func (w *World) DrainDamage(side Side) []DamageRecord {
	out := w.orphaned[side]
	w.orphaned[side] = nil
	for _, u := range w.units {
		if u.Side == side {
			out = append(out, u.drainDamage()...)
		}
	}
	if f := w.Fortress(side); f != nil {
		out = append(out, f.drainDamage()...)
	}
	return out
}

func (w *World) finish(winner Side) {
	if w.Over {
		return
	}
	w.Over = true
	if winner == SideBlue {
		w.Outcome = OutcomeBlueVictory
	} else {
		w.Outcome = OutcomeRedVictory
	}
	w.Log.Add(w.Tick, "--", winner.String(), "outcome", "fortress_destroyed", w.Outcome.String(), w.Time)
	if w.Notifier != nil {
		w.Notifier.Notify(winner, winner.String()+" destroyed the enemy fortress")
	}
}

func (w *World) emit(e Effect) {
	if w.Effects != nil {
		w.Effects.Effect(e)
	}
}

// Render calls r for every live actor.
func (w *World) Render(r Renderer) {
	for _, f := range w.fortresses {
		if f.Alive {
			r.DrawFortress(f)
		}
	}
	for _, u := range w.units {
		if u.Alive && u.Type.Domain == DomainGround {
			r.DrawUnit(u)
		}
	}
	for _, b := range w.bullets {
		if b.Alive {
			r.DrawBullet(b)
		}
	}
	for _, u := range w.units {
		if u.Alive && u.Type.Domain == DomainAir {
			r.DrawUnit(u)
		}
	}
}

// actorLabel renders "B7" / "R12" for logs.
func actorLabel(side Side, id ActorID) string {
	if side == SideRed {
		return fmt.Sprintf("R%d", id)
	}
	return fmt.Sprintf("B%d", id)
}
