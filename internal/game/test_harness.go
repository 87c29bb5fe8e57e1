package game

import "math"

// simDT is the fixed tick length used by the headless harness (60 TPS).
const simDT = 1.0 / 60.0

// TestSim is a headless simulation harness for tests and batch reports.
// It mirrors the windowed game loop but has no Ebiten dependency and
// supports deterministic seeding and structured logging.
type TestSim struct {
	World    *World
	SimLog   *SimLog
	Reporter *SimReporter

	cfg          WorldConfig
	verbose      bool
	reportEvery  int
	unlockedBlue []string
	unlockedRed  []string
	onTick       []func(*TestSim)
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // map size, seed, AP, verbose; applied before the world exists
	simOptActor                      // place units; applied once the world is built
	simOptOrder                      // orders against placed units
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMapSize sets the battlefield dimensions.
func WithMapSize(w, h float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Width = w
		ts.cfg.Height = h
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Seed = seed
	}}
}

// WithVerbose enables per-shot and targeting log entries.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithInitialAP sets the starting AP of both fortresses.
func WithInitialAP(ap float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.InitialAP = ap
	}}
}

// WithAPRegen sets the AP regeneration rate; 0 freezes the economy.
func WithAPRegen(perSecond float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.APRegen = perSecond
	}}
}

// WithUnlocked restricts a side's deployable roster.
func WithUnlocked(side Side, keys ...string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		if side == SideRed {
			ts.unlockedRed = keys
		} else {
			ts.unlockedBlue = keys
		}
	}}
}

// WithReporter collects a BattleReport every n ticks.
func WithReporter(n int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.reportEvery = n
		ts.Reporter = NewSimReporter(0)
	}}
}

// WithUnit places an idle unit in the field. Heading is in radians.
func WithUnit(side Side, typeKey string, x, y, heading float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		if _, err := ts.World.PlaceUnit(side, typeKey, Vec2{X: x, Y: y}, heading); err != nil {
			ts.SimLog.Add(0, "--", side.String(), "harness", "place_fail", err.Error(), 0)
		}
	}}
}

// WithBlueUnit places an idle blue unit facing east.
func WithBlueUnit(typeKey string, x, y float64) SimOption {
	return WithUnit(SideBlue, typeKey, x, y, 0)
}

// WithRedUnit places an idle red unit facing west.
func WithRedUnit(typeKey string, x, y float64) SimOption {
	return WithUnit(SideRed, typeKey, x, y, math.Pi)
}

// WithOrder issues a funnel order to the n-th placed unit (0-based, spawn order).
func WithOrder(side Side, n int, ref TargetRef) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		units := ts.World.UnitsOf(side)
		if n < 0 || n >= len(units) {
			return
		}
		ts.World.Order(side, units[n].ID, ref)
	}}
}

// WithEveryTick registers a callback run before each tick, e.g. a scripted
// commander.
func WithEveryTick(fn func(*TestSim)) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		ts.onTick = append(ts.onTick, fn)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (map size, seed, AP, verbose)
//  2. Build the World
//  3. Units
//  4. Orders and per-tick hooks
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{cfg: DefaultWorldConfig()}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.World = NewWorld(ts.cfg)
	ts.SimLog = NewSimLog(ts.verbose)
	ts.World.Log = ts.SimLog
	if ts.unlockedBlue != nil {
		ts.World.Fortress(SideBlue).SetUnlocked(ts.unlockedBlue)
	}
	if ts.unlockedRed != nil {
		ts.World.Fortress(SideRed).SetUnlocked(ts.unlockedRed)
	}
	for _, kind := range []simOptionKind{simOptActor, simOptOrder} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(ts)
			}
		}
	}
	return ts
}

// Unit returns the n-th live unit of side in spawn order, or nil.
func (ts *TestSim) Unit(side Side, n int) *Unit {
	units := ts.World.UnitsOf(side)
	if n < 0 || n >= len(units) {
		return nil
	}
	return units[n]
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n && !ts.World.Over; i++ {
		ts.step()
	}
}

// RunSeconds advances the simulation by whole ticks covering secs of game time.
func (ts *TestSim) RunSeconds(secs float64) {
	ts.RunTicks(int(secs/simDT + 0.5))
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks && !ts.World.Over; i++ {
		ts.step()
		if predicate(ts) {
			return ts.World.Tick
		}
	}
	return -1
}

func (ts *TestSim) step() {
	for _, fn := range ts.onTick {
		fn(ts)
	}
	ts.World.Step(simDT)
	if ts.Reporter != nil && ts.reportEvery > 0 && ts.World.Tick%ts.reportEvery == 0 {
		ts.Reporter.Collect(ts.World)
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.World.Tick
}
