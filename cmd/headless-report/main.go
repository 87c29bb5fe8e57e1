package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Fortress-Command/internal/bridge"
	"github.com/Garsondee/Fortress-Command/internal/config"
	"github.com/Garsondee/Fortress-Command/internal/game"
	"github.com/Garsondee/Fortress-Command/internal/level"
	"github.com/Garsondee/Fortress-Command/internal/logging"
)

const tickDT = 1.0 / 60.0

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	outcome game.BattleOutcomeReason
	final   game.BattleReport

	firstKillTick     int
	firstFortressTick int
	detonations       int

	requests [2]int
	executed [2]int
	rejected [2]int

	windowSummary *game.WindowReport
}

type runConfig struct {
	world    game.WorldConfig
	bridge   bridge.Config
	level    *game.Level
	seconds  float64
	reserve  int
	logger   zerolog.Logger
	commands bool
}

func main() {
	var (
		runs     int
		seconds  float64
		seedBase int64
		seedStep int64
		parallel int
		lvlName  string
		cfgDir   string
		reserve  int
		idle     bool
	)
	flag.IntVar(&runs, "runs", 5, "number of headless battles")
	flag.Float64Var(&seconds, "seconds", 300, "game seconds per battle")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&parallel, "parallel", 4, "battles run at once")
	flag.StringVar(&lvlName, "level", "", "starting level (empty for an open field)")
	flag.StringVar(&cfgDir, "config", ".", "directory holding "+config.FileName)
	flag.IntVar(&reserve, "reserve", 0, "AP each scripted commander keeps back")
	flag.BoolVar(&idle, "idle", false, "disable both commanders (level units only)")
	flag.Parse()

	if err := run(os.Stdout, runs, seconds, seedBase, seedStep, parallel, lvlName, cfgDir, reserve, !idle); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(out io.Writer, runs int, seconds float64, seedBase, seedStep int64, parallel int,
	lvlName, cfgDir string, reserve int, commands bool) error {
	if runs <= 0 {
		return fmt.Errorf("-runs must be > 0")
	}
	if seconds <= 0 {
		return fmt.Errorf("-seconds must be > 0")
	}
	if parallel <= 0 {
		parallel = 1
	}

	cfg, err := config.Load(cfgDir)
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	rc := runConfig{
		world:    cfg.GameWorld(),
		bridge:   cfg.BridgeSettings(),
		seconds:  seconds,
		reserve:  reserve,
		logger:   logger,
		commands: commands,
	}
	if lvlName == "" {
		lvlName = cfg.Level
	}
	if lvlName != "" {
		if rc.level, err = level.Builtin().Load(lvlName); err != nil {
			return err
		}
	}

	scenario := "open-field"
	if rc.level != nil {
		scenario = rc.level.Name
	}
	fmt.Fprintf(out, "=== Headless Battle Report ===\n")
	fmt.Fprintf(out, "scenario=%q runs=%d seconds=%.0f seed_base=%d seed_step=%d commanders=%t\n\n",
		scenario, runs, seconds, seedBase, seedStep, commands)

	all := make([]runStats, runs)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(parallel)
	for i := 0; i < runs; i++ {
		i := i
		seed := seedBase + int64(i)*seedStep
		g.Go(func() error {
			rs, err := runBattle(ctx, i+1, seed, rc)
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			all[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rs := range all {
		printRun(out, rs)
	}
	printAggregate(out, all)
	return nil
}

// runBattle plays one seeded battle with a greedy commander on each side.
// Each reply is awaited right after it is requested so runs are repeatable.
func runBattle(ctx context.Context, runIndex int, seed int64, rc runConfig) (runStats, error) {
	wc := rc.world
	wc.Seed = seed
	w := game.NewWorld(wc)
	if rc.level != nil {
		if err := w.ApplyLevel(rc.level); err != nil {
			return runStats{}, err
		}
	}

	var bridges []*bridge.Bridge
	if rc.commands {
		for _, side := range []game.Side{game.SideBlue, game.SideRed} {
			d := bridge.GreedyDecider{Enemy: w.Fortress(side.Opponent()).Pos, Reserve: rc.reserve}
			b, err := bridge.New(w, side, d, rc.bridge,
				bridge.WithLogger(rc.logger.With().Int("run", runIndex).Logger()))
			if err != nil {
				return runStats{}, err
			}
			defer b.Close()
			bridges = append(bridges, b)
		}
	}

	reporter := game.NewSimReporter(0)
	maxTicks := int(rc.seconds/tickDT + 0.5)
	for !w.Over && w.Tick < maxTicks {
		w.Step(tickDT)
		for _, b := range bridges {
			b.Update(tickDT)
			if err := b.Await(ctx); err != nil {
				return runStats{}, err
			}
		}
		if w.Tick%60 == 0 {
			reporter.Collect(w)
		}
	}
	reporter.Collect(w)

	rs := runStats{
		runIndex:          runIndex,
		seed:              seed,
		ticks:             w.Tick,
		outcome:           game.DetermineOutcome(w),
		final:             game.Snapshot(w),
		firstKillTick:     firstTick(w.Log.Entries(), "combat", "kill", ""),
		firstFortressTick: firstFortressDamage(reporter.History()),
		detonations:       w.Log.CountCategory("combat", "detonate"),
		windowSummary:     reporter.WindowSummary(),
	}
	for i, b := range bridges {
		for _, r := range b.Rounds() {
			for _, a := range r.Actions {
				if a.Result == "" || strings.HasSuffix(a.Result, "pending") {
					continue
				}
				rs.executed[i]++
				if isRejection(a.Result) {
					rs.rejected[i]++
				}
			}
		}
		rs.requests[i] = b.RoundCounter()
	}
	return rs, nil
}

func isRejection(result string) bool {
	for _, marker := range []string{"rejected", "failed"} {
		if strings.Contains(result, marker) {
			return true
		}
	}
	return false
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// firstFortressDamage is the first sampled tick at which either fortress is
// below full HP, or -1.
func firstFortressDamage(history []game.BattleReport) int {
	if len(history) == 0 {
		return -1
	}
	start := history[0]
	for _, r := range history {
		if r.Blue.FortressHP < start.Blue.FortressHP || r.Red.FortressHP < start.Red.FortressHP {
			return r.Tick
		}
	}
	return -1
}

// detectStalemate flags battles that ran out the clock with both fortresses
// barely scratched.
func detectStalemate(rs runStats) (bool, string) {
	if rs.outcome.Outcome != game.OutcomeInconclusive && rs.outcome.Outcome != game.OutcomeDraw {
		return false, "decided"
	}
	if rs.outcome.BlueHPFrac < 0.9 || rs.outcome.RedHPFrac < 0.9 {
		return false, fmt.Sprintf("fortress_damage blue=%.2f red=%.2f", rs.outcome.BlueHPFrac, rs.outcome.RedHPFrac)
	}
	kills := rs.final.Blue.Kills + rs.final.Red.Kills
	if kills > rs.outcome.BlueDeployed+rs.outcome.RedDeployed {
		return false, fmt.Sprintf("high_attrition kills=%d", kills)
	}
	return true, fmt.Sprintf("fortresses_intact blue=%.2f red=%.2f kills=%d", rs.outcome.BlueHPFrac, rs.outcome.RedHPFrac, kills)
}

func printRun(out io.Writer, rs runStats) {
	fmt.Fprintf(out, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(out, "outcome=%s reason=%s duration=%s\n",
		rs.outcome.Outcome, rs.outcome.Description, game.FormatGameTime(float64(rs.ticks)*tickDT))
	fmt.Fprintf(out, "phase_markers: first_kill=%d first_fortress_dmg=%d detonations=%d\n",
		rs.firstKillTick, rs.firstFortressTick, rs.detonations)
	for i, s := range []game.SideReport{rs.final.Blue, rs.final.Red} {
		fmt.Fprintf(out, "%-4s hp=%.0f ap=%.0f alive=%d deployed=%d kills=%d recycled=%.0f rounds=%d actions=%d rejected=%d\n",
			s.Side, s.FortressHP, s.AP, s.Alive, s.Deployed, s.Kills, s.Recycled,
			rs.requests[i], rs.executed[i], rs.rejected[i])
	}
	if stale, reason := detectStalemate(rs); stale {
		fmt.Fprintf(out, "stalemate: %s\n", reason)
	}
	fmt.Fprint(out, rs.windowSummary.Format())
	fmt.Fprintln(out)
}

func printAggregate(out io.Writer, all []runStats) {
	outcomes := map[string]int{}
	var rejected, kills [2]int
	var totalTicks, stalemates int
	var hpFrac [2]float64
	for _, rs := range all {
		outcomes[rs.outcome.Outcome.String()]++
		totalTicks += rs.ticks
		kills[0] += rs.final.Blue.Kills
		kills[1] += rs.final.Red.Kills
		hpFrac[0] += rs.outcome.BlueHPFrac
		hpFrac[1] += rs.outcome.RedHPFrac
		for i := range rejected {
			rejected[i] += rs.rejected[i]
		}
		if s, _ := detectStalemate(rs); s {
			stalemates++
		}
	}
	n := len(all)
	fmt.Fprintln(out, "=== Aggregate ===")
	fmt.Fprintf(out, "runs=%d avg_duration=%s stalemates=%d\n", n,
		game.FormatGameTime(avg(totalTicks, n)*tickDT), stalemates)
	fmt.Fprintf(out, "outcomes: %s\n", joinCounts(outcomes))
	fmt.Fprintf(out, "avg_kills: blue=%.1f red=%.1f\n", avg(kills[0], n), avg(kills[1], n))
	fmt.Fprintf(out, "avg_fortress_hp: blue=%.2f red=%.2f\n", hpFrac[0]/float64(n), hpFrac[1]/float64(n))
	fmt.Fprintf(out, "avg_rejected_actions: blue=%.1f red=%.1f\n", avg(rejected[0], n), avg(rejected[1], n))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}
