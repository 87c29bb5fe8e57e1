package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// --- Snapshot types ---

// SideReport captures one side's state at one point in time.
type SideReport struct {
	Side       Side
	FortressHP float64
	AP         float64
	Alive      int
	ByType     map[string]int
	ByState    map[UnitState]int
	Deployed   int
	Kills      int
	Recycled   float64
}

// BattleReport is a full snapshot of the simulation at one tick.
type BattleReport struct {
	Tick    int
	Time    float64
	Bullets int
	Blue    SideReport
	Red     SideReport
}

// Snapshot builds a BattleReport from the current world.
func Snapshot(w *World) BattleReport {
	return BattleReport{
		Tick:    w.Tick,
		Time:    w.Time,
		Bullets: len(w.bullets),
		Blue:    sideReport(w, SideBlue),
		Red:     sideReport(w, SideRed),
	}
}

func sideReport(w *World, side Side) SideReport {
	f := w.Fortress(side)
	sr := SideReport{
		Side:       side,
		FortressHP: f.HP,
		AP:         f.AP,
		ByType:     map[string]int{},
		ByState:    map[UnitState]int{},
		Deployed:   w.Stats.Deployed[side],
		Kills:      w.Stats.Kills[side],
		Recycled:   w.Stats.Recycled[side],
	}
	for _, u := range w.UnitsOf(side) {
		sr.Alive++
		sr.ByType[u.Type.Key]++
		sr.ByState[u.State]++
	}
	return sr
}

// --- Reporter ---

// SimReporter collects periodic reports from the simulation and can produce
// summaries over sliding time windows.
type SimReporter struct {
	history     []BattleReport
	windowTicks int
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot from the current simulation state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *SimReporter) Collect(w *World) {
	r.history = append(r.history, Snapshot(w))
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *SimReporter) Latest() *BattleReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected reports.
func (r *SimReporter) History() []BattleReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	AvgBlueAlive, AvgRedAlive float64
	AvgBlueAP, AvgRedAP       float64
	// Fortress damage taken inside the window.
	BlueHPLost, RedHPLost float64
	// Kills and AP recycled inside the window.
	BlueKills, RedKills       int
	BlueRecycled, RedRecycled float64
}

// WindowSummary aggregates the reports inside the recent window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1]
	cutoff := latest.Tick - r.windowTicks
	first := len(r.history) - 1
	for first > 0 && r.history[first-1].Tick >= cutoff {
		first--
	}
	window := r.history[first:]
	oldest := window[0]

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:     oldest.Tick,
		ToTick:       latest.Tick,
		SampleCount:  len(window),
		BlueHPLost:   oldest.Blue.FortressHP - latest.Blue.FortressHP,
		RedHPLost:    oldest.Red.FortressHP - latest.Red.FortressHP,
		BlueKills:    latest.Blue.Kills - oldest.Blue.Kills,
		RedKills:     latest.Red.Kills - oldest.Red.Kills,
		BlueRecycled: latest.Blue.Recycled - oldest.Blue.Recycled,
		RedRecycled:  latest.Red.Recycled - oldest.Red.Recycled,
	}
	for _, rpt := range window {
		wr.AvgBlueAlive += float64(rpt.Blue.Alive)
		wr.AvgRedAlive += float64(rpt.Red.Alive)
		wr.AvgBlueAP += rpt.Blue.AP
		wr.AvgRedAP += rpt.Red.AP
	}
	wr.AvgBlueAlive /= n
	wr.AvgRedAlive /= n
	wr.AvgBlueAP /= n
	wr.AvgRedAP /= n
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Battle Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)
	fmt.Fprintf(&sb, "  Blue: alive=%.1f  ap=%.0f  fortress_dmg=%.0f  kills=%d  recycled=%.0f\n",
		wr.AvgBlueAlive, wr.AvgBlueAP, wr.BlueHPLost, wr.BlueKills, wr.BlueRecycled)
	fmt.Fprintf(&sb, "  Red:  alive=%.1f  ap=%.0f  fortress_dmg=%.0f  kills=%d  recycled=%.0f\n",
		wr.AvgRedAlive, wr.AvgRedAP, wr.RedHPLost, wr.RedKills, wr.RedRecycled)
	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d %s ---\n", rpt.Tick, FormatGameTime(rpt.Time))
	for _, s := range []SideReport{rpt.Blue, rpt.Red} {
		fmt.Fprintf(&sb, "%-4s hp=%.0f ap=%.0f alive=%d deployed=%d kills=%d recycled=%.0f\n",
			s.Side, s.FortressHP, s.AP, s.Alive, s.Deployed, s.Kills, s.Recycled)
		sb.WriteString("     ")
		for _, key := range UnitTypeKeys() {
			fmt.Fprintf(&sb, "%s=%d ", key, s.ByType[key])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
