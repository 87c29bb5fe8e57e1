package game

import (
	"strings"
	"testing"
)

func TestDetermineOutcome(t *testing.T) {
	cases := []struct {
		name              string
		blueHP, redHP     float64
		blueDead, redDead bool
		want              BattleOutcome
		desc              string
	}{
		{"red fortress down", 10000, 0, false, true, OutcomeBlueVictory, "decisive_blue_victory_fortress_destroyed"},
		{"blue fortress down", 0, 8000, true, false, OutcomeRedVictory, "decisive_red_victory_fortress_destroyed"},
		{"both down", 0, 0, true, true, OutcomeDraw, "mutual_destruction"},
		{"blue ahead on damage", 9000, 5000, false, false, OutcomeBlueVictory, "marginal_blue_victory_fortress_damage"},
		{"red ahead on damage", 4000, 9500, false, false, OutcomeRedVictory, "marginal_red_victory_fortress_damage"},
		{"both battered", 5000, 6000, false, false, OutcomeDraw, "draw_similar_damage"},
		{"barely scratched", 9800, 9900, false, false, OutcomeInconclusive, "inconclusive_insufficient_resolution"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld(DefaultWorldConfig())
			w.Fortress(SideBlue).HP = c.blueHP
			w.Fortress(SideRed).HP = c.redHP
			w.Fortress(SideBlue).Alive = !c.blueDead
			w.Fortress(SideRed).Alive = !c.redDead
			got := DetermineOutcome(w)
			if got.Outcome != c.want || got.Description != c.desc {
				t.Fatalf("got %s/%s, want %s/%s", got.Outcome, got.Description, c.want, c.desc)
			}
		})
	}
}

func TestSimReporter_WindowSummary(t *testing.T) {
	r := NewSimReporter(120)
	if r.WindowSummary() != nil || r.Latest() != nil {
		t.Fatal("empty reporter should have no data")
	}
	if !strings.Contains(r.FormatLatest(), "No data") {
		t.Fatal("empty FormatLatest")
	}

	w := NewWorld(DefaultWorldConfig())
	w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1000, Y: 1000}, 0)
	for tick := 0; tick <= 240; tick += 60 {
		w.Tick = tick
		if tick == 180 {
			w.Fortress(SideRed).HP -= 400
			w.Stats.Kills[SideBlue] = 2
		}
		r.Collect(w)
	}

	wr := r.WindowSummary()
	if wr.FromTick != 120 || wr.ToTick != 240 || wr.SampleCount != 3 {
		t.Fatalf("window = %d..%d (%d samples)", wr.FromTick, wr.ToTick, wr.SampleCount)
	}
	if wr.RedHPLost != 400 || wr.BlueKills != 2 {
		t.Fatalf("red lost %.0f, blue kills %d", wr.RedHPLost, wr.BlueKills)
	}
	if wr.AvgBlueAlive != 1 {
		t.Fatalf("avg blue alive = %.2f", wr.AvgBlueAlive)
	}
	if !strings.Contains(wr.Format(), "T=120..240") {
		t.Fatalf("format:\n%s", wr.Format())
	}
	latest := r.FormatLatest()
	if !strings.Contains(latest, "blue") || !strings.Contains(latest, "red") {
		t.Fatalf("latest:\n%s", latest)
	}
}

func TestSnapshot_CountsByTypeAndState(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	a, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1000, Y: 1000}, 0)
	w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1100, Y: 1000}, 0)
	w.PlaceUnit(SideBlue, "drone", Vec2{X: 1200, Y: 1000}, 0)
	w.Order(SideBlue, a.ID, PointRef(2000, 1000))

	s := Snapshot(w)
	if s.Blue.Alive != 3 || s.Blue.ByType["shotgun"] != 2 || s.Blue.ByType["drone"] != 1 {
		t.Fatalf("blue = %+v", s.Blue)
	}
	if s.Blue.ByState[StateMovingToPos] != 1 || s.Blue.ByState[StateIdle] != 2 {
		t.Fatalf("states = %v", s.Blue.ByState)
	}
	if s.Red.Alive != 0 {
		t.Fatalf("red alive = %d", s.Red.Alive)
	}
}

func TestSimLog_SummaryAndFilters(t *testing.T) {
	ts := NewTestSim(
		WithBlueUnit("sniper", 1000, 2000),
		WithOrder(SideBlue, 0, PointRef(1200, 2000)),
	)
	ts.RunTicks(5)
	sum := ts.SimLog.Summary(ts.World)
	if !strings.Contains(sum, "sniper=1") || !strings.Contains(sum, "moving_to_pos=1") {
		t.Fatalf("summary:\n%s", sum)
	}
	u := ts.Unit(SideBlue, 0)
	if got := ts.SimLog.FilterActor(actorLabel(SideBlue, u.ID)); len(got) == 0 {
		t.Fatal("no entries for the unit")
	}
	if ts.SimLog.CountCategory("spawn", "sniper") != 1 {
		t.Fatal("spawn not logged")
	}

	var nilLog *SimLog
	nilLog.Add(0, "--", "blue", "x", "y", "z", 0)
	nilLog.AddVerbose(0, "--", "blue", "x", "y", "z", 0)
}
