package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Fortress-Command/internal/bridge"
	"github.com/Garsondee/Fortress-Command/internal/game"
)

func TestDetectStalemate_TrueWhenFortressesIntact(t *testing.T) {
	rs := runStats{
		outcome: game.BattleOutcomeReason{
			Outcome:      game.OutcomeInconclusive,
			BlueHPFrac:   0.97,
			RedHPFrac:    1,
			BlueDeployed: 6,
			RedDeployed:  5,
		},
		final: game.BattleReport{
			Blue: game.SideReport{Kills: 2},
			Red:  game.SideReport{Kills: 3},
		},
	}

	isStalemate, reason := detectStalemate(rs)
	if !isStalemate {
		t.Fatalf("expected stalemate=true, got false (reason=%s)", reason)
	}
	if !strings.Contains(reason, "fortresses_intact") {
		t.Fatalf("expected reason to mention fortresses_intact, got: %s", reason)
	}
}

func TestDetectStalemate_FalseWhenDecided(t *testing.T) {
	rs := runStats{outcome: game.BattleOutcomeReason{Outcome: game.OutcomeBlueVictory, BlueHPFrac: 1}}
	if isStalemate, reason := detectStalemate(rs); isStalemate || reason != "decided" {
		t.Fatalf("expected decided battle not to be a stalemate, got %v (%s)", isStalemate, reason)
	}
}

func TestDetectStalemate_FalseWhenFortressBattered(t *testing.T) {
	rs := runStats{outcome: game.BattleOutcomeReason{
		Outcome:    game.OutcomeInconclusive,
		BlueHPFrac: 0.4,
		RedHPFrac:  1,
	}}
	isStalemate, reason := detectStalemate(rs)
	if isStalemate {
		t.Fatalf("expected stalemate=false with a damaged fortress (reason=%s)", reason)
	}
	if !strings.Contains(reason, "fortress_damage") {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestDetectStalemate_FalseWhenAttritionHigh(t *testing.T) {
	rs := runStats{
		outcome: game.BattleOutcomeReason{
			Outcome:      game.OutcomeInconclusive,
			BlueHPFrac:   1,
			RedHPFrac:    1,
			BlueDeployed: 2,
			RedDeployed:  2,
		},
		final: game.BattleReport{Blue: game.SideReport{Kills: 3}, Red: game.SideReport{Kills: 2}},
	}
	if isStalemate, reason := detectStalemate(rs); isStalemate {
		t.Fatalf("expected stalemate=false under heavy attrition (reason=%s)", reason)
	}
}

func TestFirstFortressDamage(t *testing.T) {
	history := []game.BattleReport{
		{Tick: 60, Blue: game.SideReport{FortressHP: 100}, Red: game.SideReport{FortressHP: 100}},
		{Tick: 120, Blue: game.SideReport{FortressHP: 100}, Red: game.SideReport{FortressHP: 100}},
		{Tick: 180, Blue: game.SideReport{FortressHP: 100}, Red: game.SideReport{FortressHP: 70}},
	}
	if got := firstFortressDamage(history); got != 180 {
		t.Fatalf("expected first damage at tick 180, got %d", got)
	}
	if got := firstFortressDamage(history[:2]); got != -1 {
		t.Fatalf("expected -1 for an untouched battle, got %d", got)
	}
	if got := firstFortressDamage(nil); got != -1 {
		t.Fatalf("expected -1 for no history, got %d", got)
	}
}

func TestIsRejection(t *testing.T) {
	cases := map[string]bool{
		"[#1] [00:20] deployed Drone":                    false,
		"[#2] [00:21] deploy rejected: not enough AP":     true,
		"[#3] [00:22] execution failed: unknown command": true,
		"[#4] [00:22] parse failed: missing cmd":          true,
	}
	for result, want := range cases {
		if got := isRejection(result); got != want {
			t.Fatalf("isRejection(%q)=%v want %v", result, got, want)
		}
	}
}

func TestJoinCounts(t *testing.T) {
	if got := joinCounts(nil); got != "none" {
		t.Fatalf("expected none, got %q", got)
	}
	got := joinCounts(map[string]int{"red_victory": 2, "blue_victory": 1})
	if got != "blue_victory=1 red_victory=2" {
		t.Fatalf("unexpected join: %q", got)
	}
}

func TestRunBattle_Deterministic(t *testing.T) {
	rc := runConfig{
		world:    game.DefaultWorldConfig(),
		bridge:   bridge.DefaultConfig(),
		seconds:  45,
		logger:   zerolog.Nop(),
		commands: true,
	}
	rc.world.InitialAP = 100

	a, err := runBattle(context.Background(), 1, 7, rc)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := runBattle(context.Background(), 2, 7, rc)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.ticks == 0 {
		t.Fatal("expected the battle to advance")
	}
	if a.requests[0] == 0 || a.requests[1] == 0 {
		t.Fatalf("expected both commanders to be consulted, got %v", a.requests)
	}
	if a.final.Blue.Deployed == 0 || a.final.Red.Deployed == 0 {
		t.Fatalf("expected both sides to deploy, got blue=%d red=%d", a.final.Blue.Deployed, a.final.Red.Deployed)
	}
	if a.ticks != b.ticks || a.final.Blue.FortressHP != b.final.Blue.FortressHP ||
		a.final.Red.FortressHP != b.final.Red.FortressHP || a.final.Blue.Deployed != b.final.Blue.Deployed {
		t.Fatalf("same seed diverged:\n%+v\n%+v", a.final, b.final)
	}
}

func TestRun_RejectsBadFlags(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, 0, 10, 1, 1, 1, "", t.TempDir(), 0, true); err == nil {
		t.Fatal("expected an error for zero runs")
	}
	if err := run(&out, 1, 0, 1, 1, 1, "", t.TempDir(), 0, true); err == nil {
		t.Fatal("expected an error for zero seconds")
	}
	if err := run(&out, 1, 10, 1, 1, 1, "no-such-level", t.TempDir(), 0, true); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
