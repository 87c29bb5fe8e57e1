package game

import (
	"strings"
	"testing"
)

func TestPlayer_DeployFlow(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.InitialAP = 100
	w := NewWorld(cfg)
	p := NewPlayerController(w, SideBlue)

	p.Click(Vec2{X: 10, Y: 2000})
	if p.State != PlayerShowCards {
		t.Fatalf("click on own fortress: state = %s", p.State)
	}
	if msg := p.PickCard("sniper"); msg != "" || p.State != PlayerDeploying {
		t.Fatalf("pick: %q state=%s", msg, p.State)
	}
	res := p.Click(Vec2{X: 1500, Y: 1800})
	if !strings.HasPrefix(res, "deployed Sniper") {
		t.Fatalf("deploy result %q", res)
	}
	if p.State != PlayerNormal {
		t.Fatalf("state after deploy = %s", p.State)
	}
	if w.Fortress(SideBlue).AP != 50 {
		t.Fatalf("AP = %.0f", w.Fortress(SideBlue).AP)
	}
}

func TestPlayer_CardRejections(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.InitialAP = 35
	w := NewWorld(cfg)
	w.Fortress(SideBlue).SetUnlocked([]string{"sniper", "drone"})
	p := NewPlayerController(w, SideBlue)

	if msg := p.PickCard("drone"); msg != "" {
		t.Fatalf("pick outside the tray should be ignored, got %q", msg)
	}
	p.Click(w.Fortress(SideBlue).Pos)
	if msg := p.PickCard("shotgun"); !strings.Contains(msg, "locked") {
		t.Fatalf("locked card: %q", msg)
	}
	if msg := p.PickCard("sniper"); !strings.Contains(msg, "not enough AP") {
		t.Fatalf("unaffordable card: %q", msg)
	}
	if p.State != PlayerShowCards {
		t.Fatalf("rejected pick must keep the tray open, state=%s", p.State)
	}
	if msg := p.PickCard("drone"); msg != "" || p.Card != Drone {
		t.Fatalf("drone pick: %q", msg)
	}
	if res := p.Click(w.Fortress(SideBlue).Pos); res != "cannot deploy onto own fortress" {
		t.Fatalf("deploy onto own fortress: %q", res)
	}
	if w.Fortress(SideBlue).AP != 35 {
		t.Fatal("rejected deploy must not spend AP")
	}
}

func TestPlayer_CommandFlow(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	p := NewPlayerController(w, SideBlue)
	u, _ := w.PlaceUnit(SideBlue, "shotgun", Vec2{X: 1000, Y: 2000}, 0)
	enemy, _ := w.PlaceUnit(SideRed, "sniper", Vec2{X: 1400, Y: 2000}, 0)

	p.Click(u.Pos)
	if p.State != PlayerCommanding || p.Selected != u.ID {
		t.Fatalf("select: state=%s selected=%d", p.State, p.Selected)
	}
	res := p.Click(Vec2{X: enemy.Pos.X + 5, Y: enemy.Pos.Y})
	if !strings.Contains(res, "attacking enemy unit") {
		t.Fatalf("order result %q", res)
	}
	if u.Order.CmdTarget() != enemy.ID {
		t.Fatalf("order = %+v", u.Order)
	}

	p.Click(u.Pos)
	if res := p.Click(u.Pos); res != "command cancelled" {
		t.Fatalf("clicking the selected unit again: %q", res)
	}
	if u.Order.CmdTarget() != enemy.ID {
		t.Fatal("cancelled command must not touch the order")
	}

	p.Click(u.Pos)
	if res := p.Cancel(); res != "command cancelled" || p.State != PlayerNormal {
		t.Fatalf("cancel: %q state=%s", res, p.State)
	}
}

func TestPlayer_EnemyUnitNotSelectable(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	p := NewPlayerController(w, SideBlue)
	enemy, _ := w.PlaceUnit(SideRed, "sniper", Vec2{X: 1400, Y: 2000}, 0)
	p.Click(enemy.Pos)
	if p.State != PlayerNormal {
		t.Fatalf("state = %s after clicking an enemy", p.State)
	}
}
