package bridge

import (
	"encoding/json"
	"math"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

// Summary is the situation report sent to the decider each round.
type Summary struct {
	GameTime          string         `json:"gameTime"`
	CurrentRoundIndex int            `json:"currentRoundIndex"`
	Fortress          FortressStatus `json:"fortress"`
	TechStatus        TechStatus     `json:"techStatus"`
	Allies            []UnitReport   `json:"allies"`
	Enemies           []UnitReport   `json:"enemies"`
	History           []RoundReport  `json:"history"`
	Events            []RoundEvents  `json:"events"`
	AvgResponseTime   float64        `json:"avgResponseTime"`
}

type FortressStatus struct {
	HP int `json:"hp"`
	AP int `json:"ap"`
}

type TechStatus struct {
	AvailableTypes []string `json:"availableTypes"`
	LockedTypes    []string `json:"lockedTypes"`
}

// UnitReport describes one unit. Ground units carry vel/angle and air units
// vx/vy. The private block is only filled for allies.
type UnitReport struct {
	ID    int      `json:"id"`
	Type  string   `json:"type"`
	X     int      `json:"x"`
	Y     int      `json:"y"`
	Vel   *float64 `json:"vel,omitempty"`
	Angle *float64 `json:"angle,omitempty"`
	VX    *float64 `json:"vx,omitempty"`
	VY    *float64 `json:"vy,omitempty"`

	*AllyDetail
}

// AllyDetail is the private state only reported for friendly units.
type AllyDetail struct {
	HP             int        `json:"hp"`
	TargetPos      *game.Vec2 `json:"targetPos"`
	CmdTargetID    *int       `json:"cmdTargetId"`
	AutoTargetID   *int       `json:"autoTargetId"`
	FollowTargetID *int       `json:"followTargetId"`
}

// RoundReport echoes one past round with per-action outcomes.
type RoundReport struct {
	Round           int              `json:"round"`
	Thoughts        string           `json:"thoughts"`
	ExecutedActions []ExecutedAction `json:"executed_actions"`
}

type ExecutedAction struct {
	ID      int             `json:"id"`
	Params  json.RawMessage `json:"params"`
	Outcome string          `json:"outcome"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func floorInt(v float64) int { return int(math.Floor(v)) }

func idPtr(id game.ActorID) *int {
	if id == game.NoActor {
		return nil
	}
	n := int(id)
	return &n
}

func unitReport(w *game.World, u *game.Unit, ally bool) UnitReport {
	r := UnitReport{
		ID:   int(u.ID),
		Type: u.Type.Key,
		X:    floorInt(u.Pos.X),
		Y:    floorInt(u.Pos.Y),
	}
	if u.Type.Domain == game.DomainAir {
		vx, vy := round2(u.VX), round2(u.VY)
		r.VX, r.VY = &vx, &vy
	} else {
		vel, angle := round2(u.Vel), round2(u.Angle)
		r.Vel, r.Angle = &vel, &angle
	}
	if !ally {
		return r
	}
	d := &AllyDetail{
		HP:             floorInt(u.HP),
		CmdTargetID:    idPtr(u.Order.CmdTarget()),
		FollowTargetID: idPtr(u.Order.FollowTarget()),
	}
	if p, ok := u.Order.TargetPos(); ok {
		d.TargetPos = &p
	}
	if w.Lookup(u.AutoTarget) != nil {
		d.AutoTargetID = idPtr(u.AutoTarget)
	}
	r.AllyDetail = d
	return r
}

// buildSummary drains pending damage into the event log, closes the event
// round and snapshots the world from side's point of view.
func (b *Bridge) buildSummary() *Summary {
	w := b.world
	now := game.FormatGameTime(w.Time)
	b.events.AddDamage(now, w.DrainDamage(b.side))
	b.events.NextRound(b.roundCounter)

	f := w.Fortress(b.side)
	s := &Summary{
		GameTime:          now,
		CurrentRoundIndex: b.roundCounter,
		Fortress:          FortressStatus{HP: floorInt(f.HP), AP: floorInt(f.AP)},
		TechStatus: TechStatus{
			AvailableTypes: nonNil(f.AvailableTypes()),
			LockedTypes:    nonNil(f.LockedTypes()),
		},
		Allies:          []UnitReport{},
		Enemies:         []UnitReport{},
		History:         b.historyReport(),
		Events:          b.events.History(),
		AvgResponseTime: round2(b.avgResponse()),
	}
	for _, u := range w.Units() {
		if u.Side == b.side {
			s.Allies = append(s.Allies, unitReport(w, u, true))
		} else {
			s.Enemies = append(s.Enemies, unitReport(w, u, false))
		}
	}
	return s
}

func (b *Bridge) historyReport() []RoundReport {
	rounds := b.rounds.Items()
	out := make([]RoundReport, 0, len(rounds))
	for _, r := range rounds {
		rr := RoundReport{Round: r.Index, Thoughts: r.Thoughts, ExecutedActions: []ExecutedAction{}}
		for _, a := range r.Actions {
			rr.ExecutedActions = append(rr.ExecutedActions, ExecutedAction{
				ID:      a.Index,
				Params:  a.Action.Params,
				Outcome: a.Result,
			})
		}
		out = append(out, rr)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
