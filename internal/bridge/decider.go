package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

// ErrScriptExhausted is returned once a ScriptedDecider has no replies left.
var ErrScriptExhausted = errors.New("scripted decider exhausted")

// ScriptedDecider replays canned replies in order.
type ScriptedDecider struct {
	mu      sync.Mutex
	replies []string
	seen    []*Summary
}

func NewScriptedDecider(replies ...string) *ScriptedDecider {
	return &ScriptedDecider{replies: replies}
}

func (d *ScriptedDecider) Decide(_ context.Context, s *Summary) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, s)
	if len(d.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := d.replies[0]
	d.replies = d.replies[1:]
	return r, nil
}

// Seen returns the summaries received so far.
func (d *ScriptedDecider) Seen() []*Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Summary(nil), d.seen...)
}

// GreedyDecider is a rule-based stand-in for a model: it spends AP on the
// cheapest affordable type aimed at the enemy fortress and sends idle units
// after the nearest enemy.
type GreedyDecider struct {
	// Enemy is where the opposing fortress sits.
	Enemy game.Vec2
	// Reserve is AP kept back after each deploy.
	Reserve int
}

type greedyAction struct {
	Cmd    string `json:"cmd"`
	Type   string `json:"type,omitempty"`
	ID     int    `json:"id,omitempty"`
	Target any    `json:"target"`
}

func (d GreedyDecider) Decide(ctx context.Context, s *Summary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var actions []greedyAction
	ap := s.Fortress.AP - d.Reserve
	costs := map[string]int{}
	for _, key := range s.TechStatus.AvailableTypes {
		if t, ok := game.LookupUnitType(key); ok {
			costs[key] = int(t.Cost)
		}
	}
	for {
		best := ""
		for key, c := range costs {
			if c <= ap && (best == "" || c < costs[best] || (c == costs[best] && key < best)) {
				best = key
			}
		}
		if best == "" {
			break
		}
		ap -= costs[best]
		actions = append(actions, greedyAction{Cmd: CmdDeploy, Type: best, Target: d.Enemy})
	}

	for _, a := range s.Allies {
		if a.AllyDetail == nil || a.CmdTargetID != nil || a.TargetPos != nil || a.FollowTargetID != nil {
			continue
		}
		if e, ok := nearestEnemy(a, s.Enemies); ok {
			actions = append(actions, greedyAction{Cmd: CmdOrder, ID: a.ID, Target: e.ID})
		} else {
			actions = append(actions, greedyAction{Cmd: CmdOrder, ID: a.ID, Target: d.Enemy})
		}
	}

	out, err := json.Marshal(struct {
		Thoughts string         `json:"thoughts"`
		Actions  []greedyAction `json:"actions"`
	}{"spend AP and push on the nearest threat", actions})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func nearestEnemy(a UnitReport, enemies []UnitReport) (UnitReport, bool) {
	t, ok := game.LookupUnitType(a.Type)
	if !ok {
		return UnitReport{}, false
	}
	var best UnitReport
	bestD := -1.0
	for _, e := range enemies {
		et, ok := game.LookupUnitType(e.Type)
		if !ok || !t.Targets[et.Category] {
			continue
		}
		dx, dy := float64(e.X-a.X), float64(e.Y-a.Y)
		if d := dx*dx + dy*dy; bestD < 0 || d < bestD {
			best, bestD = e, d
		}
	}
	return best, bestD >= 0
}
