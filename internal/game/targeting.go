package game

import "math"

// resolveAutoTarget returns the target u should engage this tick. A live
// manual target wins outright. Otherwise the auto target is kept while it
// is alive, even out of range (firing is range-gated separately); once it
// is gone and scanning is enabled, a fresh
// scan picks the candidate with the lowest score: 0 for a grudge, else the
// type's priority rank, ties broken by distance.
func (w *World) resolveAutoTarget(u *Unit) Target {
	if id := u.Order.CmdTarget(); id != NoActor {
		if t := w.Lookup(id); t != nil {
			return t
		}
	}
	if cur := w.Lookup(u.AutoTarget); cur != nil {
		return cur
	}
	if !u.AutoScan {
		return nil
	}

	var (
		best      Target
		bestScore = math.MaxInt
		bestDist  = math.Inf(1)
	)
	consider := func(c Target) {
		b := c.body()
		if b.Side == u.Side || !CanAttack(u.Type, c) {
			return
		}
		d := u.Pos.Dist(b.Pos)
		if d > u.Type.AttackRange {
			return
		}
		score := u.Type.Rank(c.Category())
		if u.grudgeAgainst(b.ID, w.Time, grudgeWindow) {
			score = 0
		}
		if score < bestScore || (score == bestScore && d < bestDist) {
			best, bestScore, bestDist = c, score, d
		}
	}
	for _, o := range w.units {
		if o.Alive {
			consider(o)
		}
	}
	if f := w.Fortress(u.Side.Opponent()); f != nil && f.Alive {
		consider(f)
	}

	if best == nil {
		u.AutoTarget = NoActor
		return nil
	}
	if best.body().ID != u.AutoTarget {
		w.Log.AddVerbose(w.Tick, actorLabel(u.Side, u.ID), u.Side.String(), "target", "acquire",
			actorLabel(best.body().Side, best.body().ID), float64(bestScore))
	}
	u.AutoTarget = best.body().ID
	return best
}
