package game

import "fmt"

// PlayerState is the click-driven command mode of a human-controlled fortress.
type PlayerState int

const (
	PlayerNormal PlayerState = iota
	PlayerShowCards
	PlayerDeploying
	PlayerCommanding
)

func (s PlayerState) String() string {
	switch s {
	case PlayerShowCards:
		return "show_cards"
	case PlayerDeploying:
		return "deploying"
	case PlayerCommanding:
		return "commanding"
	default:
		return "normal"
	}
}

// pickRadius is how close a click must land to select a unit.
const pickRadius = 30.0

// PlayerController turns clicks into funnel calls for one side. Every
// method returns notice text, empty when there is nothing to say.
type PlayerController struct {
	Side     Side
	State    PlayerState
	Card     *UnitType // chosen while deploying
	Selected ActorID   // unit being commanded

	w *World
}

// NewPlayerController binds a controller to side in w.
func NewPlayerController(w *World, side Side) *PlayerController {
	return &PlayerController{Side: side, w: w}
}

func (p *PlayerController) reset() {
	p.State = PlayerNormal
	p.Card = nil
	p.Selected = NoActor
}

// Cancel returns to normal mode (right-click).
func (p *PlayerController) Cancel() string {
	was := p.State
	p.reset()
	if was == PlayerCommanding {
		return "command cancelled"
	}
	return ""
}

// PickCard chooses a unit type while the card tray is open.
func (p *PlayerController) PickCard(key string) string {
	if p.State != PlayerShowCards {
		return ""
	}
	f := p.w.Fortress(p.Side)
	t, ok := LookupUnitType(key)
	switch {
	case !ok:
		return fmt.Sprintf("unknown unit type %q", key)
	case !f.Unlocked(key):
		return t.Name + " is locked"
	case f.AP < t.Cost:
		return fmt.Sprintf("not enough AP for %s (need %.0f)", t.Name, t.Cost)
	}
	p.Card = t
	p.State = PlayerDeploying
	return ""
}

// Click handles a left click at a world position.
func (p *PlayerController) Click(pos Vec2) string {
	own := p.w.Fortress(p.Side)
	switch p.State {
	case PlayerNormal:
		if own.Contains(pos) {
			p.State = PlayerShowCards
			return ""
		}
		if u := p.w.UnitAt(pos, pickRadius); u != nil && u.Side == p.Side {
			p.Selected = u.ID
			p.State = PlayerCommanding
			return fmt.Sprintf("unit %d ready", u.ID)
		}
		return ""

	case PlayerShowCards:
		p.reset()
		return ""

	case PlayerDeploying:
		card := p.Card
		p.reset()
		if own.Contains(pos) {
			return "cannot deploy onto own fortress"
		}
		return p.w.Deploy(p.Side, card.Key, p.refAt(pos))

	case PlayerCommanding:
		id := p.Selected
		p.reset()
		if p.w.Unit(id) == nil {
			return ""
		}
		if own.Contains(pos) {
			return "command cancelled"
		}
		ref := p.refAt(pos)
		if ref.Kind == RefActor && ref.ID == id {
			return "command cancelled"
		}
		return p.w.Order(p.Side, id, ref)
	}
	return ""
}

// refAt resolves a click to a unit reference when one is under the cursor,
// else to the point itself.
func (p *PlayerController) refAt(pos Vec2) TargetRef {
	if u := p.w.UnitAt(pos, pickRadius); u != nil {
		return ActorRef(u.ID)
	}
	return PointRef(pos.X, pos.Y)
}
