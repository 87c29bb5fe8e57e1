package game

import "sort"

// DamageTally accumulates the damage one attacker dealt to one victim
// since the last drain.
type DamageTally struct {
	Total  float64
	LastAt float64 // game seconds of the most recent hit
}

// DamageRecord is a drained tally entry.
type DamageRecord struct {
	Victim   ActorID
	Attacker ActorID
	Total    float64
	LastAt   float64
}

// Body is the state shared by fortresses and units.
type Body struct {
	ID    ActorID
	Side  Side
	Pos   Vec2
	HP    float64
	MaxHP float64
	Alive bool

	// Grudge memory: who hit this actor last, and when (game seconds).
	LastAttacker   ActorID
	LastAttackerAt float64

	damage map[ActorID]*DamageTally
}

func (b *Body) body() *Body { return b }

// takeDamage applies amount and records attribution. It reports whether
// this hit killed the actor.
func (b *Body) takeDamage(amount float64, attacker ActorID, now float64) bool {
	if !b.Alive {
		return false
	}
	b.HP -= amount
	if attacker != NoActor {
		b.LastAttacker = attacker
		b.LastAttackerAt = now
		if b.damage == nil {
			b.damage = make(map[ActorID]*DamageTally)
		}
		t := b.damage[attacker]
		if t == nil {
			t = &DamageTally{}
			b.damage[attacker] = t
		}
		t.Total += amount
		t.LastAt = now
	}
	if b.HP <= 0 {
		b.HP = 0
		b.Alive = false
		return true
	}
	return false
}

// drainDamage returns the tally ordered by attacker id and clears it.
func (b *Body) drainDamage() []DamageRecord {
	if len(b.damage) == 0 {
		return nil
	}
	out := make([]DamageRecord, 0, len(b.damage))
	for attacker, t := range b.damage {
		out = append(out, DamageRecord{Victim: b.ID, Attacker: attacker, Total: t.Total, LastAt: t.LastAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attacker < out[j].Attacker })
	b.damage = nil
	return out
}

// grudgeAgainst reports whether id hit this actor within window seconds of now.
func (b *Body) grudgeAgainst(id ActorID, now, window float64) bool {
	return id != NoActor && b.LastAttacker == id && now-b.LastAttackerAt < window
}

// Fortress is a side's base. It spawns units and holds the AP pool.
type Fortress struct {
	Body
	Size    float64 // body radius
	AP      float64
	APMax   float64
	APRegen float64 // per second

	unlocked map[string]bool
}

func (f *Fortress) Category() Category { return CategoryFortress }
func (f *Fortress) Radius() float64    { return f.Size }

// Contains reports whether p lies within the fortress body.
func (f *Fortress) Contains(p Vec2) bool {
	return f.Pos.Dist(p) <= f.Size
}

func (f *Fortress) regen(dt float64) {
	if f.AP < f.APMax {
		f.AP = min(f.APMax, f.AP+f.APRegen*dt)
	}
}

// credit adds AP clamped at APMax and returns the amount actually added.
func (f *Fortress) credit(amount float64) float64 {
	before := f.AP
	f.AP = min(f.APMax, f.AP+amount)
	return f.AP - before
}

// Unlocked reports whether the fortress may deploy the given type key.
func (f *Fortress) Unlocked(key string) bool {
	return f.unlocked[key]
}

// SetUnlocked replaces the unlocked roster. Unknown keys are ignored.
func (f *Fortress) SetUnlocked(keys []string) {
	f.unlocked = make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := LookupUnitType(k); ok {
			f.unlocked[k] = true
		}
	}
}

// AvailableTypes lists unlocked type keys in roster order.
func (f *Fortress) AvailableTypes() []string {
	out := []string{}
	for _, t := range UnitTypes {
		if f.unlocked[t.Key] {
			out = append(out, t.Key)
		}
	}
	return out
}

// LockedTypes lists the remaining roster keys.
func (f *Fortress) LockedTypes() []string {
	out := []string{}
	for _, t := range UnitTypes {
		if !f.unlocked[t.Key] {
			out = append(out, t.Key)
		}
	}
	return out
}
