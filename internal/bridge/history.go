package bridge

import "github.com/Garsondee/Fortress-Command/internal/game"

// Ring is a fixed-capacity buffer that evicts its oldest entry on overflow.
type Ring[T any] struct {
	entries []T
	head    int
	count   int
}

// NewRing creates a ring holding at most capacity entries (minimum 1).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{entries: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry when full.
func (r *Ring[T]) Push(v T) {
	r.entries[r.head] = v
	r.head = (r.head + 1) % len(r.entries)
	if r.count < len(r.entries) {
		r.count++
	}
}

// Items returns entries oldest first.
func (r *Ring[T]) Items() []T {
	n := len(r.entries)
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.entries[(r.head-r.count+i+n)%n]
	}
	return out
}

// Len is the number of items held.
func (r *Ring[T]) Len() int { return r.count }

// Cap is the most items the ring keeps before evicting.
func (r *Ring[T]) Cap() int { return len(r.entries) }

// Event is one damage record reported to the decider.
type Event struct {
	Time           string  `json:"time"`
	Type           string  `json:"type"`
	VictimID       int     `json:"victimId"`
	AttackerID     int     `json:"attackerId"`
	TotalDamage    int     `json:"totalDamage"`
	LastAttackTime float64 `json:"lastAttackTime"`
}

// EventUnderAttack is the only event type the world produces.
const EventUnderAttack = "UNDER_ATTACK"

// RoundEvents groups the events collected before a round boundary.
type RoundEvents struct {
	Round int     `json:"round"`
	Data  []Event `json:"data"`
}

// EventLog accumulates events between round boundaries and keeps the last
// few non-empty rounds.
type EventLog struct {
	current []Event
	rounds  *Ring[RoundEvents]
}

func NewEventLog(capacity int) *EventLog {
	return &EventLog{rounds: NewRing[RoundEvents](capacity)}
}

// Add records an event for the round in progress.
func (l *EventLog) Add(e Event) {
	l.current = append(l.current, e)
}

// AddDamage converts drained damage tallies into UNDER_ATTACK events.
func (l *EventLog) AddDamage(now string, recs []game.DamageRecord) {
	for _, r := range recs {
		l.Add(Event{
			Time:           now,
			Type:           EventUnderAttack,
			VictimID:       int(r.Victim),
			AttackerID:     int(r.Attacker),
			TotalDamage:    int(r.Total),
			LastAttackTime: r.LastAt,
		})
	}
}

// NextRound closes the current round. Rounds without events are not kept.
func (l *EventLog) NextRound(index int) {
	if len(l.current) > 0 {
		l.rounds.Push(RoundEvents{Round: index, Data: l.current})
	}
	l.current = nil
}

// History returns retained rounds oldest first.
func (l *EventLog) History() []RoundEvents {
	return l.rounds.Items()
}
