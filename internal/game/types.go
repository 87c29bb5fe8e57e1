package game

import (
	"fmt"
	"math"
)

// ActorID identifies a fortress or unit for the lifetime of a World.
// IDs are never reused, so a stale ID simply fails to resolve.
type ActorID int

// NoActor is the zero ActorID; no live actor ever carries it.
const NoActor ActorID = 0

// Side distinguishes the two factions.
type Side int

const (
	SideBlue Side = iota // left fortress, human by default
	SideRed              // right fortress, AI by default
)

func (s Side) String() string {
	switch s {
	case SideBlue:
		return "blue"
	case SideRed:
		return "red"
	default:
		return "unknown"
	}
}

// Opponent returns the other faction.
func (s Side) Opponent() Side {
	if s == SideBlue {
		return SideRed
	}
	return SideBlue
}

// ParseSide maps "blue"/"red" to a Side.
func ParseSide(name string) (Side, bool) {
	switch name {
	case "blue":
		return SideBlue, true
	case "red":
		return SideRed, true
	}
	return SideBlue, false
}

// Category is the target-category tag an actor presents to the
// capability matrix.
type Category int

const (
	CategoryFortress Category = iota
	CategoryVehicle
	CategoryDrone
)

func (c Category) String() string {
	switch c {
	case CategoryFortress:
		return "Fortress"
	case CategoryVehicle:
		return "Vehicle"
	case CategoryDrone:
		return "Drone"
	default:
		return "Unknown"
	}
}

// Domain separates ground and air movement/collision.
type Domain int

const (
	DomainGround Domain = iota
	DomainAir
)

// Vec2 is a world-space point or vector in pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the distance between a and b.
func (a Vec2) Dist(b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// HeadingTo returns the angle in radians from (ox,oy) toward (tx,ty).
func HeadingTo(ox, oy, tx, ty float64) float64 {
	return math.Atan2(ty-oy, tx-ox)
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// angleDiff returns the shortest signed rotation from current to target.
func angleDiff(target, current float64) float64 {
	return normalizeAngle(target - current)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// FormatGameTime renders seconds as "[mm:ss]".
func FormatGameTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("[%02d:%02d]", total/60, total%60)
}
