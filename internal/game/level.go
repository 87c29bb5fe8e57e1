package game

import (
	"fmt"
	"math"
)

// LevelUnit is one pre-placed unit. Positions are world pixels and the
// heading is in radians.
type LevelUnit struct {
	Type    string
	Pos     Vec2
	Heading float64
	Move    *ScheduledMove
}

// ScheduledMove is a move order issued once game time reaches At.
type ScheduledMove struct {
	Pos Vec2
	At  float64
}

// Level is a starting scenario.
type Level struct {
	Name        string
	Description string
	InitialAP   float64
	// Available restricts the blue roster; red keeps every type.
	Available []string
	Blue      []LevelUnit
	Red       []LevelUnit
}

// LevelLoader produces levels by name.
type LevelLoader interface {
	Load(name string) (*Level, error)
}

// ApplyLevel sets starting AP and rosters, places units in the field and
// schedules their timed orders. Every unit type is checked first, so a bad
// level leaves the world untouched.
func (w *World) ApplyLevel(l *Level) error {
	for _, side := range []Side{SideBlue, SideRed} {
		for i, lu := range l.units(side) {
			if _, ok := LookupUnitType(lu.Type); !ok {
				return fmt.Errorf("level %q %s unit %d: place %q: %w", l.Name, side, i, lu.Type, ErrUnknownType)
			}
		}
	}

	for _, f := range w.fortresses {
		f.AP = math.Min(l.InitialAP, f.APMax)
	}
	if len(l.Available) > 0 {
		w.Fortress(SideBlue).SetUnlocked(l.Available)
	}
	for _, side := range []Side{SideBlue, SideRed} {
		for i, lu := range l.units(side) {
			u, err := w.PlaceUnit(side, lu.Type, lu.Pos, lu.Heading)
			if err != nil {
				return fmt.Errorf("level %q %s unit %d: %w", l.Name, side, i, err)
			}
			if lu.Move != nil {
				w.ScheduleOrder(lu.Move.At, side, u.ID, PointRef(lu.Move.Pos.X, lu.Move.Pos.Y))
			}
		}
	}
	return nil
}

func (l *Level) units(side Side) []LevelUnit {
	if side == SideRed {
		return l.Red
	}
	return l.Blue
}
