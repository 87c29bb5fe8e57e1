package game

import (
	"math"
	"sort"
)

// defaultPriorityRank is the rank of any category missing from a unit
// type's priority table.
const defaultPriorityRank = 99

// UnitType holds the static per-type stats shared by every unit of a kind.
type UnitType struct {
	Key         string // "sniper", "drone", "shotgun"
	Name        string
	Description string
	Category    Category
	Domain      Domain

	Cost     float64
	MaxHP    float64
	Radius   float64 // collision radius
	AutoScan bool    // default auto-scan flag for new units

	MaxSpeed   float64
	Accel      float64
	AngMax     float64
	AngAccel   float64
	TurretMax  float64 // ground types only
	TurretAcc  float64
	TurnSense  float64 // air types only: velocity relaxation rate
	MuzzleDist float64

	AttackRange float64
	Damage      float64
	ReloadTime  float64 // seconds; 0 for contact weapons
	BulletSpeed float64
	Pellets     int     // bullets per shot; 0 for contact weapons
	SpreadRad   float64 // +/- angle jitter per pellet
	SpeedJitter float64 // extra [0,SpeedJitter) bullet speed per pellet

	// Targets is the capability set: categories this type may damage.
	Targets map[Category]bool
	// Priority maps enemy category to rank; lower engages first.
	Priority map[Category]int
}

// Rank returns the priority rank for a target category.
func (t *UnitType) Rank(c Category) int {
	if r, ok := t.Priority[c]; ok {
		return r
	}
	return defaultPriorityRank
}

// HasTurret reports whether the type aims a turret independent of its hull.
func (t *UnitType) HasTurret() bool {
	return t.Domain == DomainGround && t.Pellets > 0
}

// Contact reports whether the type attacks by ramming its target.
func (t *UnitType) Contact() bool {
	return t.Pellets == 0
}

// TargetNames lists the capability set in a stable order, for prompts and HUDs.
func (t *UnitType) TargetNames() []string {
	cats := make([]int, 0, len(t.Targets))
	for c, ok := range t.Targets {
		if ok {
			cats = append(cats, int(c))
		}
	}
	sort.Ints(cats)
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = Category(c).String()
	}
	return out
}

func categorySet(cats ...Category) map[Category]bool {
	m := make(map[Category]bool, len(cats))
	for _, c := range cats {
		m[c] = true
	}
	return m
}

// Sniper is a slow long-range vehicle. It never scans on its own.
var Sniper = &UnitType{
	Key:         "sniper",
	Name:        "Sniper",
	Description: "Ground vehicle with long-range fire; good against fortresses and heavy units. Does not auto-scan.",
	Category:    CategoryVehicle,
	Domain:      DomainGround,
	Cost:        50,
	MaxHP:       1000,
	Radius:      40,
	MaxSpeed:    50,
	Accel:       10,
	AngMax:      2,
	AngAccel:    0.5,
	TurretMax:   3,
	TurretAcc:   1,
	MuzzleDist:  40,
	AttackRange: 500,
	Damage:      200,
	ReloadTime:  2.0,
	BulletSpeed: 1200,
	Pellets:     1,
	Targets:     categorySet(CategoryFortress, CategoryVehicle),
	Priority:    map[Category]int{CategoryVehicle: 1, CategoryFortress: 2},
}

// Drone is a fast suicide flyer that detonates on contact.
var Drone = &UnitType{
	Key:         "drone",
	Name:        "Drone",
	Description: "Air unit; suicide attack on contact with its locked target. Does not auto-scan.",
	Category:    CategoryDrone,
	Domain:      DomainAir,
	Cost:        30,
	MaxHP:       20,
	Radius:      20,
	MaxSpeed:    300,
	Accel:       400,
	AngMax:      8,
	AngAccel:    4,
	TurnSense:   5.0,
	AttackRange: 600,
	Damage:      600,
	Targets:     categorySet(CategoryFortress, CategoryVehicle),
	Priority:    map[Category]int{CategoryVehicle: 1, CategoryFortress: 2},
}

// Shotgun is a close-range pellet vehicle and the drone counter.
var Shotgun = &UnitType{
	Key:         "shotgun",
	Name:        "Shotgun",
	Description: "Ground vehicle firing a 4-pellet spread at close range; counters drones. Auto-scans by default.",
	Category:    CategoryVehicle,
	Domain:      DomainGround,
	Cost:        40,
	MaxHP:       250,
	Radius:      30,
	AutoScan:    true,
	MaxSpeed:    160,
	Accel:       40,
	AngMax:      6,
	AngAccel:    2,
	TurretMax:   6,
	TurretAcc:   3,
	MuzzleDist:  30,
	AttackRange: 250,
	Damage:      20,
	ReloadTime:  1.0,
	BulletSpeed: 800,
	Pellets:     4,
	SpreadRad:   5 * math.Pi / 180,
	SpeedJitter: 100,
	Targets:     categorySet(CategoryFortress, CategoryVehicle, CategoryDrone),
	Priority:    map[Category]int{CategoryDrone: 1, CategoryVehicle: 2, CategoryFortress: 3},
}

// UnitTypes is the deployable roster, in display order.
var UnitTypes = []*UnitType{Sniper, Drone, Shotgun}

// LookupUnitType resolves a roster key.
func LookupUnitType(key string) (*UnitType, bool) {
	for _, t := range UnitTypes {
		if t.Key == key {
			return t, true
		}
	}
	return nil, false
}

// UnitTypeKeys returns every roster key in display order.
func UnitTypeKeys() []string {
	keys := make([]string, len(UnitTypes))
	for i, t := range UnitTypes {
		keys[i] = t.Key
	}
	return keys
}
