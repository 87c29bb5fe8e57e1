package game

// Target is anything a unit can aim at, follow, or damage: units and
// fortresses both embed a Body.
type Target interface {
	body() *Body
	Category() Category
	Radius() float64
}

// CanAttack is the single capability rule used by bullet hit tests,
// auto-scan filtering and command validation.
func CanAttack(t *UnitType, target Target) bool {
	if t == nil || target == nil {
		return false
	}
	if !target.body().Alive {
		return false
	}
	return t.Targets[target.Category()]
}

// canAttackCategory checks the capability set without a liveness check.
func canAttackCategory(t *UnitType, c Category) bool {
	return t != nil && t.Targets[c]
}
