package game

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeRedVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

type BattleOutcomeReason struct {
	Outcome       BattleOutcome
	BlueHPFrac    float64
	RedHPFrac     float64
	BlueSurvivors int
	RedSurvivors  int
	BlueDeployed  int
	RedDeployed   int
	Description   string
}

// DetermineOutcome judges the battle. A destroyed fortress is decisive;
// otherwise the fortress HP fractions are compared.
func DetermineOutcome(w *World) BattleOutcomeReason {
	blue, red := w.Fortress(SideBlue), w.Fortress(SideRed)
	r := BattleOutcomeReason{
		BlueHPFrac:    blue.HP / blue.MaxHP,
		RedHPFrac:     red.HP / red.MaxHP,
		BlueSurvivors: len(w.UnitsOf(SideBlue)),
		RedSurvivors:  len(w.UnitsOf(SideRed)),
		BlueDeployed:  w.Stats.Deployed[SideBlue],
		RedDeployed:   w.Stats.Deployed[SideRed],
	}

	switch {
	case !blue.Alive && !red.Alive:
		r.Outcome, r.Description = OutcomeDraw, "mutual_destruction"
		return r
	case !red.Alive:
		r.Outcome, r.Description = OutcomeBlueVictory, "decisive_blue_victory_fortress_destroyed"
		return r
	case !blue.Alive:
		r.Outcome, r.Description = OutcomeRedVictory, "decisive_red_victory_fortress_destroyed"
		return r
	}

	diff := r.BlueHPFrac - r.RedHPFrac
	switch {
	case diff > 0.25:
		r.Outcome, r.Description = OutcomeBlueVictory, "marginal_blue_victory_fortress_damage"
	case diff < -0.25:
		r.Outcome, r.Description = OutcomeRedVictory, "marginal_red_victory_fortress_damage"
	case r.BlueHPFrac < 0.7 && r.RedHPFrac < 0.7:
		r.Outcome, r.Description = OutcomeDraw, "draw_similar_damage"
	default:
		r.Outcome, r.Description = OutcomeInconclusive, "inconclusive_insufficient_resolution"
	}
	return r
}
