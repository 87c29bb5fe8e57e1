package llm

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

// PromptParams are the numbers the rules prompt quotes back to the model.
type PromptParams struct {
	Side            game.Side
	World           game.WorldConfig
	ReportInterval  float64
	CommandInterval float64
	HistoryRounds   int
}

func dash(v float64, unit string) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%g%s", v, unit)
}

// RulesPrompt renders the system prompt: arena, unit table, behaviour
// rules and the reply format.
func RulesPrompt(p PromptParams) string {
	var b strings.Builder
	w := p.World

	b.WriteString("# Battlefield command system\n")
	fmt.Fprintf(&b, "You command a fortress. Every %g seconds you receive a JSON situation report. "+
		"Analyse it, deploy units and issue orders until the enemy fortress is destroyed.\n\n", p.ReportInterval)

	b.WriteString("## 1. Arena\n")
	fmt.Fprintf(&b, "- Battlefield size: %g x %g.\n", w.Width, w.Height)
	fmt.Fprintf(&b, "- You command the %s side.\n", strings.ToUpper(p.Side.String()))
	fmt.Fprintf(&b, "- Fortresses: blue at (0, %g), red at (%g, %g).\n", w.Height/2, w.Width, w.Height/2)
	fmt.Fprintf(&b, "- Fortress: HP %g, AP ceiling %g, AP regen %g/sec.\n\n", w.FortressHP, w.APMax, w.APRegen)

	b.WriteString("## 2. Units\n")
	b.WriteString("| type | AP | HP | speed | range | damage | reload | bullet speed | can attack | notes |\n")
	b.WriteString("| :--- | :--- | :--- | :--- | :--- | :--- | :--- | :--- | :--- | :--- |\n")
	for _, key := range game.UnitTypeKeys() {
		t, _ := game.LookupUnitType(key)
		dmg := fmt.Sprintf("%g", t.Damage)
		if t.Pellets > 1 {
			dmg = fmt.Sprintf("%gx%d", t.Damage, t.Pellets)
		}
		fmt.Fprintf(&b, "| %s (%s) | %g | %g | %g | %g | %s | %s | %s | %s | %s |\n",
			t.Name, t.Key, t.Cost, t.MaxHP, t.MaxSpeed, t.AttackRange, dmg,
			dash(t.ReloadTime, "s"), dash(t.BulletSpeed, ""),
			strings.Join(t.TargetNames(), ", "), t.Description)
	}

	b.WriteString(`
## 3. Unit behaviour
Each unit runs one order at a time. A new order replaces the current one.
1. Move: a coordinate target sends the unit to that point; it idles on arrival.
2. Engage: an enemy id makes the unit chase that target until one of them dies.
   Turreted units must rotate the turret onto the target before firing.
3. Follow: a friendly id makes the unit keep station behind that leader and
   assist its target when in range, until the leader dies or a new order arrives.
4. Auto scan: scanning units engage enemies in range. Precedence is ordered
   target, then a recent attacker, then the highest priority enemy in range.

## 4. Reply format
Reply with a single JSON object, no Markdown, holding "thoughts" (string) and
"actions" (array). An empty actions array saves AP; avoid sitting at the ceiling.
`)
	fmt.Fprintf(&b, "Actions run one at a time, %g seconds apart.\n\n", p.CommandInterval)
	b.WriteString(`Commands:
- {"cmd":"DEPLOY","type":"<availableTypes entry>","target":<target>}
- {"cmd":"ORDER","id":<unit id>,"target":<target>}
- {"cmd":"AUTOSCAN","id":<unit id>,"on":true|false}

Targets are either a coordinate {"x":100,"y":200} or a bare unit id such as 105.
A coordinate inside the enemy fortress engages it; targeting your own fortress
is rejected. A friendly id means follow, an enemy id means engage. Orders
against a type the unit cannot attack are rejected.

## 5. Report fields
- gameTime: elapsed game time [mm:ss]
- currentRoundIndex: your decision round
- fortress: your fortress hp and ap
- techStatus: unlocked and locked unit types
- allies/enemies: unit lists; enemies carry position and motion only
`)
	fmt.Fprintf(&b, "- history: your last %d decisions with per-action outcomes\n", p.HistoryRounds)
	b.WriteString(`- events: recent damage taken by your units and fortress
- avgResponseTime: mean seconds between a report and your reply
- targetPos, cmdTargetId, autoTargetId, followTargetId: each ally's current order
`)
	return b.String()
}
