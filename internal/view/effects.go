package view

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

type flash struct {
	kind game.EffectKind
	pos  game.Vec2
	side game.Side
	ttl  float64
	life float64
}

// flashLife is how long each effect kind stays on screen, in seconds.
var flashLife = map[game.EffectKind]float64{
	game.EffectMuzzle:    0.08,
	game.EffectHit:       0.2,
	game.EffectDeath:     0.6,
	game.EffectKill:      1.0,
	game.EffectExplosion: 0.5,
}

// EffectLayer collects cosmetic world events and fades them out.
type EffectLayer struct {
	flashes []flash
}

func (l *EffectLayer) Effect(e game.Effect) {
	life := flashLife[e.Kind]
	if life == 0 {
		return
	}
	l.flashes = append(l.flashes, flash{kind: e.Kind, pos: e.Pos, side: e.Side, ttl: life, life: life})
}

// Update ages effects and drops expired ones.
func (l *EffectLayer) Update(dt float64) {
	live := l.flashes[:0]
	for _, f := range l.flashes {
		f.ttl -= dt
		if f.ttl > 0 {
			live = append(live, f)
		}
	}
	l.flashes = live
}

// Len is the number of effects still showing.
func (l *EffectLayer) Len() int { return len(l.flashes) }

func (l *EffectLayer) Draw(dst *ebiten.Image, cam *Camera) {
	for _, f := range l.flashes {
		x, y := cam.WorldToScreen(f.pos)
		frac := f.ttl / f.life
		a := uint8(255 * frac)
		switch f.kind {
		case game.EffectMuzzle:
			vector.FillCircle(dst, float32(x), float32(y), float32(6*cam.Zoom+1), color.RGBA{R: 255, G: 230, B: 140, A: a}, true)
		case game.EffectHit:
			vector.FillCircle(dst, float32(x), float32(y), float32(10*cam.Zoom+1), color.RGBA{R: 255, G: 120, B: 60, A: a}, true)
		case game.EffectDeath:
			r := (1 - frac) * 40 * cam.Zoom
			vector.StrokeCircle(dst, float32(x), float32(y), float32(r+2), 2, color.RGBA{R: 200, G: 200, B: 200, A: a}, true)
		case game.EffectKill:
			c := sideColor(f.side)
			c.A = a
			vector.StrokeCircle(dst, float32(x), float32(y), float32(20*cam.Zoom+4), 2, c, true)
		case game.EffectExplosion:
			r := (1.2 - frac) * 60 * cam.Zoom
			vector.FillCircle(dst, float32(x), float32(y), float32(r+2), color.RGBA{R: 255, G: 160, B: 40, A: a / 2}, true)
		}
	}
}
