package view

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

var (
	colorBlue     = color.RGBA{R: 70, G: 110, B: 210, A: 255}
	colorRed      = color.RGBA{R: 210, G: 70, B: 70, A: 255}
	colorText     = color.RGBA{R: 200, G: 220, B: 200, A: 255}
	colorGround   = color.RGBA{R: 34, G: 46, B: 34, A: 255}
	colorGrid     = color.RGBA{R: 48, G: 64, B: 48, A: 255}
	colorHPBack   = color.RGBA{R: 40, G: 40, B: 40, A: 220}
	colorHPFill   = color.RGBA{R: 90, G: 200, B: 90, A: 255}
	colorSelected = color.RGBA{R: 255, G: 230, B: 120, A: 255}
)

func sideColor(s game.Side) color.RGBA {
	if s == game.SideRed {
		return colorRed
	}
	return colorBlue
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}

// frameRenderer draws actors for one frame through the camera.
type frameRenderer struct {
	dst      *ebiten.Image
	cam      *Camera
	selected game.ActorID
}

var _ game.Renderer = (*frameRenderer)(nil)

func (r *frameRenderer) point(p game.Vec2) (float32, float32) {
	x, y := r.cam.WorldToScreen(p)
	return float32(x), float32(y)
}

func (r *frameRenderer) hpBar(p game.Vec2, radius, frac float64) {
	x, y := r.point(p)
	w := float32(math.Max(16, 2*radius*r.cam.Zoom))
	top := y - float32(radius*r.cam.Zoom) - 7
	vector.FillRect(r.dst, x-w/2, top, w, 3, colorHPBack, false)
	vector.FillRect(r.dst, x-w/2, top, w*float32(math.Max(0, frac)), 3, colorHPFill, false)
}

func (r *frameRenderer) DrawFortress(f *game.Fortress) {
	x, y := r.point(f.Pos)
	rad := float32(math.Max(4, f.Size*r.cam.Zoom))
	c := sideColor(f.Side)
	vector.FillCircle(r.dst, x, y, rad, color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: 255}, true)
	vector.StrokeCircle(r.dst, x, y, rad, 3, c, true)
	r.hpBar(f.Pos, f.Size, f.HP/f.MaxHP)
}

func (r *frameRenderer) DrawUnit(u *game.Unit) {
	x, y := r.point(u.Pos)
	rad := float32(math.Max(3, u.Type.Radius*r.cam.Zoom))
	c := sideColor(u.Side)

	if u.Type.Domain == game.DomainAir {
		// Drones are a filled diamond pointing along their heading.
		ca, sa := float32(math.Cos(u.Angle)), float32(math.Sin(u.Angle))
		var path vector.Path
		path.MoveTo(x+ca*rad*1.4, y+sa*rad*1.4)
		path.LineTo(x-sa*rad, y+ca*rad)
		path.LineTo(x-ca*rad, y-sa*rad)
		path.LineTo(x+sa*rad, y-ca*rad)
		path.Close()
		op := &vector.DrawPathOptions{AntiAlias: true}
		op.ColorScale.ScaleWithColor(c)
		vector.FillPath(r.dst, &path, &vector.FillOptions{}, op)
	} else {
		vector.FillCircle(r.dst, x, y, rad, c, true)
		hx := x + float32(math.Cos(u.Angle))*rad
		hy := y + float32(math.Sin(u.Angle))*rad
		vector.StrokeLine(r.dst, x, y, hx, hy, 2, color.White, true)
		if u.Type.HasTurret() {
			l := rad * 1.6
			tx := x + float32(math.Cos(u.TurretAngle))*l
			ty := y + float32(math.Sin(u.TurretAngle))*l
			vector.StrokeLine(r.dst, x, y, tx, ty, 3, color.RGBA{R: 20, G: 20, B: 20, A: 255}, true)
		}
	}

	if u.ID == r.selected {
		vector.StrokeCircle(r.dst, x, y, rad+4, 2, colorSelected, true)
		if p, ok := u.Order.TargetPos(); ok {
			px, py := r.point(p)
			vector.StrokeLine(r.dst, x, y, px, py, 1, colorSelected, true)
		}
	}
	r.hpBar(u.Pos, u.Type.Radius, u.HP/u.Type.MaxHP)
}

func (r *frameRenderer) DrawBullet(b *game.Bullet) {
	trail := b.Trail()
	c := color.RGBA{R: 255, G: 240, B: 180, A: 255}
	for i := 1; i < len(trail); i++ {
		x0, y0 := r.point(trail[i-1])
		x1, y1 := r.point(trail[i])
		c.A = uint8(80 + 175*i/len(trail))
		vector.StrokeLine(r.dst, x0, y0, x1, y1, 2, c, true)
	}
	x, y := r.point(b.Pos)
	vector.FillCircle(r.dst, x, y, 2, c, true)
}

// drawGround fills the battlefield and draws the level grid.
func drawGround(dst *ebiten.Image, cam *Camera, cell float64) {
	x0, y0 := cam.WorldToScreen(game.Vec2{})
	x1, y1 := cam.WorldToScreen(game.Vec2{X: cam.WorldW, Y: cam.WorldH})
	vector.FillRect(dst, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), colorGround, false)
	for gx := 0.0; gx <= cam.WorldW; gx += cell {
		sx, _ := cam.WorldToScreen(game.Vec2{X: gx})
		vector.StrokeLine(dst, float32(sx), float32(y0), float32(sx), float32(y1), 1, colorGrid, false)
	}
	for gy := 0.0; gy <= cam.WorldH; gy += cell {
		_, sy := cam.WorldToScreen(game.Vec2{Y: gy})
		vector.StrokeLine(dst, float32(x0), float32(sy), float32(x1), float32(sy), 1, colorGrid, false)
	}
}
