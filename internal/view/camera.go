package view

import (
	"math"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

const maxZoom = 4.0

// Camera maps world pixels onto a viewport. X and Y are the world point at
// the viewport centre.
type Camera struct {
	X, Y    float64
	Zoom    float64
	MinZoom float64

	ViewW, ViewH   float64
	WorldW, WorldH float64
}

// NewCamera centres on the world at the zoom that fits all of it.
func NewCamera(viewW, viewH, worldW, worldH float64) *Camera {
	fit := math.Min(viewW/worldW, viewH/worldH)
	return &Camera{
		X: worldW / 2, Y: worldH / 2,
		Zoom: fit, MinZoom: fit,
		ViewW: viewW, ViewH: viewH,
		WorldW: worldW, WorldH: worldH,
	}
}

// WorldToScreen converts a world point to viewport coordinates.
func (c *Camera) WorldToScreen(p game.Vec2) (float64, float64) {
	return (p.X-c.X)*c.Zoom + c.ViewW/2, (p.Y-c.Y)*c.Zoom + c.ViewH/2
}

// ScreenToWorld converts viewport coordinates to a world point.
func (c *Camera) ScreenToWorld(sx, sy float64) game.Vec2 {
	return game.Vec2{X: (sx-c.ViewW/2)/c.Zoom + c.X, Y: (sy-c.ViewH/2)/c.Zoom + c.Y}
}

// Pan moves the camera by a screen-space offset.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clamp()
}

// ZoomAt scales by factor while keeping the world point under (sx, sy) fixed.
func (c *Camera) ZoomAt(factor, sx, sy float64) {
	before := c.ScreenToWorld(sx, sy)
	c.Zoom = math.Max(c.MinZoom, math.Min(maxZoom, c.Zoom*factor))
	after := c.ScreenToWorld(sx, sy)
	c.X += before.X - after.X
	c.Y += before.Y - after.Y
	c.clamp()
}

// clamp keeps the view inside the world, centring an axis the view covers.
func (c *Camera) clamp() {
	c.X = clampAxis(c.X, c.ViewW/2/c.Zoom, c.WorldW)
	c.Y = clampAxis(c.Y, c.ViewH/2/c.Zoom, c.WorldH)
}

func clampAxis(v, half, size float64) float64 {
	if 2*half >= size {
		return size / 2
	}
	return math.Max(half, math.Min(size-half, v))
}
