// Package view is the ebiten front end: it steps the world and the AI
// bridge, draws the battlefield and turns mouse input into player commands.
package view

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Fortress-Command/internal/bridge"
	"github.com/Garsondee/Fortress-Command/internal/game"
)

const (
	tickDT      = 1.0 / 60.0
	panelWidth  = 340
	viewWidth   = 1500
	viewHeight  = 1000
	gridCell    = 250.0
	cardWidth   = 96
	cardHeight  = 60
	cardSpacing = 10
)

var speeds = []float64{0, 0.5, 1, 2, 4}

// Options configures a Game.
type Options struct {
	World      *game.World
	PlayerSide game.Side
	// Bridge drives the opposing fortress. Nil leaves it idle.
	Bridge *bridge.Bridge
	Logger zerolog.Logger
	Speed  float64
	Title  string
}

// Game implements ebiten.Game.
type Game struct {
	world   *game.World
	player  *game.PlayerController
	bridge  *bridge.Bridge
	log     zerolog.Logger
	cam     *Camera
	notices *NoticeLog
	effects *EffectLayer
	face    text.Face
	title   string

	speed     float64
	tickAccum float64
	showHelp  bool

	prevKeys  map[ebiten.Key]bool
	prevLeft  bool
	prevRight bool

	writeClipboard func(string) error
}

// New wires the world's notifier and effect sink to the view.
func New(o Options) *Game {
	if o.Speed <= 0 {
		o.Speed = 1
	}
	g := &Game{
		world:          o.World,
		player:         game.NewPlayerController(o.World, o.PlayerSide),
		bridge:         o.Bridge,
		log:            o.Logger.With().Str("component", "view").Logger(),
		cam:            NewCamera(viewWidth, viewHeight, o.World.Cfg.Width, o.World.Cfg.Height),
		effects:        &EffectLayer{},
		face:           text.NewGoXFace(basicfont.Face7x13),
		title:          o.Title,
		speed:          o.Speed,
		showHelp:       true,
		prevKeys:       make(map[ebiten.Key]bool),
		writeClipboard: clipboard.WriteAll,
	}
	g.notices = NewNoticeLog(func() float64 { return g.world.Time })
	g.world.Notifier = g.notices
	g.world.Effects = g.effects
	return g
}

func (g *Game) Update() error {
	g.handleInput()

	g.tickAccum += g.speed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick()
	}
	g.effects.Update(tickDT)
	g.notices.Age(tickDT)
	return nil
}

// simTick advances the world and the bridge by one fixed step.
func (g *Game) simTick() {
	if g.world.Over {
		return
	}
	g.world.Step(tickDT)
	if g.bridge != nil {
		g.bridge.Update(tickDT)
	}
	if g.world.Over {
		reason := game.DetermineOutcome(g.world)
		g.log.Info().
			Str("outcome", g.world.Outcome.String()).
			Str("reason", reason.Description).
			Str("time", game.FormatGameTime(g.world.Time)).
			Msg("battle over")
	}
}

func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes camera, speed, card and click input (edge-triggered).
func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	pan := 12.0
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pan(0, -pan)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pan(0, pan)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Pan(-pan, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Pan(pan, 0)
	}
	mx, my := ebiten.CursorPosition()
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.ZoomAt(math.Pow(1.12, wy), float64(mx), float64(my))
	}

	if g.pressed(cur, ebiten.KeyP) {
		if g.speed > 0 {
			g.speed = 0
		} else {
			g.speed = 1
		}
	}
	if g.pressed(cur, ebiten.KeyComma) {
		g.speed = stepSpeed(g.speed, -1)
	}
	if g.pressed(cur, ebiten.KeyPeriod) {
		g.speed = stepSpeed(g.speed, 1)
	}
	if g.pressed(cur, ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}
	if g.pressed(cur, ebiten.KeyC) {
		g.copyReport()
	}
	if g.player.State == game.PlayerShowCards {
		for i, k := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3} {
			if g.pressed(cur, k) && i < len(game.UnitTypes) {
				g.say(g.player.PickCard(game.UnitTypes[i].Key))
			}
		}
	}

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevLeft {
		g.click(mx, my)
	}
	g.prevLeft = left
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !g.prevRight {
		g.say(g.player.Cancel())
	}
	g.prevRight = right

	g.prevKeys = cur
}

func (g *Game) click(mx, my int) {
	if g.world.Over || mx >= viewWidth {
		return
	}
	if g.player.State == game.PlayerShowCards {
		for i, r := range cardRects(len(game.UnitTypes)) {
			if (image.Point{X: mx, Y: my}).In(r) {
				g.say(g.player.PickCard(game.UnitTypes[i].Key))
				return
			}
		}
	}
	g.say(g.player.Click(g.cam.ScreenToWorld(float64(mx), float64(my))))
}

func (g *Game) say(msg string) {
	if msg != "" {
		g.notices.Notify(g.player.Side, msg)
	}
}

// copyReport puts the last situation report on the clipboard.
func (g *Game) copyReport() {
	if g.bridge == nil || g.bridge.LastSummary() == nil {
		g.say("no situation report yet")
		return
	}
	data, err := json.MarshalIndent(g.bridge.LastSummary(), "", "  ")
	if err != nil {
		g.log.Error().Err(err).Msg("marshal report")
		return
	}
	if err := g.writeClipboard(string(data)); err != nil {
		g.log.Warn().Err(err).Msg("clipboard write failed")
		g.say("clipboard unavailable")
		return
	}
	g.say(fmt.Sprintf("report copied (%d bytes)", len(data)))
}

// stepSpeed moves one notch along the speed ladder.
func stepSpeed(cur float64, dir int) float64 {
	idx := 0
	for i, s := range speeds {
		if s <= cur {
			idx = i
		}
	}
	idx += dir
	if idx < 0 {
		idx = 0
	}
	if idx >= len(speeds) {
		idx = len(speeds) - 1
	}
	return speeds[idx]
}

// cardRects lays out the deploy tray along the bottom of the viewport.
func cardRects(n int) []image.Rectangle {
	total := n*cardWidth + (n-1)*cardSpacing
	x := (viewWidth - total) / 2
	y := viewHeight - cardHeight - 20
	out := make([]image.Rectangle, n)
	for i := range out {
		out[i] = image.Rect(x, y, x+cardWidth, y+cardHeight)
		x += cardWidth + cardSpacing
	}
	return out
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	drawGround(screen, g.cam, gridCell)
	g.world.Render(&frameRenderer{dst: screen, cam: g.cam, selected: g.player.Selected})
	g.effects.Draw(screen, g.cam)

	g.drawStatus(screen)
	if g.player.State == game.PlayerShowCards {
		g.drawCards(screen)
	}
	if g.world.Over {
		g.drawOutcome(screen)
	}
	g.notices.Draw(screen, g.face, viewWidth, 0, viewHeight)
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	own := g.world.Fortress(g.player.Side)
	foe := g.world.Fortress(g.player.Side.Opponent())
	speed := "PAUSED"
	if g.speed > 0 {
		speed = fmt.Sprintf("%gx", g.speed)
	}
	lines := []string{
		fmt.Sprintf("%s  %s  speed %s", g.title, game.FormatGameTime(g.world.Time), speed),
		fmt.Sprintf("AP %3.0f/%.0f   HP %.0f   enemy HP %.0f", math.Floor(own.AP), own.APMax, own.HP, foe.HP),
		"mode: " + g.player.State.String(),
	}
	if g.bridge != nil {
		link := "idle"
		if g.bridge.Waiting() {
			link = "waiting"
		}
		lines = append(lines, fmt.Sprintf("AI link %s  round %d  queued %d  avg %.1fs",
			link, g.bridge.RoundCounter(), g.bridge.QueueLen(), g.bridge.AvgResponseTime()))
	}
	if g.showHelp {
		lines = append(lines,
			"click fortress=deploy  click unit=command  right=cancel",
			"WASD=pan  wheel=zoom  P=pause  ,/.=speed  C=copy report  H=help")
	}
	h := float32(len(lines)*16 + 8)
	vector.FillRect(screen, 4, 4, 460, h, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, 4, 4, 460, h, 1, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, l := range lines {
		drawText(screen, g.face, l, 10, 8+i*16, colorText)
	}
}

func (g *Game) drawCards(screen *ebiten.Image) {
	f := g.world.Fortress(g.player.Side)
	for i, r := range cardRects(len(game.UnitTypes)) {
		t := game.UnitTypes[i]
		bg := color.RGBA{R: 30, G: 44, B: 30, A: 230}
		if !f.Unlocked(t.Key) || f.AP < t.Cost {
			bg = color.RGBA{R: 44, G: 30, B: 30, A: 230}
		}
		x, y := float32(r.Min.X), float32(r.Min.Y)
		vector.FillRect(screen, x, y, cardWidth, cardHeight, bg, false)
		vector.StrokeRect(screen, x, y, cardWidth, cardHeight, 1, sideColor(g.player.Side), false)
		drawText(screen, g.face, fmt.Sprintf("%d %s", i+1, t.Name), r.Min.X+6, r.Min.Y+6, colorText)
		drawText(screen, g.face, fmt.Sprintf("%.0f AP", t.Cost), r.Min.X+6, r.Min.Y+24, colorText)
		if !f.Unlocked(t.Key) {
			drawText(screen, g.face, "locked", r.Min.X+6, r.Min.Y+40, colorRed)
		}
	}
}

func (g *Game) drawOutcome(screen *ebiten.Image) {
	msg := outcomeBanner(g.world.Outcome, g.player.Side)
	vector.FillRect(screen, viewWidth/2-120, viewHeight/2-30, 240, 60, color.RGBA{R: 0, G: 0, B: 0, A: 200}, false)
	drawText(screen, g.face, msg+"  "+game.FormatGameTime(g.world.Time), viewWidth/2-60, viewHeight/2-6, colorSelected)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return viewWidth + panelWidth, viewHeight
}

func outcomeBanner(o game.BattleOutcome, player game.Side) string {
	win := game.OutcomeBlueVictory
	if player == game.SideRed {
		win = game.OutcomeRedVictory
	}
	switch o {
	case win:
		return "VICTORY"
	case game.OutcomeDraw, game.OutcomeInconclusive:
		return "DRAW"
	default:
		return "DEFEAT"
	}
}
