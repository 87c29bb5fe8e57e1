package view

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

const (
	noticeMaxEntries = 60
	noticeLineHeight = 15
	noticeTTL        = 6.0 // seconds a notice stays highlighted
)

// Notice is one line in the notice panel.
type Notice struct {
	Time    string
	Side    game.Side
	Message string
	age     float64
}

// NoticeLog is a ring buffer of notices shown in the side panel. It is the
// world's and bridge's Notifier.
type NoticeLog struct {
	entries []Notice
	head    int
	count   int
	clock   func() float64
}

// NewNoticeLog stamps notices with clock, in game seconds.
func NewNoticeLog(clock func() float64) *NoticeLog {
	return &NoticeLog{entries: make([]Notice, noticeMaxEntries), clock: clock}
}

func (nl *NoticeLog) Notify(side game.Side, msg string) {
	if msg == "" {
		return
	}
	nl.entries[nl.head] = Notice{Time: game.FormatGameTime(nl.clock()), Side: side, Message: msg}
	nl.head = (nl.head + 1) % noticeMaxEntries
	if nl.count < noticeMaxEntries {
		nl.count++
	}
}

// Recent returns notices oldest first.
func (nl *NoticeLog) Recent() []Notice {
	out := make([]Notice, nl.count)
	for i := 0; i < nl.count; i++ {
		out[i] = nl.entries[(nl.head-nl.count+i+noticeMaxEntries)%noticeMaxEntries]
	}
	return out
}

// Age advances every notice's highlight timer by dt wall seconds.
func (nl *NoticeLog) Age(dt float64) {
	for i := range nl.entries {
		nl.entries[i].age += dt
	}
}

// Draw renders the panel at panelX with the newest notice at the bottom.
func (nl *NoticeLog) Draw(screen *ebiten.Image, face text.Face, panelX, top, panelH int) {
	vector.FillRect(screen, float32(panelX), float32(top), panelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), float32(top), float32(panelX), float32(top+panelH), 1, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)
	drawText(screen, face, "NOTICES", panelX+8, top+2, colorText)

	entries := nl.Recent()
	maxVisible := (panelH - 24) / noticeLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	y := top + 20
	for _, e := range entries {
		if e.age < noticeTTL {
			vector.FillRect(screen, float32(panelX+2), float32(y), panelWidth-4, noticeLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, sideColor(e.Side), false)
		drawText(screen, face, e.Time+" "+clip(e.Message, 44), panelX+12, y, colorText)
		y += noticeLineHeight
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
