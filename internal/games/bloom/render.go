package bloom

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/vovakirdan/bloom/internal/core"
	"github.com/vovakirdan/bloom/internal/merge"
)

// Minimum terminal size the container can be drawn in.
const (
	MinScreenW = 24
	MinScreenH = 16
)

// Rows reserved around the container.
const (
	hudRows    = 2
	footerRows = 1
)

// Visual characters
const (
	DiscChar     = '█'
	BoundaryChar = '╌'
)

// tierColors gives every tier its own color, small to large.
var tierColors = [merge.TierCount]core.Color{
	core.ColorPink,
	core.ColorRed,
	core.ColorOrange,
	core.ColorYellow,
	core.ColorBrightGreen,
	core.ColorCyan,
	core.ColorBrightBlue,
	core.ColorPurple,
	core.ColorMagenta,
	core.ColorGold,
}

// skinGlyphs maps asset ids to the glyph drawn at a ball's center.
var skinGlyphs = map[string]rune{
	"smallest":      '·',
	"small":         '∘',
	"mediumSmall":   '○',
	"medium":        '◎',
	"mediumLarge":   '●',
	"large":         '◉',
	"larger":        '❀',
	"evenLarger":    '✿',
	"almostLargest": '❁',
	"largest":       '✾',
}

// TierColor returns the color of a tier.
func TierColor(t merge.Tier) core.Color {
	if !t.Valid() {
		return core.ColorDefault
	}
	return tierColors[t]
}

// SkinGlyph returns the center glyph for an asset id. Unknown assets use
// their first letter.
func SkinGlyph(asset string) rune {
	if r, ok := skinGlyphs[asset]; ok {
		return r
	}
	r, _ := utf8.DecodeRuneInString(asset)
	if r == utf8.RuneError {
		return '?'
	}
	return unicode.ToUpper(r)
}

// viewport maps container units to screen cells. The y axis flips: the
// container floor is the bottom of the box.
type viewport struct {
	box    core.Rect // Container walls, borders included
	top    float64   // Container y shown on the first row above the box
	scaleX float64   // Cells per unit
	scaleY float64
	origin int // Screen row of container y == top
}

// newViewport fits the container plus the spawn headroom into the screen.
// Terminal cells are about twice as tall as wide, so one unit spans twice
// as many columns as rows.
func (g *Game) newViewport(w, h int) viewport {
	c := g.cfg.Container
	top := c.Height + c.SpawnHeadroom + merge.Tier(3).Radius()

	rows := h - hudRows - footerRows - 1 // 1 for the floor border
	scaleY := float64(rows) / top
	scaleX := 2 * scaleY
	if cols := float64(w - 2); c.Width*scaleX > cols {
		scaleX = cols / c.Width
		scaleY = scaleX / 2
	}

	boxW := int(math.Round(c.Width*scaleX)) + 2
	boundaryRow := int(math.Round((top - c.Height) * scaleY))
	floorRow := int(math.Round(top * scaleY))
	x := (w - boxW) / 2

	return viewport{
		box:    core.NewRect(x, hudRows+boundaryRow, boxW, floorRow-boundaryRow+1),
		top:    top,
		scaleX: scaleX,
		scaleY: scaleY,
		origin: hudRows,
	}
}

// cell converts a container point to a screen cell.
func (v viewport) cell(p core.Vec2) (int, int) {
	x := v.box.X + 1 + int(math.Floor(p.X*v.scaleX))
	y := v.origin + int(math.Floor((v.top-p.Y)*v.scaleY))
	return x, y
}

// point converts the center of a screen cell back to container units.
func (v viewport) point(x, y int) core.Vec2 {
	return core.V(
		(float64(x-v.box.X-1)+0.5)/v.scaleX,
		v.top-(float64(y-v.origin)+0.5)/v.scaleY,
	)
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if dst.Width() < MinScreenW || dst.Height() < MinScreenH {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small", core.ColorBrightRed)
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("Need %dx%d", MinScreenW, MinScreenH), core.ColorGray)
		return
	}
	if g.session == nil {
		return
	}

	v := g.newViewport(dst.Width(), dst.Height())
	g.drawHUD(dst)
	g.drawContainer(dst, v)
	for _, b := range g.session.Balls() {
		g.drawBall(dst, v, b)
	}
	g.drawFloats(dst, v)
	g.drawFooter(dst)

	switch g.session.State() {
	case merge.StatePaused:
		drawOverlay(dst, core.ColorBrightYellow, "PAUSED", "P resume  R restart  Esc menu")
	case merge.StateGameOver:
		reason := "The stack overflowed"
		if g.session.EndReason() == merge.EndTimeout {
			reason = "Time is up"
		}
		drawOverlay(dst, core.ColorBrightRed, "GAME OVER", reason,
			fmt.Sprintf("Score %d  Best %d", g.session.Score(), g.session.Best()),
			"Enter play again  Esc menu")
	case merge.StateWin:
		drawOverlay(dst, core.ColorGold, "FULL BLOOM!",
			fmt.Sprintf("Score %d  Best %d", g.session.Score(), g.session.Best()),
			"Enter next round  Esc menu")
	}
}

func (g *Game) drawHUD(dst *core.Screen) {
	s := g.session
	left := fmt.Sprintf(" %s  Score %d  Best %d", g.mode.Title, s.Score(), s.Best())
	dst.DrawTextColored(0, 0, left, core.ColorBrightWhite)

	if g.mode.Timed {
		remaining := s.TimeRemaining()
		color := core.ColorBrightGreen
		if remaining <= 10*time.Second {
			color = core.ColorBrightRed
		}
		clock := fmt.Sprintf("%d:%02d ", int(remaining.Minutes()), int(remaining.Seconds())%60)
		dst.DrawTextColored(dst.Width()-utf8.RuneCountInString(clock), 0, clock, color)
	}

	combo := fmt.Sprintf(" Combo x%.1f ", s.Multiplier())
	dst.DrawTextColored(0, 1, combo, core.ColorBrightMagenta)
	if window := s.ComboWindow(); window > 0 && s.Multiplier() > 1.0 {
		width := 12
		filled := int(math.Round(float64(width) * float64(s.ComboRemaining()) / float64(window)))
		bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
		dst.DrawTextColored(len(combo), 1, bar, core.ColorMagenta)
	}
	if cur := s.Current(); cur != nil {
		next := fmt.Sprintf("Next %c ", SkinGlyph(s.Skin(cur.Tier)))
		dst.DrawTextColored(dst.Width()-utf8.RuneCountInString(next), 1, next, TierColor(cur.Tier))
	}
}

func (g *Game) drawContainer(dst *core.Screen, v viewport) {
	dst.DrawBox(v.box, core.ColorGray)
	dst.DrawHLine(v.box.X+1, v.box.Y, v.box.W-2, BoundaryChar, core.ColorRed)
}

func (g *Game) drawBall(dst *core.Screen, v viewport, b *merge.Ball) {
	if !b.Live() {
		return
	}
	r := b.Radius()
	color := TierColor(b.Tier)

	x0, y0 := v.cell(core.V(b.Pos.X-r, b.Pos.Y+r))
	x1, y1 := v.cell(core.V(b.Pos.X+r, b.Pos.Y-r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if v.box.Contains(x, y) && (x == v.box.X || x == v.box.Right()-1 || y == v.box.Bottom()-1) {
				continue // keep the walls visible
			}
			if v.point(x, y).Sub(b.Pos).Len() <= r {
				dst.SetColored(x, y, DiscChar, color)
			}
		}
	}

	cx, cy := v.cell(b.Pos)
	dst.SetColored(cx, cy, SkinGlyph(g.session.Skin(b.Tier)), core.ColorBrightWhite)
}

func (g *Game) drawFloats(dst *core.Screen, v viewport) {
	for _, f := range g.floats {
		x, y := v.cell(f.pos)
		x -= utf8.RuneCountInString(f.text) / 2
		dst.DrawTextColored(x, y, f.text, f.color)
	}
}

func (g *Game) drawFooter(dst *core.Screen) {
	help := "←/→ move  Space drop  P pause  R restart  Esc menu"
	dst.DrawTextCentered(dst.Height()-1, help, core.ColorGray)
}

// drawOverlay draws a framed message in the middle of the screen.
func drawOverlay(dst *core.Screen, color core.Color, title string, lines ...string) {
	width := utf8.RuneCountInString(title)
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}
	width += 4
	height := len(lines) + 4

	box := core.NewRect((dst.Width()-width)/2, (dst.Height()-height)/2, width, height)
	for y := box.Y; y < box.Bottom(); y++ {
		dst.DrawHLine(box.X, y, box.W, ' ', core.ColorDefault)
	}
	dst.DrawBox(box, color)
	dst.DrawTextCentered(box.Y+1, title, color)
	for i, l := range lines {
		dst.DrawTextCentered(box.Y+3+i, l, core.ColorWhite)
	}
}
