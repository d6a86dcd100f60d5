package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/width"

	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
	"github.com/ashiaomair/06-final-game-charity-water/internal/handler"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

var (
	styleGround  = tcell.StyleDefault
	styleRiver   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleBridge  = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleTree    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDrop    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleBuild   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleUpgrade = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleChoice  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Reverse(true)
	styleActor   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)

// Row 0 is the status bar and the last row the feedback line; the canvas
// is scaled into the rows between.
func (c *client) field() (cols, rows int) {
	cols, rows = c.screen.Size()
	return cols, rows - 2
}

func (c *client) toCanvas(x, y int) geom.Point {
	cols, rows := c.field()
	cv := c.model.canvas
	if cols <= 0 || rows <= 0 || cv.W == 0 {
		return geom.Point{}
	}
	return geom.Point{
		X: int32(x) * cv.W / int32(cols),
		Y: int32(y-1) * cv.H / int32(rows),
	}
}

// fill paints every cell whose canvas area overlaps r.
func (c *client) fill(r geom.Rect, ch rune, st tcell.Style) {
	cols, rows := c.field()
	cv := c.model.canvas
	if cols <= 0 || rows <= 0 || cv.W == 0 || cv.H == 0 {
		return
	}
	x0 := int(r.X * int32(cols) / cv.W)
	x1 := int((r.Right() - 1) * int32(cols) / cv.W)
	y0 := int(r.Y * int32(rows) / cv.H)
	y1 := int((r.Bottom() - 1) * int32(rows) / cv.H)
	for y := y0; y <= y1 && y < rows; y++ {
		for x := x0; x <= x1 && x < cols; x++ {
			if x >= 0 && y >= 0 {
				c.screen.SetContent(x, y+1, ch, nil, st)
			}
		}
	}
}

func glyph(kind string) rune {
	switch kind {
	case "hut":
		return 'H'
	case "wall":
		return '#'
	case "well":
		return 'U'
	}
	return '?'
}

func (c *client) draw(now time.Time) {
	m := c.model
	c.screen.Clear()
	cols, _ := c.screen.Size()

	c.fill(m.river, '~', styleRiver)
	c.fill(m.bridge, '=', styleBridge)
	for _, t := range m.trees {
		c.fill(t.Bounds, '♣', styleTree)
	}
	for _, d := range m.collectibles {
		c.fill(d.Bounds, 'o', styleDrop)
	}
	for _, id := range m.order {
		e := m.entities[id]
		switch {
		case e.Flags&handler.FlagControllable != 0:
			c.fill(e.Bounds, '@', styleActor)
		case world.Class(e.Class) == world.ClassActor:
			c.fill(e.Bounds, 'v', styleActor)
		case m.selection[id]:
			c.fill(e.Bounds, glyph(e.Kind), styleChoice)
		case e.Flags&handler.FlagUpgraded != 0:
			c.fill(e.Bounds, glyph(e.Kind), styleUpgrade)
		default:
			c.fill(e.Bounds, glyph(e.Kind), styleBuild)
		}
	}

	status := fmt.Sprintf(" drops %d  %s  [h/w/p] build  [H/W/P] upgrade  [m] move  [r] reset  [q] quit",
		m.balance, m.difficulty)
	if m.won {
		status = fmt.Sprintf(" village complete! drops %d  [r] play again  [q] quit", m.balance)
	}
	c.line(0, pad(status, cols), styleStatus)

	_, h := c.screen.Size()
	note := m.notice(now)
	switch {
	case c.building:
		note = "click to place"
	case c.picking:
		note = "click a structure to move"
	case c.moving != 0:
		note = "click where it should go"
	}
	c.line(h-1, pad(" "+note, cols), styleGround)
	c.screen.Show()
}

func (c *client) line(y int, s string, st tcell.Style) {
	x := 0
	for _, r := range s {
		c.screen.SetContent(x, y, r, nil, st)
		x += runeCols(r)
	}
}

func runeCols(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// pad truncates or space-fills s to exactly n columns.
func pad(s string, n int) string {
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeCols(r)
		if used+w > n {
			break
		}
		b.WriteRune(r)
		used += w
	}
	if used < n {
		b.WriteString(strings.Repeat(" ", n-used))
	}
	return b.String()
}
