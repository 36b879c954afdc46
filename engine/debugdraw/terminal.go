package debugdraw

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
)

type terminalRendererImpl struct {
	screen tcell.Screen
	proj   Projector
}

// TerminalRenderer is a DebugRenderer that draws lines as glyphs on a terminal screen.
type TerminalRenderer interface {
	DebugRenderer

	// SetViewProjection changes the matrix used to project subsequent primitives and
	// picks up the current screen size.
	//
	// Parameters:
	//   - viewProj: a camera's projection * view matrix
	SetViewProjection(viewProj mgl32.Mat4)

	// Aspect returns the screen aspect ratio accounting for cells being about twice as tall as wide.
	//
	// Returns:
	//   - float32: the aspect ratio a camera should use
	Aspect() float32

	// Clear blanks the screen.
	Clear()

	// Show flushes drawn cells to the terminal.
	Show()
}

var _ TerminalRenderer = &terminalRendererImpl{}

// NewTerminalRenderer creates a renderer over an initialized screen.
//
// Parameters:
//   - screen: the tcell screen, already initialized by the caller
//   - viewProj: the initial projection * view matrix
//
// Returns:
//   - TerminalRenderer: the renderer
func NewTerminalRenderer(screen tcell.Screen, viewProj mgl32.Mat4) TerminalRenderer {
	t := &terminalRendererImpl{screen: screen}
	t.SetViewProjection(viewProj)
	return t
}

func (t *terminalRendererImpl) DrawLine(from, to mgl32.Vec3, color Color) {
	fx1, fy1, fx2, fy2, ok := t.proj.ProjectLine(from, to)
	if !ok {
		return
	}
	w, h := t.proj.Size()
	if !nearViewport(fx1, fy1, w, h) || !nearViewport(fx2, fy2, w, h) {
		return
	}

	x1, y1 := int(math.Floor(fx1)), int(math.Floor(fy1))
	x2, y2 := int(math.Floor(fx2)), int(math.Floor(fy2))
	glyph := slopeGlyph(fx2-fx1, fy2-fy1)
	style := tcell.StyleDefault.Foreground(terminalColor(color))

	// Bresenham.
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx + dy
	for {
		t.setCell(x1, y1, glyph, style)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

func (t *terminalRendererImpl) DrawTextAtPosition(s string, pos mgl32.Vec3, color Color) {
	fx, fy, ok := t.proj.Project(pos)
	if !ok {
		return
	}
	style := tcell.StyleDefault.Foreground(terminalColor(color))
	runes := []rune(s)
	x := int(math.Floor(fx)) - len(runes)/2
	y := int(math.Floor(fy)) - 1
	for i, r := range runes {
		t.setCell(x+i, y, r, style)
	}
}

func (t *terminalRendererImpl) SetViewProjection(viewProj mgl32.Mat4) {
	w, h := t.screen.Size()
	t.proj = NewProjector(viewProj, w, h)
}

func (t *terminalRendererImpl) Aspect() float32 {
	w, h := t.screen.Size()
	if h == 0 {
		return 1
	}
	return float32(w) / float32(2*h)
}

func (t *terminalRendererImpl) Clear() {
	t.screen.Clear()
}

func (t *terminalRendererImpl) Show() {
	t.screen.Show()
}

func (t *terminalRendererImpl) setCell(x, y int, r rune, style tcell.Style) {
	w, h := t.proj.Size()
	if x < 0 || y < 0 || x >= int(w) || y >= int(h) {
		return
	}
	t.screen.SetContent(x, y, r, nil, style)
}

// slopeGlyph picks the character closest to a segment's direction in cell space.
func slopeGlyph(dx, dy float64) rune {
	adx := math.Abs(dx)
	ady := math.Abs(dy) * 2 // cells are about twice as tall as wide
	switch {
	case ady < adx*0.4:
		return '-'
	case adx < ady*0.4:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func terminalColor(c Color) tcell.Color {
	return tcell.NewRGBColor(channel(c[0]), channel(c[1]), channel(c[2]))
}

func channel(v float32) int32 {
	return int32(min(max(v, 0), 1)*255 + 0.5)
}

// nearViewport rejects points projected far outside the screen so line walks stay short.
func nearViewport(x, y, w, h float64) bool {
	return x > -4*w && x < 5*w && y > -4*h && y < 5*h
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
