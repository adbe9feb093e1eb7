package renderer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/streams/vmath"
)

type rgb struct{ r, g, b float64 }

// TerminalTarget renders onto a tcell screen, one character cell per block
// of canvas pixels. Each cell keeps a colour that persists between frames so
// Fade produces trails like a pixel canvas does.
type TerminalTarget struct {
	screen        tcell.Screen
	width, height int // logical canvas size in px
	cols, rows    int
	cells         []rgb
	blend         Blend
}

// NewTerminalTarget creates a target drawing a width x height canvas onto screen.
func NewTerminalTarget(screen tcell.Screen, width, height int) *TerminalTarget {
	return &TerminalTarget{screen: screen, width: width, height: height}
}

// Ready fails when there is no screen or it has no cells.
func (t *TerminalTarget) Ready() error {
	if t.screen == nil {
		return fmt.Errorf("terminal screen missing: %w", ErrNoContext)
	}
	if cols, rows := t.screen.Size(); cols <= 0 || rows <= 0 {
		return fmt.Errorf("terminal has no cells: %w", ErrNoContext)
	}
	return nil
}

// Size returns the canvas size in pixels, not cells.
func (t *TerminalTarget) Size() (int, int) { return t.width, t.height }

// Resize changes the canvas size mapped onto the cells.
func (t *TerminalTarget) Resize(width, height int) {
	t.width, t.height = width, height
}

// Begin picks up terminal size changes.
func (t *TerminalTarget) Begin() {
	cols, rows := t.screen.Size()
	if cols != t.cols || rows != t.rows || len(t.cells) != cols*rows {
		t.cols, t.rows = cols, rows
		t.cells = make([]rgb, cols*rows)
	}
	t.blend = BlendAlpha
}

// End writes every cell to the screen and shows it.
func (t *TerminalTarget) End() {
	for y := 0; y < t.rows; y++ {
		for x := 0; x < t.cols; x++ {
			c := t.cells[y*t.cols+x]
			style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.r), int32(c.g), int32(c.b)))
			t.screen.SetContent(x, y, ' ', nil, style)
		}
	}
	t.screen.Show()
}

// Fade moves every cell toward bg by alpha.
func (t *TerminalTarget) Fade(bg color.RGBA, alpha float64) {
	a := vmath.Clamp(alpha, 0, 1)
	target := rgb{float64(bg.R), float64(bg.G), float64(bg.B)}
	for i := range t.cells {
		c := &t.cells[i]
		c.r += (target.r - c.r) * a
		c.g += (target.g - c.g) * a
		c.b += (target.b - c.b) * a
	}
}

// SetBlend selects how later draws combine with the cells.
func (t *TerminalTarget) SetBlend(b Blend) { t.blend = b }

// cellScale returns canvas pixels per cell on each axis.
func (t *TerminalTarget) cellScale() (float64, float64) {
	if t.cols == 0 || t.rows == 0 {
		return 1, 1
	}
	return float64(t.width) / float64(t.cols), float64(t.height) / float64(t.rows)
}

func (t *TerminalTarget) paint(x, y int, c color.RGBA, coverage float64) {
	if x < 0 || y < 0 || x >= t.cols || y >= t.rows {
		return
	}
	a := float64(c.A) / 255 * vmath.Clamp(coverage, 0, 1)
	if a <= 0 {
		return
	}
	cell := &t.cells[y*t.cols+x]
	if t.blend == BlendAdditive {
		cell.r = math.Min(255, cell.r+float64(c.R)*a)
		cell.g = math.Min(255, cell.g+float64(c.G)*a)
		cell.b = math.Min(255, cell.b+float64(c.B)*a)
		return
	}
	cell.r += (float64(c.R) - cell.r) * a
	cell.g += (float64(c.G) - cell.g) * a
	cell.b += (float64(c.B) - cell.b) * a
}

// Circle fills the cells whose centres fall inside the circle. Circles
// smaller than a cell tint their cell in proportion to their area.
func (t *TerminalTarget) Circle(center vmath.Vec2, radius float64, c color.RGBA) {
	sx, sy := t.cellScale()
	cx, cy := center.X/sx, center.Y/sy
	rx, ry := radius/sx, radius/sy

	if rx < 0.5 && ry < 0.5 {
		area := math.Pi * radius * radius / (sx * sy)
		t.paint(int(math.Floor(cx)), int(math.Floor(cy)), c, area)
		return
	}
	x0, x1 := int(math.Floor(cx-rx)), int(math.Ceil(cx+rx))
	y0, y1 := int(math.Floor(cy-ry)), int(math.Ceil(cy+ry))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				t.paint(x, y, c, 1)
			}
		}
	}
}

// Line steps through the cells between a and b, tinting each once.
func (t *TerminalTarget) Line(a, b vmath.Vec2, thickness float64, c color.RGBA) {
	sx, sy := t.cellScale()
	ax, ay := a.X/sx, a.Y/sy
	bx, by := b.X/sx, b.Y/sy
	coverage := thickness / math.Min(sx, sy)

	steps := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay))*2)) + 1
	lastX, lastY := math.MinInt, math.MinInt
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		x := int(math.Floor(ax + (bx-ax)*f))
		y := int(math.Floor(ay + (by-ay)*f))
		if x == lastX && y == lastY {
			continue
		}
		lastX, lastY = x, y
		t.paint(x, y, c, coverage)
	}
}

// CellColor returns the current colour of a cell.
func (t *TerminalTarget) CellColor(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= t.cols || y >= t.rows {
		return color.RGBA{}
	}
	c := t.cells[y*t.cols+x]
	return color.RGBA{R: uint8(c.r), G: uint8(c.g), B: uint8(c.b), A: 255}
}
