package systems

import (
	"math"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/noise"
	"github.com/pthm-cable/streams/vmath"
)

// FlowSampler provides flow vectors at canvas positions.
type FlowSampler interface {
	Flow(x, y float64) vmath.Vec2
}

// FlowField is a grid of flow vectors recomputed once per frame. Each cell
// blends the curl of a noise potential, vortex swirl around confluence
// points, and a directional drift. Every component is divergence free, so
// particles following the field spread like a river instead of clumping.
type FlowField struct {
	cfg       config.FlowFieldConfig
	potential noise.Source

	width, height float64
	cols, rows    int
	cells         []vmath.Vec2
	confluences   []components.ConfluencePoint
	time          float64
}

// NewFlowField creates a field over a width x height canvas. potential is
// usually an FBM over the engine's noise source.
func NewFlowField(cfg config.FlowFieldConfig, potential noise.Source, width, height float64) *FlowField {
	f := &FlowField{
		cfg:       cfg,
		potential: potential,
	}
	for _, c := range cfg.Confluences {
		f.confluences = append(f.confluences, components.ConfluencePoint{
			FX:        c.X,
			FY:        c.Y,
			Strength:  c.Strength,
			Radius:    c.Radius,
			Clockwise: c.Clockwise,
		})
	}
	f.Resize(width, height)
	return f
}

// Resize recomputes the grid dimensions and confluence positions, then
// refills the grid so it is never observed half-sized.
func (f *FlowField) Resize(width, height float64) {
	f.width = math.Max(width, 1)
	f.height = math.Max(height, 1)
	res := f.cfg.Resolution
	f.cols = int(math.Ceil(f.width/res)) + 1
	f.rows = int(math.Ceil(f.height/res)) + 1

	n := f.cols * f.rows
	if cap(f.cells) >= n {
		f.cells = f.cells[:n]
	} else {
		f.cells = make([]vmath.Vec2, n)
	}
	for i := range f.confluences {
		f.confluences[i].Place(f.width, f.height)
	}
	f.Update(f.time)
}

// Update recomputes every grid cell for time t (seconds).
func (f *FlowField) Update(t float64) {
	f.time = t
	res := f.cfg.Resolution
	for j := 0; j < f.rows; j++ {
		y := float64(j) * res
		row := f.cells[j*f.cols : (j+1)*f.cols]
		for i := range row {
			row[i] = f.Compute(float64(i)*res, y, t)
		}
	}
}

// Compute evaluates the weighted field directly at (x, y), bypassing the grid.
func (f *FlowField) Compute(x, y, t float64) vmath.Vec2 {
	c := &f.cfg
	pos := vmath.V(x, y)
	return f.Curl(x, y, t).Mul(c.CurlWeight).
		Add(f.Vortex(pos).Mul(c.VortexWeight)).
		Add(f.Bias(pos, t).Mul(c.BiasWeight))
}

func (f *FlowField) potentialAt(x, y, t float64) float64 {
	s := f.cfg.Scale
	return f.potential.Noise3(x*s, y*s, t*f.cfg.TimeScale)
}

// Curl returns (dP/dy, -dP/dx) of the noise potential by central differences,
// expressed per noise unit so its magnitude does not depend on Scale.
func (f *FlowField) Curl(x, y, t float64) vmath.Vec2 {
	e := f.cfg.Epsilon
	dPdx := (f.potentialAt(x+e, y, t) - f.potentialAt(x-e, y, t)) / (2 * e)
	dPdy := (f.potentialAt(x, y+e, t) - f.potentialAt(x, y-e, t)) / (2 * e)
	return vmath.V(dPdy, -dPdx).Div(f.cfg.Scale)
}

// Vortex sums the tangential swirl of every confluence point reaching pos.
func (f *FlowField) Vortex(pos vmath.Vec2) vmath.Vec2 {
	core := f.cfg.VortexCore
	var v vmath.Vec2
	for i := range f.confluences {
		cp := &f.confluences[i]
		d := pos.Sub(cp.Pos)
		dist := d.Mag()
		if dist >= cp.Radius {
			continue
		}
		falloff := 1 - dist/cp.Radius
		falloff *= falloff
		// Solid-body rotation inside the core keeps the centre finite.
		if core > 0 && dist < core {
			falloff *= dist / core
		}
		// Perp turns clockwise on a y-down canvas.
		tangent := d.Perp().Div(math.Max(dist, 1))
		if !cp.Clockwise {
			tangent = tangent.Mul(-1)
		}
		v = v.Add(tangent.Mul(cp.Strength * falloff))
	}
	return v
}

// Bias is the directional drift: strongest along the canvas midline
// (perpendicular to the drift direction), plus a cross-stream wobble that
// varies along the drift.
func (f *FlowField) Bias(pos vmath.Vec2, t float64) vmath.Vec2 {
	c := &f.cfg
	dir := vmath.FromAngle(c.BiasAngle)
	across := dir.Perp()

	mid := vmath.V(f.width/2, f.height/2)
	rel := pos.Sub(mid)
	halfSpan := (math.Abs(across.X)*f.width + math.Abs(across.Y)*f.height) / 2
	off := math.Min(1, math.Abs(rel.Dot(across))/math.Max(halfSpan, 1))
	centre := 1 - c.EdgeFalloff*off

	wobble := math.Sin(rel.Dot(dir)*c.WobbleFrequency+t) * c.Wobble
	return dir.Mul(c.BiasStrength * centre).Add(across.Mul(wobble))
}

// Flow returns the bilinearly interpolated field at (x, y). Positions
// outside the canvas take the nearest edge value.
func (f *FlowField) Flow(x, y float64) vmath.Vec2 {
	if len(f.cells) == 0 || math.IsNaN(x) || math.IsNaN(y) {
		return vmath.Zero
	}
	res := f.cfg.Resolution
	gx := vmath.Clamp(x/res, 0, float64(f.cols-1))
	gy := vmath.Clamp(y/res, 0, float64(f.rows-1))

	i0, j0 := int(gx), int(gy)
	i1, j1 := i0+1, j0+1
	if i1 >= f.cols {
		i1 = f.cols - 1
	}
	if j1 >= f.rows {
		j1 = f.rows - 1
	}
	tx, ty := gx-float64(i0), gy-float64(j0)

	top := f.Cell(i0, j0).Lerp(f.Cell(i1, j0), tx)
	bottom := f.Cell(i0, j1).Lerp(f.Cell(i1, j1), tx)
	return top.Lerp(bottom, ty)
}

// Cell returns the stored vector at grid column i, row j.
func (f *FlowField) Cell(i, j int) vmath.Vec2 {
	return f.cells[j*f.cols+i]
}

// Cols returns the number of grid columns.
func (f *FlowField) Cols() int { return f.cols }

// Rows returns the number of grid rows.
func (f *FlowField) Rows() int { return f.rows }

// Resolution returns the grid spacing in px.
func (f *FlowField) Resolution() float64 { return f.cfg.Resolution }

// Confluences returns the current vortex points.
func (f *FlowField) Confluences() []components.ConfluencePoint { return f.confluences }

// Time returns the time of the last Update.
func (f *FlowField) Time() float64 { return f.time }
