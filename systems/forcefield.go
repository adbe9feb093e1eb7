package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/streams/components"
	"github.com/pthm-cable/streams/config"
	"github.com/pthm-cable/streams/noise"
	"github.com/pthm-cable/streams/vmath"
)

// Puff force mix between travel direction and outward push.
const (
	puffDirectional = 0.7
	puffRadial      = 0.3
)

// ForceField produces the ambient wind acting on particles: a slowly
// turning base wind scaled by tiered gusts, noise turbulence, and transient
// puffs and waves launched from the canvas edges.
type ForceField struct {
	cfg       config.ForceFieldConfig
	windSpeed float64
	noise     noise.Source
	rng       *rand.Rand

	angle        float64
	targetAngle  float64
	nextReorient float64
	nextPuff     float64
	nextWave     float64
	lastAdvance  float64

	puffs []components.WindPuff
	waves []components.Wave
}

// NewForceField creates a force field. rng drives wind changes and emitter
// placement and is owned by the caller's engine.
func NewForceField(cfg config.ForceFieldConfig, windSpeed float64, src noise.Source, rng *rand.Rand) *ForceField {
	f := &ForceField{
		cfg:       cfg,
		windSpeed: windSpeed,
		noise:     src,
		rng:       rng,
		nextPuff:  cfg.PuffInterval,
		nextWave:  cfg.WaveInterval,
	}
	f.angle = f.randomHeading()
	f.targetAngle = f.angle
	f.nextReorient = f.reorientDelay()
	return f
}

// SetWindSpeed changes the base wind multiplier.
func (f *ForceField) SetWindSpeed(s float64) {
	f.windSpeed = s
}

// WindDirection returns the current unit base wind direction.
func (f *ForceField) WindDirection() vmath.Vec2 {
	return vmath.FromAngle(f.angle)
}

// Puffs returns the live puffs. The slice must not be modified.
func (f *ForceField) Puffs() []components.WindPuff { return f.puffs }

// Waves returns the live waves. The slice must not be modified.
func (f *ForceField) Waves() []components.Wave { return f.waves }

// randomHeading picks a new wind angle near horizontal, usually left to right.
func (f *ForceField) randomHeading() float64 {
	base := 0.0
	if f.rng.Float64() < 0.15 {
		base = math.Pi
	}
	return base + (f.rng.Float64()*2-1)*f.cfg.HorizontalBias*math.Pi
}

func (f *ForceField) reorientDelay() float64 {
	return f.cfg.ReorientMin + f.rng.Float64()*(f.cfg.ReorientMax-f.cfg.ReorientMin)
}

// Advance runs the time-driven bookkeeping for the frame: wind reorientation,
// emitter spawning, and dropping expired emitters.
func (f *ForceField) Advance(now, width, height float64) {
	dt := now - f.lastAdvance
	if dt < 0 {
		dt = 0
	}
	f.lastAdvance = now

	if now >= f.nextReorient {
		f.targetAngle = f.randomHeading()
		f.nextReorient = now + f.reorientDelay()
	}
	f.angle = vmath.WrapAngle(vmath.LerpAngle(f.angle, f.targetAngle, f.cfg.ReorientRate*dt))

	if f.cfg.Puffs && now >= f.nextPuff {
		f.SpawnPuff(now, width, height)
		f.nextPuff = now + f.cfg.PuffInterval*(0.8+0.4*f.rng.Float64())
	}
	if f.cfg.Waves && now >= f.nextWave {
		f.SpawnWave(now, width, height)
		f.nextWave = now + f.cfg.WaveInterval*(0.8+0.4*f.rng.Float64())
	}

	alive := 0
	for _, p := range f.puffs {
		if !p.Expired(now) {
			f.puffs[alive] = p
			alive++
		}
	}
	f.puffs = f.puffs[:alive]

	alive = 0
	for _, w := range f.waves {
		if !w.Expired(now, width, height) {
			f.waves[alive] = w
			alive++
		}
	}
	f.waves = f.waves[:alive]
}

// edgePoint returns a random point on a random canvas edge and the inward normal.
func (f *ForceField) edgePoint(width, height float64) (vmath.Vec2, vmath.Vec2) {
	switch f.rng.Intn(4) {
	case 0:
		return vmath.V(0, f.rng.Float64()*height), vmath.V(1, 0)
	case 1:
		return vmath.V(width, f.rng.Float64()*height), vmath.V(-1, 0)
	case 2:
		return vmath.V(f.rng.Float64()*width, 0), vmath.V(0, 1)
	default:
		return vmath.V(f.rng.Float64()*width, height), vmath.V(0, -1)
	}
}

// SpawnPuff launches a puff from a random edge toward the canvas interior.
func (f *ForceField) SpawnPuff(now, width, height float64) components.WindPuff {
	origin, _ := f.edgePoint(width, height)
	center := vmath.V(width/2, height/2)
	dir := center.Sub(origin).Normalize()
	if dir.IsZero() {
		dir = vmath.V(1, 0)
	}
	dir = dir.Rotate((f.rng.Float64()*2 - 1) * 0.3)

	p := components.WindPuff{
		Origin:   origin,
		Dir:      dir,
		Start:    now,
		Duration: f.cfg.PuffDurationMin + f.rng.Float64()*(f.cfg.PuffDurationMax-f.cfg.PuffDurationMin),
		Strength: f.cfg.PuffStrength * (0.8 + 0.4*f.rng.Float64()),
		Radius:   f.cfg.PuffRadius * (0.8 + 0.4*f.rng.Float64()),
		Speed:    f.cfg.PuffSpeed,
	}
	f.puffs = append(f.puffs, p)
	return p
}

// SpawnWave launches a wave travelling inward from a random edge.
func (f *ForceField) SpawnWave(now, width, height float64) components.Wave {
	origin, dir := f.edgePoint(width, height)
	w := components.Wave{
		Origin:    origin,
		Dir:       dir,
		Start:     now,
		Duration:  f.cfg.WaveDuration,
		Strength:  f.cfg.WaveStrength,
		Speed:     f.cfg.WaveSpeed,
		Amplitude: f.cfg.WaveAmplitude,
		Width:     f.cfg.WaveWidth,
	}
	f.waves = append(f.waves, w)
	return w
}

// GustFactor returns the wind multiplier at time t. The gust signal is
// bucketed into calm, normal, medium and powerful regimes rather than
// applied as one smooth curve.
func (f *ForceField) GustFactor(t float64) float64 {
	c := &f.cfg
	s := 0.7*math.Sin(t*c.GustFrequency) + 0.3*math.Sin(t*c.GustFrequency*2.3+1.1)
	switch {
	case s >= c.GustPeakThreshold:
		return c.GustPeak
	case s >= c.GustMediumThreshold:
		span := c.GustPeakThreshold - c.GustMediumThreshold
		frac := 1.0
		if span > 0 {
			frac = (s - c.GustMediumThreshold) / span
		}
		return vmath.Lerp(c.GustMediumMin, c.GustMediumMax, frac)
	case s >= 0:
		return c.GustNormal
	default:
		return c.GustCalm
	}
}

// Turbulence returns the noise swirl at pos.
func (f *ForceField) Turbulence(pos vmath.Vec2, t float64) vmath.Vec2 {
	c := &f.cfg
	x, y, z := pos.X*c.TurbulenceScale, pos.Y*c.TurbulenceScale, t*c.TurbulenceTimeScale
	n1 := f.noise.Noise3(x, y, z)
	n2 := f.noise.Noise3(x+100, y+100, z)
	angle := n1 * math.Pi * 2
	mag := (n2 + 1) * 0.5
	return vmath.FromAngle(angle).Mul(mag * c.TurbulenceStrength)
}

// PuffForce returns the contribution of one puff at pos.
func PuffForce(p components.WindPuff, pos vmath.Vec2, now float64) vmath.Vec2 {
	age := p.Age(now)
	if age < 0 || age > p.Duration || p.Duration <= 0 || p.Radius <= 0 {
		return vmath.Zero
	}
	d := pos.Sub(p.Center(now))
	dist := d.Mag()
	if dist >= p.Radius {
		return vmath.Zero
	}
	falloff := 1 - dist/p.Radius
	envelope := math.Sin(math.Pi * age / p.Duration)
	radial := d.Div(math.Max(dist, 1))
	dir := p.Dir.Mul(puffDirectional).Add(radial.Mul(puffRadial))
	return dir.Mul(p.Strength * falloff * envelope)
}

// WaveForce returns the contribution of one wave at pos.
func WaveForce(w components.Wave, pos vmath.Vec2, now float64) vmath.Vec2 {
	age := now - w.Start
	if age < 0 || age > w.Duration || w.Width <= 0 {
		return vmath.Zero
	}
	along := pos.Sub(w.Front(now)).Dot(w.Dir)
	if math.Abs(along) >= w.Width {
		return vmath.Zero
	}
	band := 0.5 * (1 + math.Cos(math.Pi*along/w.Width))
	envelope := math.Sin(math.Pi * age / w.Duration)
	return w.Dir.Mul(w.Strength * w.Amplitude * band * envelope)
}

// ForceAt returns the combined wind force at pos and time now, scaled for
// the physics step.
func (f *ForceField) ForceAt(pos vmath.Vec2, now, width, height float64) vmath.Vec2 {
	return f.WindAt(pos, now, width, height).Mul(f.cfg.ForceScale)
}

// WindAt returns the unscaled wind at pos: base wind times gust factor plus
// turbulence, puffs and waves. Expired emitters are skipped.
func (f *ForceField) WindAt(pos vmath.Vec2, now, width, height float64) vmath.Vec2 {
	wind := f.WindDirection().Mul(f.cfg.BaseSpeed * f.windSpeed * f.GustFactor(now))
	total := wind.Add(f.Turbulence(pos, now))

	for _, p := range f.puffs {
		if p.Expired(now) {
			continue
		}
		total = total.Add(PuffForce(p, pos, now))
	}
	for _, w := range f.waves {
		if w.Expired(now, width, height) {
			continue
		}
		total = total.Add(WaveForce(w, pos, now))
	}
	return total
}
