package renderer

import (
	"image/color"
	"sync"

	"github.com/pthm-cable/streams/vmath"
)

// FrameStats counts the draw calls of one frame.
type FrameStats struct {
	Fades    int
	Circles  int
	Lines    int
	Additive int // draw calls issued with additive blending
}

// Recorder is a headless target that counts draw calls. It backs the
// headless CLI mode and the engine tests.
type Recorder struct {
	mu sync.Mutex

	width, height int
	err           error
	blend         Blend

	frames  int
	current FrameStats
	last    FrameStats
	total   FrameStats
}

// NewRecorder creates a recorder with the given canvas size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// FailWith makes Ready return err, simulating a missing drawing context.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Ready returns the error set by FailWith, if any.
func (r *Recorder) Ready() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Size returns the canvas size.
func (r *Recorder) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Resize records the new canvas size.
func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

// Begin starts counting a new frame.
func (r *Recorder) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = FrameStats{}
	r.blend = BlendAlpha
}

// End closes the frame and adds it to the totals.
func (r *Recorder) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = r.current
	r.total.Fades += r.current.Fades
	r.total.Circles += r.current.Circles
	r.total.Lines += r.current.Lines
	r.total.Additive += r.current.Additive
	r.frames++
}

// Fade counts a background wash.
func (r *Recorder) Fade(bg color.RGBA, alpha float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Fades++
}

// SetBlend sets the blend mode later calls are counted under.
func (r *Recorder) SetBlend(b Blend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blend = b
}

// Circle counts a circle.
func (r *Recorder) Circle(center vmath.Vec2, radius float64, c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Circles++
	if r.blend == BlendAdditive {
		r.current.Additive++
	}
}

// Line counts a line.
func (r *Recorder) Line(a, b vmath.Vec2, thickness float64, c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Lines++
	if r.blend == BlendAdditive {
		r.current.Additive++
	}
}

// Frames returns the number of completed frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Last returns the draw counts of the most recent completed frame.
func (r *Recorder) Last() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Total returns the draw counts summed over all completed frames.
func (r *Recorder) Total() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
