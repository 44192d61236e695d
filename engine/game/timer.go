package game

// Timer is the deterministic game clock: it advances one frame per tick and
// carries total played time across pauses and saves.
type Timer struct {
	updateRate float64 // seconds per frame

	frames        int
	totalGameTime float64
}

// NewTimer creates a timer ticking at the given seconds-per-frame rate.
func NewTimer(updateRate float64) *Timer {
	return &Timer{updateRate: updateRate}
}

// Update advances the clock by one frame.
func (t *Timer) Update() {
	t.frames++
	t.totalGameTime += t.updateRate
}

// Frames returns the number of elapsed ticks.
func (t *Timer) Frames() int { return t.frames }

// Seconds returns the elapsed game time in seconds.
func (t *Timer) Seconds() float64 { return t.totalGameTime }

// Minutes returns the elapsed game time in minutes.
func (t *Timer) Minutes() float64 { return t.totalGameTime / 60 }

// Restore rewinds the clock to a saved state.
func (t *Timer) Restore(frames int, totalGameTime float64) {
	t.frames = frames
	t.totalGameTime = totalGameTime
}
