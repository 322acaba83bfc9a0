package chip8

// TimerHz is the cadence at which hosts are expected to call AdvanceTimers
const TimerHz = 60

type Timers struct {
	// Delay timer register
	Delay byte
	// Sound timer register
	Sound byte
}

// Advance decrements both timers, never below zero.
// It returns whether the sound timer was active when called.
func (t *Timers) Advance() bool {
	active := t.Sound > 0

	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}

	return active
}
