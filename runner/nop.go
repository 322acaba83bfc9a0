package runner

import "github.com/guslan/chip8"

// NopDisplay is a display that does nothing
type NopDisplay struct {
}

func (d NopDisplay) Boot() error {
	return nil
}

func (d NopDisplay) Render(screen chip8.ScreenView) error {
	return nil
}

// NopBuzzer only remembers whether it should be playing
type NopBuzzer struct {
	IsPlaying bool
}

// Boot implements Buzzer.
func (b *NopBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *NopBuzzer) Play() {
	b.IsPlaying = true
}

// Stop implements Buzzer
func (b *NopBuzzer) Stop() {
	b.IsPlaying = false
}
