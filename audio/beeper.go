// Package audio plays the CHIP-8 buzzer through the host sound card.
package audio

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	DefaultSampleRate = 44100
	DefaultFrequency  = 440
	DefaultVolume     = 0.2
)

// squareWave is an endless mono signed 16-bit stream, silent while gated off
type squareWave struct {
	on        atomic.Bool
	period    int
	amplitude int16
	pos       int
}

func newSquareWave(sampleRate, frequency int, volume float64) *squareWave {
	return &squareWave{
		period:    max(sampleRate/frequency, 2),
		amplitude: int16(volume * 32767),
	}
}

func (w *squareWave) Read(p []byte) (int, error) {
	n := len(p) - len(p)%2
	on := w.on.Load()

	for i := 0; i < n; i += 2 {
		var s int16
		if on {
			if w.pos < w.period/2 {
				s = w.amplitude
			} else {
				s = -w.amplitude
			}
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(s))
		w.pos = (w.pos + 1) % w.period
	}

	return n, nil
}

// Beeper implements runner.Buzzer with a square wave
type Beeper struct {
	SampleRate int
	Frequency  int
	Volume     float64

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	wave   *squareWave
}

func NewBeeper() *Beeper {
	return &Beeper{
		SampleRate: DefaultSampleRate,
		Frequency:  DefaultFrequency,
		Volume:     DefaultVolume,
	}
}

// Boot opens the audio device and starts a silent stream
func (b *Beeper) Boot() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player != nil {
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   b.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return err
	}
	<-ready

	b.ctx = ctx
	b.wave = newSquareWave(b.SampleRate, b.Frequency, b.Volume)
	b.player = ctx.NewPlayer(b.wave)
	b.player.Play()

	return nil
}

// Play implements runner.Buzzer.
func (b *Beeper) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.wave != nil {
		b.wave.on.Store(true)
	}
}

// Stop implements runner.Buzzer.
func (b *Beeper) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.wave != nil {
		b.wave.on.Store(false)
	}
}

func (b *Beeper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil

	return err
}
