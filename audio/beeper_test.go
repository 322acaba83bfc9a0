package audio

import (
	"encoding/binary"
	"testing"
)

func TestSquareWave(t *testing.T) {
	w := newSquareWave(8, 2, 0.5)
	buf := make([]byte, 16)

	n, err := w.Read(buf)
	if err != nil || n != 16 {
		t.Fatalf(`Read() = %d, %v`, n, err)
	}
	for i := 0; i < n; i += 2 {
		if binary.LittleEndian.Uint16(buf[i:]) != 0 {
			t.Fatalf(`gated off wave is not silent`)
		}
	}

	w.on.Store(true)
	n, _ = w.Read(buf[:15])
	if n != 14 {
		t.Fatalf(`Read() of an odd buffer returned %d, expected 14`, n)
	}

	expected := []int16{16383, 16383, -16383, -16383, 16383, 16383, -16383}
	for i, want := range expected {
		if got := int16(binary.LittleEndian.Uint16(buf[i*2:])); got != want {
			t.Fatalf(`sample %d = %d, expected %d`, i, got, want)
		}
	}
}
