package chip8

// KeyCount is the number of logical keys on the keypad
const KeyCount = 16

type Keypad [KeyCount]bool

// Set records the state of a logical key
func (kp *Keypad) Set(code byte, down bool) error {
	if code >= KeyCount {
		return ErrInvalidKeyCode
	}
	kp[code] = down

	return nil
}

// IsPressed only looks at the low nibble of k
func (kp Keypad) IsPressed(k byte) bool {
	return kp[k&0x0F]
}

// FirstPressed returns the lowest key currently down
func (kp Keypad) FirstPressed() (byte, bool) {
	for k, down := range kp {
		if down {
			return byte(k), true
		}
	}

	return 0, false
}
