package chip8

// StackSize is the maximum number of nested subroutine calls
const StackSize = 16

// Stack of return addresses
type Stack struct {
	entries [StackSize]uint16
	sp      byte
}

// Push fails with ErrStackOverflow and leaves the stack untouched when it is full
func (s *Stack) Push(addr uint16) error {
	if int(s.sp) >= StackSize {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++

	return nil
}

// Pop fails with ErrStackUnderflow when the stack is empty
func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--

	return s.entries[s.sp], nil
}

func (s Stack) Depth() int {
	return int(s.sp)
}

// Entries returns a copy of the stack, bottom first
func (s Stack) Entries() []uint16 {
	out := make([]uint16, s.sp)
	copy(out, s.entries[:s.sp])

	return out
}
