package chip8

import (
	"fmt"
	"strings"
)

// Quirks selects behaviours that differ between historical interpreters.
// The zero value follows the behaviour most modern programs expect.
type Quirks uint8

const (
	// QuirkVfReset makes OR, AND and XOR reset VF to 0
	QuirkVfReset Quirks = 1 << iota
	// QuirkShiftWithVy makes SHR and SHL shift Vy into Vx
	QuirkShiftWithVy
	// QuirkJumpUsesVx makes Bxnn jump to xnn + Vx instead of nnn + V0
	QuirkJumpUsesVx
	// QuirkMemoryMovesIndex makes Fx55 and Fx65 leave I pointing past the last register transferred
	QuirkMemoryMovesIndex
	// QuirkIndexOverflow makes Fx1E set VF when I goes past 0xFFF
	QuirkIndexOverflow
)

var quirkNames = []struct {
	name  string
	quirk Quirks
}{
	{"vfreset", QuirkVfReset},
	{"shiftvy", QuirkShiftWithVy},
	{"jumpvx", QuirkJumpUsesVx},
	{"memindex", QuirkMemoryMovesIndex},
	{"indexoverflow", QuirkIndexOverflow},
}

func (q Quirks) Has(flag Quirks) bool {
	return q&flag > 0
}

func (q Quirks) String() string {
	names := make([]string, 0, len(quirkNames))
	for _, qn := range quirkNames {
		if q.Has(qn.quirk) {
			names = append(names, qn.name)
		}
	}

	return strings.Join(names, ",")
}

// ParseQuirks reads a comma separated list of quirk names, as produced by Quirks.String
func ParseQuirks(s string) (Quirks, error) {
	var q Quirks
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}

		found := false
		for _, qn := range quirkNames {
			if qn.name == name {
				q |= qn.quirk
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown quirk %q", name)
		}
	}

	return q, nil
}
