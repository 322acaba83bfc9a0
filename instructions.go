package chip8

import "fmt"

// Op identifies one instruction of the CHIP-8 instruction set
type Op byte

const (
	OpUnknown Op = iota
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1nnn
	OpCall       // 2nnn
	OpSeByte     // 3xkk
	OpSneByte    // 4xkk
	OpSeReg      // 5xy0
	OpLdByte     // 6xkk
	OpAddByte    // 7xkk
	OpLdReg      // 8xy0
	OpOr         // 8xy1
	OpAnd        // 8xy2
	OpXor        // 8xy3
	OpAddReg     // 8xy4
	OpSub        // 8xy5
	OpShr        // 8xy6
	OpSubn       // 8xy7
	OpShl        // 8xyE
	OpSneReg     // 9xy0
	OpLdI        // Annn
	OpJpV0       // Bnnn
	OpRnd        // Cxkk
	OpDrw        // Dxyn
	OpSkp        // Ex9E
	OpSknp       // ExA1
	OpLdVxDt     // Fx07
	OpLdVxK      // Fx0A
	OpLdDtVx     // Fx15
	OpLdStVx     // Fx18
	OpAddI       // Fx1E
	OpLdF        // Fx29
	OpLdB        // Fx33
	OpStore      // Fx55
	OpLoad       // Fx65

	opCount
)

// Ops returns every known operation
func Ops() []Op {
	ops := make([]Op, 0, opCount-1)
	for op := OpCls; op < opCount; op++ {
		ops = append(ops, op)
	}

	return ops
}

var opNames = [opCount]string{
	OpUnknown: "???",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeByte:  "SE",
	OpSneByte: "SNE",
	OpSeReg:   "SE",
	OpLdByte:  "LD",
	OpAddByte: "ADD",
	OpLdReg:   "LD",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAddReg:  "ADD",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE",
	OpLdI:     "LD",
	OpJpV0:    "JP",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDt:  "LD",
	OpLdVxK:   "LD",
	OpLdDtVx:  "LD",
	OpLdStVx:  "LD",
	OpAddI:    "ADD",
	OpLdF:     "LD",
	OpLdB:     "LD",
	OpStore:   "LD",
	OpLoad:    "LD",
}

// Mnemonic of the operation
func (op Op) Mnemonic() string {
	if op >= opCount {
		return opNames[OpUnknown]
	}

	return opNames[op]
}

// Instruction is a decoded opcode
type Instruction struct {
	Op Op
	// Raw is the opcode the instruction was decoded from
	Raw uint16

	X, Y byte
	N    byte
	KK   byte
	NNN  uint16
}

// Decode splits the opcode into its operands and identifies its operation.
// Unrecognised encodings decode to OpUnknown.
func Decode(opCode uint16) Instruction {
	ins := Instruction{
		Raw: opCode,
		X:   byte((opCode & 0x0F00) >> 8),
		Y:   byte((opCode & 0x00F0) >> 4),
		N:   byte(opCode & 0x000F),
		KK:  byte(opCode & 0x00FF),
		NNN: opCode & 0x0FFF,
	}
	ins.Op = decodeOp(opCode)

	return ins
}

func decodeOp(opCode uint16) Op {
	switch opCode & 0xF000 {
	case 0x0000:
		switch opCode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}

	case 0x1000:
		return OpJp
	case 0x2000:
		return OpCall
	case 0x3000:
		return OpSeByte
	case 0x4000:
		return OpSneByte
	case 0x5000:
		if opCode&0x000F == 0 {
			return OpSeReg
		}
	case 0x6000:
		return OpLdByte
	case 0x7000:
		return OpAddByte

	case 0x8000:
		switch opCode & 0x000F {
		case 0x0:
			return OpLdReg
		case 0x1:
			return OpOr
		case 0x2:
			return OpAnd
		case 0x3:
			return OpXor
		case 0x4:
			return OpAddReg
		case 0x5:
			return OpSub
		case 0x6:
			return OpShr
		case 0x7:
			return OpSubn
		case 0xE:
			return OpShl
		}

	case 0x9000:
		if opCode&0x000F == 0 {
			return OpSneReg
		}
	case 0xA000:
		return OpLdI
	case 0xB000:
		return OpJpV0
	case 0xC000:
		return OpRnd
	case 0xD000:
		return OpDrw

	case 0xE000:
		switch opCode & 0x00FF {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}

	case 0xF000:
		switch opCode & 0x00FF {
		case 0x07:
			return OpLdVxDt
		case 0x0A:
			return OpLdVxK
		case 0x15:
			return OpLdDtVx
		case 0x18:
			return OpLdStVx
		case 0x1E:
			return OpAddI
		case 0x29:
			return OpLdF
		case 0x33:
			return OpLdB
		case 0x55:
			return OpStore
		case 0x65:
			return OpLoad
		}
	}

	return OpUnknown
}

// String formats the instruction in the usual assembly notation
func (ins Instruction) String() string {
	name := ins.Op.Mnemonic()

	switch ins.Op {
	case OpCls, OpRet:
		return name
	case OpJp, OpCall:
		return fmt.Sprintf("%s $%03X", name, ins.NNN)
	case OpSeByte, OpSneByte, OpLdByte, OpAddByte, OpRnd:
		return fmt.Sprintf("%s V%X, $%02X", name, ins.X, ins.KK)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpSubn:
		return fmt.Sprintf("%s V%X, V%X", name, ins.X, ins.Y)
	case OpShr, OpShl, OpSkp, OpSknp:
		return fmt.Sprintf("%s V%X", name, ins.X)
	case OpLdI:
		return fmt.Sprintf("%s I, $%03X", name, ins.NNN)
	case OpJpV0:
		return fmt.Sprintf("%s V0, $%03X", name, ins.NNN)
	case OpDrw:
		return fmt.Sprintf("%s V%X, V%X, $%X", name, ins.X, ins.Y, ins.N)
	case OpLdVxDt:
		return fmt.Sprintf("%s V%X, DT", name, ins.X)
	case OpLdVxK:
		return fmt.Sprintf("%s V%X, K", name, ins.X)
	case OpLdDtVx:
		return fmt.Sprintf("%s DT, V%X", name, ins.X)
	case OpLdStVx:
		return fmt.Sprintf("%s ST, V%X", name, ins.X)
	case OpAddI:
		return fmt.Sprintf("%s I, V%X", name, ins.X)
	case OpLdF:
		return fmt.Sprintf("%s F, V%X", name, ins.X)
	case OpLdB:
		return fmt.Sprintf("%s B, V%X", name, ins.X)
	case OpStore:
		return fmt.Sprintf("%s [I], V%X", name, ins.X)
	case OpLoad:
		return fmt.Sprintf("%s V%X, [I]", name, ins.X)
	}

	return fmt.Sprintf("%s $%04X", name, ins.Raw)
}
