package chip8

import "fmt"

// execute runs a decoded instruction and moves the program counter.
// It leaves the VM untouched when it returns an error.
func (vm *VM) execute(ins Instruction) error {
	x, y := ins.X, ins.Y
	next := (vm.pc + 2) & AddressMask
	skip := (vm.pc + 4) & AddressMask

	switch ins.Op {
	case OpUnknown:
		// Skipped; reported by the caller

	case OpCls:
		// CLS :: Clear the display.
		vm.screen.clear()
		vm.screenVersion++

	case OpRet:
		// RET :: Return from a subroutine.
		addr, err := vm.stack.Pop()
		if err != nil {
			return err
		}
		next = addr

	case OpJp:
		// JP addr :: Jump to location nnn.
		next = ins.NNN

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if err := vm.stack.Push(next); err != nil {
			return err
		}
		next = ins.NNN

	case OpSeByte:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		if vm.v[x] == ins.KK {
			next = skip
		}

	case OpSneByte:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		if vm.v[x] != ins.KK {
			next = skip
		}

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		if vm.v[x] == vm.v[y] {
			next = skip
		}

	case OpLdByte:
		// LD Vx, byte :: Set Vx = kk.
		vm.v[x] = ins.KK

	case OpAddByte:
		// ADD Vx, byte :: Set Vx = Vx + kk.
		vm.v[x] += ins.KK

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		vm.v[x] = vm.v[y]

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		vm.v[x] |= vm.v[y]
		vm.resetVfOnLogic()

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		vm.v[x] &= vm.v[y]
		vm.resetVfOnLogic()

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		vm.v[x] ^= vm.v[y]
		vm.resetVfOnLogic()

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(vm.v[x]) + uint16(vm.v[y])
		vm.v[x] = byte(r & 0x00FF)
		vm.v[0xF] = byte(r >> 8)

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		carry := vm.v[x] >= vm.v[y]
		vm.v[x] = vm.v[x] - vm.v[y]
		vm.v[0xF] = bool2byte(carry)

	case OpShr:
		// SHR Vx {, Vy} :: Set Vx = Vx SHR 1.
		src := vm.shiftSource(x, y)
		vm.v[x] = src >> 1
		vm.v[0xF] = src & 0b00000001

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		carry := vm.v[y] >= vm.v[x]
		vm.v[x] = vm.v[y] - vm.v[x]
		vm.v[0xF] = bool2byte(carry)

	case OpShl:
		// SHL Vx {, Vy} :: Set Vx = Vx SHL 1.
		src := vm.shiftSource(x, y)
		vm.v[x] = src << 1
		vm.v[0xF] = (src & 0b10000000) >> 7

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		if vm.v[x] != vm.v[y] {
			next = skip
		}

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		vm.i = ins.NNN

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0 (or xnn + Vx).
		offset := vm.v[0]
		if vm.quirks.Has(QuirkJumpUsesVx) {
			offset = vm.v[x]
		}
		next = (ins.NNN + uint16(offset)) & AddressMask

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		vm.v[x] = vm.random() & ins.KK

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		rows := make([]byte, ins.N)
		for r := range rows {
			rows[r] = vm.memory.Read(vm.i + uint16(r))
		}
		collision := vm.screen.drawSprite(vm.v[x], vm.v[y], rows)
		vm.v[0xF] = bool2byte(collision)
		vm.screenVersion++

	case OpSkp:
		// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
		if vm.keypad.IsPressed(vm.v[x]) {
			next = skip
		}

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
		if !vm.keypad.IsPressed(vm.v[x]) {
			next = skip
		}

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		vm.v[x] = vm.timers.Delay

	case OpLdVxK:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		vm.waitingForKey = true
		vm.keyDstRegister = x

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		vm.timers.Delay = vm.v[x]

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		vm.timers.Sound = vm.v[x]

	case OpAddI:
		// ADD I, Vx :: Set I = I + Vx.
		sum := (vm.i & AddressMask) + uint16(vm.v[x])
		if vm.quirks.Has(QuirkIndexOverflow) {
			vm.v[0xF] = bool2byte(sum > AddressMask)
		}
		vm.i = sum & AddressMask

	case OpLdF:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		vm.i = (FontBase + uint16(vm.v[x])*FontGlyphSize) & AddressMask

	case OpLdB:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		value := vm.v[x]
		vm.memory.Write(vm.i+0, value/100)
		vm.memory.Write(vm.i+1, (value/10)%10)
		vm.memory.Write(vm.i+2, value%10)

	case OpStore:
		// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		for r := uint16(0); r <= uint16(x); r++ {
			vm.memory.Write(vm.i+r, vm.v[r])
		}
		vm.moveIndexAfterTransfer(x)

	case OpLoad:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		for r := uint16(0); r <= uint16(x); r++ {
			vm.v[r] = vm.memory.Read(vm.i + r)
		}
		vm.moveIndexAfterTransfer(x)

	default:
		panic(fmt.Sprintf("chip8: no execution rule for %s", ins))
	}

	vm.pc = next

	return nil
}

func (vm *VM) resetVfOnLogic() {
	if vm.quirks.Has(QuirkVfReset) {
		vm.v[0xF] = 0
	}
}

func (vm *VM) shiftSource(x, y byte) byte {
	if vm.quirks.Has(QuirkShiftWithVy) {
		return vm.v[y]
	}

	return vm.v[x]
}

func (vm *VM) moveIndexAfterTransfer(x byte) {
	if vm.quirks.Has(QuirkMemoryMovesIndex) {
		vm.i = (vm.i + uint16(x) + 1) & AddressMask
	}
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
