package vm

import (
	"context"
	"fmt"
	"log/slog"
)

func (vm *VM) executeOpcode(opcode uint16) (Instruction, error) {
	instr := Decode(opcode)

	if vm.log.Enabled(context.Background(), slog.LevelDebug) {
		vm.log.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", vm.pc),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", instr.String(),
		)
	}

	return instr, vm.execute(instr)
}

// execute applies one decoded instruction. Every case moves the program
// counter itself: +2, +4 on a taken skip, or an absolute jump. Fatal
// errors are returned before any state is touched.
func (vm *VM) execute(in Instruction) error {
	v := &vm.registers

	switch in.Op {
	case OpCls:
		vm.gfx = Display{}
		vm.drawFlag = true
		vm.pc += InstructionSize

	case OpRts:
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		vm.pc = addr

	case OpJmp:
		vm.pc = in.NNN

	case OpJsr:
		if err := vm.push(vm.pc + InstructionSize); err != nil {
			return err
		}
		vm.pc = in.NNN

	case OpSkeqImm:
		vm.skipIf(v[in.X] == in.NN)

	case OpSkneImm:
		vm.skipIf(v[in.X] != in.NN)

	case OpSkeqReg:
		vm.skipIf(v[in.X] == v[in.Y])

	case OpSkneReg:
		vm.skipIf(v[in.X] != v[in.Y])

	case OpMovImm:
		v[in.X] = in.NN
		vm.pc += InstructionSize

	case OpAddImm:
		v[in.X] += in.NN
		vm.pc += InstructionSize

	case OpMovReg:
		v[in.X] = v[in.Y]
		vm.pc += InstructionSize

	case OpOr:
		v[in.X] |= v[in.Y]
		vm.pc += InstructionSize

	case OpAnd:
		v[in.X] &= v[in.Y]
		vm.pc += InstructionSize

	case OpXor:
		v[in.X] ^= v[in.Y]
		vm.pc += InstructionSize

	case OpAddReg:
		sum := uint16(v[in.X]) + uint16(v[in.Y])
		v[in.X] = uint8(sum)
		v[FlagRegister] = flag(sum > 0xFF)
		vm.pc += InstructionSize

	case OpSub:
		x, y := v[in.X], v[in.Y]
		v[in.X] = x - y
		v[FlagRegister] = flag(x >= y)
		vm.pc += InstructionSize

	case OpRsb:
		x, y := v[in.X], v[in.Y]
		v[in.X] = y - x
		v[FlagRegister] = flag(y >= x)
		vm.pc += InstructionSize

	case OpShr:
		x := v[in.X]
		v[in.X] = x >> 1
		v[FlagRegister] = x & 0x01
		vm.pc += InstructionSize

	case OpShl:
		x := v[in.X]
		v[in.X] = x << 1
		v[FlagRegister] = x >> 7
		vm.pc += InstructionSize

	case OpMvi:
		vm.index = in.NNN
		vm.pc += InstructionSize

	case OpJmi:
		vm.pc = in.NNN + uint16(v[0])

	case OpRand:
		v[in.X] = vm.random.Byte() & in.NN
		vm.pc += InstructionSize

	case OpSprite:
		return vm.sprite(in)

	default:
		// Step past it so a malformed program cannot spin on one word.
		err := &UnknownInstructionError{PC: vm.pc, Opcode: in.Opcode}
		vm.pc += InstructionSize
		return err
	}

	return nil
}

func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.pc += 2 * InstructionSize
	} else {
		vm.pc += InstructionSize
	}
}

// sprite XORs an 8 pixel wide, N row sprite read from memory[I] onto the
// display at (VX, VY). Coordinates wrap around the screen edges. VF is set
// when any lit pixel is turned off.
func (vm *VM) sprite(in Instruction) error {
	height := uint16(in.N)
	if end := int(vm.index) + int(height); end > MemorySize {
		return outOfBounds("sprite", end-1)
	}

	xLocation, yLocation := uint16(vm.registers[in.X]), uint16(vm.registers[in.Y])

	vm.registers[FlagRegister] = 0
	for y := uint16(0); y < height; y++ {
		pixel := vm.memory[vm.index+y]

		const width = uint16(8)
		for x := uint16(0); x < width; x++ {
			if pixel&(0x80>>x) == 0 {
				continue
			}

			screenAddr := getScreenAddr(x+xLocation, y+yLocation)
			if vm.gfx[screenAddr] != 0 {
				vm.registers[FlagRegister] = 1
			}

			vm.gfx[screenAddr] ^= 1
		}
	}

	vm.drawFlag = true
	vm.pc += InstructionSize
	return nil
}

func getScreenAddr(x, y uint16) uint16 {
	x %= ScreenWidth
	y %= ScreenHeight

	return ScreenWidth*y + x
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
