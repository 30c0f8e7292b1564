package vm

import (
	"errors"
	"fmt"
)

// Cycle reports the outcome of one Step.
type Cycle struct {
	// Instruction is the decoded word that was executed.
	Instruction Instruction

	// Beep is set when the sound timer went from 1 to 0 during this cycle.
	Beep bool

	// Warning carries a non-fatal *UnknownInstructionError.
	Warning error
}

// Step runs one fetch, decode and execute, then decrements the timers.
//
// A fatal error (stack overflow or underflow, out of bounds access, or an
// unknown instruction in strict mode) is returned as is and latches the
// machine: every later Step returns an error matching ErrHalted and the
// original cause, until Reset.
func (vm *VM) Step() (Cycle, error) {
	if vm.halt != nil {
		return Cycle{}, &haltError{cause: vm.halt}
	}

	opcode, err := vm.fetchOpcode()
	if err != nil {
		return Cycle{}, vm.fail(err)
	}

	var cycle Cycle
	cycle.Instruction, err = vm.executeOpcode(opcode)
	if err != nil {
		if !errors.Is(err, ErrUnknownInstruction) || vm.strict {
			return cycle, vm.fail(err)
		}

		vm.log.Warn("skip unknown instruction",
			"pc", fmt.Sprintf("0x%04x", vm.pc-InstructionSize),
			"opcode", fmt.Sprintf("0x%04x", opcode),
		)
		cycle.Warning = err
	}

	// Update timers
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}

	if vm.soundTimer > 0 {
		if vm.soundTimer == 1 {
			cycle.Beep = true
		}
		vm.soundTimer--
	}

	return cycle, nil
}

func (vm *VM) fail(err error) error {
	vm.halt = err
	vm.log.Error("machine halted", "pc", fmt.Sprintf("0x%04x", vm.pc), "err", err)
	return err
}

// fetchOpcode reads the big-endian instruction word at pc. Only program
// space is executable.
func (vm *VM) fetchOpcode() (uint16, error) {
	if vm.pc < ProgramStart || int(vm.pc)+1 >= MemorySize {
		return 0, outOfBounds("fetch", int(vm.pc))
	}

	hi := vm.memory[vm.pc]
	lo := vm.memory[vm.pc+1]

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	return opcode, nil
}
