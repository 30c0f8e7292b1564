package vm

import (
	"context"
	"errors"
)

// HAL is the host side of a running machine: renderer, audio sink, input
// source and pacing.
type HAL interface {
	// ReadInput polls host events. It returns ErrQuit or ErrReboot to stop
	// or restart the machine.
	ReadInput() error

	// Draw presents a frame. It is called only when the display changed.
	Draw(gfx *Display) error

	// Beep is called on every beep edge of the sound timer.
	Beep() error

	// WaitForNextFrame blocks until the next cycle is due.
	WaitForNextFrame() error
}

// Run resets the machine and drives it against hal, one Step per frame,
// until hal reports ErrQuit, a fatal error occurs or ctx is done. ErrReboot
// restarts the program from power-on state. A jump to itself parks the
// machine until the host quits or reboots.
func (vm *VM) Run(ctx context.Context, hal HAL) error {
	for {
		err := vm.runProgram(ctx, hal)
		switch {
		case errors.Is(err, ErrReboot):
			vm.log.Info("reboot")
			continue
		case errors.Is(err, ErrQuit):
			return nil
		default:
			return err
		}
	}
}

func (vm *VM) runProgram(ctx context.Context, hal HAL) error {
	vm.Reset()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pc := vm.pc
		looped, err := vm.runStep(hal)
		if err != nil {
			return err
		}

		if looped && vm.pc == pc {
			vm.log.Info("program looped")
			return vm.waitForReboot(ctx, hal)
		}
	}
}

func (vm *VM) waitForReboot(ctx context.Context, hal HAL) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := hal.WaitForNextFrame(); err != nil {
			return err
		}

		if err := hal.ReadInput(); err != nil {
			return err
		}
	}
}

// runStep executes one cycle and services the host. It reports whether the
// instruction was an unconditional jump, so the caller can spot a jump to
// itself.
func (vm *VM) runStep(hal HAL) (bool, error) {
	cycle, err := vm.Step()
	if err != nil {
		return false, err
	}

	if cycle.Beep {
		if err := hal.Beep(); err != nil {
			return false, err
		}
	}

	if vm.drawFlag {
		gfx := vm.gfx
		if err := hal.Draw(&gfx); err != nil {
			return false, err
		}
		vm.drawFlag = false
	}

	if err := hal.ReadInput(); err != nil {
		return false, err
	}

	if err := hal.WaitForNextFrame(); err != nil {
		return false, err
	}

	return cycle.Instruction.Op == OpJmp, nil
}
