package vm

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32

	ProgramStart    = uint16(0x200)
	InstructionSize = 2

	// FlagRegister receives carry, borrow and collision status.
	FlagRegister = 0xF

	// MaxProgramSize is the room left for a program above the reserved region.
	MaxProgramSize = MemorySize - int(ProgramStart)
)

// Display is the 64x32 monochrome frame buffer, one byte per pixel, rows
// stored top to bottom. A pixel is set when its byte is non-zero.
type Display [ScreenWidth * ScreenHeight]uint8

// Pixel reports whether the pixel at (x, y) is set.
func (d *Display) Pixel(x, y int) (bool, error) {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false, outOfBounds("pixel", y*ScreenWidth+x)
	}

	return d[y*ScreenWidth+x] != 0, nil
}

// String renders the display as text, '#' for set pixels and '.' otherwise.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((ScreenWidth + 1) * ScreenHeight)

	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			if d[y*ScreenWidth+x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// VM holds the complete state of one machine. Instances share nothing, and
// a single VM must not be stepped from more than one goroutine.
type VM struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack [StackSize]uint16 // Stack
	sp    uint16            // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	gfx      Display // Graphics buffer
	drawFlag bool    // Indicates a draw has occurred

	program []byte

	random RandomSource
	log    *slog.Logger
	strict bool

	halt error // Latched fatal error
}

// Option configures a VM.
type Option func(*VM)

// WithRandom sets the source used by the random-AND instruction.
func WithRandom(r RandomSource) Option {
	return func(vm *VM) {
		vm.random = r
	}
}

// WithLogger sets the logger used for instruction traces and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = l
	}
}

// WithStrict makes unknown instructions fatal.
func WithStrict(strict bool) Option {
	return func(vm *VM) {
		vm.strict = strict
	}
}

// New creates a machine in its power-on state with no program loaded.
func New(opts ...Option) *VM {
	vm := &VM{}
	for _, opt := range opts {
		opt(vm)
	}

	if vm.random == nil {
		vm.random = NewRandom()
	}
	if vm.log == nil {
		vm.log = slog.Default()
	}

	vm.Reset()
	return vm
}

// Load stores program as the machine's ROM and resets the machine so the
// program starts at ProgramStart.
func (vm *VM) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	vm.program = append(vm.program[:0], program...)
	vm.Reset()
	return nil
}

// Reset returns the machine to its power-on state: memory cleared, font
// installed, the loaded program copied to ProgramStart, and any latched
// error cleared.
func (vm *VM) Reset() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.sp = 0

	vm.gfx = Display{}
	vm.drawFlag = true

	vm.stack = [StackSize]uint16{}
	vm.registers = [RegisterCount]uint8{}
	vm.memory = [MemorySize]uint8{}

	vm.log.Debug("load font", "at", fmt.Sprintf("0x%04x", FontStart), "n", len(chip8Font))
	copy(vm.memory[FontStart:], chip8Font)

	if len(vm.program) > 0 {
		vm.log.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(vm.program))
		copy(vm.memory[ProgramStart:], vm.program)
	}

	vm.delayTimer = 0
	vm.soundTimer = 0

	vm.halt = nil
}

// Halted returns the fatal error that stopped the machine, or nil.
func (vm *VM) Halted() error {
	return vm.halt
}

func (vm *VM) PC() uint16 {
	return vm.pc
}

func (vm *VM) SetPC(pc uint16) {
	vm.pc = pc
}

func (vm *VM) Index() uint16 {
	return vm.index
}

func (vm *VM) SetIndex(i uint16) {
	vm.index = i
}

// Register returns the value of register V0..VF.
func (vm *VM) Register(r int) (uint8, error) {
	if r < 0 || r >= RegisterCount {
		return 0, outOfBounds("register", r)
	}

	return vm.registers[r], nil
}

func (vm *VM) SetRegister(r int, v uint8) error {
	if r < 0 || r >= RegisterCount {
		return outOfBounds("register", r)
	}

	vm.registers[r] = v
	return nil
}

// ReadMemory returns the byte at addr.
func (vm *VM) ReadMemory(addr int) (uint8, error) {
	if addr < 0 || addr >= MemorySize {
		return 0, outOfBounds("read", addr)
	}

	return vm.memory[addr], nil
}

// WriteMemory stores v at addr. No instruction writes memory; this is for
// loaders and tests.
func (vm *VM) WriteMemory(addr int, v uint8) error {
	if addr < 0 || addr >= MemorySize {
		return outOfBounds("write", addr)
	}

	vm.memory[addr] = v
	return nil
}

// StackPointer returns the number of saved return addresses.
func (vm *VM) StackPointer() int {
	return int(vm.sp)
}

// Stack returns a copy of the saved return addresses, oldest first.
func (vm *VM) Stack() []uint16 {
	frames := make([]uint16, vm.sp)
	copy(frames, vm.stack[:vm.sp])
	return frames
}

func (vm *VM) push(addr uint16) error {
	if int(vm.sp) >= StackSize {
		return &AccessError{Op: "push", Addr: int(addr), Err: ErrStackOverflow}
	}

	vm.stack[vm.sp] = addr
	vm.sp++
	return nil
}

func (vm *VM) pop() (uint16, error) {
	if vm.sp == 0 {
		return 0, &AccessError{Op: "pop", Addr: int(vm.pc), Err: ErrStackUnderflow}
	}

	vm.sp--
	addr := vm.stack[vm.sp]
	vm.stack[vm.sp] = 0
	return addr, nil
}

func (vm *VM) DelayTimer() uint8 {
	return vm.delayTimer
}

func (vm *VM) SetDelayTimer(v uint8) {
	vm.delayTimer = v
}

func (vm *VM) SoundTimer() uint8 {
	return vm.soundTimer
}

func (vm *VM) SetSoundTimer(v uint8) {
	vm.soundTimer = v
}

// Display returns a copy of the frame buffer.
func (vm *VM) Display() Display {
	return vm.gfx
}

// Pixel reports whether the pixel at (x, y) is set.
func (vm *VM) Pixel(x, y int) (bool, error) {
	return vm.gfx.Pixel(x, y)
}

// Dirty reports whether the display changed since the last ClearDirty.
func (vm *VM) Dirty() bool {
	return vm.drawFlag
}

// ClearDirty is called by the renderer once it has consumed a frame.
func (vm *VM) ClearDirty() {
	vm.drawFlag = false
}
