package vm

import "fmt"

// Op identifies the operation of a decoded instruction.
type Op uint8

const (
	OpUnknown Op = iota
	OpCls        // 00E0
	OpRts        // 00EE
	OpJmp        // 1NNN
	OpJsr        // 2NNN
	OpSkeqImm    // 3XNN
	OpSkneImm    // 4XNN
	OpSkeqReg    // 5XY0
	OpMovImm     // 6XNN
	OpAddImm     // 7XNN
	OpMovReg     // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddReg     // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpRsb        // 8XY7
	OpShl        // 8XYE
	OpSkneReg    // 9XY0
	OpMvi        // ANNN
	OpJmi        // BNNN
	OpRand       // CXNN
	OpSprite     // DXYN
)

var opNames = [...]string{
	OpUnknown: "unknown",
	OpCls:     "cls",
	OpRts:     "rts",
	OpJmp:     "jmp",
	OpJsr:     "jsr",
	OpSkeqImm: "skeq",
	OpSkneImm: "skne",
	OpSkeqReg: "skeq",
	OpMovImm:  "mov",
	OpAddImm:  "add",
	OpMovReg:  "mov",
	OpOr:      "or",
	OpAnd:     "and",
	OpXor:     "xor",
	OpAddReg:  "add",
	OpSub:     "sub",
	OpShr:     "shr",
	OpRsb:     "rsb",
	OpShl:     "shl",
	OpSkneReg: "skne",
	OpMvi:     "mvi",
	OpJmi:     "jmi",
	OpRand:    "rand",
	OpSprite:  "sprite",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Instruction is a decoded instruction word. Every operand field is filled
// regardless of Op; the operation decides which ones it reads.
type Instruction struct {
	Op     Op
	Opcode uint16

	X   uint8  // 0x0F00
	Y   uint8  // 0x00F0
	N   uint8  // 0x000F
	NN  uint8  // 0x00FF
	NNN uint16 // 0x0FFF
}

// Decode classifies an instruction word. It never fails; words outside the
// instruction set decode to OpUnknown.
func Decode(opcode uint16) Instruction {
	return Instruction{
		Op:     decodeOp(opcode),
		Opcode: opcode,
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
		N:      uint8(opcode & 0x000F),
		NN:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}
}

func decodeOp(opcode uint16) Op {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRts
		}

	case 0x1000:
		return OpJmp

	case 0x2000:
		return OpJsr

	case 0x3000:
		return OpSkeqImm

	case 0x4000:
		return OpSkneImm

	case 0x5000:
		if opcode&0x000F == 0 {
			return OpSkeqReg
		}

	case 0x6000:
		return OpMovImm

	case 0x7000:
		return OpAddImm

	case 0x8000:
		switch opcode & 0x000F {
		case 0x0:
			return OpMovReg
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
			return OpRsb
		case 0xE:
			return OpShl
		}

	case 0x9000:
		if opcode&0x000F == 0 {
			return OpSkneReg
		}

	case 0xA000:
		return OpMvi

	case 0xB000:
		return OpJmi

	case 0xC000:
		return OpRand

	case 0xD000:
		return OpSprite
	}

	return OpUnknown
}

// String returns the mnemonic form of the instruction.
func (in Instruction) String() string {
	switch in.Op {
	case OpCls, OpRts:
		return in.Op.String()
	case OpJmp, OpJsr, OpMvi, OpJmi:
		return fmt.Sprintf("%s 0x%04x", in.Op, in.NNN)
	case OpSkeqImm, OpSkneImm, OpMovImm, OpAddImm, OpRand:
		return fmt.Sprintf("%s v%x, %d", in.Op, in.X, in.NN)
	case OpShr, OpShl:
		return fmt.Sprintf("%s v%x", in.Op, in.X)
	case OpSprite:
		return fmt.Sprintf("%s v%x, v%x, %d", in.Op, in.X, in.Y, in.N)
	case OpUnknown:
		return fmt.Sprintf("unknown 0x%04X", in.Opcode)
	default:
		return fmt.Sprintf("%s v%x, v%x", in.Op, in.X, in.Y)
	}
}
