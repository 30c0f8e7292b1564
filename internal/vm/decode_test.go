package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_Ops(t *testing.T) {
	tests := []struct {
		opcode uint16
		op     Op
		text   string
	}{
		{0x00E0, OpCls, "cls"},
		{0x00EE, OpRts, "rts"},
		{0x1234, OpJmp, "jmp 0x0234"},
		{0x2ABC, OpJsr, "jsr 0x0abc"},
		{0x3A12, OpSkeqImm, "skeq va, 18"},
		{0x4B34, OpSkneImm, "skne vb, 52"},
		{0x5120, OpSkeqReg, "skeq v1, v2"},
		{0x63FF, OpMovImm, "mov v3, 255"},
		{0x7401, OpAddImm, "add v4, 1"},
		{0x8120, OpMovReg, "mov v1, v2"},
		{0x8121, OpOr, "or v1, v2"},
		{0x8122, OpAnd, "and v1, v2"},
		{0x8123, OpXor, "xor v1, v2"},
		{0x8124, OpAddReg, "add v1, v2"},
		{0x8125, OpSub, "sub v1, v2"},
		{0x8106, OpShr, "shr v1"},
		{0x8127, OpRsb, "rsb v1, v2"},
		{0x810E, OpShl, "shl v1"},
		{0x9120, OpSkneReg, "skne v1, v2"},
		{0xA300, OpMvi, "mvi 0x0300"},
		{0xB210, OpJmi, "jmi 0x0210"},
		{0xC70F, OpRand, "rand v7, 15"},
		{0xD125, OpSprite, "sprite v1, v2, 5"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := Decode(tt.opcode)
			assert.Equal(t, tt.op, in.Op)
			assert.Equal(t, tt.opcode, in.Opcode)
			assert.Equal(t, tt.text, in.String())
		})
	}
}

func TestDecode_Unknown(t *testing.T) {
	for _, opcode := range []uint16{
		0x0000, // machine code call
		0x0123,
		0x01E0, // only the exact word is cls
		0x00EF,
		0x5121, // 5XY? with non-zero low nibble
		0x8128,
		0x812F,
		0x9121,
		0xE19E, // keypad
		0xE1A1,
		0xF107, // timers, BCD, register dump
		0xF133,
		0xFFFF,
	} {
		in := Decode(opcode)
		assert.Equal(t, OpUnknown, in.Op, "0x%04X", opcode)
	}

	assert.Equal(t, "unknown 0xFFFF", Decode(0xFFFF).String())
}

func TestDecode_Fields(t *testing.T) {
	assert := assert.New(t)

	in := Decode(0xDABC)
	assert.Equal(uint8(0xA), in.X)
	assert.Equal(uint8(0xB), in.Y)
	assert.Equal(uint8(0xC), in.N)
	assert.Equal(uint8(0xBC), in.NN)
	assert.Equal(uint16(0xABC), in.NNN)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "sprite", OpSprite.String())
	assert.Equal(t, "Op(200)", Op(200).String())
}
