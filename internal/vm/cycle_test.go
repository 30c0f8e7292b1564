package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_SoundTimerBeep(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, 0x6000, 0x6000, 0x6000)
	m.SetSoundTimer(1)

	cycle, err := m.Step()
	require.NoError(t, err)
	assert.True(cycle.Beep)
	assert.Equal(uint8(0), m.SoundTimer())

	cycle, err = m.Step()
	require.NoError(t, err)
	assert.False(cycle.Beep)
	assert.Equal(uint8(0), m.SoundTimer())
}

func TestStep_SoundTimerBeepsOnce(t *testing.T) {
	m := newMachine(t, 0x1200)
	m.SetSoundTimer(5)

	beeps := 0
	for i := 0; i < 10; i++ {
		cycle, err := m.Step()
		require.NoError(t, err)
		if cycle.Beep {
			beeps++
			assert.Equal(t, 4, i, "beep on the fifth cycle")
		}
	}
	assert.Equal(t, 1, beeps)
}

func TestStep_DelayTimer(t *testing.T) {
	m := newMachine(t, 0x1200)
	m.SetDelayTimer(3)

	mustStep(t, m, 2)
	assert.Equal(t, uint8(1), m.DelayTimer())

	mustStep(t, m, 5)
	assert.Equal(t, uint8(0), m.DelayTimer())
}

func TestStep_ReportsInstruction(t *testing.T) {
	m := newMachine(t, 0x6142)

	cycle, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, OpMovImm, cycle.Instruction.Op)
	assert.Equal(t, "mov v1, 66", cycle.Instruction.String())
}

func TestStep_HaltLatches(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, 0x00EE)
	m.SetDelayTimer(10)

	_, err := m.Step()
	require.ErrorIs(t, err, ErrStackUnderflow)
	assert.NotErrorIs(err, ErrHalted)
	assert.Equal(uint8(10), m.DelayTimer(), "timers stop with the machine")

	_, err = m.Step()
	assert.ErrorIs(err, ErrHalted)
	assert.ErrorIs(err, ErrStackUnderflow)
	assert.ErrorIs(m.Halted(), ErrStackUnderflow)

	m.Reset()
	assert.NoError(m.Halted())
	assert.Equal(ProgramStart, m.PC())
}

func TestStep_FetchOutsideProgramSpace(t *testing.T) {
	tests := []struct {
		name string
		jump uint16
	}{
		{"reserved region", 0x1100},
		{"font", 0x1000},
		{"last byte", 0x1FFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.jump)
			mustStep(t, m, 1)

			_, err := m.Step()
			assert.ErrorIs(t, err, ErrOutOfBounds)

			var access *AccessError
			require.ErrorAs(t, err, &access)
			assert.Equal(t, "fetch", access.Op)
			assert.Equal(t, int(tt.jump&0x0FFF), access.Addr)
		})
	}
}

func TestStep_JumpWithOffsetPastMemory(t *testing.T) {
	m := newMachine(t, 0x60FF, 0xBFFF)
	mustStep(t, m, 2)
	assert.Equal(t, uint16(0x10FE), m.PC())

	_, err := m.Step()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
