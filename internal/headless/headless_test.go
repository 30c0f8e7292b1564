package headless

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/kapitanov/chip8core/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine(t *testing.T, program ...byte) *vm.VM {
	t.Helper()

	m := vm.New(vm.WithRandom(vm.NewSeededRandom(1)), vm.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, m.Load(program))
	return m
}

func TestHeadless_RunsToFrameLimit(t *testing.T) {
	assert := assert.New(t)

	// draw the "1" font sprite at (8, 4), then spin on 0x208 <-> 0x20a
	m := newMachine(t,
		0x60, 0x08, // mov v0, 8
		0x61, 0x04, // mov v1, 4
		0xA0, 0x05, // mvi 0x005
		0xD0, 0x15, // sprite v0, v1, 5
		0x12, 0x0A, // jmp 0x20a
		0x12, 0x08, // jmp 0x208
	)

	h := New(Config{Frames: 50})
	require.NoError(t, m.Run(context.Background(), h))

	assert.Equal(50, h.Frames())
	assert.Equal(2, h.Draws())
	assert.Equal(0, h.Beeps())

	frame := h.LastFrame()
	for _, p := range []struct{ x, y int }{{10, 4}, {9, 5}, {10, 5}, {10, 7}, {9, 8}, {11, 8}} {
		on, err := frame.Pixel(p.x, p.y)
		require.NoError(t, err)
		assert.True(on, "pixel %d,%d", p.x, p.y)
	}
}

func TestHeadless_WritesFrames(t *testing.T) {
	var out bytes.Buffer

	m := newMachine(t, 0x00, 0xE0, 0x12, 0x02)
	h := New(Config{Frames: 5, Output: &out})
	require.NoError(t, m.Run(context.Background(), h))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "frame 0\n"))
	assert.NotContains(t, text, "frame 1\n", "a clean screen is drawn once")
	assert.Equal(t, vm.ScreenHeight+1, strings.Count(text, "\n"))
}

func TestHeadless_CountsBeeps(t *testing.T) {
	h := New(Config{})

	require.NoError(t, h.Beep())
	require.NoError(t, h.Beep())
	assert.Equal(t, 2, h.Beeps())
	assert.NoError(t, h.ReadInput(), "no frame limit")
}
