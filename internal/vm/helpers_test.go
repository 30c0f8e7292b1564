package vm

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedRandom replays values in order, repeating the last one.
type fixedRandom struct {
	values []uint8
	n      int
}

func (f *fixedRandom) Byte() uint8 {
	v := f.values[min(f.n, len(f.values)-1)]
	f.n++
	return v
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assemble(words ...uint16) []byte {
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	return program
}

func newMachine(t *testing.T, words ...uint16) *VM {
	t.Helper()

	m := New(WithRandom(&fixedRandom{values: []uint8{0xAB}}), WithLogger(quietLogger()))
	require.NoError(t, m.Load(assemble(words...)))
	return m
}

func mustStep(t *testing.T, m *VM, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		_, err := m.Step()
		require.NoError(t, err, "step %d", i)
	}
}

func register(t *testing.T, m *VM, r int) uint8 {
	t.Helper()

	v, err := m.Register(r)
	require.NoError(t, err)
	return v
}
