package hal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSquareWave(t *testing.T) {
	assert := assert.New(t)

	samples := squareWave(8000, 400, 10*time.Millisecond)
	assert.Len(samples, 80)

	// 10 samples high, 10 samples low
	assert.Equal(byte(0xC0), samples[0])
	assert.Equal(byte(0xC0), samples[9])
	assert.Equal(byte(0x40), samples[10])
	assert.Equal(byte(0x40), samples[19])
	assert.Equal(byte(0xC0), samples[20])
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 16, cfg.Scale)
	assert.Equal(t, 1200*time.Microsecond, cfg.Tick)
}
