// Package headless runs a machine without a window. Frames are kept in
// memory, beeps are counted, and the run stops after a fixed number of
// cycles.
package headless

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kapitanov/chip8core/internal/vm"
)

// Config controls a headless run.
type Config struct {
	// Frames is the number of cycles after which ReadInput reports
	// vm.ErrQuit. Zero means no limit.
	Frames int

	// Tick is the wall time between two cycles. Zero runs flat out.
	Tick time.Duration

	// Output, when set, receives every drawn frame as text.
	Output io.Writer
}

// HAL implements vm.HAL for headless runs.
type HAL struct {
	cfg Config

	frames int
	draws  int
	beeps  int
	last   vm.Display
}

var _ vm.HAL = (*HAL)(nil)

func New(cfg Config) *HAL {
	return &HAL{cfg: cfg}
}

func (h *HAL) ReadInput() error {
	if h.cfg.Frames > 0 && h.frames >= h.cfg.Frames {
		slog.Debug("headless: frame limit reached", "frames", h.frames)
		return vm.ErrQuit
	}
	return nil
}

func (h *HAL) Draw(gfx *vm.Display) error {
	h.last = *gfx
	h.draws++

	if h.cfg.Output != nil {
		if _, err := fmt.Fprintf(h.cfg.Output, "frame %d\n%s", h.frames, gfx.String()); err != nil {
			return fmt.Errorf("headless: write frame: %w", err)
		}
	}
	return nil
}

func (h *HAL) Beep() error {
	h.beeps++
	slog.Debug("headless: beep", "frame", h.frames)
	return nil
}

func (h *HAL) WaitForNextFrame() error {
	h.frames++
	if h.cfg.Tick > 0 {
		time.Sleep(h.cfg.Tick)
	}
	return nil
}

// Frames returns the number of cycles run so far.
func (h *HAL) Frames() int {
	return h.frames
}

// Draws returns the number of frames presented.
func (h *HAL) Draws() int {
	return h.draws
}

// Beeps returns the number of beep edges seen.
func (h *HAL) Beeps() int {
	return h.beeps
}

// LastFrame returns the most recently drawn frame.
func (h *HAL) LastFrame() vm.Display {
	return h.last
}
