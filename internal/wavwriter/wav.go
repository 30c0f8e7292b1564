// Package wavwriter records the beeps of a running machine to a WAV file.
// Samples are buffered in memory and written on Close, so it is meant for
// short runs and tests.
package wavwriter

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/kapitanov/chip8core/internal/vm"
)

const (
	bitDepth      = 16
	pcmFormat     = 1
	toneAmplitude = 8000
)

// Config controls the recording.
type Config struct {
	SampleRate int

	// Frame is the amount of audio time one machine cycle covers.
	Frame time.Duration

	// Tone is the beep frequency in Hz and Duration its length.
	Tone     int
	Duration time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		Frame:      1200 * time.Microsecond,
		Tone:       440,
		Duration:   100 * time.Millisecond,
	}
}

// Writer wraps a vm.HAL. Every frame appends silence or tone to the
// recording; Beep starts a tone of the configured duration.
type Writer struct {
	vm.HAL

	filename string
	cfg      Config

	carry    int64 // fractional sample time carried between frames
	toneLeft int
	n        int
	buffer   []int
}

var _ vm.HAL = (*Writer)(nil)

func New(inner vm.HAL, filename string, cfg Config) *Writer {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Frame <= 0 {
		cfg.Frame = def.Frame
	}
	if cfg.Tone <= 0 {
		cfg.Tone = def.Tone
	}
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}

	return &Writer{
		HAL:      inner,
		filename: filename,
		cfg:      cfg,
	}
}

func (w *Writer) Beep() error {
	w.toneLeft = w.samples(w.cfg.Duration)
	return w.HAL.Beep()
}

func (w *Writer) WaitForNextFrame() error {
	w.carry += int64(w.cfg.SampleRate) * int64(w.cfg.Frame)
	count := int(w.carry / int64(time.Second))
	w.carry %= int64(time.Second)

	half := w.cfg.SampleRate / w.cfg.Tone / 2
	if half == 0 {
		half = 1
	}

	for i := 0; i < count; i++ {
		v := 0
		if w.toneLeft > 0 {
			v = toneAmplitude
			if (w.n/half)%2 != 0 {
				v = -toneAmplitude
			}
			w.toneLeft--
		}

		w.buffer = append(w.buffer, v)
		w.n++
	}

	return w.HAL.WaitForNextFrame()
}

// Len returns the number of samples recorded so far.
func (w *Writer) Len() int {
	return len(w.buffer)
}

// Close writes the recording to disk.
func (w *Writer) Close() (rerr error) {
	f, err := os.Create(w.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, w.cfg.SampleRate, bitDepth, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  w.cfg.SampleRate,
		},
		Data:           w.buffer,
		SourceBitDepth: bitDepth,
	}

	slog.Info("wavwriter: writing audio", "file", w.filename, "samples", len(w.buffer))

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	return nil
}

func (w *Writer) samples(d time.Duration) int {
	return int(int64(w.cfg.SampleRate) * int64(d) / int64(time.Second))
}
