package hal

import (
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/kapitanov/chip8core/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	toneSampleRate = 22050
	toneFrequency  = 440
	toneDuration   = 100 * time.Millisecond
)

var (
	ErrReboot = vm.ErrReboot
	ErrQuit   = vm.ErrQuit
)

// Config controls the SDL backend.
type Config struct {
	// Scale is the size of one machine pixel in window pixels.
	Scale int

	// Tick is the wall time between two cycles.
	Tick time.Duration

	Title string
}

// DefaultConfig matches a 1024x512 window paced at roughly 830 cycles per
// second.
func DefaultConfig() Config {
	return Config{
		Scale: 16,
		Tick:  1200 * time.Microsecond,
		Title: "CHIP-8",
	}
}

// HAL implements vm.HAL on top of an SDL window and audio device.
type HAL struct {
	cfg Config

	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	audio sdl.AudioDeviceID
	tone  []byte
}

var _ vm.HAL = (*HAL)(nil)

func New(cfg Config) (*HAL, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultConfig().Scale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	width, height := int32(vm.ScreenWidth*cfg.Scale), int32(vm.ScreenHeight*cfg.Scale)

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, sdl.WINDOW_SHOWN|sdl.WINDOW_UTILITY)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window", "width", width, "height", height)
	window.Show()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	err = renderer.SetLogicalSize(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	hal := &HAL{
		cfg:             cfg,
		window:          window,
		renderer:        renderer,
		texture:         texture,
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: int(vm.ScreenWidth) * int(unsafe.Sizeof(uint32(0))),
	}

	// Sound is optional; a machine without an audio device still runs.
	if err := hal.openAudio(); err != nil {
		slog.Warn("hal: audio unavailable", "err", err)
	}

	return hal, nil
}

func (hal *HAL) openAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     toneSampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return fmt.Errorf("failed to open sdl audio device: %w", err)
	}
	sdl.PauseAudioDevice(dev, false)
	slog.Debug("hal: open audio", "device", dev)

	hal.audio = dev
	hal.tone = squareWave(toneSampleRate, toneFrequency, toneDuration)
	return nil
}

// squareWave returns unsigned 8-bit mono samples of a square wave.
func squareWave(rate, freq int, d time.Duration) []byte {
	n := int(int64(rate) * int64(d) / int64(time.Second))
	half := rate / freq / 2

	samples := make([]byte, n)
	for i := range samples {
		if (i/half)%2 == 0 {
			samples[i] = 0xC0
		} else {
			samples[i] = 0x40
		}
	}
	return samples
}

func (hal *HAL) Shutdown() {
	if hal.audio != 0 {
		sdl.CloseAudioDevice(hal.audio)
	}

	if err := hal.texture.Destroy(); err != nil {
		slog.Error("failed to destroy sdl texture", "err", err)
	}

	if err := hal.renderer.Destroy(); err != nil {
		slog.Error("failed to destroy sdl renderer", "err", err)
	}

	if err := hal.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

// ReadInput drains pending SDL events. Closing the window or pressing
// Escape quits; Backspace reboots.
func (hal *HAL) ReadInput() error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e.GetType() {
		case sdl.QUIT:
			slog.Debug("hal: exit requested")
			return ErrQuit

		case sdl.KEYDOWN:
			if err := hal.processKeyDown(e.(*sdl.KeyboardEvent)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (hal *HAL) processKeyDown(e *sdl.KeyboardEvent) error {
	switch e.Keysym.Scancode {
	case sdl.SCANCODE_BACKSPACE:
		slog.Debug("hal: reboot requested")
		return ErrReboot
	case sdl.SCANCODE_ESCAPE:
		slog.Debug("hal: exit requested")
		return ErrQuit
	}

	return nil
}

func (hal *HAL) Draw(gfx *vm.Display) error {
	const (
		bgColor = uint32(0x000000)
		fgColor = uint32(0xbea700)
	)

	for i, p := range gfx {
		color := bgColor
		if p != 0 {
			color = fgColor
		}

		hal.backBuffer[i] = color
	}

	backBufferPtr := unsafe.Pointer(&hal.backBuffer[0])
	if err := hal.texture.Update(nil, backBufferPtr, hal.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := hal.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := hal.renderer.Copy(hal.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	hal.renderer.Present()
	return nil
}

// Beep queues a short tone. A beep is dropped while the previous one is
// still playing.
func (hal *HAL) Beep() error {
	if hal.audio == 0 {
		return nil
	}

	if sdl.GetQueuedAudioSize(hal.audio) > 0 {
		return nil
	}

	if err := sdl.QueueAudio(hal.audio, hal.tone); err != nil {
		return fmt.Errorf("failed to queue sdl audio: %w", err)
	}

	return nil
}

func (hal *HAL) WaitForNextFrame() error {
	time.Sleep(hal.cfg.Tick)
	return nil
}
