package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kapitanov/chip8core/internal/hal"
	"github.com/kapitanov/chip8core/internal/headless"
	"github.com/kapitanov/chip8core/internal/vm"
	"github.com/kapitanov/chip8core/internal/wavwriter"
	"github.com/spf13/cobra"
	"github.com/sqweek/dialog"
)

// SDL must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s [PATH_TO_ROM_FILE]", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	defaults := hal.DefaultConfig()

	verbose := cmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
	seed := cmd.Flags().Uint64("seed", 0, "random seed, 0 seeds from the clock")
	tick := cmd.Flags().Duration("tick", defaults.Tick, "wall time per cycle")
	scale := cmd.Flags().Int("scale", defaults.Scale, "window pixels per machine pixel")
	strict := cmd.Flags().Bool("strict", false, "treat unknown instructions as fatal")
	runHeadless := cmd.Flags().Bool("headless", false, "run without a window")
	frames := cmd.Flags().Int("frames", 600, "cycles to run in headless mode")
	wavPath := cmd.Flags().String("wav", "", "record beeps to a WAV file")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if *verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))

		path, err := romPath(args, *runHeadless)
		if err != nil {
			return err
		}

		bs, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to load file %q: %w", path, err)
		}

		random := vm.NewRandom()
		if *seed != 0 {
			random = vm.NewSeededRandom(*seed)
		}

		machine := vm.New(vm.WithRandom(random), vm.WithStrict(*strict))
		if err := machine.Load(bs); err != nil {
			return fmt.Errorf("unable to load program %q: %w", path, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if *runHeadless {
			h := headless.New(headless.Config{Frames: *frames})
			if err := run(ctx, machine, h, *wavPath, *tick); err != nil {
				return err
			}

			slog.Info("headless run finished", "frames", h.Frames(), "draws", h.Draws(), "beeps", h.Beeps())
			last := h.LastFrame()
			fmt.Print(last.String())
			return nil
		}

		h, err := hal.New(hal.Config{Scale: *scale, Tick: *tick, Title: filepath.Base(path)})
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		return run(ctx, machine, h, *wavPath, *tick)
	}

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, machine *vm.VM, h vm.HAL, wavPath string, tick time.Duration) (rerr error) {
	if wavPath != "" {
		w := wavwriter.New(h, wavPath, wavwriter.Config{Frame: tick})
		defer func() {
			if err := w.Close(); err != nil && rerr == nil {
				rerr = err
			}
		}()
		h = w
	}

	err := machine.Run(ctx, h)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func romPath(args []string, noWindow bool) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	if noWindow {
		return "", errors.New("a ROM path is required in headless mode")
	}

	path, err := dialog.File().Title("Open CHIP-8 ROM").Filter("CHIP-8 ROM", "ch8", "c8").Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", errors.New("no ROM selected")
	}
	if err != nil {
		return "", fmt.Errorf("unable to open file dialog: %w", err)
	}

	return path, nil
}
