package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
)

const defaultMemProfileRate = 512 * 1024

// ErrProfile indicates a profile could not be started or written.
var ErrProfile = errors.New("profile")

// Profiler runs one profiling session around a command.
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	cpuFile *os.File
	cfg     Config
}

// Start applies the memory profile rate and starts CPU profiling if enabled.
func (p *Profiler) Start() error {
	if p.cfg.HeapProfile != "" && p.cfg.MemProfileRate > 0 {
		runtime.MemProfileRate = p.cfg.MemProfileRate
	}

	if p.cfg.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.cfg.CPUProfile)
	if err != nil {
		return fmt.Errorf("%w: create cpu profile: %w", ErrProfile, err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		return errors.Join(
			fmt.Errorf("%w: start cpu profile: %w", ErrProfile, err),
			f.Close(),
		)
	}

	p.cpuFile = f

	return nil
}

// Stop ends CPU profiling and writes the heap profile if enabled. It is safe
// to call when [Profiler.Start] was not called.
func (p *Profiler) Stop() error {
	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: close cpu profile: %w", ErrProfile, err))
		} else {
			slog.Debug("wrote profile",
				slog.String("profile", "cpu"),
				slog.String("path", p.cfg.CPUProfile),
			)
		}

		p.cpuFile = nil
	}

	if p.cfg.HeapProfile != "" {
		err := writeHeap(p.cfg.HeapProfile)
		if err != nil {
			errs = append(errs, err)
		} else {
			slog.Debug("wrote profile",
				slog.String("profile", "heap"),
				slog.String("path", p.cfg.HeapProfile),
			)
		}
	}

	return errors.Join(errs...)
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create heap profile: %w", ErrProfile, err)
	}

	runtime.GC()

	err = pprof.WriteHeapProfile(f)
	if err != nil {
		return errors.Join(
			fmt.Errorf("%w: write heap profile: %w", ErrProfile, err),
			f.Close(),
		)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("%w: close heap profile: %w", ErrProfile, err)
	}

	return nil
}
