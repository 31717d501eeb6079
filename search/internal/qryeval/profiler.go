package main

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// startCpuProfiler returns a no-op stop function when filename is empty.
func startCpuProfiler(filename string) (func() error, error) {
	if filename == "" {
		return func() error { return nil }, nil
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}

	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("could not close profile file: %w", err)
		}
		return nil
	}, nil
}
