package simulator

import (
	"fmt"
	"os"

	"github.com/okian/boutstats/pkg/logger"
)

// SetupLogging initializes the global logger for the simulator.
func SetupLogging(verbose bool, format string) error {
	if err := logger.Init(logger.WithFormat(format), logger.WithOutput(os.Stdout)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return fmt.Errorf("failed to set log level: %w", err)
		}
	}
	return nil
}

// Usage is printed by cmd/simulate for -help.
const Usage = `Bout analytics simulator
========================

Registers random bouts, submits their events in shuffled order from
concurrent workers (with some replays), then fetches analytics for every bout
and compares them with a local engine run.

Usage:
  go run ./cmd/simulate [options]

Examples:
  go run ./cmd/simulate -bouts 1000 -workers 32
  go run ./cmd/simulate -seed 42 -verbose -url http://localhost:8080

Options:
`
