package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/boutstats/internal/simulator"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	def := simulator.DefaultConfig()
	var (
		baseURL   = flag.String("url", def.BaseURL, "Base URL of the service")
		bouts     = flag.Int("bouts", def.Bouts, "Number of bouts to generate")
		workers   = flag.Int("workers", def.Workers, "Number of concurrent HTTP workers")
		timeout   = flag.Duration("timeout", def.Timeout, "HTTP request timeout")
		seed      = flag.Uint64("seed", def.Seed, "Seed for bout generation and submission order")
		maxScores = flag.Int("max-scores", def.MaxScores, "Upper bound on score events per bout")
		dupRate   = flag.Float64("duplicates", def.DuplicateRate, "Share of events submitted twice")
		logFormat = flag.String("log-format", "text", "Log format: text or json")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Usage = func() {
		_, _ = fmt.Fprint(flag.CommandLine.Output(), simulator.Usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := simulator.SetupLogging(*verbose, *logFormat); err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := simulator.Config{
		BaseURL:       *baseURL,
		Bouts:         *bouts,
		Workers:       *workers,
		Timeout:       *timeout,
		Seed:          *seed,
		MaxScores:     *maxScores,
		DuplicateRate: *dupRate,
		Verbose:       *verbose,
	}
	if _, err := simulator.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
