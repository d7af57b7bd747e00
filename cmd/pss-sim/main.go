package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ringcast/ringcast/internal/simulator"
	"github.com/ringcast/ringcast/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr         = "127.0.0.1:6000"
	defaultMatch        = "101"
	defaultPhase        = "finals"
	defaultRounds       = 3
	defaultRoundSeconds = 120
	defaultDelay        = 200 * time.Millisecond
)

func main() {
	var (
		addr         = flag.String("addr", defaultAddr, "UDP target address")
		match        = flag.String("match", defaultMatch, "Match number for the bout")
		phase        = flag.String("phase", defaultPhase, "Tournament phase label")
		rounds       = flag.Int("rounds", defaultRounds, "Number of rounds")
		roundSeconds = flag.Int("round-seconds", defaultRoundSeconds, "Seconds per round")
		delay        = flag.Duration("delay", defaultDelay, "Pause between datagrams")
		verbose      = flag.Bool("verbose", false, "Log every datagram sent")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &simulator.Config{
		Addr:         *addr,
		Match:        *match,
		Phase:        *phase,
		Rounds:       *rounds,
		RoundSeconds: *roundSeconds,
		Delay:        *delay,
		Verbose:      *verbose,
	}

	if err := simulator.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
	}
}
