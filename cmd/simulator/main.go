package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	serverURL    = flag.String("server", "http://localhost:8080", "WattScope server base URL")
	devices      = flag.String("devices", "Living Room AC,Kitchen Fridge,Bedroom Television,Washing Machine,Hallway Light,Ceiling Fan", "Comma-separated device names")
	interval     = flag.Duration("interval", 10*time.Second, "Time between batches")
	backfillDays = flag.Int("backfill", 0, "Days of history to backfill before streaming")
	anomalyRate  = flag.Float64("anomaly-rate", 0.01, "Fraction of readings spiked outside the device envelope")
	seed         = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	names := strings.Split(*devices, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}

	config := &SimulatorConfig{
		ServerURL:    strings.TrimRight(*serverURL, "/"),
		Devices:      names,
		Interval:     *interval,
		BackfillDays: *backfillDays,
		AnomalyRate:  *anomalyRate,
		Seed:         *seed,
	}

	simulator := NewSimulator(config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down simulator...")
		cancel()
	}()

	if err := simulator.Backfill(ctx); err != nil {
		logger.Fatal("Backfill failed", zap.Error(err))
	}

	fmt.Printf("WattScope readings simulator started\n")
	fmt.Printf("  Server:   %s\n", config.ServerURL)
	fmt.Printf("  Devices:  %d\n", len(config.Devices))
	fmt.Printf("  Interval: %s\n", config.Interval)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := simulator.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal("Simulator failed", zap.Error(err))
	}
}
