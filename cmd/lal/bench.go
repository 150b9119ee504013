package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	benchpkg "github.com/TimZoet/logandload-module/internal/bench"
	"github.com/TimZoet/logandload-module/logandload"
)

var (
	benchStreams           int
	benchRate              float64
	benchMessagesPerStream int
	benchRegionEvery       int
	benchGlobalBufferSize  int
	benchStreamBufferSize  int
	benchOrdering          bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <path>",
	Short: "drive a synthetic, rate-limited load generator against a fresh log",
	Args:  cobra.ExactArgs(1),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchStreams, "streams", 4, "number of concurrent producer streams")
	benchCmd.Flags().Float64Var(&benchRate, "rate", 0, "messages per second per stream (0 = unthrottled)")
	benchCmd.Flags().IntVar(&benchMessagesPerStream, "messages", 100_000, "messages emitted per stream")
	benchCmd.Flags().IntVar(&benchRegionEvery, "region-every", 0, "wrap each run of N consecutive messages in one region (0 disables)")
	benchCmd.Flags().IntVar(&benchGlobalBufferSize, "global-buffer", 1<<20, "global buffer size in bytes")
	benchCmd.Flags().IntVar(&benchStreamBufferSize, "stream-buffer", 1<<16, "per-stream buffer size in bytes")
	benchCmd.Flags().BoolVar(&benchOrdering, "ordering", false, "enable the global monotone ordering index")
}

func runBench(cmd *cobra.Command, args []string) error {
	opts := logandload.DefaultOptions()
	opts.GlobalBufferSize = benchGlobalBufferSize
	opts.OrderingEnabled = benchOrdering

	log, err := logandload.Open(args[0], opts)
	if err != nil {
		return err
	}

	result, err := benchpkg.Run(context.Background(), log, benchpkg.Config{
		Streams:           benchStreams,
		RatePerStream:     benchRate,
		MessagesPerStream: benchMessagesPerStream,
		RegionEvery:       benchRegionEvery,
		StreamBufferSize:  benchStreamBufferSize,
	})
	if closeErr := log.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	rate := float64(result.MessagesEmitted) / result.Elapsed.Seconds()
	fmt.Fprintf(os.Stderr, "emitted %d messages in %s (%.0f msg/s)\n", result.MessagesEmitted, result.Elapsed.Round(time.Millisecond), rate)
	return nil
}
