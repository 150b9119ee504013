package main

import (
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TimZoet/logandload-module/analyzer"
	"github.com/TimZoet/logandload-module/internal/arena"
)

var statsSparkline bool

var statsCmd = &cobra.Command{
	Use:   "stats <path>",
	Short: "print per-category message counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsSparkline, "sparkline", false, "render an ASCII sparkline of message rate over the ordering-index timeline")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := analyzer.Read(args[0])
	if err != nil {
		return err
	}

	counts := map[uint32]int{}
	var timeline []float64

	for _, n := range a.Nodes() {
		if n.Type != arena.NodeMessage {
			continue
		}
		if desc, ok := a.Format(n.FormatKey); ok {
			counts[desc.Category]++
		}
		if n.HasIndex {
			timeline = append(timeline, float64(n.Index))
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"category", "messages"})
	for cat, count := range counts {
		table.Append([]string{fmt.Sprintf("%d", cat), fmt.Sprintf("%d", count)})
	}
	table.Render()

	if statsSparkline {
		if !a.OrderingEnabled() || len(timeline) < 2 {
			fmt.Fprintln(os.Stderr, "lal: --sparkline requires ordering to be enabled and at least two ordered messages")
			return nil
		}
		buckets := bucketize(timeline, 40)
		fmt.Println(asciigraph.Plot(buckets, asciigraph.Height(10), asciigraph.Caption("messages per bucket")))
	}
	return nil
}

// bucketize divides the [min,max] ordering-index range into n equal
// buckets and counts how many timeline entries fall in each, giving
// asciigraph.Plot a message-rate-over-time series.
func bucketize(timeline []float64, n int) []float64 {
	min, max := timeline[0], timeline[0]
	for _, v := range timeline {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	buckets := make([]float64, n)
	span := max - min
	if span == 0 {
		buckets[0] = float64(len(timeline))
		return buckets
	}
	for _, v := range timeline {
		b := int((v - min) / span * float64(n))
		if b == n {
			b = n - 1
		}
		buckets[b]++
	}
	return buckets
}
