// Command lal inspects and benchmarks logandload logs: dumping the decoded
// node tree, filtering it by category/stream/region, rendering category
// statistics, exporting a DOT graph, and driving a synthetic load
// generator against a fresh log.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lal [command] (flags)",
	Short: "logandload inspection and benchmarking tool",
}

func main() {
	log.SetFlags(0)
	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(dumpCmd, filterCmd, statsCmd, graphCmd, benchCmd, archiveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
