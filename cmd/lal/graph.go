package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TimZoet/logandload-module/analyzer"
	"github.com/TimZoet/logandload-module/flagtree"
)

var graphCmd = &cobra.Command{
	Use:   "graph <path>",
	Short: "write the decoded node tree as a Graphviz DOT digraph",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	a, err := analyzer.Read(args[0])
	if err != nil {
		return err
	}

	tree := flagtree.New(a.ArenaTree())
	w := analyzer.NewDotWriter(os.Stdout)
	a.WriteGraph(w, tree)
	return w.Close()
}
