package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ghemawat/stream"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TimZoet/logandload-module/analyzer"
	"github.com/TimZoet/logandload-module/internal/arena"
)

var dumpGrep string

var dumpCmd = &cobra.Command{
	Use:   "dump <path>",
	Short: "print the decoded node tree as a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpGrep, "grep", "", "only show lines matching this regexp")
}

// dumpLines renders one line per arena node, indented by depth, in
// pre-order — the shape a tree pretty-printer produces.
func dumpLines(a *analyzer.Analyzer) []string {
	tree := a.ArenaTree()
	var lines []string
	depth := map[uint32]int{}

	tree.Walk(0, func(i uint32) arena.Action {
		n := &tree.Nodes[i]
		d := depth[i]
		lines = append(lines, fmt.Sprintf("%s%s", strings.Repeat("  ", d), describeNode(a, n)))
		if n.HasChildren() {
			for c := uint32(0); c < n.ChildCount; c++ {
				depth[n.FirstChild+c] = d + 1
			}
		}
		return arena.Apply
	})
	return lines
}

func describeNode(a *analyzer.Analyzer, n *arena.Node) string {
	switch n.Type {
	case arena.NodeLog:
		return "log"
	case arena.NodeStream:
		return "stream"
	case arena.NodeRegion:
		if n.HasFormat {
			if name, ok := a.FormatName(n.FormatKey); ok {
				return "region " + name
			}
		}
		return "region"
	case arena.NodeMessage:
		if desc, ok := a.Format(n.FormatKey); ok {
			return fmt.Sprintf("message %s (%d bytes)", desc.FormatString, len(n.Data))
		}
		return "message ?"
	default:
		return "?"
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	a, err := analyzer.Read(args[0])
	if err != nil {
		return err
	}

	lines := dumpLines(a)
	source := stream.ReadLines(strings.NewReader(strings.Join(lines, "\n")))

	// Route the pretty-printer's output through a Unix-pipe-of-Go-values
	// filter chain instead of hand-rolled line filtering.
	var buf bytes.Buffer
	seq := []stream.Filter{source}
	if dumpGrep != "" {
		seq = append(seq, stream.Grep(dumpGrep))
	}
	seq = append(seq, stream.WriteLines(&buf))
	if err := stream.Run(stream.Sequence(seq...)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"node"})
	table.SetAutoWrapText(false)
	for _, l := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if l != "" {
			table.Append([]string{l})
		}
	}
	table.Render()
	return nil
}
