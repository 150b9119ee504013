package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TimZoet/logandload-module/analyzer"
	"github.com/TimZoet/logandload-module/flagtree"
	"github.com/TimZoet/logandload-module/internal/arena"
)

var (
	filterCategories                    string
	filterStreams                       string
	filterRegion                        string
	filterExpandLeft, filterExpandRight int
	filterReduceLeft, filterReduceRight int
)

var filterCmd = &cobra.Command{
	Use:   "filter <path>",
	Short: "print the decoded node tree restricted to a flagtree selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterCategories, "category", "", "comma-separated list of message categories to keep")
	filterCmd.Flags().StringVar(&filterStreams, "stream", "", "comma-separated list of stream indices to keep")
	filterCmd.Flags().StringVar(&filterRegion, "region", "", "hide every region that is not a named region with this name, with its contents (nodes outside any region stay)")
	filterCmd.Flags().IntVar(&filterExpandLeft, "expand-left", 0, "enable a sibling if any of this many siblings to its left is enabled")
	filterCmd.Flags().IntVar(&filterExpandRight, "expand-right", 0, "enable a sibling if any of this many siblings to its right is enabled")
	filterCmd.Flags().IntVar(&filterReduceLeft, "reduce-left", 0, "shrink the selection unless this many siblings to the left are also enabled")
	filterCmd.Flags().IntVar(&filterReduceRight, "reduce-right", 0, "shrink the selection unless this many siblings to the right are also enabled")
}

func parseUint32Set(s string) (map[uint32]struct{}, error) {
	out := map[uint32]struct{}{}
	if s == "" {
		return out, nil
	}
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("lal: invalid category %q: %w", p, err)
		}
		out[uint32(v)] = struct{}{}
	}
	return out, nil
}

func parseIntSet(s string) (map[int]struct{}, error) {
	out := map[int]struct{}{}
	if s == "" {
		return out, nil
	}
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("lal: invalid stream index %q: %w", p, err)
		}
		out[v] = struct{}{}
	}
	return out, nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	a, err := analyzer.Read(args[0])
	if err != nil {
		return err
	}

	categories, err := parseUint32Set(filterCategories)
	if err != nil {
		return err
	}
	streams, err := parseIntSet(filterStreams)
	if err != nil {
		return err
	}

	selection := flagtree.New(a.ArenaTree())

	if len(categories) > 0 {
		t := flagtree.New(a.ArenaTree())
		t.FilterCategory(a.Format, func(old flagtree.Flags, category uint32) flagtree.Flags {
			if _, ok := categories[category]; ok {
				return flagtree.Enabled
			}
			return flagtree.Disabled
		}, func(uint32) flagtree.Action { return flagtree.Apply })
		if err := selection.Intersect(t); err != nil {
			return err
		}
	}

	if len(streams) > 0 {
		t := flagtree.New(a.ArenaTree())
		t.FilterStream(func(old flagtree.Flags, streamIndex int) flagtree.Flags {
			if _, ok := streams[streamIndex]; ok {
				return flagtree.Enabled
			}
			return flagtree.Disabled
		})
		if err := selection.Intersect(t); err != nil {
			return err
		}
	}

	if filterRegion != "" {
		t := flagtree.New(a.ArenaTree())
		t.FilterRegion(a.FormatName, func(old flagtree.Flags, hasName bool, name string) flagtree.Flags {
			if hasName && name == filterRegion {
				return flagtree.Enabled
			}
			return flagtree.Disabled
		}, func(uint32) flagtree.Action { return flagtree.Apply })
		if err := selection.Intersect(t); err != nil {
			return err
		}
	}

	if filterExpandLeft != 0 || filterExpandRight != 0 {
		selection.Expand(filterExpandLeft, filterExpandRight)
	}
	if filterReduceLeft != 0 || filterReduceRight != 0 {
		selection.Reduce(filterReduceLeft, filterReduceRight)
	}

	lines := dumpFilteredLines(a, selection)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"node"})
	table.SetAutoWrapText(false)
	for _, l := range lines {
		table.Append([]string{l})
	}
	table.Render()
	return nil
}

// dumpFilteredLines renders one line per Enabled arena node, indented by
// depth, skipping the subtree rooted at any Disabled node.
func dumpFilteredLines(a *analyzer.Analyzer, selection *flagtree.Tree) []string {
	tree := a.ArenaTree()
	var lines []string
	depth := map[uint32]int{}

	tree.Walk(0, func(i uint32) arena.Action {
		if selection.Get(i) == flagtree.Disabled {
			return arena.Terminate
		}
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
