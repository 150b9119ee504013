package main

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TimZoet/logandload-module/analyzer"
	"github.com/TimZoet/logandload-module/flagtree"
	"github.com/TimZoet/logandload-module/internal/wire"
	"github.com/TimZoet/logandload-module/logandload"
)

var (
	filterTestKeyA, filterTestSizeA = logandload.ParameterType[uint32]()
	filterTestFmtA                  = logandload.NewFormat("a={}", 1, []wire.ParameterKey{filterTestKeyA}, []int{filterTestSizeA})
	filterTestFmtB                  = logandload.NewFormat("b={}", 2, []wire.ParameterKey{filterTestKeyA}, []int{filterTestSizeA})
)

// TestFilterByCategoryHidesOtherCategories builds a log with one message in
// each of two categories and checks that a category-1 selection hides the
// category-2 message from the rendered output.
func TestFilterByCategoryHidesOtherCategories(t *testing.T) {
	fs := &dumpMemFS{}
	opts := logandload.DefaultOptions()
	opts.WriterOpener = fs.open

	log, err := logandload.Open("filter.lal", opts)
	require.NoError(t, err)

	s := log.CreateStream(4096)
	var payload [4]byte
	binary.LittleEndian.PutUint32(payload[:], 1)
	s.Message(filterTestFmtA, payload[:])
	binary.LittleEndian.PutUint32(payload[:], 2)
	s.Message(filterTestFmtB, payload[:])

	require.NoError(t, log.Close())

	a, err := analyzer.ReadFrom(fs.bytes("filter.lal"), bytes.NewReader(fs.bytes("filter.lal.fmt")))
	require.NoError(t, err)

	selection := flagtree.New(a.ArenaTree())
	selection.FilterCategory(a.Format, func(old flagtree.Flags, category uint32) flagtree.Flags {
		if category == 1 {
			return flagtree.Enabled
		}
		return flagtree.Disabled
	}, func(uint32) flagtree.Action { return flagtree.Apply })

	got := dumpFilteredLines(a, selection)
	want := []string{
		"log",
		"  stream",
		"    message a={} (4 bytes)",
	}
	require.Equal(t, want, got)
}
