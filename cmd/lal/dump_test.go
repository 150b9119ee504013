package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/TimZoet/logandload-module/analyzer"
	"github.com/TimZoet/logandload-module/internal/wire"
	"github.com/TimZoet/logandload-module/logandload"
)

type dumpMemFS struct {
	mu    sync.Mutex
	files map[string]*bytes.Buffer
}

func (m *dumpMemFS) open(path string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string]*bytes.Buffer{}
	}
	buf := &bytes.Buffer{}
	m.files[path] = buf
	return nopCloser{buf}, nil
}

func (m *dumpMemFS) bytes(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path].Bytes()
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

var (
	dumpTestKey, dumpTestSize = logandload.ParameterType[uint32]()
	dumpTestFormat            = logandload.NewFormat("count={}", 2, []wire.ParameterKey{dumpTestKey}, []int{dumpTestSize})
)

// TestDumpLinesMatchesGolden builds a tiny two-message, one-region log and
// checks the pretty-printer's line-by-line output against a golden dump,
// rendering a unified diff on mismatch.
func TestDumpLinesMatchesGolden(t *testing.T) {
	fs := &dumpMemFS{}
	opts := logandload.DefaultOptions()
	opts.WriterOpener = fs.open

	log, err := logandload.Open("dump.lal", opts)
	require.NoError(t, err)

	s := log.CreateStream(4096)
	var payload [4]byte
	binary.LittleEndian.PutUint32(payload[:], 1)
	s.Message(dumpTestFormat, payload[:])

	region := s.BeginRegion()
	binary.LittleEndian.PutUint32(payload[:], 2)
	s.Message(dumpTestFormat, payload[:])
	region.End()

	require.NoError(t, log.Close())

	a, err := analyzer.ReadFrom(fs.bytes("dump.lal"), bytes.NewReader(fs.bytes("dump.lal.fmt")))
	require.NoError(t, err)

	got := dumpLines(a)
	want := []string{
		"log",
		"  stream",
		"    message count={} (4 bytes)",
		"    region",
		"      message count={} (4 bytes)",
	}

	if !equalLines(got, want) {
		diff := difflib.UnifiedDiff{
			A:        want,
			B:        got,
			FromFile: "want",
			ToFile:   "got",
			Context:  3,
		}
		text, diffErr := difflib.GetUnifiedDiffString(diff)
		require.NoError(t, diffErr)
		t.Fatalf("dump output mismatch:\n%s", strings.Join([]string{text}, ""))
	}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
