package flagtree

import (
	"testing"

	"github.com/cockroachdb/datadriven"
)

// TestConvolutionDataDriven replays line-of-siblings convolution scenarios
// from testdata/convolution.
func TestConvolutionDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata/convolution", func(t *testing.T, path string) {
		var tr *Tree
		var n int

		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			switch td.Cmd {
			case "init":
				var pattern string
				td.ScanArgs(t, "flags", &pattern)
				n = len(pattern)
				tr = New(buildLine(n))
				setFlags(tr, 2, pattern)
				return flagsString(tr, 2, n)

			case "expand":
				var left, right int
				td.ScanArgs(t, "left", &left)
				td.ScanArgs(t, "right", &right)
				tr.Expand(left, right)
				return flagsString(tr, 2, n)

			case "reduce":
				var left, right int
				td.ScanArgs(t, "left", &left)
				td.ScanArgs(t, "right", &right)
				tr.Reduce(left, right)
				return flagsString(tr, 2, n)

			default:
				td.Fatalf(t, "unknown command %q", td.Cmd)
				return ""
			}
		})
	})
}
