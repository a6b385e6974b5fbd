package serialize

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/soedinglab/csblast/context"
)

// DumpLibrary writes a human-readable rendering of lib, distinct from the
// round-trip fixed-point format WriteLibrary produces: plain
// two-decimal-place floats (four for the prior), no scale-factor tokens, for inspection only
// and never re-parsed.
func DumpLibrary(w io.Writer, lib *context.Library) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "library: %d components, window %d, %d iterations\n", lib.K(), lib.W, lib.Iterations)
	for k, c := range lib.Components {
		fmt.Fprintf(bw, "component %d  prior=%.4f\n", k, c.Prior)
		fmt.Fprintf(bw, "  pc  ")
		for _, letter := range lib.Alphabet.Letters() {
			fmt.Fprintf(bw, "%6c", letter)
		}
		fmt.Fprintln(bw)
		fmt.Fprintf(bw, "      ")
		for x := range c.Pseudocounts {
			fmt.Fprintf(bw, "%6.2f", c.Pseudocounts[x])
		}
		fmt.Fprintln(bw)
		for i, col := range c.Profile {
			fmt.Fprintf(bw, "  %3d", i+1)
			for _, v := range col {
				lin := v
				if lib.LogSpace {
					lin = math.Exp2(v)
				}
				fmt.Fprintf(bw, "%6.2f", lin)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
