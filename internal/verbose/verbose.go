// Package verbose provides a verbosity-gated stderr print helper, in place
// of a structured logging framework. No other package in this module calls
// it.
package verbose

import (
	"fmt"
	"io"
	"os"
)

// Printf writes format/args to w (os.Stderr if nil) when level <= verbosity.
// A verbosity of 0 suppresses every message of level 1 or higher.
func Printf(w io.Writer, verbosity, level int, format string, args ...interface{}) {
	if level > verbosity {
		return
	}
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}
