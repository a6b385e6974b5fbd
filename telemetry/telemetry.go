// Package telemetry provides pass-through progress reporting for the
// training drivers: a callback invoked once per block of each scan (EM) or
// per optimizer iteration (CRF), plus a small trace table for offline
// inspection. It has no algorithmic role: a driver that never calls back
// trains identically to one that does.
package telemetry

import (
	"bufio"
	"fmt"
	"io"
)

// Callback is invoked after each EM block or optimizer iteration with the current
// progress. Returning true requests early termination, checked by the
// caller on a best-effort basis: the stop signal only ends the loop
// early, it changes no computed value up to that point.
type Callback func(scan, block int, logLikelihood, prior float64) (stop bool)

// Row is one recorded callback invocation.
type Row struct {
	Scan          int
	Block         int
	LogLikelihood float64
	Prior         float64
}

// Trace accumulates Rows in call order for plotting convergence after
// the fact.
type Trace struct {
	Rows []Row
}

// Collect records one row and never requests a stop. It has the Callback
// signature, so the method value can be passed directly to a driver:
//
//	trace := &telemetry.Trace{}
//	driver.Run(corpus, trace.Collect)
func (t *Trace) Collect(scan, block int, logLikelihood, prior float64) bool {
	t.Rows = append(t.Rows, Row{Scan: scan, Block: block, LogLikelihood: logLikelihood, Prior: prior})
	return false
}

// Export writes the trace as a whitespace-column table, one row per line.
func (t *Trace) Export(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%-8s%-8s%-16s%-16s\n", "scan", "block", "loglik", "prior"); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if _, err := fmt.Fprintf(bw, "%-8d%-8d%-16.6f%-16.6f\n", r.Scan, r.Block, r.LogLikelihood, r.Prior); err != nil {
			return err
		}
	}
	return bw.Flush()
}
