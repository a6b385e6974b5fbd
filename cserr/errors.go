// Package cserr defines the sentinel error kinds shared by every training
// and inference package in this module.
package cserr

import "errors"

var (
	// ErrShapeMismatch marks a fatal dimension or window-length inconsistency,
	// e.g. an even window length, an alphabet-size mismatch, or a component
	// count that disagrees with a deserialized header.
	ErrShapeMismatch = errors.New("csblast: shape mismatch")

	// ErrNumericalFault marks a fatal numerical condition: a normalizer that
	// sums to zero, or a division by zero encountered while mixing
	// pseudocounts for a letter carrying positive target mass.
	ErrNumericalFault = errors.New("csblast: numerical fault")

	// ErrIO marks a surfaced (non-fatal to the process, but unrecoverable
	// for the call) I/O failure: an unreadable input, a malformed record,
	// or a truncated file.
	ErrIO = errors.New("csblast: I/O fault")

	// ErrConfigConflict marks a fatal configuration error detected at
	// construction time, e.g. an out-of-range admixture or a negative sigma.
	ErrConfigConflict = errors.New("csblast: configuration conflict")
)
