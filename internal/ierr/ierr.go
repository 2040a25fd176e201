// Package ierr provides the one diagnostic constructor every compiler stage uses to report an
// internal-compiler-error: unknown node kinds, liveness fixpoint failures, register assignment
// that does not converge, and the emitter meeting a Location kind it has no base for are all
// fatal, named by subroutine and offending construct, with no recovery path. No stage re-runs
// spill selection after promotion, so a promoted body that still has a Local live across a call
// is not reported here.
package ierr

import "github.com/pkg/errors"

// Fatalf builds an internal-compiler-error naming the subroutine and construct it was raised
// from. Every stage (flatten, liveness, spill, regalloc, emit) funnels its fatal paths through
// this constructor so cmd/jackc can print one consistent diagnostic shape.
func Fatalf(subroutine, construct, format string, args ...interface{}) error {
	return errors.Wrapf(errors.Errorf(format, args...), "internal compiler error in %s (%s)", subroutine, construct)
}

// Wrap attaches subroutine/construct context to an existing error, preserving its cause chain.
func Wrap(err error, subroutine, construct string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "internal compiler error in %s (%s)", subroutine, construct)
}
