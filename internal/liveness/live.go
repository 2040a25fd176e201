package liveness

import (
	"jackc/internal/ierr"
	"jackc/internal/ir"

	"github.com/sirupsen/logrus"
)

// maxWhileIterations bounds the While fixpoint loop. Two passes
// suffice for any loop body whose only source of growth in the live set is the loop's own
// back-edge (a Local becomes live-at-test-entry after at most one trip around the body once it is
// live-at-body-entry); the extra headroom here only guards against a future IR shape that needs
// more, and a failure to converge is a compiler defect, not a valid program rejection.
const maxWhileIterations = 8

// Annotation is the (before, during, after) triple assigned to every statement: before
// is the set of Locals live on entry, during is before minus whatever the statement itself
// defines, after is the set live on exit (equivalently, the before set of whatever follows).
type Annotation struct {
	Before Set
	During Set
	After  Set
}

// Result maps every statement reachable from a Subroutine's body to its Annotation.
type Result struct {
	byStmt map[ir.Stmt]*Annotation
}

// Of returns the liveness facts recorded for st, or nil if st was never visited by Analyze (a
// programming error — every statement in the body that was analyzed is recorded).
func (r *Result) Of(st ir.Stmt) *Annotation {
	return r.byStmt[st]
}

func newResult() *Result { return &Result{byStmt: map[ir.Stmt]*Annotation{}} }

func (r *Result) record(st ir.Stmt, before, during, after Set) {
	r.byStmt[st] = &Annotation{Before: before, During: during, After: after}
}

// Analyze runs the backward dataflow walk over sub's body and returns the per-statement
// liveness facts.
func Analyze(sub *ir.Subroutine) *Result {
	res := newResult()
	analyzeBody(res, sub.Body, NewSet())
	logrus.WithFields(logrus.Fields{
		"subroutine": sub.QualifiedName(),
		"statements": len(res.byStmt),
	}).Debug("liveness: analysis complete")
	return res
}

// analyzeBody walks body in reverse, recording an Annotation for every statement, and returns the
// set live on entry to body (the before set of body's first statement, or liveAtEnd if body is
// empty).
func analyzeBody(res *Result, body []ir.Stmt, liveAtEnd Set) Set {
	live := liveAtEnd.Clone()
	for i := len(body) - 1; i >= 0; i-- {
		live = analyzeStmt(res, body[i], live)
	}
	return live
}

// analyzeStmt records st's Annotation given the set live immediately after it, and returns the
// set live immediately before it.
func analyzeStmt(res *Result, st ir.Stmt, after Set) Set {
	switch v := st.(type) {
	case *ir.Eval:
		during := after.Clone()
		if l, ok := v.Dest.(*ir.Local); ok {
			during.Remove(l)
		}
		before := during.Clone()
		before.AddAll(ir.ExprRefs(v.Expr))
		res.record(st, before, during, after)
		return before

	case *ir.Store:
		// A Store never writes a Local — it writes named storage (addressed storage, not a
		// temporary) — so during equals after.
		during := after.Clone()
		before := during.Clone()
		before.AddAll(valueRefs(v.Value))
		res.record(st, before, during, after)
		return before

	case *ir.IndirectWrite:
		during := after.Clone()
		before := during.Clone()
		before.AddAll(valueRefs(v.Addr))
		before.AddAll(valueRefs(v.Value))
		res.record(st, before, during, after)
		return before

	case *ir.Push:
		during := after.Clone()
		before := during.Clone()
		before.AddAll(ir.ExprRefs(v.Expr))
		res.record(st, before, during, after)
		return before

	case *ir.Return:
		during := after.Clone()
		before := during.Clone()
		before.AddAll(ir.ExprRefs(v.Expr))
		res.record(st, before, during, after)
		return before

	case *ir.Discard:
		// A call's arguments were consumed by prior Push statements; CallSub itself refs no
		// Local (ir.ExprRefs documents this), so before equals after.
		before := after.Clone()
		res.record(st, before, before, after)
		return before

	case *ir.If:
		thenEntry := analyzeBody(res, v.Then, after)
		var elseEntry Set
		if v.Else != nil {
			elseEntry = analyzeBody(res, v.Else, after)
		} else {
			elseEntry = after.Clone()
		}
		before := thenEntry.Union(elseEntry)
		before.AddAll(valueRefs(v.Value))
		res.record(st, before, after, after)
		return before

	case *ir.While:
		before := analyzeWhile(res, v, after)
		before.AddAll(valueRefs(v.Value))
		res.record(st, before, after, after)
		return before

	default:
		panic(ierr.Fatalf("", "liveness.analyzeStmt", "unhandled statement kind %T", st))
	}
}

// analyzeWhile computes the While's before set by iterating body-then-test until the set live on
// entry to the test stops changing. Each iteration replaces entry with the freshly computed
// live-at-test-start set rather than accumulating into it — the loop entry for the next pass is
// exactly what the test requires on the iteration just computed, not a running union across all
// iterations. Each pass re-records every statement inside Test and Body, so the Annotations left
// in res after convergence reflect the final, stable facts.
func analyzeWhile(res *Result, w *ir.While, after Set) Set {
	entry := after.Clone()
	for iter := 0; ; iter++ {
		if iter >= maxWhileIterations {
			panic(ierr.Fatalf(w.String(), "liveness.analyzeWhile",
				"liveness did not converge after %d iterations", maxWhileIterations))
		}
		bodyEntry := analyzeBody(res, w.Body, entry)
		testEntry := bodyEntry.Clone()
		testEntry.AddAll(valueRefs(w.Value))
		testEntry = analyzeBody(res, w.Test, testEntry)

		if testEntry.Equal(entry) {
			entry = testEntry
			break
		}
		entry = testEntry
	}
	return entry
}

func valueRefs(v ir.Value) []*ir.Local {
	if l, ok := v.(*ir.Local); ok {
		return []*ir.Local{l}
	}
	return nil
}
