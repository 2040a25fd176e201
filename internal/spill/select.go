// Package spill selects the Locals that must be saved across a call and rewrites them into
// stack-backed storage. It is grounded in the same data the register allocator consumes — the
// before sets liveness.Analyze produces — since this target's calling convention clobbers every
// temp register on a call, forcing software spilling for anything still live afterward.
package spill

import (
	"jackc/internal/ir"
	"jackc/internal/liveness"
)

// Select returns the set of Locals that are live immediately before some call site in sub (an Eval
// or Push whose expression is a CallSub, or a Discard): any Local live across a call must be
// spilled, because the calling convention clobbers every temp register.
func Select(sub *ir.Subroutine, live *liveness.Result) liveness.Set {
	out := liveness.NewSet()
	selectBody(sub.Body, live, out)
	return out
}

func selectBody(body []ir.Stmt, live *liveness.Result, out liveness.Set) {
	for _, st := range body {
		switch v := st.(type) {
		case *ir.Eval:
			if _, ok := v.Expr.(*ir.CallSub); ok {
				addBefore(live, st, out)
			}
		case *ir.Push:
			if _, ok := v.Expr.(*ir.CallSub); ok {
				addBefore(live, st, out)
			}
		case *ir.Discard:
			addBefore(live, st, out)
		case *ir.If:
			selectBody(v.Then, live, out)
			if v.Else != nil {
				selectBody(v.Else, live, out)
			}
		case *ir.While:
			selectBody(v.Test, live, out)
			selectBody(v.Body, live, out)
		}
	}
}

func addBefore(live *liveness.Result, st ir.Stmt, out liveness.Set) {
	if ann := live.Of(st); ann != nil {
		for l := range ann.Before {
			out.Add(l)
		}
	}
}
