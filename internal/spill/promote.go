package spill

import (
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/liveness"
	"jackc/internal/util"
)

// Promote rewrites every read and write of a Local in spilled into a Store/Location access,
// materializing a fresh, single-statement-lived Local at each use and def site. The target ISA
// has no instruction that operates on a stack slot directly — M is always the current address
// register, never an arbitrary slot — so every read must first be loaded into a temporary and
// every write must first be computed into one.
//
// Promote allocates one fresh Location per spilled Local, starting at sub.NumLocalSlots, and
// leaves sub.NumLocalSlots incremented accordingly — promotion is expected to run more than once
// across a compilation, as the register-assignment fallback loop retries, so slots accumulate
// rather than reset.
func Promote(sub *ir.Subroutine, spilled liveness.Set, names *util.NameGen) {
	if len(spilled) == 0 {
		return
	}
	locs := make(map[*ir.Local]*ir.Location, len(spilled))
	for _, l := range spilled.Slice() {
		locs[l] = ir.NewLocation(ir.LocalLoc, sub.NumLocalSlots, l.Name)
		sub.NumLocalSlots++
	}
	sub.Body = promoteBody(sub.Body, locs, names)
}

func promoteBody(body []ir.Stmt, locs map[*ir.Local]*ir.Location, names *util.NameGen) []ir.Stmt {
	out := make([]ir.Stmt, 0, len(body))
	for _, st := range body {
		out = append(out, rewriteStmt(st, locs, names)...)
	}
	return out
}

// rewriteStmt returns the statement(s) that replace st: any materialization Evals the rewrite
// needed, followed by st itself (or its structurally rewritten equivalent).
func rewriteStmt(st ir.Stmt, locs map[*ir.Local]*ir.Location, names *util.NameGen) []ir.Stmt {
	switch v := st.(type) {
	case *ir.Eval:
		var pre []ir.Stmt
		newExpr := rewriteExpr(v.Expr, locs, names, &pre)
		if l, ok := v.Dest.(*ir.Local); ok {
			if loc, spilled := locs[l]; spilled {
				fresh := ir.NewLocal(names.Next())
				pre = append(pre, &ir.Eval{Dest: fresh, Expr: newExpr})
				pre = append(pre, &ir.Store{Loc: loc, Value: fresh})
				return pre
			}
		}
		pre = append(pre, &ir.Eval{Dest: v.Dest, Expr: newExpr})
		return pre

	case *ir.Store:
		var pre []ir.Stmt
		newVal := materializeRead(v.Value, locs, names, &pre)
		pre = append(pre, &ir.Store{Loc: v.Loc, Value: newVal})
		return pre

	case *ir.IndirectWrite:
		var pre []ir.Stmt
		newAddr := materializeRead(v.Addr, locs, names, &pre)
		newVal := materializeRead(v.Value, locs, names, &pre)
		pre = append(pre, &ir.IndirectWrite{Addr: newAddr, Value: newVal})
		return pre

	case *ir.Push:
		var pre []ir.Stmt
		newExpr := rewriteExpr(v.Expr, locs, names, &pre)
		pre = append(pre, &ir.Push{Expr: newExpr})
		return pre

	case *ir.Return:
		var pre []ir.Stmt
		newExpr := rewriteExpr(v.Expr, locs, names, &pre)
		pre = append(pre, &ir.Return{Expr: newExpr})
		return pre

	case *ir.Discard:
		// CallSub carries no Value operands (its arguments were already pushed); nothing to
		// rewrite.
		return []ir.Stmt{st}

	case *ir.If:
		var pre []ir.Stmt
		newVal := materializeRead(v.Value, locs, names, &pre)
		newThen := promoteBody(v.Then, locs, names)
		var newElse []ir.Stmt
		if v.Else != nil {
			newElse = promoteBody(v.Else, locs, names)
		}
		pre = append(pre, &ir.If{Value: newVal, Cmp: v.Cmp, Then: newThen, Else: newElse})
		return pre

	case *ir.While:
		// Test re-executes every iteration, so the materialization its own Value needs must be
		// appended inside Test, not spliced in front of the While once.
		newTest := promoteBody(v.Test, locs, names)
		var testTail []ir.Stmt
		newVal := materializeRead(v.Value, locs, names, &testTail)
		newTest = append(newTest, testTail...)
		newBody := promoteBody(v.Body, locs, names)
		return []ir.Stmt{&ir.While{Test: newTest, Value: newVal, Cmp: v.Cmp, Body: newBody}}

	default:
		panic(ierr.Fatalf("", "spill.rewriteStmt", "unhandled statement kind %T", st))
	}
}

// rewriteExpr returns a copy of e with every spilled-Local operand replaced by a freshly
// materialized Local, appending the Eval statements that perform the loads to pre.
func rewriteExpr(e ir.Expr, locs map[*ir.Local]*ir.Location, names *util.NameGen, pre *[]ir.Stmt) ir.Expr {
	switch v := e.(type) {
	case *ir.Local:
		return materializeRead(v, locs, names, pre)
	case *ir.Const, *ir.Reg:
		return e
	case *ir.Binary:
		l := materializeRead(v.Left, locs, names, pre)
		r := materializeRead(v.Right, locs, names, pre)
		return ir.NewBinary(l, v.Op, r)
	case *ir.Unary:
		o := materializeRead(v.Operand, locs, names, pre)
		return ir.NewUnary(v.Op, o)
	case *ir.IndirectRead:
		a := materializeRead(v.Addr, locs, names, pre)
		return ir.NewIndirectRead(a)
	case *ir.CallSub:
		return e
	case *ir.Location:
		return e
	default:
		panic(ierr.Fatalf("", "spill.rewriteExpr", "unhandled expr kind %T", e))
	}
}

// materializeRead substitutes a fresh Local for v if v is a spilled Local, appending the Eval
// that loads it from its Location to pre; any other Value passes through unchanged.
func materializeRead(v ir.Value, locs map[*ir.Local]*ir.Location, names *util.NameGen, pre *[]ir.Stmt) ir.Value {
	l, ok := v.(*ir.Local)
	if !ok {
		return v
	}
	loc, spilled := locs[l]
	if !spilled {
		return v
	}
	fresh := ir.NewLocal(names.Next())
	*pre = append(*pre, &ir.Eval{Dest: fresh, Expr: loc})
	return fresh
}
