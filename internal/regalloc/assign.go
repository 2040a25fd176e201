package regalloc

import (
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/liveness"
	"jackc/internal/spill"
	"jackc/internal/util"

	"github.com/sirupsen/logrus"
)

// K is the number of general-purpose registers the coloured program may use: the machine's full
// temp file, R5..R12, with RESULT relocated to R13 rather than sharing a slot inside that file.
const K = 8

// maxAssignRounds bounds the spill-and-retry loop. Each round either succeeds or strictly reduces
// the number of Locals left to colour (every Local the colourer rejects is promoted to a Location
// and never recoloured itself — the fresh materializations Promote substitutes in its place have
// a one-statement live range and interfere with almost nothing), so convergence is guaranteed long
// before this bound is felt; it only catches a future regression turning this into an infinite
// loop instead of a silent hang.
const maxAssignRounds = 64

// Assign analyzes liveness, builds the interference graph, and colours it; if more than K colour
// classes are needed it spills the uncolourable Locals through the Promoter and restarts from
// liveness, repeating until every surviving Local fits in a register. On return, sub.Body contains
// no *ir.Local values anywhere — every one has become either an *ir.Reg or a Location access.
func Assign(sub *ir.Subroutine, names *util.NameGen) {
	AssignK(sub, names, K)
}

// AssignK is Assign with an overridable register count, letting cmd/jackc's --registers flag
// experiment with K without touching the default call sites or their tests.
func AssignK(sub *ir.Subroutine, names *util.NameGen, k int) {
	for round := 0; ; round++ {
		if round >= maxAssignRounds {
			panic(ierr.Fatalf(sub.QualifiedName(), "regalloc.Assign",
				"register assignment did not converge after %d rounds", maxAssignRounds))
		}
		live := liveness.Analyze(sub)
		g := Build(sub, live)
		colors, uncolored := Color(g, k)
		if len(uncolored) == 0 {
			sub.Body = substBody(sub.Body, colors)
			logrus.WithFields(logrus.Fields{
				"subroutine": sub.QualifiedName(),
				"registers":  len(colors),
				"rounds":     round + 1,
			}).Debug("regalloc: assignment complete")
			return
		}
		logrus.WithFields(logrus.Fields{
			"subroutine": sub.QualifiedName(),
			"spilling":   len(uncolored),
			"round":      round + 1,
		}).Debug("regalloc: colouring exceeded K, spilling and retrying")
		spill.Promote(sub, liveness.NewSet(uncolored...), names)
	}
}

func substBody(body []ir.Stmt, colors map[*ir.Local]int) []ir.Stmt {
	out := make([]ir.Stmt, len(body))
	for i, st := range body {
		out[i] = substStmt(st, colors)
	}
	return out
}

func substStmt(st ir.Stmt, colors map[*ir.Local]int) ir.Stmt {
	switch v := st.(type) {
	case *ir.Eval:
		return &ir.Eval{Dest: substVal(v.Dest, colors), Expr: substExpr(v.Expr, colors)}
	case *ir.Store:
		return &ir.Store{Loc: v.Loc, Value: substVal(v.Value, colors)}
	case *ir.IndirectWrite:
		return &ir.IndirectWrite{Addr: substVal(v.Addr, colors), Value: substVal(v.Value, colors)}
	case *ir.Push:
		return &ir.Push{Expr: substExpr(v.Expr, colors)}
	case *ir.Return:
		return &ir.Return{Expr: substExpr(v.Expr, colors)}
	case *ir.Discard:
		return st
	case *ir.If:
		var els []ir.Stmt
		if v.Else != nil {
			els = substBody(v.Else, colors)
		}
		return &ir.If{Value: substVal(v.Value, colors), Cmp: v.Cmp, Then: substBody(v.Then, colors), Else: els}
	case *ir.While:
		return &ir.While{
			Test:  substBody(v.Test, colors),
			Value: substVal(v.Value, colors),
			Cmp:   v.Cmp,
			Body:  substBody(v.Body, colors),
		}
	default:
		panic(ierr.Fatalf("", "regalloc.substStmt", "unhandled statement kind %T", st))
	}
}

func substExpr(e ir.Expr, colors map[*ir.Local]int) ir.Expr {
	switch v := e.(type) {
	case *ir.Local:
		return substVal(v, colors)
	case *ir.Const, *ir.Reg:
		return e
	case *ir.Binary:
		return ir.NewBinary(substVal(v.Left, colors), v.Op, substVal(v.Right, colors))
	case *ir.Unary:
		return ir.NewUnary(v.Op, substVal(v.Operand, colors))
	case *ir.IndirectRead:
		return ir.NewIndirectRead(substVal(v.Addr, colors))
	case *ir.CallSub, *ir.Location:
		return e
	default:
		panic(ierr.Fatalf("", "regalloc.substExpr", "unhandled expr kind %T", e))
	}
}

func substVal(v ir.Value, colors map[*ir.Local]int) ir.Value {
	if l, ok := v.(*ir.Local); ok {
		if c, ok := colors[l]; ok {
			return ir.NewReg(c, l.Name)
		}
	}
	return v
}
