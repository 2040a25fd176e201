package emit

import (
	"jackc/internal/hackasm"
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/util"
)

// loadToD emits the instructions that leave v's value in the D register.
func (e *Emitter) loadToD(w *util.Writer, v ir.Value) {
	switch val := v.(type) {
	case *ir.Const:
		emitLoadConstToD(w, val.V)
	case *ir.Reg:
		w.Write("@%s", hackasm.RegName(val.Index))
		w.Write("D=M")
	default:
		panic(ierr.Fatalf("", "emit.loadToD", "operand %T reached emission unallocated", v))
	}
}

// emitLoadConstToD loads a signed immediate into D. -1, 0, and 1 are single comp-only
// instructions on this ALU; any other negative value is built by negating its magnitude, since
// the @ address instruction only accepts a non-negative literal.
func emitLoadConstToD(w *util.Writer, v int16) {
	switch v {
	case 0:
		w.Write("D=0")
		return
	case 1:
		w.Write("D=1")
		return
	case -1:
		w.Write("D=-1")
		return
	}
	if v < 0 {
		w.Write("@%s", hackasm.ItoA(int(-v)))
		w.Write("D=A")
		w.Write("D=-D")
		return
	}
	w.Write("@%s", hackasm.ItoA(int(v)))
	w.Write("D=A")
}

// addressable reports whether v can be addressed directly by a single "@..." instruction: a Reg
// always can (its pseudo-register number), a Const can only if it is non-negative.
func addressable(v ir.Value) bool {
	switch val := v.(type) {
	case *ir.Reg:
		return true
	case *ir.Const:
		return val.V >= 0
	default:
		return false
	}
}

// address emits the "@..." instruction that points A at v (a Reg's memory cell, or a non-negative
// Const's numeric value) and returns the comp-table operand letter to read it with: "M" for a Reg,
// "A" for a Const.
func address(w *util.Writer, v ir.Value) string {
	switch val := v.(type) {
	case *ir.Reg:
		w.Write("@%s", hackasm.RegName(val.Index))
		return "M"
	case *ir.Const:
		w.Write("@%s", hackasm.ItoA(int(val.V)))
		return "A"
	default:
		panic(ierr.Fatalf("", "emit.address", "value %T is not addressable", v))
	}
}

// emitExprToD computes any legal Eval/Push/Return right-hand side into D.
func (e *Emitter) emitExprToD(w *util.Writer, expr ir.Expr) {
	switch v := expr.(type) {
	case *ir.Const:
		e.loadToD(w, v)
	case *ir.Reg:
		e.loadToD(w, v)
	case *ir.Binary:
		e.emitBinaryToD(w, v.Left, v.Op, v.Right)
	case *ir.Unary:
		e.emitUnaryToD(w, v.Op, v.Operand)
	case *ir.IndirectRead:
		e.emitIndirectReadToD(w, v.Addr)
	case *ir.Location:
		e.emitLoadLocationToD(w, v)
	case *ir.CallSub:
		e.emitCallSite(w, v)
		w.Write("@%s", hackasm.RegSym(hackasm.Result))
		w.Write("D=M")
	default:
		panic(ierr.Fatalf("", "emit.emitExprToD", "unhandled expr kind %T", expr))
	}
}

func (e *Emitter) emitUnaryToD(w *util.Writer, op ir.UnaryOp, operand ir.Value) {
	e.loadToD(w, operand)
	if op == ir.OpNeg {
		w.Write("D=-D")
	} else {
		w.Write("D=!D")
	}
}
