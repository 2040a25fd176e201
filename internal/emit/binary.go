package emit

import (
	"jackc/internal/hackasm"
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/util"
)

// emitBinaryToD computes left <op> right into D. Jack's '*' and '/' never reach here — the
// Flattener lowers them to Math.multiply/Math.divide calls, so op is always one
// the ALU computes directly. By the time IR reaches the Emitter, a Binary never has two Const
// operands (the Flattener folds those at flatten time), so at most one side needs the
// negative-constant workaround below.
func (e *Emitter) emitBinaryToD(w *util.Writer, left ir.Value, op ir.ArithOp, right ir.Value) {
	if emitUnitDeltaToD(w, e, left, op, right) {
		return
	}
	if addressable(right) {
		e.loadToD(w, left)
		suffix := address(w, right)
		w.Write("D=D%s%s", op, suffix)
		return
	}
	if !addressable(left) {
		panic(ierr.Fatalf("", "emit.emitBinaryToD",
			"neither operand of %s is addressable; the flattener should have folded this", op))
	}
	e.loadToD(w, right)
	suffix := address(w, left)
	if op == ir.OpSub {
		w.Write("D=%s-D", suffix)
	} else {
		w.Write("D=D%s%s", op, suffix)
	}
}

// emitUnitDeltaToD handles left +/- 1 as a single increment/decrement, the cheapest form the ALU
// offers.
func emitUnitDeltaToD(w *util.Writer, e *Emitter, left ir.Value, op ir.ArithOp, right ir.Value) bool {
	rc, ok := right.(*ir.Const)
	if !ok {
		return false
	}
	delta, ok := unitDelta(op, rc.V, true)
	if !ok {
		return false
	}
	e.loadToD(w, left)
	if delta == 1 {
		w.Write("D=D+1")
	} else {
		w.Write("D=D-1")
	}
	return true
}

// unitDelta reports whether applying op with constant c against an operand at destOnLeft's
// position reduces to a +1/-1 step, and if so, which.
func unitDelta(op ir.ArithOp, c int16, destOnLeft bool) (int, bool) {
	if op == ir.OpAdd {
		switch c {
		case 1:
			return 1, true
		case -1:
			return -1, true
		}
		return 0, false
	}
	if op == ir.OpSub && destOnLeft {
		switch c {
		case 1:
			return -1, true
		case -1:
			return 1, true
		}
	}
	return 0, false
}

// emitEval renders an Eval statement, taking the in-place register update path when the
// destination register is itself one of the Binary's operands.
func (e *Emitter) emitEval(w *util.Writer, st *ir.Eval) {
	if destReg, ok := st.Dest.(*ir.Reg); ok {
		if e.emitInPlace(w, destReg, st.Expr) {
			return
		}
		e.emitExprToD(w, st.Expr)
		w.Write("@%s", hackasm.RegName(destReg.Index))
		w.Write("M=D")
		return
	}
	panic(ierr.Fatalf("", "emit.emitEval", "destination %T reached emission unallocated", st.Dest))
}

// emitInPlace recognizes dest = dest <op> other (or, for commutative ops, other <op> dest) and
// updates dest's register cell directly instead of roundtripping the result through D and a
// separate store.
func (e *Emitter) emitInPlace(w *util.Writer, dest *ir.Reg, expr ir.Expr) bool {
	b, ok := expr.(*ir.Binary)
	if !ok {
		return false
	}
	other, destOnLeft, ok := inPlaceOperand(dest, b)
	if !ok {
		return false
	}
	if c, isConst := other.(*ir.Const); isConst {
		if delta, isDelta := unitDelta(b.Op, c.V, destOnLeft); isDelta {
			w.Write("@%s", hackasm.RegName(dest.Index))
			if delta == 1 {
				w.Write("M=M+1")
			} else {
				w.Write("M=M-1")
			}
			return true
		}
	}
	e.loadToD(w, other)
	w.Write("@%s", hackasm.RegName(dest.Index))
	w.Write("M=M%sD", b.Op)
	return true
}

// inPlaceOperand reports whether dest is one of b's two operands (by register index), returning
// the other operand. Subtraction is not commutative, so dest must be the left operand for OpSub.
func inPlaceOperand(dest *ir.Reg, b *ir.Binary) (other ir.Value, destOnLeft bool, ok bool) {
	if lr, isReg := b.Left.(*ir.Reg); isReg && lr.Index == dest.Index {
		return b.Right, true, true
	}
	if b.Op == ir.OpSub {
		return nil, false, false
	}
	if rr, isReg := b.Right.(*ir.Reg); isReg && rr.Index == dest.Index {
		return b.Left, false, true
	}
	return nil, false, false
}
