package emit

import (
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/util"
)

// emitIf fuses the test into a single compare-and-branch on the negated comparator: compute Value
// into D once, then branch directly past Then (or into Else) rather than negating into a separate
// boolean first.
func (e *Emitter) emitIf(w *util.Writer, st *ir.If) {
	e.loadToD(w, st.Value)
	if st.Else == nil {
		end := e.newLabel("IFEND")
		w.Write("@%s", end)
		w.Write("D;%s", jumpMnemonic(st.Cmp.Negate()))
		e.emitBody(w, st.Then)
		w.Write("(%s)", end)
		return
	}
	elseLabel := e.newLabel("IFELSE")
	end := e.newLabel("IFEND")
	w.Write("@%s", elseLabel)
	w.Write("D;%s", jumpMnemonic(st.Cmp.Negate()))
	e.emitBody(w, st.Then)
	w.Write("@%s", end)
	w.Write("0;JMP")
	w.Write("(%s)", elseLabel)
	e.emitBody(w, st.Else)
	w.Write("(%s)", end)
}

// emitWhile recomputes Test at the top of every pass (including the first), since unlike If's
// Value — flattened once into the statements immediately preceding it — a loop's condition must be
// re-evaluated each iteration.
func (e *Emitter) emitWhile(w *util.Writer, st *ir.While) {
	top := e.newLabel("WTOP")
	end := e.newLabel("WEND")
	w.Write("(%s)", top)
	e.emitBody(w, st.Test)
	e.loadToD(w, st.Value)
	w.Write("@%s", end)
	w.Write("D;%s", jumpMnemonic(st.Cmp.Negate()))
	e.emitBody(w, st.Body)
	w.Write("@%s", top)
	w.Write("0;JMP")
	w.Write("(%s)", end)
}

// jumpMnemonic maps a comparator to the Hack jump mnemonic that tests "D <cmp> 0".
func jumpMnemonic(cmp ir.Cmp) string {
	switch cmp {
	case ir.CmpEq:
		return "JEQ"
	case ir.CmpNe:
		return "JNE"
	case ir.CmpLt:
		return "JLT"
	case ir.CmpGt:
		return "JGT"
	case ir.CmpLe:
		return "JLE"
	case ir.CmpGe:
		return "JGE"
	default:
		panic(ierr.Fatalf("", "emit.jumpMnemonic", "unhandled comparator %v", cmp))
	}
}
