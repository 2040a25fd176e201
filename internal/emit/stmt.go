package emit

import (
	"jackc/internal/hackasm"
	"jackc/internal/ir"
	"jackc/internal/util"
)

// emitPush evaluates Expr and pushes it onto the stack, setting up one call argument.
func (e *Emitter) emitPush(w *util.Writer, st *ir.Push) {
	e.emitExprToD(w, st.Expr)
	w.Write("@SP")
	w.Write("AM=M+1")
	w.Write("A=A-1")
	w.Write("M=D")
}

// emitReturn evaluates Expr, leaves it in hackasm.Result for the caller to pick up, and jumps into
// the shared return glue. Nothing is pushed onto the stack for the result — this convention passes
// it through a register instead.
func (e *Emitter) emitReturn(w *util.Writer, st *ir.Return) {
	e.emitExprToD(w, st.Expr)
	w.Write("@%s", hackasm.RegSym(hackasm.Result))
	w.Write("M=D")
	w.Write("@__return")
	w.Write("0;JMP")
}

// emitDiscard evaluates a call purely for its side effects; the result register is left
// overwritten and unread.
func (e *Emitter) emitDiscard(w *util.Writer, st *ir.Discard) {
	e.emitCallSite(w, st.Call)
}
