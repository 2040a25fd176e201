package emit

import (
	"jackc/internal/hackasm"
	"jackc/internal/ir"
	"jackc/internal/util"
)

// emitCallSite stashes the three call-glue inputs (return label, argument count, callee address)
// into their scratch registers and jumps into the shared (__call) routine, landing back at a
// fresh return label immediately after. Every call in the program, including the bootstrap's call
// to Sys.init, goes through this one routine.
func (e *Emitter) emitCallSite(w *util.Writer, call *ir.CallSub) {
	ret := e.newLabel("RET")
	w.Write("@%s", ret)
	w.Write("D=A")
	w.Write("@%s", hackasm.RegSym(hackasm.CallLinkReg))
	w.Write("M=D")
	w.Write("@%s", hackasm.ItoA(call.NArgs))
	w.Write("D=A")
	w.Write("@%s", hackasm.RegSym(hackasm.CallNArgsReg))
	w.Write("M=D")
	w.Write("@%s.%s", call.Class, call.Name)
	w.Write("D=A")
	w.Write("@%s", hackasm.RegSym(hackasm.CallTargetReg))
	w.Write("M=D")
	w.Write("@__call")
	w.Write("0;JMP")
	w.Write("(%s)", ret)
}

// emitCallGlue renders the two shared routines every call site and every return statement jumps
// into: (__call) builds the new frame and transfers control, (__return) tears the frame back down
// and hands control back to the caller. No slot for a stack-resident return value is reserved;
// this convention passes results through hackasm.Result instead.
func (e *Emitter) emitCallGlue(w *util.Writer) {
	w.Write("(__call)")
	pushSymbol(w, hackasm.RegSym(hackasm.CallLinkReg))
	pushSymbol(w, "LCL")
	pushSymbol(w, "ARG")
	pushSymbol(w, "THIS")
	pushSymbol(w, "THAT")
	w.Write("@SP")
	w.Write("D=M")
	w.Write("@%s", hackasm.ItoA(hackasm.FrameSaveSize))
	w.Write("D=D-A")
	w.Write("@%s", hackasm.RegSym(hackasm.CallNArgsReg))
	w.Write("D=D-M")
	w.Write("@ARG")
	w.Write("M=D")
	w.Write("@SP")
	w.Write("D=M")
	w.Write("@LCL")
	w.Write("M=D")
	w.Write("@%s", hackasm.RegSym(hackasm.CallTargetReg))
	w.Write("A=M")
	w.Write("0;JMP")

	w.Write("(__return)")
	w.Write("@LCL")
	w.Write("D=M")
	w.Write("@%s", hackasm.RegSym(hackasm.CallFrameReg))
	w.Write("M=D")
	w.Write("@%s", hackasm.ItoA(hackasm.FrameSaveSize))
	w.Write("A=D-A")
	w.Write("D=M")
	w.Write("@%s", hackasm.RegSym(hackasm.CallLinkReg))
	w.Write("M=D")
	// SP drops back to the callee's ARG (where its arguments began) before ARG itself is restored.
	w.Write("@ARG")
	w.Write("D=M")
	w.Write("@SP")
	w.Write("M=D")
	popSeg(w, "THAT", 1)
	popSeg(w, "THIS", 2)
	popSeg(w, "ARG", 3)
	popSeg(w, "LCL", 4)
	w.Write("@%s", hackasm.RegSym(hackasm.CallLinkReg))
	w.Write("A=M")
	w.Write("0;JMP")
}

// pushSymbol pushes the current value held at a named pseudo-register onto the stack.
func pushSymbol(w *util.Writer, symbol string) {
	w.Write("@%s", symbol)
	w.Write("D=M")
	w.Write("@SP")
	w.Write("AM=M+1")
	w.Write("A=A-1")
	w.Write("M=D")
}

// popSeg restores segment pointer symbol from offset words below the saved frame base
// (hackasm.CallFrameReg), walking the frame back to front in the order it was pushed.
func popSeg(w *util.Writer, symbol string, offset int) {
	w.Write("@%s", hackasm.RegSym(hackasm.CallFrameReg))
	w.Write("D=M")
	w.Write("@%s", hackasm.ItoA(offset))
	w.Write("A=D-A")
	w.Write("D=M")
	w.Write("@%s", symbol)
	w.Write("M=D")
}
