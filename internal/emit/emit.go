// Package emit translates a fully allocated ir.Class into Hack assembly text. It is the final
// pipeline stage: every Subroutine it receives must already have had internal/regalloc.Assign run
// to completion, so no *ir.Local survives anywhere in a body — only Const, Reg, and Location
// values remain.
//
// Calls all go through one shared glue routine instead of inline branch-and-link, since the Hack
// ALU has no call/return instructions of its own. The peephole shape here — recognizing immediate
// forms, in-place updates, and fused compare-and-branch — picks a cheaper instruction sequence
// whenever a comparison's or binary operation's operands are already known at emit time.
package emit

import (
	"jackc/internal/hackasm"
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/util"
)

// Emitter renders one compiled program (a sequence of Classes) into assembly text.
type Emitter struct {
	names    *util.NameGen // label generator ("L1", "L2", ...), scoped to one Emitter/program.
	curClass string        // the class currently being emitted, needed to qualify static labels.
}

// New returns an Emitter ready to render a whole program.
func New() *Emitter {
	return &Emitter{names: util.NewNameGen("L")}
}

// EmitProgram renders the bootstrap sequence, the shared call/return glue, and every class's
// subroutines, in order, and returns the complete assembly text.
func (e *Emitter) EmitProgram(classes []*ir.Class) string {
	w := util.NewWriter()
	e.emitBootstrap(w)
	e.emitCallGlue(w)
	for _, c := range classes {
		for _, sub := range c.Subroutines {
			e.EmitSubroutine(w, sub)
		}
	}
	return w.String()
}

// EmitSubroutine renders one Subroutine's label, local-slot zeroing, and body.
func (e *Emitter) EmitSubroutine(w *util.Writer, sub *ir.Subroutine) {
	e.curClass = sub.ClassName
	w.Label(sub.QualifiedName())
	e.emitLocalZeroing(w, sub)
	e.emitBody(w, sub.Body)
}

func (e *Emitter) emitLocalZeroing(w *util.Writer, sub *ir.Subroutine) {
	if sub.NumLocalSlots == 0 {
		return
	}
	loop := e.newLabel("ZERO")
	done := e.newLabel("ZEND")
	w.Write("@%s", hackasm.ItoA(sub.NumLocalSlots))
	w.Write("D=A")
	w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
	w.Write("M=D")
	w.Write("(%s)", loop)
	w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
	w.Write("D=M")
	w.Write("@%s", done)
	w.Write("D;JEQ")
	w.Write("@SP")
	w.Write("AM=M+1")
	w.Write("A=A-1")
	w.Write("M=0")
	w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
	w.Write("M=M-1")
	w.Write("@%s", loop)
	w.Write("0;JMP")
	w.Write("(%s)", done)
}

func (e *Emitter) emitBootstrap(w *util.Writer) {
	w.Comment("bootstrap: SP = %s, then call Sys.init", hackasm.ItoA(hackasm.StackBase))
	w.Write("@%s", hackasm.ItoA(hackasm.StackBase))
	w.Write("D=A")
	w.Write("@SP")
	w.Write("M=D")
	e.emitCallSite(w, ir.NewCallSub("Sys", "init", 0))
	w.Write("(__halt)")
	w.Write("@__halt")
	w.Write("0;JMP")
}

func (e *Emitter) newLabel(prefix string) string {
	return prefix + "_" + e.names.Next()
}

func (e *Emitter) emitBody(w *util.Writer, body []ir.Stmt) {
	for _, st := range body {
		e.emitStmt(w, st)
	}
}

func (e *Emitter) emitStmt(w *util.Writer, st ir.Stmt) {
	switch v := st.(type) {
	case *ir.Eval:
		e.emitEval(w, v)
	case *ir.Store:
		e.emitStore(w, v)
	case *ir.IndirectWrite:
		e.emitIndirectWrite(w, v)
	case *ir.If:
		e.emitIf(w, v)
	case *ir.While:
		e.emitWhile(w, v)
	case *ir.Return:
		e.emitReturn(w, v)
	case *ir.Push:
		e.emitPush(w, v)
	case *ir.Discard:
		e.emitDiscard(w, v)
	default:
		panic(ierr.Fatalf("", "emit.emitStmt", "unhandled statement kind %T", st))
	}
}
