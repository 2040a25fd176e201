package emit

import (
	"jackc/internal/hackasm"
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/util"
)

// segmentBase returns the symbolic pseudo-register an argument or local Location is relative to.
// Static locations have no base register — they address a class-qualified symbol directly — so
// they are handled by their own callers rather than going through this helper.
func segmentBase(kind ir.LocKind) string {
	switch kind {
	case ir.ArgLoc:
		return "ARG"
	case ir.LocalLoc:
		return "LCL"
	default:
		panic(ierr.Fatalf("", "emit.segmentBase", "location kind %v has no register base", kind))
	}
}

// emitLoadLocationToD reads a Location's value into D. Index zero is the common case (the first
// argument or local of a subroutine) and skips the add entirely — the base register already
// points straight at it.
func (e *Emitter) emitLoadLocationToD(w *util.Writer, loc *ir.Location) {
	switch loc.Kind {
	case ir.StaticLoc:
		w.Write("@%s.static%s", e.curClass, hackasm.ItoA(loc.Index))
		w.Write("D=M")
	case ir.ArgLoc, ir.LocalLoc:
		base := segmentBase(loc.Kind)
		if loc.Index == 0 {
			w.Write("@%s", base)
			w.Write("A=M")
			w.Write("D=M")
			return
		}
		w.Write("@%s", base)
		w.Write("D=M")
		w.Write("@%s", hackasm.ItoA(loc.Index))
		w.Write("A=D+A")
		w.Write("D=M")
	default:
		panic(ierr.Fatalf("", "emit.emitLoadLocationToD", "unhandled location kind %v", loc.Kind))
	}
}

// emitStore writes Value into Loc. A non-zero argument/local index needs its address computed
// before the value can be loaded, and loading the value clobbers A (and would clobber D too, for a
// computed operand) — so the address is staged through AddrScratchReg first and re-fetched after
// the value lands in D, rather than trying to hold both in registers at once.
func (e *Emitter) emitStore(w *util.Writer, st *ir.Store) {
	switch st.Loc.Kind {
	case ir.StaticLoc:
		e.loadToD(w, st.Value)
		w.Write("@%s.static%s", e.curClass, hackasm.ItoA(st.Loc.Index))
		w.Write("M=D")
	case ir.ArgLoc, ir.LocalLoc:
		base := segmentBase(st.Loc.Kind)
		if st.Loc.Index == 0 {
			e.loadToD(w, st.Value)
			w.Write("@%s", base)
			w.Write("A=M")
			w.Write("M=D")
			return
		}
		w.Write("@%s", base)
		w.Write("D=M")
		w.Write("@%s", hackasm.ItoA(st.Loc.Index))
		w.Write("D=D+A")
		w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
		w.Write("M=D")
		e.loadToD(w, st.Value)
		w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
		w.Write("A=M")
		w.Write("M=D")
	default:
		panic(ierr.Fatalf("", "emit.emitStore", "unhandled location kind %v", st.Loc.Kind))
	}
}

// emitIndirectWrite stores Value at the address Addr evaluates to (an array element or field, the
// address itself already computed elsewhere into a Reg or small Const offset). The same staging
// trick as emitStore's non-zero case applies: the address is parked in AddrScratchReg before the
// value is loaded, since loading the value can itself clobber A.
func (e *Emitter) emitIndirectWrite(w *util.Writer, st *ir.IndirectWrite) {
	e.loadToD(w, st.Addr)
	w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
	w.Write("M=D")
	e.loadToD(w, st.Value)
	w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
	w.Write("A=M")
	w.Write("M=D")
}

// emitIndirectReadToD dereferences addr into D. No intervening instruction touches D between
// stashing the address and reading through it, so — unlike emitIndirectWrite — AddrScratchReg only
// needs to be addressed once.
func (e *Emitter) emitIndirectReadToD(w *util.Writer, addr ir.Value) {
	e.loadToD(w, addr)
	w.Write("@%s", hackasm.RegSym(hackasm.AddrScratchReg))
	w.Write("M=D")
	w.Write("A=M")
	w.Write("D=M")
}
