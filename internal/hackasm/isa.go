// Package hackasm names the fixed facts about the target 16-bit machine the Emitter generates
// code for: its pseudo-register layout, segment-pointer convention, and call/return frame shape.
// The register table follows the Hack platform's own conventions (SP/LCL/ARG/THIS/THAT in
// R0..R4, general pseudo-registers R5..R15); the call-frame layout (save order, ARG = SP - nargs
// - 5, bootstrap SP=256) follows the standard Hack VM-to-assembly calling convention.
package hackasm

// Segment pointers live in the first five pseudo-registers.
const (
	SP = iota
	LCL
	ARG
	THIS
	THAT
)

// GeneralBase is the first pseudo-register of the eight-register general/temp file the register
// allocator colours into (R5..R12). Result lives at R13 rather than reusing a slot inside that
// file, R14 (CallLinkReg) is reserved for the return address the shared return glue jumps back
// through, and R15 is reserved for
// segment-indexed address arithmetic (AddrScratchReg) that the Emitter needs when a
// Store/IndirectWrite target isn't the base of its segment.
const (
	GeneralBase  = 5
	GeneralCount = 8
	Result       = 13
	CallLinkReg  = 14
	AddrScratchReg = 15
)

// RegSym returns the symbolic pseudo-register name for an absolute register number (e.g.
// RegSym(Result) == "R13"), as opposed to RegName, which offsets a colour index into the general
// file.
func RegSym(n int) string { return "R" + ItoA(n) }

// CallTargetReg and CallNArgsReg borrow the top two slots of the general register file as scratch
// for the shared call glue (target subroutine address, argument count) — safe because a call
// clobbers every general register under the caller-saved convention, which is also why a Local
// live across a call must be spilled rather than left in a register. During return, CallFrameReg
// is reused to walk the saved frame back to front.
const (
	CallTargetReg = GeneralBase + GeneralCount - 2 // R11
	CallNArgsReg  = GeneralBase + GeneralCount - 1 // R12
	CallFrameReg  = CallTargetReg                  // reused once the target has been jumped to
)

// RegName returns the pseudo-register name (e.g. "R5") a colour index maps to.
func RegName(colourIndex int) string {
	return "R" + ItoA(colourIndex+GeneralBase)
}

// FrameSaveSize is the number of words a call frame saves before the callee's arguments: the
// return address plus LCL, ARG, THIS, THAT, in that push order.
const FrameSaveSize = 5

// StackBase is the stack pointer's value at program start, before Sys.init is called.
const StackBase = 256

// Screen and keyboard base addresses, carried for completeness even though driving the actual
// keyboard/display loop is out of scope — any Jack program this compiler accepts is still free to
// read/write them as ordinary memory addresses via Memory.peek/poke, so the Emitter must not
// reserve or special-case these addresses away.
const (
	ScreenBase   = 16384
	KeyboardAddr = 24576
)
