package difftest

import (
	"fmt"

	"jackc/internal/ir"
)

// irMachine interprets one fully compiled ir.Subroutine (post Flatten, spill/promote, and
// AssignK — no *ir.Local survives anywhere in its body). It is a software stand-in for the Hack
// CPU the Emitter's output would otherwise require a chip simulator to run, modeling just enough
// of the calling convention — argument slots, local slots, the general register file, and the
// Push/CallSub operand stack — to execute the statement forms the fragment grammar can produce.
type irMachine struct {
	args   []int16
	locals []int16
	regs   map[int]int16
	stack  []int16
}

func newIRMachine(args []int16, numLocals int) *irMachine {
	return &irMachine{args: args, locals: make([]int16, numLocals), regs: map[int]int16{}}
}

// EvalIR runs sub with the given argument values and returns its result.
func EvalIR(sub *ir.Subroutine, args []int16) int16 {
	m := newIRMachine(args, sub.NumLocalSlots)
	v, signalled := m.execStmts(sub.Body)
	if !signalled {
		return 0
	}
	return v
}

func (m *irMachine) execStmts(body []ir.Stmt) (int16, bool) {
	for _, st := range body {
		if v, ok := m.execStmt(st); ok {
			return v, true
		}
	}
	return 0, false
}

func (m *irMachine) execStmt(st ir.Stmt) (int16, bool) {
	switch v := st.(type) {
	case *ir.Eval:
		m.store(v.Dest, m.evalExpr(v.Expr))
		return 0, false
	case *ir.Store:
		m.storeLocation(v.Loc, m.evalValue(v.Value))
		return 0, false
	case *ir.IndirectWrite:
		panic("difftest: EvalIR does not model heap memory")
	case *ir.If:
		if m.cmp(m.evalValue(v.Value), v.Cmp) {
			return m.execStmts(v.Then)
		}
		return m.execStmts(v.Else)
	case *ir.While:
		for {
			m.execStmts(v.Test)
			if !m.cmp(m.evalValue(v.Value), v.Cmp) {
				return 0, false
			}
			if r, ok := m.execStmts(v.Body); ok {
				return r, true
			}
		}
	case *ir.Return:
		return m.evalExpr(v.Expr), true
	case *ir.Push:
		m.stack = append(m.stack, m.evalExpr(v.Expr))
		return 0, false
	case *ir.Discard:
		m.callSub(v.Call)
		return 0, false
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot execute statement kind %T", st))
	}
}

func (m *irMachine) evalExpr(e ir.Expr) int16 {
	switch v := e.(type) {
	case ir.Value:
		return m.evalValue(v)
	case *ir.Binary:
		l, r := m.evalValue(v.Left), m.evalValue(v.Right)
		switch v.Op {
		case ir.OpAdd:
			return l + r
		case ir.OpSub:
			return l - r
		case ir.OpAnd:
			return l & r
		case ir.OpOr:
			return l | r
		default:
			panic(fmt.Sprintf("difftest: EvalIR cannot evaluate arith op %v", v.Op))
		}
	case *ir.Unary:
		o := m.evalValue(v.Operand)
		switch v.Op {
		case ir.OpNeg:
			return -o
		case ir.OpNot:
			return ^o
		default:
			panic(fmt.Sprintf("difftest: EvalIR cannot evaluate unary op %v", v.Op))
		}
	case *ir.IndirectRead:
		panic("difftest: EvalIR does not model heap memory")
	case *ir.CallSub:
		return m.callSub(v)
	case *ir.Location:
		return m.loadLocation(v)
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot evaluate expression kind %T", e))
	}
}

func (m *irMachine) evalValue(v ir.Value) int16 {
	switch vv := v.(type) {
	case *ir.Const:
		return vv.V
	case *ir.Reg:
		return m.regs[vv.Index]
	case *ir.Local:
		panic("difftest: EvalIR saw an unallocated Local; AssignK did not run to completion")
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot read value kind %T", v))
	}
}

func (m *irMachine) store(dest ir.Value, val int16) {
	switch d := dest.(type) {
	case *ir.Reg:
		m.regs[d.Index] = val
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot store into destination kind %T", dest))
	}
}

func (m *irMachine) storeLocation(loc *ir.Location, val int16) {
	switch loc.Kind {
	case ir.ArgLoc:
		m.args[loc.Index] = val
	case ir.LocalLoc:
		m.locals[loc.Index] = val
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot store to location kind %v", loc.Kind))
	}
}

func (m *irMachine) loadLocation(loc *ir.Location) int16 {
	switch loc.Kind {
	case ir.ArgLoc:
		return m.args[loc.Index]
	case ir.LocalLoc:
		return m.locals[loc.Index]
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot read location kind %v", loc.Kind))
	}
}

// callSub only understands Math.multiply/divide, popping its two pushed operands off the operand
// stack — a stand-in for the real VM call glue, which this package does not execute.
func (m *irMachine) callSub(call *ir.CallSub) int16 {
	if call.Class != "Math" || call.NArgs != 2 {
		panic(fmt.Sprintf("difftest: EvalIR cannot evaluate call %s.%s", call.Class, call.Name))
	}
	n := len(m.stack)
	b, a := m.stack[n-1], m.stack[n-2]
	m.stack = m.stack[:n-2]
	switch call.Name {
	case "multiply":
		return a * b
	case "divide":
		return a / b
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot evaluate call %s.%s", call.Class, call.Name))
	}
}

func (m *irMachine) cmp(v int16, c ir.Cmp) bool {
	switch c {
	case ir.CmpEq:
		return v == 0
	case ir.CmpNe:
		return v != 0
	case ir.CmpLt:
		return v < 0
	case ir.CmpGt:
		return v > 0
	case ir.CmpLe:
		return v <= 0
	case ir.CmpGe:
		return v >= 0
	default:
		panic(fmt.Sprintf("difftest: EvalIR cannot evaluate comparator %v", c))
	}
}
