// Package ir defines the flattened intermediate representation: Values (Const, Local, Reg), the
// richer Expr forms built from them, the statement forms that consume them, and the
// Subroutine/Class containers. A Value interface is implemented by small node structs, each
// carrying just enough state to print and be walked. The IR itself is structured If/While instead
// of basic blocks with branch terminators, because liveness analysis and the interference builder
// are defined recursively over structured statement lists, not over a block-and-edge control flow
// graph.
package ir

import "fmt"

// ValueKind distinguishes the three node kinds that are allowed to appear as an operand anywhere
// in the IR: Const, Local, or Reg.
type ValueKind int

const (
	ConstKind ValueKind = iota
	LocalKind
	RegKind
)

var valueKindNames = [...]string{"Const", "Local", "Reg"}

func (k ValueKind) String() string {
	if int(k) < 0 || int(k) >= len(valueKindNames) {
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
	return valueKindNames[k]
}

// Value is any IR node legal as an operand: an immediate, an unallocated temporary, or a
// register-bound temporary. Value extends Expr so a bare value can stand directly as the RHS of
// Eval/Push/Return/Discard without a wrapper node; isValue marks it usable as the *only* legal
// operand shape in stricter positions (Binary/Unary operands, If/While test values, Store's
// value, CallSub's implicit argument slots).
type Value interface {
	Expr
	ValueKind() ValueKind
	isValue()
}

// Const is a signed 16-bit immediate integer literal.
type Const struct {
	V int16
}

func NewConst(v int16) *Const { return &Const{V: v} }

func (c *Const) ValueKind() ValueKind { return ConstKind }
func (c *Const) ExprKind() ExprKind   { return ValueExprKind }
func (c *Const) String() string      { return fmt.Sprintf("%d", c.V) }
func (c *Const) isValue()            {}

// Local is an unallocated compiler temporary, scoped to one subroutine. Two Locals are the same
// variable iff they are the same pointer — the Flattener hands out one *Local per fresh name and
// every later stage threads that pointer through, rather than comparing by Name, so that
// liveness/interference/promotion can use pointer identity as the variable key.
type Local struct {
	Name string
}

func NewLocal(name string) *Local { return &Local{Name: name} }

func (l *Local) ValueKind() ValueKind { return LocalKind }
func (l *Local) ExprKind() ExprKind   { return ValueExprKind }
func (l *Local) String() string      { return l.Name }
func (l *Local) isValue()            {}

// Reg is a Local that has been bound to one of the machine's K general registers by the colourer.
// After regalloc.Assign (or AssignK) runs, no Local survives anywhere in a Subroutine's body — every former
// Local is either a Reg or has been materialized through a stack Location.
type Reg struct {
	Index int
	Name  string // retained for diagnostics/printing; traces back to the Local it replaced.
}

func NewReg(index int, name string) *Reg { return &Reg{Index: index, Name: name} }

func (r *Reg) ValueKind() ValueKind { return RegKind }
func (r *Reg) ExprKind() ExprKind   { return ValueExprKind }
func (r *Reg) String() string      { return fmt.Sprintf("R%d<%s>", r.Index, r.Name) }
func (r *Reg) isValue()            {}
