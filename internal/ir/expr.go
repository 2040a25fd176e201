package ir

import "fmt"

// ExprKind tags every legal RHS shape for Eval/Push/Return/Discard: Binary, Unary, IndirectRead,
// CallSub, Location, plus the trivial wrapping of a bare Value.
type ExprKind int

const (
	ValueExprKind ExprKind = iota
	BinaryExprKind
	UnaryExprKind
	IndirectReadExprKind
	CallSubExprKind
	LocationExprKind
)

var exprKindNames = [...]string{"Value", "Binary", "Unary", "IndirectRead", "CallSub", "Location"}

func (k ExprKind) String() string {
	if int(k) < 0 || int(k) >= len(exprKindNames) {
		return fmt.Sprintf("ExprKind(%d)", int(k))
	}
	return exprKindNames[k]
}

// Expr is any IR node legal as the right-hand side of Eval, Push, Return, or Discard. Passes that
// consume an Expr dispatch with a type switch on its concrete type.
type Expr interface {
	ExprKind() ExprKind
	String() string
}

// ArithOp enumerates the binary/unary arithmetic and bitwise operators the IR can carry directly.
// Jack's '*' and '/' are never represented here: flattening lowers them to Math.multiply/
// Math.divide CallSub expressions, so ArithOp only needs the operators the target machine's ALU
// computes in one instruction.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpAnd
	OpOr
)

var arithOpNames = [...]string{"+", "-", "&", "|"}

func (o ArithOp) String() string {
	if int(o) < 0 || int(o) >= len(arithOpNames) {
		return fmt.Sprintf("ArithOp(%d)", int(o))
	}
	return arithOpNames[o]
}

// UnaryOp enumerates Jack's two unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // '-'
	OpNot                // '~'
)

var unaryOpNames = [...]string{"-", "~"}

func (o UnaryOp) String() string {
	if int(o) < 0 || int(o) >= len(unaryOpNames) {
		return fmt.Sprintf("UnaryOp(%d)", int(o))
	}
	return unaryOpNames[o]
}

// Cmp is a relational operator, always implicitly comparing its operand against zero once it
// reaches an If or While statement.
type Cmp int

const (
	CmpEq Cmp = iota
	CmpNe
	CmpLt
	CmpGt
	CmpLe
	CmpGe
)

var cmpNames = [...]string{"=", "!=", "<", ">", "<=", ">="}

func (c Cmp) String() string {
	if int(c) < 0 || int(c) >= len(cmpNames) {
		return fmt.Sprintf("Cmp(%d)", int(c))
	}
	return cmpNames[c]
}

// Negate returns the comparator that tests the opposite condition (used to turn "branch if true,
// fall through" into "branch past on negated test").
func (c Cmp) Negate() Cmp {
	switch c {
	case CmpEq:
		return CmpNe
	case CmpNe:
		return CmpEq
	case CmpLt:
		return CmpGe
	case CmpGt:
		return CmpLe
	case CmpLe:
		return CmpGt
	case CmpGe:
		return CmpLt
	default:
		panic(fmt.Sprintf("ir: Negate: unknown comparator %v", c))
	}
}

// Binary is a two-operand arithmetic/bitwise expression.
type Binary struct {
	Left  Value
	Op    ArithOp
	Right Value
}

func NewBinary(l Value, op ArithOp, r Value) *Binary { return &Binary{Left: l, Op: op, Right: r} }

func (b *Binary) ExprKind() ExprKind { return BinaryExprKind }
func (b *Binary) String() string {
	return fmt.Sprintf("%s %s %s", b.Left, b.Op, b.Right)
}

// Unary is a single-operand arithmetic/bitwise expression.
type Unary struct {
	Op      UnaryOp
	Operand Value
}

func NewUnary(op UnaryOp, v Value) *Unary { return &Unary{Op: op, Operand: v} }

func (u *Unary) ExprKind() ExprKind { return UnaryExprKind }
func (u *Unary) String() string    { return fmt.Sprintf("%s%s", u.Op, u.Operand) }

// IndirectRead dereferences a computed address (array/field access).
type IndirectRead struct {
	Addr Value
}

func NewIndirectRead(addr Value) *IndirectRead { return &IndirectRead{Addr: addr} }

func (r *IndirectRead) ExprKind() ExprKind { return IndirectReadExprKind }
func (r *IndirectRead) String() string    { return fmt.Sprintf("*%s", r.Addr) }

// CallSub is a subroutine call. Its arguments are not carried as operands here — they were
// already pushed onto the stack by preceding Push statements; NArgs only records how many Push
// statements to expect immediately before the call, which the Flattener and the call-sequence
// Emitter both rely on.
type CallSub struct {
	Class string
	Name  string
	NArgs int
}

func NewCallSub(class, name string, nargs int) *CallSub {
	return &CallSub{Class: class, Name: name, NArgs: nargs}
}

func (c *CallSub) ExprKind() ExprKind { return CallSubExprKind }
func (c *CallSub) String() string {
	return fmt.Sprintf("call %s.%s/%d", c.Class, c.Name, c.NArgs)
}

// ExprRefs returns the Local values directly referenced by e — the "reads" side of a statement's
// per-statement dataflow facts. CallSub and Location never refer to a Local directly: a call's
// arguments were consumed by prior Pushes, and a Location names segment-relative storage, not
// another temporary.
func ExprRefs(e Expr) []*Local {
	switch v := e.(type) {
	case *Local:
		return []*Local{v}
	case *Const, *Reg:
		return nil
	case *Binary:
		return appendLocalOperand(appendLocalOperand(nil, v.Left), v.Right)
	case *Unary:
		return appendLocalOperand(nil, v.Operand)
	case *IndirectRead:
		return appendLocalOperand(nil, v.Addr)
	case *CallSub:
		return nil
	case *Location:
		return nil
	default:
		panic(fmt.Sprintf("ir: ExprRefs: unhandled expr kind %T", e))
	}
}

func appendLocalOperand(refs []*Local, v Value) []*Local {
	if l, ok := v.(*Local); ok {
		return append(refs, l)
	}
	return refs
}
