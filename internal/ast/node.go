// Package ast defines the tagged syntax tree type the Flattener consumes. Building the tree
// (parsing Jack source, scope resolution) is a collaborator's job and out of scope here.
package ast

import "fmt"

// Kind differentiates the node variants that can appear in a parsed Jack class tree.
type Kind int

const (
	Class Kind = iota
	ClassVarDec
	Subroutine

	// Statements.
	LetStatement
	IfStatement
	WhileStatement
	DoStatement
	ReturnStatement

	// Expressions.
	BinaryExpr
	UnaryExpr
	IntConst
	StringConst
	KeywordConst
	VarTerm
	ArrayTerm
	FieldTerm
	CallExpr
)

var kindNames = [...]string{
	"Class", "ClassVarDec", "Subroutine",
	"LetStatement", "IfStatement", "WhileStatement", "DoStatement", "ReturnStatement",
	"BinaryExpr", "UnaryExpr", "IntConst", "StringConst", "KeywordConst", "VarTerm",
	"ArrayTerm", "FieldTerm", "CallExpr",
}

// String returns a print friendly name for k.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// SubroutineKind distinguishes the three Jack subroutine flavours, which the Flattener treats
// differently when binding the receiver.
type SubroutineKind int

const (
	Function SubroutineKind = iota
	Method
	Constructor
)

// Node is a single node of a parsed Jack class tree: one struct, a Kind enum, Data, and Children,
// rather than one Go type per grammar production — the Flattener dispatches on Kind via
// exhaustive switches.
type Node struct {
	Kind     Kind
	Line     int
	Pos      int
	Data     interface{} // int/string literal value, operator string, identifier name, etc.
	Children []*Node
}

// String renders a single-line, print friendly description of n, without descending into
// children.
func (n *Node) String() string {
	if n == nil {
		return "<nil node>"
	}
	if n.Data == nil {
		return n.Kind.String()
	}
	return fmt.Sprintf("%s(%v)", n.Kind, n.Data)
}

// SubroutineInfo carries the declaration-level facts the Flattener needs about a subroutine that
// aren't encoded as Children: its kind, its declaring class, and the number of fields the class
// declares (needed for the constructor preamble's Push(Const(field_count))).
type SubroutineInfo struct {
	ClassName   string
	Name        string
	Kind        SubroutineKind
	FieldCount  int
	Body        []*Node // statement Nodes making up the subroutine body, in source order.
}

// Data payloads for statement kinds. Children is left unused for statement nodes — everything a
// statement needs is reachable through one of these, rather than splitting a node's meaning
// across both Data and a positionally-significant Children slice.

// LetData is a LetStatement's target and right-hand side. Index is non-nil when the target is an
// array element (`a[i] = ...`) rather than a plain variable.
type LetData struct {
	Name  string
	Index *Node
	Value *Node
}

// IfData is an IfStatement's condition and its two statement lists. Else is nil when the source
// has no else clause.
type IfData struct {
	Cond *Node
	Then []*Node
	Else []*Node
}

// WhileData is a WhileStatement's condition and body.
type WhileData struct {
	Cond *Node
	Body []*Node
}

// DoData is a DoStatement's call expression (always a CallExpr node).
type DoData struct {
	Call *Node
}

// ReturnData is a ReturnStatement's optional expression. Expr is nil for a bare "return;".
type ReturnData struct {
	Expr *Node
}

// CallData is a CallExpr's target and receiver-binding facts. Receiver is non-nil only for a
// call made through an explicit object reference (`obj.method()`); it is nil both for plain
// function/constructor calls and for an unqualified method call inside a method body, where the
// receiver is implicitly the enclosing `this`. Children holds the call's argument expression
// nodes, in source order; the receiver is never one of them.
type CallData struct {
	Class    string
	Name     string
	Receiver *Node
	IsMethod bool
}

// BinaryData and UnaryData are the operator carried by BinaryExpr/UnaryExpr nodes; operands are
// the node's Children ([left, right] or [operand]).
type BinaryData struct {
	Op string // one of "+", "-", "*", "/", "&", "|", "<", ">", "=", "!=", "<=", ">="
}

type UnaryData struct {
	Op string // "-" or "~"
}
