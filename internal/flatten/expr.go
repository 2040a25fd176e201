package flatten

import (
	"jackc/internal/ast"
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/symtab"
)

// flattenExpr lowers an expression node. When force is true the result is guaranteed to be an
// ir.Value (wrapping it through a fresh Eval if it would otherwise stay a richer Expr); when false
// the result may be any legal Expr, suitable directly as the RHS of Eval/Push/Return/Discard.
func (f *Flattener) flattenExpr(n *ast.Node, force bool) (ir.Expr, []ir.Stmt) {
	switch n.Kind {
	case ast.IntConst:
		return ir.NewConst(int16(n.Data.(int))), nil
	case ast.StringConst:
		return f.flattenString(n.Data.(string))
	case ast.KeywordConst:
		return f.flattenKeyword(n.Data.(string))
	case ast.VarTerm:
		return f.resolveVar(n.Data.(string), force)
	case ast.ArrayTerm:
		return f.flattenArrayRead(n, force)
	case ast.FieldTerm:
		return f.fieldRead(n.Data.(string), force)
	case ast.CallExpr:
		return f.flattenCall(n.Data.(*ast.CallData), n.Children, force)
	case ast.BinaryExpr:
		return f.flattenBinary(n, force)
	case ast.UnaryExpr:
		return f.flattenUnary(n, force)
	default:
		panic(ierr.Fatalf(f.class, "flatten.flattenExpr", "unhandled expression kind %v", n.Kind))
	}
}

// flattenValue is flattenExpr(n, true) with the result type-asserted down to ir.Value, for call
// sites that need an operand rather than any legal Expr.
func (f *Flattener) flattenValue(n *ast.Node) (ir.Value, []ir.Stmt) {
	e, setup := f.flattenExpr(n, true)
	v, ok := e.(ir.Value)
	if !ok {
		panic(ierr.Fatalf(f.class, "flatten.flattenValue", "forced expression %T did not reduce to a value", e))
	}
	return v, setup
}

// maybeForce is the force flag's single implementation point: every expr-flattening branch routes
// its unforced result through this before returning, so the "insert an Eval into a fresh local
// when force requires a Value" rule lives in exactly one place.
func (f *Flattener) maybeForce(e ir.Expr, force bool) (ir.Expr, []ir.Stmt) {
	if !force {
		return e, nil
	}
	if v, ok := e.(ir.Value); ok {
		return v, nil
	}
	tmp := ir.NewLocal(f.names.Next())
	return tmp, []ir.Stmt{&ir.Eval{Dest: tmp, Expr: e}}
}

// resolveVar looks up a plain identifier's symbol kind and lowers it to the matching IR shape: a
// local is already a Value, an argument/static is a Location, a field is an IndirectRead over the
// receiver.
func (f *Flattener) resolveVar(name string, force bool) (ir.Expr, []ir.Stmt) {
	kind, ok := f.tbl.KindOf(name)
	if !ok {
		panic(ierr.Fatalf(f.class, "flatten.resolveVar", "unresolved identifier %q", name))
	}
	switch kind {
	case symtab.Local:
		return f.getLocal(name), nil
	case symtab.Argument:
		loc := ir.NewLocation(ir.ArgLoc, f.tbl.IndexOf(name), name)
		return f.maybeForce(loc, force)
	case symtab.Static:
		loc := ir.NewLocation(ir.StaticLoc, f.tbl.IndexOf(name), name)
		return f.maybeForce(loc, force)
	case symtab.Field:
		return f.fieldRead(name, force)
	default:
		panic(ierr.Fatalf(f.class, "flatten.resolveVar", "unhandled symbol kind %v", kind))
	}
}

func (f *Flattener) fieldRead(name string, force bool) (ir.Expr, []ir.Stmt) {
	base, setup := f.receiverBase()
	addr, addrSetup := f.fieldAddress(base, f.tbl.IndexOf(name))
	setup = append(setup, addrSetup...)
	read := ir.NewIndirectRead(addr)
	result, forceSetup := f.maybeForce(read, force)
	setup = append(setup, forceSetup...)
	return result, setup
}

func (f *Flattener) flattenArrayRead(n *ast.Node, force bool) (ir.Expr, []ir.Stmt) {
	name := n.Data.(string)
	baseExpr, setup := f.resolveVar(name, true)
	base := baseExpr.(ir.Value)
	idxVal, idxSetup := f.flattenValue(n.Children[0])
	setup = append(setup, idxSetup...)
	addr, addrSetup := f.arrayAddress(base, idxVal)
	setup = append(setup, addrSetup...)
	read := ir.NewIndirectRead(addr)
	result, forceSetup := f.maybeForce(read, force)
	setup = append(setup, forceSetup...)
	return result, setup
}

// flattenKeyword maps Jack's four keyword constants: true/false/null fold to immediates
// directly, this defers to the receiver binding shared with field access.
func (f *Flattener) flattenKeyword(kw string) (ir.Expr, []ir.Stmt) {
	switch kw {
	case "true":
		return ir.NewConst(-1), nil
	case "false", "null":
		return ir.NewConst(0), nil
	case "this":
		return f.receiverBase()
	default:
		panic(ierr.Fatalf(f.class, "flatten.flattenKeyword", "unhandled keyword constant %q", kw))
	}
}

// flattenString lowers a string literal to String.new(len) followed by one appendChar call per
// character, each call's result feeding the next call's hidden receiver argument. The final
// instance local is already a Value, so force is never relevant here.
func (f *Flattener) flattenString(s string) (ir.Expr, []ir.Stmt) {
	var setup []ir.Stmt
	setup = append(setup, &ir.Push{Expr: ir.NewConst(int16(len(s)))})
	instance := ir.NewLocal(f.names.Next())
	setup = append(setup, &ir.Eval{Dest: instance, Expr: ir.NewCallSub("String", "new", 1)})
	for _, r := range s {
		setup = append(setup, &ir.Push{Expr: instance}, &ir.Push{Expr: ir.NewConst(int16(r))})
		next := ir.NewLocal(f.names.Next())
		setup = append(setup, &ir.Eval{Dest: next, Expr: ir.NewCallSub("String", "appendChar", 2)})
		instance = next
	}
	return instance, setup
}

// flattenCall lowers a call expression: a method call pushes its receiver first (an explicit
// object reference if qualified, else the enclosing this for an unqualified method call), then
// every argument in source order, and the call itself becomes the CallSub expression.
func (f *Flattener) flattenCall(call *ast.CallData, args []*ast.Node, force bool) (ir.Expr, []ir.Stmt) {
	var setup []ir.Stmt
	nargs := len(args)
	if call.IsMethod {
		nargs++
		var recv ir.Value
		var recvSetup []ir.Stmt
		if call.Receiver != nil {
			recv, recvSetup = f.flattenValue(call.Receiver)
		} else {
			recv, recvSetup = f.receiverBase()
		}
		setup = append(setup, recvSetup...)
		setup = append(setup, &ir.Push{Expr: recv})
	}
	for _, a := range args {
		expr, s := f.flattenExpr(a, false)
		setup = append(setup, s...)
		setup = append(setup, &ir.Push{Expr: expr})
	}
	callExpr := ir.NewCallSub(call.Class, call.Name, nargs)
	result, forceSetup := f.maybeForce(callExpr, force)
	setup = append(setup, forceSetup...)
	return result, setup
}

func (f *Flattener) flattenBinary(n *ast.Node, force bool) (ir.Expr, []ir.Stmt) {
	data := n.Data.(*ast.BinaryData)
	left, right := n.Children[0], n.Children[1]
	switch data.Op {
	case "+":
		return f.arith(left, right, ir.OpAdd, force)
	case "-":
		return f.arith(left, right, ir.OpSub, force)
	case "&":
		return f.arith(left, right, ir.OpAnd, force)
	case "|":
		return f.arith(left, right, ir.OpOr, force)
	case "*":
		return f.binaryCall(left, right, "Math", "multiply", force)
	case "/":
		return f.binaryCall(left, right, "Math", "divide", force)
	default:
		if cmp, ok := cmpFor(data.Op); ok {
			return f.compareAsValue(left, right, cmp)
		}
		panic(ierr.Fatalf(f.class, "flatten.flattenBinary", "unhandled operator %q", data.Op))
	}
}

// arith lowers the four operators the ALU computes directly over {A, D, M, 0, 1, -1}; '*' and
// '/' never reach here.
func (f *Flattener) arith(leftN, rightN *ast.Node, op ir.ArithOp, force bool) (ir.Expr, []ir.Stmt) {
	lVal, setup := f.flattenValue(leftN)
	rVal, rSetup := f.flattenValue(rightN)
	setup = append(setup, rSetup...)
	// Two immediates fold here, so no Binary over two Consts reaches the Emitter.
	if lc, ok := lVal.(*ir.Const); ok {
		if rc, ok := rVal.(*ir.Const); ok {
			v := lc.V + rc.V
			switch op {
			case ir.OpSub:
				v = lc.V - rc.V
			case ir.OpAnd:
				v = lc.V & rc.V
			case ir.OpOr:
				v = lc.V | rc.V
			}
			return ir.NewConst(v), setup
		}
	}
	bin := ir.NewBinary(lVal, op, rVal)
	result, forceSetup := f.maybeForce(bin, force)
	setup = append(setup, forceSetup...)
	return result, setup
}

// binaryCall lowers '*'/'/' to the matching Math library call.
func (f *Flattener) binaryCall(leftN, rightN *ast.Node, class, name string, force bool) (ir.Expr, []ir.Stmt) {
	lVal, setup := f.flattenValue(leftN)
	rVal, rSetup := f.flattenValue(rightN)
	setup = append(setup, rSetup...)
	setup = append(setup, &ir.Push{Expr: lVal}, &ir.Push{Expr: rVal})
	call := ir.NewCallSub(class, name, 2)
	result, forceSetup := f.maybeForce(call, force)
	setup = append(setup, forceSetup...)
	return result, setup
}

func (f *Flattener) flattenUnary(n *ast.Node, force bool) (ir.Expr, []ir.Stmt) {
	data := n.Data.(*ast.UnaryData)
	var op ir.UnaryOp
	switch data.Op {
	case "-":
		op = ir.OpNeg
	case "~":
		op = ir.OpNot
	default:
		panic(ierr.Fatalf(f.class, "flatten.flattenUnary", "unhandled unary operator %q", data.Op))
	}
	val, setup := f.flattenValue(n.Children[0])
	u := ir.NewUnary(op, val)
	result, forceSetup := f.maybeForce(u, force)
	setup = append(setup, forceSetup...)
	return result, setup
}

// compareAsValue lowers a comparison used as a plain Boolean value (e.g. "let flag = a < b;"):
// materialize the comparator's operand into an If that sets the result to -1 or 0 in each branch.
// The result is always a fresh Local, already a Value, so force never changes the shape here.
func (f *Flattener) compareAsValue(leftN, rightN *ast.Node, cmp ir.Cmp) (ir.Expr, []ir.Stmt) {
	val, setup, adjCmp := f.comparisonOperand(leftN, rightN, cmp)
	result := ir.NewLocal(f.names.Next())
	setup = append(setup, &ir.If{
		Value: val,
		Cmp:   adjCmp,
		Then:  []ir.Stmt{&ir.Eval{Dest: result, Expr: ir.NewConst(-1)}},
		Else:  []ir.Stmt{&ir.Eval{Dest: result, Expr: ir.NewConst(0)}},
	})
	return result, setup
}

// flattenCondition lowers an if/while condition: a negated comparison rewrites directly to the
// inverse comparator (`~(x<y)` becomes a plain `x>=y` test, rather than materializing a boolean
// and testing it against zero); a bare comparison lowers through comparisonOperand; anything else
// is materialized as a Value and tested != 0.
func (f *Flattener) flattenCondition(n *ast.Node) (ir.Value, []ir.Stmt, ir.Cmp) {
	if n.Kind == ast.UnaryExpr {
		if data, ok := n.Data.(*ast.UnaryData); ok && data.Op == "~" {
			inner := n.Children[0]
			if inner.Kind == ast.BinaryExpr {
				if bd, ok := inner.Data.(*ast.BinaryData); ok {
					if cmp, isCmp := cmpFor(bd.Op); isCmp {
						return f.comparisonOperand(inner.Children[0], inner.Children[1], cmp.Negate())
					}
				}
			}
		}
	}
	if n.Kind == ast.BinaryExpr {
		if bd, ok := n.Data.(*ast.BinaryData); ok {
			if cmp, isCmp := cmpFor(bd.Op); isCmp {
				return f.comparisonOperand(n.Children[0], n.Children[1], cmp)
			}
		}
	}
	v, setup := f.flattenValue(n)
	return v, setup, ir.CmpNe
}

// comparisonOperand implements flatten_condition's three-way case split on the comparison's
// operands: a literal zero on either side lets the other operand (or its operand-swapped
// comparator) stand in directly, avoiding a subtraction neither side needs; otherwise it computes
// left-right into a temporary (or, for two integer constants, folds it to a Const) and compares
// that against zero.
func (f *Flattener) comparisonOperand(leftN, rightN *ast.Node, cmp ir.Cmp) (ir.Value, []ir.Stmt, ir.Cmp) {
	if isIntConstZero(rightN) {
		v, setup := f.flattenValue(leftN)
		return v, setup, cmp
	}
	if isIntConstZero(leftN) {
		v, setup := f.flattenValue(rightN)
		return v, setup, swapOperandsCmp(cmp)
	}
	diff, setup := f.arith(leftN, rightN, ir.OpSub, true)
	return diff.(ir.Value), setup, cmp
}

func isIntConstZero(n *ast.Node) bool {
	if n.Kind != ast.IntConst {
		return false
	}
	v, ok := n.Data.(int)
	return ok && v == 0
}

// swapOperandsCmp rewrites cmp for "0 <cmp> x" tested as "x <cmp'> 0" instead — not a logical
// negation, just the mirror of a non-symmetric ordering (e.g. 0 < x becomes x > 0).
func swapOperandsCmp(c ir.Cmp) ir.Cmp {
	switch c {
	case ir.CmpLt:
		return ir.CmpGt
	case ir.CmpGt:
		return ir.CmpLt
	case ir.CmpLe:
		return ir.CmpGe
	case ir.CmpGe:
		return ir.CmpLe
	default:
		return c
	}
}

func cmpFor(op string) (ir.Cmp, bool) {
	switch op {
	case "=":
		return ir.CmpEq, true
	case "!=":
		return ir.CmpNe, true
	case "<":
		return ir.CmpLt, true
	case ">":
		return ir.CmpGt, true
	case "<=":
		return ir.CmpLe, true
	case ">=":
		return ir.CmpGe, true
	default:
		return 0, false
	}
}
