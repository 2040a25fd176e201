// Package flatten implements the Flattener: it walks a parsed Jack subroutine's ast.Node tree
// against a symtab.Table and produces a flattened ir.Subroutine whose statements carry only the
// eight simple forms ir.Stmt allows. Every sub-expression that is not already an ir.Value is
// surfaced through a fresh `$<n>`-named ir.Local and an ir.Eval inserted ahead of its consumer —
// setup statements accumulate, and the consumer appends last.
package flatten

import (
	"jackc/internal/ast"
	"jackc/internal/ierr"
	"jackc/internal/ir"
	"jackc/internal/symtab"
	"jackc/internal/util"

	"github.com/sirupsen/logrus"
)

// Flattener holds the per-subroutine state a single Flatten call needs: the fresh-name generator,
// a cache of the one *ir.Local each source-level local variable maps to, and (inside a
// constructor) the local holding the freshly allocated instance.
type Flattener struct {
	class   string
	tbl     symtab.Table
	names   *util.NameGen
	locals  map[string]*ir.Local
	thisVar *ir.Local
}

// Flatten lowers one subroutine's AST body into an ir.Subroutine. info.Body is processed in
// source order; a constructor gets its preamble (field allocation) prepended first.
func Flatten(info *ast.SubroutineInfo, tbl symtab.Table) *ir.Subroutine {
	f := &Flattener{
		class:  info.ClassName,
		tbl:    tbl,
		names:  util.NewNameGen("$"),
		locals: make(map[string]*ir.Local),
	}
	logrus.WithFields(logrus.Fields{
		"class":      info.ClassName,
		"subroutine": info.Name,
		"kind":       info.Kind,
	}).Debug("flattening subroutine")

	var body []ir.Stmt
	if info.Kind == ast.Constructor {
		body = append(body, f.constructorPreamble(info.FieldCount)...)
	}
	body = append(body, f.flattenStmts(info.Body)...)

	return &ir.Subroutine{
		ClassName: info.ClassName,
		Name:      info.Name,
		Kind:      info.Kind,
		NumArgs:   tbl.Count(symtab.Argument),
		Body:      body,
	}
}

// constructorPreamble allocates the instance and remembers the local it lands in, so every later
// field access in this subroutine reads the stored value instead of re-deriving argument[0] (a
// constructor has no incoming receiver argument to derive it from in the first place).
func (f *Flattener) constructorPreamble(fieldCount int) []ir.Stmt {
	this := ir.NewLocal(f.names.Next())
	f.thisVar = this
	return []ir.Stmt{
		&ir.Push{Expr: ir.NewConst(int16(fieldCount))},
		&ir.Eval{Dest: this, Expr: ir.NewCallSub("Memory", "alloc", 1)},
	}
}

func (f *Flattener) flattenStmts(nodes []*ast.Node) []ir.Stmt {
	var out []ir.Stmt
	for _, n := range nodes {
		out = append(out, f.flattenStmt(n)...)
	}
	return out
}

func (f *Flattener) flattenStmt(n *ast.Node) []ir.Stmt {
	switch n.Kind {
	case ast.LetStatement:
		return f.flattenLet(n.Data.(*ast.LetData))
	case ast.IfStatement:
		return f.flattenIf(n.Data.(*ast.IfData))
	case ast.WhileStatement:
		return f.flattenWhile(n.Data.(*ast.WhileData))
	case ast.DoStatement:
		return f.flattenDo(n.Data.(*ast.DoData))
	case ast.ReturnStatement:
		return f.flattenReturn(n.Data.(*ast.ReturnData))
	default:
		panic(ierr.Fatalf(f.class, "flatten.flattenStmt", "unhandled statement kind %v", n.Kind))
	}
}

// flattenLet lowers "let" across its four assignment-target cases: a plain local gets an Eval, an
// argument/static gets a Store, a field evaluates its value before computing the address and
// ends in an IndirectWrite, and an array element is handled separately by flattenArrayWrite.
func (f *Flattener) flattenLet(d *ast.LetData) []ir.Stmt {
	if d.Index != nil {
		return f.flattenArrayWrite(d)
	}
	kind, ok := f.tbl.KindOf(d.Name)
	if !ok {
		panic(ierr.Fatalf(f.class, "flatten.flattenLet", "unresolved identifier %q", d.Name))
	}
	switch kind {
	case symtab.Local:
		expr, setup := f.flattenExpr(d.Value, false)
		dest := f.getLocal(d.Name)
		return append(setup, &ir.Eval{Dest: dest, Expr: expr})
	case symtab.Argument:
		val, setup := f.flattenValue(d.Value)
		loc := ir.NewLocation(ir.ArgLoc, f.tbl.IndexOf(d.Name), d.Name)
		return append(setup, &ir.Store{Loc: loc, Value: val})
	case symtab.Static:
		val, setup := f.flattenValue(d.Value)
		loc := ir.NewLocation(ir.StaticLoc, f.tbl.IndexOf(d.Name), d.Name)
		return append(setup, &ir.Store{Loc: loc, Value: val})
	case symtab.Field:
		val, setup := f.flattenValue(d.Value)
		base, baseSetup := f.receiverBase()
		setup = append(setup, baseSetup...)
		addr, addrSetup := f.fieldAddress(base, f.tbl.IndexOf(d.Name))
		setup = append(setup, addrSetup...)
		return append(setup, &ir.IndirectWrite{Addr: addr, Value: val})
	default:
		panic(ierr.Fatalf(f.class, "flatten.flattenLet", "unhandled symbol kind %v", kind))
	}
}

// flattenArrayWrite lowers "a[i] = e": the value is evaluated first, then the array's own base
// resolves through whatever kind of variable it is (local/argument/static/field all hold a
// pointer the same way), then the index adds on top (omitted entirely when it is the literal
// constant 0), and the result is always an IndirectWrite — array elements never have a Location
// of their own.
func (f *Flattener) flattenArrayWrite(d *ast.LetData) []ir.Stmt {
	val, setup := f.flattenValue(d.Value)
	baseExpr, baseSetup := f.resolveVar(d.Name, true)
	setup = append(setup, baseSetup...)
	base := baseExpr.(ir.Value)
	idxVal, idxSetup := f.flattenValue(d.Index)
	setup = append(setup, idxSetup...)
	addr, addrSetup := f.arrayAddress(base, idxVal)
	setup = append(setup, addrSetup...)
	return append(setup, &ir.IndirectWrite{Addr: addr, Value: val})
}

func (f *Flattener) flattenIf(d *ast.IfData) []ir.Stmt {
	val, setup, cmp := f.flattenCondition(d.Cond)
	thenStmts := f.flattenStmts(d.Then)
	var elseStmts []ir.Stmt
	if d.Else != nil {
		elseStmts = f.flattenStmts(d.Else)
	}
	return append(setup, &ir.If{Value: val, Cmp: cmp, Then: thenStmts, Else: elseStmts})
}

// flattenWhile's Test setup must be recomputed on every iteration, so — unlike If, whose setup
// statements run once before the branch — it stays attached to the While node as its own
// statement list rather than being hoisted in front of it.
func (f *Flattener) flattenWhile(d *ast.WhileData) []ir.Stmt {
	val, test, cmp := f.flattenCondition(d.Cond)
	body := f.flattenStmts(d.Body)
	return []ir.Stmt{&ir.While{Test: test, Value: val, Cmp: cmp, Body: body}}
}

func (f *Flattener) flattenDo(d *ast.DoData) []ir.Stmt {
	callData, ok := d.Call.Data.(*ast.CallData)
	if !ok {
		panic(ierr.Fatalf(f.class, "flatten.flattenDo", "do-statement target is not a call"))
	}
	expr, setup := f.flattenCall(callData, d.Call.Children, false)
	call, ok := expr.(*ir.CallSub)
	if !ok {
		panic(ierr.Fatalf(f.class, "flatten.flattenDo", "do-statement call did not flatten to CallSub"))
	}
	return append(setup, &ir.Discard{Call: call})
}

func (f *Flattener) flattenReturn(d *ast.ReturnData) []ir.Stmt {
	if d.Expr == nil {
		return []ir.Stmt{&ir.Return{Expr: ir.NewConst(0)}}
	}
	expr, setup := f.flattenExpr(d.Expr, false)
	return append(setup, &ir.Return{Expr: expr})
}

// getLocal returns the one *ir.Local a source-level local variable name maps to throughout this
// subroutine, creating it on first reference. Fresh temporaries introduced for sub-expressions
// never go through this cache — they get their own name from f.names and are never looked up by
// name again, so only declared locals need the memoization.
func (f *Flattener) getLocal(name string) *ir.Local {
	if l, ok := f.locals[name]; ok {
		return l
	}
	l := ir.NewLocal(name)
	f.locals[name] = l
	return l
}

// receiverBase returns the Value a field address is computed relative to: the constructor's own
// allocated instance if one was stored by the preamble, or else argument[0] — always
// re-materialized through a fresh Eval, since a method's receiver binding is uniform whether or
// not the body happens to read `this`.
func (f *Flattener) receiverBase() (ir.Value, []ir.Stmt) {
	if f.thisVar != nil {
		return f.thisVar, nil
	}
	loc := ir.NewLocation(ir.ArgLoc, 0, "this")
	tmp := ir.NewLocal(f.names.Next())
	return tmp, []ir.Stmt{&ir.Eval{Dest: tmp, Expr: loc}}
}

// fieldAddress computes base+index, omitting the add for index 0.
func (f *Flattener) fieldAddress(base ir.Value, index int) (ir.Value, []ir.Stmt) {
	if index == 0 {
		return base, nil
	}
	sum := ir.NewBinary(base, ir.OpAdd, ir.NewConst(int16(index)))
	tmp := ir.NewLocal(f.names.Next())
	return tmp, []ir.Stmt{&ir.Eval{Dest: tmp, Expr: sum}}
}

// arrayAddress computes base+index for an array element, omitting the add when the index is
// known at flatten time to be the literal constant 0; the same shortcut applies to array reads.
func (f *Flattener) arrayAddress(base, index ir.Value) (ir.Value, []ir.Stmt) {
	if c, ok := index.(*ir.Const); ok && c.V == 0 {
		return base, nil
	}
	sum := ir.NewBinary(base, ir.OpAdd, index)
	tmp := ir.NewLocal(f.names.Next())
	return tmp, []ir.Stmt{&ir.Eval{Dest: tmp, Expr: sum}}
}
