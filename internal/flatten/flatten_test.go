package flatten

import (
	"testing"

	"jackc/internal/ast"
	"jackc/internal/ir"
	"jackc/internal/symtab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intConst(v int) *ast.Node { return &ast.Node{Kind: ast.IntConst, Data: v} }
func varTerm(name string) *ast.Node { return &ast.Node{Kind: ast.VarTerm, Data: name} }

func binary(op string, l, r *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.BinaryExpr, Data: &ast.BinaryData{Op: op}, Children: []*ast.Node{l, r}}
}

func TestFlattenLetLocalProducesEval(t *testing.T) {
	tbl := symtab.NewFixture("Main").Add("x", symtab.Local, "int")
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body: []*ast.Node{
			{Kind: ast.LetStatement, Data: &ast.LetData{Name: "x", Value: intConst(5)}},
		},
	}
	sub := Flatten(info, tbl)
	require.Len(t, sub.Body, 1)
	ev, ok := sub.Body[0].(*ir.Eval)
	require.True(t, ok)
	assert.Equal(t, "x", ev.Dest.(*ir.Local).Name)
	assert.Equal(t, int16(5), ev.Expr.(*ir.Const).V)
}

func TestFlattenLetArgumentProducesStore(t *testing.T) {
	tbl := symtab.NewFixture("Main").Add("y", symtab.Argument, "int")
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body: []*ast.Node{
			{Kind: ast.LetStatement, Data: &ast.LetData{Name: "y", Value: intConst(1)}},
		},
	}
	sub := Flatten(info, tbl)
	require.Len(t, sub.Body, 1)
	st, ok := sub.Body[0].(*ir.Store)
	require.True(t, ok)
	assert.Equal(t, ir.ArgLoc, st.Loc.Kind)
	assert.Equal(t, 0, st.Loc.Index)
}

func TestFlattenLetFieldProducesIndirectWrite(t *testing.T) {
	tbl := symtab.NewFixture("Point").Add("x", symtab.Field, "int")
	info := &ast.SubroutineInfo{
		ClassName: "Point",
		Name:      "setX",
		Kind:      ast.Method,
		Body: []*ast.Node{
			{Kind: ast.LetStatement, Data: &ast.LetData{Name: "x", Value: intConst(9)}},
		},
	}
	sub := Flatten(info, tbl)
	last := sub.Body[len(sub.Body)-1]
	iw, ok := last.(*ir.IndirectWrite)
	require.True(t, ok)
	assert.Equal(t, int16(9), iw.Value.(*ir.Const).V)
	// field index 0 means the address is argument[0] itself, materialized through one Eval.
	found := false
	for _, st := range sub.Body {
		if ev, ok := st.(*ir.Eval); ok {
			if loc, ok := ev.Expr.(*ir.Location); ok && loc.Kind == ir.ArgLoc && loc.Index == 0 {
				found = true
			}
		}
	}
	assert.True(t, found, "receiver must be materialized from argument[0]")
}

func TestFlattenArrayWriteOmitsAddForZeroIndex(t *testing.T) {
	tbl := symtab.NewFixture("Main").Add("a", symtab.Local, "Array")
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body: []*ast.Node{
			{Kind: ast.LetStatement, Data: &ast.LetData{Name: "a", Index: intConst(0), Value: intConst(3)}},
		},
	}
	sub := Flatten(info, tbl)
	last := sub.Body[len(sub.Body)-1].(*ir.IndirectWrite)
	assert.Equal(t, "a", last.Addr.(*ir.Local).Name)
}

func TestFlattenIfWithoutElse(t *testing.T) {
	tbl := symtab.NewFixture("Main").Add("x", symtab.Local, "int")
	cond := binary("<", varTerm("x"), intConst(0))
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body: []*ast.Node{
			{Kind: ast.IfStatement, Data: &ast.IfData{
				Cond: cond,
				Then: []*ast.Node{{Kind: ast.DoStatement, Data: &ast.DoData{Call: &ast.Node{
					Kind: ast.CallExpr,
					Data: &ast.CallData{Class: "Output", Name: "printString", IsMethod: false},
				}}}},
			}},
		},
	}
	sub := Flatten(info, tbl)
	require.Len(t, sub.Body, 1)
	ifst, ok := sub.Body[0].(*ir.If)
	require.True(t, ok)
	assert.Equal(t, ir.CmpLt, ifst.Cmp)
	assert.Nil(t, ifst.Else)
	assert.Equal(t, "x", ifst.Value.(*ir.Local).Name)
}

func TestFlattenConditionNegatesComparisonDirectly(t *testing.T) {
	tbl := symtab.NewFixture("Main").Add("x", symtab.Local, "int").Add("y", symtab.Local, "int")
	// ~(x < y) should lower to a plain x >= y test, not a materialized boolean tested != 0.
	notLt := &ast.Node{
		Kind: ast.UnaryExpr,
		Data: &ast.UnaryData{Op: "~"},
		Children: []*ast.Node{
			binary("<", varTerm("x"), varTerm("y")),
		},
	}
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body: []*ast.Node{
			{Kind: ast.WhileStatement, Data: &ast.WhileData{Cond: notLt, Body: nil}},
		},
	}
	sub := Flatten(info, tbl)
	w, ok := sub.Body[0].(*ir.While)
	require.True(t, ok)
	assert.Equal(t, ir.CmpGe, w.Cmp)
	// the operand must be a materialized x-y difference, not the raw x or y local.
	diff, ok := w.Value.(*ir.Local)
	require.True(t, ok)
	assert.NotEqual(t, "x", diff.Name)
	assert.NotEqual(t, "y", diff.Name)
}

func TestFlattenReturnBareLowersToConstZero(t *testing.T) {
	tbl := symtab.NewFixture("Main")
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body:      []*ast.Node{{Kind: ast.ReturnStatement, Data: &ast.ReturnData{}}},
	}
	sub := Flatten(info, tbl)
	require.Len(t, sub.Body, 1)
	ret := sub.Body[0].(*ir.Return)
	assert.Equal(t, int16(0), ret.Expr.(*ir.Const).V)
}

func TestFlattenConstructorPreamble(t *testing.T) {
	tbl := symtab.NewFixture("Point")
	info := &ast.SubroutineInfo{
		ClassName: "Point",
		Name:      "new",
		Kind:      ast.Constructor,
		FieldCount: 2,
		Body:      []*ast.Node{{Kind: ast.ReturnStatement, Data: &ast.ReturnData{}}},
	}
	sub := Flatten(info, tbl)
	push, ok := sub.Body[0].(*ir.Push)
	require.True(t, ok)
	assert.Equal(t, int16(2), push.Expr.(*ir.Const).V)
	alloc, ok := sub.Body[1].(*ir.Eval)
	require.True(t, ok)
	call, ok := alloc.Expr.(*ir.CallSub)
	require.True(t, ok)
	assert.Equal(t, "Memory", call.Class)
	assert.Equal(t, "alloc", call.Name)
}

func TestFlattenMultiplyLowersToMathCall(t *testing.T) {
	tbl := symtab.NewFixture("Main").Add("x", symtab.Local, "int")
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body: []*ast.Node{
			{Kind: ast.LetStatement, Data: &ast.LetData{
				Name:  "x",
				Value: binary("*", intConst(3), intConst(4)),
			}},
		},
	}
	sub := Flatten(info, tbl)
	var sawCall bool
	for _, st := range sub.Body {
		if ev, ok := st.(*ir.Eval); ok {
			if call, ok := ev.Expr.(*ir.CallSub); ok && call.Class == "Math" && call.Name == "multiply" {
				sawCall = true
			}
		}
	}
	assert.True(t, sawCall)
}

func TestFlattenMethodCallPushesImplicitReceiverFirst(t *testing.T) {
	tbl := symtab.NewFixture("Main")
	call := &ast.Node{
		Kind: ast.CallExpr,
		Data: &ast.CallData{Class: "Main", Name: "helper", IsMethod: true},
	}
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Method,
		Body:      []*ast.Node{{Kind: ast.DoStatement, Data: &ast.DoData{Call: call}}},
	}
	sub := Flatten(info, tbl)
	require.Len(t, sub.Body, 3)
	recvLoad, ok := sub.Body[0].(*ir.Eval)
	require.True(t, ok)
	loc, ok := recvLoad.Expr.(*ir.Location)
	require.True(t, ok)
	assert.Equal(t, ir.ArgLoc, loc.Kind)
	assert.Equal(t, 0, loc.Index)
	push, ok := sub.Body[1].(*ir.Push)
	require.True(t, ok)
	assert.Equal(t, recvLoad.Dest, push.Expr)
	discard := sub.Body[2].(*ir.Discard)
	assert.Equal(t, 1, discard.Call.NArgs)
}
