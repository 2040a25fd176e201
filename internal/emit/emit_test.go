package emit

import (
	"strings"
	"testing"

	"jackc/internal/ir"
	"jackc/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestLoadConstPeepholesSmallValues(t *testing.T) {
	for _, tc := range []struct {
		v    int16
		want string
	}{
		{0, "D=0"},
		{1, "D=1"},
		{-1, "D=-1"},
	} {
		w := util.NewWriter()
		emitLoadConstToD(w, tc.v)
		assert.Equal(t, tc.want+"\n", w.String())
	}
}

func TestLoadConstNegatesOtherValues(t *testing.T) {
	w := util.NewWriter()
	emitLoadConstToD(w, -5)
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Equal(t, []string{"@5", "D=A", "D=-D"}, lines)
}

func TestEmitEvalTakesInPlacePathForSelfUpdate(t *testing.T) {
	e := New()
	w := util.NewWriter()
	r := ir.NewReg(0, "i")
	st := &ir.Eval{Dest: r, Expr: ir.NewBinary(r, ir.OpAdd, ir.NewConst(1))}
	e.emitEval(w, st)
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Equal(t, []string{"@R5", "M=M+1"}, lines)
}

func TestEmitEvalPlainBinaryRoundTripsThroughD(t *testing.T) {
	e := New()
	w := util.NewWriter()
	a := ir.NewReg(0, "a")
	b := ir.NewReg(1, "b")
	dest := ir.NewReg(2, "c")
	st := &ir.Eval{Dest: dest, Expr: ir.NewBinary(a, ir.OpAdd, b)}
	e.emitEval(w, st)
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Equal(t, []string{"@R5", "D=M", "@R6", "D=D+M", "@R7", "M=D"}, lines)
}

func TestEmitIfWithoutElseBranchesOnNegatedComparator(t *testing.T) {
	e := New()
	w := util.NewWriter()
	r := ir.NewReg(0, "x")
	st := &ir.If{
		Value: r,
		Cmp:   ir.CmpLt,
		Then:  []ir.Stmt{&ir.Discard{Call: ir.NewCallSub("Output", "printInt", 0)}},
	}
	e.emitIf(w, st)
	out := w.String()
	assert.Contains(t, out, "D;JGE", "negated CmpLt branches past Then on >=")
	assert.Contains(t, out, "@__call", "Then body's discard still reaches the call glue")
}

func TestEmitWhileRecomputesTestEveryIteration(t *testing.T) {
	e := New()
	w := util.NewWriter()
	r := ir.NewReg(0, "i")
	st := &ir.While{
		Test:  []ir.Stmt{},
		Value: r,
		Cmp:   ir.CmpLt,
		Body:  []ir.Stmt{&ir.Eval{Dest: r, Expr: ir.NewBinary(r, ir.OpAdd, ir.NewConst(1))}},
	}
	e.emitWhile(w, st)
	out := w.String()
	assert.Contains(t, out, "(WTOP_L1)")
	assert.Contains(t, out, "D;JGE")
	assert.Contains(t, out, "@WTOP_L1")
	assert.Contains(t, out, "(WEND_L2)")
}

func TestEmitCallGlueSavesFrameInPushOrder(t *testing.T) {
	e := New()
	w := util.NewWriter()
	e.emitCallGlue(w)
	out := w.String()
	assert.Contains(t, out, "(__call)")
	assert.Contains(t, out, "(__return)")
	callIdx := strings.Index(out, "(__call)")
	returnIdx := strings.Index(out, "(__return)")
	assert.True(t, callIdx < returnIdx)
	assert.Contains(t, out, "@ARG")
	assert.Contains(t, out, "@LCL")
}

func TestEmitLoadLocationZeroIndexSkipsAdd(t *testing.T) {
	e := New()
	w := util.NewWriter()
	loc := ir.NewLocation(ir.ArgLoc, 0, "a")
	e.emitLoadLocationToD(w, loc)
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Equal(t, []string{"@ARG", "A=M", "D=M"}, lines)
}

func TestEmitLoadLocationNonZeroIndexAddsOffset(t *testing.T) {
	e := New()
	w := util.NewWriter()
	loc := ir.NewLocation(ir.LocalLoc, 3, "x")
	e.emitLoadLocationToD(w, loc)
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Equal(t, []string{"@LCL", "D=M", "@3", "A=D+A", "D=M"}, lines)
}

func TestEmitStoreNonZeroIndexStagesAddressBeforeValue(t *testing.T) {
	e := New()
	w := util.NewWriter()
	loc := ir.NewLocation(ir.LocalLoc, 2, "x")
	st := &ir.Store{Loc: loc, Value: ir.NewConst(7)}
	e.emitStore(w, st)
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Equal(t, []string{
		"@LCL", "D=M", "@2", "D=D+A", "@R15", "M=D", "@7", "D=A", "@R15", "A=M", "M=D",
	}, lines)
}
