package regalloc

import (
	"testing"

	"jackc/internal/ir"
	"jackc/internal/liveness"
	"jackc/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestColorDisjointLocalsShareNoEdge checks that two Locals never simultaneously live get no
// interference edge, and so may receive the same colour.
func TestColorDisjointLocalsShareNoEdge(t *testing.T) {
	a := ir.NewLocal("a")
	b := ir.NewLocal("b")
	sub := &ir.Subroutine{
		ClassName: "Main",
		Name:      "f",
		Body: []ir.Stmt{
			&ir.Eval{Dest: a, Expr: ir.NewConst(1)},
			&ir.Discard{Call: ir.NewCallSub("Output", "printInt", 0)},
			&ir.Eval{Dest: b, Expr: ir.NewConst(2)},
			&ir.Return{Expr: b},
		},
	}
	live := liveness.Analyze(sub)
	g := Build(sub, live)
	assert.False(t, g.Neighbors(a)[b], "a and b are never simultaneously live")
}

// TestColorRespectsK checks that a clique larger than K forces at least one uncoloured Local.
func TestColorRespectsK(t *testing.T) {
	g := newGraph()
	locals := make([]*ir.Local, K+1)
	for i := range locals {
		locals[i] = ir.NewLocal("v")
		g.addVertex(locals[i])
	}
	for i := range locals {
		for j := i + 1; j < len(locals); j++ {
			g.addEdge(locals[i], locals[j])
		}
	}
	_, uncolored := Color(g, K)
	assert.NotEmpty(t, uncolored, "a (K+1)-clique cannot be K-coloured")
}

// TestAssignEliminatesLocals checks that after Assign runs, no *ir.Local survives anywhere in the
// body.
func TestAssignEliminatesLocals(t *testing.T) {
	a := ir.NewLocal("a")
	b := ir.NewLocal("b")
	sub := &ir.Subroutine{
		ClassName: "Main",
		Name:      "f",
		Body: []ir.Stmt{
			&ir.Eval{Dest: a, Expr: ir.NewConst(1)},
			&ir.Eval{Dest: b, Expr: ir.NewBinary(a, ir.OpAdd, ir.NewConst(2))},
			&ir.Return{Expr: b},
		},
	}
	Assign(sub, util.NewNameGen("$r"))

	var walk func(body []ir.Stmt)
	walk = func(body []ir.Stmt) {
		for _, st := range body {
			switch v := st.(type) {
			case *ir.Eval:
				_, destIsLocal := v.Dest.(*ir.Local)
				require.False(t, destIsLocal)
			case *ir.If:
				walk(v.Then)
				walk(v.Else)
			case *ir.While:
				walk(v.Test)
				walk(v.Body)
			}
		}
	}
	walk(sub.Body)
}

// TestAssignSpillsBeyondK checks the fallback path: more than K simultaneously live Locals forces
// at least one round of spilling, and the loop still terminates with every Local eliminated.
func TestAssignSpillsBeyondK(t *testing.T) {
	locals := make([]*ir.Local, K+2)
	var body []ir.Stmt
	for i := range locals {
		locals[i] = ir.NewLocal("v")
		body = append(body, &ir.Eval{Dest: locals[i], Expr: ir.NewConst(int16(i))})
	}
	body = append(body, &ir.Discard{Call: ir.NewCallSub("Sys", "wait", 0)})
	var sum ir.Value = locals[0]
	for _, l := range locals[1:] {
		t := ir.NewLocal("t")
		body = append(body, &ir.Eval{Dest: t, Expr: ir.NewBinary(sum, ir.OpAdd, l)})
		sum = t
	}
	body = append(body, &ir.Return{Expr: sum})

	sub := &ir.Subroutine{ClassName: "Main", Name: "many", Body: body}
	Assign(sub, util.NewNameGen("$r"))
	assert.Greater(t, sub.NumLocalSlots, 0, "more than K simultaneously live locals must spill")
}
