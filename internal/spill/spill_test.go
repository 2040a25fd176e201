package spill

import (
	"testing"

	"jackc/internal/ir"
	"jackc/internal/liveness"
	"jackc/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSelectSpillsAcrossCall checks that a Local whose value is needed after a call site is
// selected for promotion, the way a "let x = 1; do Foo.bar(); return x;" body requires.
func TestSelectSpillsAcrossCall(t *testing.T) {
	x := ir.NewLocal("x")
	sub := &ir.Subroutine{
		ClassName: "Main",
		Name:      "f",
		Body: []ir.Stmt{
			&ir.Eval{Dest: x, Expr: ir.NewConst(1)},
			&ir.Discard{Call: ir.NewCallSub("Foo", "bar", 0)},
			&ir.Return{Expr: x},
		},
	}
	live := liveness.Analyze(sub)
	spilled := Select(sub, live)
	require.True(t, spilled.Has(x))
}

// TestPromoteIsIdempotent checks that re-running Select immediately after a Promote pass yields
// the empty set, since every materialized Local's live range is confined to a single statement
// and can never span a call.
func TestPromoteIsIdempotent(t *testing.T) {
	x := ir.NewLocal("x")
	sub := &ir.Subroutine{
		ClassName: "Main",
		Name:      "f",
		Body: []ir.Stmt{
			&ir.Eval{Dest: x, Expr: ir.NewConst(1)},
			&ir.Discard{Call: ir.NewCallSub("Foo", "bar", 0)},
			&ir.Return{Expr: x},
		},
	}
	live := liveness.Analyze(sub)
	spilled := Select(sub, live)
	require.True(t, spilled.Has(x))

	Promote(sub, spilled, util.NewNameGen("$s"))
	assert.Equal(t, 1, sub.NumLocalSlots)

	live2 := liveness.Analyze(sub)
	spilled2 := Select(sub, live2)
	assert.Empty(t, spilled2, "no Local should remain live across a call after promotion")
}

// TestPromoteRewritesDefAndUse checks the concrete shape of the rewrite: the definition becomes a
// fresh Eval followed by a Store, and the later use becomes a fresh Eval reading the Location.
func TestPromoteRewritesDefAndUse(t *testing.T) {
	x := ir.NewLocal("x")
	sub := &ir.Subroutine{
		ClassName: "Main",
		Name:      "f",
		Body: []ir.Stmt{
			&ir.Eval{Dest: x, Expr: ir.NewConst(1)},
			&ir.Discard{Call: ir.NewCallSub("Foo", "bar", 0)},
			&ir.Return{Expr: x},
		},
	}
	Promote(sub, liveness.NewSet(x), util.NewNameGen("$s"))

	require.Len(t, sub.Body, 5)
	def, ok := sub.Body[0].(*ir.Eval)
	require.True(t, ok)
	_, isLocal := def.Dest.(*ir.Local)
	assert.True(t, isLocal)

	store, ok := sub.Body[1].(*ir.Store)
	require.True(t, ok)
	assert.Equal(t, 0, store.Loc.Index)

	_, isDiscard := sub.Body[2].(*ir.Discard)
	assert.True(t, isDiscard)

	load, ok := sub.Body[3].(*ir.Eval)
	require.True(t, ok)
	_, isLoc := load.Expr.(*ir.Location)
	assert.True(t, isLoc)

	ret, ok := sub.Body[4].(*ir.Return)
	require.True(t, ok)
	_, isLocal2 := ret.Expr.(*ir.Local)
	assert.True(t, isLocal2)
}
