package difftest

import (
	"testing"

	"jackc/internal/ast"
	"jackc/internal/compile"
	"jackc/internal/symtab"

	"github.com/stretchr/testify/require"
)

// runBoth compiles body through the full pipeline at register count k and checks that EvalIR's
// result for every row of cases agrees with EvalAST's (semantic preservation across
// Flatten/spill/regalloc).
func runBoth(t *testing.T, tbl symtab.Table, body []*ast.Node, k int, cases [][]int16) {
	t.Helper()
	info := &ast.SubroutineInfo{ClassName: "Main", Name: "f", Kind: ast.Function, Body: body}
	su := compile.SubroutineUnit{Info: info, Table: tbl}
	sub := compile.CompileSubroutine(su, k)

	for _, args := range cases {
		astEnvArgs := make(astEnv, len(args))
		for name := range tbl.(*symtab.Fixture).Entries {
			if kind, _ := tbl.KindOf(name); kind == symtab.Argument {
				astEnvArgs[name] = args[tbl.IndexOf(name)]
			}
		}
		want := EvalAST(body, astEnvArgs)
		got := EvalIR(sub, append([]int16(nil), args...))
		require.Equal(t, want, got, "args=%v", args)
	}
}

func TestDifferentialArithmeticExpression(t *testing.T) {
	prog, err := ParseFragment(`
		let r = (a + b) - a;
		return r;
	`)
	require.NoError(t, err)
	body := ToAST(prog)

	tbl := symtab.NewFixture("Main").Add("a", symtab.Argument, "int").Add("b", symtab.Argument, "int").Add("r", symtab.Local, "int")
	runBoth(t, tbl, body, 8, [][]int16{{3, 4}, {-5, 10}, {0, 0}})
}

func TestDifferentialIfElseTakesBothBranches(t *testing.T) {
	prog, err := ParseFragment(`
		if (a > b) {
			return a;
		} else {
			return b;
		}
	`)
	require.NoError(t, err)
	body := ToAST(prog)

	tbl := symtab.NewFixture("Main").Add("a", symtab.Argument, "int").Add("b", symtab.Argument, "int")
	runBoth(t, tbl, body, 8, [][]int16{{5, 2}, {2, 5}, {3, 3}})
}

func TestDifferentialWhileLoopSumsToN(t *testing.T) {
	prog, err := ParseFragment(`
		let total = 0;
		let i = 0;
		while (i < n) {
			let total = total + i;
			let i = i + 1;
		}
		return total;
	`)
	require.NoError(t, err)
	body := ToAST(prog)

	tbl := symtab.NewFixture("Main").
		Add("n", symtab.Argument, "int").
		Add("total", symtab.Local, "int").
		Add("i", symtab.Local, "int")
	runBoth(t, tbl, body, 8, [][]int16{{0}, {1}, {5}})
}

func TestDifferentialMultiplyLowersToMathCall(t *testing.T) {
	prog, err := ParseFragment(`
		let r = a * b;
		return r;
	`)
	require.NoError(t, err)
	body := ToAST(prog)

	tbl := symtab.NewFixture("Main").Add("a", symtab.Argument, "int").Add("b", symtab.Argument, "int").Add("r", symtab.Local, "int")
	runBoth(t, tbl, body, 8, [][]int16{{3, 4}, {-2, 6}})
}

// TestDifferentialLowRegisterCountForcesSpills checks the same program still produces matching
// results when K is small enough to force the spill/promote fallback path.
func TestDifferentialLowRegisterCountForcesSpills(t *testing.T) {
	prog, err := ParseFragment(`
		let x1 = a + b;
		let x2 = x1 + a;
		let x3 = x2 + b;
		let x4 = x3 + x1;
		let x5 = x4 + x2;
		return x5;
	`)
	require.NoError(t, err)
	body := ToAST(prog)

	tbl := symtab.NewFixture("Main").Add("a", symtab.Argument, "int").Add("b", symtab.Argument, "int").
		Add("x1", symtab.Local, "int").Add("x2", symtab.Local, "int").Add("x3", symtab.Local, "int").
		Add("x4", symtab.Local, "int").Add("x5", symtab.Local, "int")
	runBoth(t, tbl, body, 2, [][]int16{{1, 2}, {10, -3}})
}

func TestParseFragmentBuildsExpectedShape(t *testing.T) {
	prog, err := ParseFragment(`let x = a + 1;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	require.NotNil(t, prog.Statements[0].Let)
	require.Equal(t, "x", prog.Statements[0].Let.Name)
}
