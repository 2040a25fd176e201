package compile

import (
	"strings"
	"testing"

	"jackc/internal/ast"
	"jackc/internal/symtab"

	"github.com/stretchr/testify/assert"
)

func TestRunEmitsBootstrapAndSubroutineLabel(t *testing.T) {
	tbl := symtab.NewFixture("Main")
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "main",
		Kind:      ast.Function,
		Body: []*ast.Node{
			{Kind: ast.ReturnStatement, Data: &ast.ReturnData{}},
		},
	}
	classes := []ClassUnit{
		{Name: "Main", Subroutines: []SubroutineUnit{{Info: info, Table: tbl}}},
	}

	out := Run(classes, DefaultOptions())
	assert.Contains(t, out, "(Main.main)")
	assert.Contains(t, out, "(__call)")
	assert.Contains(t, out, "(__return)")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "//"), "bootstrap opens with a comment")
}

func TestRunHonorsRegistersOverride(t *testing.T) {
	tbl := symtab.NewFixture("Main")
	info := &ast.SubroutineInfo{
		ClassName: "Main",
		Name:      "f",
		Kind:      ast.Function,
		Body:      []*ast.Node{{Kind: ast.ReturnStatement, Data: &ast.ReturnData{}}},
	}
	classes := []ClassUnit{
		{Name: "Main", Subroutines: []SubroutineUnit{{Info: info, Table: tbl}}},
	}

	opts := DefaultOptions()
	opts.Registers = 1
	out := Run(classes, opts)
	assert.Contains(t, out, "(Main.f)")
}
