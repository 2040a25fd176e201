package difftest

import (
	"unicode"

	"jackc/internal/ast"
)

func isClassName(s string) bool {
	return len(s) > 0 && unicode.IsUpper(rune(s[0]))
}

// ToAST lowers a parsed fragment Program into the statement list internal/ast's Flattener
// consumes. The fragment grammar has no fields or strings; it does accept array indexing, which
// ToAST lowers to an ArrayTerm or an indexed LetData even though neither interpreter executes
// those (both panic on arrays, having no memory model). ToAST itself panics only on an empty
// grammar alternative or an index applied to something other than an identifier.
func ToAST(p *Program) []*ast.Node {
	return convertStmts(p.Statements)
}

func convertStmts(stmts []*Statement) []*ast.Node {
	out := make([]*ast.Node, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, convertStmt(s))
	}
	return out
}

func convertStmt(s *Statement) *ast.Node {
	switch {
	case s.Let != nil:
		return &ast.Node{Kind: ast.LetStatement, Data: &ast.LetData{
			Name:  s.Let.Name,
			Index: convertOptionalExpr(s.Let.Index),
			Value: convertExpr(s.Let.Value),
		}}
	case s.If != nil:
		return &ast.Node{Kind: ast.IfStatement, Data: &ast.IfData{
			Cond: convertExpr(s.If.Cond),
			Then: convertStmts(s.If.Then),
			Else: convertStmtsOrNil(s.If.Else),
		}}
	case s.While != nil:
		return &ast.Node{Kind: ast.WhileStatement, Data: &ast.WhileData{
			Cond: convertExpr(s.While.Cond),
			Body: convertStmts(s.While.Body),
		}}
	case s.Do != nil:
		return &ast.Node{Kind: ast.DoStatement, Data: &ast.DoData{Call: convertCall(s.Do.Call)}}
	case s.Return != nil:
		return &ast.Node{Kind: ast.ReturnStatement, Data: &ast.ReturnData{Expr: convertOptionalExpr(s.Return.Value)}}
	default:
		panic("difftest: empty Statement alternative")
	}
}

func convertStmtsOrNil(stmts []*Statement) []*ast.Node {
	if stmts == nil {
		return nil
	}
	return convertStmts(stmts)
}

func convertOptionalExpr(e *Expr) *ast.Node {
	if e == nil {
		return nil
	}
	return convertExpr(e)
}

func convertExpr(e *Expr) *ast.Node {
	left := convertTerm(e.Left)
	if e.Op == nil {
		return left
	}
	right := convertTerm(e.Right)
	return &ast.Node{
		Kind:     ast.BinaryExpr,
		Data:     &ast.BinaryData{Op: *e.Op},
		Children: []*ast.Node{left, right},
	}
}

func convertTerm(t *Term) *ast.Node {
	atom := convertAtom(t)
	if t.Index != nil {
		if atom.Kind != ast.VarTerm {
			panic("difftest: array index applied to a non-identifier term")
		}
		atom = &ast.Node{Kind: ast.ArrayTerm, Data: atom.Data, Children: []*ast.Node{convertExpr(t.Index)}}
	}
	if t.Unary == nil {
		return atom
	}
	return &ast.Node{Kind: ast.UnaryExpr, Data: &ast.UnaryData{Op: *t.Unary}, Children: []*ast.Node{atom}}
}

func convertAtom(t *Term) *ast.Node {
	switch {
	case t.Int != nil:
		return &ast.Node{Kind: ast.IntConst, Data: *t.Int}
	case t.Call != nil:
		return convertCall(t.Call)
	case t.Var != nil:
		switch *t.Var {
		case "true", "false", "null", "this":
			return &ast.Node{Kind: ast.KeywordConst, Data: *t.Var}
		default:
			return &ast.Node{Kind: ast.VarTerm, Data: *t.Var}
		}
	case t.Paren != nil:
		return convertExpr(t.Paren)
	default:
		panic("difftest: empty Term alternative")
	}
}

// convertCall distinguishes a class-qualified static call (`Math.multiply(...)`) from a call
// through a variable receiver (`p.distance(...)`) the same way Jack's own compiler does: by the
// capitalization of the qualifier, since both are lexically identical "Ident . Ident (...)" shapes.
func convertCall(c *CallExpr) *ast.Node {
	var recv *ast.Node
	isMethod := false
	class := c.Name
	if c.Receiver != nil {
		class = *c.Receiver
		if !isClassName(*c.Receiver) {
			isMethod = true
			recv = &ast.Node{Kind: ast.VarTerm, Data: *c.Receiver}
		}
	}
	args := make([]*ast.Node, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, convertExpr(a))
	}
	return &ast.Node{
		Kind:     ast.CallExpr,
		Data:     &ast.CallData{Class: class, Name: c.Name, Receiver: recv, IsMethod: isMethod},
		Children: args,
	}
}
