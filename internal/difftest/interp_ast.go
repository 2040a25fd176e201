package difftest

import (
	"fmt"

	"jackc/internal/ast"
)

// astEnv is the naive evaluator's variable storage: every identifier the fragment grammar can
// produce is either a Local or an Argument (symtab.Fixture never assigns Field/Static for these
// fixtures), so one flat name-keyed map suffices — there is no stack frame or memory model to
// replicate here, only the arithmetic the real machine would also do.
type astEnv map[string]int16

// returnSignal unwinds execStmts on a return statement, carrying the returned value.
type returnSignal struct{ value int16 }

// EvalAST directly walks body (no Flatten, no IR) and returns the value of the subroutine's
// return statement, given starting values for its Argument-kind identifiers. It is the oracle
// semantic-preservation tests compare the compiled path against.
func EvalAST(body []*ast.Node, args astEnv) int16 {
	env := make(astEnv, len(args))
	for k, v := range args {
		env[k] = v
	}
	result, signalled := execStmts(body, env)
	if !signalled {
		return 0
	}
	return result
}

func execStmts(body []*ast.Node, env astEnv) (int16, bool) {
	for _, n := range body {
		if v, ok := execStmt(n, env); ok {
			return v, true
		}
	}
	return 0, false
}

func execStmt(n *ast.Node, env astEnv) (ret int16, signalled bool) {
	switch n.Kind {
	case ast.LetStatement:
		d := n.Data.(*ast.LetData)
		if d.Index != nil {
			panic("difftest: EvalAST does not model arrays")
		}
		env[d.Name] = evalExpr(d.Value, env)
		return 0, false
	case ast.IfStatement:
		d := n.Data.(*ast.IfData)
		if evalExpr(d.Cond, env) != 0 {
			return execStmts(d.Then, env)
		}
		return execStmts(d.Else, env)
	case ast.WhileStatement:
		d := n.Data.(*ast.WhileData)
		for evalExpr(d.Cond, env) != 0 {
			if v, ok := execStmts(d.Body, env); ok {
				return v, true
			}
		}
		return 0, false
	case ast.DoStatement:
		d := n.Data.(*ast.DoData)
		evalExpr(d.Call, env)
		return 0, false
	case ast.ReturnStatement:
		d := n.Data.(*ast.ReturnData)
		if d.Expr == nil {
			return 0, true
		}
		return evalExpr(d.Expr, env), true
	default:
		panic(fmt.Sprintf("difftest: EvalAST cannot execute statement kind %v", n.Kind))
	}
}

func evalExpr(n *ast.Node, env astEnv) int16 {
	switch n.Kind {
	case ast.IntConst:
		return int16(n.Data.(int))
	case ast.KeywordConst:
		switch n.Data.(string) {
		case "true":
			return -1
		case "false", "null":
			return 0
		default:
			panic("difftest: EvalAST does not model `this`")
		}
	case ast.VarTerm:
		name := n.Data.(string)
		v, ok := env[name]
		if !ok {
			panic(fmt.Sprintf("difftest: EvalAST read of unbound identifier %q", name))
		}
		return v
	case ast.BinaryExpr:
		return evalBinary(n, env)
	case ast.UnaryExpr:
		return evalUnary(n, env)
	case ast.CallExpr:
		return evalCall(n, env)
	default:
		panic(fmt.Sprintf("difftest: EvalAST cannot evaluate expression kind %v", n.Kind))
	}
}

func evalBinary(n *ast.Node, env astEnv) int16 {
	d := n.Data.(*ast.BinaryData)
	l := evalExpr(n.Children[0], env)
	r := evalExpr(n.Children[1], env)
	switch d.Op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "&":
		return l & r
	case "|":
		return l | r
	case "*":
		return l * r
	case "/":
		return l / r
	case "=":
		return boolToInt(l == r)
	case "!=":
		return boolToInt(l != r)
	case "<":
		return boolToInt(l < r)
	case ">":
		return boolToInt(l > r)
	case "<=":
		return boolToInt(l <= r)
	case ">=":
		return boolToInt(l >= r)
	default:
		panic(fmt.Sprintf("difftest: EvalAST cannot evaluate operator %q", d.Op))
	}
}

func evalUnary(n *ast.Node, env astEnv) int16 {
	d := n.Data.(*ast.UnaryData)
	v := evalExpr(n.Children[0], env)
	switch d.Op {
	case "-":
		return -v
	case "~":
		return ^v
	default:
		panic(fmt.Sprintf("difftest: EvalAST cannot evaluate unary operator %q", d.Op))
	}
}

// evalCall only understands Math.multiply/divide, the two library calls the Flattener lowers '*'
// and '/' into; any other callee would need a real Memory/object model.
func evalCall(n *ast.Node, env astEnv) int16 {
	d := n.Data.(*ast.CallData)
	if d.Class != "Math" || len(n.Children) != 2 {
		panic(fmt.Sprintf("difftest: EvalAST cannot evaluate call %s.%s", d.Class, d.Name))
	}
	a := evalExpr(n.Children[0], env)
	b := evalExpr(n.Children[1], env)
	switch d.Name {
	case "multiply":
		return a * b
	case "divide":
		return a / b
	default:
		panic(fmt.Sprintf("difftest: EvalAST cannot evaluate call %s.%s", d.Class, d.Name))
	}
}

func boolToInt(b bool) int16 {
	if b {
		return -1
	}
	return 0
}
