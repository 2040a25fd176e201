// Package difftest checks semantic preservation: a program's observed result must be the same
// whether evaluated directly off its ast.Node tree or compiled through Flatten -> spill/promote ->
// AssignK and then interpreted as a register-allocated ir.Subroutine.
//
// internal/ast has no production parser, and this package does not add one either. Instead it
// defines a deliberately tiny fragment grammar — single expressions and let/if/while/do/return
// statements over identifiers a symtab.Table has already resolved — with
// github.com/alecthomas/participle/v2. Fixtures in this package's tests build ast.Node trees
// either by parsing a short fragment through this grammar or by constructing Nodes directly.
package difftest

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// fragmentLexer tokenizes the tiny fragment language: identifiers, integer literals, the
// comparison/arithmetic operators the Flattener understands, and Jack's statement keywords.
var fragmentLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `\b(let|if|else|while|do|return|true|false|null|this)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Operator", Pattern: `<=|>=|!=|[-+*/&|<>=~]`},
	{Name: "Punct", Pattern: `[(){}\[\];,.]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// Program is the fragment grammar's top-level production: a flat list of statements making up one
// subroutine body.
type Program struct {
	Statements []*Statement `@@*`
}

type Statement struct {
	Let    *LetStmt    `(  @@`
	If     *IfStmt     ` | @@`
	While  *WhileStmt  ` | @@`
	Do     *DoStmt     ` | @@`
	Return *ReturnStmt ` | @@ )`
}

type LetStmt struct {
	Name  string `"let" @Ident`
	Index *Expr  `("[" @@ "]")?`
	Value *Expr  `"=" @@ ";"`
}

type IfStmt struct {
	Cond *Expr        `"if" "(" @@ ")"`
	Then []*Statement `"{" @@* "}"`
	Else []*Statement `("else" "{" @@* "}")?`
}

type WhileStmt struct {
	Cond *Expr        `"while" "(" @@ ")"`
	Body []*Statement `"{" @@* "}"`
}

type DoStmt struct {
	Call *CallExpr `"do" @@ ";"`
}

type ReturnStmt struct {
	Value *Expr `"return" @@? ";"`
}

// Expr is a single left-to-right binary chain: `term (op term)?`. The fragment grammar does not
// model operator precedence (every one of its test fixtures either parenthesizes explicitly or
// needs only one operator), unlike the full Jack grammar the Flattener's real caller would parse.
type Expr struct {
	Left  *Term   `@@`
	Op    *string `( @("+" | "-" | "*" | "/" | "&" | "|" | "<" | ">" | "=" | "!=" | "<=" | ">=")`
	Right *Term   `  @@ )?`
}

// Term is one unary-prefixed atom, with an optional trailing array index.
type Term struct {
	Unary *string   `@("-" | "~")?`
	Int   *int      `(  @Int`
	Call  *CallExpr ` | @@`
	Var   *string   ` | @(Ident | "true" | "false" | "null" | "this")`
	Paren *Expr     ` | "(" @@ ")" )`
	Index *Expr     `("[" @@ "]")?`
}

type CallExpr struct {
	Receiver *string  `(@Ident ".")?`
	Name     string   `@Ident`
	Args     []*Expr  `"(" (@@ ("," @@)*)? ")"`
}

// Parser is a ready-to-use fragment-grammar parser, built once at package init.
var Parser = participle.MustBuild[Program](
	participle.Lexer(fragmentLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseFragment parses src as a sequence of statements using the fragment grammar.
func ParseFragment(src string) (*Program, error) {
	return Parser.ParseString("", src)
}
