package ir

import (
	"strings"

	"jackc/internal/ast"
)

// Subroutine is a single compiled Jack function/method/constructor. NumLocalSlots records the
// total number of stack slots consumed by cumulative promotion — it grows every time the
// Promoter runs, not just once.
type Subroutine struct {
	ClassName      string
	Name           string
	Kind           ast.SubroutineKind
	NumLocalSlots  int
	NumArgs        int
	Body           []Stmt
}

// QualifiedName returns the assembly label for this subroutine.
func (s *Subroutine) QualifiedName() string {
	return s.ClassName + "." + s.Name
}

// String renders the subroutine body as an indented, line-per-statement listing — useful for
// -verbose diagnostics and for tests that assert on IR shape.
func (s *Subroutine) String() string {
	sb := strings.Builder{}
	sb.WriteString("function ")
	sb.WriteString(s.QualifiedName())
	sb.WriteString(" {\n")
	writeStmts(&sb, s.Body, 1)
	sb.WriteString("}")
	return sb.String()
}

func writeStmts(sb *strings.Builder, body []Stmt, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, st := range body {
		sb.WriteString(indent)
		sb.WriteString(st.String())
		sb.WriteRune('\n')
		switch v := st.(type) {
		case *If:
			writeStmts(sb, v.Then, depth+1)
			if v.Else != nil {
				sb.WriteString(indent)
				sb.WriteString("else:\n")
				writeStmts(sb, v.Else, depth+1)
			}
		case *While:
			writeStmts(sb, v.Body, depth+1)
		}
	}
}
