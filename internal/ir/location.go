package ir

import (
	"fmt"

	"jackc/internal/symtab"
)

// LocKind restricts symtab.Kind to the segments a Location can legally name. field is excluded:
// field access is always rewritten by the Flattener into address arithmetic on the instance base
// before an IR Location could ever be built for it.
type LocKind int

const (
	StaticLoc LocKind = LocKind(symtab.Static)
	ArgLoc    LocKind = LocKind(symtab.Argument)
	LocalLoc  LocKind = LocKind(symtab.Local)
)

// Indexed by the underlying symtab.Kind value, not by declaration order, so StaticLoc/ArgLoc/
// LocalLoc each land on their own name; the "field" slot is never constructed as a LocKind (see
// above) but stays in the table to keep the other three aligned.
var locKindNames = [...]string{"static", "field", "argument", "local"}

func (k LocKind) String() string {
	if int(k) < 0 || int(k) >= len(locKindNames) {
		return fmt.Sprintf("LocKind(%d)", int(k))
	}
	return locKindNames[k]
}

// Location is named storage addressed by segment kind and index: a static variable slot, an
// incoming argument slot, or a promoted stack-backed local slot. Location is an Expr, not a
// Value, so it can appear as the Expr of Eval (a load), Push, or Return, or as Store's
// destination, but never as an operand of Binary/Unary or an If/While test value without first
// being materialized into a fresh Local via Eval.
type Location struct {
	Kind  LocKind
	Index int
	Name  string // source identifier name, kept for diagnostics and assembly labelling.
}

func NewLocation(kind LocKind, index int, name string) *Location {
	return &Location{Kind: kind, Index: index, Name: name}
}

func (l *Location) ExprKind() ExprKind { return LocationExprKind }
func (l *Location) String() string {
	return fmt.Sprintf("%s[%d]<%s>", l.Kind, l.Index, l.Name)
}
