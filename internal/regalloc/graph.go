// Package regalloc builds the interference graph over a Subroutine's Locals, colours it with a
// bounded number of register classes, and substitutes the winning colour (or a further spill) for
// every Local in the body. The colourer is a single forward pass: visit vertices in first-use
// order, assign each the lowest colour index not already forbidden by a coloured neighbour.
package regalloc

import (
	"jackc/internal/ir"
	"jackc/internal/liveness"
)

// Graph is an undirected interference graph over *ir.Local vertices: an edge means the two
// Locals are simultaneously live and so cannot share a register.
type Graph struct {
	order []*ir.Local
	seen  map[*ir.Local]bool
	adj   map[*ir.Local]map[*ir.Local]bool
}

func newGraph() *Graph {
	return &Graph{seen: map[*ir.Local]bool{}, adj: map[*ir.Local]map[*ir.Local]bool{}}
}

func (g *Graph) addVertex(l *ir.Local) {
	if l == nil || g.seen[l] {
		return
	}
	g.seen[l] = true
	g.order = append(g.order, l)
	g.adj[l] = map[*ir.Local]bool{}
}

func (g *Graph) addEdge(a, b *ir.Local) {
	if a == nil || b == nil || a == b {
		return
	}
	g.addVertex(a)
	g.addVertex(b)
	g.adj[a][b] = true
	g.adj[b][a] = true
}

// Order returns the graph's vertices in first-appearance order. The colourer visits vertices in
// this order, which is what makes a given Subroutine's allocation reproducible across runs.
func (g *Graph) Order() []*ir.Local { return g.order }

// Neighbors returns l's adjacency set.
func (g *Graph) Neighbors(l *ir.Local) map[*ir.Local]bool { return g.adj[l] }

// Build walks every statement sub's body reaches — including nested If/While branches — and adds
// a clique over each statement's before set: the Locals that must be live, and therefore held in
// distinct storage, at that point. A While's own tested Local is added as a vertex explicitly,
// since it may not otherwise be live at its body's start (e.g. a loop whose body never re-reads
// or re-writes the Local it tests) and so would never appear in any statement's before set. An
// Eval whose destination Local is not live after it likewise adds that Local, with an edge to each
// Local that is, so a value that is never read still gets a register that clobbers nothing live.
func Build(sub *ir.Subroutine, live *liveness.Result) *Graph {
	g := newGraph()
	walkAll(sub.Body, func(st ir.Stmt) {
		if w, ok := st.(*ir.While); ok {
			g.addVertex(asLocal(w.Value))
		}
		ann := live.Of(st)
		if ann == nil {
			return
		}
		locals := ann.Before.Slice()
		for i := range locals {
			g.addVertex(locals[i])
			for j := i + 1; j < len(locals); j++ {
				g.addEdge(locals[i], locals[j])
			}
		}
		if ev, ok := st.(*ir.Eval); ok {
			if d := asLocal(ev.Dest); d != nil && !ann.After.Has(d) {
				g.addVertex(d)
				for _, l := range ann.After.Slice() {
					g.addEdge(d, l)
				}
			}
		}
	})
	return g
}

// asLocal returns v as a *ir.Local, or nil if v is some other Value kind (a Const or an
// already-allocated Reg, neither of which is a graph vertex).
func asLocal(v ir.Value) *ir.Local {
	l, _ := v.(*ir.Local)
	return l
}

func walkAll(body []ir.Stmt, visit func(ir.Stmt)) {
	for _, st := range body {
		visit(st)
		switch v := st.(type) {
		case *ir.If:
			walkAll(v.Then, visit)
			if v.Else != nil {
				walkAll(v.Else, visit)
			}
		case *ir.While:
			walkAll(v.Test, visit)
			walkAll(v.Body, visit)
		}
	}
}
