// Package ruletree is the Grammar Rule Tree of spec.md §3/§6: the
// declarative, tagged-variant representation that both internal/emitter (a
// code generator) and this package's own Compile function (a direct
// interpreter) consume. Keeping both presentations over the same tree type
// is the resolution of spec.md §9's open question — a Rule Tree plus
// interpreter and a Rule Tree plus emitter are mechanical projections of
// each other, so this package builds the tree once and lets either
// consumer walk it.
//
// Grounded on generator.py's five _Rule subclasses (_Group, _Optional,
// repeat, oneof, Switch) and _Rule.get's template-literal normalization
// (bare name -> symbol, tuple -> Group, list -> Optional), reimplemented as
// a Go tagged struct rather than a class hierarchy per spec.md §9's
// "dynamic dispatch over rule nodes ... implement with a tagged sum and
// exhaustive case analysis rather than open polymorphism" design note.
package ruletree

import (
	"github.com/holloway-dev/pathgram/internal/combinator"
	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

// Kind tags which variant of spec.md §3's Rule Tree Node a Node is.
type Kind int

const (
	KindSymbol Kind = iota
	KindGroup
	KindOptional
	KindSelection
	KindIteration
	KindGuard
)

// Node is the tagged Rule Tree Node. Only the fields relevant to Kind are
// meaningful: Sym for KindSymbol, Children for every compound kind, Cond
// and a single child in Children for KindGuard, Label for KindSelection
// (used only for diagnostics).
type Node struct {
	Kind     Kind
	Sym      symbol.Symbol
	Children []Node
	Cond     symbol.Condition
	Label    string
}

// Symbol builds a Symbol(name) leaf — generator.py's bare-string template.
func Symbol(sym symbol.Symbol) Node {
	return Node{Kind: KindSymbol, Sym: sym}
}

// Group builds a sequence node — generator.py's tuple template / _Group.
func Group(children ...Node) Node {
	return Node{Kind: KindGroup, Children: children}
}

// Optional builds a zero-or-one node — generator.py's list template /
// _Optional.
func Optional(children ...Node) Node {
	return Node{Kind: KindOptional, Children: children}
}

// Iteration builds a zero-or-more node — generator.py's repeat(...).
func Iteration(children ...Node) Node {
	return Node{Kind: KindIteration, Children: children}
}

// Selection builds an ordered-choice node — generator.py's oneof(...).
// label is used only in diagnostics (the name of the alternative set, for
// NoPathError messages).
func Selection(label string, alts ...Node) Node {
	return Node{Kind: KindSelection, Label: label, Children: alts}
}

// Guard builds a compile-time-or-parse-time activation node — generator.py's
// Switch, generalized from a fixed `enabled` class attribute to an
// arbitrary named Condition checked against a live Conditions set.
func Guard(cond symbol.Condition, body Node) Node {
	return Node{Kind: KindGuard, Cond: cond, Children: []Node{body}}
}

// isEmpty reports whether a node has already collapsed to the canonical
// no-op shape: an empty Group.
func isEmpty(n Node) bool {
	return n.Kind == KindGroup && len(n.Children) == 0
}

// IsNoop is the exported form of isEmpty, used by internal/emitter to
// decide whether a resolved Production has anything left to generate at
// all — generator.py's ProductionTemplate.generate returns "" for exactly
// this case (a Switch-guarded template disabled outright, or one whose
// rules filtered down to nothing).
func IsNoop(n Node) bool {
	return isEmpty(n)
}

// Resolve statically resolves every Guard node in the tree against conds,
// and applies spec.md §3's invariants: a Group or Selection with zero
// enabled children is elided (collapsed to an empty Group, the canonical
// no-op), and a Selection with exactly one enabled child degenerates to
// that child. The result contains no KindGuard nodes.
//
// Resolving statically (here) versus dynamically (combinator.Guard,
// checked by the Driver on every Call) must give identical parse results
// for any fixed Conditions — that is spec.md §8's guard-staticness
// property, and is exercised by this package's
// TestCompile_GuardAgreesWithResolve.
func Resolve(n Node, conds symbol.Conditions) Node {
	switch n.Kind {
	case KindSymbol:
		return n

	case KindGuard:
		if !conds.Has(n.Cond) {
			return Node{Kind: KindGroup}
		}
		if len(n.Children) == 0 {
			return Node{Kind: KindGroup}
		}
		return Resolve(n.Children[0], conds)

	case KindGroup:
		kept := resolveChildren(n.Children, conds)
		return Node{Kind: KindGroup, Children: kept}

	case KindOptional:
		kept := resolveChildren(n.Children, conds)
		if len(kept) == 0 {
			return Node{Kind: KindGroup}
		}
		return Node{Kind: KindOptional, Children: kept}

	case KindIteration:
		kept := resolveChildren(n.Children, conds)
		if len(kept) == 0 {
			return Node{Kind: KindGroup}
		}
		return Node{Kind: KindIteration, Children: kept}

	case KindSelection:
		kept := resolveChildren(n.Children, conds)
		switch len(kept) {
		case 0:
			return Node{Kind: KindGroup}
		case 1:
			return kept[0]
		default:
			return Node{Kind: KindSelection, Label: n.Label, Children: kept}
		}
	}

	return n
}

func resolveChildren(children []Node, conds symbol.Conditions) []Node {
	var kept []Node
	for _, c := range children {
		rc := Resolve(c, conds)
		if isEmpty(rc) {
			continue
		}
		kept = append(kept, rc)
	}
	return kept
}

// Compile interprets a (already-resolved, or not — Guard nodes are handled
// dynamically via combinator.Guard if present) Rule Tree directly into a
// combinator.Step, giving a working parser for a Production without ever
// generating source code. This is the "Rule Tree + interpreter" half of
// spec.md §9's two presentations; internal/emitter is the other half.
func Compile(n Node, ambiguous bool) combinator.Step {
	switch n.Kind {
	case KindSymbol:
		return combinator.Sym(n.Sym)

	case KindGroup:
		steps := make([]combinator.Step, len(n.Children))
		for i, c := range n.Children {
			steps[i] = Compile(c, ambiguous)
		}
		return combinator.Sequence(steps...)

	case KindOptional:
		return combinator.Optional(compileBody(n.Children, ambiguous), ambiguous)

	case KindIteration:
		return combinator.Iteration(compileBody(n.Children, ambiguous), ambiguous)

	case KindSelection:
		alts := make([]combinator.Step, len(n.Children))
		for i, c := range n.Children {
			alts[i] = Compile(c, ambiguous)
		}
		return combinator.Selection(n.Label, ambiguous, alts...)

	case KindGuard:
		var body combinator.Step
		if len(n.Children) == 0 {
			body = noop
		} else {
			body = Compile(n.Children[0], ambiguous)
		}
		return combinator.Guard(n.Cond, body)
	}
	return noop
}

func compileBody(children []Node, ambiguous bool) combinator.Step {
	return Compile(Node{Kind: KindGroup, Children: children}, ambiguous)
}

func noop(_ symbol.Driver, in pstate.Set) (pstate.Set, error) {
	return in, nil
}

// Production pairs a Rule Tree with the per-nonterminal flags generator.py
// attaches to a ProductionTemplate subclass: whether the grammar is
// ambiguous, whether this nonterminal may be left-recursive, and whether it
// is a valid top (start) symbol.
type Production struct {
	Name          string
	Template      Node
	Ambiguous     bool
	LeftRecursive bool
	IsStart       bool
}

type asNonterminal struct {
	p Production
}

// AsNonterminal adapts a Production into a symbol.Nonterminal whose
// Descend statically resolves Guards against the active Conditions and
// interprets the result via Compile — i.e. a Rule-Tree-backed nonterminal
// that needs no generated code at all.
func AsNonterminal(p Production) symbol.Nonterminal {
	return asNonterminal{p: p}
}

func (a asNonterminal) Name() string { return a.p.Name }

func (a asNonterminal) Start(conds symbol.Conditions) bool { return a.p.IsStart }

func (a asNonterminal) NonLeftRecursive() bool { return !a.p.LeftRecursive }

func (a asNonterminal) Descend(d symbol.Driver, current pstate.State) (pstate.Set, error) {
	resolved := Resolve(a.p.Template, d.Conditions())
	step := Compile(resolved, a.p.Ambiguous)
	return step(d, pstate.Singleton(current))
}
