// Package symbol holds the grammar's terminal and nonterminal vocabulary:
// the tagged Symbol variant dispatched by the Parser Driver, and the
// Condition set that gates lexical rules and grammar fragments.
//
// Grounded on ictiobus/types.TokenClass (the ID/Human contract for a
// terminal) and on the set of named lexer conditions ictiobus/lex exposes
// via its "state" strings, generalized here to arbitrary boolean flags per
// spec.md §3.
package symbol

import (
	"strings"

	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/util"
)

// Condition is a named boolean flag that gates grammar fragments and
// lexical rules. The two conditions the meta-grammar itself defines are
// "lexical" and "syntactic" (spec.md §4.4), but the set is open-ended.
type Condition string

// Conditions is the set of conditions active for a parse session. It is
// fixed for the lifetime of a session: read by Guard nodes and by
// Nonterminal.Start, never written once a parse begins.
type Conditions = util.KeySet[Condition]

// NewConditions builds a Conditions set from condition names.
func NewConditions(names ...string) Conditions {
	c := util.NewKeySet[Condition]()
	for _, n := range names {
		c.Add(Condition(n))
	}
	return c
}

// TokenKind identifies a terminal symbol's lexical class. Mirrors
// ictiobus/types.TokenClass's ID()/Human() split: ID is the stable
// comparison key, Human is for error messages.
type TokenKind interface {
	ID() string
	Human() string
}

type simpleKind string

func (k simpleKind) ID() string    { return strings.ToLower(string(k)) }
func (k simpleKind) Human() string { return string(k) }
func (k simpleKind) String() string { return string(k) }

// Kind returns a TokenKind whose ID is the lower-cased name and whose Human
// form is the name unmodified, the same default ictiobus/types.MakeDefaultClass
// provides.
func Kind(name string) TokenKind {
	return simpleKind(name)
}

// EndOfInput is the distinguished TokenKind signaling the end of the token
// stream has been reached.
const EndOfInput = simpleKind("$")

// Driver is the subset of the Parser Driver a Nonterminal's Descend method
// needs: the ability to recursively invoke another symbol over a Path Set,
// and read-only access to the active Conditions. Defined here rather than
// in package driver to break the import cycle a direct reference would
// otherwise create (symbol.Nonterminal.Descend needs a driver; driver needs
// symbol.Symbol to dispatch on).
type Driver interface {
	// Call dispatches a terminal or nonterminal symbol over an incoming
	// Path Set and returns the resulting Path Set, per spec.md §4.2.
	Call(sym Symbol, states pstate.Set) (pstate.Set, error)

	// CallNamed resolves name dynamically (nonterminal registry first, then
	// terminal token kind) and dispatches via Call. internal/emitter's
	// generated Descend methods call this rather than Call directly, since
	// a generated method only has the symbol's name as a literal, not a
	// bound Symbol value.
	CallNamed(name string, states pstate.Set) (pstate.Set, error)

	// Conditions returns the set of conditions active for this session.
	Conditions() Conditions
}

// variant tags which member of the Symbol union is populated.
type variant int

const (
	variantTerminal variant = iota
	variantNonterminal
)

// Nonterminal is a named grammar symbol with a descend contract: given a
// Driver and an incoming Parsing State, produce the Path Set of states that
// result from recognizing this symbol starting there.
type Nonterminal interface {
	// Name uniquely identifies the nonterminal, e.g. for registry lookup and
	// left-recursion tracking.
	Name() string

	// Start reports whether this nonterminal is a valid top symbol under the
	// given active conditions.
	Start(conds Conditions) bool

	// NonLeftRecursive reports whether the Driver may short-circuit a
	// self-reentrant call to this nonterminal at an unchanged cursor rather
	// than running the left-recursion fixpoint (spec.md §4.2, §9).
	NonLeftRecursive() bool

	// Descend computes the Path Set reachable from current by recognizing
	// this nonterminal.
	Descend(d Driver, current pstate.State) (pstate.Set, error)
}

// Symbol is the tagged Terminal/Nonterminal union spec.md §3 describes.
type Symbol struct {
	variant variant
	term    TokenKind
	nt      Nonterminal
}

// Terminal returns a Symbol wrapping a terminal token kind.
func Terminal(kind TokenKind) Symbol {
	return Symbol{variant: variantTerminal, term: kind}
}

// Nonterm returns a Symbol wrapping a nonterminal.
func Nonterm(nt Nonterminal) Symbol {
	return Symbol{variant: variantNonterminal, nt: nt}
}

// IsTerminal reports whether the Symbol is a Terminal(TokenKind).
func (s Symbol) IsTerminal() bool { return s.variant == variantTerminal }

// TermKind returns the wrapped TokenKind. Only valid when IsTerminal is true.
func (s Symbol) TermKind() TokenKind { return s.term }

// AsNonterminal returns the wrapped Nonterminal. Only valid when IsTerminal
// is false.
func (s Symbol) AsNonterminal() Nonterminal { return s.nt }

// Name returns a human-readable identity for the symbol, for diagnostics.
func (s Symbol) Name() string {
	if s.IsTerminal() {
		return s.term.Human()
	}
	return s.nt.Name()
}
