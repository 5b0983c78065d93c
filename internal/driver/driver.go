// Package driver implements the Parser Driver (spec.md §4.2, C5): the
// dispatcher that routes Call(Symbol, PathSet) to terminal matching or to a
// Nonterminal's Descend, owns the lexer handle, enforces the
// non-left-recursive reentry guard and the left-recursion fixpoint, and
// tracks the deepest cursor reached across every branch explored so a
// boundary error can still be useful after an ambiguous parse discards most
// of what it tried.
//
// Grounded on ictiobus/parse/lr.go's parser-driver shape (a struct wrapping
// a table/grammar and exposing Parse) and on syntactic.py's free-standing
// parser.call(Symbol, state) dispatch, translated from Python's
// try/except-based recovery into Go's explicit error returns.
package driver

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/holloway-dev/pathgram/internal/lexer"
	"github.com/holloway-dev/pathgram/internal/perr"
	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/symbol"
	"github.com/holloway-dev/pathgram/internal/util"
)

// Logger receives a diagnostic record once a session's top-level Parse
// completes. internal/sessionlog.Store implements this; it is optional —
// a nil Logger means diagnostics are not recorded — and is never consulted
// by Call or Descend, only by Parse after the fact, per spec.md §5's
// shared-resource policy (the lexer cursor is the only resource a parse in
// progress touches).
type Logger interface {
	Record(rec SessionRecord) error
}

// SessionRecord is one completed top-level Parse, for diagnostics.
type SessionRecord struct {
	SessionID     string
	TopSymbol     string
	Conditions    []string
	Accepted      bool
	DeepestCursor int
	TokenCount    int
}

// Driver dispatches symbols over Path Sets and owns the token lexer handle.
// A Driver is single-use: construct one per parse session (spec.md §5).
type Driver struct {
	stream   lexer.Stream
	conds    symbol.Conditions
	registry util.SVSet[symbol.Nonterminal]
	log      Logger
	id       uuid.UUID

	deepestCursor   int
	deepestExpected map[string]bool

	// activeDescents guards non-left-recursive nonterminals against
	// unbounded self-reentry at an unchanged cursor (spec.md §4.2).
	activeDescents util.KeySet[string]

	// fixpointSeeds holds the in-progress accumulated Path Set for each
	// (nonterminal, cursor) pair currently running the left-recursion
	// fixpoint of spec.md §9. A recursive Call back into the same pair
	// reads the current seed instead of recursing further.
	fixpointSeeds map[string]pstate.Set
}

// New returns a Driver reading from stream under the given conditions. The
// conditions are normally stream.Conditions(), but callers may supply a
// different set to parse the same token sequence under hypothetical
// conditions.
func New(stream lexer.Stream, conds symbol.Conditions, log Logger) *Driver {
	return &Driver{
		stream:          stream,
		conds:           conds,
		registry:        util.NewSVSet[symbol.Nonterminal](),
		log:             log,
		id:              uuid.New(),
		deepestExpected: map[string]bool{},
		activeDescents:  util.NewKeySet[string](),
		fixpointSeeds:   map[string]pstate.Set{},
	}
}

// SessionID returns this Driver's unique session identifier.
func (d *Driver) SessionID() uuid.UUID { return d.id }

// Register adds nonterminals to the dispatch registry so they can be found
// by name (used by internal/emitter-generated code and by diagnostics; Call
// itself dispatches on the symbol.Nonterminal value directly and does not
// need the registry).
func (d *Driver) Register(nts ...symbol.Nonterminal) {
	for _, nt := range nts {
		d.registry.Set(nt.Name(), nt)
	}
}

// Lookup finds a registered nonterminal by name.
func (d *Driver) Lookup(name string) (symbol.Nonterminal, bool) {
	if !d.registry.Has(name) {
		return nil, false
	}
	return d.registry.Get(name), true
}

// Conditions returns the conditions active for this session, satisfying
// symbol.Driver.
func (d *Driver) Conditions() symbol.Conditions {
	return d.conds
}

// Call is the primitive of spec.md §4.2: dispatch sym over the incoming
// Path Set, returning the union of per-state results, or a *perr.MatchError
// if every state failed.
func (d *Driver) Call(sym symbol.Symbol, states pstate.Set) (pstate.Set, error) {
	if sym.IsTerminal() {
		return d.advanceByTerminal(states, sym.TermKind())
	}
	return d.callNonterminal(sym.AsNonterminal(), states)
}

func (d *Driver) advanceByTerminal(states pstate.Set, kind symbol.TokenKind) (pstate.Set, error) {
	out := pstate.Set{}
	anyEOI := false

	for _, st := range states.States() {
		tok, ok := d.stream.TokenAt(st.Cursor)
		if !ok {
			anyEOI = true
			d.noteFailure(st.Cursor, kind.Human())
			continue
		}
		if tok.Class().ID() == kind.ID() {
			out.Add(pstate.State{Cursor: st.Cursor + 1, PathID: st.PathID})
		} else {
			d.noteFailure(st.Cursor, kind.Human())
		}
	}

	if out.IsEmpty() {
		mkind := perr.SymbolMatch
		if anyEOI {
			mkind = perr.EndOfInput
		}
		return out, &perr.MatchError{Kind: mkind, Symbol: kind.ID(), Cursor: d.deepestCursor, Expected: []string{kind.Human()}}
	}
	return out, nil
}

// CallNamed resolves name against the registered nonterminals first,
// falling back to treating it as a terminal token kind, then dispatches via
// Call. This is what internal/emitter-generated Descend methods call:
// generator.py's _Symbol rule carries a bare symbol name resolved
// dynamically by self._process_paths rather than a bound reference, and
// CallNamed is that same late binding.
func (d *Driver) CallNamed(name string, states pstate.Set) (pstate.Set, error) {
	if nt, ok := d.Lookup(name); ok {
		return d.Call(symbol.Nonterm(nt), states)
	}
	return d.Call(symbol.Terminal(symbol.Kind(name)), states)
}

func (d *Driver) callNonterminal(nt symbol.Nonterminal, states pstate.Set) (pstate.Set, error) {
	out := pstate.Set{}

	for _, st := range states.States() {
		key := fixpointKey(nt.Name(), st.Cursor)

		if seed, ok := d.fixpointSeeds[key]; ok {
			// Reentrant call into a fixpoint already in progress: hand back
			// the current seed rather than recursing further.
			out = pstate.Union(out, seed)
			continue
		}

		var sub pstate.Set
		var err error

		if nt.NonLeftRecursive() {
			if d.activeDescents.Has(key) {
				// Unexpected self-reentry at an unchanged cursor for a
				// nonterminal that declared it would never do this:
				// short-circuit to failure rather than loop forever.
				d.noteFailure(st.Cursor, nt.Name())
				continue
			}
			d.activeDescents.Add(key)
			sub, err = nt.Descend(d, st)
			d.activeDescents.Remove(key)
		} else {
			sub, err = d.runFixpoint(nt, st, key)
		}

		if err != nil {
			continue
		}
		out = pstate.Union(out, sub)
	}

	if out.IsEmpty() {
		return out, &perr.MatchError{Kind: perr.SymbolMatch, Symbol: nt.Name(), Cursor: d.deepestCursor, Expected: []string{nt.Name()}}
	}
	return out, nil
}

// runFixpoint implements spec.md §9's seeded fixpoint for left-recursive
// nonterminals: seed the result at cursor k to empty, repeatedly descend,
// and stop when the Path Set stops growing. Termination is guaranteed
// because cursors are bounded by the token stream length (spec.md §4.3).
func (d *Driver) runFixpoint(nt symbol.Nonterminal, st pstate.State, key string) (pstate.Set, error) {
	seed := pstate.Set{}
	d.fixpointSeeds[key] = seed

	var lastErr error
	for {
		next, err := nt.Descend(d, st)
		if err != nil {
			lastErr = err
			next = pstate.Set{}
		}
		merged := pstate.Union(seed, next)
		if merged.Len() == seed.Len() {
			seed = merged
			break
		}
		seed = merged
		d.fixpointSeeds[key] = seed
	}

	delete(d.fixpointSeeds, key)

	if seed.IsEmpty() {
		if lastErr != nil {
			return seed, lastErr
		}
		return seed, &perr.MatchError{Kind: perr.SymbolMatch, Symbol: nt.Name(), Cursor: st.Cursor}
	}
	return seed, nil
}

func (d *Driver) noteFailure(cursor int, expected string) {
	if cursor > d.deepestCursor {
		d.deepestCursor = cursor
		d.deepestExpected = map[string]bool{expected: true}
	} else if cursor == d.deepestCursor {
		d.deepestExpected[expected] = true
	}
}

func (d *Driver) expectedList() []string {
	out := make([]string, 0, len(d.deepestExpected))
	for e := range d.deepestExpected {
		out = append(out, e)
	}
	return out
}

// Parse is the top-level entry point of spec.md §6:
// parse(top_symbol, conditions) -> PathSet. A non-empty result with at
// least one state at end-of-input is accepted; otherwise the deepest
// failure observed across every branch explored is reported as a boundary
// error.
func (d *Driver) Parse(top symbol.Nonterminal) (pstate.Set, error) {
	if !top.Start(d.conds) {
		return nil, fmt.Errorf("driver: %s is not a valid top symbol under the active conditions", top.Name())
	}

	d.Register(top)
	initial := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	result, err := d.Call(symbol.Nonterm(top), initial)
	accepted := err == nil && !result.IsEmpty() && result.HasCursor(d.stream.Len())

	if d.log != nil {
		condNames := make([]string, 0, d.conds.Len())
		for _, c := range d.conds.Elements() {
			condNames = append(condNames, string(c))
		}

		d.log.Record(SessionRecord{
			SessionID:     d.id.String(),
			TopSymbol:     top.Name(),
			Conditions:    condNames,
			Accepted:      accepted,
			DeepestCursor: d.deepestCursor,
			TokenCount:    d.stream.Len(),
		})
	}

	if accepted {
		return result, nil
	}
	if d.deepestCursor >= d.stream.Len() {
		return nil, &perr.UnexpectedEndOfInput{Position: d.deepestCursor}
	}
	return nil, &perr.SyntaxError{Position: d.deepestCursor, Expected: d.expectedList()}
}

func fixpointKey(name string, cursor int) string {
	return fmt.Sprintf("%s@%d", name, cursor)
}
