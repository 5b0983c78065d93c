// Package combinator implements the Path-Set transformer operators of
// spec.md §4.3: Sequence, Optional, Iteration, Selection, and Guard. Each
// combinator is a pure function from an incoming Path Set to an outgoing
// one (plus an error on total failure) — this is what internal/emitter's
// generated code and internal/metagrammar's hand-written descend methods
// are both built out of.
//
// Grounded directly on generator.py's five rule-template shapes
// (_Group/sequence, _Optional, repeat, oneof, Switch/guard) and on the
// equivalent try/except shapes in syntactic.py, translated from Python's
// raise-and-catch control flow into Go error returns per spec.md §9's
// design note (no raise/catch sentinel; a plain error return stands in for
// CompilerSyntaxError/CompilerEOIError, NoPathError reports a Selection
// with no matching alternative, and an early return of the matching
// alternative's result, not an exception, ends a Selection early).
package combinator

import (
	"github.com/holloway-dev/pathgram/internal/perr"
	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

// Step is a Path-Set transformer: the unit every combinator both consumes
// and produces, so combinators compose freely.
type Step func(d symbol.Driver, in pstate.Set) (pstate.Set, error)

// Sym returns a Step that dispatches a single symbol via the Driver,
// corresponding to generator.py's _Symbol leaf.
func Sym(sym symbol.Symbol) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		return d.Call(sym, in)
	}
}

// SymName is Sym generalized to dispatch by name rather than by a bound
// Symbol value, resolved dynamically through Driver.CallNamed. Hand-written
// descend implementations that reference each other in a cycle (as
// internal/metagrammar's 17 nonterminals do) use this instead of Sym to
// avoid a package-level initialization-order dependency.
func SymName(name string) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		return d.CallNamed(name, in)
	}
}

// Sequence chains steps left to right, each consuming the prior step's
// output. Any step's failure aborts the whole sequence — generator.py's
// _Group simply concatenates code blocks that each reassign the same
// running paths variable, which is exactly this fold.
func Sequence(steps ...Step) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		cur := in
		for _, step := range steps {
			next, err := step(d, cur)
			if err != nil {
				return pstate.Set{}, err
			}
			cur = next
		}
		return cur, nil
	}
}

// Optional implements spec.md §4.3's `[A]`: on success, the result is
// `in ∪ next` when ambiguous, else just `next`; on failure the result is
// `in` unchanged — generator.py's _Optional, with the try/except turned
// into an ignored error.
func Optional(step Step, ambiguous bool) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		next, err := step(d, in)
		if err != nil {
			return in, nil
		}
		if ambiguous {
			return pstate.Union(in, next), nil
		}
		return next, nil
	}
}

// Iteration implements spec.md §4.3's `A*`: repeatedly apply step, folding
// results by union in ambiguous mode or by replacement in unambiguous mode,
// stopping at the first failed attempt or once the Path Set stops growing
// (the latter guards against a step that matches without advancing any
// cursor; spec.md §8's monotonicity invariant is this loop's termination
// argument). Mirrors generator.py's repeat.
func Iteration(step Step, ambiguous bool) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		cur := in
		for {
			next, err := step(d, cur)
			if err != nil {
				break
			}

			var merged pstate.Set
			if ambiguous {
				merged = pstate.Union(cur, next)
			} else {
				merged = next
			}

			if pstate.Equal(merged, cur) {
				cur = merged
				break
			}
			cur = merged
		}
		return cur, nil
	}
}

// Selection implements spec.md §4.3's ordered choice `A | B | C`. In
// unambiguous mode the first alternative to yield a non-empty Path Set
// wins and the rest are not even attempted; an alternative that itself
// produced a non-empty intermediate result but then failed deeper inside
// does not preempt later alternatives, because that failure already
// surfaced as a non-nil error from the alternative as a whole (strict
// prefix check, spec.md §4.3). In ambiguous mode every alternative is
// tried and all successful results are unioned. Raises *perr.NoPathError,
// fatal to the enclosing descend, only if every alternative failed.
// Mirrors generator.py's oneof: the original's raise/catch BreakException
// for "first option matched" becomes an early return here, per spec.md §9.
func Selection(label string, ambiguous bool, alts ...Step) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		if !ambiguous {
			for _, alt := range alts {
				next, err := alt(d, in)
				if err == nil && !next.IsEmpty() {
					return next, nil
				}
			}
			return pstate.Set{}, &perr.NoPathError{Alternative: label}
		}

		out := pstate.Set{}
		matched := false
		for _, alt := range alts {
			next, err := alt(d, in)
			if err != nil {
				continue
			}
			matched = true
			out = pstate.Union(out, next)
		}
		if !matched {
			return pstate.Set{}, &perr.NoPathError{Alternative: label}
		}
		return out, nil
	}
}

// Guard implements spec.md §4.3's `@cond: A` dynamic form: the Driver
// checks membership in the active condition set before descending at all.
// When cond is inactive, A is structurally absent — the Path Set passes
// through unchanged, a no-op exactly as an empty Group would be. The
// static form (resolved once at code-generation time instead of on every
// parse) lives in internal/ruletree.Resolve; spec.md §8's guard-staticness
// property requires both forms to agree on every input.
func Guard(cond symbol.Condition, step Step) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		if !d.Conditions().Has(cond) {
			return in, nil
		}
		return step(d, in)
	}
}

// GuardedAlt wraps one alternative of a Selection so that it fails outright
// (rather than passing through unchanged) when cond is inactive. It is
// Guard's counterpart for the other context a condition check appears in
// syntactic.py: picking between mutually-exclusive alternatives (e.g. a
// "lexical" reading versus a "syntactic" reading of the same production),
// where an inactive branch must be absent from consideration, not a no-op
// success that would otherwise win a Selection trivially.
func GuardedAlt(cond symbol.Condition, step Step) Step {
	return func(d symbol.Driver, in pstate.Set) (pstate.Set, error) {
		if !d.Conditions().Has(cond) {
			return pstate.Set{}, &perr.MatchError{Kind: perr.SymbolMatch, Symbol: string(cond)}
		}
		return step(d, in)
	}
}
