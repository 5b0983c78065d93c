// Package pstate holds the live frontier of a generalized parse: the set of
// token-stream positions ("paths") a parse is simultaneously considering.
//
// Grounded on the map-of-sets shape ictiobus/types.TokenStream callers build
// around (a cursor-indexed view over a token sequence) and on
// internal/util's KeySet family for the value-semantic dedup that a Set
// needs at each cursor.
package pstate

import (
	"fmt"
	"sort"
	"strings"
)

// State is a single live parse position: a cursor into the token stream plus
// the identity of the derivation branch ("path") that reached it. Two States
// are equal only if both fields match; this is what lets two branches that
// reconverge at the same cursor under different paths stay distinct until a
// combinator explicitly merges them.
type State struct {
	Cursor int
	PathID string
}

func (s State) String() string {
	return fmt.Sprintf("(%d,%s)", s.Cursor, s.PathID)
}

// Set is a Path Set: all currently-live States, keyed first by cursor
// position and then by path ID. Keying by cursor first is what makes
// reconvergence merges O(1) — two branches that land on the same token
// offset collide in the same inner map instead of requiring an O(n) scan of
// a flat collection.
type Set map[int]map[string]State

// Singleton returns a fresh Set containing exactly one State.
func Singleton(st State) Set {
	return Set{st.Cursor: {st.PathID: st}}
}

// Of builds a Set out of a list of explicit states, useful in tests and at
// the top of a descend call where the incoming set is already known.
func Of(states ...State) Set {
	s := Set{}
	for _, st := range states {
		s.Add(st)
	}
	return s
}

// Add inserts a State into the Set, deduplicating by (cursor, path ID).
func (s Set) Add(st State) {
	byPath, ok := s[st.Cursor]
	if !ok {
		byPath = map[string]State{}
		s[st.Cursor] = byPath
	}
	byPath[st.PathID] = st
}

// Union returns the set-union of any number of Path Sets, deduplicating by
// state equality (cursor, path ID) as they are merged.
func Union(sets ...Set) Set {
	out := Set{}
	for _, s := range sets {
		for cursor, byPath := range s {
			dest, ok := out[cursor]
			if !ok {
				dest = map[string]State{}
				out[cursor] = dest
			}
			for pathID, st := range byPath {
				dest[pathID] = st
			}
		}
	}
	return out
}

// IsEmpty reports whether the Path Set has no live states. An empty Path
// Set is how the engine signals failure of the combinator that produced it.
func (s Set) IsEmpty() bool {
	for _, byPath := range s {
		if len(byPath) > 0 {
			return false
		}
	}
	return true
}

// Len returns the total number of live States across every cursor.
func (s Set) Len() int {
	n := 0
	for _, byPath := range s {
		n += len(byPath)
	}
	return n
}

// States returns every live State in the set, in an arbitrary but stable
// (cursor-then-path-ID) order, for iteration and for test assertions.
func (s Set) States() []State {
	cursors := make([]int, 0, len(s))
	for c := range s {
		cursors = append(cursors, c)
	}
	sort.Ints(cursors)

	out := make([]State, 0, s.Len())
	for _, c := range cursors {
		byPath := s[c]
		paths := make([]string, 0, len(byPath))
		for p := range byPath {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			out = append(out, byPath[p])
		}
	}
	return out
}

// Cursors returns the distinct cursor positions with at least one live
// state, sorted ascending. A Selection or Iteration that wants to know "did
// we make progress" compares this list across iterations.
func (s Set) Cursors() []int {
	out := make([]int, 0, len(s))
	for c, byPath := range s {
		if len(byPath) > 0 {
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return out
}

// HasCursor reports whether any live state sits at the given cursor — used
// to detect acceptance (a state at end-of-input) per spec.md §6.
func (s Set) HasCursor(cursor int) bool {
	byPath, ok := s[cursor]
	if !ok {
		return false
	}
	return len(byPath) > 0
}

// Equal reports whether a and b contain exactly the same States. Used by
// Iteration to detect a fixpoint (no new states added this pass) and by the
// optional-idempotence test of spec.md §8.
func Equal(a, b Set) bool {
	if a.Len() != b.Len() {
		return false
	}
	for cursor, byPath := range a {
		otherByPath, ok := b[cursor]
		if !ok || len(otherByPath) != len(byPath) {
			return false
		}
		for pathID := range byPath {
			if _, ok := otherByPath[pathID]; !ok {
				return false
			}
		}
	}
	return true
}

func (s Set) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	states := s.States()
	for i, st := range states {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(st.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
