package combinator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holloway-dev/pathgram/internal/perr"
	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

// fakeDriver is a minimal symbol.Driver over a fixed token-kind sequence,
// letting these tests exercise each combinator in isolation without
// internal/driver's left-recursion machinery.
type fakeDriver struct {
	tokens []string
	conds  symbol.Conditions
}

func newFakeDriver(tokens []string, conds ...string) *fakeDriver {
	return &fakeDriver{tokens: tokens, conds: symbol.NewConditions(conds...)}
}

func (f *fakeDriver) Conditions() symbol.Conditions { return f.conds }

func (f *fakeDriver) Call(sym symbol.Symbol, states pstate.Set) (pstate.Set, error) {
	if !sym.IsTerminal() {
		return sym.AsNonterminal().Descend(f, states.States()[0])
	}
	return f.matchTerminal(sym.TermKind().ID(), states)
}

func (f *fakeDriver) CallNamed(name string, states pstate.Set) (pstate.Set, error) {
	return f.matchTerminal(name, states)
}

func (f *fakeDriver) matchTerminal(kind string, states pstate.Set) (pstate.Set, error) {
	out := pstate.Set{}
	for _, st := range states.States() {
		if st.Cursor < len(f.tokens) && f.tokens[st.Cursor] == kind {
			out.Add(pstate.State{Cursor: st.Cursor + 1, PathID: st.PathID})
		}
	}
	if out.IsEmpty() {
		return out, &perr.MatchError{Kind: perr.SymbolMatch, Symbol: kind}
	}
	return out, nil
}

func tok(kind string) symbol.Symbol {
	return symbol.Terminal(symbol.Kind(kind))
}

func TestSequence(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a", "b"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	step := Sequence(Sym(tok("a")), Sym(tok("b")))
	out, err := step(d, in)
	assert.NoError(err)
	assert.True(out.HasCursor(2))
}

func TestSequence_FailureAborts(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a", "z"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	_, err := Sequence(Sym(tok("a")), Sym(tok("b")))(d, in)
	assert.Error(err)
}

func TestOptional(t *testing.T) {
	testCases := []struct {
		name       string
		tokens     []string
		ambiguous  bool
		wantCursor int
	}{
		{name: "present, unambiguous", tokens: []string{"a"}, ambiguous: false, wantCursor: 1},
		{name: "absent, unambiguous", tokens: []string{"z"}, ambiguous: false, wantCursor: 0},
		{name: "present, ambiguous keeps both", tokens: []string{"a"}, ambiguous: true, wantCursor: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			d := newFakeDriver(tc.tokens)
			in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

			out, err := Optional(Sym(tok("a")), tc.ambiguous)(d, in)
			assert.NoError(err)
			assert.True(out.HasCursor(tc.wantCursor))
			if tc.ambiguous {
				assert.True(out.HasCursor(0), "ambiguous optional must retain the unconsumed path too")
			}
		})
	}
}

func TestOptional_Idempotent(t *testing.T) {
	// spec.md §8: applying Optional to an already-optional result changes
	// nothing further once the underlying step has nothing left to add.
	assert := assert.New(t)
	d := newFakeDriver([]string{"a"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	once, err := Optional(Sym(tok("a")), false)(d, in)
	assert.NoError(err)

	twice, err := Optional(Sym(tok("a")), false)(d, once)
	assert.NoError(err)

	assert.True(pstate.Equal(once, twice), "Optional(Optional(A)) must equal Optional(A) once nothing is left to consume")
}

func TestIteration_UnambiguousStopsAtFirstFailure(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a", "a", "a", "b"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	out, err := Iteration(Sym(tok("a")), false)(d, in)
	assert.NoError(err)
	assert.True(out.HasCursor(3))
	assert.False(out.HasCursor(4))
}

func TestIteration_AmbiguousUnionsEveryPrefix(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a", "a", "b"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	out, err := Iteration(Sym(tok("a")), true)(d, in)
	assert.NoError(err)
	assert.True(out.HasCursor(0))
	assert.True(out.HasCursor(1))
	assert.True(out.HasCursor(2))
}

func TestSelection_UnambiguousFirstMatchWins(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"b"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	out, err := Selection("letter", false, Sym(tok("a")), Sym(tok("b")))(d, in)
	assert.NoError(err)
	assert.True(out.HasCursor(1))
}

func TestSelection_NoPathError(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"z"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	_, err := Selection("letter", false, Sym(tok("a")), Sym(tok("b")))(d, in)
	var npe *perr.NoPathError
	assert.ErrorAs(err, &npe)
	assert.Equal("letter", npe.Alternative)
}

func TestSelection_AmbiguousUnionsAllMatches(t *testing.T) {
	assert := assert.New(t)
	// two paths enter the same Selection; only the first alternative matches,
	// and the union of successful alternatives carries both paths forward
	in := pstate.Of(
		pstate.State{Cursor: 0, PathID: "p-a"},
		pstate.State{Cursor: 0, PathID: "p-b"},
	)
	d := newFakeDriver([]string{"a"})

	out, err := Selection("letter", true, Sym(tok("a")), Sym(tok("b")))(d, in)
	assert.NoError(err)
	assert.True(out.HasCursor(1))
}

func TestGuard_InactiveIsNoop(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a"}, "other")
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	out, err := Guard("feature", Sym(tok("a")))(d, in)
	assert.NoError(err)
	assert.True(pstate.Equal(in, out), "an inactive Guard must pass the Path Set through unchanged")
}

func TestGuard_ActiveDescends(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a"}, "feature")
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	out, err := Guard("feature", Sym(tok("a")))(d, in)
	assert.NoError(err)
	assert.True(out.HasCursor(1))
}

func TestGuardedAlt_InactiveFailsRatherThanPassingThrough(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a"}, "other")
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	_, err := GuardedAlt("feature", Sym(tok("a")))(d, in)
	assert.Error(err, "an inactive GuardedAlt must not silently succeed as a Selection alternative")
}

func TestSymName_ResolvesAsTerminal(t *testing.T) {
	assert := assert.New(t)
	d := newFakeDriver([]string{"a"})
	in := pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"})

	out, err := SymName("a")(d, in)
	assert.NoError(err)
	assert.True(out.HasCursor(1))
}
