package ruletree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holloway-dev/pathgram/internal/driver"
	"github.com/holloway-dev/pathgram/internal/lexer"
	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

var (
	aKind = symbol.Kind("a")
	bKind = symbol.Kind("b")
	cKind = symbol.Kind("c")
)

func newStream(t *testing.T, src string, conds symbol.Conditions) lexer.Stream {
	t.Helper()
	def := lexer.NewDefinition()
	assert.NoError(t, def.Skip(`\s+`))
	assert.NoError(t, def.Add(aKind, `a`))
	assert.NoError(t, def.Add(bKind, `b`))
	assert.NoError(t, def.Add(cKind, `c`))
	stream, err := def.Lex(src, conds)
	assert.NoError(t, err)
	return stream
}

func TestResolve_GuardElision(t *testing.T) {
	assert := assert.New(t)

	tree := Group(
		Symbol(symbol.Terminal(aKind)),
		Guard("feature", Symbol(symbol.Terminal(bKind))),
		Symbol(symbol.Terminal(cKind)),
	)

	withoutFeature := Resolve(tree, symbol.NewConditions())
	assert.Len(withoutFeature.Children, 2, "an inactive Guard's content must be elided entirely, not just skipped at runtime")

	withFeature := Resolve(tree, symbol.NewConditions("feature"))
	assert.Len(withFeature.Children, 3)
}

func TestResolve_SelectionDegenerates(t *testing.T) {
	assert := assert.New(t)

	tree := Selection("letter",
		Guard("only-a", Symbol(symbol.Terminal(aKind))),
		Symbol(symbol.Terminal(bKind)),
	)

	resolved := Resolve(tree, symbol.NewConditions())
	assert.Equal(KindSymbol, resolved.Kind, "a Selection with exactly one surviving alternative degenerates to that alternative")
}

func TestResolve_EmptyGroupIsNoop(t *testing.T) {
	assert := assert.New(t)

	tree := Optional(Guard("never", Symbol(symbol.Terminal(aKind))))
	resolved := Resolve(tree, symbol.NewConditions())
	assert.True(IsNoop(resolved))
}

func TestCompile_MatchesSequence(t *testing.T) {
	assert := assert.New(t)
	stream := newStream(t, "a b", symbol.NewConditions())
	d := driver.New(stream, symbol.NewConditions(), nil)

	prod := Production{
		Name: "AB",
		Template: Group(
			Symbol(symbol.Terminal(aKind)),
			Symbol(symbol.Terminal(bKind)),
		),
		IsStart: true,
	}
	nt := AsNonterminal(prod)
	d.Register(nt)

	result, err := d.Parse(nt)
	assert.NoError(err)
	assert.True(result.HasCursor(stream.Len()))
}

func TestCompile_OptionalAndIteration(t *testing.T) {
	assert := assert.New(t)
	stream := newStream(t, "a b b b", symbol.NewConditions())
	d := driver.New(stream, symbol.NewConditions(), nil)

	prod := Production{
		Name: "ABStar",
		Template: Group(
			Optional(Symbol(symbol.Terminal(aKind))),
			Iteration(Symbol(symbol.Terminal(bKind))),
		),
		IsStart: true,
	}
	nt := AsNonterminal(prod)
	d.Register(nt)

	result, err := d.Parse(nt)
	assert.NoError(err)
	assert.True(result.HasCursor(stream.Len()))
}

func TestCompile_GuardAgreesWithResolve(t *testing.T) {
	// spec.md §8's guard-staticness property: resolving a Guard statically
	// (ruletree.Resolve, which AsNonterminal applies before compiling) and
	// evaluating it dynamically (combinator.Guard, reached here by compiling
	// the unresolved template directly) must accept exactly the same inputs.
	assert := assert.New(t)

	prod := Production{
		Name: "Gated",
		Template: Group(
			Symbol(symbol.Terminal(aKind)),
			Guard("feature", Symbol(symbol.Terminal(bKind))),
		),
		IsStart: true,
	}

	for _, conds := range []symbol.Conditions{symbol.NewConditions(), symbol.NewConditions("feature")} {
		src := "a"
		if conds.Has("feature") {
			src = "a b"
		}
		stream := newStream(t, src, conds)
		d := driver.New(stream, conds, nil)
		nt := AsNonterminal(prod)
		d.Register(nt)

		result, err := d.Parse(nt)
		assert.NoError(err)
		assert.True(result.HasCursor(stream.Len()))

		dynamic, err := Compile(prod.Template, prod.Ambiguous)(d, pstate.Singleton(pstate.State{Cursor: 0, PathID: "root"}))
		assert.NoError(err)
		assert.True(dynamic.HasCursor(stream.Len()))
	}
}
