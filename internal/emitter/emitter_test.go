package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holloway-dev/pathgram/internal/ruletree"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

func TestEmit_SequenceProducesDescendMethod(t *testing.T) {
	assert := assert.New(t)

	prod := ruletree.Production{
		Name: "greeting",
		Template: ruletree.Group(
			ruletree.Symbol(symbol.Terminal(symbol.Kind("Hello"))),
			ruletree.Symbol(symbol.Terminal(symbol.Kind("World"))),
		),
		IsStart: true,
	}

	out := Emit(prod, symbol.NewConditions())
	assert.Contains(out, "type GreetingNonterminal struct{}")
	assert.Contains(out, `func (GreetingNonterminal) Start(conds symbol.Conditions) bool { return true }`)
	assert.Contains(out, `d.CallNamed("Hello", cur0)`)
	assert.Contains(out, `d.CallNamed("World", cur0)`)
}

func TestEmit_DisabledGuardYieldsNothing(t *testing.T) {
	assert := assert.New(t)

	prod := ruletree.Production{
		Name:     "featureOnly",
		Template: ruletree.Guard("feature", ruletree.Symbol(symbol.Terminal(symbol.Kind("X")))),
	}

	out := Emit(prod, symbol.NewConditions())
	assert.Empty(out, "a Production whose entire template is gated off must emit nothing, per generator.py's generate() returning \"\"")

	enabled := Emit(prod, symbol.NewConditions("feature"))
	assert.NotEmpty(enabled)
	assert.Contains(enabled, `d.CallNamed("X", cur0)`)
}

func TestEmit_OptionalUsesNestedScope(t *testing.T) {
	assert := assert.New(t)

	prod := ruletree.Production{
		Name:     "maybeX",
		Template: ruletree.Optional(ruletree.Symbol(symbol.Terminal(symbol.Kind("X")))),
		IsStart:  true,
	}

	out := Emit(prod, symbol.NewConditions())
	assert.Contains(out, "// optional")
	assert.Contains(out, "cur1 := cur0")
	assert.Contains(out, "cur0 = next1")
}

func TestEmit_IterationTracksFixpoint(t *testing.T) {
	assert := assert.New(t)

	prod := ruletree.Production{
		Name:     "xStar",
		Template: ruletree.Iteration(ruletree.Symbol(symbol.Terminal(symbol.Kind("X")))),
		IsStart:  true,
	}

	out := Emit(prod, symbol.NewConditions())
	assert.Contains(out, "for { // iteration")
	assert.Contains(out, "pstate.Equal(step1, cur1)")
}

func TestEmit_SelectionUnambiguousSkipsRemainingOnMatch(t *testing.T) {
	assert := assert.New(t)

	prod := ruletree.Production{
		Name: "letter",
		Template: ruletree.Selection("letter",
			ruletree.Symbol(symbol.Terminal(symbol.Kind("A"))),
			ruletree.Symbol(symbol.Terminal(symbol.Kind("B"))),
		),
		IsStart: true,
	}

	out := Emit(prod, symbol.NewConditions())
	assert.Contains(out, "!matched1 &&")
	assert.Contains(out, "perr.NoPathError{Alternative: \"letter\"}")
}

func TestEmitFile_SkipsEmptyProductions(t *testing.T) {
	assert := assert.New(t)

	active := ruletree.Production{Name: "alpha", Template: ruletree.Symbol(symbol.Terminal(symbol.Kind("A"))), IsStart: true}
	disabled := ruletree.Production{Name: "beta", Template: ruletree.Guard("off", ruletree.Symbol(symbol.Terminal(symbol.Kind("B"))))}

	out := EmitFile("generated", []ruletree.Production{active, disabled}, symbol.NewConditions())
	assert.True(strings.Contains(out, "package generated"))
	assert.Contains(out, "AlphaNonterminal")
	assert.NotContains(out, "BetaNonterminal")
}

func TestEmitFile_HeaderExplainsSkippedProductions(t *testing.T) {
	assert := assert.New(t)

	active := ruletree.Production{Name: "alpha", Template: ruletree.Symbol(symbol.Terminal(symbol.Kind("A"))), IsStart: true}
	disabled := ruletree.Production{Name: "beta", Template: ruletree.Guard("off", ruletree.Symbol(symbol.Terminal(symbol.Kind("B"))))}

	out := EmitFile("generated", []ruletree.Production{active, disabled}, symbol.NewConditions())
	lines := strings.Split(out, "\n")
	assert.NotEmpty(lines)
	assert.True(strings.HasPrefix(lines[0], "// "), "header comment must precede the package clause")
	assert.Contains(out, "beta")
	assert.True(strings.Index(out, "// ") < strings.Index(out, "package generated"))
}

func TestEmitFile_NoHeaderWhenNothingSkipped(t *testing.T) {
	assert := assert.New(t)

	active := ruletree.Production{Name: "alpha", Template: ruletree.Symbol(symbol.Terminal(symbol.Kind("A"))), IsStart: true}

	out := EmitFile("generated", []ruletree.Production{active}, symbol.NewConditions())
	assert.True(strings.HasPrefix(out, "package generated"), "no productions skipped means no explanation needed")
}

func TestToPascal(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "snake case", in: "sequence_expression", want: "SequenceExpression"},
		{name: "already pascal", in: "Grammar", want: "Grammar"},
		{name: "single word", in: "production", want: "Production"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, toPascal(tc.in))
		})
	}
}
