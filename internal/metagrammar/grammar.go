package metagrammar

import (
	"github.com/holloway-dev/pathgram/internal/combinator"
	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

// nonterminal adapts a name plus a precomputed combinator.Step into a
// symbol.Nonterminal. None of the 17 productions below are left-recursive,
// so every one short-circuits self-reentry rather than paying for
// internal/driver's fixpoint loop.
type nonterminal struct {
	name  string
	step  combinator.Step
	start bool
}

func (n nonterminal) Name() string                         { return n.name }
func (n nonterminal) Start(conds symbol.Conditions) bool    { return n.start }
func (n nonterminal) NonLeftRecursive() bool                { return true }
func (n nonterminal) Descend(d symbol.Driver, current pstate.State) (pstate.Set, error) {
	return n.step(d, pstate.Singleton(current))
}

// Sequence of 1-of-N productions is unambiguous throughout: the
// meta-grammar describes its own syntax deterministically, so every
// combinator below runs in unambiguous (first/only match wins) mode,
// matching syntactic.py's plain variable-reassignment style (no
// GraphNode.merge_paths call appears anywhere in that file).
const ambiguous = false

var (
	grammarStep = combinator.Sequence(
		combinator.SymName("Production"),
		combinator.Iteration(combinator.SymName("Production"), ambiguous),
	)

	productionStep = combinator.Sequence(
		combinator.SymName("ProductionHeader"),
		combinator.SymName("ProductionBody"),
	)

	productionHeaderStep = combinator.Sequence(
		combinator.SymName("Identifier"),
		combinator.Guard(Lexical, combinator.Optional(combinator.SymName("Condition"), ambiguous)),
		combinator.Optional(combinator.SymName("ProductionSpecifiers"), ambiguous),
		combinator.SymName("Colon"),
	)

	productionBodyStep = combinator.Sequence(
		combinator.SymName("SelectionExpression"),
		combinator.SymName("Semicolon"),
	)

	conditionStep = combinator.Sequence(
		combinator.SymName("CommercialAt"),
		combinator.SymName("DisjunctionCondition"),
	)

	productionSpecifiersStep = combinator.Sequence(
		combinator.SymName("LeftParenthesis"),
		combinator.SymName("ProductionSpecifierList"),
		combinator.SymName("RightParenthesis"),
	)

	selectionExpressionStep = combinator.Sequence(
		combinator.SymName("SequenceExpression"),
		combinator.Iteration(
			combinator.Sequence(
				combinator.Selection("selection-expression-operator", ambiguous,
					combinator.SymName("VerticalLine"),
					combinator.GuardedAlt(Syntactic, combinator.SymName("Solidus")),
				),
				combinator.SymName("SequenceExpression"),
			),
			ambiguous,
		),
	)

	disjunctionConditionStep = combinator.Sequence(
		combinator.SymName("ConjunctionCondition"),
		combinator.Iteration(
			combinator.Sequence(combinator.SymName("DoubleVerticalLine"), combinator.SymName("ConjunctionCondition")),
			ambiguous,
		),
	)

	productionSpecifierListStep = combinator.Sequence(
		combinator.SymName("ProductionSpecifier"),
		combinator.Iteration(
			combinator.Sequence(combinator.SymName("Comma"), combinator.SymName("ProductionSpecifier")),
			ambiguous,
		),
	)

	sequenceExpressionStep = combinator.Selection("sequence-expression", ambiguous,
		combinator.GuardedAlt(Lexical, combinator.Sequence(
			combinator.SymName("IterationExpression"),
			combinator.Iteration(combinator.SymName("IterationExpression"), ambiguous),
		)),
		combinator.GuardedAlt(Syntactic, combinator.Sequence(
			combinator.SymName("PrimaryExpression"),
			combinator.Iteration(combinator.SymName("PrimaryExpression"), ambiguous),
		)),
	)

	conjunctionConditionStep = combinator.Sequence(
		combinator.SymName("NegationCondition"),
		combinator.Iteration(
			combinator.Sequence(combinator.SymName("DoubleAmpersand"), combinator.SymName("NegationCondition")),
			ambiguous,
		),
	)

	productionSpecifierStep = combinator.Sequence(
		combinator.Selection("production-specifier", ambiguous,
			combinator.GuardedAlt(Lexical, combinator.Selection("lexical-specifier", ambiguous,
				combinator.Sequence(
					combinator.Selection("specifier-sign", ambiguous, combinator.SymName("PlusSign"), combinator.SymName("HyphenMinus")),
					combinator.SymName("Identifier"),
				),
				combinator.SymName("Ignore"),
			)),
			combinator.GuardedAlt(Syntactic, combinator.SymName("Start")),
		),
		combinator.Optional(combinator.SymName("Condition"), ambiguous),
	)

	iterationExpressionStep = combinator.Selection("iteration-expression", ambiguous,
		combinator.GuardedAlt(Lexical, combinator.Sequence(
			combinator.SymName("PrimaryExpression"),
			combinator.Optional(combinator.Selection("iteration-postfix", ambiguous,
				combinator.SymName("Asterisk"),
				combinator.SymName("PlusSign"),
				combinator.SymName("QuestionMark"),
				combinator.SymName("ExpressionRange"),
			), ambiguous),
		)),
		combinator.GuardedAlt(Syntactic, combinator.Sequence(
			combinator.Selection("iteration-brace-open", ambiguous, combinator.SymName("LeftCurlyBracket"), combinator.SymName("LeftCurlyBracketSolidus")),
			combinator.SymName("SelectionExpression"),
			combinator.SymName("RightCurlyBracket"),
		)),
	)

	primaryExpressionStep = combinator.Selection("primary-expression", ambiguous,
		combinator.GuardedAlt(Lexical, combinator.Selection("lexical-primary", ambiguous,
			combinator.SymName("OrdChar"),
			combinator.SymName("QuotedChar"),
			combinator.SymName("FullStop"),
			combinator.SymName("BracketExpression"),
		)),
		combinator.GuardedAlt(Syntactic, combinator.Sequence(
			combinator.SymName("Identifier"),
			combinator.Optional(combinator.SymName("Condition"), ambiguous),
		)),
		combinator.Sequence(
			combinator.SymName("LeftParenthesis"),
			combinator.SymName("SelectionExpression"),
			combinator.SymName("RightParenthesis"),
			combinator.Guard(Syntactic, combinator.Optional(combinator.SymName("Condition"), ambiguous)),
		),
		combinator.GuardedAlt(Syntactic, combinator.Sequence(
			combinator.Selection("primary-suffix", ambiguous, combinator.SymName("OptionalExpression"), combinator.SymName("IterationExpression")),
			combinator.Optional(combinator.SymName("Condition"), ambiguous),
		)),
	)

	negationConditionStep = combinator.Sequence(
		combinator.Iteration(combinator.SymName("ExclamationMark"), ambiguous),
		combinator.SymName("PrimitiveCondition"),
	)

	optionalExpressionStep = combinator.Sequence(
		combinator.Selection("optional-bracket-open", ambiguous, combinator.SymName("LeftSquareBracket"), combinator.SymName("LeftSquareBracketSolidus")),
		combinator.SymName("SelectionExpression"),
		combinator.SymName("RightSquareBracket"),
	)

	primitiveConditionStep = combinator.Selection("primitive-condition", ambiguous,
		combinator.SymName("Identifier"),
		combinator.Sequence(combinator.SymName("LeftParenthesis"), combinator.SymName("DisjunctionCondition"), combinator.SymName("RightParenthesis")),
	)
)

// Nonterminals returns the 17 productions of the grammar meta-language,
// ready to be registered with a driver.Driver, in the same order
// syntactic.py's Parser.NONTERMINAL_TYPES lists them.
func Nonterminals() []symbol.Nonterminal {
	return []symbol.Nonterminal{
		nonterminal{name: "Grammar", step: grammarStep, start: true},
		nonterminal{name: "Production", step: productionStep},
		nonterminal{name: "ProductionHeader", step: productionHeaderStep},
		nonterminal{name: "ProductionBody", step: productionBodyStep},
		nonterminal{name: "Condition", step: conditionStep},
		nonterminal{name: "ProductionSpecifiers", step: productionSpecifiersStep},
		nonterminal{name: "SelectionExpression", step: selectionExpressionStep},
		nonterminal{name: "DisjunctionCondition", step: disjunctionConditionStep},
		nonterminal{name: "ProductionSpecifierList", step: productionSpecifierListStep},
		nonterminal{name: "SequenceExpression", step: sequenceExpressionStep},
		nonterminal{name: "ConjunctionCondition", step: conjunctionConditionStep},
		nonterminal{name: "ProductionSpecifier", step: productionSpecifierStep},
		nonterminal{name: "IterationExpression", step: iterationExpressionStep},
		nonterminal{name: "PrimaryExpression", step: primaryExpressionStep},
		nonterminal{name: "NegationCondition", step: negationConditionStep},
		nonterminal{name: "OptionalExpression", step: optionalExpressionStep},
		nonterminal{name: "PrimitiveCondition", step: primitiveConditionStep},
	}
}

// Grammar is the top symbol of the meta-language, exported for callers that
// want to invoke driver.Driver.Parse directly instead of using Parse below.
var Grammar = Nonterminals()[0]
