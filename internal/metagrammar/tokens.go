// Package metagrammar is the hand-written bootstrap parser of spec.md
// §4.4: a recursive-descent recognizer for the grammar meta-language that
// internal/ruletree.Production values (and therefore internal/emitter
// output) are themselves ultimately derived from. It is built out of the
// very same internal/combinator Steps a generated Descend method would use
// — this package and internal/ruletree/internal/emitter are two
// presentations of one engine per spec.md §9's open question, and this one
// simply writes the Step wiring by hand instead of generating it.
//
// Grounded 1:1 on syntactic.py's 17 TransmuterNonterminalType subclasses
// (Grammar, Production, ProductionHeader, ProductionBody, Condition,
// ProductionSpecifiers, SelectionExpression, DisjunctionCondition,
// ProductionSpecifierList, SequenceExpression, ConjunctionCondition,
// ProductionSpecifier, IterationExpression, PrimaryExpression,
// NegationCondition, OptionalExpression, PrimitiveCondition) and on the
// lexical token vocabulary named in its import list (lexical.py itself was
// not part of the retrieved source, so the regexes in lexer.go are this
// package's own reconstruction of what each named token plausibly matches,
// noted in DESIGN.md).
package metagrammar

import "github.com/holloway-dev/pathgram/internal/symbol"

// Token kinds for the grammar meta-language, named identically to
// syntactic.py's lexical imports.
var (
	Whitespace              = symbol.Kind("Whitespace")
	Identifier              = symbol.Kind("Identifier")
	Colon                   = symbol.Kind("Colon")
	Semicolon               = symbol.Kind("Semicolon")
	CommercialAt            = symbol.Kind("CommercialAt")
	LeftParenthesis         = symbol.Kind("LeftParenthesis")
	RightParenthesis        = symbol.Kind("RightParenthesis")
	VerticalLine            = symbol.Kind("VerticalLine")
	Solidus                 = symbol.Kind("Solidus")
	DoubleVerticalLine      = symbol.Kind("DoubleVerticalLine")
	Comma                   = symbol.Kind("Comma")
	DoubleAmpersand         = symbol.Kind("DoubleAmpersand")
	PlusSign                = symbol.Kind("PlusSign")
	HyphenMinus             = symbol.Kind("HyphenMinus")
	Ignore                  = symbol.Kind("Ignore")
	Start                   = symbol.Kind("Start")
	Asterisk                = symbol.Kind("Asterisk")
	QuestionMark            = symbol.Kind("QuestionMark")
	ExpressionRange         = symbol.Kind("ExpressionRange")
	LeftCurlyBracket        = symbol.Kind("LeftCurlyBracket")
	LeftCurlyBracketSolidus = symbol.Kind("LeftCurlyBracketSolidus")
	RightCurlyBracket       = symbol.Kind("RightCurlyBracket")
	OrdChar                 = symbol.Kind("OrdChar")
	QuotedChar              = symbol.Kind("QuotedChar")
	FullStop                = symbol.Kind("FullStop")
	BracketExpression       = symbol.Kind("BracketExpression")
	ExclamationMark         = symbol.Kind("ExclamationMark")
	LeftSquareBracket       = symbol.Kind("LeftSquareBracket")
	LeftSquareBracketSolidus = symbol.Kind("LeftSquareBracketSolidus")
	RightSquareBracket      = symbol.Kind("RightSquareBracket")
)

// Lexical and Syntactic are the two Conditions spec.md §4.4 says the
// meta-grammar's own productions are written under: a grammar file mixes
// lexical productions (describing token shapes, read character-by-character)
// and syntactic productions (describing token sequences), distinguished by
// which of these two conditions is active while that production is parsed.
const (
	Lexical   = symbol.Condition("lexical")
	Syntactic = symbol.Condition("syntactic")
)
