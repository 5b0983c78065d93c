package metagrammar

import "github.com/holloway-dev/pathgram/internal/lexer"

// NewLexicalDefinition builds the lexer.Definition for the grammar
// meta-language. Keyword rules (Ignore, Start) are registered ahead of the
// general Identifier rule so that, on a length tie, the keyword wins per
// internal/lexer's maximal-munch-then-first-registered tie-break.
func NewLexicalDefinition() *lexer.Definition {
	d := lexer.NewDefinition()

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(d.Skip(`\s+`))

	must(d.Add(Ignore, `ignore\b`))
	must(d.Add(Start, `start\b`))
	must(d.Add(Identifier, `[A-Za-z_][A-Za-z0-9_]*`))

	must(d.Add(DoubleVerticalLine, `\|\|`))
	must(d.Add(VerticalLine, `\|`))
	must(d.Add(DoubleAmpersand, `&&`))
	must(d.Add(LeftCurlyBracketSolidus, `\{/`))
	must(d.Add(ExpressionRange, `\{[0-9]+(,[0-9]*)?\}`))
	must(d.Add(LeftCurlyBracket, `\{`))
	must(d.Add(RightCurlyBracket, `\}`))
	must(d.Add(LeftSquareBracketSolidus, `\[/`))
	must(d.Add(BracketExpression, `\[(?:\\.|[^\]\\])*\]`))
	must(d.Add(LeftSquareBracket, `\[`))
	must(d.Add(RightSquareBracket, `\]`))

	must(d.Add(Colon, `:`))
	must(d.Add(Semicolon, `;`))
	must(d.Add(CommercialAt, `@`))
	must(d.Add(LeftParenthesis, `\(`))
	must(d.Add(RightParenthesis, `\)`))
	must(d.Add(Solidus, `/`))
	must(d.Add(Comma, `,`))
	must(d.Add(PlusSign, `\+`))
	must(d.Add(HyphenMinus, `-`))
	must(d.Add(Asterisk, `\*`))
	must(d.Add(QuestionMark, `\?`))
	must(d.Add(ExclamationMark, `!`))
	must(d.Add(FullStop, `\.`))
	must(d.Add(QuotedChar, `\\.`))

	must(d.Add(OrdChar, `[^\s.\[\]*+?{}()|&!/@:;,\\-]`))

	return d
}
