package metagrammar

import (
	"github.com/holloway-dev/pathgram/internal/driver"
	"github.com/holloway-dev/pathgram/internal/pstate"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

// Parse lexes and recognizes src as a grammar-meta-language document,
// returning the accepting Path Set or a boundary error (*perr.SyntaxError /
// *perr.UnexpectedEndOfInput), exactly as driver.Driver.Parse specifies.
// Both the "lexical" and "syntactic" conditions are active, since a real
// grammar file freely mixes lexical and syntactic productions, so a single
// pass with one Driver covers both.
func Parse(src string, log driver.Logger) (pstate.Set, error) {
	conds := symbol.NewConditions(string(Lexical), string(Syntactic))

	def := NewLexicalDefinition()
	stream, err := def.Lex(src, conds)
	if err != nil {
		return nil, err
	}

	d := driver.New(stream, conds, log)
	d.Register(Nonterminals()...)

	return d.Parse(Grammar)
}
