// Package lexer is the companion token producer the engine consumes but
// does not define (spec.md §1 names the scanner an "external collaborator").
// It exists so the core packages and internal/metagrammar have something
// real to run against; nothing in internal/pstate or internal/combinator
// imports it, and internal/driver uses only its Stream interface and the
// Token values it returns.
//
// Grounded on ictiobus/lex's regex-driven, ordered-pattern-list design
// (AddPattern/Action over per-state rule lists), simplified to a single
// eager scan: spec.md §6 requires the lexer to memoize so the engine can
// re-read the same cursor many times, which an eagerly-scanned slice gives
// for free.
package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/holloway-dev/pathgram/internal/symbol"
)

// Token is a typed lexeme with position, matching spec.md §3's Token.
type Token struct {
	kind     symbol.TokenKind
	lexeme   string
	line     int
	linePos  int
	offset   int
	fullLine string
}

func (t Token) Class() symbol.TokenKind { return t.kind }
func (t Token) Lexeme() string          { return t.lexeme }
func (t Token) Line() int               { return t.line }
func (t Token) LinePos() int            { return t.linePos }
func (t Token) Offset() int             { return t.offset }
func (t Token) FullLine() string        { return t.fullLine }
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.kind.ID(), t.lexeme, t.line, t.linePos)
}

// Stream is a random-access, memoized view over a scanned token sequence,
// matching spec.md §6's lexer contract: token_at(cursor) and conditions.
type Stream interface {
	// TokenAt returns the token at the given cursor and true, or the zero
	// Token and false if cursor is at or past end-of-input.
	TokenAt(cursor int) (Token, bool)

	// Len returns the number of tokens in the stream (not counting EOI).
	Len() int

	// Conditions returns the conditions active for this lexing session.
	Conditions() symbol.Conditions
}

type memoStream struct {
	tokens []Token
	conds  symbol.Conditions
}

func (m *memoStream) TokenAt(cursor int) (Token, bool) {
	if cursor < 0 || cursor >= len(m.tokens) {
		return Token{}, false
	}
	return m.tokens[cursor], true
}

func (m *memoStream) Len() int                      { return len(m.tokens) }
func (m *memoStream) Conditions() symbol.Conditions { return m.conds }

// Rule is one lexical pattern: match text against Pattern: if it matches at
// the front of the remaining input, produce a token of Kind unless Skip is
// set (e.g. whitespace), in which case the matched text is discarded.
// Condition, if non-empty, gates the rule the same way a Guard node gates a
// grammar fragment — the rule only participates when that condition is
// active, letting one Definition serve both the "lexical" and "syntactic"
// halves of the meta-grammar's own token set.
type Rule struct {
	Kind      symbol.TokenKind
	Pattern   *regexp.Regexp
	Skip      bool
	Condition symbol.Condition
}

// Definition is an ordered list of lexical Rules, tried in order at each
// position; the first rule whose pattern matches the longest prefix wins
// (ties broken by rule order), mirroring ictiobus/lex's maximal-munch
// behavior.
type Definition struct {
	rules []Rule
}

// NewDefinition returns an empty lexical rule set.
func NewDefinition() *Definition {
	return &Definition{}
}

// Add registers a pattern (a Go regexp, matched as if anchored at the start
// of the remaining input) producing tokens of the given kind.
func (d *Definition) Add(kind symbol.TokenKind, pattern string) error {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return fmt.Errorf("lexer: bad pattern for %s: %w", kind.ID(), err)
	}
	d.rules = append(d.rules, Rule{Kind: kind, Pattern: re})
	return nil
}

// AddGuarded is Add, but the rule only applies when cond is in the active
// condition set.
func (d *Definition) AddGuarded(kind symbol.TokenKind, pattern string, cond symbol.Condition) error {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return fmt.Errorf("lexer: bad pattern for %s: %w", kind.ID(), err)
	}
	d.rules = append(d.rules, Rule{Kind: kind, Pattern: re, Condition: cond})
	return nil
}

// Skip registers a pattern whose matched text is discarded rather than
// turned into a token (e.g. whitespace, comments).
func (d *Definition) Skip(pattern string) error {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return fmt.Errorf("lexer: bad skip pattern: %w", err)
	}
	d.rules = append(d.rules, Rule{Pattern: re, Skip: true})
	return nil
}

// Lex eagerly scans src under the given active conditions and returns a
// memoized Stream. Returns an error naming the offending position if no
// rule matches at some point before end of input.
func (d *Definition) Lex(src string, conds symbol.Conditions) (Stream, error) {
	var tokens []Token
	line, linePos := 1, 1
	offset := 0
	lines := strings.Split(src, "\n")

	for offset < len(src) {
		remaining := src[offset:]
		bestLen := -1
		var bestRule Rule

		for _, r := range d.rules {
			if r.Condition != "" && !conds.Has(r.Condition) {
				continue
			}
			loc := r.Pattern.FindStringIndex(remaining)
			if loc == nil || loc[0] != 0 {
				continue
			}
			if loc[1] > bestLen {
				bestLen = loc[1]
				bestRule = r
			}
		}

		if bestLen <= 0 {
			return nil, fmt.Errorf("lexer: no rule matches at line %d, col %d", line, linePos)
		}

		matched := remaining[:bestLen]

		if !bestRule.Skip {
			tokens = append(tokens, Token{
				kind:     bestRule.Kind,
				lexeme:   matched,
				line:     line,
				linePos:  linePos,
				offset:   offset,
				fullLine: lineAt(lines, line),
			})
		}

		for _, r := range matched {
			if r == '\n' {
				line++
				linePos = 1
			} else {
				linePos++
			}
		}
		offset += bestLen
	}

	return &memoStream{tokens: tokens, conds: conds}, nil
}

func lineAt(lines []string, n int) string {
	if n-1 < 0 || n-1 >= len(lines) {
		return ""
	}
	return lines[n-1]
}
