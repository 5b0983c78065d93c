/*
Pathgramc starts an interactive grammar-authoring session.

It reads a grammar-meta-language file, checks that it is syntactically valid
meta-language, and then opens a REPL where each line of input is lexed as a
space-separated sequence of token-kind names and run through the
meta-grammar's own Grammar start symbol. The loaded file's productions are
not compiled or run. It prints whether the line parses and, on rejection,
the boundary error with the deepest point reached.

Usage:

	pathgramc [flags]

The flags are:

	-v, --version
		Give the current version of pathgram and then exit.

	-g, --grammar FILE
		The grammar-meta-language source file to load. Defaults to
		"grammar.pg" in the current working directory.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading input, even if launched in a
		tty with stdin and stdout.
*/
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/holloway-dev/pathgram/internal/driver"
	"github.com/holloway-dev/pathgram/internal/lexer"
	"github.com/holloway-dev/pathgram/internal/metagrammar"
	"github.com/holloway-dev/pathgram/internal/symbol"
	"github.com/holloway-dev/pathgram/internal/version"
)

const (
	ExitSuccess = iota
	ExitParseError
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	grammarFile = pflag.StringP("grammar", "g", "grammar.pg", "The grammar-meta-language source file to load")
	forceDirect = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	src, err := os.ReadFile(*grammarFile)
	if err != nil {
		pterm.Error.Printfln("could not read grammar file: %s", err.Error())
		returnCode = ExitInitError
		return
	}

	if _, err := metagrammar.Parse(string(src), nil); err != nil {
		pterm.Error.Printfln("grammar is not syntactically valid: %s", err.Error())
		returnCode = ExitInitError
		return
	}
	pterm.Info.Println("grammar accepted; starting session")

	if err := runSession(*forceDirect); err != nil {
		pterm.Error.Printfln("session ended: %s", err.Error())
		returnCode = ExitParseError
		return
	}
}

func runSession(direct bool) error {
	if direct || !readline.IsTerminal(int(os.Stdin.Fd())) {
		return runDirect()
	}
	return runReadline()
}

func runDirect() error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(line), "quit") {
			return nil
		}
		reportLine(line)
	}
	return scanner.Err()
}

func runReadline() error {
	repl, err := readline.New("pathgram> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	for {
		line, err := repl.Readline()
		if err != nil {
			return nil
		}
		if strings.EqualFold(strings.TrimSpace(line), "quit") {
			return nil
		}
		reportLine(line)
	}
}

// reportLine lexes line as space-separated token-kind names and reports
// whether the meta-grammar's own Grammar start symbol accepts it — a
// smoke-test loop over the bootstrap parser itself, useful while iterating
// on a grammar file before wiring it into httpapi.
func reportLine(line string) {
	kinds := strings.Fields(line)
	if len(kinds) == 0 {
		return
	}

	def := lexer.NewDefinition()
	if err := def.Skip(`\s+`); err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, k := range kinds {
		if err := def.Add(symbol.Kind(k), regexpLiteral(k)); err != nil {
			pterm.Error.Printfln("bad token kind %q: %s", k, err.Error())
			return
		}
	}

	conds := symbol.NewConditions(string(metagrammar.Lexical), string(metagrammar.Syntactic))
	stream, err := def.Lex(strings.Join(kinds, " "), conds)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}

	d := driver.New(stream, conds, nil)
	d.Register(metagrammar.Nonterminals()...)

	_, err = d.Parse(metagrammar.Grammar)
	if err != nil {
		pterm.Warning.Printfln("rejected: %s", err.Error())
		return
	}
	pterm.Success.Println("accepted")
}

func regexpLiteral(s string) string {
	out := ""
	for _, r := range s {
		switch r {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			out += "\\" + string(r)
		default:
			out += string(r)
		}
	}
	return out
}
