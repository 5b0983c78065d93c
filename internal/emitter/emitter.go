// Package emitter is the Code Emitter (spec.md §4.5, C7): it walks a
// resolved internal/ruletree.Node and produces literal Go source text for a
// Nonterminal's Descend method, instead of interpreting the tree directly
// the way ruletree.Compile does. Emitted code and ruletree.Compile must
// agree on every input — that is spec.md §9's two presentations of one
// engine — so each rule shape here is a direct transliteration of the
// matching combinator in internal/combinator, not an independent
// reimplementation.
//
// Grounded line-for-line on generator.py's ProductionTemplate.generate and
// its five _Rule.__call__ overrides (_Group, _Optional, repeat, oneof,
// _Symbol), with Python's indent/level bookkeeping kept (emitted variables
// are cur0, cur1, ... exactly as generator.py's paths0, paths1, ...) and
// its try/except-based backtracking translated into Go function literals
// whose early `return ..., err` plays the role of `raise`, caught by the
// `if err != nil` that immediately follows the call per spec.md §9.
package emitter

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/holloway-dev/pathgram/internal/ruletree"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

func tabs(n int) string {
	return strings.Repeat("\t", n)
}

// Emit resolves p's Rule Tree against conds and returns the Go source for a
// complete Nonterminal implementation (a type plus its four interface
// methods), or "" if the production has nothing left once Guards are
// resolved — mirroring generator.py's generate() returning "" for a
// disabled Switch template.
func Emit(p ruletree.Production, conds symbol.Conditions) string {
	resolved := ruletree.Resolve(p.Template, conds)
	if ruletree.IsNoop(resolved) {
		return ""
	}

	name := toPascal(p.Name)

	var sb strings.Builder
	fmt.Fprintf(&sb, "// %sNonterminal implements the %s production.\n", name, p.Name)
	fmt.Fprintf(&sb, "type %sNonterminal struct{}\n\n", name)
	fmt.Fprintf(&sb, "func (%sNonterminal) Name() string { return %q }\n\n", name, p.Name)
	fmt.Fprintf(&sb, "func (%sNonterminal) Start(conds symbol.Conditions) bool { return %t }\n\n", name, p.IsStart)
	fmt.Fprintf(&sb, "func (%sNonterminal) NonLeftRecursive() bool { return %t }\n\n", name, !p.LeftRecursive)
	fmt.Fprintf(&sb, "func (%sNonterminal) Descend(d symbol.Driver, current pstate.State) (pstate.Set, error) {\n", name)
	sb.WriteString(tabs(1) + "cur0 := pstate.Singleton(current)\n")
	sb.WriteString(tabs(1) + "var err error\n")
	sb.WriteString(emitSequence([]ruletree.Node{resolved}, 1, 0, p.Ambiguous))
	sb.WriteString(tabs(1) + "return cur0, nil\n")
	sb.WriteString("}\n")
	return sb.String()
}

// EmitFile wraps Emit over every production into one compilable Go file,
// skipping any that resolve to nothing under conds.
func EmitFile(pkg string, productions []ruletree.Production, conds symbol.Conditions) string {
	var sb strings.Builder
	sb.WriteString(fileHeaderComment(pkg, productions, conds))
	fmt.Fprintf(&sb, "package %s\n\n", pkg)
	sb.WriteString("import (\n")
	sb.WriteString("\t\"github.com/holloway-dev/pathgram/internal/perr\"\n")
	sb.WriteString("\t\"github.com/holloway-dev/pathgram/internal/pstate\"\n")
	sb.WriteString("\t\"github.com/holloway-dev/pathgram/internal/symbol\"\n")
	sb.WriteString(")\n\n")
	sb.WriteString("var _ = perr.NoPathError{}\n\n")

	for _, p := range productions {
		body := Emit(p, conds)
		if body == "" {
			continue
		}
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	return sb.String()
}

// fileHeaderComment produces the doc comment above a generated file's
// package clause, explaining which productions were skipped under conds so
// a reader of the generated source doesn't have to diff it against the
// grammar by hand. The explanation is free text built from however many
// productions were skipped, so its length is unbounded; rosed wraps it to a
// conventional Go doc-comment width instead of emitting one unbroken line.
func fileHeaderComment(pkg string, productions []ruletree.Production, conds symbol.Conditions) string {
	var skipped []string
	for _, p := range productions {
		if Emit(p, conds) == "" {
			skipped = append(skipped, p.Name)
		}
	}
	if len(skipped) == 0 {
		return ""
	}

	explanation := fmt.Sprintf(
		"Package %s was generated by the pathgram Code Emitter. The following productions resolved to nothing under the active conditions and were omitted: %s.",
		pkg, strings.Join(skipped, ", "),
	)

	wrapped := rosed.Edit(explanation).Wrap(77).String()

	var sb strings.Builder
	for _, line := range strings.Split(wrapped, "\n") {
		sb.WriteString("// " + line + "\n")
	}
	return sb.String()
}

func emitSequence(nodes []ruletree.Node, indent, level int, ambiguous bool) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(emitNode(n, indent, level, ambiguous))
	}
	return sb.String()
}

func emitNode(n ruletree.Node, indent, level int, ambiguous bool) string {
	switch n.Kind {
	case ruletree.KindSymbol:
		return emitSymbol(n, indent, level)
	case ruletree.KindGroup:
		return emitSequence(n.Children, indent, level, ambiguous)
	case ruletree.KindOptional:
		return emitOptional(n, indent, level, ambiguous)
	case ruletree.KindIteration:
		return emitIteration(n, indent, level, ambiguous)
	case ruletree.KindSelection:
		return emitSelection(n, indent, level, ambiguous)
	default:
		// KindGuard cannot reach here: Emit resolves every Guard away
		// before walking the tree.
		return ""
	}
}

// emitSymbol mirrors generator.py's _Symbol: a single dispatch call that
// reassigns the running variable at the current level, propagating any
// failure up to whichever enclosing scope is listening for err.
func emitSymbol(n ruletree.Node, indent, level int) string {
	ind := tabs(indent)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%scur%d, err = d.CallNamed(%q, cur%d)\n", ind, level, n.Sym.Name(), level)
	fmt.Fprintf(&sb, "%sif err != nil {\n", ind)
	fmt.Fprintf(&sb, "%sreturn pstate.Set{}, err\n", tabs(indent+1))
	fmt.Fprintf(&sb, "%s}\n", ind)
	return sb.String()
}

// emitOptional mirrors generator.py's _Optional: attempt the body against a
// copy of the running Path Set in an isolated scope; on success merge (or
// replace) back into the outer level, on failure leave the outer level
// untouched.
func emitOptional(n ruletree.Node, indent, level int, ambiguous bool) string {
	ind := tabs(indent)
	inner := tabs(indent + 1)
	next := level + 1

	var sb strings.Builder
	fmt.Fprintf(&sb, "%sif next%d, err := func() (pstate.Set, error) { // optional\n", ind, next)
	fmt.Fprintf(&sb, "%scur%d := cur%d\n", inner, next, level)
	fmt.Fprintf(&sb, "%svar err error\n", inner)
	sb.WriteString(emitSequence(n.Children, indent+1, next, ambiguous))
	fmt.Fprintf(&sb, "%sreturn cur%d, nil\n", inner, next)
	fmt.Fprintf(&sb, "%s}(); err == nil {\n", ind)
	if ambiguous {
		fmt.Fprintf(&sb, "%scur%d = pstate.Union(cur%d, next%d)\n", inner, level, level, next)
	} else {
		fmt.Fprintf(&sb, "%scur%d = next%d\n", inner, level, next)
	}
	fmt.Fprintf(&sb, "%s}\n", ind)
	return sb.String()
}

// emitIteration mirrors generator.py's repeat: keep attempting the body,
// folding each success into the running level by union (ambiguous) or
// replacement, stopping at the first failure or once the Path Set stops
// growing. The growth check is the same pstate.Equal fixpoint test
// combinator.Iteration uses at runtime.
func emitIteration(n ruletree.Node, indent, level int, ambiguous bool) string {
	ind := tabs(indent)
	inner := tabs(indent + 1)
	body := tabs(indent + 2)
	next := level + 1

	var sb strings.Builder
	fmt.Fprintf(&sb, "%scur%d := cur%d\n", ind, next, level)
	fmt.Fprintf(&sb, "%sfor { // iteration\n", ind)
	fmt.Fprintf(&sb, "%sstep%d, err := func() (pstate.Set, error) {\n", inner, next)
	fmt.Fprintf(&sb, "%scur%d := cur%d\n", body, next, next)
	fmt.Fprintf(&sb, "%svar err error\n", body)
	sb.WriteString(emitSequence(n.Children, indent+2, next, ambiguous))
	fmt.Fprintf(&sb, "%sreturn cur%d, nil\n", body, next)
	fmt.Fprintf(&sb, "%s}()\n", inner)
	fmt.Fprintf(&sb, "%sif err != nil {\n%sbreak\n%s}\n", inner, body, inner)

	if ambiguous {
		fmt.Fprintf(&sb, "%smerged%d := pstate.Union(cur%d, step%d)\n", inner, next, next, next)
		fmt.Fprintf(&sb, "%sif pstate.Equal(merged%d, cur%d) {\n%scur%d = merged%d\n%sbreak\n%s}\n",
			inner, next, next, body, next, next, body, inner)
		fmt.Fprintf(&sb, "%scur%d = merged%d\n", inner, next, next)
	} else {
		fmt.Fprintf(&sb, "%sif pstate.Equal(step%d, cur%d) {\n%scur%d = step%d\n%sbreak\n%s}\n",
			inner, next, next, body, next, next, body, inner)
		fmt.Fprintf(&sb, "%scur%d = step%d\n", inner, next, next)
	}
	fmt.Fprintf(&sb, "%s}\n", ind)
	fmt.Fprintf(&sb, "%scur%d = cur%d\n", ind, level, next)
	return sb.String()
}

// emitSelection mirrors generator.py's oneof: a single rule degenerates to
// itself with no dispatch overhead (the same degeneration ruletree.Resolve
// already applies structurally; this is a defensive second check). In
// unambiguous mode the first alternative that both succeeds and yields a
// non-empty Path Set wins and later alternatives are skipped entirely; in
// ambiguous mode every alternative runs and all successes are unioned.
func emitSelection(n ruletree.Node, indent, level int, ambiguous bool) string {
	if len(n.Children) == 1 {
		return emitNode(n.Children[0], indent, level, ambiguous)
	}

	ind := tabs(indent)
	inner := tabs(indent + 1)
	alt := level + 1
	next := level + 2

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s// begin selection %s\n", ind, n.Label)
	fmt.Fprintf(&sb, "%snext%d := pstate.Set{}\n", ind, alt)
	fmt.Fprintf(&sb, "%smatched%d := false\n", ind, alt)

	for i, option := range n.Children {
		guard := ""
		if !ambiguous {
			guard = fmt.Sprintf("!matched%d && ", alt)
		}
		fmt.Fprintf(&sb, "%s_ = %sfunc() bool { // option %d\n", ind, guard, i+1)
		fmt.Fprintf(&sb, "%scur%d := cur%d\n", inner, next, level)
		fmt.Fprintf(&sb, "%svar err error\n", inner)
		sb.WriteString(emitSequence([]ruletree.Node{option}, indent+1, next, ambiguous))
		fmt.Fprintf(&sb, "%sif err != nil || cur%d.IsEmpty() {\n%sreturn false\n%s}\n", inner, next, tabs(indent+2), inner)
		if ambiguous {
			fmt.Fprintf(&sb, "%smatched%d = true\n", inner, alt)
			fmt.Fprintf(&sb, "%snext%d = pstate.Union(next%d, cur%d)\n", inner, alt, alt, next)
		} else {
			fmt.Fprintf(&sb, "%smatched%d = true\n", inner, alt)
			fmt.Fprintf(&sb, "%snext%d = cur%d\n", inner, alt, next)
		}
		fmt.Fprintf(&sb, "%sreturn true\n", inner)
		fmt.Fprintf(&sb, "%s}()\n", ind)
	}

	fmt.Fprintf(&sb, "%sif !matched%d {\n", ind, alt)
	fmt.Fprintf(&sb, "%sreturn pstate.Set{}, &perr.NoPathError{Alternative: %q}\n", inner, n.Label)
	fmt.Fprintf(&sb, "%s}\n", ind)
	fmt.Fprintf(&sb, "%scur%d = next%d\n", ind, level, alt)
	fmt.Fprintf(&sb, "%s// end selection\n", ind)
	return sb.String()
}

// toPascal turns a snake_case or already-Pascal production name into an
// exported Go identifier.
func toPascal(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	if sb.Len() == 0 {
		return "Anon"
	}
	return sb.String()
}
