package pyx

import (
	"regexp"
	"strings"
)

// Kind distinguishes the three declaration forms §4.3 recognizes.
type Kind int

const (
	KindDefine Kind = iota
	KindMacro
	KindMethod
)

// PlaceholderKind distinguishes how a receiver binds.
type PlaceholderKind int

const (
	PlaceholderSingle PlaceholderKind = iota
	PlaceholderTuple
	PlaceholderVariadic
)

// Placeholder describes the receiver binding of a dotted declaration name
// ("PH.NAME", "(a,b).NAME", "*PH.NAME"): the name(s) the text standing
// before the "." at a call site is bound to inside the body. Any
// declaration kind may carry one — a zero-argument !define can be written
// as "PH.NAME" just as a !method can.
type Placeholder struct {
	Kind  PlaceholderKind
	Names []string // single name, or the tuple's member names
}

// Param is one formal parameter of a !macro or !method declaration.
type Param struct {
	Name       string
	Default    string // raw text, unparsed; "" if HasDefault is false
	HasDefault bool
	Variadic   bool // true for "*name": collects all remaining positional args
}

// Definition is a parsed !macro / !method / !define declaration.
type Definition struct {
	Name        string
	Kind        Kind
	Debug       bool // declared with a "$debug" prefix
	Placeholder *Placeholder
	Params      []Param
	Body        Lines
	DeclFile    string
	DeclLine    int
}

// DefinitionPair holds the normal and $debug-prefixed declarations sharing a
// name: in exec mode the debug one shadows the normal one, and in non-exec
// mode the debug one resolves to a tombstone instead (§4.3, §4.5).
type DefinitionPair struct {
	Normal *Definition
	Debug  *Definition
}

// DefinitionTable maps declaration name to its normal/debug pair, keeping
// first-declared order so the expansion driver's two-pass match (§4.4,
// "first all defines, then all macro/methods") is deterministic. Dict
// iteration order in the original implementation happens to follow
// insertion order too; re-declaring an existing name updates it in place
// without moving its position, matching Python dict semantics.
type DefinitionTable struct {
	order []string
	defs  map[string]*DefinitionPair
}

// NewDefinitionTable creates an empty table.
func NewDefinitionTable() DefinitionTable {
	return DefinitionTable{defs: make(map[string]*DefinitionPair)}
}

// Names returns declaration names in first-declared order.
func (t DefinitionTable) Names() []string { return t.order }

func (t *DefinitionTable) add(def *Definition) {
	pair := t.defs[def.Name]
	if pair == nil {
		pair = &DefinitionPair{}
		t.defs[def.Name] = pair
		t.order = append(t.order, def.Name)
	}
	if def.Debug {
		pair.Debug = def
	} else {
		pair.Normal = def
	}
}

// Merge folds other's definitions into t, preserving t's existing order for
// names it already has and appending any new names in other's order.
func (t *DefinitionTable) Merge(other DefinitionTable) {
	for _, name := range other.order {
		pair := other.defs[name]
		dst := t.defs[name]
		if dst == nil {
			dst = &DefinitionPair{}
			t.defs[name] = dst
			t.order = append(t.order, name)
		}
		if pair.Normal != nil {
			dst.Normal = pair.Normal
		}
		if pair.Debug != nil {
			dst.Debug = pair.Debug
		}
	}
}

// Resolve returns the declaration that should be used for name given
// whether we're running in exec mode, and whether that name is tombstoned
// (a $debug-only declaration being used in non-exec mode: call sites using
// it must be erased, not left unexpanded). A tombstone definition carries
// only the Kind needed to find call sites — its placeholder and params are
// dropped, matching the original's dummy Definition built from the bare
// name with no receiver/argument info.
func (t DefinitionTable) Resolve(name string, exec bool) (def *Definition, tombstoned bool) {
	pair := t.defs[name]
	if pair == nil {
		return nil, false
	}
	if exec && pair.Debug != nil {
		return pair.Debug, false
	}
	if pair.Normal != nil {
		return pair.Normal, false
	}
	if pair.Debug != nil {
		return &Definition{Name: name, Kind: pair.Debug.Kind}, true
	}
	return nil, false
}

// macroDeclPattern matches "!macro"/"!method" declarations, which always
// take a parenthesized (possibly empty) argument list.
var macroDeclPattern = regexp.MustCompile(
	`^(\$debug\s+)?!(macro|method)\s+([*A-Za-z0-9_.,() ]+)\s*\((.*?)\)\s*:\s*(.*)$`)

// defineDeclPattern matches "!define" declarations, which never take an
// argument list but may still carry a dotted placeholder name.
var defineDeclPattern = regexp.MustCompile(
	`^(\$debug\s+)?!define\s+([A-Za-z0-9_.]+)\s*:\s*(.*)$`)

// ParseDefinitions scans lines for !macro/!method/!define declarations
// (optionally "$debug"-prefixed), consuming their bodies (inline or
// indented block), and returns the populated DefinitionTable together with
// the remaining, declaration-free lines in original order. lines is
// dedented first so declarations nested inside a "$namespace" block (whose
// content arrives indented) are still recognized by the anchored "^!..."
// match.
func ParseDefinitions(lines Lines) (DefinitionTable, Lines, error) {
	lines = dedentBlock(lines)
	table := NewDefinitionTable()
	var main Lines

	i := 0
	for i < len(lines) {
		sl := lines[i]
		sline := strings.TrimSpace(sl.Content)

		var debug bool
		var kind Kind
		var namePart, paramsText, rest string
		matched := true

		if m := macroDeclPattern.FindStringSubmatch(sline); m != nil {
			debug = m[1] != ""
			if m[2] == "method" {
				kind = KindMethod
			} else {
				kind = KindMacro
			}
			namePart, paramsText, rest = m[3], m[4], m[5]
		} else if m := defineDeclPattern.FindStringSubmatch(sline); m != nil {
			debug = m[1] != ""
			kind = KindDefine
			namePart, rest = m[2], m[3]
		} else {
			matched = false
		}

		if !matched {
			main = append(main, sl)
			i++
			continue
		}

		name, placeholder := splitPlaceholderName(namePart)
		def := &Definition{
			Name:        name,
			Kind:        kind,
			Debug:       debug,
			Placeholder: placeholder,
			DeclFile:    sl.File,
			DeclLine:    sl.Lineno,
		}
		if kind != KindDefine {
			def.Params = parseParams(paramsText)
		}

		declIndent := getIndentLength(sl.Content)
		i++

		if strings.TrimSpace(rest) != "" {
			def.Body = Lines{{Content: rest + "\n", File: sl.File, Lineno: sl.Lineno}}
		} else {
			var block Lines
			for i < len(lines) {
				cand := lines[i]
				if strings.TrimSpace(cand.Content) == "" {
					block = append(block, cand)
					i++
					continue
				}
				if getIndentLength(cand.Content) <= declIndent {
					break
				}
				block = append(block, cand)
				i++
			}
			def.Body = trimTrailingBlank(dedentBlock(block))
		}

		table.add(def)
	}

	return table, main, nil
}

// splitPlaceholderName splits a declaration's name part on the first "."
// into (name, placeholder). A name part with no dot has no placeholder.
func splitPlaceholderName(namePart string) (string, *Placeholder) {
	namePart = strings.TrimSpace(namePart)
	idx := strings.IndexByte(namePart, '.')
	if idx < 0 {
		return namePart, nil
	}
	ph := strings.TrimSpace(namePart[:idx])
	name := strings.TrimSpace(namePart[idx+1:])
	return name, parsePlaceholder(ph)
}

// parsePlaceholder parses a receiver spec standing before the "." in a
// declaration name: a bare identifier ("v"), a bare starred variadic
// ("*xs"), a parenthesized tuple ("(a, b)"), or a parenthesized starred
// variadic ("(*xs)").
func parsePlaceholder(receiver string) *Placeholder {
	if strings.HasPrefix(receiver, "*") {
		return &Placeholder{Kind: PlaceholderVariadic, Names: []string{strings.TrimPrefix(receiver, "*")}}
	}
	if strings.HasPrefix(receiver, "(") && strings.HasSuffix(receiver, ")") {
		inner := receiver[1 : len(receiver)-1]
		var names []string
		for _, p := range strings.Split(inner, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				names = append(names, p)
			}
		}
		return &Placeholder{Kind: PlaceholderTuple, Names: names}
	}
	return &Placeholder{Kind: PlaceholderSingle, Names: []string{receiver}}
}

// parseParams parses a declaration's formal-parameter list: required
// positionals, "name=default" optionals, and a single trailing "*name"
// variadic collector.
func parseParams(text string) []Param {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := smartSplitArgs(text)
	params := make([]Param, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "*") {
			params = append(params, Param{Name: strings.TrimSpace(strings.TrimPrefix(p, "*")), Variadic: true})
			continue
		}
		if idx := strings.IndexByte(p, '='); idx >= 0 {
			params = append(params, Param{
				Name:       strings.TrimSpace(p[:idx]),
				Default:    strings.TrimSpace(p[idx+1:]),
				HasDefault: true,
			})
			continue
		}
		params = append(params, Param{Name: p})
	}
	return params
}
