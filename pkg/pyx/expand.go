package pyx

import (
	"regexp"
	"strings"
)

// Options configures one Preprocessor run (§4.4, §6).
type Options struct {
	// Exec selects $debug-prefixed declarations over their normal
	// counterpart and keeps "?"-prefixed debug lines in the output instead
	// of dropping them.
	Exec bool
	// Warn, if set, receives a message for every missing $expand target
	// encountered while flattening mainFile (§7's FileMissing kind).
	Warn func(string)
}

// Preprocessor drives the expand/namespace/definition/conditional pipeline
// described in §4: a fresh Preprocessor is meant for exactly one Transpile
// call, accumulating namespaces and active definitions as it goes the way
// the original's PyxTranspiler instance does across its lifetime.
type Preprocessor struct {
	opts        Options
	namespaces  Namespaces
	definitions DefinitionTable
	modValue    string
}

// NewPreprocessor creates a Preprocessor ready for one Transpile call.
func NewPreprocessor(opts Options) *Preprocessor {
	return &Preprocessor{opts: opts, definitions: NewDefinitionTable()}
}

var debugLinePattern = regexp.MustCompile(`(?s)^(\s*)\?(.*)$`)

// Transpile expands mainFile's "$expand" chain, strips its namespaces,
// parses global and "default"-namespace declarations, then drives the
// fixed-point macro/method/define expansion loop over the remaining lines,
// handling "$using", "$mod", "$cases", the "?" debug-line marker, and
// modular-assignment rewriting along the way (§3, §4.4–§4.9).
func (p *Preprocessor) Transpile(mainFile string) (Lines, error) {
	allLines, err := ExpandFilesTopLevel(mainFile, p.opts.Warn)
	if err != nil {
		return nil, err
	}

	mainCode, namespaces := ExtractNamespaces(allLines)
	p.namespaces = namespaces

	globalDefs, rawCode, err := ParseDefinitions(mainCode)
	if err != nil {
		return nil, err
	}
	p.definitions.Merge(globalDefs)

	if defaultNS, ok := p.namespaces["default"]; ok {
		defs, raw, err := ParseDefinitions(defaultNS)
		if err != nil {
			return nil, err
		}
		p.definitions.Merge(defs)
		rawCode = append(append(Lines{}, raw...), rawCode...)
	}

	queue := append(Lines{}, rawCode...)
	var final Lines
	casesLevel := 0
	expansionCounter := 0

	i := 0
	for i < len(queue) {
		sl := queue[i]
		sline := strings.TrimSpace(sl.Content)

		if strings.HasPrefix(sline, "$using") {
			fields := splitFields(sline, 1)
			if len(fields) > 1 {
				var injected Lines
				for _, raw := range strings.Split(fields[1], ",") {
					target := strings.TrimSpace(raw)
					nsLines, ok := p.namespaces[target]
					if !ok {
						continue
					}
					defs, rawNS, err := ParseDefinitions(nsLines)
					if err != nil {
						return nil, err
					}
					p.definitions.Merge(defs)
					injected = append(injected, rawNS...)
				}
				if len(injected) > 0 {
					queue = spliceLines(queue, i+1, i+1, injected)
				}
			}
			i++
			expansionCounter = 0
			continue
		}

		if strings.HasPrefix(sline, "$mod") {
			fields := strings.Fields(sline)
			if len(fields) > 1 {
				p.modValue = strings.TrimSpace(fields[1])
			}
			i++
			continue
		}

		expanded, newLines, err := p.matchAndExpand(sl)
		if err != nil {
			return nil, &TranspileError{File: sl.File, Line: sl.Lineno, Err: err}
		}
		if expanded {
			expansionCounter++
			if expansionCounter > MaxExpansionDepth {
				return nil, &InfiniteMacroExpansionError{File: sl.File, Line: sl.Lineno}
			}
			queue = spliceLines(queue, i, i+1, newLines)
			continue
		}
		expansionCounter = 0

		if dm := debugLinePattern.FindStringSubmatch(sl.Content); dm != nil {
			if !p.opts.Exec {
				i++
				continue
			}
			content := dm[1] + dm[2]
			if !strings.HasSuffix(content, "\n") {
				content += "\n"
			}
			sl = Line{Content: content, File: sl.File, Lineno: sl.Lineno}
			sline = strings.TrimSpace(sl.Content)
		}

		if strings.HasPrefix(sline, "$cases") {
			fields := splitFields(sline, 1)
			if len(fields) > 1 {
				countExpr := strings.TrimSpace(fields[1])
				if countExpr != "1" {
					baseIndent := leadingWhitespace(sl.Content)
					final = append(final, Line{
						Content: casesLoopLine(countExpr, baseIndent, casesLevel),
						File:    sl.File,
						Lineno:  sl.Lineno,
					})
					casesLevel++
				}
			}
			i++
			continue
		}

		content := applyModRewrite(sl.Content, p.modValue)
		content = indentForCases(content, casesLevel)
		final = append(final, Line{Content: content, File: sl.File, Lineno: sl.Lineno})
		i++
	}

	return final, nil
}

// spliceLines replaces queue[start:end] with replacement, the Go
// equivalent of Python's "list[start:end] = replacement" in-place splice.
func spliceLines(queue Lines, start, end int, replacement Lines) Lines {
	out := make(Lines, 0, len(queue)-(end-start)+len(replacement))
	out = append(out, queue[:start]...)
	out = append(out, replacement...)
	out = append(out, queue[end:]...)
	return out
}

// matchAndExpand tries every active definition against sl in two passes —
// all "define"-kind declarations first, then all "macro"/"method"-kind
// ones — returning the first match's expansion (§4.4, "first match wins").
func (p *Preprocessor) matchAndExpand(sl Line) (bool, Lines, error) {
	for _, defineOnly := range [...]bool{true, false} {
		for _, name := range p.definitions.Names() {
			def, tombstoned := p.definitions.Resolve(name, p.opts.Exec)
			if def == nil {
				continue
			}
			if (def.Kind == KindDefine) != defineOnly {
				continue
			}
			matched, lines, err := p.tryExpandCall(sl, name, def, tombstoned)
			if err != nil {
				return false, nil, err
			}
			if matched {
				return true, lines, nil
			}
		}
	}
	return false, nil, nil
}

func (p *Preprocessor) tryExpandCall(sl Line, name string, def *Definition, tombstoned bool) (bool, Lines, error) {
	if def.Kind == KindDefine {
		return p.tryExpandDefine(sl, name, def, tombstoned)
	}
	if def.Placeholder != nil || (tombstoned && def.Kind == KindMethod) {
		return p.tryExpandMethodCall(sl, name, def, tombstoned)
	}
	return p.tryExpandMacroCall(sl, name, def, tombstoned)
}

func (p *Preprocessor) tryExpandDefine(sl Line, name string, def *Definition, tombstoned bool) (bool, Lines, error) {
	content := sl.Content
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	for _, loc := range pattern.FindAllStringIndex(content, -1) {
		if !isIndexSafe(content, loc[0]) {
			continue
		}
		lines, err := p.expandBody(def, tombstoned, nil, sl, content[loc[0]:loc[1]], "")
		return true, lines, err
	}
	return false, nil, nil
}

func (p *Preprocessor) tryExpandMacroCall(sl Line, name string, def *Definition, tombstoned bool) (bool, Lines, error) {
	content := sl.Content
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	for _, loc := range pattern.FindAllStringIndex(content, -1) {
		start := loc[0]
		if start > 0 && content[start-1] == '.' {
			continue
		}
		if !isIndexSafe(content, start) {
			continue
		}
		argsStart := loc[1]
		endIdx, ok := scanCallArgs(content, argsStart)
		if !ok {
			continue
		}
		fullMatch := content[start : endIdx+1]
		if tombstoned {
			return true, eraseCall(sl, fullMatch), nil
		}
		callArgs := parseCallArgs(content[argsStart:endIdx])
		lines, err := p.expandBody(def, false, callArgs, sl, fullMatch, "")
		return true, lines, err
	}
	return false, nil, nil
}

func (p *Preprocessor) tryExpandMethodCall(sl Line, name string, def *Definition, tombstoned bool) (bool, Lines, error) {
	content := sl.Content
	pattern := regexp.MustCompile(`(\([^)]*\)|[A-Za-z0-9_]+(?:\[[^\]]*\])*)\.` + regexp.QuoteMeta(name) + `\s*\(`)
	for _, loc := range pattern.FindAllStringSubmatchIndex(content, -1) {
		start := loc[0]
		if !isIndexSafe(content, start) {
			continue
		}
		callerObj := content[loc[2]:loc[3]]
		argsStart := loc[1]
		endIdx, ok := scanCallArgs(content, argsStart)
		if !ok {
			continue
		}
		fullMatch := content[start : endIdx+1]
		if tombstoned {
			return true, eraseCall(sl, fullMatch), nil
		}
		callArgs := parseCallArgs(content[argsStart:endIdx])
		lines, err := p.expandBody(def, false, callArgs, sl, fullMatch, callerObj)
		return true, lines, err
	}
	return false, nil, nil
}

func parseCallArgs(argsStr string) []string {
	raw := smartSplitArgs(argsStr)
	out := make([]string, len(raw))
	for i, a := range raw {
		out[i] = tryEvalMath(a)
	}
	return out
}

// scanCallArgs scans content starting right after an already-consumed
// opening "(" for its matching close paren, respecting nested
// brackets/quotes/escapes, returning its index.
func scanCallArgs(content string, start int) (int, bool) {
	depth := 1
	inQuote := false
	var quoteChar byte
	escape := false
	for k := start; k < len(content); k++ {
		c := content[k]
		if escape {
			escape = false
			continue
		}
		if c == '\\' {
			escape = true
			continue
		}
		if inQuote {
			if c == quoteChar {
				inQuote = false
			}
		} else {
			switch c {
			case '"', '\'':
				inQuote = true
				quoteChar = c
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		if depth == 0 {
			return k, true
		}
	}
	return 0, false
}

// eraseCall removes every occurrence of fullMatch from sl's content,
// dropping the line entirely if nothing but whitespace remains — used for
// a call site whose definition is tombstoned (§4.3).
func eraseCall(sl Line, fullMatch string) Lines {
	newContent := strings.ReplaceAll(sl.Content, fullMatch, "")
	if strings.TrimSpace(newContent) == "" {
		return nil
	}
	return Lines{{Content: newContent, File: sl.File, Lineno: sl.Lineno}}
}

// expandBody binds def's placeholder/params against callerObj/callArgs,
// resolves conditionals and macro operators in its body, substitutes bound
// names, and splices the result back into the call site (§4.3–§4.6).
//
// Replacement lines are stamped with originalSL's own file/line rather than
// the definition body's declared-at coordinates: a diagnostic about
// expanded code should point at the call site that produced it, not the
// macro's declaration (§3).
func (p *Preprocessor) expandBody(def *Definition, tombstoned bool, callArgs []string, originalSL Line, matchStr, callerObj string) (Lines, error) {
	if tombstoned {
		return eraseCall(originalSL, matchStr), nil
	}

	baseIndent := leadingWhitespace(originalSL.Content)
	bindings := newBindingSet()

	if callerObj != "" && def.Placeholder != nil {
		bindPlaceholderReceiver(def.Placeholder, callerObj, bindings)
	}

	usedArgs := 0
	for _, param := range def.Params {
		if param.Variadic {
			var variadic []string
			if usedArgs < len(callArgs) {
				variadic = callArgs[usedArgs:]
			}
			bindings.set(param.Name, listBinding(variadic))
			break
		}
		var val string
		switch {
		case usedArgs < len(callArgs):
			val = callArgs[usedArgs]
			usedArgs++
		case param.HasDefault:
			val = param.Default
		default:
			val = "None"
		}
		bindings.set(param.Name, scalarBinding(val))
	}

	rawBody := make(Lines, len(def.Body))
	copy(rawBody, def.Body)

	processed, err := processConditionals(rawBody, bindings)
	if err != nil {
		return nil, err
	}

	final := make(Lines, 0, len(processed))
	for _, sl := range processed {
		txt, err := applyMacroOps(sl.Content, bindings, originalSL.File, originalSL.Lineno)
		if err != nil {
			return nil, err
		}
		txt = safeReplace(txt, bindings)
		final = append(final, Line{Content: txt, File: originalSL.File, Lineno: originalSL.Lineno})
	}

	var valid Lines
	for _, l := range final {
		if strings.TrimSpace(l.Content) != "" {
			valid = append(valid, l)
		}
	}
	isWholeLine := strings.TrimSpace(originalSL.Content) == matchStr

	if !isWholeLine && len(valid) == 1 {
		bodyTxt := strings.TrimSpace(valid[0].Content)
		newContent := strings.ReplaceAll(originalSL.Content, matchStr, bodyTxt)
		return Lines{{Content: newContent, File: originalSL.File, Lineno: originalSL.Lineno}}, nil
	}
	if !isWholeLine && len(valid) == 0 {
		newContent := strings.ReplaceAll(originalSL.Content, matchStr, "")
		if strings.TrimSpace(newContent) == "" {
			return nil, nil
		}
		return Lines{{Content: newContent, File: originalSL.File, Lineno: originalSL.Lineno}}, nil
	}

	if len(final) == 0 {
		return nil, nil
	}

	dedented := dedentBlock(final)
	expanded := make(Lines, 0, len(dedented))
	for _, bsl := range dedented {
		newContent := baseIndent + strings.TrimRight(bsl.Content, "\n") + "\n"
		expanded = append(expanded, Line{Content: newContent, File: originalSL.File, Lineno: originalSL.Lineno})
	}
	return expanded, nil
}

// bindPlaceholderReceiver binds the call-site receiver text to ph's
// name(s), following the same variadic/tuple/single rules a !method or
// placeholder-carrying !define declaration specifies (§4.3).
func bindPlaceholderReceiver(ph *Placeholder, callerObj string, bindings *bindingSet) {
	val := strings.TrimSpace(callerObj)
	switch ph.Kind {
	case PlaceholderVariadic:
		inner := val
		if strings.HasPrefix(val, "(") && strings.HasSuffix(val, ")") {
			inner = val[1 : len(val)-1]
		}
		bindings.set(ph.Names[0], listBinding(smartSplitArgs(inner)))
	case PlaceholderTuple:
		if strings.HasPrefix(val, "(") && strings.HasSuffix(val, ")") {
			innerVals := smartSplitArgs(val[1 : len(val)-1])
			for i, name := range ph.Names {
				if i < len(innerVals) {
					bindings.set(name, scalarBinding(innerVals[i]))
				}
			}
		}
	default:
		bindings.set(ph.Names[0], scalarBinding(val))
	}
}
